package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gofrs/flock"

	"github.com/cwbudde/admrender/adm"
	"github.com/cwbudde/admrender/bw64"
	"github.com/cwbudde/admrender/ear"
	"github.com/cwbudde/admrender/internal/config"
	"github.com/cwbudde/admrender/render"
)

// isolate keeps the user's configuration out of the test.
func isolate(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Chdir(t.TempDir())
	return home
}

func runCLI(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(t.Context())
	return stdout.String(), stderr.String(), err
}

func requireContains(t *testing.T, s, want string) {
	t.Helper()
	if !strings.Contains(s, want) {
		t.Fatalf("expected %q in output:\n%s", want, s)
	}
}

// writeProgrammeFile writes a stereo BW64 file with one programme named name.
func writeProgrammeFile(t *testing.T, name string, frames int) string {
	t.Helper()

	layout, err := ear.GetLayout("0+2+0")
	if err != nil {
		t.Fatal(err)
	}
	doc, err := render.SynthesizeProgrammeDocument(layout, name, 48000, 16)
	if err != nil {
		t.Fatal(err)
	}
	var axml bytes.Buffer
	if err := adm.WriteXML(&axml, doc); err != nil {
		t.Fatal(err)
	}

	path := filepath.Join(t.TempDir(), "input.wav")
	w, err := bw64.Create(path, bw64.WriterOptions{
		Channels:   2,
		SampleRate: 48000,
		BitDepth:   16,
		FormatTag:  bw64.FormatPCM,
		Chna:       render.ChnaForDocument(doc),
		Axml:       bw64.NewAXMLChunk(axml.Bytes()),
	})
	if err != nil {
		t.Fatal(err)
	}
	buf := bw64.NewBlockBuffer(2, frames)
	for i := range buf.Data {
		buf.Data[i] = 0.25
	}
	if err := w.WriteBlock(buf, frames); err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestRenderWritesOneFilePerProgramme(t *testing.T) {
	isolate(t)
	input := writeProgrammeFile(t, "Main Mix", 1000)
	outDir := t.TempDir()

	out, _, err := runCLI(t, "render", input, outDir, "--layout", "0+5+0", "--log-level", "error")
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	requireContains(t, out, "APR_1001")
	requireContains(t, out, "1,000")

	r, err := bw64.Open(filepath.Join(outDir, "Main_Mix.wav"))
	if err != nil {
		t.Fatalf("open output: %v", err)
	}
	defer r.Close()

	if r.Channels() != 6 || r.FrameCount() != 1000 || r.BitDepth() != 16 {
		t.Fatalf("unexpected output format: %d ch, %d frames, %d bit", r.Channels(), r.FrameCount(), r.BitDepth())
	}
}

func TestRenderUsesConfigDefaults(t *testing.T) {
	isolate(t)
	input := writeProgrammeFile(t, "Config", 10)
	outDir := t.TempDir()

	cfgPath := filepath.Join(t.TempDir(), "admrender.toml")
	content := "[render]\nlayout = \"0+2+0\"\noutput_dir = \"" + filepath.ToSlash(outDir) + "\"\n[logging]\nlevel = \"error\"\n"
	if err := os.WriteFile(cfgPath, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, _, err := runCLI(t, "--config", cfgPath, "render", input); err != nil {
		t.Fatalf("render: %v", err)
	}

	r, err := bw64.Open(filepath.Join(outDir, "Config.wav"))
	if err != nil {
		t.Fatalf("open output: %v", err)
	}
	defer r.Close()
	if r.Channels() != 2 {
		t.Fatalf("channels = %d, want 2", r.Channels())
	}
}

func TestRenderStrictSelection(t *testing.T) {
	isolate(t)
	input := writeProgrammeFile(t, "Main", 10)

	out, _, err := runCLI(t, "render", input, t.TempDir(), "--element", "AO_7777", "--log-level", "error")
	if err != nil {
		t.Fatalf("lenient selection should succeed: %v", err)
	}
	requireContains(t, out, "Nothing rendered")

	_, _, err = runCLI(t, "render", input, t.TempDir(), "--element", "AO_7777", "--strict")
	if !errors.Is(err, render.ErrElementNotFound) {
		t.Fatalf("err = %v, want ErrElementNotFound", err)
	}
}

func TestRenderRejectsBadGain(t *testing.T) {
	isolate(t)
	input := writeProgrammeFile(t, "Main", 10)

	_, _, err := runCLI(t, "render", input, "--gain", "AO_1001")
	if !errors.Is(err, render.ErrInvalidGain) {
		t.Fatalf("err = %v, want ErrInvalidGain", err)
	}
}

func TestRenderMissingInput(t *testing.T) {
	isolate(t)
	missing := filepath.Join(t.TempDir(), "missing.wav")

	_, _, err := runCLI(t, "render", missing)
	if !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("err = %v, want ErrNotExist", err)
	}
	if _, err := os.Stat(missing); err == nil {
		t.Fatal("render must not create the input file")
	}
}

func TestRenderLockedInput(t *testing.T) {
	isolate(t)
	input := writeProgrammeFile(t, "Main", 10)

	lock := flock.New(input)
	locked, err := lock.TryLock()
	if err != nil || !locked {
		t.Fatalf("TryLock: %v %v", locked, err)
	}
	defer lock.Unlock()

	_, _, err = runCLI(t, "render", input, t.TempDir())
	if !errors.Is(err, errInputLocked) {
		t.Fatalf("err = %v, want errInputLocked", err)
	}
}

func TestRenderOptionsFlagsOverrideConfig(t *testing.T) {
	isolate(t)
	cmd := newRenderCommand(newCommandContext(new(string), new(string), new(string)))
	if err := cmd.Flags().Parse([]string{"--layout", "0+2+0", "--gain", "AO_1001=-6", "--continue-on-error"}); err != nil {
		t.Fatal(err)
	}

	flags := renderFlags{layout: "0+2+0", gains: []string{"AO_1001=-6"}, continueOnError: true}
	cfg := config.Default()
	cfg.Render.Layout = "4+5+0"
	cfg.Render.ElementID = "APR_1001"
	cfg.Gains = map[string]float64{"AO_1001": 6, "APR_1001": -20}

	opts, err := renderOptions(cmd, &cfg, flags, []string{"in.wav", "out"})
	if err != nil {
		t.Fatal(err)
	}
	if opts.Layout != "0+2+0" || !opts.ContinueOnError || opts.ElementID != "APR_1001" {
		t.Fatalf("unexpected options: %+v", opts)
	}
	if !filepath.IsAbs(opts.OutputDir) || filepath.Base(opts.OutputDir) != "out" {
		t.Fatalf("output dir = %q", opts.OutputDir)
	}
	if g := opts.Gains.Gain("AO_1001"); g < 0.5011 || g > 0.5012 {
		t.Fatalf("flag gain = %v, want -6 dB", g)
	}
	if g := opts.Gains.Gain("APR_1001"); g < 0.0999 || g > 0.1001 {
		t.Fatalf("config gain = %v, want -20 dB", g)
	}
}

func TestRenderOptionsGainKeysIgnoreCase(t *testing.T) {
	isolate(t)
	cmd := newRenderCommand(newCommandContext(new(string), new(string), new(string)))
	if err := cmd.Flags().Parse([]string{"--gain", "ao_100a=-6"}); err != nil {
		t.Fatal(err)
	}

	cfg := config.Default()
	cfg.Gains = map[string]float64{"AO_100A": 6, "aco_1001": -20}

	opts, err := renderOptions(cmd, &cfg, renderFlags{gains: []string{"ao_100a=-6"}}, []string{"in.wav"})
	if err != nil {
		t.Fatal(err)
	}
	if len(opts.Gains) != 2 {
		t.Fatalf("gains = %v", opts.Gains)
	}
	if g := opts.Gains.Gain("AO_100A"); g < 0.5011 || g > 0.5012 {
		t.Fatalf("flag gain = %v, want -6 dB over the config value", g)
	}
	if g := opts.Gains.Gain("ACO_1001"); g < 0.0999 || g > 0.1001 {
		t.Fatalf("config gain = %v, want -20 dB", g)
	}
}

func TestInspect(t *testing.T) {
	isolate(t)
	input := writeProgrammeFile(t, "Main Mix", 480)

	out, _, err := runCLI(t, "inspect", input)
	if err != nil {
		t.Fatalf("inspect: %v", err)
	}
	for _, want := range []string{"Sample rate", "48000 Hz", "chna: 2 tracks, 2 UIDs", "ATU_00000001", "AT_00010001_01", `APR_1001 "Main Mix"`, `pack AP_00010002`, "track ATU_00000002 -> AT_00010002_01"} {
		requireContains(t, out, want)
	}

	out, _, err = runCLI(t, "inspect", "--xml", input)
	if err != nil {
		t.Fatalf("inspect --xml: %v", err)
	}
	requireContains(t, out, "<audioProgramme ")
}

func TestLayouts(t *testing.T) {
	isolate(t)
	out, _, err := runCLI(t, "layouts")
	if err != nil {
		t.Fatalf("layouts: %v", err)
	}
	for _, name := range ear.LayoutNames() {
		requireContains(t, out, name)
	}
	requireContains(t, out, "M+030 M-030 M+000 LFE1 M+110 M-110")
}

func TestConfigInitAndShow(t *testing.T) {
	isolate(t)
	target := filepath.Join(t.TempDir(), "config.toml")

	out, _, err := runCLI(t, "config", "init", target)
	if err != nil {
		t.Fatalf("config init: %v", err)
	}
	requireContains(t, out, "Wrote sample configuration")

	if _, _, err := runCLI(t, "config", "init", target); err == nil {
		t.Fatal("expected error when config exists")
	}
	if _, _, err := runCLI(t, "config", "init", "--overwrite", target); err != nil {
		t.Fatalf("config init --overwrite: %v", err)
	}

	out, _, err = runCLI(t, "--config", target, "config", "show")
	if err != nil {
		t.Fatalf("config show: %v", err)
	}
	requireContains(t, out, target)
	requireContains(t, out, "0+5+0")
	requireContains(t, out, "[logging]")
}
