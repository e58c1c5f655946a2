package config_test

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"github.com/cwbudde/admrender/ear"
	"github.com/cwbudde/admrender/internal/config"
)

func TestLoadWithoutFileUsesDefaults(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	t.Chdir(t.TempDir())

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}
	if want := filepath.Join(tempHome, ".config", "admrender", "config.toml"); resolved != want {
		t.Fatalf("unexpected resolved path: got %q want %q", resolved, want)
	}
	if cfg.Render.Layout != "0+5+0" {
		t.Fatalf("unexpected default layout: %q", cfg.Render.Layout)
	}
	if !filepath.IsAbs(cfg.Render.OutputDir) {
		t.Fatalf("expected absolute output dir, got %q", cfg.Render.OutputDir)
	}
	if cfg.Logging.Format != "console" || cfg.Logging.Level != "info" {
		t.Fatalf("unexpected logging defaults: %+v", cfg.Logging)
	}
	if cfg.Gains == nil {
		t.Fatal("expected non-nil gains map")
	}
}

func TestLoadPrefersProjectFileWhenNoUserConfig(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	dir := t.TempDir()
	t.Chdir(dir)

	content := "[render]\nlayout = \"0+2+0\"\n"
	if err := os.WriteFile(filepath.Join(dir, "admrender.toml"), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists || filepath.Base(resolved) != "admrender.toml" {
		t.Fatalf("expected project config, got %q (exists=%v)", resolved, exists)
	}
	if cfg.Render.Layout != "0+2+0" {
		t.Fatalf("layout = %q", cfg.Render.Layout)
	}
}

func TestLoadExplicitFile(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)

	path := filepath.Join(t.TempDir(), "custom.toml")
	content := `
[render]
layout = " 4+5+0 "
output_dir = "~/renders"
element_id = "APR_1001"
continue_on_error = true

[gains]
"AO_1001" = -6.0
" APR_1001 " = 3

[logging]
format = "JSON"
level = "Debug"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, resolved, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists || resolved != path {
		t.Fatalf("unexpected resolution: %q exists=%v", resolved, exists)
	}
	if cfg.Render.Layout != "4+5+0" {
		t.Fatalf("layout = %q", cfg.Render.Layout)
	}
	if want := filepath.Join(tempHome, "renders"); cfg.Render.OutputDir != want {
		t.Fatalf("output dir = %q, want %q", cfg.Render.OutputDir, want)
	}
	if cfg.Render.ElementID != "APR_1001" || !cfg.Render.ContinueOnError || cfg.Render.StrictSelection {
		t.Fatalf("unexpected render section: %+v", cfg.Render)
	}
	if cfg.Gains["AO_1001"] != -6 || cfg.Gains["APR_1001"] != 3 {
		t.Fatalf("unexpected gains: %v", cfg.Gains)
	}
	if cfg.Logging.Format != "json" || cfg.Logging.Level != "debug" {
		t.Fatalf("unexpected logging: %+v", cfg.Logging)
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"unknown layout", "[render]\nlayout = \"7+1+4\"\n", "render.layout"},
		{"log format", "[logging]\nformat = \"xml\"\n", "logging.format"},
		{"log level", "[logging]\nlevel = \"trace\"\n", "logging.level"},
		{"infinite gain", "[gains]\nAO_1001 = inf\n", "gains.AO_1001"},
		{"unknown key", "[render]\nlayuot = \"0+2+0\"\n", "parse config"},
		{"bad toml", "[render\n", "parse config"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.toml")
			if err := os.WriteFile(path, []byte(tt.content), 0o644); err != nil {
				t.Fatal(err)
			}

			_, _, _, err := config.Load(path)
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("error %q does not mention %q", err, tt.want)
			}
		})
	}
}

func TestUnknownLayoutWrapsEarError(t *testing.T) {
	cfg := config.Default()
	cfg.Render.Layout = "nope"

	if err := cfg.Validate(); !errors.Is(err, ear.ErrUnknownLayout) {
		t.Fatalf("Validate error = %v, want ErrUnknownLayout", err)
	}
}

func TestCreateSampleLoads(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	path := filepath.Join(t.TempDir(), "nested", "config.toml")

	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample: %v", err)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var decoded map[string]any
	if err := toml.Unmarshal(raw, &decoded); err != nil {
		t.Fatalf("sample is not valid TOML: %v", err)
	}

	cfg, _, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load sample: %v", err)
	}
	if !exists {
		t.Fatal("expected sample to exist")
	}
	if cfg.Render.Layout != config.Default().Render.Layout {
		t.Fatalf("sample layout %q differs from default", cfg.Render.Layout)
	}
}

func TestEncodeRoundTrip(t *testing.T) {
	cfg := config.Default()
	cfg.Gains["AO_1001"] = -3

	var buf bytes.Buffer
	if err := cfg.Encode(&buf); err != nil {
		t.Fatalf("Encode: %v", err)
	}

	var back config.Config
	if err := toml.Unmarshal(buf.Bytes(), &back); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if back.Render.Layout != cfg.Render.Layout || back.Gains["AO_1001"] != -3 {
		t.Fatalf("round trip mismatch: %+v", back)
	}
}
