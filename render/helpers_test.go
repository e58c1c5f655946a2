package render

import (
	"fmt"
	"path/filepath"
	"strings"
	"testing"

	"github.com/cwbudde/admrender/bw64"
)

const testRate = 48000

// admXML wraps audioFormatExtended children in an ebuCoreMain document.
func admXML(body string) string {
	return `<?xml version="1.0" encoding="UTF-8"?>
<ebuCoreMain xmlns="urn:ebu:metadata-schema:ebuCore_2014"><coreMetadata><format><audioFormatExtended>
` + body + `
</audioFormatExtended></format></coreMetadata></ebuCoreMain>`
}

func trackUID(n int, trackFormat string) string {
	if trackFormat == "" {
		return fmt.Sprintf(`<audioTrackUID UID="ATU_%08X"/>`, n)
	}

	return fmt.Sprintf(`<audioTrackUID UID="ATU_%08X"><audioTrackFormatIDRef>%s</audioTrackFormatIDRef></audioTrackUID>`, n, trackFormat)
}

func object(id, name, pack string, uids ...int) string {
	var b strings.Builder

	fmt.Fprintf(&b, `<audioObject audioObjectID="%s" audioObjectName="%s">`, id, name)
	if pack != "" {
		fmt.Fprintf(&b, `<audioPackFormatIDRef>%s</audioPackFormatIDRef>`, pack)
	}

	for _, u := range uids {
		fmt.Fprintf(&b, `<audioTrackUIDRef>ATU_%08X</audioTrackUIDRef>`, u)
	}

	b.WriteString(`</audioObject>`)

	return b.String()
}

// dialogueProgramme is a programme with one stereo object on tracks 1-2.
var dialogueProgramme = admXML(`
<audioProgramme audioProgrammeID="APR_1001" audioProgrammeName="Main Mix"><audioContentIDRef>ACO_1001</audioContentIDRef></audioProgramme>
<audioContent audioContentID="ACO_1001" audioContentName="Dialogue"><audioObjectIDRef>AO_1001</audioObjectIDRef></audioContent>
` + object("AO_1001", "Dialogue", "AP_00010002", 1, 2) + `
` + trackUID(1, "AT_00010001_01") + `
` + trackUID(2, "AT_00010002_01"))

// sample is the deterministic test signal of channel ch at frame f.
func sample(f, ch int) float64 {
	return float64((f*7+ch*13)%97)/97 - 0.5 + float64(ch)*0.001
}

type inputFile struct {
	xml      string
	chna     *bw64.ChnaChunk
	bext     *bw64.BroadcastExtension
	channels int
	frames   int
	noAXML   bool
	// 64-bit float unless set
	formatTag uint16
	bitDepth  int
}

// writeInput writes a BW64 file holding the test signal.
func writeInput(t *testing.T, in inputFile) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "input.wav")
	opts := bw64.WriterOptions{
		Channels:   in.channels,
		SampleRate: testRate,
		BitDepth:   64,
		FormatTag:  bw64.FormatIEEEFloat,
		Chna:       in.chna,
		Bext:       in.bext,
	}

	if in.formatTag != 0 {
		opts.FormatTag = in.formatTag
		opts.BitDepth = in.bitDepth
	}

	if !in.noAXML {
		opts.Axml = bw64.NewAXMLChunk([]byte(in.xml))
	}

	w, err := bw64.Create(path, opts)
	if err != nil {
		t.Fatalf("create input: %v", err)
	}

	buf := bw64.NewBlockBuffer(in.channels, in.frames)
	for f := range in.frames {
		for c := range in.channels {
			buf.Data[f*in.channels+c] = sample(f, c)
		}
	}

	err = w.WriteBlock(buf, in.frames)
	if err != nil {
		t.Fatalf("write input: %v", err)
	}

	err = w.Close()
	if err != nil {
		t.Fatalf("close input: %v", err)
	}

	return path
}

func openInput(t *testing.T, path string) *bw64.Reader {
	t.Helper()

	r, err := bw64.Open(path)
	if err != nil {
		t.Fatalf("open %s: %v", path, err)
	}

	t.Cleanup(func() { r.Close() })

	return r
}

func newRenderer(t *testing.T, in inputFile, opts Options) *Renderer {
	t.Helper()

	src := openInput(t, writeInput(t, in))
	if opts.OutputDir == "" {
		opts.OutputDir = t.TempDir()
	}

	r, err := New(src, opts)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	return r
}

// readAll returns every interleaved sample of the file at path.
func readAll(t *testing.T, path string) (*bw64.Reader, []float64) {
	t.Helper()

	r := openInput(t, path)
	buf := bw64.NewBlockBuffer(r.Channels(), 1024)

	var out []float64

	for !r.EOF() {
		n, err := r.ReadBlock(buf, 1024)
		if err != nil {
			t.Fatalf("read %s: %v", path, err)
		}

		if n == 0 {
			break
		}

		out = append(out, buf.Data...)
	}

	return r, out
}

func near(a, b float64) bool {
	d := a - b
	return d < 1e-12 && d > -1e-12
}
