package bw64

import (
	"errors"
	"fmt"
	"os"

	"github.com/go-audio/audio"
)

var errBadWriterOptions = errors.New("invalid writer options")

// WriterOptions describes the file Create produces.
type WriterOptions struct {
	Channels   int
	SampleRate int
	BitDepth   int
	// FormatTag is FormatPCM or FormatIEEEFloat.
	FormatTag  uint16
	Extensible bool

	Chna *ChnaChunk
	Axml *AXMLChunk
	Bext *BroadcastExtension
}

func (o WriterOptions) validate() error {
	if o.Channels <= 0 || o.SampleRate <= 0 {
		return fmt.Errorf("%w: %d channels at %d Hz", errBadWriterOptions, o.Channels, o.SampleRate)
	}

	switch o.FormatTag {
	case FormatPCM:
		switch o.BitDepth {
		case 8, 16, 24, 32:
			return nil
		}
	case FormatIEEEFloat:
		switch o.BitDepth {
		case 32, 64:
			return nil
		}
	}

	return fmt.Errorf("%w: format 0x%04X at %d bits", ErrUnsupportedFormat, o.FormatTag, o.BitDepth)
}

// Writer streams interleaved blocks into a new BW64 file. The chna and bext
// chunks are placed ahead of the samples, axml after them.
type Writer struct {
	f   *os.File
	enc *Encoder
}

// Create creates or truncates the file at path.
func Create(path string, opts WriterOptions) (*Writer, error) {
	err := opts.validate()
	if err != nil {
		return nil, err
	}

	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", path, err)
	}

	enc := NewEncoder(f, opts.SampleRate, opts.BitDepth, opts.Channels, int(opts.FormatTag))
	enc.Extensible = opts.Extensible
	enc.Chna = opts.Chna
	enc.Axml = opts.Axml
	enc.Bext = opts.Bext

	return &Writer{f: f, enc: enc}, nil
}

// WriteBlock writes the first frames frames of buf.
func (w *Writer) WriteBlock(buf *audio.FloatBuffer, frames int) error {
	if buf == nil {
		return errNilBuffer
	}

	n := frames * w.enc.NumChans
	if n > len(buf.Data) {
		return fmt.Errorf("%w: %d frames requested, buffer holds %d samples", errMisalignedBuffer, frames, len(buf.Data))
	}

	return w.enc.WriteSamples(buf.Data[:n])
}

// Frames returns the number of frames written so far.
func (w *Writer) Frames() int { return w.enc.Frames() }

// Close finalises the headers and closes the file.
func (w *Writer) Close() error {
	if w == nil || w.f == nil {
		return nil
	}

	err := w.enc.Close()
	cerr := w.f.Close()
	w.f = nil

	if err != nil {
		return err
	}

	return cerr
}

// Abort closes the file and removes it.
func (w *Writer) Abort() error {
	if w == nil || w.f == nil {
		return nil
	}

	name := w.f.Name()
	w.f.Close()
	w.f = nil

	return os.Remove(name)
}
