package bw64

import (
	"bytes"
	"fmt"
	"io"

	"github.com/go-audio/riff"
)

// AXMLChunk holds the raw ADM XML document.
type AXMLChunk struct {
	Data []byte
}

// NewAXMLChunk wraps an XML document.
func NewAXMLChunk(xml []byte) *AXMLChunk {
	return &AXMLChunk{Data: append([]byte(nil), xml...)}
}

// String returns the XML text without trailing padding.
func (c *AXMLChunk) String() string {
	if c == nil {
		return ""
	}

	return string(bytes.TrimRight(c.Data, "\x00"))
}

// Reader returns a reader over the XML text.
func (c *AXMLChunk) Reader() io.Reader {
	if c == nil {
		return bytes.NewReader(nil)
	}

	return bytes.NewReader(bytes.TrimRight(c.Data, "\x00"))
}

// DecodeAXMLChunk reads an axml chunk into the decoder.
func DecodeAXMLChunk(d *Decoder, ch *riff.Chunk) error {
	if ch == nil {
		return errNilChunk
	}

	if d == nil {
		return errNilDecoder
	}

	buf := make([]byte, ch.Size)

	n, err := io.ReadFull(ch, buf)
	if err != nil && err != io.ErrUnexpectedEOF {
		return fmt.Errorf("failed to read the axml chunk - %w", err)
	}

	ch.Drain()

	d.Axml = &AXMLChunk{Data: buf[:n]}

	return nil
}
