package bw64

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/go-audio/riff"
)

const (
	chnaHeaderLen   = 4
	chnaEntryLen    = 40
	chnaUIDLen      = 12
	chnaTrackRefLen = 14
	chnaPackRefLen  = 11
)

var errChnaTruncated = errors.New("truncated chna chunk")

// AudioID is one chna entry: physical track number (1-based) and the ADM
// identities bound to it.
type AudioID struct {
	TrackIndex uint16
	UID        string
	TrackRef   string
	PackRef    string
}

// ChnaChunk is the ADM track-identity chunk.
type ChnaChunk struct {
	AudioIDs []AudioID
}

// NumTracks returns the number of distinct physical tracks referenced.
func (c *ChnaChunk) NumTracks() int {
	if c == nil {
		return 0
	}

	seen := make(map[uint16]struct{}, len(c.AudioIDs))
	for _, id := range c.AudioIDs {
		seen[id.TrackIndex] = struct{}{}
	}

	return len(seen)
}

// NumUIDs returns the number of entries.
func (c *ChnaChunk) NumUIDs() int {
	if c == nil {
		return 0
	}

	return len(c.AudioIDs)
}

// Lookup returns the entry carrying the given track UID.
func (c *ChnaChunk) Lookup(uid string) (AudioID, bool) {
	if c == nil {
		return AudioID{}, false
	}

	for _, id := range c.AudioIDs {
		if id.UID == uid {
			return id, true
		}
	}

	return AudioID{}, false
}

func (c *ChnaChunk) Clone() *ChnaChunk {
	if c == nil {
		return nil
	}

	return &ChnaChunk{AudioIDs: append([]AudioID(nil), c.AudioIDs...)}
}

// DecodeChnaChunk decodes a chna chunk into the decoder.
func DecodeChnaChunk(d *Decoder, ch *riff.Chunk) error {
	if ch == nil {
		return errNilChunk
	}

	if d == nil {
		return errNilDecoder
	}

	buf := make([]byte, ch.Size)

	n, err := io.ReadFull(ch, buf)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) {
		return fmt.Errorf("failed to read the chna chunk - %w", err)
	}

	ch.Drain()

	chna, err := parseChna(buf[:n])
	if err != nil {
		return err
	}

	d.Chna = chna

	return nil
}

func parseChna(buf []byte) (*ChnaChunk, error) {
	if len(buf) < chnaHeaderLen {
		return nil, errChnaTruncated
	}

	numUIDs := int(binary.LittleEndian.Uint16(buf[2:4]))
	if len(buf) < chnaHeaderLen+numUIDs*chnaEntryLen {
		return nil, fmt.Errorf("%w: %d entries announced, %d bytes available", errChnaTruncated, numUIDs, len(buf))
	}

	chna := &ChnaChunk{AudioIDs: make([]AudioID, 0, numUIDs)}

	for i := range numUIDs {
		entry := buf[chnaHeaderLen+i*chnaEntryLen:]
		trackIndex := binary.LittleEndian.Uint16(entry[0:2])
		// zeroed slots are padding reserved for later use
		if trackIndex == 0 {
			continue
		}

		offset := 2
		field := func(n int) string {
			s := nullTermStr(entry[offset : offset+n])
			offset += n

			return strings.TrimSpace(s)
		}

		chna.AudioIDs = append(chna.AudioIDs, AudioID{
			TrackIndex: trackIndex,
			UID:        field(chnaUIDLen),
			TrackRef:   field(chnaTrackRefLen),
			PackRef:    field(chnaPackRefLen),
		})
	}

	return chna, nil
}

func encodeChnaChunk(chna *ChnaChunk) []byte {
	if chna == nil {
		return nil
	}

	payload := bytes.NewBuffer(make([]byte, 0, chnaHeaderLen+len(chna.AudioIDs)*chnaEntryLen))

	_ = binary.Write(payload, binary.LittleEndian, uint16(chna.NumTracks()))
	_ = binary.Write(payload, binary.LittleEndian, uint16(chna.NumUIDs()))

	writeFixedString := func(s string, n int) {
		raw := make([]byte, n)
		copy(raw, s)
		payload.Write(raw)
	}

	for _, id := range chna.AudioIDs {
		_ = binary.Write(payload, binary.LittleEndian, id.TrackIndex)
		writeFixedString(id.UID, chnaUIDLen)
		writeFixedString(id.TrackRef, chnaTrackRefLen)
		writeFixedString(id.PackRef, chnaPackRefLen)
		payload.WriteByte(0)
	}

	return payload.Bytes()
}
