package bw64

import (
	"errors"
	"fmt"

	"github.com/go-audio/riff"
)

var errChunkEncodeNotSupported = errors.New("chunk encode not supported")

// ChunkHandler is a typed handler for RIFF chunks.
// Encode is optional and may return errChunkEncodeNotSupported. It is called
// twice per file, once before the data chunk and once after it, and must only
// write when beforeData matches the chunk's placement.
type ChunkHandler interface {
	CanHandle(chunkID [4]byte) bool
	Decode(d *Decoder, ch *riff.Chunk) error
	Encode(e *Encoder, beforeData bool) error
}

// ChunkRegistry resolves chunks to handlers.
type ChunkRegistry struct {
	handlers []ChunkHandler
}

func newDefaultChunkRegistry() *ChunkRegistry {
	return &ChunkRegistry{
		handlers: []ChunkHandler{
			&factChunkHandler{},
			&bextChunkHandler{},
			&chnaChunkHandler{},
			&axmlChunkHandler{},
		},
	}
}

// Register appends a handler to the registry.
func (r *ChunkRegistry) Register(handler ChunkHandler) {
	if r == nil || handler == nil {
		return
	}

	r.handlers = append(r.handlers, handler)
}

// Decode dispatches a chunk to the first matching handler.
func (r *ChunkRegistry) Decode(dec *Decoder, chnk *riff.Chunk) (bool, error) {
	if r == nil || chnk == nil {
		return false, nil
	}

	for _, handler := range r.handlers {
		if handler.CanHandle(chnk.ID) {
			err := handler.Decode(dec, chnk)
			if err != nil {
				return true, fmt.Errorf("chunk handler decode failed: %w", err)
			}

			return true, nil
		}
	}

	return false, nil
}

// Encode gives every handler the chance to write its chunk at the given
// position.
func (r *ChunkRegistry) Encode(enc *Encoder, beforeData bool) error {
	if r == nil {
		return nil
	}

	for _, handler := range r.handlers {
		err := handler.Encode(enc, beforeData)
		if err == nil || errors.Is(err, errChunkEncodeNotSupported) {
			continue
		}

		return fmt.Errorf("failed to encode chunk with %T: %w", handler, err)
	}

	return nil
}

type factChunkHandler struct{}

func (h *factChunkHandler) CanHandle(chunkID [4]byte) bool {
	return chunkID == CIDFact
}

func (h *factChunkHandler) Decode(dec *Decoder, chunk *riff.Chunk) error {
	if dec == nil || chunk == nil {
		return nil
	}

	var sampleCount uint32

	err := chunk.ReadLE(&sampleCount)
	if err == nil {
		dec.FactSamples = sampleCount
	}

	chunk.Drain()

	return nil
}

func (h *factChunkHandler) Encode(_ *Encoder, _ bool) error {
	return errChunkEncodeNotSupported
}

type bextChunkHandler struct{}

func (h *bextChunkHandler) CanHandle(chunkID [4]byte) bool {
	return chunkID == CIDBext
}

func (h *bextChunkHandler) Decode(d *Decoder, ch *riff.Chunk) error {
	return DecodeBroadcastChunk(d, ch)
}

func (h *bextChunkHandler) Encode(e *Encoder, beforeData bool) error {
	if e == nil || e.Bext == nil || !beforeData {
		return nil
	}

	return e.writeRawChunk(RawChunk{ID: CIDBext, Data: encodeBroadcastChunk(e.Bext)})
}

type chnaChunkHandler struct{}

func (h *chnaChunkHandler) CanHandle(chunkID [4]byte) bool {
	return chunkID == CIDChna
}

func (h *chnaChunkHandler) Decode(d *Decoder, ch *riff.Chunk) error {
	return DecodeChnaChunk(d, ch)
}

func (h *chnaChunkHandler) Encode(e *Encoder, beforeData bool) error {
	if e == nil || e.Chna == nil || !beforeData {
		return nil
	}

	return e.writeRawChunk(RawChunk{ID: CIDChna, Data: encodeChnaChunk(e.Chna)})
}

type axmlChunkHandler struct{}

func (h *axmlChunkHandler) CanHandle(chunkID [4]byte) bool {
	return chunkID == CIDAxml
}

func (h *axmlChunkHandler) Decode(d *Decoder, ch *riff.Chunk) error {
	return DecodeAXMLChunk(d, ch)
}

// axml goes after the PCM data so that rewriting the document never moves
// the samples.
func (h *axmlChunkHandler) Encode(e *Encoder, beforeData bool) error {
	if e == nil || e.Axml == nil || beforeData {
		return nil
	}

	return e.writeRawChunk(RawChunk{ID: CIDAxml, Data: e.Axml.Data})
}
