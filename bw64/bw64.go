package bw64

import "errors"

var (
	// CIDChna is the chunk ID of the ADM track-identity chunk.
	CIDChna = [4]byte{'c', 'h', 'n', 'a'}
	// CIDAxml is the chunk ID of the ADM XML chunk.
	CIDAxml = [4]byte{'a', 'x', 'm', 'l'}
	// CIDBext is the chunk ID for the broadcast extension chunk.
	CIDBext = [4]byte{'b', 'e', 'x', 't'}
	// CIDFact is the chunk ID for the fact chunk.
	CIDFact = [4]byte{'f', 'a', 'c', 't'}
	// CIDData is the chunk ID of the PCM data chunk.
	CIDData = [4]byte{'d', 'a', 't', 'a'}
	// CIDFmt is the chunk ID of the format chunk.
	CIDFmt = [4]byte{'f', 'm', 't', ' '}

	// ErrPCMChunkNotFound indicates a bad audio file without data.
	ErrPCMChunkNotFound = errors.New("PCM Chunk not found in audio file")
	// ErrMissingChunk is returned when a chunk required by the caller is absent.
	ErrMissingChunk = errors.New("missing chunk")
)

// FourCC converts a four character string into a chunk ID. Shorter strings
// are padded with spaces, like the fmt chunk ID.
func FourCC(s string) [4]byte {
	id := [4]byte{' ', ' ', ' ', ' '}
	copy(id[:], s)

	return id
}

func nullTermStr(b []byte) string {
	return string(b[:clen(b)])
}

func clen(num []byte) int {
	for i := range num {
		if num[i] == 0 {
			return i
		}
	}

	return len(num)
}
