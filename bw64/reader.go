package bw64

import (
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"time"

	"github.com/go-audio/audio"
)

// Reader gives block access to the samples of a BW64 file together with its
// ADM chunks. It is not safe for concurrent use.
type Reader struct {
	closer io.Closer
	dec    *Decoder
}

// Open opens the file at path and parses its chunk structure. The returned
// reader is positioned on the first PCM frame.
func Open(path string) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}

	r, err := NewReader(f)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	r.closer = f

	return r, nil
}

// NewReader parses the chunk structure of rs and positions the reader on the
// first PCM frame.
func NewReader(rs io.ReadSeeker) (*Reader, error) {
	dec := NewDecoder(rs)

	err := dec.ReadMetadata()
	if err != nil {
		return nil, err
	}

	_, err = sampleDecodeFunc(int(dec.BitDepth), dec.WavAudioFormat)
	if err != nil {
		return nil, err
	}

	err = dec.Rewind()
	if err != nil {
		return nil, err
	}

	return &Reader{dec: dec}, nil
}

// NewBlockBuffer allocates an interleaved buffer holding frames frames of
// channels channels.
func NewBlockBuffer(channels, frames int) *audio.FloatBuffer {
	return &audio.FloatBuffer{
		Format: &audio.Format{NumChannels: channels},
		Data:   make([]float64, channels*frames),
	}
}

func (r *Reader) Channels() int { return int(r.dec.NumChans) }
func (r *Reader) SampleRate() int { return int(r.dec.SampleRate) }
func (r *Reader) BitDepth() int { return int(r.dec.BitDepth) }

// FormatTag returns FormatPCM or FormatIEEEFloat, resolving
// WAVE_FORMAT_EXTENSIBLE files to their sub-format.
func (r *Reader) FormatTag() uint16 { return r.dec.WavAudioFormat }

// Extensible reports whether the fmt chunk uses WAVE_FORMAT_EXTENSIBLE.
func (r *Reader) Extensible() bool {
	return r.dec.FmtChunk != nil && r.dec.FmtChunk.FormatTag == FormatExtensible
}

func (r *Reader) FrameCount() int { return r.dec.FrameCount() }

func (r *Reader) Duration() time.Duration { return r.dec.Duration() }

// HasChunk reports whether a top-level chunk with the given ID exists.
func (r *Reader) HasChunk(id [4]byte) bool {
	return slices.Contains(r.dec.ChunkIDs, id)
}

// ChunkIDs lists the top-level chunks in file order.
func (r *Reader) ChunkIDs() [][4]byte {
	return slices.Clone(r.dec.ChunkIDs)
}

// AXML returns the ADM XML chunk, or nil.
func (r *Reader) AXML() *AXMLChunk { return r.dec.Axml }

// CHNA returns the track-identity chunk, or nil.
func (r *Reader) CHNA() *ChnaChunk { return r.dec.Chna }

// Bext returns the broadcast extension chunk, or nil.
func (r *Reader) Bext() *BroadcastExtension { return r.dec.Bext }

// UnknownChunks returns copies of the chunks the package doesn't decode.
func (r *Reader) UnknownChunks() []RawChunk { return cloneRawChunks(r.dec.UnknownChunks) }

// ReadBlock reads up to maxFrames frames into buf, growing it if needed, and
// returns the number of frames read. buf.Data is resliced to the frames
// read. Zero frames with a nil error means end of stream.
func (r *Reader) ReadBlock(buf *audio.FloatBuffer, maxFrames int) (int, error) {
	if buf == nil {
		return 0, errNilBuffer
	}

	chans := r.Channels()
	want := maxFrames * chans

	if cap(buf.Data) < want {
		buf.Data = make([]float64, want)
	}

	buf.Data = buf.Data[:want]
	if buf.Format == nil {
		buf.Format = &audio.Format{}
	}

	buf.Format.NumChannels = chans
	buf.Format.SampleRate = r.SampleRate()

	n, err := r.dec.ReadFrames(buf.Data)
	buf.Data = buf.Data[:n*chans]

	if err != nil {
		return n, err
	}

	return n, nil
}

// EOF reports whether every frame has been read.
func (r *Reader) EOF() bool { return r.dec.EOF() }

// Rewind positions the reader on the first PCM frame again.
func (r *Reader) Rewind() error { return r.dec.Rewind() }

// Close releases the underlying file when the reader was created by Open.
func (r *Reader) Close() error {
	if r == nil || r.closer == nil {
		return nil
	}

	err := r.closer.Close()
	r.closer = nil

	if err != nil && !errors.Is(err, os.ErrClosed) {
		return err
	}

	return nil
}
