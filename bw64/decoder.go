package bw64

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"time"

	"github.com/go-audio/audio"
	"github.com/go-audio/riff"
)

var (
	// ErrPCMDataNotFound is returned when PCM data chunk is not found.
	ErrPCMDataNotFound = errors.New("PCM data not found")
	// ErrUnsupportedFormat is returned for sample encodings the package
	// can't decode or encode.
	ErrUnsupportedFormat = errors.New("unsupported sample format")

	errNilChunkOrParser       = errors.New("nil chunk/parser pointer")
	errUnhandledByteDepth     = errors.New("unhandled byte depth")
	errUnhandledFloatBitDepth = errors.New("unhandled float bit depth")
)

// Decoder walks a BW64 file chunk by chunk and decodes its PCM data.
type Decoder struct {
	r      io.ReadSeeker
	parser *riff.Parser
	chunks *ChunkRegistry

	NumChans   uint16
	BitDepth   uint16
	SampleRate uint32

	AvgBytesPerSec uint32
	// WavAudioFormat is the effective format tag, with
	// WAVE_FORMAT_EXTENSIBLE resolved through its sub-format.
	WavAudioFormat uint16
	FmtChunk       *FmtChunk

	err error
	// PCMSize is the unpadded size of the data chunk in bytes.
	PCMSize         int
	pcmRemaining    int
	pcmDataAccessed bool
	// pcmChunk is available so we can use the LimitReader
	PCMChunk *riff.Chunk

	Chna        *ChnaChunk
	Axml        *AXMLChunk
	Bext        *BroadcastExtension
	FactSamples uint32
	// ChunkIDs lists every top-level chunk in file order, filled by
	// ReadMetadata.
	ChunkIDs [][4]byte
	// UnknownChunks stores non-core chunks for optional round-trip writing.
	UnknownChunks []RawChunk

	unknownChunkOrder int
	lastChunkSize     uint32
	scratch           []byte
}

// NewDecoder creates a decoder for the passed reader.
// Note that the reader doesn't get rewinded as the container is processed.
func NewDecoder(r io.ReadSeeker) *Decoder {
	return &Decoder{
		r:      r,
		parser: riff.New(r),
		chunks: newDefaultChunkRegistry(),
	}
}

// Rewind moves the decoder back to the first PCM frame.
func (d *Decoder) Rewind() error {
	err := d.reset()
	if err != nil {
		return err
	}

	err = d.FwdToPCM()
	if err != nil {
		return fmt.Errorf("failed to seek to the PCM data: %w", err)
	}

	return nil
}

func (d *Decoder) reset() error {
	_, err := d.r.Seek(0, io.SeekStart)
	if err != nil {
		return fmt.Errorf("failed to seek back to the start %w", err)
	}
	// we have to user a new parser since it's read only and can't be seeked
	d.parser = riff.New(d.r)
	d.pcmDataAccessed = false
	d.PCMChunk = nil
	d.pcmRemaining = 0
	d.err = nil
	d.NumChans = 0
	d.FmtChunk = nil

	return nil
}

// Err returns the first non-EOF error that was encountered by the Decoder.
func (d *Decoder) Err() error {
	if errors.Is(d.err, io.EOF) {
		return nil
	}

	return d.err
}

// EOF returns positively once every PCM frame has been consumed.
func (d *Decoder) EOF() bool {
	if d == nil || errors.Is(d.err, io.EOF) {
		return true
	}

	return d.pcmDataAccessed && d.pcmRemaining < d.blockAlign()
}

// IsValidFile verifies that the file is valid/readable.
func (d *Decoder) IsValidFile() bool {
	d.err = d.readHeaders()
	if d.err != nil {
		return false
	}

	if d.NumChans < 1 || d.BitDepth < 8 {
		return false
	}

	_, err := sampleDecodeFunc(int(d.BitDepth), d.WavAudioFormat)

	return err == nil
}

// ReadMetadata scans the whole file, decoding the chunks the registry knows
// and capturing the others raw. The reader is left past the end of the file;
// call Rewind before reading samples.
func (d *Decoder) ReadMetadata() error {
	err := d.reset()
	if err != nil {
		return err
	}

	d.err = d.readHeaders()
	if d.err != nil {
		return d.err
	}

	d.ChunkIDs = [][4]byte{riff.FmtID}
	d.UnknownChunks = nil
	d.unknownChunkOrder = 0
	d.Chna, d.Axml, d.Bext = nil, nil, nil

	seenData := false

	for {
		chunk, err := d.NextChunk()
		if err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
				d.err = nil
				break
			}

			return err
		}

		d.unknownChunkOrder++

		switch chunk.ID {
		case riff.FmtID:
			// already decoded by readHeaders
			chunk.Drain()

			continue
		case riff.DataFormatID:
			seenData = true
			d.PCMSize = int(d.lastChunkSize)
			d.ChunkIDs = append(d.ChunkIDs, chunk.ID)

			chunk.Drain()

			continue
		}

		d.ChunkIDs = append(d.ChunkIDs, chunk.ID)

		handled, handleErr := d.decodeChunkViaRegistry(chunk)
		if handleErr != nil && !errors.Is(handleErr, io.EOF) {
			d.err = handleErr
			return handleErr
		}

		if !handled {
			d.captureUnknownChunk(chunk, !seenData)
		}
	}

	if !seenData {
		return ErrPCMDataNotFound
	}

	return nil
}

// FwdToPCM forwards the underlying reader until the start of the PCM chunk.
// If the PCM chunk was already read, no data will be found (you need to rewind).
func (d *Decoder) FwdToPCM() error {
	if d == nil {
		return ErrPCMDataNotFound
	}

	d.err = d.readHeaders()
	if d.err != nil {
		return d.err
	}

	var chunk *riff.Chunk
	for d.err == nil {
		chunk, d.err = d.NextChunk()
		if d.err != nil {
			if errors.Is(d.err, io.EOF) {
				return ErrPCMDataNotFound
			}

			return d.err
		}

		if chunk.ID == riff.DataFormatID {
			d.PCMSize = int(d.lastChunkSize)
			d.pcmRemaining = d.PCMSize
			d.PCMChunk = chunk

			break
		}

		handled, err := d.decodeChunkViaRegistry(chunk)
		if err != nil {
			d.err = err
			return d.err
		}

		if handled {
			continue
		}

		chunk.Drain()
	}

	d.pcmDataAccessed = true

	return nil
}

// ReadFrames decodes up to len(dst)/NumChans interleaved frames into dst,
// normalised to [-1, 1). It returns the number of whole frames decoded; a
// short count means the data chunk is exhausted.
func (d *Decoder) ReadFrames(dst []float64) (int, error) {
	if !d.pcmDataAccessed {
		err := d.FwdToPCM()
		if err != nil {
			return 0, err
		}
	}

	if d.PCMChunk == nil {
		return 0, ErrPCMChunkNotFound
	}

	decodeF, err := sampleDecodeFunc(int(d.BitDepth), d.WavAudioFormat)
	if err != nil {
		return 0, fmt.Errorf("could not get sample decode func %w", err)
	}

	chans := int(d.NumChans)
	align := d.blockAlign()
	bPerSample := bytesPerSample(int(d.BitDepth))

	frames := min(len(dst)/chans, d.pcmRemaining/align)
	if frames == 0 {
		return 0, nil
	}

	size := frames * align
	if cap(d.scratch) < size {
		d.scratch = make([]byte, size)
	}

	raw := d.scratch[:size]

	n, err := io.ReadFull(d.PCMChunk, raw)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) {
		d.err = err
		return 0, fmt.Errorf("failed to read PCM data: %w", err)
	}

	// a truncated file ends on the last whole frame
	frames = n / align
	if n < size {
		d.pcmRemaining = 0
	} else {
		d.pcmRemaining -= n
	}

	for i := range frames * chans {
		off := i * bPerSample
		dst[i] = decodeF(raw[off : off+bPerSample])
	}

	return frames, nil
}

// Format returns the audio format of the decoded content.
func (d *Decoder) Format() *audio.Format {
	if d == nil {
		return nil
	}

	return &audio.Format{
		NumChannels: int(d.NumChans),
		SampleRate:  int(d.SampleRate),
	}
}

// FrameCount returns the number of frames held in the data chunk.
func (d *Decoder) FrameCount() int {
	align := d.blockAlign()
	if align == 0 {
		return 0
	}

	return d.PCMSize / align
}

// Duration returns the playing time of the data chunk.
func (d *Decoder) Duration() time.Duration {
	if d == nil || d.SampleRate == 0 {
		return 0
	}

	return time.Duration(float64(d.FrameCount()) / float64(d.SampleRate) * float64(time.Second))
}

func (d *Decoder) blockAlign() int {
	return int(d.NumChans) * bytesPerSample(int(d.BitDepth))
}

// NextChunk returns the next available chunk.
func (d *Decoder) NextChunk() (*riff.Chunk, error) {
	if d.err = d.readHeaders(); d.err != nil {
		d.err = fmt.Errorf("failed to read header - %w", d.err)
		return nil, d.err
	}

	var (
		id   [4]byte
		size uint32
	)

	id, size, d.err = d.parser.IDnSize()
	if d.err != nil {
		return nil, d.err
	}

	d.lastChunkSize = size

	// all RIFF chunks (including WAVE "data" chunks) must be word aligned.
	// The "data" chunk header's size doesn't include the padding byte.
	if size%2 == 1 {
		size++
	}

	chnk := &riff.Chunk{
		ID:   id,
		Size: int(size),
		R:    io.LimitReader(d.r, int64(size)),
	}

	return chnk, nil
}

// String implements the Stringer interface.
func (d *Decoder) String() string {
	return fmt.Sprintf("%d channels @ %d Hz / %d bits, format 0x%04X, %d frames",
		d.NumChans, d.SampleRate, d.BitDepth, d.WavAudioFormat, d.FrameCount())
}

// readHeaders is safe to call multiple times.
func (d *Decoder) readHeaders() error {
	if d == nil || d.NumChans > 0 {
		return nil
	}

	id, size, err := d.parser.IDnSize()
	if err != nil {
		return fmt.Errorf("failed to read chunk ID and size: %w", err)
	}

	d.parser.ID = id
	if d.parser.ID != riff.RiffID {
		return fmt.Errorf("%s - %w", d.parser.ID, riff.ErrFmtNotSupported)
	}

	d.parser.Size = size

	err = binary.Read(d.r, binary.BigEndian, &d.parser.Format)
	if err != nil {
		return fmt.Errorf("failed to read format: %w", err)
	}

	if d.parser.Format != riff.WavFormatID {
		return fmt.Errorf("%s - %w", d.parser.Format, riff.ErrFmtNotSupported)
	}

	var (
		chunk       *riff.Chunk
		rewindBytes int64
	)

	for {
		chunk, err = d.parser.NextChunk()
		if err != nil {
			return fmt.Errorf("fmt chunk not found: %w", err)
		}

		if chunk.ID == riff.FmtID {
			return d.processFmtChunk(chunk, rewindBytes)
		}

		// chunks ahead of fmt are picked up again once we rewind
		rewindBytes += int64(chunk.Size) + 8

		_, err = io.CopyN(io.Discard, d.r, int64(chunk.Size))
		if err != nil {
			return fmt.Errorf("failed to skip chunk %s: %w", chunk.ID, err)
		}
	}
}

func (d *Decoder) processFmtChunk(chunk *riff.Chunk, rewindBytes int64) error {
	fmtChunk, err := decodeWavHeaderChunk(chunk, d.parser)
	if err != nil {
		return fmt.Errorf("failed to decode fmt chunk: %w", err)
	}

	d.FmtChunk = fmtChunk
	d.NumChans = d.parser.NumChannels
	d.BitDepth = d.parser.BitsPerSample
	d.SampleRate = d.parser.SampleRate
	d.WavAudioFormat = d.parser.WavAudioFormat
	d.AvgBytesPerSec = d.parser.AvgBytesPerSec

	if d.NumChans == 0 {
		return fmt.Errorf("%w: zero channels", ErrUnsupportedFormat)
	}

	if rewindBytes > 0 {
		_, err := d.r.Seek(-(rewindBytes + int64(chunk.Size) + 8), io.SeekCurrent)
		if err != nil {
			return fmt.Errorf("failed to rewind to the first chunk: %w", err)
		}
	}

	return nil
}

func (d *Decoder) decodeChunkViaRegistry(chunk *riff.Chunk) (bool, error) {
	if d == nil || chunk == nil {
		return false, nil
	}

	if d.chunks == nil {
		d.chunks = newDefaultChunkRegistry()
	}

	return d.chunks.Decode(d, chunk)
}

func decodeWavHeaderChunk(chunk *riff.Chunk, parser *riff.Parser) (*FmtChunk, error) {
	if chunk == nil || parser == nil {
		return nil, errNilChunkOrParser
	}

	fmtChunk := &FmtChunk{}

	err := chunk.ReadLE(&fmtChunk.FormatTag)
	if err != nil {
		return nil, fmt.Errorf("failed to read wav format: %w", err)
	}

	err = chunk.ReadLE(&fmtChunk.NumChannels)
	if err != nil {
		return nil, fmt.Errorf("failed to read channels: %w", err)
	}

	err = chunk.ReadLE(&fmtChunk.SampleRate)
	if err != nil {
		return nil, fmt.Errorf("failed to read sample rate: %w", err)
	}

	err = chunk.ReadLE(&fmtChunk.AvgBytesPerSec)
	if err != nil {
		return nil, fmt.Errorf("failed to read avg bytes/sec: %w", err)
	}

	err = chunk.ReadLE(&fmtChunk.BlockAlign)
	if err != nil {
		return nil, fmt.Errorf("failed to read block align: %w", err)
	}

	err = chunk.ReadLE(&fmtChunk.BitsPerSample)
	if err != nil {
		return nil, fmt.Errorf("failed to read bit depth: %w", err)
	}

	parser.NumChannels = fmtChunk.NumChannels
	parser.SampleRate = fmtChunk.SampleRate
	parser.AvgBytesPerSec = fmtChunk.AvgBytesPerSec
	parser.BlockAlign = fmtChunk.BlockAlign
	parser.BitsPerSample = fmtChunk.BitsPerSample
	parser.WavAudioFormat = fmtChunk.FormatTag

	if chunk.Size <= 16 {
		return fmtChunk, nil
	}

	var extraSize uint16

	err = chunk.ReadLE(&extraSize)
	if err != nil {
		return nil, fmt.Errorf("failed to read fmt extension size: %w", err)
	}

	fmtChunk.ExtraData = make([]byte, extraSize)
	if extraSize > 0 {
		err := chunk.ReadLE(&fmtChunk.ExtraData)
		if err != nil {
			return nil, fmt.Errorf("failed to read fmt extension data: %w", err)
		}
	}

	if fmtChunk.FormatTag != FormatExtensible || extraSize < 22 {
		chunk.Drain()

		return fmtChunk, nil
	}

	ext := &FmtExtensible{}
	ext.ValidBitsPerSample = binary.LittleEndian.Uint16(fmtChunk.ExtraData[0:2])
	ext.ChannelMask = binary.LittleEndian.Uint32(fmtChunk.ExtraData[2:6])
	copy(ext.SubFormat[:], fmtChunk.ExtraData[6:22])

	if len(fmtChunk.ExtraData) > 22 {
		ext.ExtraData = append(ext.ExtraData, fmtChunk.ExtraData[22:]...)
	}

	fmtChunk.Extensible = ext
	parser.WavAudioFormat = fmtChunk.EffectiveFormatTag()

	chunk.Drain()

	return fmtChunk, nil
}

func (d *Decoder) captureUnknownChunk(chunk *riff.Chunk, beforeData bool) {
	if d == nil || chunk == nil {
		return
	}

	data, err := io.ReadAll(chunk)
	if err != nil {
		d.err = fmt.Errorf("failed to read unknown chunk %s: %w", chunk.ID, err)

		return
	}

	chunk.Drain()

	if int(d.lastChunkSize) < len(data) {
		data = data[:d.lastChunkSize]
	}

	d.UnknownChunks = append(d.UnknownChunks, RawChunk{
		ID:         chunk.ID,
		Size:       uint32(len(data)),
		Data:       data,
		Order:      d.unknownChunkOrder,
		BeforeData: beforeData,
	})
}

// sampleDecodeFunc returns a function converting one little-endian sample
// into a normalised float. 8-bit samples are unsigned, all other integer
// widths are signed. IEEE float samples are passed through unclamped.
func sampleDecodeFunc(bitsPerSample int, wavFormat uint16) (func([]byte) float64, error) {
	switch wavFormat {
	case FormatIEEEFloat:
		switch bitsPerSample {
		case 32:
			return func(b []byte) float64 {
				return float64(math.Float32frombits(binary.LittleEndian.Uint32(b)))
			}, nil
		case 64:
			return func(b []byte) float64 {
				return math.Float64frombits(binary.LittleEndian.Uint64(b))
			}, nil
		default:
			return nil, fmt.Errorf("%w: %d", errUnhandledFloatBitDepth, bitsPerSample)
		}
	case FormatPCM:
	default:
		return nil, fmt.Errorf("%w: format tag 0x%04X", ErrUnsupportedFormat, wavFormat)
	}

	storageBitsPerSample := bytesPerSample(bitsPerSample) * 8

	switch storageBitsPerSample {
	case 8:
		return func(b []byte) float64 {
			return normalizePCMInt(int(b[0]), 8)
		}, nil
	case 16:
		return func(b []byte) float64 {
			return normalizePCMInt(int(int16(binary.LittleEndian.Uint16(b))), 16)
		}, nil
	case 24:
		return func(b []byte) float64 {
			return normalizePCMInt(int(audio.Int24LETo32(b[:3])), 24)
		}, nil
	case 32:
		return func(b []byte) float64 {
			return normalizePCMInt(int(int32(binary.LittleEndian.Uint32(b))), 32)
		}, nil
	default:
		return nil, fmt.Errorf("%w: %d", errUnhandledByteDepth, bitsPerSample)
	}
}
