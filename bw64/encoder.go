package bw64

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/go-audio/audio"
	"github.com/go-audio/riff"
)

var (
	// ErrFileTooLarge is returned when the output outgrows a 32-bit RIFF
	// container.
	ErrFileTooLarge = errors.New("file exceeds the 4 GiB RIFF limit")

	errNilBuffer               = errors.New("can't add a nil buffer")
	errAlreadyWroteHdr         = errors.New("already wrote header")
	errNilEncoder              = errors.New("can't write a nil encoder")
	errNilWriter               = errors.New("can't write to a nil writer")
	errUnsupportedFrameBitSize = errors.New("can't add frames of bit size")
	errMisalignedBuffer        = errors.New("sample count is not a multiple of the channel count")
)

// Encoder encodes interleaved float samples into a BW64 container.
type Encoder struct {
	w   io.WriteSeeker
	buf *bytes.Buffer

	SampleRate int
	BitDepth   int
	NumChans   int

	// WavAudioFormat is FormatPCM or FormatIEEEFloat.
	WavAudioFormat int
	// Extensible writes the fmt chunk as WAVE_FORMAT_EXTENSIBLE.
	Extensible bool

	Chna *ChnaChunk
	Axml *AXMLChunk
	Bext *BroadcastExtension
	// UnknownChunks contains non-core chunks to preserve on write.
	UnknownChunks []RawChunk

	chunks *ChunkRegistry

	WrittenBytes     int64
	frames           int
	pcmChunkStarted  bool
	pcmChunkSizePos  int64
	wroteHeader      bool // true if we've written the header out
	wroteUnknownPost bool
}

// NewEncoder creates a new encoder to create a new BW64 file.
func NewEncoder(w io.WriteSeeker, sampleRate, bitDepth, numChans, audioFormat int) *Encoder {
	return &Encoder{
		w:              w,
		buf:            &bytes.Buffer{},
		SampleRate:     sampleRate,
		BitDepth:       bitDepth,
		NumChans:       numChans,
		WavAudioFormat: audioFormat,
		chunks:         newDefaultChunkRegistry(),
	}
}

// AddLE serializes and adds the passed value using little endian.
func (e *Encoder) AddLE(src any) error {
	e.WrittenBytes += int64(binary.Size(src))

	err := binary.Write(e.w, binary.LittleEndian, src)
	if err != nil {
		return fmt.Errorf("failed to write little endian: %w", err)
	}

	return nil
}

// AddBE serializes and adds the passed value using big endian.
func (e *Encoder) AddBE(src any) error {
	e.WrittenBytes += int64(binary.Size(src))

	err := binary.Write(e.w, binary.BigEndian, src)
	if err != nil {
		return fmt.Errorf("failed to write big endian: %w", err)
	}

	return nil
}

// Write encodes and writes the passed buffer to the underlying writer.
// Don't forget to Close() the encoder or the file won't be valid.
func (e *Encoder) Write(buf *audio.FloatBuffer) error {
	if buf == nil {
		return errNilBuffer
	}

	return e.WriteSamples(buf.Data)
}

// WriteSamples encodes interleaved samples. len(samples) must be a multiple
// of NumChans.
func (e *Encoder) WriteSamples(samples []float64) error {
	if e.NumChans <= 0 || len(samples)%e.NumChans != 0 {
		return errMisalignedBuffer
	}

	err := e.startData()
	if err != nil {
		return err
	}

	return e.addSamples(samples)
}

func (e *Encoder) startData() error {
	if e.pcmChunkStarted {
		return nil
	}

	if !e.wroteHeader {
		err := e.writeHeader()
		if err != nil {
			return err
		}
	}

	err := e.chunks.Encode(e, true)
	if err != nil {
		return fmt.Errorf("error encoding pre-data chunks %w", err)
	}

	err = e.writeUnknownChunks(true)
	if err != nil {
		return fmt.Errorf("error encoding pre-data unknown chunks %w", err)
	}

	// sound header
	err = e.AddLE(riff.DataFormatID)
	if err != nil {
		return fmt.Errorf("error encoding sound header %w", err)
	}

	e.pcmChunkStarted = true

	// write a temporary chunksize
	e.pcmChunkSizePos = e.WrittenBytes

	err = e.AddLE(uint32(math.MaxUint32))
	if err != nil {
		return fmt.Errorf("%w when writing wav data chunk size header", err)
	}

	return nil
}

func (e *Encoder) addSamples(samples []float64) error {
	e.buf.Reset()

	var err error

	for _, val := range samples {
		if e.WavAudioFormat == FormatIEEEFloat {
			switch e.BitDepth {
			case 32:
				err = binary.Write(e.buf, binary.LittleEndian, float32(val))
			case 64:
				err = binary.Write(e.buf, binary.LittleEndian, val)
			default:
				return fmt.Errorf("%w: %d", errUnhandledFloatBitDepth, e.BitDepth)
			}

			if err != nil {
				return fmt.Errorf("failed to write float sample: %w", err)
			}

			continue
		}

		if e.WavAudioFormat != FormatPCM {
			return fmt.Errorf("%w: format tag 0x%04X", ErrUnsupportedFormat, e.WavAudioFormat)
		}

		switch e.BitDepth {
		case 8:
			err = e.buf.WriteByte(floatToPCMUint8(val))
		case 16:
			err = binary.Write(e.buf, binary.LittleEndian, int16(floatToPCMInt32(val, 16)))
		case 24:
			_, err = e.buf.Write(audio.Int32toInt24LEBytes(floatToPCMInt32(val, 24)))
		case 32:
			err = binary.Write(e.buf, binary.LittleEndian, floatToPCMInt32(val, 32))
		default:
			return fmt.Errorf("%w: %d", errUnsupportedFrameBitSize, e.BitDepth)
		}

		if err != nil {
			return fmt.Errorf("failed to write %d-bit sample: %w", e.BitDepth, err)
		}
	}

	if e.WrittenBytes+int64(e.buf.Len()) > math.MaxUint32 {
		return ErrFileTooLarge
	}

	n, err := e.w.Write(e.buf.Bytes())
	e.WrittenBytes += int64(n)

	if err != nil {
		return fmt.Errorf("failed to write buffer: %w", err)
	}

	e.frames += len(samples) / e.NumChans

	return nil
}

func (e *Encoder) writeHeader() error {
	if e == nil {
		return errNilEncoder
	}

	if e.wroteHeader {
		return errAlreadyWroteHdr
	}

	e.wroteHeader = true

	if e.w == nil {
		return errNilWriter
	}

	// riff ID
	err := e.AddLE(riff.RiffID)
	if err != nil {
		return err
	}
	// file size uint32, to update later on.
	err = e.AddLE(uint32(math.MaxUint32))
	if err != nil {
		return err
	}
	// wave headers
	err = e.AddLE(riff.WavFormatID)
	if err != nil {
		return err
	}
	// form
	err = e.AddLE(riff.FmtID)
	if err != nil {
		return err
	}

	return e.writeFmtChunk()
}

func (e *Encoder) blockAlign() int {
	return e.NumChans * bytesPerSample(e.BitDepth)
}

func (e *Encoder) buildFmtChunkForWrite() *FmtChunk {
	blockAlign := e.blockAlign()

	chunk := &FmtChunk{
		FormatTag:      uint16(e.WavAudioFormat),
		NumChannels:    uint16(e.NumChans),
		SampleRate:     uint32(e.SampleRate),
		AvgBytesPerSec: uint32(e.SampleRate * blockAlign),
		BlockAlign:     uint16(blockAlign),
		BitsPerSample:  uint16(e.BitDepth),
	}

	if e.Extensible {
		chunk.FormatTag = FormatExtensible
		chunk.Extensible = &FmtExtensible{
			ValidBitsPerSample: uint16(e.BitDepth),
			SubFormat:          makeSubFormatGUID(uint16(e.WavAudioFormat)),
		}
	}

	return chunk
}

func (e *Encoder) writeFmtChunk() error {
	chunk := e.buildFmtChunkForWrite()

	if chunk.Extensible == nil {
		err := e.AddLE(uint32(16))
		if err != nil {
			return err
		}
	} else {
		extraLen := 22 + len(chunk.Extensible.ExtraData)

		err := e.AddLE(uint32(16 + 2 + extraLen))
		if err != nil {
			return err
		}
	}

	err := e.AddLE(chunk.FormatTag)
	if err != nil {
		return err
	}

	err = e.AddLE(chunk.NumChannels)
	if err != nil {
		return fmt.Errorf("error encoding the number of channels - %w", err)
	}

	err = e.AddLE(chunk.SampleRate)
	if err != nil {
		return fmt.Errorf("error encoding the sample rate - %w", err)
	}

	err = e.AddLE(chunk.AvgBytesPerSec)
	if err != nil {
		return fmt.Errorf("error encoding the avg bytes per sec - %w", err)
	}

	err = e.AddLE(chunk.BlockAlign)
	if err != nil {
		return err
	}

	err = e.AddLE(chunk.BitsPerSample)
	if err != nil {
		return fmt.Errorf("error encoding bits per sample - %w", err)
	}

	if chunk.Extensible == nil {
		return nil
	}

	err = e.AddLE(uint16(22 + len(chunk.Extensible.ExtraData)))
	if err != nil {
		return fmt.Errorf("error encoding fmt extension length - %w", err)
	}

	err = e.AddLE(chunk.Extensible.ValidBitsPerSample)
	if err != nil {
		return fmt.Errorf("error encoding valid bits per sample - %w", err)
	}

	err = e.AddLE(chunk.Extensible.ChannelMask)
	if err != nil {
		return fmt.Errorf("error encoding channel mask - %w", err)
	}

	err = e.AddLE(chunk.Extensible.SubFormat)
	if err != nil {
		return fmt.Errorf("error encoding sub format - %w", err)
	}

	return nil
}

func (e *Encoder) writeRawChunk(chunk RawChunk) error {
	size := uint32(len(chunk.Data))

	err := e.AddBE(chunk.ID)
	if err != nil {
		return fmt.Errorf("failed to write raw chunk id %q: %w", chunk.ID, err)
	}

	err = e.AddLE(size)
	if err != nil {
		return fmt.Errorf("failed to write raw chunk size %q: %w", chunk.ID, err)
	}

	if len(chunk.Data) > 0 {
		n, err := e.w.Write(chunk.Data)
		e.WrittenBytes += int64(n)

		if err != nil {
			return fmt.Errorf("failed to write raw chunk payload %q: %w", chunk.ID, err)
		}
	}

	if size%2 == 1 {
		n, err := e.w.Write([]byte{0})
		e.WrittenBytes += int64(n)

		if err != nil {
			return fmt.Errorf("failed to write raw chunk padding %q: %w", chunk.ID, err)
		}
	}

	return nil
}

func (e *Encoder) writeUnknownChunks(beforeData bool) error {
	for _, chunk := range e.UnknownChunks {
		if chunk.BeforeData != beforeData {
			continue
		}

		err := e.writeRawChunk(chunk)
		if err != nil {
			return err
		}
	}

	return nil
}

// Frames returns the number of frames written so far.
func (e *Encoder) Frames() int {
	return e.frames
}

// Close writes the trailing chunks and patches the RIFF and data sizes.
// Note that the underlying writer is NOT being closed.
func (e *Encoder) Close() error {
	if e == nil || e.w == nil {
		return nil
	}

	// a file without samples still gets an empty data chunk
	err := e.startData()
	if err != nil {
		return err
	}

	dataSize := int64(e.blockAlign()) * int64(e.frames)
	if dataSize%2 == 1 {
		n, err := e.w.Write([]byte{0})
		e.WrittenBytes += int64(n)

		if err != nil {
			return fmt.Errorf("failed to write data chunk padding: %w", err)
		}
	}

	if !e.wroteUnknownPost {
		err := e.chunks.Encode(e, false)
		if err != nil {
			return fmt.Errorf("failed to write post-data chunks: %w", err)
		}

		err = e.writeUnknownChunks(false)
		if err != nil {
			return fmt.Errorf("failed to write post-data unknown chunks: %w", err)
		}

		e.wroteUnknownPost = true
	}

	if e.WrittenBytes > math.MaxUint32 {
		return ErrFileTooLarge
	}

	// go back and write total size in header
	if _, err := e.w.Seek(4, io.SeekStart); err != nil {
		return fmt.Errorf("failed to seek to file size position: %w", err)
	}

	total := e.WrittenBytes

	err = e.AddLE(uint32(total - 8))
	if err != nil {
		return fmt.Errorf("%w when writing the total written bytes", err)
	}

	// rewrite the audio chunk length header
	if _, err := e.w.Seek(e.pcmChunkSizePos, io.SeekStart); err != nil {
		return fmt.Errorf("failed to seek to PCM chunk size position: %w", err)
	}

	err = e.AddLE(uint32(dataSize))
	if err != nil {
		return fmt.Errorf("%w when writing wav data chunk size header", err)
	}

	e.WrittenBytes = total

	// jump back to the end of the file.
	if _, err := e.w.Seek(0, io.SeekEnd); err != nil {
		return fmt.Errorf("failed to seek to end of file: %w", err)
	}

	if f, ok := e.w.(*os.File); ok {
		return f.Sync()
	}

	return nil
}
