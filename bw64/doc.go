// Package bw64 reads and writes the RIFF/WAVE flavour of Broadcast Wave files
// that carry Audio Definition Model metadata.
//
// Besides interleaved PCM (8/16/24/32-bit integer and 32/64-bit IEEE float,
// plain or WAVE_FORMAT_EXTENSIBLE), the package understands the chunks an
// ADM-aware tool needs:
//
//   - chna: the track-identity index linking physical tracks to ADM UIDs
//   - axml: the ADM XML document
//   - bext: the EBU broadcast extension
//
// Reader is the block-oriented entry point used by renderers:
//
//	r, err := bw64.Open("programme.wav")
//	buf := bw64.NewBlockBuffer(r.Channels(), 4096)
//	for !r.EOF() {
//		n, err := r.ReadBlock(buf, 4096)
//		...
//	}
//	err = r.Rewind()
//
// Writer mirrors it for output files. Chunks the package does not know are
// preserved as RawChunk values so callers can carry them through.
//
// RF64/BW64 64-bit headers (ds64) are not supported; files must fit in a
// classic RIFF container.
package bw64
