// Package render mixes the direct-speakers objects of an ADM BW64 file down
// to a loudspeaker layout.
//
// A Renderer picks its targets from the file's ADM document (every
// programme, or every top-level object when there are none), builds one
// gain matrix per object, streams the PCM data through the mix in blocks of
// BlockSize frames and writes one BW64 file per target with freshly
// synthesised axml and chna chunks.
//
//	src, err := bw64.Open("in.wav")
//	r, err := render.New(src, render.Options{Layout: "0+2+0", OutputDir: "out"})
//	results, err := r.Process(ctx)
package render
