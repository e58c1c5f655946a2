package render

import (
	vecmath "github.com/cwbudde/algo-vecmath"
	"github.com/go-audio/audio"
)

// mixer sums the object renderers of a target into an output block. It
// works on planar scratch so each gain is applied with one vector scale
// and one vector add.
type mixer struct {
	inChans  int
	outChans int

	in   [][]float64
	out  [][]float64
	temp []float64
}

func newMixer(inChans, outChans, frames int) *mixer {
	m := &mixer{
		inChans:  inChans,
		outChans: outChans,
		in:       make([][]float64, inChans),
		out:      make([][]float64, outChans),
		temp:     make([]float64, frames),
	}

	for i := range m.in {
		m.in[i] = make([]float64, frames)
	}

	for i := range m.out {
		m.out[i] = make([]float64, frames)
	}

	return m
}

// mix renders the first frames frames of the interleaved input block into
// dst, which is resized to hold exactly frames output frames. Nothing is
// clipped.
func (m *mixer) mix(src *audio.FloatBuffer, frames int, renderers []ObjectRenderer, dst *audio.FloatBuffer) {
	for f := range frames {
		base := f * m.inChans
		for c := range m.inChans {
			m.in[c][f] = src.Data[base+c]
		}
	}

	for c := range m.outChans {
		clear(m.out[c][:frames])
	}

	temp := m.temp[:frames]

	for i := range renderers {
		r := &renderers[i]
		for k, track := range r.tracks {
			in := m.in[track][:frames]

			for oc, g := range r.gains[k] {
				if g == 0 {
					continue
				}

				vecmath.ScaleBlock(temp, in, g)
				vecmath.AddBlockInPlace(m.out[oc][:frames], temp)
			}
		}
	}

	n := frames * m.outChans
	if cap(dst.Data) < n {
		dst.Data = make([]float64, n)
	}

	dst.Data = dst.Data[:n]

	for f := range frames {
		base := f * m.outChans
		for c := range m.outChans {
			dst.Data[base+c] = m.out[c][f]
		}
	}
}
