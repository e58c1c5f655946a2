package render

import (
	"testing"

	"github.com/go-audio/audio"
)

func TestMixerPartialBlock(t *testing.T) {
	m := newMixer(2, 3, 8)
	renderers := []ObjectRenderer{
		{tracks: []int{0}, gains: [][]float64{{1, 0, 0.5}}},
		{tracks: []int{1}, gains: [][]float64{{0, 2, 0.5}}},
	}

	src := &audio.FloatBuffer{Data: []float64{1, 10, 2, 20, 3, 30}}
	dst := &audio.FloatBuffer{Data: make([]float64, 24)}

	// stale data from a previous, longer block must not leak
	for i := range m.out[0] {
		m.out[0][i] = 99
	}

	m.mix(src, 3, renderers, dst)

	want := []float64{
		1, 20, 5.5,
		2, 40, 11,
		3, 60, 16.5,
	}

	if len(dst.Data) != len(want) {
		t.Fatalf("%d samples, want %d", len(dst.Data), len(want))
	}

	for i := range want {
		if dst.Data[i] != want[i] {
			t.Fatalf("dst = %v, want %v", dst.Data, want)
		}
	}
}
