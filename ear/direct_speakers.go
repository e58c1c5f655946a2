package ear

import (
	"cmp"
	"errors"
	"fmt"
	"math"
	"slices"
	"strings"

	"github.com/cwbudde/admrender/adm"
)

var (
	// ErrUnknownSpeakerLabel is returned when no label of the metadata names
	// a known loudspeaker position and no explicit position is given.
	ErrUnknownSpeakerLabel = errors.New("unknown speaker label")
	// ErrGainsLength is returned when the gains slice doesn't match the
	// layout's channel count.
	ErrGainsLength = errors.New("gains length does not match layout")
)

// DirectSpeakersMetadata describes one direct-speakers input channel.
type DirectSpeakersMetadata struct {
	SpeakerLabels []string
	PackFormatID  string
	// Azimuth and Elevation are used when no label is recognised.
	Azimuth   *float64
	Elevation *float64
}

// DirectSpeakersGainCalculator maps direct-speakers channels onto a layout.
type DirectSpeakersGainCalculator struct {
	layout Layout
	rings  []ring
	lfe    []int
}

type ring struct {
	elevation float64
	// channel indices sorted by azimuth
	channels []int
}

func NewDirectSpeakersGainCalculator(layout Layout) *DirectSpeakersGainCalculator {
	c := &DirectSpeakersGainCalculator{layout: layout}

	for i, ch := range layout.Channels {
		if ch.IsLFE {
			c.lfe = append(c.lfe, i)
			continue
		}

		idx := slices.IndexFunc(c.rings, func(r ring) bool { return r.elevation == ch.Elevation })
		if idx < 0 {
			c.rings = append(c.rings, ring{elevation: ch.Elevation})
			idx = len(c.rings) - 1
		}

		c.rings[idx].channels = append(c.rings[idx].channels, i)
	}

	for _, r := range c.rings {
		slices.SortFunc(r.channels, func(a, b int) int {
			return cmp.Compare(layout.Channels[a].Azimuth, layout.Channels[b].Azimuth)
		})
	}

	return c
}

// Layout returns the output layout.
func (c *DirectSpeakersGainCalculator) Layout() Layout { return c.layout }

// Calculate writes one linear gain per output channel into gains.
//
// A label naming an output channel gets unity gain on that channel. LFE
// labels only feed LFE outputs and are dropped when the layout has none.
// Any other label is panned with constant power between the two
// loudspeakers adjacent in azimuth on the elevation ring nearest to it.
func (c *DirectSpeakersGainCalculator) Calculate(meta DirectSpeakersMetadata, gains []float64) error {
	if len(gains) != len(c.layout.Channels) {
		return fmt.Errorf("%w: %d gains for %d channels", ErrGainsLength, len(gains), len(c.layout.Channels))
	}

	clear(gains)

	for _, raw := range meta.SpeakerLabels {
		label := adm.CanonicalLabel(raw)
		if label == "" {
			continue
		}

		if i := c.layout.ChannelIndex(label); i >= 0 {
			gains[i] = 1
			return nil
		}

		if isLFELabel(label) {
			if len(c.lfe) > 0 {
				gains[c.lfe[0]] = 1
			}

			return nil
		}

		pos, ok := nominalPosition(label)
		if ok {
			c.pan(pos.Azimuth, pos.Elevation, gains)
			return nil
		}
	}

	if meta.Azimuth != nil {
		elevation := 0.0
		if meta.Elevation != nil {
			elevation = *meta.Elevation
		}

		c.pan(*meta.Azimuth, elevation, gains)

		return nil
	}

	return fmt.Errorf("%w: %q", ErrUnknownSpeakerLabel, meta.SpeakerLabels)
}

func isLFELabel(label string) bool {
	return strings.HasPrefix(label, "LFE")
}

func (c *DirectSpeakersGainCalculator) pan(azimuth, elevation float64, gains []float64) {
	if len(c.rings) == 0 {
		return
	}

	r := c.rings[0]
	for _, candidate := range c.rings[1:] {
		if math.Abs(candidate.elevation-elevation) < math.Abs(r.elevation-elevation) {
			r = candidate
		}
	}

	n := len(r.channels)
	if n == 1 {
		gains[r.channels[0]] = 1
		return
	}

	for k := range n {
		a := r.channels[k]
		b := r.channels[(k+1)%n]

		from := c.layout.Channels[a].Azimuth
		arc := wrap360(c.layout.Channels[b].Azimuth - from)
		offset := wrap360(azimuth - from)

		if offset >= arc {
			continue
		}

		p := offset / arc
		gains[a] = math.Cos(p * math.Pi / 2)
		gains[b] = math.Sin(p * math.Pi / 2)

		return
	}
}

// wrap360 maps an angle to [0, 360).
func wrap360(deg float64) float64 {
	deg = math.Mod(deg, 360)
	if deg < 0 {
		deg += 360
	}

	return deg
}
