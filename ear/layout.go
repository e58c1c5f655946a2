package ear

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/cwbudde/admrender/adm"
)

// ErrUnknownLayout is returned for layout names GetLayout doesn't know.
var ErrUnknownLayout = errors.New("unknown loudspeaker layout")

// Channel is one loudspeaker of a layout. Angles are in degrees; positive
// azimuth is to the left.
type Channel struct {
	Name      string
	Azimuth   float64
	Elevation float64
	IsLFE     bool
}

// Layout is an ordered set of loudspeakers.
type Layout struct {
	Name     string
	Channels []Channel
}

func (l Layout) NumChannels() int { return len(l.Channels) }

// ChannelNames returns the speaker labels of l in channel order.
func (l Layout) ChannelNames() []string {
	names := make([]string, len(l.Channels))
	for i, c := range l.Channels {
		names[i] = c.Name
	}

	return names
}

// ChannelIndex returns the position of the channel with the given label, or
// -1.
func (l Layout) ChannelIndex(label string) int {
	label = adm.CanonicalLabel(label)

	for i, c := range l.Channels {
		if c.Name == label {
			return i
		}
	}

	return -1
}

var layoutNames = []string{
	"0+1+0", "0+2+0", "0+5+0", "2+5+0", "4+5+0", "4+5+1",
	"3+7+0", "4+9+0", "9+10+3", "0+7+0", "4+7+0",
}

// LayoutNames lists the supported layouts.
func LayoutNames() []string {
	return append([]string(nil), layoutNames...)
}

// GetLayout returns the BS.2051 layout with the given name, e.g. "0+5+0".
// The channel order follows the layout's common-definition pack format.
func GetLayout(name string) (Layout, error) {
	name = strings.TrimSpace(name)

	id, ok := adm.PackFormatIDForLayout(name)
	if !ok {
		return Layout{}, fmt.Errorf("%w: %q", ErrUnknownLayout, name)
	}

	labels, _ := adm.CommonPackLabels(id)
	out := Layout{Name: name, Channels: make([]Channel, 0, len(labels))}

	for _, label := range labels {
		ch, ok := nominalPosition(label)
		if !ok {
			return Layout{}, fmt.Errorf("%w: %q has unknown channel %s", ErrUnknownLayout, name, label)
		}

		out.Channels = append(out.Channels, ch)
	}

	return out, nil
}

var layerElevation = map[string]float64{
	"M":  0,
	"U":  30,
	"UH": 45,
	"T":  90,
	"B":  -30,
}

// nominalPosition derives the nominal direction of a BS.2051 speaker label
// such as "M+030", "UH+180" or "M-SC".
func nominalPosition(label string) (Channel, bool) {
	label = adm.CanonicalLabel(label)

	switch label {
	case "LFE1":
		return Channel{Name: label, Azimuth: 45, Elevation: -30, IsLFE: true}, true
	case "LFE2":
		return Channel{Name: label, Azimuth: -45, Elevation: -30, IsLFE: true}, true
	}

	i := strings.IndexAny(label, "+-")
	if i <= 0 {
		return Channel{}, false
	}

	elevation, ok := layerElevation[label[:i]]
	if !ok {
		return Channel{}, false
	}

	sign := 1.0
	if label[i] == '-' {
		sign = -1
	}

	var azimuth float64

	rest := label[i+1:]
	if rest == "SC" {
		azimuth = 15
	} else {
		v, err := strconv.Atoi(rest)
		if err != nil || len(rest) != 3 || v > 180 {
			return Channel{}, false
		}

		azimuth = float64(v)
	}

	return Channel{Name: label, Azimuth: sign * azimuth, Elevation: elevation}, true
}
