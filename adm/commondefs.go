package adm

import (
	"fmt"
	"strings"
	"sync"
)

type commonChannel struct {
	value uint16
	label string
	name  string
}

// BS.2094 direct-speaker channels. The channel, stream and track formats of
// one entry share its value: AC_0001xxxx, AS_0001xxxx, AT_0001xxxx_01.
var commonChannels = []commonChannel{
	{0x01, "M+030", "FrontLeft"},
	{0x02, "M-030", "FrontRight"},
	{0x03, "M+000", "FrontCentre"},
	{0x04, "LFE1", "LowFrequencyEffects"},
	{0x05, "M+110", "SurroundLeft"},
	{0x06, "M-110", "SurroundRight"},
	{0x07, "M+022", "FrontLeftOfCentre"},
	{0x08, "M-022", "FrontRightOfCentre"},
	{0x09, "M+180", "BackCentre"},
	{0x0a, "M+090", "SideLeft"},
	{0x0b, "M-090", "SideRight"},
	{0x0c, "T+000", "TopCentre"},
	{0x0d, "U+030", "FrontLeftHeight"},
	{0x0e, "U+000", "FrontCentreHeight"},
	{0x0f, "U-030", "FrontRightHeight"},
	{0x10, "U+110", "SurroundLeftHeight"},
	{0x11, "U+180", "BackCentreHeight"},
	{0x12, "U-110", "SurroundRightHeight"},
	{0x13, "U+090", "SideLeftHeight"},
	{0x14, "U-090", "SideRightHeight"},
	{0x15, "B+000", "BottomFrontCentre"},
	{0x16, "B+045", "BottomFrontLeft"},
	{0x17, "B-045", "BottomFrontRight"},
	{0x18, "M+060", "FrontLeftWide"},
	{0x19, "M-060", "FrontRightWide"},
	{0x1a, "M+135", "BackLeft"},
	{0x1b, "M-135", "BackRight"},
	{0x1c, "U+045", "TopFrontLeft"},
	{0x1d, "U-045", "TopFrontRight"},
	{0x1e, "U+135", "TopBackLeft"},
	{0x1f, "U-135", "TopBackRight"},
	{0x20, "LFE2", "LowFrequencyEffects2"},
	{0x21, "UH+180", "TopBackCentre"},
	{0x22, "M+SC", "LeftScreenEdge"},
	{0x23, "M-SC", "RightScreenEdge"},
}

// labelAliases maps alternative spellings to the canonical label.
var labelAliases = map[string]string{
	"LFE": "LFE1",
}

type commonPack struct {
	value  uint16
	name   string
	layout string
	labels []string
}

var commonPacks = []commonPack{
	{0x01, "mono", "0+1+0", []string{"M+000"}},
	{0x02, "stereo", "0+2+0", []string{"M+030", "M-030"}},
	{0x04, "2+5+0", "2+5+0", []string{"M+030", "M-030", "M+000", "LFE1", "M+110", "M-110", "U+030", "U-030"}},
	{0x05, "4+5+0", "4+5+0", []string{
		"M+030", "M-030", "M+000", "LFE1", "M+110", "M-110",
		"U+030", "U-030", "U+110", "U-110",
	}},
	{0x07, "3+7+0", "3+7+0", []string{
		"M+000", "M+030", "M-030", "U+045", "U-045", "M+090",
		"M-090", "M+135", "M-135", "UH+180", "LFE1", "LFE2",
	}},
	{0x08, "4+9+0", "4+9+0", []string{
		"M+030", "M-030", "M+000", "LFE1", "M+090", "M-090", "M+135",
		"M-135", "U+045", "U-045", "U+135", "U-135", "M+SC", "M-SC",
	}},
	{0x09, "9+10+3", "9+10+3", []string{
		"M+060", "M-060", "M+000", "LFE1", "M+135", "M-135",
		"M+030", "M-030", "M+180", "LFE2", "M+090", "M-090",
		"U+045", "U-045", "U+000", "T+000", "U+135", "U-135",
		"U+090", "U-090", "U+180", "B+000", "B+045", "B-045",
	}},
	{0x0c, "5.1", "0+5+0", []string{"M+030", "M-030", "M+000", "LFE1", "M+110", "M-110"}},
	{0x0f, "0+7+0", "0+7+0", []string{"M+030", "M-030", "M+000", "LFE1", "M+090", "M-090", "M+135", "M-135"}},
	{0x10, "4+5+1", "4+5+1", []string{
		"M+030", "M-030", "M+000", "LFE1", "M+110", "M-110",
		"U+030", "U-030", "U+110", "U-110", "B+000",
	}},
	{0x17, "4+7+0", "4+7+0", []string{
		"M+030", "M-030", "M+000", "LFE1", "M+090", "M-090",
		"M+135", "M-135", "U+045", "U-045", "U+135", "U-135",
	}},
}

// CanonicalLabel strips the BS.2051 URN prefix and resolves aliases, so
// "urn:itu:bs:2051:0:speaker:LFE" becomes "LFE1".
func CanonicalLabel(label string) string {
	label = strings.TrimSpace(label)
	if strings.HasPrefix(label, "urn:itu:bs:2051:") {
		if i := strings.LastIndex(label, ":speaker:"); i >= 0 {
			label = label[i+len(":speaker:"):]
		}
	}

	if alias, ok := labelAliases[label]; ok {
		return alias
	}

	return label
}

// TrackFormatIDForLabel returns the common-definition track format of a
// speaker label.
func TrackFormatIDForLabel(label string) (TrackFormatID, bool) {
	label = CanonicalLabel(label)

	for _, c := range commonChannels {
		if c.label == label {
			return TrackFormatID{Format: FormatPCM, Value: c.value, Counter: 1}, true
		}
	}

	return TrackFormatID{}, false
}

// LabelForTrackFormatID is the inverse of TrackFormatIDForLabel.
func LabelForTrackFormatID(id TrackFormatID) (string, bool) {
	if id.Format != FormatPCM || id.Counter != 1 {
		return "", false
	}

	for _, c := range commonChannels {
		if c.value == id.Value {
			return c.label, true
		}
	}

	return "", false
}

// PackFormatIDForLayout returns the common-definition pack of a BS.2051
// layout name such as "0+2+0".
func PackFormatIDForLayout(layout string) (PackFormatID, bool) {
	for _, p := range commonPacks {
		if p.layout == layout {
			return PackFormatID{Type: TypeDirectSpeakers, Value: p.value}, true
		}
	}

	return PackFormatID{}, false
}

// CommonPackLabels returns the speaker labels of a common pack in channel
// order.
func CommonPackLabels(id PackFormatID) ([]string, bool) {
	if id.Type != TypeDirectSpeakers {
		return nil, false
	}

	for _, p := range commonPacks {
		if p.value == id.Value {
			return append([]string(nil), p.labels...), true
		}
	}

	return nil, false
}

// CommonDefinitions returns the shared, read-only document holding the
// built-in common definitions. Callers must not modify it; ParseXML copies
// the elements it needs.
var CommonDefinitions = sync.OnceValue(buildCommonDefinitions)

func buildCommonDefinitions() *Document {
	doc := NewDocument()
	channels := make(map[string]*AudioChannelFormat, len(commonChannels))

	for _, c := range commonChannels {
		cf := &AudioChannelFormat{
			ID:   ChannelFormatID{Type: TypeDirectSpeakers, Value: c.value},
			Name: c.name,
			Type: TypeDirectSpeakers,
			Blocks: []AudioBlockFormat{{
				ID:            BlockFormatID{Type: TypeDirectSpeakers, Value: c.value, Counter: 1},
				SpeakerLabels: []string{c.label},
			}},
			Common: true,
		}
		sf := &AudioStreamFormat{
			ID:            StreamFormatID{Format: FormatPCM, Value: c.value},
			Name:          "PCM_" + c.name,
			Format:        FormatPCM,
			ChannelFormat: cf,
			Common:        true,
		}
		tf := &AudioTrackFormat{
			ID:           TrackFormatID{Format: FormatPCM, Value: c.value, Counter: 1},
			Name:         "PCM_" + c.name,
			Format:       FormatPCM,
			StreamFormat: sf,
			Common:       true,
		}
		sf.TrackFormats = []*AudioTrackFormat{tf}

		doc.AddChannelFormat(cf)
		doc.AddStreamFormat(sf)
		doc.AddTrackFormat(tf)

		channels[c.label] = cf
	}

	for _, p := range commonPacks {
		pf := &AudioPackFormat{
			ID:     PackFormatID{Type: TypeDirectSpeakers, Value: p.value},
			Name:   p.name,
			Type:   TypeDirectSpeakers,
			Common: true,
		}

		for _, label := range p.labels {
			cf, ok := channels[label]
			if !ok {
				panic(fmt.Sprintf("adm: common pack %s uses unknown label %s", p.name, label))
			}

			pf.ChannelFormats = append(pf.ChannelFormats, cf)
		}

		doc.AddPackFormat(pf)
	}

	return doc
}
