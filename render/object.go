package render

import (
	"fmt"

	"github.com/cwbudde/admrender/adm"
	"github.com/cwbudde/admrender/bw64"
	"github.com/cwbudde/admrender/ear"
)

// packTrackCounts lists the supported DirectSpeakers pack values and the
// number of tracks each expects.
var packTrackCounts = map[uint16]int{
	0x0001: 1, // mono
	0x0002: 2, // stereo
}

// ObjectRenderer holds the gain matrix of one audio object: for each
// referenced input track, one linear gain per output channel.
type ObjectRenderer struct {
	ObjectID   string
	ObjectName string

	tracks []int
	gains  [][]float64
}

// Tracks returns the 0-based input track indices in reference order.
func (r *ObjectRenderer) Tracks() []int { return r.tracks }

// Gains returns the gain row of an input track.
func (r *ObjectRenderer) Gains(track int) ([]float64, bool) {
	for i, t := range r.tracks {
		if t == track {
			return r.gains[i], true
		}
	}

	return nil, false
}

// ApplyUserGain scales every entry of the matrix by g.
func (r *ObjectRenderer) ApplyUserGain(g float64) {
	for _, row := range r.gains {
		for i := range row {
			row[i] *= g
		}
	}
}

func (r *ObjectRenderer) String() string {
	return fmt.Sprintf("%s %q: %d tracks", r.ObjectID, r.ObjectName, len(r.tracks))
}

// resolver builds object renderers against one document and input file.
type resolver struct {
	doc           *adm.Document
	chna          *bw64.ChnaChunk
	calc          *ear.DirectSpeakersGainCalculator
	inputChannels int
}

// objectRenderer validates obj and computes its gain matrix. An object
// without pack formats yields an empty renderer.
func (res *resolver) objectRenderer(obj *adm.AudioObject) (ObjectRenderer, error) {
	out := ObjectRenderer{ObjectID: obj.ID.String(), ObjectName: obj.Name}

	switch len(obj.PackFormats) {
	case 0:
		return out, nil
	case 1:
	default:
		return out, fmt.Errorf("%w: %s references %d", ErrMultiplePackFormats, out.ObjectID, len(obj.PackFormats))
	}

	pack := obj.PackFormats[0]
	if pack.Type != adm.TypeDirectSpeakers {
		return out, fmt.Errorf("%w: %s is %s", ErrUnsupportedType, pack.ID, pack.Type)
	}

	want, ok := packTrackCounts[pack.ID.Value]
	if !ok || pack.ID.Type != adm.TypeDirectSpeakers {
		return out, fmt.Errorf("%w: %s is not mono or stereo", ErrUnsupportedPack, pack.ID)
	}

	if len(obj.TrackUIDs) != want {
		return out, fmt.Errorf("%w: %s expects %d tracks, %s has %d",
			ErrTrackCountMismatch, pack.ID, want, out.ObjectID, len(obj.TrackUIDs))
	}

	numOut := res.calc.Layout().NumChannels()

	for _, uid := range obj.TrackUIDs {
		label, err := res.speakerLabel(uid)
		if err != nil {
			return out, err
		}

		track := int(uid.ID) - 1
		if track < 0 || track >= res.inputChannels {
			return out, fmt.Errorf("%w: %s addresses track %d of %d", ErrTrackOutOfRange, uid.ID, track+1, res.inputChannels)
		}

		row := make([]float64, numOut)
		meta := ear.DirectSpeakersMetadata{SpeakerLabels: []string{label}, PackFormatID: pack.ID.String()}

		err = res.calc.Calculate(meta, row)
		if err != nil {
			return out, fmt.Errorf("%s: %w", uid.ID, err)
		}

		out.tracks = append(out.tracks, track)
		out.gains = append(out.gains, row)
	}

	return out, nil
}

// speakerLabel resolves the speaker label of a track: first through its
// explicit track or channel format reference, then through the chna entry
// carrying its UID. An explicit reference that yields no label still falls
// through to chna.
func (res *resolver) speakerLabel(uid *adm.AudioTrackUID) (string, error) {
	if label := explicitLabel(uid); label != "" {
		return label, nil
	}

	if entry, ok := res.chna.Lookup(uid.ID.String()); ok {
		if label := res.labelForTrackRef(entry.TrackRef); label != "" {
			return label, nil
		}
	}

	var owners []string
	for _, o := range res.doc.ObjectsForTrackUID(uid) {
		owners = append(owners, fmt.Sprintf("%s %q", o.ID, o.Name))
	}

	return "", &ResolutionError{TrackUID: uid.ID.String(), Objects: owners, Msg: "no speaker label found"}
}

func explicitLabel(uid *adm.AudioTrackUID) string {
	if tf := uid.TrackFormat; tf != nil {
		if tf.StreamFormat != nil {
			if label := tf.StreamFormat.ChannelFormat.FirstSpeakerLabel(); label != "" {
				return label
			}
		}

		if label, ok := adm.LabelForTrackFormatID(tf.ID); ok {
			return label
		}
	}

	return uid.ChannelFormat.FirstSpeakerLabel()
}

// labelForTrackRef maps a chna trackRef such as "AT_00010001_01" to a
// speaker label, preferring the document's own track format.
func (res *resolver) labelForTrackRef(ref string) string {
	id, err := adm.ParseTrackFormatID(ref)
	if err != nil {
		return ""
	}

	if tf := res.doc.TrackFormat(id); tf != nil && tf.StreamFormat != nil {
		if label := tf.StreamFormat.ChannelFormat.FirstSpeakerLabel(); label != "" {
			return label
		}
	}

	label, _ := adm.LabelForTrackFormatID(id)

	return label
}
