package adm

import (
	"errors"
	"fmt"
	"slices"
)

// ErrElementNotFound is returned by lookups for identifiers the document
// doesn't hold.
var ErrElementNotFound = errors.New("element not found")

// Document owns the elements of one ADM scene graph. Element slices are kept
// in document order.
type Document struct {
	Programmes     []*AudioProgramme
	Contents       []*AudioContent
	Objects        []*AudioObject
	PackFormats    []*AudioPackFormat
	ChannelFormats []*AudioChannelFormat
	StreamFormats  []*AudioStreamFormat
	TrackFormats   []*AudioTrackFormat
	TrackUIDs      []*AudioTrackUID
}

// NewDocument returns an empty document.
func NewDocument() *Document {
	return &Document{}
}

func (d *Document) AddProgramme(p *AudioProgramme) { d.Programmes = append(d.Programmes, p) }
func (d *Document) AddContent(c *AudioContent) { d.Contents = append(d.Contents, c) }
func (d *Document) AddObject(o *AudioObject) { d.Objects = append(d.Objects, o) }
func (d *Document) AddPackFormat(p *AudioPackFormat) { d.PackFormats = append(d.PackFormats, p) }
func (d *Document) AddChannelFormat(c *AudioChannelFormat) { d.ChannelFormats = append(d.ChannelFormats, c) }
func (d *Document) AddStreamFormat(s *AudioStreamFormat) { d.StreamFormats = append(d.StreamFormats, s) }
func (d *Document) AddTrackFormat(t *AudioTrackFormat) { d.TrackFormats = append(d.TrackFormats, t) }
func (d *Document) AddTrackUID(u *AudioTrackUID) { d.TrackUIDs = append(d.TrackUIDs, u) }

// Programme returns the programme with the given ID, or nil.
func (d *Document) Programme(id ProgrammeID) *AudioProgramme {
	for _, p := range d.Programmes {
		if p.ID == id {
			return p
		}
	}

	return nil
}

func (d *Document) Content(id ContentID) *AudioContent {
	for _, c := range d.Contents {
		if c.ID == id {
			return c
		}
	}

	return nil
}

func (d *Document) Object(id ObjectID) *AudioObject {
	for _, o := range d.Objects {
		if o.ID == id {
			return o
		}
	}

	return nil
}

func (d *Document) PackFormat(id PackFormatID) *AudioPackFormat {
	for _, p := range d.PackFormats {
		if p.ID == id {
			return p
		}
	}

	return nil
}

func (d *Document) ChannelFormat(id ChannelFormatID) *AudioChannelFormat {
	for _, c := range d.ChannelFormats {
		if c.ID == id {
			return c
		}
	}

	return nil
}

func (d *Document) StreamFormat(id StreamFormatID) *AudioStreamFormat {
	for _, s := range d.StreamFormats {
		if s.ID == id {
			return s
		}
	}

	return nil
}

func (d *Document) TrackFormat(id TrackFormatID) *AudioTrackFormat {
	for _, t := range d.TrackFormats {
		if t.ID == id {
			return t
		}
	}

	return nil
}

func (d *Document) TrackUID(id TrackUIDID) *AudioTrackUID {
	for _, u := range d.TrackUIDs {
		if u.ID == id {
			return u
		}
	}

	return nil
}

// LookupProgramme finds a programme by its identifier string.
func (d *Document) LookupProgramme(id string) (*AudioProgramme, error) {
	pid, err := ParseProgrammeID(id)
	if err != nil {
		return nil, err
	}

	if p := d.Programme(pid); p != nil {
		return p, nil
	}

	return nil, fmt.Errorf("%w: %s", ErrElementNotFound, id)
}

// LookupObject finds an object by its identifier string.
func (d *Document) LookupObject(id string) (*AudioObject, error) {
	oid, err := ParseObjectID(id)
	if err != nil {
		return nil, err
	}

	if o := d.Object(oid); o != nil {
		return o, nil
	}

	return nil, fmt.Errorf("%w: %s", ErrElementNotFound, id)
}

// TopLevelObjects returns the objects no other object nests, in document
// order.
func (d *Document) TopLevelObjects() []*AudioObject {
	nested := make(map[*AudioObject]bool)

	for _, o := range d.Objects {
		for _, child := range o.Objects {
			nested[child] = true
		}
	}

	out := make([]*AudioObject, 0, len(d.Objects))

	for _, o := range d.Objects {
		if !nested[o] {
			out = append(out, o)
		}
	}

	return out
}

// ObjectsForTrackUID returns the objects referencing the given track UID.
func (d *Document) ObjectsForTrackUID(uid *AudioTrackUID) []*AudioObject {
	var out []*AudioObject

	for _, o := range d.Objects {
		if slices.Contains(o.TrackUIDs, uid) {
			out = append(out, o)
		}
	}

	return out
}

// ProgrammeObjects returns the objects of every content of p, once per
// reference.
func ProgrammeObjects(p *AudioProgramme) []*AudioObject {
	var out []*AudioObject

	for _, c := range p.Contents {
		out = append(out, c.Objects...)
	}

	return out
}
