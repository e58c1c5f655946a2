package adm

import "slices"

// AssignIDs gives every programme, content, object and track UID whose ID is
// zero the next free identifier of its kind. Programmes, contents and
// objects are numbered from 0x1001, track UIDs from 1.
func (d *Document) AssignIDs() {
	nextProgramme := ProgrammeID(0x1001)
	for _, p := range d.Programmes {
		if p.ID != 0 {
			continue
		}

		for d.Programme(nextProgramme) != nil {
			nextProgramme++
		}

		p.ID = nextProgramme
		nextProgramme++
	}

	nextContent := ContentID(0x1001)
	for _, c := range d.Contents {
		if c.ID != 0 {
			continue
		}

		for d.Content(nextContent) != nil {
			nextContent++
		}

		c.ID = nextContent
		nextContent++
	}

	nextObject := ObjectID(0x1001)
	for _, o := range d.Objects {
		if o.ID != 0 {
			continue
		}

		for d.Object(nextObject) != nil {
			nextObject++
		}

		o.ID = nextObject
		nextObject++
	}

	nextUID := TrackUIDID(1)
	for _, u := range d.TrackUIDs {
		if u.ID != 0 {
			continue
		}

		for d.TrackUID(nextUID) != nil {
			nextUID++
		}

		u.ID = nextUID
		nextUID++
	}
}

// ImportCommonPackFormat adds the common-definition pack format with the
// given ID, and the channel formats it groups, to d. It returns the
// document's existing element when d already holds one with that ID.
func (d *Document) ImportCommonPackFormat(id PackFormatID) (*AudioPackFormat, bool) {
	if p := d.PackFormat(id); p != nil {
		return p, true
	}

	src := CommonDefinitions().PackFormat(id)
	if src == nil {
		return nil, false
	}

	return newCopier(d).packFormat(src), true
}

// ImportCommonTrackFormat adds the common-definition track format with the
// given ID, with its stream and channel formats, to d.
func (d *Document) ImportCommonTrackFormat(id TrackFormatID) (*AudioTrackFormat, bool) {
	if t := d.TrackFormat(id); t != nil {
		return t, true
	}

	src := CommonDefinitions().TrackFormat(id)
	if src == nil {
		return nil, false
	}

	return newCopier(d).trackFormat(src), true
}

func (d *Document) importCommonChannelFormat(id ChannelFormatID) (*AudioChannelFormat, bool) {
	if c := d.ChannelFormat(id); c != nil {
		return c, true
	}

	src := CommonDefinitions().ChannelFormat(id)
	if src == nil {
		return nil, false
	}

	return newCopier(d).channelFormat(src), true
}

func (d *Document) importCommonStreamFormat(id StreamFormatID) (*AudioStreamFormat, bool) {
	if s := d.StreamFormat(id); s != nil {
		return s, true
	}

	src := CommonDefinitions().StreamFormat(id)
	if src == nil {
		return nil, false
	}

	return newCopier(d).streamFormat(src), true
}

// CopyProgramme deep-copies p, with its contents, objects, track UIDs and
// the formats they reference, into dst. Programme, content, object and
// track UID copies get fresh identifiers; formats keep theirs and are shared
// with any element of dst carrying the same ID.
func CopyProgramme(dst *Document, p *AudioProgramme) *AudioProgramme {
	c := newCopier(dst)

	out := &AudioProgramme{Name: p.Name, Language: p.Language}

	for _, content := range p.Contents {
		cc := &AudioContent{Name: content.Name, Language: content.Language}

		for _, o := range content.Objects {
			cc.Objects = append(cc.Objects, c.object(o))
		}

		out.Contents = append(out.Contents, cc)
		dst.AddContent(cc)
	}

	dst.AddProgramme(out)
	dst.AssignIDs()

	return out
}

// copier copies elements into dst, memoising by source pointer so shared
// references stay shared.
type copier struct {
	dst      *Document
	objects  map[*AudioObject]*AudioObject
	packs    map[*AudioPackFormat]*AudioPackFormat
	channels map[*AudioChannelFormat]*AudioChannelFormat
	streams  map[*AudioStreamFormat]*AudioStreamFormat
	tracks   map[*AudioTrackFormat]*AudioTrackFormat
	uids     map[*AudioTrackUID]*AudioTrackUID
}

func newCopier(dst *Document) *copier {
	return &copier{
		dst:      dst,
		objects:  make(map[*AudioObject]*AudioObject),
		packs:    make(map[*AudioPackFormat]*AudioPackFormat),
		channels: make(map[*AudioChannelFormat]*AudioChannelFormat),
		streams:  make(map[*AudioStreamFormat]*AudioStreamFormat),
		tracks:   make(map[*AudioTrackFormat]*AudioTrackFormat),
		uids:     make(map[*AudioTrackUID]*AudioTrackUID),
	}
}

func (c *copier) object(src *AudioObject) *AudioObject {
	if out, ok := c.objects[src]; ok {
		return out
	}

	out := &AudioObject{Name: src.Name, Start: src.Start, Duration: src.Duration}
	c.objects[src] = out

	for _, p := range src.PackFormats {
		out.PackFormats = append(out.PackFormats, c.packFormat(p))
	}

	for _, u := range src.TrackUIDs {
		uc := c.trackUID(u)
		// the copy binds its tracks to the copied packs of its owner
		for _, p := range out.PackFormats {
			uc.PackFormat = p
		}

		out.TrackUIDs = append(out.TrackUIDs, uc)
	}

	for _, child := range src.Objects {
		out.Objects = append(out.Objects, c.object(child))
	}

	c.dst.AddObject(out)

	return out
}

func (c *copier) trackUID(src *AudioTrackUID) *AudioTrackUID {
	if out, ok := c.uids[src]; ok {
		return out
	}

	out := &AudioTrackUID{SampleRate: src.SampleRate, BitDepth: src.BitDepth}
	c.uids[src] = out

	if src.TrackFormat != nil {
		out.TrackFormat = c.trackFormat(src.TrackFormat)
	}

	if src.ChannelFormat != nil {
		out.ChannelFormat = c.channelFormat(src.ChannelFormat)
	}

	if src.PackFormat != nil {
		out.PackFormat = c.packFormat(src.PackFormat)
	}

	c.dst.AddTrackUID(out)

	return out
}

func (c *copier) packFormat(src *AudioPackFormat) *AudioPackFormat {
	if out, ok := c.packs[src]; ok {
		return out
	}

	if existing := c.dst.PackFormat(src.ID); existing != nil {
		c.packs[src] = existing
		return existing
	}

	out := &AudioPackFormat{ID: src.ID, Name: src.Name, Type: src.Type, Common: src.Common}
	c.packs[src] = out

	for _, cf := range src.ChannelFormats {
		out.ChannelFormats = append(out.ChannelFormats, c.channelFormat(cf))
	}

	c.dst.AddPackFormat(out)

	return out
}

func (c *copier) channelFormat(src *AudioChannelFormat) *AudioChannelFormat {
	if out, ok := c.channels[src]; ok {
		return out
	}

	if existing := c.dst.ChannelFormat(src.ID); existing != nil {
		c.channels[src] = existing
		return existing
	}

	out := &AudioChannelFormat{ID: src.ID, Name: src.Name, Type: src.Type, Common: src.Common}
	for _, b := range src.Blocks {
		b.SpeakerLabels = slices.Clone(b.SpeakerLabels)
		b.Azimuth = cloneFloat(b.Azimuth)
		b.Elevation = cloneFloat(b.Elevation)
		b.Distance = cloneFloat(b.Distance)
		out.Blocks = append(out.Blocks, b)
	}

	c.channels[src] = out
	c.dst.AddChannelFormat(out)

	return out
}

func (c *copier) streamFormat(src *AudioStreamFormat) *AudioStreamFormat {
	if out, ok := c.streams[src]; ok {
		return out
	}

	if existing := c.dst.StreamFormat(src.ID); existing != nil {
		c.streams[src] = existing
		return existing
	}

	out := &AudioStreamFormat{ID: src.ID, Name: src.Name, Format: src.Format, Common: src.Common}
	c.streams[src] = out

	if src.ChannelFormat != nil {
		out.ChannelFormat = c.channelFormat(src.ChannelFormat)
	}

	if src.PackFormat != nil {
		out.PackFormat = c.packFormat(src.PackFormat)
	}

	c.dst.AddStreamFormat(out)

	return out
}

func (c *copier) trackFormat(src *AudioTrackFormat) *AudioTrackFormat {
	if out, ok := c.tracks[src]; ok {
		return out
	}

	if existing := c.dst.TrackFormat(src.ID); existing != nil {
		c.tracks[src] = existing
		return existing
	}

	out := &AudioTrackFormat{ID: src.ID, Name: src.Name, Format: src.Format, Common: src.Common}
	c.tracks[src] = out

	if src.StreamFormat != nil {
		out.StreamFormat = c.streamFormat(src.StreamFormat)
		if !slices.Contains(out.StreamFormat.TrackFormats, out) {
			out.StreamFormat.TrackFormats = append(out.StreamFormat.TrackFormats, out)
		}
	}

	c.dst.AddTrackFormat(out)

	return out
}

func cloneFloat(v *float64) *float64 {
	if v == nil {
		return nil
	}

	out := *v

	return &out
}
