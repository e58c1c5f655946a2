package adm

import (
	"encoding/xml"
	"fmt"
	"io"
)

// WriteXML serialises d as an ebuCoreMain document. Elements are written in
// document order; common definitions are referenced by ID only.
func WriteXML(w io.Writer, d *Document) error {
	root := xmlEBUCoreMain{Xmlns: ebuCoreNamespace}
	root.CoreMetadata.Format.FormatExtended = d.toXML()

	_, err := io.WriteString(w, xml.Header)
	if err != nil {
		return err
	}

	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")

	err = enc.Encode(root)
	if err != nil {
		return fmt.Errorf("failed to encode ADM XML: %w", err)
	}

	_, err = io.WriteString(w, "\n")

	return err
}

func (d *Document) toXML() xmlFormatExtended {
	var out xmlFormatExtended

	for _, p := range d.Programmes {
		x := xmlProgramme{ID: p.ID.String(), Name: p.Name, Language: p.Language}
		for _, c := range p.Contents {
			x.ContentRefs = append(x.ContentRefs, c.ID.String())
		}

		out.Programmes = append(out.Programmes, x)
	}

	for _, c := range d.Contents {
		x := xmlContent{ID: c.ID.String(), Name: c.Name, Language: c.Language}
		for _, o := range c.Objects {
			x.ObjectRefs = append(x.ObjectRefs, o.ID.String())
		}

		out.Contents = append(out.Contents, x)
	}

	for _, o := range d.Objects {
		x := xmlObject{ID: o.ID.String(), Name: o.Name, Start: o.Start, Duration: o.Duration}
		for _, p := range o.PackFormats {
			x.PackRefs = append(x.PackRefs, p.ID.String())
		}

		for _, child := range o.Objects {
			x.ObjectRefs = append(x.ObjectRefs, child.ID.String())
		}

		for _, u := range o.TrackUIDs {
			x.TrackUIDRefs = append(x.TrackUIDRefs, u.ID.String())
		}

		out.Objects = append(out.Objects, x)
	}

	for _, p := range d.PackFormats {
		if p.Common {
			continue
		}

		x := xmlPackFormat{
			ID:             p.ID.String(),
			Name:           p.Name,
			TypeLabel:      p.Type.Label(),
			TypeDefinition: p.Type.String(),
		}
		for _, cf := range p.ChannelFormats {
			x.ChannelRefs = append(x.ChannelRefs, cf.ID.String())
		}

		out.PackFormats = append(out.PackFormats, x)
	}

	for _, cf := range d.ChannelFormats {
		if cf.Common {
			continue
		}

		out.ChannelFormats = append(out.ChannelFormats, channelFormatToXML(cf))
	}

	for _, s := range d.StreamFormats {
		if s.Common {
			continue
		}

		x := xmlStreamFormat{
			ID:               s.ID.String(),
			Name:             s.Name,
			FormatLabel:      s.Format.Label(),
			FormatDefinition: s.Format.String(),
		}

		if s.ChannelFormat != nil {
			x.ChannelRef = s.ChannelFormat.ID.String()
		}

		if s.PackFormat != nil {
			x.PackRef = s.PackFormat.ID.String()
		}

		for _, t := range s.TrackFormats {
			x.TrackRefs = append(x.TrackRefs, t.ID.String())
		}

		out.StreamFormats = append(out.StreamFormats, x)
	}

	for _, t := range d.TrackFormats {
		if t.Common {
			continue
		}

		x := xmlTrackFormat{
			ID:               t.ID.String(),
			Name:             t.Name,
			FormatLabel:      t.Format.Label(),
			FormatDefinition: t.Format.String(),
		}

		if t.StreamFormat != nil {
			x.StreamRef = t.StreamFormat.ID.String()
		}

		out.TrackFormats = append(out.TrackFormats, x)
	}

	for _, u := range d.TrackUIDs {
		x := xmlTrackUID{UID: u.ID.String(), SampleRate: u.SampleRate, BitDepth: u.BitDepth}

		if u.TrackFormat != nil {
			x.TrackFormatRef = u.TrackFormat.ID.String()
		}

		if u.ChannelFormat != nil {
			x.ChannelRef = u.ChannelFormat.ID.String()
		}

		if u.PackFormat != nil {
			x.PackRef = u.PackFormat.ID.String()
		}

		out.TrackUIDs = append(out.TrackUIDs, x)
	}

	return out
}

func channelFormatToXML(cf *AudioChannelFormat) xmlChannelFormat {
	x := xmlChannelFormat{
		ID:             cf.ID.String(),
		Name:           cf.Name,
		TypeLabel:      cf.Type.Label(),
		TypeDefinition: cf.Type.String(),
	}

	for i, b := range cf.Blocks {
		id := b.ID
		if id == (BlockFormatID{}) {
			id = BlockFormatID{Type: cf.ID.Type, Value: cf.ID.Value, Counter: uint32(i + 1)}
		}

		xb := xmlBlockFormat{ID: id.String(), SpeakerLabels: b.SpeakerLabels}

		if b.Azimuth != nil {
			xb.Positions = append(xb.Positions, xmlPosition{Coordinate: "azimuth", Value: *b.Azimuth})
		}

		if b.Elevation != nil {
			xb.Positions = append(xb.Positions, xmlPosition{Coordinate: "elevation", Value: *b.Elevation})
		}

		if b.Distance != nil {
			xb.Positions = append(xb.Positions, xmlPosition{Coordinate: "distance", Value: *b.Distance})
		}

		x.Blocks = append(x.Blocks, xb)
	}

	return x
}
