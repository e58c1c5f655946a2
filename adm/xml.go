package adm

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/encoding/ianaindex"
)

var (
	// ErrNoFormatExtended is returned when the XML holds no
	// audioFormatExtended element.
	ErrNoFormatExtended = errors.New("no audioFormatExtended element")
	// ErrDanglingReference is returned for references to elements neither
	// the document nor the common definitions define.
	ErrDanglingReference = errors.New("dangling reference")
	// ErrDuplicateID is returned when two elements share an identifier.
	ErrDuplicateID = errors.New("duplicate identifier")
)

const ebuCoreNamespace = "urn:ebu:metadata-schema:ebuCore_2014"

type xmlEBUCoreMain struct {
	XMLName      xml.Name        `xml:"ebuCoreMain"`
	Xmlns        string          `xml:"xmlns,attr"`
	CoreMetadata xmlCoreMetadata `xml:"coreMetadata"`
}

type xmlCoreMetadata struct {
	Format xmlFormat `xml:"format"`
}

type xmlFormat struct {
	FormatExtended xmlFormatExtended `xml:"audioFormatExtended"`
}

type xmlFormatExtended struct {
	Version        string             `xml:"version,attr,omitempty"`
	Programmes     []xmlProgramme     `xml:"audioProgramme"`
	Contents       []xmlContent       `xml:"audioContent"`
	Objects        []xmlObject        `xml:"audioObject"`
	PackFormats    []xmlPackFormat    `xml:"audioPackFormat"`
	ChannelFormats []xmlChannelFormat `xml:"audioChannelFormat"`
	StreamFormats  []xmlStreamFormat  `xml:"audioStreamFormat"`
	TrackFormats   []xmlTrackFormat   `xml:"audioTrackFormat"`
	TrackUIDs      []xmlTrackUID      `xml:"audioTrackUID"`
}

type xmlProgramme struct {
	ID          string   `xml:"audioProgrammeID,attr"`
	Name        string   `xml:"audioProgrammeName,attr"`
	Language    string   `xml:"audioProgrammeLanguage,attr,omitempty"`
	ContentRefs []string `xml:"audioContentIDRef"`
}

type xmlContent struct {
	ID         string   `xml:"audioContentID,attr"`
	Name       string   `xml:"audioContentName,attr"`
	Language   string   `xml:"audioContentLanguage,attr,omitempty"`
	ObjectRefs []string `xml:"audioObjectIDRef"`
}

type xmlObject struct {
	ID           string   `xml:"audioObjectID,attr"`
	Name         string   `xml:"audioObjectName,attr"`
	Start        string   `xml:"start,attr,omitempty"`
	Duration     string   `xml:"duration,attr,omitempty"`
	PackRefs     []string `xml:"audioPackFormatIDRef"`
	ObjectRefs   []string `xml:"audioObjectIDRef"`
	TrackUIDRefs []string `xml:"audioTrackUIDRef"`
}

type xmlPackFormat struct {
	ID             string   `xml:"audioPackFormatID,attr"`
	Name           string   `xml:"audioPackFormatName,attr"`
	TypeLabel      string   `xml:"typeLabel,attr,omitempty"`
	TypeDefinition string   `xml:"typeDefinition,attr,omitempty"`
	ChannelRefs    []string `xml:"audioChannelFormatIDRef"`
}

type xmlChannelFormat struct {
	ID             string           `xml:"audioChannelFormatID,attr"`
	Name           string           `xml:"audioChannelFormatName,attr"`
	TypeLabel      string           `xml:"typeLabel,attr,omitempty"`
	TypeDefinition string           `xml:"typeDefinition,attr,omitempty"`
	Blocks         []xmlBlockFormat `xml:"audioBlockFormat"`
}

type xmlBlockFormat struct {
	ID            string        `xml:"audioBlockFormatID,attr"`
	SpeakerLabels []string      `xml:"speakerLabel"`
	Positions     []xmlPosition `xml:"position"`
}

type xmlPosition struct {
	Coordinate string  `xml:"coordinate,attr"`
	Bound      string  `xml:"bound,attr,omitempty"`
	Value      float64 `xml:",chardata"`
}

type xmlStreamFormat struct {
	ID               string   `xml:"audioStreamFormatID,attr"`
	Name             string   `xml:"audioStreamFormatName,attr"`
	FormatLabel      string   `xml:"formatLabel,attr,omitempty"`
	FormatDefinition string   `xml:"formatDefinition,attr,omitempty"`
	ChannelRef       string   `xml:"audioChannelFormatIDRef,omitempty"`
	PackRef          string   `xml:"audioPackFormatIDRef,omitempty"`
	TrackRefs        []string `xml:"audioTrackFormatIDRef"`
}

type xmlTrackFormat struct {
	ID               string `xml:"audioTrackFormatID,attr"`
	Name             string `xml:"audioTrackFormatName,attr"`
	FormatLabel      string `xml:"formatLabel,attr,omitempty"`
	FormatDefinition string `xml:"formatDefinition,attr,omitempty"`
	StreamRef        string `xml:"audioStreamFormatIDRef,omitempty"`
}

type xmlTrackUID struct {
	UID            string `xml:"UID,attr"`
	SampleRate     int    `xml:"sampleRate,attr,omitempty"`
	BitDepth       int    `xml:"bitDepth,attr,omitempty"`
	TrackFormatRef string `xml:"audioTrackFormatIDRef,omitempty"`
	ChannelRef     string `xml:"audioChannelFormatIDRef,omitempty"`
	PackRef        string `xml:"audioPackFormatIDRef,omitempty"`
}

// ParseXML reads an ADM document. The root may be ebuCoreMain or a bare
// audioFormatExtended element.
func ParseXML(r io.Reader) (*Document, error) {
	dec := xml.NewDecoder(r)
	dec.CharsetReader = charsetReader

	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			return nil, ErrNoFormatExtended
		}

		if err != nil {
			return nil, fmt.Errorf("failed to parse ADM XML: %w", err)
		}

		se, ok := tok.(xml.StartElement)
		if !ok || se.Name.Local != "audioFormatExtended" {
			continue
		}

		var raw xmlFormatExtended

		err = dec.DecodeElement(&raw, &se)
		if err != nil {
			return nil, fmt.Errorf("failed to decode audioFormatExtended: %w", err)
		}

		return raw.build()
	}
}

// charsetReader lets documents declare any IANA charset, as some
// broadcast tools still write ISO-8859-1.
func charsetReader(label string, input io.Reader) (io.Reader, error) {
	enc, err := ianaindex.IANA.Encoding(label)
	if err != nil {
		return nil, fmt.Errorf("unsupported XML charset %q: %w", label, err)
	}

	if enc == nil {
		return input, nil
	}

	return enc.NewDecoder().Reader(input), nil
}

type builder struct {
	raw *xmlFormatExtended
	doc *Document
}

func (raw *xmlFormatExtended) build() (*Document, error) {
	b := &builder{raw: raw, doc: NewDocument()}

	err := b.createElements()
	if err != nil {
		return nil, err
	}

	err = b.link()
	if err != nil {
		return nil, err
	}

	return b.doc, nil
}

func (b *builder) createElements() error {
	for _, x := range b.raw.Programmes {
		id, err := ParseProgrammeID(x.ID)
		if err != nil {
			return err
		}

		if b.doc.Programme(id) != nil {
			return fmt.Errorf("%w: %s", ErrDuplicateID, x.ID)
		}

		b.doc.AddProgramme(&AudioProgramme{ID: id, Name: x.Name, Language: x.Language})
	}

	for _, x := range b.raw.Contents {
		id, err := ParseContentID(x.ID)
		if err != nil {
			return err
		}

		if b.doc.Content(id) != nil {
			return fmt.Errorf("%w: %s", ErrDuplicateID, x.ID)
		}

		b.doc.AddContent(&AudioContent{ID: id, Name: x.Name, Language: x.Language})
	}

	for _, x := range b.raw.Objects {
		id, err := ParseObjectID(x.ID)
		if err != nil {
			return err
		}

		if b.doc.Object(id) != nil {
			return fmt.Errorf("%w: %s", ErrDuplicateID, x.ID)
		}

		b.doc.AddObject(&AudioObject{ID: id, Name: x.Name, Start: x.Start, Duration: x.Duration})
	}

	for _, x := range b.raw.PackFormats {
		id, err := ParsePackFormatID(x.ID)
		if err != nil {
			return err
		}

		if b.doc.PackFormat(id) != nil {
			return fmt.Errorf("%w: %s", ErrDuplicateID, x.ID)
		}

		typ, err := resolveType(x.TypeLabel, x.TypeDefinition, id.Type)
		if err != nil {
			return err
		}

		b.doc.AddPackFormat(&AudioPackFormat{ID: id, Name: x.Name, Type: typ})
	}

	for _, x := range b.raw.ChannelFormats {
		cf, err := buildChannelFormat(x)
		if err != nil {
			return err
		}

		if b.doc.ChannelFormat(cf.ID) != nil {
			return fmt.Errorf("%w: %s", ErrDuplicateID, x.ID)
		}

		b.doc.AddChannelFormat(cf)
	}

	for _, x := range b.raw.StreamFormats {
		id, err := ParseStreamFormatID(x.ID)
		if err != nil {
			return err
		}

		if b.doc.StreamFormat(id) != nil {
			return fmt.Errorf("%w: %s", ErrDuplicateID, x.ID)
		}

		format, err := resolveFormat(x.FormatLabel, x.FormatDefinition, id.Format)
		if err != nil {
			return err
		}

		b.doc.AddStreamFormat(&AudioStreamFormat{ID: id, Name: x.Name, Format: format})
	}

	for _, x := range b.raw.TrackFormats {
		id, err := ParseTrackFormatID(x.ID)
		if err != nil {
			return err
		}

		if b.doc.TrackFormat(id) != nil {
			return fmt.Errorf("%w: %s", ErrDuplicateID, x.ID)
		}

		format, err := resolveFormat(x.FormatLabel, x.FormatDefinition, id.Format)
		if err != nil {
			return err
		}

		b.doc.AddTrackFormat(&AudioTrackFormat{ID: id, Name: x.Name, Format: format})
	}

	for _, x := range b.raw.TrackUIDs {
		id, err := ParseTrackUIDID(x.UID)
		if err != nil {
			return err
		}

		if b.doc.TrackUID(id) != nil {
			return fmt.Errorf("%w: %s", ErrDuplicateID, x.UID)
		}

		b.doc.AddTrackUID(&AudioTrackUID{ID: id, SampleRate: x.SampleRate, BitDepth: x.BitDepth})
	}

	return nil
}

func buildChannelFormat(x xmlChannelFormat) (*AudioChannelFormat, error) {
	id, err := ParseChannelFormatID(x.ID)
	if err != nil {
		return nil, err
	}

	typ, err := resolveType(x.TypeLabel, x.TypeDefinition, id.Type)
	if err != nil {
		return nil, err
	}

	cf := &AudioChannelFormat{ID: id, Name: x.Name, Type: typ}

	for _, xb := range x.Blocks {
		var block AudioBlockFormat

		if xb.ID != "" {
			block.ID, err = ParseBlockFormatID(xb.ID)
			if err != nil {
				return nil, err
			}
		}

		for _, label := range xb.SpeakerLabels {
			block.SpeakerLabels = append(block.SpeakerLabels, strings.TrimSpace(label))
		}

		for _, pos := range xb.Positions {
			if pos.Bound != "" {
				continue
			}

			v := pos.Value

			switch strings.ToLower(pos.Coordinate) {
			case "azimuth":
				block.Azimuth = &v
			case "elevation":
				block.Elevation = &v
			case "distance":
				block.Distance = &v
			}
		}

		cf.Blocks = append(cf.Blocks, block)
	}

	return cf, nil
}

func resolveType(label, definition string, fromID TypeDefinition) (TypeDefinition, error) {
	switch {
	case label != "":
		return ParseTypeDefinition(label)
	case definition != "":
		return ParseTypeDefinition(definition)
	default:
		return fromID, nil
	}
}

func resolveFormat(label, definition string, fromID FormatDefinition) (FormatDefinition, error) {
	switch {
	case label != "":
		return ParseFormatDefinition(label)
	case definition != "":
		return ParseFormatDefinition(definition)
	default:
		return fromID, nil
	}
}

func (b *builder) link() error {
	doc := b.doc

	for i, x := range b.raw.Programmes {
		p := doc.Programmes[i]

		for _, ref := range x.ContentRefs {
			c, err := b.content(ref)
			if err != nil {
				return fmt.Errorf("%s: %w", p.ID, err)
			}

			p.Contents = append(p.Contents, c)
		}
	}

	for i, x := range b.raw.Contents {
		c := doc.Contents[i]

		for _, ref := range x.ObjectRefs {
			o, err := b.object(ref)
			if err != nil {
				return fmt.Errorf("%s: %w", c.ID, err)
			}

			c.Objects = append(c.Objects, o)
		}
	}

	for i, x := range b.raw.Objects {
		o := doc.Objects[i]

		for _, ref := range x.PackRefs {
			p, err := b.packFormat(ref)
			if err != nil {
				return fmt.Errorf("%s: %w", o.ID, err)
			}

			o.PackFormats = append(o.PackFormats, p)
		}

		for _, ref := range x.ObjectRefs {
			child, err := b.object(ref)
			if err != nil {
				return fmt.Errorf("%s: %w", o.ID, err)
			}

			o.Objects = append(o.Objects, child)
		}

		for _, ref := range x.TrackUIDRefs {
			u, err := b.trackUID(ref)
			if err != nil {
				return fmt.Errorf("%s: %w", o.ID, err)
			}

			o.TrackUIDs = append(o.TrackUIDs, u)
		}
	}

	// formats are linked before the pack/channel imports below can append
	// common elements, so indices still line up with the raw slices
	for i, x := range b.raw.StreamFormats {
		s := doc.StreamFormats[i]

		if x.ChannelRef != "" {
			cf, err := b.channelFormat(x.ChannelRef)
			if err != nil {
				return fmt.Errorf("%s: %w", s.ID, err)
			}

			s.ChannelFormat = cf
		}

		if x.PackRef != "" {
			p, err := b.packFormat(x.PackRef)
			if err != nil {
				return fmt.Errorf("%s: %w", s.ID, err)
			}

			s.PackFormat = p
		}
	}

	for i, x := range b.raw.TrackFormats {
		t := doc.TrackFormats[i]
		if x.StreamRef == "" {
			continue
		}

		s, err := b.streamFormat(x.StreamRef)
		if err != nil {
			return fmt.Errorf("%s: %w", t.ID, err)
		}

		t.StreamFormat = s
	}

	// stream-side track references complete the two-way link
	for i, x := range b.raw.StreamFormats {
		s := doc.StreamFormats[i]

		for _, ref := range x.TrackRefs {
			t, err := b.trackFormat(ref)
			if err != nil {
				return fmt.Errorf("%s: %w", s.ID, err)
			}

			if t.StreamFormat == nil {
				t.StreamFormat = s
			}

			s.TrackFormats = appendUnique(s.TrackFormats, t)
		}
	}

	for _, t := range doc.TrackFormats {
		if t.StreamFormat != nil {
			t.StreamFormat.TrackFormats = appendUnique(t.StreamFormat.TrackFormats, t)
		}
	}

	for i, x := range b.raw.PackFormats {
		p := doc.PackFormats[i]

		for _, ref := range x.ChannelRefs {
			cf, err := b.channelFormat(ref)
			if err != nil {
				return fmt.Errorf("%s: %w", p.ID, err)
			}

			p.ChannelFormats = append(p.ChannelFormats, cf)
		}
	}

	for i, x := range b.raw.TrackUIDs {
		u := doc.TrackUIDs[i]

		if x.TrackFormatRef != "" {
			t, err := b.trackFormat(x.TrackFormatRef)
			if err != nil {
				return fmt.Errorf("%s: %w", u.ID, err)
			}

			u.TrackFormat = t
		}

		if x.ChannelRef != "" {
			cf, err := b.channelFormat(x.ChannelRef)
			if err != nil {
				return fmt.Errorf("%s: %w", u.ID, err)
			}

			u.ChannelFormat = cf
		}

		if x.PackRef != "" {
			p, err := b.packFormat(x.PackRef)
			if err != nil {
				return fmt.Errorf("%s: %w", u.ID, err)
			}

			u.PackFormat = p
		}
	}

	return nil
}

func appendUnique(list []*AudioTrackFormat, t *AudioTrackFormat) []*AudioTrackFormat {
	for _, existing := range list {
		if existing == t {
			return list
		}
	}

	return append(list, t)
}

func (b *builder) content(ref string) (*AudioContent, error) {
	id, err := ParseContentID(ref)
	if err != nil {
		return nil, err
	}

	if c := b.doc.Content(id); c != nil {
		return c, nil
	}

	return nil, fmt.Errorf("%w: %s", ErrDanglingReference, ref)
}

func (b *builder) object(ref string) (*AudioObject, error) {
	id, err := ParseObjectID(ref)
	if err != nil {
		return nil, err
	}

	if o := b.doc.Object(id); o != nil {
		return o, nil
	}

	return nil, fmt.Errorf("%w: %s", ErrDanglingReference, ref)
}

// trackUID resolves a track UID reference. Many files describe their
// tracks only through chna, so an undeclared UID is created bare.
func (b *builder) trackUID(ref string) (*AudioTrackUID, error) {
	id, err := ParseTrackUIDID(ref)
	if err != nil {
		return nil, err
	}

	if u := b.doc.TrackUID(id); u != nil {
		return u, nil
	}

	u := &AudioTrackUID{ID: id}
	b.doc.AddTrackUID(u)

	return u, nil
}

func (b *builder) packFormat(ref string) (*AudioPackFormat, error) {
	id, err := ParsePackFormatID(ref)
	if err != nil {
		return nil, err
	}

	if p, ok := b.doc.ImportCommonPackFormat(id); ok {
		return p, nil
	}

	return nil, fmt.Errorf("%w: %s", ErrDanglingReference, ref)
}

func (b *builder) channelFormat(ref string) (*AudioChannelFormat, error) {
	id, err := ParseChannelFormatID(ref)
	if err != nil {
		return nil, err
	}

	if c, ok := b.doc.importCommonChannelFormat(id); ok {
		return c, nil
	}

	return nil, fmt.Errorf("%w: %s", ErrDanglingReference, ref)
}

func (b *builder) streamFormat(ref string) (*AudioStreamFormat, error) {
	id, err := ParseStreamFormatID(ref)
	if err != nil {
		return nil, err
	}

	if s, ok := b.doc.importCommonStreamFormat(id); ok {
		return s, nil
	}

	return nil, fmt.Errorf("%w: %s", ErrDanglingReference, ref)
}

func (b *builder) trackFormat(ref string) (*AudioTrackFormat, error) {
	id, err := ParseTrackFormatID(ref)
	if err != nil {
		return nil, err
	}

	if t, ok := b.doc.ImportCommonTrackFormat(id); ok {
		return t, nil
	}

	return nil, fmt.Errorf("%w: %s", ErrDanglingReference, ref)
}
