package adm

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrInvalidID is returned when an identifier string is malformed.
var ErrInvalidID = errors.New("invalid ADM identifier")

// TypeDefinition is the typeLabel of pack, channel, stream and block formats.
type TypeDefinition uint16

const (
	TypeUndefined      TypeDefinition = 0
	TypeDirectSpeakers TypeDefinition = 1
	TypeMatrix         TypeDefinition = 2
	TypeObjects        TypeDefinition = 3
	TypeHOA            TypeDefinition = 4
	TypeBinaural       TypeDefinition = 5
)

var typeDefinitionNames = map[TypeDefinition]string{
	TypeUndefined:      "Undefined",
	TypeDirectSpeakers: "DirectSpeakers",
	TypeMatrix:         "Matrix",
	TypeObjects:        "Objects",
	TypeHOA:            "HOA",
	TypeBinaural:       "Binaural",
}

func (t TypeDefinition) String() string {
	if name, ok := typeDefinitionNames[t]; ok {
		return name
	}

	return fmt.Sprintf("TypeDefinition(%d)", uint16(t))
}

// Label returns the four digit typeLabel.
func (t TypeDefinition) Label() string {
	return fmt.Sprintf("%04X", uint16(t))
}

// ParseTypeDefinition accepts either a typeLabel ("0001") or a
// typeDefinition name ("DirectSpeakers").
func ParseTypeDefinition(s string) (TypeDefinition, error) {
	for t, name := range typeDefinitionNames {
		if strings.EqualFold(name, s) {
			return t, nil
		}
	}

	v, err := strconv.ParseUint(s, 16, 16)
	if err != nil {
		return TypeUndefined, fmt.Errorf("%w: type %q", ErrInvalidID, s)
	}

	return TypeDefinition(v), nil
}

// FormatDefinition is the formatLabel of stream and track formats.
type FormatDefinition uint16

const (
	FormatUndefined FormatDefinition = 0
	FormatPCM       FormatDefinition = 1
)

func (f FormatDefinition) String() string {
	if f == FormatPCM {
		return "PCM"
	}

	return fmt.Sprintf("FormatDefinition(%d)", uint16(f))
}

func (f FormatDefinition) Label() string {
	return fmt.Sprintf("%04X", uint16(f))
}

func ParseFormatDefinition(s string) (FormatDefinition, error) {
	if strings.EqualFold(s, "PCM") {
		return FormatPCM, nil
	}

	v, err := strconv.ParseUint(s, 16, 16)
	if err != nil {
		return FormatUndefined, fmt.Errorf("%w: format %q", ErrInvalidID, s)
	}

	return FormatDefinition(v), nil
}

// ProgrammeID is APR_xxxx.
type ProgrammeID uint16

func (id ProgrammeID) String() string { return fmt.Sprintf("APR_%04X", uint16(id)) }

func ParseProgrammeID(s string) (ProgrammeID, error) {
	v, err := parseHexFields(s, "APR_", 4)
	if err != nil {
		return 0, err
	}

	return ProgrammeID(v[0]), nil
}

// ContentID is ACO_xxxx.
type ContentID uint16

func (id ContentID) String() string { return fmt.Sprintf("ACO_%04X", uint16(id)) }

func ParseContentID(s string) (ContentID, error) {
	v, err := parseHexFields(s, "ACO_", 4)
	if err != nil {
		return 0, err
	}

	return ContentID(v[0]), nil
}

// ObjectID is AO_xxxx.
type ObjectID uint16

func (id ObjectID) String() string { return fmt.Sprintf("AO_%04X", uint16(id)) }

func ParseObjectID(s string) (ObjectID, error) {
	v, err := parseHexFields(s, "AO_", 4)
	if err != nil {
		return 0, err
	}

	return ObjectID(v[0]), nil
}

// TrackUIDID is ATU_xxxxxxxx. Its value is the 1-based physical track
// number when the UID is bound through chna.
type TrackUIDID uint32

func (id TrackUIDID) String() string { return fmt.Sprintf("ATU_%08X", uint32(id)) }

func ParseTrackUIDID(s string) (TrackUIDID, error) {
	v, err := parseHexFields(s, "ATU_", 8)
	if err != nil {
		return 0, err
	}

	return TrackUIDID(v[0]), nil
}

// PackFormatID is AP_yyyyxxxx, yyyy being the type label.
type PackFormatID struct {
	Type  TypeDefinition
	Value uint16
}

func (id PackFormatID) String() string {
	return fmt.Sprintf("AP_%04X%04X", uint16(id.Type), id.Value)
}

func ParsePackFormatID(s string) (PackFormatID, error) {
	v, err := parseHexFields(s, "AP_", 4, 4)
	if err != nil {
		return PackFormatID{}, err
	}

	return PackFormatID{Type: TypeDefinition(v[0]), Value: uint16(v[1])}, nil
}

// ChannelFormatID is AC_yyyyxxxx.
type ChannelFormatID struct {
	Type  TypeDefinition
	Value uint16
}

func (id ChannelFormatID) String() string {
	return fmt.Sprintf("AC_%04X%04X", uint16(id.Type), id.Value)
}

func ParseChannelFormatID(s string) (ChannelFormatID, error) {
	v, err := parseHexFields(s, "AC_", 4, 4)
	if err != nil {
		return ChannelFormatID{}, err
	}

	return ChannelFormatID{Type: TypeDefinition(v[0]), Value: uint16(v[1])}, nil
}

// StreamFormatID is AS_yyyyxxxx, yyyy being the format label.
type StreamFormatID struct {
	Format FormatDefinition
	Value  uint16
}

func (id StreamFormatID) String() string {
	return fmt.Sprintf("AS_%04X%04X", uint16(id.Format), id.Value)
}

func ParseStreamFormatID(s string) (StreamFormatID, error) {
	v, err := parseHexFields(s, "AS_", 4, 4)
	if err != nil {
		return StreamFormatID{}, err
	}

	return StreamFormatID{Format: FormatDefinition(v[0]), Value: uint16(v[1])}, nil
}

// TrackFormatID is AT_yyyyxxxx_zz.
type TrackFormatID struct {
	Format  FormatDefinition
	Value   uint16
	Counter uint8
}

func (id TrackFormatID) String() string {
	return fmt.Sprintf("AT_%04X%04X_%02X", uint16(id.Format), id.Value, id.Counter)
}

func ParseTrackFormatID(s string) (TrackFormatID, error) {
	v, err := parseHexFields(s, "AT_", 4, 4, -2)
	if err != nil {
		return TrackFormatID{}, err
	}

	return TrackFormatID{Format: FormatDefinition(v[0]), Value: uint16(v[1]), Counter: uint8(v[2])}, nil
}

// BlockFormatID is AB_yyyyxxxx_zzzzzzzz.
type BlockFormatID struct {
	Type    TypeDefinition
	Value   uint16
	Counter uint32
}

func (id BlockFormatID) String() string {
	return fmt.Sprintf("AB_%04X%04X_%08X", uint16(id.Type), id.Value, id.Counter)
}

func ParseBlockFormatID(s string) (BlockFormatID, error) {
	v, err := parseHexFields(s, "AB_", 4, 4, -8)
	if err != nil {
		return BlockFormatID{}, err
	}

	return BlockFormatID{Type: TypeDefinition(v[0]), Value: uint16(v[1]), Counter: v[2]}, nil
}

// parseHexFields splits s after prefix into fixed-width hex fields. A
// negative width marks a field preceded by an underscore.
func parseHexFields(s, prefix string, widths ...int) ([]uint32, error) {
	rest, ok := strings.CutPrefix(strings.TrimSpace(s), prefix)
	if !ok {
		return nil, fmt.Errorf("%w: %q lacks prefix %s", ErrInvalidID, s, prefix)
	}

	out := make([]uint32, 0, len(widths))

	for _, w := range widths {
		if w < 0 {
			rest, ok = strings.CutPrefix(rest, "_")
			if !ok {
				return nil, fmt.Errorf("%w: %q", ErrInvalidID, s)
			}

			w = -w
		}

		if len(rest) < w {
			return nil, fmt.Errorf("%w: %q is too short", ErrInvalidID, s)
		}

		v, err := strconv.ParseUint(rest[:w], 16, 32)
		if err != nil {
			return nil, fmt.Errorf("%w: %q", ErrInvalidID, s)
		}

		out = append(out, uint32(v))
		rest = rest[w:]
	}

	if rest != "" {
		return nil, fmt.Errorf("%w: trailing %q in %q", ErrInvalidID, rest, s)
	}

	return out, nil
}

// ElementKind names the element an identifier string refers to.
type ElementKind int

const (
	KindUnknown ElementKind = iota
	KindProgramme
	KindContent
	KindObject
	KindPackFormat
	KindChannelFormat
	KindStreamFormat
	KindTrackFormat
	KindTrackUID
)

// KindOf classifies an identifier string by its prefix.
func KindOf(id string) ElementKind {
	prefixes := []struct {
		prefix string
		kind   ElementKind
	}{
		{"APR_", KindProgramme},
		{"ACO_", KindContent},
		{"AO_", KindObject},
		{"AP_", KindPackFormat},
		{"AC_", KindChannelFormat},
		{"AS_", KindStreamFormat},
		{"AT_", KindTrackFormat},
		{"ATU_", KindTrackUID},
	}

	for _, p := range prefixes {
		if strings.HasPrefix(id, p.prefix) {
			return p.kind
		}
	}

	return KindUnknown
}
