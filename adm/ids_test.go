package adm

import (
	"errors"
	"testing"
)

func TestIDRoundTrip(t *testing.T) {
	cases := []struct {
		in    string
		parse func(string) (stringer, error)
	}{
		{"APR_1001", func(s string) (stringer, error) { return ParseProgrammeID(s) }},
		{"ACO_1001", func(s string) (stringer, error) { return ParseContentID(s) }},
		{"AO_100A", func(s string) (stringer, error) { return ParseObjectID(s) }},
		{"ATU_00000002", func(s string) (stringer, error) { return ParseTrackUIDID(s) }},
		{"AP_00010002", func(s string) (stringer, error) { return ParsePackFormatID(s) }},
		{"AC_00010003", func(s string) (stringer, error) { return ParseChannelFormatID(s) }},
		{"AS_00010003", func(s string) (stringer, error) { return ParseStreamFormatID(s) }},
		{"AT_00010003_01", func(s string) (stringer, error) { return ParseTrackFormatID(s) }},
		{"AB_00010003_00000001", func(s string) (stringer, error) { return ParseBlockFormatID(s) }},
	}

	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			id, err := tc.parse(tc.in)
			if err != nil {
				t.Fatalf("parse: %v", err)
			}

			if got := id.String(); got != tc.in {
				t.Fatalf("String() = %q, want %q", got, tc.in)
			}
		})
	}
}

type stringer interface{ String() string }

func TestParseIDErrors(t *testing.T) {
	bad := []string{"", "APR_", "APR_10", "APR_10011", "AO_XYZW", "ACO_1001"}

	for _, s := range bad {
		_, err := ParseProgrammeID(s)
		if !errors.Is(err, ErrInvalidID) {
			t.Errorf("ParseProgrammeID(%q) err = %v, want ErrInvalidID", s, err)
		}
	}

	_, err := ParseTrackFormatID("AT_00010003")
	if !errors.Is(err, ErrInvalidID) {
		t.Fatalf("missing counter: err = %v", err)
	}
}

func TestParsedFields(t *testing.T) {
	pack, err := ParsePackFormatID("AP_0001000A")
	if err != nil {
		t.Fatal(err)
	}

	if pack.Type != TypeDirectSpeakers || pack.Value != 0x0a {
		t.Fatalf("pack = %+v", pack)
	}

	uid, err := ParseTrackUIDID("ATU_0000000C")
	if err != nil {
		t.Fatal(err)
	}

	if uid != 12 {
		t.Fatalf("uid = %d, want 12", uid)
	}
}

func TestTypeDefinition(t *testing.T) {
	for _, s := range []string{"0001", "DirectSpeakers", "directspeakers"} {
		typ, err := ParseTypeDefinition(s)
		if err != nil {
			t.Fatalf("%q: %v", s, err)
		}

		if typ != TypeDirectSpeakers {
			t.Fatalf("%q parsed as %v", s, typ)
		}
	}

	if TypeObjects.Label() != "0003" || TypeObjects.String() != "Objects" {
		t.Fatalf("Objects label/name = %s/%s", TypeObjects.Label(), TypeObjects)
	}

	_, err := ParseTypeDefinition("nope")
	if !errors.Is(err, ErrInvalidID) {
		t.Fatalf("err = %v", err)
	}
}

func TestKindOf(t *testing.T) {
	cases := map[string]ElementKind{
		"APR_1001":       KindProgramme,
		"ACO_1001":       KindContent,
		"AO_1001":        KindObject,
		"AP_00010001":    KindPackFormat,
		"AT_00010001_01": KindTrackFormat,
		"ATU_00000001":   KindTrackUID,
		"XYZ":            KindUnknown,
	}

	for in, want := range cases {
		if got := KindOf(in); got != want {
			t.Errorf("KindOf(%q) = %d, want %d", in, got, want)
		}
	}
}
