package render

import (
	"errors"
	"math"
	"testing"
)

func TestParseGainMapping(t *testing.T) {
	gains, err := ParseGainMapping(`["AO_1001=-6", "APR_1001=0"]`, "ACO_1001=20")
	if err != nil {
		t.Fatal(err)
	}

	want := map[string]float64{
		"AO_1001":  math.Pow(10, -6.0/20),
		"APR_1001": 1,
		"ACO_1001": 10,
	}

	for id, g := range want {
		if math.Abs(gains[id]-g) > 1e-12 {
			t.Errorf("%s = %v, want %v", id, gains[id], g)
		}
	}

	if gains.Gain("AO_9999") != 1 {
		t.Fatal("missing override must default to unity")
	}
}

func TestParseGainMappingErrors(t *testing.T) {
	for _, in := range []string{"AO_1001", "=3", "AO_1001=loud", "AO_1001=Inf"} {
		_, err := ParseGainMapping(in)
		if !errors.Is(err, ErrInvalidGain) {
			t.Errorf("%q: err = %v", in, err)
		}
	}

	gains, err := ParseGainMapping("", "[]")
	if err != nil || len(gains) != 0 {
		t.Fatalf("empty mapping: %v, %v", gains, err)
	}
}

func TestSanitizeFileName(t *testing.T) {
	cases := map[string]string{
		"Main Mix":          "Main_Mix",
		"Émission spéciale": "Emission_speciale",
		"a/b:c?":            "abc",
		"  ":                "untitled",
		"v2-final_take":     "v2-final_take",
	}

	for in, want := range cases {
		if got := SanitizeFileName(in); got != want {
			t.Errorf("SanitizeFileName(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestGainKeysIgnoreCase(t *testing.T) {
	gains, err := ParseGainMapping("ao_100a=-6", " aco_1001 = 0")
	if err != nil {
		t.Fatal(err)
	}

	want := math.Pow(10, -6.0/20)
	if g := gains.Gain("AO_100A"); math.Abs(g-want) > 1e-12 {
		t.Fatalf("AO_100A = %v, want %v", g, want)
	}

	if g := gains.Gain("Ao_100A"); math.Abs(g-want) > 1e-12 {
		t.Fatalf("mixed-case lookup = %v, want %v", g, want)
	}

	if _, ok := gains["ACO_1001"]; !ok {
		t.Fatalf("keys = %v", gains)
	}

	cfg := make(GainOverrides)
	cfg.SetDB("apr_1001", 20)

	if g := cfg.Gain("APR_1001"); math.Abs(g-10) > 1e-12 {
		t.Fatalf("APR_1001 = %v", g)
	}
}
