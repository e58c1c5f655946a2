package render

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/cwbudde/algo-dsp/dsp/core"
)

// GainOverrides maps element identifiers to linear gain multipliers.
// Keys are held in canonical upper-case form so that lookups match the
// case-insensitive element selector.
type GainOverrides map[string]float64

// Gain returns the override for id, or 1.
func (g GainOverrides) Gain(id string) float64 {
	if v, ok := g[canonicalID(id)]; ok {
		return v
	}

	return 1
}

// Set stores a linear gain for id.
func (g GainOverrides) Set(id string, linear float64) {
	g[canonicalID(id)] = linear
}

// SetDB stores a gain given in decibels for id.
func (g GainOverrides) SetDB(id string, db float64) {
	g.Set(id, core.DBToLinear(db))
}

// canonicalID upper-cases an element identifier. ADM IDs are an upper-case
// prefix followed by upper-case hex digits.
func canonicalID(id string) string {
	return strings.ToUpper(strings.TrimSpace(id))
}

// ParseGainMapping parses "ID=dB" pairs. Pairs may be given as separate
// arguments, comma separated, or as a JSON-style array such as
// `["AO_1001=-3", "APR_1001=1.5"]`. Later pairs win.
func ParseGainMapping(specs ...string) (GainOverrides, error) {
	out := make(GainOverrides)

	for _, spec := range specs {
		spec = strings.TrimSpace(spec)
		spec = strings.TrimPrefix(spec, "[")
		spec = strings.TrimSuffix(spec, "]")

		for pair := range strings.SplitSeq(spec, ",") {
			pair = strings.Trim(strings.TrimSpace(pair), `"'`)
			if pair == "" {
				continue
			}

			id, db, ok := strings.Cut(pair, "=")
			id = strings.TrimSpace(id)

			if !ok || id == "" {
				return nil, fmt.Errorf("%w: %q", ErrInvalidGain, pair)
			}

			v, err := strconv.ParseFloat(strings.TrimSpace(db), 64)
			if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
				return nil, fmt.Errorf("%w: %q", ErrInvalidGain, pair)
			}

			out.SetDB(id, v)
		}
	}

	return out, nil
}
