package ear

import (
	"errors"
	"math"
	"testing"
)

func calculate(t *testing.T, layoutName string, meta DirectSpeakersMetadata) ([]float64, error) {
	t.Helper()

	layout, err := GetLayout(layoutName)
	if err != nil {
		t.Fatal(err)
	}

	gains := make([]float64, layout.NumChannels())
	err = NewDirectSpeakersGainCalculator(layout).Calculate(meta, gains)

	return gains, err
}

func labels(l ...string) DirectSpeakersMetadata {
	return DirectSpeakersMetadata{SpeakerLabels: l}
}

func assertGains(t *testing.T, got, want []float64) {
	t.Helper()

	for i := range want {
		if math.Abs(got[i]-want[i]) > 1e-9 {
			t.Fatalf("gains = %v, want %v", got, want)
		}
	}
}

func TestCalculateExactMatch(t *testing.T) {
	gains, err := calculate(t, "0+2+0", labels("M+030"))
	if err != nil {
		t.Fatal(err)
	}

	assertGains(t, gains, []float64{1, 0})

	gains, err = calculate(t, "0+5+0", labels("urn:itu:bs:2051:0:speaker:M+000"))
	if err != nil {
		t.Fatal(err)
	}

	assertGains(t, gains, []float64{0, 0, 1, 0, 0, 0})
}

func TestCalculateLFE(t *testing.T) {
	gains, err := calculate(t, "0+5+0", labels("LFE"))
	if err != nil {
		t.Fatal(err)
	}

	assertGains(t, gains, []float64{0, 0, 0, 1, 0, 0})

	gains, err = calculate(t, "0+5+0", labels("LFE2"))
	if err != nil {
		t.Fatal(err)
	}

	assertGains(t, gains, []float64{0, 0, 0, 1, 0, 0})

	gains, err = calculate(t, "0+2+0", labels("LFE1"))
	if err != nil {
		t.Fatal(err)
	}

	assertGains(t, gains, []float64{0, 0})
}

func TestCalculatePanning(t *testing.T) {
	h := math.Sqrt(0.5)

	gains, err := calculate(t, "0+2+0", labels("M+000"))
	if err != nil {
		t.Fatal(err)
	}

	assertGains(t, gains, []float64{h, h})

	// no height layer: U+030 folds onto M+030
	gains, err = calculate(t, "0+5+0", labels("U+030"))
	if err != nil {
		t.Fatal(err)
	}

	assertGains(t, gains, []float64{1, 0, 0, 0, 0, 0})

	gains, err = calculate(t, "0+1+0", labels("M-110"))
	if err != nil {
		t.Fatal(err)
	}

	assertGains(t, gains, []float64{1})
}

func TestCalculateConstantPower(t *testing.T) {
	for _, label := range []string{"M+110", "M-110", "M+180", "M+090", "M-022", "U+135", "T+000"} {
		for _, layout := range []string{"0+2+0", "0+5+0", "4+5+0"} {
			gains, err := calculate(t, layout, labels(label))
			if err != nil {
				t.Fatalf("%s on %s: %v", label, layout, err)
			}

			var power float64
			for _, g := range gains {
				power += g * g
			}

			if math.Abs(power-1) > 1e-9 {
				t.Errorf("%s on %s: power %v, gains %v", label, layout, power, gains)
			}
		}
	}
}

func TestCalculatePositionFallback(t *testing.T) {
	az := -30.0
	meta := DirectSpeakersMetadata{SpeakerLabels: []string{"custom"}, Azimuth: &az}

	gains, err := calculate(t, "0+2+0", meta)
	if err != nil {
		t.Fatal(err)
	}

	assertGains(t, gains, []float64{0, 1})
}

func TestCalculateErrors(t *testing.T) {
	_, err := calculate(t, "0+2+0", labels("X+999"))
	if !errors.Is(err, ErrUnknownSpeakerLabel) {
		t.Fatalf("err = %v, want ErrUnknownSpeakerLabel", err)
	}

	layout, _ := GetLayout("0+2+0")

	err = NewDirectSpeakersGainCalculator(layout).Calculate(labels("M+030"), make([]float64, 3))
	if !errors.Is(err, ErrGainsLength) {
		t.Fatalf("err = %v, want ErrGainsLength", err)
	}
}
