package bw64

import "testing"

func TestNormalizePCMInt(t *testing.T) {
	tests := []struct {
		name     string
		sample   int
		bitDepth int
		want     float64
	}{
		{"8-bit midpoint", 128, 8, 0.5 / scalePCMInt8},
		{"8-bit min", 0, 8, -1},
		{"16-bit min", -32768, 16, -1},
		{"16-bit zero", 0, 16, 0},
		{"24-bit half", 4194304, 24, 0.5},
		{"32-bit min", -2147483648, 32, -1},
		{"unsupported", 100, 12, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := normalizePCMInt(tt.sample, tt.bitDepth)
			if got != tt.want {
				t.Fatalf("normalizePCMInt(%d, %d)=%v, want %v", tt.sample, tt.bitDepth, got, tt.want)
			}
		})
	}
}

func TestFloatToPCMInt32Saturates(t *testing.T) {
	tests := []struct {
		name     string
		value    float64
		bitDepth int
		want     int32
	}{
		{"16-bit full scale", 1, 16, maxPCMInt16},
		{"16-bit over", 3, 16, maxPCMInt16},
		{"16-bit negative full scale", -1, 16, -32768},
		{"16-bit under", -4, 16, -32768},
		{"24-bit half", 0.5, 24, 4194304},
		{"32-bit over", 1.5, 32, maxPCMInt32},
		{"unsupported", 0.5, 20, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := floatToPCMInt32(tt.value, tt.bitDepth)
			if got != tt.want {
				t.Fatalf("floatToPCMInt32(%v, %d)=%d, want %d", tt.value, tt.bitDepth, got, tt.want)
			}
		})
	}
}

func TestFloatToPCMUint8(t *testing.T) {
	for _, tt := range []struct {
		value float64
		want  uint8
	}{
		{-2, 0},
		{-1, 0},
		{0, 128},
		{1, 255},
		{2, 255},
	} {
		if got := floatToPCMUint8(tt.value); got != tt.want {
			t.Errorf("floatToPCMUint8(%v)=%d, want %d", tt.value, got, tt.want)
		}
	}
}

func TestPCMRoundTripWithinOneStep(t *testing.T) {
	for _, depth := range []int{16, 24, 32} {
		for _, v := range []float64{-0.75, -0.1, 0, 0.3333, 0.999} {
			back := normalizePCMInt(int(floatToPCMInt32(v, depth)), depth)
			step := 1.0 / float64(int64(1)<<(depth-1))
			if d := back - v; d > step || d < -step {
				t.Errorf("%d-bit round trip of %v gave %v", depth, v, back)
			}
		}
	}
}
