package bw64

import "math"

const (
	maxPCMInt8Unsigned = 255
	scalePCMInt8       = 127.5
	scalePCMInt16      = 32768.0
	scalePCMInt24      = 8388608.0
	scalePCMInt32      = 2147483648.0
	maxPCMInt16        = 32767
	maxPCMInt24        = 8388607
	maxPCMInt32        = 2147483647
)

func clampFloat64(value, lo, hi float64) float64 {
	if value < lo {
		return lo
	}

	if value > hi {
		return hi
	}

	return value
}

// normalizePCMInt maps a signed (or, for 8 bits, unsigned) integer sample
// to [-1, 1).
func normalizePCMInt(sample int, bitDepth int) float64 {
	switch bitDepth {
	case 8:
		return (float64(sample) - scalePCMInt8) / scalePCMInt8
	case 16:
		return float64(sample) / scalePCMInt16
	case 24:
		return float64(sample) / scalePCMInt24
	case 32:
		return float64(sample) / scalePCMInt32
	default:
		return 0
	}
}

func floatToPCMUint8(value float64) uint8 {
	value = clampFloat64(value, -1, 1)

	scaled := int(math.Round((value + 1.0) * scalePCMInt8))
	if scaled < 0 {
		return 0
	}

	if scaled > maxPCMInt8Unsigned {
		return maxPCMInt8Unsigned
	}

	return uint8(scaled)
}

// floatToPCMInt32 quantises a normalised sample to the given integer depth.
// Out-of-range input saturates at the integer limits.
func floatToPCMInt32(value float64, bitDepth int) int32 {
	value = clampFloat64(value, -1, 1)

	var scale float64

	var maxValue int64

	switch bitDepth {
	case 16:
		scale, maxValue = scalePCMInt16, maxPCMInt16
	case 24:
		scale, maxValue = scalePCMInt24, maxPCMInt24
	case 32:
		scale, maxValue = scalePCMInt32, maxPCMInt32
	default:
		return 0
	}

	sample := min(int64(math.Round(value*scale)), maxValue)
	if sample < -int64(scale) {
		sample = -int64(scale)
	}

	return int32(sample)
}
