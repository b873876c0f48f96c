package common

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Basic statistics shared by the analyzers. Every function is defined for
// empty input and never returns NaN for finite data.

// Mean calculates the arithmetic mean of a slice using gonum
func Mean(data []float64) float64 {
	if len(data) == 0 {
		return 0.0
	}
	return stat.Mean(data, nil)
}

// PopulationStdDev is the standard deviation normalized by n, not n-1
func PopulationStdDev(data []float64) float64 {
	if len(data) < 2 {
		return 0.0
	}
	_, std := stat.PopMeanStdDev(data, nil)
	return std
}

// CoefficientOfVariation returns stddev/mean*100. A zero or negative mean
// has no meaningful relative dispersion and yields 0.
func CoefficientOfVariation(data []float64) float64 {
	mean := Mean(data)
	if mean <= 0 {
		return 0.0
	}
	return PopulationStdDev(data) / mean * 100.0
}

// RMS calculates root mean square
func RMS(data []float64) float64 {
	if len(data) == 0 {
		return 0.0
	}
	return math.Sqrt(floats.Dot(data, data) / float64(len(data)))
}

// Peak returns the largest absolute sample value
func Peak(data []float64) float64 {
	if len(data) == 0 {
		return 0.0
	}
	return math.Max(math.Abs(floats.Max(data)), math.Abs(floats.Min(data)))
}

// Clamp limits v to [lo, hi]. NaN maps to lo.
func Clamp(v, lo, hi float64) float64 {
	if math.IsNaN(v) || v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Wrap maps v into [0, size) treating the range as periodic
func Wrap(v, size float64) float64 {
	if size <= 0 {
		return 0
	}
	v = math.Mod(v, size)
	if v < 0 {
		v += size
	}
	// Mod of a tiny negative value can round back up to size
	if v >= size {
		v = 0
	}
	return v
}
