package spectral

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// Band is a frequency range in Hz, low edge inclusive
type Band struct {
	Name   string  `json:"name" yaml:"name"`
	LowHz  float64 `json:"low_hz" yaml:"low_hz"`
	HighHz float64 `json:"high_hz" yaml:"high_hz"`
	Weight float64 `json:"weight" yaml:"weight"`
}

// DefaultVoiceBands splits the telephone voice range into low/mid/high.
// Voice energy is mid-band dominant, hence the 0.6 mid weight.
func DefaultVoiceBands() []Band {
	return []Band{
		{Name: "low", LowHz: 85, HighHz: 340, Weight: 0.2},
		{Name: "mid", LowHz: 340, HighHz: 1300, Weight: 0.6},
		{Name: "high", LowHz: 1300, HighHz: 3400, Weight: 0.2},
	}
}

// BandLevels holds per-band mean magnitudes and their weighted combination
type BandLevels struct {
	Low      float64 `json:"low"`
	Mid      float64 `json:"mid"`
	High     float64 `json:"high"`
	Combined float64 `json:"combined"`
}

// BandEnergy averages normalized magnitudes over fixed bin ranges
type BandEnergy struct {
	bands  []Band
	ranges [][2]int
}

// NewBandEnergy maps band edges to bin indices for the given resolution.
// Bands are expected in low, mid, high order.
func NewBandEnergy(sampleRate, fftSize int, bands []Band) *BandEnergy {
	if len(bands) == 0 {
		bands = DefaultVoiceBands()
	}

	resolution := float64(sampleRate) / float64(fftSize)
	ranges := make([][2]int, len(bands))
	for i, b := range bands {
		lo := int(math.Round(b.LowHz / resolution))
		hi := int(math.Round(b.HighHz / resolution))
		if hi <= lo {
			hi = lo + 1
		}
		ranges[i] = [2]int{lo, hi}
	}

	return &BandEnergy{bands: bands, ranges: ranges}
}

// Ranges returns the [start, end) bin index range of each band
func (be *BandEnergy) Ranges() [][2]int {
	out := make([][2]int, len(be.ranges))
	copy(out, be.ranges)
	return out
}

// Compute returns band means of magnitudes, which must already be in [0,1]
func (be *BandEnergy) Compute(magnitudes []float64) BandLevels {
	levels := make([]float64, len(be.bands))
	combined := 0.0

	for i, r := range be.ranges {
		lo, hi := r[0], min(r[1], len(magnitudes))
		if lo >= hi {
			continue
		}
		levels[i] = floats.Sum(magnitudes[lo:hi]) / float64(hi-lo)
		combined += levels[i] * be.bands[i].Weight
	}

	var out BandLevels
	if len(levels) > 0 {
		out.Low = levels[0]
	}
	if len(levels) > 1 {
		out.Mid = levels[1]
	}
	if len(levels) > 2 {
		out.High = levels[2]
	}
	out.Combined = math.Max(0, math.Min(1, combined))
	return out
}
