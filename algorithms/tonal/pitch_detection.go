package tonal

import (
	"math"
)

// PitchEstimate is the result of one detection pass
type PitchEstimate struct {
	Frequency  float64 `json:"frequency"`  // Hz, -1 when no pitch was found
	Confidence float64 `json:"confidence"` // 0-1
}

// NoPitch is reported for silent, constant or aperiodic buffers
var NoPitch = PitchEstimate{Frequency: -1, Confidence: 0}

// Found reports whether the estimate carries a period at all
func (pe PitchEstimate) Found() bool {
	return pe.Frequency > 0
}

// PitchDetectionParams holds the YIN and acceptance parameters
type PitchDetectionParams struct {
	// YIN absolute threshold on the normalized difference (0.1-0.5)
	Threshold float64 `json:"threshold" yaml:"threshold"`
	// Confidences at or below this are reported as 0
	ProbabilityThreshold float64 `json:"probability_threshold" yaml:"probability_threshold"`

	// Acceptance gate applied by callers through Accept
	MinFreq       float64 `json:"min_freq" yaml:"min_freq"`
	MaxFreq       float64 `json:"max_freq" yaml:"max_freq"`
	MinConfidence float64 `json:"min_confidence" yaml:"min_confidence"`
}

// DefaultPitchDetectionParams covers the speaking voice range
func DefaultPitchDetectionParams() PitchDetectionParams {
	return PitchDetectionParams{
		Threshold:            0.1,
		ProbabilityThreshold: 0.1,
		MinFreq:              50,  // below a low male voice
		MaxFreq:              600, // above a high female voice
		MinConfidence:        0.5,
	}
}

// PitchDetector estimates the fundamental frequency of a buffer with YIN.
//
// Reference: de Cheveigné, A., Kawahara, H. (2002). "YIN, a fundamental
// frequency estimator for speech and music"
//
// The detector reuses its scratch buffers between calls and is not safe for
// concurrent use.
type PitchDetector struct {
	params PitchDetectionParams

	diff  []float64
	cmndf []float64
}

// NewPitchDetector creates a detector, filling unset params with defaults
func NewPitchDetector(params PitchDetectionParams) *PitchDetector {
	defaults := DefaultPitchDetectionParams()
	if params.Threshold <= 0 {
		params.Threshold = defaults.Threshold
	}
	if params.ProbabilityThreshold <= 0 {
		params.ProbabilityThreshold = defaults.ProbabilityThreshold
	}
	if params.MaxFreq <= 0 {
		params.MinFreq = defaults.MinFreq
		params.MaxFreq = defaults.MaxFreq
	}
	if params.MinConfidence <= 0 {
		params.MinConfidence = defaults.MinConfidence
	}
	return &PitchDetector{params: params}
}

// Params returns the detector parameters
func (pd *PitchDetector) Params() PitchDetectionParams {
	return pd.params
}

// Detect runs YIN over buf. Only the first half of buf is compared against
// its lagged copies, so the longest detectable period is len(buf)/2 samples.
func (pd *PitchDetector) Detect(buf []float64, sampleRate int) PitchEstimate {
	halfN := len(buf) / 2
	if halfN < 3 || sampleRate <= 0 {
		return NoPitch
	}
	pd.ensureBuffers(halfN)

	// Difference function
	pd.diff[0] = 0
	for tau := 1; tau < halfN; tau++ {
		sum := 0.0
		for i := range halfN {
			delta := buf[i] - buf[i+tau]
			sum += delta * delta
		}
		pd.diff[tau] = sum
	}

	// Cumulative mean normalized difference. A zero running sum means the
	// buffer has not changed at all up to this lag.
	pd.cmndf[0] = 1
	runningSum := 0.0
	for tau := 1; tau < halfN; tau++ {
		runningSum += pd.diff[tau]
		if runningSum == 0 {
			pd.cmndf[tau] = 1
			continue
		}
		pd.cmndf[tau] = pd.diff[tau] * float64(tau) / runningSum
	}

	// Absolute threshold, then follow the dip down to its local minimum
	tau := -1
	for t := 2; t < halfN; t++ {
		if pd.cmndf[t] < pd.params.Threshold {
			for t+1 < halfN && pd.cmndf[t+1] < pd.cmndf[t] {
				t++
			}
			tau = t
			break
		}
	}
	if tau < 0 {
		return NoPitch
	}

	period := pd.parabolicInterpolation(tau, halfN)
	if period <= 0 {
		return NoPitch
	}

	confidence := 1 - pd.cmndf[tau]
	if confidence <= pd.params.ProbabilityThreshold {
		confidence = 0
	}

	return PitchEstimate{
		Frequency:  float64(sampleRate) / period,
		Confidence: confidence,
	}
}

// Accept applies the downstream voice-range and confidence gate
func (pd *PitchDetector) Accept(est PitchEstimate) bool {
	return est.Frequency > pd.params.MinFreq &&
		est.Frequency < pd.params.MaxFreq &&
		est.Confidence > pd.params.MinConfidence
}

func (pd *PitchDetector) ensureBuffers(halfN int) {
	if cap(pd.diff) < halfN {
		pd.diff = make([]float64, halfN)
		pd.cmndf = make([]float64, halfN)
	}
	pd.diff = pd.diff[:halfN]
	pd.cmndf = pd.cmndf[:halfN]
}

// parabolicInterpolation refines tau to a fractional period. Neighbors are
// clamped into [1, halfN-1]; at an edge the lower of the two points wins.
func (pd *PitchDetector) parabolicInterpolation(tau, halfN int) float64 {
	x0 := max(tau-1, 1)
	x2 := min(tau+1, halfN-1)
	d := pd.cmndf

	if x0 == tau {
		if d[tau] <= d[x2] {
			return float64(tau)
		}
		return float64(x2)
	}
	if x2 == tau {
		if d[tau] <= d[x0] {
			return float64(tau)
		}
		return float64(x0)
	}

	s0, s1, s2 := d[x0], d[tau], d[x2]
	denom := 2 * (2*s1 - s2 - s0)
	if denom == 0 || math.IsNaN(denom) {
		return float64(tau)
	}
	return float64(tau) + (s2-s0)/denom
}
