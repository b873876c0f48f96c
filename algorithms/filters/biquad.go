package filters

import (
	"fmt"
	"math"
	"math/cmplx"
)

// ResponseType selects the biquad shape
type ResponseType int

const (
	Lowpass ResponseType = iota
	Highpass
	Bandpass
)

func (r ResponseType) String() string {
	switch r {
	case Lowpass:
		return "lowpass"
	case Highpass:
		return "highpass"
	case Bandpass:
		return "bandpass"
	default:
		return "unknown"
	}
}

// ButterworthQ gives a maximally flat second order response
const ButterworthQ = 1 / math.Sqrt2

// Biquad is a second order IIR filter using the cookbook formulas from
// Robert Bristow-Johnson's "Cookbook formulae for audio EQ biquad filter
// coefficients".
// Reference: https://webaudio.github.io/Audio-EQ-Cookbook/audio-eq-cookbook.html
//
// The capture graph runs audio through a lowpass at 3 kHz before analysis;
// voice content sits below it and the hiss above it only inflates the
// zero-crossing rate.
type Biquad struct {
	response   ResponseType
	sampleRate int
	cutoff     float64
	q          float64

	// normalized so a0 == 1
	b0, b1, b2 float64
	a1, a2     float64

	// Direct Form II state
	w1, w2 float64
}

// NewBiquad creates a filter. cutoff is the corner frequency for low/high
// pass and the center frequency for bandpass.
func NewBiquad(response ResponseType, sampleRate int, cutoff, q float64) (*Biquad, error) {
	if sampleRate <= 0 {
		return nil, fmt.Errorf("sample rate must be positive, got %d", sampleRate)
	}
	if cutoff <= 0 || cutoff >= float64(sampleRate)/2 {
		return nil, fmt.Errorf("cutoff must be between 0 and Nyquist (%d Hz), got %g", sampleRate/2, cutoff)
	}
	if q <= 0 {
		return nil, fmt.Errorf("q must be positive, got %g", q)
	}

	bq := &Biquad{response: response, sampleRate: sampleRate, cutoff: cutoff, q: q}
	bq.computeCoefficients()
	return bq, nil
}

// NewLowpass creates a Butterworth lowpass
func NewLowpass(sampleRate int, cutoff float64) (*Biquad, error) {
	return NewBiquad(Lowpass, sampleRate, cutoff, ButterworthQ)
}

func (bq *Biquad) computeCoefficients() {
	w0 := 2.0 * math.Pi * bq.cutoff / float64(bq.sampleRate)
	cosW0 := math.Cos(w0)
	alpha := math.Sin(w0) / (2.0 * bq.q)

	var b0, b1, b2 float64
	switch bq.response {
	case Highpass:
		b0 = (1 + cosW0) / 2
		b1 = -(1 + cosW0)
		b2 = (1 + cosW0) / 2
	case Bandpass:
		// constant 0 dB peak gain
		b0 = alpha
		b1 = 0
		b2 = -alpha
	default:
		b0 = (1 - cosW0) / 2
		b1 = 1 - cosW0
		b2 = (1 - cosW0) / 2
	}
	a0 := 1 + alpha
	a1 := -2 * cosW0
	a2 := 1 - alpha

	bq.b0, bq.b1, bq.b2 = b0/a0, b1/a0, b2/a0
	bq.a1, bq.a2 = a1/a0, a2/a0
}

// Process filters one sample:
// w[n] = x[n] - a1*w[n-1] - a2*w[n-2]
// y[n] = b0*w[n] + b1*w[n-1] + b2*w[n-2]
func (bq *Biquad) Process(input float64) float64 {
	w := input - bq.a1*bq.w1 - bq.a2*bq.w2
	output := bq.b0*w + bq.b1*bq.w1 + bq.b2*bq.w2
	bq.w2 = bq.w1
	bq.w1 = w
	return output
}

// ProcessBuffer filters input into a new slice, carrying state across calls
func (bq *Biquad) ProcessBuffer(input []float64) []float64 {
	output := make([]float64, len(input))
	for i, sample := range input {
		output[i] = bq.Process(sample)
	}
	return output
}

// Reset clears the delay line
func (bq *Biquad) Reset() {
	bq.w1, bq.w2 = 0, 0
}

// Response returns the linear magnitude response at frequency
func (bq *Biquad) Response(frequency float64) float64 {
	w := 2.0 * math.Pi * frequency / float64(bq.sampleRate)
	z1 := cmplx.Exp(complex(0, -w))
	z2 := z1 * z1

	num := complex(bq.b0, 0) + complex(bq.b1, 0)*z1 + complex(bq.b2, 0)*z2
	den := 1 + complex(bq.a1, 0)*z1 + complex(bq.a2, 0)*z2
	return cmplx.Abs(num / den)
}

// Cutoff returns the corner or center frequency
func (bq *Biquad) Cutoff() float64 {
	return bq.cutoff
}
