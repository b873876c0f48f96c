package spectral

import (
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"
)

// FFT provides Fast Fourier Transform functionality
type FFT struct{}

// NewFFT creates a new FFT calculator
func NewFFT() *FFT {
	return &FFT{}
}

// Compute computes the Fast Fourier Transform using mjibson/go-dsp.
// go-dsp handles all sizes, including non-power-of-2.
func (f *FFT) Compute(x []float64) []complex128 {
	if len(x) == 0 {
		return []complex128{}
	}
	return fft.FFTReal(x)
}

// Magnitudes returns |X[k]|/N for the first N/2 bins (DC up to, not
// including, Nyquist).
func (f *FFT) Magnitudes(x []float64) []float64 {
	n := len(x)
	if n == 0 {
		return []float64{}
	}

	spectrum := f.Compute(x)
	mags := make([]float64, n/2)
	for k := range mags {
		mags[k] = cmplx.Abs(spectrum[k]) / float64(n)
	}
	return mags
}
