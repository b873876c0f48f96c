package spectral

import (
	"fmt"
	"math"

	"github.com/mjibson/go-dsp/window"
)

// AnalyserParams configures a FrequencyAnalyser
type AnalyserParams struct {
	FFTSize    int     `json:"fft_size" yaml:"fft_size"`
	SampleRate int     `json:"sample_rate" yaml:"sample_rate"`
	Smoothing  float64 `json:"smoothing" yaml:"smoothing"`       // 0 = none, close to 1 = heavy
	MinDB      float64 `json:"min_decibels" yaml:"min_decibels"` // maps to 0
	MaxDB      float64 `json:"max_decibels" yaml:"max_decibels"` // maps to 1
}

// DefaultAnalyserParams mirrors a browser AnalyserNode: 2048-point FFT,
// 0.85 smoothing, [-100, -30] dB display range.
func DefaultAnalyserParams(sampleRate int) AnalyserParams {
	return AnalyserParams{
		FFTSize:    2048,
		SampleRate: sampleRate,
		Smoothing:  0.85,
		MinDB:      -100,
		MaxDB:      -30,
	}
}

// FrequencyAnalyser turns time-domain frames into per-bin magnitudes
// normalized to [0,1]. It is stateful: magnitudes are smoothed over time, so
// one analyser belongs to one stream.
type FrequencyAnalyser struct {
	params   AnalyserParams
	fft      *FFT
	window   []float64
	scratch  []float64
	smoothed []float64
}

// NewFrequencyAnalyser validates params and precomputes the Blackman window
func NewFrequencyAnalyser(params AnalyserParams) (*FrequencyAnalyser, error) {
	if params.FFTSize < 32 || params.FFTSize%2 != 0 {
		return nil, fmt.Errorf("fft size must be even and at least 32, got %d", params.FFTSize)
	}
	if params.SampleRate <= 0 {
		return nil, fmt.Errorf("sample rate must be positive, got %d", params.SampleRate)
	}
	if params.Smoothing < 0 || params.Smoothing >= 1 {
		return nil, fmt.Errorf("smoothing must be in [0,1), got %g", params.Smoothing)
	}
	if params.MaxDB <= params.MinDB {
		return nil, fmt.Errorf("max decibels (%g) must exceed min decibels (%g)", params.MaxDB, params.MinDB)
	}

	return &FrequencyAnalyser{
		params:   params,
		fft:      NewFFT(),
		window:   window.Blackman(params.FFTSize),
		scratch:  make([]float64, params.FFTSize),
		smoothed: make([]float64, params.FFTSize/2),
	}, nil
}

// BinCount returns the number of magnitude bins, half the FFT size
func (fa *FrequencyAnalyser) BinCount() int {
	return fa.params.FFTSize / 2
}

// BinResolution returns the width of one bin in Hz
func (fa *FrequencyAnalyser) BinResolution() float64 {
	return float64(fa.params.SampleRate) / float64(fa.params.FFTSize)
}

// Analyse computes normalized magnitudes for frame. Frames longer than the
// FFT size use their newest samples; shorter frames are zero padded.
func (fa *FrequencyAnalyser) Analyse(frame []float64) []float64 {
	n := fa.params.FFTSize
	for i := range fa.scratch {
		fa.scratch[i] = 0
	}
	if len(frame) >= n {
		copy(fa.scratch, frame[len(frame)-n:])
	} else {
		copy(fa.scratch, frame)
	}
	for i := range fa.scratch {
		fa.scratch[i] *= fa.window[i]
	}

	mags := fa.fft.Magnitudes(fa.scratch)
	out := make([]float64, len(mags))
	tau := fa.params.Smoothing
	span := fa.params.MaxDB - fa.params.MinDB

	for k, m := range mags {
		fa.smoothed[k] = tau*fa.smoothed[k] + (1-tau)*m

		if fa.smoothed[k] <= 0 {
			continue
		}
		db := 20 * math.Log10(fa.smoothed[k])
		v := (db - fa.params.MinDB) / span
		out[k] = math.Max(0, math.Min(1, v))
	}

	return out
}

// Reset clears the temporal smoothing state
func (fa *FrequencyAnalyser) Reset() {
	for i := range fa.smoothed {
		fa.smoothed[i] = 0
	}
}
