// Package capture turns audio from files, memory, synthesis or a microphone
// into fixed-size analysis frames.
package capture

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/RyanBlaney/sonido-aura/algorithms/common"
	"github.com/RyanBlaney/sonido-aura/algorithms/filters"
	"github.com/RyanBlaney/sonido-aura/algorithms/spectral"
)

// ErrClosed is returned by Next after Close
var ErrClosed = errors.New("capture: source closed")

// AudioFrame is one analysis tick worth of audio. It is read-only once
// produced.
type AudioFrame struct {
	// Samples are time-domain values in [-1, 1]
	Samples []float64
	// Magnitudes are frequency bin levels in [0, 1], len(Samples)/2 bins
	Magnitudes []float64
	SampleRate int
	// Offset is the stream position of the first sample
	Offset time.Duration
}

// Source produces frames. Next returns io.EOF when the stream is exhausted
// and ErrClosed once Close has been called. Close may be called from another
// goroutine while Next is blocked.
type Source interface {
	SampleRate() int
	Next(ctx context.Context) (AudioFrame, error)
	Close() error
}

// FramerConfig controls how a sample stream is cut into frames
type FramerConfig struct {
	FrameSize int     `json:"frame_size" yaml:"frame_size"`
	HopSize   int     `json:"hop_size" yaml:"hop_size"`
	LowpassHz float64 `json:"lowpass_hz" yaml:"lowpass_hz"` // 0 disables the pre-filter

	Smoothing float64 `json:"smoothing" yaml:"smoothing"`
	MinDB     float64 `json:"min_decibels" yaml:"min_decibels"`
	MaxDB     float64 `json:"max_decibels" yaml:"max_decibels"`
}

// DefaultFramerConfig matches a browser analyser behind a 3 kHz lowpass:
// 2048-sample frames, no overlap.
func DefaultFramerConfig() FramerConfig {
	ap := spectral.DefaultAnalyserParams(0)
	return FramerConfig{
		FrameSize: ap.FFTSize,
		HopSize:   ap.FFTSize,
		LowpassHz: 3000,
		Smoothing: ap.Smoothing,
		MinDB:     ap.MinDB,
		MaxDB:     ap.MaxDB,
	}
}

// Framer filters a sample stream, slices it into frames and attaches
// normalized magnitudes to each frame.
type Framer struct {
	sampleRate int
	window     *common.SlidingWindow
	analyser   *spectral.FrequencyAnalyser
	lowpass    *filters.Biquad
	emitted    int64
}

// NewFramer creates a framer for a stream at sampleRate
func NewFramer(sampleRate int, cfg FramerConfig) (*Framer, error) {
	analyser, err := spectral.NewFrequencyAnalyser(spectral.AnalyserParams{
		FFTSize:    cfg.FrameSize,
		SampleRate: sampleRate,
		Smoothing:  cfg.Smoothing,
		MinDB:      cfg.MinDB,
		MaxDB:      cfg.MaxDB,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create analyser: %w", err)
	}

	var lowpass *filters.Biquad
	if cfg.LowpassHz > 0 {
		if lowpass, err = filters.NewLowpass(sampleRate, cfg.LowpassHz); err != nil {
			return nil, fmt.Errorf("failed to create lowpass: %w", err)
		}
	}

	return &Framer{
		sampleRate: sampleRate,
		window:     common.NewSlidingWindow(cfg.FrameSize, cfg.HopSize),
		analyser:   analyser,
		lowpass:    lowpass,
	}, nil
}

// SampleRate returns the stream sample rate
func (f *Framer) SampleRate() int {
	return f.sampleRate
}

// Push adds samples and returns every frame that became complete
func (f *Framer) Push(samples []float64) []AudioFrame {
	if f.lowpass != nil {
		samples = f.lowpass.ProcessBuffer(samples)
	}

	windows := f.window.AddSamples(samples)
	if len(windows) == 0 {
		return nil
	}

	frames := make([]AudioFrame, len(windows))
	for i, w := range windows {
		frames[i] = AudioFrame{
			Samples:    w,
			Magnitudes: f.analyser.Analyse(w),
			SampleRate: f.sampleRate,
			Offset:     f.offset(f.emitted * int64(f.window.GetHopSize())),
		}
		f.emitted++
	}
	return frames
}

// offset converts a sample position to stream time without overflowing on
// long streams
func (f *Framer) offset(sample int64) time.Duration {
	sr := int64(f.sampleRate)
	whole := time.Duration(sample/sr) * time.Second
	return whole + time.Duration(sample%sr)*time.Second/time.Duration(sr)
}

// Reset discards buffered samples and filter state
func (f *Framer) Reset() {
	f.window.Reset()
	f.analyser.Reset()
	if f.lowpass != nil {
		f.lowpass.Reset()
	}
	f.emitted = 0
}
