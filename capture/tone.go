package capture

import (
	"io"
	"math"
	"math/rand/v2"
	"time"

	"gonum.org/v1/gonum/stat/distuv"
)

// ToneConfig describes a synthetic test signal: a sine plus an optional
// uniform noise floor.
type ToneConfig struct {
	SampleRate int           `json:"sample_rate" yaml:"sample_rate"`
	Frequency  float64       `json:"frequency" yaml:"frequency"`
	Amplitude  float64       `json:"amplitude" yaml:"amplitude"`
	Noise      float64       `json:"noise" yaml:"noise"`       // peak noise amplitude
	Duration   time.Duration `json:"duration" yaml:"duration"` // 0 runs until closed
	Seed       uint64        `json:"seed" yaml:"seed"`
}

// ToneSource synthesizes audio on demand
type ToneSource struct {
	*pullSource
	cfg       ToneConfig
	noise     *distuv.Uniform
	n         int
	remaining int
}

// NewToneSource creates a synthetic source
func NewToneSource(cfg ToneConfig, framing FramerConfig) (*ToneSource, error) {
	framer, err := NewFramer(cfg.SampleRate, framing)
	if err != nil {
		return nil, err
	}

	ts := &ToneSource{cfg: cfg, remaining: -1}
	if cfg.Duration > 0 {
		ts.remaining = int(int64(cfg.Duration) * int64(cfg.SampleRate) / int64(time.Second))
	}
	if cfg.Noise > 0 {
		ts.noise = &distuv.Uniform{
			Min: -cfg.Noise,
			Max: cfg.Noise,
			Src: rand.NewPCG(cfg.Seed, cfg.Seed+1),
		}
	}
	ts.pullSource = newPullSource(framer, max(framing.HopSize, 1), ts.fill)
	return ts, nil
}

func (ts *ToneSource) fill(dst []float64) (int, error) {
	if ts.remaining == 0 {
		return 0, io.EOF
	}
	if ts.remaining > 0 && len(dst) > ts.remaining {
		dst = dst[:ts.remaining]
	}

	step := 2 * math.Pi * ts.cfg.Frequency / float64(ts.cfg.SampleRate)
	for i := range dst {
		v := ts.cfg.Amplitude * math.Sin(step*float64(ts.n))
		if ts.noise != nil {
			v += ts.noise.Rand()
		}
		dst[i] = math.Max(-1, math.Min(1, v))
		ts.n++
	}

	if ts.remaining > 0 {
		ts.remaining -= len(dst)
	}
	return len(dst), nil
}
