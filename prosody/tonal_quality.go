package prosody

import (
	"fmt"

	"github.com/RyanBlaney/sonido-aura/algorithms/common"
)

// TonalQuality is a coarse label for how the voice currently sounds
type TonalQuality int

const (
	Neutral TonalQuality = iota
	Excited
	Energetic
	Subdued
	Monotone
)

var tonalQualityNames = [...]string{"neutral", "excited", "energetic", "subdued", "monotone"}

func (q TonalQuality) String() string {
	if q < 0 || int(q) >= len(tonalQualityNames) {
		return "unknown"
	}
	return tonalQualityNames[q]
}

// MarshalText encodes the quality by name
func (q TonalQuality) MarshalText() ([]byte, error) {
	if q < 0 || int(q) >= len(tonalQualityNames) {
		return nil, fmt.Errorf("invalid tonal quality %d", int(q))
	}
	return []byte(q.String()), nil
}

// UnmarshalText decodes a quality name
func (q *TonalQuality) UnmarshalText(text []byte) error {
	for i, name := range tonalQualityNames {
		if string(text) == name {
			*q = TonalQuality(i)
			return nil
		}
	}
	return fmt.Errorf("unknown tonal quality %q", text)
}

// TonalThresholds are heuristics; none of them has been validated against
// labelled speech.
type TonalThresholds struct {
	MinSamples int `json:"min_samples" yaml:"min_samples"` // pitch history needed before classifying
	Window     int `json:"window" yaml:"window"`           // most recent samples used for statistics

	ExcitedCV          float64 `json:"excited_cv" yaml:"excited_cv"` // percent
	ExcitedVolumeRatio float64 `json:"excited_volume_ratio" yaml:"excited_volume_ratio"`
	ExcitedEnergy      float64 `json:"excited_energy" yaml:"excited_energy"`

	EnergeticPitchRatio float64 `json:"energetic_pitch_ratio" yaml:"energetic_pitch_ratio"`
	EnergeticEnergy     float64 `json:"energetic_energy" yaml:"energetic_energy"`

	SubduedPitchRatio  float64 `json:"subdued_pitch_ratio" yaml:"subdued_pitch_ratio"`
	SubduedVolumeRatio float64 `json:"subdued_volume_ratio" yaml:"subdued_volume_ratio"`

	MonotoneCV     float64 `json:"monotone_cv" yaml:"monotone_cv"` // percent
	MonotoneEnergy float64 `json:"monotone_energy" yaml:"monotone_energy"`
}

// DefaultTonalThresholds returns the stock classifier settings
func DefaultTonalThresholds() TonalThresholds {
	return TonalThresholds{
		MinSamples:          10,
		Window:              30,
		ExcitedCV:           25,
		ExcitedVolumeRatio:  1.2,
		ExcitedEnergy:       0.6,
		EnergeticPitchRatio: 1.15,
		EnergeticEnergy:     0.5,
		SubduedPitchRatio:   0.85,
		SubduedVolumeRatio:  0.7,
		MonotoneCV:          5,
		MonotoneEnergy:      0.3,
	}
}

// Classifier labels the current frame against recent history
type Classifier struct {
	thresholds TonalThresholds
}

// NewClassifier creates a classifier
func NewClassifier(thresholds TonalThresholds) *Classifier {
	if thresholds.Window <= 0 {
		thresholds.Window = DefaultTonalThresholds().Window
	}
	return &Classifier{thresholds: thresholds}
}

// Thresholds returns the classifier settings
func (c *Classifier) Thresholds() TonalThresholds {
	return c.thresholds
}

// Classify applies the rules in order and returns the first match:
// excited, energetic, subdued, monotone, otherwise neutral.
// Histories are oldest first.
func (c *Classifier) Classify(pitch, volume, energy float64, pitchHistory, volumeHistory []float64) TonalQuality {
	th := c.thresholds
	if len(pitchHistory) < th.MinSamples || len(pitchHistory) == 0 {
		return Neutral
	}

	recentPitch := tail(pitchHistory, th.Window)
	avgPitch := common.Mean(recentPitch)
	pitchCV := common.CoefficientOfVariation(recentPitch)
	avgVolume := common.Mean(tail(volumeHistory, th.Window))

	switch {
	case pitchCV > th.ExcitedCV && volume > avgVolume*th.ExcitedVolumeRatio && energy > th.ExcitedEnergy:
		return Excited
	case pitch > avgPitch*th.EnergeticPitchRatio && energy > th.EnergeticEnergy:
		return Energetic
	case pitch < avgPitch*th.SubduedPitchRatio || volume < avgVolume*th.SubduedVolumeRatio:
		return Subdued
	case pitchCV < th.MonotoneCV && energy < th.MonotoneEnergy:
		return Monotone
	default:
		return Neutral
	}
}

func tail(values []float64, n int) []float64 {
	if len(values) > n {
		return values[len(values)-n:]
	}
	return values
}
