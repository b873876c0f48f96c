package temporal

import (
	"github.com/RyanBlaney/sonido-aura/algorithms/spectral"
)

// VoiceActivityDetector gates on zero-crossing rate and level together.
// ZCR alone cannot tell voice from broadband noise, and level alone cannot
// tell it from a hum.
type VoiceActivityDetector struct {
	MinZCR          float64 `json:"min_zcr" yaml:"min_zcr"`
	MaxZCR          float64 `json:"max_zcr" yaml:"max_zcr"`
	EnergyThreshold float64 `json:"energy_threshold" yaml:"energy_threshold"`

	zcr *spectral.ZeroCrossingRate
}

// NewVoiceActivityDetector returns a detector with the speech defaults
func NewVoiceActivityDetector() *VoiceActivityDetector {
	return &VoiceActivityDetector{
		MinZCR:          0.01,
		MaxZCR:          0.15,
		EnergyThreshold: 0.02,
		zcr:             spectral.NewZeroCrossingRate(),
	}
}

// ZCR returns the per-sample zero-crossing rate of frame
func (vad *VoiceActivityDetector) ZCR(frame []float64) float64 {
	if vad.zcr == nil {
		vad.zcr = spectral.NewZeroCrossingRate()
	}
	return vad.zcr.Rate(frame)
}

// IsActive reports voice when MinZCR < zcr < MaxZCR and volume exceeds the
// energy threshold. volume is normally the smoothed display volume.
func (vad *VoiceActivityDetector) IsActive(frame []float64, volume float64) bool {
	if volume <= vad.EnergyThreshold {
		return false
	}
	zcr := vad.ZCR(frame)
	return zcr > vad.MinZCR && zcr < vad.MaxZCR
}
