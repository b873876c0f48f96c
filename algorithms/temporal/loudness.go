package temporal

import (
	"math"

	"github.com/RyanBlaney/sonido-aura/algorithms/common"
)

// Volume weighting and perceptual compression
const (
	rmsWeight      = 0.7
	peakWeight     = 0.3
	volumeGain     = 3.0
	volumeExponent = 0.7
)

// Volume returns a perceptual loudness in [0,1]. RMS tracks sustained level
// and peak keeps transients visible; the power law lifts quiet speech.
func Volume(frame []float64) float64 {
	if len(frame) == 0 {
		return 0
	}
	raw := rmsWeight*common.RMS(frame) + peakWeight*common.Peak(frame)
	return math.Pow(math.Min(raw*volumeGain, 1), volumeExponent)
}
