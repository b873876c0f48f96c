package spectral

// ZeroCrossingRate measures how often a frame changes sign. Voiced speech
// sits low, fricatives and broadband noise sit high, DC never crosses.
type ZeroCrossingRate struct{}

// NewZeroCrossingRate creates a new zero crossing rate calculator
func NewZeroCrossingRate() *ZeroCrossingRate {
	return &ZeroCrossingRate{}
}

// Crossings counts sign changes between consecutive samples. Zero counts as
// positive.
func (zcr *ZeroCrossingRate) Crossings(frame []float64) int {
	crossings := 0
	for i := 1; i < len(frame); i++ {
		if (frame[i] >= 0) != (frame[i-1] >= 0) {
			crossings++
		}
	}
	return crossings
}

// Rate returns crossings divided by frame length, the fraction used by the
// voice activity gate.
func (zcr *ZeroCrossingRate) Rate(frame []float64) float64 {
	if len(frame) < 2 {
		return 0.0
	}
	return float64(zcr.Crossings(frame)) / float64(len(frame))
}

// PerSecond converts the crossing count to crossings per second
func (zcr *ZeroCrossingRate) PerSecond(frame []float64, sampleRate int) float64 {
	if len(frame) < 2 || sampleRate <= 0 {
		return 0.0
	}
	frameDuration := float64(len(frame)) / float64(sampleRate)
	return float64(zcr.Crossings(frame)) / frameDuration
}
