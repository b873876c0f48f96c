package common

// Smoothing factors for the displayed metrics. Lower is slower and steadier.
const (
	PitchSmoothing  = 0.3
	VolumeSmoothing = 0.2
	EnergySmoothing = 0.25
	RateSmoothing   = 0.15
)

// ExpSmoother is a one-pole exponential smoother:
// value = previous*(1-factor) + current*factor
type ExpSmoother struct {
	factor float64
	value  float64
	primed bool
	seed   bool
}

// NewExpSmoother starts at zero, so early outputs ramp up from 0
func NewExpSmoother(factor float64) *ExpSmoother {
	return &ExpSmoother{factor: Clamp(factor, 0, 1)}
}

// NewSeededExpSmoother takes the first observed value as its starting
// point instead of ramping up from zero.
func NewSeededExpSmoother(factor float64) *ExpSmoother {
	return &ExpSmoother{factor: Clamp(factor, 0, 1), seed: true}
}

// Update folds current into the running value and returns it
func (s *ExpSmoother) Update(current float64) float64 {
	if s.seed && !s.primed {
		s.value = current
		s.primed = true
		return s.value
	}
	s.value = s.value*(1-s.factor) + current*s.factor
	s.primed = true
	return s.value
}

// Value returns the current smoothed value
func (s *ExpSmoother) Value() float64 {
	return s.value
}

// Factor returns the smoothing factor
func (s *ExpSmoother) Factor() float64 {
	return s.factor
}

// Reset returns the smoother to zero and, when seeded, re-arms seeding
func (s *ExpSmoother) Reset() {
	s.value = 0
	s.primed = false
}
