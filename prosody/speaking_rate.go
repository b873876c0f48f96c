package prosody

import (
	"time"
)

// DefaultActivityWindow is how far back speaking rate looks
const DefaultActivityWindow = 5 * time.Second

type activitySample struct {
	at     time.Duration
	active bool
}

// ActivityWindow is a time-bounded log of voice activity samples. Time is
// the stream offset of each frame, not the wall clock, so the rate is a
// function of the audio alone.
type ActivityWindow struct {
	span    time.Duration
	samples []activitySample
}

// NewActivityWindow creates a window covering span
func NewActivityWindow(span time.Duration) *ActivityWindow {
	if span <= 0 {
		span = DefaultActivityWindow
	}
	return &ActivityWindow{span: span}
}

// Add records a sample at offset and returns the percentage of the window
// spent speaking. An interval counts as speech when the sample that opens
// it was active.
func (aw *ActivityWindow) Add(offset time.Duration, active bool) float64 {
	aw.samples = append(aw.samples, activitySample{at: offset, active: active})

	keep := 0
	for keep < len(aw.samples) && offset-aw.samples[keep].at >= aw.span {
		keep++
	}
	if keep > 0 {
		aw.samples = append(aw.samples[:0], aw.samples[keep:]...)
	}

	if len(aw.samples) < 2 {
		return 0
	}

	var speaking time.Duration
	for i := 1; i < len(aw.samples); i++ {
		if aw.samples[i-1].active {
			speaking += aw.samples[i].at - aw.samples[i-1].at
		}
	}

	total := offset - aw.samples[0].at
	if total <= 0 {
		return 0
	}
	return min(float64(speaking)/float64(total)*100, 100)
}

// Len returns the number of samples inside the window
func (aw *ActivityWindow) Len() int {
	return len(aw.samples)
}

// Reset drops all samples
func (aw *ActivityWindow) Reset() {
	aw.samples = aw.samples[:0]
}
