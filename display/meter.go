// Package display renders analysis states and aura frames for a terminal or
// a file.
package display

import (
	"fmt"
	"io"
	"math"
	"strings"
	"sync"

	"github.com/fatih/color"

	"github.com/RyanBlaney/sonido-aura/prosody"
)

const barWidth = 10

// Meter prints one line per analysis state, like a VU meter
type Meter struct {
	mu     sync.Mutex
	w      io.Writer
	every  int64
	inline bool

	quality map[prosody.TonalQuality]*color.Color
	tints   map[Tint]*color.Color
	active  *color.Color
	idle    *color.Color
}

// Tint buckets a metric for coloring, from cool to hot
type Tint int

const (
	TintBlue Tint = iota
	TintGreen
	TintAmber
	TintRed
)

// PitchTint buckets a pitch in Hz: below 85 is blue, below 165 green,
// below 255 amber and anything higher red.
func PitchTint(hz float64) Tint {
	switch {
	case hz < 85:
		return TintBlue
	case hz < 165:
		return TintGreen
	case hz < 255:
		return TintAmber
	default:
		return TintRed
	}
}

// ConfidenceTint runs the other way round: low confidence is red
func ConfidenceTint(c float64) Tint {
	switch {
	case c < 0.3:
		return TintRed
	case c < 0.6:
		return TintAmber
	case c < 0.8:
		return TintGreen
	default:
		return TintBlue
	}
}

// LevelTint buckets a [0,1] level at 30, 60 and 80 percent
func LevelTint(v float64) Tint {
	pct := v * 100
	switch {
	case pct < 30:
		return TintBlue
	case pct < 60:
		return TintGreen
	case pct < 80:
		return TintAmber
	default:
		return TintRed
	}
}

// MeterOption configures a Meter
type MeterOption func(*Meter)

// WithEvery prints only every nth state
func WithEvery(n int) MeterOption {
	return func(m *Meter) {
		if n > 0 {
			m.every = int64(n)
		}
	}
}

// WithInline redraws a single terminal line instead of scrolling
func WithInline() MeterOption {
	return func(m *Meter) { m.inline = true }
}

// WithoutColor disables ANSI colors regardless of the terminal
func WithoutColor() MeterOption {
	return func(m *Meter) {
		for _, c := range m.colors() {
			c.DisableColor()
		}
	}
}

// NewMeter writes to w
func NewMeter(w io.Writer, opts ...MeterOption) *Meter {
	m := &Meter{
		w:     w,
		every: 1,
		quality: map[prosody.TonalQuality]*color.Color{
			prosody.Neutral:   color.New(color.FgGreen),
			prosody.Excited:   color.New(color.FgYellow, color.Bold),
			prosody.Energetic: color.New(color.FgRed),
			prosody.Subdued:   color.New(color.FgBlue),
			prosody.Monotone:  color.New(color.FgWhite, color.Faint),
		},
		tints: map[Tint]*color.Color{
			TintBlue:  color.New(color.FgBlue),
			TintGreen: color.New(color.FgGreen),
			TintAmber: color.New(color.FgYellow),
			TintRed:   color.New(color.FgRed),
		},
		active: color.New(color.FgCyan, color.Bold),
		idle:   color.New(color.Faint),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *Meter) colors() []*color.Color {
	out := []*color.Color{m.active, m.idle}
	for _, c := range m.quality {
		out = append(out, c)
	}
	for _, c := range m.tints {
		out = append(out, c)
	}
	return out
}

// Observe implements prosody.Sink
func (m *Meter) Observe(s prosody.State) {
	if s.Frame%m.every != 0 {
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	q := m.quality[s.TonalQuality]
	if q == nil {
		q = m.idle
	}
	voice := m.idle.Sprint("  silent")
	if s.VoiceActive {
		voice = m.active.Sprint("speaking")
	}

	line := fmt.Sprintf("%s | %s | %s", format(s, m.paint), q.Sprintf("%-9s", s.TonalQuality), voice)
	if m.inline {
		fmt.Fprintf(m.w, "\r\033[K%s", line)
		return
	}
	fmt.Fprintln(m.w, line)
}

// paint colors text for the tint bucket
func (m *Meter) paint(tint Tint, text string) string {
	if c := m.tints[tint]; c != nil {
		return c.Sprint(text)
	}
	return text
}

// Format renders the numeric part of a state without colors
func Format(s prosody.State) string {
	return format(s, func(_ Tint, text string) string { return text })
}

func format(s prosody.State, paint func(Tint, string) string) string {
	pitch := "  --- Hz"
	if s.Pitch > 0 {
		pitch = paint(PitchTint(s.Pitch), fmt.Sprintf("%6.1f Hz", s.Pitch))
	}
	return fmt.Sprintf("%s %-4s conf %s | vol %s %s | energy %s %s | rate %s",
		pitch, s.Note, paint(ConfidenceTint(s.Confidence), fmt.Sprintf("%.2f", s.Confidence)),
		Bar(s.Volume, barWidth), paint(LevelTint(s.Volume), fmt.Sprintf("%.2f", s.Volume)),
		Bar(s.VoiceEnergy, barWidth), paint(LevelTint(s.VoiceEnergy), fmt.Sprintf("%.2f", s.VoiceEnergy)),
		paint(LevelTint(s.SpeakingRate/100), fmt.Sprintf("%3.0f%%", s.SpeakingRate)),
	)
}

// Bar draws v in [0,1] as a fixed-width bar
func Bar(v float64, width int) string {
	if width <= 0 {
		return ""
	}
	if v < 0 || math.IsNaN(v) {
		v = 0
	}
	if v > 1 {
		v = 1
	}
	filled := int(v*float64(width) + 0.5)
	return strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
}
