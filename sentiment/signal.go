// Package sentiment carries the latest sentiment verdict from the text
// analysis backend to the display loop.
package sentiment

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"sync/atomic"
)

// Type is the sentiment polarity
type Type string

const (
	Positive Type = "positive"
	Negative Type = "negative"
	Neutral  Type = "neutral"
)

// Valid reports whether t is one of the known polarities
func (t Type) Valid() bool {
	return t == Positive || t == Negative || t == Neutral
}

// DefaultIntensity is used when a signal carries no usable intensity
const DefaultIntensity = 0.5

// Signal is one sentiment verdict
type Signal struct {
	Type      Type     `json:"type"`
	Intensity float64  `json:"intensity"` // 0-1
	Keywords  []string `json:"keywords,omitempty"`
}

// NeutralSignal is what the display shows before any verdict arrives
func NeutralSignal() Signal {
	return Signal{Type: Neutral, Intensity: DefaultIntensity}
}

// Normalize maps unknown types to neutral, a missing or NaN intensity to
// DefaultIntensity and clamps intensity into [0, 1].
func (s Signal) Normalize() Signal {
	if !s.Type.Valid() {
		s.Type = Neutral
	}
	switch {
	case math.IsNaN(s.Intensity):
		s.Intensity = DefaultIntensity
	case s.Intensity < 0:
		s.Intensity = 0
	case s.Intensity > 1:
		s.Intensity = 1
	}
	return s
}

// bareIntensity is the implied intensity of a verdict given as a bare string
func bareIntensity(t Type) float64 {
	if t == Positive || t == Negative {
		return 0.7
	}
	return DefaultIntensity
}

type rawSignal struct {
	Type      Type            `json:"type"`
	Score     *float64        `json:"score"`
	Intensity *float64        `json:"intensity"`
	Keywords  []string        `json:"keywords"`
	Sentiment json.RawMessage `json:"sentiment"`
}

// UnmarshalJSON accepts three shapes:
//
//	"positive"
//	{"type": "positive", "score": 0.8}
//	{"sentiment": {"type": "positive", "score": 0.8}, "keywords": ["..."]}
//
// "intensity" is accepted in place of "score". The result is normalized.
func (s *Signal) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var t Type
		if err := json.Unmarshal(data, &t); err != nil {
			return err
		}
		*s = Signal{Type: t, Intensity: bareIntensity(t)}.Normalize()
		return nil
	}

	var raw rawSignal
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("decode sentiment: %w", err)
	}

	if len(raw.Sentiment) > 0 && !bytes.Equal(raw.Sentiment, []byte("null")) {
		var inner Signal
		if err := json.Unmarshal(raw.Sentiment, &inner); err != nil {
			return err
		}
		if raw.Keywords != nil {
			inner.Keywords = raw.Keywords
		}
		*s = inner
		return nil
	}

	out := Signal{Type: raw.Type, Intensity: math.NaN(), Keywords: raw.Keywords}
	switch {
	case raw.Score != nil:
		out.Intensity = *raw.Score
	case raw.Intensity != nil:
		out.Intensity = *raw.Intensity
	}
	*s = out.Normalize()
	return nil
}

// Parse decodes a signal in any accepted shape
func Parse(data []byte) (Signal, error) {
	var s Signal
	if err := json.Unmarshal(data, &s); err != nil {
		return Signal{}, err
	}
	return s, nil
}

// Cell holds the most recent signal. Writers and readers never block each
// other; the last Store wins.
type Cell struct {
	p atomic.Pointer[Signal]
}

// Store normalizes s and makes it the current signal
func (c *Cell) Store(s Signal) {
	s = s.Normalize()
	if s.Keywords != nil {
		s.Keywords = append([]string(nil), s.Keywords...)
	}
	c.p.Store(&s)
}

// Load returns the current signal, or the neutral signal when empty
func (c *Cell) Load() Signal {
	if s := c.p.Load(); s != nil {
		return *s
	}
	return NeutralSignal()
}
