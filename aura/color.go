package aura

import (
	"fmt"

	"github.com/RyanBlaney/sonido-aura/algorithms/common"
	"github.com/RyanBlaney/sonido-aura/sentiment"
)

// Color is an HSLA color. Hue is in degrees, saturation and lightness in
// percent, alpha in [0,1].
type Color struct {
	H float64 `json:"h"`
	S float64 `json:"s"`
	L float64 `json:"l"`
	A float64 `json:"a"`
}

// HSLA builds a color with hue wrapped into [0,360) and the other channels
// clamped to their ranges.
func HSLA(h, s, l, a float64) Color {
	return Color{
		H: common.Wrap(h, 360),
		S: common.Clamp(s, 0, 100),
		L: common.Clamp(l, 0, 100),
		A: common.Clamp(a, 0, 1),
	}
}

// String formats the color as CSS
func (c Color) String() string {
	return fmt.Sprintf("hsla(%.1f, %.1f%%, %.1f%%, %.3f)", c.H, c.S, c.L, c.A)
}

// Base is the sentiment palette before per-particle jitter
type Base struct {
	Hue        float64 `json:"hue"`
	Saturation float64 `json:"saturation"`
	Lightness  float64 `json:"lightness"`
}

// With returns the base shifted by the given offsets
func (b Base) With(dh, ds, dl, alpha float64) Color {
	return HSLA(b.Hue+dh, b.Saturation+ds, b.Lightness+dl, alpha)
}

// Palette maps sentiment to the base color: blues for positive, reds and
// oranges for negative, purple for neutral.
func Palette(sig sentiment.Signal) Base {
	sig = sig.Normalize()
	i := sig.Intensity
	switch sig.Type {
	case sentiment.Positive:
		return Base{Hue: 200 + 20*i, Saturation: 70 + 20*i, Lightness: 60}
	case sentiment.Negative:
		return Base{Hue: 30 * i, Saturation: 80 + 10*i, Lightness: 55}
	default:
		return Base{Hue: 280, Saturation: 60, Lightness: 60}
	}
}
