package aura

import (
	"github.com/RyanBlaney/sonido-aura/sentiment"
)

// Kind names a draw command
type Kind string

const (
	KindClear    Kind = "clear"
	KindFillRect Kind = "fill_rect"
	KindCircle   Kind = "circle"
	KindPolyline Kind = "polyline"
	KindGradient Kind = "radial_gradient"
)

const (
	FlowLines      = 5
	FlowLineStep   = 10.0
	FlowLineScale  = 0.002
	FlowLineHeight = 200.0
)

// Point is a 2D coordinate
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Stop is one color stop of a radial gradient
type Stop struct {
	Offset float64 `json:"offset"`
	Color  Color   `json:"color"`
}

// Command is one drawing instruction for a 2D canvas. Unused fields are
// zero for a given Kind.
type Command struct {
	Kind      Kind    `json:"kind"`
	X         float64 `json:"x,omitempty"`
	Y         float64 `json:"y,omitempty"`
	Width     float64 `json:"width,omitempty"`
	Height    float64 `json:"height,omitempty"`
	Radius    float64 `json:"radius,omitempty"`
	Fill      *Color  `json:"fill,omitempty"`
	Stroke    *Color  `json:"stroke,omitempty"`
	LineWidth float64 `json:"line_width,omitempty"`
	Blur      float64 `json:"blur,omitempty"`
	Shadow    *Color  `json:"shadow,omitempty"`
	Points    []Point `json:"points,omitempty"`
	Stops     []Stop  `json:"stops,omitempty"`
}

// Frame is everything drawn for one tick
type Frame struct {
	Seq       uint64         `json:"seq"`
	Width     float64        `json:"width"`
	Height    float64        `json:"height"`
	Phase     float64        `json:"phase"`
	Sentiment sentiment.Type `json:"sentiment"`
	Intensity float64        `json:"intensity"`
	Commands  []Command      `json:"commands"`
}

// Render draws the current field under sig. It reads f but never changes it.
func Render(f *Field, sig sentiment.Signal) Frame {
	sig = sig.Normalize()
	base := Palette(sig)
	i := sig.Intensity
	energy := 1 + 2*i
	size := 2 + 3*i
	blur := 20 + 15*i
	shadow := base.With(0, 0, 0, 1)
	overlay := Color{A: 0.02}

	cmds := make([]Command, 0, 2+2*len(f.particles)+FlowLines+1)
	cmds = append(cmds,
		Command{Kind: KindClear, Width: f.width, Height: f.height},
		Command{Kind: KindFillRect, Width: f.width, Height: f.height, Fill: &overlay},
	)

	for _, p := range f.particles {
		alpha := 0.7 + 0.3*p.Flow
		glow := base.With(40*p.Flow, 20, 10, 0.6*alpha)
		core := HSLA(base.Hue+20, 100, 80, alpha)
		cmds = append(cmds,
			Command{Kind: KindCircle, X: p.X, Y: p.Y, Radius: size, Fill: &glow, Blur: blur, Shadow: &shadow},
			Command{Kind: KindCircle, X: p.X, Y: p.Y, Radius: size / 2, Fill: &core},
		)
	}

	if len(sig.Keywords) > 0 {
		stroke := HSLA(base.Hue+30, 80, 70, 0.25)
		for line := range FlowLines {
			cmds = append(cmds, Command{
				Kind:      KindPolyline,
				Stroke:    &stroke,
				LineWidth: 2,
				Blur:      10,
				Shadow:    &shadow,
				Points:    flowLine(f, float64(line), energy),
			})
		}
	}

	if b := f.burst; b != nil {
		cmds = append(cmds, Command{
			Kind:   KindGradient,
			X:      b.X,
			Y:      b.Y,
			Radius: b.Radius,
			Stops: []Stop{
				{Offset: 0, Color: HSLA(base.Hue, 100, 70, 0.4)},
				{Offset: 1, Color: HSLA(base.Hue, 100, 70, 0)},
			},
		})
	}

	return Frame{
		Width:     f.width,
		Height:    f.height,
		Phase:     f.phase,
		Sentiment: sig.Type,
		Intensity: i,
		Commands:  cmds,
	}
}

func flowLine(f *Field, offset, energy float64) []Point {
	pts := make([]Point, 0, int(f.width/FlowLineStep)+1)
	mid := f.height / 2
	for x := 0.0; x < f.width; x += FlowLineStep {
		y := mid + f.noise.Noise(x*FlowLineScale, f.phase+offset, 0)*FlowLineHeight*energy
		pts = append(pts, Point{X: x, Y: y})
	}
	return pts
}
