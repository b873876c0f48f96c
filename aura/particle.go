// Package aura animates a particle field through a Perlin flow field and
// turns it into draw commands. Sentiment steers speed, turbulence and color.
package aura

import (
	"errors"
	"fmt"
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/RyanBlaney/sonido-aura/algorithms/common"
	"github.com/RyanBlaney/sonido-aura/algorithms/noise"
	"github.com/RyanBlaney/sonido-aura/sentiment"
)

const (
	ParticleCount = 150
	PhaseStep     = 0.005
	FlowScale     = 0.003

	BurstChance    = 0.02
	BurstThreshold = 0.5 // intensity above which bursts may fire
	BurstRadius    = 50.0
)

// Particle is one point of the aura. Life is assigned at spawn and kept for
// a future fade lifecycle; nothing reads it yet.
type Particle struct {
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
	VX   float64 `json:"vx"`
	VY   float64 `json:"vy"`
	Life float64 `json:"life"`
	Flow float64 `json:"flow"` // last noise sample, in [-1,1]
}

// Burst is a short radial flash decided during Step
type Burst struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Radius float64 `json:"radius"`
}

// Field is the particle set and its animation clock. It is not safe for
// concurrent use.
type Field struct {
	width, height float64
	particles     []Particle
	noise         *noise.Field
	phase         float64
	unit          distuv.Uniform
	burst         *Burst
}

// NewField spawns ParticleCount particles uniformly over the viewport with
// zero velocity. src drives spawning and bursts; nil derives a source from
// the noise seed.
func NewField(width, height float64, nf *noise.Field, src rand.Source) (*Field, error) {
	if nf == nil {
		return nil, errors.New("aura: nil noise field")
	}
	if err := checkViewport(width, height); err != nil {
		return nil, err
	}
	if src == nil {
		src = rand.NewPCG(nf.Seed(), nf.Seed()+1)
	}

	f := &Field{
		width:     width,
		height:    height,
		noise:     nf,
		unit:      distuv.Uniform{Min: 0, Max: 1, Src: src},
		particles: make([]Particle, ParticleCount),
	}
	xs := distuv.Uniform{Min: 0, Max: width, Src: src}
	ys := distuv.Uniform{Min: 0, Max: height, Src: src}
	for i := range f.particles {
		f.particles[i] = Particle{
			X:    common.Wrap(xs.Rand(), width),
			Y:    common.Wrap(ys.Rand(), height),
			Life: f.unit.Rand(),
		}
	}
	return f, nil
}

func checkViewport(width, height float64) error {
	if !(width > 0) || !(height > 0) || math.IsInf(width, 0) || math.IsInf(height, 0) {
		return fmt.Errorf("aura: invalid viewport %gx%g", width, height)
	}
	return nil
}

// Step advances the phase clock and moves every particle one tick along the
// flow field. Positions wrap toroidally into [0,width)x[0,height).
func (f *Field) Step(sig sentiment.Signal) {
	sig = sig.Normalize()
	intensity := sig.Intensity
	energy := 1 + 2*intensity
	speed := 0.5 + 1.5*intensity

	f.phase += PhaseStep

	for i := range f.particles {
		p := &f.particles[i]
		n := f.noise.Noise(p.X*FlowScale, p.Y*FlowScale, f.phase)
		angle := n * 2 * math.Pi * energy

		p.Flow = n
		p.VX = math.Cos(angle) * speed
		p.VY = math.Sin(angle) * speed
		p.X = common.Wrap(p.X+p.VX, f.width)
		p.Y = common.Wrap(p.Y+p.VY, f.height)
	}

	f.burst = nil
	if intensity > BurstThreshold && f.unit.Rand() < BurstChance {
		f.burst = &Burst{
			X:      f.unit.Rand() * f.width,
			Y:      f.unit.Rand() * f.height,
			Radius: BurstRadius,
		}
	}
}

// Resize changes the viewport and wraps existing particles into it
func (f *Field) Resize(width, height float64) error {
	if err := checkViewport(width, height); err != nil {
		return err
	}
	f.width, f.height = width, height
	for i := range f.particles {
		f.particles[i].X = common.Wrap(f.particles[i].X, width)
		f.particles[i].Y = common.Wrap(f.particles[i].Y, height)
	}
	if f.burst != nil {
		f.burst.X = common.Wrap(f.burst.X, width)
		f.burst.Y = common.Wrap(f.burst.Y, height)
	}
	return nil
}

// Size returns the viewport dimensions
func (f *Field) Size() (width, height float64) {
	return f.width, f.height
}

// Phase returns the animation clock
func (f *Field) Phase() float64 {
	return f.phase
}

// Len returns the particle count
func (f *Field) Len() int {
	return len(f.particles)
}

// Particles returns a copy of the particle set
func (f *Field) Particles() []Particle {
	out := make([]Particle, len(f.particles))
	copy(out, f.particles)
	return out
}

// Burst returns the burst fired by the last Step, if any
func (f *Field) Burst() (Burst, bool) {
	if f.burst == nil {
		return Burst{}, false
	}
	return *f.burst, true
}
