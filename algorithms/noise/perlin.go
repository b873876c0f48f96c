package noise

import (
	"math"
	"math/rand/v2"
)

// 12 edge-midpoint gradients of a cube
var gradients = [12][3]float64{
	{1, 1, 0}, {-1, 1, 0}, {1, -1, 0}, {-1, -1, 0},
	{1, 0, 1}, {-1, 0, 1}, {1, 0, -1}, {-1, 0, -1},
	{0, 1, 1}, {0, -1, 1}, {0, 1, -1}, {0, -1, -1},
}

// Field is classic 3D Perlin gradient noise.
//
// Reference: Perlin, K. (2002). "Improving Noise"
//
// The permutation table is built once from the seed and never written again,
// so a Field may be sampled from any number of goroutines.
type Field struct {
	seed uint64
	perm [512]uint8
}

// New builds a field whose output is fully determined by seed
func New(seed uint64) *Field {
	f := &Field{seed: seed}

	var p [256]uint8
	for i := range p {
		p[i] = uint8(i)
	}
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	for i := len(p) - 1; i > 0; i-- {
		j := rng.IntN(i + 1)
		p[i], p[j] = p[j], p[i]
	}

	// Duplicated so lattice lookups never need a bounds wrap
	for i := range f.perm {
		f.perm[i] = p[i&255]
	}
	return f
}

// Seed returns the seed the field was built from
func (f *Field) Seed() uint64 {
	return f.seed
}

// Noise samples the field at (x, y, z). The result is in [-1, 1], continuous
// everywhere and periodic with period 256 along each axis.
func (f *Field) Noise(x, y, z float64) float64 {
	fx, fy, fz := math.Floor(x), math.Floor(y), math.Floor(z)
	xi, yi, zi := lattice(fx), lattice(fy), lattice(fz)
	x, y, z = x-fx, y-fy, z-fz

	u, v, w := fade(x), fade(y), fade(z)
	p := &f.perm

	a := int(p[xi]) + yi
	aa := int(p[a]) + zi
	ab := int(p[a+1]) + zi
	b := int(p[xi+1]) + yi
	ba := int(p[b]) + zi
	bb := int(p[b+1]) + zi

	n := lerp(w,
		lerp(v,
			lerp(u, grad(p[aa], x, y, z), grad(p[ba], x-1, y, z)),
			lerp(u, grad(p[ab], x, y-1, z), grad(p[bb], x-1, y-1, z))),
		lerp(v,
			lerp(u, grad(p[aa+1], x, y, z-1), grad(p[ba+1], x-1, y, z-1)),
			lerp(u, grad(p[ab+1], x, y-1, z-1), grad(p[bb+1], x-1, y-1, z-1))))

	return math.Max(-1, math.Min(1, n))
}

// lattice maps a floored coordinate onto 0..255, negatives included
func lattice(v float64) int {
	return int(math.Mod(v, 256)+256) & 255
}

// fade is the quintic 6t^5 - 15t^4 + 10t^3
func fade(t float64) float64 {
	return t * t * t * (t*(t*6-15) + 10)
}

func lerp(t, a, b float64) float64 {
	return a + t*(b-a)
}

func grad(hash uint8, x, y, z float64) float64 {
	g := gradients[hash%12]
	return g[0]*x + g[1]*y + g[2]*z
}
