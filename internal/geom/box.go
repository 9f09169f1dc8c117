package geom

import "math/rand"

// Box is an axis-aligned bounding volume. The topology carries one for
// its root universe; point sampling (overlap checks, source sites) is
// confined to it.
type Box struct {
	Lo, Hi Point
}

func NewBox(lo, hi Point) Box {
	return Box{Lo: lo, Hi: hi}
}

func (b Box) Contains(p Point) bool {
	return p.X >= b.Lo.X && p.X <= b.Hi.X &&
		p.Y >= b.Lo.Y && p.Y <= b.Hi.Y &&
		p.Z >= b.Lo.Z && p.Z <= b.Hi.Z
}

func (b Box) Volume() float64 {
	d := b.Hi.Sub(b.Lo)
	return d.X * d.Y * d.Z
}

func (b Box) IsValid() bool {
	return b.Lo.IsValid() && b.Hi.IsValid() &&
		b.Hi.X > b.Lo.X && b.Hi.Y > b.Lo.Y && b.Hi.Z > b.Lo.Z
}

// Sample draws a uniform point from the box using rng.
func (b Box) Sample(rng *rand.Rand) Point {
	d := b.Hi.Sub(b.Lo)
	return Point{
		X: b.Lo.X + rng.Float64()*d.X,
		Y: b.Lo.Y + rng.Float64()*d.Y,
		Z: b.Lo.Z + rng.Float64()*d.Z,
	}
}
