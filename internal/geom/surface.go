package geom

import "fmt"

// Boundary is the boundary condition tag carried by a surface. The
// geometry engine never acts on it; the transport engine queries it
// when a particle crosses the surface.
type Boundary int

const (
	BoundaryNone Boundary = iota
	BoundaryReflective
	BoundaryVacuum
	BoundaryPeriodic
)

func (b Boundary) String() string {
	switch b {
	case BoundaryNone:
		return "none"
	case BoundaryReflective:
		return "reflective"
	case BoundaryVacuum:
		return "vacuum"
	case BoundaryPeriodic:
		return "periodic"
	default:
		return fmt.Sprintf("boundary(%d)", int(b))
	}
}

// Side identifies a half-space of a surface.
type Side int

const (
	Negative Side = iota
	Positive
)

func (s Side) String() string {
	if s == Negative {
		return "-"
	}
	return "+"
}

// SideOf maps a surface evaluation to a side. Zero resolves to the
// positive side, so a point exactly on a surface belongs to exactly
// one half-space.
func SideOf(v float64) Side {
	if v >= 0 {
		return Positive
	}
	return Negative
}

// Surface is an implicit scalar function of a 3-D point. Evaluate
// returns a value whose sign selects the half-space containing the
// point: negative inside closed surfaces (spheres, cylinders), or
// below/left of planes.
type Surface interface {
	ID() int
	Type() string
	Boundary() Boundary
	Evaluate(p Point) float64
}

type base struct {
	id  int
	bc  Boundary
	typ string
}

func (b base) ID() int            { return b.id }
func (b base) Type() string       { return b.typ }
func (b base) Boundary() Boundary { return b.bc }

// Plane is the general plane ax + by + cz - d = 0.
type Plane struct {
	base
	A, B, C, D float64
}

func NewPlane(id int, a, b, c, d float64, bc Boundary) *Plane {
	return &Plane{base: base{id, bc, "plane"}, A: a, B: b, C: c, D: d}
}

func (s *Plane) Evaluate(p Point) float64 {
	return s.A*p.X + s.B*p.Y + s.C*p.Z - s.D
}

// XPlane is the plane x = x0.
type XPlane struct {
	base
	X0 float64
}

func NewXPlane(id int, x0 float64, bc Boundary) *XPlane {
	return &XPlane{base: base{id, bc, "x-plane"}, X0: x0}
}

func (s *XPlane) Evaluate(p Point) float64 { return p.X - s.X0 }

// YPlane is the plane y = y0.
type YPlane struct {
	base
	Y0 float64
}

func NewYPlane(id int, y0 float64, bc Boundary) *YPlane {
	return &YPlane{base: base{id, bc, "y-plane"}, Y0: y0}
}

func (s *YPlane) Evaluate(p Point) float64 { return p.Y - s.Y0 }

// ZPlane is the plane z = z0.
type ZPlane struct {
	base
	Z0 float64
}

func NewZPlane(id int, z0 float64, bc Boundary) *ZPlane {
	return &ZPlane{base: base{id, bc, "z-plane"}, Z0: z0}
}

func (s *ZPlane) Evaluate(p Point) float64 { return p.Z - s.Z0 }

// Sphere is centered at (x0,y0,z0) with radius r. Evaluate is negative
// inside.
type Sphere struct {
	base
	X0, Y0, Z0, R float64
}

func NewSphere(id int, x0, y0, z0, r float64, bc Boundary) *Sphere {
	return &Sphere{base: base{id, bc, "sphere"}, X0: x0, Y0: y0, Z0: z0, R: r}
}

func (s *Sphere) Evaluate(p Point) float64 {
	dx, dy, dz := p.X-s.X0, p.Y-s.Y0, p.Z-s.Z0
	return dx*dx + dy*dy + dz*dz - s.R*s.R
}

// ZCylinder is an infinite cylinder along the z axis at (x0,y0) with
// radius r.
type ZCylinder struct {
	base
	X0, Y0, R float64
}

func NewZCylinder(id int, x0, y0, r float64, bc Boundary) *ZCylinder {
	return &ZCylinder{base: base{id, bc, "z-cylinder"}, X0: x0, Y0: y0, R: r}
}

func (s *ZCylinder) Evaluate(p Point) float64 {
	dx, dy := p.X-s.X0, p.Y-s.Y0
	return dx*dx + dy*dy - s.R*s.R
}

// XCylinder is an infinite cylinder along the x axis.
type XCylinder struct {
	base
	Y0, Z0, R float64
}

func NewXCylinder(id int, y0, z0, r float64, bc Boundary) *XCylinder {
	return &XCylinder{base: base{id, bc, "x-cylinder"}, Y0: y0, Z0: z0, R: r}
}

func (s *XCylinder) Evaluate(p Point) float64 {
	dy, dz := p.Y-s.Y0, p.Z-s.Z0
	return dy*dy + dz*dz - s.R*s.R
}

// YCylinder is an infinite cylinder along the y axis.
type YCylinder struct {
	base
	X0, Z0, R float64
}

func NewYCylinder(id int, x0, z0, r float64, bc Boundary) *YCylinder {
	return &YCylinder{base: base{id, bc, "y-cylinder"}, X0: x0, Z0: z0, R: r}
}

func (s *YCylinder) Evaluate(p Point) float64 {
	dx, dz := p.X-s.X0, p.Z-s.Z0
	return dx*dx + dz*dz - s.R*s.R
}
