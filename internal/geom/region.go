package geom

// Region is a boolean expression over half-spaces, evaluated as point
// containment. Evaluation order never affects the result; the tree is
// pure boolean algebra over surface signs.
type Region interface {
	Contains(p Point) bool

	// Surfaces returns every surface referenced by the tree, with
	// duplicates. Callers that need uniqueness dedupe by ID.
	Surfaces() []Surface
}

// Halfspace is a leaf selecting one side of a surface.
type Halfspace struct {
	Surface Surface
	Side    Side
}

func (h *Halfspace) Contains(p Point) bool {
	return SideOf(h.Surface.Evaluate(p)) == h.Side
}

func (h *Halfspace) Surfaces() []Surface { return []Surface{h.Surface} }

// Neg returns the negative half-space of s.
func Neg(s Surface) Region { return &Halfspace{Surface: s, Side: Negative} }

// Pos returns the positive half-space of s.
func Pos(s Surface) Region { return &Halfspace{Surface: s, Side: Positive} }

// Intersection contains a point iff every child does.
type Intersection struct {
	Children []Region
}

func (r *Intersection) Contains(p Point) bool {
	for _, c := range r.Children {
		if !c.Contains(p) {
			return false
		}
	}
	return true
}

func (r *Intersection) Surfaces() []Surface { return childSurfaces(r.Children) }

// Union contains a point iff any child does.
type Union struct {
	Children []Region
}

func (r *Union) Contains(p Point) bool {
	for _, c := range r.Children {
		if c.Contains(p) {
			return true
		}
	}
	return false
}

func (r *Union) Surfaces() []Surface { return childSurfaces(r.Children) }

// Complement negates a single child region.
type Complement struct {
	Child Region
}

func (r *Complement) Contains(p Point) bool { return !r.Child.Contains(p) }

func (r *Complement) Surfaces() []Surface { return r.Child.Surfaces() }

// Intersect builds the intersection of the given regions.
func Intersect(regions ...Region) Region {
	if len(regions) == 1 {
		return regions[0]
	}
	return &Intersection{Children: regions}
}

// Unite builds the union of the given regions.
func Unite(regions ...Region) Region {
	if len(regions) == 1 {
		return regions[0]
	}
	return &Union{Children: regions}
}

// Not builds the complement of r.
func Not(r Region) Region {
	return &Complement{Child: r}
}

func childSurfaces(children []Region) []Surface {
	var out []Surface
	for _, c := range children {
		out = append(out, c.Surfaces()...)
	}
	return out
}
