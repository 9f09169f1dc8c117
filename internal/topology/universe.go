package topology

import (
	"fmt"

	"github.com/nuclab/mcell/internal/geom"
)

// Universe is an ordered collection of cells. It serves both as the
// top-level geometry and as the fill of a cell, which nests geometry
// hierarchically. Nesting must form a DAG.
type Universe struct {
	id    int
	name  string
	cells []*Cell
}

func NewUniverse(id int, name string) *Universe {
	return &Universe{id: id, name: name}
}

func (u *Universe) ID() int      { return u.id }
func (u *Universe) Name() string { return u.name }

func (u *Universe) Cells() []*Cell {
	out := make([]*Cell, len(u.cells))
	copy(out, u.cells)
	return out
}

// AddCell registers a cell with this universe. A cell belongs to
// exactly one universe.
func (u *Universe) AddCell(c *Cell) error {
	if c.parent != nil {
		return fmt.Errorf("%w: cell %d already belongs to universe %d",
			ErrInvalidTopology, c.id, c.parent.id)
	}
	for _, existing := range u.cells {
		if existing.id == c.id {
			return fmt.Errorf("%w: cell %d in universe %d", ErrDuplicateID, c.id, u.id)
		}
	}
	c.parent = u
	u.cells = append(u.cells, c)
	return nil
}

// locate finds the unique cell of this universe containing p. Every
// cell is consulted so overlaps surface as ErrAmbiguousCell rather
// than silently resolving to declaration order.
func (u *Universe) locate(p geom.Point) (*Cell, error) {
	var found *Cell
	for _, c := range u.cells {
		if !c.Contains(p) {
			continue
		}
		if found != nil {
			return nil, &LocateError{Point: p, Universe: u.id, Wrapped: ErrAmbiguousCell}
		}
		found = c
	}
	if found == nil {
		return nil, &LocateError{Point: p, Universe: u.id, Wrapped: ErrNoCellFound}
	}
	return found, nil
}

// locatePath resolves p through nested universe fills, returning the
// chain of cells from this universe down to the material cell. The
// same point is used at every level: fills apply no coordinate
// transform in this model.
func (u *Universe) locatePath(p geom.Point) ([]*Cell, error) {
	c, err := u.locate(p)
	if err != nil {
		return nil, err
	}
	path := []*Cell{c}
	if child, ok := c.fill.Universe(); ok {
		rest, err := child.locatePath(p)
		if err != nil {
			return nil, err
		}
		path = append(path, rest...)
	}
	return path, nil
}
