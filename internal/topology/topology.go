// Package topology materializes cells and universes into a frozen,
// ID-addressable registry and resolves which cell contains a point.
//
// Construction is two-phase: register surfaces, materials, cells and
// universes, set a root, then [Topology.Freeze]. Freeze validates the
// geometry invariants (no dangling surface references, no universe
// cycles, no overlapping cells over a sampled point set) and makes the
// topology immutable. A frozen topology is safe for concurrent readers.
package topology

import (
	"fmt"
	"math/rand"
	"sort"

	"github.com/nuclab/mcell/internal/geom"
	"github.com/nuclab/mcell/internal/material"
)

// overlapSamples is the size of the freeze-time no-overlap spot check.
// Continuous space cannot be checked exhaustively; a seeded sample
// keeps the check deterministic.
const overlapSamples = 2048

const overlapSeed = 0x6d63656c6c

// Topology owns every geometry entity and addresses them by integer
// ID. After Freeze it is immutable except for the scalar overlay
// fields the driver manages separately.
type Topology struct {
	surfaces  map[int]geom.Surface
	cells     map[int]*Cell
	materials map[int]*material.Material
	universes map[int]*Universe

	root   *Universe
	bounds geom.Box
	frozen bool
}

func New() *Topology {
	return &Topology{
		surfaces:  make(map[int]geom.Surface),
		cells:     make(map[int]*Cell),
		materials: make(map[int]*material.Material),
		universes: make(map[int]*Universe),
	}
}

func (t *Topology) Frozen() bool { return t.frozen }

// Bounds returns the bounding box of the root universe.
func (t *Topology) Bounds() geom.Box { return t.bounds }

func (t *Topology) Root() *Universe { return t.root }

func (t *Topology) AddSurface(s geom.Surface) error {
	if t.frozen {
		return ErrFrozen
	}
	if _, ok := t.surfaces[s.ID()]; ok {
		return fmt.Errorf("%w: surface %d", ErrDuplicateID, s.ID())
	}
	t.surfaces[s.ID()] = s
	return nil
}

func (t *Topology) AddMaterial(m *material.Material) error {
	if t.frozen {
		return ErrFrozen
	}
	if _, ok := t.materials[m.ID()]; ok {
		return fmt.Errorf("%w: material %d", ErrDuplicateID, m.ID())
	}
	t.materials[m.ID()] = m
	return nil
}

func (t *Topology) AddCell(c *Cell) error {
	if t.frozen {
		return ErrFrozen
	}
	if _, ok := t.cells[c.ID()]; ok {
		return fmt.Errorf("%w: cell %d", ErrDuplicateID, c.ID())
	}
	t.cells[c.ID()] = c
	return nil
}

func (t *Topology) AddUniverse(u *Universe) error {
	if t.frozen {
		return ErrFrozen
	}
	if _, ok := t.universes[u.ID()]; ok {
		return fmt.Errorf("%w: universe %d", ErrDuplicateID, u.ID())
	}
	t.universes[u.ID()] = u
	return nil
}

// SetRoot designates the top-level universe and its bounding volume.
func (t *Topology) SetRoot(u *Universe, bounds geom.Box) error {
	if t.frozen {
		return ErrFrozen
	}
	t.root = u
	t.bounds = bounds
	return nil
}

// Registry lookups. Valid before and after freeze.

func (t *Topology) SurfaceByID(id int) (geom.Surface, error) {
	s, ok := t.surfaces[id]
	if !ok {
		return nil, fmt.Errorf("%w: surface %d", ErrNotFound, id)
	}
	return s, nil
}

func (t *Topology) CellByID(id int) (*Cell, error) {
	c, ok := t.cells[id]
	if !ok {
		return nil, fmt.Errorf("%w: cell %d", ErrNotFound, id)
	}
	return c, nil
}

func (t *Topology) MaterialByID(id int) (*material.Material, error) {
	m, ok := t.materials[id]
	if !ok {
		return nil, fmt.Errorf("%w: material %d", ErrNotFound, id)
	}
	return m, nil
}

func (t *Topology) UniverseByID(id int) (*Universe, error) {
	u, ok := t.universes[id]
	if !ok {
		return nil, fmt.Errorf("%w: universe %d", ErrNotFound, id)
	}
	return u, nil
}

// Cells returns every registered cell sorted by ID.
func (t *Topology) Cells() []*Cell {
	out := make([]*Cell, 0, len(t.cells))
	for _, c := range t.cells {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID() < out[j].ID() })
	return out
}

// Materials returns every registered material sorted by ID.
func (t *Topology) Materials() []*material.Material {
	out := make([]*material.Material, 0, len(t.materials))
	for _, m := range t.materials {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID() < out[j].ID() })
	return out
}

// Freeze validates every invariant and makes the topology immutable.
// Any violation aborts the freeze; a topology that fails Freeze must
// not be simulated.
func (t *Topology) Freeze() error {
	if t.frozen {
		return ErrFrozen
	}
	if t.root == nil {
		return fmt.Errorf("%w: no root universe", ErrInvalidTopology)
	}
	if _, ok := t.universes[t.root.ID()]; !ok {
		return fmt.Errorf("%w: root universe %d not registered", ErrInvalidTopology, t.root.ID())
	}
	if !t.bounds.IsValid() {
		return fmt.Errorf("%w: root bounding box is degenerate", ErrInvalidTopology)
	}

	for _, m := range t.Materials() {
		if err := m.Validate(); err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidTopology, err)
		}
	}

	if err := t.checkCells(); err != nil {
		return err
	}
	if err := t.checkCycles(); err != nil {
		return err
	}
	if err := t.checkOverlap(); err != nil {
		return err
	}

	t.frozen = true
	return nil
}

func (t *Topology) checkCells() error {
	for _, c := range t.Cells() {
		if c.region == nil {
			return fmt.Errorf("%w: cell %d has no region", ErrInvalidTopology, c.ID())
		}
		if c.fill.IsZero() {
			return fmt.Errorf("%w: cell %d has no fill", ErrInvalidTopology, c.ID())
		}
		if c.parent == nil {
			return fmt.Errorf("%w: cell %d belongs to no universe", ErrInvalidTopology, c.ID())
		}
		if _, ok := t.universes[c.parent.ID()]; !ok {
			return fmt.Errorf("%w: cell %d parent universe %d not registered",
				ErrInvalidTopology, c.ID(), c.parent.ID())
		}

		for _, s := range c.region.Surfaces() {
			registered, ok := t.surfaces[s.ID()]
			if !ok || registered != s {
				return fmt.Errorf("%w: cell %d references surface %d: %w",
					ErrInvalidTopology, c.ID(), s.ID(), ErrDanglingReference)
			}
		}

		if m, ok := c.fill.Material(); ok {
			if registered, found := t.materials[m.ID()]; !found || registered != m {
				return fmt.Errorf("%w: cell %d filled with unregistered material %d",
					ErrInvalidTopology, c.ID(), m.ID())
			}
		}
		if u, ok := c.fill.Universe(); ok {
			if registered, found := t.universes[u.ID()]; !found || registered != u {
				return fmt.Errorf("%w: cell %d filled with unregistered universe %d",
					ErrInvalidTopology, c.ID(), u.ID())
			}
		}
	}
	return nil
}

// checkCycles rejects a universe that transitively contains itself.
func (t *Topology) checkCycles() error {
	const (
		unvisited = iota
		inProgress
		done
	)
	state := make(map[int]int, len(t.universes))

	var visit func(u *Universe) error
	visit = func(u *Universe) error {
		switch state[u.ID()] {
		case inProgress:
			return fmt.Errorf("%w: %w: universe %d", ErrInvalidTopology, ErrUniverseCycle, u.ID())
		case done:
			return nil
		}
		state[u.ID()] = inProgress
		for _, c := range u.cells {
			if child, ok := c.fill.Universe(); ok {
				if err := visit(child); err != nil {
					return err
				}
			}
		}
		state[u.ID()] = done
		return nil
	}

	for _, u := range t.universes {
		if err := visit(u); err != nil {
			return err
		}
	}
	return nil
}

// checkOverlap spot-checks the no-overlap invariant over a seeded
// sample of the root bounding box. Gaps are not an error here: a leak
// surfaces as ErrNoCellFound when a simulated particle reaches it.
func (t *Topology) checkOverlap() error {
	rng := rand.New(rand.NewSource(overlapSeed))
	for i := 0; i < overlapSamples; i++ {
		p := t.bounds.Sample(rng)
		for _, u := range t.universes {
			n := 0
			for _, c := range u.cells {
				if c.Contains(p) {
					n++
				}
			}
			if n > 1 {
				return fmt.Errorf("%w: %w in universe %d at (%g, %g, %g)",
					ErrInvalidTopology, ErrOverlappingCells, u.ID(), p.X, p.Y, p.Z)
			}
		}
	}
	return nil
}

// Locate resolves the material cell containing p, recursing through
// universe fills from the root.
func (t *Topology) Locate(p geom.Point) (*Cell, error) {
	path, err := t.LocatePath(p)
	if err != nil {
		return nil, err
	}
	return path[len(path)-1], nil
}

// LocatePath resolves p to the chain of cells from the root universe
// down to the material cell containing it.
func (t *Topology) LocatePath(p geom.Point) ([]*Cell, error) {
	if !t.frozen {
		return nil, ErrNotFrozen
	}
	return t.root.locatePath(p)
}
