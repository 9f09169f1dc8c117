// Package models builds canonical reactor geometries for the CLI and
// the test suite. Each builder returns a ready-to-freeze topology with
// a default tally set.
package models

import (
	"github.com/nuclab/mcell/internal/geom"
	"github.com/nuclab/mcell/internal/material"
	"github.com/nuclab/mcell/internal/tally"
	"github.com/nuclab/mcell/internal/topology"
)

// Model bundles a constructed topology with its default tallies and
// the IDs a coupling driver usually wants to poke at.
type Model struct {
	Name        string
	Description string
	Topo        *topology.Topology
	Tallies     *tally.Set

	// FuelCellID and FuelMaterialID identify the hottest cell and its
	// material, the usual targets for temperature/density coupling.
	FuelCellID     int
	FuelMaterialID int
}

// builder accumulates construction errors so model code reads as a
// flat list of parts.
type builder struct {
	topo *topology.Topology
	err  error
}

func newBuilder() *builder {
	return &builder{topo: topology.New()}
}

func (b *builder) surface(s geom.Surface) geom.Surface {
	if b.err == nil {
		b.err = b.topo.AddSurface(s)
	}
	return s
}

func (b *builder) material(m *material.Material, err error) *material.Material {
	if b.err == nil {
		b.err = err
	}
	if b.err == nil {
		b.err = b.topo.AddMaterial(m)
	}
	return m
}

func (b *builder) cell(u *topology.Universe, c *topology.Cell) *topology.Cell {
	if b.err == nil {
		b.err = b.topo.AddCell(c)
	}
	if b.err == nil {
		b.err = u.AddCell(c)
	}
	return c
}

func (b *builder) universe(u *topology.Universe) *topology.Universe {
	if b.err == nil {
		b.err = b.topo.AddUniverse(u)
	}
	return u
}

func (b *builder) root(u *topology.Universe, bounds geom.Box) {
	if b.err == nil {
		b.err = b.topo.SetRoot(u, bounds)
	}
}

// Shared material recipes.

func uo2(id int) (*material.Material, error) {
	m := material.New(id, "uo2")
	if err := m.AddEnrichedNuclide("U235", 1.0, material.AtomFraction, 4.25); err != nil {
		return nil, err
	}
	if err := m.AddNuclide("O16", 2.0, material.AtomFraction); err != nil {
		return nil, err
	}
	if err := m.SetDensity(10.29769, material.GramsPerCC); err != nil {
		return nil, err
	}
	return m, nil
}

func helium(id int) (*material.Material, error) {
	m := material.New(id, "helium")
	if err := m.AddNuclide("He4", 1.0, material.AtomFraction); err != nil {
		return nil, err
	}
	if err := m.SetDensity(0.001598, material.GramsPerCC); err != nil {
		return nil, err
	}
	return m, nil
}

func zirconium(id int) (*material.Material, error) {
	m := material.New(id, "zirconium")
	if err := m.AddNuclide("Zr90", 1.0, material.AtomFraction); err != nil {
		return nil, err
	}
	if err := m.SetDensity(6.55, material.GramsPerCC); err != nil {
		return nil, err
	}
	return m, nil
}

func borated(id int) (*material.Material, error) {
	m := material.New(id, "borated-water")
	if err := m.AddNuclide("H1", 2.0, material.AtomFraction); err != nil {
		return nil, err
	}
	if err := m.AddNuclide("O16", 1.0, material.AtomFraction); err != nil {
		return nil, err
	}
	if err := m.AddNuclide("B10", 8e-5, material.AtomFraction); err != nil {
		return nil, err
	}
	if err := m.SetDensity(0.740582, material.GramsPerCC); err != nil {
		return nil, err
	}
	m.AddSAlphaBeta("c_H_in_H2O")
	return m, nil
}
