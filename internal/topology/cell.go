package topology

import (
	"fmt"

	"github.com/nuclab/mcell/internal/geom"
	"github.com/nuclab/mcell/internal/material"
)

// DefaultTemperature is the cell temperature in kelvin used when none
// is set before freeze.
const DefaultTemperature = 293.6

// Fill is what occupies a cell: either a material or a nested
// universe. The zero Fill is invalid.
type Fill struct {
	mat *material.Material
	uni *Universe
}

func MaterialFill(m *material.Material) Fill { return Fill{mat: m} }

func UniverseFill(u *Universe) Fill { return Fill{uni: u} }

func (f Fill) Material() (*material.Material, bool) { return f.mat, f.mat != nil }

func (f Fill) Universe() (*Universe, bool) { return f.uni, f.uni != nil }

func (f Fill) IsZero() bool { return f.mat == nil && f.uni == nil }

func (f Fill) String() string {
	switch {
	case f.mat != nil:
		return fmt.Sprintf("material %d (%s)", f.mat.ID(), f.mat.Name())
	case f.uni != nil:
		return fmt.Sprintf("universe %d", f.uni.ID())
	default:
		return "empty"
	}
}

// Cell pairs a region with a fill and a temperature. Region and fill
// are immutable after topology freeze; the live temperature is tracked
// by the simulation driver's overlay, seeded from the value here.
type Cell struct {
	id          int
	name        string
	region      geom.Region
	fill        Fill
	temperature float64
	parent      *Universe
}

func NewCell(id int, name string, region geom.Region, fill Fill) *Cell {
	return &Cell{
		id:          id,
		name:        name,
		region:      region,
		fill:        fill,
		temperature: DefaultTemperature,
	}
}

func (c *Cell) ID() int             { return c.id }
func (c *Cell) Name() string        { return c.name }
func (c *Cell) Region() geom.Region { return c.region }
func (c *Cell) Fill() Fill          { return c.fill }

// Temperature returns the construction-time temperature in kelvin.
func (c *Cell) Temperature() float64 { return c.temperature }

// SetTemperature sets the initial temperature. Mutation after freeze
// goes through the driver overlay instead.
func (c *Cell) SetTemperature(kelvin float64) {
	c.temperature = kelvin
}

func (c *Cell) Contains(p geom.Point) bool {
	return c.region != nil && c.region.Contains(p)
}
