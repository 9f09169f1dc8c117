package models

import (
	"github.com/nuclab/mcell/internal/geom"
	"github.com/nuclab/mcell/internal/tally"
	"github.com/nuclab/mcell/internal/topology"
	"github.com/nuclab/mcell/internal/transport"
)

// Pin cell dimensions in cm, the usual PWR numbers.
const (
	pinFuelOR   = 0.39
	pinCladIR   = 0.40
	pinCladOR   = 0.46
	pinHalfSpan = 0.63 // half the 1.26 pitch
	pinHalfZ    = 100.0
)

// PinCell builds a single fuel rod: four concentric cylindrical-axial
// cells (fuel, gap, cladding, borated water) inside a reflective
// square pitch, bounded axially by vacuum planes.
func PinCell() (*Model, error) {
	b := newBuilder()

	fuelOR := b.surface(geom.NewZCylinder(1, 0, 0, pinFuelOR, geom.BoundaryNone))
	cladIR := b.surface(geom.NewZCylinder(2, 0, 0, pinCladIR, geom.BoundaryNone))
	cladOR := b.surface(geom.NewZCylinder(3, 0, 0, pinCladOR, geom.BoundaryNone))
	xLo := b.surface(geom.NewXPlane(4, -pinHalfSpan, geom.BoundaryReflective))
	xHi := b.surface(geom.NewXPlane(5, pinHalfSpan, geom.BoundaryReflective))
	yLo := b.surface(geom.NewYPlane(6, -pinHalfSpan, geom.BoundaryReflective))
	yHi := b.surface(geom.NewYPlane(7, pinHalfSpan, geom.BoundaryReflective))
	zLo := b.surface(geom.NewZPlane(8, -pinHalfZ, geom.BoundaryVacuum))
	zHi := b.surface(geom.NewZPlane(9, pinHalfZ, geom.BoundaryVacuum))

	fuel := b.material(uo2(1))
	gap := b.material(helium(2))
	clad := b.material(zirconium(3))
	water := b.material(borated(4))

	axial := geom.Intersect(geom.Pos(zLo), geom.Neg(zHi))
	pitch := geom.Intersect(geom.Pos(xLo), geom.Neg(xHi), geom.Pos(yLo), geom.Neg(yHi))

	root := topology.NewUniverse(0, "root")
	fuelCell := b.cell(root, topology.NewCell(1, "fuel",
		geom.Intersect(geom.Neg(fuelOR), axial), topology.MaterialFill(fuel)))
	b.cell(root, topology.NewCell(2, "gap",
		geom.Intersect(geom.Pos(fuelOR), geom.Neg(cladIR), axial), topology.MaterialFill(gap)))
	b.cell(root, topology.NewCell(3, "clad",
		geom.Intersect(geom.Pos(cladIR), geom.Neg(cladOR), axial), topology.MaterialFill(clad)))
	b.cell(root, topology.NewCell(4, "water",
		geom.Intersect(geom.Pos(cladOR), pitch, axial), topology.MaterialFill(water)))

	fuelCell.SetTemperature(600.0)

	b.universe(root)
	b.root(root, geom.NewBox(
		geom.Point{X: -pinHalfSpan, Y: -pinHalfSpan, Z: -pinHalfZ},
		geom.Point{X: pinHalfSpan, Y: pinHalfSpan, Z: pinHalfZ},
	))
	if b.err != nil {
		return nil, b.err
	}

	fuelTally, err := tally.New(1, "fuel", tally.NewCellFilter(fuelCell.ID()),
		transport.ScoreFlux, transport.ScoreHeating)
	if err != nil {
		return nil, err
	}
	rodTally, err := tally.New(2, "rod", tally.NewCellFilter(1, 2, 3, 4),
		transport.ScoreFlux)
	if err != nil {
		return nil, err
	}

	return &Model{
		Name:           "pincell",
		Description:    "PWR fuel rod: fuel/gap/clad/water in a reflective pitch",
		Topo:           b.topo,
		Tallies:        tally.NewSet(fuelTally, rodTally),
		FuelCellID:     fuelCell.ID(),
		FuelMaterialID: fuel.ID(),
	}, nil
}
