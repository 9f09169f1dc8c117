package models

import (
	"github.com/nuclab/mcell/internal/geom"
	"github.com/nuclab/mcell/internal/tally"
	"github.com/nuclab/mcell/internal/topology"
	"github.com/nuclab/mcell/internal/transport"
)

// ReflectedSlab builds a 1-D three-region slab: fuel plate between two
// water reflectors, with reflective boundaries all around. Useful as
// the smallest geometry that still has a hot interior cell.
func ReflectedSlab() (*Model, error) {
	b := newBuilder()

	const span = 10.0

	left := b.surface(geom.NewXPlane(1, -1.0, geom.BoundaryNone))
	right := b.surface(geom.NewXPlane(2, 1.0, geom.BoundaryNone))
	xLo := b.surface(geom.NewXPlane(3, -span, geom.BoundaryReflective))
	xHi := b.surface(geom.NewXPlane(4, span, geom.BoundaryReflective))
	yLo := b.surface(geom.NewYPlane(5, -span, geom.BoundaryReflective))
	yHi := b.surface(geom.NewYPlane(6, span, geom.BoundaryReflective))
	zLo := b.surface(geom.NewZPlane(7, -span, geom.BoundaryReflective))
	zHi := b.surface(geom.NewZPlane(8, span, geom.BoundaryReflective))

	fuel := b.material(uo2(1))
	water := b.material(borated(2))

	slab := geom.Intersect(
		geom.Pos(yLo), geom.Neg(yHi),
		geom.Pos(zLo), geom.Neg(zHi),
	)

	root := topology.NewUniverse(0, "root")
	b.cell(root, topology.NewCell(1, "west-reflector",
		geom.Intersect(geom.Pos(xLo), geom.Neg(left), slab), topology.MaterialFill(water)))
	plate := b.cell(root, topology.NewCell(2, "plate",
		geom.Intersect(geom.Pos(left), geom.Neg(right), slab), topology.MaterialFill(fuel)))
	b.cell(root, topology.NewCell(3, "east-reflector",
		geom.Intersect(geom.Pos(right), geom.Neg(xHi), slab), topology.MaterialFill(water)))

	plate.SetTemperature(500.0)

	b.universe(root)
	b.root(root, geom.NewBox(
		geom.Point{X: -span, Y: -span, Z: -span},
		geom.Point{X: span, Y: span, Z: span},
	))
	if b.err != nil {
		return nil, b.err
	}

	plateTally, err := tally.New(1, "plate", tally.NewCellFilter(plate.ID()),
		transport.ScoreFlux, transport.ScoreCollision)
	if err != nil {
		return nil, err
	}

	return &Model{
		Name:           "slab",
		Description:    "fuel plate between water reflectors",
		Topo:           b.topo,
		Tallies:        tally.NewSet(plateTally),
		FuelCellID:     plate.ID(),
		FuelMaterialID: fuel.ID(),
	}, nil
}
