package models

import (
	"fmt"

	"github.com/nuclab/mcell/internal/geom"
	"github.com/nuclab/mcell/internal/tally"
	"github.com/nuclab/mcell/internal/topology"
	"github.com/nuclab/mcell/internal/transport"
)

// Lattice2x2 builds a 2x2 rod lattice. Each quadrant of the root
// universe is filled with its own pin universe; fills recurse with the
// untransformed point, so every pin universe carries its rod at the
// quadrant's own center.
func Lattice2x2(pitch float64) (*Model, error) {
	b := newBuilder()

	half := pitch / 2

	xMid := b.surface(geom.NewXPlane(1, 0, geom.BoundaryNone))
	yMid := b.surface(geom.NewYPlane(2, 0, geom.BoundaryNone))
	xLo := b.surface(geom.NewXPlane(3, -pitch, geom.BoundaryReflective))
	xHi := b.surface(geom.NewXPlane(4, pitch, geom.BoundaryReflective))
	yLo := b.surface(geom.NewYPlane(5, -pitch, geom.BoundaryReflective))
	yHi := b.surface(geom.NewYPlane(6, pitch, geom.BoundaryReflective))

	fuel := b.material(uo2(1))
	clad := b.material(zirconium(2))
	water := b.material(borated(3))

	// One pin universe per site, rod centered on the site.
	centers := []struct{ x, y float64 }{
		{-half, -half}, {half, -half}, {-half, half}, {half, half},
	}

	var fuelCellIDs []int
	pins := make([]*topology.Universe, len(centers))
	surfID, cellID := 10, 10
	for i, c := range centers {
		rodOR := b.surface(geom.NewZCylinder(surfID, c.x, c.y, 0.39, geom.BoundaryNone))
		cladOR := b.surface(geom.NewZCylinder(surfID+1, c.x, c.y, 0.46, geom.BoundaryNone))
		surfID += 2

		pin := topology.NewUniverse(i+1, fmt.Sprintf("pin-%d", i))
		fuelCell := b.cell(pin, topology.NewCell(cellID, fmt.Sprintf("fuel-%d", i),
			geom.Neg(rodOR), topology.MaterialFill(fuel)))
		b.cell(pin, topology.NewCell(cellID+1, fmt.Sprintf("clad-%d", i),
			geom.Intersect(geom.Pos(rodOR), geom.Neg(cladOR)), topology.MaterialFill(clad)))
		b.cell(pin, topology.NewCell(cellID+2, fmt.Sprintf("water-%d", i),
			geom.Pos(cladOR), topology.MaterialFill(water)))
		cellID += 3

		fuelCell.SetTemperature(600.0)
		fuelCellIDs = append(fuelCellIDs, fuelCell.ID())
		pins[i] = b.universe(pin)
	}

	// Quadrant site cells in the root, each filled by its pin.
	quadrants := []geom.Region{
		geom.Intersect(geom.Pos(xLo), geom.Neg(xMid), geom.Pos(yLo), geom.Neg(yMid)),
		geom.Intersect(geom.Pos(xMid), geom.Neg(xHi), geom.Pos(yLo), geom.Neg(yMid)),
		geom.Intersect(geom.Pos(xLo), geom.Neg(xMid), geom.Pos(yMid), geom.Neg(yHi)),
		geom.Intersect(geom.Pos(xMid), geom.Neg(xHi), geom.Pos(yMid), geom.Neg(yHi)),
	}

	root := topology.NewUniverse(0, "root")
	for i, region := range quadrants {
		b.cell(root, topology.NewCell(i+1, fmt.Sprintf("site-%d", i),
			region, topology.UniverseFill(pins[i])))
	}

	b.universe(root)
	b.root(root, geom.NewBox(
		geom.Point{X: -pitch, Y: -pitch, Z: -1},
		geom.Point{X: pitch, Y: pitch, Z: 1},
	))
	if b.err != nil {
		return nil, b.err
	}

	latTally, err := tally.New(1, "lattice-fuel", tally.NewCellFilter(fuelCellIDs...),
		transport.ScoreFlux, transport.ScoreHeating)
	if err != nil {
		return nil, err
	}

	return &Model{
		Name:           "lattice",
		Description:    "2x2 rod lattice with nested pin universes",
		Topo:           b.topo,
		Tallies:        tally.NewSet(latTally),
		FuelCellID:     fuelCellIDs[0],
		FuelMaterialID: fuel.ID(),
	}, nil
}
