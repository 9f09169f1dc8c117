package transport

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/nuclab/mcell/internal/geom"
	"github.com/nuclab/mcell/internal/material"
	"github.com/nuclab/mcell/internal/topology"
)

// boxModel is a unit box split by the plane x = 0 into two water
// cells.
func boxModel(t *testing.T) (*topology.Topology, *topology.Cell, *topology.Cell) {
	t.Helper()

	topo := topology.New()
	mid := geom.NewXPlane(1, 0, geom.BoundaryNone)
	if err := topo.AddSurface(mid); err != nil {
		t.Fatal(err)
	}

	left := material.New(1, "left-water")
	right := material.New(2, "right-water")
	for _, m := range []*material.Material{left, right} {
		if err := m.AddNuclide("H1", 2.0, material.AtomFraction); err != nil {
			t.Fatal(err)
		}
		if err := m.AddNuclide("O16", 1.0, material.AtomFraction); err != nil {
			t.Fatal(err)
		}
		if err := m.SetDensity(1.0, material.GramsPerCC); err != nil {
			t.Fatal(err)
		}
		if err := topo.AddMaterial(m); err != nil {
			t.Fatal(err)
		}
	}

	lc := topology.NewCell(10, "left", geom.Neg(mid), topology.MaterialFill(left))
	rc := topology.NewCell(11, "right", geom.Pos(mid), topology.MaterialFill(right))

	root := topology.NewUniverse(0, "root")
	for _, c := range []*topology.Cell{lc, rc} {
		if err := topo.AddCell(c); err != nil {
			t.Fatal(err)
		}
		if err := root.AddCell(c); err != nil {
			t.Fatal(err)
		}
	}
	if err := topo.AddUniverse(root); err != nil {
		t.Fatal(err)
	}
	bounds := geom.NewBox(geom.Point{X: -1, Y: -1, Z: -1}, geom.Point{X: 1, Y: 1, Z: 1})
	if err := topo.SetRoot(root, bounds); err != nil {
		t.Fatal(err)
	}
	if err := topo.Freeze(); err != nil {
		t.Fatal(err)
	}
	return topo, lc, rc
}

func stepOnce(t *testing.T, workers int, overlay *Overlay, topo *topology.Topology) BatchResult {
	t.Helper()
	s := NewSampler(workers)
	res, err := s.StepBatch(context.Background(), topo, overlay, BatchInfo{
		Index: 0, Particles: 20000, Seed: 7,
	})
	if err != nil {
		t.Fatalf("StepBatch: %v", err)
	}
	return res
}

func eventValue(res BatchResult, cellID int, score string) float64 {
	for _, ev := range res.Events {
		if ev.CellID == cellID && ev.Score == score {
			return ev.Value
		}
	}
	return 0
}

func TestSamplerFluxSplitsEvenly(t *testing.T) {
	topo, lc, rc := boxModel(t)
	overlay := NewOverlay(topo)

	res := stepOnce(t, 4, overlay, topo)
	if res.ParticlesRun != 20000 {
		t.Fatalf("ParticlesRun = %d", res.ParticlesRun)
	}

	fluxL := eventValue(res, lc.ID(), ScoreFlux)
	fluxR := eventValue(res, rc.ID(), ScoreFlux)
	if math.Abs(fluxL+fluxR-1.0) > 1e-9 {
		t.Errorf("total flux = %f, want 1", fluxL+fluxR)
	}
	// Equal halves of the box; a 2% tolerance is generous at 20k
	// samples.
	if math.Abs(fluxL-0.5) > 0.02 {
		t.Errorf("left flux = %f, want ~0.5", fluxL)
	}
}

func TestSamplerDeterministicForSeed(t *testing.T) {
	topo, lc, _ := boxModel(t)
	overlay := NewOverlay(topo)

	a := stepOnce(t, 3, overlay, topo)
	b := stepOnce(t, 3, overlay, topo)

	if eventValue(a, lc.ID(), ScoreFlux) != eventValue(b, lc.ID(), ScoreFlux) {
		t.Error("same seed and workers must reproduce identical totals")
	}
}

func TestSamplerUsesOverlayValues(t *testing.T) {
	topo, lc, _ := boxModel(t)
	overlay := NewOverlay(topo)

	before := stepOnce(t, 2, overlay, topo)

	if err := overlay.SetDensity(1, 2.0, material.GramsPerCC); err != nil {
		t.Fatal(err)
	}
	if err := overlay.SetTemperature(lc.ID(), 2*topology.DefaultTemperature); err != nil {
		t.Fatal(err)
	}
	after := stepOnce(t, 2, overlay, topo)

	colBefore := eventValue(before, lc.ID(), ScoreCollision)
	colAfter := eventValue(after, lc.ID(), ScoreCollision)
	if math.Abs(colAfter-2*colBefore) > 1e-9 {
		t.Errorf("collision score did not track density: %f vs %f", colBefore, colAfter)
	}

	heatBefore := eventValue(before, lc.ID(), ScoreHeating)
	heatAfter := eventValue(after, lc.ID(), ScoreHeating)
	if math.Abs(heatAfter-4*heatBefore) > 1e-9 {
		t.Errorf("heating score did not track density*temperature: %f vs %f", heatBefore, heatAfter)
	}
}

func TestOverlayValidation(t *testing.T) {
	topo, lc, _ := boxModel(t)
	overlay := NewOverlay(topo)

	if err := overlay.SetTemperature(999, 600); !errors.Is(err, ErrUnknownCell) {
		t.Errorf("unknown cell: err = %v", err)
	}
	if err := overlay.SetTemperature(lc.ID(), -5); !errors.Is(err, ErrBadTemperature) {
		t.Errorf("negative kelvin: err = %v", err)
	}
	if err := overlay.SetDensity(999, 1.0, material.GramsPerCC); !errors.Is(err, ErrUnknownMaterial) {
		t.Errorf("unknown material: err = %v", err)
	}
	if err := overlay.SetDensity(1, -1.0, material.GramsPerCC); !errors.Is(err, material.ErrBadDensity) {
		t.Errorf("negative density: err = %v", err)
	}

	temp, err := overlay.Temperature(lc.ID())
	if err != nil || temp != topology.DefaultTemperature {
		t.Errorf("Temperature = %f, %v", temp, err)
	}
	if _, err := overlay.Density(42); !errors.Is(err, ErrUnknownMaterial) {
		t.Errorf("Density(42): err = %v", err)
	}
}

func TestSamplerKgPerM3Normalization(t *testing.T) {
	topo, lc, _ := boxModel(t)
	overlay := NewOverlay(topo)

	base := stepOnce(t, 2, overlay, topo)

	// 1000 kg/m3 == 1 g/cm3, so the collision score must not move.
	if err := overlay.SetDensity(1, 1000.0, material.KgPerM3); err != nil {
		t.Fatal(err)
	}
	same := stepOnce(t, 2, overlay, topo)

	a := eventValue(base, lc.ID(), ScoreCollision)
	b := eventValue(same, lc.ID(), ScoreCollision)
	if math.Abs(a-b) > 1e-9 {
		t.Errorf("unit normalization broken: %f vs %f", a, b)
	}
}

func TestSamplerContextCancel(t *testing.T) {
	topo, _, _ := boxModel(t)
	overlay := NewOverlay(topo)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	s := NewSampler(2)
	_, err := s.StepBatch(ctx, topo, overlay, BatchInfo{Particles: 100000, Seed: 1})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("StepBatch with canceled ctx: err = %v", err)
	}
}
