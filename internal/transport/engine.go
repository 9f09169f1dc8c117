// Package transport defines the boundary to the particle-transport
// collaborator.
//
// The simulation driver treats an [Engine] as an opaque stepping
// function: one call runs one full batch synchronously and reports the
// scored events. An engine may parallelize internally; that
// parallelism never leaks through this interface. The bundled
// [Sampler] is a simple collision-site sampling engine used by the
// built-in models and the test suite.
package transport

import (
	"context"
	"errors"
	"fmt"

	"github.com/nuclab/mcell/internal/material"
	"github.com/nuclab/mcell/internal/tally"
	"github.com/nuclab/mcell/internal/topology"
)

var (
	ErrUnknownCell     = errors.New("transport: unknown cell id")
	ErrUnknownMaterial = errors.New("transport: unknown material id")
	ErrBadTemperature  = errors.New("transport: temperature must be positive")
)

// Density is a density scalar with its unit tag.
type Density struct {
	Value float64
	Units material.DensityUnits
}

// Overlay carries the two mutable scalar fields of an otherwise frozen
// topology: temperature per cell and density per material. The driver
// owns the overlay and only mutates it between batches, so engines may
// read it concurrently during a batch without locking.
type Overlay struct {
	temps map[int]float64
	dens  map[int]Density
}

// NewOverlay seeds an overlay from the frozen topology's
// construction-time values.
func NewOverlay(topo *topology.Topology) *Overlay {
	o := &Overlay{
		temps: make(map[int]float64),
		dens:  make(map[int]Density),
	}
	for _, c := range topo.Cells() {
		o.temps[c.ID()] = c.Temperature()
	}
	for _, m := range topo.Materials() {
		v, u := m.Density()
		o.dens[m.ID()] = Density{Value: v, Units: u}
	}
	return o
}

func (o *Overlay) Temperature(cellID int) (float64, error) {
	t, ok := o.temps[cellID]
	if !ok {
		return 0, fmt.Errorf("%w: %d", ErrUnknownCell, cellID)
	}
	return t, nil
}

func (o *Overlay) SetTemperature(cellID int, kelvin float64) error {
	if _, ok := o.temps[cellID]; !ok {
		return fmt.Errorf("%w: %d", ErrUnknownCell, cellID)
	}
	if kelvin <= 0 {
		return fmt.Errorf("%w: %f", ErrBadTemperature, kelvin)
	}
	o.temps[cellID] = kelvin
	return nil
}

func (o *Overlay) Density(matID int) (Density, error) {
	d, ok := o.dens[matID]
	if !ok {
		return Density{}, fmt.Errorf("%w: %d", ErrUnknownMaterial, matID)
	}
	return d, nil
}

func (o *Overlay) SetDensity(matID int, value float64, units material.DensityUnits) error {
	if _, ok := o.dens[matID]; !ok {
		return fmt.Errorf("%w: %d", ErrUnknownMaterial, matID)
	}
	if units != material.Sum && value <= 0 {
		return fmt.Errorf("%w: %f", material.ErrBadDensity, value)
	}
	o.dens[matID] = Density{Value: value, Units: units}
	return nil
}

// BatchInfo identifies one batch of work.
type BatchInfo struct {
	Index     int // 0-based batch counter
	Inactive  bool
	Particles int
	Seed      int64
}

// BatchResult carries the scored events of one completed batch.
type BatchResult struct {
	Events       []tally.Event
	ParticlesRun int
}

// Engine runs one batch against a frozen topology and the current
// overlay values. Implementations must be synchronous and
// run-to-completion; internal parallelism is their own business.
type Engine interface {
	Name() string
	StepBatch(ctx context.Context, topo *topology.Topology, overlay *Overlay, batch BatchInfo) (BatchResult, error)

	// Close releases engine resources. Called once by the driver at
	// finalize.
	Close() error
}
