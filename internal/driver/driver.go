// Package driver owns the batch-stepped simulation lifecycle.
//
// A [Driver] moves through Uninitialized -> Initialized -> Finalized.
// While initialized it alternates between running batches and sitting
// idle; the idle gaps are the only window in which the mutation API
// (temperature per cell, density per material) may be used. Mutations
// take effect with the next batch and never retroactively alter
// accumulated tally statistics.
//
// Every public method is safe for concurrent use; the state machine,
// not fine-grained data locking, is what keeps mutation and transport
// apart.
package driver

import (
	"context"
	"fmt"
	"sync"

	"github.com/nuclab/mcell/internal/material"
	"github.com/nuclab/mcell/internal/tally"
	"github.com/nuclab/mcell/internal/topology"
	"github.com/nuclab/mcell/internal/transport"
)

// State is the driver lifecycle state.
type State int

const (
	Uninitialized State = iota
	Initialized
	Finalized
)

func (s State) String() string {
	switch s {
	case Uninitialized:
		return "uninitialized"
	case Initialized:
		return "initialized"
	case Finalized:
		return "finalized"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Phase splits initialized batches into warm-up and statistics
// accumulation.
type Phase int

const (
	PhaseInactive Phase = iota
	PhaseActive
)

func (p Phase) String() string {
	if p == PhaseInactive {
		return "inactive"
	}
	return "active"
}

// Plan configures the batch schedule. ActiveBatches == 0 leaves the
// active phase open-ended.
type Plan struct {
	InactiveBatches   int
	ActiveBatches     int
	ParticlesPerBatch int
	Seed              int64
}

func (p Plan) validate() error {
	if p.InactiveBatches < 0 {
		return fmt.Errorf("%w: negative inactive batch count", ErrBadPlan)
	}
	if p.ActiveBatches < 0 {
		return fmt.Errorf("%w: negative active batch count", ErrBadPlan)
	}
	if p.ParticlesPerBatch <= 0 {
		return fmt.Errorf("%w: particles per batch must be positive", ErrBadPlan)
	}
	return nil
}

// Driver is the simulation state machine. Construct with [New], then
// Init, RunNextBatch repeatedly, Finalize.
type Driver struct {
	engine transport.Engine

	mu      sync.Mutex
	state   State
	running bool
	batch   int // completed batches

	topo    *topology.Topology
	overlay *transport.Overlay
	tallies *tally.Set
	plan    Plan
}

func New(engine transport.Engine) *Driver {
	return &Driver{engine: engine}
}

// Init freezes the topology (when not already frozen), builds the
// mutable overlay, adopts the tallies and transitions to Initialized.
// A topology that fails validation aborts initialization entirely.
func (d *Driver) Init(topo *topology.Topology, tallies *tally.Set, plan Plan) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.state != Uninitialized {
		return fmt.Errorf("%w: init from %s", ErrInvalidState, d.state)
	}
	if err := plan.validate(); err != nil {
		return err
	}
	if !topo.Frozen() {
		if err := topo.Freeze(); err != nil {
			return err
		}
	}
	if tallies == nil {
		tallies = tally.NewSet()
	}

	d.topo = topo
	d.overlay = transport.NewOverlay(topo)
	d.tallies = tallies
	d.plan = plan
	d.batch = 0
	d.state = Initialized
	return nil
}

// State returns the lifecycle state.
func (d *Driver) State() State {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.state
}

// BatchesRun returns how many batches have completed.
func (d *Driver) BatchesRun() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.batch
}

// Phase reports whether the next batch would be a warm-up batch or an
// accumulating one. The transition from inactive to active is a pure
// counter comparison.
func (d *Driver) Phase() Phase {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.phaseLocked()
}

func (d *Driver) phaseLocked() Phase {
	if d.batch < d.plan.InactiveBatches {
		return PhaseInactive
	}
	return PhaseActive
}

// Topology exposes the frozen topology for read-only inspection.
func (d *Driver) Topology() *topology.Topology {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.topo
}

// RunNextBatch executes exactly one batch synchronously. Inactive
// batches run the engine but leave the tally accumulators untouched.
// A failed batch does not advance the counter and does not corrupt
// accumulated statistics.
func (d *Driver) RunNextBatch(ctx context.Context) error {
	d.mu.Lock()
	switch {
	case d.state == Uninitialized:
		d.mu.Unlock()
		return ErrNotInitialized
	case d.state == Finalized:
		d.mu.Unlock()
		return fmt.Errorf("%w: run on finalized driver", ErrInvalidState)
	case d.running:
		d.mu.Unlock()
		return ErrBatchInProgress
	}

	total := d.plan.InactiveBatches + d.plan.ActiveBatches
	if d.plan.ActiveBatches > 0 && d.batch >= total {
		d.mu.Unlock()
		return fmt.Errorf("%w: %d batches run", ErrBatchPlanExhausted, d.batch)
	}

	info := transport.BatchInfo{
		Index:     d.batch,
		Inactive:  d.phaseLocked() == PhaseInactive,
		Particles: d.plan.ParticlesPerBatch,
		Seed:      d.plan.Seed,
	}
	topo, overlay := d.topo, d.overlay
	d.running = true
	d.mu.Unlock()

	// The engine call runs outside the lock so reads stay available
	// while a batch executes; the running flag blocks mutation.
	result, err := d.engine.StepBatch(ctx, topo, overlay, info)

	d.mu.Lock()
	defer d.mu.Unlock()
	d.running = false

	if err != nil {
		d.tallies.DiscardBatch()
		return err
	}

	if info.Inactive {
		d.tallies.DiscardBatch()
	} else {
		for _, ev := range result.Events {
			d.tallies.Observe(ev)
		}
		d.tallies.CommitBatch()
	}
	d.batch++
	return nil
}

// SetTemperature changes a cell temperature, effective with the next
// batch. Valid only between batches on an initialized driver.
func (d *Driver) SetTemperature(cellID int, kelvin float64) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.mutableLocked(); err != nil {
		return err
	}
	return d.overlay.SetTemperature(cellID, kelvin)
}

// SetDensity changes a material density, effective with the next
// batch. Valid only between batches on an initialized driver.
func (d *Driver) SetDensity(matID int, value float64, units material.DensityUnits) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.mutableLocked(); err != nil {
		return err
	}
	return d.overlay.SetDensity(matID, value, units)
}

func (d *Driver) mutableLocked() error {
	switch {
	case d.state == Uninitialized:
		return ErrNotInitialized
	case d.state == Finalized:
		return fmt.Errorf("%w: mutation on finalized driver", ErrInvalidState)
	case d.running:
		return ErrBatchInProgress
	}
	return nil
}

// GetTemperature is a pure read, valid any time after Init.
func (d *Driver) GetTemperature(cellID int) (float64, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.state == Uninitialized {
		return 0, ErrNotInitialized
	}
	return d.overlay.Temperature(cellID)
}

// GetDensity is a pure read, valid any time after Init.
func (d *Driver) GetDensity(matID int) (transport.Density, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.state == Uninitialized {
		return transport.Density{}, ErrNotInitialized
	}
	return d.overlay.Density(matID)
}

// TallyResult reads back a tally snapshot. Before the first active
// batch the snapshot reports zero samples rather than garbage.
func (d *Driver) TallyResult(id int) (tally.Result, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.state == Uninitialized {
		return tally.Result{}, ErrNotInitialized
	}
	t, ok := d.tallies.Get(id)
	if !ok {
		return tally.Result{}, fmt.Errorf("%w: %d", ErrTallyNotFound, id)
	}
	return t.Snapshot(), nil
}

// TallyResults reads back every tally, ordered by ID.
func (d *Driver) TallyResults() ([]tally.Result, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.state == Uninitialized {
		return nil, ErrNotInitialized
	}
	all := d.tallies.All()
	out := make([]tally.Result, len(all))
	for i, t := range all {
		out[i] = t.Snapshot()
	}
	return out, nil
}

// Finalize releases engine resources and seals the run. Not
// idempotent: a second call fails with ErrInvalidState.
func (d *Driver) Finalize() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	switch {
	case d.state == Uninitialized:
		return ErrNotInitialized
	case d.state == Finalized:
		return fmt.Errorf("%w: already finalized", ErrInvalidState)
	case d.running:
		return ErrBatchInProgress
	}

	d.state = Finalized
	return d.engine.Close()
}
