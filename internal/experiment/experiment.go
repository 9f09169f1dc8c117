package experiment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/nuclab/mcell/internal/driver"
	"github.com/nuclab/mcell/internal/models"
	"github.com/nuclab/mcell/internal/tally"
)

// Config names the model and engine to run and the plan to drive them
// with.
type Config struct {
	Model     string
	Engine    string
	Workers   int
	Inactive  int
	Active    int
	Particles int
	Seed      int64
	Pitch     float64
}

// Update describes one completed batch. Track carries the current
// estimate of the model's first tally so callers can watch convergence
// as batches commit.
type Update struct {
	Batch int
	Total int
	Phase driver.Phase
	Track tally.Result
}

// Result holds everything a finished run produced.
type Result struct {
	Model      string
	Engine     string
	Seed       int64
	BatchesRun int
	Inactive   int
	Particles  int
	Tallies    []tally.Result
	Series     []Update
}

type Experiment struct {
	cfg   Config
	model *models.Model
	drv   *driver.Driver
}

// New builds the named model and engine and initializes a driver around
// them. The returned experiment is ready to step.
func New(cfg Config, reg *Registry) (*Experiment, error) {
	model, err := reg.GetModel(cfg.Model, cfg)
	if err != nil {
		return nil, err
	}
	engine, err := reg.GetEngine(cfg.Engine, cfg)
	if err != nil {
		return nil, err
	}

	drv := driver.New(engine)
	plan := driver.Plan{
		InactiveBatches:   cfg.Inactive,
		ActiveBatches:     cfg.Active,
		ParticlesPerBatch: cfg.Particles,
		Seed:              cfg.Seed,
	}
	if err := drv.Init(model.Topo, model.Tallies, plan); err != nil {
		return nil, fmt.Errorf("init %s: %w", cfg.Model, err)
	}

	return &Experiment{cfg: cfg, model: model, drv: drv}, nil
}

func (e *Experiment) Model() *models.Model { return e.model }

// Driver exposes the underlying driver so callers can mutate
// temperatures and densities between batches.
func (e *Experiment) Driver() *driver.Driver { return e.drv }

// Step runs one batch and reports the new state of the tracked tally.
func (e *Experiment) Step(ctx context.Context) (Update, error) {
	if err := e.drv.RunNextBatch(ctx); err != nil {
		return Update{}, err
	}
	return e.update(), nil
}

func (e *Experiment) update() Update {
	u := Update{
		Batch: e.drv.BatchesRun(),
		Total: e.cfg.Inactive + e.cfg.Active,
		Phase: e.drv.Phase(),
	}
	if len(e.model.Tallies.All()) > 0 {
		id := e.model.Tallies.All()[0].ID()
		if res, err := e.drv.TallyResult(id); err == nil {
			u.Track = res
		}
	}
	return u
}

// Close finalizes the driver, waiting out any batch still in flight.
// Callers stepping the experiment themselves use this instead of Run's
// built-in finalize.
func (e *Experiment) Close() error {
	for {
		err := e.drv.Finalize()
		if !errors.Is(err, driver.ErrBatchInProgress) {
			return err
		}
		time.Sleep(20 * time.Millisecond)
	}
}

// Run steps through the full plan, invoking onBatch after every batch.
// A false return from onBatch stops the run early. The driver is
// finalized either way.
func (e *Experiment) Run(ctx context.Context, onBatch func(Update) bool) (*Result, error) {
	total := e.cfg.Inactive + e.cfg.Active
	series := make([]Update, 0, total)

	for i := 0; i < total; i++ {
		u, err := e.Step(ctx)
		if err != nil {
			e.drv.Finalize()
			return nil, fmt.Errorf("batch %d: %w", i, err)
		}
		series = append(series, u)
		if onBatch != nil && !onBatch(u) {
			break
		}
	}

	tallies, err := e.drv.TallyResults()
	if err != nil {
		e.drv.Finalize()
		return nil, err
	}
	res := &Result{
		Model:      e.cfg.Model,
		Engine:     e.cfg.Engine,
		Seed:       e.cfg.Seed,
		BatchesRun: e.drv.BatchesRun(),
		Inactive:   e.cfg.Inactive,
		Particles:  e.cfg.Particles,
		Tallies:    tallies,
		Series:     series,
	}
	if err := e.drv.Finalize(); err != nil {
		return nil, err
	}
	return res, nil
}
