package transport

import (
	"context"
	"math/rand"
	"runtime"
	"sync"

	"github.com/nuclab/mcell/internal/material"
	"github.com/nuclab/mcell/internal/tally"
	"github.com/nuclab/mcell/internal/topology"
)

// Scores produced by the bundled sampler.
const (
	ScoreFlux      = "flux"
	ScoreCollision = "collision"
	ScoreHeating   = "heating"
)

// Sampler is a collision-site sampling engine: it scatters particle
// sites uniformly over the root bounding box, resolves the material
// cell for each site, and scores per-cell estimates weighted by the
// overlay's live density and temperature. It is not a physical random
// walk; it stands in for one behind the [Engine] interface.
type Sampler struct {
	workers int
}

// NewSampler creates a sampler with the given worker count; workers <=
// 0 selects GOMAXPROCS.
func NewSampler(workers int) *Sampler {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	return &Sampler{workers: workers}
}

func (s *Sampler) Name() string { return "sampler" }

func (s *Sampler) Close() error { return nil }

// batchKey aggregates scratch totals per (cell, score) so the result
// stays small regardless of particle count.
type batchKey struct {
	cellID int
	score  string
}

// StepBatch samples batch.Particles sites. Deterministic for a fixed
// seed, batch index and worker count.
func (s *Sampler) StepBatch(ctx context.Context, topo *topology.Topology, overlay *Overlay, batch BatchInfo) (BatchResult, error) {
	per := batch.Particles / s.workers
	extra := batch.Particles % s.workers

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		totals   = make(map[batchKey]float64)
		firstErr error
	)

	for w := 0; w < s.workers; w++ {
		n := per
		if w < extra {
			n++
		}
		if n == 0 {
			continue
		}

		wg.Add(1)
		go func(worker, particles int) {
			defer wg.Done()

			rng := rand.New(rand.NewSource(batch.Seed + int64(batch.Index)*1_000_003 + int64(worker)))
			local := make(map[batchKey]float64)

			for i := 0; i < particles; i++ {
				if i%1024 == 0 {
					select {
					case <-ctx.Done():
						mu.Lock()
						if firstErr == nil {
							firstErr = ctx.Err()
						}
						mu.Unlock()
						return
					default:
					}
				}

				site := topo.Bounds().Sample(rng)
				cell, err := topo.Locate(site)
				if err != nil {
					mu.Lock()
					if firstErr == nil {
						firstErr = err
					}
					mu.Unlock()
					return
				}

				if err := s.score(local, overlay, cell); err != nil {
					mu.Lock()
					if firstErr == nil {
						firstErr = err
					}
					mu.Unlock()
					return
				}
			}

			mu.Lock()
			for k, v := range local {
				totals[k] += v
			}
			mu.Unlock()
		}(w, n)
	}

	wg.Wait()
	if firstErr != nil {
		return BatchResult{}, firstErr
	}

	weight := 1.0 / float64(batch.Particles)
	events := make([]tally.Event, 0, len(totals))
	for k, v := range totals {
		events = append(events, tally.Event{CellID: k.cellID, Score: k.score, Value: v * weight})
	}
	return BatchResult{Events: events, ParticlesRun: batch.Particles}, nil
}

func (s *Sampler) score(local map[batchKey]float64, overlay *Overlay, cell *topology.Cell) error {
	id := cell.ID()
	local[batchKey{id, ScoreFlux}] += 1

	mat, ok := cell.Fill().Material()
	if !ok {
		// Universe-filled cells never reach here: Locate resolves to
		// the material leaf.
		return nil
	}

	d, err := overlay.Density(mat.ID())
	if err != nil {
		return err
	}
	temp, err := overlay.Temperature(id)
	if err != nil {
		return err
	}

	rho := normalizeDensity(d)
	local[batchKey{id, ScoreCollision}] += rho
	local[batchKey{id, ScoreHeating}] += rho * temp / topology.DefaultTemperature
	return nil
}

// normalizeDensity folds the unit tag into a common g/cm3-equivalent
// weight so mixed-unit models score consistently.
func normalizeDensity(d Density) float64 {
	switch d.Units {
	case material.KgPerM3:
		return d.Value / 1000.0
	default:
		return d.Value
	}
}
