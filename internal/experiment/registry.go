package experiment

import (
	"fmt"
	"sort"

	"github.com/nuclab/mcell/internal/models"
	"github.com/nuclab/mcell/internal/transport"
)

// Registry maps model and engine names to constructors so the CLI can
// pick both by flag.
type Registry struct {
	models  map[string]func(cfg Config) (*models.Model, error)
	engines map[string]func(cfg Config) transport.Engine
}

func NewRegistry() *Registry {
	r := &Registry{
		models:  make(map[string]func(cfg Config) (*models.Model, error)),
		engines: make(map[string]func(cfg Config) transport.Engine),
	}

	r.models["pincell"] = func(Config) (*models.Model, error) { return models.PinCell() }
	r.models["slab"] = func(Config) (*models.Model, error) { return models.ReflectedSlab() }
	r.models["lattice"] = func(cfg Config) (*models.Model, error) {
		pitch := cfg.Pitch
		if pitch <= 0 {
			pitch = 1.26
		}
		return models.Lattice2x2(pitch)
	}

	r.engines["sampler"] = func(cfg Config) transport.Engine {
		return transport.NewSampler(cfg.Workers)
	}

	return r
}

func (r *Registry) GetModel(name string, cfg Config) (*models.Model, error) {
	fn, ok := r.models[name]
	if !ok {
		return nil, fmt.Errorf("unknown model: %s", name)
	}
	return fn(cfg)
}

func (r *Registry) GetEngine(name string, cfg Config) (transport.Engine, error) {
	fn, ok := r.engines[name]
	if !ok {
		return nil, fmt.Errorf("unknown engine: %s", name)
	}
	return fn(cfg), nil
}

func (r *Registry) ListModels() []string {
	names := make([]string, 0, len(r.models))
	for name := range r.models {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (r *Registry) ListEngines() []string {
	names := make([]string, 0, len(r.engines))
	for name := range r.engines {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
