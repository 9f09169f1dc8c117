package experiment

import (
	"context"
	"testing"

	"github.com/nuclab/mcell/internal/driver"
)

func TestRegistryLookups(t *testing.T) {
	reg := NewRegistry()

	models := reg.ListModels()
	if len(models) != 3 {
		t.Fatalf("expected 3 models, got %v", models)
	}
	for _, name := range models {
		if _, err := reg.GetModel(name, Config{}); err != nil {
			t.Errorf("GetModel(%q): %v", name, err)
		}
	}

	if _, err := reg.GetModel("cube", Config{}); err == nil {
		t.Error("expected error for unknown model")
	}
	if _, err := reg.GetEngine("fission", Config{}); err == nil {
		t.Error("expected error for unknown engine")
	}
}

func TestExperimentRun(t *testing.T) {
	cfg := Config{
		Model:     "slab",
		Engine:    "sampler",
		Workers:   2,
		Inactive:  2,
		Active:    3,
		Particles: 500,
		Seed:      42,
	}
	exp, err := New(cfg, NewRegistry())
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	var updates []Update
	res, err := exp.Run(context.Background(), func(u Update) bool {
		updates = append(updates, u)
		return true
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if res.BatchesRun != 5 {
		t.Errorf("BatchesRun = %d, want 5", res.BatchesRun)
	}
	if len(updates) != 5 {
		t.Fatalf("got %d updates, want 5", len(updates))
	}
	if updates[0].Phase != driver.PhaseInactive {
		t.Errorf("first batch phase = %v, want inactive", updates[0].Phase)
	}
	if updates[4].Phase != driver.PhaseActive {
		t.Errorf("last batch phase = %v, want active", updates[4].Phase)
	}
	if len(res.Tallies) == 0 {
		t.Fatal("expected tally results")
	}
	if res.Tallies[0].Samples != 3 {
		t.Errorf("Samples = %d, want 3", res.Tallies[0].Samples)
	}
}

func TestExperimentEarlyStop(t *testing.T) {
	cfg := Config{
		Model:     "pincell",
		Engine:    "sampler",
		Workers:   1,
		Inactive:  1,
		Active:    10,
		Particles: 200,
		Seed:      7,
	}
	exp, err := New(cfg, NewRegistry())
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	res, err := exp.Run(context.Background(), func(u Update) bool {
		return u.Batch < 3
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.BatchesRun != 3 {
		t.Errorf("BatchesRun = %d, want 3", res.BatchesRun)
	}
	if exp.Driver().State() != driver.Finalized {
		t.Error("driver should be finalized after Run")
	}
}
