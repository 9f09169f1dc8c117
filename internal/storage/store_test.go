package storage

import (
	"testing"

	"github.com/nuclab/mcell/internal/driver"
	"github.com/nuclab/mcell/internal/experiment"
	"github.com/nuclab/mcell/internal/tally"
)

func sampleResult() *experiment.Result {
	track := tally.Result{
		TallyID: 1,
		Name:    "fuel",
		Scores:  []string{"flux"},
		Bins: []tally.BinResult{
			{Label: "cell 10", Mean: []float64{0.5}, StdErrOfMean: []float64{0.01}},
		},
		Samples: 3,
	}
	return &experiment.Result{
		Model:      "pincell",
		Engine:     "sampler",
		Seed:       99,
		BatchesRun: 4,
		Inactive:   1,
		Particles:  1000,
		Tallies:    []tally.Result{track},
		Series: []experiment.Update{
			{Batch: 1, Total: 4, Phase: driver.PhaseInactive},
			{Batch: 2, Total: 4, Phase: driver.PhaseActive, Track: track},
			{Batch: 3, Total: 4, Phase: driver.PhaseActive, Track: track},
			{Batch: 4, Total: 4, Phase: driver.PhaseActive, Track: track},
		},
	}
}

func TestSaveAndLoad(t *testing.T) {
	store := New(t.TempDir())
	if err := store.Init(); err != nil {
		t.Fatalf("Init: %v", err)
	}

	runID, err := store.Save(sampleResult())
	if err != nil {
		t.Fatalf("Save: %v", err)
	}

	meta, err := store.Load(runID)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if meta.Model != "pincell" || meta.Seed != 99 || meta.Batches != 4 {
		t.Errorf("metadata mismatch: %+v", meta)
	}
	if got := meta.Means["fuel/cell 10/flux"]; got != 0.5 {
		t.Errorf("summary mean = %v, want 0.5", got)
	}

	runs, err := store.List()
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(runs) != 1 || runs[0].ID != runID {
		t.Errorf("List = %+v, want single run %s", runs, runID)
	}
}

func TestLoadSeries(t *testing.T) {
	store := New(t.TempDir())
	if err := store.Init(); err != nil {
		t.Fatalf("Init: %v", err)
	}

	runID, err := store.Save(sampleResult())
	if err != nil {
		t.Fatalf("Save: %v", err)
	}

	points, err := store.LoadSeries(runID)
	if err != nil {
		t.Fatalf("LoadSeries: %v", err)
	}
	if len(points) != 4 {
		t.Fatalf("got %d points, want 4", len(points))
	}
	if points[0].Phase != driver.PhaseInactive.String() {
		t.Errorf("first point phase = %q", points[0].Phase)
	}
	if points[1].Mean != 0.5 || points[1].StdErr != 0.01 {
		t.Errorf("active point = %+v", points[1])
	}
}

func TestListEmpty(t *testing.T) {
	store := New(t.TempDir() + "/missing")
	runs, err := store.List()
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(runs) != 0 {
		t.Errorf("expected no runs, got %d", len(runs))
	}
}
