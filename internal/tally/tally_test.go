package tally

import (
	"errors"
	"math"
	"testing"
)

func TestTallyConstruction(t *testing.T) {
	if _, err := New(1, "t", nil, "flux"); !errors.Is(err, ErrNilFilter) {
		t.Errorf("nil filter: err = %v", err)
	}
	if _, err := New(1, "t", NewCellFilter(1)); !errors.Is(err, ErrNoScores) {
		t.Errorf("no scores: err = %v", err)
	}
}

func TestTallyBatchStatistics(t *testing.T) {
	ta, err := New(1, "flux", NewCellFilter(10), "flux")
	if err != nil {
		t.Fatal(err)
	}

	// Three batches with totals 1, 2, 3.
	for _, total := range []float64{1, 2, 3} {
		ta.Observe(Event{CellID: 10, Score: "flux", Value: total / 2})
		ta.Observe(Event{CellID: 10, Score: "flux", Value: total / 2})
		ta.CommitBatch()
	}

	if n := ta.Samples(); n != 3 {
		t.Fatalf("Samples() = %d, want 3", n)
	}
	mean, ok := ta.Mean(0, "flux")
	if !ok || math.Abs(mean-2.0) > 1e-12 {
		t.Errorf("Mean = %f, want 2", mean)
	}

	// Sample stddev of {1,2,3} is 1, so stderr is 1/sqrt(3).
	se, ok := ta.StdErrOfMean(0, "flux")
	if !ok || math.Abs(se-1.0/math.Sqrt(3.0)) > 1e-12 {
		t.Errorf("StdErrOfMean = %f, want %f", se, 1.0/math.Sqrt(3.0))
	}
}

func TestTallyIgnoresUnmatchedEvents(t *testing.T) {
	ta, err := New(1, "flux", NewCellFilter(10), "flux")
	if err != nil {
		t.Fatal(err)
	}

	ta.Observe(Event{CellID: 99, Score: "flux", Value: 100})   // wrong cell
	ta.Observe(Event{CellID: 10, Score: "heating", Value: 50}) // wrong score
	ta.Observe(Event{CellID: 10, Score: "flux", Value: 1})
	ta.CommitBatch()

	mean, _ := ta.Mean(0, "flux")
	if mean != 1.0 {
		t.Errorf("Mean = %f, want 1", mean)
	}
}

func TestTallyDiscardBatch(t *testing.T) {
	ta, err := New(1, "flux", NewCellFilter(10), "flux")
	if err != nil {
		t.Fatal(err)
	}

	ta.Observe(Event{CellID: 10, Score: "flux", Value: 42})
	ta.DiscardBatch()

	if n := ta.Samples(); n != 0 {
		t.Errorf("Samples() after discard = %d, want 0", n)
	}

	ta.Observe(Event{CellID: 10, Score: "flux", Value: 1})
	ta.CommitBatch()
	mean, _ := ta.Mean(0, "flux")
	if mean != 1.0 {
		t.Errorf("discarded batch leaked into mean: %f", mean)
	}
}

func TestTallySnapshotBeforeData(t *testing.T) {
	ta, err := New(7, "empty", NewCellFilter(1, 2), "flux", "heating")
	if err != nil {
		t.Fatal(err)
	}

	res := ta.Snapshot()
	if res.Samples != 0 {
		t.Errorf("Samples = %d, want 0", res.Samples)
	}
	if len(res.Bins) != 2 {
		t.Fatalf("bins = %d, want 2", len(res.Bins))
	}
	for _, b := range res.Bins {
		for si := range res.Scores {
			if b.Mean[si] != 0 || b.StdErrOfMean[si] != 0 {
				t.Errorf("bin %q not zeroed: %+v", b.Label, b)
			}
		}
	}
}

func TestMultiBinMultiScore(t *testing.T) {
	ta, err := New(1, "grid", NewCellFilter(10, 20), "flux", "heating")
	if err != nil {
		t.Fatal(err)
	}

	ta.Observe(Event{CellID: 10, Score: "flux", Value: 1})
	ta.Observe(Event{CellID: 20, Score: "flux", Value: 2})
	ta.Observe(Event{CellID: 20, Score: "heating", Value: 3})
	ta.CommitBatch()

	cases := []struct {
		bin   int
		score string
		want  float64
	}{
		{0, "flux", 1},
		{0, "heating", 0},
		{1, "flux", 2},
		{1, "heating", 3},
	}
	for _, tt := range cases {
		got, ok := ta.Mean(tt.bin, tt.score)
		if !ok || got != tt.want {
			t.Errorf("Mean(%d, %s) = %f, want %f", tt.bin, tt.score, got, tt.want)
		}
	}

	res := ta.Snapshot()
	if res.Bins[0].Label != "cell 10" || res.Bins[1].Label != "cell 20" {
		t.Errorf("labels = %q, %q", res.Bins[0].Label, res.Bins[1].Label)
	}
}

func TestSet(t *testing.T) {
	a, _ := New(1, "a", NewCellFilter(10), "flux")
	b, _ := New(2, "b", NewCellFilter(20), "flux")
	set := NewSet(a, b)

	set.Observe(Event{CellID: 10, Score: "flux", Value: 5})
	set.CommitBatch()

	if got, ok := set.Get(1); !ok || got != a {
		t.Fatal("Get(1) failed")
	}
	if _, ok := set.Get(99); ok {
		t.Fatal("Get(99) should miss")
	}

	meanA, _ := a.Mean(0, "flux")
	meanB, _ := b.Mean(0, "flux")
	if meanA != 5 || meanB != 0 {
		t.Errorf("means = %f, %f", meanA, meanB)
	}

	all := set.All()
	if len(all) != 2 || all[0] != a || all[1] != b {
		t.Errorf("All() = %v", all)
	}
}
