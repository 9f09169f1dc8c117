// Package tally accumulates batch statistics for scored transport
// events.
//
// A [Tally] pairs a [Filter] with named scores. During an active batch
// every matching event is summed into a per-(bin, score) scratch
// total; committing the batch turns each total into one statistical
// sample. Mean and standard error therefore describe the distribution
// of per-batch totals, which is the convention that makes inactive
// warm-up batches and between-batch mutation well defined.
package tally

import (
	"errors"
	"fmt"
	"math"
	"sort"
)

var (
	ErrNoScores  = errors.New("tally: at least one score required")
	ErrNilFilter = errors.New("tally: filter required")
)

// Event is the minimal view of a transport event a filter can match.
type Event struct {
	CellID int
	Score  string
	Value  float64
}

// Filter decides which events a tally accepts and which bin an
// accepted event lands in.
type Filter interface {
	// Bin returns the bin index for the event and whether it matched.
	Bin(ev Event) (int, bool)

	// Bins returns the number of bins the filter produces.
	Bins() int

	// Label describes bin i for result tables.
	Label(i int) string
}

// CellFilter matches events by the cell a particle was in. Each cell
// is its own bin, ordered as given.
type CellFilter struct {
	ids   []int
	index map[int]int
}

func NewCellFilter(cellIDs ...int) *CellFilter {
	f := &CellFilter{
		ids:   append([]int(nil), cellIDs...),
		index: make(map[int]int, len(cellIDs)),
	}
	for i, id := range f.ids {
		f.index[id] = i
	}
	return f
}

func (f *CellFilter) Bin(ev Event) (int, bool) {
	i, ok := f.index[ev.CellID]
	return i, ok
}

func (f *CellFilter) Bins() int { return len(f.ids) }

func (f *CellFilter) Label(i int) string {
	return fmt.Sprintf("cell %d", f.ids[i])
}

// accumulator tracks count, mean and variance of batch samples with
// Welford's update.
type accumulator struct {
	n    int
	mean float64
	m2   float64
}

func (a *accumulator) add(sample float64) {
	a.n++
	delta := sample - a.mean
	a.mean += delta / float64(a.n)
	a.m2 += delta * (sample - a.mean)
}

func (a *accumulator) stdErr() float64 {
	if a.n < 2 {
		return 0
	}
	variance := a.m2 / float64(a.n-1)
	return math.Sqrt(variance / float64(a.n))
}

// Tally is one (filter x scores) accumulator grid.
type Tally struct {
	id     int
	name   string
	filter Filter
	scores []string

	acc     []accumulator // bins*scores, bin-major
	scratch []float64     // current batch totals
	dirty   bool
}

func New(id int, name string, filter Filter, scores ...string) (*Tally, error) {
	if filter == nil {
		return nil, ErrNilFilter
	}
	if len(scores) == 0 {
		return nil, ErrNoScores
	}
	n := filter.Bins() * len(scores)
	return &Tally{
		id:      id,
		name:    name,
		filter:  filter,
		scores:  append([]string(nil), scores...),
		acc:     make([]accumulator, n),
		scratch: make([]float64, n),
	}, nil
}

func (t *Tally) ID() int          { return t.id }
func (t *Tally) Name() string     { return t.name }
func (t *Tally) Scores() []string { return append([]string(nil), t.scores...) }
func (t *Tally) Filter() Filter   { return t.filter }

// Samples returns how many active batches have been committed.
func (t *Tally) Samples() int {
	if len(t.acc) == 0 {
		return 0
	}
	return t.acc[0].n
}

// Observe adds an event to the current batch scratch. Events that do
// not match the filter or name an unknown score are ignored.
func (t *Tally) Observe(ev Event) {
	bin, ok := t.filter.Bin(ev)
	if !ok {
		return
	}
	for si, score := range t.scores {
		if score == ev.Score {
			t.scratch[bin*len(t.scores)+si] += ev.Value
			t.dirty = true
			return
		}
	}
}

// CommitBatch folds the scratch totals into the accumulators as one
// sample per (bin, score) and clears the scratch.
func (t *Tally) CommitBatch() {
	for i := range t.acc {
		t.acc[i].add(t.scratch[i])
	}
	t.clearScratch()
}

// DiscardBatch drops the scratch without touching the accumulators.
// Inactive batches end this way.
func (t *Tally) DiscardBatch() {
	t.clearScratch()
}

func (t *Tally) clearScratch() {
	for i := range t.scratch {
		t.scratch[i] = 0
	}
	t.dirty = false
}

// Result is an immutable read-back of a tally.
type Result struct {
	TallyID int
	Name    string
	Scores  []string
	Bins    []BinResult
	Samples int
}

// BinResult is the statistics of one filter bin.
type BinResult struct {
	Label        string
	Mean         []float64 // per score
	StdErrOfMean []float64 // per score
}

// Snapshot returns current statistics. Before any committed active
// batch it reports zero means with Samples == 0 rather than garbage.
func (t *Tally) Snapshot() Result {
	res := Result{
		TallyID: t.id,
		Name:    t.name,
		Scores:  t.Scores(),
		Samples: t.Samples(),
		Bins:    make([]BinResult, t.filter.Bins()),
	}
	for b := range res.Bins {
		br := BinResult{
			Label:        t.filter.Label(b),
			Mean:         make([]float64, len(t.scores)),
			StdErrOfMean: make([]float64, len(t.scores)),
		}
		for si := range t.scores {
			a := t.acc[b*len(t.scores)+si]
			br.Mean[si] = a.mean
			br.StdErrOfMean[si] = a.stdErr()
		}
		res.Bins[b] = br
	}
	return res
}

// Mean returns the mean for a single (bin, score) pair.
func (t *Tally) Mean(bin int, score string) (float64, bool) {
	si := t.scoreIndex(score)
	if si < 0 || bin < 0 || bin >= t.filter.Bins() {
		return 0, false
	}
	return t.acc[bin*len(t.scores)+si].mean, true
}

// StdErrOfMean returns the standard error for a single (bin, score)
// pair.
func (t *Tally) StdErrOfMean(bin int, score string) (float64, bool) {
	si := t.scoreIndex(score)
	if si < 0 || bin < 0 || bin >= t.filter.Bins() {
		return 0, false
	}
	return t.acc[bin*len(t.scores)+si].stdErr(), true
}

func (t *Tally) scoreIndex(score string) int {
	for i, s := range t.scores {
		if s == score {
			return i
		}
	}
	return -1
}

// Set is the collection of tallies a simulation run owns, addressed
// by ID.
type Set struct {
	byID map[int]*Tally
}

func NewSet(tallies ...*Tally) *Set {
	s := &Set{byID: make(map[int]*Tally, len(tallies))}
	for _, t := range tallies {
		s.byID[t.ID()] = t
	}
	return s
}

func (s *Set) Get(id int) (*Tally, bool) {
	t, ok := s.byID[id]
	return t, ok
}

func (s *Set) All() []*Tally {
	out := make([]*Tally, 0, len(s.byID))
	for _, t := range s.byID {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID() < out[j].ID() })
	return out
}

func (s *Set) Observe(ev Event) {
	for _, t := range s.byID {
		t.Observe(ev)
	}
}

func (s *Set) CommitBatch() {
	for _, t := range s.byID {
		t.CommitBatch()
	}
}

func (s *Set) DiscardBatch() {
	for _, t := range s.byID {
		t.DiscardBatch()
	}
}
