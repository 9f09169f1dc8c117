package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/nuclab/mcell/internal/experiment"
)

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

type RunMetadata struct {
	ID        string             `json:"id"`
	Model     string             `json:"model"`
	Engine    string             `json:"engine"`
	Timestamp time.Time          `json:"timestamp"`
	Seed      int64              `json:"seed"`
	Batches   int                `json:"batches"`
	Inactive  int                `json:"inactive"`
	Particles int                `json:"particles"`
	Means     map[string]float64 `json:"means"`
}

// Save writes one finished run to its own directory: metadata.json with
// a summary, tallies.csv with final per-bin estimates, and batches.csv
// with the tracked tally's per-batch convergence series.
func (s *Store) Save(result *experiment.Result) (string, error) {
	runID := fmt.Sprintf("%s_%d", result.Model, time.Now().Unix())
	runDir := filepath.Join(s.baseDir, runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	means := make(map[string]float64)
	for _, res := range result.Tallies {
		for _, bin := range res.Bins {
			for i, score := range res.Scores {
				key := fmt.Sprintf("%s/%s/%s", res.Name, bin.Label, score)
				means[key] = bin.Mean[i]
			}
		}
	}

	meta := RunMetadata{
		ID:        runID,
		Model:     result.Model,
		Engine:    result.Engine,
		Timestamp: time.Now(),
		Seed:      result.Seed,
		Batches:   result.BatchesRun,
		Inactive:  result.Inactive,
		Particles: result.Particles,
		Means:     means,
	}

	metaPath := filepath.Join(runDir, "metadata.json")
	metaFile, err := os.Create(metaPath)
	if err != nil {
		return "", err
	}
	defer metaFile.Close()

	enc := json.NewEncoder(metaFile)
	enc.SetIndent("", "  ")
	if err := enc.Encode(meta); err != nil {
		return "", err
	}

	if err := s.writeTallies(runDir, result); err != nil {
		return "", err
	}
	if err := s.writeBatches(runDir, result); err != nil {
		return "", err
	}

	return runID, nil
}

func (s *Store) writeTallies(runDir string, result *experiment.Result) error {
	f, err := os.Create(filepath.Join(runDir, "tallies.csv"))
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	if err := w.Write([]string{"tally", "bin", "score", "mean", "stderr", "samples"}); err != nil {
		return err
	}
	for _, res := range result.Tallies {
		for _, bin := range res.Bins {
			for i, score := range res.Scores {
				row := []string{
					res.Name,
					bin.Label,
					score,
					strconv.FormatFloat(bin.Mean[i], 'g', -1, 64),
					strconv.FormatFloat(bin.StdErrOfMean[i], 'g', -1, 64),
					strconv.Itoa(res.Samples),
				}
				if err := w.Write(row); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

func (s *Store) writeBatches(runDir string, result *experiment.Result) error {
	f, err := os.Create(filepath.Join(runDir, "batches.csv"))
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	if err := w.Write([]string{"batch", "phase", "mean", "stderr"}); err != nil {
		return err
	}
	for _, u := range result.Series {
		mean, stderr := trackPoint(u)
		row := []string{
			strconv.Itoa(u.Batch),
			u.Phase.String(),
			strconv.FormatFloat(mean, 'g', -1, 64),
			strconv.FormatFloat(stderr, 'g', -1, 64),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	return nil
}

// trackPoint reduces an update to the first score of the first bin of
// the tracked tally. Inactive batches have no committed samples yet.
func trackPoint(u experiment.Update) (mean, stderr float64) {
	if len(u.Track.Bins) == 0 || len(u.Track.Bins[0].Mean) == 0 {
		return 0, 0
	}
	return u.Track.Bins[0].Mean[0], u.Track.Bins[0].StdErrOfMean[0]
}

func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		metaPath := filepath.Join(s.baseDir, entry.Name(), "metadata.json")
		data, err := os.ReadFile(metaPath)
		if err != nil {
			continue
		}

		var meta RunMetadata
		if err := json.Unmarshal(data, &meta); err != nil {
			continue
		}

		runs = append(runs, meta)
	}

	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	metaPath := filepath.Join(s.baseDir, runID, "metadata.json")
	data, err := os.ReadFile(metaPath)
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}

	return &meta, nil
}

// BatchPoint is one row of a run's convergence series.
type BatchPoint struct {
	Batch  int
	Phase  string
	Mean   float64
	StdErr float64
}

func (s *Store) LoadSeries(runID string) ([]BatchPoint, error) {
	csvPath := filepath.Join(s.baseDir, runID, "batches.csv")
	file, err := os.Open(csvPath)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}

	points := make([]BatchPoint, 0, len(records))
	for i := 1; i < len(records); i++ {
		record := records[i]
		if len(record) < 4 {
			continue
		}
		batch, err := strconv.Atoi(record[0])
		if err != nil {
			continue
		}
		mean, err := strconv.ParseFloat(record[2], 64)
		if err != nil {
			continue
		}
		stderr, err := strconv.ParseFloat(record[3], 64)
		if err != nil {
			continue
		}
		points = append(points, BatchPoint{
			Batch:  batch,
			Phase:  record[1],
			Mean:   mean,
			StdErr: stderr,
		})
	}

	return points, nil
}
