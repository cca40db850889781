// Package storage persists closed-loop runs: a metadata.json per run and
// a trace.csv with one row per tick.
package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/san-kum/ctrlsys/internal/sim"
)

const (
	metadataFile = "metadata.json"
	traceFile    = "trace.csv"
)

var traceHeader = []string{"time", "target", "measured", "output", "error", "failed"}

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
	ID         string             `json:"id"`
	Plant      string             `json:"plant"`
	Preset     string             `json:"preset,omitempty"`
	Timestamp  time.Time          `json:"timestamp"`
	Seed       int64              `json:"seed"`
	Dt         float64            `json:"dt"`
	Duration   float64            `json:"duration"`
	Integrator string             `json:"integrator"`
	Controller string             `json:"controller"`
	Steps      int                `json:"steps"`
	Failures   int                `json:"failures"`
	Metrics    map[string]float64 `json:"metrics"`
}

// TracePoint is one row of trace.csv. Target and Measured belong to the
// primary axis of the run.
type TracePoint struct {
	Time     float64
	Target   float64
	Measured float64
	Output   float64
	Error    float64
	Failed   bool
}

// Save writes meta and the run's trace under a new run directory and
// returns the run ID. ID, Timestamp, Steps and Failures are filled in.
func (s *Store) Save(meta RunMetadata, result *sim.Result) (string, error) {
	now := time.Now()
	runID := fmt.Sprintf("%s_%d", meta.Plant, now.UnixNano())
	runDir := filepath.Join(s.baseDir, runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	meta.ID = runID
	meta.Timestamp = now
	meta.Steps = result.StepsTaken
	meta.Failures = result.Failures
	meta.Metrics = finiteMetrics(result.Metrics)

	if err := writeJSON(filepath.Join(runDir, metadataFile), meta); err != nil {
		return "", err
	}
	if err := writeTrace(filepath.Join(runDir, traceFile), result); err != nil {
		return "", err
	}
	return runID, nil
}

func writeJSON(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeTrace(path string, result *sim.Result) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(traceHeader); err != nil {
		return err
	}
	for _, smp := range result.Samples {
		row := []string{
			formatFloat(smp.Time),
			formatFloat(smp.Target.Get(smp.Axis)),
			formatFloat(smp.Measured.Get(smp.Axis)),
			formatFloat(smp.Output),
			formatFloat(smp.Error),
			strconv.FormatBool(smp.Failed),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// finiteMetrics drops values encoding/json cannot represent.
func finiteMetrics(in map[string]float64) map[string]float64 {
	out := make(map[string]float64, len(in))
	for k, v := range in {
		if !math.IsNaN(v) && !math.IsInf(v, 0) {
			out[k] = v
		}
	}
	return out
}

// List returns every readable run, oldest first.
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
		meta, err := s.Load(entry.Name())
		if err != nil {
			continue
		}
		runs = append(runs, *meta)
	}

	sort.Slice(runs, func(i, j int) bool {
		return runs[i].Timestamp.Before(runs[j].Timestamp)
	})
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, metadataFile))
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("run %s: %w", runID, err)
	}
	return &meta, nil
}

func (s *Store) LoadTrace(runID string) ([]TracePoint, error) {
	file, err := os.Open(filepath.Join(s.baseDir, runID, traceFile))
	if err != nil {
		return nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.FieldsPerRecord = len(traceHeader)

	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("run %s: %w", runID, err)
	}
	if len(records) < 2 {
		return []TracePoint{}, nil
	}

	points := make([]TracePoint, 0, len(records)-1)
	for i, record := range records[1:] {
		var vals [5]float64
		for j := range vals {
			v, err := strconv.ParseFloat(record[j], 64)
			if err != nil {
				return nil, fmt.Errorf("run %s row %d: %w", runID, i+1, err)
			}
			vals[j] = v
		}
		failed, err := strconv.ParseBool(record[5])
		if err != nil {
			return nil, fmt.Errorf("run %s row %d: %w", runID, i+1, err)
		}
		points = append(points, TracePoint{
			Time:     vals[0],
			Target:   vals[1],
			Measured: vals[2],
			Output:   vals[3],
			Error:    vals[4],
			Failed:   failed,
		})
	}
	return points, nil
}
