// Package storage persists simulation runs as a directory per run holding
// metadata.json and states.csv.
package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/san-kum/mbsim/internal/dynamo"
	"go.uber.org/zap"
)

type Store struct {
	baseDir string
	logger  *zap.Logger
}

func New(baseDir string, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{baseDir: baseDir, logger: logger}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

// Run describes how a result was produced.
type Run struct {
	Model      string             `json:"model"`
	Params     map[string]float64 `json:"params"`
	Integrator string             `json:"integrator"`
	Controller string             `json:"controller"`
	Dt         float64            `json:"dt"`
	Duration   float64            `json:"duration"`
	Seed       int64              `json:"seed"`
}

type RunMetadata struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	Run
	Steps       int                `json:"steps"`
	EnergyDrift float64            `json:"energy_drift"`
	Metrics     map[string]float64 `json:"metrics"`
}

// Save writes result under a new run ID of the form <model>_<8 hex digits>.
func (s *Store) Save(run Run, result *dynamo.Result) (string, error) {
	runID := fmt.Sprintf("%s_%s", run.Model, uuid.New().String()[:8])
	runDir := filepath.Join(s.baseDir, runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	meta := RunMetadata{
		ID:          runID,
		Timestamp:   time.Now().UTC(),
		Run:         run,
		Steps:       result.StepsTaken,
		EnergyDrift: result.EnergyDrift,
		Metrics:     result.Metrics,
	}

	if err := s.write(runDir, meta, result); err != nil {
		// a partial run would show up in List
		if rerr := os.RemoveAll(runDir); rerr != nil {
			s.logger.Warn("remove partial run", zap.String("id", runID), zap.Error(rerr))
		}
		return "", fmt.Errorf("save %s: %w", runID, err)
	}

	s.logger.Debug("run saved", zap.String("id", runID), zap.Int("rows", len(result.States)))
	return runID, nil
}

func (s *Store) write(runDir string, meta RunMetadata, result *dynamo.Result) error {
	if err := writeJSON(filepath.Join(runDir, "metadata.json"), meta); err != nil {
		return err
	}
	return writeStates(filepath.Join(runDir, "states.csv"), result)
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

// writeStates writes one row per recorded state: time, x0.., u0... The
// final state has no control applied and gets zeros.
func writeStates(path string, result *dynamo.Result) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)

	if len(result.States) > 0 {
		header := []string{"time"}
		for i := range result.States[0] {
			header = append(header, fmt.Sprintf("x%d", i))
		}

		numControls := 0
		if len(result.Controls) > 0 {
			numControls = len(result.Controls[0])
		}
		for i := 0; i < numControls; i++ {
			header = append(header, fmt.Sprintf("u%d", i))
		}

		if err := w.Write(header); err != nil {
			return err
		}

		for i, x := range result.States {
			row := make([]string, 0, len(header))
			row = append(row, formatFloat(result.Times[i]))
			for _, val := range x {
				row = append(row, formatFloat(val))
			}
			for j := 0; j < numControls; j++ {
				val := 0.0
				if i < len(result.Controls) && j < len(result.Controls[i]) {
					val = result.Controls[i][j]
				}
				row = append(row, formatFloat(val))
			}
			if err := w.Write(row); err != nil {
				return err
			}
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return err
	}
	return f.Close()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// List returns the stored runs, newest first. Directories without readable
// metadata are skipped.
func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0, len(entries))
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		meta, err := s.Load(entry.Name())
		if err != nil {
			s.logger.Debug("skipping run directory", zap.String("dir", entry.Name()), zap.Error(err))
			continue
		}
		runs = append(runs, *meta)
	}

	sort.Slice(runs, func(i, j int) bool { return runs[i].Timestamp.After(runs[j].Timestamp) })
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, "metadata.json"))
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("run %s: %w", runID, err)
	}
	return &meta, nil
}

// LoadStates returns the raw rows of states.csv after the time column,
// and the times.
func (s *Store) LoadStates(runID string) ([][]float64, []float64, error) {
	_, rows, err := s.readCSV(runID)
	if err != nil {
		return nil, nil, err
	}

	states := make([][]float64, 0, len(rows))
	times := make([]float64, 0, len(rows))
	for _, row := range rows {
		times = append(times, row[0])
		states = append(states, row[1:])
	}
	return states, times, nil
}

// LoadResult rebuilds a result from a stored run, splitting state and
// control columns by their header names.
func (s *Store) LoadResult(runID string) (*dynamo.Result, error) {
	header, rows, err := s.readCSV(runID)
	if err != nil {
		return nil, err
	}

	var xCols, uCols []int
	for i, name := range header {
		switch {
		case strings.HasPrefix(name, "x"):
			xCols = append(xCols, i)
		case strings.HasPrefix(name, "u"):
			uCols = append(uCols, i)
		}
	}

	res := &dynamo.Result{
		States:  make([]dynamo.State, 0, len(rows)),
		Times:   make([]float64, 0, len(rows)),
		Metrics: make(map[string]float64),
	}
	for i, row := range rows {
		res.Times = append(res.Times, row[0])
		x := make(dynamo.State, len(xCols))
		for j, c := range xCols {
			x[j] = row[c]
		}
		res.States = append(res.States, x)

		if len(uCols) > 0 && i < len(rows)-1 {
			u := make(dynamo.Control, len(uCols))
			for j, c := range uCols {
				u[j] = row[c]
			}
			res.Controls = append(res.Controls, u)
		}
	}

	if meta, err := s.Load(runID); err == nil {
		for k, v := range meta.Metrics {
			res.Metrics[k] = v
		}
		res.EnergyDrift = meta.EnergyDrift
		res.StepsTaken = meta.Steps
	}
	return res, nil
}

func (s *Store) readCSV(runID string) ([]string, [][]float64, error) {
	f, err := os.Open(filepath.Join(s.baseDir, runID, "states.csv"))
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	records, err := r.ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("run %s: %w", runID, err)
	}
	if len(records) == 0 {
		return nil, [][]float64{}, nil
	}

	rows := make([][]float64, 0, len(records)-1)
	for i, record := range records[1:] {
		row := make([]float64, len(record))
		for j, field := range record {
			v, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, nil, fmt.Errorf("run %s: line %d column %d: %w", runID, i+2, j+1, err)
			}
			row[j] = v
		}
		rows = append(rows, row)
	}
	return records[0], rows, nil
}

// CSVPath is the location of the stored states of runID.
func (s *Store) CSVPath(runID string) string {
	return filepath.Join(s.baseDir, runID, "states.csv")
}
