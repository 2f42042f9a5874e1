package storage

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/particlesim/internal/config"
	"github.com/san-kum/particlesim/internal/sim"
)

const (
	metadataFile  = "metadata.json"
	positionsFile = "positions.csv"
)

// ErrRunNotFound is returned when a run directory has no metadata.
var ErrRunNotFound = errors.New("storage: run not found")

// Store keeps one directory per run under baseDir.
type Store struct {
	baseDir string
	now     func() time.Time
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir, now: time.Now}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

func (s *Store) Dir() string { return s.baseDir }

type RunMetadata struct {
	ID           string             `json:"id"`
	System       string             `json:"system"`
	Stepper      string             `json:"stepper"`
	Timestamp    time.Time          `json:"timestamp"`
	Seed         int64              `json:"seed"`
	Dt           float64            `json:"dt"`
	Duration     float64            `json:"duration"`
	SampleEvery  int                `json:"sample_every"`
	NumParticles int                `json:"num_particles"`
	Steps        int                `json:"steps"`
	Samples      int                `json:"samples"`
	EnergyDrift  float64            `json:"energy_drift"`
	Metrics      map[string]float64 `json:"metrics"`
	Errors       []string           `json:"errors,omitempty"`
	Config       *config.Config     `json:"config,omitempty"`
}

// Save writes metadata.json and positions.csv for a finished run and returns
// the run id, <system>_<unix seconds> with a numeric suffix on collision.
func (s *Store) Save(cfg *config.Config, result *sim.Result) (string, error) {
	ts := s.now()
	runID, runDir, err := s.allocate(fmt.Sprintf("%s_%d", cfg.System, ts.Unix()))
	if err != nil {
		return "", err
	}

	numParticles := 0
	if len(result.Positions) > 0 {
		numParticles = len(result.Positions[0])
	}

	meta := RunMetadata{
		ID:           runID,
		System:       cfg.System,
		Stepper:      result.Stepper,
		Timestamp:    ts,
		Seed:         cfg.Seed,
		Dt:           cfg.Dt,
		Duration:     cfg.Duration,
		SampleEvery:  cfg.SampleEvery,
		NumParticles: numParticles,
		Steps:        result.StepsTaken,
		Samples:      len(result.Times),
		EnergyDrift:  finiteOrZero(result.EnergyDrift),
		Metrics:      finite(result.Metrics),
		Config:       cfg,
	}
	for _, e := range result.Errors {
		meta.Errors = append(meta.Errors, e.Error())
	}
	if meta.EnergyDrift != result.EnergyDrift {
		meta.Errors = append(meta.Errors, fmt.Sprintf("energy drift %g not recorded", result.EnergyDrift))
	}

	err = writeJSON(filepath.Join(runDir, metadataFile), meta)
	if err == nil {
		err = writePositions(filepath.Join(runDir, positionsFile), result)
	}
	if err != nil {
		os.RemoveAll(runDir)
		return "", err
	}
	return runID, nil
}

func (s *Store) allocate(base string) (string, string, error) {
	if err := s.Init(); err != nil {
		return "", "", err
	}
	id := base
	for i := 2; ; i++ {
		dir := filepath.Join(s.baseDir, id)
		err := os.Mkdir(dir, 0755)
		if err == nil {
			return id, dir, nil
		}
		if !os.IsExist(err) {
			return "", "", err
		}
		id = fmt.Sprintf("%s_%d", base, i)
	}
}

// finite drops NaN and Inf values, which JSON cannot encode.
func finite(m map[string]float64) map[string]float64 {
	out := make(map[string]float64, len(m))
	for k, v := range m {
		if !math.IsNaN(v) && !math.IsInf(v, 0) {
			out[k] = v
		}
	}
	return out
}

func finiteOrZero(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
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

// positions.csv: time, then x,y,z per particle, then energy when recorded.
func writePositions(path string, result *sim.Result) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if len(result.Positions) > 0 {
		hasEnergy := len(result.Energies) == len(result.Times)

		header := []string{"time"}
		for k := range result.Positions[0] {
			header = append(header, fmt.Sprintf("p%d_x", k), fmt.Sprintf("p%d_y", k), fmt.Sprintf("p%d_z", k))
		}
		if hasEnergy {
			header = append(header, "energy")
		}
		if err := w.Write(header); err != nil {
			return err
		}

		for i, snap := range result.Positions {
			row := make([]string, 0, len(header))
			row = append(row, formatFloat(result.Times[i]))
			for _, p := range snap {
				row = append(row, formatFloat(p[0]), formatFloat(p[1]), formatFloat(p[2]))
			}
			if hasEnergy {
				row = append(row, formatFloat(result.Energies[i]))
			}
			if err := w.Write(row); err != nil {
				return err
			}
		}
	}
	w.Flush()
	return w.Error()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// List returns all readable runs, oldest first.
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

	sort.SliceStable(runs, func(i, j int) bool {
		if runs[i].Timestamp.Equal(runs[j].Timestamp) {
			return runs[i].ID < runs[j].ID
		}
		return runs[i].Timestamp.Before(runs[j].Timestamp)
	})
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, metadataFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
		}
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("%s: %w", runID, err)
	}
	return &meta, nil
}

// PositionsPath is where a run's positions.csv lives.
func (s *Store) PositionsPath(runID string) string {
	return filepath.Join(s.baseDir, runID, positionsFile)
}

// Trajectory is a run's recorded samples read back from positions.csv.
type Trajectory struct {
	Times     []float64
	Positions [][]mgl64.Vec3
	Energies  []float64
}

func (s *Store) LoadPositions(runID string) (*Trajectory, error) {
	file, err := os.Open(s.PositionsPath(runID))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
		}
		return nil, err
	}
	defer file.Close()

	records, err := csv.NewReader(file).ReadAll()
	if err != nil {
		return nil, err
	}

	traj := &Trajectory{}
	if len(records) < 2 {
		return traj, nil
	}

	header := records[0]
	hasEnergy := header[len(header)-1] == "energy"
	cols := len(header) - 1
	if hasEnergy {
		cols--
	}
	if cols%3 != 0 {
		return nil, fmt.Errorf("%s: %d position columns is not a multiple of 3", runID, cols)
	}
	n := cols / 3

	for line, record := range records[1:] {
		vals := make([]float64, len(record))
		for j, field := range record {
			v, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, fmt.Errorf("%s line %d: %w", runID, line+2, err)
			}
			vals[j] = v
		}

		snap := make([]mgl64.Vec3, n)
		for k := range snap {
			snap[k] = mgl64.Vec3{vals[1+3*k], vals[2+3*k], vals[3+3*k]}
		}
		traj.Times = append(traj.Times, vals[0])
		traj.Positions = append(traj.Positions, snap)
		if hasEnergy {
			traj.Energies = append(traj.Energies, vals[len(vals)-1])
		}
	}
	return traj, nil
}
