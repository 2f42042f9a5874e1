package storage

import (
	"encoding/json"
	"io"

	"github.com/go-gl/mathgl/mgl64"
)

type ExportData struct {
	ID        string             `json:"id"`
	System    string             `json:"system"`
	Stepper   string             `json:"stepper"`
	Dt        float64            `json:"dt"`
	Duration  float64            `json:"duration"`
	Steps     int                `json:"steps"`
	Times     []float64          `json:"times"`
	Positions [][]mgl64.Vec3     `json:"positions"`
	Energies  []float64          `json:"energies,omitempty"`
	Metrics   map[string]float64 `json:"metrics"`
}

// NewExportData joins a run's metadata with its recorded trajectory.
func NewExportData(meta *RunMetadata, traj *Trajectory) ExportData {
	return ExportData{
		ID:        meta.ID,
		System:    meta.System,
		Stepper:   meta.Stepper,
		Dt:        meta.Dt,
		Duration:  meta.Duration,
		Steps:     meta.Steps,
		Times:     traj.Times,
		Positions: traj.Positions,
		Energies:  traj.Energies,
		Metrics:   meta.Metrics,
	}
}

func ExportJSON(w io.Writer, data ExportData) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}

// ExportRun writes a stored run as indented JSON.
func (s *Store) ExportRun(w io.Writer, runID string) error {
	meta, err := s.Load(runID)
	if err != nil {
		return err
	}
	traj, err := s.LoadPositions(runID)
	if err != nil {
		return err
	}
	return ExportJSON(w, NewExportData(meta, traj))
}
