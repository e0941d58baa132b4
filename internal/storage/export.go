package storage

import (
	"encoding/json"
	"io"

	"github.com/san-kum/bhsim/internal/particles"
)

type ExportData struct {
	Distribution string             `json:"distribution"`
	Integrator   string             `json:"integrator"`
	Dt           float64            `json:"dt"`
	Step         int                `json:"step"`
	Time         float64            `json:"time"`
	Positions    [][2]float64       `json:"positions"`
	Velocities   [][2]float64       `json:"velocities"`
	Masses       []float64          `json:"masses"`
	Metrics      map[string]float64 `json:"metrics,omitempty"`
}

// ExportJSON writes one snapshot together with the run settings that
// produced it.
func ExportJSON(w io.Writer, meta RunMetadata, snap *particles.Snapshot) error {
	data := ExportData{
		Distribution: meta.Distribution,
		Integrator:   meta.Integrator,
		Dt:           meta.Dt,
		Step:         snap.Step,
		Time:         snap.Time,
		Positions:    make([][2]float64, snap.Len()),
		Velocities:   make([][2]float64, snap.Len()),
		Masses:       snap.Masses,
		Metrics:      meta.Metrics,
	}

	for i, x := range snap.Positions {
		data.Positions[i] = x
	}
	for i, v := range snap.Velocities {
		data.Velocities[i] = v
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}
