package storage

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"sync"

	"github.com/san-kum/bhsim/internal/metrics"
	"github.com/san-kum/bhsim/internal/particles"
	"github.com/san-kum/bhsim/internal/sim"
)

// Run is an open run directory. It records every Nth snapshot as a
// sim.Observer; the first write error sticks and is returned by Close.
type Run struct {
	dir   string
	meta  RunMetadata
	every int

	mu   sync.Mutex
	file   *os.File
	w      *csv.Writer
	err    error
	closed bool
}

var _ sim.Observer = (*Run)(nil)

var errRunClosed = errors.New("storage: run already closed")

func (r *Run) ID() string  { return r.meta.ID }
func (r *Run) Dir() string { return r.dir }

func (r *Run) OnStep(snap *particles.Snapshot, _ sim.StepStats) {
	if snap.Step%r.every != 0 {
		return
	}
	r.WriteSnapshot(snap)
}

// WriteSnapshot appends one row per particle.
func (r *Run) WriteSnapshot(snap *particles.Snapshot) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}

	step := strconv.Itoa(snap.Step)
	t := formatFloat(snap.Time)
	for i, x := range snap.Positions {
		v := snap.Velocities[i]
		row := []string{
			step, t, strconv.Itoa(i),
			formatFloat(x[0]), formatFloat(x[1]),
			formatFloat(v[0]), formatFloat(v[1]),
			formatFloat(snap.Masses[i]),
		}
		if err := r.w.Write(row); err != nil {
			r.err = err
			return err
		}
	}
	return nil
}

// Close writes diagnostics.csv and metadata.json, folding final into the
// stored metadata, and closes the snapshot file.
func (r *Run) Close(final RunMetadata, samples []metrics.Sample) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return errRunClosed
	}
	r.closed = true

	r.w.Flush()
	if err := r.w.Error(); err != nil && r.err == nil {
		r.err = err
	}
	if err := r.file.Close(); err != nil && r.err == nil {
		r.err = err
	}
	if r.err != nil {
		return r.err
	}

	if err := writeDiagnostics(filepath.Join(r.dir, diagnosticsFile), samples); err != nil {
		return err
	}

	meta := r.meta
	meta.FinalStep = final.FinalStep
	meta.FinalTime = final.FinalTime
	meta.Error = final.Error
	meta.Metrics = final.Metrics
	return writeJSON(filepath.Join(r.dir, metadataFile), meta)
}

// Abort discards a run that never started: the snapshot file is closed and
// the run directory removed. It does nothing once Close has been called.
func (r *Run) Abort() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return nil
	}
	r.closed = true
	r.file.Close()
	return os.RemoveAll(r.dir)
}

func writeDiagnostics(path string, samples []metrics.Sample) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(diagnosticHeader); err != nil {
		return err
	}
	for _, s := range samples {
		row := []string{
			strconv.Itoa(s.Step),
			formatFloat(s.Time),
			formatFloat(s.Kinetic),
			formatFloat(s.Potential),
			formatFloat(s.Total),
			formatFloat(s.MomentumX),
			formatFloat(s.MomentumY),
			formatFloat(s.AngularMomentum),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return err
	}
	return f.Close()
}

func writeJSON(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return err
	}
	return f.Close()
}
