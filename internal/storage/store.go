package storage

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/bhsim/internal/metrics"
	"github.com/san-kum/bhsim/internal/particles"
)

const (
	metadataFile    = "metadata.json"
	snapshotsFile   = "snapshots.csv"
	diagnosticsFile = "diagnostics.csv"
)

var (
	snapshotHeader   = []string{"step", "time", "index", "x", "y", "vx", "vy", "mass"}
	diagnosticHeader = []string{"step", "time", "kinetic", "potential", "total", "px", "py", "angular_momentum"}
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
	ID           string             `json:"id"`
	Distribution string             `json:"distribution"`
	Timestamp    time.Time          `json:"timestamp"`
	Seed         uint64             `json:"seed"`
	Particles    int                `json:"particles"`
	Steps        int                `json:"steps"`
	Dt           float64            `json:"dt"`
	Softening    float64            `json:"softening"`
	Theta        float64            `json:"theta"`
	G            float64            `json:"g"`
	Integrator   string             `json:"integrator"`
	FinalStep    int                `json:"final_step"`
	FinalTime    float64            `json:"final_time"`
	Error        string             `json:"error,omitempty"`
	Metrics      map[string]float64 `json:"metrics"`
}

// Create allocates a fresh run directory and opens its snapshot file. The
// returned Run must be finished with Close.
func (s *Store) Create(meta RunMetadata, every int) (*Run, error) {
	if err := s.Init(); err != nil {
		return nil, err
	}
	meta.Timestamp = time.Now()
	base := fmt.Sprintf("%s_%d", meta.Distribution, meta.Timestamp.Unix())

	runID := base
	for n := 1; ; n++ {
		err := os.Mkdir(filepath.Join(s.baseDir, runID), 0755)
		if err == nil {
			break
		}
		if !errors.Is(err, os.ErrExist) {
			return nil, err
		}
		runID = fmt.Sprintf("%s-%d", base, n)
	}
	meta.ID = runID

	dir := filepath.Join(s.baseDir, runID)
	f, err := os.Create(filepath.Join(dir, snapshotsFile))
	if err != nil {
		return nil, err
	}
	w := csv.NewWriter(f)
	if err := w.Write(snapshotHeader); err != nil {
		f.Close()
		return nil, err
	}
	if every < 1 {
		every = 1
	}
	return &Run{dir: dir, meta: meta, every: every, file: f, w: w}, nil
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

		meta, err := s.Load(entry.Name())
		if err != nil {
			continue
		}
		runs = append(runs, *meta)
	}

	sort.Slice(runs, func(i, j int) bool { return runs[i].Timestamp.Before(runs[j].Timestamp) })
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, metadataFile))
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}

	return &meta, nil
}

// LoadSnapshots reads every recorded frame back, in step order.
func (s *Store) LoadSnapshots(runID string) ([]*particles.Snapshot, error) {
	records, err := readCSV(filepath.Join(s.baseDir, runID, snapshotsFile))
	if err != nil {
		return nil, err
	}

	var snaps []*particles.Snapshot
	for i, record := range records {
		if len(record) != len(snapshotHeader) {
			return nil, fmt.Errorf("%s line %d: expected %d fields, got %d", snapshotsFile, i+2, len(snapshotHeader), len(record))
		}
		step, err := strconv.Atoi(record[0])
		if err != nil {
			return nil, fmt.Errorf("%s line %d: %w", snapshotsFile, i+2, err)
		}
		f, err := parseFloats(record[1:])
		if err != nil {
			return nil, fmt.Errorf("%s line %d: %w", snapshotsFile, i+2, err)
		}

		if len(snaps) == 0 || snaps[len(snaps)-1].Step != step {
			snaps = append(snaps, &particles.Snapshot{Step: step, Time: f[0]})
		}
		cur := snaps[len(snaps)-1]
		cur.Positions = append(cur.Positions, mgl64.Vec2{f[2], f[3]})
		cur.Velocities = append(cur.Velocities, mgl64.Vec2{f[4], f[5]})
		cur.Masses = append(cur.Masses, f[6])
	}
	return snaps, nil
}

func (s *Store) LoadDiagnostics(runID string) ([]metrics.Sample, error) {
	records, err := readCSV(filepath.Join(s.baseDir, runID, diagnosticsFile))
	if err != nil {
		return nil, err
	}

	samples := make([]metrics.Sample, 0, len(records))
	for i, record := range records {
		if len(record) != len(diagnosticHeader) {
			return nil, fmt.Errorf("%s line %d: expected %d fields, got %d", diagnosticsFile, i+2, len(diagnosticHeader), len(record))
		}
		step, err := strconv.Atoi(record[0])
		if err != nil {
			return nil, fmt.Errorf("%s line %d: %w", diagnosticsFile, i+2, err)
		}
		f, err := parseFloats(record[1:])
		if err != nil {
			return nil, fmt.Errorf("%s line %d: %w", diagnosticsFile, i+2, err)
		}
		samples = append(samples, metrics.Sample{
			Step:            step,
			Time:            f[0],
			Kinetic:         f[1],
			Potential:       f[2],
			Total:           f[3],
			MomentumX:       f[4],
			MomentumY:       f[5],
			AngularMomentum: f[6],
		})
	}
	return samples, nil
}

// readCSV returns the data rows, without the header.
func readCSV(path string) ([][]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.FieldsPerRecord = -1

	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) < 2 {
		return nil, nil
	}
	return records[1:], nil
}

func parseFloats(fields []string) ([]float64, error) {
	out := make([]float64, len(fields))
	for i, s := range fields {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
