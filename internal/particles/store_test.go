package particles

import (
	"errors"
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/bhsim/internal/dynamo"
)

func TestNewValidation(t *testing.T) {
	one := []mgl64.Vec2{{0, 0}}
	tests := []struct {
		name string
		pos  []mgl64.Vec2
		vel  []mgl64.Vec2
		mass []float64
	}{
		{"empty", nil, nil, nil},
		{"length mismatch", one, []mgl64.Vec2{{0, 0}, {1, 1}}, []float64{1}},
		{"zero mass", one, one, []float64{0}},
		{"negative mass", one, one, []float64{-1}},
		{"NaN mass", one, one, []float64{math.NaN()}},
		{"Inf mass", one, one, []float64{math.Inf(1)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.pos, tt.vel, tt.mass)
			if !errors.Is(err, dynamo.ErrInvalidConfiguration) {
				t.Errorf("expected ErrInvalidConfiguration, got %v", err)
			}
		})
	}
}

func TestNewCopiesInput(t *testing.T) {
	pos := []mgl64.Vec2{{1, 2}}
	vel := []mgl64.Vec2{{3, 4}}
	mass := []float64{5}

	s, err := New(pos, vel, mass)
	if err != nil {
		t.Fatalf("new failed: %v", err)
	}

	pos[0] = mgl64.Vec2{99, 99}
	mass[0] = 99
	if s.Positions()[0] != (mgl64.Vec2{1, 2}) {
		t.Error("store aliases caller position slice")
	}
	if s.Masses()[0] != 5 {
		t.Error("store aliases caller mass slice")
	}
}

func TestCommitSwapsBuffers(t *testing.T) {
	s, err := New([]mgl64.Vec2{{0, 0}, {1, 0}}, make([]mgl64.Vec2, 2), []float64{1, 2})
	if err != nil {
		t.Fatalf("new failed: %v", err)
	}

	nextPos, nextVel := s.Next()
	nextPos[0], nextPos[1] = mgl64.Vec2{5, 5}, mgl64.Vec2{6, 6}
	nextVel[0], nextVel[1] = mgl64.Vec2{1, 0}, mgl64.Vec2{0, 1}
	s.Commit()

	if s.Positions()[1] != (mgl64.Vec2{6, 6}) {
		t.Errorf("expected committed position, got %v", s.Positions()[1])
	}
	if s.Velocities()[0] != (mgl64.Vec2{1, 0}) {
		t.Errorf("expected committed velocity, got %v", s.Velocities()[0])
	}
	if s.TotalMass() != 3 {
		t.Errorf("expected total mass 3, got %v", s.TotalMass())
	}
}

func TestSnapshotDoesNotAlias(t *testing.T) {
	s, err := New([]mgl64.Vec2{{0, 0}}, []mgl64.Vec2{{1, 1}}, []float64{1})
	if err != nil {
		t.Fatalf("new failed: %v", err)
	}

	snap := s.Snapshot(3, 0.3)
	snap.Positions[0] = mgl64.Vec2{42, 42}
	snap.Velocities[0] = mgl64.Vec2{42, 42}
	snap.Masses[0] = 42

	if s.Positions()[0] != (mgl64.Vec2{0, 0}) || s.Velocities()[0] != (mgl64.Vec2{1, 1}) || s.Masses()[0] != 1 {
		t.Error("snapshot mutation leaked into store")
	}
	if snap.Step != 3 || snap.Time != 0.3 {
		t.Errorf("unexpected step/time: %d %v", snap.Step, snap.Time)
	}
}

func TestSnapshotBodiesAndBounds(t *testing.T) {
	snap := &Snapshot{
		Positions:  []mgl64.Vec2{{-1, 2}, {3, -4}, {0, 0}},
		Velocities: []mgl64.Vec2{{3, 4}, {0, 0}, {0, 0}},
		Masses:     []float64{1, 2, 3},
	}

	bodies := snap.Bodies()
	if len(bodies) != 3 || bodies[1].Mass != 2 || bodies[1].Position != (mgl64.Vec2{3, -4}) {
		t.Errorf("unexpected bodies: %v", bodies)
	}

	min, max := snap.Bounds()
	if min != (mgl64.Vec2{-1, -4}) || max != (mgl64.Vec2{3, 2}) {
		t.Errorf("unexpected bounds: %v %v", min, max)
	}
	if snap.Speed(0) != 5 {
		t.Errorf("expected speed 5, got %v", snap.Speed(0))
	}
}
