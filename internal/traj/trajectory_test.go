package traj

import (
	"errors"
	"math"
	"testing"
)

func TestBuilderFinish(t *testing.T) {
	b, err := NewBuilder(0.1, 2, 3)
	if err != nil {
		t.Fatalf("new builder: %v", err)
	}
	b.SetPose(1, 2, 1.5, -2.0, 0.5)
	b.SetVelocity(1, 2, 0.4, -0.1)
	b.SetAccel(0, 0, 0.2, 0.3)

	tr, err := b.Finish()
	if err != nil {
		t.Fatalf("finish: %v", err)
	}

	s := tr.At(1, 2)
	if s.X != 1.5 || s.Y != -2.0 || s.Heading != 0.5 {
		t.Errorf("unexpected pose: %+v", s)
	}
	if s.Speed != 0.4 || s.AngularSpeed != -0.1 {
		t.Errorf("unexpected velocity: %+v", s)
	}
	if tr.At(0, 0).Accel != 0.2 {
		t.Errorf("expected accel 0.2, got %f", tr.At(0, 0).Accel)
	}

	if _, err := b.Finish(); err == nil {
		t.Error("expected error on second finish")
	}
}

func TestBuilderInvalidArgs(t *testing.T) {
	tests := []struct {
		name string
		dt   float64
		n, k int
		want error
	}{
		{"zero dt", 0, 1, 1, ErrBadTimestep},
		{"negative dt", -0.1, 1, 1, ErrBadTimestep},
		{"zero batch", 0.1, 0, 5, ErrEmptyBatch},
		{"zero steps", 0.1, 5, 0, ErrEmptyBatch},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewBuilder(tt.dt, tt.n, tt.k); !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestBuilderRejectsNaN(t *testing.T) {
	b, _ := NewBuilder(0.1, 1, 1)
	b.SetPose(0, 0, math.NaN(), 0, 0)
	if _, err := b.Finish(); !errors.Is(err, ErrInvalidValue) {
		t.Errorf("expected ErrInvalidValue, got %v", err)
	}
}

func TestFromChannels(t *testing.T) {
	n, k := 2, 2
	ch := func() []float64 { return make([]float64, n*k) }

	tr, err := FromChannels(0.1, n, k, ch(), ch(), ch(), ch(), ch(), nil, nil)
	if err != nil {
		t.Fatalf("from channels: %v", err)
	}
	if len(tr.Accel) != n*k || len(tr.AngularAccel) != n*k {
		t.Error("expected zero-filled accel channels")
	}

	if _, err := FromChannels(0.1, n, k, ch(), ch(), make([]float64, 3), ch(), ch(), nil, nil); !errors.Is(err, ErrShapeMismatch) {
		t.Errorf("expected ErrShapeMismatch, got %v", err)
	}
	if _, err := FromChannels(0.1, n, k, ch(), ch(), ch(), ch(), ch(), make([]float64, 1), nil); !errors.Is(err, ErrShapeMismatch) {
		t.Errorf("expected ErrShapeMismatch for accel, got %v", err)
	}
}

func TestCloneIsDeep(t *testing.T) {
	b, _ := NewBuilder(0.1, 1, 2)
	b.SetPose(0, 1, 3, 4, 5)
	tr, _ := b.Finish()

	c := tr.Clone()
	c.X[1] = 99

	if tr.X[1] == 99 {
		t.Error("clone shares storage with original")
	}
}

func TestStateAndHorizon(t *testing.T) {
	b, _ := NewBuilder(0.25, 3, 1)
	st, _ := b.Finish()
	if !st.IsState() {
		t.Error("k=1 record should report IsState")
	}
	if st.Horizon() != 0.25 {
		t.Errorf("expected horizon 0.25, got %f", st.Horizon())
	}

	b2, _ := NewBuilder(0.25, 1, 4)
	tr, _ := b2.Finish()
	if tr.IsState() {
		t.Error("k=4 record should not report IsState")
	}
}
