package traj

import (
	"fmt"
	"math"
)

// Trajectory is a batched record of vehicle poses and velocities over time,
// indexed [batch row, time step] with row-major flat channels of length N*K.
// A Trajectory is immutable by convention once constructed: transformations
// allocate and return a new instance. Use a Builder to stage values.
type Trajectory struct {
	Dt float64
	N  int
	K  int

	X            []float64
	Y            []float64
	Heading      []float64
	Speed        []float64
	AngularSpeed []float64
	Accel        []float64
	AngularAccel []float64
}

// State is the single-step (K == 1) specialization of a Trajectory.
type State = Trajectory

// Sample is one (batch row, step) slice of a trajectory.
type Sample struct {
	X, Y, Heading       float64
	Speed, AngularSpeed float64
	Accel, AngularAccel float64
}

// FromChannels assembles a Trajectory from prebuilt flat channels. Each
// required channel must have length n*k; accel channels may be nil and are
// zero-filled. The slices are retained, not copied.
func FromChannels(dt float64, n, k int, x, y, heading, speed, angularSpeed, accel, angularAccel []float64) (*Trajectory, error) {
	if dt <= 0 {
		return nil, fmt.Errorf("%w: got %g", ErrBadTimestep, dt)
	}
	if n <= 0 || k <= 0 {
		return nil, fmt.Errorf("%w: n=%d k=%d", ErrEmptyBatch, n, k)
	}
	size := n * k
	for name, ch := range map[string][]float64{
		"x": x, "y": y, "heading": heading, "speed": speed, "angular_speed": angularSpeed,
	} {
		if len(ch) != size {
			return nil, fmt.Errorf("%w: channel %s has %d samples, want %d", ErrShapeMismatch, name, len(ch), size)
		}
	}
	if accel == nil {
		accel = make([]float64, size)
	} else if len(accel) != size {
		return nil, fmt.Errorf("%w: channel accel has %d samples, want %d", ErrShapeMismatch, len(accel), size)
	}
	if angularAccel == nil {
		angularAccel = make([]float64, size)
	} else if len(angularAccel) != size {
		return nil, fmt.Errorf("%w: channel angular_accel has %d samples, want %d", ErrShapeMismatch, len(angularAccel), size)
	}
	return &Trajectory{
		Dt: dt, N: n, K: k,
		X: x, Y: y, Heading: heading,
		Speed: speed, AngularSpeed: angularSpeed,
		Accel: accel, AngularAccel: angularAccel,
	}, nil
}

func (t *Trajectory) index(i, j int) int { return i*t.K + j }

// At returns the sample at batch row i, step j.
func (t *Trajectory) At(i, j int) Sample {
	idx := t.index(i, j)
	return Sample{
		X: t.X[idx], Y: t.Y[idx], Heading: t.Heading[idx],
		Speed: t.Speed[idx], AngularSpeed: t.AngularSpeed[idx],
		Accel: t.Accel[idx], AngularAccel: t.AngularAccel[idx],
	}
}

// Row returns the flat channel range for batch row i as [lo, hi).
func (t *Trajectory) Row(i int) (lo, hi int) { return i * t.K, (i + 1) * t.K }

// IsState reports whether the record holds a single time slice.
func (t *Trajectory) IsState() bool { return t.K == 1 }

// Horizon returns the time span covered by the record.
func (t *Trajectory) Horizon() float64 { return float64(t.K) * t.Dt }

// Clone returns a deep copy.
func (t *Trajectory) Clone() *Trajectory {
	c := &Trajectory{Dt: t.Dt, N: t.N, K: t.K}
	c.X = append([]float64(nil), t.X...)
	c.Y = append([]float64(nil), t.Y...)
	c.Heading = append([]float64(nil), t.Heading...)
	c.Speed = append([]float64(nil), t.Speed...)
	c.AngularSpeed = append([]float64(nil), t.AngularSpeed...)
	c.Accel = append([]float64(nil), t.Accel...)
	c.AngularAccel = append([]float64(nil), t.AngularAccel...)
	return c
}

// IsValid reports whether every sample is finite.
func (t *Trajectory) IsValid() bool {
	for _, ch := range [][]float64{t.X, t.Y, t.Heading, t.Speed, t.AngularSpeed, t.Accel, t.AngularAccel} {
		for _, v := range ch {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return false
			}
		}
	}
	return true
}

// Builder stages trajectory samples before finalizing them into an
// immutable Trajectory. All channels are allocated up front so shapes
// cannot drift apart while staging.
type Builder struct {
	t    *Trajectory
	done bool
}

// NewBuilder allocates a zeroed builder for an (n, k) batch.
func NewBuilder(dt float64, n, k int) (*Builder, error) {
	if dt <= 0 {
		return nil, fmt.Errorf("%w: got %g", ErrBadTimestep, dt)
	}
	if n <= 0 || k <= 0 {
		return nil, fmt.Errorf("%w: n=%d k=%d", ErrEmptyBatch, n, k)
	}
	size := n * k
	return &Builder{
		t: &Trajectory{
			Dt: dt, N: n, K: k,
			X: make([]float64, size), Y: make([]float64, size),
			Heading: make([]float64, size),
			Speed:   make([]float64, size), AngularSpeed: make([]float64, size),
			Accel: make([]float64, size), AngularAccel: make([]float64, size),
		},
	}, nil
}

// SetPose stages position and heading at (i, j).
func (b *Builder) SetPose(i, j int, x, y, heading float64) {
	idx := b.t.index(i, j)
	b.t.X[idx], b.t.Y[idx], b.t.Heading[idx] = x, y, heading
}

// SetVelocity stages speed and angular speed at (i, j).
func (b *Builder) SetVelocity(i, j int, speed, angularSpeed float64) {
	idx := b.t.index(i, j)
	b.t.Speed[idx], b.t.AngularSpeed[idx] = speed, angularSpeed
}

// SetAccel stages linear and angular acceleration at (i, j).
func (b *Builder) SetAccel(i, j int, accel, angularAccel float64) {
	idx := b.t.index(i, j)
	b.t.Accel[idx], b.t.AngularAccel[idx] = accel, angularAccel
}

// Finish validates the staged record and returns it as an immutable
// Trajectory. The builder must not be reused afterwards.
func (b *Builder) Finish() (*Trajectory, error) {
	if b.done {
		return nil, fmt.Errorf("traj: builder already finished")
	}
	if !b.t.IsValid() {
		return nil, ErrInvalidValue
	}
	b.done = true
	return b.t, nil
}
