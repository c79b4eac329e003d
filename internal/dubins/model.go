// Package dubins implements discrete-time planar vehicle models with
// closed-form Jacobians, for linearizing nonlinear dynamics around a
// nominal trajectory. Two variants are provided: Car applies commanded
// velocities directly, SaturatedCar clips them into fixed bounds first.
package dubins

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/navlab/trajkit/internal/traj"
)

const (
	// StateDim is (x, y, heading).
	StateDim = 3
	// ControlDim is (linear speed, angular speed).
	ControlDim = 2

	// minRowsParallel is the batch size below which row loops stay serial.
	minRowsParallel = 32
)

// PadPolicy controls how a control sequence one step shorter than its
// state sequence is extended by AssembleTrajectory.
type PadPolicy int

const (
	// PadNone requires controls and states to have equal step counts.
	PadNone PadPolicy = iota
	// PadZero appends a zero control at the final step.
	PadZero
	// PadRepeat appends a copy of the final control.
	PadRepeat
)

// StateBatch holds (x, y, heading) for an [n, k] batch, row-major.
type StateBatch struct {
	N, K  int
	X, Y  []float64
	Theta []float64
}

// NewStateBatch allocates a zeroed [n, k] state batch.
func NewStateBatch(n, k int) *StateBatch {
	size := n * k
	return &StateBatch{
		N: n, K: k,
		X: make([]float64, size), Y: make([]float64, size), Theta: make([]float64, size),
	}
}

// ControlBatch holds commanded (v, w) for an [n, k] batch, row-major.
type ControlBatch struct {
	N, K int
	V, W []float64
}

// NewControlBatch allocates a zeroed [n, k] control batch.
func NewControlBatch(n, k int) *ControlBatch {
	size := n * k
	return &ControlBatch{N: n, K: k, V: make([]float64, size), W: make([]float64, size)}
}

// JacobianBatch stores one rows x cols matrix per (batch row, step),
// packed contiguously.
type JacobianBatch struct {
	N, K       int
	Rows, Cols int
	Data       []float64
}

func newJacobianBatch(n, k, rows, cols int) *JacobianBatch {
	return &JacobianBatch{N: n, K: k, Rows: rows, Cols: cols, Data: make([]float64, n*k*rows*cols)}
}

// At returns the matrix at (i, j) as a gonum view over the backing
// storage; no data is copied.
func (jb *JacobianBatch) At(i, j int) *mat.Dense {
	block := jb.Rows * jb.Cols
	off := (i*jb.K + j) * block
	return mat.NewDense(jb.Rows, jb.Cols, jb.Data[off:off+block])
}

func (jb *JacobianBatch) set(i, j, r, c int, v float64) {
	jb.Data[(i*jb.K+j)*jb.Rows*jb.Cols+r*jb.Cols+c] = v
}

// Model is the contract a trajectory optimizer linearizes against.
type Model interface {
	StateDim() int
	ControlDim() int
	Dt() float64

	// Simulate advances every (row, step) sample one discrete step.
	Simulate(x *StateBatch, u *ControlBatch) (*StateBatch, error)

	// JacX returns d(next state)/d(state) evaluated along the trajectory,
	// one 3x3 matrix per step. JacU is the 3x2 control counterpart. Both
	// evaluate at exactly the samples Simulate would consume.
	JacX(t *traj.Trajectory) (*JacobianBatch, error)
	JacU(t *traj.Trajectory) (*JacobianBatch, error)

	// AssembleTrajectory packs raw batches into a trajectory record.
	AssembleTrajectory(x *StateBatch, u *ControlBatch, pad PadPolicy) (*traj.Trajectory, error)
}

func checkShapes(x *StateBatch, u *ControlBatch) error {
	if x.N != u.N || x.K != u.K {
		return fmt.Errorf("%w: states [%d,%d] vs controls [%d,%d]", traj.ErrShapeMismatch, x.N, x.K, u.N, u.K)
	}
	return nil
}

// parseTrajectory splits a trajectory back into the state and control
// batches the dynamics operate on. The returned batches alias the
// trajectory's channels.
func parseTrajectory(t *traj.Trajectory) (*StateBatch, *ControlBatch) {
	x := &StateBatch{N: t.N, K: t.K, X: t.X, Y: t.Y, Theta: t.Heading}
	u := &ControlBatch{N: t.N, K: t.K, V: t.Speed, W: t.AngularSpeed}
	return x, u
}

// padControls extends a controls batch that is exactly one step short of
// k steps according to the policy. Exact-length batches pass through.
func padControls(u *ControlBatch, k int, pad PadPolicy) (*ControlBatch, error) {
	if u.K == k {
		return u, nil
	}
	if pad == PadNone || u.K+1 != k {
		return nil, fmt.Errorf("%w: controls have %d steps, states have %d", traj.ErrShapeMismatch, u.K, k)
	}

	padded := NewControlBatch(u.N, k)
	for i := 0; i < u.N; i++ {
		copy(padded.V[i*k:i*k+u.K], u.V[i*u.K:(i+1)*u.K])
		copy(padded.W[i*k:i*k+u.K], u.W[i*u.K:(i+1)*u.K])
		if pad == PadRepeat {
			padded.V[i*k+k-1] = u.V[(i+1)*u.K-1]
			padded.W[i*k+k-1] = u.W[(i+1)*u.K-1]
		}
	}
	return padded, nil
}
