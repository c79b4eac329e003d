package dubins

import (
	"fmt"
	"math"

	"github.com/navlab/trajkit/internal/batch"
	"github.com/navlab/trajkit/internal/traj"
)

// Car is the unconstrained discrete-time planar vehicle:
//
//	x' = x + v cos(theta) dt
//	y' = y + v sin(theta) dt
//	theta' = theta + w dt
type Car struct {
	dt float64
}

// NewCar returns an unconstrained model with the given timestep.
func NewCar(dt float64) (*Car, error) {
	if dt <= 0 {
		return nil, fmt.Errorf("%w: got %g", traj.ErrBadTimestep, dt)
	}
	return &Car{dt: dt}, nil
}

func (c *Car) StateDim() int   { return StateDim }
func (c *Car) ControlDim() int { return ControlDim }
func (c *Car) Dt() float64     { return c.dt }

// Simulate advances every sample one step. Commanded velocities are
// applied directly.
func (c *Car) Simulate(x *StateBatch, u *ControlBatch) (*StateBatch, error) {
	if err := checkShapes(x, u); err != nil {
		return nil, err
	}
	next := NewStateBatch(x.N, x.K)
	k := x.K
	batch.ParallelFor(x.N, minRowsParallel, func(start, end int) {
		for idx := start * k; idx < end*k; idx++ {
			sin, cos := math.Sincos(x.Theta[idx])
			next.X[idx] = x.X[idx] + u.V[idx]*cos*c.dt
			next.Y[idx] = x.Y[idx] + u.V[idx]*sin*c.dt
			next.Theta[idx] = x.Theta[idx] + u.W[idx]*c.dt
		}
	})
	return next, nil
}

// JacX returns the per-step state Jacobian A. Only the heading column is
// nontrivial; the position block is the identity.
func (c *Car) JacX(t *traj.Trajectory) (*JacobianBatch, error) {
	x, u := parseTrajectory(t)
	return jacXAt(x, u, c.dt, func(v float64) float64 { return v }), nil
}

// JacU returns the per-step control Jacobian B.
func (c *Car) JacU(t *traj.Trajectory) (*JacobianBatch, error) {
	x, _ := parseTrajectory(t)
	jb := newJacobianBatch(x.N, x.K, StateDim, ControlDim)
	k := x.K
	batch.ParallelFor(x.N, minRowsParallel, func(start, end int) {
		for i := start; i < end; i++ {
			for j := 0; j < k; j++ {
				sin, cos := math.Sincos(x.Theta[i*k+j])
				jb.set(i, j, 0, 0, cos*c.dt)
				jb.set(i, j, 1, 0, sin*c.dt)
				jb.set(i, j, 2, 1, c.dt)
			}
		}
	})
	return jb, nil
}

// AssembleTrajectory packs state and control batches into a trajectory.
// Controls one step shorter than states are extended per the pad policy.
func (c *Car) AssembleTrajectory(x *StateBatch, u *ControlBatch, pad PadPolicy) (*traj.Trajectory, error) {
	if x.N != u.N {
		return nil, fmt.Errorf("%w: states n=%d vs controls n=%d", traj.ErrShapeMismatch, x.N, u.N)
	}
	u, err := padControls(u, x.K, pad)
	if err != nil {
		return nil, err
	}
	return traj.FromChannels(c.dt, x.N, x.K,
		append([]float64(nil), x.X...),
		append([]float64(nil), x.Y...),
		append([]float64(nil), x.Theta...),
		append([]float64(nil), u.V...),
		append([]float64(nil), u.W...),
		nil, nil)
}

// jacXAt builds the state Jacobian with the effective speed mapped
// through eff (identity for Car, the clip for SaturatedCar).
func jacXAt(x *StateBatch, u *ControlBatch, dt float64, eff func(float64) float64) *JacobianBatch {
	jb := newJacobianBatch(x.N, x.K, StateDim, StateDim)
	k := x.K
	batch.ParallelFor(x.N, minRowsParallel, func(start, end int) {
		for i := start; i < end; i++ {
			for j := 0; j < k; j++ {
				idx := i*k + j
				v := eff(u.V[idx])
				sin, cos := math.Sincos(x.Theta[idx])
				jb.set(i, j, 0, 0, 1)
				jb.set(i, j, 1, 1, 1)
				jb.set(i, j, 2, 2, 1)
				jb.set(i, j, 0, 2, -v*sin*dt)
				jb.set(i, j, 1, 2, v*cos*dt)
			}
		}
	})
	return jb
}
