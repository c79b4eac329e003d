package dubins

import (
	"fmt"
	"math"

	"github.com/navlab/trajkit/internal/batch"
	"github.com/navlab/trajkit/internal/traj"
)

// SaturatedCar applies the same update as Car but clips the commanded
// velocities into fixed bounds first:
//
//	x' = x + clip(v, vmin, vmax) cos(theta) dt
//	y' = y + clip(v, vmin, vmax) sin(theta) dt
//	theta' = theta + clip(w, wmin, wmax) dt
//
// The clip derivative is 1 on the closed interval [min, max] and 0
// strictly outside it, so Jacobian control columns vanish exactly when a
// command is saturated but stay exact at the bound itself.
type SaturatedCar struct {
	dt         float64
	vMin, vMax float64
	wMin, wMax float64
}

// NewSaturatedCar returns a bounded model. Bounds are fixed for the
// model's lifetime.
func NewSaturatedCar(dt, vMin, vMax, wMin, wMax float64) (*SaturatedCar, error) {
	if dt <= 0 {
		return nil, fmt.Errorf("%w: got %g", traj.ErrBadTimestep, dt)
	}
	if vMin > vMax {
		return nil, fmt.Errorf("dubins: invalid speed bounds [%g, %g]", vMin, vMax)
	}
	if wMin > wMax {
		return nil, fmt.Errorf("dubins: invalid angular speed bounds [%g, %g]", wMin, wMax)
	}
	return &SaturatedCar{dt: dt, vMin: vMin, vMax: vMax, wMin: wMin, wMax: wMax}, nil
}

func (c *SaturatedCar) StateDim() int   { return StateDim }
func (c *SaturatedCar) ControlDim() int { return ControlDim }
func (c *SaturatedCar) Dt() float64     { return c.dt }

// SpeedBounds returns the [min, max] interval for linear speed.
func (c *SaturatedCar) SpeedBounds() (min, max float64) { return c.vMin, c.vMax }

// AngularSpeedBounds returns the [min, max] interval for angular speed.
func (c *SaturatedCar) AngularSpeedBounds() (min, max float64) { return c.wMin, c.wMax }

// ClipSpeed saturates a commanded linear speed.
func (c *SaturatedCar) ClipSpeed(v float64) float64 { return clamp(v, c.vMin, c.vMax) }

// ClipAngularSpeed saturates a commanded angular speed.
func (c *SaturatedCar) ClipAngularSpeed(w float64) float64 { return clamp(w, c.wMin, c.wMax) }

func clamp(v, lo, hi float64) float64 {
	return math.Min(math.Max(v, lo), hi)
}

// clipGrad is the derivative of clamp at a raw command.
func clipGrad(v, lo, hi float64) float64 {
	if v < lo || v > hi {
		return 0
	}
	return 1
}

// Simulate advances every sample one step with saturated velocities.
func (c *SaturatedCar) Simulate(x *StateBatch, u *ControlBatch) (*StateBatch, error) {
	if err := checkShapes(x, u); err != nil {
		return nil, err
	}
	next := NewStateBatch(x.N, x.K)
	k := x.K
	batch.ParallelFor(x.N, minRowsParallel, func(start, end int) {
		for idx := start * k; idx < end*k; idx++ {
			v := clamp(u.V[idx], c.vMin, c.vMax)
			w := clamp(u.W[idx], c.wMin, c.wMax)
			sin, cos := math.Sincos(x.Theta[idx])
			next.X[idx] = x.X[idx] + v*cos*c.dt
			next.Y[idx] = x.Y[idx] + v*sin*c.dt
			next.Theta[idx] = x.Theta[idx] + w*c.dt
		}
	})
	return next, nil
}

// JacX uses the clipped speed in the heading column; the chain rule
// contributes no other change relative to the unconstrained model.
func (c *SaturatedCar) JacX(t *traj.Trajectory) (*JacobianBatch, error) {
	x, u := parseTrajectory(t)
	return jacXAt(x, u, c.dt, c.ClipSpeed), nil
}

// JacU scales each control column by the clip derivative evaluated at
// the raw command.
func (c *SaturatedCar) JacU(t *traj.Trajectory) (*JacobianBatch, error) {
	x, u := parseTrajectory(t)
	jb := newJacobianBatch(x.N, x.K, StateDim, ControlDim)
	k := x.K
	batch.ParallelFor(x.N, minRowsParallel, func(start, end int) {
		for i := start; i < end; i++ {
			for j := 0; j < k; j++ {
				idx := i*k + j
				vGrad := clipGrad(u.V[idx], c.vMin, c.vMax)
				wGrad := clipGrad(u.W[idx], c.wMin, c.wMax)
				sin, cos := math.Sincos(x.Theta[idx])
				jb.set(i, j, 0, 0, vGrad*cos*c.dt)
				jb.set(i, j, 1, 0, vGrad*sin*c.dt)
				jb.set(i, j, 2, 1, wGrad*c.dt)
			}
		}
	})
	return jb, nil
}

// AssembleTrajectory stores clipped velocities so a stored trajectory
// always reflects realizable commands.
func (c *SaturatedCar) AssembleTrajectory(x *StateBatch, u *ControlBatch, pad PadPolicy) (*traj.Trajectory, error) {
	if x.N != u.N {
		return nil, fmt.Errorf("%w: states n=%d vs controls n=%d", traj.ErrShapeMismatch, x.N, u.N)
	}
	u, err := padControls(u, x.K, pad)
	if err != nil {
		return nil, err
	}
	speed := make([]float64, len(u.V))
	angular := make([]float64, len(u.W))
	for idx := range u.V {
		speed[idx] = clamp(u.V[idx], c.vMin, c.vMax)
		angular[idx] = clamp(u.W[idx], c.wMin, c.wMax)
	}
	return traj.FromChannels(c.dt, x.N, x.K,
		append([]float64(nil), x.X...),
		append([]float64(nil), x.Y...),
		append([]float64(nil), x.Theta...),
		speed, angular, nil, nil)
}

// InitEgocentricState builds an n-row single-step state at the origin
// pose with a constant commanded (v, w), for seeding rollouts.
func InitEgocentricState(dt float64, n int, v, w float64) (*traj.State, error) {
	b, err := traj.NewBuilder(dt, n, 1)
	if err != nil {
		return nil, err
	}
	for i := 0; i < n; i++ {
		b.SetVelocity(i, 0, v, w)
	}
	return b.Finish()
}
