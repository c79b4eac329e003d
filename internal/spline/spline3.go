// Package spline fits batched 3rd-order polynomial paths connecting a
// start pose and speed to a goal pose and speed, and evaluates position,
// heading, speed and angular speed along them. Paths are parametrized by
// an internal shape variable p, with a separate cubic mapping normalized
// time tau in [0, 1] to p; the split lets the x/y fit carry the pose
// constraints while p(tau) carries the boundary speeds.
package spline

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/navlab/trajkit/internal/batch"
	"github.com/navlab/trajkit/internal/traj"
)

// A squared true speed below this is treated as a standstill sample and
// its angular speed is defined to be zero instead of dividing.
const epsSpeedSq = 1e-12

const minRowsParallel = 32

// PoseSpeed is one boundary condition: a planar pose plus speed.
type PoseSpeed struct {
	X, Y, Theta, V float64
}

// Factors are the two positive shaping scalars scaling the tangent
// magnitudes at the start and goal.
type Factors struct {
	F1, F2 float64
}

// Spline3 holds fitted cubic coefficients for a batch of n paths. It has
// two states: unfit (fresh) and fit; Evaluate requires the latter and
// every Fit call fully replaces the coefficients. Concurrent Evaluate
// calls are safe; Fit must not overlap with them.
type Spline3 struct {
	dt float64
	n  int

	// x(p) and y(p) cubics, then p(tau) with no constant term.
	a1, b1, c1, d1 []float64
	a2, b2, c2, d2 []float64
	a3, b3, c3     []float64

	fitted bool
}

// New returns an unfit spline batch for n paths. dt is carried into
// evaluated trajectories.
func New(dt float64, n int) (*Spline3, error) {
	if dt <= 0 {
		return nil, fmt.Errorf("%w: got %g", traj.ErrBadTimestep, dt)
	}
	if n <= 0 {
		return nil, fmt.Errorf("%w: n=%d", traj.ErrEmptyBatch, n)
	}
	return &Spline3{
		dt: dt, n: n,
		a1: make([]float64, n), b1: make([]float64, n), c1: make([]float64, n), d1: make([]float64, n),
		a2: make([]float64, n), b2: make([]float64, n), c2: make([]float64, n), d2: make([]float64, n),
		a3: make([]float64, n), b3: make([]float64, n), c3: make([]float64, n),
	}, nil
}

// N returns the batch size.
func (s *Spline3) N() int { return s.n }

// Fitted reports whether coefficients are present.
func (s *Spline3) Fitted() bool { return s.fitted }

// Fit solves the closed-form coefficients for each row. When factors is
// nil both shaping scalars default to the Euclidean distance from the
// origin to the goal position, so the tangent magnitude scales with goal
// distance; that heuristic degenerates for a goal at the origin, which
// is rejected as ErrBadFactor.
func (s *Spline3) Fit(start, goal []PoseSpeed, factors []Factors) error {
	if len(start) != s.n || len(goal) != s.n {
		return fmt.Errorf("%w: start has %d rows, goal has %d, want %d", traj.ErrShapeMismatch, len(start), len(goal), s.n)
	}
	if factors != nil && len(factors) != s.n {
		return fmt.Errorf("%w: factors has %d rows, want %d", traj.ErrShapeMismatch, len(factors), s.n)
	}

	for i := 0; i < s.n; i++ {
		f1 := math.Hypot(goal[i].X, goal[i].Y)
		f2 := f1
		if factors != nil {
			f1, f2 = factors[i].F1, factors[i].F2
		}
		if f1 <= 0 || f2 <= 0 {
			return fmt.Errorf("%w: row %d has factors (%g, %g)", ErrBadFactor, i, f1, f2)
		}

		sin0, cos0 := math.Sincos(start[i].Theta)
		sing, cosg := math.Sincos(goal[i].Theta)
		x0, y0, xg, yg := start[i].X, start[i].Y, goal[i].X, goal[i].Y

		s.d1[i] = x0
		s.c1[i] = f1 * cos0
		s.a1[i] = f2*cosg - 2*xg + s.c1[i] + 2*s.d1[i]
		s.b1[i] = 3*xg - f2*cosg - 2*s.c1[i] - 3*s.d1[i]

		s.d2[i] = y0
		s.c2[i] = f1 * sin0
		s.a2[i] = f2*sing - 2*yg + s.c2[i] + 2*s.d2[i]
		s.b2[i] = 3*yg - f2*sing - 2*s.c2[i] - 3*s.d2[i]

		s.c3[i] = start[i].V / f1
		s.a3[i] = goal[i].V/f2 + s.c3[i] - 2
		s.b3[i] = 1 - s.c3[i] - s.a3[i]
	}

	s.fitted = true
	return nil
}

// Evaluate computes the spline batch at the query times, one row of
// times per path. Each row is normalized by its own maximum, so every
// path is traversed over tau in [0, 1] regardless of absolute horizon.
// With computeSpeeds false the speed and angular speed channels are left
// zero and the curvature division is skipped entirely.
func (s *Spline3) Evaluate(times [][]float64, computeSpeeds bool) (*traj.Trajectory, error) {
	if !s.fitted {
		return nil, ErrNotFitted
	}
	if len(times) != s.n {
		return nil, fmt.Errorf("%w: times has %d rows, want %d", traj.ErrShapeMismatch, len(times), s.n)
	}
	k := len(times[0])
	for i, row := range times {
		if len(row) != k {
			return nil, fmt.Errorf("%w: time row %d has %d samples, want %d", traj.ErrShapeMismatch, i, len(row), k)
		}
	}

	b, err := traj.NewBuilder(s.dt, s.n, k)
	if err != nil {
		return nil, err
	}

	errs := make([]error, s.n)
	batch.ParallelFor(s.n, minRowsParallel, func(startRow, endRow int) {
		for i := startRow; i < endRow; i++ {
			tmax := floats.Max(times[i])
			if tmax <= 0 {
				errs[i] = fmt.Errorf("%w: row %d has max %g", ErrBadTimes, i, tmax)
				continue
			}
			for j, tq := range times[i] {
				s.evalAt(b, i, j, tq/tmax, computeSpeeds)
			}
		}
	})
	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	return b.Finish()
}

// evalAt evaluates row i at normalized time tau and stages the sample.
func (s *Spline3) evalAt(b *traj.Builder, i, j int, tau float64, computeSpeeds bool) {
	t2 := tau * tau
	p := s.a3[i]*t2*tau + s.b3[i]*t2 + s.c3[i]*tau
	p2 := p * p

	x := s.a1[i]*p2*p + s.b1[i]*p2 + s.c1[i]*p + s.d1[i]
	y := s.a2[i]*p2*p + s.b2[i]*p2 + s.c2[i]*p + s.d2[i]

	// Derivatives w.r.t. p (x, y) and w.r.t. tau (p).
	xd := 3*s.a1[i]*p2 + 2*s.b1[i]*p + s.c1[i]
	yd := 3*s.a2[i]*p2 + 2*s.b2[i]*p + s.c2[i]
	pd := 3*s.a3[i]*t2 + 2*s.b3[i]*tau + s.c3[i]

	// atan2 is homogeneous in its arguments, so the common pd factor in
	// dx/dtau, dy/dtau cancels and the p-space tangent fixes the heading.
	b.SetPose(i, j, x, y, math.Atan2(yd, xd))

	if !computeSpeeds {
		return
	}

	xdd := 6*s.a1[i]*p + 2*s.b1[i]
	ydd := 6*s.a2[i]*p + 2*s.b2[i]
	pdd := 6*s.a3[i]*tau + 2*s.b3[i]

	speed := math.Hypot(xd, yd) * pd

	// Chain rule through p(tau): x' = xd pd, x'' = xdd pd^2 + xd pdd,
	// and dtheta/dtau = (y'' x' - x'' y') / speed^2. A standstill sample
	// has no defined turn rate; it is reported as zero.
	angular := 0.0
	if sq := speed * speed; sq >= epsSpeedSq {
		num := (ydd*pd*pd+yd*pdd)*(xd*pd) - (xdd*pd*pd+xd*pdd)*(yd*pd)
		angular = num / sq
	}
	b.SetVelocity(i, j, speed, angular)
}
