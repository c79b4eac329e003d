package dubins

import (
	"fmt"

	"github.com/navlab/trajkit/internal/geom"
	"github.com/navlab/trajkit/internal/traj"
)

// Frame transforms between the world frame and an egocentric frame
// centered on a reference pose. Speed, angular speed and accelerations
// are frame-independent and pass through unchanged. The reference must
// be a single-step state with either one row (shared by the whole batch)
// or one row per batch row.

// ToEgocentric expresses t relative to the reference pose: translate so
// the reference sits at the origin, rotate by the negative reference
// heading, and re-normalize headings into (-pi, pi].
func ToEgocentric(ref *traj.State, t *traj.Trajectory) (*traj.Trajectory, error) {
	return transform(ref, t, false)
}

// ToWorld is the exact inverse of ToEgocentric for the same reference.
func ToWorld(ref *traj.State, t *traj.Trajectory) (*traj.Trajectory, error) {
	return transform(ref, t, true)
}

func transform(ref *traj.State, t *traj.Trajectory, toWorld bool) (*traj.Trajectory, error) {
	if !ref.IsState() {
		return nil, fmt.Errorf("%w: reference must have k=1, got k=%d", traj.ErrShapeMismatch, ref.K)
	}
	if ref.N != 1 && ref.N != t.N {
		return nil, fmt.Errorf("%w: reference has %d rows, trajectory has %d", traj.ErrShapeMismatch, ref.N, t.N)
	}

	out := t.Clone()
	for i := 0; i < t.N; i++ {
		r := i
		if ref.N == 1 {
			r = 0
		}
		rx, ry, rh := ref.X[r], ref.Y[r], ref.Heading[r]

		lo, hi := t.Row(i)
		for idx := lo; idx < hi; idx++ {
			if toWorld {
				x, y := geom.RotatePoint(t.X[idx], t.Y[idx], rh)
				out.X[idx] = x + rx
				out.Y[idx] = y + ry
				out.Heading[idx] = geom.NormalizeAngle(t.Heading[idx] + rh)
			} else {
				x, y := geom.RotatePoint(t.X[idx]-rx, t.Y[idx]-ry, -rh)
				out.X[idx] = x
				out.Y[idx] = y
				out.Heading[idx] = geom.NormalizeAngle(t.Heading[idx] - rh)
			}
		}
	}
	return out, nil
}
