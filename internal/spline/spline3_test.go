package spline

import (
	"math"
	"testing"

	. "github.com/onsi/gomega"

	"github.com/navlab/trajkit/internal/traj"
)

func timeGrid(n, k int, dt float64) [][]float64 {
	times := make([][]float64, n)
	for i := range times {
		times[i] = make([]float64, k)
		for j := range times[i] {
			times[i][j] = float64(j) * dt
		}
	}
	return times
}

func TestStraightLineSpline(t *testing.T) {
	g := NewWithT(t)

	sp, err := New(0.05, 1)
	g.Expect(err).NotTo(HaveOccurred())

	start := []PoseSpeed{{X: 0, Y: 0, Theta: 0, V: 1.0}}
	goal := []PoseSpeed{{X: 5, Y: 0, Theta: 0, V: 1.0}}
	g.Expect(sp.Fit(start, goal, nil)).To(Succeed())

	tr, err := sp.Evaluate(timeGrid(1, 50, 0.05), true)
	g.Expect(err).NotTo(HaveOccurred())

	// A straight x-axis path: y identically 0, heading identically 0,
	// x monotonically increasing from 0 to 5.
	for j := 0; j < tr.K; j++ {
		s := tr.At(0, j)
		g.Expect(s.Y).To(BeNumerically("~", 0, 1e-9), "y at step %d", j)
		g.Expect(s.Heading).To(BeNumerically("~", 0, 1e-9), "heading at step %d", j)
		g.Expect(s.AngularSpeed).To(BeNumerically("~", 0, 1e-9), "angular speed at step %d", j)
		if j > 0 {
			g.Expect(s.X).To(BeNumerically(">", tr.At(0, j-1).X))
		}
	}
	g.Expect(tr.At(0, 0).X).To(BeNumerically("~", 0, 1e-9))
	g.Expect(tr.At(0, tr.K-1).X).To(BeNumerically("~", 5, 1e-9))
}

func TestBoundaryConditions(t *testing.T) {
	g := NewWithT(t)

	starts := []PoseSpeed{
		{X: 0, Y: 0, Theta: 0, V: 0.3},
		{X: 1, Y: -2, Theta: 0.8, V: 0.1},
		{X: -0.5, Y: 0.5, Theta: -2.0, V: 0.6},
	}
	goals := []PoseSpeed{
		{X: 4, Y: 2, Theta: 1.2, V: 0.5},
		{X: -3, Y: 1, Theta: -0.4, V: 0.2},
		{X: 2, Y: 4, Theta: 3.0, V: 0.4},
	}

	sp, err := New(0.05, len(starts))
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(sp.Fit(starts, goals, nil)).To(Succeed())

	tr, err := sp.Evaluate(timeGrid(len(starts), 101, 0.05), true)
	g.Expect(err).NotTo(HaveOccurred())

	for i := range starts {
		first, last := tr.At(i, 0), tr.At(i, tr.K-1)

		g.Expect(first.X).To(BeNumerically("~", starts[i].X, 1e-9), "row %d start x", i)
		g.Expect(first.Y).To(BeNumerically("~", starts[i].Y, 1e-9), "row %d start y", i)
		g.Expect(math.Sin(first.Heading)).To(BeNumerically("~", math.Sin(starts[i].Theta), 1e-9), "row %d start heading", i)
		g.Expect(math.Cos(first.Heading)).To(BeNumerically("~", math.Cos(starts[i].Theta), 1e-9), "row %d start heading", i)
		g.Expect(first.Speed).To(BeNumerically("~", starts[i].V, 1e-9), "row %d start speed", i)

		g.Expect(last.X).To(BeNumerically("~", goals[i].X, 1e-9), "row %d goal x", i)
		g.Expect(last.Y).To(BeNumerically("~", goals[i].Y, 1e-9), "row %d goal y", i)
		g.Expect(math.Sin(last.Heading)).To(BeNumerically("~", math.Sin(goals[i].Theta), 1e-9), "row %d goal heading", i)
		g.Expect(math.Cos(last.Heading)).To(BeNumerically("~", math.Cos(goals[i].Theta), 1e-9), "row %d goal heading", i)
		g.Expect(last.Speed).To(BeNumerically("~", goals[i].V, 1e-9), "row %d goal speed", i)
	}
}

func TestEvaluateBeforeFit(t *testing.T) {
	g := NewWithT(t)

	sp, err := New(0.05, 1)
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(sp.Fitted()).To(BeFalse())

	_, err = sp.Evaluate(timeGrid(1, 10, 0.05), true)
	g.Expect(err).To(MatchError(ErrNotFitted))
}

func TestRefitReplacesCoefficients(t *testing.T) {
	g := NewWithT(t)

	sp, _ := New(0.05, 1)
	start := []PoseSpeed{{V: 0.5}}
	g.Expect(sp.Fit(start, []PoseSpeed{{X: 5, Y: 0, V: 0.5}}, nil)).To(Succeed())
	g.Expect(sp.Fit(start, []PoseSpeed{{X: 0, Y: 3, Theta: math.Pi / 2, V: 0.5}}, nil)).To(Succeed())

	tr, err := sp.Evaluate(timeGrid(1, 51, 0.05), false)
	g.Expect(err).NotTo(HaveOccurred())

	// Only the second goal should be visible.
	last := tr.At(0, tr.K-1)
	g.Expect(last.X).To(BeNumerically("~", 0, 1e-9))
	g.Expect(last.Y).To(BeNumerically("~", 3, 1e-9))
}

func TestFactorValidation(t *testing.T) {
	g := NewWithT(t)

	sp, _ := New(0.05, 1)
	start := []PoseSpeed{{V: 0.1}}

	// Explicit non-positive factor.
	err := sp.Fit(start, []PoseSpeed{{X: 1, V: 0.1}}, []Factors{{F1: 0, F2: 1}})
	g.Expect(err).To(MatchError(ErrBadFactor))

	// Heuristic factor degenerates for a goal at the origin.
	err = sp.Fit(start, []PoseSpeed{{X: 0, Y: 0, V: 0.1}}, nil)
	g.Expect(err).To(MatchError(ErrBadFactor))

	// Explicit factors rescue the origin goal.
	err = sp.Fit(start, []PoseSpeed{{X: 0, Y: 0, V: 0.1}}, []Factors{{F1: 1, F2: 1}})
	g.Expect(err).To(Succeed())
}

func TestZeroSpeedAngularPolicy(t *testing.T) {
	g := NewWithT(t)

	// Both boundary speeds zero: the path momentarily has zero true
	// speed and the turn rate is defined to be zero, never NaN.
	sp, _ := New(0.05, 1)
	g.Expect(sp.Fit([]PoseSpeed{{V: 0}}, []PoseSpeed{{X: 3, Y: 1, Theta: 0.5, V: 0}}, nil)).To(Succeed())

	tr, err := sp.Evaluate(timeGrid(1, 60, 0.05), true)
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(tr.IsValid()).To(BeTrue(), "no NaN/Inf anywhere")

	g.Expect(tr.At(0, 0).Speed).To(BeNumerically("~", 0, 1e-9))
	g.Expect(tr.At(0, 0).AngularSpeed).To(BeZero())
	g.Expect(tr.At(0, tr.K-1).AngularSpeed).To(BeZero())
}

func TestTimeNormalizationPerRow(t *testing.T) {
	g := NewWithT(t)

	// Two rows with the same boundary conditions but different absolute
	// horizons must trace identical paths.
	starts := []PoseSpeed{{V: 0.2}, {V: 0.2}}
	goals := []PoseSpeed{{X: 3, Y: 2, Theta: 0.9, V: 0.4}, {X: 3, Y: 2, Theta: 0.9, V: 0.4}}

	sp, _ := New(0.05, 2)
	g.Expect(sp.Fit(starts, goals, nil)).To(Succeed())

	k := 40
	times := [][]float64{make([]float64, k), make([]float64, k)}
	for j := 0; j < k; j++ {
		times[0][j] = float64(j) * 0.05 // 2 s horizon
		times[1][j] = float64(j) * 0.5  // 20 s horizon
	}

	tr, err := sp.Evaluate(times, true)
	g.Expect(err).NotTo(HaveOccurred())

	for j := 0; j < k; j++ {
		a, b := tr.At(0, j), tr.At(1, j)
		g.Expect(a.X).To(BeNumerically("~", b.X, 1e-9))
		g.Expect(a.Y).To(BeNumerically("~", b.Y, 1e-9))
		g.Expect(a.Speed).To(BeNumerically("~", b.Speed, 1e-9))
	}
}

func TestEvaluateShapeErrors(t *testing.T) {
	g := NewWithT(t)

	sp, _ := New(0.05, 2)
	starts := []PoseSpeed{{V: 0.2}, {V: 0.2}}
	goals := []PoseSpeed{{X: 1, V: 0.2}, {X: 2, V: 0.2}}
	g.Expect(sp.Fit(starts, goals, nil)).To(Succeed())

	_, err := sp.Evaluate(timeGrid(1, 10, 0.05), true)
	g.Expect(err).To(MatchError(traj.ErrShapeMismatch))

	_, err = sp.Evaluate([][]float64{make([]float64, 10), make([]float64, 9)}, true)
	g.Expect(err).To(MatchError(traj.ErrShapeMismatch))

	// All-zero time row has no positive maximum to normalize by.
	_, err = sp.Evaluate([][]float64{make([]float64, 10), make([]float64, 10)}, true)
	g.Expect(err).To(MatchError(ErrBadTimes))
}

func TestFitShapeErrors(t *testing.T) {
	g := NewWithT(t)

	sp, _ := New(0.05, 2)
	err := sp.Fit([]PoseSpeed{{V: 0.2}}, []PoseSpeed{{X: 1, V: 0.2}, {X: 2, V: 0.2}}, nil)
	g.Expect(err).To(MatchError(traj.ErrShapeMismatch))

	err = sp.Fit(
		[]PoseSpeed{{V: 0.2}, {V: 0.2}},
		[]PoseSpeed{{X: 1, V: 0.2}, {X: 2, V: 0.2}},
		[]Factors{{F1: 1, F2: 1}},
	)
	g.Expect(err).To(MatchError(traj.ErrShapeMismatch))
}
