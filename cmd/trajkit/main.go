package main

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"text/tabwriter"

	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"
	"gonum.org/v1/gonum/mat"

	"github.com/navlab/trajkit/internal/config"
	"github.com/navlab/trajkit/internal/dubins"
	"github.com/navlab/trajkit/internal/spline"
	"github.com/navlab/trajkit/internal/traj"
	"github.com/navlab/trajkit/internal/tui"
)

var (
	model      string
	dt         float64
	steps      int
	v          float64
	w          float64
	theta      float64
	goalX      float64
	goalY      float64
	goalTheta  float64
	goalV      float64
	startV     float64
	f1         float64
	f2         float64
	csvPath    string
	graph      bool
	configFile string
	preset     string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "trajkit",
		Short: "batched vehicle dynamics and spline trajectory toolkit",
	}

	rolloutCmd := &cobra.Command{
		Use:   "rollout",
		Short: "roll out a constant-control trajectory",
		RunE:  runRollout,
	}
	addModelFlags(rolloutCmd)
	rolloutCmd.Flags().Float64Var(&v, "v", 0.4, "commanded linear speed")
	rolloutCmd.Flags().Float64Var(&w, "w", 0.0, "commanded angular speed")
	rolloutCmd.Flags().StringVar(&csvPath, "csv", "", "write trajectory to csv file")
	rolloutCmd.Flags().BoolVar(&graph, "graph", false, "plot speed profile in terminal")
	rolloutCmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	rolloutCmd.Flags().StringVar(&preset, "preset", "", "use preset configuration")

	splineCmd := &cobra.Command{
		Use:   "spline",
		Short: "fit a start-to-goal spline and evaluate it",
		RunE:  runSpline,
	}
	splineCmd.Flags().Float64Var(&dt, "dt", 0.05, "timestep")
	splineCmd.Flags().IntVar(&steps, "steps", 100, "number of samples")
	splineCmd.Flags().Float64Var(&startV, "start-v", 0.3, "start speed")
	splineCmd.Flags().Float64Var(&goalX, "goal-x", 4.0, "goal x")
	splineCmd.Flags().Float64Var(&goalY, "goal-y", 2.0, "goal y")
	splineCmd.Flags().Float64Var(&goalTheta, "goal-theta", 0.0, "goal heading")
	splineCmd.Flags().Float64Var(&goalV, "goal-v", 0.3, "goal speed")
	splineCmd.Flags().Float64Var(&f1, "f1", 0, "start shaping factor (0 = goal-distance heuristic)")
	splineCmd.Flags().Float64Var(&f2, "f2", 0, "goal shaping factor (0 = goal-distance heuristic)")
	splineCmd.Flags().StringVar(&csvPath, "csv", "", "write trajectory to csv file")
	splineCmd.Flags().BoolVar(&graph, "graph", false, "plot speed and turn-rate profiles in terminal")

	jacobianCmd := &cobra.Command{
		Use:   "jacobian",
		Short: "print the state and control Jacobians at a single state",
		RunE:  runJacobian,
	}
	addModelFlags(jacobianCmd)
	jacobianCmd.Flags().Float64Var(&theta, "theta", 0.0, "heading")
	jacobianCmd.Flags().Float64Var(&v, "v", 0.4, "commanded linear speed")
	jacobianCmd.Flags().Float64Var(&w, "w", 0.2, "commanded angular speed")

	liveCmd := &cobra.Command{
		Use:   "live",
		Short: "replay a rollout in the terminal",
		RunE:  runLive,
	}
	addModelFlags(liveCmd)
	liveCmd.Flags().Float64Var(&v, "v", 0.4, "commanded linear speed")
	liveCmd.Flags().Float64Var(&w, "w", 0.3, "commanded angular speed")
	liveCmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	liveCmd.Flags().StringVar(&preset, "preset", "", "use preset configuration")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list rollout presets",
		RunE:  listPresets,
	}

	rootCmd.AddCommand(rolloutCmd, splineCmd, jacobianCmd, liveCmd, presetsCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func addModelFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&model, "model", "saturated", "dynamics model (car, saturated)")
	cmd.Flags().Float64Var(&dt, "dt", 0.05, "timestep")
	cmd.Flags().IntVar(&steps, "steps", 100, "number of steps")
}

func resolveConfig() (*config.Config, error) {
	cfg := config.DefaultConfig()
	switch {
	case configFile != "":
		return config.Load(configFile)
	case preset != "":
		cfg = config.GetPreset(model, preset)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset %q for model %q", preset, model)
		}
		return cfg, nil
	}
	cfg.Model = model
	cfg.Dt = dt
	cfg.Steps = steps
	cfg.Control.V = v
	cfg.Control.W = w
	return cfg, nil
}

// rollout applies a constant command from the origin pose and assembles
// the visited states into a trajectory.
func rollout(cfg *config.Config) (*traj.Trajectory, error) {
	m, err := cfg.NewModel()
	if err != nil {
		return nil, err
	}

	states := dubins.NewStateBatch(1, cfg.Steps+1)
	controls := dubins.NewControlBatch(1, cfg.Steps)
	cur := dubins.NewStateBatch(1, 1)
	for j := 0; j < cfg.Steps; j++ {
		controls.V[j] = cfg.Control.V
		controls.W[j] = cfg.Control.W
		step := dubins.NewControlBatch(1, 1)
		step.V[0], step.W[0] = cfg.Control.V, cfg.Control.W
		next, err := m.Simulate(cur, step)
		if err != nil {
			return nil, err
		}
		states.X[j+1], states.Y[j+1], states.Theta[j+1] = next.X[0], next.Y[0], next.Theta[0]
		cur = next
	}
	return m.AssembleTrajectory(states, controls, dubins.PadZero)
}

func runRollout(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig()
	if err != nil {
		return err
	}
	t, err := rollout(cfg)
	if err != nil {
		return err
	}

	last := t.At(0, t.K-1)
	fmt.Printf("model=%s dt=%.3f steps=%d\n", cfg.Model, cfg.Dt, cfg.Steps)
	fmt.Printf("final pose: x=%.3f y=%.3f heading=%.3f\n", last.X, last.Y, last.Heading)

	if csvPath != "" {
		if err := writeCSV(csvPath, t); err != nil {
			return err
		}
		fmt.Printf("wrote %s\n", csvPath)
	}
	if graph {
		lo, hi := t.Row(0)
		fmt.Println(asciigraph.Plot(t.Speed[lo:hi], asciigraph.Height(10), asciigraph.Caption("speed [m/s]")))
	}
	return nil
}

func runSpline(cmd *cobra.Command, args []string) error {
	if steps < 2 {
		return fmt.Errorf("need at least 2 samples, got %d", steps)
	}
	sp, err := spline.New(dt, 1)
	if err != nil {
		return err
	}

	start := []spline.PoseSpeed{{V: startV}}
	goal := []spline.PoseSpeed{{X: goalX, Y: goalY, Theta: goalTheta, V: goalV}}
	var factors []spline.Factors
	if f1 > 0 || f2 > 0 {
		factors = []spline.Factors{{F1: f1, F2: f2}}
	}
	if err := sp.Fit(start, goal, factors); err != nil {
		return err
	}

	times := make([]float64, steps)
	for j := range times {
		times[j] = float64(j) * dt
	}
	t, err := sp.Evaluate([][]float64{times}, true)
	if err != nil {
		return err
	}

	last := t.At(0, t.K-1)
	fmt.Printf("goal: x=%.3f y=%.3f heading=%.3f v=%.3f\n", goalX, goalY, goalTheta, goalV)
	fmt.Printf("spline end: x=%.3f y=%.3f heading=%.3f v=%.3f\n", last.X, last.Y, last.Heading, last.Speed)

	if csvPath != "" {
		if err := writeCSV(csvPath, t); err != nil {
			return err
		}
		fmt.Printf("wrote %s\n", csvPath)
	}
	if graph {
		lo, hi := t.Row(0)
		fmt.Println(asciigraph.Plot(t.Speed[lo:hi], asciigraph.Height(10), asciigraph.Caption("speed")))
		fmt.Println(asciigraph.Plot(t.AngularSpeed[lo:hi], asciigraph.Height(10), asciigraph.Caption("angular speed")))
	}
	return nil
}

func runJacobian(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig()
	if err != nil {
		return err
	}
	m, err := cfg.NewModel()
	if err != nil {
		return err
	}

	states := dubins.NewStateBatch(1, 1)
	states.Theta[0] = theta
	controls := dubins.NewControlBatch(1, 1)
	controls.V[0], controls.W[0] = v, w

	t, err := m.AssembleTrajectory(states, controls, dubins.PadNone)
	if err != nil {
		return err
	}
	// Jacobians evaluate at the raw command, so restore it in case the
	// assembled record stored a clipped value.
	t.Speed[0], t.AngularSpeed[0] = v, w

	a, err := m.JacX(t)
	if err != nil {
		return err
	}
	b, err := m.JacU(t)
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "state\tx=0 y=0 heading=%g\n", theta)
	fmt.Fprintf(tw, "control\tv=%g w=%g\n", v, w)
	tw.Flush()
	fmt.Printf("\nA = d(next state)/d(state):\n%v\n", mat.Formatted(a.At(0, 0), mat.Prefix("")))
	fmt.Printf("\nB = d(next state)/d(control):\n%v\n", mat.Formatted(b.At(0, 0), mat.Prefix("")))
	return nil
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig()
	if err != nil {
		return err
	}
	t, err := rollout(cfg)
	if err != nil {
		return err
	}
	return tui.Run(t, 0)
}

func listPresets(cmd *cobra.Command, args []string) error {
	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "MODEL\tPRESET\tDT\tSTEPS\tV\tW")
	for modelName, presets := range config.Presets {
		for name, cfg := range presets {
			fmt.Fprintf(tw, "%s\t%s\t%g\t%d\t%g\t%g\n", modelName, name, cfg.Dt, cfg.Steps, cfg.Control.V, cfg.Control.W)
		}
	}
	return tw.Flush()
}

func writeCSV(path string, t *traj.Trajectory) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	cw := csv.NewWriter(f)
	defer cw.Flush()

	if err := cw.Write([]string{"row", "step", "t", "x", "y", "heading", "speed", "angular_speed"}); err != nil {
		return err
	}
	for i := 0; i < t.N; i++ {
		for j := 0; j < t.K; j++ {
			s := t.At(i, j)
			rec := []string{
				strconv.Itoa(i), strconv.Itoa(j),
				fmt.Sprintf("%.4f", float64(j)*t.Dt),
				fmt.Sprintf("%.6f", s.X), fmt.Sprintf("%.6f", s.Y),
				fmt.Sprintf("%.6f", s.Heading), fmt.Sprintf("%.6f", s.Speed),
				fmt.Sprintf("%.6f", s.AngularSpeed),
			}
			if err := cw.Write(rec); err != nil {
				return err
			}
		}
	}
	return nil
}
