// Package tui replays a computed trajectory in the terminal: the planar
// path on a braille canvas with a live stats panel. It is a pure
// consumer of trajectory records; all computation happens before Run.
package tui

import (
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/navlab/trajkit/internal/traj"
	"github.com/navlab/trajkit/internal/viz"
)

const (
	canvasWidth  = 60
	canvasHeight = 20
)

var (
	canvasStyle = lipgloss.NewStyle().Padding(1, 2)
	statsStyle  = lipgloss.NewStyle().Border(lipgloss.NormalBorder(), false, false, false, true).BorderForeground(lipgloss.Color("240")).Padding(1, 2).Width(36)
	headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("86")).Bold(true).MarginBottom(1)
	labelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Width(14)
	valueStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	helpStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("240")).MarginTop(2)
)

type TickMsg time.Time

// Model replays one batch row of a trajectory at its own dt per frame.
type Model struct {
	traj    *traj.Trajectory
	row     int
	idx     int
	playing bool
	canvas  *viz.Canvas
	vp      viz.Viewport
}

func NewModel(t *traj.Trajectory, row int) Model {
	lo, hi := t.Row(row)
	return Model{
		traj:    t,
		row:     row,
		playing: true,
		canvas:  viz.NewCanvas(canvasWidth, canvasHeight),
		vp:      viz.FitViewport(t.X[lo:hi], t.Y[lo:hi], 0.15),
	}
}

func (m Model) tick() tea.Cmd {
	return tea.Tick(time.Duration(m.traj.Dt*float64(time.Second)), func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (m Model) Init() tea.Cmd {
	return m.tick()
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			return m, tea.Quit
		case " ":
			m.playing = !m.playing
		case "r":
			m.idx = 0
			m.playing = true
		case "left":
			if m.idx > 0 {
				m.idx--
			}
		case "right":
			if m.idx < m.traj.K-1 {
				m.idx++
			}
		}
	case TickMsg:
		if m.playing && m.idx < m.traj.K-1 {
			m.idx++
		}
		return m, m.tick()
	}
	return m, nil
}

func (m Model) View() string {
	m.canvas.Clear()
	lo, _ := m.traj.Row(m.row)
	m.canvas.PlotPath(m.vp, m.traj.X[lo:lo+m.idx+1], m.traj.Y[lo:lo+m.idx+1])

	// Vehicle marker: a short heading tick at the current pose.
	s := m.traj.At(m.row, m.idx)
	px, py := m.canvas.Project(m.vp, s.X, s.Y)
	m.canvas.Set(px, py)

	stats := headerStyle.Render("trajkit live") + "\n" +
		statLine("t", fmt.Sprintf("%.2f s", float64(m.idx)*m.traj.Dt)) +
		statLine("step", fmt.Sprintf("%d / %d", m.idx+1, m.traj.K)) +
		statLine("x", fmt.Sprintf("%+.3f m", s.X)) +
		statLine("y", fmt.Sprintf("%+.3f m", s.Y)) +
		statLine("heading", fmt.Sprintf("%+.3f rad", s.Heading)) +
		statLine("speed", fmt.Sprintf("%+.3f m/s", s.Speed)) +
		statLine("angular", fmt.Sprintf("%+.3f rad/s", s.AngularSpeed))

	view := lipgloss.JoinHorizontal(lipgloss.Top,
		canvasStyle.Render(m.canvas.String()),
		statsStyle.Render(stats),
	)
	return view + helpStyle.Render("space pause · ←/→ scrub · r restart · q quit")
}

func statLine(label, value string) string {
	return labelStyle.Render(label) + valueStyle.Render(value) + "\n"
}

// Run replays a trajectory row until the user quits.
func Run(t *traj.Trajectory, row int) error {
	if row < 0 || row >= t.N {
		return fmt.Errorf("tui: row %d out of range [0, %d)", row, t.N)
	}
	_, err := tea.NewProgram(NewModel(t, row)).Run()
	return err
}
