package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/nuclab/mcell/internal/driver"
	"github.com/nuclab/mcell/internal/experiment"
)

const (
	graphWidth    = 64
	graphHeight   = 10
	tempStepK     = 25.0
	densityFactor = 1.05
)

var (
	headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("86")).Bold(true).MarginBottom(1)
	statsStyle  = lipgloss.NewStyle().Border(lipgloss.NormalBorder(), false, false, false, true).BorderForeground(lipgloss.Color("240")).Padding(0, 2)
	labelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Width(14)
	valueStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	phaseStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("205")).Bold(true)
	graphStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("49")).Padding(1, 0)
	helpStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("240")).MarginTop(1)
)

type batchMsg struct {
	update experiment.Update
	err    error
}

// Model is the live batch monitor. It steps the experiment one batch at
// a time and applies temperature and density edits between batches, so
// every edit lands on a batch boundary.
type Model struct {
	exp      *experiment.Experiment
	name     string
	running  bool
	inFlight bool
	done     bool
	err      error
	last     experiment.Update
	means    []float64
}

func NewModel(exp *experiment.Experiment) Model {
	return Model{
		exp:     exp,
		name:    exp.Model().Name,
		running: true,
		means:   make([]float64, 0, 128),
	}
}

func (m Model) stepCmd() tea.Cmd {
	return func() tea.Msg {
		u, err := m.exp.Step(context.Background())
		return batchMsg{update: u, err: err}
	}
}

func (m Model) Init() tea.Cmd {
	return m.stepCmd()
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ":
			m.running = !m.running
			if m.running && !m.inFlight && !m.done {
				m.inFlight = true
				return m, m.stepCmd()
			}
		case "t":
			m.adjustTemperature(tempStepK)
		case "T":
			m.adjustTemperature(-tempStepK)
		case "d":
			m.scaleDensity(densityFactor)
		case "D":
			m.scaleDensity(1 / densityFactor)
		}
	case batchMsg:
		m.inFlight = false
		if msg.err != nil {
			if errors.Is(msg.err, driver.ErrBatchPlanExhausted) {
				m.done = true
			} else {
				m.err = msg.err
				m.done = true
			}
			return m, nil
		}
		m.last = msg.update
		if mean, ok := trackMean(msg.update); ok {
			m.means = append(m.means, mean)
		}
		if msg.update.Total > 0 && msg.update.Batch >= msg.update.Total {
			m.done = true
			return m, nil
		}
		if m.running {
			m.inFlight = true
			return m, m.stepCmd()
		}
	}
	return m, nil
}

// adjustTemperature shifts the fuel cell temperature. Edits while a
// batch is in flight are legal at the driver level only between
// batches, so they are dropped here.
func (m *Model) adjustTemperature(delta float64) {
	if m.inFlight {
		return
	}
	drv := m.exp.Driver()
	cell := m.exp.Model().FuelCellID
	cur, err := drv.GetTemperature(cell)
	if err != nil {
		return
	}
	next := cur + delta
	if next < 1 {
		next = 1
	}
	drv.SetTemperature(cell, next)
}

func (m *Model) scaleDensity(factor float64) {
	if m.inFlight {
		return
	}
	drv := m.exp.Driver()
	mat := m.exp.Model().FuelMaterialID
	cur, err := drv.GetDensity(mat)
	if err != nil {
		return
	}
	drv.SetDensity(mat, cur.Value*factor, cur.Units)
}

func trackMean(u experiment.Update) (float64, bool) {
	if len(u.Track.Bins) == 0 || len(u.Track.Bins[0].Mean) == 0 {
		return 0, false
	}
	if u.Track.Samples == 0 {
		return 0, false
	}
	return u.Track.Bins[0].Mean[0], true
}

func (m Model) View() string {
	var b strings.Builder

	b.WriteString(headerStyle.Render(fmt.Sprintf("mcell live: %s", m.name)))
	b.WriteString("\n")
	b.WriteString(m.statsView())
	b.WriteString("\n")

	if len(m.means) >= 2 {
		graph := asciigraph.Plot(m.means,
			asciigraph.Width(graphWidth),
			asciigraph.Height(graphHeight),
			asciigraph.Caption(fmt.Sprintf("%s mean by batch", m.last.Track.Name)))
		b.WriteString(graphStyle.Render(graph))
		b.WriteString("\n")
	}

	if m.err != nil {
		b.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Render("error: " + m.err.Error()))
		b.WriteString("\n")
	}

	b.WriteString(helpStyle.Render("space pause/resume | t/T fuel temp +/- | d/D fuel density +/- | q quit"))
	b.WriteString("\n")
	return b.String()
}

func (m Model) statsView() string {
	drv := m.exp.Driver()
	model := m.exp.Model()

	status := "running"
	if m.done {
		status = "done"
	} else if !m.running {
		status = "paused"
	}

	var rows []string
	row := func(label, value string) {
		rows = append(rows, labelStyle.Render(label)+valueStyle.Render(value))
	}

	row("status", status)
	row("batch", fmt.Sprintf("%d / %d", m.last.Batch, m.last.Total))
	rows = append(rows, labelStyle.Render("phase")+phaseStyle.Render(m.last.Phase.String()))
	row("samples", fmt.Sprintf("%d", m.last.Track.Samples))

	if len(m.last.Track.Bins) > 0 && len(m.last.Track.Bins[0].Mean) > 0 {
		row("mean", fmt.Sprintf("%.6g ± %.3g",
			m.last.Track.Bins[0].Mean[0], m.last.Track.Bins[0].StdErrOfMean[0]))
	}

	if temp, err := drv.GetTemperature(model.FuelCellID); err == nil {
		row("fuel temp", fmt.Sprintf("%.1f K", temp))
	}
	if dens, err := drv.GetDensity(model.FuelMaterialID); err == nil {
		row("fuel density", fmt.Sprintf("%.5g %s", dens.Value, dens.Units))
	}

	return statsStyle.Render(strings.Join(rows, "\n"))
}

// Run drives the live monitor until the plan completes or the user
// quits. The driver is left initialized so the caller can finalize and
// read results.
func Run(exp *experiment.Experiment) error {
	p := tea.NewProgram(NewModel(exp))
	_, err := p.Run()
	return err
}
