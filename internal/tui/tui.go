// Package tui provides the live run view: a spinner while nodes are probed,
// completed results as they arrive, and the ranked table once the run is done.
package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"proxyrank/internal/inventory"
	"proxyrank/internal/measure"
	"proxyrank/internal/report"
)

// Evaluation progress messages.

type nodeFinishedMsg struct {
	result  measure.NodeResult
	current int
	total   int
}

type runDoneMsg struct {
	results []measure.NodeResult
}

// Model is the BubbleTea model for a single run.
type Model struct {
	eval       *measure.Evaluator
	endpoints  []inventory.Endpoint
	downloadMB uint

	spinner   spinner.Model
	lines     []string
	completed int
	done      bool
	table     string

	// events carries progress out of the evaluation goroutine and into the
	// BubbleTea update loop.
	events chan tea.Msg
}

// NewModel creates the run model. The evaluation starts when BubbleTea calls
// Init.
func NewModel(eval *measure.Evaluator, endpoints []inventory.Endpoint, downloadMB uint) *Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = spinnerStyle

	return &Model{
		eval:       eval,
		endpoints:  endpoints,
		downloadMB: downloadMB,
		spinner:    s,
		events:     make(chan tea.Msg, 16),
	}
}

func (m *Model) Init() tea.Cmd {
	go m.run()
	return tea.Batch(m.spinner.Tick, m.nextEvent())
}

// run drives the evaluation off the UI goroutine.
func (m *Model) run() {
	results := m.eval.EvaluateAll(context.Background(), m.endpoints, func(result measure.NodeResult, current, total int) {
		m.events <- nodeFinishedMsg{result: result, current: current, total: total}
	})
	measure.Rank(results, m.eval.SpeedEnabled())
	m.events <- runDoneMsg{results: results}
}

func (m *Model) nextEvent() tea.Cmd {
	return func() tea.Msg {
		return <-m.events
	}
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		}

	case spinner.TickMsg:
		if m.done {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case nodeFinishedMsg:
		m.completed = msg.current
		m.lines = append(m.lines, resultLine(msg.result))
		return m, m.nextEvent()

	case runDoneMsg:
		m.done = true
		m.table = report.TableString(msg.results, m.downloadMB)
		return m, nil
	}

	return m, nil
}

func resultLine(result measure.NodeResult) string {
	var b strings.Builder
	switch result.Latency.Kind {
	case measure.LatencyKindSuccess:
		b.WriteString(okStyle.Render("✓"))
	case measure.LatencyKindUnstable:
		b.WriteString(warnStyle.Render("~"))
	default:
		b.WriteString(failStyle.Render("✗"))
	}
	fmt.Fprintf(&b, " %s (port %d): %s", result.Tag, result.Port, result.Latency)
	if result.Speed != nil {
		fmt.Fprintf(&b, " | %s", result.Speed)
	}
	return b.String()
}

func (m *Model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("proxyrank"))
	b.WriteString("\n")

	for _, line := range m.lines {
		b.WriteString("  " + line + "\n")
	}

	if !m.done {
		current := m.completed + 1
		if current > len(m.endpoints) {
			current = len(m.endpoints)
		}
		fmt.Fprintf(&b, "\n %s testing node %d/%d...\n", m.spinner.View(), current, len(m.endpoints))
		b.WriteString(helpStyle.Render("q: quit"))
		return b.String()
	}

	b.WriteString("\n")
	b.WriteString(m.table)
	b.WriteString(helpStyle.Render("q: quit"))
	return b.String()
}

// Run launches the live view and blocks until the user quits.
func Run(eval *measure.Evaluator, endpoints []inventory.Endpoint, downloadMB uint) error {
	p := tea.NewProgram(NewModel(eval, endpoints, downloadMB))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("tui error: %w", err)
	}
	return nil
}
