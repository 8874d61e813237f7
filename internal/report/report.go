// Package report renders run progress and the final ranked table. It is pure
// presentation: the measurement core hands it an ordered NodeResult collection
// and it writes text, nothing else.
package report

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"text/tabwriter"

	"github.com/charmbracelet/lipgloss"

	"proxyrank/internal/measure"
)

var (
	colorGreen = lipgloss.AdaptiveColor{Light: "#04B575", Dark: "#04B575"}
	colorRed   = lipgloss.AdaptiveColor{Light: "#FF4672", Dark: "#FF4672"}
	colorAmber = lipgloss.AdaptiveColor{Light: "#FF8C00", Dark: "#FFA500"}

	okStyle   = lipgloss.NewStyle().Foreground(colorGreen)
	warnStyle = lipgloss.NewStyle().Foreground(colorAmber)
	failStyle = lipgloss.NewStyle().Foreground(colorRed)
)

// Renderer writes the run's textual output to a single destination. Progress
// may be reported from concurrent workers, so per-node blocks are serialized.
type Renderer struct {
	mu  sync.Mutex
	out io.Writer
}

// New creates a Renderer writing to out.
func New(out io.Writer) *Renderer {
	return &Renderer{out: out}
}

// RunHeader announces the run.
func (r *Renderer) RunHeader(nodeCount int, downloadMB uint) {
	if downloadMB > 0 {
		fmt.Fprintf(r.out, "Found %d socks nodes, testing sequentially (10 latency attempts + %d MB download each)\n", nodeCount, downloadMB)
	} else {
		fmt.Fprintf(r.out, "Found %d socks nodes, testing (10 latency attempts each)\n", nodeCount)
	}
	fmt.Fprintln(r.out, strings.Repeat("=", 80))
}

// Progress prints one node's outcome as it completes.
func (r *Renderer) Progress(result measure.NodeResult, current, total int) {
	r.mu.Lock()
	defer r.mu.Unlock()

	fmt.Fprintf(r.out, "[%d/%d] %s (port %d)\n", current, total, result.Tag, result.Port)
	fmt.Fprintf(r.out, "  latency: %s\n", styleLatency(result.Latency))
	if result.Speed != nil {
		fmt.Fprintf(r.out, "  speed:   %s\n", styleSpeed(*result.Speed))
	}
}

func styleLatency(l measure.LatencyResult) string {
	switch l.Kind {
	case measure.LatencyKindSuccess:
		return okStyle.Render(l.String() + " ms")
	case measure.LatencyKindUnstable:
		return warnStyle.Render(l.String())
	default:
		return failStyle.Render(l.String())
	}
}

func styleSpeed(s measure.SpeedResult) string {
	if s.Kind == measure.SpeedKindSuccess {
		return okStyle.Render(s.String())
	}
	return failStyle.Render(s.String())
}

// Table writes the final ranked table.
func (r *Renderer) Table(results []measure.NodeResult, downloadMB uint) {
	fmt.Fprintln(r.out, strings.Repeat("=", 80))
	fmt.Fprint(r.out, TableString(results, downloadMB))
	fmt.Fprintln(r.out, strings.Repeat("=", 80))
}

// TableString renders the ranked table to a string. The TUI reuses it for its
// final view.
func TableString(results []measure.NodeResult, downloadMB uint) string {
	var b strings.Builder
	w := tabwriter.NewWriter(&b, 0, 0, 2, ' ', 0)

	// Plain cells only: styled text would throw off tabwriter's column
	// width accounting.
	if downloadMB > 0 {
		fmt.Fprintln(w, "#\tPORT\tMED\tAVG\tMIN\tMAX\tMBPS\tTAG")
		fmt.Fprintln(w, "-\t----\t---\t---\t---\t---\t----\t---")
		for i, result := range results {
			med, avg, min, max := latencyColumns(result.Latency)
			fmt.Fprintf(w, "%d\t%d\t%s\t%s\t%s\t%s\t%s\t%s\n",
				i+1, result.Port, med, avg, min, max, speedColumn(result.Speed), result.Tag)
		}
	} else {
		fmt.Fprintln(w, "#\tPORT\tMED\tAVG\tMIN\tMAX\tTAG")
		fmt.Fprintln(w, "-\t----\t---\t---\t---\t---\t---")
		for i, result := range results {
			med, avg, min, max := latencyColumns(result.Latency)
			fmt.Fprintf(w, "%d\t%d\t%s\t%s\t%s\t%s\t%s\n",
				i+1, result.Port, med, avg, min, max, result.Tag)
		}
	}

	w.Flush()
	return b.String()
}

// latencyColumns splits a latency result into the four stat columns; variants
// without statistics collapse into the first column.
func latencyColumns(l measure.LatencyResult) (med, avg, min, max string) {
	if l.Kind == measure.LatencyKindSuccess {
		return fmt.Sprintf("%.2f", l.Median), fmt.Sprintf("%.2f", l.Average),
			fmt.Sprintf("%.2f", l.Minimum), fmt.Sprintf("%.2f", l.Maximum)
	}
	return l.String(), "-", "-", "-"
}

func speedColumn(s *measure.SpeedResult) string {
	if s == nil {
		return "-"
	}
	if s.Kind == measure.SpeedKindSuccess {
		return fmt.Sprintf("%.2f", s.Mbps)
	}
	reason := s.Reason
	if len(reason) > 16 {
		reason = reason[:16]
	}
	return reason
}

// Summary closes the run with totals.
func (r *Renderer) Summary(results []measure.NodeResult, downloadMB uint) {
	if downloadMB == 0 {
		fmt.Fprintf(r.out, "\nTested %d nodes (latency only)\n", len(results))
		return
	}

	successful := 0
	for _, result := range results {
		if result.Speed != nil && result.Speed.Kind == measure.SpeedKindSuccess {
			successful++
		}
	}
	fmt.Fprintf(r.out, "\nSummary:\n")
	fmt.Fprintf(r.out, "  nodes tested:   %d\n", len(results))
	fmt.Fprintf(r.out, "  speed ok:       %d\n", successful)
	fmt.Fprintf(r.out, "  speed failed:   %d\n", len(results)-successful)
	fmt.Fprintf(r.out, "  download size:  %d MB\n", downloadMB)
}
