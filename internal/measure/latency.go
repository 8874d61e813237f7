package measure

import (
	"fmt"
	"sort"
)

// minValidSamples is the floor below which latency statistics are considered
// meaningless: with fewer points the median and mean would mislead the
// ranking, so the node is reported Unstable instead.
const minValidSamples = 3

// LatencyKind discriminates the mutually exclusive latency outcomes.
type LatencyKind int

const (
	// LatencyKindSuccess carries median/average/minimum/maximum statistics.
	LatencyKindSuccess LatencyKind = iota
	// LatencyKindUnstable means some attempts succeeded, but fewer than
	// minValidSamples.
	LatencyKindUnstable
	// LatencyKindAllFailed means no attempt succeeded.
	LatencyKindAllFailed
	// LatencyKindSessionError means the proxy client could not even be
	// constructed. A configuration problem, not a network one.
	LatencyKindSessionError
)

// LatencyResult is the reduced outcome of one node's latency probe.
// Exactly the fields for the active Kind are meaningful.
type LatencyResult struct {
	Kind LatencyKind

	// Success statistics, in milliseconds, over successful attempts only.
	Median  float64
	Average float64
	Minimum float64
	Maximum float64

	// Unstable counters. TotalCount reflects attempts actually made, which
	// may be fewer than the configured budget because sampling stops at the
	// first failure.
	ValidCount int
	TotalCount int

	// SessionError cause.
	Reason string
}

func sessionError(reason string) LatencyResult {
	return LatencyResult{Kind: LatencyKindSessionError, Reason: reason}
}

func (r LatencyResult) String() string {
	switch r.Kind {
	case LatencyKindSuccess:
		return fmt.Sprintf("%.2f/%.2f/%.2f/%.2f", r.Median, r.Average, r.Minimum, r.Maximum)
	case LatencyKindUnstable:
		return fmt.Sprintf("Unstable (%d/%d)", r.ValidCount, r.TotalCount)
	case LatencyKindAllFailed:
		return "All Failed"
	case LatencyKindSessionError:
		return "Session Error: " + r.Reason
	}
	return "Unknown"
}

// ReduceLatency collapses an attempt sequence into a LatencyResult.
//
// The median is the lower median: for a sorted sample of length n it is the
// element at index n/2, with no interpolation for even n. Changing this would
// alter observable output.
func ReduceLatency(attempts []Attempt) LatencyResult {
	valid := make([]float64, 0, len(attempts))
	for _, a := range attempts {
		if a.OK {
			valid = append(valid, a.Millis)
		}
	}

	if len(valid) == 0 {
		return LatencyResult{Kind: LatencyKindAllFailed}
	}

	if len(valid) < minValidSamples {
		return LatencyResult{
			Kind:       LatencyKindUnstable,
			ValidCount: len(valid),
			TotalCount: len(attempts),
		}
	}

	sort.Float64s(valid)

	var sum float64
	for _, ms := range valid {
		sum += ms
	}

	return LatencyResult{
		Kind:    LatencyKindSuccess,
		Median:  valid[len(valid)/2],
		Average: sum / float64(len(valid)),
		Minimum: valid[0],
		Maximum: valid[len(valid)-1],
	}
}
