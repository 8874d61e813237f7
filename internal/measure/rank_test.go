package measure

import (
	"math"
	"testing"
)

func speedNode(tag string, mbps float64, median float64) NodeResult {
	s := speedSuccess(mbps)
	return NodeResult{
		Tag:     tag,
		Latency: LatencyResult{Kind: LatencyKindSuccess, Median: median},
		Speed:   &s,
	}
}

func failedSpeedNode(tag string, median float64) NodeResult {
	s := speedFailure("timeout")
	return NodeResult{
		Tag:     tag,
		Latency: LatencyResult{Kind: LatencyKindSuccess, Median: median},
		Speed:   &s,
	}
}

func latencyNode(tag string, median float64) NodeResult {
	return NodeResult{Tag: tag, Latency: LatencyResult{Kind: LatencyKindSuccess, Median: median}}
}

func tags(results []NodeResult) []string {
	out := make([]string, len(results))
	for i, r := range results {
		out[i] = r.Tag
	}
	return out
}

func assertOrder(t *testing.T, results []NodeResult, want ...string) {
	t.Helper()
	got := tags(results)
	if len(got) != len(want) {
		t.Fatalf("result count = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("order = %v, want %v", got, want)
		}
	}
}

func TestRankBySpeed(t *testing.T) {
	results := []NodeResult{
		speedNode("slow", 10.0, 5.0),
		failedSpeedNode("broken", 8.0),
		speedNode("fast", 50.0, 200.0),
	}
	Rank(results, true)
	// Successful throughput always outranks failed throughput, regardless of
	// latency.
	assertOrder(t, results, "fast", "slow", "broken")
}

func TestRankSpeedFallsBackToLatency(t *testing.T) {
	results := []NodeResult{
		failedSpeedNode("laggy", 120.0),
		{Tag: "dead", Latency: LatencyResult{Kind: LatencyKindAllFailed}},
		failedSpeedNode("snappy", 30.0),
		speedNode("ok", 25.0, 300.0),
	}
	Rank(results, true)
	assertOrder(t, results, "ok", "snappy", "laggy", "dead")
}

func TestRankSpeedAbsentSpeedRanksWithFailures(t *testing.T) {
	// A node skipped for throughput (session error) has nil Speed; it must
	// never outrank a node with a successful download.
	results := []NodeResult{
		{Tag: "no-session", Latency: sessionError("boom")},
		speedNode("good", 1.0, 900.0),
	}
	Rank(results, true)
	assertOrder(t, results, "good", "no-session")
}

func TestRankByLatency(t *testing.T) {
	results := []NodeResult{
		{Tag: "failed", Latency: LatencyResult{Kind: LatencyKindAllFailed}},
		latencyNode("b", 40.0),
		latencyNode("a", 15.0),
		{Tag: "unstable", Latency: LatencyResult{Kind: LatencyKindUnstable, ValidCount: 2, TotalCount: 4}},
	}
	Rank(results, false)
	got := tags(results)
	if got[0] != "a" || got[1] != "b" {
		t.Fatalf("successful nodes out of order: %v", got)
	}
	// Non-Success results keep their input order under the stable sort.
	if got[2] != "failed" || got[3] != "unstable" {
		t.Fatalf("non-success tail reordered: %v", got)
	}
}

func TestRankNaNDoesNotPanic(t *testing.T) {
	results := []NodeResult{
		speedNode("nan", math.NaN(), math.NaN()),
		speedNode("real", 20.0, 10.0),
		latencyNode("nan-latency", math.NaN()),
	}
	Rank(results, true)
	Rank(results, false)
	if len(results) != 3 {
		t.Fatalf("results lost during NaN sort: %d", len(results))
	}
}

func TestRankStableForEqualNodes(t *testing.T) {
	results := []NodeResult{
		{Tag: "x", Latency: LatencyResult{Kind: LatencyKindAllFailed}},
		{Tag: "y", Latency: LatencyResult{Kind: LatencyKindAllFailed}},
		{Tag: "z", Latency: LatencyResult{Kind: LatencyKindAllFailed}},
	}
	Rank(results, false)
	assertOrder(t, results, "x", "y", "z")
}
