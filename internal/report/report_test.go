package report

import (
	"strings"
	"testing"

	"proxyrank/internal/measure"
)

func TestTableStringRanksAndColumns(t *testing.T) {
	results := []measure.NodeResult{
		{Tag: "fast", Port: 2080, Latency: measure.LatencyResult{
			Kind: measure.LatencyKindSuccess, Median: 15, Average: 16, Minimum: 12, Maximum: 22,
		}},
		{Tag: "dead", Port: 2081, Latency: measure.LatencyResult{Kind: measure.LatencyKindAllFailed}},
	}

	got := TableString(results, 0)

	fastLine := -1
	deadLine := -1
	for i, line := range strings.Split(got, "\n") {
		if strings.Contains(line, "fast") {
			fastLine = i
		}
		if strings.Contains(line, "dead") {
			deadLine = i
		}
	}
	if fastLine == -1 || deadLine == -1 {
		t.Fatalf("missing node rows in table:\n%s", got)
	}
	if fastLine > deadLine {
		t.Errorf("rows out of rank order:\n%s", got)
	}
	if !strings.Contains(got, "15.00") {
		t.Errorf("median column missing:\n%s", got)
	}
	if !strings.Contains(got, "All Failed") {
		t.Errorf("failure variant missing:\n%s", got)
	}
	if strings.Contains(got, "MBPS") {
		t.Errorf("speed column present in latency-only table:\n%s", got)
	}
}

func TestTableStringWithSpeed(t *testing.T) {
	speed := measure.SpeedResult{Kind: measure.SpeedKindSuccess, Mbps: 41.94304}
	results := []measure.NodeResult{
		{Tag: "n", Port: 2080, Latency: measure.LatencyResult{
			Kind: measure.LatencyKindSuccess, Median: 15, Average: 16, Minimum: 12, Maximum: 22,
		}, Speed: &speed},
	}

	got := TableString(results, 100)
	if !strings.Contains(got, "MBPS") {
		t.Errorf("speed header missing:\n%s", got)
	}
	if !strings.Contains(got, "41.94") {
		t.Errorf("speed value missing:\n%s", got)
	}
}
