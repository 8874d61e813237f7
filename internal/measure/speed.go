package measure

import (
	"fmt"
	"time"
)

// SpeedKind discriminates the throughput outcomes.
type SpeedKind int

const (
	SpeedKindSuccess SpeedKind = iota
	SpeedKindFailed
)

// SpeedResult is the outcome of one node's single-shot throughput probe.
type SpeedResult struct {
	Kind SpeedKind

	// Mbps is the measured download rate in decimal megabits per second.
	Mbps float64

	// Reason is a short diagnostic when the probe failed.
	Reason string
}

func speedSuccess(mbps float64) SpeedResult {
	return SpeedResult{Kind: SpeedKindSuccess, Mbps: mbps}
}

func speedFailure(reason string) SpeedResult {
	return SpeedResult{Kind: SpeedKindFailed, Reason: reason}
}

func (r SpeedResult) String() string {
	if r.Kind == SpeedKindSuccess {
		return fmt.Sprintf("%.2f Mbps", r.Mbps)
	}
	return "Failed: " + r.Reason
}

// rateMbps converts a transferred byte count and wall-clock duration into
// decimal megabits per second.
func rateMbps(bytes int64, elapsed time.Duration) float64 {
	return float64(bytes) * 8 / 1_000_000 / elapsed.Seconds()
}
