package measure

import "sort"

// Rank orders results in place for presentation.
//
// With throughput enabled the primary key is descending successful Mbps; any
// node with a successful download outranks every node without one, and among
// the rest nodes fall back to ascending latency median. Without throughput
// the single key is ascending latency median. Non-Success results sort below
// Success and are mutually unordered; the sort is stable so their input order
// survives. NaN comparisons come out false on both sides, which leaves the
// pair treated as equal rather than panicking.
func Rank(results []NodeResult, speedEnabled bool) {
	less := lessByLatency
	if speedEnabled {
		less = lessBySpeed
	}
	sort.SliceStable(results, func(i, j int) bool {
		return less(results[i], results[j])
	})
}

func lessBySpeed(a, b NodeResult) bool {
	aOK := a.Speed != nil && a.Speed.Kind == SpeedKindSuccess
	bOK := b.Speed != nil && b.Speed.Kind == SpeedKindSuccess
	if aOK && bOK {
		return a.Speed.Mbps > b.Speed.Mbps
	}
	if aOK != bOK {
		return aOK
	}
	return lessByLatency(a, b)
}

func lessByLatency(a, b NodeResult) bool {
	aOK := a.Latency.Kind == LatencyKindSuccess
	bOK := b.Latency.Kind == LatencyKindSuccess
	if aOK && bOK {
		return a.Latency.Median < b.Latency.Median
	}
	return aOK && !bOK
}
