package measure

import (
	"math"
	"testing"
	"time"
)

func TestRateMbps(t *testing.T) {
	// 10 MiB in exactly 2 seconds.
	got := rateMbps(10485760, 2*time.Second)
	if math.Abs(got-41.94304) > 1e-9 {
		t.Errorf("rateMbps(10485760, 2s) = %v, want 41.94304", got)
	}
}

func TestRateMbpsMonotonic(t *testing.T) {
	base := rateMbps(1_000_000, time.Second)
	if doubled := rateMbps(2_000_000, time.Second); math.Abs(doubled-2*base) > 1e-9 {
		t.Errorf("doubling bytes at fixed time: got %v, want %v", doubled, 2*base)
	}
	if halved := rateMbps(1_000_000, 2*time.Second); math.Abs(halved-base/2) > 1e-9 {
		t.Errorf("doubling time at fixed bytes: got %v, want %v", halved, base/2)
	}
}

func TestSpeedResultString(t *testing.T) {
	if got := speedSuccess(41.94304).String(); got != "41.94 Mbps" {
		t.Errorf("String() = %q, want %q", got, "41.94 Mbps")
	}
	if got := speedFailure("timeout").String(); got != "Failed: timeout" {
		t.Errorf("String() = %q, want %q", got, "Failed: timeout")
	}
}
