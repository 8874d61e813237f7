package measure

import (
	"context"
	"sync"

	"github.com/rs/zerolog"
	"golang.org/x/sync/semaphore"

	"proxyrank/internal/inventory"
)

// defaultAttempts is the fixed latency budget per node.
const defaultAttempts = 10

// NodeResult is the complete, immutable outcome for one endpoint.
type NodeResult struct {
	Tag     string
	Port    uint16
	Latency LatencyResult

	// Speed is nil when throughput testing was not requested for the run,
	// which is different from a failed measurement.
	Speed *SpeedResult
}

// Options configure a run.
type Options struct {
	// Attempts is the latency budget per node. Defaults to 10.
	Attempts int
	// DownloadMB enables the throughput probe when non-zero.
	DownloadMB uint
	// Workers bounds latency-only parallelism. Ignored when DownloadMB is
	// set: concurrent downloads would contend for bandwidth and corrupt each
	// other's rate, so throughput runs are strictly sequential.
	Workers int64
}

// ProgressFunc is called as each node's evaluation completes.
type ProgressFunc func(result NodeResult, current, total int)

// Evaluator orchestrates the probes for a set of nodes.
type Evaluator struct {
	sampler Sampler
	opts    Options
	logger  zerolog.Logger
}

// NewEvaluator creates an Evaluator with normalized options.
func NewEvaluator(sampler Sampler, opts Options, logger zerolog.Logger) *Evaluator {
	if opts.Attempts <= 0 {
		opts.Attempts = defaultAttempts
	}
	if opts.Workers <= 0 || opts.DownloadMB > 0 {
		opts.Workers = 1
	}
	return &Evaluator{
		sampler: sampler,
		opts:    opts,
		logger:  logger,
	}
}

// SpeedEnabled reports whether this run includes throughput probes.
func (e *Evaluator) SpeedEnabled() bool { return e.opts.DownloadMB > 0 }

// EvaluateNode runs the latency probe and, when enabled, the throughput probe
// for a single endpoint. Every failure stays local to this node.
func (e *Evaluator) EvaluateNode(ctx context.Context, ep inventory.Endpoint) NodeResult {
	result := NodeResult{Tag: ep.Tag, Port: ep.Port}

	attempts, err := e.sampler.ProbeLatency(ctx, ep.Port, e.opts.Attempts)
	if err != nil {
		result.Latency = sessionError(err.Error())
	} else {
		result.Latency = ReduceLatency(attempts)
	}

	// A session error means the measurement setup itself is broken; a
	// throughput probe through the same client would be meaningless.
	if e.SpeedEnabled() && result.Latency.Kind != LatencyKindSessionError {
		speed := e.sampler.ProbeThroughput(ctx, ep.Port, e.opts.DownloadMB)
		result.Speed = &speed
	}

	e.logger.Info().
		Str("tag", ep.Tag).
		Uint16("port", ep.Port).
		Stringer("latency", result.Latency).
		Msg("node evaluated")

	return result
}

// EvaluateAll evaluates every endpoint and returns results in input order.
// Evaluation is strictly sequential unless throughput testing is disabled and
// Workers allows fan-out.
func (e *Evaluator) EvaluateAll(ctx context.Context, endpoints []inventory.Endpoint, progress ProgressFunc) []NodeResult {
	if e.opts.Workers <= 1 {
		return e.evaluateSequential(ctx, endpoints, progress)
	}
	return e.evaluateParallel(ctx, endpoints, progress)
}

func (e *Evaluator) evaluateSequential(ctx context.Context, endpoints []inventory.Endpoint, progress ProgressFunc) []NodeResult {
	results := make([]NodeResult, 0, len(endpoints))
	for i, ep := range endpoints {
		result := e.EvaluateNode(ctx, ep)
		results = append(results, result)
		if progress != nil {
			progress(result, i+1, len(endpoints))
		}
	}
	return results
}

func (e *Evaluator) evaluateParallel(ctx context.Context, endpoints []inventory.Endpoint, progress ProgressFunc) []NodeResult {
	results := make([]NodeResult, len(endpoints))
	var mu sync.Mutex
	var completed int

	sem := semaphore.NewWeighted(e.opts.Workers)
	var wg sync.WaitGroup

	for i, ep := range endpoints {
		wg.Add(1)
		go func(idx int, ep inventory.Endpoint) {
			defer wg.Done()

			if err := sem.Acquire(ctx, 1); err != nil {
				results[idx] = NodeResult{
					Tag:     ep.Tag,
					Port:    ep.Port,
					Latency: sessionError(err.Error()),
				}
				return
			}
			defer sem.Release(1)

			result := e.EvaluateNode(ctx, ep)
			results[idx] = result

			mu.Lock()
			completed++
			current := completed
			mu.Unlock()

			if progress != nil {
				progress(result, current, len(endpoints))
			}
		}(i, ep)
	}

	wg.Wait()
	return results
}
