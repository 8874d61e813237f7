package measure

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog"

	pkgerrors "proxyrank/pkg/errors"
)

const (
	defaultTraceURL    = "https://www.cloudflare.com/cdn-cgi/trace"
	defaultDownloadURL = "https://speed.cloudflare.com/__down?bytes=%d"

	latencyConnectTimeout = 5 * time.Second
	latencyRequestTimeout = 10 * time.Second

	speedConnectTimeout = 10 * time.Second
	speedRequestTimeout = 60 * time.Second
	speedOverallTimeout = 120 * time.Second

	// MaxDownloadMB is the largest supported download size; Cloudflare's
	// endpoint caps out at 1 GB.
	MaxDownloadMB = 1024
)

// Attempt is the outcome of one timed latency round trip: either a duration
// in milliseconds or a failure with a short cause.
type Attempt struct {
	Millis float64
	OK     bool
	Reason string
}

// Sampler issues timed HTTP round trips through one local SOCKS5 endpoint.
type Sampler interface {
	// ProbeLatency performs a discarded warm-up request followed by up to
	// attempts timed HEAD requests, stopping at the first failure. A non-nil
	// error means the client could not be constructed at all and no attempts
	// were made.
	ProbeLatency(ctx context.Context, port uint16, attempts int) ([]Attempt, error)

	// ProbeThroughput performs one timed bulk download of sizeMB megabytes.
	ProbeThroughput(ctx context.Context, port uint16, sizeMB uint) SpeedResult
}

// HTTPSampler probes through a SOCKS5 proxy at 127.0.0.1:<port>. The proxy
// performs the name resolution: Go's SOCKS5 client passes the target hostname
// to the proxy rather than resolving locally.
type HTTPSampler struct {
	// TraceURL responds quickly to a lightweight request; used only to time
	// round trips.
	TraceURL string
	// DownloadURL is a format string taking the requested byte count.
	DownloadURL string

	logger zerolog.Logger
}

// NewHTTPSampler creates a sampler against the default Cloudflare endpoints.
func NewHTTPSampler(logger zerolog.Logger) *HTTPSampler {
	return &HTTPSampler{
		TraceURL:    defaultTraceURL,
		DownloadURL: defaultDownloadURL,
		logger:      logger,
	}
}

// newClient builds a fresh HTTP client routed through the node's proxy.
// Clients are fully scoped to one probe and discarded afterwards; no
// connection state is shared across nodes.
func newClient(port uint16, connectTimeout, requestTimeout time.Duration) (*http.Client, error) {
	proxyURL, err := url.Parse(fmt.Sprintf("socks5://127.0.0.1:%d", port))
	if err != nil {
		return nil, fmt.Errorf("failed to create proxy: %w", err)
	}

	transport := &http.Transport{
		Proxy:       http.ProxyURL(proxyURL),
		DialContext: (&net.Dialer{Timeout: connectTimeout}).DialContext,
	}
	return &http.Client{
		Transport: transport,
		Timeout:   requestTimeout,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}, nil
}

func (s *HTTPSampler) ProbeLatency(ctx context.Context, port uint16, attempts int) ([]Attempt, error) {
	client, err := newClient(port, latencyConnectTimeout, latencyRequestTimeout)
	if err != nil {
		return nil, err
	}
	defer client.CloseIdleConnections()

	// Warm-up absorbs connection setup cost so the timed attempts measure
	// round trips over an established tunnel. Its outcome is discarded.
	s.head(ctx, client)

	out := make([]Attempt, 0, attempts)
	for i := 0; i < attempts; i++ {
		start := time.Now()
		status, err := s.head(ctx, client)
		elapsed := time.Since(start)

		switch {
		case err != nil:
			reason := fmt.Sprintf("error (%v)", err)
			if isTimeout(err) {
				reason = "timeout"
			}
			out = append(out, Attempt{Reason: reason})
			s.logger.Debug().Uint16("port", port).Int("attempt", i+1).Str("reason", reason).Msg("latency attempt failed")
		case status < 200 || status > 299:
			out = append(out, Attempt{Reason: fmt.Sprintf("HTTP error %d", status)})
			s.logger.Debug().Uint16("port", port).Int("attempt", i+1).Int("status", status).Msg("latency attempt rejected")
		default:
			ms := float64(elapsed.Microseconds()) / 1000.0
			out = append(out, Attempt{Millis: ms, OK: true})
			s.logger.Debug().Uint16("port", port).Int("attempt", i+1).Float64("ms", ms).Msg("latency attempt")
			continue
		}
		// Broken nodes fail fast rather than burning the whole budget.
		break
	}

	return out, nil
}

func (s *HTTPSampler) head(ctx context.Context, client *http.Client) (int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, s.TraceURL, nil)
	if err != nil {
		return 0, err
	}
	resp, err := client.Do(req)
	if err != nil {
		return 0, err
	}
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
	return resp.StatusCode, nil
}

func (s *HTTPSampler) ProbeThroughput(ctx context.Context, port uint16, sizeMB uint) SpeedResult {
	if sizeMB > MaxDownloadMB {
		return speedFailure(pkgerrors.ErrSizeTooLarge.Error())
	}

	client, err := newClient(port, speedConnectTimeout, speedRequestTimeout)
	if err != nil {
		return speedFailure(fmt.Sprintf("failed to create client: %v", err))
	}
	defer client.CloseIdleConnections()

	ctx, cancel := context.WithTimeout(ctx, speedOverallTimeout)
	defer cancel()

	target := fmt.Sprintf(s.DownloadURL, int64(sizeMB)*1024*1024)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return speedFailure(fmt.Sprintf("failed to create request: %v", err))
	}

	s.logger.Debug().Uint16("port", port).Uint("size_mb", sizeMB).Msg("starting download test")
	start := time.Now()

	resp, err := client.Do(req)
	if err != nil {
		if isTimeout(err) {
			return speedFailure("timeout")
		}
		return speedFailure(fmt.Sprintf("request error: %v", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return speedFailure(fmt.Sprintf("HTTP error: %s", resp.Status))
	}

	// The full body is buffered so the elapsed time covers the entire
	// transfer, streaming latency included.
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		if isTimeout(err) {
			return speedFailure("timeout")
		}
		return speedFailure(fmt.Sprintf("failed to read response: %v", err))
	}

	elapsed := time.Since(start)
	mbps := rateMbps(int64(len(body)), elapsed)

	s.logger.Debug().
		Uint16("port", port).
		Float64("mib", float64(len(body))/1024.0/1024.0).
		Float64("seconds", elapsed.Seconds()).
		Float64("mbps", mbps).
		Msg("download complete")

	return speedSuccess(mbps)
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}
