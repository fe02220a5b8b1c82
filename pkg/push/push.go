// Package push delivers metric snapshots to a Prometheus Pushgateway.
// It encodes the registry's current state in the text exposition format
// and sends it over HTTP, with retry, circuit breaking, and a rate cap
// protecting the gateway.
package push

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
	"golang.org/x/time/rate"

	"github.com/maxdrift/promex/internal/resilience/circuitbreaker"
	"github.com/maxdrift/promex/internal/resilience/retry"
)

var (
	// ErrMissingURL is returned when no gateway URL is configured.
	ErrMissingURL = errors.New("push: gateway URL is required")

	// ErrMissingJob is returned when no job name is configured.
	ErrMissingJob = errors.New("push: job name is required")

	// ErrInvalidGrouping is returned when a grouping label or value
	// cannot be placed in the gateway URL path.
	ErrInvalidGrouping = errors.New("push: invalid grouping label")
)

// Config holds the configuration for a Pusher.
type Config struct {
	// URL is the base URL of the Pushgateway, e.g. "http://gateway:9091".
	URL string

	// Job is the job name under which metrics are grouped.
	Job string

	// Grouping holds additional grouping labels appended to the URL path.
	Grouping map[string]string

	// Timeout is the per-request HTTP timeout.
	Timeout time.Duration

	// Retry configures the backoff for failed deliveries.
	Retry retry.Config

	// RateLimit caps deliveries per second. Zero disables the cap.
	RateLimit rate.Limit

	// Client overrides the HTTP client. Mostly useful in tests.
	Client *http.Client

	// Observer, when set, is called with the outcome and elapsed time
	// of every delivery. Used to feed self-metrics.
	Observer func(err error, elapsed time.Duration)
}

// Pusher sends gathered metrics to a Pushgateway.
type Pusher struct {
	url      string
	job      string
	grouping []groupingPair
	gatherer prometheus.Gatherer
	client   *http.Client
	breaker  *circuitbreaker.CircuitBreaker
	retryCfg retry.Config
	limiter  *rate.Limiter
	observer func(err error, elapsed time.Duration)
}

type groupingPair struct {
	name  string
	value string
}

// New creates a Pusher that delivers the gatherer's metrics according
// to cfg. The gatherer is re-gathered on every delivery, so each push
// carries a fresh snapshot.
func New(gatherer prometheus.Gatherer, cfg Config) (*Pusher, error) {
	if cfg.URL == "" {
		return nil, ErrMissingURL
	}
	if cfg.Job == "" {
		return nil, ErrMissingJob
	}
	if strings.Contains(cfg.Job, "/") {
		return nil, fmt.Errorf("%w: job %q contains '/'", ErrInvalidGrouping, cfg.Job)
	}

	grouping := make([]groupingPair, 0, len(cfg.Grouping))
	for name, value := range cfg.Grouping {
		if name == "" || strings.Contains(value, "/") {
			return nil, fmt.Errorf("%w: %q=%q", ErrInvalidGrouping, name, value)
		}
		grouping = append(grouping, groupingPair{name: name, value: value})
	}
	sort.Slice(grouping, func(i, j int) bool { return grouping[i].name < grouping[j].name })

	client := cfg.Client
	if client == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		client = &http.Client{Timeout: timeout}
	}

	retryCfg := cfg.Retry
	if retryCfg.MaxAttempts == 0 {
		retryCfg = retry.PushgatewayConfig()
	}

	var limiter *rate.Limiter
	if cfg.RateLimit > 0 {
		limiter = rate.NewLimiter(cfg.RateLimit, 1)
	}

	return &Pusher{
		url:      strings.TrimSuffix(cfg.URL, "/"),
		job:      cfg.Job,
		grouping: grouping,
		gatherer: gatherer,
		client:   client,
		breaker:  circuitbreaker.New(circuitbreaker.PushgatewayConfig()),
		retryCfg: retryCfg,
		limiter:  limiter,
		observer: cfg.Observer,
	}, nil
}

// Health reports whether the delivery path is accepting pushes, along
// with the circuit breaker name. It is false while the breaker is open.
func (p *Pusher) Health() (bool, string) {
	return !p.breaker.IsOpen(), p.breaker.Name()
}

// Push replaces all metrics for the configured job and grouping on the
// gateway with the current snapshot. It maps to an HTTP PUT.
func (p *Pusher) Push(ctx context.Context) error {
	return p.deliver(ctx, http.MethodPut)
}

// Add merges the current snapshot into the metrics already held by the
// gateway for this job and grouping. It maps to an HTTP POST.
func (p *Pusher) Add(ctx context.Context) error {
	return p.deliver(ctx, http.MethodPost)
}

// Delete removes all metrics for the configured job and grouping from
// the gateway. No metrics are gathered or sent.
func (p *Pusher) Delete(ctx context.Context) error {
	if err := p.wait(ctx); err != nil {
		return err
	}
	return retry.WithBackoff(ctx, p.retryCfg, func() error {
		_, err := p.breaker.Execute(func() (interface{}, error) {
			return nil, p.do(ctx, http.MethodDelete, nil)
		})
		return err
	})
}

func (p *Pusher) deliver(ctx context.Context, method string) (err error) {
	if p.observer != nil {
		start := time.Now()
		defer func() { p.observer(err, time.Since(start)) }()
	}

	if err := p.wait(ctx); err != nil {
		return err
	}
	return retry.WithBackoff(ctx, p.retryCfg, func() error {
		// Gather inside the retry loop so a retried delivery
		// carries the latest values, not a stale snapshot.
		body, err := p.encode()
		if err != nil {
			return err
		}
		_, err = p.breaker.Execute(func() (interface{}, error) {
			return nil, p.do(ctx, method, body)
		})
		return err
	})
}

func (p *Pusher) wait(ctx context.Context) error {
	if p.limiter == nil {
		return nil
	}
	if err := p.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("push: rate limit wait: %w", err)
	}
	return nil
}

func (p *Pusher) encode() ([]byte, error) {
	families, err := p.gatherer.Gather()
	if err != nil {
		return nil, fmt.Errorf("push: gather: %w", err)
	}

	var buf bytes.Buffer
	enc := expfmt.NewEncoder(&buf, expfmt.NewFormat(expfmt.TypeTextPlain))
	for _, mf := range families {
		if err := enc.Encode(mf); err != nil {
			return nil, fmt.Errorf("push: encode %s: %w", mf.GetName(), err)
		}
	}
	return buf.Bytes(), nil
}

func (p *Pusher) do(ctx context.Context, method string, body []byte) error {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, p.endpoint(), reader)
	if err != nil {
		return fmt.Errorf("push: build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", string(expfmt.NewFormat(expfmt.TypeTextPlain)))
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("push: %s %s: %w", method, p.endpoint(), err)
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil {
			slog.Warn("failed to close response body", slog.Any("error", cerr))
		}
	}()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	msg, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
	return &retry.HTTPError{
		StatusCode: resp.StatusCode,
		Message:    strings.TrimSpace(string(msg)),
	}
}

// endpoint builds the gateway URL path for this job and grouping:
// <base>/metrics/job/<job>[/<label>/<value>...].
func (p *Pusher) endpoint() string {
	var sb strings.Builder
	sb.WriteString(p.url)
	sb.WriteString("/metrics/job/")
	sb.WriteString(url.PathEscape(p.job))
	for _, g := range p.grouping {
		sb.WriteByte('/')
		sb.WriteString(url.PathEscape(g.name))
		sb.WriteByte('/')
		sb.WriteString(url.PathEscape(g.value))
	}
	return sb.String()
}
