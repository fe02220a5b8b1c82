package push

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maxdrift/promex/internal/resilience/retry"
	"github.com/maxdrift/promex/pkg/promex"
)

func testRegistry(t *testing.T) *promex.Registry {
	t.Helper()

	reg := promex.NewRegistry()
	c, err := reg.NewCounter(promex.Spec{
		Name: "pushed_events_total",
		Help: "Events delivered by the test suite.",
	})
	require.NoError(t, err)
	require.NoError(t, c.Add(3))
	return reg
}

func quickRetry() retry.Config {
	return retry.Config{
		MaxAttempts:    3,
		InitialDelay:   time.Millisecond,
		MaxDelay:       5 * time.Millisecond,
		Multiplier:     2.0,
		JitterFraction: 0,
	}
}

func TestNew_Validation(t *testing.T) {
	reg := promex.NewRegistry()

	tests := []struct {
		name    string
		cfg     Config
		wantErr error
	}{
		{
			name:    "missing URL",
			cfg:     Config{Job: "batch"},
			wantErr: ErrMissingURL,
		},
		{
			name:    "missing job",
			cfg:     Config{URL: "http://gateway:9091"},
			wantErr: ErrMissingJob,
		},
		{
			name:    "job with slash",
			cfg:     Config{URL: "http://gateway:9091", Job: "a/b"},
			wantErr: ErrInvalidGrouping,
		},
		{
			name: "grouping value with slash",
			cfg: Config{
				URL:      "http://gateway:9091",
				Job:      "batch",
				Grouping: map[string]string{"instance": "a/b"},
			},
			wantErr: ErrInvalidGrouping,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(reg.Gatherer(), tt.cfg)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestPusher_Push(t *testing.T) {
	reg := testRegistry(t)

	var gotMethod, gotPath, gotBody string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		b, _ := io.ReadAll(r.Body)
		gotBody = string(b)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	p, err := New(reg.Gatherer(), Config{
		URL:      srv.URL,
		Job:      "batch",
		Grouping: map[string]string{"instance": "worker-1"},
		Retry:    quickRetry(),
	})
	require.NoError(t, err)

	require.NoError(t, p.Push(context.Background()))

	assert.Equal(t, http.MethodPut, gotMethod)
	assert.Equal(t, "/metrics/job/batch/instance/worker-1", gotPath)
	assert.Contains(t, gotBody, "# TYPE pushed_events_total counter")
	assert.Contains(t, gotBody, "pushed_events_total 3")
}

func TestPusher_AddAndDelete(t *testing.T) {
	reg := testRegistry(t)

	var methods []string
	var bodyLens []int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		methods = append(methods, r.Method)
		b, _ := io.ReadAll(r.Body)
		bodyLens = append(bodyLens, len(b))
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	p, err := New(reg.Gatherer(), Config{URL: srv.URL, Job: "batch", Retry: quickRetry()})
	require.NoError(t, err)

	require.NoError(t, p.Add(context.Background()))
	require.NoError(t, p.Delete(context.Background()))

	require.Equal(t, []string{http.MethodPost, http.MethodDelete}, methods)
	assert.Greater(t, bodyLens[0], 0, "Add should carry a metrics body")
	assert.Equal(t, 0, bodyLens[1], "Delete should carry no body")
}

func TestPusher_RetriesServerErrors(t *testing.T) {
	reg := testRegistry(t)

	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	p, err := New(reg.Gatherer(), Config{URL: srv.URL, Job: "batch", Retry: quickRetry()})
	require.NoError(t, err)

	require.NoError(t, p.Push(context.Background()))
	assert.Equal(t, int32(3), calls.Load())
}

func TestPusher_ClientErrorNotRetried(t *testing.T) {
	reg := testRegistry(t)

	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, "bad label in body", http.StatusBadRequest)
	}))
	defer srv.Close()

	p, err := New(reg.Gatherer(), Config{URL: srv.URL, Job: "batch", Retry: quickRetry()})
	require.NoError(t, err)

	err = p.Push(context.Background())
	require.Error(t, err)

	var httpErr *retry.HTTPError
	require.True(t, errors.As(err, &httpErr))
	assert.Equal(t, http.StatusBadRequest, httpErr.StatusCode)
	assert.Equal(t, int32(1), calls.Load())
}

func TestPusher_ContextCanceled(t *testing.T) {
	reg := testRegistry(t)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	p, err := New(reg.Gatherer(), Config{URL: srv.URL, Job: "batch", Retry: quickRetry()})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err = p.Push(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestPusher_EndpointEscaping(t *testing.T) {
	reg := promex.NewRegistry()

	p, err := New(reg.Gatherer(), Config{
		URL:      "http://gateway:9091/",
		Job:      "nightly batch",
		Grouping: map[string]string{"zone": "eu west", "app": "promex"},
	})
	require.NoError(t, err)

	// Grouping labels are sorted so the path is stable.
	assert.Equal(t,
		"http://gateway:9091/metrics/job/nightly%20batch/app/promex/zone/eu%20west",
		p.endpoint())
}

func TestPusher_ObserverSeesOutcome(t *testing.T) {
	reg := testRegistry(t)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusBadRequest)
	}))
	defer srv.Close()

	var observed []error
	p, err := New(reg.Gatherer(), Config{
		URL:   srv.URL,
		Job:   "batch",
		Retry: quickRetry(),
		Observer: func(err error, elapsed time.Duration) {
			observed = append(observed, err)
		},
	})
	require.NoError(t, err)

	require.Error(t, p.Push(context.Background()))
	require.Len(t, observed, 1)
	assert.Error(t, observed[0])
}

func TestPusher_FreshSnapshotPerPush(t *testing.T) {
	reg := testRegistry(t)

	var bodies []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		bodies = append(bodies, string(b))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	p, err := New(reg.Gatherer(), Config{URL: srv.URL, Job: "batch", Retry: quickRetry()})
	require.NoError(t, err)

	require.NoError(t, p.Push(context.Background()))

	c, err := reg.Counter("pushed_events_total")
	require.NoError(t, err)
	require.NoError(t, c.Add(2))

	require.NoError(t, p.Push(context.Background()))

	require.Len(t, bodies, 2)
	assert.True(t, strings.Contains(bodies[0], "pushed_events_total 3"))
	assert.True(t, strings.Contains(bodies[1], "pushed_events_total 5"))
}
