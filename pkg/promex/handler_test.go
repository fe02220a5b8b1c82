package promex

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/common/expfmt"
	"github.com/prometheus/common/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandlerServesExposition(t *testing.T) {
	reg := NewRegistry()
	s, err := reg.NewSummary(Spec{
		Name:   "http_request_duration_seconds",
		Help:   "Request duration",
		Labels: []string{"method"},
	})
	require.NoError(t, err)
	require.NoError(t, s.Observe(0.25, "GET"))

	srv := httptest.NewServer(reg.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	require.Equal(t, http.StatusOK, resp.StatusCode)

	parser := expfmt.NewTextParser(model.LegacyValidation)
	families, err := parser.TextToMetricFamilies(resp.Body)
	require.NoError(t, err)

	family, ok := families["http_request_duration_seconds"]
	require.True(t, ok)
	assert.Equal(t, "Request duration", family.GetHelp())
	require.Len(t, family.GetMetric(), 1)
	assert.Equal(t, uint64(1), family.GetMetric()[0].GetSummary().GetSampleCount())
}

func TestWriteText(t *testing.T) {
	reg := NewRegistry()
	c, err := reg.NewCounter(Spec{
		Name:        "pushes_total",
		Help:        "Total pushes",
		Labels:      []string{"status"},
		ConstLabels: map[string]string{"instance": "test"},
	})
	require.NoError(t, err)
	require.NoError(t, c.Add(7, "ok"))

	var buf bytes.Buffer
	require.NoError(t, reg.WriteText(&buf))

	out := buf.String()
	assert.Contains(t, out, "# HELP pushes_total Total pushes")
	assert.Contains(t, out, "# TYPE pushes_total counter")
	assert.True(t,
		strings.Contains(out, `pushes_total{instance="test",status="ok"} 7`) ||
			strings.Contains(out, `pushes_total{status="ok",instance="test"} 7`),
		"expected labeled sample in output, got:\n%s", out)
}

func TestWriteTextEmptyRegistry(t *testing.T) {
	reg := NewRegistry()

	var buf bytes.Buffer
	require.NoError(t, reg.WriteText(&buf))
	assert.Empty(t, buf.String())
}
