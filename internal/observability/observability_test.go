package observability

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMetrics_IndependentRegistries(t *testing.T) {
	a := NewMetrics()
	b := NewMetrics()

	a.RecordsLoaded.Add(3)
	a.Warnings.WithLabelValues("missing_field").Inc()

	assert.Equal(t, float64(3), testutil.ToFloat64(a.RecordsLoaded))
	assert.Equal(t, float64(0), testutil.ToFloat64(b.RecordsLoaded))
	assert.Equal(t, float64(1), testutil.ToFloat64(a.Warnings.WithLabelValues("missing_field")))

	n, err := testutil.GatherAndCount(a.Registry(), "outbreak_report_records_loaded_total")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestPush(t *testing.T) {
	var gotPath, gotMethod string
	var body []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotMethod = r.Method
		body, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	m := NewMetrics()
	m.RecordsLoaded.Add(42)

	require.NoError(t, Push(context.Background(), srv.URL, "outbreaks.csv", m))
	assert.Equal(t, http.MethodPut, gotMethod)
	assert.Equal(t, "/metrics/job/outbreak_report/source/outbreaks.csv", gotPath)
	assert.NotEmpty(t, body)
}

func TestPush_GatewayError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	err := Push(context.Background(), srv.URL, "outbreaks.csv", NewMetrics())
	require.Error(t, err)
	assert.True(t, strings.HasPrefix(err.Error(), "push metrics:"))
}
