package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/theirongolddev/ipcsim/internal/model"
	"github.com/theirongolddev/ipcsim/internal/series"
)

func history(category string, weight float64, changes ...float64) []model.Observation {
	out := make([]model.Observation, len(changes))
	for i, c := range changes {
		out[i] = model.Observation{
			Date:          model.AddMonths(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), i),
			Category:      category,
			Weight:        weight,
			MonthlyChange: model.Float(c),
		}
	}
	return out
}

func newTestService(t *testing.T, cfg Config) *Service {
	t.Helper()
	var obs []model.Observation
	obs = append(obs, history("A", 60, 1.0, 1.0, 1.0, 1.0)...)
	obs = append(obs, history("B", 40, -1.0, -1.0, -1.0, -1.0)...)
	obs = append(obs, history("C", 5, 0.3)...)
	return New(cfg, series.NewStore(obs), zerolog.Nop())
}

func get(t *testing.T, h http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func TestHealth(t *testing.T) {
	rec := get(t, newTestService(t, Config{}).Handler(), "/healthz")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok\n", rec.Body.String())
}

func TestCategories(t *testing.T) {
	rec := get(t, newTestService(t, Config{}).Handler(), "/v1/categories")
	require.Equal(t, http.StatusOK, rec.Code)

	var got []categoryView
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Len(t, got, 3)
	assert.Equal(t, "A", got[0].Category)
	assert.Equal(t, 4, got[0].Observations)
	assert.Equal(t, 60.0, got[0].CurrentWeight)
	assert.True(t, got[0].Projectable)

	assert.Equal(t, "C", got[2].Category)
	assert.False(t, got[2].Projectable)
	assert.Nil(t, got[2].StdDev)
	require.NotNil(t, got[2].MeanChange)
	assert.InDelta(t, 0.3, *got[2].MeanChange, 1e-12)
}

func TestProjection(t *testing.T) {
	s := newTestService(t, Config{})
	rec := get(t, s.Handler(), "/v1/projection?trials=500&periods=3&seed=2024")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	_, err := uuid.Parse(rec.Header().Get("X-Run-Id"))
	assert.NoError(t, err)

	var proj model.Projection
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &proj))
	assert.Equal(t, uint64(2024), proj.Params.Seed)
	require.Len(t, proj.Categories, 2)
	require.Len(t, proj.Skipped, 1)
	assert.Equal(t, "C", proj.Skipped[0].Category)
	require.Len(t, proj.Composite, 3)
	assert.InDelta(t, 100.63, proj.Composite[2].Median, 0.05)

	assert.Equal(t, 1.0, testutil.ToFloat64(s.metrics.projections.WithLabelValues(OutcomeOK)))
	assert.Equal(t, 1.0, testutil.ToFloat64(s.metrics.skipped))
	assert.Equal(t, 1, testutil.CollectAndCount(s.metrics.duration))
}

func TestProjection_SameSeedSameBody(t *testing.T) {
	h := newTestService(t, Config{}).Handler()
	a := get(t, h, "/v1/projection?trials=100&periods=2&seed=9&category=a")
	b := get(t, h, "/v1/projection?trials=100&periods=2&seed=9&category=a")
	require.Equal(t, http.StatusOK, a.Code)

	var pa, pb model.Projection
	require.NoError(t, json.Unmarshal(a.Body.Bytes(), &pa))
	require.NoError(t, json.Unmarshal(b.Body.Bytes(), &pb))
	require.Len(t, pa.Categories, 1)
	assert.Equal(t, pa.Categories, pb.Categories)
	assert.Equal(t, pa.Composite, pb.Composite)
}

func TestProjection_Defaults(t *testing.T) {
	h := newTestService(t, Config{Trials: 50, Periods: 4}).Handler()
	rec := get(t, h, "/v1/projection?seed=1")
	require.Equal(t, http.StatusOK, rec.Code)

	var proj model.Projection
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &proj))
	assert.Equal(t, 50, proj.Params.Trials)
	assert.Len(t, proj.Composite, 4)
}

func TestProjection_InvalidQuery(t *testing.T) {
	s := newTestService(t, Config{})
	h := s.Handler()

	cases := map[string]string{
		"trials=0":      "trials",
		"trials=abc":    "not an integer",
		"periods=121":   "periods",
		"trials=20001":  "lte",
		"seed=-1":       "seed",
		"floor=-150":    "floor",
		"floor=nothing": "not a number",
	}
	for query, want := range cases {
		rec := get(t, h, "/v1/projection?"+query)
		assert.Equal(t, http.StatusBadRequest, rec.Code, query)

		var body errorResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body), query)
		assert.Contains(t, body.Error, want, query)
	}
	assert.Equal(t, float64(len(cases)), testutil.ToFloat64(s.metrics.projections.WithLabelValues(OutcomeInvalid)))
	assert.Empty(t, s.recentRuns())
	assert.Equal(t, 20000, MaxTrials)
	assert.Equal(t, 120, MaxPeriods)
}

func TestProjection_CompositeErrorOutcome(t *testing.T) {
	// Only a zero-weight category remains after filtering.
	var obs []model.Observation
	obs = append(obs, history("Z", 0, 0.1, 0.2, 0.3)...)
	s := New(Config{}, series.NewStore(obs), zerolog.Nop())

	rec := get(t, s.Handler(), "/v1/projection?trials=20&periods=2&seed=3")
	require.Equal(t, http.StatusOK, rec.Code)

	var proj model.Projection
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &proj))
	assert.Len(t, proj.Categories, 1)
	assert.NotEmpty(t, proj.CompositeError)
	assert.Equal(t, 1.0, testutil.ToFloat64(s.metrics.projections.WithLabelValues(OutcomeCompositeError)))
}

func TestRunsRingBuffer(t *testing.T) {
	s := newTestService(t, Config{RunsBuffer: 2})
	h := s.Handler()
	for _, seed := range []string{"1", "2", "3"} {
		require.Equal(t, http.StatusOK, get(t, h, "/v1/projection?trials=10&periods=1&seed="+seed).Code)
	}

	rec := get(t, h, "/v1/runs")
	require.Equal(t, http.StatusOK, rec.Code)
	var runs []RunRecord
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &runs))
	require.Len(t, runs, 2)
	assert.Equal(t, uint64(2), runs[0].Params.Seed)
	assert.Equal(t, uint64(3), runs[1].Params.Seed)

	st := s.snapshotStatus()
	assert.Equal(t, int64(3), st.RunCount)
	assert.Equal(t, 3, st.Categories)
}

func TestMetricsEndpoint(t *testing.T) {
	h := newTestService(t, Config{}).Handler()
	get(t, h, "/v1/projection?trials=10&periods=1&seed=1")

	rec := get(t, h, "/metrics")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.True(t, strings.Contains(body, `ipcsim_projections_total{outcome="ok"} 1`), body)
	assert.Contains(t, body, "ipcsim_projection_duration_seconds_bucket")
	assert.Contains(t, body, "go_goroutines")
}

func TestRun_GracefulShutdown(t *testing.T) {
	s := newTestService(t, Config{Addr: "127.0.0.1:0"})
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()
	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}
