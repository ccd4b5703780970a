// Package server exposes projections over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/theirongolddev/ipcsim/internal/model"
	"github.com/theirongolddev/ipcsim/internal/pipeline"
	"github.com/theirongolddev/ipcsim/internal/series"
)

// Config controls the server runtime behavior.
type Config struct {
	Addr     string
	DataFile string
	// Defaults for query parameters the client leaves out.
	Trials      int
	Periods     int
	Workers     int
	ChangeFloor *float64
	// RunsBuffer is how many recent runs /v1/runs keeps.
	RunsBuffer int
}

// RunRecord describes one projection served.
type RunRecord struct {
	ID         string        `json:"id"`
	At         time.Time     `json:"at"`
	Params     model.Params  `json:"params"`
	Duration   time.Duration `json:"duration_ns"`
	Outcome    string        `json:"outcome"`
	Categories int           `json:"categories"`
	Skipped    int           `json:"skipped"`
	Error      string        `json:"error,omitempty"`
}

// Status is served at /v1/status.
type Status struct {
	StartedAt    time.Time `json:"started_at"`
	DataFile     string    `json:"data_file"`
	Categories   int       `json:"categories"`
	Observations int       `json:"observations"`
	Oldest       time.Time `json:"oldest"`
	Newest       time.Time `json:"newest"`
	RunCount     int64     `json:"run_count"`
	LastRunAt    time.Time `json:"last_run_at,omitzero"`
	LastError    string    `json:"last_error,omitempty"`
}

// Service serves one loaded data set.
type Service struct {
	cfg     Config
	st      *series.Store
	log     zerolog.Logger
	metrics *Metrics

	mu        sync.RWMutex
	startedAt time.Time
	runCount  int64
	lastRunAt time.Time
	lastError string
	runs      []RunRecord
}

// New returns a service over st. Zero config fields get defaults.
func New(cfg Config, st *series.Store, log zerolog.Logger) *Service {
	if cfg.Addr == "" {
		cfg.Addr = "127.0.0.1:8377"
	}
	if cfg.Trials < 1 {
		cfg.Trials = 1000
	}
	if cfg.Periods < 1 {
		cfg.Periods = 12
	}
	if cfg.RunsBuffer < 1 {
		cfg.RunsBuffer = 100
	}
	return &Service{
		cfg:       cfg,
		st:        st,
		log:       log,
		metrics:   NewMetrics(),
		startedAt: time.Now(),
	}
}

// Metrics returns the service's collectors.
func (s *Service) Metrics() *Metrics {
	return s.metrics
}

// Handler builds the HTTP routes.
func (s *Service) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(requestLogger(s.log))

	r.Get("/healthz", s.handleHealth)
	r.Handle("/metrics", s.metrics.Handler())
	r.Route("/v1", func(r chi.Router) {
		r.Get("/status", s.handleStatus)
		r.Get("/categories", s.handleCategories)
		r.Get("/projection", s.handleProjection)
		r.Get("/runs", s.handleRuns)
	})
	return r
}

// Run serves HTTP until ctx is canceled, then shuts down gracefully.
func (s *Service) Run(ctx context.Context) error {
	server := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	}
}

// project runs one projection and records it.
func (s *Service) project(ctx context.Context, params model.Params) (*model.Projection, RunRecord, error) {
	start := time.Now()
	rec := RunRecord{ID: uuid.NewString(), At: start.UTC(), Params: params}
	log := s.log.With().Str("run_id", rec.ID).Logger()

	proj, err := pipeline.Run(ctx, s.st, params, pipeline.Options{Workers: s.cfg.Workers, Logger: &log})
	rec.Duration = time.Since(start)

	switch {
	case err != nil:
		rec.Outcome = OutcomeError
		rec.Error = err.Error()
	case proj.CompositeErr != nil:
		rec.Outcome = OutcomeCompositeError
		rec.Error = proj.CompositeError
	default:
		rec.Outcome = OutcomeOK
	}
	if proj != nil {
		rec.Categories = len(proj.Categories)
		rec.Skipped = len(proj.Skipped)
	}

	s.metrics.observeRun(rec)
	s.recordRun(rec)
	return proj, rec, err
}

func (s *Service) recordRun(rec RunRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.runCount++
	s.lastRunAt = rec.At
	s.lastError = rec.Error
	s.runs = append(s.runs, rec)
	if len(s.runs) > s.cfg.RunsBuffer {
		s.runs = s.runs[len(s.runs)-s.cfg.RunsBuffer:]
	}
}

func (s *Service) snapshotStatus() Status {
	oldest, newest := s.st.Span()

	s.mu.RLock()
	defer s.mu.RUnlock()
	return Status{
		StartedAt:    s.startedAt,
		DataFile:     s.cfg.DataFile,
		Categories:   len(s.st.Categories()),
		Observations: s.st.Len(),
		Oldest:       oldest,
		Newest:       newest,
		RunCount:     s.runCount,
		LastRunAt:    s.lastRunAt,
		LastError:    s.lastError,
	}
}

func (s *Service) recentRuns() []RunRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]RunRecord, len(s.runs))
	copy(out, s.runs)
	return out
}

func requestLogger(log zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)
			log.Info().
				Str("request_id", middleware.GetReqID(r.Context())).
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", ww.Status()).
				Int("bytes", ww.BytesWritten()).
				Dur("elapsed", time.Since(start)).
				Msg("request")
		})
	}
}
