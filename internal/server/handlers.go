package server

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"

	"github.com/theirongolddev/ipcsim/internal/model"
	"github.com/theirongolddev/ipcsim/internal/pipeline"
)

// Query limits for /v1/projection.
const (
	MaxTrials  = 20000
	MaxPeriods = 120
)

type projectionQuery struct {
	Trials      int      `query:"trials" validate:"gte=1,lte=20000"`
	Periods     int      `query:"periods" validate:"gte=1,lte=120"`
	Seed        uint64   `query:"seed"`
	Category    string   `query:"category" validate:"max=200"`
	ChangeFloor *float64 `query:"floor" validate:"omitempty,gte=-100"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		if name := f.Tag.Get("query"); name != "" {
			return name
		}
		return f.Name
	})
	return v
}

type errorResponse struct {
	Error string `json:"error"`
}

type categoryView struct {
	Category      string    `json:"category"`
	Observations  int       `json:"observations"`
	WithChange    int       `json:"with_change"`
	CurrentWeight float64   `json:"current_weight"`
	First         time.Time `json:"first"`
	Last          time.Time `json:"last"`
	MeanChange    *float64  `json:"mean_change"`
	StdDev        *float64  `json:"stddev"`
	Projectable   bool      `json:"projectable"`
}

func (s *Service) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok\n"))
}

func (s *Service) handleStatus(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, s.snapshotStatus())
}

func (s *Service) handleRuns(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, s.recentRuns())
}

func (s *Service) handleCategories(w http.ResponseWriter, r *http.Request) {
	descs := s.st.Describe()
	out := make([]categoryView, 0, len(descs))
	for _, d := range descs {
		v := categoryView{
			Category:      d.Category,
			Observations:  d.Observations,
			WithChange:    d.WithChange,
			CurrentWeight: d.CurrentWeight,
			First:         d.First,
			Last:          d.Last,
			Projectable:   d.Observations >= 2 && d.WithChange >= 2,
		}
		if d.WithChange > 0 {
			v.MeanChange = finite(d.Mean)
		}
		v.StdDev = finite(d.StdDev)
		out = append(out, v)
	}
	render.JSON(w, r, out)
}

func (s *Service) handleProjection(w http.ResponseWriter, r *http.Request) {
	q, err := s.parseProjectionQuery(r.URL.Query())
	if err != nil {
		s.metrics.projections.WithLabelValues(OutcomeInvalid).Inc()
		writeError(w, r, http.StatusBadRequest, err)
		return
	}

	params := model.Params{
		Trials:      q.Trials,
		Periods:     q.Periods,
		Seed:        pipeline.ResolveSeed(q.Seed),
		Filter:      q.Category,
		ChangeFloor: q.ChangeFloor,
	}
	proj, rec, err := s.project(r.Context(), params)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return
		}
		writeError(w, r, http.StatusInternalServerError, err)
		return
	}

	w.Header().Set("X-Run-Id", rec.ID)
	render.JSON(w, r, proj)
}

func (s *Service) parseProjectionQuery(v url.Values) (projectionQuery, error) {
	q := projectionQuery{
		Trials:      s.cfg.Trials,
		Periods:     s.cfg.Periods,
		Category:    strings.TrimSpace(v.Get("category")),
		ChangeFloor: s.cfg.ChangeFloor,
	}

	var err error
	if raw := v.Get("trials"); raw != "" {
		if q.Trials, err = strconv.Atoi(raw); err != nil {
			return q, fmt.Errorf("trials: %q is not an integer", raw)
		}
	}
	if raw := v.Get("periods"); raw != "" {
		if q.Periods, err = strconv.Atoi(raw); err != nil {
			return q, fmt.Errorf("periods: %q is not an integer", raw)
		}
	}
	if raw := v.Get("seed"); raw != "" {
		if q.Seed, err = strconv.ParseUint(raw, 10, 64); err != nil {
			return q, fmt.Errorf("seed: %q is not an unsigned integer", raw)
		}
	}
	if raw := v.Get("floor"); raw != "" {
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil || math.IsNaN(f) {
			return q, fmt.Errorf("floor: %q is not a number", raw)
		}
		q.ChangeFloor = &f
	}

	if err := validate.Struct(q); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fmt.Sprintf("%s: %v fails %q", fe.Field(), fe.Value(), fe.Tag()+"="+fe.Param()))
			}
			return q, errors.New(strings.Join(msgs, "; "))
		}
		return q, err
	}
	return q, nil
}

func writeError(w http.ResponseWriter, r *http.Request, status int, err error) {
	render.Status(r, status)
	render.JSON(w, r, errorResponse{Error: err.Error()})
}

func finite(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}
