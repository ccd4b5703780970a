// Package series holds loaded price-index observations in memory.
package series

import (
	"sort"
	"strings"
	"time"

	"github.com/theirongolddev/ipcsim/internal/model"
)

// Store is an in-memory table of observations grouped by category.
// It is read-only after construction.
type Store struct {
	order  []string // categories in order of first appearance
	byCat  map[string][]model.Observation
	total  int
	oldest time.Time
	newest time.Time
}

// NewStore indexes observations by category. Each category's series is
// sorted by date; ties keep their input order.
func NewStore(obs []model.Observation) *Store {
	s := &Store{byCat: make(map[string][]model.Observation)}
	for _, o := range obs {
		if _, ok := s.byCat[o.Category]; !ok {
			s.order = append(s.order, o.Category)
		}
		s.byCat[o.Category] = append(s.byCat[o.Category], o)
		s.total++

		if s.oldest.IsZero() || o.Date.Before(s.oldest) {
			s.oldest = o.Date
		}
		if o.Date.After(s.newest) {
			s.newest = o.Date
		}
	}
	for _, list := range s.byCat {
		sort.SliceStable(list, func(i, j int) bool {
			return list[i].Date.Before(list[j].Date)
		})
	}
	return s
}

// Len returns the total number of observations.
func (s *Store) Len() int {
	return s.total
}

// Span returns the oldest and newest observation dates.
func (s *Store) Span() (time.Time, time.Time) {
	return s.oldest, s.newest
}

// Categories returns every category in order of first appearance.
func (s *Store) Categories() []string {
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}

// Series returns the date-ordered history of a category.
func (s *Store) Series(category string) (model.Series, bool) {
	list, ok := s.byCat[category]
	if !ok {
		return model.Series{}, false
	}
	cp := make([]model.Observation, len(list))
	copy(cp, list)
	return model.Series{Category: category, Observations: cp}, true
}

// CurrentWeight returns the weight on the category's most recent observation.
// When several rows share the latest date the first one in input order wins.
func (s *Store) CurrentWeight(category string) (float64, bool) {
	list, ok := s.byCat[category]
	if !ok || len(list) == 0 {
		return 0, false
	}
	i := len(list) - 1
	for i > 0 && list[i-1].Date.Equal(list[i].Date) {
		i--
	}
	return list[i].Weight, true
}

// Filter returns the categories whose name contains substr, case-insensitively.
// An empty substr returns all categories.
func (s *Store) Filter(substr string) []string {
	if substr == "" {
		return s.Categories()
	}
	var out []string
	for _, c := range s.order {
		if containsIgnoreCase(c, substr) {
			out = append(out, c)
		}
	}
	return out
}

func containsIgnoreCase(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}
