package store

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/theirongolddev/ipcsim/internal/model"
)

func openTestCache(t *testing.T) *Cache {
	t.Helper()
	c, err := Open(filepath.Join(t.TempDir(), "nested", "results.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func sampleProjection() *model.Projection {
	date := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	return &model.Projection{
		Params:      model.Params{Trials: 100, Periods: 1, Seed: 18446744073709551615, Filter: "sal"},
		GeneratedAt: time.Date(2024, 12, 31, 10, 0, 0, 0, time.UTC),
		Categories: []model.CategoryResult{{
			Category:     "Salud",
			Weight:       5.5,
			Observations: 12,
			Distribution: model.Distribution{Mean: 0.3, StdDev: 0.1},
			Summaries:    []model.PeriodSummary{{Date: date, Mean: 100.3, Median: 100.31, P5: 100.1, P25: 100.2, P75: 100.4, P95: 100.5}},
		}},
		Skipped:        []model.Skipped{{Category: "Otros", Observations: 1, Reason: "insufficient data"}},
		CompositeError: "future date mismatch",
	}
}

func TestOpen_IsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "results.db")
	for i := 0; i < 2; i++ {
		c, err := Open(path)
		if err != nil {
			t.Fatalf("Open #%d: %v", i+1, err)
		}
		_ = c.Close()
	}
}

func TestCache_PutGet(t *testing.T) {
	c := openTestCache(t)

	if _, ok, err := c.Get("missing"); err != nil || ok {
		t.Fatalf("Get(missing) = ok %v, err %v", ok, err)
	}

	p := sampleProjection()
	runID, err := c.Put("k1", "/data/ipc.json", p)
	if err != nil {
		t.Fatalf("Put: %v", err)
	}
	if len(runID) != 36 {
		t.Errorf("run id %q is not a uuid", runID)
	}

	e, ok, err := c.Get("k1")
	if err != nil || !ok {
		t.Fatalf("Get(k1) = ok %v, err %v", ok, err)
	}
	if e.RunID != runID {
		t.Errorf("RunID = %q, want %q", e.RunID, runID)
	}
	if e.DataFile != "/data/ipc.json" {
		t.Errorf("DataFile = %q", e.DataFile)
	}
	if e.HitCount != 1 {
		t.Errorf("HitCount = %d, want 1", e.HitCount)
	}
	got := e.Projection
	if got.Params.Seed != p.Params.Seed {
		t.Errorf("Seed = %d, want %d", got.Params.Seed, p.Params.Seed)
	}
	if len(got.Categories) != 1 || got.Categories[0].Summaries[0].Median != 100.31 {
		t.Errorf("categories not round-tripped: %+v", got.Categories)
	}
	if !got.Categories[0].Summaries[0].Date.Equal(p.Categories[0].Summaries[0].Date) {
		t.Errorf("date = %v", got.Categories[0].Summaries[0].Date)
	}
	if got.CompositeErr == nil || got.CompositeErr.Error() != "future date mismatch" {
		t.Errorf("CompositeErr = %v", got.CompositeErr)
	}

	medians, err := c.CategoryMedians("k1")
	if err != nil {
		t.Fatalf("CategoryMedians: %v", err)
	}
	if medians["Salud"] != 100.31 {
		t.Errorf("medians = %v", medians)
	}
}

func TestCache_PutReplaces(t *testing.T) {
	c := openTestCache(t)
	p := sampleProjection()

	first, err := c.Put("k", "a.json", p)
	if err != nil {
		t.Fatal(err)
	}
	second, err := c.Put("k", "a.json", p)
	if err != nil {
		t.Fatal(err)
	}
	if first == second {
		t.Error("replacing an entry should issue a new run id")
	}

	st, err := c.Stats()
	if err != nil {
		t.Fatal(err)
	}
	if st.Entries != 1 {
		t.Errorf("Entries = %d, want 1", st.Entries)
	}
}

func TestCache_ClearAndStats(t *testing.T) {
	c := openTestCache(t)
	p := sampleProjection()
	for _, k := range []string{"a", "b", "c"} {
		if _, err := c.Put(k, "x.json", p); err != nil {
			t.Fatal(err)
		}
	}
	if _, _, err := c.Get("a"); err != nil {
		t.Fatal(err)
	}

	st, err := c.Stats()
	if err != nil {
		t.Fatal(err)
	}
	if st.Entries != 3 || st.Hits != 1 {
		t.Errorf("Stats = %+v", st)
	}
	if st.SizeBytes <= 0 {
		t.Errorf("SizeBytes = %d", st.SizeBytes)
	}
	if st.Oldest.IsZero() || st.Newest.Before(st.Oldest) {
		t.Errorf("bad time range %v..%v", st.Oldest, st.Newest)
	}

	n, err := c.Clear()
	if err != nil {
		t.Fatal(err)
	}
	if n != 3 {
		t.Errorf("Clear removed %d, want 3", n)
	}
	medians, err := c.CategoryMedians("a")
	if err != nil {
		t.Fatal(err)
	}
	if len(medians) != 0 {
		t.Errorf("category rows survived Clear: %v", medians)
	}
}

func TestCache_Delete(t *testing.T) {
	c := openTestCache(t)
	if _, err := c.Put("gone", "x.json", sampleProjection()); err != nil {
		t.Fatal(err)
	}
	if err := c.Delete("gone"); err != nil {
		t.Fatal(err)
	}
	if _, ok, _ := c.Get("gone"); ok {
		t.Error("entry still present after Delete")
	}
}
