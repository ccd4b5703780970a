// Package store provides a SQLite-backed cache of finished projections.
package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/theirongolddev/ipcsim/internal/model"

	_ "modernc.org/sqlite" // register sqlite driver
)

// Cache provides SQLite-backed projection caching.
type Cache struct {
	db   *sql.DB
	path string
}

// Entry is one cached projection.
type Entry struct {
	Key        string
	RunID      string
	DataFile   string
	CreatedAt  time.Time
	HitCount   int
	Projection *model.Projection
}

// Stats describes the cache contents.
type Stats struct {
	Path      string
	Entries   int
	Hits      int
	Oldest    time.Time
	Newest    time.Time
	SizeBytes int64
}

// Open opens or creates the cache database at the given path and applies
// pending migrations.
func Open(dbPath string) (*Cache, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("creating cache dir: %w", err)
	}

	if err := runMigrations(dbPath); err != nil {
		return nil, fmt.Errorf("migrating cache db: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(wal)&_pragma=synchronous(normal)&_pragma=foreign_keys(on)")
	if err != nil {
		return nil, fmt.Errorf("opening cache db: %w", err)
	}

	return &Cache{db: db, path: dbPath}, nil
}

// Close closes the cache database.
func (c *Cache) Close() error {
	return c.db.Close()
}

// Get looks up a projection by key and records the hit.
// ok is false when the key is not cached.
func (c *Cache) Get(key string) (*Entry, bool, error) {
	var (
		e       Entry
		payload string
		created string
	)
	err := c.db.QueryRow(`SELECT run_id, data_file, payload, created_at, hit_count
		FROM projections WHERE cache_key = ?`, key).
		Scan(&e.RunID, &e.DataFile, &payload, &created, &e.HitCount)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	var p model.Projection
	if err := json.Unmarshal([]byte(payload), &p); err != nil {
		return nil, false, fmt.Errorf("decoding cached projection %s: %w", e.RunID, err)
	}
	if p.CompositeError != "" {
		p.CompositeErr = errors.New(p.CompositeError)
	}
	e.Key = key
	e.Projection = &p
	e.CreatedAt, _ = time.Parse(time.RFC3339, created)

	now := time.Now().UTC().Format(time.RFC3339)
	if _, err := c.db.Exec(`UPDATE projections SET hit_count = hit_count + 1, last_hit_at = ?
		WHERE cache_key = ?`, now, key); err != nil {
		return nil, false, err
	}
	e.HitCount++
	return &e, true, nil
}

// Put stores a projection under key, replacing any previous entry, and
// returns the new run ID.
func (c *Cache) Put(key, dataFile string, p *model.Projection) (string, error) {
	payload, err := json.Marshal(p)
	if err != nil {
		return "", fmt.Errorf("encoding projection: %w", err)
	}
	runID := uuid.NewString()

	tx, err := c.db.Begin()
	if err != nil {
		return "", err
	}
	defer func() { _ = tx.Rollback() }()

	// Cascades to projection_categories.
	if _, err := tx.Exec("DELETE FROM projections WHERE cache_key = ?", key); err != nil {
		return "", err
	}

	_, err = tx.Exec(`INSERT INTO projections
		(cache_key, run_id, data_file, trials, periods, seed, category_filter, payload, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		key, runID, dataFile, p.Params.Trials, p.Params.Periods,
		strconv.FormatUint(p.Params.Seed, 10), p.Params.Filter, string(payload),
		time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return "", err
	}

	for _, cr := range p.Categories {
		var finalMedian sql.NullFloat64
		if n := len(cr.Summaries); n > 0 {
			finalMedian = sql.NullFloat64{Float64: cr.Summaries[n-1].Median, Valid: true}
		}
		_, err = tx.Exec(`INSERT INTO projection_categories
			(cache_key, category, weight, observations, final_median)
			VALUES (?, ?, ?, ?, ?)`,
			key, cr.Category, cr.Weight, cr.Observations, finalMedian,
		)
		if err != nil {
			return "", err
		}
	}

	if err := tx.Commit(); err != nil {
		return "", err
	}
	return runID, nil
}

// Delete removes one cached projection.
func (c *Cache) Delete(key string) error {
	_, err := c.db.Exec("DELETE FROM projections WHERE cache_key = ?", key)
	return err
}

// Clear removes every cached projection and returns how many were removed.
func (c *Cache) Clear() (int64, error) {
	res, err := c.db.Exec("DELETE FROM projections")
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// Stats returns entry counts, hit totals and the on-disk size of the cache.
func (c *Cache) Stats() (Stats, error) {
	st := Stats{Path: c.path}
	var oldest, newest sql.NullString
	err := c.db.QueryRow(`SELECT COUNT(*), COALESCE(SUM(hit_count), 0), MIN(created_at), MAX(created_at)
		FROM projections`).Scan(&st.Entries, &st.Hits, &oldest, &newest)
	if err != nil {
		return st, err
	}
	if oldest.Valid {
		st.Oldest, _ = time.Parse(time.RFC3339, oldest.String)
	}
	if newest.Valid {
		st.Newest, _ = time.Parse(time.RFC3339, newest.String)
	}
	if info, err := os.Stat(c.path); err == nil {
		st.SizeBytes = info.Size()
	}
	return st, nil
}

// CategoryMedians returns the final-period median per category of a cached run.
func (c *Cache) CategoryMedians(key string) (map[string]float64, error) {
	rows, err := c.db.Query(`SELECT category, final_median FROM projection_categories
		WHERE cache_key = ? AND final_median IS NOT NULL`, key)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	out := make(map[string]float64)
	for rows.Next() {
		var name string
		var median float64
		if err := rows.Scan(&name, &median); err != nil {
			return nil, err
		}
		out[name] = median
	}
	return out, rows.Err()
}
