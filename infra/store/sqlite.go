package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/kilianp07/telework/config"
	"github.com/kilianp07/telework/core/model"
	core "github.com/kilianp07/telework/core/store"
)

const schema = `
CREATE TABLE IF NOT EXISTS geocode_cache (
    address_key TEXT PRIMARY KEY,
    x REAL NOT NULL,
    y REAL NOT NULL,
    score REAL NOT NULL,
    match_address TEXT NOT NULL,
    updated_at INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS commute_history (
    run_id TEXT NOT NULL,
    employee_number TEXT NOT NULL,
    miles REAL NOT NULL,
    minutes REAL NOT NULL,
    work_lat REAL NOT NULL,
    work_lon REAL NOT NULL,
    home_lat REAL NOT NULL,
    home_lon REAL NOT NULL,
    flagged INTEGER NOT NULL,
    computed_at INTEGER NOT NULL,
    PRIMARY KEY(run_id, employee_number)
);
CREATE INDEX IF NOT EXISTS commute_history_employee ON commute_history(employee_number, computed_at);`

// SQLiteStore persists the geocode cache and commute history in SQLite.
type SQLiteStore struct {
	db  *sql.DB
	now func() time.Time
}

// Open returns a SQLite store for cfg.Path, or a NopStore when no path is
// configured.
func Open(cfg config.StoreConfig) (core.Store, error) {
	if cfg.Path == "" {
		return core.NopStore{}, nil
	}
	return NewSQLiteStore(cfg.Path)
}

// NewSQLiteStore opens or creates the database and ensures schema.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	// One connection so concurrent writers never see SQLITE_BUSY.
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &SQLiteStore{db: db, now: time.Now}, nil
}

// LookupLocation returns the cached candidate for key.
func (s *SQLiteStore) LookupLocation(ctx context.Context, key string) (model.Location, bool, error) {
	var loc model.Location
	err := s.db.QueryRowContext(ctx,
		`SELECT x, y, score, match_address FROM geocode_cache WHERE address_key = ?`, key).
		Scan(&loc.Point.X, &loc.Point.Y, &loc.Score, &loc.MatchAddress)
	if err == sql.ErrNoRows {
		return model.Location{}, false, nil
	}
	if err != nil {
		return model.Location{}, false, fmt.Errorf("lookup %q: %w", key, err)
	}
	return loc, true, nil
}

// SaveLocation inserts or updates the cached candidate for key.
func (s *SQLiteStore) SaveLocation(ctx context.Context, key string, loc model.Location) error {
	_, err := s.db.ExecContext(ctx, `INSERT INTO geocode_cache (address_key, x, y, score, match_address, updated_at)
        VALUES (?, ?, ?, ?, ?, ?)
        ON CONFLICT(address_key) DO UPDATE SET
            x = excluded.x,
            y = excluded.y,
            score = excluded.score,
            match_address = excluded.match_address,
            updated_at = excluded.updated_at`,
		key, loc.Point.X, loc.Point.Y, loc.Score, loc.MatchAddress, s.now().Unix())
	if err != nil {
		return fmt.Errorf("save %q: %w", key, err)
	}
	return nil
}

// SaveRun stores every result of a run in one transaction.
func (s *SQLiteStore) SaveRun(ctx context.Context, runID string, at time.Time, results []model.CommuteResult) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	stmt, err := tx.PrepareContext(ctx, `INSERT OR REPLACE INTO commute_history
        (run_id, employee_number, miles, minutes, work_lat, work_lon, home_lat, home_lon, flagged, computed_at)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("prepare: %w", err)
	}
	defer func() { _ = stmt.Close() }()
	for _, r := range results {
		if _, err := stmt.ExecContext(ctx, runID, r.EmployeeNumber, r.Miles, r.Minutes,
			r.Work.Lat(), r.Work.Lon(), r.Home.Lat(), r.Home.Lon(), r.Flagged, at.UnixMilli()); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("insert %s: %w", r.EmployeeNumber, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// History returns the results recorded for employee, oldest first.
func (s *SQLiteStore) History(ctx context.Context, employee string) ([]core.HistoryEntry, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT run_id, miles, minutes, work_lat, work_lon, home_lat, home_lon, flagged, computed_at
        FROM commute_history WHERE employee_number = ? ORDER BY computed_at, run_id`, employee)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var res []core.HistoryEntry
	for rows.Next() {
		var (
			h  core.HistoryEntry
			ts int64
		)
		h.EmployeeNumber = employee
		if err := rows.Scan(&h.RunID, &h.Miles, &h.Minutes, &h.Work.Y, &h.Work.X,
			&h.Home.Y, &h.Home.X, &h.Flagged, &ts); err != nil {
			return nil, err
		}
		h.ComputedAt = time.UnixMilli(ts).UTC()
		res = append(res, h)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return res, nil
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error { return s.db.Close() }
