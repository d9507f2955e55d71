package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/sitescout/sitescout/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS snapshots (
	id           TEXT PRIMARY KEY,
	url          TEXT NOT NULL UNIQUE,
	content_hash TEXT NOT NULL,
	body         TEXT NOT NULL,
	title        TEXT NOT NULL DEFAULT '',
	fetched_at   DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS checks (
	id          TEXT PRIMARY KEY,
	url         TEXT NOT NULL,
	status      TEXT NOT NULL,
	status_code INTEGER NOT NULL DEFAULT 0,
	latency_ms  INTEGER NOT NULL DEFAULT 0,
	error       TEXT NOT NULL DEFAULT '',
	checked_at  DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS leads (
	id        TEXT PRIMARY KEY,
	name      TEXT NOT NULL,
	url       TEXT NOT NULL UNIQUE,
	velocity  REAL NOT NULL DEFAULT 0,
	authority REAL NOT NULL DEFAULT 0,
	impact    REAL NOT NULL DEFAULT 0,
	score     REAL NOT NULL DEFAULT 0,
	notes     TEXT NOT NULL DEFAULT '',
	scored_at DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_snapshots_fetched_at ON snapshots(fetched_at);
CREATE INDEX IF NOT EXISTS idx_checks_url ON checks(url);
CREATE INDEX IF NOT EXISTS idx_checks_checked_at ON checks(checked_at);
CREATE INDEX IF NOT EXISTS idx_leads_score ON leads(score);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) GetSnapshot(ctx context.Context, url string) (*model.Snapshot, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, url, content_hash, body, title, fetched_at FROM snapshots WHERE url = ?`, url)

	var snap model.Snapshot
	err := row.Scan(&snap.ID, &snap.URL, &snap.ContentHash, &snap.Body, &snap.Title, &snap.FetchedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: get snapshot %s", url)
	}
	return &snap, nil
}

func (s *SQLiteStore) SaveSnapshot(ctx context.Context, snap model.Snapshot) error {
	if snap.ID == "" {
		snap.ID = uuid.New().String()
	}
	if snap.FetchedAt.IsZero() {
		snap.FetchedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO snapshots (id, url, content_hash, body, title, fetched_at)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(url) DO UPDATE SET
			content_hash = excluded.content_hash,
			body         = excluded.body,
			title        = excluded.title,
			fetched_at   = excluded.fetched_at`,
		snap.ID, snap.URL, snap.ContentHash, snap.Body, snap.Title, snap.FetchedAt,
	)
	return eris.Wrapf(err, "sqlite: save snapshot %s", snap.URL)
}

func (s *SQLiteStore) ListSnapshots(ctx context.Context, limit int) ([]model.Snapshot, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, url, content_hash, title, fetched_at FROM snapshots
		 ORDER BY fetched_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list snapshots")
	}
	defer rows.Close()

	var out []model.Snapshot
	for rows.Next() {
		var snap model.Snapshot
		if err := rows.Scan(&snap.ID, &snap.URL, &snap.ContentHash, &snap.Title, &snap.FetchedAt); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan snapshot")
		}
		out = append(out, snap)
	}
	return out, eris.Wrap(rows.Err(), "sqlite: iterate snapshots")
}

func (s *SQLiteStore) PruneSnapshots(ctx context.Context, olderThan time.Duration) (int, error) {
	cutoff := time.Now().UTC().Add(-olderThan)
	res, err := s.db.ExecContext(ctx, `DELETE FROM snapshots WHERE fetched_at < ?`, cutoff)
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: prune snapshots")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: prune rows affected")
	}
	return int(n), nil
}

func (s *SQLiteStore) SaveCheck(ctx context.Context, check model.Check) error {
	if check.ID == "" {
		check.ID = uuid.New().String()
	}
	if check.CheckedAt.IsZero() {
		check.CheckedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO checks (id, url, status, status_code, latency_ms, error, checked_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		check.ID, check.URL, string(check.Status), check.StatusCode,
		check.LatencyMS, check.Error, check.CheckedAt,
	)
	return eris.Wrapf(err, "sqlite: save check %s", check.URL)
}

func (s *SQLiteStore) ListChecks(ctx context.Context, url string, limit int) ([]model.Check, error) {
	if limit <= 0 {
		limit = 50
	}

	query := `SELECT id, url, status, status_code, latency_ms, error, checked_at FROM checks`
	args := []any{}
	if url != "" {
		query += ` WHERE url = ?`
		args = append(args, url)
	}
	query += ` ORDER BY checked_at DESC LIMIT ?`
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list checks")
	}
	defer rows.Close()

	var out []model.Check
	for rows.Next() {
		var c model.Check
		var status string
		if err := rows.Scan(&c.ID, &c.URL, &status, &c.StatusCode, &c.LatencyMS, &c.Error, &c.CheckedAt); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan check")
		}
		c.Status = model.CheckStatus(status)
		out = append(out, c)
	}
	return out, eris.Wrap(rows.Err(), "sqlite: iterate checks")
}

func (s *SQLiteStore) UpsertLead(ctx context.Context, lead model.Lead) error {
	if lead.ID == "" {
		lead.ID = uuid.New().String()
	}
	if lead.ScoredAt.IsZero() {
		lead.ScoredAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO leads (id, name, url, velocity, authority, impact, score, notes, scored_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(url) DO UPDATE SET
			name      = excluded.name,
			velocity  = excluded.velocity,
			authority = excluded.authority,
			impact    = excluded.impact,
			score     = excluded.score,
			notes     = excluded.notes,
			scored_at = excluded.scored_at`,
		lead.ID, lead.Name, lead.URL, lead.Velocity, lead.Authority,
		lead.Impact, lead.Score, lead.Notes, lead.ScoredAt,
	)
	return eris.Wrapf(err, "sqlite: upsert lead %s", lead.URL)
}

func (s *SQLiteStore) ListLeads(ctx context.Context, limit int) ([]model.Lead, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, url, velocity, authority, impact, score, notes, scored_at
		 FROM leads ORDER BY score DESC LIMIT ?`, limit)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list leads")
	}
	defer rows.Close()

	var out []model.Lead
	for rows.Next() {
		var l model.Lead
		if err := rows.Scan(&l.ID, &l.Name, &l.URL, &l.Velocity, &l.Authority, &l.Impact, &l.Score, &l.Notes, &l.ScoredAt); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan lead")
		}
		out = append(out, l)
	}
	return out, eris.Wrap(rows.Err(), "sqlite: iterate leads")
}
