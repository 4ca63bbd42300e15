package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"feedgen/internal/application/port"
	"feedgen/internal/domain/model"
)

type Repo struct {
	db *sql.DB
}

// RunSummary 一行 generation_runs
type RunSummary struct {
	RunID       uuid.UUID
	StartedAt   time.Time
	Duration    time.Duration
	FeedCount   int
	EmptyFeeds  int
	ExchangesOK []string
	Failures    []model.ExchangeFailure
	Checksum    string
}

func New(path string) (*Repo, error) {
	// ensure directory exists
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		_ = os.MkdirAll(dir, 0o755)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)

	r := &Repo{db: db}
	if err := r.migrate(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return r, nil
}

func (r *Repo) Close() error { return r.db.Close() }

func (r *Repo) migrate(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, `
CREATE TABLE IF NOT EXISTS generation_runs (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  run_id TEXT NOT NULL UNIQUE,
  started_ms INTEGER NOT NULL,
  duration_ms INTEGER NOT NULL,
  feed_count INTEGER NOT NULL,
  empty_feeds INTEGER NOT NULL,
  exchanges_ok TEXT NOT NULL,
  checksum TEXT NOT NULL,
  payload TEXT NOT NULL,
  created_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_runs_started ON generation_runs(started_ms);
CREATE INDEX IF NOT EXISTS idx_runs_checksum ON generation_runs(checksum);

CREATE TABLE IF NOT EXISTS exchange_failures (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  run_id TEXT NOT NULL,
  exchange TEXT NOT NULL,
  kind TEXT NOT NULL,
  reason TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_failures_run ON exchange_failures(run_id);
CREATE INDEX IF NOT EXISTS idx_failures_exchange ON exchange_failures(exchange);
`)
	return err
}

func (r *Repo) SaveArtifact(ctx context.Context, rec *model.RunRecord, doc []byte) error {
	okJSON, err := json.Marshal(nonNil(rec.ExchangesOK))
	if err != nil {
		return err
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO generation_runs(run_id, started_ms, duration_ms, feed_count, empty_feeds, exchanges_ok, checksum, payload, created_at)
		VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, rec.RunID.String(), rec.StartedAt.UnixMilli(), rec.Duration.Milliseconds(), rec.FeedCount, rec.EmptyFeeds,
		string(okJSON), rec.Checksum, string(doc), time.Now().UnixMilli())
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	for _, f := range rec.ExchangesFailed {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO exchange_failures(run_id, exchange, kind, reason) VALUES(?, ?, ?, ?)`,
			rec.RunID.String(), f.Exchange, string(f.Kind), f.Reason); err != nil {
			return fmt.Errorf("insert failure: %w", err)
		}
	}
	return tx.Commit()
}

func (r *Repo) LatestArtifact(ctx context.Context) ([]byte, error) {
	var payload string
	err := r.db.QueryRowContext(ctx,
		`SELECT payload FROM generation_runs ORDER BY started_ms DESC, id DESC LIMIT 1`).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return []byte(payload), nil
}

// ListRuns 最近的运行记录，新的在前
func (r *Repo) ListRuns(ctx context.Context, limit int) ([]RunSummary, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := r.db.QueryContext(ctx, `
		SELECT run_id, started_ms, duration_ms, feed_count, empty_feeds, exchanges_ok, checksum
		FROM generation_runs ORDER BY started_ms DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []RunSummary
	for rows.Next() {
		var (
			s                   RunSummary
			runID, okJSON       string
			startedMs, duration int64
		)
		if err := rows.Scan(&runID, &startedMs, &duration, &s.FeedCount, &s.EmptyFeeds, &okJSON, &s.Checksum); err != nil {
			return nil, err
		}
		if s.RunID, err = uuid.Parse(runID); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(okJSON), &s.ExchangesOK); err != nil {
			return nil, err
		}
		s.StartedAt = time.UnixMilli(startedMs).UTC()
		s.Duration = time.Duration(duration) * time.Millisecond
		runs = append(runs, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range runs {
		if runs[i].Failures, err = r.failures(ctx, runs[i].RunID); err != nil {
			return nil, err
		}
	}
	return runs, nil
}

func (r *Repo) failures(ctx context.Context, runID uuid.UUID) ([]model.ExchangeFailure, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT exchange, kind, reason FROM exchange_failures WHERE run_id=? ORDER BY id`, runID.String())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]model.ExchangeFailure, 0)
	for rows.Next() {
		var f model.ExchangeFailure
		var kind string
		if err := rows.Scan(&f.Exchange, &kind, &f.Reason); err != nil {
			return nil, err
		}
		f.Kind = model.FailureKind(kind)
		out = append(out, f)
	}
	return out, rows.Err()
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

var _ port.Repository = (*Repo)(nil)
