package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/goccy/go-json"
	_ "github.com/jackc/pgx/v5/stdlib"

	"feedgen/internal/application/port"
	"feedgen/internal/domain/model"
)

type Repo struct {
	db *sql.DB
}

func New(dsn string) (*Repo, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)

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
  id BIGSERIAL PRIMARY KEY,
  run_id UUID NOT NULL UNIQUE,
  started_at TIMESTAMPTZ NOT NULL,
  duration_ms BIGINT NOT NULL,
  feed_count INTEGER NOT NULL,
  empty_feeds INTEGER NOT NULL,
  exchanges_ok JSONB NOT NULL,
  exchanges_failed JSONB NOT NULL,
  checksum TEXT NOT NULL,
  payload JSONB NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_runs_started ON generation_runs(started_at);
`)
	return err
}

func (r *Repo) SaveArtifact(ctx context.Context, rec *model.RunRecord, doc []byte) error {
	okJSON, err := json.Marshal(rec.ExchangesOK)
	if err != nil {
		return err
	}
	failedJSON, err := json.Marshal(rec.ExchangesFailed)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO generation_runs(run_id, started_at, duration_ms, feed_count, empty_feeds, exchanges_ok, exchanges_failed, checksum, payload)
		VALUES($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, rec.RunID.String(), rec.StartedAt, rec.Duration.Milliseconds(), rec.FeedCount, rec.EmptyFeeds,
		jsonOrEmpty(okJSON), jsonOrEmpty(failedJSON), rec.Checksum, string(doc))
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}
	return nil
}

// LatestArtifact JSONB 不保留原始字节，这里返回存储时的文本表示
func (r *Repo) LatestArtifact(ctx context.Context) ([]byte, error) {
	var payload string
	err := r.db.QueryRowContext(ctx,
		`SELECT payload::text FROM generation_runs ORDER BY started_at DESC, id DESC LIMIT 1`).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return []byte(payload), nil
}

func jsonOrEmpty(b []byte) string {
	if string(b) == "null" {
		return "[]"
	}
	return string(b)
}

var _ port.Repository = (*Repo)(nil)
