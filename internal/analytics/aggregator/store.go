// Package aggregator persists ranking runs to PostgreSQL: every answered
// query and a summary per run.
package aggregator

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Adithya-Monish-Kumar-K/Document-Relevance-Ranker/internal/analytics"
	"github.com/Adithya-Monish-Kumar-K/Document-Relevance-Ranker/internal/searcher/executor"
	"github.com/Adithya-Monish-Kumar-K/Document-Relevance-Ranker/pkg/postgres"
)

const schema = `
CREATE TABLE IF NOT EXISTS query_runs (
    id          BIGSERIAL PRIMARY KEY,
    run_id      TEXT NOT NULL,
    query       TEXT NOT NULL,
    returned    INTEGER NOT NULL,
    results     JSONB NOT NULL,
    cached      BOOLEAN NOT NULL DEFAULT FALSE,
    latency_ms  BIGINT NOT NULL,
    created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS query_runs_run_id_idx ON query_runs (run_id);
CREATE TABLE IF NOT EXISTS run_summaries (
    run_id      TEXT PRIMARY KEY,
    data        JSONB NOT NULL,
    captured_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);`

// QueryRun is one stored query result.
type QueryRun struct {
	RunID     string
	Query     string
	Returned  int
	Results   []executor.Hit
	Cached    bool
	LatencyMs int64
	CreatedAt time.Time
}

// Store persists run history in PostgreSQL.
type Store struct {
	db     *postgres.Client
	logger *slog.Logger
}

func NewStore(db *postgres.Client) *Store {
	return &Store{
		db:     db,
		logger: slog.Default().With("component", "history-store"),
	}
}

// EnsureSchema creates the history tables if they do not exist.
func (s *Store) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.DB.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("creating history schema: %w", err)
	}
	return nil
}

// SaveResults stores every result of a run in one transaction.
func (s *Store) SaveResults(ctx context.Context, runID string, results []*executor.SearchResult) error {
	err := s.db.InTx(ctx, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx,
			`INSERT INTO query_runs (run_id, query, returned, results, cached, latency_ms, created_at)
			 VALUES ($1, $2, $3, $4, $5, $6, $7)`)
		if err != nil {
			return fmt.Errorf("preparing insert: %w", err)
		}
		defer stmt.Close()
		now := time.Now().UTC()
		for _, res := range results {
			data, err := json.Marshal(res.Results)
			if err != nil {
				return fmt.Errorf("marshaling results: %w", err)
			}
			if _, err := stmt.ExecContext(ctx,
				runID, res.Query, len(res.Results), data, res.Cached, res.LatencyMs, now,
			); err != nil {
				return fmt.Errorf("inserting query %q: %w", res.Query, err)
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("saving run %s: %w", runID, err)
	}
	s.logger.Info("run results saved", "run_id", runID, "queries", len(results))
	return nil
}

// SaveSummary upserts the summary of a run.
func (s *Store) SaveSummary(ctx context.Context, summary analytics.RunSummary) error {
	data, err := json.Marshal(summary)
	if err != nil {
		return fmt.Errorf("marshaling summary: %w", err)
	}
	_, err = s.db.DB.ExecContext(ctx,
		`INSERT INTO run_summaries (run_id, data, captured_at) VALUES ($1, $2, $3)
		 ON CONFLICT (run_id) DO UPDATE SET data = EXCLUDED.data, captured_at = EXCLUDED.captured_at`,
		summary.RunID, data, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("saving run summary: %w", err)
	}
	return nil
}

// Summary loads the summary of one run. It returns nil, nil when the run is
// unknown.
func (s *Store) Summary(ctx context.Context, runID string) (*analytics.RunSummary, error) {
	var data []byte
	err := s.db.DB.QueryRowContext(ctx,
		`SELECT data FROM run_summaries WHERE run_id = $1`, runID,
	).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying run summary: %w", err)
	}
	var summary analytics.RunSummary
	if err := json.Unmarshal(data, &summary); err != nil {
		return nil, fmt.Errorf("unmarshaling run summary: %w", err)
	}
	return &summary, nil
}

// Recent returns the last limit stored queries, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]QueryRun, error) {
	rows, err := s.db.DB.QueryContext(ctx,
		`SELECT run_id, query, returned, results, cached, latency_ms, created_at
		 FROM query_runs ORDER BY created_at DESC, id DESC LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("listing query runs: %w", err)
	}
	defer rows.Close()

	var runs []QueryRun
	for rows.Next() {
		var (
			run  QueryRun
			data []byte
		)
		if err := rows.Scan(&run.RunID, &run.Query, &run.Returned, &data, &run.Cached, &run.LatencyMs, &run.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning query run: %w", err)
		}
		if err := json.Unmarshal(data, &run.Results); err != nil {
			s.logger.Warn("skipping corrupt query run", "run_id", run.RunID, "error", err)
			continue
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}
