package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(ctx context.Context, databaseURL string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return &PostgresStore{pool: pool}, nil
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

const schema = `
CREATE TABLE IF NOT EXISTS effnets_runs (
	run_id          UUID PRIMARY KEY,
	status          TEXT NOT NULL,
	hierarchy       TEXT NOT NULL,
	der_strategy    TEXT NOT NULL,
	nr_scenarios    INT NOT NULL,
	nr_alternatives INT NOT NULL,
	started_at      TIMESTAMPTZ NOT NULL,
	finished_at     TIMESTAMPTZ NOT NULL
);
CREATE TABLE IF NOT EXISTS effnets_weights (
	run_id      UUID NOT NULL REFERENCES effnets_runs(run_id) ON DELETE CASCADE,
	stakeholder TEXT NOT NULL,
	criterion   TEXT NOT NULL,
	weight      DOUBLE PRECISION NOT NULL
);
CREATE TABLE IF NOT EXISTS effnets_indicators (
	run_id      UUID NOT NULL REFERENCES effnets_runs(run_id) ON DELETE CASCADE,
	scenario    INT NOT NULL,
	criterion   TEXT NOT NULL,
	alternative INT NOT NULL,
	value       DOUBLE PRECISION NOT NULL
);
CREATE TABLE IF NOT EXISTS effnets_scores (
	run_id      UUID NOT NULL REFERENCES effnets_runs(run_id) ON DELETE CASCADE,
	stakeholder TEXT NOT NULL,
	scenario    TEXT NOT NULL,
	alternative INT NOT NULL,
	score       DOUBLE PRECISION NOT NULL
);
CREATE TABLE IF NOT EXISTS effnets_failures (
	run_id      UUID NOT NULL REFERENCES effnets_runs(run_id) ON DELETE CASCADE,
	stakeholder TEXT NOT NULL DEFAULT '',
	scenario    INT NOT NULL DEFAULT 0,
	error       TEXT NOT NULL
);`

// EnsureSchema creates the result tables when missing.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}

// SaveRun writes the run and all of its rows in one transaction.
func (s *PostgresStore) SaveRun(ctx context.Context, run *Run) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	_, err = tx.Exec(ctx, `
		INSERT INTO effnets_runs (run_id, status, hierarchy, der_strategy,
			nr_scenarios, nr_alternatives, started_at, finished_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		run.ID, string(run.Status), run.Hierarchy, run.DERStrategy,
		run.NrScenarios, run.NrAlternatives, run.StartedAt, run.FinishedAt,
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	weights := make([][]any, len(run.Weights))
	for i, w := range run.Weights {
		weights[i] = []any{run.ID, w.Stakeholder, w.Criterion, w.Weight}
	}
	if err := copyRows(ctx, tx, "effnets_weights", []string{"run_id", "stakeholder", "criterion", "weight"}, weights); err != nil {
		return err
	}

	indicators := make([][]any, len(run.Indicators))
	for i, r := range run.Indicators {
		indicators[i] = []any{run.ID, r.Scenario, r.Criterion, r.Alternative, r.Value}
	}
	if err := copyRows(ctx, tx, "effnets_indicators", []string{"run_id", "scenario", "criterion", "alternative", "value"}, indicators); err != nil {
		return err
	}

	scores := make([][]any, len(run.Scores))
	for i, r := range run.Scores {
		scores[i] = []any{run.ID, r.Stakeholder, r.Scenario, r.Alternative, r.Score}
	}
	if err := copyRows(ctx, tx, "effnets_scores", []string{"run_id", "stakeholder", "scenario", "alternative", "score"}, scores); err != nil {
		return err
	}

	failures := make([][]any, len(run.Failures))
	for i, f := range run.Failures {
		failures[i] = []any{run.ID, f.Stakeholder, f.Scenario, f.Error}
	}
	if err := copyRows(ctx, tx, "effnets_failures", []string{"run_id", "stakeholder", "scenario", "error"}, failures); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit run %s: %w", run.ID, err)
	}
	return nil
}

func copyRows(ctx context.Context, tx pgx.Tx, table string, columns []string, rows [][]any) error {
	if len(rows) == 0 {
		return nil
	}
	n, err := tx.CopyFrom(ctx, pgx.Identifier{table}, columns, pgx.CopyFromRows(rows))
	if err != nil {
		return fmt.Errorf("copy %s: %w", table, err)
	}
	if int(n) != len(rows) {
		return fmt.Errorf("copy %s: wrote %d of %d rows", table, n, len(rows))
	}
	return nil
}
