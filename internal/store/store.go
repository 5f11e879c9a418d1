// Package store persists simulation run summaries to PostgreSQL via
// pgx, grounded directly on the teacher's internal/db.PostgresStore:
// pgxpool connection, schema-file loading, and explicit
// Begin/Commit/Rollback transactions.
package store

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Electric-Coin-Company/simtfl-sim/pkg/models"
)

// RunStore persists RunSummary values keyed by a run ID.
type RunStore struct {
	pool *pgxpool.Pool
}

// Connect opens a pooled connection to PostgreSQL and verifies it with a
// ping.
func Connect(connStr string) (*RunStore, error) {
	pool, err := pgxpool.New(context.Background(), connStr)
	if err != nil {
		return nil, fmt.Errorf("store: unable to connect to database: %w", err)
	}
	if err := pool.Ping(context.Background()); err != nil {
		return nil, fmt.Errorf("store: ping failed: %w", err)
	}
	log.Println("store: connected to PostgreSQL for run persistence")
	return &RunStore{pool: pool}, nil
}

// Close releases the connection pool.
func (s *RunStore) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// InitSchema loads and executes schema.sql.
func (s *RunStore) InitSchema() error {
	schemaBytes, err := os.ReadFile("internal/store/schema.sql")
	if err != nil {
		return fmt.Errorf("store: failed to read schema file: %w", err)
	}
	if _, err := s.pool.Exec(context.Background(), string(schemaBytes)); err != nil {
		return fmt.Errorf("store: failed to execute schema migration: %w", err)
	}
	log.Println("store: schema initialized")
	return nil
}

// SaveRun assigns a fresh run ID, persists summary under it, and returns
// the ID. The run ID is generated here (not by the caller) so that every
// persisted run is uniquely addressable regardless of how it was
// produced.
func (s *RunStore) SaveRun(ctx context.Context, summary models.RunSummary) (string, error) {
	runID := uuid.New().String()
	summary.RunID = runID

	body, err := json.Marshal(summary)
	if err != nil {
		return "", fmt.Errorf("store: failed to marshal run summary: %w", err)
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return "", err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	const insertSQL = `
		INSERT INTO run_summaries (run_id, scenario, num_nodes, virtual_duration, summary)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (run_id) DO UPDATE
		SET summary = EXCLUDED.summary;
	`
	if _, err := tx.Exec(ctx, insertSQL, runID, summary.Scenario, summary.NumNodes, summary.VirtualDuration, body); err != nil {
		return "", fmt.Errorf("store: failed to insert run summary: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return "", err
	}
	return runID, nil
}

// GetRun fetches a previously persisted run summary by ID.
func (s *RunStore) GetRun(ctx context.Context, runID string) (models.RunSummary, error) {
	var body []byte
	const querySQL = `SELECT summary FROM run_summaries WHERE run_id = $1`
	if err := s.pool.QueryRow(ctx, querySQL, runID).Scan(&body); err != nil {
		return models.RunSummary{}, fmt.Errorf("store: run %s not found: %w", runID, err)
	}
	var summary models.RunSummary
	if err := json.Unmarshal(body, &summary); err != nil {
		return models.RunSummary{}, fmt.Errorf("store: failed to unmarshal run summary: %w", err)
	}
	return summary, nil
}
