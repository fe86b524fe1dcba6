// Package sqlite holds the audit trail of agent runs. The trail is
// diagnostics, not memory: the agent never reads it back, people do.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/sandevgo/trunk/internal/core"
)

type AuditRepo struct {
	db *sql.DB
}

func NewAuditRepo(db *sql.DB) *AuditRepo {
	return &AuditRepo{db: db}
}

func (r *AuditRepo) InsertStep(ctx context.Context, runID string, iteration int, step core.EpisodeStep) error {
	query := `INSERT INTO steps (run_id, iteration, tool, arguments, result, duration_ms) VALUES (?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query, runID, iteration, step.Tool, step.Arguments, step.Result, step.Duration.Milliseconds())
	if err != nil {
		return fmt.Errorf("failed to insert step: %w", err)
	}
	return nil
}

func (r *AuditRepo) InsertRun(ctx context.Context, runID, task, status string, iterations int) error {
	query := `INSERT INTO runs (run_id, task, status, iterations) VALUES (?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query, runID, task, status, iterations)
	if err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}
	return nil
}

// RunSummary is one row of the recent-runs report.
type RunSummary struct {
	RunID      string
	Task       string
	Status     string
	Iterations int
	CreatedAt  string
}

// RecentRuns returns the newest runs first.
func (r *AuditRepo) RecentRuns(ctx context.Context, limit int) ([]RunSummary, error) {
	query := `SELECT run_id, task, status, iterations, created_at FROM runs ORDER BY id DESC LIMIT ?`

	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var runs []RunSummary
	for rows.Next() {
		var run RunSummary
		if err := rows.Scan(&run.RunID, &run.Task, &run.Status, &run.Iterations, &run.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}
