package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type RunStatus string

const (
	RunStatusRunning   RunStatus = "running"
	RunStatusCompleted RunStatus = "completed"
	RunStatusCancelled RunStatus = "cancelled"
	RunStatusFailed    RunStatus = "failed"
)

type Run struct {
	ID         string
	StartedAt  time.Time
	FinishedAt *time.Time
	Status     RunStatus

	RoutesTotal     int
	RoutesProcessed int
	RoutesFailed    int
}

func (db *DB) CreateRun(ctx context.Context, routesTotal int) (*Run, error) {
	run := &Run{
		ID:          uuid.New().String(),
		StartedAt:   time.Now().UTC(),
		Status:      RunStatusRunning,
		RoutesTotal: routesTotal,
	}

	db.writeMu.Lock()
	defer db.writeMu.Unlock()

	_, err := db.conn.ExecContext(ctx,
		"INSERT INTO segment_runs (run_id, started_at_utc, status, routes_total) VALUES (?, ?, ?, ?)",
		run.ID, run.StartedAt.Format(time.RFC3339), string(run.Status), routesTotal,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create run: %w", err)
	}

	return run, nil
}

func (db *DB) FinishRun(ctx context.Context, run *Run) error {
	finishedAt := time.Now().UTC()
	run.FinishedAt = &finishedAt

	db.writeMu.Lock()
	defer db.writeMu.Unlock()

	_, err := db.conn.ExecContext(ctx, `UPDATE segment_runs SET finished_at_utc = ?, status = ?,
		routes_processed = ?, routes_failed = ? WHERE run_id = ?`,
		finishedAt.Format(time.RFC3339), string(run.Status), run.RoutesProcessed, run.RoutesFailed, run.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to finish run %s: %w", run.ID, err)
	}

	return nil
}

// LatestRun returns the most recently started run or nil if none exist.
func (db *DB) LatestRun(ctx context.Context) (*Run, error) {
	row := db.conn.QueryRowContext(ctx, `SELECT run_id, started_at_utc, finished_at_utc, status,
		routes_total, routes_processed, routes_failed FROM segment_runs
		ORDER BY started_at_utc DESC, rowid DESC LIMIT 1`)

	var run Run
	var startedAt string
	var finishedAt sql.NullString
	var status string
	err := row.Scan(&run.ID, &startedAt, &finishedAt, &status, &run.RoutesTotal, &run.RoutesProcessed, &run.RoutesFailed)
	if err == sql.ErrNoRows {
		return nil, nil
	} else if err != nil {
		return nil, fmt.Errorf("failed to get latest run: %w", err)
	}

	run.Status = RunStatus(status)
	run.StartedAt, _ = time.Parse(time.RFC3339, startedAt)
	if finishedAt.Valid {
		t, err := time.Parse(time.RFC3339, finishedAt.String)
		if err == nil {
			run.FinishedAt = &t
		}
	}

	return &run, nil
}
