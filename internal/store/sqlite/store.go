package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"dispatchmatch/internal/domain"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS dispatch_runs (
	id TEXT PRIMARY KEY,
	agents_path TEXT NOT NULL,
	tasks_path TEXT NOT NULL,
	output_path TEXT NOT NULL,
	task_count INTEGER NOT NULL DEFAULT 0,
	assigned_count INTEGER NOT NULL DEFAULT 0,
	created_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS run_decisions (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	run_id TEXT NOT NULL,
	seq INTEGER NOT NULL,
	task_id TEXT NOT NULL,
	task_type TEXT NOT NULL,
	required_skill TEXT NOT NULL,
	zone TEXT NOT NULL,
	assigned_agent TEXT NOT NULL DEFAULT '',
	decision_reason TEXT NOT NULL,
	FOREIGN KEY(run_id) REFERENCES dispatch_runs(id) ON DELETE CASCADE
);
CREATE INDEX IF NOT EXISTS idx_run_decisions_run ON run_decisions(run_id, seq);
`

type Store struct {
	db *sql.DB
}

func Open(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA foreign_keys=ON;",
		"PRAGMA busy_timeout=5000;",
	}
	for _, stmt := range pragmas {
		if _, err := db.Exec(stmt); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("set sqlite pragma %q: %w", stmt, err)
		}
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("migrate schema: %w", err)
	}
	return nil
}

// RecordRun stores a completed run and its decisions in one transaction,
// so the history never contains a partially written batch.
func (s *Store) RecordRun(ctx context.Context, run domain.Run, decisions []domain.Decision) error {
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now().UTC()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin record run: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	_, err = tx.ExecContext(
		ctx,
		`INSERT INTO dispatch_runs(id, agents_path, tasks_path, output_path, task_count, assigned_count, created_at)
		VALUES(?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.AgentsPath, run.TasksPath, run.OutputPath,
		run.TaskCount, run.AssignedCount, run.CreatedAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	for i, d := range decisions {
		_, err = tx.ExecContext(
			ctx,
			`INSERT INTO run_decisions(run_id, seq, task_id, task_type, required_skill, zone, assigned_agent, decision_reason)
			VALUES(?, ?, ?, ?, ?, ?, ?, ?)`,
			run.ID, i, d.TaskID, d.TaskType, d.RequiredSkill, d.Zone, d.AssignedAgent, d.Reason,
		)
		if err != nil {
			return fmt.Errorf("insert decision for task %s: %w", d.TaskID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit record run: %w", err)
	}
	return nil
}

// ListRuns returns recorded runs, newest first.
func (s *Store) ListRuns(ctx context.Context) ([]domain.Run, error) {
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT id, agents_path, tasks_path, output_path, task_count, assigned_count, created_at
		FROM dispatch_runs ORDER BY created_at DESC, id`,
	)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []domain.Run
	for rows.Next() {
		var r domain.Run
		var created int64
		if err := rows.Scan(
			&r.ID, &r.AgentsPath, &r.TasksPath, &r.OutputPath,
			&r.TaskCount, &r.AssignedCount, &created,
		); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		r.CreatedAt = time.Unix(created, 0).UTC()
		runs = append(runs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return runs, nil
}

// ListRunDecisions returns a run's decisions in emission order.
func (s *Store) ListRunDecisions(ctx context.Context, runID string) ([]domain.Decision, error) {
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT task_id, task_type, required_skill, zone, assigned_agent, decision_reason
		FROM run_decisions WHERE run_id = ? ORDER BY seq`,
		runID,
	)
	if err != nil {
		return nil, fmt.Errorf("list run decisions: %w", err)
	}
	defer rows.Close()

	var decisions []domain.Decision
	for rows.Next() {
		var d domain.Decision
		if err := rows.Scan(
			&d.TaskID, &d.TaskType, &d.RequiredSkill, &d.Zone, &d.AssignedAgent, &d.Reason,
		); err != nil {
			return nil, fmt.Errorf("scan decision: %w", err)
		}
		decisions = append(decisions, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate decisions: %w", err)
	}
	return decisions, nil
}
