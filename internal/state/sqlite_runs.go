package state

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/leapstack-labs/leapmetrics/pkg/core"
	"github.com/leapstack-labs/leapmetrics/pkg/validation"
)

// DefaultListLimit caps ListRuns when no positive limit is given.
const DefaultListLimit = 20

// RecordRun persists a validation run and its issues in a single transaction.
func (s *SQLiteStore) RecordRun(ctx context.Context, rec RunRecord) (*Run, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database not opened")
	}

	now := s.clock.Now()
	run := &Run{
		ID:               s.newID(),
		ModelPath:        rec.ModelPath,
		StartedAt:        rec.StartedAt,
		FinishedAt:       rec.FinishedAt,
		Materializations: rec.Materializations,
		IssueCount:       len(rec.Issues),
		ErrorCount:       validation.Summarize(rec.Issues).Errors,
	}
	if run.StartedAt.IsZero() {
		run.StartedAt = now
	}
	if run.FinishedAt.IsZero() {
		run.FinishedAt = now
	}
	run.StartedAt = run.StartedAt.UTC()
	run.FinishedAt = run.FinishedAt.UTC()

	s.logger.Debug("recording run",
		slog.String("id", run.ID),
		slog.String("model", run.ModelPath),
		slog.Int("issues", run.IssueCount))

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO runs (id, model_path, started_at, finished_at, materializations, issue_count, error_count)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.ModelPath, formatTime(run.StartedAt), formatTime(run.FinishedAt),
		run.Materializations, run.IssueCount, run.ErrorCount,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create run: %w", err)
	}

	for i, issue := range rec.Issues {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO run_issues (run_id, seq, rule_id, kind, severity, message, materialization, reference)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			run.ID, i, issue.RuleID, string(issue.Kind), issue.Severity.String(),
			issue.Message, issue.Materialization, issue.Reference,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to record issue %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit run: %w", err)
	}
	return run, nil
}

// GetRun retrieves a run by ID.
func (s *SQLiteStore) GetRun(ctx context.Context, id string) (*Run, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database not opened")
	}

	row := s.db.QueryRowContext(ctx,
		`SELECT id, model_path, started_at, finished_at, materializations, issue_count, error_count
		 FROM runs WHERE id = ?`, id)

	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get run: %w", err)
	}
	return run, nil
}

// ListRuns returns the most recent runs, newest first.
func (s *SQLiteStore) ListRuns(ctx context.Context, limit int) ([]*Run, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database not opened")
	}
	if limit <= 0 {
		limit = DefaultListLimit
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, model_path, started_at, finished_at, materializations, issue_count, error_count
		 FROM runs ORDER BY started_at DESC, rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var runs []*Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return runs, nil
}

// GetIssues returns the issues recorded for a run in their original order.
func (s *SQLiteStore) GetIssues(ctx context.Context, runID string) ([]validation.Issue, error) {
	if _, err := s.GetRun(ctx, runID); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT rule_id, kind, severity, message, materialization, reference
		 FROM run_issues WHERE run_id = ? ORDER BY seq`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to get issues: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var issues []validation.Issue
	for rows.Next() {
		var issue validation.Issue
		var kind, severity string
		if err := rows.Scan(&issue.RuleID, &kind, &severity, &issue.Message, &issue.Materialization, &issue.Reference); err != nil {
			return nil, fmt.Errorf("failed to scan issue: %w", err)
		}
		sev, ok := core.ParseSeverity(severity)
		if !ok {
			return nil, fmt.Errorf("invalid severity %q stored for run %s", severity, runID)
		}
		issue.Kind = validation.IssueKind(kind)
		issue.Severity = sev
		issues = append(issues, issue)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return issues, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (*Run, error) {
	run := &Run{}
	var startedAt, finishedAt string
	if err := row.Scan(&run.ID, &run.ModelPath, &startedAt, &finishedAt,
		&run.Materializations, &run.IssueCount, &run.ErrorCount); err != nil {
		return nil, err
	}

	var err error
	if run.StartedAt, err = parseTime(startedAt); err != nil {
		return nil, err
	}
	if run.FinishedAt, err = parseTime(finishedAt); err != nil {
		return nil, err
	}
	return run, nil
}
