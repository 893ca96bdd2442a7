// Package state persists validation run history using SQLite.
// Each run records the model it validated, when it ran, and every issue it
// reported in the order the validator produced them.
package state

import (
	"context"
	"errors"
	"time"

	"github.com/leapstack-labs/leapmetrics/pkg/validation"
)

// ErrRunNotFound is returned when a run ID does not exist.
var ErrRunNotFound = errors.New("run not found")

// Store records and queries validation runs.
type Store interface {
	RecordRun(ctx context.Context, rec RunRecord) (*Run, error)
	GetRun(ctx context.Context, id string) (*Run, error)
	ListRuns(ctx context.Context, limit int) ([]*Run, error)
	GetIssues(ctx context.Context, runID string) ([]validation.Issue, error)
	Close() error
}

// RunRecord is the input to RecordRun.
type RunRecord struct {
	ModelPath        string
	Materializations int

	// StartedAt and FinishedAt default to the store clock when zero
	StartedAt  time.Time
	FinishedAt time.Time
	Issues     []validation.Issue
}

// Run is a persisted validation run.
type Run struct {
	ID               string    `json:"id"`
	ModelPath        string    `json:"model_path"`
	StartedAt        time.Time `json:"started_at"`
	FinishedAt       time.Time `json:"finished_at"`
	Materializations int       `json:"materializations"`
	IssueCount       int       `json:"issue_count"`
	ErrorCount       int       `json:"error_count"`
}

// Duration returns how long the run took.
func (r *Run) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}
