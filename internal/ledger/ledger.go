// Package ledger keeps an optional history of apply runs and the frames each
// run tagged. A run that stops on an exiftool failure still leaves a record of
// the frames written before it.
package ledger

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// Status is the lifecycle state of a run.
type Status string

const (
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusMissing   Status = "missing"
	StatusFailed    Status = "failed"
)

// Run is one invocation of apply.
type Run struct {
	ID         string
	StartedAt  time.Time
	FinishedAt time.Time
	CSVPath    string
	ImagesDir  string
	InPlace    bool
	Status     Status
	Applied    int
	Missing    int
	Error      string
}

// Frame is an image that received metadata during a run.
type Frame struct {
	RunID       string
	RollID      string
	FrameNumber string
	Path        string
	AppliedAt   time.Time
}

// Store persists runs and frames.
type Store interface {
	StartRun(ctx context.Context, run Run) (Run, error)
	RecordFrame(ctx context.Context, frame Frame) error
	FinishRun(ctx context.Context, id string, status Status, missing int, errMsg string) error
	Runs(ctx context.Context, limit int) ([]Run, error)
	Frames(ctx context.Context, runID string) ([]Frame, error)
	Close() error
}

// Open selects a backend from dsn: postgres:// and postgresql:// URLs use
// PostgreSQL, anything else is a SQLite file path. The schema is created if
// needed.
func Open(ctx context.Context, dsn string) (Store, error) {
	dsn = strings.TrimSpace(dsn)
	if dsn == "" {
		return nil, fmt.Errorf("ledger: empty dsn")
	}
	if IsPostgres(dsn) {
		return OpenPostgres(ctx, dsn)
	}
	return OpenSQLite(ctx, dsn)
}

// IsPostgres reports whether dsn addresses a PostgreSQL server.
func IsPostgres(dsn string) bool {
	lower := strings.ToLower(dsn)
	return strings.HasPrefix(lower, "postgres://") || strings.HasPrefix(lower, "postgresql://")
}

func clampLimit(limit int) int {
	if limit <= 0 {
		return 20
	}
	return limit
}
