package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4/pgxpool"
)

const postgresSchema = `
CREATE TABLE IF NOT EXISTS filmtag_runs (
	id TEXT PRIMARY KEY,
	started_at TIMESTAMPTZ NOT NULL,
	finished_at TIMESTAMPTZ,
	csv_path TEXT NOT NULL,
	images_dir TEXT NOT NULL,
	inplace BOOLEAN NOT NULL,
	status TEXT NOT NULL,
	missing INTEGER NOT NULL DEFAULT 0,
	error TEXT
);
CREATE TABLE IF NOT EXISTS filmtag_frames (
	id BIGSERIAL PRIMARY KEY,
	run_id TEXT NOT NULL REFERENCES filmtag_runs(id),
	roll_id TEXT,
	frame_number TEXT NOT NULL,
	path TEXT NOT NULL,
	applied_at TIMESTAMPTZ NOT NULL
);`

// PostgresStore keeps the ledger in a shared PostgreSQL database so several
// scanning machines can report into one history.
type PostgresStore struct {
	pool *pgxpool.Pool
	now  func() time.Time
}

// OpenPostgres connects to dsn and creates the ledger tables if needed.
func OpenPostgres(ctx context.Context, dsn string) (*PostgresStore, error) {
	pool, err := pgxpool.Connect(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("connect to ledger database: %w", err)
	}
	if _, err := pool.Exec(ctx, postgresSchema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("create ledger tables: %w", err)
	}
	return &PostgresStore{pool: pool, now: time.Now}, nil
}

func (s *PostgresStore) StartRun(ctx context.Context, run Run) (Run, error) {
	run.ID = uuid.NewString()
	run.StartedAt = s.now().UTC()
	run.Status = StatusRunning

	_, err := s.pool.Exec(ctx, `
		INSERT INTO filmtag_runs(id, started_at, csv_path, images_dir, inplace, status)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		run.ID, run.StartedAt, run.CSVPath, run.ImagesDir, run.InPlace, string(run.Status))
	if err != nil {
		return Run{}, fmt.Errorf("insert run: %w", err)
	}
	return run, nil
}

func (s *PostgresStore) RecordFrame(ctx context.Context, frame Frame) error {
	if frame.AppliedAt.IsZero() {
		frame.AppliedAt = s.now()
	}
	_, err := s.pool.Exec(ctx, `
		INSERT INTO filmtag_frames(run_id, roll_id, frame_number, path, applied_at)
		VALUES ($1, $2, $3, $4, $5)`,
		frame.RunID, frame.RollID, frame.FrameNumber, frame.Path, frame.AppliedAt.UTC())
	if err != nil {
		return fmt.Errorf("insert frame: %w", err)
	}
	return nil
}

func (s *PostgresStore) FinishRun(ctx context.Context, id string, status Status, missing int, errMsg string) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE filmtag_runs
		SET status = $1, finished_at = $2, missing = $3, error = $4
		WHERE id = $5`,
		string(status), s.now().UTC(), missing, errMsg, id)
	if err != nil {
		return fmt.Errorf("update run: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("update run: unknown run %s", id)
	}
	return nil
}

func (s *PostgresStore) Runs(ctx context.Context, limit int) ([]Run, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT r.id, r.started_at, r.finished_at, r.csv_path, r.images_dir,
			r.inplace, r.status, r.missing, COALESCE(r.error, ''),
			(SELECT COUNT(*) FROM filmtag_frames f WHERE f.run_id = r.id)
		FROM filmtag_runs r
		ORDER BY r.started_at DESC
		LIMIT $1`, clampLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var (
			run      Run
			finished *time.Time
			status   string
			applied  int64
		)
		if err := rows.Scan(&run.ID, &run.StartedAt, &finished, &run.CSVPath, &run.ImagesDir, &run.InPlace, &status, &run.Missing, &run.Error, &applied); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		run.Status = Status(status)
		run.Applied = int(applied)
		if finished != nil {
			run.FinishedAt = *finished
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

func (s *PostgresStore) Frames(ctx context.Context, runID string) ([]Frame, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT run_id, COALESCE(roll_id, ''), frame_number, path, applied_at
		FROM filmtag_frames WHERE run_id = $1 ORDER BY id`, runID)
	if err != nil {
		return nil, fmt.Errorf("query frames: %w", err)
	}
	defer rows.Close()

	var frames []Frame
	for rows.Next() {
		var frame Frame
		if err := rows.Scan(&frame.RunID, &frame.RollID, &frame.FrameNumber, &frame.Path, &frame.AppliedAt); err != nil {
			return nil, fmt.Errorf("scan frame: %w", err)
		}
		frames = append(frames, frame)
	}
	return frames, rows.Err()
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}
