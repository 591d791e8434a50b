package ledger

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3" // Import go-sqlite3 library
)

// sortable UTC timestamps so ORDER BY on TEXT columns is chronological
const timeLayout = "2006-01-02T15:04:05.000000000Z"

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS runs (
	"id" TEXT NOT NULL PRIMARY KEY,
	"started_at" TEXT NOT NULL,
	"finished_at" TEXT,
	"csv_path" TEXT NOT NULL,
	"images_dir" TEXT NOT NULL,
	"inplace" INTEGER NOT NULL,
	"status" TEXT NOT NULL,
	"missing" INTEGER NOT NULL DEFAULT 0,
	"error" TEXT
);
CREATE TABLE IF NOT EXISTS frames (
	"id" integer NOT NULL PRIMARY KEY AUTOINCREMENT,
	"run_id" TEXT NOT NULL REFERENCES runs(id),
	"roll_id" TEXT,
	"frame_number" TEXT NOT NULL,
	"path" TEXT NOT NULL,
	"applied_at" TEXT NOT NULL
);`

// SQLiteStore is the file-backed ledger.
type SQLiteStore struct {
	db  *sql.DB
	now func() time.Time
}

// OpenSQLite opens or creates the ledger database at path.
func OpenSQLite(ctx context.Context, path string) (*SQLiteStore, error) {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create ledger directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open ledger: %w", err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create ledger tables: %w", err)
	}
	return &SQLiteStore{db: db, now: time.Now}, nil
}

func (s *SQLiteStore) StartRun(ctx context.Context, run Run) (Run, error) {
	run.ID = uuid.NewString()
	run.StartedAt = s.now().UTC()
	run.Status = StatusRunning

	sql := `
	INSERT INTO runs(
		id,
		started_at,
		csv_path,
		images_dir,
		inplace,
		status
	) values(?, ?, ?, ?, ?, ?)
	`
	stmt, err := s.db.PrepareContext(ctx, sql)
	if err != nil {
		return Run{}, err
	}
	defer stmt.Close()

	_, err = stmt.ExecContext(ctx, run.ID, run.StartedAt.Format(timeLayout), run.CSVPath, run.ImagesDir, run.InPlace, string(run.Status))
	if err != nil {
		return Run{}, fmt.Errorf("insert run: %w", err)
	}
	return run, nil
}

func (s *SQLiteStore) RecordFrame(ctx context.Context, frame Frame) error {
	if frame.AppliedAt.IsZero() {
		frame.AppliedAt = s.now()
	}
	sql := `
	INSERT INTO frames(
		run_id,
		roll_id,
		frame_number,
		path,
		applied_at
	) values(?, ?, ?, ?, ?)
	`
	_, err := s.db.ExecContext(ctx, sql, frame.RunID, frame.RollID, frame.FrameNumber, frame.Path, frame.AppliedAt.UTC().Format(timeLayout))
	if err != nil {
		return fmt.Errorf("insert frame: %w", err)
	}
	return nil
}

func (s *SQLiteStore) FinishRun(ctx context.Context, id string, status Status, missing int, errMsg string) error {
	sql := `UPDATE runs
		SET status = ?,
			finished_at = ?,
			missing = ?,
			error = ?
		WHERE id = ?`
	res, err := s.db.ExecContext(ctx, sql, string(status), s.now().UTC().Format(timeLayout), missing, errMsg, id)
	if err != nil {
		return fmt.Errorf("update run: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("update run: unknown run %s", id)
	}
	return nil
}

func (s *SQLiteStore) Runs(ctx context.Context, limit int) ([]Run, error) {
	sql := `
	SELECT r.id, r.started_at, COALESCE(r.finished_at, ''), r.csv_path, r.images_dir,
		r.inplace, r.status, r.missing, COALESCE(r.error, ''),
		(SELECT COUNT(*) FROM frames f WHERE f.run_id = r.id)
	FROM runs r
	ORDER BY r.started_at DESC, r.rowid DESC
	LIMIT ?`
	rows, err := s.db.QueryContext(ctx, sql, clampLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var (
			run               Run
			started, finished string
			status            string
		)
		if err := rows.Scan(&run.ID, &started, &finished, &run.CSVPath, &run.ImagesDir, &run.InPlace, &status, &run.Missing, &run.Error, &run.Applied); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		run.Status = Status(status)
		run.StartedAt, _ = time.Parse(timeLayout, started)
		if finished != "" {
			run.FinishedAt, _ = time.Parse(timeLayout, finished)
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

func (s *SQLiteStore) Frames(ctx context.Context, runID string) ([]Frame, error) {
	sql := `SELECT run_id, COALESCE(roll_id, ''), frame_number, path, applied_at
		FROM frames WHERE run_id = ? ORDER BY id`
	rows, err := s.db.QueryContext(ctx, sql, runID)
	if err != nil {
		return nil, fmt.Errorf("query frames: %w", err)
	}
	defer rows.Close()

	var frames []Frame
	for rows.Next() {
		var (
			frame   Frame
			applied string
		)
		if err := rows.Scan(&frame.RunID, &frame.RollID, &frame.FrameNumber, &frame.Path, &applied); err != nil {
			return nil, fmt.Errorf("scan frame: %w", err)
		}
		frame.AppliedAt, _ = time.Parse(timeLayout, applied)
		frames = append(frames, frame)
	}
	return frames, rows.Err()
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
