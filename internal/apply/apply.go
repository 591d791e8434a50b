// Package apply walks a roll export and tags each scanned frame through
// exiftool.
//
// Rows are handled strictly in file order, one exiftool process at a time.
// Rows without a numeric frame number are ignored. Frames whose image is not
// on disk are collected and reported once every row has been tried. An
// exiftool failure stops the run immediately; frames tagged before it keep
// their metadata.
package apply

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"strings"

	"github.com/choiway/filmtag/internal/exiftool"
	"github.com/choiway/filmtag/internal/ledger"
	"github.com/choiway/filmtag/internal/logging"
	"github.com/choiway/filmtag/internal/roll"
)

// RowSource yields rows until io.EOF.
type RowSource interface {
	Read() (roll.Row, error)
}

// Runner executes one exiftool invocation.
type Runner interface {
	Run(ctx context.Context, args []string) error
}

// Options controls path resolution and the exiftool mode.
type Options struct {
	ImagesDir  string
	Pattern    roll.Pattern
	Extension  string
	InPlace    bool
	ConfigPath string

	// Ledger, when set, records the run. CSVPath is stored with it.
	Ledger  ledger.Store
	CSVPath string
}

// Result summarizes a run.
type Result struct {
	Applied []string
	Missing []string
	Skipped int
}

// MissingFilesError lists every resolved image path that was not on disk.
type MissingFilesError struct {
	Paths []string
}

func (e *MissingFilesError) Error() string {
	return "Missing files:\n" + strings.Join(e.Paths, "\n")
}

// Applier runs the per-frame loop.
type Applier struct {
	opts   Options
	runner Runner
	logger *slog.Logger
}

// New builds an Applier. A nil logger discards output.
func New(opts Options, runner Runner, logger *slog.Logger) *Applier {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Applier{opts: opts, runner: runner, logger: logger.With("component", "apply")}
}

// Apply processes every row from src. It returns a *MissingFilesError when
// any image was absent, or the first exiftool error, which ends the run.
func (a *Applier) Apply(ctx context.Context, src RowSource) (Result, error) {
	var res Result

	run, err := a.startRun(ctx)
	if err != nil {
		return res, err
	}

	err = a.process(ctx, src, &res, run)
	a.finishRun(ctx, run, res, err)
	if err != nil {
		return res, err
	}

	a.logger.Info("roll processed",
		"applied", len(res.Applied),
		"missing", len(res.Missing),
		"skipped", res.Skipped,
	)
	if len(res.Missing) > 0 {
		return res, &MissingFilesError{Paths: append([]string(nil), res.Missing...)}
	}
	return res, nil
}

func (a *Applier) process(ctx context.Context, src RowSource, res *Result, run ledger.Run) error {
	seen := make(map[roll.Frame]int)
	for {
		row, err := src.Read()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}

		frame, ok := row.FrameIndex()
		if !ok {
			res.Skipped++
			a.logger.Debug("row skipped, frame number is not numeric", "line", row.Line, "frame_number", row.FrameNumber)
			continue
		}
		if first, dup := seen[frame]; dup {
			a.logger.Warn("duplicate frame number", "frame", frame, "line", row.Line, "first_line", first)
		} else {
			seen[frame] = row.Line
		}

		path := a.resolve(frame)
		if !a.exists(path) {
			res.Missing = append(res.Missing, path)
			a.logger.Warn("image missing", "frame", frame, "path", path)
			continue
		}

		args := exiftool.BuildArgs(row, a.opts.InPlace, a.opts.ConfigPath)
		args = append(args, path)
		if err := a.runner.Run(ctx, args); err != nil {
			a.logger.Error("exiftool failed", "frame", frame, "path", path, "error", err)
			return fmt.Errorf("apply metadata to %s: %w", path, err)
		}
		res.Applied = append(res.Applied, path)
		a.logger.Info("metadata applied", "frame", frame, "path", path, "mode", a.mode())

		if a.opts.Ledger != nil {
			rec := ledger.Frame{RunID: run.ID, RollID: row.RollID, FrameNumber: frame.String(), Path: path}
			if err := a.opts.Ledger.RecordFrame(ctx, rec); err != nil {
				a.logger.Warn("ledger frame not recorded", "frame", frame, "error", err)
			}
		}
	}
}

func (a *Applier) resolve(frame roll.Frame) string {
	return roll.ResolvePath(a.opts.ImagesDir, a.opts.Pattern, frame, a.opts.Extension)
}

func (a *Applier) exists(path string) bool {
	_, err := os.Stat(path)
	if err == nil {
		return true
	}
	if !errors.Is(err, fs.ErrNotExist) {
		a.logger.Warn("cannot stat image", "path", path, "error", err)
	}
	return false
}

func (a *Applier) mode() string {
	if a.opts.InPlace {
		return "in-place"
	}
	return "sidecar"
}

func (a *Applier) startRun(ctx context.Context) (ledger.Run, error) {
	if a.opts.Ledger == nil {
		return ledger.Run{}, nil
	}
	run, err := a.opts.Ledger.StartRun(ctx, ledger.Run{
		CSVPath:   a.opts.CSVPath,
		ImagesDir: a.opts.ImagesDir,
		InPlace:   a.opts.InPlace,
	})
	if err != nil {
		return ledger.Run{}, fmt.Errorf("start ledger run: %w", err)
	}
	a.logger.Debug("ledger run started", "run_id", run.ID)
	return run, nil
}

func (a *Applier) finishRun(ctx context.Context, run ledger.Run, res Result, runErr error) {
	if a.opts.Ledger == nil {
		return
	}
	status := ledger.StatusCompleted
	var msg string
	switch {
	case runErr != nil:
		status = ledger.StatusFailed
		msg = runErr.Error()
	case len(res.Missing) > 0:
		status = ledger.StatusMissing
		msg = (&MissingFilesError{Paths: res.Missing}).Error()
	}
	if err := a.opts.Ledger.FinishRun(ctx, run.ID, status, len(res.Missing), msg); err != nil {
		a.logger.Warn("ledger run not finalized", "run_id", run.ID, "error", err)
	}
}
