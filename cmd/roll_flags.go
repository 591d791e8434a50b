package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/choiway/filmtag/internal/apply"
	"github.com/choiway/filmtag/internal/config"
	"github.com/choiway/filmtag/internal/exiftool"
	"github.com/choiway/filmtag/internal/ledger"
	"github.com/choiway/filmtag/internal/roll"
)

// rollFlags are the options shared by apply and plan.
type rollFlags struct {
	csvPath        string
	imagesDir      string
	ext            string
	pattern        string
	inPlace        bool
	exiftoolBinary string
	exiftoolConfig string
	ledgerDSN      string

	// set by bind, used to tell explicit flags from defaults
	cmd *cobra.Command
}

func bindRollFlags(cmd *cobra.Command, f *rollFlags) {
	f.cmd = cmd
	flags := cmd.Flags()
	flags.StringVar(&f.csvPath, "csv", "", "roll CSV export path")
	flags.StringVar(&f.imagesDir, "images", "", "folder holding the scanned frames")
	flags.StringVar(&f.ext, "ext", "jpg", "image extension without dot")
	flags.StringVar(&f.pattern, "pattern", roll.DefaultPattern, "filename pattern without extension")
	flags.BoolVar(&f.inPlace, "inplace", false, "write metadata into the images instead of XMP sidecars")
	flags.StringVar(&f.exiftoolBinary, "exiftool", "", "exiftool executable (default from config, then PATH)")
	flags.StringVar(&f.exiftoolConfig, "exiftool-config", "", "exiftool config defining the XMP-filmmeta namespace")
	flags.StringVar(&f.ledgerDSN, "ledger", "", "record the run in a SQLite file or postgres:// database")
	_ = cmd.MarkFlagRequired("csv")
	_ = cmd.MarkFlagRequired("images")
}

func (f *rollFlags) changed(name string) bool {
	return f.cmd != nil && f.cmd.Flags().Changed(name)
}

// merge applies explicitly set flags on top of cfg.
func (f *rollFlags) merge(cfg *config.Config) (*config.Config, error) {
	out := *cfg
	if f.changed("ext") {
		out.Images.Extension = f.ext
	}
	if f.changed("pattern") {
		out.Images.Pattern = f.pattern
	}
	if f.changed("inplace") {
		out.Images.InPlace = f.inPlace
	}
	if f.changed("exiftool") {
		out.ExifTool.Binary = f.exiftoolBinary
	}
	if f.changed("exiftool-config") {
		out.ExifTool.ConfigPath = f.exiftoolConfig
	}
	if f.changed("ledger") {
		out.Ledger.DSN = f.ledgerDSN
	}
	if err := out.Normalize(); err != nil {
		return nil, err
	}
	if err := out.Validate(); err != nil {
		return nil, err
	}
	return &out, nil
}

// session holds what a command opened for one roll; close releases it.
type session struct {
	settings  *config.Config
	csvPath   string
	imagesDir string
	applier   *apply.Applier
	reader    *roll.Reader
	closers   []func()
}

func (s *session) close() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		s.closers[i]()
	}
}

// openSession resolves the exiftool config, opens the CSV and, when asked,
// the ledger. withLedger is false for dry runs.
func openSession(ctx context.Context, cfg *config.Config, f *rollFlags, stdout, stderr io.Writer, logger *slog.Logger, withLedger bool) (*session, error) {
	settings, err := f.merge(cfg)
	if err != nil {
		return nil, err
	}
	pattern, err := roll.ParsePattern(settings.Images.Pattern)
	if err != nil {
		return nil, err
	}

	csvPath, err := config.ExpandPath(strings.TrimSpace(f.csvPath))
	if err != nil {
		return nil, err
	}
	imagesDir, err := config.ExpandPath(strings.TrimSpace(f.imagesDir))
	if err != nil {
		return nil, err
	}

	s := &session{settings: settings, csvPath: csvPath, imagesDir: imagesDir}
	ok := false
	defer func() {
		if !ok {
			s.close()
		}
	}()

	configPath, cleanup, err := exiftool.ResolveConfig(settings.ExifTool.ConfigPath)
	if err != nil {
		return nil, err
	}
	s.closers = append(s.closers, cleanup)

	reader, err := roll.Open(csvPath)
	if err != nil {
		return nil, err
	}
	s.reader = reader
	s.closers = append(s.closers, func() { _ = reader.Close() })

	opts := apply.Options{
		ImagesDir:  imagesDir,
		Pattern:    pattern,
		Extension:  settings.Images.Extension,
		InPlace:    settings.Images.InPlace,
		ConfigPath: configPath,
		CSVPath:    csvPath,
	}
	if withLedger && settings.Ledger.DSN != "" {
		store, err := ledger.Open(ctx, settings.Ledger.DSN)
		if err != nil {
			return nil, fmt.Errorf("open ledger: %w", err)
		}
		opts.Ledger = store
		s.closers = append(s.closers, func() { _ = store.Close() })
	}

	tool := exiftool.Tool{Binary: settings.ExifTool.Binary, Stdout: stdout, Stderr: stderr}
	s.applier = apply.New(opts, tool, logger)
	ok = true
	return s, nil
}
