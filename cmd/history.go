package cmd

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/choiway/filmtag/internal/ledger"
)

func newHistoryCommand(g *globalFlags) *cobra.Command {
	var (
		dsn   string
		limit int
		runID string
	)

	historyCmd := &cobra.Command{
		Use:   "history",
		Short: "List recorded apply runs",
		Long: `History reads the ledger written by apply --ledger (or [ledger] dsn in
the config file). With --run it lists the frames a single run tagged, which
shows how far a run got before an exiftool failure stopped it.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := g.loadSettings(cmd)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("ledger") {
				cfg.Ledger.DSN = dsn
				if err := cfg.Normalize(); err != nil {
					return err
				}
			}
			if cfg.Ledger.DSN == "" {
				return errors.New("no ledger configured; pass --ledger or set [ledger] dsn")
			}

			store, err := ledger.Open(cmd.Context(), cfg.Ledger.DSN)
			if err != nil {
				return fmt.Errorf("open ledger: %w", err)
			}
			defer store.Close()

			out := cmd.OutOrStdout()
			if id := strings.TrimSpace(runID); id != "" {
				frames, err := store.Frames(cmd.Context(), id)
				if err != nil {
					return err
				}
				if len(frames) == 0 {
					fmt.Fprintf(out, "No frames recorded for run %s\n", id)
					return nil
				}
				fmt.Fprintln(out, renderFrames(frames))
				return nil
			}

			runs, err := store.Runs(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if len(runs) == 0 {
				fmt.Fprintln(out, "No runs recorded")
				return nil
			}
			fmt.Fprintln(out, renderRuns(runs))
			return nil
		},
	}

	historyCmd.Flags().StringVar(&dsn, "ledger", "", "ledger SQLite file or postgres:// database")
	historyCmd.Flags().IntVarP(&limit, "limit", "n", 20, "number of runs to show")
	historyCmd.Flags().StringVar(&runID, "run", "", "show the frames tagged by one run")
	return historyCmd
}

func renderRuns(runs []ledger.Run) string {
	rows := make([][]string, 0, len(runs))
	for _, run := range runs {
		rows = append(rows, []string{
			run.ID,
			formatTime(run.StartedAt),
			string(run.Status),
			strconv.Itoa(run.Applied),
			strconv.Itoa(run.Missing),
			yesNo(run.InPlace),
			run.CSVPath,
		})
	}
	headers := []string{"Run", "Started", "Status", "Applied", "Missing", "In-place", "CSV"}
	return renderTable(headers, rows, []columnAlignment{alignLeft, alignLeft, alignLeft, alignRight, alignRight})
}

func renderFrames(frames []ledger.Frame) string {
	rows := make([][]string, 0, len(frames))
	for _, frame := range frames {
		rows = append(rows, []string{
			frame.FrameNumber,
			frame.RollID,
			frame.Path,
			formatTime(frame.AppliedAt),
		})
	}
	return renderTable([]string{"Frame", "Roll", "Image", "Applied"}, rows, []columnAlignment{alignRight})
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Local().Format("2006-01-02 15:04:05")
}
