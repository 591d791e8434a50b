package cmd

import (
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/choiway/filmtag/internal/apply"
	"github.com/choiway/filmtag/internal/exifinfo"
)

func newPlanCommand(g *globalFlags) *cobra.Command {
	f := &rollFlags{}
	var showArgs bool

	planCmd := &cobra.Command{
		Use:   "plan",
		Short: "Show what apply would do without running exiftool",
		Long: `Plan resolves every row of a roll CSV export to its scan and prints a
table of frames, whether the scan exists, and the capture time and camera
already recorded in its EXIF. Nothing is written.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := g.loadSettings(cmd)
			if err != nil {
				return err
			}

			s, err := openSession(cmd.Context(), cfg, f, cmd.OutOrStdout(), cmd.ErrOrStderr(), logger, false)
			if err != nil {
				return err
			}
			defer s.close()

			entries, err := s.applier.Plan(s.reader)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, renderPlan(entries))
			ready, missing, skipped := countPlan(entries)
			fmt.Fprintf(out, "%d ready, %d missing, %d skipped\n", ready, missing, skipped)

			if showArgs {
				for _, entry := range entries {
					if entry.Status != apply.PlanReady {
						continue
					}
					fmt.Fprintf(out, "\nframe %s:\n  %s %s\n", entry.Frame, s.settings.ExifTool.Binary, quoteArgs(entry.Args))
				}
			}
			return nil
		},
	}

	bindRollFlags(planCmd, f)
	planCmd.Flags().BoolVar(&showArgs, "show-args", false, "print the exiftool command for each ready frame")
	return planCmd
}

func renderPlan(entries []apply.PlanEntry) string {
	headers := []string{"Row", "Frame", "Image", "Status", "EXIF Taken", "EXIF Camera"}
	rows := make([][]string, 0, len(entries))
	for i, entry := range entries {
		frame := entry.Row.FrameNumber
		image := ""
		if entry.Path != "" {
			image = filepath.Base(entry.Path)
		}
		var taken, camera string
		if entry.Status == apply.PlanReady {
			info, err := exifinfo.Read(entry.Path)
			switch {
			case err == nil:
				if !info.Taken.IsZero() {
					taken = info.Taken.Format("2006-01-02 15:04:05")
				}
				camera = info.Camera()
			case errors.Is(err, exifinfo.ErrNoExif):
				taken = "-"
			default:
				taken = "unreadable"
			}
		}
		rows = append(rows, []string{strconv.Itoa(i + 1), frame, image, string(entry.Status), taken, camera})
	}
	return renderTable(headers, rows, []columnAlignment{alignRight, alignRight})
}

func countPlan(entries []apply.PlanEntry) (ready, missing, skipped int) {
	for _, entry := range entries {
		switch entry.Status {
		case apply.PlanReady:
			ready++
		case apply.PlanMissing:
			missing++
		case apply.PlanSkipped:
			skipped++
		}
	}
	return ready, missing, skipped
}

func quoteArgs(args []string) string {
	quoted := make([]string, len(args))
	for i, arg := range args {
		if arg == "" || strings.ContainsAny(arg, " \t'\"%$") {
			quoted[i] = "'" + strings.ReplaceAll(arg, "'", `'\''`) + "'"
			continue
		}
		quoted[i] = arg
	}
	return strings.Join(quoted, " ")
}
