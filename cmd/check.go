package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/choiway/filmtag/internal/deps"
	"github.com/choiway/filmtag/internal/exiftool"
)

func newCheckCommand(g *globalFlags) *cobra.Command {
	var binary, configPath string

	checkCmd := &cobra.Command{
		Use:   "check",
		Short: "Verify exiftool and its tag configuration are available",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := g.loadSettings(cmd)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("exiftool") {
				cfg.ExifTool.Binary = binary
			}
			if cmd.Flags().Changed("exiftool-config") {
				cfg.ExifTool.ConfigPath = configPath
			}

			statuses := deps.CheckBinaries([]deps.Requirement{{
				Name:        "exiftool",
				Command:     cfg.ExifTool.Binary,
				Description: "writes XMP metadata",
			}})

			resolved, cleanup, err := exiftool.ResolveConfig(cfg.ExifTool.ConfigPath)
			defer cleanup()
			configStatus := deps.Status{Name: "exiftool config", Description: "defines XMP-filmmeta tags"}
			if err != nil {
				configStatus.Command = cfg.ExifTool.ConfigPath
				configStatus.Detail = err.Error()
			} else {
				configStatus = deps.CheckFile(configStatus.Name, resolved, configStatus.Description)
				if strings.TrimSpace(cfg.ExifTool.ConfigPath) == "" {
					if _, beside, _ := exiftool.BesideExecutable(); !beside {
						configStatus.Command = "(built-in)"
					}
				}
			}
			statuses = append(statuses, configStatus)

			fmt.Fprintln(cmd.OutOrStdout(), renderDeps(statuses))
			if missing := deps.Missing(statuses); len(missing) > 0 {
				names := make([]string, 0, len(missing))
				for _, m := range missing {
					names = append(names, m.Name)
				}
				return fmt.Errorf("missing dependencies: %s", strings.Join(names, ", "))
			}
			return nil
		},
	}

	checkCmd.Flags().StringVar(&binary, "exiftool", "", "exiftool executable to check")
	checkCmd.Flags().StringVar(&configPath, "exiftool-config", "", "exiftool config to check")
	return checkCmd
}

func renderDeps(statuses []deps.Status) string {
	rows := make([][]string, 0, len(statuses))
	for _, s := range statuses {
		rows = append(rows, []string{s.Name, s.Command, yesNo(s.Available), s.Detail})
	}
	return renderTable([]string{"Dependency", "Command", "Available", "Detail"}, rows, nil)
}
