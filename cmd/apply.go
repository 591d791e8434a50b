/*
Copyright © 2021 NAME HERE <EMAIL ADDRESS>

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"github.com/spf13/cobra"
)

// newApplyCommand represents the apply command
func newApplyCommand(g *globalFlags) *cobra.Command {
	f := &rollFlags{}

	applyCmd := &cobra.Command{
		Use:   "apply",
		Short: "Write roll metadata into scans or XMP sidecars",
		Long: `Apply reads every row of a roll CSV export, finds the scan for its frame
number and runs exiftool on it. For example:

filmtag apply --csv roll-42.csv --images ~/scans/roll-42
filmtag apply --csv roll-42.csv --images ~/scans/roll-42 --pattern "IMG_%04d" --ext tif --inplace

Rows whose frame_number is not a number are ignored. Scans that cannot be
found are listed when the run ends and the command exits non-zero. An
exiftool failure stops the run straight away.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := g.loadSettings(cmd)
			if err != nil {
				return err
			}

			s, err := openSession(cmd.Context(), cfg, f, cmd.OutOrStdout(), cmd.ErrOrStderr(), logger, true)
			if err != nil {
				return err
			}
			defer s.close()

			logger.Info("applying roll metadata",
				"csv", s.csvPath,
				"images", s.imagesDir,
				"pattern", s.settings.Images.Pattern,
				"inplace", s.settings.Images.InPlace,
			)
			_, err = s.applier.Apply(cmd.Context(), s.reader)
			return err
		},
	}

	bindRollFlags(applyCmd, f)
	return applyCmd
}
