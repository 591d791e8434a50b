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
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/choiway/filmtag/internal/config"
	"github.com/choiway/filmtag/internal/exiftool"
	"github.com/choiway/filmtag/internal/ledger"
)

// newInitCommand represents the init command
func newInitCommand() *cobra.Command {
	var (
		path      string
		overwrite bool
		dsn       string
	)

	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Write a sample config and the exiftool tag definitions",
		Long: `Init writes a commented config.toml (default ~/.config/filmtag/config.toml)
and an exiftool_config defining the XMP-filmmeta namespace next to it.
With --ledger it also creates the ledger tables. For example:

filmtag init
filmtag init --path ./filmtag.toml --ledger ./filmtag.db`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			target := strings.TrimSpace(path)
			if target == "" {
				defaultPath, err := config.DefaultConfigPath()
				if err != nil {
					return err
				}
				target = defaultPath
			} else {
				expanded, err := config.ExpandPath(target)
				if err != nil {
					return err
				}
				target = expanded
			}
			exiftoolConfig := filepath.Join(filepath.Dir(target), exiftool.ConfigFileName)

			if !overwrite {
				for _, p := range []string{target, exiftoolConfig} {
					if _, err := os.Stat(p); err == nil {
						return fmt.Errorf("%s already exists; pass --overwrite to replace it", p)
					} else if !errors.Is(err, fs.ErrNotExist) {
						return fmt.Errorf("stat %s: %w", p, err)
					}
				}
			}

			out := cmd.OutOrStdout()
			if err := config.CreateSample(target); err != nil {
				return fmt.Errorf("write config: %w", err)
			}
			fmt.Fprintf(out, "Wrote config to %s\n", target)

			if err := exiftool.WriteConfig(exiftoolConfig); err != nil {
				return err
			}
			fmt.Fprintf(out, "Wrote exiftool config to %s\n", exiftoolConfig)

			if dsn = strings.TrimSpace(dsn); dsn != "" {
				if !strings.Contains(dsn, "://") {
					expanded, err := config.ExpandPath(dsn)
					if err != nil {
						return err
					}
					dsn = expanded
				}
				store, err := ledger.Open(cmd.Context(), dsn)
				if err != nil {
					return fmt.Errorf("initialize ledger: %w", err)
				}
				if err := store.Close(); err != nil {
					return fmt.Errorf("close ledger: %w", err)
				}
				fmt.Fprintf(out, "Initialized ledger at %s\n", dsn)
			}
			return nil
		},
	}

	initCmd.Flags().StringVar(&path, "path", "", "where to write config.toml")
	initCmd.Flags().BoolVar(&overwrite, "overwrite", false, "replace existing files")
	initCmd.Flags().StringVar(&dsn, "ledger", "", "create ledger tables in a SQLite file or postgres:// database")
	return initCmd
}
