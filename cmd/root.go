package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/choiway/filmtag/internal/config"
	"github.com/choiway/filmtag/internal/logging"
)

// globalFlags are the persistent flags every command understands.
type globalFlags struct {
	cfgFile   string
	logLevel  string
	logFormat string
}

func newRootCommand() *cobra.Command {
	g := &globalFlags{}

	rootCmd := &cobra.Command{
		Use:   "filmtag",
		Short: "Film roll metadata tagger",
		Long: `filmtag reads the CSV export of a film roll log and writes each frame's
caption, location, keywords and exposure data into the matching scan
with exiftool, either as an XMP sidecar or into the image itself.
`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	rootCmd.PersistentFlags().StringVarP(&g.cfgFile, "config", "c", "", "config file (default: ~/.config/filmtag/config.toml)")
	rootCmd.PersistentFlags().StringVar(&g.logLevel, "log-level", "", "log level: debug, info, warn, error")
	rootCmd.PersistentFlags().StringVar(&g.logFormat, "log-format", "", "log format: console, json")

	rootCmd.AddCommand(newApplyCommand(g))
	rootCmd.AddCommand(newPlanCommand(g))
	rootCmd.AddCommand(newCheckCommand(g))
	rootCmd.AddCommand(newHistoryCommand(g))
	rootCmd.AddCommand(newInitCommand())

	return rootCmd
}

// Execute executes the root command.
func Execute() error {
	err := newRootCommand().ExecuteContext(context.Background())
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
	}
	return err
}

// loadSettings reads the config file and applies the persistent flag
// overrides, then builds the logger on the command's stderr.
func (g *globalFlags) loadSettings(cmd *cobra.Command) (*config.Config, *slog.Logger, error) {
	cfg, _, _, err := config.Load(g.cfgFile)
	if err != nil {
		return nil, nil, err
	}
	flags := cmd.Flags()
	if flags.Changed("log-level") {
		cfg.Logging.Level = g.logLevel
	}
	if flags.Changed("log-format") {
		cfg.Logging.Format = g.logFormat
	}
	if err := cfg.Normalize(); err != nil {
		return nil, nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}

	logger, err := logging.NewFromConfig(cfg, cmd.ErrOrStderr())
	if err != nil {
		return nil, nil, err
	}
	return cfg, logger, nil
}
