// Package cli wires the f1stats stages into cobra commands.
package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"f1stats/internal/config"
	"f1stats/internal/logger"
)

// DefaultConfigPath is read when --config is not given and the file exists.
const DefaultConfigPath = "configs/f1stats.yaml"

// ErrDiscrepancies is returned by validate --strict when the report is not clean.
var ErrDiscrepancies = errors.New("statistics do not match the roster")

// RootOptions holds global flags for all commands.
type RootOptions struct {
	ConfigPath string
	LogLevel   string
	LogFormat  string
	DataDir    string
}

// NewRootCommand creates the f1stats command tree.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "f1stats",
		Short: "Formula 1 statistics ETL",
		Long: `Fetches season results from an Ergast-compatible API, aggregates them into
per-driver and per-team tallies, reconciles the document against the roster
and reports discrepancies.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVarP(&opts.ConfigPath, "config", "c", "", "path to YAML configuration file (default "+DefaultConfigPath+" when present)")
	cmd.PersistentFlags().StringVar(&opts.LogLevel, "log-level", "", "log level override (debug|info|warn|error)")
	cmd.PersistentFlags().StringVar(&opts.LogFormat, "log-format", "", "log format override (text|json|pretty)")
	cmd.PersistentFlags().StringVar(&opts.DataDir, "data-dir", "", "data directory override")

	cmd.AddCommand(NewFetchCommand(opts))
	cmd.AddCommand(NewReconcileCommand(opts))
	cmd.AddCommand(NewValidateCommand(opts))
	cmd.AddCommand(NewCheckCommand(opts))
	cmd.AddCommand(NewPipelineCommand(opts))
	cmd.AddCommand(NewChampionshipsCommand(opts))
	cmd.AddCommand(NewJuniorCommand(opts))
	cmd.AddCommand(NewStandingsCommand(opts))
	cmd.AddCommand(NewConfigCommand(opts))

	return cmd
}

// NewStageCommand returns the command tree preset to run one stage, so a
// per-stage binary behaves like `f1stats <stage> args...`.
func NewStageCommand(stage string, args []string) *cobra.Command {
	cmd := NewRootCommand()
	cmd.Use = stage
	cmd.SetArgs(append([]string{stage}, args...))

	return cmd
}

// env is what every command needs after flag parsing.
type env struct {
	cfg *config.Config
	log *logger.Logger
}

// load reads the configuration, applies flag overrides and builds the logger.
func (o *RootOptions) load(cmd *cobra.Command) (*env, error) {
	path := o.ConfigPath
	if path == "" {
		if _, err := os.Stat(DefaultConfigPath); err == nil {
			path = DefaultConfigPath
		}
	}

	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}

	if o.DataDir != "" {
		cfg.Data.Dir = o.DataDir
	}

	if o.LogLevel != "" {
		cfg.Logging.Level = o.LogLevel
	}

	if o.LogFormat != "" {
		cfg.Logging.Format = o.LogFormat
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid flags: %w", err)
	}

	log := logger.New(cmd.ErrOrStderr(), cfg.Logging.Level, cfg.Logging.Format)

	if path != "" {
		log.Debug("configuration loaded", "path", path, "config", cfg.String())
	}

	return &env{cfg: cfg, log: log}, nil
}

// printf writes one progress line to the command's stdout.
func printf(cmd *cobra.Command, format string, args ...any) {
	fmt.Fprintf(cmd.OutOrStdout(), format, args...)
}
