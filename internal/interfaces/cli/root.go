// Package cli implements the lipinski command line: analyze a compound table,
// detect its SMILES column, print the version.
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/turtacn/lipinski-analyzer/internal/app"
	"github.com/turtacn/lipinski-analyzer/internal/application/analysis"
	"github.com/turtacn/lipinski-analyzer/internal/config"
	"github.com/turtacn/lipinski-analyzer/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/lipinski-analyzer/pkg/errors"
)

// Build-time variables injected via ldflags.
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// Output formats accepted by --output-format.
const (
	OutputTable = "table"
	OutputJSON  = "json"
	OutputText  = "text"
)

// cliContextKey is the context key for CLIContext.
type cliContextKey struct{}

// RootOptions holds global CLI flags.
type RootOptions struct {
	ConfigPath   string
	LogLevel     string
	OutputFormat string
	Verbose      bool
	NoColor      bool
	Timeout      time.Duration
}

// ServiceFactory builds the analysis service for one invocation. The returned
// func releases whatever the service holds.
type ServiceFactory func(ctx context.Context, cfg *config.Config, logger logging.Logger) (analysis.Service, func(), error)

// CLIContext carries initialized dependencies through the command tree.
type CLIContext struct {
	Config       *config.Config
	Logger       logging.Logger
	OutputFormat string
	Verbose      bool
	NoColor      bool
	Timeout      time.Duration

	factory ServiceFactory
}

// Service builds the analysis service from the loaded configuration.
func (c *CLIContext) Service(ctx context.Context) (analysis.Service, func(), error) {
	return c.factory(ctx, c.Config, c.Logger)
}

type rootSettings struct {
	factory ServiceFactory
	logger  logging.Logger
}

// RootOption customizes NewRootCommand.
type RootOption func(*rootSettings)

// WithServiceFactory replaces the config-driven service construction.
func WithServiceFactory(f ServiceFactory) RootOption {
	return func(s *rootSettings) { s.factory = f }
}

// WithLogger uses l instead of building a console logger from --log-level.
func WithLogger(l logging.Logger) RootOption {
	return func(s *rootSettings) { s.logger = l }
}

// NewRootCommand creates the root command with its global flags and subcommands.
func NewRootCommand(opts ...RootOption) *cobra.Command {
	settings := &rootSettings{factory: defaultServiceFactory}
	for _, o := range opts {
		o(settings)
	}
	ro := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "lipinski",
		Short: "Lipinski Rule-of-Five analysis for compound tables",
		Long: "lipinski reads a CSV, TSV or Excel table of compounds, finds the SMILES column,\n" +
			"computes molecular weight, logP, H-bond donors and acceptors for every row and\n" +
			"classifies each compound against Lipinski's Rule of Five.",
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", Version, GitCommit, BuildDate),
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return persistentPreRun(cmd, ro, settings)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := cmd.PersistentFlags()
	pf.StringVarP(&ro.ConfigPath, "config", "c", "", "config file path (default: ./lipinski.yaml)")
	pf.StringVar(&ro.LogLevel, "log-level", logging.LevelWarn, "log level (debug, info, warn, error)")
	pf.StringVarP(&ro.OutputFormat, "output-format", "f", OutputTable, "output format (table, json, text)")
	pf.BoolVarP(&ro.Verbose, "verbose", "v", false, "enable verbose output")
	pf.BoolVar(&ro.NoColor, "no-color", false, "disable colored output")
	pf.DurationVar(&ro.Timeout, "timeout", 0, "overall operation timeout (0 = analysis.timeout from config)")

	cmd.AddCommand(
		NewAnalyzeCmd(),
		NewDetectCmd(),
		NewVersionCmd(),
	)
	return cmd
}

func defaultServiceFactory(ctx context.Context, cfg *config.Config, logger logging.Logger) (analysis.Service, func(), error) {
	a, err := app.New(ctx, cfg, logger, analysis.SourceCLI)
	if err != nil {
		return nil, nil, err
	}
	return a.Service, func() { _ = a.Close() }, nil
}

// persistentPreRun initializes config and logger, then stores CLIContext.
func persistentPreRun(cmd *cobra.Command, ro *RootOptions, settings *rootSettings) error {
	format := strings.ToLower(ro.OutputFormat)
	switch format {
	case OutputTable, OutputJSON, OutputText:
	default:
		return errors.Newf(errors.ErrCodeValidation, "unknown output format %q", ro.OutputFormat)
	}

	cfg, err := initConfig(ro)
	if err != nil {
		return fmt.Errorf("config initialization failed: %w", err)
	}

	logger := settings.logger
	if logger == nil {
		logger, err = initLogger(ro)
		if err != nil {
			return fmt.Errorf("logger initialization failed: %w", err)
		}
	}

	if ro.NoColor {
		color.NoColor = true
	}

	cliCtx := &CLIContext{
		Config:       cfg,
		Logger:       logger,
		OutputFormat: format,
		Verbose:      ro.Verbose,
		NoColor:      ro.NoColor,
		Timeout:      ro.Timeout,
		factory:      settings.factory,
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	cmd.SetContext(context.WithValue(ctx, cliContextKey{}, cliCtx))
	return nil
}

// initConfig loads the explicit --config file, else the first file found on
// the search path, else the environment alone.
func initConfig(ro *RootOptions) (*config.Config, error) {
	if ro.ConfigPath != "" {
		return config.Load(ro.ConfigPath)
	}

	searchPaths := []string{"./lipinski.yaml"}
	if home, err := os.UserHomeDir(); err == nil {
		searchPaths = append(searchPaths, filepath.Join(home, ".lipinski", "config.yaml"))
	}
	searchPaths = append(searchPaths, "/etc/lipinski/config.yaml")

	for _, p := range searchPaths {
		if _, err := os.Stat(p); err == nil {
			return config.Load(p)
		}
	}
	return config.LoadFromEnv()
}

// initLogger creates a console logger writing to stderr so stdout stays
// parseable.
func initLogger(ro *RootOptions) (logging.Logger, error) {
	level := strings.ToLower(ro.LogLevel)
	if ro.Verbose {
		level = logging.LevelDebug
	}
	return logging.NewLogger(logging.LogConfig{
		Level:            level,
		Format:           "console",
		OutputPaths:      []string{"stderr"},
		ErrorOutputPaths: []string{"stderr"},
	})
}

// GetCLIContext extracts CLIContext from a command's context.
func GetCLIContext(cmd *cobra.Command) (*CLIContext, error) {
	ctx := cmd.Context()
	if ctx == nil {
		return nil, errors.New(errors.ErrCodeInternal, "command context is nil")
	}
	cliCtx, ok := ctx.Value(cliContextKey{}).(*CLIContext)
	if !ok || cliCtx == nil {
		return nil, errors.New(errors.ErrCodeInternal, "CLIContext not found in command context")
	}
	return cliCtx, nil
}

// commandContext applies --timeout, or the configured analysis timeout.
func (c *CLIContext) commandContext(parent context.Context) (context.Context, context.CancelFunc) {
	timeout := c.Timeout
	if timeout <= 0 && c.Config != nil {
		timeout = c.Config.Analysis.Timeout
	}
	if timeout <= 0 {
		return context.WithCancel(parent)
	}
	return context.WithTimeout(parent, timeout)
}

// Execute runs the root command and prints any error to stderr.
func Execute() error {
	rootCmd := NewRootCommand()
	if err := rootCmd.Execute(); err != nil {
		PrintError(rootCmd, err)
		return err
	}
	return nil
}

// printJSON outputs data as indented JSON to stdout.
func printJSON(cmd *cobra.Command, data interface{}) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}

// PrintError writes a formatted error message to stderr. Application errors
// print their message and detail without the code prefix.
func PrintError(cmd *cobra.Command, err error) {
	if err == nil {
		return
	}
	msg := err.Error()
	var appErr *errors.AppError
	if errors.As(err, &appErr) {
		msg = appErr.Message
		if appErr.Detail != "" {
			msg += ": " + appErr.Detail
		}
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "%s %s\n", color.RedString("Error:"), msg)
}

//Personal.AI order the ending
