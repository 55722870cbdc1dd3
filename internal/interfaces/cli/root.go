// Package cli implements the probite command-line interface: operator
// entrypoints for running a discovery batch and scanning a subject for
// duplicate affairs without going through the REST API.
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/probite-fr/probite/internal/application/dedup"
	"github.com/probite-fr/probite/internal/application/discovery"
	"github.com/probite-fr/probite/internal/config"
	"github.com/probite-fr/probite/internal/infrastructure/monitoring/logging"
)

// Build-time variables injected via ldflags.
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// PipelineRunner triggers one full discovery batch.
type PipelineRunner interface {
	Run(ctx context.Context) (*discovery.BatchSummary, error)
}

// DuplicateScanner runs the read-only duplicate scan for one subject.
type DuplicateScanner interface {
	Scan(ctx context.Context, subjectID uuid.UUID) (*dedup.ScanResult, error)
}

// Dependencies carries the wired services a subcommand runs against, plus the
// teardown for whatever infrastructure the factory opened.
type Dependencies struct {
	Pipeline PipelineRunner
	Scanner  DuplicateScanner
	Close    func(ctx context.Context) error // may be nil
}

// Factory builds the service dependencies once the configuration and logger
// are known.  main injects the production wiring; tests inject stubs.
type Factory func(ctx context.Context, cfg *config.Config, logger logging.Logger) (*Dependencies, error)

// RootOptions holds the global CLI flags.
type RootOptions struct {
	ConfigPath string
	LogLevel   string
	Verbose    bool
}

// cliContext carries initialized state from the root command to subcommands.
type cliContext struct {
	config  *config.Config
	logger  logging.Logger
	factory Factory
}

type cliContextKey struct{}

// NewRootCommand creates the probite root command with global flags and both
// subcommands registered.
func NewRootCommand(factory Factory) *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:     "probite",
		Short:   "Probite — pipeline de découverte d'affaires judiciaires",
		Long:    "Probite discovers judicial affairs of French public figures from\nknowledge-graph claims and encyclopedia text, reconciles them against the\nexisting database, and records every new affair with its sources.",
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", Version, GitCommit, BuildDate),
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return persistentPreRun(cmd, opts, factory)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := cmd.PersistentFlags()
	pf.StringVarP(&opts.ConfigPath, "config", "c", "", "config file path (default: PROBITE_* environment)")
	pf.StringVar(&opts.LogLevel, "log-level", "", "log level override (debug, info, warn, error)")
	pf.BoolVarP(&opts.Verbose, "verbose", "v", false, "shorthand for --log-level=debug")

	cmd.AddCommand(newSyncCmd(), newScanDuplicatesCmd())
	return cmd
}

// persistentPreRun loads configuration and builds the CLI logger, storing
// both on the command context for the subcommands.
func persistentPreRun(cmd *cobra.Command, opts *RootOptions, factory Factory) error {
	var (
		cfg *config.Config
		err error
	)
	if opts.ConfigPath != "" {
		cfg, err = config.Load(opts.ConfigPath)
	} else {
		cfg, err = config.LoadFromEnv()
	}
	if err != nil {
		return err
	}

	level := cfg.Log.Level
	if opts.LogLevel != "" {
		level = strings.ToLower(opts.LogLevel)
	}
	if opts.Verbose {
		level = "debug"
	}

	// CLI output goes to stdout; logs stay on stderr.
	logger, err := logging.NewLogger(logging.LogConfig{
		Level:            level,
		Format:           "console",
		OutputPaths:      []string{"stderr"},
		ErrorOutputPaths: []string{"stderr"},
	})
	if err != nil {
		return err
	}

	cmd.SetContext(context.WithValue(cmd.Context(), cliContextKey{},
		&cliContext{config: cfg, logger: logger, factory: factory}))
	return nil
}

// getCLIContext extracts the initialized CLI state from the command context.
func getCLIContext(cmd *cobra.Command) (*cliContext, error) {
	ctx, ok := cmd.Context().Value(cliContextKey{}).(*cliContext)
	if !ok || ctx == nil {
		return nil, fmt.Errorf("cli context not initialized")
	}
	return ctx, nil
}

// withDependencies builds the services, runs fn, and tears the wiring down.
func withDependencies(cmd *cobra.Command, fn func(ctx context.Context, deps *Dependencies) error) error {
	cliCtx, err := getCLIContext(cmd)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	deps, err := cliCtx.factory(ctx, cliCtx.config, cliCtx.logger)
	if err != nil {
		return fmt.Errorf("failed to initialize services: %w", err)
	}
	if deps.Close != nil {
		defer func() {
			if cerr := deps.Close(context.WithoutCancel(ctx)); cerr != nil {
				cliCtx.logger.Warn("failed to close services", logging.Err(cerr))
			}
		}()
	}
	return fn(ctx, deps)
}

// printJSON writes the result as indented JSON on the command's stdout.
func printJSON(cmd *cobra.Command, v interface{}) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
