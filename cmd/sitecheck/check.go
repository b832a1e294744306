package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/nao1215/sitecheck/internal/config"
	"github.com/nao1215/sitecheck/internal/database"
	sitelog "github.com/nao1215/sitecheck/internal/log"
	"github.com/nao1215/sitecheck/internal/model"
	"github.com/nao1215/sitecheck/internal/pipeline"
	"github.com/nao1215/sitecheck/internal/report"
	"github.com/spf13/cobra"
)

// NewCheckCmd creates the check command.
func NewCheckCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check [root...]",
		Short: "Run every check against one or more site roots",
		Long: `Check runs the link, sitemap and component checks against each site root.

The checks are independent: a missing sitemap does not stop the link check.
Several roots are checked concurrently and reported in argument order.
The current directory is used when no root is given.

Examples:
  # Check the site in the current directory
  sitecheck check

  # Check two sites, at most two at a time, and keep the results
  sitecheck check --batch 2 --save public/ docs/site/

  # Write a Markdown report for a CI job summary
  sitecheck check -m -o report.md`,
		Args: cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheckCmd(cmd, args)
		},
	}

	addReportFlags(cmd)
	cmd.Flags().IntP("batch", "b", config.DefaultBatchSize,
		"Number of site roots checked concurrently")

	return cmd
}

// addReportFlags adds the flags shared by every command that runs checks.
func addReportFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: .sitecheck in current dir, XDG config dir, or home)")
	cmd.Flags().BoolP("json", "j", false,
		"Output JSON report (mutually exclusive with --markdown)")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output Markdown report (mutually exclusive with --json)")
	cmd.Flags().StringP("output", "o", "",
		"Write report to specified file path (creates directories if needed)")
	cmd.Flags().Bool("save", false,
		"Store the run in the history database")
	cmd.Flags().String("db-dir", config.XDGDataDir(),
		"Directory holding the history database")
}

// runCheckCmd executes the check command and the single-check commands.
// With no checks every check runs.
func runCheckCmd(cmd *cobra.Command, args []string, checks ...string) error {
	cfg, err := buildConfig(cmd, args)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logger := setupLogger(cmd, cfg)
	slog.SetDefault(logger)

	ctx, stop := signalContext(cmd.Context())
	defer stop()

	return runChecks(ctx, cmd, cfg, logger, checks...)
}

// signalContext returns a context cancelled on SIGINT or SIGTERM.
func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	if parent == nil {
		parent = context.Background()
	}
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}

// getVerboseFlag retrieves the verbose flag from the command or its parent.
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		verbose, err = cmd.Root().PersistentFlags().GetBool("verbose")
		if err != nil {
			return false
		}
	}
	return verbose
}

// buildConfig creates a Config from the configuration file and cobra
// command flags. Flags a command does not define keep their defaults.
func buildConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.NewConfig()
	cfg.Verbose = getVerboseFlag(cmd)

	flags := cmd.Flags()
	var err error

	if flags.Lookup("config") != nil {
		if cfg.ConfigFilePath, err = flags.GetString("config"); err != nil {
			return nil, err
		}
	}

	// An explicitly named config file must exist; the implicit lookup is optional.
	configPath := config.FindConfigFile(cfg.ConfigFilePath)
	switch {
	case configPath != "":
		file, err := config.LoadConfigFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
		cfg.Apply(file)
	case cfg.ConfigFilePath != "":
		return nil, fmt.Errorf("%w: %s", config.ErrConfigNotFound, cfg.ConfigFilePath)
	}

	if flags.Lookup("json") != nil {
		if cfg.JSONReport, err = flags.GetBool("json"); err != nil {
			return nil, err
		}
		if cfg.MarkdownReport, err = flags.GetBool("markdown"); err != nil {
			return nil, err
		}
		if cfg.ReportFile, err = flags.GetString("output"); err != nil {
			return nil, err
		}
		if cfg.SaveHistory, err = flags.GetBool("save"); err != nil {
			return nil, err
		}
	}
	if flags.Lookup("db-dir") != nil {
		if cfg.DBDir, err = flags.GetString("db-dir"); err != nil {
			return nil, err
		}
	}
	if flags.Lookup("batch") != nil {
		if cfg.BatchSize, err = flags.GetInt("batch"); err != nil {
			return nil, err
		}
	}
	if flags.Lookup("debounce") != nil {
		if cfg.Debounce, err = flags.GetDuration("debounce"); err != nil {
			return nil, err
		}
	}

	if len(args) == 0 {
		args = []string{"."}
	}
	cfg.Roots, err = absRoots(args)
	if err != nil {
		return nil, err
	}
	return cfg, nil
}

// absRoots makes every root absolute so that history entries of the same
// site match regardless of the working directory.
func absRoots(roots []string) ([]string, error) {
	out := make([]string, len(roots))
	for i, root := range roots {
		abs, err := filepath.Abs(root)
		if err != nil {
			return nil, fmt.Errorf("resolve site root %s: %w", root, err)
		}
		out[i] = abs
	}
	return out, nil
}

// setupLogger creates a structured logger on the command's error stream.
// Paths under the site root are logged relative to it. With several roots
// the working directory is used instead.
func setupLogger(cmd *cobra.Command, cfg *config.Config) *slog.Logger {
	root := logRoot(cfg.Roots)
	if jsonLogs, err := cmd.Flags().GetBool("log-json"); err == nil && jsonLogs {
		return sitelog.NewJSONLogger(cmd.ErrOrStderr(), cfg.Verbose, root)
	}
	return sitelog.NewLogger(cmd.ErrOrStderr(), cfg.Verbose, root)
}

// logRoot returns the directory log paths are made relative to.
func logRoot(roots []string) string {
	if len(roots) == 1 {
		return roots[0]
	}
	cwd, err := os.Getwd()
	if err != nil {
		return ""
	}
	return cwd
}

// runChecks checks every configured root, prints the reports in root order
// and saves them when requested. It returns ErrCheckFailed when any report
// did not pass.
func runChecks(ctx context.Context, cmd *cobra.Command, cfg *config.Config, logger *slog.Logger, checks ...string) error {
	logger.Debug("starting checks",
		"roots", cfg.Roots,
		"checks", checks,
		"batch", cfg.BatchSize,
	)

	var db *database.HistoryDB
	if cfg.SaveHistory {
		var err error
		db, err = database.Open(cfg.DBDir, database.DefaultOptions())
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		defer db.Close()
	}

	bp := pipeline.NewBatchProcessor(
		func(root string) (*pipeline.Pipeline, error) {
			site, err := pipeline.NewSiteForRoot(root, cfg, logger)
			if err != nil {
				return nil, err
			}
			p, err := pipeline.DefaultPipeline(site, []pipeline.Option{
				pipeline.WithLogger(logger),
				pipeline.WithContinueOnError(true),
			}, logger, checks...)
			if err != nil {
				return nil, err
			}
			logger.Debug("pipeline ready", "root", root, "checks", p.StepNames())
			return p, nil
		},
		pipeline.WithConcurrency(cfg.BatchSize),
		pipeline.WithBatchLogger(logger),
	)

	reports, err := bp.ProcessBatch(ctx, cfg.Roots)
	if err != nil {
		return err
	}

	writer, closer, err := newReportWriter(cmd, cfg)
	if err != nil {
		return err
	}
	defer closer()

	failed := false
	for _, r := range reports {
		if _, err := writer.Write(r); err != nil {
			return fmt.Errorf("failed to write report: %w", err)
		}
		if err := saveReport(ctx, db, r, logger); err != nil {
			logger.Error("failed to save report", "root", r.Root, "error", err)
		}
		if !r.Passed() {
			failed = true
		}
	}

	if failed {
		return ErrCheckFailed
	}
	return nil
}

// newReportWriter returns the writer for the configured output. The console
// text output is kept when a JSON or Markdown report goes to a file.
func newReportWriter(cmd *cobra.Command, cfg *config.Config) (report.Writer, func(), error) {
	textOpts := []report.TextWriterOption{
		report.WithSitemapName(cfg.SitemapFile),
		report.WithShowRoot(len(cfg.Roots) > 1),
	}
	console := report.NewTextWriter(cmd.OutOrStdout(), cmd.ErrOrStderr(), textOpts...)
	noop := func() {}

	if cfg.ReportFile == "" {
		switch {
		case cfg.JSONReport:
			return report.NewJSONWriter(cmd.OutOrStdout(), report.WithPrettyPrint(), report.WithVersion(getVersion())), noop, nil
		case cfg.MarkdownReport:
			return report.NewMarkdownWriter(cmd.OutOrStdout()), noop, nil
		default:
			return console, noop, nil
		}
	}

	f, err := createReportFile(cfg.ReportFile)
	if err != nil {
		return nil, nil, err
	}
	closer := func() { _ = f.Close() }

	var file report.Writer
	switch {
	case cfg.JSONReport:
		file = report.NewJSONWriter(f, report.WithPrettyPrint(), report.WithVersion(getVersion()))
	case cfg.MarkdownReport:
		file = report.NewMarkdownWriter(f)
	default:
		file = report.NewTextWriter(f, f, textOpts...)
	}
	return report.NewMultiWriter(console, file), closer, nil
}

// createReportFile creates or truncates path, creating parent directories.
func createReportFile(path string) (io.WriteCloser, error) {
	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create output directory: %w", err)
		}
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600) //nolint:gosec // User-provided output path is intentional
	if err != nil {
		return nil, fmt.Errorf("failed to create output file: %w", err)
	}
	return f, nil
}

// saveReport saves the report to the database. If db is nil, this is a no-op.
func saveReport(ctx context.Context, db *database.HistoryDB, r *model.Report, logger *slog.Logger) error {
	if db == nil {
		return nil
	}
	previous, err := db.GetLatestReport(ctx, r.Root)
	if err != nil {
		return err
	}
	id, err := db.SaveReport(ctx, r)
	if err != nil {
		return err
	}
	logger.Debug("report saved", "root", r.Root, "id", id)
	if previous != nil {
		diff := compareReports(previous, r)
		logger.Debug("changes since previous run",
			"root", r.Root,
			"new", len(diff.NewDiagnostics),
			"resolved", len(diff.ResolvedDiagnostics),
			"direction", diff.Change.Direction,
		)
	}
	return nil
}

// isCheckFailed reports whether err only signals failed checks.
func isCheckFailed(err error) bool {
	return errors.Is(err, ErrCheckFailed)
}
