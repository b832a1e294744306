package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/nao1215/sitecheck/internal/config"
	"github.com/nao1215/sitecheck/internal/walker"
	"github.com/nao1215/sitecheck/internal/watch"
	"github.com/spf13/cobra"
)

// NewWatchCmd creates the watch command.
func NewWatchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch [root]",
		Short: "Re-run every check whenever the site tree changes",
		Long: `Watch runs every check once and then again whenever the site tree
changes: a page or sitemap.xml is edited, or any file or directory is
created, removed or renamed.

Changes are debounced: a burst of writes triggers a single run once the
tree has been quiet for the debounce period. Press Ctrl+C to stop.

Examples:
  sitecheck watch
  sitecheck watch --debounce 1s public/`,
		Args: cobra.MaximumNArgs(1),
		RunE: runWatchCmd,
	}

	addReportFlags(cmd)
	cmd.Flags().Duration("debounce", config.DefaultDebounce,
		"Quiet period after the last change before checks re-run")

	return cmd
}

// runWatchCmd executes the watch command.
func runWatchCmd(cmd *cobra.Command, args []string) error {
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

	w, err := watch.New(watch.Config{
		Root:        cfg.Roots[0],
		Debounce:    cfg.Debounce,
		MarkupExt:   cfg.MarkupExt,
		SitemapFile: cfg.SitemapFile,
	}, walker.New(
		walker.WithIgnoredDirs(cfg.IgnoredDirs...),
		walker.WithIgnorePatterns(cfg.IgnorePatterns...),
		walker.WithLogger(logger),
	), logger)
	if err != nil {
		return err
	}
	// Watch before the first run so no change between the two is lost.
	if err := w.Start(ctx); err != nil {
		return fmt.Errorf("failed to start watcher: %w", err)
	}
	defer w.Stop()

	return watchLoop(ctx, w.Triggers(), logger, func() error {
		return runChecks(ctx, cmd, cfg, logger)
	})
}

// watchLoop runs once and then once per trigger until ctx is done or the
// trigger channel closes. Failed checks do not stop the loop.
func watchLoop(ctx context.Context, triggers <-chan watch.Trigger, logger *slog.Logger, run func() error) error {
	runOnce := func() error {
		err := run()
		if err == nil || isCheckFailed(err) || ctx.Err() != nil {
			return nil
		}
		return err
	}

	if err := runOnce(); err != nil {
		return err
	}
	logger.Info("watching for changes")

	for {
		select {
		case <-ctx.Done():
			return nil
		case trig, ok := <-triggers:
			if !ok {
				return nil
			}
			logger.Info("re-running checks", "changed", trig.Paths)
			if err := runOnce(); err != nil {
				return err
			}
		}
	}
}
