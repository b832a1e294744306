package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/nao1215/sitecheck/internal/model"
	"golang.org/x/sync/errgroup"
)

// DefaultConcurrency is the number of roots checked at once when
// WithConcurrency is not given.
const DefaultConcurrency = 4

// Factory creates a fresh pipeline for one site root.
type Factory func(root string) (*Pipeline, error)

// BatchProcessor checks multiple site roots concurrently.
type BatchProcessor struct {
	factory     Factory
	concurrency int
	logger      *slog.Logger
}

// BatchOption configures a BatchProcessor.
type BatchOption func(*BatchProcessor)

// WithBatchLogger sets a custom logger for batch processing.
func WithBatchLogger(logger *slog.Logger) BatchOption {
	return func(b *BatchProcessor) {
		b.logger = logger
	}
}

// WithConcurrency sets the maximum number of roots checked at once.
// Non-positive values keep the default.
func WithConcurrency(n int) BatchOption {
	return func(b *BatchProcessor) {
		if n > 0 {
			b.concurrency = n
		}
	}
}

// NewBatchProcessor creates a new BatchProcessor. factory is called once
// per root so that no state is shared between roots.
func NewBatchProcessor(factory Factory, opts ...BatchOption) *BatchProcessor {
	bp := &BatchProcessor{
		factory:     factory,
		concurrency: DefaultConcurrency,
	}
	for _, opt := range opts {
		opt(bp)
	}
	if bp.logger == nil {
		bp.logger = slog.Default()
	}
	return bp
}

// ProcessBatch checks every root and returns one report per root in the
// order of roots. A root that fails does not stop the others; its failure
// is recorded in its report. The error is non-nil only on cancellation, in
// which case roots that never started have a nil report.
func (bp *BatchProcessor) ProcessBatch(ctx context.Context, roots []string) ([]*model.Report, error) {
	bp.logger.Debug("starting batch",
		"total_roots", len(roots),
		"concurrency", bp.concurrency,
	)
	startTime := time.Now()

	// Each goroutine writes only its own index.
	results := make([]*model.Report, len(roots))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(bp.concurrency)

	for i, root := range roots {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			report := model.NewReport(root)
			results[i] = report

			p, err := bp.factory(root)
			if err != nil {
				bp.logger.Debug("cannot check root", "root", root, "error", err)
				report.Error = err.Error()
			} else if err := p.Execute(ctx, report); err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				bp.logger.Debug("check failed", "root", root, "error", err)
			}
			return nil
		})
	}

	err := g.Wait()

	bp.logger.Debug("batch complete",
		"total_roots", len(roots),
		"elapsed", time.Since(startTime),
	)
	return results, err
}
