package pipeline

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/nao1215/sitecheck/internal/model"
)

func TestBatchProcessorNew(t *testing.T) {
	t.Parallel()

	factory := func(string) (*Pipeline, error) { return New(), nil }

	tests := []struct {
		name string
		opts []BatchOption
		want int
	}{
		{name: "default concurrency", want: DefaultConcurrency},
		{name: "custom concurrency", opts: []BatchOption{WithConcurrency(2)}, want: 2},
		{name: "non-positive keeps default", opts: []BatchOption{WithConcurrency(0)}, want: DefaultConcurrency},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			bp := NewBatchProcessor(factory, tt.opts...)
			if bp.concurrency != tt.want {
				t.Errorf("concurrency = %d, want %d", bp.concurrency, tt.want)
			}
		})
	}
}

func TestBatchProcessorProcessBatch(t *testing.T) {
	t.Parallel()

	t.Run("reports are returned in root order", func(t *testing.T) {
		t.Parallel()

		factory := func(root string) (*Pipeline, error) {
			p := New()
			p.AddStep(&mockStep{name: "links", doFunc: func(_ context.Context, r *model.Report) error {
				// Later roots finish first.
				if root == "a" {
					time.Sleep(20 * time.Millisecond)
				}
				r.AddResult(model.NewCheckResult("links"))
				return nil
			}})
			return p, nil
		}

		bp := NewBatchProcessor(factory, WithConcurrency(3))
		reports, err := bp.ProcessBatch(context.Background(), []string{"a", "b", "c"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		for i, want := range []string{"a", "b", "c"} {
			if reports[i].Root != want {
				t.Errorf("reports[%d].Root = %q, want %q", i, reports[i].Root, want)
			}
		}
	})

	t.Run("respects concurrency limit", func(t *testing.T) {
		t.Parallel()

		var running, peak atomic.Int32
		factory := func(string) (*Pipeline, error) {
			p := New()
			p.AddStep(&mockStep{name: "links", doFunc: func(context.Context, *model.Report) error {
				n := running.Add(1)
				for {
					old := peak.Load()
					if n <= old || peak.CompareAndSwap(old, n) {
						break
					}
				}
				time.Sleep(10 * time.Millisecond)
				running.Add(-1)
				return nil
			}})
			return p, nil
		}

		bp := NewBatchProcessor(factory, WithConcurrency(2))
		if _, err := bp.ProcessBatch(context.Background(), []string{"a", "b", "c", "d", "e"}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if peak.Load() > 2 {
			t.Errorf("peak concurrency %d exceeds limit", peak.Load())
		}
	})

	t.Run("factory failure is recorded per root", func(t *testing.T) {
		t.Parallel()

		factory := func(root string) (*Pipeline, error) {
			if root == "missing" {
				return nil, errors.New("open site root: no such directory")
			}
			return New(), nil
		}

		bp := NewBatchProcessor(factory)
		reports, err := bp.ProcessBatch(context.Background(), []string{"ok", "missing"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !reports[0].Passed() {
			t.Error("expected first root to pass")
		}
		if reports[1].Passed() || reports[1].Error == "" {
			t.Errorf("expected second root to fail, got %+v", reports[1])
		}
	})

	t.Run("cancelled context", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		bp := NewBatchProcessor(func(string) (*Pipeline, error) { return New(), nil })
		_, err := bp.ProcessBatch(ctx, []string{"a", "b"})
		if !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
	})
}
