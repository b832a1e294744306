package watch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/nao1215/sitecheck/internal/walker"
)

// triggerBuffer is the size of the trigger channel.
const triggerBuffer = 1

// Trigger reports the files that changed during one quiet period.
type Trigger struct {
	// Paths are the changed files relative to the site root, sorted.
	Paths []string
}

// Config configures a Watcher.
type Config struct {
	// Root is the site root directory.
	Root string

	// Debounce is the quiet period after the last change before a trigger is emitted.
	Debounce time.Duration

	// MarkupExt is the extension of page files.
	MarkupExt string

	// SitemapFile is the sitemap path relative to the root.
	SitemapFile string
}

// Watcher watches a site tree and emits debounced triggers.
type Watcher struct {
	config  Config
	walker  *walker.Walker
	watcher *fsnotify.Watcher
	logger  *slog.Logger

	pendingMu sync.Mutex
	pending   map[string]struct{}

	triggers chan Trigger
}

// New creates a Watcher. w decides which directories are pruned.
func New(config Config, w *walker.Walker, logger *slog.Logger) (*Watcher, error) {
	if config.Root == "" {
		return nil, errors.New("watch: empty root")
	}
	if logger == nil {
		logger = slog.Default()
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("watch: %w", err)
	}
	return &Watcher{
		config:   config,
		walker:   w,
		watcher:  fsw,
		logger:   logger,
		pending:  make(map[string]struct{}),
		triggers: make(chan Trigger, triggerBuffer),
	}, nil
}

// Triggers returns the channel of triggers. It is closed when the watcher stops.
func (w *Watcher) Triggers() <-chan Trigger {
	return w.triggers
}

// Start registers the site directories and begins processing events in the
// background until ctx is cancelled or Stop is called.
func (w *Watcher) Start(ctx context.Context) error {
	dirs, err := w.walker.Dirs(os.DirFS(w.config.Root))
	if err != nil {
		return err
	}
	for _, dir := range dirs {
		w.add(filepath.Join(w.config.Root, filepath.FromSlash(dir)))
	}

	go w.processEvents(ctx)

	w.logger.Debug("watcher started",
		"root", w.config.Root,
		"dirs", len(dirs),
		"debounce", w.config.Debounce,
	)
	return nil
}

// Stop stops the watcher. The trigger channel is closed once event
// processing exits.
func (w *Watcher) Stop() error {
	return w.watcher.Close()
}

func (w *Watcher) add(dir string) {
	if err := w.watcher.Add(dir); err != nil {
		w.logger.Warn("failed to watch directory", "path", dir, "error", err)
		return
	}
	w.logger.Debug("watching directory", "path", dir)
}

// processEvents handles fsnotify events with debouncing.
func (w *Watcher) processEvents(ctx context.Context) {
	defer close(w.triggers)

	// fire is nil while no change is pending.
	var timer *time.Timer
	var fire <-chan time.Time
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if !w.handleFSEvent(event) {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(w.config.Debounce)
			} else {
				timer.Reset(w.config.Debounce)
			}
			fire = timer.C

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Error("watcher error", "error", err)

		case <-fire:
			fire = nil
			w.flushPending(ctx)
		}
	}
}

// handleFSEvent records a relevant change and reports whether it did.
func (w *Watcher) handleFSEvent(event fsnotify.Event) bool {
	rel, err := filepath.Rel(w.config.Root, event.Name)
	if err != nil {
		return false
	}
	rel = filepath.ToSlash(rel)
	if w.inIgnoredDir(rel) {
		return false
	}

	if event.Has(fsnotify.Create) {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			w.add(event.Name)
		}
	}

	if !w.relevant(rel, event.Op) {
		return false
	}

	w.pendingMu.Lock()
	w.pending[rel] = struct{}{}
	w.pendingMu.Unlock()

	w.logger.Debug("change detected", "path", rel, "op", event.Op.String())
	return true
}

// relevant reports whether an operation on rel can alter a check outcome.
// Creating, removing or renaming any file or directory changes what links
// and routes resolve to. Writes only matter for pages and the sitemap.
func (w *Watcher) relevant(rel string, op fsnotify.Op) bool {
	if op.Has(fsnotify.Create) || op.Has(fsnotify.Remove) || op.Has(fsnotify.Rename) {
		return true
	}
	if op.Has(fsnotify.Write) {
		return strings.HasSuffix(rel, w.config.MarkupExt) || rel == w.config.SitemapFile
	}
	return false
}

// inIgnoredDir reports whether rel is, or lies under, a pruned directory.
func (w *Watcher) inIgnoredDir(rel string) bool {
	for _, seg := range strings.Split(rel, "/") {
		if w.walker.IsIgnoredDir(seg) {
			return true
		}
	}
	return false
}

// flushPending emits the accumulated changes as one trigger.
func (w *Watcher) flushPending(ctx context.Context) {
	w.pendingMu.Lock()
	if len(w.pending) == 0 {
		w.pendingMu.Unlock()
		return
	}
	paths := make([]string, 0, len(w.pending))
	for p := range w.pending {
		paths = append(paths, p)
	}
	w.pending = make(map[string]struct{})
	w.pendingMu.Unlock()

	slices.Sort(paths)
	select {
	case w.triggers <- Trigger{Paths: paths}:
	case <-ctx.Done():
	}
}
