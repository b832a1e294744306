package walker

import (
	"fmt"
	"io/fs"
	"log/slog"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// Walker traverses a site tree, skipping configured infrastructure directories.
type Walker struct {
	// ignored holds directory names pruned at any depth.
	ignored map[string]bool

	// patterns are doublestar globs matched against root-relative paths.
	patterns []string

	logger *slog.Logger
}

// Option configures a Walker.
type Option func(*Walker)

// WithIgnoredDirs sets the directory names pruned at any depth.
func WithIgnoredDirs(names ...string) Option {
	return func(w *Walker) {
		w.ignored = make(map[string]bool, len(names))
		for _, n := range names {
			w.ignored[n] = true
		}
	}
}

// WithIgnorePatterns adds doublestar glob patterns. A directory matching a
// pattern is pruned; a file matching a pattern is not reported.
func WithIgnorePatterns(patterns ...string) Option {
	return func(w *Walker) {
		w.patterns = append(w.patterns, patterns...)
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(w *Walker) {
		w.logger = logger
	}
}

// New creates a Walker. Without options nothing is ignored.
func New(opts ...Option) *Walker {
	w := &Walker{ignored: make(map[string]bool)}
	for _, opt := range opts {
		opt(w)
	}
	if w.logger == nil {
		w.logger = slog.Default()
	}
	return w
}

// IsIgnoredDir reports whether a directory named name is pruned.
func (w *Walker) IsIgnoredDir(name string) bool {
	return w.ignored[name]
}

// Files returns the root-relative paths of all files whose name ends with
// ext, in lexical order.
func (w *Walker) Files(fsys fs.FS, ext string) ([]string, error) {
	files := make([]string, 0)
	err := fs.WalkDir(fsys, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return w.visitDir(p, d)
		}
		if !strings.HasSuffix(d.Name(), ext) {
			return nil
		}
		skip, err := w.matchesPattern(p)
		if err != nil {
			return err
		}
		if !skip {
			files = append(files, p)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk site tree: %w", err)
	}
	return files, nil
}

// Dirs returns the root-relative paths of all directories that are not
// pruned, including the root itself as ".".
func (w *Walker) Dirs(fsys fs.FS) ([]string, error) {
	dirs := make([]string, 0)
	err := fs.WalkDir(fsys, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if err := w.visitDir(p, d); err != nil {
			return err
		}
		dirs = append(dirs, p)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk site tree: %w", err)
	}
	return dirs, nil
}

// TopLevelDirs returns the names of the directories directly under the root
// that are not ignored, sorted by name.
func (w *Walker) TopLevelDirs(fsys fs.FS) ([]string, error) {
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return nil, fmt.Errorf("read site root: %w", err)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() || w.ignored[e.Name()] {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)
	return names, nil
}

// visitDir returns fs.SkipDir for pruned directories.
func (w *Walker) visitDir(p string, d fs.DirEntry) error {
	if p == "." {
		return nil
	}
	if w.ignored[d.Name()] {
		w.logger.Debug("skipping ignored directory", "path", p)
		return fs.SkipDir
	}
	skip, err := w.matchesPattern(p)
	if err != nil {
		return err
	}
	if skip {
		w.logger.Debug("skipping directory matching ignore pattern", "path", p)
		return fs.SkipDir
	}
	return nil
}

func (w *Walker) matchesPattern(p string) (bool, error) {
	for _, pattern := range w.patterns {
		ok, err := doublestar.Match(pattern, p)
		if err != nil {
			return false, fmt.Errorf("ignore pattern %q: %w", pattern, err)
		}
		if ok {
			return true, nil
		}
	}
	return false, nil
}
