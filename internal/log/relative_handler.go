package log

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
)

// RelativeHandler wraps an slog.Handler and rewrites path values rooted at
// root into root-relative form before passing records on.
type RelativeHandler struct {
	handler slog.Handler

	// root is the absolute, cleaned site root. Empty disables rewriting.
	root string
}

// NewRelativeHandler creates a RelativeHandler wrapping handler.
// If handler is nil, slog.Default().Handler() is used. A root that cannot be
// made absolute disables rewriting.
func NewRelativeHandler(handler slog.Handler, root string) *RelativeHandler {
	if handler == nil {
		handler = slog.Default().Handler()
	}
	if root != "" {
		abs, err := filepath.Abs(root)
		if err != nil {
			root = ""
		} else {
			root = filepath.Clean(abs)
		}
	}
	return &RelativeHandler{handler: handler, root: root}
}

// Enabled delegates to the underlying handler.
func (h *RelativeHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.handler.Enabled(ctx, level)
}

// Handle rewrites the record's attributes and passes it to the underlying handler.
func (h *RelativeHandler) Handle(ctx context.Context, r slog.Record) error {
	rewritten := slog.NewRecord(r.Time, r.Level, r.Message, r.PC)
	r.Attrs(func(a slog.Attr) bool {
		rewritten.AddAttrs(h.rewriteAttr(a))
		return true
	})
	return h.handler.Handle(ctx, rewritten)
}

// WithAttrs returns a new handler with the given attributes rewritten and added.
func (h *RelativeHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	out := make([]slog.Attr, len(attrs))
	for i, a := range attrs {
		out[i] = h.rewriteAttr(a)
	}
	return &RelativeHandler{handler: h.handler.WithAttrs(out), root: h.root}
}

// WithGroup returns a new handler with the given group name.
func (h *RelativeHandler) WithGroup(name string) slog.Handler {
	return &RelativeHandler{handler: h.handler.WithGroup(name), root: h.root}
}

func (h *RelativeHandler) rewriteAttr(a slog.Attr) slog.Attr {
	if a.Value.Kind() == slog.KindGroup {
		attrs := a.Value.Group()
		out := make([]slog.Attr, len(attrs))
		for i, ga := range attrs {
			out[i] = h.rewriteAttr(ga)
		}
		return slog.Attr{Key: a.Key, Value: slog.GroupValue(out...)}
	}
	if a.Value.Kind() != slog.KindString || h.root == "" {
		return a
	}
	return slog.String(a.Key, h.relativize(a.Value.String()))
}

// relativize returns p relative to the root, or p unchanged when it lies outside.
func (h *RelativeHandler) relativize(p string) string {
	if !filepath.IsAbs(p) {
		return p
	}
	clean := filepath.Clean(p)
	if clean == h.root {
		return "."
	}
	prefix := h.root + string(filepath.Separator)
	if h.root == string(filepath.Separator) {
		prefix = h.root
	}
	if !strings.HasPrefix(clean, prefix) {
		return p
	}
	return filepath.ToSlash(strings.TrimPrefix(clean, prefix))
}

// NewLogger creates a text slog.Logger writing to w.
// Verbose selects Debug level; otherwise only warnings and errors are logged.
func NewLogger(w io.Writer, verbose bool, root string) *slog.Logger {
	return slog.New(NewRelativeHandler(slog.NewTextHandler(w, handlerOptions(verbose)), root))
}

// NewJSONLogger creates a JSON slog.Logger writing to w.
func NewJSONLogger(w io.Writer, verbose bool, root string) *slog.Logger {
	return slog.New(NewRelativeHandler(slog.NewJSONHandler(w, handlerOptions(verbose)), root))
}

func handlerOptions(verbose bool) *slog.HandlerOptions {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return &slog.HandlerOptions{Level: level}
}
