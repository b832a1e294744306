package routes

import (
	"fmt"
	"io/fs"
	"log/slog"
	"strings"

	"github.com/nao1215/sitecheck/internal/model"
	"github.com/nao1215/sitecheck/internal/resolver"
	"github.com/nao1215/sitecheck/internal/walker"
)

// ReservedMarker prefixes top-level directory names that are never site sections.
const ReservedMarker = "."

// Expected derives the routes that should appear in the sitemap.
type Expected struct {
	walker   *walker.Walker
	resolver *resolver.Resolver
	reserved map[string]bool
	logger   *slog.Logger
}

// NewExpected creates an Expected. reserved lists top-level directory names
// that hold assets or tooling.
func NewExpected(w *walker.Walker, r *resolver.Resolver, reserved []string, logger *slog.Logger) *Expected {
	if logger == nil {
		logger = slog.Default()
	}
	e := &Expected{
		walker:   w,
		resolver: r,
		reserved: make(map[string]bool, len(reserved)),
		logger:   logger,
	}
	for _, name := range reserved {
		e.reserved[name] = true
	}
	return e
}

// Routes returns "/" followed by "/<dir>" for every top-level directory of
// fsys that is not reserved and has an index file directly inside it.
// Nested routes are not expected.
func (e *Expected) Routes(fsys fs.FS) (*Set, error) {
	dirs, err := e.walker.TopLevelDirs(fsys)
	if err != nil {
		return nil, fmt.Errorf("expected routes: %w", err)
	}

	set := NewSet(model.RootRoute)
	for _, name := range dirs {
		if strings.HasPrefix(name, ReservedMarker) || e.reserved[name] {
			continue
		}
		if !e.resolver.IndexExists(name) {
			e.logger.Debug("section has no landing page", "dir", name)
			continue
		}
		set.Add(model.NewRoute("/" + name))
	}
	return set, nil
}
