package pipeline

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"

	"github.com/nao1215/sitecheck/internal/config"
	"github.com/nao1215/sitecheck/internal/extract"
	"github.com/nao1215/sitecheck/internal/model"
	"github.com/nao1215/sitecheck/internal/resolver"
	"github.com/nao1215/sitecheck/internal/routes"
	"github.com/nao1215/sitecheck/internal/walker"
)

// Site is one snapshot of a site tree shared by the steps of a pipeline.
type Site struct {
	// FS is the tree rooted at the site root.
	FS fs.FS

	Walker   *walker.Walker
	Resolver *resolver.Resolver

	cfg *config.Config
}

// NewSite creates a Site over fsys using the walk and resolution settings of cfg.
func NewSite(fsys fs.FS, cfg *config.Config, logger *slog.Logger) *Site {
	if logger == nil {
		logger = slog.Default()
	}
	return &Site{
		FS: fsys,
		Walker: walker.New(
			walker.WithIgnoredDirs(cfg.IgnoredDirs...),
			walker.WithIgnorePatterns(cfg.IgnorePatterns...),
			walker.WithLogger(logger),
		),
		Resolver: resolver.New(fsys,
			resolver.WithIndexFile(cfg.IndexFile),
			resolver.WithMarkupExt(cfg.MarkupExt),
		),
		cfg: cfg,
	}
}

// pages calls visit with the path and content of every page in walk order
// and returns the number of pages visited.
func (s *Site) pages(ctx context.Context, visit func(name string, data []byte)) (int, error) {
	files, err := s.Walker.Files(s.FS, s.cfg.MarkupExt)
	if err != nil {
		return 0, err
	}
	for _, name := range files {
		if err := ctx.Err(); err != nil {
			return 0, err
		}
		data, err := fs.ReadFile(s.FS, name)
		if err != nil {
			return 0, fmt.Errorf("read page %s: %w", name, err)
		}
		visit(name, data)
	}
	return len(files), nil
}

// LinkCheckStep verifies that every local reference of every page resolves
// to an existing resource.
type LinkCheckStep struct {
	site   *Site
	logger *slog.Logger
}

// NewLinkCheckStep creates a LinkCheckStep.
func NewLinkCheckStep(site *Site, logger *slog.Logger) *LinkCheckStep {
	if logger == nil {
		logger = slog.Default()
	}
	return &LinkCheckStep{site: site, logger: logger}
}

// Name returns the step name.
func (s *LinkCheckStep) Name() string {
	return model.CheckLinks
}

// Do scans all pages and records a broken_link diagnostic per unresolved reference.
func (s *LinkCheckStep) Do(ctx context.Context, report *model.Report) error {
	result := model.NewCheckResult(s.Name())

	scanned, err := s.site.pages(ctx, func(name string, data []byte) {
		refs := extract.LocalReferences(data)
		s.logger.Debug("scanning page", "page", name, "references", len(refs))
		for _, ref := range refs {
			resolved := resolver.Resolve(name, ref.Raw)
			if s.site.Resolver.Exists(resolved) {
				continue
			}
			result.Add(model.Diagnostic{
				Kind:     model.KindBrokenLink,
				Source:   name,
				Raw:      ref.Raw,
				Resolved: resolved,
			})
		}
	})
	if err != nil {
		return err
	}

	result.Scanned = scanned
	report.AddResult(result)
	return nil
}

// SitemapCheckStep compares the sitemap with the routes the site tree implies.
type SitemapCheckStep struct {
	site   *Site
	logger *slog.Logger
}

// NewSitemapCheckStep creates a SitemapCheckStep.
func NewSitemapCheckStep(site *Site, logger *slog.Logger) *SitemapCheckStep {
	if logger == nil {
		logger = slog.Default()
	}
	return &SitemapCheckStep{site: site, logger: logger}
}

// Name returns the step name.
func (s *SitemapCheckStep) Name() string {
	return model.CheckSitemap
}

// Do records missing_in_sitemap diagnostics in expected order, then
// extra_in_sitemap diagnostics in sitemap order.
// A missing sitemap or an invalid <loc> is fatal.
func (s *SitemapCheckStep) Do(_ context.Context, report *model.Report) error {
	result := model.NewCheckResult(s.Name())
	sitemapFile := s.site.cfg.SitemapFile

	listed, err := routes.LoadSitemap(s.site.FS, sitemapFile)
	if err != nil {
		result.Fatal = sitemapFatal(sitemapFile, err)
		report.AddResult(result)
		return err
	}

	expected, err := routes.NewExpected(
		s.site.Walker,
		s.site.Resolver,
		s.site.cfg.ReservedDirs,
		s.logger,
	).Routes(s.site.FS)
	if err != nil {
		return err
	}
	s.logger.Debug("sitemap routes", "listed", listed.Len(), "expected", expected.Len())

	for _, r := range expected.Minus(listed) {
		result.Add(model.Diagnostic{Kind: model.KindMissingInSitemap, Resolved: r})
	}
	for _, r := range listed.Minus(expected) {
		result.Add(model.Diagnostic{Kind: model.KindExtraInSitemap, Resolved: r})
	}

	result.Scanned = expected.Len()
	report.AddResult(result)
	return nil
}

// sitemapFatal renders the message shown for a sitemap that cannot be read.
func sitemapFatal(name string, err error) string {
	var locErr *routes.LocError
	switch {
	case errors.Is(err, routes.ErrSitemapNotFound):
		return name + " not found."
	case errors.As(err, &locErr):
		return "Invalid sitemap URL: " + locErr.Loc
	default:
		return err.Error()
	}
}

// ComponentCheckStep verifies that every component placeholder on a page
// refers to an existing component resource.
type ComponentCheckStep struct {
	site   *Site
	logger *slog.Logger
}

// NewComponentCheckStep creates a ComponentCheckStep.
func NewComponentCheckStep(site *Site, logger *slog.Logger) *ComponentCheckStep {
	if logger == nil {
		logger = slog.Default()
	}
	return &ComponentCheckStep{site: site, logger: logger}
}

// Name returns the step name.
func (s *ComponentCheckStep) Name() string {
	return model.CheckComponents
}

// Do parses every page and records a missing_component diagnostic per
// placeholder whose component route does not exist.
func (s *ComponentCheckStep) Do(ctx context.Context, report *model.Report) error {
	result := model.NewCheckResult(s.Name())
	components := s.site.cfg.Components

	var parseErr error
	scanned, err := s.site.pages(ctx, func(name string, data []byte) {
		if parseErr != nil {
			return
		}
		found, err := extract.Placeholders(bytes.NewReader(data), components)
		if err != nil {
			parseErr = fmt.Errorf("parse page %s: %w", name, err)
			return
		}
		for _, p := range found {
			route := model.NewRoute(components[p.ID])
			if s.site.Resolver.Exists(route) {
				continue
			}
			result.Add(model.Diagnostic{
				Kind:     model.KindMissingComponent,
				Source:   name,
				Raw:      p.ID,
				Resolved: route,
			})
		}
	})
	if err != nil {
		return err
	}
	if parseErr != nil {
		return parseErr
	}

	result.Scanned = scanned
	report.AddResult(result)
	return nil
}

// StepFactory builds the step for one check against a site.
type StepFactory func(site *Site, logger *slog.Logger) Step

// Checks maps each check name to its step factory, in default execution order.
var Checks = []struct {
	Name    string
	Factory StepFactory
}{
	{model.CheckLinks, func(s *Site, l *slog.Logger) Step { return NewLinkCheckStep(s, l) }},
	{model.CheckSitemap, func(s *Site, l *slog.Logger) Step { return NewSitemapCheckStep(s, l) }},
	{model.CheckComponents, func(s *Site, l *slog.Logger) Step { return NewComponentCheckStep(s, l) }},
}

// ErrUnknownCheck is returned for a check name that no step implements.
var ErrUnknownCheck = errors.New("unknown check")

// DefaultPipeline creates a pipeline over site with the named checks in the
// given order. With no names every check runs.
func DefaultPipeline(site *Site, pipelineOpts []Option, logger *slog.Logger, names ...string) (*Pipeline, error) {
	var steps []Step
	if len(names) == 0 {
		for _, c := range Checks {
			steps = append(steps, c.Factory(site, logger))
		}
	}
	for _, name := range names {
		found := false
		for _, c := range Checks {
			if c.Name == name {
				steps = append(steps, c.Factory(site, logger))
				found = true
				break
			}
		}
		if !found {
			return nil, fmt.Errorf("%w: %s", ErrUnknownCheck, name)
		}
	}

	p := New(pipelineOpts...)
	p.AddSteps(steps...)
	return p, nil
}

// NewSiteForRoot creates a Site over the directory root on disk.
func NewSiteForRoot(root string, cfg *config.Config, logger *slog.Logger) (*Site, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("open site root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("open site root %s: not a directory", root)
	}
	return NewSite(os.DirFS(root), cfg, logger), nil
}
