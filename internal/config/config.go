package config

import (
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
	"github.com/bmatcuk/doublestar/v4"
)

// Default configuration values.
const (
	// AppName is the application name used for XDG directory paths.
	AppName = "sitecheck"

	// DefaultSitemapFile is the sitemap resource at the site root.
	DefaultSitemapFile = "sitemap.xml"

	// DefaultIndexFile is the landing page of a directory.
	DefaultIndexFile = "index.html"

	// DefaultMarkupExt is the extension of page files scanned for references.
	DefaultMarkupExt = ".html"

	// DefaultBatchSize is the number of site roots checked concurrently.
	DefaultBatchSize = 4

	// DefaultDebounce is the quiet period the watcher waits for before re-running checks.
	DefaultDebounce = 300 * time.Millisecond
)

// DefaultIgnoredDirs returns the directory names pruned at any depth of the page walk:
// version control, CI config, editor config and dependency caches.
func DefaultIgnoredDirs() []string {
	return []string{".git", ".github", ".claude", ".vscode", "node_modules"}
}

// DefaultReservedDirs returns the top-level directory names that hold assets
// or build tooling and never count as site sections.
func DefaultReservedDirs() []string {
	return []string{"assets", "components", "css", "js", "scripts", "node_modules"}
}

// DefaultComponents returns the placeholder element ids and the component
// routes the runtime loader fills them from.
func DefaultComponents() map[string]string {
	return map[string]string{
		"navbar-placeholder": "/components/navbar",
		"footer-placeholder": "/components/footer",
	}
}

// Config holds all configuration options for sitecheck.
// It is populated from CLI flags and the optional .sitecheck file and passed
// through the application rather than kept in global state.
type Config struct {
	// Roots are the site root directories to check. The CLI defaults to the
	// current working directory.
	Roots []string

	// IgnoredDirs are directory names pruned at any depth of the page walk.
	IgnoredDirs []string

	// IgnorePatterns are doublestar glob patterns, matched against
	// root-relative slash-separated paths, pruned from the page walk.
	IgnorePatterns []string

	// ReservedDirs are top-level directory names excluded from expected routes.
	ReservedDirs []string

	// SitemapFile is the sitemap path relative to the root.
	SitemapFile string

	// IndexFile is the landing page name of a directory.
	IndexFile string

	// MarkupExt is the extension of page files.
	MarkupExt string

	// Components maps placeholder element ids to component routes.
	Components map[string]string

	// Verbose enables debug logging.
	Verbose bool

	// BatchSize is the number of roots checked concurrently.
	BatchSize int

	// ConfigFilePath is the path to the configuration file.
	// If empty, .sitecheck is searched in the current and home directory.
	ConfigFilePath string

	// JSONReport writes a JSON report instead of the text output.
	// Mutually exclusive with MarkdownReport.
	JSONReport bool

	// MarkdownReport writes a Markdown report instead of the text output.
	MarkdownReport bool

	// ReportFile is the output path for JSON and Markdown reports.
	// Defaults to stdout when empty.
	ReportFile string

	// SaveHistory stores each run in the history database.
	SaveHistory bool

	// DBDir is the directory holding the history database.
	DBDir string

	// Debounce is the watcher quiet period.
	Debounce time.Duration
}

// NewConfig creates a new Config with default values.
func NewConfig() *Config {
	return &Config{
		IgnoredDirs:  DefaultIgnoredDirs(),
		ReservedDirs: DefaultReservedDirs(),
		SitemapFile:  DefaultSitemapFile,
		IndexFile:    DefaultIndexFile,
		MarkupExt:    DefaultMarkupExt,
		Components:   DefaultComponents(),
		BatchSize:    DefaultBatchSize,
		DBDir:        XDGDataDir(),
		Debounce:     DefaultDebounce,
	}
}

// Apply overrides the defaults with the values set in the configuration file.
// Unset keys keep their current value.
func (c *Config) Apply(f *File) {
	if f == nil {
		return
	}
	if f.IgnoredDirs != nil {
		c.IgnoredDirs = f.IgnoredDirs
	}
	if f.ReservedDirs != nil {
		c.ReservedDirs = f.ReservedDirs
	}
	if len(f.Ignore) > 0 {
		c.IgnorePatterns = append(c.IgnorePatterns, f.Ignore...)
	}
	if f.Sitemap != "" {
		c.SitemapFile = f.Sitemap
	}
	if f.Components != nil {
		c.Components = f.Components
	}
}

// XDGDataDir returns the XDG data directory for sitecheck.
// On Linux: ~/.local/share/sitecheck
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for sitecheck.
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// Validate checks if the configuration is valid.
// It returns the first problem found.
func (c *Config) Validate() error {
	if len(c.Roots) == 0 {
		return ErrNoRoot
	}
	if c.SitemapFile == "" {
		return ErrNoSitemapFile
	}
	if c.IndexFile == "" {
		return ErrNoIndexFile
	}
	if c.BatchSize <= 0 {
		return ErrInvalidBatchSize
	}
	if c.JSONReport && c.MarkdownReport {
		return ErrConflictingReportFormats
	}
	if c.Debounce < 0 {
		return ErrInvalidDebounce
	}
	for _, pattern := range c.IgnorePatterns {
		if !doublestar.ValidatePattern(pattern) {
			return &PatternError{Pattern: pattern}
		}
	}
	for id, route := range c.Components {
		if id == "" || route == "" {
			return ErrInvalidComponent
		}
	}
	return nil
}
