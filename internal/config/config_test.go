package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// TestNewConfig verifies the documented defaults.
func TestNewConfig(t *testing.T) {
	t.Parallel()

	cfg := NewConfig()

	t.Run("default ignored dirs", func(t *testing.T) {
		t.Parallel()
		want := []string{".git", ".github", ".claude", ".vscode", "node_modules"}
		if strings.Join(cfg.IgnoredDirs, ",") != strings.Join(want, ",") {
			t.Errorf("got %v, want %v", cfg.IgnoredDirs, want)
		}
	})

	t.Run("default reserved dirs", func(t *testing.T) {
		t.Parallel()
		want := []string{"assets", "components", "css", "js", "scripts", "node_modules"}
		if strings.Join(cfg.ReservedDirs, ",") != strings.Join(want, ",") {
			t.Errorf("got %v, want %v", cfg.ReservedDirs, want)
		}
	})

	t.Run("default files", func(t *testing.T) {
		t.Parallel()
		if cfg.SitemapFile != "sitemap.xml" {
			t.Errorf("expected sitemap.xml, got %q", cfg.SitemapFile)
		}
		if cfg.IndexFile != "index.html" {
			t.Errorf("expected index.html, got %q", cfg.IndexFile)
		}
		if cfg.MarkupExt != ".html" {
			t.Errorf("expected .html, got %q", cfg.MarkupExt)
		}
	})

	t.Run("default components", func(t *testing.T) {
		t.Parallel()
		if cfg.Components["navbar-placeholder"] != "/components/navbar" {
			t.Errorf("unexpected navbar component: %v", cfg.Components)
		}
		if cfg.Components["footer-placeholder"] != "/components/footer" {
			t.Errorf("unexpected footer component: %v", cfg.Components)
		}
	})

	t.Run("default batch and debounce", func(t *testing.T) {
		t.Parallel()
		if cfg.BatchSize != 4 {
			t.Errorf("expected BatchSize 4, got %d", cfg.BatchSize)
		}
		if cfg.Debounce != 300*time.Millisecond {
			t.Errorf("expected Debounce 300ms, got %v", cfg.Debounce)
		}
	})
}

// TestConfigValidate tests one validation rule per case.
func TestConfigValidate(t *testing.T) {
	t.Parallel()

	validConfig := func() *Config {
		cfg := NewConfig()
		cfg.Roots = []string{"."}
		return cfg
	}

	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr error
	}{
		{name: "valid config", modify: func(*Config) {}, wantErr: nil},
		{name: "no root", modify: func(c *Config) { c.Roots = nil }, wantErr: ErrNoRoot},
		{name: "empty sitemap", modify: func(c *Config) { c.SitemapFile = "" }, wantErr: ErrNoSitemapFile},
		{name: "empty index", modify: func(c *Config) { c.IndexFile = "" }, wantErr: ErrNoIndexFile},
		{name: "zero batch", modify: func(c *Config) { c.BatchSize = 0 }, wantErr: ErrInvalidBatchSize},
		{
			name:    "json and markdown",
			modify:  func(c *Config) { c.JSONReport, c.MarkdownReport = true, true },
			wantErr: ErrConflictingReportFormats,
		},
		{name: "negative debounce", modify: func(c *Config) { c.Debounce = -time.Second }, wantErr: ErrInvalidDebounce},
		{name: "bad pattern", modify: func(c *Config) { c.IgnorePatterns = []string{"drafts/[**"} }, wantErr: ErrInvalidPattern},
		{
			name:    "empty component route",
			modify:  func(c *Config) { c.Components = map[string]string{"navbar-placeholder": ""} },
			wantErr: ErrInvalidComponent,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := validConfig()
			tt.modify(cfg)
			err := cfg.Validate()
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("expected nil, got %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

// TestConfigApply tests merging a configuration file over the defaults.
func TestConfigApply(t *testing.T) {
	t.Parallel()

	t.Run("nil file keeps defaults", func(t *testing.T) {
		t.Parallel()
		cfg := NewConfig()
		cfg.Apply(nil)
		if cfg.SitemapFile != DefaultSitemapFile {
			t.Errorf("expected default sitemap, got %q", cfg.SitemapFile)
		}
	})

	t.Run("set keys replace defaults", func(t *testing.T) {
		t.Parallel()
		cfg := NewConfig()
		cfg.Apply(&File{
			IgnoredDirs: []string{".git"},
			Ignore:      []string{"drafts/**"},
			Sitemap:     "public/sitemap.xml",
			Components:  map[string]string{},
		})
		if len(cfg.IgnoredDirs) != 1 || cfg.IgnoredDirs[0] != ".git" {
			t.Errorf("unexpected ignored dirs: %v", cfg.IgnoredDirs)
		}
		if len(cfg.ReservedDirs) != len(DefaultReservedDirs()) {
			t.Errorf("expected reserved dirs to keep defaults, got %v", cfg.ReservedDirs)
		}
		if len(cfg.IgnorePatterns) != 1 || cfg.IgnorePatterns[0] != "drafts/**" {
			t.Errorf("unexpected patterns: %v", cfg.IgnorePatterns)
		}
		if cfg.SitemapFile != "public/sitemap.xml" {
			t.Errorf("unexpected sitemap: %q", cfg.SitemapFile)
		}
		if len(cfg.Components) != 0 {
			t.Errorf("expected explicit empty components to clear defaults, got %v", cfg.Components)
		}
	})
}

// TestLoadConfigFile tests YAML loading.
func TestLoadConfigFile(t *testing.T) {
	t.Parallel()

	t.Run("loads all keys", func(t *testing.T) {
		t.Parallel()
		path := filepath.Join(t.TempDir(), DefaultConfigFile)
		content := `ignoredDirs:
  - .git
  - vendor
reservedDirs:
  - static
ignore:
  - "drafts/**"
sitemap: sitemap.xml
components:
  header-slot: /partials/header
`
		if err := os.WriteFile(path, []byte(content), 0600); err != nil {
			t.Fatal(err)
		}

		f, err := LoadConfigFile(path)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(f.IgnoredDirs) != 2 || f.IgnoredDirs[1] != "vendor" {
			t.Errorf("unexpected ignoredDirs: %v", f.IgnoredDirs)
		}
		if len(f.ReservedDirs) != 1 || f.ReservedDirs[0] != "static" {
			t.Errorf("unexpected reservedDirs: %v", f.ReservedDirs)
		}
		if len(f.Ignore) != 1 || f.Ignore[0] != "drafts/**" {
			t.Errorf("unexpected ignore: %v", f.Ignore)
		}
		if f.Components["header-slot"] != "/partials/header" {
			t.Errorf("unexpected components: %v", f.Components)
		}
	})

	t.Run("missing file", func(t *testing.T) {
		t.Parallel()
		_, err := LoadConfigFile(filepath.Join(t.TempDir(), "nope"))
		if !errors.Is(err, ErrConfigNotFound) {
			t.Errorf("expected ErrConfigNotFound, got %v", err)
		}
	})

	t.Run("invalid yaml", func(t *testing.T) {
		t.Parallel()
		path := filepath.Join(t.TempDir(), DefaultConfigFile)
		if err := os.WriteFile(path, []byte("ignoredDirs: [unclosed"), 0600); err != nil {
			t.Fatal(err)
		}
		if _, err := LoadConfigFile(path); err == nil {
			t.Error("expected parse error")
		}
	})
}

// TestFindConfigFile tests explicit path lookup.
func TestFindConfigFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "custom.yaml")
	if err := os.WriteFile(path, []byte("{}"), 0600); err != nil {
		t.Fatal(err)
	}
	if got := FindConfigFile(path); got != path {
		t.Errorf("expected %q, got %q", path, got)
	}
	if got := FindConfigFile(path + ".missing"); got != "" {
		t.Errorf("expected empty for missing explicit path, got %q", got)
	}
}

// TestXDGDirs tests that XDG paths end with the application name.
func TestXDGDirs(t *testing.T) {
	t.Parallel()

	if filepath.Base(XDGDataDir()) != AppName {
		t.Errorf("unexpected data dir %q", XDGDataDir())
	}
	if filepath.Base(XDGConfigDir()) != AppName {
		t.Errorf("unexpected config dir %q", XDGConfigDir())
	}
}

// TestSearchPaths tests the implicit lookup order.
func TestSearchPaths(t *testing.T) {
	t.Parallel()

	paths := searchPaths()
	xdgPath := filepath.Join(XDGConfigDir(), XDGConfigFileName)

	idx := -1
	for i, p := range paths {
		if p == xdgPath {
			idx = i
		}
	}
	if idx < 0 {
		t.Fatalf("expected %q in %v", xdgPath, paths)
	}
	if cwd, err := os.Getwd(); err == nil && paths[0] != filepath.Join(cwd, DefaultConfigFile) {
		t.Errorf("expected the working directory first, got %q", paths[0])
	}
	if home, err := os.UserHomeDir(); err == nil && paths[len(paths)-1] != filepath.Join(home, DefaultConfigFile) {
		t.Errorf("expected the home directory last, got %q", paths[len(paths)-1])
	}
	if idx == 0 || idx == len(paths)-1 {
		t.Errorf("expected the XDG path between cwd and home, got index %d of %d", idx, len(paths))
	}
}

// TestFirstExisting tests that the first existing candidate wins.
func TestFirstExisting(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	missing := filepath.Join(dir, "missing")
	second := filepath.Join(dir, "second.yaml")
	third := filepath.Join(dir, "third.yaml")
	for _, p := range []string{second, third} {
		if err := os.WriteFile(p, []byte("{}"), 0600); err != nil {
			t.Fatal(err)
		}
	}

	if got := firstExisting([]string{missing, second, third}); got != second {
		t.Errorf("expected %q, got %q", second, got)
	}
	if got := firstExisting([]string{missing}); got != "" {
		t.Errorf("expected empty, got %q", got)
	}
}
