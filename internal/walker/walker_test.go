package walker

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"testing/fstest"
)

func siteFS() fstest.MapFS {
	return fstest.MapFS{
		"index.html":                   {Data: []byte("<html></html>")},
		"about/index.html":             {Data: []byte("")},
		"blog/post.html":               {Data: []byte("")},
		"blog/2024/deep.html":          {Data: []byte("")},
		"blog/notes.txt":               {Data: []byte("")},
		"css/site.css":                 {Data: []byte("")},
		"drafts/wip.html":              {Data: []byte("")},
		".git/hooks/sample.html":       {Data: []byte("")},
		"node_modules/pkg/readme.html": {Data: []byte("")},
		"vendor/node_modules/x.html":   {Data: []byte("")},
	}
}

// TestWalkerFiles tests markup file enumeration with pruning.
func TestWalkerFiles(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		opts []Option
		want []string
	}{
		{
			name: "ignored dirs are pruned at any depth",
			opts: []Option{WithIgnoredDirs(".git", "node_modules")},
			want: []string{
				"about/index.html",
				"blog/2024/deep.html",
				"blog/post.html",
				"drafts/wip.html",
				"index.html",
			},
		},
		{
			name: "ignore patterns prune directories",
			opts: []Option{WithIgnoredDirs(".git", "node_modules"), WithIgnorePatterns("drafts/**")},
			want: []string{
				"about/index.html",
				"blog/2024/deep.html",
				"blog/post.html",
				"index.html",
			},
		},
		{
			name: "ignore patterns filter files",
			opts: []Option{WithIgnoredDirs(".git", "node_modules", "drafts"), WithIgnorePatterns("**/deep.html")},
			want: []string{
				"about/index.html",
				"blog/post.html",
				"index.html",
			},
		},
		{
			name: "nothing ignored without options",
			opts: nil,
			want: []string{
				".git/hooks/sample.html",
				"about/index.html",
				"blog/2024/deep.html",
				"blog/post.html",
				"drafts/wip.html",
				"index.html",
				"node_modules/pkg/readme.html",
				"vendor/node_modules/x.html",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := New(tt.opts...).Files(siteFS(), ".html")
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if strings.Join(got, "\n") != strings.Join(tt.want, "\n") {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

// TestWalkerFiles_MissingRoot tests that an unreadable root is fatal.
func TestWalkerFiles_MissingRoot(t *testing.T) {
	t.Parallel()

	missing := filepath.Join(t.TempDir(), "does-not-exist")
	if _, err := New().Files(os.DirFS(missing), ".html"); err == nil {
		t.Fatal("expected error for missing root")
	}
	if _, err := New().TopLevelDirs(os.DirFS(missing)); err == nil {
		t.Fatal("expected error for missing root")
	}
}

// TestWalkerFiles_OnDisk tests the walker against a real directory.
func TestWalkerFiles_OnDisk(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	for _, p := range []string{"index.html", "blog/post.html", ".vscode/settings.html"} {
		full := filepath.Join(root, filepath.FromSlash(p))
		if err := os.MkdirAll(filepath.Dir(full), 0750); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(full, []byte(""), 0600); err != nil {
			t.Fatal(err)
		}
	}

	got, err := New(WithIgnoredDirs(".vscode")).Files(os.DirFS(root), ".html")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []string{"blog/post.html", "index.html"}
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Errorf("got %v, want %v", got, want)
	}
}

// TestWalkerDirs tests directory enumeration.
func TestWalkerDirs(t *testing.T) {
	t.Parallel()

	got, err := New(WithIgnoredDirs(".git", "node_modules")).Dirs(siteFS())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []string{".", "about", "blog", "blog/2024", "css", "drafts", "vendor"}
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Errorf("got %v, want %v", got, want)
	}
}

// TestWalkerTopLevelDirs tests top-level directory listing.
func TestWalkerTopLevelDirs(t *testing.T) {
	t.Parallel()

	w := New(WithIgnoredDirs(".git", "node_modules"))
	got, err := w.TopLevelDirs(siteFS())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []string{"about", "blog", "css", "drafts", "vendor"}
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Errorf("got %v, want %v", got, want)
	}
	if !w.IsIgnoredDir(".git") || w.IsIgnoredDir("blog") {
		t.Error("unexpected IsIgnoredDir result")
	}
}
