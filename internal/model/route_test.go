package model

import "testing"

// TestNewRoute tests route canonicalization.
func TestNewRoute(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want Route
	}{
		{name: "empty maps to root", in: "", want: "/"},
		{name: "root stays root", in: "/", want: "/"},
		{name: "slashes only map to root", in: "///", want: "/"},
		{name: "trailing slash is stripped", in: "/about/", want: "/about"},
		{name: "many trailing slashes are stripped", in: "/about//", want: "/about"},
		{name: "canonical route is unchanged", in: "/blog/post", want: "/blog/post"},
		{name: "missing leading slash is added", in: "projects", want: "/projects"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := NewRoute(tt.in); got != tt.want {
				t.Errorf("NewRoute(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

// TestRouteRelPath tests the root-relative path of a route.
func TestRouteRelPath(t *testing.T) {
	t.Parallel()

	if got := Route("/blog/post.html").RelPath(); got != "blog/post.html" {
		t.Errorf("got %q, want %q", got, "blog/post.html")
	}
	if got := RootRoute.RelPath(); got != "" {
		t.Errorf("got %q, want empty", got)
	}
	if !RootRoute.IsRoot() {
		t.Error("expected root route to report IsRoot")
	}
}

// TestIsExcludedReference tests the lexical exclusion policy.
func TestIsExcludedReference(t *testing.T) {
	t.Parallel()

	excluded := []string{
		"#top",
		"#",
		"mailto:me@example.com",
		"tel:+3212345678",
		"data:image/png;base64,AAAA",
		"javascript:void(0)",
		"http://example.com",
		"https://example.com/about",
		"//cdn.example.com/lib.js",
	}
	for _, raw := range excluded {
		if !IsExcludedReference(raw) {
			t.Errorf("expected %q to be excluded", raw)
		}
	}

	included := []string{
		"/about",
		"about",
		"../about",
		"css/site.css",
		"?page=2",
		"HTTPS://example.com",
		"ftp://example.com",
	}
	for _, raw := range included {
		if (Reference{Raw: raw}).IsExcluded() {
			t.Errorf("expected %q to be resolved", raw)
		}
	}
}
