package resolver

import (
	"io/fs"
	"path"
	"strings"

	"github.com/nao1215/sitecheck/internal/config"
	"github.com/nao1215/sitecheck/internal/model"
)

// Resolve computes the canonical route of raw as referenced from the page at
// source (a root-relative path such as "blog/post.html").
//
// Fragment and query suffixes are dropped, in that order. Absolute
// references are taken as site-root-relative; relative ones are joined with
// the page's directory. "." and ".." segments are collapsed and never climb
// above the root.
func Resolve(source, raw string) model.Route {
	ref, _, _ := strings.Cut(raw, "#")
	ref, _, _ = strings.Cut(ref, "?")

	if strings.HasPrefix(ref, "/") {
		return model.NewRoute(path.Clean(ref))
	}
	base := path.Dir("/" + strings.TrimPrefix(source, "/"))
	return model.NewRoute(path.Join(base, ref))
}

// Resolver answers existence questions against one snapshot of a site tree.
type Resolver struct {
	fsys      fs.FS
	indexFile string
	markupExt string
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithIndexFile sets the landing page name of a directory.
func WithIndexFile(name string) Option {
	return func(r *Resolver) {
		r.indexFile = name
	}
}

// WithMarkupExt sets the implicit extension of clean routes.
func WithMarkupExt(ext string) Option {
	return func(r *Resolver) {
		r.markupExt = ext
	}
}

// New creates a Resolver over fsys.
func New(fsys fs.FS, opts ...Option) *Resolver {
	r := &Resolver{
		fsys:      fsys,
		indexFile: config.DefaultIndexFile,
		markupExt: config.DefaultMarkupExt,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Exists reports whether route corresponds to a resource. It never fails;
// unreadable candidates count as absent.
//
//   - "/" exists iff the root index file exists.
//   - A route with a file extension exists iff that file exists.
//   - A clean route exists iff the file at that path, the index file inside
//     a directory at that path, or the path plus the markup extension exists.
func (r *Resolver) Exists(route model.Route) bool {
	clean := model.NewRoute(string(route))
	if clean.IsRoot() {
		return r.isFile(r.indexFile)
	}

	rel := clean.RelPath()
	if extname(rel) != "" {
		return r.isFile(rel)
	}

	for _, candidate := range r.candidates(rel) {
		if r.isFile(candidate) {
			return true
		}
	}
	return false
}

// candidates lists the clean-route fallbacks in the order they are tried.
func (r *Resolver) candidates(rel string) []string {
	return []string{
		rel,
		path.Join(rel, r.indexFile),
		rel + r.markupExt,
	}
}

// IndexExists reports whether the index file exists directly inside dir.
func (r *Resolver) IndexExists(dir string) bool {
	return r.isFile(path.Join(dir, r.indexFile))
}

func (r *Resolver) isFile(name string) bool {
	name = path.Clean(name)
	if !fs.ValidPath(name) {
		return false
	}
	info, err := fs.Stat(r.fsys, name)
	if err != nil {
		return false
	}
	return !info.IsDir()
}

// extname returns the extension of the last path element.
// A leading dot alone (".well-known") is not an extension.
func extname(p string) string {
	base := path.Base(p)
	i := strings.LastIndex(base, ".")
	if i <= 0 {
		return ""
	}
	return base[i:]
}
