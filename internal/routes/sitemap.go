package routes

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"path"
	"regexp"
	"strconv"
	"strings"

	"github.com/nao1215/sitecheck/internal/model"
)

var (
	// ErrSitemapNotFound is returned when the sitemap resource is absent.
	ErrSitemapNotFound = errors.New("sitemap not found")

	// ErrInvalidLoc is the sentinel matched by LocError.
	ErrInvalidLoc = errors.New("invalid sitemap URL")
)

// LocError reports a <loc> literal that is not a valid absolute URL.
type LocError struct {
	Loc string
	Err error
}

// Error implements error.
func (e *LocError) Error() string {
	return fmt.Sprintf("%s: %s", ErrInvalidLoc, e.Loc)
}

// Unwrap returns the parse error, if any.
func (e *LocError) Unwrap() error {
	return e.Err
}

// Is makes errors.Is(err, ErrInvalidLoc) match.
func (e *LocError) Is(target error) bool {
	return target == ErrInvalidLoc
}

var locRegex = regexp.MustCompile(`<loc>([^<]+)</loc>`)

// ParseSitemap returns the routes named by the <loc> entries of text.
// Each literal must be an absolute URL; the first one that is not halts
// parsing with a *LocError.
func ParseSitemap(text []byte) (*Set, error) {
	set := NewSet()
	for _, m := range locRegex.FindAllSubmatch(text, -1) {
		loc := strings.TrimSpace(string(m[1]))
		u, err := parseLoc(loc)
		if err != nil {
			return nil, &LocError{Loc: loc, Err: err}
		}
		set.Add(model.NewRoute(locPath(u)))
	}
	return set, nil
}

// hostSchemes are the schemes whose URLs must name a host.
var hostSchemes = map[string]bool{
	"http":  true,
	"https": true,
	"ws":    true,
	"wss":   true,
	"ftp":   true,
}

var (
	errNotAbsolute = errors.New("not an absolute URL")
	errNoHost      = errors.New("missing host")
	errBadPort     = errors.New("port out of range")
)

// parseLoc parses an absolute URL. Web URLs need a host and a port in 0-65535.
func parseLoc(loc string) (*url.URL, error) {
	u, err := url.Parse(loc)
	if err != nil {
		return nil, err
	}
	if !u.IsAbs() {
		return nil, errNotAbsolute
	}
	if hostSchemes[strings.ToLower(u.Scheme)] && u.Hostname() == "" {
		return nil, errNoHost
	}
	if port := u.Port(); port != "" {
		if n, err := strconv.Atoi(port); err != nil || n < 0 || n > 65535 {
			return nil, errBadPort
		}
	}
	return u, nil
}

// locPath returns the URL path with dot segments collapsed.
func locPath(u *url.URL) string {
	p := u.EscapedPath()
	if p == "" {
		return "/"
	}
	return path.Clean("/" + p)
}

// LoadSitemap reads name from fsys and parses it.
// A missing sitemap yields ErrSitemapNotFound.
func LoadSitemap(fsys fs.FS, name string) (*Set, error) {
	data, err := fs.ReadFile(fsys, name)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrSitemapNotFound, name)
		}
		return nil, fmt.Errorf("read sitemap: %w", err)
	}
	return ParseSitemap(data)
}
