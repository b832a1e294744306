package model

import "strings"

// RootRoute is the route of the site root.
const RootRoute Route = "/"

// Route is a canonical, site-root-relative path. It always starts with "/"
// and carries no trailing slash, except for the root route itself.
// Two routes are equal iff their strings are byte-equal.
type Route string

// NewRoute canonicalizes p by stripping trailing slashes.
// An empty result maps to the root route.
func NewRoute(p string) Route {
	trimmed := strings.TrimRight(p, "/")
	if trimmed == "" {
		return RootRoute
	}
	if !strings.HasPrefix(trimmed, "/") {
		trimmed = "/" + trimmed
	}
	return Route(trimmed)
}

// String returns the route as a plain string.
func (r Route) String() string {
	return string(r)
}

// IsRoot reports whether r is the root route.
func (r Route) IsRoot() bool {
	return r == RootRoute
}

// RelPath returns the route with the leading slash dropped, which is the
// path of the route relative to the site root.
func (r Route) RelPath() string {
	return strings.TrimPrefix(string(r), "/")
}
