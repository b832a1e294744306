// Package resolver maps raw references to canonical routes and decides
// whether a route corresponds to a resource in the site tree.
//
// Resolution follows relative-URL semantics against the directory of the
// containing page. Existence models an extensionless-URL web server: a
// clean route such as /about is served by the file "about", by
// "about/index.html" or by "about.html".
package resolver
