// Package log provides structured logging for sitecheck, built on top of the
// standard slog package.
//
// The RelativeHandler rewrites string attributes that hold absolute paths
// under the site root into root-relative, slash-separated paths. Log lines
// then read the same on every machine and match the paths used in
// diagnostics.
//
// # Usage
//
//	logger := log.NewLogger(os.Stderr, verbose, "/home/me/site")
//	logger.Debug("scanning page", "path", "/home/me/site/blog/post.html")
//	// path=blog/post.html
package log
