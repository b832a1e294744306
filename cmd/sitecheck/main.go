// Package main provides the entry point for the sitecheck CLI.
//
// sitecheck validates a static site tree before it is published: every local
// href/src reference must resolve to a file, sitemap.xml must list exactly
// the site's sections, and component placeholders must point at existing
// components.
//
// Usage:
//
//	sitecheck links
//	sitecheck sitemap
//	sitecheck check [root...]
//
// See --help for all available options.
package main

// main is the entry point for sitecheck.
func main() {
	Execute()
}
