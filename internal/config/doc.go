// Package config provides configuration structures and utilities for sitecheck.
// It defines which directories are pruned from the page walk, which top-level
// directories are treated as infrastructure rather than site sections, the
// sitemap and component settings, and report output preferences.
package config
