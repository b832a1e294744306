// Package model defines the core data structures shared by the sitecheck packages.
//
// This package contains the following main types:
//   - Route: a canonical, site-root-relative path such as "/about"
//   - Reference: a raw href/src attribute value before resolution
//   - Diagnostic: a single reported inconsistency
//   - CheckResult: the outcome of one check (links, sitemap, components)
//   - Report: all check results for one site root
//
// The models are serializable to JSON for report output and history storage.
package model
