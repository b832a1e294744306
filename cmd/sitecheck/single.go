package main

import (
	"github.com/nao1215/sitecheck/internal/model"
	"github.com/spf13/cobra"
)

// NewLinksCmd creates the links command.
func NewLinksCmd() *cobra.Command {
	return newSingleCheckCmd(model.CheckLinks,
		"Check that every local href/src reference resolves to a file",
		`Links scans every page under the site root and reports each local
href or src reference that does not resolve to an existing file.

A reference resolves when the target file exists, or the target plus .html,
or the target's index.html. External URLs, fragments, mailto:, tel: and
javascript: references are skipped.

Examples:
  sitecheck links
  sitecheck links public/`)
}

// NewSitemapCmd creates the sitemap command.
func NewSitemapCmd() *cobra.Command {
	return newSingleCheckCmd(model.CheckSitemap,
		"Check that sitemap.xml lists exactly the site's sections",
		`Sitemap compares the routes listed in sitemap.xml with the routes the
site tree implies: the root page plus every top-level directory holding an
index.html, excluding asset and tooling directories.

Examples:
  sitecheck sitemap
  sitecheck sitemap --json public/`)
}

// NewComponentsCmd creates the components command.
func NewComponentsCmd() *cobra.Command {
	return newSingleCheckCmd(model.CheckComponents,
		"Check that navbar and footer placeholders load existing components",
		`Components reports each page whose navbar or footer placeholder names
a component route that does not resolve to a file.

Examples:
  sitecheck components
  sitecheck components public/`)
}

// newSingleCheckCmd creates a command that runs one check against one root.
func newSingleCheckCmd(check, short, long string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   check + " [root]",
		Short: short,
		Long:  long,
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheckCmd(cmd, args, check)
		},
	}
	addReportFlags(cmd)
	return cmd
}
