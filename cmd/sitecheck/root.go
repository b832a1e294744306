package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// ErrCheckFailed is returned by check commands when at least one check
// reported diagnostics or could not run. Its output has already been printed.
var ErrCheckFailed = errors.New("site check failed")

// NewRootCmd creates the root command for sitecheck.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sitecheck",
		Short: "Link and sitemap validator for static sites",
		Long: `sitecheck validates a static site tree before it is published.

It checks that every local href/src reference resolves to an existing file,
that sitemap.xml lists exactly the site's top-level sections, and that the
navbar and footer placeholders load components that exist.

Every check exits with status 1 when it finds a problem, so sitecheck can
gate a CI pipeline or a pre-commit hook.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags that apply to all commands
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")
	cmd.PersistentFlags().Bool("log-json", false, "Write logs as JSON lines")

	cmd.AddCommand(NewLinksCmd())
	cmd.AddCommand(NewSitemapCmd())
	cmd.AddCommand(NewComponentsCmd())
	cmd.AddCommand(NewCheckCmd())
	cmd.AddCommand(NewHistoryCmd())
	cmd.AddCommand(NewWatchCmd())
	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		if !errors.Is(err, ErrCheckFailed) {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
}
