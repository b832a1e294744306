package main

import (
	"encoding/json"
	"fmt"
	"runtime/debug"

	"github.com/spf13/cobra"
)

// Version information set at build time via ldflags.
var (
	version = ""
	commit  = ""
	date    = ""
)

// shortCommitLen is the length of the abbreviated commit hash.
const shortCommitLen = 7

// buildInfo describes the running binary.
type buildInfo struct {
	Version string `json:"version"`
	Commit  string `json:"commit"`
	Date    string `json:"date"`
}

// currentBuildInfo returns the build information of the running binary.
func currentBuildInfo() buildInfo {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		info = nil
	}
	return resolveBuildInfo(buildInfo{Version: version, Commit: commit, Date: date}, info)
}

// resolveBuildInfo fills the fields ldflags left empty from the module build
// info: Main.Version, vcs.revision and vcs.time. Missing values fall back to
// "(devel)" and "unknown".
func resolveBuildInfo(ld buildInfo, info *debug.BuildInfo) buildInfo {
	settings := make(map[string]string)
	mainVersion := ""
	if info != nil {
		mainVersion = info.Main.Version
		for _, s := range info.Settings {
			settings[s.Key] = s.Value
		}
	}

	revision := settings["vcs.revision"]
	if len(revision) > shortCommitLen {
		revision = revision[:shortCommitLen]
	}

	return buildInfo{
		Version: firstNonEmpty(ld.Version, mainVersion, "(devel)"),
		Commit:  firstNonEmpty(ld.Commit, revision, "unknown"),
		Date:    firstNonEmpty(ld.Date, settings["vcs.time"], "unknown"),
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// getVersion returns the version string stamped into reports and --version.
func getVersion() string {
	return currentBuildInfo().Version
}

// NewVersionCmd creates the version command.
func NewVersionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Long: `Print the version, commit hash, and build date of sitecheck.

Use --json to get the same information as a JSON object, for example to
record which checker produced a CI report.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			asJSON, err := cmd.Flags().GetBool("json")
			if err != nil {
				return err
			}
			info := currentBuildInfo()
			out := cmd.OutOrStdout()
			if asJSON {
				return json.NewEncoder(out).Encode(info)
			}
			_, err = fmt.Fprintf(out, "sitecheck version %s\n  commit: %s\n  built:  %s\n",
				info.Version, info.Commit, info.Date)
			return err
		},
	}
	cmd.Flags().BoolP("json", "j", false, "Output version information as JSON")
	return cmd
}
