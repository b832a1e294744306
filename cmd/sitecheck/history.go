package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/nao1215/markdown"
	"github.com/nao1215/sitecheck/internal/config"
	"github.com/nao1215/sitecheck/internal/database"
	"github.com/nao1215/sitecheck/internal/model"
	"github.com/spf13/cobra"
)

// Constants for change direction and summary messages.
const (
	directionWorsened    = "worsened"
	directionImproved    = "improved"
	directionUnchanged   = "unchanged"
	noDiagnosticsMessage = "No diagnostics"
	historyDateLayout    = "2006-01-02 15:04:05"
	historyShortLayout   = "2006-01-02 15:04"
)

// errNoHistory is returned when the database holds no run for a root.
var errNoHistory = errors.New("no run history")

// NewHistoryCmd creates the history command.
// This command lists stored runs and compares a run with an earlier one.
func NewHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history [root]",
		Short: "Compare check results with earlier runs",
		Long: `History displays differences between the latest and an earlier run.

Runs are stored by 'sitecheck check --save'. The comparison shows:
- New diagnostics that appeared since the earlier run
- Resolved diagnostics that are no longer present
- The change in diagnostic counts per kind

The comparison requires at least two stored runs for the site root.
The current directory is used when no root is given.

Examples:
  # Compare the latest two runs for the site in the current directory
  sitecheck history

  # List the stored runs for a site
  sitecheck history --list public/

  # Compare with a specific run by ID
  sitecheck history --with-id 5 public/

  # Compare with the run that produced a saved JSON report
  sitecheck history --with-run-id 0b6c...e1 public/

  # Compare with the first run since a date
  sitecheck history --since "2026-01-01" public/

  # List every site root in the database
  sitecheck history --list-roots`,
		Args: cobra.MaximumNArgs(1),
		RunE: runHistoryCmd,
	}

	// History listing flags
	cmd.Flags().BoolP("list", "l", false,
		"List stored runs for the site root")
	cmd.Flags().BoolP("list-roots", "L", false,
		"List every site root in the database")

	// Comparison target flags
	cmd.Flags().Int64P("with-id", "i", 0,
		"Compare with a specific run by ID (use --list to see available IDs)")
	cmd.Flags().String("with-run-id", "",
		"Compare with a specific run by its run ID (as printed in JSON reports)")
	cmd.Flags().StringP("since", "s", "",
		"Compare with the first run after this date (format: YYYY-MM-DD)")

	// Output format flags
	cmd.Flags().BoolP("json", "j", false,
		"Output comparison result in JSON format")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output comparison result in Markdown format")

	cmd.Flags().String("db-dir", config.XDGDataDir(),
		"Directory holding the history database")

	return cmd
}

// historyOptions holds the parsed flags of the history command.
type historyOptions struct {
	root      string
	listRuns  bool
	listRoots bool
	withID    int64
	withRunID string
	since     string
	json      bool
	markdown  bool
	dbDir     string
}

// parseHistoryOptions reads the history flags and the optional root argument.
func parseHistoryOptions(cmd *cobra.Command, args []string) (*historyOptions, error) {
	opts := &historyOptions{}
	flags := cmd.Flags()
	var err error

	if opts.listRuns, err = flags.GetBool("list"); err != nil {
		return nil, err
	}
	if opts.listRoots, err = flags.GetBool("list-roots"); err != nil {
		return nil, err
	}
	if opts.withID, err = flags.GetInt64("with-id"); err != nil {
		return nil, err
	}
	if opts.withRunID, err = flags.GetString("with-run-id"); err != nil {
		return nil, err
	}
	if opts.since, err = flags.GetString("since"); err != nil {
		return nil, err
	}
	if opts.json, err = flags.GetBool("json"); err != nil {
		return nil, err
	}
	if opts.markdown, err = flags.GetBool("markdown"); err != nil {
		return nil, err
	}
	if opts.dbDir, err = flags.GetString("db-dir"); err != nil {
		return nil, err
	}
	if opts.json && opts.markdown {
		return nil, config.ErrConflictingReportFormats
	}

	if len(args) == 0 {
		args = []string{"."}
	}
	roots, err := absRoots(args)
	if err != nil {
		return nil, err
	}
	opts.root = roots[0]
	return opts, nil
}

// runHistoryCmd executes the history command.
func runHistoryCmd(cmd *cobra.Command, args []string) error {
	// Validate flags before opening the database so a bad flag never locks it.
	opts, err := parseHistoryOptions(cmd, args)
	if err != nil {
		return err
	}

	dbOpts := database.DefaultOptions()
	dbOpts.CreateIfNotExists = false
	db, err := database.Open(opts.dbDir, dbOpts)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	out := cmd.OutOrStdout()

	switch {
	case opts.listRoots:
		return listRoots(ctx, out, db)
	case opts.listRuns:
		return listRuns(ctx, out, db, opts.root)
	}

	comparison, err := runComparison(ctx, db, opts)
	if err != nil {
		return err
	}

	switch {
	case opts.json:
		return outputComparisonJSON(out, comparison)
	case opts.markdown:
		return outputComparisonMarkdown(out, comparison)
	default:
		return outputComparisonText(out, comparison)
	}
}

// listRoots lists every site root that has stored runs.
func listRoots(ctx context.Context, out io.Writer, db *database.HistoryDB) error {
	roots, err := db.ListRoots(ctx)
	if err != nil {
		return fmt.Errorf("failed to list site roots: %w", err)
	}

	if len(roots) == 0 {
		fmt.Fprintln(out, "No checked site roots found in the database.")
		fmt.Fprintln(out, "\nUse 'sitecheck check --save' to store a run.")
		return nil
	}

	fmt.Fprintf(out, "Checked site roots (%d):\n\n", len(roots))
	for _, root := range roots {
		fmt.Fprintf(out, "  • %s\n", root)
	}
	fmt.Fprintln(out, "\nUse 'sitecheck history --list <root>' to see the runs for a site.")

	return nil
}

// listRuns lists every stored run of root, newest first.
func listRuns(ctx context.Context, out io.Writer, db *database.HistoryDB, root string) error {
	runs, err := db.GetHistoryWithMetadata(ctx, root)
	if err != nil {
		return fmt.Errorf("failed to get run history: %w", err)
	}

	if len(runs) == 0 {
		fmt.Fprintf(out, "No run history found for %s\n", root)
		fmt.Fprintln(out, "\nUse 'sitecheck check --save' to store a run.")
		return nil
	}

	fmt.Fprintf(out, "Run history for %s (%d runs):\n\n", root, len(runs))
	fmt.Fprintf(out, "  %-6s  %-20s  %-7s  %s\n", "ID", "Date", "Status", "Diagnostics")
	fmt.Fprintln(out, "  "+strings.Repeat("-", 60))

	for _, meta := range runs {
		fmt.Fprintf(out, "  %-6d  %-20s  %-7s  %s\n",
			meta.ID,
			meta.Timestamp.Format(historyDateLayout),
			formatStatus(meta.Passed),
			formatSummary(meta.Summary),
		)
	}

	fmt.Fprintln(out, "\nUse 'sitecheck history <root>' to compare the latest two runs.")
	fmt.Fprintln(out, "Use 'sitecheck history --with-id <id> <root>' to compare with a specific run.")

	return nil
}

// formatStatus renders a pass flag.
func formatStatus(passed bool) string {
	if passed {
		return "passed"
	}
	return "failed"
}

// summaryKinds lists the diagnostic kinds in display order with their abbreviations.
var summaryKinds = []struct {
	kind  model.Kind
	label string
	abbr  string
}{
	{model.KindBrokenLink, "Broken links", "L"},
	{model.KindMissingInSitemap, "Missing in sitemap", "M"},
	{model.KindExtraInSitemap, "Extra in sitemap", "E"},
	{model.KindMissingComponent, "Missing components", "C"},
}

// formatSummary formats the diagnostic summary map into a human-readable string.
func formatSummary(summary map[string]int) string {
	if summary == nil {
		return "N/A"
	}

	var parts []string
	for _, k := range summaryKinds {
		if v := summary[k.kind.String()]; v > 0 {
			parts = append(parts, fmt.Sprintf("%s:%d", k.abbr, v))
		}
	}

	if len(parts) == 0 {
		return noDiagnosticsMessage
	}
	return strings.Join(parts, " ")
}

// runComparison selects the two runs to compare and compares them.
func runComparison(ctx context.Context, db *database.HistoryDB, opts *historyOptions) (*ComparisonResult, error) {
	reports, err := db.GetHistory(ctx, opts.root, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to get run history: %w", err)
	}

	if len(reports) == 0 {
		return nil, fmt.Errorf("%w found for %s", errNoHistory, opts.root)
	}

	if len(reports) < 2 && opts.withID == 0 && opts.withRunID == "" && opts.since == "" {
		return nil, fmt.Errorf("at least 2 runs are required for comparison (found %d)", len(reports))
	}

	// Latest report is always the current one
	current := reports[0]
	var previous *model.Report

	switch {
	case opts.withID > 0:
		previous, err = db.GetReportByID(ctx, opts.withID)
		if err != nil {
			return nil, fmt.Errorf("failed to get run with ID %d: %w", opts.withID, err)
		}
		if previous == nil {
			return nil, fmt.Errorf("run with ID %d not found", opts.withID)
		}
		if previous.Root != opts.root {
			return nil, fmt.Errorf("run ID %d belongs to %s, not %s", opts.withID, previous.Root, opts.root)
		}
	case opts.withRunID != "":
		previous, err = db.GetReportByRunID(ctx, opts.withRunID)
		if err != nil {
			return nil, fmt.Errorf("failed to get run %s: %w", opts.withRunID, err)
		}
		if previous == nil {
			return nil, fmt.Errorf("run %s not found", opts.withRunID)
		}
		if previous.Root != opts.root {
			return nil, fmt.Errorf("run %s belongs to %s, not %s", opts.withRunID, previous.Root, opts.root)
		}
	case opts.since != "":
		previous, err = firstRunSince(reports, opts.since)
		if err != nil {
			return nil, err
		}
		if previous == current {
			return nil, fmt.Errorf("only one run found since %s; at least 2 runs are required for comparison", opts.since)
		}
	default:
		previous = reports[1]
	}

	return compareReports(previous, current), nil
}

// firstRunSince returns the oldest report at or after the date.
// Reports are ordered newest first.
func firstRunSince(reports []*model.Report, since string) (*model.Report, error) {
	date, err := time.Parse("2006-01-02", since)
	if err != nil {
		return nil, fmt.Errorf("invalid date format (use YYYY-MM-DD): %w", err)
	}
	for i := len(reports) - 1; i >= 0; i-- {
		if !reports[i].DateChecked.Before(date) {
			return reports[i], nil
		}
	}
	return nil, fmt.Errorf("no runs found since %s", since)
}

// ComparisonResult holds the result of comparing two runs of a site root.
type ComparisonResult struct {
	// Root is the checked site root.
	Root string `json:"root"`

	// PreviousRun contains metadata about the earlier run.
	PreviousRun RunSummary `json:"previous_run"`

	// CurrentRun contains metadata about the latest run.
	CurrentRun RunSummary `json:"current_run"`

	// NewDiagnostics are present in the current run only, in discovery order.
	NewDiagnostics []model.Diagnostic `json:"new_diagnostics,omitempty"`

	// ResolvedDiagnostics are present in the previous run only, in discovery order.
	ResolvedDiagnostics []model.Diagnostic `json:"resolved_diagnostics,omitempty"`

	// UnchangedCount is the number of diagnostics present in both runs.
	UnchangedCount int `json:"unchanged_count"`

	// Change describes the overall change between the runs.
	Change Change `json:"change"`
}

// RunSummary contains metadata about a run for comparison display.
type RunSummary struct {
	RunID       string    `json:"run_id"`
	DateChecked time.Time `json:"date_checked"`
	Passed      bool      `json:"passed"`

	// Fatal is the number of checks that could not run.
	Fatal int `json:"fatal"`

	// TotalDiagnostics is the number of diagnostics in the run.
	TotalDiagnostics int `json:"total_diagnostics"`

	// Counts holds the number of diagnostics per kind.
	Counts map[string]int `json:"counts"`
}

// Change describes the change between two runs.
type Change struct {
	// Direction is "improved", "worsened", or "unchanged".
	Direction string `json:"direction"`

	// Deltas holds the change in diagnostic count per kind.
	Deltas map[string]int `json:"deltas"`

	// FatalDelta is the change in the number of checks that could not run.
	FatalDelta int `json:"fatal_delta"`
}

// summarizeRun extracts the comparison metadata of a report.
func summarizeRun(r *model.Report) RunSummary {
	s := RunSummary{
		RunID:       r.RunID,
		DateChecked: r.DateChecked,
		Passed:      r.Passed(),
		Counts:      r.Summary(),
	}
	for _, c := range r.Results {
		if c.Fatal != "" {
			s.Fatal++
		}
	}
	if r.Error != "" {
		s.Fatal++
	}
	for _, v := range s.Counts {
		s.TotalDiagnostics += v
	}
	return s
}

// compareReports compares two reports of the same root.
func compareReports(previous, current *model.Report) *ComparisonResult {
	result := &ComparisonResult{
		Root:        current.Root,
		PreviousRun: summarizeRun(previous),
		CurrentRun:  summarizeRun(current),
	}

	previousKeys := diagnosticKeys(previous)
	currentKeys := diagnosticKeys(current)

	for _, d := range current.Diagnostics() {
		if _, exists := previousKeys[d.Key()]; !exists {
			result.NewDiagnostics = append(result.NewDiagnostics, d)
		}
	}
	for _, d := range previous.Diagnostics() {
		if _, exists := currentKeys[d.Key()]; exists {
			result.UnchangedCount++
		} else {
			result.ResolvedDiagnostics = append(result.ResolvedDiagnostics, d)
		}
	}

	result.Change = calculateChange(result.PreviousRun, result.CurrentRun)
	return result
}

// diagnosticKeys returns the set of diagnostic keys of a report.
func diagnosticKeys(r *model.Report) map[string]struct{} {
	keys := make(map[string]struct{})
	for _, d := range r.Diagnostics() {
		keys[d.Key()] = struct{}{}
	}
	return keys
}

// calculateChange calculates the change between two runs. A check that could
// not run outweighs any number of diagnostics.
func calculateChange(previous, current RunSummary) Change {
	change := Change{
		Deltas:     make(map[string]int, len(summaryKinds)),
		FatalDelta: current.Fatal - previous.Fatal,
	}
	for _, k := range summaryKinds {
		name := k.kind.String()
		change.Deltas[name] = current.Counts[name] - previous.Counts[name]
	}

	switch {
	case change.FatalDelta < 0:
		change.Direction = directionImproved
	case change.FatalDelta > 0:
		change.Direction = directionWorsened
	case current.TotalDiagnostics < previous.TotalDiagnostics:
		change.Direction = directionImproved
	case current.TotalDiagnostics > previous.TotalDiagnostics:
		change.Direction = directionWorsened
	default:
		change.Direction = directionUnchanged
	}
	return change
}

// outputComparisonJSON outputs the comparison result in JSON format.
func outputComparisonJSON(out io.Writer, result *ComparisonResult) error {
	encoder := json.NewEncoder(out)
	encoder.SetIndent("", "  ")
	return encoder.Encode(result)
}

// outputComparisonMarkdown outputs the comparison result in Markdown format.
func outputComparisonMarkdown(out io.Writer, result *ComparisonResult) error {
	md := markdown.NewMarkdown(out)
	md.H1("Run Comparison: " + result.Root)
	md.PlainText("")
	md.H2("Summary")
	md.PlainText("")
	md.PlainTextf("**Status:** %s", formatDirection(result.Change.Direction))
	md.PlainText("")

	rows := [][]string{
		{"Date",
			result.PreviousRun.DateChecked.Format(historyShortLayout),
			result.CurrentRun.DateChecked.Format(historyShortLayout),
			"-"},
		{"Fatal",
			fmt.Sprint(result.PreviousRun.Fatal),
			fmt.Sprint(result.CurrentRun.Fatal),
			formatDelta(result.Change.FatalDelta)},
	}
	for _, k := range summaryKinds {
		name := k.kind.String()
		rows = append(rows, []string{k.label,
			fmt.Sprint(result.PreviousRun.Counts[name]),
			fmt.Sprint(result.CurrentRun.Counts[name]),
			formatDelta(result.Change.Deltas[name])})
	}
	rows = append(rows, []string{"**Total**",
		fmt.Sprintf("**%d**", result.PreviousRun.TotalDiagnostics),
		fmt.Sprintf("**%d**", result.CurrentRun.TotalDiagnostics),
		fmt.Sprintf("**%s**", formatDelta(result.CurrentRun.TotalDiagnostics-result.PreviousRun.TotalDiagnostics))})

	md.Table(markdown.TableSet{
		Header: []string{"Metric", "Previous", "Current", "Change"},
		Rows:   rows,
	})

	if len(result.NewDiagnostics) > 0 {
		md.PlainText("")
		md.H2(fmt.Sprintf("New Diagnostics (%d)", len(result.NewDiagnostics)))
		md.PlainText("")
		md.BulletList(diagnosticLines(result.NewDiagnostics, "`%s`")...)
	}

	if len(result.ResolvedDiagnostics) > 0 {
		md.PlainText("")
		md.H2(fmt.Sprintf("Resolved Diagnostics (%d)", len(result.ResolvedDiagnostics)))
		md.PlainText("")
		md.BulletList(diagnosticLines(result.ResolvedDiagnostics, "~~`%s`~~")...)
	}

	if result.UnchangedCount > 0 {
		md.PlainText("")
		md.HorizontalRule()
		md.PlainText("")
		md.PlainTextf("*%d diagnostics unchanged*", result.UnchangedCount)
	}

	return md.Build()
}

// diagnosticLines renders each diagnostic with format.
func diagnosticLines(diags []model.Diagnostic, format string) []string {
	lines := make([]string, len(diags))
	for i, d := range diags {
		lines[i] = fmt.Sprintf(format, d.String())
	}
	return lines
}

// outputComparisonText outputs the comparison result in human-readable text format.
func outputComparisonText(out io.Writer, result *ComparisonResult) error {
	var sb strings.Builder

	fmt.Fprintf(&sb, "Run Comparison: %s\n", result.Root)
	sb.WriteString(strings.Repeat("=", 60) + "\n")

	fmt.Fprintf(&sb, "\nStatus: %s\n", formatDirection(result.Change.Direction))

	fmt.Fprintf(&sb, "\nPrevious run: %s\n", result.PreviousRun.DateChecked.Format(historyDateLayout))
	fmt.Fprintf(&sb, "Current run:  %s\n", result.CurrentRun.DateChecked.Format(historyDateLayout))

	sb.WriteString("\nDiagnostics Summary:\n")
	fmt.Fprintf(&sb, "  %-20s  %-10s  %-10s  %-10s\n", "Kind", "Previous", "Current", "Change")
	sb.WriteString("  " + strings.Repeat("-", 55) + "\n")
	fmt.Fprintf(&sb, "  %-20s  %-10d  %-10d  %-10s\n", "Fatal",
		result.PreviousRun.Fatal, result.CurrentRun.Fatal, formatDelta(result.Change.FatalDelta))
	for _, k := range summaryKinds {
		name := k.kind.String()
		fmt.Fprintf(&sb, "  %-20s  %-10d  %-10d  %-10s\n", k.label,
			result.PreviousRun.Counts[name], result.CurrentRun.Counts[name],
			formatDelta(result.Change.Deltas[name]))
	}
	sb.WriteString("  " + strings.Repeat("-", 55) + "\n")
	fmt.Fprintf(&sb, "  %-20s  %-10d  %-10d  %-10s\n", "Total",
		result.PreviousRun.TotalDiagnostics, result.CurrentRun.TotalDiagnostics,
		formatDelta(result.CurrentRun.TotalDiagnostics-result.PreviousRun.TotalDiagnostics))

	if len(result.NewDiagnostics) > 0 {
		fmt.Fprintf(&sb, "\nNew Diagnostics (%d):\n", len(result.NewDiagnostics))
		for _, d := range result.NewDiagnostics {
			fmt.Fprintf(&sb, "  + %s\n", d)
		}
	}

	if len(result.ResolvedDiagnostics) > 0 {
		fmt.Fprintf(&sb, "\nResolved Diagnostics (%d):\n", len(result.ResolvedDiagnostics))
		for _, d := range result.ResolvedDiagnostics {
			fmt.Fprintf(&sb, "  - %s\n", d)
		}
	}

	if result.UnchangedCount > 0 {
		fmt.Fprintf(&sb, "\n%d diagnostics unchanged\n", result.UnchangedCount)
	}

	_, err := io.WriteString(out, sb.String())
	return err
}

// formatDirection formats the change direction for display.
func formatDirection(direction string) string {
	switch direction {
	case directionImproved:
		return "IMPROVED (fewer problems)"
	case directionWorsened:
		return "WORSENED (more problems)"
	default:
		return "UNCHANGED"
	}
}

// formatDelta formats a count change with sign.
func formatDelta(delta int) string {
	if delta > 0 {
		return "+" + strconv.Itoa(delta)
	} else if delta < 0 {
		return strconv.Itoa(delta)
	}
	return "0"
}
