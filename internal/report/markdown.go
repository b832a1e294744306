package report

import (
	"io"
	"strconv"

	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"
	"github.com/nao1215/sitecheck/internal/model"
)

// MarkdownWriter outputs reports in Markdown format, suitable for a CI job
// summary or a pull request comment.
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{
		baseWriter: newBaseWriter(output),
	}
}

// Write outputs the report in Markdown format.
func (w *MarkdownWriter) Write(report *model.Report) (int, error) {
	md := markdown.NewMarkdown(w.output)

	w.writeHeader(md, report)
	w.writeSummary(md, report)
	w.writeResults(md, report)
	w.writeFooter(md)

	return len(md.String()), md.Build()
}

// writeHeader writes the report header with run information.
func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, report *model.Report) {
	md.H1("Site Check Report")
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Root", "`" + report.Root + "`"},
			{"Run ID", "`" + report.RunID + "`"},
			{"Checked", report.DateChecked.Format("2006-01-02 15:04:05 MST")},
			{"Status", w.getStatusText(report)},
		},
	})
	md.PlainText("")
}

// getStatusText returns the status text based on report state.
func (w *MarkdownWriter) getStatusText(report *model.Report) string {
	if report.Error != "" {
		return "❌ Error - " + report.Error
	}
	if report.Passed() {
		return "✅ Passed"
	}
	return "❌ Failed"
}

// writeSummary writes one row per check and the diagnostic distribution.
func (w *MarkdownWriter) writeSummary(md *markdown.Markdown, report *model.Report) {
	md.H2("Summary")
	md.PlainText("")

	rows := make([][]string, 0, len(report.Results))
	for _, result := range report.Results {
		status := "✅ Passed"
		switch {
		case result.Fatal != "":
			status = "⛔ " + result.Fatal
		case !result.Passed():
			status = "❌ Failed"
		}
		rows = append(rows, []string{
			checkTitle(result.Name),
			strconv.Itoa(result.Scanned),
			strconv.Itoa(len(result.Diagnostics)),
			status,
		})
	}
	md.Table(markdown.TableSet{
		Header: []string{"Check", "Scanned", "Diagnostics", "Status"},
		Rows:   rows,
	})
	md.PlainText("")

	summary := report.Summary()
	if len(summary) > 0 {
		w.writePieChart(md, summary)
	}
	w.writeAlert(md, report)
}

// kindLabels lists the diagnostic kinds in display order.
var kindLabels = []struct {
	kind  model.Kind
	label string
}{
	{model.KindBrokenLink, "Broken links"},
	{model.KindMissingComponent, "Missing components"},
	{model.KindMissingInSitemap, "Missing in sitemap"},
	{model.KindExtraInSitemap, "Extra in sitemap"},
}

// writePieChart writes a mermaid pie chart of diagnostics per kind.
func (w *MarkdownWriter) writePieChart(md *markdown.Markdown, summary map[string]int) {
	chart := piechart.NewPieChart(
		io.Discard,
		piechart.WithTitle("Diagnostics by Kind"),
		piechart.WithShowData(true),
	)
	for _, k := range kindLabels {
		if n := summary[k.kind.String()]; n > 0 {
			chart.LabelAndIntValue(k.label, uint64(n))
		}
	}

	md.PlainText("")
	md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
	md.PlainText("")
}

// writeAlert writes an alert summarizing the outcome.
func (w *MarkdownWriter) writeAlert(md *markdown.Markdown, report *model.Report) {
	fatal := 0
	for _, result := range report.Results {
		if result.Fatal != "" {
			fatal++
		}
	}
	diagnostics := len(report.Diagnostics())

	switch {
	case report.Error != "" || fatal > 0:
		md.Cautionf("%d check(s) could not run. Fix the site inputs and run again.", fatal)
	case diagnostics > 0:
		md.Warningf("%d diagnostic(s) found. The site has inconsistencies.", diagnostics)
	default:
		md.Tip("All checks passed.")
	}
	md.PlainText("")
}

// writeResults writes the diagnostics of each failed check.
func (w *MarkdownWriter) writeResults(md *markdown.Markdown, report *model.Report) {
	for _, result := range report.Results {
		if len(result.Diagnostics) == 0 {
			continue
		}
		md.H2(checkTitle(result.Name))
		md.PlainText("")

		if result.Name == model.CheckSitemap {
			w.writeSitemapTable(md, result)
			continue
		}

		rows := make([][]string, len(result.Diagnostics))
		for i, d := range result.Diagnostics {
			rows[i] = []string{
				"`" + d.Source + "`",
				"`" + truncateString(d.Raw, 60) + "`",
				"`" + d.Resolved.String() + "`",
			}
		}
		md.Table(markdown.TableSet{
			Header: []string{"Page", "Reference", "Resolved"},
			Rows:   rows,
		})
		md.PlainText("")
	}
}

// writeSitemapTable writes the route differences of the sitemap check.
func (w *MarkdownWriter) writeSitemapTable(md *markdown.Markdown, result *model.CheckResult) {
	rows := make([][]string, 0, len(result.Diagnostics))
	for _, d := range result.ByKind(model.KindMissingInSitemap) {
		rows = append(rows, []string{"`" + d.Resolved.String() + "`", "missing from sitemap"})
	}
	for _, d := range result.ByKind(model.KindExtraInSitemap) {
		rows = append(rows, []string{"`" + d.Resolved.String() + "`", "no matching page directory"})
	}
	md.Table(markdown.TableSet{
		Header: []string{"Route", "Problem"},
		Rows:   rows,
	})
	md.PlainText("")
}

// writeFooter writes the report footer.
func (w *MarkdownWriter) writeFooter(md *markdown.Markdown) {
	md.HorizontalRule()
	md.PlainText("")
	md.PlainTextf("*Report generated by [sitecheck](https://github.com/nao1215/sitecheck)*")
}

// truncateString truncates a string to maxLen bytes with ellipsis.
func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}
