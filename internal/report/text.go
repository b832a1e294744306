package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/nao1215/sitecheck/internal/config"
	"github.com/nao1215/sitecheck/internal/model"
)

// TextWriter writes the console messages of each check.
// Failures and fatal errors go to the error stream; success summaries go to
// the output stream.
type TextWriter struct {
	baseWriter

	errOutput io.Writer

	// sitemapName is used in the sitemap section labels.
	sitemapName string

	// showRoot prefixes each report with its root directory.
	showRoot bool
}

// TextWriterOption configures a TextWriter.
type TextWriterOption func(*TextWriter)

// WithSitemapName sets the sitemap file name shown in the sitemap messages.
func WithSitemapName(name string) TextWriterOption {
	return func(w *TextWriter) {
		w.sitemapName = name
	}
}

// WithShowRoot prints a "==> root <==" line before each report.
func WithShowRoot(show bool) TextWriterOption {
	return func(w *TextWriter) {
		w.showRoot = show
	}
}

// NewTextWriter creates a TextWriter. output receives success lines and
// errOutput receives diagnostics.
func NewTextWriter(output, errOutput io.Writer, opts ...TextWriterOption) *TextWriter {
	w := &TextWriter{
		baseWriter:  newBaseWriter(output),
		errOutput:   errOutput,
		sitemapName: config.DefaultSitemapFile,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Write outputs one block per check result in execution order.
func (w *TextWriter) Write(report *model.Report) (int, error) {
	var total int
	emit := func(dst io.Writer, s string) error {
		n, err := io.WriteString(dst, s)
		total += n
		return err
	}

	if w.showRoot {
		if err := emit(w.output, fmt.Sprintf("==> %s <==\n", report.Root)); err != nil {
			return total, err
		}
	}
	if report.Error != "" {
		return total, emit(w.errOutput, report.Error+"\n")
	}

	for _, result := range report.Results {
		var err error
		switch {
		case result.Fatal != "":
			err = emit(w.errOutput, result.Fatal+"\n")
		case result.Passed():
			err = emit(w.output, w.passed(result))
		default:
			err = emit(w.errOutput, w.failed(result))
		}
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// passed renders the success summary of a check.
func (w *TextWriter) passed(result *model.CheckResult) string {
	switch result.Name {
	case model.CheckSitemap:
		return fmt.Sprintf("Sitemap consistency check passed for %d routes.\n", result.Scanned)
	default:
		return fmt.Sprintf("%s passed for %d HTML files.\n", checkTitle(result.Name), result.Scanned)
	}
}

// failed renders the diagnostics of a check.
func (w *TextWriter) failed(result *model.CheckResult) string {
	var sb strings.Builder

	if result.Name != model.CheckSitemap {
		sb.WriteString(checkTitle(result.Name) + " failed:\n\n")
		for _, d := range result.Diagnostics {
			sb.WriteString("- " + d.String() + "\n")
		}
		return sb.String()
	}

	sb.WriteString("Sitemap consistency check failed.\n")
	if missing := result.ByKind(model.KindMissingInSitemap); len(missing) > 0 {
		sb.WriteString(fmt.Sprintf("\nMissing routes in %s:\n", w.sitemapName))
		writeRoutes(&sb, missing)
	}
	if extra := result.ByKind(model.KindExtraInSitemap); len(extra) > 0 {
		sb.WriteString(fmt.Sprintf("\nRoutes present in %s without matching page directories:\n", w.sitemapName))
		writeRoutes(&sb, extra)
	}
	return sb.String()
}

func writeRoutes(sb *strings.Builder, diags []model.Diagnostic) {
	for _, d := range diags {
		sb.WriteString("- " + d.Resolved.String() + "\n")
	}
}
