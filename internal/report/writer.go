package report

import (
	"io"

	"github.com/nao1215/sitecheck/internal/model"
)

// Writer defines the interface for report output.
type Writer interface {
	// Write outputs the report of one site root.
	// Returns the number of bytes written and any error encountered.
	Write(report *model.Report) (int, error)
}

// MultiWriter writes to multiple Writers in turn.
// This is useful for console output plus a report file.
type MultiWriter struct {
	writers []Writer
}

// NewMultiWriter creates a Writer that writes to all provided Writers.
func NewMultiWriter(writers ...Writer) *MultiWriter {
	return &MultiWriter{writers: writers}
}

// Write outputs the report to all configured Writers.
// Returns the total bytes written across all writers.
// Stops on first error encountered.
func (m *MultiWriter) Write(report *model.Report) (int, error) {
	var total int
	for _, w := range m.writers {
		n, err := w.Write(report)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// baseWriter provides common functionality for report writers.
type baseWriter struct {
	output io.Writer
}

// newBaseWriter creates a baseWriter with the given output destination.
func newBaseWriter(output io.Writer) baseWriter {
	return baseWriter{output: output}
}

// checkTitle returns the human-readable name of a check.
func checkTitle(name string) string {
	switch name {
	case model.CheckLinks:
		return "Internal link check"
	case model.CheckSitemap:
		return "Sitemap consistency check"
	case model.CheckComponents:
		return "Component check"
	default:
		return name + " check"
	}
}
