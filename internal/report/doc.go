// Package report renders check reports.
//
// This package contains writers for different output formats:
//   - TextWriter: the plain console messages, diagnostics on stderr and
//     success summaries on stdout
//   - MarkdownWriter: a Markdown document for CI job summaries and sharing
//   - JSONWriter: structured JSON output for tool integration
//
// Writers implement the Writer interface, allowing them to be used
// interchangeably and composed with MultiWriter.
package report
