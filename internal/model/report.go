package model

import (
	"time"

	"github.com/google/uuid"
)

// Check names.
const (
	CheckLinks      = "links"
	CheckSitemap    = "sitemap"
	CheckComponents = "components"
)

// CheckResult is the outcome of one check against one site root.
type CheckResult struct {
	// Name is one of the Check* constants.
	Name string `json:"name"`

	// Scanned is the number of pages scanned (links, components) or
	// expected routes (sitemap) the check evaluated.
	Scanned int `json:"scanned"`

	// Diagnostics are all inconsistencies found, in discovery order.
	Diagnostics []Diagnostic `json:"diagnostics"`

	// Fatal is set when the check could not run because its inputs are
	// malformed. No diagnostics are reported in that case.
	Fatal string `json:"fatal,omitempty"`
}

// NewCheckResult creates an empty result for the named check.
func NewCheckResult(name string) *CheckResult {
	return &CheckResult{
		Name:        name,
		Diagnostics: make([]Diagnostic, 0),
	}
}

// Add records a diagnostic.
func (c *CheckResult) Add(d Diagnostic) {
	c.Diagnostics = append(c.Diagnostics, d)
}

// Passed reports whether the check ran and found nothing.
func (c *CheckResult) Passed() bool {
	return c.Fatal == "" && len(c.Diagnostics) == 0
}

// ByKind returns the diagnostics of kind k in discovery order.
func (c *CheckResult) ByKind(k Kind) []Diagnostic {
	var out []Diagnostic
	for _, d := range c.Diagnostics {
		if d.Kind == k {
			out = append(out, d)
		}
	}
	return out
}

// Report collects the check results for one site root.
type Report struct {
	// RunID uniquely identifies the run.
	RunID string `json:"run_id"`

	// Root is the site root directory as given by the user.
	Root string `json:"root"`

	// DateChecked is when the run started.
	DateChecked time.Time `json:"date_checked"`

	// Results holds one entry per executed check, in execution order.
	Results []*CheckResult `json:"results"`

	// PerformedChecks lists the names of checks that completed.
	PerformedChecks []string `json:"performed_checks"`

	// Error is set when the root itself could not be opened.
	Error string `json:"error,omitempty"`
}

// NewReport creates a report for root stamped with a fresh run id.
func NewReport(root string) *Report {
	return &Report{
		RunID:           uuid.NewString(),
		Root:            root,
		DateChecked:     time.Now(),
		Results:         make([]*CheckResult, 0),
		PerformedChecks: make([]string, 0),
	}
}

// AddResult appends a check result.
func (r *Report) AddResult(c *CheckResult) {
	r.Results = append(r.Results, c)
}

// Result returns the result of the named check, or nil.
func (r *Report) Result(name string) *CheckResult {
	for _, c := range r.Results {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// Passed reports whether every check in the report passed.
func (r *Report) Passed() bool {
	if r.Error != "" {
		return false
	}
	for _, c := range r.Results {
		if !c.Passed() {
			return false
		}
	}
	return true
}

// Diagnostics returns every diagnostic across all checks.
func (r *Report) Diagnostics() []Diagnostic {
	var out []Diagnostic
	for _, c := range r.Results {
		out = append(out, c.Diagnostics...)
	}
	return out
}

// Summary counts diagnostics per kind identifier.
func (r *Report) Summary() map[string]int {
	summary := make(map[string]int)
	for _, d := range r.Diagnostics() {
		summary[d.Kind.String()]++
	}
	return summary
}
