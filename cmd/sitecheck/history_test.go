package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/nao1215/sitecheck/internal/database"
	"github.com/nao1215/sitecheck/internal/model"
)

// newTestReport builds a report whose link check found the given targets.
func newTestReport(date time.Time, brokenTargets ...string) *model.Report {
	r := model.NewReport("/site")
	r.DateChecked = date
	links := model.NewCheckResult(model.CheckLinks)
	for _, target := range brokenTargets {
		links.Add(model.Diagnostic{
			Kind:     model.KindBrokenLink,
			Source:   "index.html",
			Raw:      target,
			Resolved: model.NewRoute(target),
		})
	}
	r.AddResult(links)
	return r
}

func TestCompareReports(t *testing.T) {
	t.Parallel()

	earlier := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	later := earlier.Add(time.Hour)

	tests := []struct {
		name          string
		previous      *model.Report
		current       *model.Report
		wantNew       []string
		wantResolved  []string
		wantUnchanged int
		wantDirection string
	}{
		{
			name:          "problem fixed",
			previous:      newTestReport(earlier, "/a", "/b"),
			current:       newTestReport(later, "/a"),
			wantResolved:  []string{"/b"},
			wantUnchanged: 1,
			wantDirection: directionImproved,
		},
		{
			name:          "problem introduced",
			previous:      newTestReport(earlier),
			current:       newTestReport(later, "/c"),
			wantNew:       []string{"/c"},
			wantDirection: directionWorsened,
		},
		{
			name:          "same count different problems",
			previous:      newTestReport(earlier, "/a"),
			current:       newTestReport(later, "/b"),
			wantNew:       []string{"/b"},
			wantResolved:  []string{"/a"},
			wantDirection: directionUnchanged,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := compareReports(tt.previous, tt.current)

			if routes := resolvedRoutes(got.NewDiagnostics); !slices.Equal(routes, tt.wantNew) {
				t.Errorf("new = %v, want %v", routes, tt.wantNew)
			}
			if routes := resolvedRoutes(got.ResolvedDiagnostics); !slices.Equal(routes, tt.wantResolved) {
				t.Errorf("resolved = %v, want %v", routes, tt.wantResolved)
			}
			if got.UnchangedCount != tt.wantUnchanged {
				t.Errorf("unchanged = %d, want %d", got.UnchangedCount, tt.wantUnchanged)
			}
			if got.Change.Direction != tt.wantDirection {
				t.Errorf("direction = %q, want %q", got.Change.Direction, tt.wantDirection)
			}
		})
	}
}

func TestCompareReports_FatalOutweighsDiagnostics(t *testing.T) {
	t.Parallel()

	previous := newTestReport(time.Now())
	sitemap := model.NewCheckResult(model.CheckSitemap)
	sitemap.Fatal = "sitemap.xml not found."
	previous.AddResult(sitemap)

	current := newTestReport(time.Now(), "/a", "/b")

	got := compareReports(previous, current)
	if got.Change.FatalDelta != -1 {
		t.Errorf("fatal delta = %d, want -1", got.Change.FatalDelta)
	}
	if got.Change.Direction != directionImproved {
		t.Errorf("direction = %q, want %q", got.Change.Direction, directionImproved)
	}
}

func TestFormatDelta(t *testing.T) {
	t.Parallel()

	tests := map[int]string{3: "+3", -2: "-2", 0: "0"}
	for delta, want := range tests {
		if got := formatDelta(delta); got != want {
			t.Errorf("formatDelta(%d) = %q, want %q", delta, got, want)
		}
	}
}

func TestFormatSummary(t *testing.T) {
	t.Parallel()

	if got := formatSummary(nil); got != "N/A" {
		t.Errorf("nil summary = %q", got)
	}
	if got := formatSummary(map[string]int{}); got != noDiagnosticsMessage {
		t.Errorf("empty summary = %q", got)
	}
	got := formatSummary(map[string]int{"broken_link": 2, "missing_component": 1})
	if got != "L:2 C:1" {
		t.Errorf("summary = %q, want %q", got, "L:2 C:1")
	}
}

func TestFirstRunSince(t *testing.T) {
	t.Parallel()

	jan := newTestReport(time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC))
	feb := newTestReport(time.Date(2026, 2, 10, 0, 0, 0, 0, time.UTC))
	mar := newTestReport(time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC))
	newestFirst := []*model.Report{mar, feb, jan}

	got, err := firstRunSince(newestFirst, "2026-02-01")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != feb {
		t.Errorf("expected the February run, got %v", got.DateChecked)
	}

	if _, err := firstRunSince(newestFirst, "2026-04-01"); err == nil {
		t.Error("expected error when no run is recent enough")
	}
	if _, err := firstRunSince(newestFirst, "01/02/2026"); err == nil {
		t.Error("expected error for malformed date")
	}
}

func TestHistoryCmd(t *testing.T) {
	t.Parallel()

	dbDir := t.TempDir()
	root := writeSite(t, validSite())

	if _, _, err := runCLI(t, dbDir, "check", "--save", root); err != nil {
		t.Fatalf("first run: %v", err)
	}

	t.Run("one run is not enough", func(t *testing.T) {
		_, _, err := runCLI(t, dbDir, "history", root)
		if err == nil || !strings.Contains(err.Error(), "at least 2 runs") {
			t.Fatalf("expected comparison error, got %v", err)
		}
	})

	page := filepath.Join(root, "about", "index.html")
	if err := os.WriteFile(page, []byte(`<a href="/gone">x</a>`), 0600); err != nil {
		t.Fatal(err)
	}
	if _, _, err := runCLI(t, dbDir, "check", "--save", root); !errors.Is(err, ErrCheckFailed) {
		t.Fatalf("second run: expected ErrCheckFailed, got %v", err)
	}

	t.Run("json comparison", func(t *testing.T) {
		stdout, _, err := runCLI(t, dbDir, "history", "--json", root)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		var got ComparisonResult
		if err := json.Unmarshal([]byte(stdout), &got); err != nil {
			t.Fatalf("invalid JSON %q: %v", stdout, err)
		}
		if got.Change.Direction != directionWorsened {
			t.Errorf("direction = %q, want %q", got.Change.Direction, directionWorsened)
		}
		if len(got.NewDiagnostics) != 1 || got.NewDiagnostics[0].Resolved != "/gone" {
			t.Errorf("unexpected new diagnostics %+v", got.NewDiagnostics)
		}

		byRunID, _, err := runCLI(t, dbDir, "history", "--json", "--with-run-id", got.PreviousRun.RunID, root)
		if err != nil {
			t.Fatalf("unexpected error with run id: %v", err)
		}
		if byRunID != stdout {
			t.Errorf("comparison by run id differs:\n%s\nvs\n%s", byRunID, stdout)
		}

		if _, _, err := runCLI(t, dbDir, "history", "--with-run-id", "no-such-run", root); err == nil {
			t.Error("expected error for unknown run id")
		}
	})

	t.Run("text comparison", func(t *testing.T) {
		stdout, _, err := runCLI(t, dbDir, "history", root)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		for _, want := range []string{"Run Comparison: " + root, "WORSENED", `+ about/index.html: unresolved local reference "/gone"`} {
			if !strings.Contains(stdout, want) {
				t.Errorf("expected %q in %q", want, stdout)
			}
		}
	})

	t.Run("markdown comparison", func(t *testing.T) {
		stdout, _, err := runCLI(t, dbDir, "history", "-m", root)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(stdout, "# Run Comparison") || !strings.Contains(stdout, "New Diagnostics (1)") {
			t.Errorf("unexpected markdown %q", stdout)
		}
	})

	t.Run("list runs and roots", func(t *testing.T) {
		stdout, _, err := runCLI(t, dbDir, "history", "--list", root)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(stdout, "(2 runs)") || !strings.Contains(stdout, "L:1") {
			t.Errorf("unexpected listing %q", stdout)
		}

		stdout, _, err = runCLI(t, dbDir, "history", "--list-roots")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(stdout, root) {
			t.Errorf("expected %s in %q", root, stdout)
		}
	})

	t.Run("unknown root", func(t *testing.T) {
		_, _, err := runCLI(t, dbDir, "history", t.TempDir())
		if !errors.Is(err, errNoHistory) {
			t.Fatalf("expected errNoHistory, got %v", err)
		}
	})
}

func TestHistoryCmd_NoDatabase(t *testing.T) {
	t.Parallel()

	_, _, err := runCLI(t, t.TempDir(), "history", t.TempDir())
	if !errors.Is(err, database.ErrDatabaseNotFound) {
		t.Fatalf("expected ErrDatabaseNotFound, got %v", err)
	}
}

func TestHistoryCmd_ConflictingFormats(t *testing.T) {
	t.Parallel()

	cmd := NewRootCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"history", "--db-dir", t.TempDir(), "-j", "-m"})
	if err := cmd.Execute(); err == nil {
		t.Fatal("expected error for conflicting formats")
	}
}

func resolvedRoutes(diags []model.Diagnostic) []string {
	var out []string
	for _, d := range diags {
		out = append(out, d.Resolved.String())
	}
	return out
}
