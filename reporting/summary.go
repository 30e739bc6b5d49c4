// Package reporting renders the post-run summary: which report
// artifacts exist under the reports directory. It is purely
// observational and never touches the reports themselves.
package reporting

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/qaops/backstop/types"
)

// SummaryReporter checks the report registry against the filesystem and
// prints one line per expected artifact.
type SummaryReporter struct {
	reportsDir    string
	entries       []types.ReportEntry
	coverageIndex string
	out           io.Writer
}

// EntryStatus pairs a report entry with its on-disk presence.
type EntryStatus struct {
	types.ReportEntry
	Present bool
	Path    string
}

// NewSummaryReporter creates a summary reporter for the given reports
// directory and registry entries. coverageIndex is the coverage index
// path relative to the reports directory.
func NewSummaryReporter(reportsDir string, entries []types.ReportEntry, coverageIndex string, out io.Writer) *SummaryReporter {
	if out == nil {
		out = os.Stdout
	}
	return &SummaryReporter{
		reportsDir:    reportsDir,
		entries:       entries,
		coverageIndex: coverageIndex,
		out:           out,
	}
}

// Statuses returns presence information for every registry entry, in
// registry order. Presence is decided solely by filesystem existence.
func (s *SummaryReporter) Statuses() []EntryStatus {
	statuses := make([]EntryStatus, 0, len(s.entries))
	for _, entry := range s.entries {
		path := filepath.Join(s.reportsDir, entry.Filename)
		statuses = append(statuses, EntryStatus{
			ReportEntry: entry,
			Present:     fileExists(path),
			Path:        path,
		})
	}
	return statuses
}

// CoverageIndexPath returns the coverage index path and whether it
// exists on disk.
func (s *SummaryReporter) CoverageIndexPath() (string, bool) {
	path := filepath.Join(s.reportsDir, filepath.FromSlash(s.coverageIndex))
	return path, fileExists(path)
}

// Print renders the summary table. It runs unconditionally after any
// test run, including when no reports exist at all.
func (s *SummaryReporter) Print() {
	fmt.Fprintf(s.out, "\nBACKEND TESTING SUMMARY\n")

	t := table.NewWriter()
	t.SetOutputMirror(s.out)
	t.SetTitle("Test Reports")
	t.AppendHeader(table.Row{"Report", "Status", "Path"})
	t.SetColumnConfigs([]table.ColumnConfig{
		{Name: "Path", WidthMax: 80, WidthMaxEnforcer: text.WrapSoft},
	})

	for _, status := range s.Statuses() {
		t.AppendRow(table.Row{
			status.Label,
			presenceString(status.Present),
			status.Path,
		})
	}
	t.Render()

	if path, ok := s.CoverageIndexPath(); ok {
		fmt.Fprintf(s.out, "\n📈 Coverage Report: %s\n", path)
	}

	fmt.Fprintf(s.out, "\n📁 All reports: %s\n", s.reportsDir)
	s.printTools()
}

func (s *SummaryReporter) printTools() {
	fmt.Fprintf(s.out, "\n🔧 Tools Used:\n")
	tools := []string{
		"pytest: Test framework",
		"Factory Boy: Test data generation",
		"Responses: HTTP mocking",
		"pytest-mock: Function mocking",
		"pytest-cov: Code coverage",
		"Bandit: Security scanning",
	}
	for _, tool := range tools {
		fmt.Fprintf(s.out, "  • %s\n", tool)
	}
}

func presenceString(present bool) string {
	if present {
		return "✅ present"
	}
	return "❌ missing"
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
