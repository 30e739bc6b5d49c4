package registry

import (
	"path"

	"github.com/qaops/backstop/types"
)

const (
	DefaultReportsDir   = "reports"
	DefaultPytestBinary = "pytest"
	DefaultBanditBinary = "bandit"
	DefaultSafetyBinary = "safety"

	// CoverageIndexPath is the coverage index location inside the reports
	// directory, produced by the full-suite coverage run.
	CoverageIndexPath = "full-coverage/index.html"

	// TestRoot is the directory holding the backend test suite, relative
	// to the orchestrator's working directory.
	TestRoot = "tests/backend"
)

// defaultSpecs is the built-in category command table. The argument
// vectors mirror the backend suite's pytest layout: one test file per
// category, per-category HTML report paths, and coverage collection for
// the unit and all categories.
func defaultSpecs(cfg Config) map[types.Category]CategorySpec {
	reportPath := func(filename string) string {
		return path.Join(cfg.ReportsDir, filename)
	}

	return map[types.Category]CategorySpec{
		types.CategoryAPI: {
			Category:    types.CategoryAPI,
			Description: "API Black Box Tests",
			Commands: []types.Command{{
				Description: "API Black Box Tests",
				Args: []string{
					cfg.PytestBinary,
					path.Join(TestRoot, "blackbox/test_api_simple.py"),
					"-v",
					"--html=" + reportPath("api-tests.html"),
					"--self-contained-html",
				},
			}},
		},
		types.CategoryDatabase: {
			Category:    types.CategoryDatabase,
			Description: "Database Tests",
			Commands: []types.Command{{
				Description: "Database Tests",
				Args: []string{
					cfg.PytestBinary,
					path.Join(TestRoot, "blackbox/test_database_simple.py"),
					"-v",
					"--html=" + reportPath("database-tests.html"),
					"--self-contained-html",
				},
			}},
		},
		types.CategoryUnit: {
			Category:    types.CategoryUnit,
			Description: "Unit Tests with Coverage",
			Commands: []types.Command{{
				Description: "Unit Tests with Coverage",
				Args: []string{
					cfg.PytestBinary,
					path.Join(TestRoot, "whitebox/test_unit_simple.py"),
					"-v",
					"--cov=" + path.Join(TestRoot, "whitebox"),
					"--cov-report=html:" + reportPath("coverage"),
					"--html=" + reportPath("unit-tests.html"),
					"--self-contained-html",
				},
			}},
		},
		types.CategoryIntegration: {
			Category:    types.CategoryIntegration,
			Description: "Integration Tests",
			Commands: []types.Command{{
				Description: "Integration Tests",
				Args: []string{
					cfg.PytestBinary,
					path.Join(TestRoot, "test_integration_simple.py"),
					"-v",
					"--html=" + reportPath("integration-tests.html"),
					"--self-contained-html",
				},
			}},
		},
		types.CategorySecurity: {
			Category:    types.CategorySecurity,
			Description: "Security Scans",
			// Both scans always run; overall success is the AND of both.
			Commands: []types.Command{
				{
					Description: "Security Scan",
					Args: []string{
						cfg.BanditBinary,
						"-r", TestRoot + "/",
						"-f", "txt",
					},
				},
				{
					Description: "Dependency Security Check",
					Args: []string{
						cfg.SafetyBinary,
						"check",
					},
				},
			},
		},
		types.CategoryAll: {
			Category:    types.CategoryAll,
			Description: "All Backend Tests",
			Commands: []types.Command{{
				Description: "All Backend Tests",
				Args: []string{
					cfg.PytestBinary,
					TestRoot + "/",
					"-v",
					"--cov=" + TestRoot,
					"--cov-report=html:" + reportPath("full-coverage"),
					"--cov-report=term-missing",
					"--html=" + reportPath("all-backend-tests.html"),
					"--self-contained-html",
				},
			}},
		},
	}
}

// defaultReportEntries is the fixed, ordered report registry.
func defaultReportEntries() []types.ReportEntry {
	return []types.ReportEntry{
		{Filename: "api-tests.html", Label: "API Tests"},
		{Filename: "database-tests.html", Label: "Database Tests"},
		{Filename: "unit-tests.html", Label: "Unit Tests"},
		{Filename: "integration-tests.html", Label: "Integration Tests"},
		{Filename: "all-backend-tests.html", Label: "Complete Test Suite"},
	}
}
