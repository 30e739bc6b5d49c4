package verify

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"golang.org/x/mod/semver"

	"github.com/qaops/backstop/invoker"
	"github.com/qaops/backstop/types"
)

const (
	DefaultPythonBinary = "python3"
	DefaultProbeURL     = "https://jsonplaceholder.typicode.com/posts/1"

	// MinInterpreterVersion is the lowest Python version the backend test
	// suite supports.
	MinInterpreterVersion = "v3.9"

	ConnectivityTimeout = 10 * time.Second
	ProbeTimeout        = 10 * time.Second
	SyntaxTimeout       = 10 * time.Second
	CollectionTimeout   = 30 * time.Second
	SampleTestTimeout   = 60 * time.Second
)

// testFiles are the backend test sources every check operates on,
// relative to the base directory.
var testFiles = []string{
	"tests/backend/blackbox/test_api_simple.py",
	"tests/backend/blackbox/test_database_simple.py",
	"tests/backend/whitebox/test_unit_simple.py",
	"tests/backend/test_integration_simple.py",
}

// sampleTestID is the single live test used to prove the suite runs.
const sampleTestID = "tests/backend/blackbox/test_api_simple.py::TestAPIBlackBox::test_get_posts"

var pythonVersionRegex = regexp.MustCompile(`Python (\d+)\.(\d+)(?:\.(\d+))?`)

// buildChecks assembles the fixed ordered sequence.
func buildChecks(cfg Config) []Check {
	return []Check{
		{Name: "Interpreter Version", Run: interpreterVersionCheck(cfg)},
		{Name: "Required Packages", Run: packagesCheck(cfg)},
		{Name: "Internet Connectivity", Run: connectivityCheck(cfg)},
		{Name: "Database Functionality", Run: storeSmokeCheck(cfg)},
		{Name: "Test Files", Run: testFilesCheck(cfg)},
		{Name: "Syntax Validation", Run: syntaxCheck(cfg)},
		{Name: "Test Collection", Run: collectionCheck(cfg)},
		{Name: "Sample Test", Run: sampleTestCheck(cfg)},
	}
}

// interpreterVersionCheck verifies the Python interpreter is at least
// MinInterpreterVersion.
func interpreterVersionCheck(cfg Config) func(ctx context.Context) types.CheckResult {
	name := "Interpreter Version"
	return func(ctx context.Context) types.CheckResult {
		captured := cfg.Invoker.RunCaptured(ctx,
			types.Command{
				Args:        []string{cfg.PythonBinary, "--version"},
				Description: "Python version probe",
			}, ProbeTimeout)

		if captured.LaunchErr != nil {
			return types.CheckResult{Name: name,
				Detail: fmt.Sprintf("interpreter not found: %v", captured.LaunchErr)}
		}
		if !captured.Success() {
			return types.CheckResult{Name: name,
				Detail: fmt.Sprintf("version probe exited %d", captured.ExitCode)}
		}

		version, err := parsePythonVersion(captured.Output)
		if err != nil {
			return types.CheckResult{Name: name, Detail: err.Error()}
		}
		if semver.Compare(version, MinInterpreterVersion) < 0 {
			return types.CheckResult{Name: name,
				Detail: fmt.Sprintf("%s found, requires %s+", version, MinInterpreterVersion)}
		}
		return types.CheckResult{Name: name, Passed: true,
			Detail: fmt.Sprintf("%s - compatible", version)}
	}
}

func parsePythonVersion(output string) (string, error) {
	match := pythonVersionRegex.FindStringSubmatch(output)
	if match == nil {
		return "", fmt.Errorf("unrecognized version output: %q", strings.TrimSpace(output))
	}
	patch := match[3]
	if patch == "" {
		patch = "0"
	}
	return fmt.Sprintf("v%s.%s.%s", match[1], match[2], patch), nil
}

// connectivityCheck probes the external API the black-box tests depend on.
func connectivityCheck(cfg Config) func(ctx context.Context) types.CheckResult {
	name := "Internet Connectivity"
	return func(ctx context.Context) types.CheckResult {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, cfg.ProbeURL, nil)
		if err != nil {
			return types.CheckResult{Name: name,
				Detail: fmt.Sprintf("building probe request: %v", err)}
		}

		resp, err := cfg.HTTPClient.Do(req)
		if err != nil {
			return types.CheckResult{Name: name,
				Detail: fmt.Sprintf("connectivity failed: %v", err)}
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			return types.CheckResult{Name: name,
				Detail: fmt.Sprintf("endpoint returned status %d", resp.StatusCode)}
		}
		return types.CheckResult{Name: name, Passed: true,
			Detail: cfg.ProbeURL + " reachable"}
	}
}

// testFilesCheck verifies every backend test source exists.
func testFilesCheck(cfg Config) func(ctx context.Context) types.CheckResult {
	name := "Test Files"
	return func(ctx context.Context) types.CheckResult {
		var missing []string
		for _, file := range testFiles {
			path := filepath.Join(cfg.BaseDir, filepath.FromSlash(file))
			if info, err := os.Stat(path); err != nil || info.IsDir() {
				missing = append(missing, file)
			}
		}
		if len(missing) > 0 {
			return types.CheckResult{Name: name,
				Detail: "missing: " + strings.Join(missing, ", ")}
		}
		return types.CheckResult{Name: name, Passed: true,
			Detail: fmt.Sprintf("%d files present", len(testFiles))}
	}
}

// syntaxCheck compiles each test source without executing it.
func syntaxCheck(cfg Config) func(ctx context.Context) types.CheckResult {
	name := "Syntax Validation"
	return func(ctx context.Context) types.CheckResult {
		var invalid []string
		for _, file := range testFiles {
			captured := cfg.Invoker.RunCaptured(ctx,
				types.Command{
					Args:        []string{cfg.PythonBinary, "-m", "py_compile", file},
					Description: "Syntax check " + file,
				}, SyntaxTimeout)
			if !captured.Success() {
				detail := file
				if captured.LaunchErr != nil {
					detail = fmt.Sprintf("%s (launch: %v)", file, captured.LaunchErr)
				} else if line := firstLine(captured.Output); line != "" {
					detail = fmt.Sprintf("%s (%s)", file, line)
				}
				invalid = append(invalid, detail)
			}
		}
		if len(invalid) > 0 {
			return types.CheckResult{Name: name,
				Detail: "syntax errors: " + strings.Join(invalid, "; ")}
		}
		return types.CheckResult{Name: name, Passed: true,
			Detail: fmt.Sprintf("%d files valid", len(testFiles))}
	}
}

// collectionCheck dry-runs test discovery without executing any test.
func collectionCheck(cfg Config) func(ctx context.Context) types.CheckResult {
	name := "Test Collection"
	return func(ctx context.Context) types.CheckResult {
		captured := cfg.Invoker.RunCaptured(ctx,
			types.Command{
				Args: []string{
					cfg.PythonBinary, "-m", "pytest",
					"tests/backend/", "--collect-only", "-q",
				},
				Description: "Test collection dry run",
			}, CollectionTimeout)

		return subprocessCheckResult(name, captured, "collection")
	}
}

// sampleTestCheck runs one live test end to end.
func sampleTestCheck(cfg Config) func(ctx context.Context) types.CheckResult {
	name := "Sample Test"
	return func(ctx context.Context) types.CheckResult {
		captured := cfg.Invoker.RunCaptured(ctx,
			types.Command{
				Args: []string{
					cfg.PythonBinary, "-m", "pytest",
					sampleTestID, "-v", "--tb=short",
				},
				Description: "Sample backend test",
			}, SampleTestTimeout)

		return subprocessCheckResult(name, captured, "sample test")
	}
}

// subprocessCheckResult translates a captured invocation into a check
// result, treating timeouts and launch failures as failed checks.
func subprocessCheckResult(name string, captured invoker.CapturedResult, label string) types.CheckResult {
	switch {
	case captured.LaunchErr != nil:
		return types.CheckResult{Name: name,
			Detail: fmt.Sprintf("%s could not start: %v", label, captured.LaunchErr)}
	case captured.TimedOut:
		return types.CheckResult{Name: name,
			Detail: label + " timed out"}
	case !captured.Success():
		detail := fmt.Sprintf("%s failed (exit %d)", label, captured.ExitCode)
		if line := firstLine(captured.Output); line != "" {
			detail += ": " + line
		}
		return types.CheckResult{Name: name, Detail: detail}
	default:
		return types.CheckResult{Name: name, Passed: true,
			Detail: fmt.Sprintf("%s ok in %.1fs", label, captured.Duration.Seconds())}
	}
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if idx := strings.IndexByte(s, '\n'); idx != -1 {
		s = s[:idx]
	}
	return s
}
