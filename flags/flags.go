package flags

import (
	"fmt"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/qaops/backstop/types"
)

const EnvVarPrefix = "BACKSTOP"

func prefixEnvVars(name string) []string {
	return []string{EnvVarPrefix + "_" + name}
}

var (
	API = &cli.BoolFlag{
		Name:    "api",
		Usage:   "Run API black box tests",
		EnvVars: prefixEnvVars("API"),
	}
	Database = &cli.BoolFlag{
		Name:    "database",
		Usage:   "Run database tests",
		EnvVars: prefixEnvVars("DATABASE"),
	}
	Unit = &cli.BoolFlag{
		Name:    "unit",
		Usage:   "Run unit tests with coverage",
		EnvVars: prefixEnvVars("UNIT"),
	}
	Integration = &cli.BoolFlag{
		Name:    "integration",
		Usage:   "Run integration tests",
		EnvVars: prefixEnvVars("INTEGRATION"),
	}
	Security = &cli.BoolFlag{
		Name:    "security",
		Usage:   "Run security scans (static analysis + dependency check)",
		EnvVars: prefixEnvVars("SECURITY"),
	}
	All = &cli.BoolFlag{
		Name:    "all",
		Usage:   "Run the complete backend test suite",
		EnvVars: prefixEnvVars("ALL"),
	}

	BaseDir = &cli.StringFlag{
		Name:    "base-dir",
		Value:   ".",
		EnvVars: prefixEnvVars("BASE_DIR"),
		Usage:   "Project directory the test commands run in",
	}
	ReportsDir = &cli.StringFlag{
		Name:    "reports-dir",
		Value:   "reports",
		EnvVars: prefixEnvVars("REPORTS_DIR"),
		Usage:   "Directory (relative to base-dir) holding report artifacts",
	}
	PytestBinary = &cli.StringFlag{
		Name:    "pytest-binary",
		Value:   "pytest",
		EnvVars: prefixEnvVars("PYTEST_BINARY"),
		Usage:   "Path to the pytest binary used to run tests",
	}
	PythonBinary = &cli.StringFlag{
		Name:    "python-binary",
		Value:   "python3",
		EnvVars: prefixEnvVars("PYTHON_BINARY"),
		Usage:   "Path to the Python interpreter",
	}
	ConfigFile = &cli.StringFlag{
		Name:    "config",
		Value:   "",
		EnvVars: prefixEnvVars("CONFIG"),
		Usage:   "Optional YAML file overriding category commands and report entries",
	}
	ServeMetrics = &cli.BoolFlag{
		Name:    "serve-metrics",
		Value:   false,
		EnvVars: prefixEnvVars("SERVE_METRICS"),
		Usage:   "Expose healthz and Prometheus metrics servers for the duration of the run",
	}
	LogLevel = &cli.StringFlag{
		Name:    "log-level",
		Value:   "info",
		EnvVars: prefixEnvVars("LOG_LEVEL"),
		Usage:   "Log level (debug, info, warn, error)",
	}
)

// categoryFlags are mutually exclusive; exactly one must be set.
var categoryFlags = []cli.Flag{
	API,
	Database,
	Unit,
	Integration,
	Security,
	All,
}

var optionalFlags = []cli.Flag{
	BaseDir,
	ReportsDir,
	PytestBinary,
	PythonBinary,
	ConfigFile,
	ServeMetrics,
	LogLevel,
}

var Flags []cli.Flag

func init() {
	Flags = append(Flags, categoryFlags...)
	Flags = append(Flags, optionalFlags...)
}

// SelectedCategory validates the mutually exclusive category flags and
// returns the single selected category. It must be called before any
// subprocess is launched.
func SelectedCategory(ctx *cli.Context) (types.Category, error) {
	var selected []types.Category
	for _, f := range categoryFlags {
		name := f.Names()[0]
		if ctx.Bool(name) {
			selected = append(selected, types.Category(name))
		}
	}

	switch len(selected) {
	case 0:
		return "", fmt.Errorf("one of %s is required", categoryFlagNames())
	case 1:
		return selected[0], nil
	default:
		names := make([]string, len(selected))
		for i, c := range selected {
			names[i] = "--" + c.String()
		}
		return "", fmt.Errorf("flags %s are mutually exclusive", strings.Join(names, ", "))
	}
}

func categoryFlagNames() string {
	names := make([]string, len(categoryFlags))
	for i, f := range categoryFlags {
		names[i] = "--" + f.Names()[0]
	}
	return strings.Join(names, ", ")
}
