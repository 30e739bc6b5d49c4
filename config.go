package backstop

import (
	"fmt"
	"path/filepath"

	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"github.com/qaops/backstop/flags"
	"github.com/qaops/backstop/types"
)

// Config holds the application configuration
type Config struct {
	Category       types.Category // Selected test category, exactly one per invocation
	BaseDir        string         // Project directory the test commands run in (absolute)
	ReportsDir     string         // Reports path relative to BaseDir, as embedded in command args
	ReportsDirAbs  string         // Absolute reports path used for existence checks
	PytestBinary   string
	PythonBinary   string
	ConfigOverride string // Optional YAML override file for the registry
	ServeMetrics   bool   // Expose healthz/metrics servers during the run
	Log            *zap.SugaredLogger
}

// NewConfig creates a new Config from cli context
func NewConfig(ctx *cli.Context, log *zap.SugaredLogger) (*Config, error) {
	category, err := flags.SelectedCategory(ctx)
	if err != nil {
		return nil, err
	}

	baseDir, err := filepath.Abs(ctx.String(flags.BaseDir.Name))
	if err != nil {
		return nil, fmt.Errorf("failed to resolve absolute path for base directory: %w", err)
	}

	reportsDir := ctx.String(flags.ReportsDir.Name)
	if reportsDir == "" {
		reportsDir = "reports"
	}
	if filepath.IsAbs(reportsDir) {
		return nil, fmt.Errorf("reports directory must be relative to the base directory, got %q", reportsDir)
	}

	return &Config{
		Category:       category,
		BaseDir:        baseDir,
		ReportsDir:     reportsDir,
		ReportsDirAbs:  filepath.Join(baseDir, reportsDir),
		PytestBinary:   ctx.String(flags.PytestBinary.Name),
		PythonBinary:   ctx.String(flags.PythonBinary.Name),
		ConfigOverride: ctx.String(flags.ConfigFile.Name),
		ServeMetrics:   ctx.Bool(flags.ServeMetrics.Name),
		Log:            log,
	}, nil
}
