// Package registry holds the category command table and the report
// registry: the static mapping from test categories to the argument
// vectors that run them, and the ordered list of report artifacts the
// summary checks for after a run.
package registry

import (
	"fmt"
	"os"
	"sync"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/qaops/backstop/types"
)

// CategorySpec describes how one category is executed. Security carries
// two commands (static scan + dependency check); the others carry one.
type CategorySpec struct {
	Category    types.Category
	Description string
	Commands    []types.Command
}

// Config contains registry configuration.
type Config struct {
	Log *zap.SugaredLogger

	// ReportsDir is the reports path as embedded in command argument
	// vectors, relative to the orchestrator's working directory.
	ReportsDir string

	// PytestBinary, PythonBinary and the scanner binaries override the
	// executables named in the default command table.
	PytestBinary string
	BanditBinary string
	SafetyBinary string

	// OverrideFile optionally points at a YAML file replacing category
	// commands or report entries.
	OverrideFile string
}

// Registry maps categories to command specs and lists expected reports.
type Registry struct {
	config  Config
	specs   map[types.Category]CategorySpec
	reports []types.ReportEntry
	mu      sync.RWMutex
}

// NewRegistry creates a registry populated with the built-in command
// table, then applies the override file if one is configured.
func NewRegistry(cfg Config) (*Registry, error) {
	if cfg.Log == nil {
		return nil, fmt.Errorf("logger is required")
	}
	if cfg.ReportsDir == "" {
		cfg.ReportsDir = DefaultReportsDir
	}
	if cfg.PytestBinary == "" {
		cfg.PytestBinary = DefaultPytestBinary
	}
	if cfg.BanditBinary == "" {
		cfg.BanditBinary = DefaultBanditBinary
	}
	if cfg.SafetyBinary == "" {
		cfg.SafetyBinary = DefaultSafetyBinary
	}

	r := &Registry{
		config:  cfg,
		specs:   defaultSpecs(cfg),
		reports: defaultReportEntries(),
	}

	if cfg.OverrideFile != "" {
		if err := r.applyOverrides(cfg.OverrideFile); err != nil {
			return nil, fmt.Errorf("failed to load overrides: %w", err)
		}
	}

	cfg.Log.Debugw("Registry loaded",
		"categories", len(r.specs), "reports", len(r.reports))
	return r, nil
}

// SpecFor returns the command spec for a category.
func (r *Registry) SpecFor(c types.Category) (CategorySpec, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	spec, ok := r.specs[c]
	if !ok {
		return CategorySpec{}, fmt.Errorf("no command spec for category %q", c)
	}
	return spec, nil
}

// ReportEntries returns the ordered expected report artifacts.
func (r *Registry) ReportEntries() []types.ReportEntry {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entries := make([]types.ReportEntry, len(r.reports))
	copy(entries, r.reports)
	return entries
}

// CoverageIndex returns the path of the nested coverage index file,
// relative to the reports directory.
func (r *Registry) CoverageIndex() string {
	return CoverageIndexPath
}

// overrideConfig is the YAML shape of the optional override file.
type overrideConfig struct {
	Categories map[string]struct {
		Description string     `yaml:"description"`
		Commands    [][]string `yaml:"commands"`
	} `yaml:"categories"`
	Reports []struct {
		Filename string `yaml:"filename"`
		Label    string `yaml:"label"`
	} `yaml:"reports"`
}

func (r *Registry) applyOverrides(path string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.config.Log.Debugw("Reading registry override file", "path", path)

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading override file: %w", err)
	}

	var cfg overrideConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return fmt.Errorf("parsing override file: %w", err)
	}

	for name, override := range cfg.Categories {
		category, err := types.ParseCategory(name)
		if err != nil {
			return err
		}
		if len(override.Commands) == 0 {
			return fmt.Errorf("category %q override has no commands", name)
		}

		spec := CategorySpec{
			Category:    category,
			Description: override.Description,
		}
		if spec.Description == "" {
			spec.Description = r.specs[category].Description
		}
		for _, args := range override.Commands {
			if len(args) == 0 {
				return fmt.Errorf("category %q override has an empty command", name)
			}
			spec.Commands = append(spec.Commands, types.Command{
				Args:        args,
				Description: spec.Description,
			})
		}
		r.specs[category] = spec
	}

	if len(cfg.Reports) > 0 {
		entries := make([]types.ReportEntry, 0, len(cfg.Reports))
		for _, entry := range cfg.Reports {
			if entry.Filename == "" {
				return fmt.Errorf("report override entry has no filename")
			}
			entries = append(entries, types.ReportEntry{
				Filename: entry.Filename,
				Label:    entry.Label,
			})
		}
		r.reports = entries
	}

	return nil
}
