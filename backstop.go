// Package backstop orchestrates the backend test suite: it selects one
// test category per invocation, delegates execution to the process
// invoker, and always renders the report summary afterwards.
package backstop

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/google/uuid"

	"github.com/qaops/backstop/invoker"
	"github.com/qaops/backstop/metrics"
	"github.com/qaops/backstop/registry"
	"github.com/qaops/backstop/reporting"
	"github.com/qaops/backstop/types"
)

// Orchestrator runs one test category and reports the results.
type Orchestrator struct {
	config   *Config
	registry *registry.Registry
	invoker  invoker.Invoker
	reporter *reporting.SummaryReporter
}

// New creates an orchestrator from the given config.
func New(cfg *Config) (*Orchestrator, error) {
	if cfg == nil {
		return nil, errors.New("config is required")
	}

	cfg.Log.Debugw("Creating orchestrator",
		"category", cfg.Category,
		"baseDir", cfg.BaseDir,
		"reportsDir", cfg.ReportsDir)

	// The reports directory is created up front so the underlying test
	// framework can write artifacts into it.
	if err := os.MkdirAll(cfg.ReportsDirAbs, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create reports directory: %w", err)
	}

	reg, err := registry.NewRegistry(registry.Config{
		Log:          cfg.Log,
		ReportsDir:   cfg.ReportsDir,
		PytestBinary: cfg.PytestBinary,
		OverrideFile: cfg.ConfigOverride,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create registry: %w", err)
	}

	inv, err := invoker.New(invoker.Config{
		WorkDir: cfg.BaseDir,
		Log:     cfg.Log,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create invoker: %w", err)
	}

	reporter := reporting.NewSummaryReporter(
		cfg.ReportsDirAbs, reg.ReportEntries(), reg.CoverageIndex(), os.Stdout)

	return &Orchestrator{
		config:   cfg,
		registry: reg,
		invoker:  inv,
		reporter: reporter,
	}, nil
}

// NewWithDependencies creates an orchestrator with injected
// collaborators. Used by tests.
func NewWithDependencies(cfg *Config, reg *registry.Registry, inv invoker.Invoker, reporter *reporting.SummaryReporter) *Orchestrator {
	return &Orchestrator{
		config:   cfg,
		registry: reg,
		invoker:  inv,
		reporter: reporter,
	}
}

// Run executes the selected category. All commands of a compound
// category run regardless of earlier failures; overall success is the
// AND of every command. The summary is printed after success and
// failure alike, but not after an interrupt.
func (o *Orchestrator) Run(ctx context.Context) error {
	runID := uuid.New().String()
	log := o.config.Log

	spec, err := o.registry.SpecFor(o.config.Category)
	if err != nil {
		return NewRuntimeError(err)
	}

	log.Infow("Starting test run",
		"run_id", runID,
		"category", spec.Category,
		"commands", len(spec.Commands))

	var (
		failed      []string
		launchFails []string
		interrupted bool
	)

	for _, command := range spec.Commands {
		result := o.invoker.Run(ctx, command)
		runResult := types.RunResult{
			Category: spec.Category,
			Success:  result.Success(),
			Duration: result.Duration,
			ExitCode: result.ExitCode,
		}
		metrics.RecordRun(runID, runResult.Category, runResult.Success, runResult.Duration)

		if result.LaunchErr != nil {
			log.Errorw("Command could not be launched",
				"command", command.Name(), "error", result.LaunchErr)
			launchFails = append(launchFails, command.Description)
		} else if !result.Success() {
			log.Warnw("Command failed",
				"command", command.Name(),
				"exit_code", result.ExitCode,
				"duration", result.Duration)
			failed = append(failed, command.Description)
		} else {
			log.Infow("Command succeeded",
				"command", command.Name(), "duration", result.Duration)
		}

		// A user interrupt stops the run; remaining commands are skipped
		// and no summary is printed.
		if ctx.Err() != nil {
			interrupted = true
			break
		}
	}

	if interrupted {
		fmt.Println("\n⚠️ Test execution interrupted")
		return NewInterruptedError(string(spec.Category))
	}

	o.reporter.Print()
	log.Infow("Test run completed",
		"run_id", runID,
		"category", spec.Category,
		"failed", len(failed),
		"launch_failures", len(launchFails))

	if len(launchFails) > 0 {
		return NewRuntimeError(fmt.Errorf("could not launch: %s", strings.Join(launchFails, ", ")))
	}
	if len(failed) > 0 {
		return NewTestFailureError(strings.Join(failed, ", "))
	}
	return nil
}
