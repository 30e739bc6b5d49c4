// Package verify implements the environment readiness sequence: eight
// independent checks run in a fixed order, each passing or failing
// exactly once, aggregated into a passed/total count. A failing check
// never blocks the checks after it.
package verify

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"go.uber.org/zap"

	"github.com/qaops/backstop/invoker"
	"github.com/qaops/backstop/metrics"
	"github.com/qaops/backstop/types"
)

// Check is one step of the sequence: a name plus a run function. Checks
// are registered statically; there is no dynamic discovery.
type Check struct {
	Name string
	Run  func(ctx context.Context) types.CheckResult
}

// Config contains sequence configuration.
type Config struct {
	Log *zap.SugaredLogger

	// BaseDir is the project directory the checks inspect.
	BaseDir string

	// PythonBinary is the interpreter used by subprocess-based checks.
	PythonBinary string

	// Invoker runs the subprocess-based checks. Its working directory
	// must be BaseDir.
	Invoker invoker.Invoker

	// HTTPClient performs the connectivity probe. Its timeout is set by
	// NewSequence if zero.
	HTTPClient *http.Client

	// ProbeURL is the endpoint for the connectivity check.
	ProbeURL string

	Out io.Writer
}

// Sequence runs the fixed ordered set of readiness checks.
type Sequence struct {
	cfg    Config
	checks []Check
}

// Result aggregates the sequence outcome.
type Result struct {
	Checks []types.CheckResult
	Passed int
	Total  int
}

// AllPassed reports whether every check passed.
func (r Result) AllPassed() bool {
	return r.Passed == r.Total
}

// NewSequence builds the eight-check sequence.
func NewSequence(cfg Config) (*Sequence, error) {
	if cfg.Log == nil {
		return nil, fmt.Errorf("logger is required")
	}
	if cfg.Invoker == nil {
		return nil, fmt.Errorf("invoker is required")
	}
	if cfg.BaseDir == "" {
		cfg.BaseDir = "."
	}
	if cfg.PythonBinary == "" {
		cfg.PythonBinary = DefaultPythonBinary
	}
	if cfg.ProbeURL == "" {
		cfg.ProbeURL = DefaultProbeURL
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{Timeout: ConnectivityTimeout}
	}
	if cfg.Out == nil {
		cfg.Out = os.Stdout
	}

	return &Sequence{
		cfg:    cfg,
		checks: buildChecks(cfg),
	}, nil
}

// Checks returns the registered checks in execution order.
func (s *Sequence) Checks() []Check {
	return s.checks
}

// Run executes every check in order. Each check is isolated: a failure,
// timeout or panic in one records a failed result and execution moves
// on to the next.
func (s *Sequence) Run(ctx context.Context) Result {
	result := Result{Total: len(s.checks)}

	for _, check := range s.checks {
		s.cfg.Log.Infow("Running check", "check", check.Name)
		outcome := runIsolated(ctx, check)

		metrics.RecordCheck(outcome.Name, outcome.Passed)
		if outcome.Passed {
			result.Passed++
			s.cfg.Log.Infow("Check passed", "check", outcome.Name)
		} else {
			s.cfg.Log.Warnw("Check failed",
				"check", outcome.Name, "detail", outcome.Detail)
		}
		result.Checks = append(result.Checks, outcome)
	}

	s.printSummary(result)
	return result
}

// runIsolated runs one check, converting a panic into a failed result
// so the rest of the sequence still executes.
func runIsolated(ctx context.Context, check Check) (outcome types.CheckResult) {
	defer func() {
		if r := recover(); r != nil {
			outcome = types.CheckResult{
				Name:   check.Name,
				Detail: fmt.Sprintf("unexpected error: %v", r),
			}
		}
	}()
	return check.Run(ctx)
}

func (s *Sequence) printSummary(result Result) {
	t := table.NewWriter()
	t.SetOutputMirror(s.cfg.Out)
	t.SetTitle("Verification Summary")
	t.AppendHeader(table.Row{"Check", "Status", "Detail"})
	t.SetColumnConfigs([]table.ColumnConfig{
		{Name: "Detail", WidthMax: 70, WidthMaxEnforcer: text.WrapSoft},
	})

	for _, check := range result.Checks {
		status := "✅ pass"
		if !check.Passed {
			status = "❌ fail"
		}
		t.AppendRow(table.Row{check.Name, status, check.Detail})
	}

	t.AppendFooter(table.Row{
		"PASSED",
		fmt.Sprintf("%d/%d", result.Passed, result.Total),
		"",
	})

	if result.AllPassed() {
		t.SetStyle(table.StyleColoredBlackOnGreenWhite)
	} else {
		t.SetStyle(table.StyleColoredBlackOnRedWhite)
	}
	t.Render()

	if result.AllPassed() {
		fmt.Fprintf(s.cfg.Out, "\n🎉 All checks passed. Backend testing is ready to use.\n")
	} else {
		fmt.Fprintf(s.cfg.Out, "\n⚠️  %d checks failed. Fix the issues above before running tests.\n",
			result.Total-result.Passed)
	}
}
