package backstop

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qaops/backstop/invoker"
	"github.com/qaops/backstop/logging"
	"github.com/qaops/backstop/registry"
	"github.com/qaops/backstop/reporting"
	"github.com/qaops/backstop/types"
)

// stubInvoker returns scripted results and records every invocation.
type stubInvoker struct {
	results []invoker.Result
	calls   []types.Command
}

func (s *stubInvoker) Run(ctx context.Context, cmd types.Command) invoker.Result {
	s.calls = append(s.calls, cmd)
	if len(s.results) == 0 {
		return invoker.Result{Completed: true}
	}
	result := s.results[0]
	s.results = s.results[1:]
	return result
}

func (s *stubInvoker) RunCaptured(ctx context.Context, cmd types.Command, timeout time.Duration) invoker.CapturedResult {
	return invoker.CapturedResult{Result: s.Run(ctx, cmd)}
}

func newTestOrchestrator(t *testing.T, category types.Category, stub *stubInvoker, out *bytes.Buffer) *Orchestrator {
	t.Helper()

	log := logging.NewNop()
	reg, err := registry.NewRegistry(registry.Config{Log: log})
	require.NoError(t, err)

	cfg := &Config{
		Category: category,
		BaseDir:  t.TempDir(),
		Log:      log,
	}
	reporter := reporting.NewSummaryReporter(
		t.TempDir(), reg.ReportEntries(), reg.CoverageIndex(), out)
	return NewWithDependencies(cfg, reg, stub, reporter)
}

func TestNewRequiresConfig(t *testing.T) {
	_, err := New(nil)
	require.Error(t, err)
}

func TestRunSuccess(t *testing.T) {
	var out bytes.Buffer
	stub := &stubInvoker{results: []invoker.Result{
		{Completed: true, ExitCode: 0, Duration: time.Second},
	}}
	orchestrator := newTestOrchestrator(t, types.CategoryUnit, stub, &out)

	err := orchestrator.Run(context.Background())
	require.NoError(t, err)
	require.Len(t, stub.calls, 1)
	assert.Contains(t, out.String(), "BACKEND TESTING SUMMARY")
}

func TestRunChildFailureIsTestFailure(t *testing.T) {
	var out bytes.Buffer
	stub := &stubInvoker{results: []invoker.Result{
		{Completed: true, ExitCode: 1, Duration: time.Second},
	}}
	orchestrator := newTestOrchestrator(t, types.CategoryAPI, stub, &out)

	err := orchestrator.Run(context.Background())
	require.Error(t, err)
	assert.True(t, IsTestFailureError(err))
	assert.False(t, IsRuntimeError(err))

	// The summary is printed even when the run fails.
	assert.Contains(t, out.String(), "BACKEND TESTING SUMMARY")
}

func TestRunLaunchFailureIsRuntimeError(t *testing.T) {
	var out bytes.Buffer
	stub := &stubInvoker{results: []invoker.Result{
		{LaunchErr: assert.AnError},
	}}
	orchestrator := newTestOrchestrator(t, types.CategoryDatabase, stub, &out)

	err := orchestrator.Run(context.Background())
	require.Error(t, err)
	assert.True(t, IsRuntimeError(err))
	assert.False(t, IsTestFailureError(err))
	assert.Contains(t, out.String(), "BACKEND TESTING SUMMARY")
}

func TestSecurityRunsBothScans(t *testing.T) {
	var out bytes.Buffer
	stub := &stubInvoker{results: []invoker.Result{
		{Completed: true, ExitCode: 1, Duration: time.Second}, // bandit fails
		{Completed: true, ExitCode: 0, Duration: time.Second}, // safety passes
	}}
	orchestrator := newTestOrchestrator(t, types.CategorySecurity, stub, &out)

	err := orchestrator.Run(context.Background())

	// Overall result is the AND of both scans, and the second scan must
	// have executed despite the first one failing.
	require.Error(t, err)
	assert.True(t, IsTestFailureError(err))
	require.Len(t, stub.calls, 2)
	assert.Equal(t, "bandit", stub.calls[0].Name())
	assert.Equal(t, "safety", stub.calls[1].Name())
}

func TestSecurityBothScansPass(t *testing.T) {
	var out bytes.Buffer
	stub := &stubInvoker{results: []invoker.Result{
		{Completed: true, ExitCode: 0},
		{Completed: true, ExitCode: 0},
	}}
	orchestrator := newTestOrchestrator(t, types.CategorySecurity, stub, &out)

	require.NoError(t, orchestrator.Run(context.Background()))
	require.Len(t, stub.calls, 2)
}

func TestRunInterrupted(t *testing.T) {
	var out bytes.Buffer
	stub := &stubInvoker{results: []invoker.Result{
		{Completed: true, ExitCode: 1},
		{Completed: true, ExitCode: 0},
	}}
	orchestrator := newTestOrchestrator(t, types.CategorySecurity, stub, &out)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := orchestrator.Run(ctx)
	require.Error(t, err)
	assert.True(t, IsInterruptedError(err))

	// The interrupt stops the run after the in-flight command.
	assert.Len(t, stub.calls, 1)
	assert.NotContains(t, out.String(), "BACKEND TESTING SUMMARY")
}
