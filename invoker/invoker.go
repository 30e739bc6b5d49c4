// Package invoker executes external commands on behalf of the
// orchestrator and the verification sequence. It distinguishes a command
// that could not be launched from one that ran and exited non-zero, and
// always reports wall-clock duration.
package invoker

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/acarl005/stripansi"
	"go.uber.org/zap"

	"github.com/qaops/backstop/types"
)

var _ Invoker = (*processInvoker)(nil)

// Invoker runs external commands.
type Invoker interface {
	// Run executes the command with the child's stdout and stderr wired to
	// the invoker's own streams. A non-zero exit is a normal failure
	// result, not an error.
	Run(ctx context.Context, cmd types.Command) Result

	// RunCaptured executes the command with combined output captured and a
	// hard timeout. A timeout is reported as a failed result.
	RunCaptured(ctx context.Context, cmd types.Command, timeout time.Duration) CapturedResult
}

// Result is the two-variant outcome of an invocation: either the command
// never started (LaunchErr set, Completed false) or it ran to completion
// and ExitCode holds the child's exit status.
type Result struct {
	Completed bool
	ExitCode  int
	LaunchErr error
	Duration  time.Duration
}

// Success reports whether the command ran and exited zero.
func (r Result) Success() bool {
	return r.Completed && r.ExitCode == 0
}

// CapturedResult extends Result with the child's combined output and a
// timeout marker.
type CapturedResult struct {
	Result
	Output   string
	TimedOut bool
}

// Config contains invoker configuration.
type Config struct {
	// WorkDir is the fixed working directory for all commands.
	WorkDir string
	Log     *zap.SugaredLogger

	// Stdout and Stderr receive the child's streams in Run. Defaults to
	// the process's own streams.
	Stdout io.Writer
	Stderr io.Writer

	// CmdBuilder constructs the exec.Cmd. Overridable in tests.
	CmdBuilder func(ctx context.Context, name string, arg ...string) *exec.Cmd
}

type processInvoker struct {
	cfg Config
}

// New creates a process invoker.
func New(cfg Config) (Invoker, error) {
	if cfg.WorkDir == "" {
		return nil, fmt.Errorf("workDir cannot be empty")
	}
	if cfg.Log == nil {
		return nil, fmt.Errorf("logger cannot be nil")
	}
	if cfg.Stdout == nil {
		cfg.Stdout = os.Stdout
	}
	if cfg.Stderr == nil {
		cfg.Stderr = os.Stderr
	}
	if cfg.CmdBuilder == nil {
		cfg.CmdBuilder = exec.CommandContext
	}
	return &processInvoker{cfg: cfg}, nil
}

func (p *processInvoker) Run(ctx context.Context, command types.Command) Result {
	if len(command.Args) == 0 {
		return Result{LaunchErr: errors.New("empty command")}
	}

	p.printBanner(command.Description)
	p.cfg.Log.Debugw("Running command", "args", command.Args, "dir", p.cfg.WorkDir)

	cmd := p.cfg.CmdBuilder(ctx, command.Args[0], command.Args[1:]...)
	cmd.Dir = p.cfg.WorkDir
	cmd.Stdout = p.cfg.Stdout
	cmd.Stderr = p.cfg.Stderr

	start := time.Now()
	if err := cmd.Start(); err != nil {
		duration := time.Since(start)
		p.cfg.Log.Errorw("Failed to launch command",
			"command", command.Name(), "error", err)
		fmt.Fprintf(p.cfg.Stdout, "❌ Could not launch %s: %v\n", command.Name(), err)
		return Result{LaunchErr: err, Duration: duration}
	}

	waitErr := cmd.Wait()
	duration := time.Since(start)

	result := Result{Completed: true, Duration: duration}
	if waitErr != nil {
		var exitErr *exec.ExitError
		if errors.As(waitErr, &exitErr) {
			result.ExitCode = exitErr.ExitCode()
		} else {
			// Wait failed for a reason other than the child's exit status.
			result.ExitCode = -1
		}
	}

	if result.Success() {
		fmt.Fprintf(p.cfg.Stdout, "✅ Completed in %.2fs\n", duration.Seconds())
	} else {
		fmt.Fprintf(p.cfg.Stdout, "❌ Failed in %.2fs\n", duration.Seconds())
	}
	return result
}

func (p *processInvoker) RunCaptured(ctx context.Context, command types.Command, timeout time.Duration) CapturedResult {
	if len(command.Args) == 0 {
		return CapturedResult{Result: Result{LaunchErr: errors.New("empty command")}}
	}

	runCtx := ctx
	var cancel context.CancelFunc
	if timeout > 0 {
		runCtx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	cmd := p.cfg.CmdBuilder(runCtx, command.Args[0], command.Args[1:]...)
	cmd.Dir = p.cfg.WorkDir

	var buf bytes.Buffer
	cmd.Stdout = &buf
	cmd.Stderr = &buf

	start := time.Now()
	if err := cmd.Start(); err != nil {
		return CapturedResult{Result: Result{LaunchErr: err, Duration: time.Since(start)}}
	}

	waitErr := cmd.Wait()
	duration := time.Since(start)
	timedOut := runCtx.Err() == context.DeadlineExceeded

	result := Result{Completed: true, Duration: duration}
	if waitErr != nil {
		var exitErr *exec.ExitError
		if errors.As(waitErr, &exitErr) {
			result.ExitCode = exitErr.ExitCode()
		} else {
			result.ExitCode = -1
		}
	}
	if timedOut {
		// The child was killed by the deadline; its exit status is noise.
		result.ExitCode = -1
		p.cfg.Log.Warnw("Command timed out",
			"command", command.Name(), "timeout", timeout)
	}

	return CapturedResult{
		Result:   result,
		Output:   cleanOutput(buf.String()),
		TimedOut: timedOut,
	}
}

func (p *processInvoker) printBanner(description string) {
	separator := strings.Repeat("=", 50)
	fmt.Fprintf(p.cfg.Stdout, "\n%s\n", separator)
	fmt.Fprintf(p.cfg.Stdout, "Running: %s\n", description)
	fmt.Fprintf(p.cfg.Stdout, "%s\n", separator)
}

// cleanOutput strips ANSI escape sequences and trailing whitespace from
// captured child output so it is safe to log and embed in summaries.
func cleanOutput(s string) string {
	return strings.TrimSpace(stripansi.Strip(s))
}
