package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"

	backstop "github.com/qaops/backstop"
	"github.com/qaops/backstop/exitcodes"
	"github.com/qaops/backstop/invoker"
	"github.com/qaops/backstop/logging"
	"github.com/qaops/backstop/verify"
)

var (
	Version   = "v0.3.0"
	GitCommit = ""
	GitDate   = ""
)

func main() {
	_ = godotenv.Load()

	app := cli.NewApp()
	app.Version = fmt.Sprintf("%s-%s-%s", Version, GitCommit, GitDate)
	app.Name = "backstop-verify"
	app.Usage = "Backend test environment verification"
	app.Description = "backstop-verify runs the fixed readiness sequence: interpreter, packages, connectivity, database, test files, syntax, collection and one live test"
	app.Action = run
	app.ExitErrHandler = func(c *cli.Context, err error) {
		var exitErr cli.ExitCoder
		if errors.As(err, &exitErr) {
			cli.HandleExitCoder(exitErr)
		} else if err != nil {
			if backstop.IsInterruptedError(err) {
				cli.HandleExitCoder(cli.Exit(err.Error(), exitcodes.Interrupted))
			} else {
				cli.HandleExitCoder(cli.Exit(err.Error(), exitcodes.TestFailure))
			}
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := app.RunContext(ctx, os.Args); err != nil {
		os.Exit(exitcodes.RuntimeErr)
	}
}

// The verification sequence takes no flags; the handful of knobs it has
// come from the environment so CI images can relocate the interpreter.
func run(ctx *cli.Context) error {
	log, err := logging.New(envOr("BACKSTOP_LOG_LEVEL", "info"))
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer func() {
		_ = log.Sync()
	}()

	baseDir, err := filepath.Abs(envOr("BACKSTOP_BASE_DIR", "."))
	if err != nil {
		return fmt.Errorf("failed to resolve base directory: %w", err)
	}

	inv, err := invoker.New(invoker.Config{
		WorkDir: baseDir,
		Log:     log,
	})
	if err != nil {
		return fmt.Errorf("failed to create invoker: %w", err)
	}

	sequence, err := verify.NewSequence(verify.Config{
		Log:          log,
		BaseDir:      baseDir,
		PythonBinary: envOr("BACKSTOP_PYTHON_BINARY", ""),
		Invoker:      inv,
	})
	if err != nil {
		return fmt.Errorf("failed to create verification sequence: %w", err)
	}

	result := sequence.Run(ctx.Context)
	if ctx.Context.Err() != nil {
		return backstop.NewInterruptedError("verification")
	}
	if !result.AllPassed() {
		return fmt.Errorf("%d of %d checks failed", result.Total-result.Passed, result.Total)
	}
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
