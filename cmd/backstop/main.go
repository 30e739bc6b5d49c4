package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"

	backstop "github.com/qaops/backstop"
	"github.com/qaops/backstop/exitcodes"
	"github.com/qaops/backstop/flags"
	"github.com/qaops/backstop/logging"
	"github.com/qaops/backstop/service"
)

var (
	Version   = "v0.3.0"
	GitCommit = ""
	GitDate   = ""
)

func main() {
	// Optional .env file for local development; absence is not an error.
	_ = godotenv.Load()

	app := cli.NewApp()
	app.Version = fmt.Sprintf("%s-%s-%s", Version, GitCommit, GitDate)
	app.Name = "backstop"
	app.Usage = "Backend test orchestrator"
	app.Description = "backstop runs one backend test category, aggregates results and prints the report summary"
	app.Flags = flags.Flags
	app.Action = run
	app.ExitErrHandler = func(c *cli.Context, err error) {
		var exitErr cli.ExitCoder
		if errors.As(err, &exitErr) {
			cli.HandleExitCoder(exitErr)
		} else if err != nil {
			switch {
			case backstop.IsInterruptedError(err):
				// User interrupt: dedicated exit code, no stack trace.
				cli.HandleExitCoder(cli.Exit(err.Error(), exitcodes.Interrupted))
			case backstop.IsRuntimeError(err):
				cli.HandleExitCoder(cli.Exit(err.Error(), exitcodes.RuntimeErr))
			case backstop.IsTestFailureError(err):
				cli.HandleExitCoder(cli.Exit(err.Error(), exitcodes.TestFailure))
			default:
				cli.HandleExitCoder(cli.Exit(err.Error(), exitcodes.TestFailure))
			}
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := app.RunContext(ctx, os.Args); err != nil {
		// The exit error handler has already mapped the error to an exit
		// code; anything left is a usage error.
		os.Exit(exitcodes.RuntimeErr)
	}
}

func run(ctx *cli.Context) error {
	log, err := logging.New(ctx.String(flags.LogLevel.Name))
	if err != nil {
		return backstop.NewRuntimeError(fmt.Errorf("failed to create logger: %w", err))
	}
	defer func() {
		_ = log.Sync()
	}()

	cfg, err := backstop.NewConfig(ctx, log)
	if err != nil {
		return backstop.NewRuntimeError(fmt.Errorf("failed to create config: %w", err))
	}
	log.Debugw("Config", "category", cfg.Category, "baseDir", cfg.BaseDir)

	orchestrator, err := backstop.New(cfg)
	if err != nil {
		return backstop.NewRuntimeError(fmt.Errorf("failed to create orchestrator: %w", err))
	}

	if cfg.ServeMetrics {
		svc := service.New(log)
		svc.Start(ctx.Context)
		defer svc.Shutdown()
	}

	return orchestrator.Run(ctx.Context)
}
