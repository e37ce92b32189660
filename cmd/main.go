package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/ethereum/go-ethereum/log"
	"github.com/honeycombio/otel-config-go/otelconfig"
	"github.com/urfave/cli/v2"

	"github.com/flakewrap/flakewrap"
	"github.com/flakewrap/flakewrap/exitcodes"
	"github.com/flakewrap/flakewrap/flags"
	"github.com/flakewrap/flakewrap/service"
)

var (
	Version   = "v0.1.0"
	GitCommit = ""
	GitDate   = ""
)

func main() {
	app := cli.NewApp()
	app.Version = fmt.Sprintf("%s-%s-%s", Version, GitCommit, GitDate)
	app.Name = "flakewrap"
	app.Usage = "Flaky test reconciliation wrapper"
	app.Description = "flakewrap wraps the execution of a test binary, re-runs its" +
		" failing cases until they stabilize or exhaust their retry budget, and" +
		" reports a reconciled verdict through its exit code"
	app.ArgsUsage = "-- <test-binary> [binary-args...]"
	app.Flags = flags.Flags
	app.Action = run
	app.ExitErrHandler = func(c *cli.Context, err error) {
		var exitErr cli.ExitCoder
		if errors.As(err, &exitErr) {
			cli.HandleExitCoder(exitErr)
		} else if err != nil {
			switch {
			case flakewrap.IsCrashError(err):
				cli.HandleExitCoder(cli.Exit(err.Error(), exitcodes.Crash))
			case flakewrap.IsTestFailureError(err):
				cli.HandleExitCoder(cli.Exit(err.Error(), exitcodes.TestFailure))
			default:
				cli.HandleExitCoder(cli.Exit(err.Error(), exitcodes.InternalErr))
			}
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Telemetry is best-effort; the wrapper works without a collector.
	shutdown, err := otelconfig.ConfigureOpenTelemetry(
		otelconfig.WithServiceName(app.Name),
		otelconfig.WithServiceVersion(app.Version),
	)
	if err != nil {
		log.Warn("Failed to set up OpenTelemetry", "err", err)
	} else {
		defer shutdown()
	}

	if err := app.RunContext(ctx, os.Args); err != nil {
		// Only reached for errors the ExitErrHandler did not terminate on.
		log.Crit("Application failed", "message", err)
	}
}

func run(ctx *cli.Context) error {
	logLevel, err := log.LvlFromString(ctx.String(flags.LogLevel.Name))
	if err != nil {
		return flakewrap.NewInternalError(fmt.Errorf("invalid log level: %w", err))
	}
	logger := log.NewLogger(log.NewTerminalHandlerWithLevel(os.Stderr, logLevel, true))
	log.SetDefault(logger)

	cfg, err := flakewrap.NewConfig(ctx, logger)
	if err != nil {
		return flakewrap.NewInternalError(fmt.Errorf("failed to create config: %w", err))
	}
	logger.Debug("Config", "binary", cfg.TestBasename, "logDir", cfg.LogDir,
		"maxRepeats", cfg.MaxRepeats, "passesNeeded", cfg.PassesNeeded)

	if cfg.MonitoringEnabled {
		svc := service.New()
		svc.Start(ctx.Context)
		defer svc.Shutdown()
	}

	wrapper, err := flakewrap.New(ctx.Context, cfg, Version)
	if err != nil {
		return flakewrap.NewInternalError(fmt.Errorf("failed to create wrapper: %w", err))
	}

	return wrapper.Run(ctx.Context)
}
