package flakewrap

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/flakewrap/flakewrap/logging"
	"github.com/flakewrap/flakewrap/metrics"
	"github.com/flakewrap/flakewrap/reporting"
	"github.com/flakewrap/flakewrap/runner"
	"github.com/flakewrap/flakewrap/types"
)

// Wrapper runs one reconciliation session for a single test binary and
// translates its verdict into a process exit code via typed errors.
type Wrapper struct {
	config     *Config
	version    string
	runID      string
	reconciler *runner.Reconciler
	artifacts  *logging.ArtifactWriter
	formatter  ResultFormatter
	reporter   MetricsReporter
	result     *types.ReconcileResult
}

// New wires a Wrapper from the configuration.
func New(ctx context.Context, config *Config, version string) (*Wrapper, error) {
	if config == nil {
		return nil, errors.New("config is required")
	}

	runID := uuid.New().String()
	config.Log.Debug("Creating wrapper",
		"binary", config.TestBasename,
		"logDir", config.LogDir,
		"maxRepeats", config.MaxRepeats,
		"passesNeeded", config.PassesNeeded,
		"runID", runID)

	artifacts, err := logging.NewArtifactWriter(config.LogDir, config.TestBasename, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to create artifact writer: %w", err)
	}

	executor, err := runner.NewExecutor(runner.ExecutorConfig{
		TestArgs:       config.TestArgs,
		BaseName:       config.TestBasename,
		LogDir:         config.LogDir,
		Policy:         config.Policy(),
		EscalationSink: artifacts,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create executor: %w", err)
	}

	reconciler, err := runner.NewReconciler(runner.Config{
		Policy:            config.Policy(),
		Executor:          executor,
		Parser:            runner.NewReportParserWithSink(artifacts),
		PreexistingReport: config.ParseXML,
		RunID:             runID,
		Log:               config.Log,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create reconciler: %w", err)
	}

	return &Wrapper{
		config:     config,
		version:    version,
		runID:      runID,
		reconciler: reconciler,
		artifacts:  artifacts,
		formatter:  NewConsoleResultFormatter(config.Log),
		reporter:   NewDefaultMetricsReporter(),
	}, nil
}

// Run drives the session to completion. It returns nil on an overall
// pass, a TestFailureError when cases stayed failing, a CrashError when
// the binary terminated abnormally, and an InternalError for
// inconsistencies of the wrapper itself.
func (w *Wrapper) Run(ctx context.Context) (err error) {
	// Unexpected panics are faults of the wrapper, not test verdicts.
	defer func() {
		if r := recover(); r != nil {
			w.config.Log.Error("Unexpected runtime error", "error", r)
			metrics.RecordError("panic")
			err = NewInternalError(fmt.Errorf("panic: %v", r))
		}
	}()

	ctx, span := otel.Tracer("flakewrap").Start(ctx, "reconcile")
	defer span.End()
	span.SetAttributes(
		attribute.String("binary", w.config.TestBasename),
		attribute.String("run_id", w.runID),
	)

	result, runErr := w.reconciler.Run(ctx)
	w.result = result
	if runErr != nil {
		metrics.RecordErrorDetails("reconcile", runErr)
		return NewInternalError(runErr)
	}

	if fmtErr := w.formatter.FormatResults(result); fmtErr != nil {
		w.config.Log.Warn("Failed to print result summary", "err", fmtErr)
	}
	w.reporter.ReportResults(w.config.TestBasename, result)

	report := reporting.NewReconcileReport(
		w.config.TestBasename, w.config.MaxRepeats, w.config.PassesNeeded, result)
	if saved, saveErr := reporting.Save(report, w.artifacts.Dir()); saveErr != nil {
		w.config.Log.Warn("Failed to save reconciliation report", "err", saveErr)
	} else {
		w.config.Log.Info("Saved reconciliation report", "files", saved)
	}

	return w.verdictError(result)
}

// Result returns the session result, once Run has completed.
func (w *Wrapper) Result() *types.ReconcileResult {
	return w.result
}

// verdictError maps a verdict to the typed error that carries its exit code.
func (w *Wrapper) verdictError(result *types.ReconcileResult) error {
	switch result.Verdict {
	case types.VerdictPass:
		if result.Stats.Recovered > 0 {
			w.config.Log.Info("Overall PASS, but flaky",
				"recovered", result.Stats.Recovered)
		} else {
			w.config.Log.Info("Overall PASS")
		}
		return nil
	case types.VerdictCrash:
		return NewCrashError(fmt.Errorf("%s terminated abnormally", w.config.TestBasename))
	default:
		return NewTestFailureError(fmt.Sprintf("%d of %d failing cases did not recover",
			result.Stats.Unrecovered, result.Stats.Total))
	}
}
