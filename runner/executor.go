package runner

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/ethereum/go-ethereum/log"

	"github.com/flakewrap/flakewrap/types"
)

var _ Executor = (*processExecutor)(nil)

// ErrAbnormalExit marks crash-grade execution problems: the test process
// was killed by a signal, exceeded its timeout, or could not be started
// at all. An ordinary non-zero exit is not an abnormal exit.
var ErrAbnormalExit = errors.New("test process terminated abnormally")

// Executor runs the wrapped test binary. It performs no retries itself;
// all retry policy lives in the Reconciler. Each call spawns exactly one
// child process and blocks until it exits or the timeout elapses.
type Executor interface {
	// RunFull executes the whole suite once. Unless augmentation is
	// disabled it appends output arguments instructing the binary to
	// write its XML report to <log-dir>/<basename>.xml and to mirror
	// human-readable output to the console; the report path is returned.
	// A crash-grade problem is reported via the error, with the exit
	// code set to a non-zero value.
	RunFull(ctx context.Context) (exitCode int, reportPath string, err error)

	// RunCase executes a single failing case, selected by appending the
	// case's filter argument. No report is requested; only the exit code
	// matters. The attempt spec supplies escalation args and env for the
	// final retry.
	RunCase(ctx context.Context, id types.TestCaseID, attempt AttemptSpec) (exitCode int, err error)
}

// EscalationSink receives the captured output of an escalated final
// attempt so it can be kept as a diagnostic artifact.
type EscalationSink interface {
	WriteCaseOutput(id types.TestCaseID, output []byte) error
}

// ExecutorConfig configures a process-backed Executor.
type ExecutorConfig struct {
	// TestArgs is the test binary followed by its arguments.
	TestArgs []string

	// BaseName names the report file written by a full run.
	BaseName string

	// LogDir is where the full run's XML report is written.
	LogDir string

	// Policy supplies the per-execution timeout and the augmentation
	// switch.
	Policy RetryPolicy

	// CmdBuilder builds the subprocess command; injectable for tests.
	// The returned cleanup releases any resources tied to the command.
	CmdBuilder func(ctx context.Context, name string, arg ...string) (*exec.Cmd, func())

	// EscalationSink, when set, receives the output of escalated final
	// attempts. Optional.
	EscalationSink EscalationSink
}

// processExecutor implements Executor on top of os/exec.
type processExecutor struct {
	cfg ExecutorConfig
}

// NewExecutor creates an Executor that spawns real subprocesses.
func NewExecutor(cfg ExecutorConfig) (Executor, error) {
	if len(cfg.TestArgs) == 0 {
		return nil, fmt.Errorf("testArgs cannot be empty")
	}
	if cfg.BaseName == "" {
		return nil, fmt.Errorf("baseName cannot be empty")
	}
	if cfg.CmdBuilder == nil {
		cfg.CmdBuilder = defaultCmdBuilder
	}
	return &processExecutor{cfg: cfg}, nil
}

func defaultCmdBuilder(ctx context.Context, name string, arg ...string) (*exec.Cmd, func()) {
	return exec.CommandContext(ctx, name, arg...), func() {}
}

func (e *processExecutor) RunFull(ctx context.Context) (int, string, error) {
	args := append([]string{}, e.cfg.TestArgs[1:]...)

	var reportPath string
	if !e.cfg.Policy.NoExtraArgs {
		reportPath = filepath.Join(e.cfg.LogDir, e.cfg.BaseName+ReportFileExt)
		args = append(args, OutputFlag, reportPath+XMLLogSuffix)
		args = append(args, OutputFlag, ConsoleLogDest)
	}

	code, err := e.run(ctx, args, nil, nil)
	return code, reportPath, err
}

func (e *processExecutor) RunCase(ctx context.Context, id types.TestCaseID, attempt AttemptSpec) (int, error) {
	args := append([]string{}, e.cfg.TestArgs[1:]...)
	args = append(args, attempt.ExtraArgs...)
	args = append(args, id.FilterArg())

	var capture *bytes.Buffer
	if attempt.Final && e.cfg.EscalationSink != nil {
		capture = &bytes.Buffer{}
	}

	code, err := e.run(ctx, args, attempt.ExtraEnv, capture)

	if capture != nil && capture.Len() > 0 {
		if sinkErr := e.cfg.EscalationSink.WriteCaseOutput(id, capture.Bytes()); sinkErr != nil {
			log.Warn("Failed to keep escalated attempt output", "case", id, "err", sinkErr)
		}
	}

	return code, err
}

// run spawns one subprocess and waits for it. Output is mirrored to the
// wrapper's own stdout/stderr, and additionally teed into capture when
// one is given.
func (e *processExecutor) run(ctx context.Context, args []string, extraEnv []string, capture *bytes.Buffer) (int, error) {
	if e.cfg.Policy.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.cfg.Policy.Timeout)
		defer cancel()
	}

	cmd, cleanup := e.cfg.CmdBuilder(ctx, e.cfg.TestArgs[0], args...)
	defer cleanup()

	cmd.Stdout = io.Writer(os.Stdout)
	cmd.Stderr = io.Writer(os.Stderr)
	if capture != nil {
		cmd.Stdout = io.MultiWriter(os.Stdout, capture)
		cmd.Stderr = io.MultiWriter(os.Stderr, capture)
	}
	if len(extraEnv) > 0 {
		cmd.Env = append(os.Environ(), extraEnv...)
	}

	log.Debug("Running test command line", "binary", e.cfg.TestArgs[0], "args", args)
	runErr := cmd.Run()

	if ctx.Err() == context.DeadlineExceeded {
		return -1, fmt.Errorf("%w: timed out after %v", ErrAbnormalExit, e.cfg.Policy.Timeout)
	}

	if runErr != nil {
		exitErr := &exec.ExitError{}
		if errors.As(runErr, &exitErr) {
			code := exitErr.ExitCode()
			if code < 0 {
				// Killed by a signal rather than exiting on its own.
				return -1, fmt.Errorf("%w: %s", ErrAbnormalExit, exitErr.ProcessState)
			}
			log.Info("Test process exited", "code", code)
			return code, nil
		}
		return -1, fmt.Errorf("%w: failed to run test binary: %v", ErrAbnormalExit, runErr)
	}

	log.Info("Test process exited", "code", 0)
	return 0, nil
}
