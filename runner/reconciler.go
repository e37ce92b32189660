package runner

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/log"

	"github.com/flakewrap/flakewrap/types"
)

// ErrNoFailuresRecorded is the invariant violation where the test binary
// exited non-zero but its report claims no failures. Silently treating it
// as a pass would hide a real problem, and treating it as a failure would
// be unjustified, so it is surfaced loudly instead.
var ErrNoFailuresRecorded = errors.New(
	"test report contains no failures despite a non-zero exit code")

// Config wires a Reconciler together.
type Config struct {
	Policy   RetryPolicy
	Executor Executor
	Parser   ReportParser

	// PreexistingReport, when set, skips the initial full run and parses
	// this report instead. In this mode the crash-recovery full run is
	// never performed.
	PreexistingReport string

	// RunID labels this session in logs and results.
	RunID string

	Log log.Logger
}

// Reconciler owns the outcome state machine of one session:
// InitialRun -> (CrashRecoveryRun)? -> ParseFailures -> PerCaseRetry -> Done.
type Reconciler struct {
	cfg Config
	log log.Logger
}

// NewReconciler validates the configuration and creates a Reconciler.
func NewReconciler(cfg Config) (*Reconciler, error) {
	if err := cfg.Policy.Validate(); err != nil {
		return nil, fmt.Errorf("invalid retry policy: %w", err)
	}
	if cfg.Executor == nil {
		return nil, fmt.Errorf("executor cannot be nil")
	}
	if cfg.Parser == nil {
		return nil, fmt.Errorf("parser cannot be nil")
	}
	logger := cfg.Log
	if logger == nil {
		logger = log.Root()
	}
	return &Reconciler{cfg: cfg, log: logger}, nil
}

// Run drives one reconciliation session to completion. The returned
// result always carries a verdict; the error is reserved for internal
// inconsistencies that the caller must surface as its own failure rather
// than as a verdict on the tests.
func (r *Reconciler) Run(ctx context.Context) (*types.ReconcileResult, error) {
	start := time.Now()
	res := &types.ReconcileResult{
		RunID:   r.cfg.RunID,
		Verdict: types.VerdictPass,
	}
	defer func() { res.Duration = time.Since(start) }()

	parsed, done, err := r.fullRunPhase(ctx, res)
	if err != nil || done {
		return res, err
	}

	if r.cfg.Policy.MaxRepeats == 0 {
		// No re-runs were asked for; any failure is final.
		for _, id := range parsed.Failures {
			res.AddCase(types.CaseResult{ID: id})
		}
		res.Verdict = types.VerdictFail
		return res, nil
	}

	r.log.Info("Some tests failed, re-running the failed cases",
		"failures", len(parsed.Failures), "maxRepeats", r.cfg.Policy.MaxRepeats,
		"passesNeeded", r.cfg.Policy.PassesNeeded)

	for _, id := range parsed.Failures {
		caseRes, caseErr := r.rerunCase(ctx, id)
		res.AddCase(caseRes)
		if caseErr != nil {
			r.log.Error("Test re-run exited unexpectedly, aborting",
				"case", id, "err", caseErr)
			res.Verdict = types.VerdictCrash
			return res, nil
		}
	}

	if res.Stats.Unrecovered > 0 {
		res.Verdict = types.VerdictFail
	}
	return res, nil
}

// fullRunPhase performs the initial full run, at most one crash-recovery
// full run, and the report parse. It reports done=true when the session
// is already decided (clean pass or crash).
func (r *Reconciler) fullRunPhase(ctx context.Context, res *types.ReconcileResult) (*ParsedReport, bool, error) {
	parseOnly := r.cfg.PreexistingReport != ""
	nFullRuns := 2
	if parseOnly {
		nFullRuns = 1
	}

	for i := 0; i < nFullRuns; i++ {
		reportPath := r.cfg.PreexistingReport
		if !parseOnly {
			if i > 0 {
				r.log.Info("Re-running the full test")
			}
			code, path, runErr := r.cfg.Executor.RunFull(ctx)
			res.FullRuns++
			if runErr != nil {
				r.log.Error("The test binary crashed uncontrollably", "err", runErr)
				if i == nFullRuns-1 {
					r.log.Error("Full test run failed repeatedly, aborting")
					res.Verdict = types.VerdictCrash
					return nil, true, nil
				}
				continue
			}
			if code == 0 {
				// Clean pass; the report stays on disk but is not inspected.
				res.Verdict = types.VerdictPass
				return nil, true, nil
			}
			reportPath = path
		}

		parsed, parseErr := r.cfg.Parser.Parse(reportPath)
		if parseErr != nil {
			// A missing or unreadable report means the binary most likely
			// crashed before writing it.
			r.log.Error("Could not read a usable test report",
				"path", reportPath, "err", parseErr)
			if i == nFullRuns-1 {
				r.log.Error("Full test run failed repeatedly, aborting")
				res.Verdict = types.VerdictCrash
				return nil, true, nil
			}
			continue
		}

		if !parseOnly && len(parsed.Failures) == 0 {
			// The binary exited non-zero yet reported nothing failing. Did
			// it crash right after all its testcases passed?
			return nil, true, fmt.Errorf("%w (exit was non-zero)", ErrNoFailuresRecorded)
		}
		if parseOnly && len(parsed.Failures) == 0 {
			res.Verdict = types.VerdictPass
			return nil, true, nil
		}
		return parsed, false, nil
	}

	// Unreachable: every loop exit above returns.
	res.Verdict = types.VerdictCrash
	return nil, true, nil
}

// rerunCase re-runs one failing case until it reaches the pass threshold
// or exhausts the retry budget. The error is non-nil only when the case
// crashed, which aborts the whole session.
func (r *Reconciler) rerunCase(ctx context.Context, id types.TestCaseID) (types.CaseResult, error) {
	policy := r.cfg.Policy
	caseRes := types.CaseResult{ID: id}

	for i := 0; i < policy.MaxRepeats; i++ {
		attempt := policy.Attempt(i)
		escalated := attempt.Final && len(attempt.ExtraArgs) > 0
		r.log.Info("Re-running testcase", "case", id,
			"attempt", i+1, "of", policy.MaxRepeats, "escalated", escalated)

		code, err := r.cfg.Executor.RunCase(ctx, id, attempt)
		if err != nil {
			return caseRes, err
		}
		caseRes.Attempts++
		if escalated {
			caseRes.Escalated = true
		}
		if code == 0 {
			caseRes.Passes++
		}
		if caseRes.Passes == policy.PassesNeeded {
			caseRes.Recovered = true
			r.log.Info("Test has passed as flaky after re-runs", "case", id,
				"reruns", caseRes.Attempts, "passes", caseRes.Passes,
				"failures", caseRes.Failures())
			return caseRes, nil
		}
	}

	r.log.Info("Test has failed despite all repetitions", "case", id,
		"reruns", caseRes.Attempts, "failures", caseRes.Failures())
	return caseRes, nil
}
