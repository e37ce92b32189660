package runner

import (
	"fmt"
	"time"
)

// In the last re-run of a failing case we add special verbosity
// arguments and environment, so a genuinely-failing case leaves a
// maximally diagnostic trace.
var (
	verboseArgs = []string{"-v2", "-maxwarnings", "0"}
	verboseEnv  = []string{
		"QT_LOGGING_RULES=*=true",
		"QT_MESSAGE_PATTERN=[%{time process} %{if-debug}D%{endif}%{if-warning}W%{endif}%{if-critical}C%{endif}%{if-fatal}F%{endif}] %{category} %{file}:%{line} %{function}()  -  %{message}",
	}
)

// RetryPolicy is the immutable retry configuration of one reconciliation
// session.
type RetryPolicy struct {
	// MaxRepeats is how many times a failed case is re-run. Zero disables
	// per-case retries entirely: any initial failure is final.
	MaxRepeats int

	// PassesNeeded is how many passing re-runs a case needs to be
	// declared recovered. Must be within [1, MaxRepeats] when MaxRepeats
	// is non-zero.
	PassesNeeded int

	// Timeout bounds each subprocess execution. Zero means no timeout.
	Timeout time.Duration

	// NoExtraArgs suppresses all argument augmentation: no XML report is
	// requested on the full run and no verbosity escalation happens on
	// the last retry.
	NoExtraArgs bool
}

// Validate rejects an inconsistent policy before any execution begins.
func (p RetryPolicy) Validate() error {
	if p.MaxRepeats < 0 {
		return fmt.Errorf("max repeats must not be negative, got %d", p.MaxRepeats)
	}
	if p.MaxRepeats > 0 && (p.PassesNeeded < 1 || p.PassesNeeded > p.MaxRepeats) {
		return fmt.Errorf("passes needed must be between 1 and max repeats (%d), got %d",
			p.MaxRepeats, p.PassesNeeded)
	}
	return nil
}

// AttemptSpec describes how one per-case retry attempt must be executed.
// The escalation is a policy value computed per attempt, so the call
// site never special-cases the last iteration.
type AttemptSpec struct {
	Index     int
	Final     bool
	ExtraArgs []string // appended before the case filter argument
	ExtraEnv  []string // KEY=value pairs merged over the process env
}

// Attempt returns the spec for the i-th retry attempt (zero-based).
// Only the final attempt carries the escalated verbosity, and only when
// argument augmentation is enabled.
func (p RetryPolicy) Attempt(i int) AttemptSpec {
	spec := AttemptSpec{
		Index: i,
		Final: i == p.MaxRepeats-1,
	}
	if spec.Final && !p.NoExtraArgs {
		spec.ExtraArgs = verboseArgs
		spec.ExtraEnv = verboseEnv
	}
	return spec
}
