package types

import (
	"time"
)

// Verdict represents the overall outcome of a reconciliation session
type Verdict string

const (
	VerdictPass  Verdict = "pass"
	VerdictFail  Verdict = "fail"
	VerdictCrash Verdict = "crash"
)

// TestCaseID identifies a single failing test case: a test function plus
// an optional data tag distinguishing parameterized invocations.
type TestCaseID struct {
	Func string
	Tag  string // empty when the incident carried no data tag
}

// FilterArg returns the positional argument that restricts the test
// binary to this case only: "func" or "func:tag".
func (id TestCaseID) FilterArg() string {
	if id.Tag == "" {
		return id.Func
	}
	return id.Func + ":" + id.Tag
}

func (id TestCaseID) String() string {
	return id.FilterArg()
}

// CaseResult captures the retry accounting for one failing test case.
type CaseResult struct {
	ID        TestCaseID
	Attempts  int
	Passes    int
	Recovered bool // reached the pass threshold within the retry budget
	Escalated bool // the final attempt ran with escalated verbosity
}

// Failures returns the number of attempts that did not pass.
func (c CaseResult) Failures() int {
	return c.Attempts - c.Passes
}

// Stats summarizes the per-case outcomes of a session.
type Stats struct {
	Total       int
	Recovered   int
	Unrecovered int
}

// ReconcileResult is the final state of one reconciliation session.
type ReconcileResult struct {
	RunID    string
	Verdict  Verdict
	Cases    []CaseResult
	Stats    Stats
	FullRuns int // number of full-suite executions performed (0 in parse-only mode)
	Duration time.Duration
}

// AddCase records a per-case outcome and updates the aggregate stats.
func (r *ReconcileResult) AddCase(c CaseResult) {
	r.Cases = append(r.Cases, c)
	r.Stats.Total++
	if c.Recovered {
		r.Stats.Recovered++
	} else {
		r.Stats.Unrecovered++
	}
}
