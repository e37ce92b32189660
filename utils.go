package flakewrap

import (
	"github.com/flakewrap/flakewrap/types"
)

// caseStatusString returns a short string for a per-case outcome
func caseStatusString(c types.CaseResult) string {
	if c.Recovered {
		return "✓ recovered"
	}
	if c.Attempts == 0 {
		return "✗ fail (no retries)"
	}
	return "✗ unrecovered"
}

// verdictString returns a short string for an overall verdict
func verdictString(v types.Verdict) string {
	switch v {
	case types.VerdictPass:
		return "✓ PASS"
	case types.VerdictCrash:
		return "💥 CRASH"
	default:
		return "✗ FAIL"
	}
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
