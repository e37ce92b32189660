package flakewrap

import (
	"bytes"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flakewrap/flakewrap/types"
)

func formatterResult() *types.ReconcileResult {
	res := &types.ReconcileResult{
		RunID:    "run-1",
		Verdict:  types.VerdictFail,
		FullRuns: 2,
		Duration: 3*time.Second + 17*time.Millisecond,
	}
	res.AddCase(types.CaseResult{
		ID:        types.TestCaseID{Func: "testSingleShot"},
		Attempts:  2,
		Passes:    1,
		Recovered: true,
	})
	res.AddCase(types.CaseResult{
		ID:        types.TestCaseID{Func: "testInterval", Tag: "precise"},
		Attempts:  5,
		Escalated: true,
	})
	return res
}

func TestFormatResultsTable(t *testing.T) {
	var buf bytes.Buffer
	f := NewConsoleResultFormatter(log.NewLogger(log.DiscardHandler()))
	f.out = &buf

	require.NoError(t, f.FormatResults(formatterResult()))

	out := buf.String()
	assert.Contains(t, out, "testSingleShot")
	assert.Contains(t, out, "testInterval:precise")
	assert.Contains(t, out, "recovered")
	assert.Contains(t, out, "unrecovered")
	assert.Contains(t, out, "2 cases: 1 recovered, 1 unrecovered")
	assert.Contains(t, out, "FAIL")
	assert.Contains(t, out, "3.02s")
}

func TestFormatResultsNil(t *testing.T) {
	f := NewConsoleResultFormatter(log.NewLogger(log.DiscardHandler()))
	require.Error(t, f.FormatResults(nil))
}

func TestVerdictStrings(t *testing.T) {
	assert.Equal(t, "✓ PASS", verdictString(types.VerdictPass))
	assert.Equal(t, "✗ FAIL", verdictString(types.VerdictFail))
	assert.Equal(t, "💥 CRASH", verdictString(types.VerdictCrash))

	assert.Equal(t, "✓ recovered",
		caseStatusString(types.CaseResult{Recovered: true, Attempts: 1}))
	assert.Equal(t, "✗ unrecovered",
		caseStatusString(types.CaseResult{Attempts: 5}))
	assert.Equal(t, "✗ fail (no retries)", caseStatusString(types.CaseResult{}))
}
