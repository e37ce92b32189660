package metrics

import (
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/flakewrap/flakewrap/types"
)

func TestErrToLabel(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{
			name: "nil error",
			err:  nil,
		},
		{
			name: "simple error",
			err:  errors.New("test error"),
		},
		{
			name: "error with special chars",
			err:  errors.New("test@error#123"),
		},
		{
			name: "error with multiple spaces",
			err:  errors.New("test   error"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := errToLabel(tt.err)
			validLabelRegex := regexp.MustCompile(`[a-zA-Z_][a-zA-Z0-9_]*`)
			if !validLabelRegex.MatchString(result) {
				t.Errorf("errToLabel() = %v, is not a valid Prometheus label", result)
			}
		})
	}
}

func TestRecordError(t *testing.T) {
	// just test that it doesn't panic
	defer func() {
		if r := recover(); r != nil {
			t.Errorf("RecordError panic'd")
		}
	}()

	RecordError("test_error")
}

func TestRecordReconcile(t *testing.T) {
	defer func() {
		if r := recover(); r != nil {
			t.Errorf("RecordReconcile panic'd")
		}
	}()

	res := &types.ReconcileResult{
		RunID:    "run-1",
		Verdict:  types.VerdictPass,
		FullRuns: 1,
		Duration: 3 * time.Second,
	}
	res.AddCase(types.CaseResult{
		ID:        types.TestCaseID{Func: "foo"},
		Attempts:  3,
		Passes:    1,
		Recovered: true,
	})

	RecordReconcile("tst_example", res)
	RecordReconcile("tst_example", nil)

	// An unknown verdict is rejected without recording.
	RecordReconcile("tst_example", &types.ReconcileResult{Verdict: "bogus"})
}
