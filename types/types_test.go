package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTestCaseIDFilterArg(t *testing.T) {
	tests := []struct {
		name string
		id   TestCaseID
		want string
	}{
		{
			name: "function only",
			id:   TestCaseID{Func: "testTimer"},
			want: "testTimer",
		},
		{
			name: "function with data tag",
			id:   TestCaseID{Func: "testTimer", Tag: "short interval"},
			want: "testTimer:short interval",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.id.FilterArg())
			assert.Equal(t, tt.want, tt.id.String())
		})
	}
}

func TestTestCaseIDEquality(t *testing.T) {
	a := TestCaseID{Func: "testFoo", Tag: "row1"}
	b := TestCaseID{Func: "testFoo", Tag: "row1"}
	c := TestCaseID{Func: "testFoo"}

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
}

func TestReconcileResultAddCase(t *testing.T) {
	res := &ReconcileResult{}

	res.AddCase(CaseResult{ID: TestCaseID{Func: "a"}, Attempts: 2, Passes: 1, Recovered: true})
	res.AddCase(CaseResult{ID: TestCaseID{Func: "b"}, Attempts: 3, Passes: 0, Recovered: false})

	require.Len(t, res.Cases, 2)
	assert.Equal(t, 2, res.Stats.Total)
	assert.Equal(t, 1, res.Stats.Recovered)
	assert.Equal(t, 1, res.Stats.Unrecovered)
}

func TestCaseResultFailures(t *testing.T) {
	c := CaseResult{Attempts: 5, Passes: 2}
	assert.Equal(t, 3, c.Failures())
}
