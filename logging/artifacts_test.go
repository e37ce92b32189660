package logging

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flakewrap/flakewrap/types"
)

func TestNewArtifactWriterValidation(t *testing.T) {
	_, err := NewArtifactWriter("", "tst_foo", "run-1")
	require.Error(t, err)

	_, err = NewArtifactWriter(t.TempDir(), "", "run-1")
	require.Error(t, err)

	_, err = NewArtifactWriter(t.TempDir(), "tst_foo", "")
	require.Error(t, err)
}

func TestWriteRawReport(t *testing.T) {
	dir := t.TempDir()
	w, err := NewArtifactWriter(dir, "tst_foo", "run-1")
	require.NoError(t, err)

	require.NoError(t, w.WriteRawReport([]byte("<TestCase><broken")))

	data, err := os.ReadFile(filepath.Join(w.Dir(), "report-raw.txt"))
	require.NoError(t, err)
	assert.Equal(t, "<TestCase><broken", string(data))
}

func TestWriteCaseOutputStripsANSI(t *testing.T) {
	dir := t.TempDir()
	w, err := NewArtifactWriter(dir, "tst_foo", "run-1")
	require.NoError(t, err)

	id := types.TestCaseID{Func: "testData", Tag: "row 1"}
	require.NoError(t, w.WriteCaseOutput(id, []byte("\x1b[31mFAIL!\x1b[0m detail")))

	data, err := os.ReadFile(filepath.Join(w.Dir(), "testData_row_1.last-attempt.log"))
	require.NoError(t, err)
	assert.Equal(t, "FAIL! detail", string(data))
}
