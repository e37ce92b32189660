package runner

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flakewrap/flakewrap/types"
)

// writeReport writes an XML report to a temp file and returns its path.
func writeReport(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "tst_example.xml")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0644))
	return path
}

const sampleReport = `<?xml version="1.0" encoding="UTF-8"?>
<TestCase name="tst_example">
  <Environment>
    <QtVersion>6.2.0</QtVersion>
  </Environment>
  <TestFunction name="initTestCase">
    <Incident type="pass" file="" line="0"/>
  </TestFunction>
  <TestFunction name="testTimer">
    <Incident type="fail" file="tst_example.cpp" line="42"/>
  </TestFunction>
  <TestFunction name="testData">
    <Incident type="pass" file="" line="0">
      <DataTag><![CDATA[row 0]]></DataTag>
    </Incident>
    <Incident type="fail" file="tst_example.cpp" line="77">
      <DataTag><![CDATA[row 1]]></DataTag>
    </Incident>
  </TestFunction>
  <TestFunction name="testExpected">
    <Incident type="xpass" file="tst_example.cpp" line="90"/>
  </TestFunction>
  <TestFunction name="cleanupTestCase">
    <Incident type="pass" file="" line="0"/>
  </TestFunction>
</TestCase>
`

func TestParseReportFailures(t *testing.T) {
	path := writeReport(t, sampleReport)

	parsed, err := NewReportParser().Parse(path)
	require.NoError(t, err)

	// Failures appear in report order; duplicates across functions and
	// data-tagged cases are kept as-is.
	assert.Equal(t, []types.TestCaseID{
		{Func: "testTimer"},
		{Func: "testData", Tag: "row 1"},
		{Func: "testExpected"},
	}, parsed.Failures)
	assert.Equal(t, 3, parsed.Passes)
}

func TestParseReportAllPassing(t *testing.T) {
	path := writeReport(t, `<TestCase name="tst_ok">
  <TestFunction name="testOne">
    <Incident type="pass"/>
  </TestFunction>
</TestCase>`)

	parsed, err := NewReportParser().Parse(path)
	require.NoError(t, err)
	assert.Empty(t, parsed.Failures)
	assert.Equal(t, 1, parsed.Passes)
}

func TestParseReportSkipsCountAsPasses(t *testing.T) {
	path := writeReport(t, `<TestCase name="tst_skip">
  <TestFunction name="testOne">
    <Incident type="skip"/>
    <Incident type="xfail"/>
  </TestFunction>
</TestCase>`)

	parsed, err := NewReportParser().Parse(path)
	require.NoError(t, err)
	assert.Empty(t, parsed.Failures)
	assert.Equal(t, 2, parsed.Passes)
}

func TestParseReportNotFound(t *testing.T) {
	_, err := NewReportParser().Parse(filepath.Join(t.TempDir(), "missing.xml"))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrReportNotFound)
}

func TestParseReportMalformed(t *testing.T) {
	path := writeReport(t, `<TestCase name="tst_broken"><TestFunction`)

	_, err := NewReportParser().Parse(path)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrReportMalformed)
}

func TestParseReportWrongRoot(t *testing.T) {
	path := writeReport(t, `<NotATestCase><TestFunction name="x"/></NotATestCase>`)

	_, err := NewReportParser().Parse(path)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrReportSchema)
	assert.Contains(t, err.Error(), "NotATestCase")
}

type rawCapture struct {
	raw []byte
}

func (c *rawCapture) WriteRawReport(raw []byte) error {
	c.raw = append([]byte{}, raw...)
	return nil
}

func TestParseReportMalformedFeedsRawSink(t *testing.T) {
	contents := `<TestCase name="tst_broken"><TestFunction`
	path := writeReport(t, contents)
	capture := &rawCapture{}

	_, err := NewReportParserWithSink(capture).Parse(path)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrReportMalformed)
	assert.Equal(t, contents, string(capture.raw))
}

func TestParseReportIdempotent(t *testing.T) {
	path := writeReport(t, sampleReport)
	p := NewReportParser()

	first, err := p.Parse(path)
	require.NoError(t, err)
	second, err := p.Parse(path)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}
