package runner

// Arguments appended to the wrapped test binary
const (
	// OutputFlag instructs a qtestlib binary where to write its log
	OutputFlag = "-o"

	// XMLLogSuffix selects the XML logger for an -o destination
	XMLLogSuffix = ",xml"

	// ConsoleLogDest mirrors human-readable output to stdout
	ConsoleLogDest = "-,txt"

	// ReportFileExt is the extension of the structured report file
	ReportFileExt = ".xml"

	// ReportRootTag is the required root element of a test report
	ReportRootTag = "TestCase"
)

// Incident classifications that count as failure signals
const (
	IncidentFail  = "fail"
	IncidentXPass = "xpass"
)
