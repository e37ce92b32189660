package runner

import (
	"encoding/xml"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/ethereum/go-ethereum/log"

	"github.com/flakewrap/flakewrap/types"
)

// Report-reading failures. On the initial run these trigger one
// crash-recovery full run; recurrence is fatal.
var (
	ErrReportNotFound  = errors.New("test report not found")
	ErrReportMalformed = errors.New("test report is not well-formed XML")
	ErrReportSchema    = errors.New("test report has unexpected root element")
)

// ParsedReport is the outcome of reading one test report: the failing
// test cases in order of appearance, plus a count of passing incidents
// for diagnostics.
type ParsedReport struct {
	Failures []types.TestCaseID
	Passes   int
}

// ReportParser reads a structured test report and extracts failures.
type ReportParser interface {
	// Parse reads the report at path. Failures are the "fail" and
	// "xpass" incidents; every other incident counts as a pass.
	Parse(path string) (*ParsedReport, error)
}

// RawSink receives the raw bytes of a report that could not be parsed,
// so the corrupted log survives as a diagnostic artifact.
type RawSink interface {
	WriteRawReport(raw []byte) error
}

// xmlReportParser parses qtestlib XML test logs.
type xmlReportParser struct {
	rawSink RawSink
}

// NewReportParser creates a parser for qtestlib XML test logs.
func NewReportParser() ReportParser {
	return &xmlReportParser{}
}

// NewReportParserWithSink creates a parser that additionally hands the
// raw contents of malformed reports to sink.
func NewReportParserWithSink(sink RawSink) ReportParser {
	return &xmlReportParser{rawSink: sink}
}

// testCaseXML mirrors the report document: the root element represents
// one binary's run, its children the test functions, and each function
// zero or more incidents.
type testCaseXML struct {
	XMLName   xml.Name
	Functions []testFunctionXML `xml:"TestFunction"`
}

type testFunctionXML struct {
	Name      string        `xml:"name,attr"`
	Incidents []incidentXML `xml:"Incident"`
}

type incidentXML struct {
	Type    string  `xml:"type,attr"`
	DataTag *string `xml:"DataTag"`
}

func (p *xmlReportParser) Parse(path string) (*ParsedReport, error) {
	start := time.Now()

	raw, err := os.ReadFile(path)
	if err != nil {
		log.Error("XML log file not found", "path", path, "err", err)
		return nil, fmt.Errorf("%w: %s: %v", ErrReportNotFound, path, err)
	}

	var doc testCaseXML
	if err := xml.Unmarshal(raw, &doc); err != nil {
		// Surface the raw contents so a truncated or corrupted log can be
		// diagnosed from the wrapper's output alone.
		log.Error("Failed to parse the XML log file", "path", path, "err", err)
		log.Error("File contents follow", "contents", string(raw))
		if p.rawSink != nil {
			if sinkErr := p.rawSink.WriteRawReport(raw); sinkErr != nil {
				log.Warn("Failed to keep raw report dump", "err", sinkErr)
			}
		}
		return nil, fmt.Errorf("%w: %s: %v", ErrReportMalformed, path, err)
	}

	if doc.XMLName.Local != ReportRootTag {
		return nil, fmt.Errorf("%w: must have <%s> as root tag, but has: <%s>",
			ErrReportSchema, ReportRootTag, doc.XMLName.Local)
	}

	parsed := &ParsedReport{}
	for _, fn := range doc.Functions {
		for _, incident := range fn.Incidents {
			switch incident.Type {
			case IncidentFail, IncidentXPass:
				id := types.TestCaseID{Func: fn.Name}
				if incident.DataTag != nil {
					id.Tag = *incident.DataTag
				}
				parsed.Failures = append(parsed.Failures, id)
			default:
				parsed.Passes++
			}
		}
	}

	log.Info("Parsed XML log file", "path", path, "duration", time.Since(start),
		"passes", parsed.Passes, "failures", len(parsed.Failures))

	return parsed, nil
}
