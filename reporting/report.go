// Package reporting renders the outcome of a reconciliation session as
// JSON and HTML artifacts for CI archival.
package reporting

import (
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"os"
	"path/filepath"
	"time"

	"github.com/flakewrap/flakewrap/types"
)

// CaseReport is the per-case view of the retry accounting.
type CaseReport struct {
	Function  string `json:"function"`
	DataTag   string `json:"data_tag,omitempty"`
	Attempts  int    `json:"attempts"`
	Passes    int    `json:"passes"`
	Failures  int    `json:"failures"`
	Recovered bool   `json:"recovered"`
	Escalated bool   `json:"escalated"`
}

// ReconcileReport is the complete session report.
type ReconcileReport struct {
	RunID        string        `json:"run_id"`
	Binary       string        `json:"binary"`
	Verdict      types.Verdict `json:"verdict"`
	MaxRepeats   int           `json:"max_repeats"`
	PassesNeeded int           `json:"passes_needed"`
	FullRuns     int           `json:"full_runs"`
	Duration     time.Duration `json:"duration_ns"`
	Cases        []CaseReport  `json:"cases"`
	GeneratedAt  time.Time     `json:"generated_at"`
}

// Status renders a case's verdict for the HTML view.
func (c CaseReport) Status() string {
	if c.Recovered {
		return "RECOVERED"
	}
	return "UNRECOVERED"
}

// NewReconcileReport builds a report from a session result.
func NewReconcileReport(binary string, maxRepeats, passesNeeded int, result *types.ReconcileResult) *ReconcileReport {
	report := &ReconcileReport{
		RunID:        result.RunID,
		Binary:       binary,
		Verdict:      result.Verdict,
		MaxRepeats:   maxRepeats,
		PassesNeeded: passesNeeded,
		FullRuns:     result.FullRuns,
		Duration:     result.Duration,
		GeneratedAt:  time.Now(),
	}
	for _, c := range result.Cases {
		report.Cases = append(report.Cases, CaseReport{
			Function:  c.ID.Func,
			DataTag:   c.ID.Tag,
			Attempts:  c.Attempts,
			Passes:    c.Passes,
			Failures:  c.Failures(),
			Recovered: c.Recovered,
			Escalated: c.Escalated,
		})
	}
	return report
}

// Save writes the report in both JSON and HTML formats and returns the
// paths of the files it managed to write.
func Save(report *ReconcileReport, outputDir string) ([]string, error) {
	var savedFiles []string
	var errorsList []error

	jsonFilename := filepath.Join(outputDir, "reconcile-report.json")
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		errorsList = append(errorsList, fmt.Errorf("failed to marshal JSON: %w", err))
	} else {
		if err := os.WriteFile(jsonFilename, data, 0644); err != nil {
			errorsList = append(errorsList, fmt.Errorf("failed to write JSON file: %w", err))
		} else {
			savedFiles = append(savedFiles, jsonFilename)
		}
	}

	htmlFilename := filepath.Join(outputDir, "reconcile-report.html")
	if err := saveHTMLReport(report, htmlFilename); err != nil {
		errorsList = append(errorsList, fmt.Errorf("failed to save HTML report: %w", err))
	} else {
		savedFiles = append(savedFiles, htmlFilename)
	}

	if len(errorsList) > 0 {
		errMsg := "failed to save some report formats:"
		for _, e := range errorsList {
			errMsg += "\n  - " + e.Error()
		}
		return savedFiles, errors.New(errMsg)
	}

	return savedFiles, nil
}

func saveHTMLReport(report *ReconcileReport, filename string) error {
	htmlTemplate := `<!DOCTYPE html>
<html>
<head>
    <title>Reconciliation Report - {{.Binary}}</title>
    <style>
        body { font-family: Arial, sans-serif; margin: 20px; }
        h1 { color: #333; }
        .summary { background: #f5f5f5; padding: 15px; border-radius: 5px; margin: 20px 0; }
        table { border-collapse: collapse; width: 100%; }
        th, td { border: 1px solid #ddd; padding: 12px; text-align: left; }
        th { background: #4CAF50; color: white; }
        .verdict-pass { color: #4CAF50; font-weight: bold; }
        .verdict-fail, .verdict-crash { color: #f44336; font-weight: bold; }
        .status-RECOVERED { color: #4CAF50; font-weight: bold; }
        .status-UNRECOVERED { color: #f44336; font-weight: bold; }
    </style>
</head>
<body>
    <h1>Flaky Test Reconciliation Report</h1>
    <div class="summary">
        <p><strong>Binary:</strong> {{.Binary}}</p>
        <p><strong>Run ID:</strong> {{.RunID}}</p>
        <p><strong>Verdict:</strong> <span class="verdict-{{.Verdict}}">{{.Verdict}}</span></p>
        <p><strong>Full runs:</strong> {{.FullRuns}}</p>
        <p><strong>Retry budget:</strong> {{.MaxRepeats}} repeats, {{.PassesNeeded}} passes needed</p>
        <p><strong>Generated:</strong> {{.GeneratedAt}}</p>
    </div>

    <h2>Re-run Outcomes</h2>
    <table>
        <tr>
            <th>Function</th>
            <th>Data Tag</th>
            <th>Attempts</th>
            <th>Passes</th>
            <th>Failures</th>
            <th>Escalated</th>
            <th>Status</th>
        </tr>
        {{range .Cases}}
        <tr>
            <td>{{.Function}}</td>
            <td>{{.DataTag}}</td>
            <td>{{.Attempts}}</td>
            <td>{{.Passes}}</td>
            <td>{{.Failures}}</td>
            <td>{{if .Escalated}}yes{{else}}no{{end}}</td>
            <td class="status-{{.Status}}">{{.Status}}</td>
        </tr>
        {{end}}
    </table>
</body>
</html>`

	tmpl, err := template.New("report").Parse(htmlTemplate)
	if err != nil {
		return fmt.Errorf("failed to parse template: %w", err)
	}

	file, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer func() { _ = file.Close() }()

	return tmpl.Execute(file, report)
}
