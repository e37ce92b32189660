package flakewrap

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/ethereum/go-ethereum/log"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/flakewrap/flakewrap/types"
)

// ResultFormatter is responsible for formatting and displaying session results.
type ResultFormatter interface {
	FormatResults(result *types.ReconcileResult) error
}

// ConsoleResultFormatter implements the ResultFormatter interface.
type ConsoleResultFormatter struct {
	logger log.Logger
	out    io.Writer
}

// NewConsoleResultFormatter creates a new ConsoleResultFormatter writing
// to stdout.
func NewConsoleResultFormatter(logger log.Logger) *ConsoleResultFormatter {
	return &ConsoleResultFormatter{
		logger: logger,
		out:    os.Stdout,
	}
}

// FormatResults formats and displays the session results.
func (f *ConsoleResultFormatter) FormatResults(result *types.ReconcileResult) error {
	if result == nil {
		return fmt.Errorf("result cannot be nil")
	}
	f.logger.Info("Printing results...")

	t := table.NewWriter()
	t.SetOutputMirror(f.out)
	t.SetTitle(fmt.Sprintf("Flaky Test Reconciliation (%s)", formatDuration(result.Duration)))

	t.AppendHeader(table.Row{
		"Case", "Attempts", "Passes", "Failures", "Escalated", "Status",
	})
	t.SetColumnConfigs([]table.ColumnConfig{
		{Name: "Case", WidthMax: 50, WidthMaxEnforcer: text.WrapSoft},
		{Name: "Attempts", Align: text.AlignRight},
		{Name: "Passes", Align: text.AlignRight},
		{Name: "Failures", Align: text.AlignRight},
	})

	for _, c := range result.Cases {
		t.AppendRow(table.Row{
			c.ID.String(),
			c.Attempts,
			c.Passes,
			c.Failures(),
			yesNo(c.Escalated),
			caseStatusString(c),
		})
	}

	t.AppendFooter(table.Row{
		fmt.Sprintf("%d cases: %d recovered, %d unrecovered",
			result.Stats.Total, result.Stats.Recovered, result.Stats.Unrecovered),
		"", "", "", "",
		verdictString(result.Verdict),
	})

	t.Render()
	return nil
}

// formatDuration rounds a duration for display
func formatDuration(d time.Duration) string {
	return d.Round(10 * time.Millisecond).String()
}
