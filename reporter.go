package flakewrap

import (
	"github.com/flakewrap/flakewrap/metrics"
	"github.com/flakewrap/flakewrap/types"
)

// MetricsReporter is responsible for reporting metrics from session results.
type MetricsReporter interface {
	ReportResults(binary string, result *types.ReconcileResult)
}

// DefaultMetricsReporter implements the MetricsReporter interface.
type DefaultMetricsReporter struct{}

// NewDefaultMetricsReporter creates a new DefaultMetricsReporter.
func NewDefaultMetricsReporter() *DefaultMetricsReporter {
	return &DefaultMetricsReporter{}
}

// ReportResults reports the session results to metrics systems.
func (r *DefaultMetricsReporter) ReportResults(binary string, result *types.ReconcileResult) {
	metrics.RecordReconcile(binary, result)
}
