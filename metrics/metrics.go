package metrics

import (
	"fmt"
	"regexp"
	"slices"
	"strings"

	"github.com/ethereum/go-ethereum/log"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/flakewrap/flakewrap/types"
)

const (
	MetricsNamespace = "flakewrap"
)

var (
	Debug                bool = true
	validVerdicts             = []types.Verdict{types.VerdictPass, types.VerdictFail, types.VerdictCrash}
	nonAlphanumericRegex      = regexp.MustCompile(`[^a-zA-Z ]+`)

	errorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: MetricsNamespace,
		Name:      "errors_total",
		Help:      "Count of errors",
	}, []string{
		"error",
	})

	fullRunsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: MetricsNamespace,
		Name:      "full_runs_total",
		Help:      "Count of full-suite executions of the wrapped binary",
	}, []string{
		"binary",
		"run_id",
	})

	caseAttemptsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: MetricsNamespace,
		Name:      "case_attempts_total",
		Help:      "Count of per-case re-run attempts",
	}, []string{
		"binary",
		"run_id",
		"result",
	})

	casesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: MetricsNamespace,
		Name:      "cases_total",
		Help:      "Count of failing cases handled, by recovery outcome",
	}, []string{
		"binary",
		"run_id",
		"outcome",
	})

	reconcileResults = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: MetricsNamespace,
		Name:      "reconcile_results",
		Help:      "Final verdict of a reconciliation session",
	}, []string{
		"binary",
		"run_id",
		"verdict",
	})

	reconcileDuration = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: MetricsNamespace,
		Name:      "reconcile_duration_seconds",
		Help:      "Wall-clock duration of a reconciliation session",
	}, []string{
		"binary",
		"run_id",
	})
)

// errToLabel tries to make the error string a more valid Prometheus label
func errToLabel(err error) string {
	if err == nil {
		return "nil"
	}
	errClean := nonAlphanumericRegex.ReplaceAllString(err.Error(), "")
	errClean = strings.ReplaceAll(errClean, " ", "_")
	errClean = strings.ReplaceAll(errClean, "__", "_")
	return errClean
}

func RecordError(error string) {
	if Debug {
		log.Debug("metric inc",
			"m", "errors_total",
			"error", error,
		)
	}
	errorsTotal.WithLabelValues(error).Inc()
}

// RecordErrorDetails concats the error message to the label
// and also tries to clean the label to be a valid Prometheus label
func RecordErrorDetails(label string, err error) {
	if err == nil {
		return
	}
	label = fmt.Sprintf("%s.%s", label, errToLabel(err))
	RecordError(label)
}

// RecordReconcile records the final state of one reconciliation session.
func RecordReconcile(binary string, result *types.ReconcileResult) {
	if result == nil {
		return
	}
	if !isValidVerdict(result.Verdict) {
		log.Error("RecordReconcile - invalid verdict", "verdict", result.Verdict)
		return
	}
	if Debug {
		log.Debug("metric set",
			"m", "reconcile_results",
			"binary", binary,
			"run_id", result.RunID,
			"verdict", result.Verdict)
	}

	reconcileResults.WithLabelValues(binary, result.RunID, string(result.Verdict)).Set(1)
	reconcileDuration.WithLabelValues(binary, result.RunID).Set(result.Duration.Seconds())
	fullRunsTotal.WithLabelValues(binary, result.RunID).Add(float64(result.FullRuns))

	var passes, failures int
	for _, c := range result.Cases {
		passes += c.Passes
		failures += c.Failures()
	}
	caseAttemptsTotal.WithLabelValues(binary, result.RunID, "pass").Add(float64(passes))
	caseAttemptsTotal.WithLabelValues(binary, result.RunID, "fail").Add(float64(failures))
	casesTotal.WithLabelValues(binary, result.RunID, "recovered").Add(float64(result.Stats.Recovered))
	casesTotal.WithLabelValues(binary, result.RunID, "unrecovered").Add(float64(result.Stats.Unrecovered))
}

func isValidVerdict(v types.Verdict) bool {
	return slices.Contains(validVerdicts, v)
}
