package metrics

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"

	"github.com/qaops/backstop/types"
)

const (
	MetricsNamespace = "backstop"
)

var (
	Debug                bool = true
	nonAlphanumericRegex      = regexp.MustCompile(`[^a-zA-Z ]+`)

	errorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: MetricsNamespace,
		Name:      "errors_total",
		Help:      "Count of errors",
	}, []string{
		"error",
	})

	runsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: MetricsNamespace,
		Name:      "runs_total",
		Help:      "Count of test command runs",
	}, []string{
		"run_id",
		"category",
		"result",
	})

	runDuration = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: MetricsNamespace,
		Name:      "run_duration_seconds",
		Help:      "Duration of test command runs",
	}, []string{
		"run_id",
		"category",
	})

	checksTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: MetricsNamespace,
		Name:      "checks_total",
		Help:      "Count of verification check outcomes",
	}, []string{
		"check",
		"result",
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
		zap.S().Debugw("metric inc",
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

// RecordRun records the outcome of one external test command invocation.
func RecordRun(runID string, category types.Category, success bool, duration time.Duration) {
	result := "fail"
	if success {
		result = "pass"
	}
	if Debug {
		zap.S().Debugw("metric inc",
			"m", "runs_total",
			"run_id", runID,
			"category", category,
			"result", result,
		)
	}
	runsTotal.WithLabelValues(runID, category.String(), result).Inc()
	runDuration.WithLabelValues(runID, category.String()).Set(duration.Seconds())
}

// RecordCheck records the outcome of one verification check.
func RecordCheck(check string, passed bool) {
	result := "fail"
	if passed {
		result = "pass"
	}
	if Debug {
		zap.S().Debugw("metric inc",
			"m", "checks_total",
			"check", check,
			"result", result,
		)
	}
	checksTotal.WithLabelValues(check, result).Inc()
}
