package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var actionsLabels = []string{"action"}

var (
	successActions *prometheus.CounterVec
	errorActions   *prometheus.CounterVec
	skippedActions *prometheus.CounterVec
)

func initActions() {
	successActions = NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "actions",
		Name:      "success",
	}, actionsLabels)
	errorActions = NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "actions",
		Name:      "errors",
	}, actionsLabels)
	skippedActions = NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "actions",
		Name:      "skipped",
	}, actionsLabels)
}

func SuccessAction(action string) {
	if Enabled() {
		successActions.WithLabelValues(action).Inc()
	}
}

func ErrorAction(action string) {
	if Enabled() {
		errorActions.WithLabelValues(action).Inc()
	}
}

//SkippedAction counts actions whose conditions didn't match the event data
func SkippedAction(action string) {
	if Enabled() {
		skippedActions.WithLabelValues(action).Inc()
	}
}
