package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var metaErrors *prometheus.CounterVec

func initMeta() {
	metaErrors = NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "meta",
		Name:      "errors",
		Help:      "Failed meta storage operations (synchronizations, calls log, locks)",
	}, []string{"storage", "error_type"})
}

//MetaErrors returns a counter of errors of the meta storage of the given type (redis, inmemory)
func MetaErrors(storage string) func(errorType string) {
	if storage == "" {
		storage = Unknown
	}
	return func(errorType string) {
		if Enabled() {
			metaErrors.WithLabelValues(storage, errorType).Inc()
		}
	}
}
