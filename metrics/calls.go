package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

var callsLabels = []string{"source", "method", "status"}

var (
	successCalls *prometheus.CounterVec
	errorCalls   *prometheus.CounterVec
)

func initCalls() {
	successCalls = NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "calls",
		Name:      "success",
	}, callsLabels)
	errorCalls = NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "calls",
		Name:      "errors",
	}, callsLabels)
}

func SuccessCall(source, method string, status int) {
	if Enabled() {
		successCalls.WithLabelValues(sourceLabel(source), method, strconv.Itoa(status)).Inc()
	}
}

//ErrorCall counts failed calls, status is 0 if the request wasn't sent
func ErrorCall(source, method string, status int) {
	if Enabled() {
		errorCalls.WithLabelValues(sourceLabel(source), method, strconv.Itoa(status)).Inc()
	}
}

func sourceLabel(source string) string {
	if source == "" {
		return Unknown
	}
	return source
}
