package metrics

import (
	"net/http"

	"github.com/CommonGateway/GeboorteVrijBRPBundle/logging"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	namespace = "vrijbrp"

	Unknown = "unknown"
)

var Registry *prometheus.Registry

func Enabled() bool {
	return Registry != nil
}

func NewCounterVec(opts prometheus.CounterOpts, labels []string) *prometheus.CounterVec {
	vec := prometheus.NewCounterVec(opts, labels)
	Registry.MustRegister(vec)
	return vec
}

func Init(enabled bool) {
	if !enabled {
		Registry = nil
		return
	}

	logging.Info("✅ Initializing Prometheus metrics..")

	Registry = prometheus.NewRegistry()
	Registry.MustRegister(
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		collectors.NewGoCollector(),
	)

	initActions()
	initCalls()
	initMeta()
}

//Handler returns HTTP handler which exposes the registry
func Handler() http.Handler {
	if !Enabled() {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}
