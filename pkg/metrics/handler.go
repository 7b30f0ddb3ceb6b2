package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type PrometheusMetricsHandler struct {
	gatherer prometheus.Gatherer
}

// NewPrometheusMetricsHandler serves the metrics registered with the default registry.
func NewPrometheusMetricsHandler() *PrometheusMetricsHandler {
	return &PrometheusMetricsHandler{gatherer: prometheus.DefaultGatherer}
}

func (p *PrometheusMetricsHandler) Handler() http.Handler {
	return promhttp.HandlerFor(p.gatherer, promhttp.HandlerOpts{})
}
