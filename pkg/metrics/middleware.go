package metrics

import (
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
)

const (
	// EnvLatencyBuckets holds comma separated latency buckets in milliseconds, e.g. "5,50,500".
	EnvLatencyBuckets     = "BATH_PLANNER_LATENCY_BUCKETS"
	RequestsCollectorName = "http_requests_total"
	LatencyCollectorName  = "http_request_duration_milliseconds"
)

var defaultBuckets = []float64{5, 25, 100, 500, 1000}

// Middleware counts HTTP requests and observes their latency partitioned by status code, method
// and route pattern.
type Middleware struct {
	requests *prometheus.CounterVec
	latency  *prometheus.HistogramVec
}

// latencyBuckets reads EnvLatencyBuckets, keeping the defaults when it is unset or malformed.
func latencyBuckets() []float64 {
	conf, ok := os.LookupEnv(EnvLatencyBuckets)
	if !ok {
		return defaultBuckets
	}
	var buckets []float64
	for _, v := range strings.Split(conf, ",") {
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return defaultBuckets
		}
		buckets = append(buckets, f)
	}
	return buckets
}

func NewMiddleware(name string) *Middleware {
	labels := []string{"code", "method", "path"}
	return &Middleware{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Subsystem:   bathPlanner,
			Name:        RequestsCollectorName,
			Help:        "Number of HTTP requests partitioned by status code, method and route.",
			ConstLabels: prometheus.Labels{"service": name},
		}, labels),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Subsystem:   bathPlanner,
			Name:        LatencyCollectorName,
			Help:        "Time spent on the request partitioned by status code, method and route.",
			ConstLabels: prometheus.Labels{"service": name},
			Buckets:     latencyBuckets(),
		}, labels),
	}
}

func (m *Middleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		rctx := chi.RouteContext(r.Context())
		if rctx == nil {
			return
		}
		// unmatched routes share one label to keep cardinality bounded
		route := rctx.RoutePattern()
		if route == "" {
			route = "unmatched"
		}
		code := strconv.Itoa(ww.Status())
		m.requests.WithLabelValues(code, r.Method, route).Inc()
		m.latency.WithLabelValues(code, r.Method, route).Observe(float64(time.Since(start).Milliseconds()))
	})
}

func (m *Middleware) Collectors() []prometheus.Collector {
	return []prometheus.Collector{m.requests, m.latency}
}

// MustRegister registers the collectors with reg.
func (m *Middleware) MustRegister(reg prometheus.Registerer) {
	reg.MustRegister(m.Collectors()...)
}

// MustRegisterDefault registers the collectors with the default registry served by
// NewPrometheusMetricsHandler.
func (m *Middleware) MustRegisterDefault() {
	m.MustRegister(prometheus.DefaultRegisterer)
}
