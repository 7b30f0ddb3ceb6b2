package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const (
	bathPlanner = "bath_planner"

	correctionsTotal    = "corrections_total"
	modulesFileReloads  = "modules_file_reloads_total"
	correctionAdditions = "correction_additions_liters"

	// Labels
	statusLabel     = "status"
	moduleTypeLabel = "module_type"
	resultLabel     = "result"
	kindLabel       = "kind"
)

var correctionsTotalMetric = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Subsystem: bathPlanner,
		Name:      correctionsTotal,
		Help:      "number of calculations partitioned by module type and resulting status",
	},
	[]string{moduleTypeLabel, statusLabel},
)

var correctionAdditionsMetric = prometheus.NewHistogramVec(
	prometheus.HistogramOpts{
		Subsystem: bathPlanner,
		Name:      correctionAdditions,
		Help:      "litres recommended per calculation partitioned by kind of addition",
		Buckets:   []float64{0.1, 1, 5, 10, 25, 50, 100, 250},
	},
	[]string{kindLabel},
)

var modulesFileReloadsMetric = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Subsystem: bathPlanner,
		Name:      modulesFileReloads,
		Help:      "number of modules file reloads partitioned by result",
	},
	[]string{resultLabel},
)

func IncreaseCorrectionsTotalMetric(moduleType, status string) {
	correctionsTotalMetric.With(prometheus.Labels{
		moduleTypeLabel: moduleType,
		statusLabel:     status,
	}).Inc()
}

// ObserveCorrectionAddition records a recommended addition of kind (water, makeup, chemical).
// Zero additions are not recorded.
func ObserveCorrectionAddition(kind string, liters float64) {
	if liters <= 0 {
		return
	}
	correctionAdditionsMetric.With(prometheus.Labels{kindLabel: kind}).Observe(liters)
}

func IncreaseModulesFileReloadMetric(result string) {
	modulesFileReloadsMetric.With(prometheus.Labels{resultLabel: result}).Inc()
}

func init() {
	registerMetrics()
}

func registerMetrics() {
	prometheus.MustRegister(correctionsTotalMetric)
	prometheus.MustRegister(correctionAdditionsMetric)
	prometheus.MustRegister(modulesFileReloadsMetric)
}
