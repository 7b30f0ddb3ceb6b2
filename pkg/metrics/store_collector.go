package metrics

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/tankops/bath-planner/internal/store"
	"go.uber.org/zap"
)

const collectTimeout = 5 * time.Second

type storeStatsCollector struct {
	store               store.Store
	modulesByType       *prometheus.Desc
	correctionsByStatus *prometheus.Desc
}

func NewStoreStatsCollector(s store.Store) prometheus.Collector {
	fqName := func(name string) string {
		return fmt.Sprintf("%s_store_%s", bathPlanner, name)
	}

	return &storeStatsCollector{
		store: s,
		modulesByType: prometheus.NewDesc(
			fqName("modules"),
			"Configured modules by module type.",
			[]string{moduleTypeLabel},
			prometheus.Labels{},
		),
		correctionsByStatus: prometheus.NewDesc(
			fqName("history_entries"),
			"Recorded calculations by status.",
			[]string{statusLabel},
			prometheus.Labels{},
		),
	}
}

// RegisterStoreStatsCollector exposes the store statistics on the default registry.
func RegisterStoreStatsCollector(s store.Store) {
	prometheus.MustRegister(NewStoreStatsCollector(s))
}

func (c *storeStatsCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.modulesByType
	ch <- c.correctionsByStatus
}

// Collect implements Collector.
func (c *storeStatsCollector) Collect(ch chan<- prometheus.Metric) {
	ctx, cancel := context.WithTimeout(context.Background(), collectTimeout)
	defer cancel()

	stats, err := c.store.Statistics(ctx)
	if err != nil {
		zap.S().Named("store_collector").Errorf("failed to collect store statistics: %s", err)
		return
	}

	for moduleType, total := range stats.ModulesByType {
		ch <- prometheus.MustNewConstMetric(c.modulesByType, prometheus.GaugeValue, float64(total), moduleType)
	}
	for status, total := range stats.CorrectionsByStatus {
		ch <- prometheus.MustNewConstMetric(c.correctionsByStatus, prometheus.GaugeValue, float64(total), status)
	}
}
