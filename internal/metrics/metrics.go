// Package metrics exposes Prometheus metrics for batch runs.
package metrics

import (
	"errors"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/i474232898/power-demand-snapshot/internal/power"
)

// Run outcomes.
const (
	OutcomeSaved   = "saved"
	OutcomeEmpty   = "empty"
	OutcomeFailed  = "failed"
	OutcomeAborted = "aborted"
)

// Collector implements power.Observer on a private registry.
type Collector struct {
	registry *prometheus.Registry

	runsTotal        *prometheus.CounterVec
	harvestsTotal    *prometheus.CounterVec
	harvestDuration  prometheus.Histogram
	runDuration      prometheus.Histogram
	lastSuccessEpoch prometheus.Gauge
	lastRecords      prometheus.Gauge
}

// NewCollector registers all collectors on a fresh registry.
func NewCollector() *Collector {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Collector{
		registry: reg,
		runsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "power_snapshot_runs_total",
				Help: "Batch runs by outcome.",
			},
			[]string{"outcome"},
		),
		harvestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "power_snapshot_region_harvests_total",
				Help: "Region harvests by region slug and result.",
			},
			[]string{"region", "result"},
		),
		harvestDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "power_snapshot_region_harvest_duration_seconds",
			Help:    "Duration of one region fetch and extraction.",
			Buckets: prometheus.ExponentialBuckets(0.05, 2, 11), // 50ms to ~51s
		}),
		runDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "power_snapshot_run_duration_seconds",
			Help:    "Duration of a full batch run.",
			Buckets: prometheus.ExponentialBuckets(1, 2, 12), // 1s to ~68min
		}),
		lastSuccessEpoch: factory.NewGauge(prometheus.GaugeOpts{
			Name: "power_snapshot_last_success_timestamp_seconds",
			Help: "Unix time of the last run that saved a snapshot.",
		}),
		lastRecords: factory.NewGauge(prometheus.GaugeOpts{
			Name: "power_snapshot_last_run_records",
			Help: "Number of records in the most recent batch.",
		}),
	}
}

// ObserveHarvest records one region outcome.
func (c *Collector) ObserveHarvest(res power.HarvestResult) {
	result := "ok"
	if !res.OK() {
		result = "skipped"
	}
	c.harvestsTotal.WithLabelValues(res.Region.Slug(), result).Inc()
	c.harvestDuration.Observe(res.Duration.Seconds())
}

// ObserveRun records one batch outcome.
func (c *Collector) ObserveRun(report power.RunReport, err error) {
	c.runsTotal.WithLabelValues(Outcome(report, err)).Inc()
	c.lastRecords.Set(float64(report.Succeeded))
	if !report.EndedAt.IsZero() {
		c.runDuration.Observe(report.EndedAt.Sub(report.StartedAt).Seconds())
	}
	if err == nil && report.Persisted() {
		c.lastSuccessEpoch.Set(float64(report.EndedAt.Unix()))
	}
}

// Outcome classifies a finished run.
func Outcome(report power.RunReport, err error) string {
	switch {
	case err == nil && report.Persisted():
		return OutcomeSaved
	case err == nil:
		return OutcomeEmpty
	case errors.Is(err, power.ErrNothingToPersist):
		return OutcomeEmpty
	case len(report.Artifacts) > 0 || report.Succeeded > 0:
		return OutcomeFailed
	default:
		return OutcomeAborted
	}
}

// Registry exposes the underlying registry, mainly for tests.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}
