// Package metrics collects catalog sync metrics and exports them in the
// Prometheus text format.
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "mpcatalog"

// Documents fetched from the catalog repository.
const (
	DocumentResolve = "resolve"
	DocumentIndex   = "index"
	DocumentDetails = "details"
	DocumentReadme  = "readme"
	DocumentTags    = "tags"
)

// Populate outcomes.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

// Metrics holds the collectors for one process. A nil *Metrics is valid and
// records nothing.
type Metrics struct {
	registry      *prometheus.Registry
	fetches       *prometheus.CounterVec
	fetchDuration *prometheus.HistogramVec
	populates     *prometheus.CounterVec
	entries       prometheus.Gauge
	installed     prometheus.Gauge
}

// New creates a Metrics with its own registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		fetches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fetch_total",
			Help:      "Catalog documents fetched, by document and outcome.",
		}, []string{"document", "outcome"}),
		fetchDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "fetch_duration_seconds",
			Help:      "Time spent fetching catalog documents.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"document"}),
		populates: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "populate_total",
			Help:      "Catalog populate cycles, by outcome.",
		}, []string{"outcome"}),
		entries: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "catalog_entries",
			Help:      "Entries in the committed catalog snapshot.",
		}),
		installed: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "installed_matches",
			Help:      "Catalog entries matched to installed packs.",
		}),
	}
	m.registry.MustRegister(m.fetches, m.fetchDuration, m.populates, m.entries, m.installed)
	return m
}

// ObserveFetch records one document fetch.
func (m *Metrics) ObserveFetch(document string, elapsed time.Duration, err error) {
	if m == nil {
		return
	}
	outcome := OutcomeSuccess
	if err != nil {
		outcome = OutcomeFailure
	}
	m.fetches.WithLabelValues(document, outcome).Inc()
	m.fetchDuration.WithLabelValues(document).Observe(elapsed.Seconds())
}

// ObservePopulate records the end of a populate cycle and the size of the
// resulting snapshot.
func (m *Metrics) ObservePopulate(outcome string, entries int) {
	if m == nil {
		return
	}
	m.populates.WithLabelValues(outcome).Inc()
	m.entries.Set(float64(entries))
	m.installed.Set(0)
}

// SetInstalled records how many entries were matched to installed packs.
func (m *Metrics) SetInstalled(n int) {
	if m == nil {
		return
	}
	m.installed.Set(float64(n))
}

// Registry returns the registry holding the collectors.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// WriteTextfile writes the current metrics to path in the node exporter
// textfile format.
func (m *Metrics) WriteTextfile(path string) error {
	if m == nil {
		return nil
	}
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}
