// Package metrics exports classification statistics to Prometheus.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/bebsworthy/pathsieve/internal/filter"
)

const namespace = "pathsieve"

// Collector reads group hit counters from a registry at scrape time and
// counts the decisions reported to it.
type Collector struct {
	registry *filter.Registry

	groupHits    *prometheus.Desc
	groupEnabled *prometheus.Desc

	decisions *prometheus.CounterVec
	duration  prometheus.Histogram
}

// NewCollector creates a collector for reg
func NewCollector(reg *filter.Registry) *Collector {
	return &Collector{
		registry: reg,
		groupHits: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "", "group_hits_total"),
			"Number of times a filter group matched",
			[]string{"filter", "group", "kind"}, nil,
		),
		groupEnabled: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "", "group_enabled"),
			"Whether a filter group is currently enabled (1) or not (0)",
			[]string{"filter", "group", "kind"}, nil,
		),
		decisions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "decisions_total",
				Help:      "Number of classification decisions by outcome",
			},
			[]string{"decision"},
		),
		duration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "classify_duration_seconds",
				Help:      "Time taken to classify one request",
				Buckets:   []float64{1e-7, 5e-7, 1e-6, 5e-6, 1e-5, 5e-5, 1e-4, 1e-3},
			},
		),
	}
}

// Describe implements prometheus.Collector
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.groupHits
	ch <- c.groupEnabled
	c.decisions.Describe(ch)
	c.duration.Describe(ch)
}

// Collect implements prometheus.Collector
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	for _, s := range c.registry.Stats() {
		kind := s.Kind.String()
		ch <- prometheus.MustNewConstMetric(c.groupHits, prometheus.CounterValue, float64(s.Hits), s.Filter, s.Group, kind)

		enabled := 0.0
		if s.Enabled {
			enabled = 1
		}
		ch <- prometheus.MustNewConstMetric(c.groupEnabled, prometheus.GaugeValue, enabled, s.Filter, s.Group, kind)
	}
	c.decisions.Collect(ch)
	c.duration.Collect(ch)
}

// ObserveDecision counts one decision and how long it took
func (c *Collector) ObserveDecision(d filter.Decision, elapsed time.Duration) {
	c.decisions.WithLabelValues(d.String()).Inc()
	c.duration.Observe(elapsed.Seconds())
}

// ObserveBatch counts every decision of a batch. Skipped requests are not
// decisions and are left out.
func (c *Collector) ObserveBatch(result *filter.BatchResult) {
	if result == nil {
		return
	}
	allowed := len(result.Decisions) - result.Blocked - result.Skipped
	c.decisions.WithLabelValues(filter.Block.String()).Add(float64(result.Blocked))
	c.decisions.WithLabelValues(filter.Allow.String()).Add(float64(allowed))
}

// Register adds the collector to reg. A nil reg means the default registerer.
func (c *Collector) Register(reg prometheus.Registerer) error {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	return reg.Register(c)
}
