package observability

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// CleanupCollector bundles Prometheus metrics for debris cleanup passes. It is
// a reporting side channel only; nothing reads these values back.
type CleanupCollector struct {
	gatherer prometheus.Gatherer

	Passes          *prometheus.CounterVec
	Candidates      *prometheus.CounterVec
	Deleted         *prometheus.CounterVec
	DeleteFailures  prometheus.Counter
	PassDuration    prometheus.Histogram
	QueuedDeletions prometheus.Gauge
	Triggers        *prometheus.CounterVec
	Salvaged        prometheus.Counter
}

// NewCleanupCollector registers cleanup metrics against the provided
// registerer, defaulting to the global Prometheus registry when nil.
func NewCleanupCollector(reg prometheus.Registerer) (*CleanupCollector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	gatherer := prometheus.DefaultGatherer
	if g, ok := reg.(prometheus.Gatherer); ok {
		gatherer = g
	}

	passes, err := registerCounterVec(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "debris_cleanup_passes_total",
		Help: "Cleanup passes, labeled by outcome (completed or skipped).",
	}, []string{"outcome"}), "debris_cleanup_passes_total")
	if err != nil {
		return nil, err
	}

	candidates, err := registerCounterVec(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "debris_cleanup_candidates_total",
		Help: "Debris vessels seen by cleanup passes, labeled by category.",
	}, []string{"category"}), "debris_cleanup_candidates_total")
	if err != nil {
		return nil, err
	}

	deleted, err := registerCounterVec(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "debris_cleanup_deleted_total",
		Help: "Debris vessels removed from the world, labeled by category.",
	}, []string{"category"}), "debris_cleanup_deleted_total")
	if err != nil {
		return nil, err
	}

	failures, err := registerCounter(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Name: "debris_cleanup_delete_failures_total",
		Help: "Queued deletions the host world refused.",
	}), "debris_cleanup_delete_failures_total")
	if err != nil {
		return nil, err
	}

	duration, err := registerHistogram(reg, prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "debris_cleanup_pass_duration_seconds",
		Help:    "Wall-clock duration of completed cleanup passes.",
		Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
	}), "debris_cleanup_pass_duration_seconds")
	if err != nil {
		return nil, err
	}

	queued, err := registerGauge(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "debris_cleanup_queued_deletions",
		Help: "Vessels queued for deletion by the most recent pass.",
	}), "debris_cleanup_queued_deletions")
	if err != nil {
		return nil, err
	}

	triggers, err := registerCounterVec(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "debris_cleanup_manual_triggers_total",
		Help: "Operator triggers, labeled by action and whether they were accepted.",
	}, []string{"action", "accepted"}), "debris_cleanup_manual_triggers_total")
	if err != nil {
		return nil, err
	}

	salvaged, err := registerCounter(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Name: "debris_salvaged_total",
		Help: "Debris vessels removed by manual salvage.",
	}), "debris_salvaged_total")
	if err != nil {
		return nil, err
	}

	return &CleanupCollector{
		gatherer:        gatherer,
		Passes:          passes,
		Candidates:      candidates,
		Deleted:         deleted,
		DeleteFailures:  failures,
		PassDuration:    duration,
		QueuedDeletions: queued,
		Triggers:        triggers,
		Salvaged:        salvaged,
	}, nil
}

// Gatherer returns the Prometheus gatherer associated with the collector.
func (c *CleanupCollector) Gatherer() prometheus.Gatherer {
	if c == nil {
		return nil
	}
	return c.gatherer
}

// Handler exposes a ready-to-use /metrics handler.
func (c *CleanupCollector) Handler() http.Handler {
	gatherer := c.Gatherer()
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// RecordPass records a completed pass.
func (c *CleanupCollector) RecordPass(candidates, deleted map[string]int, queued, failed int, d time.Duration) {
	if c == nil {
		return
	}
	c.Passes.WithLabelValues("completed").Inc()
	for category, n := range candidates {
		c.Candidates.WithLabelValues(category).Add(float64(n))
	}
	for category, n := range deleted {
		c.Deleted.WithLabelValues(category).Add(float64(n))
	}
	c.DeleteFailures.Add(float64(failed))
	c.QueuedDeletions.Set(float64(queued))
	c.PassDuration.Observe(d.Seconds())
}

// RecordSkippedPass records a pass skipped because the world was not ready.
func (c *CleanupCollector) RecordSkippedPass() {
	if c == nil {
		return
	}
	c.Passes.WithLabelValues("skipped").Inc()
}

// RecordTrigger records an operator trigger.
func (c *CleanupCollector) RecordTrigger(action string, accepted bool) {
	if c == nil {
		return
	}
	c.Triggers.WithLabelValues(action, strconv.FormatBool(accepted)).Inc()
}

// RecordSalvage records vessels removed by a manual salvage.
func (c *CleanupCollector) RecordSalvage(n int) {
	if c == nil {
		return
	}
	c.Salvaged.Add(float64(n))
}

func registerCounterVec(reg prometheus.Registerer, vec *prometheus.CounterVec, name string) (*prometheus.CounterVec, error) {
	if err := reg.Register(vec); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(*prometheus.CounterVec); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return vec, nil
}

func registerCounter(reg prometheus.Registerer, counter prometheus.Counter, name string) (prometheus.Counter, error) {
	if err := reg.Register(counter); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Counter); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return counter, nil
}

func registerHistogram(reg prometheus.Registerer, hist prometheus.Histogram, name string) (prometheus.Histogram, error) {
	if err := reg.Register(hist); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Histogram); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return hist, nil
}

func registerGauge(reg prometheus.Registerer, gauge prometheus.Gauge, name string) (prometheus.Gauge, error) {
	if err := reg.Register(gauge); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Gauge); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return gauge, nil
}
