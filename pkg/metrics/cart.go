package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// CartMetrics records persistence activity for the cart state layer.
type CartMetrics struct {
	saves        *prometheus.CounterVec
	saveDuration prometheus.Histogram
	loadMisses   prometheus.Counter
}

// NewCartMetrics registers the cart metrics on the provided registerer.
func NewCartMetrics(reg prometheus.Registerer) *CartMetrics {
	if reg == nil {
		return &CartMetrics{}
	}
	saves := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "cart_saves_total",
		Help: "Debounced cart snapshot writes by outcome.",
	}, []string{"outcome"})
	saveDuration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "cart_save_duration_seconds",
		Help:    "Duration of cart snapshot writes in seconds.",
		Buckets: prometheus.DefBuckets,
	})
	loadMisses := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "cart_load_misses_total",
		Help: "Cart loads that found no stored snapshot.",
	})
	reg.MustRegister(saves, saveDuration, loadMisses)
	return &CartMetrics{
		saves:        saves,
		saveDuration: saveDuration,
		loadMisses:   loadMisses,
	}
}

// ObserveSave records one snapshot write and its outcome.
func (c *CartMetrics) ObserveSave(err error, duration time.Duration) {
	if c == nil || c.saves == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	c.saves.WithLabelValues(outcome).Inc()
	c.saveDuration.Observe(duration.Seconds())
}

// IncLoadMiss records a cart load with no stored snapshot.
func (c *CartMetrics) IncLoadMiss() {
	if c == nil || c.loadMisses == nil {
		return
	}
	c.loadMisses.Inc()
}
