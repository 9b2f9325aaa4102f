package tessellate

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics are the sampler's prometheus collectors. A nil *Metrics is
// valid and records nothing.
type Metrics struct {
	cells     *prometheus.CounterVec
	points    prometheus.Counter
	ambiguous prometheus.Counter
	duration  prometheus.Histogram
}

// NewMetrics creates the sampler collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		// Labels: result (pruned, evaluated)
		cells: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "facet",
			Subsystem: "sampler",
			Name:      "cells_total",
			Help:      "Grid cells processed, by result",
		}, []string{"result"}),
		points: f.NewCounter(prometheus.CounterOpts{
			Namespace: "facet",
			Subsystem: "sampler",
			Name:      "points_total",
			Help:      "Sample points evaluated individually",
		}),
		ambiguous: f.NewCounter(prometheus.CounterOpts{
			Namespace: "facet",
			Subsystem: "sampler",
			Name:      "ambiguous_points_total",
			Help:      "Evaluated sample points flagged ambiguous",
		}),
		duration: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: "facet",
			Subsystem: "sampler",
			Name:      "duration_seconds",
			Help:      "Time to sample a region",
			Buckets:   prometheus.ExponentialBuckets(0.001, 4, 8),
		}),
	}
}

func (m *Metrics) observe(s Stats, d time.Duration) {
	if m == nil {
		return
	}
	m.cells.WithLabelValues("pruned").Add(float64(s.PrunedCells))
	m.cells.WithLabelValues("evaluated").Add(float64(s.EvaluatedCells))
	m.points.Add(float64(s.Points))
	m.ambiguous.Add(float64(s.Ambiguous))
	m.duration.Observe(d.Seconds())
}
