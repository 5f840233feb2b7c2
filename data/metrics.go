package data

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics counts repository fetches by operation and outcome.
// A nil *Metrics records nothing.
type Metrics struct {
	Fetches  *prometheus.CounterVec
	Duration *prometheus.HistogramVec
}

// NewMetrics creates the fetch metrics and registers them with reg
// when reg is non-nil.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Fetches: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "postview",
				Name:      "fetch_total",
				Help:      "Repository fetches by operation and outcome.",
			},
			[]string{"op", "outcome"},
		),
		Duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "postview",
				Name:      "fetch_duration_seconds",
				Help:      "Repository fetch latency in seconds.",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"op"},
		),
	}
	if reg != nil {
		reg.MustRegister(m.Fetches, m.Duration)
	}
	return m
}

func (m *Metrics) observe(op string, start time.Time, err error) {
	if m == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "failed"
	}
	m.Fetches.WithLabelValues(op, outcome).Inc()
	m.Duration.WithLabelValues(op).Observe(time.Since(start).Seconds())
}
