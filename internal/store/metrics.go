package store

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics counts snapshot writes per blob key.
type Metrics struct {
	saves    *prometheus.CounterVec
	failures *prometheus.CounterVec
	bytes    *prometheus.CounterVec
	latency  *prometheus.HistogramVec
	pending  prometheus.Gauge
}

// NewMetrics creates the persistence collectors and registers them on reg.
// A nil reg leaves them unregistered, which is convenient in tests.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		saves: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "teamspace",
			Subsystem: "store",
			Name:      "saves_total",
			Help:      "Snapshot writes attempted, by key.",
		}, []string{"key"}),
		failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "teamspace",
			Subsystem: "store",
			Name:      "save_failures_total",
			Help:      "Snapshot writes that failed, by key.",
		}, []string{"key"}),
		bytes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "teamspace",
			Subsystem: "store",
			Name:      "saved_bytes_total",
			Help:      "Bytes written, by key.",
		}, []string{"key"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "teamspace",
			Subsystem: "store",
			Name:      "save_duration_seconds",
			Help:      "Time spent writing one snapshot.",
			Buckets:   prometheus.ExponentialBuckets(0.0005, 2, 12),
		}, []string{"key"}),
		pending: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "teamspace",
			Subsystem: "store",
			Name:      "pending_writes",
			Help:      "Snapshots queued on the async writer.",
		}),
	}
	if reg != nil {
		reg.MustRegister(m.saves, m.failures, m.bytes, m.latency, m.pending)
	}
	return m
}

func (m *Metrics) observe(key string, n int, took time.Duration, err error) {
	if m == nil {
		return
	}
	m.saves.WithLabelValues(key).Inc()
	m.latency.WithLabelValues(key).Observe(took.Seconds())
	if err != nil {
		m.failures.WithLabelValues(key).Inc()
		return
	}
	m.bytes.WithLabelValues(key).Add(float64(n))
}

func (m *Metrics) setPending(n int) {
	if m == nil {
		return
	}
	m.pending.Set(float64(n))
}

// instrumented wraps a Backend and records every Save.
type instrumented struct {
	Backend
	metrics *Metrics
}

// Instrument returns b with its writes recorded on m.
func Instrument(b Backend, m *Metrics) Backend {
	if m == nil {
		return b
	}
	return &instrumented{Backend: b, metrics: m}
}

func (b *instrumented) Save(ctx context.Context, key string, data []byte) error {
	start := time.Now()
	err := b.Backend.Save(ctx, key, data)
	b.metrics.observe(key, len(data), time.Since(start), err)
	return err
}
