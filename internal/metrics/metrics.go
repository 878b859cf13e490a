// Package metrics exposes Prometheus collectors for the board service.
package metrics

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"taskboard/internal/storage"
)

// Metrics groups the collectors registered on a private registry.
type Metrics struct {
	registry *prometheus.Registry

	StorageOps      *prometheus.CounterVec
	StorageFailures *prometheus.CounterVec
	StorageLatency  *prometheus.HistogramVec
	DragOutcomes    *prometheus.CounterVec
}

// New creates and registers all collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		StorageOps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "taskboard",
			Subsystem: "storage",
			Name:      "operations_total",
			Help:      "Key-value operations issued by the registry and task store.",
		}, []string{"op", "key"}),
		StorageFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "taskboard",
			Subsystem: "storage",
			Name:      "failures_total",
			Help:      "Key-value operations that failed. In-memory state stays authoritative.",
		}, []string{"op", "key"}),
		StorageLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "taskboard",
			Subsystem: "storage",
			Name:      "operation_seconds",
			Help:      "Latency of key-value operations.",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 8),
		}, []string{"op"}),
		DragOutcomes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "taskboard",
			Subsystem: "drag",
			Name:      "gestures_total",
			Help:      "Completed drag gestures by outcome.",
		}, []string{"outcome"}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.StorageOps,
		m.StorageFailures,
		m.StorageLatency,
		m.DragOutcomes,
	)
	return m
}

// Handler serves the exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserveDrag counts one finished drag gesture.
func (m *Metrics) ObserveDrag(outcome string) {
	if m == nil {
		return
	}
	m.DragOutcomes.WithLabelValues(outcome).Inc()
}

// InstrumentKV wraps kv so every call is counted and timed.
func (m *Metrics) InstrumentKV(kv storage.KV) storage.KV {
	if m == nil {
		return kv
	}
	return &instrumentedKV{next: kv, m: m}
}

type instrumentedKV struct {
	next storage.KV
	m    *Metrics
}

func (i *instrumentedKV) Get(ctx context.Context, key string) (string, bool, error) {
	start := time.Now()
	value, ok, err := i.next.Get(ctx, key)
	i.observe("get", key, start, err)
	return value, ok, err
}

func (i *instrumentedKV) Set(ctx context.Context, key, value string) error {
	start := time.Now()
	err := i.next.Set(ctx, key, value)
	i.observe("set", key, start, err)
	return err
}

func (i *instrumentedKV) observe(op, key string, start time.Time, err error) {
	i.m.StorageLatency.WithLabelValues(op).Observe(time.Since(start).Seconds())
	i.m.StorageOps.WithLabelValues(op, key).Inc()
	if err != nil {
		i.m.StorageFailures.WithLabelValues(op, key).Inc()
	}
}
