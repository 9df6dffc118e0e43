// Package promadapters exposes legisnapshot metrics through the Prometheus client library.
//
// MetricsCollector implements legisnapshot.MetricsCollector on a prometheus.Registerer and
// CacheCollector publishes resultcache statistics. Batch runs of the CLI write the registry to a
// node_exporter textfile with prometheus.WriteToTextfile.
package promadapters

import (
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/legilibre/legi-snapshot-go/legisnapshot"
)

// ErrNilRegisterer is returned when no registerer is given.
var ErrNilRegisterer = errors.New("prometheus registerer must not be nil")

// DefaultBuckets covers sub-millisecond index lookups up to multi-second full code snapshots.
var DefaultBuckets = []float64{0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10}

// MetricsCollector implements legisnapshot.MetricsCollector with Prometheus vectors.
//
// A vector is created for a metric name on first use and its label names are fixed then.
// Later observations missing one of those labels record it empty and extra labels are dropped.
type MetricsCollector struct {
	registerer prometheus.Registerer
	buckets    []float64

	mu         sync.Mutex
	histograms map[string]*labeled[*prometheus.HistogramVec]
	counters   map[string]*labeled[*prometheus.CounterVec]
	gauges     map[string]*labeled[*prometheus.GaugeVec]
}

var _ legisnapshot.MetricsCollector = (*MetricsCollector)(nil)

type labeled[V any] struct {
	vec        V
	labelNames []string
}

func (l *labeled[V]) values(labels map[string]string) []string {
	values := make([]string, len(l.labelNames))
	for i, name := range l.labelNames {
		values[i] = labels[name]
	}

	return values
}

// Option configures a MetricsCollector.
type Option func(*MetricsCollector)

// WithBuckets overrides DefaultBuckets for duration histograms.
func WithBuckets(buckets []float64) Option {
	return func(m *MetricsCollector) {
		m.buckets = buckets
	}
}

// NewMetricsCollector registers its vectors on registerer as they are first used.
func NewMetricsCollector(registerer prometheus.Registerer, opts ...Option) (*MetricsCollector, error) {
	if registerer == nil {
		return nil, ErrNilRegisterer
	}

	m := &MetricsCollector{
		registerer: registerer,
		buckets:    DefaultBuckets,
		histograms: make(map[string]*labeled[*prometheus.HistogramVec]),
		counters:   make(map[string]*labeled[*prometheus.CounterVec]),
		gauges:     make(map[string]*labeled[*prometheus.GaugeVec]),
	}

	for _, opt := range opts {
		opt(m)
	}

	return m, nil
}

func (m *MetricsCollector) RecordDuration(metric string, duration time.Duration, labels map[string]string) {
	m.mu.Lock()
	histogram, ok := m.histograms[metric]
	if !ok {
		names := labelNames(labels)
		vec := prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    metric,
			Help:    help(metric),
			Buckets: m.buckets,
		}, names)
		histogram = &labeled[*prometheus.HistogramVec]{vec: register(m.registerer, vec), labelNames: names}
		m.histograms[metric] = histogram
	}
	m.mu.Unlock()

	histogram.vec.WithLabelValues(histogram.values(labels)...).Observe(duration.Seconds())
}

func (m *MetricsCollector) IncrementCounter(metric string, labels map[string]string) {
	m.mu.Lock()
	counter, ok := m.counters[metric]
	if !ok {
		names := labelNames(labels)
		vec := prometheus.NewCounterVec(prometheus.CounterOpts{Name: metric, Help: help(metric)}, names)
		counter = &labeled[*prometheus.CounterVec]{vec: register(m.registerer, vec), labelNames: names}
		m.counters[metric] = counter
	}
	m.mu.Unlock()

	counter.vec.WithLabelValues(counter.values(labels)...).Inc()
}

func (m *MetricsCollector) RecordValue(metric string, value float64, labels map[string]string) {
	m.mu.Lock()
	gauge, ok := m.gauges[metric]
	if !ok {
		names := labelNames(labels)
		vec := prometheus.NewGaugeVec(prometheus.GaugeOpts{Name: metric, Help: help(metric)}, names)
		gauge = &labeled[*prometheus.GaugeVec]{vec: register(m.registerer, vec), labelNames: names}
		m.gauges[metric] = gauge
	}
	m.mu.Unlock()

	gauge.vec.WithLabelValues(gauge.values(labels)...).Set(value)
}

// register returns the already registered collector when an identical one exists, so two
// MetricsCollectors on one registry share their series.
func register[C prometheus.Collector](registerer prometheus.Registerer, collector C) C {
	if err := registerer.Register(collector); err != nil {
		var alreadyRegistered prometheus.AlreadyRegisteredError
		if errors.As(err, &alreadyRegistered) {
			if existing, ok := alreadyRegistered.ExistingCollector.(C); ok {
				return existing
			}
		}
	}

	return collector
}

func labelNames(labels map[string]string) []string {
	names := make([]string, 0, len(labels))
	for name := range labels {
		names = append(names, name)
	}

	sort.Strings(names)

	return names
}

func help(metric string) string {
	switch metric {
	case legisnapshot.MetricRequestDuration:
		return "Duration of snapshot requests in seconds."
	case legisnapshot.MetricRequestErrors:
		return "Failed snapshot requests by error type."
	case legisnapshot.MetricNodesAssembled:
		return "Number of nodes in the last assembled tree."
	case legisnapshot.MetricClosureLevels:
		return "Number of levels walked by the last closure resolution."
	case legisnapshot.MetricDanglingReferences:
		return "Tree references whose element row is missing."
	case legisnapshot.MetricBatchDuration:
		return "Duration of one batched element fetch in seconds."
	default:
		return strings.ReplaceAll(metric, "_", " ") + "."
	}
}
