package observability

import (
	"net/http"
	"sort"
	"strings"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// PrometheusMetrics exports metrics in the Prometheus text format. A
// metric's label names are fixed by its first use; later tags outside that
// set are dropped and missing ones are left empty.
type PrometheusMetrics struct {
	namespace string
	registry  *prometheus.Registry

	mu       sync.Mutex
	counters map[string]*promVec[*prometheus.CounterVec]
	gauges   map[string]*promVec[*prometheus.GaugeVec]
}

type promVec[V any] struct {
	vec    V
	labels []string
}

// NewPrometheusMetrics creates an exporter with its own registry, including
// the Go runtime and process collectors.
func NewPrometheusMetrics(namespace string) *PrometheusMetrics {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return &PrometheusMetrics{
		namespace: namespace,
		registry:  registry,
		counters:  make(map[string]*promVec[*prometheus.CounterVec]),
		gauges:    make(map[string]*promVec[*prometheus.GaugeVec]),
	}
}

// Handler serves the registry.
func (m *PrometheusMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry returns the underlying registry.
func (m *PrometheusMetrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *PrometheusMetrics) Counter(name string, value int64, tags ...Tag) {
	if value < 0 {
		return
	}
	m.mu.Lock()
	v, ok := m.counters[name]
	if !ok {
		labels := labelNames(tags)
		v = &promVec[*prometheus.CounterVec]{
			vec: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: m.namespace,
				Name:      metricName(name) + "_total",
				Help:      name,
			}, labels),
			labels: labels,
		}
		m.registry.MustRegister(v.vec)
		m.counters[name] = v
	}
	m.mu.Unlock()

	v.vec.WithLabelValues(labelValues(v.labels, tags)...).Add(float64(value))
}

func (m *PrometheusMetrics) Gauge(name string, value float64, tags ...Tag) {
	m.mu.Lock()
	v, ok := m.gauges[name]
	if !ok {
		labels := labelNames(tags)
		v = &promVec[*prometheus.GaugeVec]{
			vec: prometheus.NewGaugeVec(prometheus.GaugeOpts{
				Namespace: m.namespace,
				Name:      metricName(name),
				Help:      name,
			}, labels),
			labels: labels,
		}
		m.registry.MustRegister(v.vec)
		m.gauges[name] = v
	}
	m.mu.Unlock()

	v.vec.WithLabelValues(labelValues(v.labels, tags)...).Set(value)
}

func metricName(name string) string {
	return strings.NewReplacer(".", "_", "-", "_").Replace(name)
}

func labelNames(tags []Tag) []string {
	names := make([]string, 0, len(tags))
	seen := make(map[string]bool, len(tags))
	for _, t := range tags {
		key := metricName(t.Key)
		if !seen[key] {
			seen[key] = true
			names = append(names, key)
		}
	}
	sort.Strings(names)
	return names
}

func labelValues(names []string, tags []Tag) []string {
	byKey := make(map[string]string, len(tags))
	for _, t := range tags {
		byKey[metricName(t.Key)] = t.Value
	}
	values := make([]string, len(names))
	for i, n := range names {
		values[i] = byKey[n]
	}
	return values
}

// MultiMetrics fans every record out to several collectors.
type MultiMetrics []Metrics

// Multi combines collectors, skipping nil ones.
func Multi(ms ...Metrics) MultiMetrics {
	out := make(MultiMetrics, 0, len(ms))
	for _, m := range ms {
		if m != nil {
			out = append(out, m)
		}
	}
	return out
}

func (mm MultiMetrics) Counter(name string, value int64, tags ...Tag) {
	for _, m := range mm {
		m.Counter(name, value, tags...)
	}
}

func (mm MultiMetrics) Gauge(name string, value float64, tags ...Tag) {
	for _, m := range mm {
		m.Gauge(name, value, tags...)
	}
}
