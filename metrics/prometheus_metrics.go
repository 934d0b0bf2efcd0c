package metrics

import (
	"fmt"
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// PrometheusMetrics implements Metrics on a private Prometheus registry, so several
// instances (one per test, say) never collide on metric names.
type PrometheusMetrics struct {
	mu            sync.RWMutex
	registry      *prometheus.Registry
	counters      map[string]prometheus.Counter
	counterVecs   map[string]*prometheus.CounterVec
	gauges        map[string]prometheus.Gauge
	gaugeVecs     map[string]*prometheus.GaugeVec
	histograms    map[string]prometheus.Histogram
	histogramVecs map[string]*prometheus.HistogramVec
	customBuckets map[string][]float64
}

func NewPrometheusMetrics() *PrometheusMetrics {
	return &PrometheusMetrics{
		registry:      prometheus.NewRegistry(),
		counters:      make(map[string]prometheus.Counter),
		counterVecs:   make(map[string]*prometheus.CounterVec),
		gauges:        make(map[string]prometheus.Gauge),
		gaugeVecs:     make(map[string]*prometheus.GaugeVec),
		histograms:    make(map[string]prometheus.Histogram),
		histogramVecs: make(map[string]*prometheus.HistogramVec),
		customBuckets: make(map[string][]float64),
	}
}

// SetCustomBuckets sets the buckets of a histogram registered after this call.
func (p *PrometheusMetrics) SetCustomBuckets(name string, buckets []float64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.customBuckets[name] = buckets
}

func (p *PrometheusMetrics) buckets(name string) []float64 {
	if buckets, ok := p.customBuckets[name]; ok {
		return buckets
	}
	return prometheus.DefBuckets
}

// Register creates an unlabeled metric. Registering a name twice panics, as with
// prometheus.MustRegister.
func (p *PrometheusMetrics) Register(name, metricType, help string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	switch metricType {
	case Counter:
		counter := prometheus.NewCounter(prometheus.CounterOpts{Name: name, Help: help})
		p.registry.MustRegister(counter)
		p.counters[name] = counter
	case Gauge:
		gauge := prometheus.NewGauge(prometheus.GaugeOpts{Name: name, Help: help})
		p.registry.MustRegister(gauge)
		p.gauges[name] = gauge
	case Histogram:
		histogram := prometheus.NewHistogram(prometheus.HistogramOpts{Name: name, Help: help, Buckets: p.buckets(name)})
		p.registry.MustRegister(histogram)
		p.histograms[name] = histogram
	default:
		panic(fmt.Sprintf("unknown metric type %q for metric %s", metricType, name))
	}
}

// Record adds to a counter, sets a gauge or observes a histogram.
func (p *PrometheusMetrics) Record(name string, value float64) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if counter, ok := p.counters[name]; ok {
		counter.Add(value)
		return
	}
	if gauge, ok := p.gauges[name]; ok {
		gauge.Set(value)
		return
	}
	if histogram, ok := p.histograms[name]; ok {
		histogram.Observe(value)
	}
}

// RegisterWithLabels creates a labeled metric.
func (p *PrometheusMetrics) RegisterWithLabels(name, metricType, help string, labels []string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	switch metricType {
	case Counter:
		counterVec := prometheus.NewCounterVec(prometheus.CounterOpts{Name: name, Help: help}, labels)
		p.registry.MustRegister(counterVec)
		p.counterVecs[name] = counterVec
	case Gauge:
		gaugeVec := prometheus.NewGaugeVec(prometheus.GaugeOpts{Name: name, Help: help}, labels)
		p.registry.MustRegister(gaugeVec)
		p.gaugeVecs[name] = gaugeVec
	case Histogram:
		histogramVec := prometheus.NewHistogramVec(prometheus.HistogramOpts{Name: name, Help: help, Buckets: p.buckets(name)}, labels)
		p.registry.MustRegister(histogramVec)
		p.histogramVecs[name] = histogramVec
	default:
		panic(fmt.Sprintf("unknown metric type %q for metric %s", metricType, name))
	}
}

// RecordWithLabels updates a labeled metric. labelValues must match the labels given
// at registration, in order.
func (p *PrometheusMetrics) RecordWithLabels(name string, value float64, labelValues ...string) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if counterVec, ok := p.counterVecs[name]; ok {
		counterVec.WithLabelValues(labelValues...).Add(value)
		return
	}
	if gaugeVec, ok := p.gaugeVecs[name]; ok {
		gaugeVec.WithLabelValues(labelValues...).Set(value)
		return
	}
	if histogramVec, ok := p.histogramVecs[name]; ok {
		histogramVec.WithLabelValues(labelValues...).Observe(value)
	}
}

// Registry exposes the underlying registry, mainly for tests.
func (p *PrometheusMetrics) Registry() *prometheus.Registry {
	return p.registry
}

// Handler serves the registered metrics in the Prometheus exposition format.
func (p *PrometheusMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(p.registry, promhttp.HandlerOpts{})
}

// NewMetricsServer returns an HTTP server exposing /metrics on port. The caller owns
// ListenAndServe and Shutdown.
func (p *PrometheusMetrics) NewMetricsServer(port string) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", p.Handler())
	return &http.Server{Addr: ":" + port, Handler: mux}
}
