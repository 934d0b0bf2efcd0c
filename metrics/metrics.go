// Package metrics records run and acknowledgment metrics for errack.
//
// The Metrics interface keeps callers independent of the backend. Metrics are
// registered once by name and then recorded by name; recording a name that was
// never registered is a no-op.
//
// Usage Example:
//
//	m := metrics.NewPrometheusMetrics()
//	m.RegisterWithLabels("errack_runs_total", metrics.Counter, "Auto ack runs", []string{"errortype", "outcome"})
//	m.RecordWithLabels("errack_runs_total", 1, "JOB", "success")
package metrics

// Supported metric types.
const (
	Counter   = "Counter"
	Gauge     = "Gauge"
	Histogram = "Histogram"
)

type Metrics interface {
	Register(name, metricType, help string)
	Record(name string, value float64)
	RegisterWithLabels(name, metricType, help string, labels []string)
	RecordWithLabels(name string, value float64, labelValues ...string)
}
