package metric

import (
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Namespace prefixes every metric name.
const Namespace = "cfkv"

// Result label values.
const (
	ResultOK    = "ok"
	ResultError = "error"
)

// Registry holds the adapter metrics and the registry they are
// registered with.
type Registry struct {
	registry *prometheus.Registry

	InstructionsTotal    *prometheus.CounterVec
	InstructionDuration  *prometheus.HistogramVec
	InstructionsInFlight prometheus.Gauge
	MultiGetKeys         prometheus.Histogram
	MultiGetKeyErrors    prometheus.Counter
}

// NewRegistry creates a registry with all adapter metrics registered.
func NewRegistry() *Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	r := &Registry{
		registry: reg,
		InstructionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "instructions_total",
			Help:      "Instructions executed, by instruction and result",
		}, []string{"instruction", "result"}),
		InstructionDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "instruction_duration_seconds",
			Help:      "Time from submission to completion of an instruction",
			Buckets:   prometheus.ExponentialBuckets(0.00005, 4, 10),
		}, []string{"instruction"}),
		InstructionsInFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: Namespace,
			Name:      "instructions_in_flight",
			Help:      "Instructions currently waiting for or running on a worker",
		}),
		MultiGetKeys: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "multi_get_keys",
			Help:      "Number of keys per batched lookup",
			Buckets:   prometheus.ExponentialBuckets(1, 2, 10),
		}),
		MultiGetKeyErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "multi_get_key_errors_total",
			Help:      "Keys that failed inside otherwise completed batched lookups",
		}),
	}

	reg.MustRegister(
		r.InstructionsTotal,
		r.InstructionDuration,
		r.InstructionsInFlight,
		r.MultiGetKeys,
		r.MultiGetKeyErrors,
	)

	return r
}

var (
	globalOnce     sync.Once
	globalRegistry *Registry
)

// Global returns the process-wide registry, creating it on first use.
func Global() *Registry {
	globalOnce.Do(func() {
		globalRegistry = NewRegistry()
	})
	return globalRegistry
}

// Handler returns the /metrics handler of the global registry.
func Handler() http.Handler {
	return Global().Handler()
}

// Handler returns an HTTP handler serving this registry.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}

// Registerer exposes the registry for additional collectors.
func (r *Registry) Registerer() prometheus.Registerer {
	return r.registry
}

// Gatherer exposes the registry for reading.
func (r *Registry) Gatherer() prometheus.Gatherer {
	return r.registry
}

// WriteTextfile writes the current metrics to path in the text format,
// atomically replacing any existing file.
func (r *Registry) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, r.registry)
}

// ObserveInstruction records one finished instruction.
func (r *Registry) ObserveInstruction(instruction string, err error, elapsed time.Duration) {
	result := ResultOK
	if err != nil {
		result = ResultError
	}
	r.InstructionsTotal.WithLabelValues(instruction, result).Inc()
	r.InstructionDuration.WithLabelValues(instruction).Observe(elapsed.Seconds())
}

// ObserveMultiGet records the size and per-key failures of a batched
// lookup.
func (r *Registry) ObserveMultiGet(keys, failed int) {
	r.MultiGetKeys.Observe(float64(keys))
	if failed > 0 {
		r.MultiGetKeyErrors.Add(float64(failed))
	}
}

// IncInFlight marks an instruction as started.
func (r *Registry) IncInFlight() {
	r.InstructionsInFlight.Inc()
}

// DecInFlight marks an instruction as finished.
func (r *Registry) DecInFlight() {
	r.InstructionsInFlight.Dec()
}
