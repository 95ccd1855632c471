package badgercf

import (
	"github.com/prometheus/client_golang/prometheus"
)

// RegisterMetrics registers Badger size and GC metrics with reg.
// Values are read from the engine at scrape time.
func (e *Engine) RegisterMetrics(reg prometheus.Registerer) error {
	collectors := []prometheus.Collector{
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: "cfkv",
			Subsystem: "badger",
			Name:      "lsm_size_bytes",
			Help:      "Badger LSM tree size in bytes",
		}, func() float64 { return float64(e.Stats().LSMSize) }),

		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: "cfkv",
			Subsystem: "badger",
			Name:      "value_log_size_bytes",
			Help:      "Badger value log size in bytes",
		}, func() float64 { return float64(e.Stats().ValueLogSize) }),

		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: "cfkv",
			Subsystem: "badger",
			Name:      "last_gc_timestamp_seconds",
			Help:      "Unix timestamp of the last Badger GC run",
		}, func() float64 { return float64(e.lastGCTime.Load()) / 1000.0 }),

		prometheus.NewCounterFunc(prometheus.CounterOpts{
			Namespace: "cfkv",
			Subsystem: "badger",
			Name:      "gc_bytes_reclaimed_total",
			Help:      "Approximate bytes reclaimed by Badger garbage collection",
		}, func() float64 { return float64(e.gcBytesReclaimed.Load()) }),

		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: "cfkv",
			Subsystem: "badger",
			Name:      "column_families",
			Help:      "Number of column families",
		}, func() float64 { return float64(len(e.ColumnFamilies())) }),
	}

	for _, c := range collectors {
		if err := reg.Register(c); err != nil {
			return err
		}
	}
	return nil
}
