// Package obs holds the Prometheus instrumentation for the joint nested
// ragged tensor dictionary engine, adapted from the teacher's own
// internal/obs/metrics.go: the same promauto counter/histogram/gauge
// pattern, renamed to the operations this engine actually performs
// (construction, slice, concat, densify) instead of vector search.
package obs

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds every metric this package exports.
type Metrics struct {
	Constructions  prometheus.Counter
	SliceOps       prometheus.Counter
	ConcatOps      prometheus.Counter
	DensifyOps     prometheus.Counter
	DensifyErrors  prometheus.Counter
	DensifyLatency prometheus.Histogram
	MmapBytesLive  prometheus.Gauge
	FilesOpen      prometheus.Gauge
}

var (
	once     sync.Once
	instance *Metrics
)

// NewMetrics returns the process-wide Metrics instance, registering its
// collectors with the default Prometheus registry on first call. Unlike the
// teacher's NewMetrics (trusted to be called at most once per Database),
// this engine can be constructed many times in one process, so
// registration is memoized rather than repeated.
func NewMetrics() *Metrics {
	once.Do(func() {
		instance = &Metrics{
			Constructions: promauto.NewCounter(prometheus.CounterOpts{
				Name: "jnrtd_constructions_total",
				Help: "Total JNRTD dictionaries constructed from raw nested lists.",
			}),
			SliceOps: promauto.NewCounter(prometheus.CounterOpts{
				Name: "jnrtd_slice_ops_total",
				Help: "Total slice/index operations executed.",
			}),
			ConcatOps: promauto.NewCounter(prometheus.CounterOpts{
				Name: "jnrtd_concat_ops_total",
				Help: "Total concatenate/stack operations executed.",
			}),
			DensifyOps: promauto.NewCounter(prometheus.CounterOpts{
				Name: "jnrtd_densify_ops_total",
				Help: "Total to_dense materializations.",
			}),
			DensifyErrors: promauto.NewCounter(prometheus.CounterOpts{
				Name: "jnrtd_densify_errors_total",
				Help: "Total to_dense materializations that failed.",
			}),
			DensifyLatency: promauto.NewHistogram(prometheus.HistogramOpts{
				Name: "jnrtd_densify_latency_seconds",
				Help: "Latency of to_dense materializations.",
			}),
			MmapBytesLive: promauto.NewGauge(prometheus.GaugeOpts{
				Name: "jnrtd_mmap_bytes_live",
				Help: "Bytes currently mapped from open tensorstore files.",
			}),
			FilesOpen: promauto.NewGauge(prometheus.GaugeOpts{
				Name: "jnrtd_tensorstore_files_open",
				Help: "Number of tensorstore files currently memory-mapped.",
			}),
		}
	})
	return instance
}
