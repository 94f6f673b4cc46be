package metrics

import "github.com/prometheus/client_golang/prometheus"

type Observer interface {
	Observe(val float64, labels ...string)

	// for now we will tightly couple to the prometheus collector type
	// the go otel metrics sdk also has a prometheus adapter that implements this interface.
	prometheus.Collector
}

// Metrics is the set of buffer metrics.
// Every observer takes the buffer name as its first label;
// OpLatency additionally takes the operation.
type Metrics struct {
	Pushed    Observer
	Popped    Observer
	Missed    Observer
	Evicted   Observer
	Purged    Observer
	Length    Observer
	OpLatency Observer
}

func (m Metrics) Collectors() []prometheus.Collector {
	return []prometheus.Collector{
		m.Pushed,
		m.Popped,
		m.Missed,
		m.Evicted,
		m.Purged,
		m.Length,
		m.OpLatency,
	}
}

// New creates the buffer metric set under the given Prometheus namespace.
func New(namespace string) *Metrics {
	return &Metrics{
		Pushed: NewPromCounter(
			prometheus.NewCounterVec(
				prometheus.CounterOpts{
					Namespace: namespace,
					Subsystem: "buffer",
					Name:      "pushed",
					Help:      "Number of items pushed.",
				},
				[]string{"buffer"},
			),
		),
		Popped: NewPromCounter(
			prometheus.NewCounterVec(
				prometheus.CounterOpts{
					Namespace: namespace,
					Subsystem: "buffer",
					Name:      "popped",
					Help:      "Number of items popped.",
				},
				[]string{"buffer"},
			),
		),
		Missed: NewPromCounter(
			prometheus.NewCounterVec(
				prometheus.CounterOpts{
					Namespace: namespace,
					Subsystem: "buffer",
					Name:      "missed",
					Help:      "Number of pops and peeks that found no item, including rejections by a predicate.",
				},
				[]string{"buffer"},
			),
		),
		Evicted: NewPromCounter(
			prometheus.NewCounterVec(
				prometheus.CounterOpts{
					Namespace: namespace,
					Subsystem: "buffer",
					Name:      "evicted",
					Help:      "Number of items dropped to make room in a full buffer.",
				},
				[]string{"buffer"},
			),
		),
		Purged: NewPromCounter(
			prometheus.NewCounterVec(
				prometheus.CounterOpts{
					Namespace: namespace,
					Subsystem: "buffer",
					Name:      "purged",
					Help:      "Number of items removed by purges.",
				},
				[]string{"buffer"},
			),
		),
		Length: NewPromGauge(
			prometheus.NewGaugeVec(
				prometheus.GaugeOpts{
					Namespace: namespace,
					Subsystem: "buffer",
					Name:      "length",
					Help:      "Number of items in the buffer after the latest operation.",
				},
				[]string{"buffer"},
			),
		),
		OpLatency: NewPromObserverVec(
			prometheus.NewHistogramVec(
				prometheus.HistogramOpts{
					Buckets:   []float64{1e-7, 5e-7, 1e-6, 5e-6, 1e-5, 1e-4, 1e-3, 1e-2},
					Namespace: namespace,
					Subsystem: "buffer",
					Name:      "op_latency",
					Help:      "How long buffer operations take in seconds, including lock waits.",
				},
				[]string{"buffer", "op"},
			),
		),
	}
}
