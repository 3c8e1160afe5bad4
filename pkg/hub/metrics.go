package hub

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type metricsSet struct {
	dispatches     *prometheus.CounterVec
	decodeFailures prometheus.Counter
	unknownKinds   prometheus.Counter
	panics         prometheus.Counter
}

var (
	metricsOnce sync.Once
	metrics     *metricsSet
)

// getMetrics returns the process-wide hub metrics, registering them on
// first use.
func getMetrics() *metricsSet {
	metricsOnce.Do(func() {
		factory := promauto.With(prometheus.DefaultRegisterer)
		metrics = &metricsSet{
			dispatches: factory.NewCounterVec(prometheus.CounterOpts{
				Namespace: "meet",
				Subsystem: "hub",
				Name:      "dispatches_total",
				Help:      "Publications dispatched to the store, by message kind.",
			}, []string{"kind"}),
			decodeFailures: factory.NewCounter(prometheus.CounterOpts{
				Namespace: "meet",
				Subsystem: "hub",
				Name:      "decode_failures_total",
				Help:      "Publications dropped because the envelope failed to decode.",
			}),
			unknownKinds: factory.NewCounter(prometheus.CounterOpts{
				Namespace: "meet",
				Subsystem: "hub",
				Name:      "unknown_kinds_total",
				Help:      "Publications skipped because the message kind is not handled.",
			}),
			panics: factory.NewCounter(prometheus.CounterOpts{
				Namespace: "meet",
				Subsystem: "hub",
				Name:      "handler_panics_total",
				Help:      "Panics recovered while applying a publication.",
			}),
		}
	})
	return metrics
}
