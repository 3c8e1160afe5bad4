package transport

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// metrics holds the Prometheus collectors for the transport. One shared
// instance serves every Client in the process; per-channel cardinality is
// deliberately avoided.
type metricsSet struct {
	framesReceived *prometheus.CounterVec
	bytesReceived  prometheus.Counter
	bytesSent      prometheus.Counter
	reconnects     prometheus.Counter
	frameErrors    prometheus.Counter
	state          prometheus.Gauge
}

var (
	globalMetrics     *metricsSet
	globalMetricsOnce sync.Once
)

// getMetrics returns the process-wide transport metrics, registering them
// with the default registerer on first use.
func getMetrics() *metricsSet {
	globalMetricsOnce.Do(func() {
		factory := promauto.With(prometheus.DefaultRegisterer)
		globalMetrics = &metricsSet{
			framesReceived: factory.NewCounterVec(prometheus.CounterOpts{
				Namespace: "meet",
				Subsystem: "transport",
				Name:      "frames_received_total",
				Help:      "Frames received from the signaling server, by frame type.",
			}, []string{"type"}),
			bytesReceived: factory.NewCounter(prometheus.CounterOpts{
				Namespace: "meet",
				Subsystem: "transport",
				Name:      "bytes_received_total",
				Help:      "Bytes received from the signaling server.",
			}),
			bytesSent: factory.NewCounter(prometheus.CounterOpts{
				Namespace: "meet",
				Subsystem: "transport",
				Name:      "bytes_sent_total",
				Help:      "Bytes sent to the signaling server.",
			}),
			reconnects: factory.NewCounter(prometheus.CounterOpts{
				Namespace: "meet",
				Subsystem: "transport",
				Name:      "reconnects_total",
				Help:      "Reconnect attempts after an established connection dropped.",
			}),
			frameErrors: factory.NewCounter(prometheus.CounterOpts{
				Namespace: "meet",
				Subsystem: "transport",
				Name:      "frame_errors_total",
				Help:      "Frames dropped because they failed to decode.",
			}),
			state: factory.NewGauge(prometheus.GaugeOpts{
				Namespace: "meet",
				Subsystem: "transport",
				Name:      "connection_state",
				Help:      "Current connection state (0 disconnected, 1 connecting, 2 connected, 3 subscribed).",
			}),
		}
	})
	return globalMetrics
}
