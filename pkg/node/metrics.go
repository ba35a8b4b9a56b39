package node

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/robotalks/ftlink/pkg/l0/comm"
)

// Metrics are the counters maintained by a node.
type Metrics struct {
	FramesReceived   *prometheus.CounterVec // labels: op
	FramesSent       *prometheus.CounterVec // labels: op
	FramingErrors    *prometheus.CounterVec // labels: reason
	UnknownOps       prometheus.Counter
	ControllerErrors *prometheus.CounterVec // labels: op
	WriteErrors      prometheus.Counter
	SamplesDropped   prometheus.Counter
	Sampling         prometheus.Gauge
}

// NewMetrics creates the metrics and registers them to reg if not nil.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		FramesReceived: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "ftlink",
			Subsystem: "node",
			Name:      "frames_received_total",
			Help:      "Frames received from the host.",
		}, []string{"op"}),
		FramesSent: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "ftlink",
			Subsystem: "node",
			Name:      "frames_sent_total",
			Help:      "Frames written to the host.",
		}, []string{"op"}),
		FramingErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "ftlink",
			Subsystem: "node",
			Name:      "framing_errors_total",
			Help:      "Received byte sequences dropped as malformed.",
		}, []string{"reason"}),
		UnknownOps: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "ftlink",
			Subsystem: "node",
			Name:      "unknown_ops_total",
			Help:      "Frames with an unsupported opcode, dropped without reply.",
		}),
		ControllerErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "ftlink",
			Subsystem: "node",
			Name:      "controller_errors_total",
			Help:      "Failed controller calls.",
		}, []string{"op"}),
		WriteErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "ftlink",
			Subsystem: "node",
			Name:      "write_errors_total",
			Help:      "Frames failed to be written.",
		}),
		SamplesDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "ftlink",
			Subsystem: "node",
			Name:      "samples_dropped_total",
			Help:      "Samples dropped because the sample queue is full.",
		}),
		Sampling: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "ftlink",
			Subsystem: "node",
			Name:      "sampling",
			Help:      "1 while samples are pushed to the host.",
		}),
	}
	if reg != nil {
		reg.MustRegister(
			m.FramesReceived,
			m.FramesSent,
			m.FramingErrors,
			m.UnknownOps,
			m.ControllerErrors,
			m.WriteErrors,
			m.SamplesDropped,
			m.Sampling,
		)
	}
	return m
}

func (m *Metrics) sent(op comm.Op, err error) {
	if err != nil {
		m.WriteErrors.Inc()
		return
	}
	m.FramesSent.WithLabelValues(op.String()).Inc()
}
