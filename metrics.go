package docsink

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// MetricsNamespace prefixes every metric exported by the appender.
const MetricsNamespace = "docsink"

// Metrics counts what happens to the events handed to an Appender.
// A nil *Metrics counts nothing.
type Metrics struct {
	EventsAppended   prometheus.Counter // Events stored
	EventsDropped    prometheus.Counter // Events received while the appender was not started
	AppendErrors     prometheus.Counter // Events the store rejected
	RecordingFlushes prometheus.Counter // Recorded histories sent on by a recording appender
}

// NewMetrics creates the appender counters and registers them on reg.
// A nil reg leaves them unregistered.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		EventsAppended: factory.NewCounter(prometheus.CounterOpts{
			Namespace: MetricsNamespace,
			Name:      "events_appended_total",
			Help:      "Number of log events stored.",
		}),
		EventsDropped: factory.NewCounter(prometheus.CounterOpts{
			Namespace: MetricsNamespace,
			Name:      "events_dropped_total",
			Help:      "Number of log events dropped because the appender was not started.",
		}),
		AppendErrors: factory.NewCounter(prometheus.CounterOpts{
			Namespace: MetricsNamespace,
			Name:      "append_errors_total",
			Help:      "Number of log events that failed to be stored.",
		}),
		RecordingFlushes: factory.NewCounter(prometheus.CounterOpts{
			Namespace: MetricsNamespace,
			Name:      "recording_flushes_total",
			Help:      "Number of recorded histories flushed by a recording appender.",
		}),
	}
}

func (m *Metrics) appended() {
	if m != nil {
		m.EventsAppended.Inc()
	}
}

func (m *Metrics) dropped() {
	if m != nil {
		m.EventsDropped.Inc()
	}
}

func (m *Metrics) appendError() {
	if m != nil {
		m.AppendErrors.Inc()
	}
}

func (m *Metrics) recordingFlushes() prometheus.Counter {
	if m == nil {
		return nil
	}
	return m.RecordingFlushes
}
