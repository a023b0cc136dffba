package telemetry

import "github.com/prometheus/client_golang/prometheus"

// PromSink mirrors telemetry events into Prometheus metrics so operators
// can alert on error/warning rates without consuming the journal.
type PromSink struct {
	errors   *prometheus.CounterVec
	warnings *prometheus.CounterVec
	progress *prometheus.CounterVec
	counters *prometheus.CounterVec
	ticks    prometheus.Counter
	step     prometheus.Gauge
}

func NewPromSink(reg prometheus.Registerer) *PromSink {
	s := &PromSink{
		errors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "runtime_telemetry_errors_total",
			Help: "Telemetry error events by event name.",
		}, []string{"event"}),
		warnings: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "runtime_telemetry_warnings_total",
			Help: "Telemetry warning events by event name.",
		}, []string{"event"}),
		progress: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "runtime_telemetry_progress_total",
			Help: "Telemetry progress events by event name.",
		}, []string{"event"}),
		counters: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "runtime_telemetry_counter_total",
			Help: "Telemetry counter values by event and counter name.",
		}, []string{"event", "name"}),
		ticks: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "runtime_steps_total",
			Help: "Simulation steps executed.",
		}),
		step: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "runtime_current_step",
			Help: "Current simulation step.",
		}),
	}
	if reg != nil {
		reg.MustRegister(s.errors, s.warnings, s.progress, s.counters, s.ticks, s.step)
	}
	return s
}

func (s *PromSink) RecordError(event string, _ map[string]any) {
	s.errors.WithLabelValues(event).Inc()
}

func (s *PromSink) RecordWarning(event string, _ map[string]any) {
	s.warnings.WithLabelValues(event).Inc()
}

func (s *PromSink) RecordProgress(event string, _ map[string]any) {
	s.progress.WithLabelValues(event).Inc()
}

func (s *PromSink) RecordCounters(event string, counters map[string]float64) {
	for name, v := range counters {
		if v < 0 {
			continue
		}
		s.counters.WithLabelValues(event, name).Add(v)
	}
}

func (s *PromSink) RecordTick(_ string, data map[string]any) {
	s.ticks.Inc()
	if v, ok := data["step"].(int64); ok {
		s.step.Set(float64(v))
	}
}
