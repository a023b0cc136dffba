package journal

import (
	"log"
	"time"
)

// Entry is one journaled telemetry event.
type Entry struct {
	AtMs     int64              `json:"at_ms"`
	Level    string             `json:"level"`
	Event    string             `json:"event"`
	Data     map[string]any     `json:"data,omitempty"`
	Counters map[string]float64 `json:"counters,omitempty"`
}

// Sink journals telemetry events through a Writer. Write failures are
// logged, never propagated: telemetry must not take the simulation down.
type Sink struct {
	w     *Writer
	log   *log.Logger
	nowFn func() time.Time
}

func NewSink(w *Writer, logger *log.Logger) *Sink {
	return &Sink{w: w, log: logger, nowFn: time.Now}
}

func (s *Sink) record(level, event string, data map[string]any, counters map[string]float64) {
	e := Entry{
		AtMs:     s.nowFn().UnixMilli(),
		Level:    level,
		Event:    event,
		Data:     data,
		Counters: counters,
	}
	if err := s.w.Write(e); err != nil && s.log != nil {
		s.log.Printf("journal write %s/%s: %v", level, event, err)
	}
}

func (s *Sink) RecordError(event string, data map[string]any) {
	s.record("error", event, data, nil)
}

func (s *Sink) RecordWarning(event string, data map[string]any) {
	s.record("warning", event, data, nil)
}

func (s *Sink) RecordProgress(event string, data map[string]any) {
	s.record("progress", event, data, nil)
}

func (s *Sink) RecordCounters(event string, counters map[string]float64) {
	s.record("counters", event, nil, counters)
}

func (s *Sink) RecordTick(event string, data map[string]any) {
	s.record("tick", event, data, nil)
}
