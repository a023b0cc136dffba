package telemetry

import (
	"encoding/json"
	"log"
)

// Logger writes events through a stdlib *log.Logger, one line per event.
type Logger struct {
	l *log.Logger
}

func NewLogger(l *log.Logger) *Logger { return &Logger{l: l} }

func (s *Logger) line(level, event string, v any) {
	if s.l == nil {
		return
	}
	b, err := json.Marshal(v)
	if err != nil {
		s.l.Printf("%s %s (unencodable data: %v)", level, event, err)
		return
	}
	s.l.Printf("%s %s %s", level, event, b)
}

func (s *Logger) RecordError(event string, data map[string]any)   { s.line("ERROR", event, data) }
func (s *Logger) RecordWarning(event string, data map[string]any) { s.line("WARN", event, data) }
func (s *Logger) RecordProgress(event string, data map[string]any) {
	s.line("PROGRESS", event, data)
}
func (s *Logger) RecordCounters(event string, counters map[string]float64) {
	s.line("COUNTERS", event, counters)
}
func (s *Logger) RecordTick(event string, data map[string]any) { s.line("TICK", event, data) }
