// Package telemetry is the pluggable destination for structured operational
// events. Runtime components depend on the Sink interface only; the default
// implementation drops everything, so telemetry never becomes a hard
// dependency of the simulation core.
package telemetry

import "sync/atomic"

// Sink receives structured events. Implementations must be safe for
// concurrent use; the core calls them from the simulation loop and the
// transport boundary calls them from connection goroutines.
type Sink interface {
	RecordError(event string, data map[string]any)
	RecordWarning(event string, data map[string]any)
	RecordProgress(event string, data map[string]any)
	RecordCounters(event string, counters map[string]float64)
	RecordTick(event string, data map[string]any)
}

// Nop discards every event. It is the default sink.
type Nop struct{}

func (Nop) RecordError(string, map[string]any)        {}
func (Nop) RecordWarning(string, map[string]any)      {}
func (Nop) RecordProgress(string, map[string]any)     {}
func (Nop) RecordCounters(string, map[string]float64) {}
func (Nop) RecordTick(string, map[string]any)         {}

// OrNop returns s, or the no-op sink when s is nil. Constructors use it so
// callers can skip telemetry wiring entirely.
func OrNop(s Sink) Sink {
	if s == nil {
		return Nop{}
	}
	return s
}

type holder struct{ s Sink }

var current atomic.Value // holder

func init() { current.Store(holder{Nop{}}) }

// Install swaps the process-wide sink and returns a func restoring the
// previous one. Components prefer an injected Sink; the global exists for
// boundary code that has nothing to thread one through.
func Install(s Sink) (restore func()) {
	prev := Current()
	current.Store(holder{OrNop(s)})
	return func() { current.Store(holder{prev}) }
}

// Reset restores the no-op default.
func Reset() { current.Store(holder{Nop{}}) }

// Current returns the installed process-wide sink.
func Current() Sink { return current.Load().(holder).s }

// Multi fans every event out to each sink in order.
type Multi []Sink

func (m Multi) RecordError(event string, data map[string]any) {
	for _, s := range m {
		s.RecordError(event, data)
	}
}

func (m Multi) RecordWarning(event string, data map[string]any) {
	for _, s := range m {
		s.RecordWarning(event, data)
	}
}

func (m Multi) RecordProgress(event string, data map[string]any) {
	for _, s := range m {
		s.RecordProgress(event, data)
	}
}

func (m Multi) RecordCounters(event string, counters map[string]float64) {
	for _, s := range m {
		s.RecordCounters(event, counters)
	}
}

func (m Multi) RecordTick(event string, data map[string]any) {
	for _, s := range m {
		s.RecordTick(event, data)
	}
}
