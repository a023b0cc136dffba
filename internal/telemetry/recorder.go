package telemetry

import "sync"

type Level string

const (
	LevelError    Level = "error"
	LevelWarning  Level = "warning"
	LevelProgress Level = "progress"
	LevelCounters Level = "counters"
	LevelTick     Level = "tick"
)

// Event is one captured telemetry record.
type Event struct {
	Level    Level
	Event    string
	Data     map[string]any
	Counters map[string]float64
}

// Recorder captures events for assertions in tests.
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *Recorder) record(ev Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
}

func (r *Recorder) RecordError(event string, data map[string]any) {
	r.record(Event{Level: LevelError, Event: event, Data: data})
}

func (r *Recorder) RecordWarning(event string, data map[string]any) {
	r.record(Event{Level: LevelWarning, Event: event, Data: data})
}

func (r *Recorder) RecordProgress(event string, data map[string]any) {
	r.record(Event{Level: LevelProgress, Event: event, Data: data})
}

func (r *Recorder) RecordCounters(event string, counters map[string]float64) {
	r.record(Event{Level: LevelCounters, Event: event, Counters: counters})
}

func (r *Recorder) RecordTick(event string, data map[string]any) {
	r.record(Event{Level: LevelTick, Event: event, Data: data})
}

// Events returns a copy of everything captured so far.
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Event, len(r.events))
	copy(out, r.events)
	return out
}

// ByLevel returns captured events of one level, in order.
func (r *Recorder) ByLevel(level Level) []Event {
	var out []Event
	for _, ev := range r.Events() {
		if ev.Level == level {
			out = append(out, ev)
		}
	}
	return out
}

// Named returns captured events with the given event name, in order.
func (r *Recorder) Named(event string) []Event {
	var out []Event
	for _, ev := range r.Events() {
		if ev.Event == event {
			out = append(out, ev)
		}
	}
	return out
}

func (r *Recorder) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.events)
}
