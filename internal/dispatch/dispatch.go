// Package dispatch routes drained commands to their registered handlers.
// Authorization and unknown-type failures are expected recoverable
// outcomes; handler defects are unexpected but still converted into
// recoverable results so one bad handler cannot abort the rest of a batch.
package dispatch

import (
	"errors"
	"fmt"
	"sort"

	"github.com/hansjm10/Idle-Game-Engine-sub005/internal/authz"
	"github.com/hansjm10/Idle-Game-Engine-sub005/internal/command"
	"github.com/hansjm10/Idle-Game-Engine-sub005/internal/snapshot"
	"github.com/hansjm10/Idle-Game-Engine-sub005/internal/telemetry"
)

// Telemetry events emitted at execution.
const (
	EventUnknownType     = "unknown_command_type"
	EventExecutionFailed = "command_execution_failed"
)

// Context carries per-command execution metadata into a handler.
type Context struct {
	Step      int64
	Timestamp int64
	Priority  command.Priority
	RequestID string
	Events    EventPublisher
}

// EventPublisher lets handlers emit simulation events without coupling to a
// concrete bus.
type EventPublisher interface {
	Publish(event string, data map[string]any)
}

type nopEvents struct{}

func (nopEvents) Publish(string, map[string]any) {}

// SinkEvents publishes handler events as telemetry progress records.
func SinkEvents(sink telemetry.Sink) EventPublisher {
	return sinkEvents{sink: telemetry.OrNop(sink)}
}

type sinkEvents struct{ sink telemetry.Sink }

func (s sinkEvents) Publish(event string, data map[string]any) {
	s.sink.RecordProgress(event, data)
}

// Handler executes one command type. A nil error is success; a
// *command.Error is a recoverable business failure passed through
// unchanged; any other error or a panic becomes COMMAND_EXECUTION_FAILED.
type Handler func(payload snapshot.Value, ctx Context) error

// Dispatcher is the per-type handler registry. It re-authorizes every
// command against the same table the queue used before any handler runs.
type Dispatcher struct {
	table    *authz.Table
	sink     telemetry.Sink
	events   EventPublisher
	handlers map[string]Handler
}

func New(table *authz.Table, sink telemetry.Sink, events EventPublisher) *Dispatcher {
	if events == nil {
		events = nopEvents{}
	}
	return &Dispatcher{
		table:    table,
		sink:     telemetry.OrNop(sink),
		events:   events,
		handlers: map[string]Handler{},
	}
}

// Register installs the handler for a command type, replacing any previous
// registration.
func (d *Dispatcher) Register(cmdType string, h Handler) {
	if cmdType == "" || h == nil {
		panic("dispatch: register needs a command type and a handler")
	}
	d.handlers[cmdType] = h
}

// ForEachHandler visits registered command types in sorted order. It is an
// introspection aid, not part of the execution path.
func (d *Dispatcher) ForEachHandler(visit func(cmdType string)) {
	types := make([]string, 0, len(d.handlers))
	for t := range d.handlers {
		types = append(types, t)
	}
	sort.Strings(types)
	for _, t := range types {
		visit(t)
	}
}

// Execute runs the command and discards the result. Failures are still
// recorded to telemetry, so fire-and-forget callers lose nothing
// diagnostic.
func (d *Dispatcher) Execute(cmd command.Command) {
	d.ExecuteWithResult(cmd)
}

// ExecuteWithResult runs the command and returns the normalized outcome. No
// failure mode escapes as a panic.
func (d *Dispatcher) ExecuteWithResult(cmd command.Command) command.Result {
	if !d.table.Allows(cmd.Type, cmd.Priority) {
		d.sink.RecordWarning(d.table.UnauthorizedEvent(cmd.Type), map[string]any{
			"type":     cmd.Type,
			"priority": cmd.Priority.String(),
			"allowed":  d.table.AllowedNames(cmd.Type),
			"reason":   "dispatcher",
			"phase":    "live",
		})
		return command.Fail(command.CodeUnauthorized,
			fmt.Sprintf("%s not allowed at %s priority", cmd.Type, cmd.Priority))
	}
	h, ok := d.handlers[cmd.Type]
	if !ok {
		d.sink.RecordError(EventUnknownType, map[string]any{"type": cmd.Type})
		return command.Fail(command.CodeUnknownType,
			fmt.Sprintf("no handler registered for %q", cmd.Type))
	}
	payload, ok := cmd.Payload.(snapshot.Value)
	if !ok {
		// Commands that bypassed the queue still get a read-only view.
		sv, err := snapshot.Snapshot(cmd.Payload)
		if err != nil {
			d.sink.RecordError(EventExecutionFailed, map[string]any{
				"type":    cmd.Type,
				"message": err.Error(),
			})
			return command.Fail(command.CodeExecutionFailed, err.Error())
		}
		payload = sv
	}
	ctx := Context{
		Step:      cmd.Step,
		Timestamp: cmd.Timestamp,
		Priority:  cmd.Priority,
		RequestID: cmd.RequestID,
		Events:    d.events,
	}
	return d.invoke(h, payload, ctx, cmd.Type)
}

func (d *Dispatcher) invoke(h Handler, payload snapshot.Value, ctx Context, cmdType string) (res command.Result) {
	defer func() {
		if r := recover(); r != nil {
			msg := panicMessage(r)
			d.sink.RecordError(EventExecutionFailed, map[string]any{
				"type":    cmdType,
				"message": msg,
			})
			res = command.Fail(command.CodeExecutionFailed, msg)
		}
	}()
	err := h(payload, ctx)
	if err == nil {
		return command.OK()
	}
	var cerr *command.Error
	if errors.As(err, &cerr) {
		return command.FailErr(cerr)
	}
	d.sink.RecordError(EventExecutionFailed, map[string]any{
		"type":    cmdType,
		"message": err.Error(),
	})
	return command.Fail(command.CodeExecutionFailed, err.Error())
}

func panicMessage(r any) string {
	switch v := r.(type) {
	case error:
		return v.Error()
	case string:
		return v
	default:
		return fmt.Sprintf("%v", v)
	}
}
