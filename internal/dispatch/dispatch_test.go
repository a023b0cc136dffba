package dispatch

import (
	"errors"
	"fmt"
	"testing"

	"github.com/hansjm10/Idle-Game-Engine-sub005/internal/authz"
	"github.com/hansjm10/Idle-Game-Engine-sub005/internal/command"
	"github.com/hansjm10/Idle-Game-Engine-sub005/internal/snapshot"
	"github.com/hansjm10/Idle-Game-Engine-sub005/internal/telemetry"
)

func testTable(t *testing.T) *authz.Table {
	t.Helper()
	table, err := authz.NewTable(
		authz.Policy{
			Type:    "prod/toggle",
			Allowed: []command.Priority{command.PrioritySystem, command.PriorityPlayer, command.PriorityAutomation},
		},
		authz.Policy{
			Type:    "save/reset",
			Allowed: []command.Priority{command.PrioritySystem},
		},
	)
	if err != nil {
		t.Fatalf("table: %v", err)
	}
	return table
}

func mustCmd(t *testing.T, typ string, pri command.Priority, payload any) command.Command {
	t.Helper()
	c, err := command.New(typ, pri, payload, 1000, 7)
	if err != nil {
		t.Fatalf("command: %v", err)
	}
	c.RequestID = "req-1"
	return c
}

func TestExecuteSuccess(t *testing.T) {
	rec := &telemetry.Recorder{}
	d := New(testTable(t), rec, nil)

	var got Context
	var seenPayload snapshot.Value
	d.Register("prod/toggle", func(payload snapshot.Value, ctx Context) error {
		got = ctx
		seenPayload = payload
		return nil
	})

	res := d.ExecuteWithResult(mustCmd(t, "prod/toggle", command.PriorityPlayer, map[string]any{"id": "mine_1"}))
	if !res.Success || res.Err != nil {
		t.Fatalf("success expected, got %+v", res)
	}
	if got.Step != 7 || got.Timestamp != 1000 || got.Priority != command.PriorityPlayer || got.RequestID != "req-1" {
		t.Fatalf("unexpected context %+v", got)
	}
	rp, ok := seenPayload.(*snapshot.Record)
	if !ok {
		t.Fatalf("handler payload is %T, want read-only record", seenPayload)
	}
	if v, _ := rp.Get("id"); v.(snapshot.String) != "mine_1" {
		t.Fatalf("payload content lost")
	}
	if rec.Len() != 0 {
		t.Fatalf("successful execution should emit no telemetry, got %d", rec.Len())
	}
}

func TestExecuteUnknownType(t *testing.T) {
	rec := &telemetry.Recorder{}
	d := New(testTable(t), rec, nil)

	res := d.ExecuteWithResult(mustCmd(t, "prod/toggle", command.PrioritySystem, nil))
	if res.Success || res.Err == nil || res.Err.Code != command.CodeUnknownType {
		t.Fatalf("unknown-type failure expected, got %+v", res)
	}
	errs := rec.ByLevel(telemetry.LevelError)
	if len(errs) != 1 || errs[0].Event != EventUnknownType {
		t.Fatalf("expected one unknown-type error event, got %v", errs)
	}
}

func TestExecuteUnauthorizedLive(t *testing.T) {
	rec := &telemetry.Recorder{}
	d := New(testTable(t), rec, nil)
	called := false
	d.Register("save/reset", func(snapshot.Value, Context) error {
		called = true
		return nil
	})

	res := d.ExecuteWithResult(mustCmd(t, "save/reset", command.PriorityPlayer, nil))
	if res.Success || res.Err == nil || res.Err.Code != command.CodeUnauthorized {
		t.Fatalf("unauthorized failure expected, got %+v", res)
	}
	if called {
		t.Fatalf("handler ran for an unauthorized command")
	}
	warns := rec.Named(authz.DefaultUnauthorizedEvent)
	if len(warns) != 1 {
		t.Fatalf("expected one unauthorized warning, got %d", len(warns))
	}
	if warns[0].Data["reason"] != "dispatcher" || warns[0].Data["phase"] != "live" {
		t.Fatalf("unexpected warning data %v", warns[0].Data)
	}
}

func TestExecuteHandlerErrorBecomesExecutionFailed(t *testing.T) {
	rec := &telemetry.Recorder{}
	d := New(testTable(t), rec, nil)
	d.Register("prod/toggle", func(snapshot.Value, Context) error {
		return errors.New("boom")
	})

	res := d.ExecuteWithResult(mustCmd(t, "prod/toggle", command.PriorityPlayer, nil))
	if res.Success || res.Err == nil {
		t.Fatalf("failure expected, got %+v", res)
	}
	if res.Err.Code != command.CodeExecutionFailed || res.Err.Message != "boom" {
		t.Fatalf("unexpected error %+v", res.Err)
	}
	errs := rec.ByLevel(telemetry.LevelError)
	if len(errs) != 1 {
		t.Fatalf("expected exactly one telemetry error, got %d", len(errs))
	}
	if errs[0].Event != EventExecutionFailed || errs[0].Data["message"] != "boom" {
		t.Fatalf("unexpected error event %v", errs[0])
	}
}

func TestExecutePanicRecovered(t *testing.T) {
	rec := &telemetry.Recorder{}
	d := New(testTable(t), rec, nil)
	d.Register("prod/toggle", func(payload snapshot.Value, _ Context) error {
		// A handler mutating its read-only payload is the classic defect.
		payload.(*snapshot.Record).Put("x", snapshot.Int(1))
		return nil
	})

	res := d.ExecuteWithResult(mustCmd(t, "prod/toggle", command.PriorityPlayer, map[string]any{}))
	if res.Success || res.Err == nil || res.Err.Code != command.CodeExecutionFailed {
		t.Fatalf("panic should surface as execution failure, got %+v", res)
	}
	if len(rec.ByLevel(telemetry.LevelError)) != 1 {
		t.Fatalf("expected exactly one telemetry error for the panic")
	}
}

func TestExecuteBusinessErrorPassesThrough(t *testing.T) {
	rec := &telemetry.Recorder{}
	d := New(testTable(t), rec, nil)
	want := &command.Error{
		Code:    "INSUFFICIENT_FUNDS",
		Message: "need 50 gold",
		Details: map[string]any{"have": 10},
	}
	d.Register("prod/toggle", func(snapshot.Value, Context) error {
		return fmt.Errorf("toggling: %w", want)
	})

	res := d.ExecuteWithResult(mustCmd(t, "prod/toggle", command.PriorityPlayer, nil))
	if res.Success || res.Err != want {
		t.Fatalf("business error should pass through untouched, got %+v", res)
	}
	// Business failures are outcomes, not defects.
	if len(rec.ByLevel(telemetry.LevelError)) != 0 {
		t.Fatalf("business failure emitted a telemetry error")
	}
}

func TestHandlerEventsReachSink(t *testing.T) {
	rec := &telemetry.Recorder{}
	d := New(testTable(t), rec, SinkEvents(rec))
	d.Register("prod/toggle", func(_ snapshot.Value, ctx Context) error {
		ctx.Events.Publish("producer_toggled", map[string]any{"id": "mine_1"})
		return nil
	})

	d.Execute(mustCmd(t, "prod/toggle", command.PriorityPlayer, nil))
	events := rec.Named("producer_toggled")
	if len(events) != 1 || events[0].Level != telemetry.LevelProgress {
		t.Fatalf("handler event not published as progress, got %v", events)
	}
}

func TestRegisterValidationAndIntrospection(t *testing.T) {
	d := New(testTable(t), nil, nil)
	func() {
		defer func() {
			if recover() == nil {
				t.Fatalf("empty type registration did not panic")
			}
		}()
		d.Register("", func(snapshot.Value, Context) error { return nil })
	}()
	func() {
		defer func() {
			if recover() == nil {
				t.Fatalf("nil handler registration did not panic")
			}
		}()
		d.Register("prod/toggle", nil)
	}()

	d.Register("prod/toggle", func(snapshot.Value, Context) error { return nil })
	d.Register("save/reset", func(snapshot.Value, Context) error { return nil })
	var seen []string
	d.ForEachHandler(func(cmdType string) { seen = append(seen, cmdType) })
	if len(seen) != 2 || seen[0] != "prod/toggle" || seen[1] != "save/reset" {
		t.Fatalf("unexpected handler listing %v", seen)
	}
}
