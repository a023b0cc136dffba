package engine

import (
	"context"
	"testing"
	"time"

	"github.com/hansjm10/Idle-Game-Engine-sub005/internal/authz"
	"github.com/hansjm10/Idle-Game-Engine-sub005/internal/command"
	"github.com/hansjm10/Idle-Game-Engine-sub005/internal/dispatch"
	"github.com/hansjm10/Idle-Game-Engine-sub005/internal/queue"
	"github.com/hansjm10/Idle-Game-Engine-sub005/internal/snapshot"
	"github.com/hansjm10/Idle-Game-Engine-sub005/internal/telemetry"
)

func testEngine(t *testing.T, rec telemetry.Sink) (*Engine, *queue.Queue, *[]string) {
	t.Helper()
	table := authz.MustTable(
		authz.Policy{
			Type:    "mark",
			Allowed: []command.Priority{command.PrioritySystem, command.PriorityPlayer, command.PriorityAutomation},
		},
	)
	q := queue.New(table, 16, rec)
	disp := dispatch.New(table, rec, nil)
	var ran []string
	disp.Register("mark", func(payload snapshot.Value, _ dispatch.Context) error {
		label, _ := payload.(*snapshot.Record).Get("label")
		ran = append(ran, string(label.(snapshot.String)))
		return nil
	})
	e := New(Config{Queue: q, Dispatcher: disp, Sink: rec, TickRateHz: 100})
	return e, q, &ran
}

func mark(t *testing.T, label string, pri command.Priority, step int64) command.Command {
	t.Helper()
	c, err := command.New("mark", pri, map[string]any{"label": label}, 0, step)
	if err != nil {
		t.Fatalf("command: %v", err)
	}
	return c
}

func TestStepOnceDrainsDueCommandsInOrder(t *testing.T) {
	rec := &telemetry.Recorder{}
	e, q, ran := testEngine(t, rec)

	q.Enqueue(mark(t, "auto", command.PriorityAutomation, 1))
	q.Enqueue(mark(t, "player", command.PriorityPlayer, 1))
	q.Enqueue(mark(t, "system", command.PrioritySystem, 1))
	q.Enqueue(mark(t, "later", command.PriorityPlayer, 2))

	results := e.StepOnce()
	if e.Step() != 1 {
		t.Fatalf("step = %d", e.Step())
	}
	if len(results) != 3 {
		t.Fatalf("executed %d commands, want 3", len(results))
	}
	for i, r := range results {
		if !r.Success {
			t.Fatalf("result %d failed: %+v", i, r)
		}
	}
	want := []string{"system", "player", "auto"}
	for i := range want {
		if (*ran)[i] != want[i] {
			t.Fatalf("execution order = %v, want %v", *ran, want)
		}
	}

	// The step-2 command was not touched; the next step picks it up.
	results = e.StepOnce()
	if len(results) != 1 || len(*ran) != 4 || (*ran)[3] != "later" {
		t.Fatalf("deferred command mishandled: %v", *ran)
	}

	ticks := rec.Named(EventStep)
	if len(ticks) != 2 {
		t.Fatalf("recorded %d step ticks", len(ticks))
	}
	if ticks[0].Data["commands"] != 3 || ticks[0].Data["failed"] != 0 {
		t.Fatalf("unexpected tick data %v", ticks[0].Data)
	}
}

func TestStepOnceCountsFailures(t *testing.T) {
	rec := &telemetry.Recorder{}

	// No handler for this type at execution time: the table allows it, so
	// it passes admission and fails in the dispatcher.
	table := authz.MustTable(
		authz.Policy{
			Type:    "ghost",
			Allowed: []command.Priority{command.PrioritySystem},
		},
	)
	q := queue.New(table, 16, rec)
	disp := dispatch.New(table, rec, nil)
	e := New(Config{Queue: q, Dispatcher: disp, Sink: rec})

	c, err := command.New("ghost", command.PrioritySystem, nil, 0, 1)
	if err != nil {
		t.Fatalf("command: %v", err)
	}
	q.Enqueue(c)
	results := e.StepOnce()
	if len(results) != 1 || results[0].Success {
		t.Fatalf("expected one failure, got %+v", results)
	}
	counters := rec.ByLevel(telemetry.LevelCounters)
	if len(counters) != 1 || counters[0].Counters["failed"] != 1 {
		t.Fatalf("failure not counted: %v", counters)
	}
}

func TestRunAdmitsSubmittedCommands(t *testing.T) {
	table := authz.MustTable(
		authz.Policy{
			Type:    "mark",
			Allowed: []command.Priority{command.PriorityPlayer},
		},
	)
	q := queue.New(table, 16, nil)
	disp := dispatch.New(table, nil, nil)
	executed := make(chan string, 1)
	disp.Register("mark", func(payload snapshot.Value, _ dispatch.Context) error {
		label, _ := payload.(*snapshot.Record).Get("label")
		executed <- string(label.(snapshot.String))
		return nil
	})
	e := New(Config{Queue: q, Dispatcher: disp, TickRateHz: 100})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- e.Run(ctx) }()

	if err := e.Submit(ctx, mark(t, "from-transport", command.PriorityPlayer, 0)); err != nil {
		t.Fatalf("submit: %v", err)
	}
	select {
	case label := <-executed:
		if label != "from-transport" {
			t.Fatalf("wrong command executed: %q", label)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("submitted command never executed")
	}
	cancel()
	if err := <-done; err != context.Canceled {
		t.Fatalf("run returned %v", err)
	}
}

func TestSubmitHonorsContext(t *testing.T) {
	e, _, _ := testEngine(t, nil)
	// Fill the inbox so the next submit must block, then cancel.
	for {
		ctx, cancel := context.WithTimeout(context.Background(), time.Millisecond)
		err := e.Submit(ctx, mark(t, "x", command.PriorityPlayer, 0))
		cancel()
		if err != nil {
			if err != context.DeadlineExceeded {
				t.Fatalf("unexpected submit error %v", err)
			}
			return
		}
	}
}
