// Package engine is the simulation driver: it owns the step counter and
// drains the command queue once per step, dispatching in the queue's
// deterministic order. The queue is mutated only from the loop goroutine;
// outside producers hand commands in through Submit.
package engine

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/hansjm10/Idle-Game-Engine-sub005/internal/command"
	"github.com/hansjm10/Idle-Game-Engine-sub005/internal/dispatch"
	"github.com/hansjm10/Idle-Game-Engine-sub005/internal/queue"
	"github.com/hansjm10/Idle-Game-Engine-sub005/internal/telemetry"
)

const (
	EventStep = "engine_step"

	DefaultTickRateHz = 20
	inboxDepth        = 1024
)

type Config struct {
	Queue      *queue.Queue
	Dispatcher *dispatch.Dispatcher
	Sink       telemetry.Sink
	TickRateHz int
	NowFn      func() time.Time
}

type Engine struct {
	queue    *queue.Queue
	disp     *dispatch.Dispatcher
	sink     telemetry.Sink
	tickRate int
	nowFn    func() time.Time

	step  atomic.Int64
	inbox chan command.Command
}

func New(cfg Config) *Engine {
	e := &Engine{
		queue:    cfg.Queue,
		disp:     cfg.Dispatcher,
		sink:     telemetry.OrNop(cfg.Sink),
		tickRate: cfg.TickRateHz,
		nowFn:    cfg.NowFn,
	}
	if e.tickRate <= 0 {
		e.tickRate = DefaultTickRateHz
	}
	if e.nowFn == nil {
		e.nowFn = time.Now
	}
	e.inbox = make(chan command.Command, inboxDepth)
	return e
}

// Step reports the current simulation step.
func (e *Engine) Step() int64 { return e.step.Load() }

// Submit hands a producer command to the simulation loop. Admission happens
// between steps on the loop goroutine, never concurrently with a drain.
func (e *Engine) Submit(ctx context.Context, cmd command.Command) error {
	select {
	case e.inbox <- cmd:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// StepOnce advances one simulation step: everything targeted at this step
// or earlier is drained and executed. Results come back in drain order.
func (e *Engine) StepOnce() []command.Result {
	step := e.step.Add(1)
	start := e.nowFn()
	cmds := e.queue.DequeueUpToStep(step)
	results := make([]command.Result, 0, len(cmds))
	failed := 0
	for _, cmd := range cmds {
		res := e.disp.ExecuteWithResult(cmd)
		if !res.Success {
			failed++
		}
		results = append(results, res)
	}
	e.sink.RecordTick(EventStep, map[string]any{
		"step":        step,
		"commands":    len(cmds),
		"failed":      failed,
		"duration_ms": float64(e.nowFn().Sub(start).Microseconds()) / 1000.0,
	})
	if len(cmds) > 0 {
		e.sink.RecordCounters("engine_commands", map[string]float64{
			"executed": float64(len(cmds)),
			"failed":   float64(failed),
		})
	}
	return results
}

// Run drives StepOnce at the configured tick rate until ctx ends, admitting
// submitted commands between steps.
func (e *Engine) Run(ctx context.Context) error {
	interval := time.Second / time.Duration(e.tickRate)
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case cmd := <-e.inbox:
			e.queue.Enqueue(cmd)
		case <-t.C:
			e.drainInbox()
			e.StepOnce()
		}
	}
}

func (e *Engine) drainInbox() {
	for {
		select {
		case cmd := <-e.inbox:
			e.queue.Enqueue(cmd)
		default:
			return
		}
	}
}
