package main

import (
	"github.com/hansjm10/Idle-Game-Engine-sub005/internal/authz"
	"github.com/hansjm10/Idle-Game-Engine-sub005/internal/command"
	"github.com/hansjm10/Idle-Game-Engine-sub005/internal/dispatch"
	"github.com/hansjm10/Idle-Game-Engine-sub005/internal/queue"
	"github.com/hansjm10/Idle-Game-Engine-sub005/internal/snapshot"
)

// Engine-level command types. Game systems (production, entities,
// progression) register their own types and policies on top of these.
const (
	CmdPing       = "engine/ping"
	CmdClearQueue = "engine/clear-queue"
	CmdMark       = "engine/mark"
)

func corePolicies() []authz.Policy {
	return []authz.Policy{
		{
			Type:      CmdPing,
			Allowed:   []command.Priority{command.PrioritySystem, command.PriorityPlayer, command.PriorityAutomation},
			Rationale: "liveness probe, harmless from any lane",
		},
		{
			Type:              CmdClearQueue,
			Allowed:           []command.Priority{command.PrioritySystem},
			Rationale:         "destructive maintenance op, system lifecycle only",
			UnauthorizedEvent: "unauthorized_queue_clear",
		},
		{
			Type:      CmdMark,
			Allowed:   []command.Priority{command.PrioritySystem, command.PriorityPlayer},
			Rationale: "operator-visible marker events; automation would flood them",
		},
	}
}

func registerCoreHandlers(d *dispatch.Dispatcher, q *queue.Queue) {
	d.Register(CmdPing, func(_ snapshot.Value, ctx dispatch.Context) error {
		ctx.Events.Publish("engine_pong", map[string]any{"step": ctx.Step})
		return nil
	})

	d.Register(CmdClearQueue, func(_ snapshot.Value, ctx dispatch.Context) error {
		dropped := q.Size()
		q.Clear()
		ctx.Events.Publish("engine_queue_cleared", map[string]any{
			"step":    ctx.Step,
			"dropped": dropped,
		})
		return nil
	})

	d.Register(CmdMark, func(payload snapshot.Value, ctx dispatch.Context) error {
		label := "mark"
		if rec, ok := payload.(*snapshot.Record); ok {
			if v, ok := rec.Get("label"); ok {
				if s, ok := v.(snapshot.String); ok {
					label = string(s)
				}
			}
		}
		ctx.Events.Publish("engine_mark", map[string]any{
			"step":  ctx.Step,
			"label": label,
		})
		return nil
	})
}
