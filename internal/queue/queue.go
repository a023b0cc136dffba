// Package queue implements the priority-bucketed, capacity-bounded holding
// area between command producers and the simulation driver.
package queue

import (
	"fmt"

	"github.com/hansjm10/Idle-Game-Engine-sub005/internal/authz"
	"github.com/hansjm10/Idle-Game-Engine-sub005/internal/command"
	"github.com/hansjm10/Idle-Game-Engine-sub005/internal/snapshot"
	"github.com/hansjm10/Idle-Game-Engine-sub005/internal/telemetry"
)

// Telemetry events emitted on admission.
const (
	EventOverflow = "command_queue_overflow"
	EventDropped  = "command_queue_dropped"
	EventRejected = "command_queue_rejected"
)

const DefaultCapacity = 256

// Entry is a queued command plus its admission sequence number. The
// sequence preserves FIFO order inside a priority bucket no matter how
// arrivals interleave across buckets.
type Entry struct {
	Cmd command.Command
	Seq uint64
}

// Queue authorizes and snapshots commands on admission and hands them to
// the driver in (priority ascending, insertion sequence ascending) order.
// Buckets are owned exclusively by the queue; it is driven from a single
// logical execution context and is not safe for concurrent mutation.
type Queue struct {
	table    *authz.Table
	sink     telemetry.Sink
	capacity int
	seq      uint64
	buckets  [command.NumPriorities][]Entry
}

func New(table *authz.Table, capacity int, sink telemetry.Sink) *Queue {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Queue{table: table, sink: telemetry.OrNop(sink), capacity: capacity}
}

func (q *Queue) Capacity() int { return q.capacity }

// Enqueue admits a command: authorize, snapshot the payload, bucket it,
// then restore the capacity bound if the admission overflowed. Admission
// rejections are telemetered, never returned. A malformed priority or an
// unsupported payload kind panics: both are producer bugs that must not
// reach the queue.
func (q *Queue) Enqueue(cmd command.Command) {
	if !cmd.Priority.Valid() {
		panic(fmt.Sprintf("queue: malformed priority %d for command %q", uint8(cmd.Priority), cmd.Type))
	}
	if !q.table.Allows(cmd.Type, cmd.Priority) {
		q.sink.RecordWarning(q.table.UnauthorizedEvent(cmd.Type), map[string]any{
			"type":     cmd.Type,
			"priority": cmd.Priority.String(),
			"allowed":  q.table.AllowedNames(cmd.Type),
			"reason":   "queue",
		})
		return
	}
	snap, err := snapshot.Snapshot(cmd.Payload)
	if err != nil {
		panic(fmt.Sprintf("queue: command %q: %v", cmd.Type, err))
	}
	cmd.Payload = snap
	q.seq++
	q.buckets[cmd.Priority] = append(q.buckets[cmd.Priority], Entry{Cmd: cmd, Seq: q.seq})
	if q.size() > q.capacity {
		q.evictFor(cmd)
	}
}

// evictFor restores the capacity bound after admitting cmd. The oldest
// entry of the lowest-priority non-empty bucket is evicted — unless that
// bucket is the incoming command's own, in which case the incoming command
// is rejected instead of an older entry of equal or higher priority.
func (q *Queue) evictFor(cmd command.Command) {
	q.sink.RecordWarning(EventOverflow, map[string]any{
		"size":     q.size(),
		"capacity": q.capacity,
		"priority": cmd.Priority.String(),
	})
	for pri := command.NumPriorities - 1; pri >= 0; pri-- {
		b := q.buckets[pri]
		if len(b) == 0 {
			continue
		}
		if command.Priority(pri) == cmd.Priority {
			q.buckets[pri] = b[:len(b)-1]
			q.sink.RecordWarning(EventRejected, map[string]any{
				"type":     cmd.Type,
				"priority": cmd.Priority.String(),
			})
		} else {
			evicted := b[0]
			q.buckets[pri] = b[1:]
			q.sink.RecordWarning(EventDropped, map[string]any{
				"type":     evicted.Cmd.Type,
				"priority": evicted.Cmd.Priority.String(),
				"seq":      evicted.Seq,
			})
		}
		return
	}
}

// DequeueAll drains every bucket SYSTEM, PLAYER, AUTOMATION, FIFO inside
// each, and empties the queue.
func (q *Queue) DequeueAll() []command.Command {
	out := make([]command.Command, 0, q.size())
	for pri := range q.buckets {
		for _, e := range q.buckets[pri] {
			out = append(out, e.Cmd)
		}
		q.buckets[pri] = nil
	}
	return out
}

// DequeueUpToStep drains only entries targeted at step or earlier
// (boundary-exact steps included); later entries keep their relative order
// for a future drain.
func (q *Queue) DequeueUpToStep(step int64) []command.Command {
	out := []command.Command{}
	for pri := range q.buckets {
		var keep []Entry
		for _, e := range q.buckets[pri] {
			if e.Cmd.Step <= step {
				out = append(out, e.Cmd)
			} else {
				keep = append(keep, e)
			}
		}
		q.buckets[pri] = keep
	}
	return out
}

func (q *Queue) Size() int { return q.size() }

func (q *Queue) size() int {
	n := 0
	for pri := range q.buckets {
		n += len(q.buckets[pri])
	}
	return n
}

// Clear empties the queue. It emits no telemetry.
func (q *Queue) Clear() {
	for pri := range q.buckets {
		q.buckets[pri] = nil
	}
}
