// Package idempotency remembers the response given to each (client,
// request) pair for a bounded time, so the transport boundary can answer a
// retried submission with the original outcome instead of re-executing it.
package idempotency

import (
	"sync"
	"time"

	"github.com/hansjm10/Idle-Game-Engine-sub005/internal/protocol"
	"github.com/hansjm10/Idle-Game-Engine-sub005/internal/telemetry"
)

const DefaultTTL = 5 * time.Minute

// Key identifies one client submission across retries.
type Key struct {
	ClientID  string
	RequestID string
}

// Record is one remembered response.
type Record struct {
	Key          Key
	Response     protocol.CommandResponse
	RecordedAtMs int64
}

// Store is an optional durable backing for the registry.
type Store interface {
	Put(rec Record) error
	Load() ([]Record, error)
	Purge(beforeMs int64) error
}

// Registry is the in-memory TTL record of prior responses. Unlike the
// queue, it serves concurrent transport goroutines and locks internally.
type Registry struct {
	ttlMs int64
	sink  telemetry.Sink

	mu      sync.Mutex
	store   Store
	entries map[Key]Record
}

func NewRegistry(ttl time.Duration, sink telemetry.Sink) *Registry {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Registry{
		ttlMs:   ttl.Milliseconds(),
		sink:    telemetry.OrNop(sink),
		entries: map[Key]Record{},
	}
}

// WithStore attaches a durable store and warm-loads whatever it holds, so
// retried submissions keep their answers across a restart.
func (r *Registry) WithStore(st Store) error {
	recs, err := st.Load()
	if err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, rec := range recs {
		r.entries[rec.Key] = rec
	}
	r.store = st
	return nil
}

// Record stores the response for key, overwriting any previous record.
func (r *Registry) Record(key Key, resp protocol.CommandResponse, nowMs int64) {
	rec := Record{Key: key, Response: resp, RecordedAtMs: nowMs}
	r.mu.Lock()
	r.entries[key] = rec
	st := r.store
	r.mu.Unlock()
	if st != nil {
		if err := st.Put(rec); err != nil {
			r.sink.RecordError("idempotency_store_put_failed", map[string]any{
				"client_id":  key.ClientID,
				"request_id": key.RequestID,
				"message":    err.Error(),
			})
		}
	}
}

// Get returns the remembered response, or false when the key is absent or
// its record has expired.
func (r *Registry) Get(key Key, nowMs int64) (protocol.CommandResponse, bool) {
	r.mu.Lock()
	rec, ok := r.entries[key]
	r.mu.Unlock()
	if !ok || r.expired(rec, nowMs) {
		return protocol.CommandResponse{}, false
	}
	return rec.Response, true
}

func (r *Registry) expired(rec Record, nowMs int64) bool {
	return rec.RecordedAtMs+r.ttlMs <= nowMs
}

// PurgeExpired drops expired records and returns how many were removed.
func (r *Registry) PurgeExpired(nowMs int64) int {
	r.mu.Lock()
	n := 0
	for k, rec := range r.entries {
		if r.expired(rec, nowMs) {
			delete(r.entries, k)
			n++
		}
	}
	st := r.store
	r.mu.Unlock()
	if st != nil {
		if err := st.Purge(nowMs - r.ttlMs); err != nil {
			r.sink.RecordError("idempotency_store_purge_failed", map[string]any{
				"message": err.Error(),
			})
		}
	}
	return n
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}
