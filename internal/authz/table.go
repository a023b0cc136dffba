// Package authz holds the static command authorization table. The queue
// consults it at admission and the dispatcher again at execution; the
// duplication is deliberate defense in depth, so a command that somehow
// bypasses the queue is still stopped before a handler runs.
package authz

import (
	"errors"
	"fmt"
	"sort"

	"github.com/hansjm10/Idle-Game-Engine-sub005/internal/command"
)

// DefaultUnauthorizedEvent is recorded when a policy does not name its own
// distinguished event.
const DefaultUnauthorizedEvent = "command_unauthorized"

// Policy states which priority lanes may submit one command type, why, and
// optionally the telemetry event to record when the check fails.
type Policy struct {
	Type              string
	Allowed           []command.Priority
	Rationale         string
	UnauthorizedEvent string
}

func (p Policy) Allows(pri command.Priority) bool {
	for _, a := range p.Allowed {
		if a == pri {
			return true
		}
	}
	return false
}

// AllowedNames returns the allowed set as priority names, for telemetry.
func (p Policy) AllowedNames() []string {
	out := make([]string, len(p.Allowed))
	for i, a := range p.Allowed {
		out[i] = a.String()
	}
	return out
}

// Table is the static, read-only authorization table: exactly one policy
// per known command type, each with a non-empty allowed set.
type Table struct {
	policies map[string]Policy
}

func NewTable(policies ...Policy) (*Table, error) {
	m := make(map[string]Policy, len(policies))
	for _, p := range policies {
		if p.Type == "" {
			return nil, errors.New("authz: policy with empty command type")
		}
		if len(p.Allowed) == 0 {
			return nil, fmt.Errorf("authz: policy %q has an empty allowed set", p.Type)
		}
		for _, pri := range p.Allowed {
			if !pri.Valid() {
				return nil, fmt.Errorf("authz: policy %q allows invalid priority %d", p.Type, uint8(pri))
			}
		}
		if _, dup := m[p.Type]; dup {
			return nil, fmt.Errorf("authz: duplicate policy for %q", p.Type)
		}
		m[p.Type] = p
	}
	return &Table{policies: m}, nil
}

// MustTable is NewTable for statically declared policy sets.
func MustTable(policies ...Policy) *Table {
	t, err := NewTable(policies...)
	if err != nil {
		panic(err.Error())
	}
	return t
}

func (t *Table) Policy(cmdType string) (Policy, bool) {
	p, ok := t.policies[cmdType]
	return p, ok
}

// Allows reports whether cmdType may be submitted at pri. A type with no
// policy is never authorized.
func (t *Table) Allows(cmdType string, pri command.Priority) bool {
	p, ok := t.policies[cmdType]
	return ok && p.Allows(pri)
}

// UnauthorizedEvent returns the policy's distinguished event name, or the
// generic fallback when the policy has none (or does not exist).
func (t *Table) UnauthorizedEvent(cmdType string) string {
	if p, ok := t.policies[cmdType]; ok && p.UnauthorizedEvent != "" {
		return p.UnauthorizedEvent
	}
	return DefaultUnauthorizedEvent
}

// AllowedNames returns the allowed set for cmdType as priority names, or
// nil when no policy exists.
func (t *Table) AllowedNames(cmdType string) []string {
	p, ok := t.policies[cmdType]
	if !ok {
		return nil
	}
	return p.AllowedNames()
}

// Types returns every known command type in sorted order.
func (t *Table) Types() []string {
	out := make([]string, 0, len(t.policies))
	for k := range t.policies {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
