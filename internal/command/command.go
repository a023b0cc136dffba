package command

import "fmt"

// Priority is the drain class of a command. Lower values drain first:
// system lifecycle work precedes player input, which precedes automation.
type Priority uint8

const (
	PrioritySystem Priority = iota
	PriorityPlayer
	PriorityAutomation

	// NumPriorities bounds the valid range; any other value is a
	// construction defect, never a business outcome.
	NumPriorities = 3
)

func (p Priority) Valid() bool { return p < NumPriorities }

func (p Priority) String() string {
	switch p {
	case PrioritySystem:
		return "SYSTEM"
	case PriorityPlayer:
		return "PLAYER"
	case PriorityAutomation:
		return "AUTOMATION"
	default:
		return fmt.Sprintf("PRIORITY(%d)", uint8(p))
	}
}

func ParsePriority(s string) (Priority, error) {
	switch s {
	case "SYSTEM":
		return PrioritySystem, nil
	case "PLAYER":
		return PriorityPlayer, nil
	case "AUTOMATION":
		return PriorityAutomation, nil
	}
	return 0, fmt.Errorf("unknown priority %q", s)
}

// Command is a typed instruction submitted for execution on a simulation
// step. Once admitted to the queue it is immutable and consumed exactly
// once when drained.
type Command struct {
	Type      string
	Priority  Priority
	Payload   any
	Timestamp int64 // unix millis at creation
	Step      int64 // simulation step the producer targeted
	RequestID string
}

// New builds a Command, rejecting malformed priorities up front.
func New(cmdType string, pri Priority, payload any, timestampMs, step int64) (Command, error) {
	if cmdType == "" {
		return Command{}, fmt.Errorf("command type must not be empty")
	}
	if !pri.Valid() {
		return Command{}, fmt.Errorf("command %q: invalid priority %d", cmdType, uint8(pri))
	}
	return Command{
		Type:      cmdType,
		Priority:  pri,
		Payload:   payload,
		Timestamp: timestampMs,
		Step:      step,
	}, nil
}
