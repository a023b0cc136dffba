// Package protocol defines the transport boundary: the wire form of
// commands and the responses clients get for submitting them. The core
// queue and dispatcher never see these types; the gateway converts at the
// edge.
package protocol

import (
	"encoding/json"
	"fmt"

	"github.com/hansjm10/Idle-Game-Engine-sub005/internal/command"
)

const Version = "1.0"

// Frame types on the command gateway socket.
const (
	TypeHello    = "HELLO"
	TypeWelcome  = "WELCOME"
	TypeCommand  = "CMD"
	TypeResponse = "RESP"
)

// Response statuses.
const (
	StatusAccepted  = "accepted"
	StatusRejected  = "rejected"
	StatusDuplicate = "duplicate"
)

// Transport-level error code, distinct from command result codes.
const ErrProtoBadRequest = "E_PROTO_BAD_REQUEST"

// BaseMessage lets us route unknown JSON frames by type.
type BaseMessage struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version,omitempty"`
}

func DecodeBase(b []byte) (BaseMessage, error) {
	var m BaseMessage
	err := json.Unmarshal(b, &m)
	return m, err
}

// HelloMsg opens a gateway session and names the client for idempotency.
type HelloMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version,omitempty"`
	ClientID        string `json:"client_id"`
}

type WelcomeMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	ClientID        string `json:"client_id"`
	ServerStep      int64  `json:"server_step"`
}

// SerializedCommand is the wire form of a command: plain data only, so it
// survives any JSON transport unchanged.
type SerializedCommand struct {
	Type      string          `json:"type"`
	Priority  string          `json:"priority"`
	Timestamp int64           `json:"timestamp,omitempty"`
	Step      int64           `json:"step,omitempty"`
	Payload   json.RawMessage `json:"payload,omitempty"`
	RequestID string          `json:"request_id,omitempty"`
}

// CommandMsg is the CMD frame envelope.
type CommandMsg struct {
	Type            string            `json:"type"`
	ProtocolVersion string            `json:"protocol_version,omitempty"`
	Command         SerializedCommand `json:"command"`
}

// CommandResponse answers one submitted command.
type CommandResponse struct {
	Type       string         `json:"type"`
	RequestID  string         `json:"request_id"`
	Status     string         `json:"status"`
	ServerStep int64          `json:"server_step"`
	Error      *command.Error `json:"error,omitempty"`
}

// DecodeCommand validates a CMD frame against the embedded schema before
// trusting any field, then unmarshals it.
func DecodeCommand(b []byte) (SerializedCommand, error) {
	var doc any
	if err := json.Unmarshal(b, &doc); err != nil {
		return SerializedCommand{}, fmt.Errorf("%s: %w", ErrProtoBadRequest, err)
	}
	if err := commandSchema.Validate(doc); err != nil {
		return SerializedCommand{}, fmt.Errorf("%s: %v", ErrProtoBadRequest, err)
	}
	var msg CommandMsg
	if err := json.Unmarshal(b, &msg); err != nil {
		return SerializedCommand{}, fmt.Errorf("%s: %w", ErrProtoBadRequest, err)
	}
	return msg.Command, nil
}

// ToCommand converts the wire form into a runtime command. The payload is
// decoded to plain data; the queue snapshots it at admission.
func (sc SerializedCommand) ToCommand() (command.Command, error) {
	pri, err := command.ParsePriority(sc.Priority)
	if err != nil {
		return command.Command{}, fmt.Errorf("%s: %w", ErrProtoBadRequest, err)
	}
	var payload any
	if len(sc.Payload) > 0 {
		if err := json.Unmarshal(sc.Payload, &payload); err != nil {
			return command.Command{}, fmt.Errorf("%s: payload: %w", ErrProtoBadRequest, err)
		}
	}
	cmd, err := command.New(sc.Type, pri, payload, sc.Timestamp, sc.Step)
	if err != nil {
		return command.Command{}, fmt.Errorf("%s: %w", ErrProtoBadRequest, err)
	}
	cmd.RequestID = sc.RequestID
	return cmd, nil
}

// FromCommand serializes a runtime command for the wire. Only plain-data
// payloads are serializable; snapshots live behind the admission boundary.
func FromCommand(cmd command.Command) (SerializedCommand, error) {
	var raw json.RawMessage
	if cmd.Payload != nil {
		b, err := json.Marshal(cmd.Payload)
		if err != nil {
			return SerializedCommand{}, err
		}
		raw = b
	}
	return SerializedCommand{
		Type:      cmd.Type,
		Priority:  cmd.Priority.String(),
		Timestamp: cmd.Timestamp,
		Step:      cmd.Step,
		Payload:   raw,
		RequestID: cmd.RequestID,
	}, nil
}
