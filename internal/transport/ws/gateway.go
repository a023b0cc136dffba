// Package ws bridges websocket clients into the command pipeline. The
// gateway owns the transport-side concerns the queue does not: wire
// validation, idempotent retry answers, and per-submission responses.
package ws

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/hansjm10/Idle-Game-Engine-sub005/internal/authz"
	"github.com/hansjm10/Idle-Game-Engine-sub005/internal/command"
	"github.com/hansjm10/Idle-Game-Engine-sub005/internal/idempotency"
	"github.com/hansjm10/Idle-Game-Engine-sub005/internal/protocol"
	"github.com/hansjm10/Idle-Game-Engine-sub005/internal/telemetry"
)

const (
	handshakeTimeout = 10 * time.Second
	readTimeout      = 60 * time.Second
	writeTimeout     = 5 * time.Second
)

// EnqueueFunc delivers an admitted command to the simulation loop.
type EnqueueFunc func(ctx context.Context, cmd command.Command) error

type Config struct {
	Enqueue  EnqueueFunc
	Table    *authz.Table
	Registry *idempotency.Registry
	Sink     telemetry.Sink
	Logger   *log.Logger
	StepFn   func() int64 // current simulation step, for response stamping
	NowFn    func() time.Time
}

type Gateway struct {
	enqueue  EnqueueFunc
	table    *authz.Table
	registry *idempotency.Registry
	sink     telemetry.Sink
	log      *log.Logger
	stepFn   func() int64
	nowFn    func() time.Time
	upgrader websocket.Upgrader
}

func NewGateway(cfg Config) *Gateway {
	g := &Gateway{
		enqueue:  cfg.Enqueue,
		table:    cfg.Table,
		registry: cfg.Registry,
		sink:     telemetry.OrNop(cfg.Sink),
		log:      cfg.Logger,
		stepFn:   cfg.StepFn,
		nowFn:    cfg.NowFn,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  32 * 1024,
			WriteBufferSize: 32 * 1024,
			CheckOrigin:     func(r *http.Request) bool { return true }, // dev default
		},
	}
	if g.log == nil {
		g.log = log.Default()
	}
	if g.stepFn == nil {
		g.stepFn = func() int64 { return 0 }
	}
	if g.nowFn == nil {
		g.nowFn = time.Now
	}
	return g
}

func (g *Gateway) Handler() http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		conn, err := g.upgrader.Upgrade(rw, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		clientID, ok := g.handshake(conn)
		if !ok {
			return
		}

		for {
			_ = conn.SetReadDeadline(g.nowFn().Add(readTimeout))
			_, msg, err := conn.ReadMessage()
			if err != nil {
				return
			}
			resp := g.Submit(r.Context(), clientID, msg)
			b, err := json.Marshal(resp)
			if err != nil {
				g.log.Printf("ws: encode response: %v", err)
				return
			}
			_ = conn.SetWriteDeadline(g.nowFn().Add(writeTimeout))
			if err := conn.WriteMessage(websocket.TextMessage, b); err != nil {
				return
			}
		}
	}
}

// handshake reads the HELLO frame, assigns a client id when the client
// omitted one, and answers with WELCOME.
func (g *Gateway) handshake(conn *websocket.Conn) (string, bool) {
	_ = conn.SetReadDeadline(g.nowFn().Add(handshakeTimeout))
	_, raw, err := conn.ReadMessage()
	if err != nil {
		return "", false
	}
	var hello protocol.HelloMsg
	if err := json.Unmarshal(raw, &hello); err != nil || hello.Type != protocol.TypeHello {
		return "", false
	}
	clientID := strings.TrimSpace(hello.ClientID)
	if clientID == "" {
		clientID = uuid.NewString()
	}
	welcome := protocol.WelcomeMsg{
		Type:            protocol.TypeWelcome,
		ProtocolVersion: protocol.Version,
		ClientID:        clientID,
		ServerStep:      g.stepFn(),
	}
	b, err := json.Marshal(welcome)
	if err != nil {
		return "", false
	}
	_ = conn.SetWriteDeadline(g.nowFn().Add(writeTimeout))
	if err := conn.WriteMessage(websocket.TextMessage, b); err != nil {
		return "", false
	}
	return clientID, true
}

// Submit processes one raw CMD frame for clientID and returns the response
// to send. It is transport-agnostic so the admission decisions are testable
// without a live socket.
func (g *Gateway) Submit(ctx context.Context, clientID string, raw []byte) protocol.CommandResponse {
	nowMs := g.nowFn().UnixMilli()
	sc, err := protocol.DecodeCommand(raw)
	if err != nil {
		return g.rejected("", protocol.ErrProtoBadRequest, err.Error())
	}
	if sc.RequestID == "" {
		sc.RequestID = uuid.NewString()
	}
	key := idempotency.Key{ClientID: clientID, RequestID: sc.RequestID}
	if prev, ok := g.registry.Get(key, nowMs); ok {
		// Replay the recorded outcome; only the status marks the retry.
		prev.Status = protocol.StatusDuplicate
		return prev
	}
	resp := g.admit(ctx, sc, nowMs)
	g.registry.Record(key, resp, nowMs)
	return resp
}

func (g *Gateway) admit(ctx context.Context, sc protocol.SerializedCommand, nowMs int64) protocol.CommandResponse {
	cmd, err := sc.ToCommand()
	if err != nil {
		return g.rejected(sc.RequestID, protocol.ErrProtoBadRequest, err.Error())
	}
	if cmd.Timestamp == 0 {
		cmd.Timestamp = nowMs
	}
	if !g.table.Allows(cmd.Type, cmd.Priority) {
		// The queue would drop this with telemetry only; checking here
		// gives the client a definite answer.
		g.sink.RecordWarning(g.table.UnauthorizedEvent(cmd.Type), map[string]any{
			"type":     cmd.Type,
			"priority": cmd.Priority.String(),
			"allowed":  g.table.AllowedNames(cmd.Type),
			"reason":   "transport",
		})
		return g.rejected(sc.RequestID, command.CodeUnauthorized,
			fmt.Sprintf("%s not allowed at %s priority", cmd.Type, cmd.Priority))
	}
	if err := g.enqueue(ctx, cmd); err != nil {
		return g.rejected(sc.RequestID, protocol.ErrProtoBadRequest,
			fmt.Sprintf("submission aborted: %v", err))
	}
	return protocol.CommandResponse{
		Type:       protocol.TypeResponse,
		RequestID:  sc.RequestID,
		Status:     protocol.StatusAccepted,
		ServerStep: g.stepFn(),
	}
}

func (g *Gateway) rejected(requestID, code, message string) protocol.CommandResponse {
	return protocol.CommandResponse{
		Type:       protocol.TypeResponse,
		RequestID:  requestID,
		Status:     protocol.StatusRejected,
		ServerStep: g.stepFn(),
		Error:      &command.Error{Code: code, Message: message},
	}
}
