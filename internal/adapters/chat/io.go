package chat

import (
	"context"
	"encoding/json"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"studyhall/internal/core"
	"studyhall/internal/metrics"
)

func (ctl *ChatWSController) writePump(ctx context.Context, c *WsChatConn) {
	ping := ctl.PingPeriod
	if ping <= 0 {
		ping = 54 * time.Second
	}
	t := time.NewTicker(ping)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case data, ok := <-c.send:
			if !ok {
				return
			}
			if err := c.conn.SetWriteDeadline(time.Now().Add(5 * time.Second)); err != nil {
				log.Error().Err(err).Str("module", "chat").Msg("writePump set deadline")
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				log.Error().Err(err).Str("module", "chat").Msg("writePump write error")
				return
			}
		case <-t.C:
			if err := c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(5*time.Second)); err != nil {
				return
			}
		}
	}
}

// readPump drains inbound events until the connection dies, then surfaces
// exactly one disconnect to the orchestrator.
func (ctl *ChatWSController) readPump(ctx context.Context, sid core.SessionID, sess core.MemberSession, c *WsChatConn) {
	defer func() {
		log.Info().Str("module", "chat").Str("sid", string(sid)).Msg("readPump closing")
		c.Close()
		metrics.ConnectionsActive.Dec()
		ctl.Orch.Disconnect(context.Background(), sid)
	}()

	for {
		select {
		case <-ctx.Done():
			return
		default:
			_, data, err := c.conn.ReadMessage()
			if err != nil {
				if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
					log.Debug().Err(err).Str("module", "chat").Str("sid", string(sid)).Msg("readPump read error")
				}
				return
			}
			ctl.handleEvent(ctx, sid, sess, c, data)
		}
	}
}

// handleEvent dispatches one inbound envelope by its "type" field.
// Malformed or unknown events produce an error frame to the origin
// connection only; nothing is broadcast.
func (ctl *ChatWSController) handleEvent(ctx context.Context, sid core.SessionID, sess core.MemberSession, c *WsChatConn, data []byte) {
	var env struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &env); err != nil {
		log.Error().Err(err).Str("module", "chat").Msg("bad json")
		ctl.sendError(c, "bad_payload")
		return
	}

	switch env.Type {
	case "join_room":
		ctl.handleJoin(ctx, sid, sess, c, data)
	case "send_message":
		ctl.handleSend(ctx, sid, sess, c, data)
	case "typing_start":
		ctl.handleTyping(sid, sess, c, data, true)
	case "typing_stop":
		ctl.handleTyping(sid, sess, c, data, false)
	case "leave_room":
		ctl.handleLeave(ctx, sid, sess, c, data)
	case "ping":
		ctl.handlePing(c)
	default:
		log.Warn().Str("module", "chat").Str("type", env.Type).Msg("unknown event")
		ctl.sendError(c, "unknown_event")
	}
}

func (ctl *ChatWSController) sendJSON(c *WsChatConn, v any) {
	b, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Str("module", "chat").Msg("sendJSON marshal")
		return
	}
	_ = c.TrySend(b)
}

func (ctl *ChatWSController) sendError(c *WsChatConn, msg string) {
	ctl.sendJSON(c, map[string]any{"type": "error", "error": msg})
}
