package chat

import (
	"context"
	"encoding/json"

	"github.com/rs/zerolog/log"

	"studyhall/internal/core"
	"studyhall/internal/domain"
)

func (ctl *ChatWSController) handleSend(ctx context.Context, sid core.SessionID, sess core.MemberSession, c *WsChatConn, data []byte) {
	var p struct {
		Type     string `json:"type"`
		RoomCode string `json:"roomCode"`
		Text     string `json:"text"`
	}
	if err := json.Unmarshal(data, &p); err != nil {
		log.Error().Err(err).Str("module", "chat").Msg("bad send payload")
		ctl.sendError(c, "bad_payload")
		return
	}
	room, err := domain.ParseRoomCode(p.RoomCode)
	if err != nil {
		ctl.sendError(c, "bad_room_code")
		return
	}

	if err := ctl.Orch.Send(ctx, sid, sess, room, p.Text); err != nil {
		// Validation failures go back to the sender only.
		ctl.sendError(c, err.Error())
	}
}

func (ctl *ChatWSController) handleTyping(sid core.SessionID, sess core.MemberSession, c *WsChatConn, data []byte, isTyping bool) {
	var p roomPayload
	if err := json.Unmarshal(data, &p); err != nil {
		log.Error().Err(err).Str("module", "chat").Msg("bad typing payload")
		ctl.sendError(c, "bad_payload")
		return
	}
	room, err := domain.ParseRoomCode(p.RoomCode)
	if err != nil {
		ctl.sendError(c, "bad_room_code")
		return
	}
	ctl.Orch.Typing(sid, sess, room, isTyping)
}

func (ctl *ChatWSController) handlePing(c *WsChatConn) {
	ctl.sendJSON(c, map[string]any{"type": "pong"})
}
