package chat

import (
	"context"
	"encoding/json"

	"github.com/rs/zerolog/log"

	"studyhall/internal/core"
	"studyhall/internal/domain"
)

type roomPayload struct {
	Type     string `json:"type"`
	RoomCode string `json:"roomCode"`
}

func (ctl *ChatWSController) handleJoin(ctx context.Context, sid core.SessionID, sess core.MemberSession, c *WsChatConn, data []byte) {
	var p roomPayload
	if err := json.Unmarshal(data, &p); err != nil {
		log.Error().Err(err).Str("module", "chat").Msg("bad join payload")
		ctl.sendError(c, "bad_payload")
		return
	}
	room, err := domain.ParseRoomCode(p.RoomCode)
	if err != nil {
		ctl.sendError(c, "bad_room_code")
		return
	}

	log.Info().Str("module", "chat").Str("sid", string(sid)).Str("room", string(room)).Msg("join")
	ctl.Orch.Join(ctx, sid, sess, room)
}

func (ctl *ChatWSController) handleLeave(ctx context.Context, sid core.SessionID, sess core.MemberSession, c *WsChatConn, data []byte) {
	var p roomPayload
	if err := json.Unmarshal(data, &p); err != nil {
		log.Error().Err(err).Str("module", "chat").Msg("bad leave payload")
		ctl.sendError(c, "bad_payload")
		return
	}
	room, err := domain.ParseRoomCode(p.RoomCode)
	if err != nil {
		ctl.sendError(c, "bad_room_code")
		return
	}

	log.Info().Str("module", "chat").Str("sid", string(sid)).Str("room", string(room)).Msg("leave")
	ctl.Orch.Leave(ctx, sid, sess, room)
	ctl.sendJSON(c, map[string]any{"type": "left", "roomCode": string(room)})
}
