package http

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"studyhall/internal/app"
	"studyhall/internal/app/orch"
	"studyhall/internal/domain"
	"studyhall/internal/store"
)

// RoomMeta is the narrow metadata view merged into presence output.
type RoomMeta interface {
	GetCapacityAndPrivacy(ctx context.Context, room domain.RoomCode) (store.CapacityAndPrivacy, error)
}

type ChatAPI struct {
	Orch *orch.Orchestrator
	Meta RoomMeta
}

type wireMessage struct {
	domain.Message
	Time string `json:"time"`
}

// History returns the trailing message window for a room, oldest-first.
// `before` (RFC 3339) pages further back.
func (a *ChatAPI) History(c *gin.Context) {
	code, err := domain.ParseRoomCode(c.Param("roomCode"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "malformed room code"})
		return
	}

	limit, _ := strconv.Atoi(c.Query("limit"))

	var before *time.Time
	if raw := c.Query("before"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "bad before timestamp"})
			return
		}
		before = &t
	}

	msgs, err := a.Orch.History(c.Request.Context(), code, limit, before)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	out := make([]wireMessage, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, wireMessage{Message: m, Time: m.Time()})
	}
	c.JSON(http.StatusOK, out)
}

// Channels lists the live fanout groups and their connection counts.
func (a *ChatAPI) Channels(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"channels": a.Orch.Channels.List()})
}

type roomStatsResp struct {
	app.RoomStats
	Capacity  int  `json:"capacity"`
	IsPrivate bool `json:"isPrivate"`
}

// Stats is the read-only presence snapshot for operational visibility,
// annotated with each room's capacity and privacy. Rooms with no metadata
// record (presence-only codes) keep zero values.
func (a *ChatAPI) Stats(c *gin.Context) {
	stats := a.Orch.Stats()
	out := make(map[string]roomStatsResp, len(stats))
	for room, s := range stats {
		entry := roomStatsResp{RoomStats: s}
		if a.Meta != nil {
			if meta, err := a.Meta.GetCapacityAndPrivacy(c.Request.Context(), room); err == nil {
				entry.Capacity = meta.Capacity
				entry.IsPrivate = meta.IsPrivate
			}
		}
		out[string(room)] = entry
	}
	c.JSON(http.StatusOK, out)
}
