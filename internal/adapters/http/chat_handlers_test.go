package http

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"studyhall/internal/app"
	"studyhall/internal/app/orch"
	"studyhall/internal/domain"
	"studyhall/internal/store"
)

type fakeMeta struct {
	byRoom map[domain.RoomCode]store.CapacityAndPrivacy
}

func (f *fakeMeta) GetCapacityAndPrivacy(_ context.Context, room domain.RoomCode) (store.CapacityAndPrivacy, error) {
	m, ok := f.byRoom[room]
	if !ok {
		return store.CapacityAndPrivacy{}, store.ErrRoomNotFound
	}
	return m, nil
}

func TestChatAPIStatsIncludesRoomMeta(t *testing.T) {
	gin.SetMode(gin.TestMode)

	reg := app.NewRegistry()
	reg.Join("123456", domain.Identity{UserID: "u1", Username: "alice"}, "c1")
	reg.Join("777777", domain.Identity{UserID: "u2", Username: "bob"}, "c2")

	api := &ChatAPI{
		Orch: orch.New(reg, app.NewChannelManager(), nil, 0),
		Meta: &fakeMeta{byRoom: map[domain.RoomCode]store.CapacityAndPrivacy{
			"123456": {Capacity: 12, IsPrivate: true},
		}},
	}

	r := gin.New()
	r.GET("/api/room-stats", api.Stats)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("GET", "/api/room-stats", nil))

	if w.Code != 200 {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	var body map[string]struct {
		TotalMembers  int  `json:"totalMembers"`
		OnlineMembers int  `json:"onlineMembers"`
		Capacity      int  `json:"capacity"`
		IsPrivate     bool `json:"isPrivate"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("bad body %q: %v", w.Body.String(), err)
	}

	s, ok := body["123456"]
	if !ok {
		t.Fatalf("room missing from stats: %v", body)
	}
	if s.TotalMembers != 1 || s.OnlineMembers != 1 {
		t.Errorf("presence counts = %d/%d, want 1/1", s.TotalMembers, s.OnlineMembers)
	}
	if s.Capacity != 12 || !s.IsPrivate {
		t.Errorf("room metadata not merged: capacity=%d isPrivate=%v", s.Capacity, s.IsPrivate)
	}

	// A presence-only code with no metadata record keeps zero values.
	if s, ok := body["777777"]; !ok || s.Capacity != 0 || s.IsPrivate {
		t.Errorf("metadata-less room = %+v, want zero-valued meta", s)
	}
}
