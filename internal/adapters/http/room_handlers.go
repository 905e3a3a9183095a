package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"studyhall/internal/domain"
	"studyhall/internal/store"
)

type RoomsAPI struct {
	DB *store.Postgres
}

type roomResp struct {
	RoomCode    string             `json:"roomCode"`
	Name        string             `json:"name"`
	Description string             `json:"description"`
	IsPrivate   bool               `json:"isPrivate"`
	Capacity    int                `json:"capacity"`
	CreatedBy   string             `json:"createdBy"`
	Members     []store.RoomMember `json:"members"`
	CreatedAt   time.Time          `json:"createdAt"`
	UpdatedAt   time.Time          `json:"updatedAt"`
}

// sanitizeRoom drops the PIN hash from anything clients see.
func sanitizeRoom(r store.Room) roomResp {
	return roomResp{
		RoomCode:    string(r.Code),
		Name:        r.Name,
		Description: r.Description,
		IsPrivate:   r.IsPrivate,
		Capacity:    r.Capacity,
		CreatedBy:   r.CreatedBy,
		Members:     r.Members,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
}

func (a *RoomsAPI) Create(c *gin.Context) {
	var req struct {
		Name        string `json:"name"`
		Description string `json:"description"`
		IsPrivate   bool   `json:"isPrivate"`
		PIN         string `json:"pin"`
		Capacity    int    `json:"capacity"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad payload"})
		return
	}
	if req.Capacity == 0 {
		req.Capacity = domain.MaxCapacity
	}

	room, err := a.DB.CreateRoom(c.Request.Context(), c.GetString("user_id"),
		req.Name, req.Description, req.IsPrivate, req.PIN, req.Capacity)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, sanitizeRoom(room))
}

// Join records durable membership. Capacity and PIN are enforced here, at
// join-request time, before the presence engine ever sees the user.
func (a *RoomsAPI) Join(c *gin.Context) {
	var req struct {
		RoomCode string `json:"roomCode"`
		PIN      string `json:"pin"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.RoomCode == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "roomCode is required"})
		return
	}
	code, err := domain.ParseRoomCode(req.RoomCode)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "malformed room code"})
		return
	}

	room, err := a.DB.JoinRoom(c.Request.Context(), code, c.GetString("user_id"), req.PIN)
	switch {
	case errors.Is(err, store.ErrRoomNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "room not found"})
	case errors.Is(err, store.ErrPINRequired), errors.Is(err, store.ErrBadPIN):
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
	case errors.Is(err, store.ErrRoomFull):
		c.JSON(http.StatusForbidden, gin.H{"error": "room is full"})
	case err != nil:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusOK, sanitizeRoom(room))
	}
}

func (a *RoomsAPI) Leave(c *gin.Context) {
	var req struct {
		RoomCode string `json:"roomCode"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.RoomCode == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "roomCode is required"})
		return
	}

	room, err := a.DB.LeaveRoom(c.Request.Context(), domain.RoomCode(req.RoomCode), c.GetString("user_id"))
	if errors.Is(err, store.ErrRoomNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "room not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"msg": "left room", "room": sanitizeRoom(room)})
}

func (a *RoomsAPI) My(c *gin.Context) {
	rooms, err := a.DB.MyRooms(c.Request.Context(), c.GetString("user_id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	out := make([]roomResp, 0, len(rooms))
	for _, r := range rooms {
		out = append(out, sanitizeRoom(r))
	}
	c.JSON(http.StatusOK, out)
}

func (a *RoomsAPI) Get(c *gin.Context) {
	code, err := domain.ParseRoomCode(c.Param("roomCode"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "malformed room code"})
		return
	}

	room, err := a.DB.GetRoom(c.Request.Context(), code)
	if errors.Is(err, store.ErrRoomNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "room not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	uid := c.GetString("user_id")
	member := false
	for _, m := range room.Members {
		if m.ID == uid {
			member = true
			break
		}
	}
	if !member {
		c.JSON(http.StatusForbidden, gin.H{"error": "you are not a member of this room"})
		return
	}
	c.JSON(http.StatusOK, sanitizeRoom(room))
}
