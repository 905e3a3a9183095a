// Package http wires the gin router: auth, room metadata CRUD, history
// and stats queries, health, metrics, and the chat WebSocket endpoint.
package http

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"studyhall/internal/adapters/chat"
	"studyhall/internal/app/orch"
	"studyhall/internal/auth"
	"studyhall/internal/config"
	"studyhall/internal/metrics"
	"studyhall/internal/store"
)

func SetupRouter(ctx context.Context, cfg *config.Config, o *orch.Orchestrator, db *store.Postgres, jwt *auth.JWT) *gin.Engine {
	if cfg.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	if cfg.Mode == "debug" {
		r.Use(gin.Logger())
	}
	r.Use(gin.Recovery())

	r.GET("/healthz", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	authAPI := &AuthAPI{DB: db, JWT: jwt, TTL: cfg.TokenTTL}
	roomsAPI := &RoomsAPI{DB: db}
	chatAPI := &ChatAPI{Orch: o, Meta: db}
	ctl := chat.NewChatWSController(o, jwt, cfg.ReadLimit, cfg.PingPeriod)

	api := r.Group("/api")

	api.POST("/auth/register", authAPI.Register)
	api.POST("/auth/login", authAPI.Login)
	api.GET("/auth/me", AuthRequired(jwt), authAPI.Me)

	rooms := api.Group("/rooms", AuthRequired(jwt))
	rooms.POST("/create", roomsAPI.Create)
	rooms.POST("/join", roomsAPI.Join)
	rooms.POST("/leave", roomsAPI.Leave)
	rooms.GET("/my", roomsAPI.My)
	rooms.GET("/:roomCode", roomsAPI.Get)
	rooms.GET("/:roomCode/history", chatAPI.History)

	api.GET("/room-stats", chatAPI.Stats)
	api.GET("/channels", chatAPI.Channels)

	api.GET("/ws/chat", func(c *gin.Context) {
		log.Info().Str("module", "adapters.http").Msg("ws chat endpoint hit")
		ctl.HandleChat(ctx, c)
	})

	return r
}
