// Package chat is the WebSocket adapter: it upgrades connections, binds
// identities, and feeds connection events into the orchestrator.
package chat

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"studyhall/internal/app/orch"
	"studyhall/internal/auth"
	"studyhall/internal/core"
	"studyhall/internal/metrics"
)

var ErrBackpressure = errors.New("backpressure")

type ChatWSController struct {
	Orch       *orch.Orchestrator
	Auth       *auth.JWT
	ReadLimit  int64
	PingPeriod time.Duration
}

func NewChatWSController(o *orch.Orchestrator, j *auth.JWT, readLimit int64, pingPeriod time.Duration) *ChatWSController {
	return &ChatWSController{Orch: o, Auth: j, ReadLimit: readLimit, PingPeriod: pingPeriod}
}

// WsChatConn wraps one client connection. It implements
// core.SignalConnection; the adapter owns and closes it.
type WsChatConn struct {
	conn *websocket.Conn
	send chan core.Frame

	mu     sync.RWMutex
	closed bool
}

func (c *WsChatConn) TrySend(f core.Frame) error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return errors.New("connection closed")
	}
	select {
	case c.send <- f:
	default:
		return ErrBackpressure
	}
	return nil
}

func (c *WsChatConn) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	close(c.send)
	_ = c.conn.Close()
	c.mu.Unlock()
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// HandleChat authenticates the handshake and starts the connection pumps.
// A bad credential refuses the connection before the upgrade; no partial
// state is created. Absent credentials get a guest identity keyed by the
// fresh connection id.
func (ctl *ChatWSController) HandleChat(ctx context.Context, c *gin.Context) {
	sid := core.SessionID(uuid.NewString())

	identity, err := ctl.Auth.Bind(c.Query("token"), c.Query("username"), string(sid))
	if err != nil {
		log.Warn().Err(err).Str("module", "chat").Msg("handshake auth failed")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication failed"})
		return
	}

	ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error().Err(err).Str("module", "chat").Msg("ws upgrade")
		return
	}
	if ctl.ReadLimit > 0 {
		ws.SetReadLimit(ctl.ReadLimit)
	}

	conn := &WsChatConn{
		conn: ws,
		send: make(chan core.Frame, 256),
	}
	sess := core.NewMemberSession(identity, conn)

	log.Info().Str("module", "chat").Str("sid", string(sid)).Str("user", string(identity.UserID)).Str("username", identity.Username).Msg("connection established")
	metrics.ConnectionsActive.Inc()

	ctx, cancel := context.WithCancel(ctx)
	go ctl.writePump(ctx, conn)
	go func() {
		defer cancel()
		ctl.readPump(ctx, sid, sess, conn)
	}()
}
