// Package control serves the robot side of the WebSocket command channel.
package control

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

	"github.com/dkeye/Remote/internal/app"
	"github.com/dkeye/Remote/internal/app/robot"
	"github.com/dkeye/Remote/internal/core"
)

var (
	ErrBackpressure = errors.New("backpressure")
	ErrConnClosed   = errors.New("connection closed")
)

type Options struct {
	Host       string
	ReadLimit  int64
	PingPeriod time.Duration
	RateLimit  float64
	RateBurst  int
}

type ControlWSController struct {
	Robot    *robot.Robot
	Registry *app.Registry
	opts     Options
	limiter  *ConnRateLimiter
}

func NewControlWSController(r *robot.Robot, reg *app.Registry, opts Options) *ControlWSController {
	if opts.PingPeriod <= 0 {
		opts.PingPeriod = 54 * time.Second
	}
	return &ControlWSController{
		Robot:    r,
		Registry: reg,
		opts:     opts,
		limiter:  NewConnRateLimiter(opts.RateLimit, opts.RateBurst),
	}
}

type WsControlConn struct {
	conn *websocket.Conn
	send chan core.Frame

	mu     sync.RWMutex
	closed bool
}

func (c *WsControlConn) TrySend(f core.Frame) error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return ErrConnClosed
	}
	select {
	case c.send <- f:
	default:
		return ErrBackpressure
	}
	return nil
}

func (c *WsControlConn) Close() {
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

func (ctl *ControlWSController) HandleControl(ctx context.Context, c *gin.Context) {
	sid := app.SessionID(uuid.NewString())
	log.Info().Str("module", "control").Str("sid", string(sid)).Str("remote", c.ClientIP()).Msg("new WS connection")

	ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error().Err(err).Str("module", "control").Msg("ws upgrade")
		return
	}
	if ctl.opts.ReadLimit > 0 {
		ws.SetReadLimit(ctl.opts.ReadLimit)
	}

	conn := &WsControlConn{
		conn: ws,
		send: make(chan core.Frame, 32),
	}

	ctx, cancel := context.WithCancel(ctx)
	ctl.Registry.Bind(sid, ws.RemoteAddr().String(), cancel)

	go ctl.writePump(ctx, conn)
	go ctl.readPump(ctx, cancel, sid, conn)
}
