package signal

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/huddlechat/huddle/internal/app"
	"github.com/huddlechat/huddle/internal/config"
	"github.com/huddlechat/huddle/internal/core"
	"github.com/huddlechat/huddle/internal/metrics"
)

var ErrBackpressure = errors.New("backpressure")

// Controller owns the websocket signaling endpoint.
type Controller struct {
	Hub   *app.Hub
	Cfg   *config.Config
	Dials *DialRateLimiter
}

func NewController(hub *app.Hub, cfg *config.Config) *Controller {
	return &Controller{
		Hub:   hub,
		Cfg:   cfg,
		Dials: NewDialRateLimiter(cfg.DialLimit, cfg.DialInterval),
	}
}

// wsConn adapts a gorilla connection to core.SignalConnection with a
// buffered, non-blocking send path.
type wsConn struct {
	conn *websocket.Conn
	send chan core.Frame

	mu     sync.RWMutex
	closed bool
}

func (c *wsConn) TrySend(f core.Frame) error {
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

func (c *wsConn) Close() {
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

// client is the per-connection handler state.
type client struct {
	id   core.ConnID
	sess core.ClientSession
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

func (ctl *Controller) HandleSignal(ctx context.Context, c *gin.Context) {
	ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("ws upgrade")
		return
	}
	if ctl.Cfg.ReadLimit > 0 {
		ws.SetReadLimit(ctl.Cfg.ReadLimit)
	}

	conn := &wsConn{
		conn: ws,
		send: make(chan core.Frame, ctl.Cfg.SendBuffer),
	}

	id := core.ConnID(uuid.NewString())
	log.Info().Str("module", "signal").Str("conn", string(id)).Msg("new WS connection")
	metrics.ActiveConnections.Inc()
	metrics.TotalConnections.Inc()

	sess := core.NewClientSession(conn)
	ctx, cancel := context.WithCancel(ctx)
	ctl.Hub.Registry.Bind(id, sess, cancel)

	cl := &client{id: id, sess: sess}

	go ctl.writePump(ctx, conn)
	go ctl.readPump(ctx, cl, conn)
}

func (ctl *Controller) sendJSON(c *client, v any) {
	ctl.sendTo(c.sess.Signal(), v)
}

func (ctl *Controller) sendTo(conn core.SignalConnection, v any) {
	b, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("sendJSON marshal")
		return
	}
	_ = conn.TrySend(b)
}
