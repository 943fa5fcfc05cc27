package websocket

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/openfour/gameserver/game/service"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer.
	maxMessageSize = 512
)

var (
	// ErrClosed reports a send on a connection that is already closed.
	ErrClosed = errors.New("connection closed")

	// ErrQueueFull reports that the peer stopped draining its send queue;
	// the connection is closed as a side effect.
	ErrQueueFull = errors.New("send queue full")
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// The session id is the access credential, not the origin.
		return true
	},
}

// Conn wraps one WebSocket connection and implements service.Conn.
type Conn struct {
	id   string
	ws   *websocket.Conn
	send chan []byte
	log  zerolog.Logger

	closeOnce sync.Once
	closed    chan struct{}
}

var _ service.Conn = (*Conn)(nil)

func newConn(ws *websocket.Conn, queueSize int, log zerolog.Logger) *Conn {
	id := uuid.NewString()
	return &Conn{
		id:     id,
		ws:     ws,
		send:   make(chan []byte, queueSize),
		log:    log.With().Str("conn_id", id).Logger(),
		closed: make(chan struct{}),
	}
}

// ID returns the connection's identifier, used for log correlation.
func (c *Conn) ID() string {
	return c.id
}

// Send enqueues a payload for delivery. It never blocks: a closed
// connection returns ErrClosed, and a full queue closes the connection and
// returns ErrQueueFull.
func (c *Conn) Send(payload []byte) error {
	select {
	case <-c.closed:
		return ErrClosed
	default:
	}

	select {
	case c.send <- payload:
		return nil
	default:
		c.log.Warn().Msg("peer not draining, disconnecting")
		c.Close()
		return ErrQueueFull
	}
}

// Receive blocks until the next inbound message arrives and returns its
// payload. It returns an error once the peer disconnects or the connection
// is closed locally.
func (c *Conn) Receive(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	_, data, err := c.ws.ReadMessage()
	if err != nil {
		if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
			c.log.Debug().Err(err).Msg("read failed")
		}
		return nil, err
	}
	return data, nil
}

// Close tears the connection down. Safe to call multiple times and from
// any goroutine; it unblocks a pending Receive. The write pump flushes
// payloads queued before the close and then releases the socket.
func (c *Conn) Close() error {
	c.closeOnce.Do(func() {
		close(c.closed)
		c.ws.SetReadDeadline(time.Now())
	})
	return nil
}

// writePump drains the send queue to the peer and keeps the connection
// alive with pings. It owns all writes to the underlying socket and is
// the only place the socket is closed.
func (c *Conn) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Close()
		c.ws.Close()
	}()

	for {
		select {
		case payload := <-c.send:
			c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.ws.WriteMessage(websocket.TextMessage, payload); err != nil {
				return
			}

		case <-ticker.C:
			c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-c.closed:
			// Flush whatever was queued before the close was requested,
			// then say goodbye.
			for {
				select {
				case payload := <-c.send:
					c.ws.SetWriteDeadline(time.Now().Add(writeWait))
					if err := c.ws.WriteMessage(websocket.TextMessage, payload); err != nil {
						return
					}
				default:
					c.ws.SetWriteDeadline(time.Now().Add(writeWait))
					c.ws.WriteMessage(websocket.CloseMessage, []byte{})
					return
				}
			}
		}
	}
}

// Handler upgrades HTTP requests to WebSocket connections and runs the
// service's per-connection task on them.
type Handler struct {
	svc       *service.Service
	queueSize int
	log       zerolog.Logger
}

// NewHandler creates the /ws handler. queueSize bounds each connection's
// outbound queue; a non-positive value defaults to 256.
func NewHandler(svc *service.Service, queueSize int, log zerolog.Logger) *Handler {
	if queueSize <= 0 {
		queueSize = 256
	}
	return &Handler{
		svc:       svc,
		queueSize: queueSize,
		log:       log.With().Str("component", "websocket").Logger(),
	}
}

// ServeHTTP implements http.Handler.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ws, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}

	conn := newConn(ws, h.queueSize, h.log)
	conn.ws.SetReadLimit(maxMessageSize)
	conn.ws.SetReadDeadline(time.Now().Add(pongWait))
	conn.ws.SetPongHandler(func(string) error {
		conn.ws.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	go conn.writePump()

	conn.log.Debug().Str("remote", r.RemoteAddr).Msg("connection accepted")
	h.svc.HandleConnection(r.Context(), conn)
	conn.Close()
	conn.log.Debug().Msg("connection finished")
}
