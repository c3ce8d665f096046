package signaling

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"skillswap/pkg/logger"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 64 * 1024

	// sendBufferSize bounds the per-client outbound queue. A client that
	// cannot drain it fast enough is evicted rather than blocking the hub.
	sendBufferSize = 256
)

// Client is one websocket connection. Reads are relayed to the client's
// group by readPump; writes are serialized through the send channel by
// writePump.
type Client struct {
	ID       string
	Username string

	conn   *websocket.Conn
	hub    *Hub
	group  string
	send   chan []byte
	logger logger.Logger

	// relay controls whether inbound frames are rebroadcast to the group.
	// Call rooms relay; notification channels are push-only.
	relay bool

	// mu serializes enqueue against close so nothing ever sends on the
	// channel after it is closed.
	mu     sync.Mutex
	closed bool
}

func newClient(hub *Hub, conn *websocket.Conn, username, group string, relay bool, logger logger.Logger) *Client {
	return &Client{
		ID:       uuid.New().String(),
		Username: username,
		conn:     conn,
		hub:      hub,
		group:    group,
		send:     make(chan []byte, sendBufferSize),
		logger:   logger,
		relay:    relay,
	}
}

// run registers the client with its group and serves the connection until
// either pump exits.
func (c *Client) run() {
	c.hub.Join(c.group, c)
	openConnections.Inc()

	go c.writePump()
	c.readPump()
}

// enqueue hands a payload to the write pump. A full buffer means the
// client is too slow to keep up; it is evicted so the hub never blocks.
func (c *Client) enqueue(payload []byte) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	select {
	case c.send <- payload:
		c.mu.Unlock()
		return
	default:
	}
	c.mu.Unlock()

	c.logger.Warn(context.Background(), "evicting slow websocket client",
		logger.Field{Key: "client_id", Value: c.ID},
		logger.Field{Key: "group", Value: c.group},
	)
	// Leave before closing so no later broadcast snapshot includes the
	// client once its channel is gone.
	c.hub.Leave(c.group, c)
	c.close()
}

func (c *Client) close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	close(c.send)
}

func (c *Client) readPump() {
	defer func() {
		c.hub.Leave(c.group, c)
		openConnections.Dec()
		c.close()
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, payload, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.Debug(context.Background(), "websocket read error",
					logger.Field{Key: "client_id", Value: c.ID},
					logger.Field{Key: "error", Value: err},
				)
			}
			return
		}

		if c.relay {
			c.hub.Broadcast(c.group, payload, c)
		}
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case payload, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
