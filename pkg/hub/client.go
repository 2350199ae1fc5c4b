package hub

import (
	"time"

	"github.com/gofiber/websocket/v2"
)

// Subscribers never send data, only pongs and close frames.
const (
	writeTimeout  = 10 * time.Second
	idleTimeout   = 60 * time.Second
	pingInterval  = idleTimeout * 9 / 10
	maxFrameBytes = 4 * 1024
	queueSize     = 64
)

// Client is one websocket subscriber. Messages for it are queued on send
// and written by a single goroutine.
type Client struct {
	hub  *Hub
	conn *websocket.Conn
	send chan Message
}

// NewClient registers a subscriber. A client created after the hub stopped
// starts with a closed queue.
func NewClient(hub *Hub, conn *websocket.Conn) *Client {
	c := &Client{hub: hub, conn: conn, send: make(chan Message, queueSize)}
	select {
	case hub.register <- c:
	case <-hub.done:
		close(c.send)
	}
	return c
}

// Run serves the connection until the peer goes away or the hub drops the
// client.
func (c *Client) Run() {
	go c.deliver()
	c.watch()
}

// leave unregisters the client unless the hub has already stopped.
func (c *Client) leave() {
	select {
	case c.hub.unregister <- c:
	case <-c.hub.done:
	}
}

// watch consumes incoming frames so pongs and closes are seen. A missed
// pong ends it after idleTimeout.
func (c *Client) watch() {
	defer c.conn.Close()
	defer c.leave()

	extend := func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(idleTimeout))
	}
	c.conn.SetReadLimit(maxFrameBytes)
	_ = extend("")
	c.conn.SetPongHandler(extend)

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

// deliver writes queued messages and keepalive pings. A closed queue sends
// a close frame.
func (c *Client) deliver() {
	ping := time.NewTicker(pingInterval)
	defer ping.Stop()
	defer c.conn.Close()

	write := func(kind int, data []byte) error {
		_ = c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
		return c.conn.WriteMessage(kind, data)
	}

	for {
		select {
		case msg, ok := <-c.send:
			if !ok {
				_ = write(websocket.CloseMessage, []byte{})
				return
			}
			if err := write(websocket.TextMessage, msg.Data); err != nil {
				return
			}
		case <-ping.C:
			if err := write(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
