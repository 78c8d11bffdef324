package ws

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// Client is one connected viewer session. UserID and Role come from the
// verified handshake token and drive per-recipient broadcast filtering.
type Client struct {
	conn *websocket.Conn
	hub  *Hub
	room string

	UserID uint
	Role   string

	send      chan []byte
	done      chan struct{}
	closeOnce sync.Once
}

func newClient(h *Hub, room string, conn *websocket.Conn, userID uint, role string) *Client {
	return &Client{
		conn:   conn,
		hub:    h,
		room:   room,
		UserID: userID,
		Role:   role,
		send:   make(chan []byte, 256),
		done:   make(chan struct{}),
	}
}

func (c *Client) readPump() {
	defer c.Close()
	c.conn.SetReadLimit(8 * 1024)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})
	for {
		// Inbound frames carry nothing; all writes go over REST.
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
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
		case msg := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-c.done:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			c.conn.WriteMessage(websocket.CloseMessage, []byte{})
			return
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// Close drops the session from its room and tears the socket down. Safe
// to call more than once; a disconnect leaves no persisted state behind.
// The send channel is deliberately never closed: a broadcast racing a
// disconnect may still land a signal in the buffer, which is collected
// together with the client instead of panicking the sender.
func (c *Client) Close() {
	c.closeOnce.Do(func() {
		c.hub.Leave(c.room, c)
		close(c.done)
		if c.conn != nil {
			_ = c.conn.Close()
		}
	})
}
