package server

import (
	"encoding/json"
	"errors"
	"sync"

	"github.com/gorilla/websocket"
)

// ErrClientBufferFull is returned when a client's send channel is at
// capacity; the message is dropped rather than blocking the host.
var ErrClientBufferFull = errors.New("client send buffer full")

// ErrClientClosed is returned when a message is enqueued after the
// client has been dropped.
var ErrClientClosed = errors.New("client closed")

// client is one connected editor surface with a buffered write pump.
type client struct {
	id   string
	conn *websocket.Conn

	mu     sync.Mutex
	closed bool
	send   chan []byte
}

func newClient(id string, conn *websocket.Conn) *client {
	return &client{
		id:   id,
		conn: conn,
		send: make(chan []byte, 256),
	}
}

// enqueue marshals env onto the write pump.
func (c *client) enqueue(env *Envelope) error {
	data, err := json.Marshal(env)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrClientClosed
	}
	select {
	case c.send <- data:
		return nil
	default:
		return ErrClientBufferFull
	}
}

// writePump drains the send channel into the connection. It exits when the
// channel closes or a write fails.
func (c *client) writePump() {
	defer c.conn.Close()
	for message := range c.send {
		if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
			return
		}
	}
}

// close shuts down the write pump. Safe to call more than once; a racing
// enqueue sees the closed flag instead of a closed channel.
func (c *client) close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	close(c.send)
}
