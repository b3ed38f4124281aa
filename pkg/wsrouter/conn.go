package wsrouter

import (
	"errors"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer. Enough for SDP payloads.
	maxMessageSize = 64 * 1024
)

var ErrConnClosed = errors.New("connection closed")

// Conn wraps a websocket connection with a buffered outbound queue drained by
// a single writer goroutine, so a slow recipient never blocks a fan-out.
type Conn struct {
	ws        *websocket.Conn
	sendCh    chan any
	done      chan struct{}
	closeOnce sync.Once
}

func NewConn(ws *websocket.Conn, sendBuffer int) *Conn {
	return &Conn{
		ws:     ws,
		sendCh: make(chan any, sendBuffer),
		done:   make(chan struct{}),
	}
}

// Send queues a message for delivery without blocking. A connection whose
// buffer is full is considered dead and gets closed.
func (c *Conn) Send(msg any) error {
	select {
	case <-c.done:
		return ErrConnClosed
	case c.sendCh <- msg:
		return nil
	default:
		c.Close()
		return ErrConnClosed
	}
}

// WritePump drains the outbound queue into the websocket and keeps the
// connection alive with pings. Must be the only writer to the connection.
func (c *Conn) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Close()
	}()

	for {
		select {
		case <-c.done:
			c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			c.ws.WriteMessage(websocket.CloseMessage, []byte{})
			return
		case msg := <-c.sendCh:
			c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.ws.WriteJSON(msg); err != nil {
				return
			}
		case <-ticker.C:
			c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (c *Conn) Close() {
	c.closeOnce.Do(func() {
		close(c.done)
		if c.ws != nil {
			c.ws.Close()
		}
	})
}

func (c *Conn) readJSON(v any) error {
	c.ws.SetReadLimit(maxMessageSize)
	c.ws.SetReadDeadline(time.Now().Add(pongWait))
	c.ws.SetPongHandler(func(string) error {
		c.ws.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	return c.ws.ReadJSON(v)
}
