package wsrouter

import (
	"context"
	"encoding/json"
	"fmt"
)

type message struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type HandlerFunc[T any] func(ctx context.Context, conn *Conn, payload T) error

type Middleware func(next HandlerFunc[json.RawMessage]) HandlerFunc[json.RawMessage]

type WSRouter struct {
	routes      map[string]HandlerFunc[json.RawMessage]
	middlewares []Middleware
}

func New() *WSRouter {
	return &WSRouter{routes: make(map[string]HandlerFunc[json.RawMessage])}
}

func (r *WSRouter) Use(mw Middleware) {
	r.middlewares = append(r.middlewares, mw)
}

// Handle registers a typed handler for a message type. The raw payload is
// unmarshalled into T before the handler runs; a payload that does not
// unmarshal fails that message only.
func Handle[T any](r *WSRouter, messageType string, handler HandlerFunc[T]) {
	r.routes[messageType] = func(ctx context.Context, conn *Conn, payload json.RawMessage) error {
		var input T
		if len(payload) > 0 {
			if err := json.Unmarshal(payload, &input); err != nil {
				return fmt.Errorf("failed to unmarshal %s payload: %w", messageType, err)
			}
		}

		return handler(ctx, conn, input)
	}
}

func (r *WSRouter) wrap(handler HandlerFunc[json.RawMessage]) HandlerFunc[json.RawMessage] {
	for i := len(r.middlewares) - 1; i >= 0; i-- {
		handler = r.middlewares[i](handler)
	}

	return handler
}

// ServeConn reads messages from the connection until it closes and dispatches
// them to the registered handlers. A handler error never terminates the loop.
func (r *WSRouter) ServeConn(ctx context.Context, conn *Conn) error {
	for {
		var msg message
		if err := conn.readJSON(&msg); err != nil {
			return err
		}

		handler, exists := r.routes[msg.Type]
		if !exists {
			handler = func(context.Context, *Conn, json.RawMessage) error {
				return fmt.Errorf("unknown message type %q", msg.Type)
			}
		}

		msgCtx := context.WithValue(ctx, messageTypeKey, msg.Type)
		r.wrap(handler)(msgCtx, conn, msg.Payload)
	}
}
