package controller

import (
	"context"
	"errors"

	"github.com/oscoding1/watchtogether/internal/service/room"
	"github.com/oscoding1/watchtogether/pkg/wsrouter"
)

type Output struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

func (c *controller) unicast(ctx context.Context, conn *wsrouter.Conn, output *Output) {
	if err := conn.Send(output); err != nil {
		c.logger.DebugContext(ctx, "failed to send message", "type", output.Type, "error", err)
	}
}

func (c *controller) broadcast(ctx context.Context, conns []*wsrouter.Conn, output *Output) {
	for _, conn := range conns {
		c.unicast(ctx, conn, output)
	}
}

func (c *controller) writeRoomError(ctx context.Context, conn *wsrouter.Conn, reason string) {
	c.unicast(ctx, conn, &Output{
		Type:    "ROOM_ERROR",
		Payload: map[string]any{"reason": reason},
	})
}

// errorReason maps service errors to the reasons reported back to the
// requester. Errors outside this set are never surfaced to the client.
func errorReason(err error) string {
	switch {
	case errors.Is(err, room.ErrInvalidRequest):
		return "invalid_request"
	case errors.Is(err, room.ErrRoomNotFound):
		return "room_not_found"
	case errors.Is(err, room.ErrNameTaken):
		return "name_taken"
	case errors.Is(err, room.ErrRoomFull):
		return "room_full"
	default:
		return ""
	}
}
