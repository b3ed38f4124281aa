package controller

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/oscoding1/watchtogether/pkg/ctxlogger"
	"github.com/oscoding1/watchtogether/pkg/wsrouter"
)

func (c *controller) ws(w http.ResponseWriter, r *http.Request) {
	ws, err := c.upgrader.Upgrade(w, r, nil)
	if err != nil {
		c.logger.WarnContext(r.Context(), "failed to upgrade to websocket", "error", err)
		return
	}

	connId := uuid.NewString()
	conn := wsrouter.NewConn(ws, sendBufferSize)

	if err := c.roomService.Connect(conn, connId); err != nil {
		c.logger.WarnContext(r.Context(), "failed to register connection", "error", err)
		conn.Close()
		return
	}

	go conn.WritePump()

	ctx := context.WithValue(r.Context(), connIdCtxKey, connId)
	ctx = ctxlogger.AppendCtx(ctx, slog.String("conn_id", connId))

	c.logger.InfoContext(ctx, "connection opened", "remote_addr", r.RemoteAddr)

	if err := c.wsmux.ServeConn(ctx, conn); err != nil {
		c.logger.DebugContext(ctx, "connection read loop ended", "error", err)
	}

	c.disconnect(ctx, connId)
	conn.Close()

	c.logger.InfoContext(ctx, "connection closed")
}

// disconnect runs the leave lifecycle for a closed connection and notifies
// the remaining members.
func (c *controller) disconnect(ctx context.Context, connId string) {
	leaveResp, err := c.roomService.Disconnect(ctx, connId)
	if err != nil {
		c.logger.WarnContext(ctx, "failed to disconnect", "error", err)
		return
	}

	if !leaveResp.WasMember || leaveResp.IsRoomDeleted {
		return
	}

	if leaveResp.NewHost != nil {
		c.broadcast(ctx, leaveResp.Conns, &Output{
			Type: "HOST_CHANGED",
			Payload: map[string]any{
				"member": *leaveResp.NewHost,
			},
		})
	} else {
		c.broadcast(ctx, leaveResp.Conns, &Output{
			Type: "MEMBER_LEFT",
			Payload: map[string]any{
				"member": leaveResp.LeftMember,
			},
		})
	}

	c.broadcast(ctx, leaveResp.Conns, &Output{
		Type: "MEMBERS_UPDATED",
		Payload: map[string]any{
			"members": leaveResp.Members,
		},
	})
}
