package controller

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/oscoding1/watchtogether/internal/service/room"
	"github.com/oscoding1/watchtogether/pkg/validator"
	"github.com/oscoding1/watchtogether/pkg/wsrouter"
)

// Outbound buffer per connection; a member that falls this far behind is
// dropped rather than allowed to stall the room's fan-out.
const sendBufferSize = 64

type iRoomService interface {
	Connect(conn *wsrouter.Conn, connId string) error
	Disconnect(ctx context.Context, connId string) (room.LeaveRoomResponse, error)
	JoinRoom(context.Context, *room.JoinRoomParams) (room.JoinRoomResponse, error)
	Play(context.Context, *room.UpdatePlaybackParams) (room.PlaybackResponse, error)
	Pause(context.Context, *room.UpdatePlaybackParams) (room.PlaybackResponse, error)
	Seek(context.Context, *room.SeekParams) (room.PlaybackResponse, error)
	ChangeMedia(context.Context, *room.ChangeMediaParams) (room.ChangeMediaResponse, error)
	SendMessage(context.Context, *room.SendMessageParams) (room.SendMessageResponse, error)
	RelaySignal(context.Context, *room.RelaySignalParams) (room.RelaySignalResponse, error)
	Stats(ctx context.Context) (room.Stats, error)
	GetRoomInfo(ctx context.Context, roomCode string) (room.RoomInfo, error)
	GenerateRoomCode(ctx context.Context) (string, error)
}

type controller struct {
	roomService iRoomService
	upgrader    websocket.Upgrader
	validate    *validator.Validator
	wsmux       *wsrouter.WSRouter
	logger      *slog.Logger
}

func NewController(roomService iRoomService, logger *slog.Logger) *controller {
	c := &controller{
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
		roomService: roomService,
		validate:    validator.NewValidator(),
		logger:      logger,
	}
	c.wsmux = c.getWSRouter()

	return c
}
