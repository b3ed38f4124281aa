package room

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/oscoding1/watchtogether/internal/repository/room"
	"github.com/oscoding1/watchtogether/pkg/wsrouter"
)

type SendMessageParams struct {
	ConnId string
	Text   string
}

type SendMessageResponse struct {
	Message ChatMessage
	// Conns includes the sender, whose UI renders from the same echo.
	Conns []*wsrouter.Conn
}

// SendMessage stamps and fans out a chat message. Messages are transient:
// the service keeps no history beyond the broadcast.
func (s *service) SendMessage(ctx context.Context, params *SendMessageParams) (SendMessageResponse, error) {
	text := strings.TrimSpace(params.Text)
	if text == "" {
		return SendMessageResponse{}, ErrEmptyMessage
	}

	roomCode, err := s.roomRepo.GetMemberRoomCode(ctx, params.ConnId)
	if err != nil {
		if errors.Is(err, room.ErrMemberNotFound) {
			return SendMessageResponse{}, ErrMemberNotFound
		}

		return SendMessageResponse{}, err
	}

	unlock := s.lockRoom(roomCode)
	defer unlock()

	member, err := s.roomRepo.GetMember(ctx, &room.GetMemberParams{RoomCode: roomCode, ConnId: params.ConnId})
	if err != nil {
		if errors.Is(err, room.ErrMemberNotFound) || errors.Is(err, room.ErrRoomNotFound) {
			return SendMessageResponse{}, ErrMemberNotFound
		}

		return SendMessageResponse{}, err
	}

	members, err := s.roomRepo.GetMembers(ctx, roomCode)
	if err != nil {
		return SendMessageResponse{}, err
	}

	return SendMessageResponse{
		Message: ChatMessage{
			Id:        uuid.NewString(),
			Sender:    member.DisplayName,
			Text:      text,
			Timestamp: time.Now().UTC().Format(time.RFC3339),
		},
		Conns: s.memberConns(members, ""),
	}, nil
}
