package room

import (
	"context"
	"errors"

	gonanoid "github.com/matoous/go-nanoid/v2"

	"github.com/oscoding1/watchtogether/internal/repository/room"
)

const (
	roomCodeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	roomCodeLength   = 6
)

type Stats struct {
	Rooms       int `json:"rooms"`
	Connections int `json:"connections"`
}

// Stats reports active room and connection counts for health checks.
func (s *service) Stats(ctx context.Context) (Stats, error) {
	roomCount, err := s.roomRepo.RoomCount(ctx)
	if err != nil {
		return Stats{}, err
	}

	return Stats{
		Rooms:       roomCount,
		Connections: s.connRepo.Count(),
	}, nil
}

type RoomInfo struct {
	Exists      bool     `json:"exists"`
	MemberCount int      `json:"member_count"`
	Members     []string `json:"members,omitempty"`
}

// GetRoomInfo exposes a room's existence and member names without mutating
// any state.
func (s *service) GetRoomInfo(ctx context.Context, roomCode string) (RoomInfo, error) {
	members, err := s.roomRepo.GetMembers(ctx, roomCode)
	if err != nil {
		if errors.Is(err, room.ErrRoomNotFound) {
			return RoomInfo{Exists: false}, nil
		}

		return RoomInfo{}, err
	}

	names := make([]string, 0, len(members))
	for _, member := range members {
		names = append(names, member.DisplayName)
	}

	return RoomInfo{
		Exists:      true,
		MemberCount: len(members),
		Members:     names,
	}, nil
}

// GenerateRoomCode suggests an unused room code. Purely advisory: joining
// still accepts any caller-supplied code.
func (s *service) GenerateRoomCode(ctx context.Context) (string, error) {
	for {
		roomCode, err := gonanoid.Generate(roomCodeAlphabet, roomCodeLength)
		if err != nil {
			return "", err
		}

		exists, err := s.roomRepo.RoomExists(ctx, roomCode)
		if err != nil {
			return "", err
		}

		if !exists {
			return roomCode, nil
		}
	}
}
