package redis

import (
	"context"
	"fmt"

	"github.com/oscoding1/watchtogether/internal/repository/room"
)

func (r repo) CreateRoom(ctx context.Context, roomCode string) error {
	added, err := r.rc.SAdd(ctx, roomsKey, roomCode).Result()
	if err != nil {
		return fmt.Errorf("failed to add room: %w", err)
	}

	if added == 0 {
		return room.ErrRoomAlreadyExists
	}

	return nil
}

func (r repo) RemoveRoom(ctx context.Context, roomCode string) error {
	removed, err := r.rc.SRem(ctx, roomsKey, roomCode).Result()
	if err != nil {
		return fmt.Errorf("failed to remove room: %w", err)
	}

	if removed == 0 {
		return room.ErrRoomNotFound
	}

	connIds, err := r.rc.ZRange(ctx, r.getMemberListKey(roomCode), 0, -1).Result()
	if err != nil {
		return fmt.Errorf("failed to get member list: %w", err)
	}

	pipe := r.rc.TxPipeline()
	for _, connId := range connIds {
		pipe.Del(ctx, r.getMemberKey(roomCode, connId))
		pipe.Del(ctx, r.getMemberRoomKey(connId))
	}
	pipe.Del(ctx, r.getMemberListKey(roomCode))
	pipe.Del(ctx, r.getMediaKey(roomCode))
	pipe.Del(ctx, r.getPlaybackKey(roomCode))

	return r.executePipe(ctx, pipe)
}

func (r repo) RoomExists(ctx context.Context, roomCode string) (bool, error) {
	exists, err := r.rc.SIsMember(ctx, roomsKey, roomCode).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check if room exists: %w", err)
	}

	return exists, nil
}

func (r repo) RoomCount(ctx context.Context) (int, error) {
	count, err := r.rc.SCard(ctx, roomsKey).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to count rooms: %w", err)
	}

	return int(count), nil
}
