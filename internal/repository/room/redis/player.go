package redis

import (
	"context"
	"fmt"

	"github.com/oscoding1/watchtogether/internal/repository/room"
)

func (r repo) GetMedia(ctx context.Context, roomCode string) (*room.Media, error) {
	exists, err := r.RoomExists(ctx, roomCode)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, room.ErrRoomNotFound
	}

	mediaKey := r.getMediaKey(roomCode)

	keyExists, err := r.rc.Exists(ctx, mediaKey).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to check if media exists: %w", err)
	}
	if keyExists == 0 {
		return nil, nil
	}

	var media room.Media
	if err := r.rc.HGetAll(ctx, mediaKey).Scan(&media); err != nil {
		return nil, fmt.Errorf("failed to get media: %w", err)
	}

	return &media, nil
}

func (r repo) SetMedia(ctx context.Context, params *room.SetMediaParams) error {
	exists, err := r.RoomExists(ctx, params.RoomCode)
	if err != nil {
		return err
	}
	if !exists {
		return room.ErrRoomNotFound
	}

	if err := r.rc.HSet(ctx, r.getMediaKey(params.RoomCode), params.Media).Err(); err != nil {
		return fmt.Errorf("failed to set media: %w", err)
	}

	return nil
}

func (r repo) GetPlayback(ctx context.Context, roomCode string) (room.Playback, error) {
	exists, err := r.RoomExists(ctx, roomCode)
	if err != nil {
		return room.Playback{}, err
	}
	if !exists {
		return room.Playback{}, room.ErrRoomNotFound
	}

	var playback room.Playback
	if err := r.rc.HGetAll(ctx, r.getPlaybackKey(roomCode)).Scan(&playback); err != nil {
		return room.Playback{}, fmt.Errorf("failed to get playback: %w", err)
	}

	return playback, nil
}

func (r repo) SetPlayback(ctx context.Context, params *room.SetPlaybackParams) error {
	exists, err := r.RoomExists(ctx, params.RoomCode)
	if err != nil {
		return err
	}
	if !exists {
		return room.ErrRoomNotFound
	}

	if err := r.rc.HSet(ctx, r.getPlaybackKey(params.RoomCode), params.Playback).Err(); err != nil {
		return fmt.Errorf("failed to set playback: %w", err)
	}

	return nil
}
