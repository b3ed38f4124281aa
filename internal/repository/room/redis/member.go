package redis

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/oscoding1/watchtogether/internal/repository/room"
)

type memberRecord struct {
	DisplayName string `redis:"display_name"`
	IsHost      bool   `redis:"is_host"`
}

func (r repo) AddMember(ctx context.Context, params *room.AddMemberParams) error {
	exists, err := r.RoomExists(ctx, params.RoomCode)
	if err != nil {
		return err
	}
	if !exists {
		return room.ErrRoomNotFound
	}

	pipe := r.rc.TxPipeline()
	pipe.HSet(ctx, r.getMemberKey(params.RoomCode, params.ConnId), memberRecord{
		DisplayName: params.DisplayName,
		IsHost:      params.IsHost,
	})
	pipe.Set(ctx, r.getMemberRoomKey(params.ConnId), params.RoomCode, 0)
	r.addWithIncrement(ctx, pipe, r.getMemberListKey(params.RoomCode), params.ConnId)

	return r.executePipe(ctx, pipe)
}

func (r repo) RemoveMember(ctx context.Context, params *room.RemoveMemberParams) error {
	exists, err := r.RoomExists(ctx, params.RoomCode)
	if err != nil {
		return err
	}
	if !exists {
		return room.ErrRoomNotFound
	}

	removed, err := r.rc.ZRem(ctx, r.getMemberListKey(params.RoomCode), params.ConnId).Result()
	if err != nil {
		return fmt.Errorf("failed to remove member from list: %w", err)
	}
	if removed == 0 {
		return room.ErrMemberNotFound
	}

	pipe := r.rc.TxPipeline()
	pipe.Del(ctx, r.getMemberKey(params.RoomCode, params.ConnId))
	pipe.Del(ctx, r.getMemberRoomKey(params.ConnId))

	return r.executePipe(ctx, pipe)
}

func (r repo) GetMember(ctx context.Context, params *room.GetMemberParams) (room.Member, error) {
	memberKey := r.getMemberKey(params.RoomCode, params.ConnId)

	exists, err := r.rc.Exists(ctx, memberKey).Result()
	if err != nil {
		return room.Member{}, fmt.Errorf("failed to check if member exists: %w", err)
	}
	if exists == 0 {
		return room.Member{}, room.ErrMemberNotFound
	}

	var record memberRecord
	if err := r.rc.HGetAll(ctx, memberKey).Scan(&record); err != nil {
		return room.Member{}, fmt.Errorf("failed to get member: %w", err)
	}

	return room.Member{
		ConnId:      params.ConnId,
		DisplayName: record.DisplayName,
		IsHost:      record.IsHost,
	}, nil
}

func (r repo) GetMembers(ctx context.Context, roomCode string) ([]room.Member, error) {
	exists, err := r.RoomExists(ctx, roomCode)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, room.ErrRoomNotFound
	}

	connIds, err := r.rc.ZRange(ctx, r.getMemberListKey(roomCode), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get member list: %w", err)
	}

	members := make([]room.Member, 0, len(connIds))
	for _, connId := range connIds {
		member, err := r.GetMember(ctx, &room.GetMemberParams{RoomCode: roomCode, ConnId: connId})
		if err != nil {
			return nil, err
		}

		members = append(members, member)
	}

	return members, nil
}

func (r repo) GetMemberRoomCode(ctx context.Context, connId string) (string, error) {
	roomCode, err := r.rc.Get(ctx, r.getMemberRoomKey(connId)).Result()
	if err != nil {
		if err == redis.Nil {
			return "", room.ErrMemberNotFound
		}

		return "", fmt.Errorf("failed to get member room: %w", err)
	}

	return roomCode, nil
}

func (r repo) UpdateMemberIsHost(ctx context.Context, params *room.UpdateMemberIsHostParams) error {
	memberKey := r.getMemberKey(params.RoomCode, params.ConnId)

	exists, err := r.rc.Exists(ctx, memberKey).Result()
	if err != nil {
		return fmt.Errorf("failed to check if member exists: %w", err)
	}
	if exists == 0 {
		return room.ErrMemberNotFound
	}

	if err := r.rc.HSet(ctx, memberKey, "is_host", params.IsHost).Err(); err != nil {
		return fmt.Errorf("failed to update member is_host: %w", err)
	}

	return nil
}
