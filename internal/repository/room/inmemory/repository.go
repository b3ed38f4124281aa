package inmemory

import (
	"context"
	"slices"
	"sync"

	"github.com/oscoding1/watchtogether/internal/repository/room"
)

type roomState struct {
	members  []room.Member
	media    *room.Media
	playback room.Playback
}

// repo is the in-memory room store: the single authority for every room's
// membership list (in join order), media descriptor and playback state.
type repo struct {
	rooms       map[string]*roomState
	memberRooms map[string]string
	mu          sync.RWMutex
}

func NewRepo() *repo {
	return &repo{
		rooms:       make(map[string]*roomState),
		memberRooms: make(map[string]string),
	}
}

func (r *repo) CreateRoom(_ context.Context, roomCode string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.rooms[roomCode]; exists {
		return room.ErrRoomAlreadyExists
	}

	r.rooms[roomCode] = &roomState{}
	return nil
}

func (r *repo) RemoveRoom(_ context.Context, roomCode string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	state, exists := r.rooms[roomCode]
	if !exists {
		return room.ErrRoomNotFound
	}

	for _, member := range state.members {
		delete(r.memberRooms, member.ConnId)
	}
	delete(r.rooms, roomCode)

	return nil
}

func (r *repo) RoomExists(_ context.Context, roomCode string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, exists := r.rooms[roomCode]
	return exists, nil
}

func (r *repo) RoomCount(_ context.Context) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.rooms), nil
}

func (r *repo) AddMember(_ context.Context, params *room.AddMemberParams) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	state, exists := r.rooms[params.RoomCode]
	if !exists {
		return room.ErrRoomNotFound
	}

	state.members = append(state.members, room.Member{
		ConnId:      params.ConnId,
		DisplayName: params.DisplayName,
		IsHost:      params.IsHost,
	})
	r.memberRooms[params.ConnId] = params.RoomCode

	return nil
}

func (r *repo) RemoveMember(_ context.Context, params *room.RemoveMemberParams) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	state, exists := r.rooms[params.RoomCode]
	if !exists {
		return room.ErrRoomNotFound
	}

	index := slices.IndexFunc(state.members, func(m room.Member) bool {
		return m.ConnId == params.ConnId
	})
	if index == -1 {
		return room.ErrMemberNotFound
	}

	state.members = slices.Delete(state.members, index, index+1)
	delete(r.memberRooms, params.ConnId)

	return nil
}

func (r *repo) GetMember(_ context.Context, params *room.GetMemberParams) (room.Member, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	state, exists := r.rooms[params.RoomCode]
	if !exists {
		return room.Member{}, room.ErrRoomNotFound
	}

	for _, member := range state.members {
		if member.ConnId == params.ConnId {
			return member, nil
		}
	}

	return room.Member{}, room.ErrMemberNotFound
}

// GetMembers returns the room's members in join order.
func (r *repo) GetMembers(_ context.Context, roomCode string) ([]room.Member, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	state, exists := r.rooms[roomCode]
	if !exists {
		return nil, room.ErrRoomNotFound
	}

	return slices.Clone(state.members), nil
}

func (r *repo) GetMemberRoomCode(_ context.Context, connId string) (string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	roomCode, exists := r.memberRooms[connId]
	if !exists {
		return "", room.ErrMemberNotFound
	}

	return roomCode, nil
}

func (r *repo) UpdateMemberIsHost(_ context.Context, params *room.UpdateMemberIsHostParams) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	state, exists := r.rooms[params.RoomCode]
	if !exists {
		return room.ErrRoomNotFound
	}

	for i := range state.members {
		if state.members[i].ConnId == params.ConnId {
			state.members[i].IsHost = params.IsHost
			return nil
		}
	}

	return room.ErrMemberNotFound
}

func (r *repo) GetMedia(_ context.Context, roomCode string) (*room.Media, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	state, exists := r.rooms[roomCode]
	if !exists {
		return nil, room.ErrRoomNotFound
	}

	if state.media == nil {
		return nil, nil
	}

	media := *state.media
	return &media, nil
}

func (r *repo) SetMedia(_ context.Context, params *room.SetMediaParams) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	state, exists := r.rooms[params.RoomCode]
	if !exists {
		return room.ErrRoomNotFound
	}

	media := params.Media
	state.media = &media

	return nil
}

func (r *repo) GetPlayback(_ context.Context, roomCode string) (room.Playback, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	state, exists := r.rooms[roomCode]
	if !exists {
		return room.Playback{}, room.ErrRoomNotFound
	}

	return state.playback, nil
}

func (r *repo) SetPlayback(_ context.Context, params *room.SetPlaybackParams) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	state, exists := r.rooms[params.RoomCode]
	if !exists {
		return room.ErrRoomNotFound
	}

	state.playback = params.Playback

	return nil
}
