package room

import (
	"context"
	"errors"
	"strings"

	"github.com/oscoding1/watchtogether/internal/repository/room"
	"github.com/oscoding1/watchtogether/pkg/wsrouter"
)

type JoinRoomParams struct {
	ConnId      string
	RoomCode    string
	DisplayName string
	WantsHost   bool
}

type JoinRoomResponse struct {
	Snapshot     RoomSnapshot
	JoinedMember Member
	Members      []Member
	// OtherConns are the connections of every member except the requester.
	OtherConns []*wsrouter.Conn
}

// JoinRoom joins the connection to the room, creating the room first when the
// requester wants to host one that does not exist yet. The whole operation
// holds the room lock, so no interleaving with another join or leave on the
// same room can produce two hosts or a duplicate name.
func (s *service) JoinRoom(ctx context.Context, params *JoinRoomParams) (JoinRoomResponse, error) {
	roomCode := strings.ToUpper(strings.TrimSpace(params.RoomCode))
	displayName := strings.TrimSpace(params.DisplayName)
	if roomCode == "" || displayName == "" {
		return JoinRoomResponse{}, ErrInvalidRequest
	}

	unlock := s.lockRoom(roomCode)
	defer unlock()

	exists, err := s.roomRepo.RoomExists(ctx, roomCode)
	if err != nil {
		return JoinRoomResponse{}, err
	}

	if !exists {
		if !params.WantsHost {
			return JoinRoomResponse{}, ErrRoomNotFound
		}

		if err := s.roomRepo.CreateRoom(ctx, roomCode); err != nil {
			return JoinRoomResponse{}, err
		}
		if err := s.roomRepo.SetPlayback(ctx, &room.SetPlaybackParams{
			RoomCode: roomCode,
			Playback: room.Playback{IsPlaying: false, Position: 0, UpdatedAt: now()},
		}); err != nil {
			return JoinRoomResponse{}, err
		}

		s.logger.InfoContext(ctx, "room created", "room_code", roomCode)
	}

	members, err := s.roomRepo.GetMembers(ctx, roomCode)
	if err != nil {
		return JoinRoomResponse{}, err
	}

	staleWasHost := false
	for _, member := range members {
		if member.DisplayName == displayName && member.ConnId != params.ConnId {
			return JoinRoomResponse{}, ErrNameTaken
		}
		if member.ConnId == params.ConnId {
			staleWasHost = member.IsHost
		}
	}

	// Reconnect with the same connection id replaces the stale membership.
	if err := s.roomRepo.RemoveMember(ctx, &room.RemoveMemberParams{
		RoomCode: roomCode,
		ConnId:   params.ConnId,
	}); err != nil && !errors.Is(err, room.ErrMemberNotFound) {
		return JoinRoomResponse{}, err
	}

	members, err = s.roomRepo.GetMembers(ctx, roomCode)
	if err != nil {
		return JoinRoomResponse{}, err
	}

	if s.config.MembersLimit > 0 && len(members) >= s.config.MembersLimit {
		return JoinRoomResponse{}, ErrRoomFull
	}

	hostExists := false
	for _, member := range members {
		if member.IsHost {
			hostExists = true
			break
		}
	}

	// Host status is never stolen from an existing host; a rejoining host
	// keeps it.
	isHost := staleWasHost || (params.WantsHost && !hostExists)

	if err := s.roomRepo.AddMember(ctx, &room.AddMemberParams{
		RoomCode:    roomCode,
		ConnId:      params.ConnId,
		DisplayName: displayName,
		IsHost:      isHost,
	}); err != nil {
		return JoinRoomResponse{}, err
	}

	snapshot, err := s.getRoomSnapshot(ctx, roomCode, params.ConnId)
	if err != nil {
		return JoinRoomResponse{}, err
	}

	s.logger.InfoContext(ctx, "member joined",
		"room_code", roomCode,
		"display_name", displayName,
		"is_host", isHost,
	)

	return JoinRoomResponse{
		Snapshot: snapshot,
		JoinedMember: Member{
			ConnId:      params.ConnId,
			DisplayName: displayName,
			IsHost:      isHost,
		},
		Members:    snapshot.Members,
		OtherConns: s.memberConnsFromModels(snapshot.Members, params.ConnId),
	}, nil
}

type LeaveRoomResponse struct {
	// WasMember is false when the connection had no membership to remove.
	WasMember     bool
	IsRoomDeleted bool
	LeftMember    Member
	// NewHost is set when the departing host's role moved to another member.
	NewHost *Member
	Members []Member
	Conns   []*wsrouter.Conn
}

// LeaveRoom removes the connection's membership. Exactly one of room
// deletion, host promotion or a plain member departure happens per call;
// calling it again for the same connection is a no-op.
func (s *service) LeaveRoom(ctx context.Context, connId string) (LeaveRoomResponse, error) {
	roomCode, err := s.roomRepo.GetMemberRoomCode(ctx, connId)
	if err != nil {
		if errors.Is(err, room.ErrMemberNotFound) {
			return LeaveRoomResponse{}, nil
		}

		return LeaveRoomResponse{}, err
	}

	unlock := s.lockRoom(roomCode)
	defer unlock()

	member, err := s.roomRepo.GetMember(ctx, &room.GetMemberParams{RoomCode: roomCode, ConnId: connId})
	if err != nil {
		if errors.Is(err, room.ErrMemberNotFound) || errors.Is(err, room.ErrRoomNotFound) {
			return LeaveRoomResponse{}, nil
		}

		return LeaveRoomResponse{}, err
	}

	if err := s.roomRepo.RemoveMember(ctx, &room.RemoveMemberParams{RoomCode: roomCode, ConnId: connId}); err != nil {
		return LeaveRoomResponse{}, err
	}

	members, err := s.roomRepo.GetMembers(ctx, roomCode)
	if err != nil {
		return LeaveRoomResponse{}, err
	}

	resp := LeaveRoomResponse{
		WasMember:  true,
		LeftMember: memberFromRepo(member),
	}

	if len(members) == 0 {
		if err := s.roomRepo.RemoveRoom(ctx, roomCode); err != nil {
			return LeaveRoomResponse{}, err
		}

		resp.IsRoomDeleted = true
		s.logger.InfoContext(ctx, "room deleted", "room_code", roomCode)

		return resp, nil
	}

	if member.IsHost {
		// Promote the earliest-joined remaining member.
		if err := s.roomRepo.UpdateMemberIsHost(ctx, &room.UpdateMemberIsHostParams{
			RoomCode: roomCode,
			ConnId:   members[0].ConnId,
			IsHost:   true,
		}); err != nil {
			return LeaveRoomResponse{}, err
		}

		members, err = s.roomRepo.GetMembers(ctx, roomCode)
		if err != nil {
			return LeaveRoomResponse{}, err
		}

		newHost := memberFromRepo(members[0])
		resp.NewHost = &newHost

		s.logger.InfoContext(ctx, "host changed",
			"room_code", roomCode,
			"display_name", newHost.DisplayName,
		)
	}

	resp.Members = membersFromRepo(members)
	resp.Conns = s.memberConns(members, "")

	return resp, nil
}

// Disconnect runs the leave lifecycle and then removes the transport entry.
func (s *service) Disconnect(ctx context.Context, connId string) (LeaveRoomResponse, error) {
	resp, err := s.LeaveRoom(ctx, connId)

	s.connRepo.RemoveByConnId(connId)

	return resp, err
}

func (s *service) getRoomSnapshot(ctx context.Context, roomCode, connId string) (RoomSnapshot, error) {
	members, err := s.roomRepo.GetMembers(ctx, roomCode)
	if err != nil {
		return RoomSnapshot{}, err
	}

	media, err := s.roomRepo.GetMedia(ctx, roomCode)
	if err != nil {
		return RoomSnapshot{}, err
	}

	playback, err := s.roomRepo.GetPlayback(ctx, roomCode)
	if err != nil {
		return RoomSnapshot{}, err
	}

	snapshot := RoomSnapshot{
		ConnId:   connId,
		RoomCode: roomCode,
		Members:  membersFromRepo(members),
		Playback: Playback(playback),
	}
	if media != nil {
		snapshot.Media = &Media{URL: media.URL, Kind: media.Kind}
	}

	return snapshot, nil
}

func (s *service) memberConnsFromModels(members []Member, exceptConnId string) []*wsrouter.Conn {
	connIds := make([]string, 0, len(members))
	for _, member := range members {
		if member.ConnId == exceptConnId {
			continue
		}

		connIds = append(connIds, member.ConnId)
	}

	return s.getConns(connIds)
}

func memberFromRepo(m room.Member) Member {
	return Member{
		ConnId:      m.ConnId,
		DisplayName: m.DisplayName,
		IsHost:      m.IsHost,
	}
}

func membersFromRepo(members []room.Member) []Member {
	result := make([]Member, 0, len(members))
	for _, m := range members {
		result = append(result, memberFromRepo(m))
	}

	return result
}
