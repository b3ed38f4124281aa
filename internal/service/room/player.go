package room

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/oscoding1/watchtogether/internal/repository/room"
	"github.com/oscoding1/watchtogether/pkg/medialocator"
	"github.com/oscoding1/watchtogether/pkg/wsrouter"
)

func now() int64 {
	return time.Now().UnixMilli()
}

// resolveHost returns the sender's room if and only if the sender is its
// current host. Playback controls are gated server-side so a non-host client
// can never desynchronize the room, conformant or not.
func (s *service) resolveHost(ctx context.Context, connId string) (string, error) {
	roomCode, err := s.roomRepo.GetMemberRoomCode(ctx, connId)
	if err != nil {
		if errors.Is(err, room.ErrMemberNotFound) {
			return "", ErrPermissionDenied
		}

		return "", err
	}

	member, err := s.roomRepo.GetMember(ctx, &room.GetMemberParams{RoomCode: roomCode, ConnId: connId})
	if err != nil {
		if errors.Is(err, room.ErrMemberNotFound) || errors.Is(err, room.ErrRoomNotFound) {
			return "", ErrPermissionDenied
		}

		return "", err
	}

	if !member.IsHost {
		return "", ErrPermissionDenied
	}

	return roomCode, nil
}

type UpdatePlaybackParams struct {
	ConnId string
	// Position in seconds of media time; nil keeps the current position.
	Position *float64
}

type PlaybackResponse struct {
	Playback Playback
	// OtherConns excludes the host, who already applied the state locally.
	OtherConns []*wsrouter.Conn
}

func (s *service) Play(ctx context.Context, params *UpdatePlaybackParams) (PlaybackResponse, error) {
	return s.updatePlayback(ctx, params, true)
}

func (s *service) Pause(ctx context.Context, params *UpdatePlaybackParams) (PlaybackResponse, error) {
	return s.updatePlayback(ctx, params, false)
}

func (s *service) updatePlayback(ctx context.Context, params *UpdatePlaybackParams, isPlaying bool) (PlaybackResponse, error) {
	roomCode, err := s.resolveHost(ctx, params.ConnId)
	if err != nil {
		return PlaybackResponse{}, err
	}

	unlock := s.lockRoom(roomCode)
	defer unlock()

	playback, err := s.roomRepo.GetPlayback(ctx, roomCode)
	if err != nil {
		return PlaybackResponse{}, err
	}

	playback.IsPlaying = isPlaying
	if params.Position != nil {
		playback.Position = max(*params.Position, 0)
	}
	playback.UpdatedAt = now()

	if err := s.roomRepo.SetPlayback(ctx, &room.SetPlaybackParams{
		RoomCode: roomCode,
		Playback: playback,
	}); err != nil {
		return PlaybackResponse{}, err
	}

	members, err := s.roomRepo.GetMembers(ctx, roomCode)
	if err != nil {
		return PlaybackResponse{}, err
	}

	return PlaybackResponse{
		Playback:   Playback(playback),
		OtherConns: s.memberConns(members, params.ConnId),
	}, nil
}

type SeekParams struct {
	ConnId string
	// Position is required; a seek that carries none is rejected.
	Position *float64
}

func (s *service) Seek(ctx context.Context, params *SeekParams) (PlaybackResponse, error) {
	roomCode, err := s.resolveHost(ctx, params.ConnId)
	if err != nil {
		return PlaybackResponse{}, err
	}

	if params.Position == nil {
		return PlaybackResponse{}, ErrInvalidRequest
	}

	unlock := s.lockRoom(roomCode)
	defer unlock()

	playback, err := s.roomRepo.GetPlayback(ctx, roomCode)
	if err != nil {
		return PlaybackResponse{}, err
	}

	// Seek preserves the playing flag.
	playback.Position = max(*params.Position, 0)
	playback.UpdatedAt = now()

	if err := s.roomRepo.SetPlayback(ctx, &room.SetPlaybackParams{
		RoomCode: roomCode,
		Playback: playback,
	}); err != nil {
		return PlaybackResponse{}, err
	}

	members, err := s.roomRepo.GetMembers(ctx, roomCode)
	if err != nil {
		return PlaybackResponse{}, err
	}

	return PlaybackResponse{
		Playback:   Playback(playback),
		OtherConns: s.memberConns(members, params.ConnId),
	}, nil
}

type ChangeMediaParams struct {
	ConnId string
	URL    string
	// KindHint is advisory only; the kind is always re-derived from the URL
	// so every client resolves the same one.
	KindHint string
}

type ChangeMediaResponse struct {
	Media    Media
	Playback Playback
	// Conns includes the host: its local playback state must reset too.
	Conns []*wsrouter.Conn
}

func (s *service) ChangeMedia(ctx context.Context, params *ChangeMediaParams) (ChangeMediaResponse, error) {
	roomCode, err := s.resolveHost(ctx, params.ConnId)
	if err != nil {
		return ChangeMediaResponse{}, err
	}

	url := strings.TrimSpace(params.URL)
	if url == "" {
		return ChangeMediaResponse{}, ErrInvalidRequest
	}

	unlock := s.lockRoom(roomCode)
	defer unlock()

	media := room.Media{URL: url, Kind: medialocator.Classify(url)}
	if err := s.roomRepo.SetMedia(ctx, &room.SetMediaParams{
		RoomCode: roomCode,
		Media:    media,
	}); err != nil {
		return ChangeMediaResponse{}, err
	}

	playback := room.Playback{IsPlaying: false, Position: 0, UpdatedAt: now()}
	if err := s.roomRepo.SetPlayback(ctx, &room.SetPlaybackParams{
		RoomCode: roomCode,
		Playback: playback,
	}); err != nil {
		return ChangeMediaResponse{}, err
	}

	members, err := s.roomRepo.GetMembers(ctx, roomCode)
	if err != nil {
		return ChangeMediaResponse{}, err
	}

	s.logger.InfoContext(ctx, "media changed", "room_code", roomCode, "kind", media.Kind)

	return ChangeMediaResponse{
		Media:    Media(media),
		Playback: Playback(playback),
		Conns:    s.memberConns(members, ""),
	}, nil
}
