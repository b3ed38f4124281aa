package room

import (
	"context"
	"log/slog"
	"strings"
	"testing"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	connInmemory "github.com/oscoding1/watchtogether/internal/repository/connection/inmemory"
	roomInmemory "github.com/oscoding1/watchtogether/internal/repository/room/inmemory"
	"github.com/oscoding1/watchtogether/pkg/wsrouter"
)

func newTestService(t *testing.T) *service {
	t.Helper()

	return NewService(roomInmemory.NewRepo(), connInmemory.NewRepo(), &Config{MembersLimit: 9}, slog.Default())
}

func connect(t *testing.T, s *service, connId string) {
	t.Helper()

	require.NoError(t, s.Connect(wsrouter.NewConn(&websocket.Conn{}, 8), connId))
}

func TestJoinRoomCreatesRoomForHost(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()
	connect(t, s, "a")

	resp, err := s.JoinRoom(ctx, &JoinRoomParams{ConnId: "a", RoomCode: "abcdef", DisplayName: "Alice", WantsHost: true})
	require.NoError(t, err)

	assert.Equal(t, "ABCDEF", resp.Snapshot.RoomCode, "room code must be case-normalized")
	require.Len(t, resp.Snapshot.Members, 1)
	assert.True(t, resp.Snapshot.Members[0].IsHost)
	assert.Nil(t, resp.Snapshot.Media, "media must be unset")
	assert.False(t, resp.Snapshot.Playback.IsPlaying)
	assert.Zero(t, resp.Snapshot.Playback.Position)
	assert.Empty(t, resp.OtherConns)
}

func TestJoinRoomNotFoundWithoutHost(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()
	connect(t, s, "a")

	_, err := s.JoinRoom(ctx, &JoinRoomParams{ConnId: "a", RoomCode: "ABCDEF", DisplayName: "Alice"})
	assert.ErrorIs(t, err, ErrRoomNotFound)

	info, err := s.GetRoomInfo(ctx, "ABCDEF")
	require.NoError(t, err)
	assert.False(t, info.Exists, "failed join must not create a room")
}

func TestJoinRoomInvalidRequest(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()
	connect(t, s, "a")

	_, err := s.JoinRoom(ctx, &JoinRoomParams{ConnId: "a", RoomCode: "  ", DisplayName: "Alice", WantsHost: true})
	assert.ErrorIs(t, err, ErrInvalidRequest)

	_, err = s.JoinRoom(ctx, &JoinRoomParams{ConnId: "a", RoomCode: "ABCDEF", DisplayName: "   ", WantsHost: true})
	assert.ErrorIs(t, err, ErrInvalidRequest)
}

func TestJoinRoomNameTaken(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()
	connect(t, s, "a")
	connect(t, s, "b")

	_, err := s.JoinRoom(ctx, &JoinRoomParams{ConnId: "a", RoomCode: "ABCDEF", DisplayName: "Alice", WantsHost: true})
	require.NoError(t, err)

	_, err = s.JoinRoom(ctx, &JoinRoomParams{ConnId: "b", RoomCode: "ABCDEF", DisplayName: "Alice"})
	assert.ErrorIs(t, err, ErrNameTaken)

	info, err := s.GetRoomInfo(ctx, "ABCDEF")
	require.NoError(t, err)
	assert.Equal(t, 1, info.MemberCount, "first member must be unaffected")
}

func TestJoinRoomDoesNotStealHost(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()
	connect(t, s, "a")
	connect(t, s, "b")

	_, err := s.JoinRoom(ctx, &JoinRoomParams{ConnId: "a", RoomCode: "ABCDEF", DisplayName: "Alice", WantsHost: true})
	require.NoError(t, err)

	resp, err := s.JoinRoom(ctx, &JoinRoomParams{ConnId: "b", RoomCode: "ABCDEF", DisplayName: "Bob", WantsHost: true})
	require.NoError(t, err)

	assert.False(t, resp.JoinedMember.IsHost)
	assertSingleHost(t, resp.Members, "Alice")
}

func TestJoinRoomRejoinReplacesStaleMembership(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()
	connect(t, s, "a")

	_, err := s.JoinRoom(ctx, &JoinRoomParams{ConnId: "a", RoomCode: "ABCDEF", DisplayName: "Alice", WantsHost: true})
	require.NoError(t, err)

	resp, err := s.JoinRoom(ctx, &JoinRoomParams{ConnId: "a", RoomCode: "ABCDEF", DisplayName: "Alice", WantsHost: true})
	require.NoError(t, err)

	require.Len(t, resp.Members, 1, "rejoin must not duplicate the membership")
	assert.True(t, resp.JoinedMember.IsHost, "rejoining host keeps host status")
}

func TestLeaveRoomPromotesEarliestJoined(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()
	for _, c := range []string{"a", "b", "c"} {
		connect(t, s, c)
	}

	_, err := s.JoinRoom(ctx, &JoinRoomParams{ConnId: "a", RoomCode: "ABCDEF", DisplayName: "Alice", WantsHost: true})
	require.NoError(t, err)
	_, err = s.JoinRoom(ctx, &JoinRoomParams{ConnId: "b", RoomCode: "ABCDEF", DisplayName: "Bob"})
	require.NoError(t, err)
	_, err = s.JoinRoom(ctx, &JoinRoomParams{ConnId: "c", RoomCode: "ABCDEF", DisplayName: "Carol"})
	require.NoError(t, err)

	resp, err := s.Disconnect(ctx, "a")
	require.NoError(t, err)

	assert.True(t, resp.WasMember)
	assert.False(t, resp.IsRoomDeleted)
	require.NotNil(t, resp.NewHost)
	assert.Equal(t, "Bob", resp.NewHost.DisplayName, "earliest-joined member becomes host")
	assert.Len(t, resp.Conns, 2, "host change must reach all remaining members")
	assertSingleHost(t, resp.Members, "Bob")
}

func TestLeaveRoomNonHostDeparture(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()
	connect(t, s, "a")
	connect(t, s, "b")

	_, err := s.JoinRoom(ctx, &JoinRoomParams{ConnId: "a", RoomCode: "ABCDEF", DisplayName: "Alice", WantsHost: true})
	require.NoError(t, err)
	_, err = s.JoinRoom(ctx, &JoinRoomParams{ConnId: "b", RoomCode: "ABCDEF", DisplayName: "Bob"})
	require.NoError(t, err)

	resp, err := s.Disconnect(ctx, "b")
	require.NoError(t, err)

	assert.True(t, resp.WasMember)
	assert.Nil(t, resp.NewHost, "non-host departure must not move the host role")
	assert.False(t, resp.IsRoomDeleted)
	assertSingleHost(t, resp.Members, "Alice")
}

func TestLeaveRoomDestroysEmptyRoom(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()
	connect(t, s, "a")

	_, err := s.JoinRoom(ctx, &JoinRoomParams{ConnId: "a", RoomCode: "ABCDEF", DisplayName: "Alice", WantsHost: true})
	require.NoError(t, err)

	_, err = s.ChangeMedia(ctx, &ChangeMediaParams{ConnId: "a", URL: "https://youtu.be/xyz"})
	require.NoError(t, err)

	resp, err := s.Disconnect(ctx, "a")
	require.NoError(t, err)
	assert.True(t, resp.IsRoomDeleted)

	info, err := s.GetRoomInfo(ctx, "ABCDEF")
	require.NoError(t, err)
	assert.False(t, info.Exists)

	// The same code makes a brand-new room without residue.
	connect(t, s, "b")
	joinResp, err := s.JoinRoom(ctx, &JoinRoomParams{ConnId: "b", RoomCode: "ABCDEF", DisplayName: "Bob", WantsHost: true})
	require.NoError(t, err)
	assert.Nil(t, joinResp.Snapshot.Media)
	assert.False(t, joinResp.Snapshot.Playback.IsPlaying)
	assert.Zero(t, joinResp.Snapshot.Playback.Position)
}

func TestLeaveRoomIdempotent(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()
	connect(t, s, "a")

	_, err := s.JoinRoom(ctx, &JoinRoomParams{ConnId: "a", RoomCode: "ABCDEF", DisplayName: "Alice", WantsHost: true})
	require.NoError(t, err)

	first, err := s.Disconnect(ctx, "a")
	require.NoError(t, err)
	assert.True(t, first.WasMember)

	second, err := s.Disconnect(ctx, "a")
	require.NoError(t, err)
	assert.False(t, second.WasMember, "duplicate leave must have no additional effect")
}

func TestPlaybackHostGated(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()
	connect(t, s, "a")
	connect(t, s, "b")

	_, err := s.JoinRoom(ctx, &JoinRoomParams{ConnId: "a", RoomCode: "ABCDEF", DisplayName: "Alice", WantsHost: true})
	require.NoError(t, err)
	_, err = s.JoinRoom(ctx, &JoinRoomParams{ConnId: "b", RoomCode: "ABCDEF", DisplayName: "Bob"})
	require.NoError(t, err)

	_, err = s.Play(ctx, &UpdatePlaybackParams{ConnId: "b"})
	assert.ErrorIs(t, err, ErrPermissionDenied)
	_, err = s.Pause(ctx, &UpdatePlaybackParams{ConnId: "b"})
	assert.ErrorIs(t, err, ErrPermissionDenied)
	position := 10.0
	_, err = s.Seek(ctx, &SeekParams{ConnId: "b", Position: &position})
	assert.ErrorIs(t, err, ErrPermissionDenied)
	_, err = s.ChangeMedia(ctx, &ChangeMediaParams{ConnId: "b", URL: "https://youtu.be/xyz"})
	assert.ErrorIs(t, err, ErrPermissionDenied)

	// Unknown connections are gated the same way.
	_, err = s.Play(ctx, &UpdatePlaybackParams{ConnId: "ghost"})
	assert.ErrorIs(t, err, ErrPermissionDenied)

	playback, err := s.roomRepo.GetPlayback(ctx, "ABCDEF")
	require.NoError(t, err)
	assert.False(t, playback.IsPlaying, "gated call must not change state")
	assert.Zero(t, playback.Position)
}

func TestPlayPauseSeek(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()
	connect(t, s, "a")
	connect(t, s, "b")

	_, err := s.JoinRoom(ctx, &JoinRoomParams{ConnId: "a", RoomCode: "ABCDEF", DisplayName: "Alice", WantsHost: true})
	require.NoError(t, err)
	_, err = s.JoinRoom(ctx, &JoinRoomParams{ConnId: "b", RoomCode: "ABCDEF", DisplayName: "Bob"})
	require.NoError(t, err)

	playResp, err := s.Play(ctx, &UpdatePlaybackParams{ConnId: "a"})
	require.NoError(t, err)
	assert.True(t, playResp.Playback.IsPlaying)
	assert.Zero(t, playResp.Playback.Position, "play without position keeps the current one")
	assert.NotZero(t, playResp.Playback.UpdatedAt)
	assert.Len(t, playResp.OtherConns, 1, "host is excluded from the broadcast")

	position := 42.5
	pauseResp, err := s.Pause(ctx, &UpdatePlaybackParams{ConnId: "a", Position: &position})
	require.NoError(t, err)
	assert.False(t, pauseResp.Playback.IsPlaying)
	assert.Equal(t, 42.5, pauseResp.Playback.Position)

	seekPosition := 120.0
	seekResp, err := s.Seek(ctx, &SeekParams{ConnId: "a", Position: &seekPosition})
	require.NoError(t, err)
	assert.False(t, seekResp.Playback.IsPlaying, "seek preserves the playing flag")
	assert.Equal(t, float64(120), seekResp.Playback.Position)
}

func TestSeekRequiresPosition(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()
	connect(t, s, "a")

	_, err := s.JoinRoom(ctx, &JoinRoomParams{ConnId: "a", RoomCode: "ABCDEF", DisplayName: "Alice", WantsHost: true})
	require.NoError(t, err)

	_, err = s.Seek(ctx, &SeekParams{ConnId: "a"})
	assert.ErrorIs(t, err, ErrInvalidRequest)

	playback, err := s.roomRepo.GetPlayback(ctx, "ABCDEF")
	require.NoError(t, err)
	assert.Zero(t, playback.Position, "rejected seek must not change state")
}

func TestChangeMediaRequiresURL(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()
	connect(t, s, "a")

	_, err := s.JoinRoom(ctx, &JoinRoomParams{ConnId: "a", RoomCode: "ABCDEF", DisplayName: "Alice", WantsHost: true})
	require.NoError(t, err)

	_, err = s.ChangeMedia(ctx, &ChangeMediaParams{ConnId: "a", URL: "   "})
	assert.ErrorIs(t, err, ErrInvalidRequest)

	media, err := s.roomRepo.GetMedia(ctx, "ABCDEF")
	require.NoError(t, err)
	assert.Nil(t, media, "rejected media change must leave media unset")
}

func TestChangeMediaClassifiesURL(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()
	connect(t, s, "a")
	connect(t, s, "b")

	_, err := s.JoinRoom(ctx, &JoinRoomParams{ConnId: "a", RoomCode: "ABCDEF", DisplayName: "Alice", WantsHost: true})
	require.NoError(t, err)
	_, err = s.JoinRoom(ctx, &JoinRoomParams{ConnId: "b", RoomCode: "ABCDEF", DisplayName: "Bob"})
	require.NoError(t, err)

	// Start playing so the reset is observable.
	_, err = s.Play(ctx, &UpdatePlaybackParams{ConnId: "a"})
	require.NoError(t, err)

	resp, err := s.ChangeMedia(ctx, &ChangeMediaParams{ConnId: "a", URL: "https://youtu.be/xyz", KindHint: "uploaded-file"})
	require.NoError(t, err)
	assert.Equal(t, MediaKindStreamed, resp.Media.Kind, "kind hint must not override URL classification")
	assert.False(t, resp.Playback.IsPlaying, "media change resets playback")
	assert.Zero(t, resp.Playback.Position)
	assert.Len(t, resp.Conns, 2, "media change reaches the host too")

	resp, err = s.ChangeMedia(ctx, &ChangeMediaParams{ConnId: "a", URL: "https://cdn.example.com/movie.mp4", KindHint: "streamed"})
	require.NoError(t, err)
	assert.Equal(t, MediaKindUploadedFile, resp.Media.Kind)
}

func TestSendMessage(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()
	connect(t, s, "a")
	connect(t, s, "b")

	_, err := s.JoinRoom(ctx, &JoinRoomParams{ConnId: "a", RoomCode: "ABCDEF", DisplayName: "Alice", WantsHost: true})
	require.NoError(t, err)
	_, err = s.JoinRoom(ctx, &JoinRoomParams{ConnId: "b", RoomCode: "ABCDEF", DisplayName: "Bob"})
	require.NoError(t, err)

	resp, err := s.SendMessage(ctx, &SendMessageParams{ConnId: "b", Text: "  hello  "})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Message.Id)
	assert.Equal(t, "Bob", resp.Message.Sender)
	assert.Equal(t, "hello", resp.Message.Text)
	assert.NotEmpty(t, resp.Message.Timestamp)
	assert.Len(t, resp.Conns, 2, "chat echo includes the sender")

	_, err = s.SendMessage(ctx, &SendMessageParams{ConnId: "b", Text: "   "})
	assert.ErrorIs(t, err, ErrEmptyMessage)

	_, err = s.SendMessage(ctx, &SendMessageParams{ConnId: "ghost", Text: "hello"})
	assert.ErrorIs(t, err, ErrMemberNotFound)
}

func TestRelaySignal(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()
	connect(t, s, "a")
	connect(t, s, "b")

	resp, err := s.RelaySignal(ctx, &RelaySignalParams{SenderId: "a", TargetId: "b", Payload: []byte(`{"sdp":"x"}`)})
	require.NoError(t, err)
	assert.NotNil(t, resp.TargetConn)
	assert.Equal(t, "a", resp.Signal.Sender, "envelope carries the sender id for the answer path")
	assert.JSONEq(t, `{"sdp":"x"}`, string(resp.Signal.Payload), "payload passes through untouched")

	_, err = s.RelaySignal(ctx, &RelaySignalParams{SenderId: "a", TargetId: "ghost"})
	assert.ErrorIs(t, err, ErrTargetNotFound)
}

func TestStats(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()
	connect(t, s, "a")
	connect(t, s, "b")

	_, err := s.JoinRoom(ctx, &JoinRoomParams{ConnId: "a", RoomCode: "ABCDEF", DisplayName: "Alice", WantsHost: true})
	require.NoError(t, err)

	stats, err := s.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Rooms)
	assert.Equal(t, 2, stats.Connections)
}

func TestGenerateRoomCode(t *testing.T) {
	s := newTestService(t)

	roomCode, err := s.GenerateRoomCode(context.Background())
	require.NoError(t, err)
	assert.Len(t, roomCode, 6)
	assert.Equal(t, strings.ToUpper(roomCode), roomCode, "code is drawn from an uppercase alphabet")
}

func assertSingleHost(t *testing.T, members []Member, wantName string) {
	t.Helper()

	hosts := 0
	for _, member := range members {
		if member.IsHost {
			hosts++
			assert.Equal(t, wantName, member.DisplayName)
		}
	}
	assert.Equal(t, 1, hosts, "exactly one host per non-empty room")
}
