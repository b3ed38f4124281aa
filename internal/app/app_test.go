package app

import (
	"context"
	"log/slog"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	connInmemory "github.com/oscoding1/watchtogether/internal/repository/connection/inmemory"
	roomRedis "github.com/oscoding1/watchtogether/internal/repository/room/redis"
	"github.com/oscoding1/watchtogether/internal/service/room"
	"github.com/oscoding1/watchtogether/pkg/wsrouter"
)

func TestConfigValidate(t *testing.T) {
	cfg := &AppConfig{Store: StoreMemory}
	require.NoError(t, cfg.Validate())

	cfg.Store = "postgres"
	assert.Error(t, cfg.Validate())

	cfg.Store = StoreRedis
	cfg.MembersLimit = -1
	assert.Error(t, cfg.Validate())
}

// TestWatchSessionLifecycle runs a full session against the redis room store:
// a host opens a room, a viewer joins, media gets picked and played, chat
// flows, and the host role survives the original host leaving.
func TestWatchSessionLifecycle(t *testing.T) {
	s := miniredis.RunT(t)
	rc := redis.NewClient(&redis.Options{
		Addr: s.Addr(),
	})
	roomService := room.NewService(roomRedis.NewRepo(rc), connInmemory.NewRepo(), &room.Config{
		MembersLimit: 9,
	}, slog.Default())

	ctx := context.Background()

	require.NoError(t, roomService.Connect(wsrouter.NewConn(&websocket.Conn{}, 8), "conn-alice"))
	require.NoError(t, roomService.Connect(wsrouter.NewConn(&websocket.Conn{}, 8), "conn-bob"))

	// alice opens the room
	joinResp, err := roomService.JoinRoom(ctx, &room.JoinRoomParams{
		ConnId:      "conn-alice",
		RoomCode:    "abcdef",
		DisplayName: "Alice",
		WantsHost:   true,
	})
	require.NoError(t, err)
	assert.Equal(t, "ABCDEF", joinResp.Snapshot.RoomCode)
	assert.True(t, joinResp.JoinedMember.IsHost)
	assert.Nil(t, joinResp.Snapshot.Media)
	t.Log("room opened")

	// bob joins as viewer
	joinResp, err = roomService.JoinRoom(ctx, &room.JoinRoomParams{
		ConnId:      "conn-bob",
		RoomCode:    "ABCDEF",
		DisplayName: "Bob",
	})
	require.NoError(t, err)
	assert.False(t, joinResp.JoinedMember.IsHost)
	require.Len(t, joinResp.Members, 2)
	assert.Len(t, joinResp.OtherConns, 1, "only alice should get the join notice")
	t.Log("viewer joined")

	// bob cannot drive playback
	_, err = roomService.Play(ctx, &room.UpdatePlaybackParams{ConnId: "conn-bob"})
	assert.ErrorIs(t, err, room.ErrPermissionDenied)

	// alice picks a video
	mediaResp, err := roomService.ChangeMedia(ctx, &room.ChangeMediaParams{
		ConnId:   "conn-alice",
		URL:      "https://youtu.be/abc123",
		KindHint: room.MediaKindUploadedFile,
	})
	require.NoError(t, err)
	assert.Equal(t, room.MediaKindStreamed, mediaResp.Media.Kind, "kind hint must not override the url")
	assert.False(t, mediaResp.Playback.IsPlaying, "changing media must reset playback")
	assert.Len(t, mediaResp.Conns, 2)
	t.Log("media changed")

	// alice starts playback
	pos := 12.5
	playResp, err := roomService.Play(ctx, &room.UpdatePlaybackParams{ConnId: "conn-alice", Position: &pos})
	require.NoError(t, err)
	assert.True(t, playResp.Playback.IsPlaying)
	assert.Equal(t, pos, playResp.Playback.Position)
	assert.Len(t, playResp.OtherConns, 1, "playback updates skip the host")

	// chat is echoed to everyone
	msgResp, err := roomService.SendMessage(ctx, &room.SendMessageParams{ConnId: "conn-bob", Text: "  hi  "})
	require.NoError(t, err)
	assert.Equal(t, "hi", msgResp.Message.Text)
	assert.Equal(t, "Bob", msgResp.Message.Sender)
	assert.Len(t, msgResp.Conns, 2)

	// alice leaves, bob inherits the host role
	leaveResp, err := roomService.Disconnect(ctx, "conn-alice")
	require.NoError(t, err)
	assert.True(t, leaveResp.WasMember)
	assert.False(t, leaveResp.IsRoomDeleted)
	require.NotNil(t, leaveResp.NewHost)
	assert.Equal(t, "conn-bob", leaveResp.NewHost.ConnId)
	t.Log("host failed over")

	// bob leaves, the room is gone
	leaveResp, err = roomService.Disconnect(ctx, "conn-bob")
	require.NoError(t, err)
	assert.True(t, leaveResp.IsRoomDeleted)

	info, err := roomService.GetRoomInfo(ctx, "ABCDEF")
	require.NoError(t, err)
	assert.False(t, info.Exists)

	assert.Empty(t, rc.Keys(ctx, "*").Val(), "an empty room must leave no state behind")
}
