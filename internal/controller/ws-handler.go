package controller

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/oscoding1/watchtogether/internal/service/room"
	"github.com/oscoding1/watchtogether/pkg/wsrouter"
)

type EmptyInput struct{}

type JoinRoomInput struct {
	RoomCode    string `json:"room_code" validate:"required"`
	DisplayName string `json:"display_name" validate:"required"`
	WantsHost   bool   `json:"wants_host"`
}

func (c *controller) handleJoinRoom(ctx context.Context, conn *wsrouter.Conn, input JoinRoomInput) error {
	if validationErrors, ok := c.validate.Validate(input); !ok {
		c.writeRoomError(ctx, conn, "invalid_request")
		return fmt.Errorf("invalid join input: %v", validationErrors)
	}

	joinRoomResp, err := c.roomService.JoinRoom(ctx, &room.JoinRoomParams{
		ConnId:      c.getConnIdFromCtx(ctx),
		RoomCode:    input.RoomCode,
		DisplayName: input.DisplayName,
		WantsHost:   input.WantsHost,
	})
	if err != nil {
		if reason := errorReason(err); reason != "" {
			c.writeRoomError(ctx, conn, reason)
		}

		return fmt.Errorf("failed to join room: %w", err)
	}

	c.unicast(ctx, conn, &Output{
		Type:    "ROOM_SNAPSHOT",
		Payload: joinRoomResp.Snapshot,
	})

	c.broadcast(ctx, joinRoomResp.OtherConns, &Output{
		Type: "MEMBER_JOINED",
		Payload: map[string]any{
			"member": joinRoomResp.JoinedMember,
		},
	})

	c.broadcast(ctx, append(joinRoomResp.OtherConns, conn), &Output{
		Type: "MEMBERS_UPDATED",
		Payload: map[string]any{
			"members": joinRoomResp.Members,
		},
	})

	return nil
}

type UpdatePlaybackInput struct {
	Position *float64 `json:"position"`
}

func (c *controller) handlePlay(ctx context.Context, conn *wsrouter.Conn, input UpdatePlaybackInput) error {
	playResp, err := c.roomService.Play(ctx, &room.UpdatePlaybackParams{
		ConnId:   c.getConnIdFromCtx(ctx),
		Position: input.Position,
	})
	if err != nil {
		// Host-gated: non-hosts get no state change and no error.
		return fmt.Errorf("failed to play: %w", err)
	}

	c.broadcast(ctx, playResp.OtherConns, &Output{
		Type: "PLAYBACK_PLAYED",
		Payload: map[string]any{
			"playback": playResp.Playback,
		},
	})

	return nil
}

func (c *controller) handlePause(ctx context.Context, conn *wsrouter.Conn, input UpdatePlaybackInput) error {
	pauseResp, err := c.roomService.Pause(ctx, &room.UpdatePlaybackParams{
		ConnId:   c.getConnIdFromCtx(ctx),
		Position: input.Position,
	})
	if err != nil {
		return fmt.Errorf("failed to pause: %w", err)
	}

	c.broadcast(ctx, pauseResp.OtherConns, &Output{
		Type: "PLAYBACK_PAUSED",
		Payload: map[string]any{
			"playback": pauseResp.Playback,
		},
	})

	return nil
}

type SeekInput struct {
	Position *float64 `json:"position"`
}

func (c *controller) handleSeek(ctx context.Context, conn *wsrouter.Conn, input SeekInput) error {
	seekResp, err := c.roomService.Seek(ctx, &room.SeekParams{
		ConnId:   c.getConnIdFromCtx(ctx),
		Position: input.Position,
	})
	if err != nil {
		if reason := errorReason(err); reason != "" {
			c.writeRoomError(ctx, conn, reason)
		}

		return fmt.Errorf("failed to seek: %w", err)
	}

	c.broadcast(ctx, seekResp.OtherConns, &Output{
		Type: "PLAYBACK_SEEKED",
		Payload: map[string]any{
			"playback": seekResp.Playback,
		},
	})

	return nil
}

type ChangeMediaInput struct {
	URL      string `json:"url" validate:"required"`
	KindHint string `json:"kind_hint"`
}

func (c *controller) handleChangeMedia(ctx context.Context, conn *wsrouter.Conn, input ChangeMediaInput) error {
	if validationErrors, ok := c.validate.Validate(input); !ok {
		c.writeRoomError(ctx, conn, "invalid_request")
		return fmt.Errorf("invalid change media input: %v", validationErrors)
	}

	changeMediaResp, err := c.roomService.ChangeMedia(ctx, &room.ChangeMediaParams{
		ConnId:   c.getConnIdFromCtx(ctx),
		URL:      input.URL,
		KindHint: input.KindHint,
	})
	if err != nil {
		if reason := errorReason(err); reason != "" {
			c.writeRoomError(ctx, conn, reason)
		}

		return fmt.Errorf("failed to change media: %w", err)
	}

	c.broadcast(ctx, changeMediaResp.Conns, &Output{
		Type: "MEDIA_CHANGED",
		Payload: map[string]any{
			"media":    changeMediaResp.Media,
			"playback": changeMediaResp.Playback,
		},
	})

	return nil
}

type SendMessageInput struct {
	Text string `json:"text"`
}

func (c *controller) handleSendMessage(ctx context.Context, conn *wsrouter.Conn, input SendMessageInput) error {
	sendMessageResp, err := c.roomService.SendMessage(ctx, &room.SendMessageParams{
		ConnId: c.getConnIdFromCtx(ctx),
		Text:   input.Text,
	})
	if err != nil {
		return fmt.Errorf("failed to send message: %w", err)
	}

	c.broadcast(ctx, sendMessageResp.Conns, &Output{
		Type:    "CHAT_MESSAGE",
		Payload: sendMessageResp.Message,
	})

	return nil
}

type SignalInput struct {
	Target  string          `json:"target"`
	Payload json.RawMessage `json:"payload"`
}

// handleSignal relays one opaque negotiation payload to the target
// connection, annotated with the sender's id. An unknown target drops the
// message: negotiation retries live in the clients, not here.
func (c *controller) handleSignal(outputType string) wsrouter.HandlerFunc[SignalInput] {
	return func(ctx context.Context, conn *wsrouter.Conn, input SignalInput) error {
		relayResp, err := c.roomService.RelaySignal(ctx, &room.RelaySignalParams{
			SenderId: c.getConnIdFromCtx(ctx),
			TargetId: input.Target,
			Payload:  input.Payload,
		})
		if err != nil {
			return fmt.Errorf("failed to relay signal: %w", err)
		}

		c.unicast(ctx, relayResp.TargetConn, &Output{
			Type:    outputType,
			Payload: relayResp.Signal,
		})

		return nil
	}
}

func (c *controller) handleAlive(ctx context.Context, conn *wsrouter.Conn, _ EmptyInput) error {
	c.unicast(ctx, conn, &Output{Type: "PONG"})
	return nil
}
