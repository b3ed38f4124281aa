package redis

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

const roomsKey = "rooms"

type repo struct {
	rc             *redis.Client
	maxScoreScript string
}

func NewRepo(rc *redis.Client) *repo {
	return &repo{
		rc: rc,
		maxScoreScript: rc.ScriptLoad(context.Background(), `
			local maxScore = redis.call('ZREVRANGE', KEYS[1], 0, 0, 'WITHSCORES')
			local nextScore = 1
			if #maxScore > 0 then
				nextScore = tonumber(maxScore[2]) + 1
			end
			redis.call('ZADD', KEYS[1], nextScore, ARGV[1])
			return nextScore
		`).Val(),
	}
}

func (r repo) getMemberListKey(roomCode string) string {
	return "room:" + roomCode + ":memberlist"
}

func (r repo) getMemberKey(roomCode, connId string) string {
	return "room:" + roomCode + ":member:" + connId
}

func (r repo) getMemberRoomKey(connId string) string {
	return "member:" + connId + ":room"
}

func (r repo) getMediaKey(roomCode string) string {
	return "room:" + roomCode + ":media"
}

func (r repo) getPlaybackKey(roomCode string) string {
	return "room:" + roomCode + ":playback"
}

func (r repo) addWithIncrement(ctx context.Context, c redis.Scripter, key string, value any) {
	c.EvalSha(ctx, r.maxScoreScript, []string{key}, value)
}

func (r repo) executePipe(ctx context.Context, pipe redis.Pipeliner) error {
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to execute pipe: %w", err)
	}

	return nil
}
