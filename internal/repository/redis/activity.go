package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Key patterns for live game data.
func activeKey(gameID string) string   { return "game:" + gameID + ":active" }
func deadlineKey(gameID string) string { return "game:" + gameID + ":deadline" }

// presenceTTL bounds how long a user counts as present after their
// last request.
const presenceTTL = 90 * time.Second

// deadlineGracePeriod is the extra time after the displayed turn
// deadline before the key expires and a forced turn end triggers.
const deadlineGracePeriod = 5 * time.Second

// Touch records that a user is actively watching a game. Presence
// scores are last-seen unix times in a sorted set; stale entries age
// out on read.
func (c *Client) Touch(ctx context.Context, gameID, userID string) error {
	now := time.Now()
	if err := c.rdb.ZAdd(ctx, activeKey(gameID), redis.Z{
		Score:  float64(now.Unix()),
		Member: userID,
	}).Err(); err != nil {
		return fmt.Errorf("touch presence: %w", err)
	}
	return c.rdb.Expire(ctx, activeKey(gameID), presenceTTL).Err()
}

// ActiveUsers returns the users seen within the presence window.
func (c *Client) ActiveUsers(ctx context.Context, gameID string) ([]string, error) {
	cutoff := time.Now().Add(-presenceTTL).Unix()
	users, err := c.rdb.ZRangeByScore(ctx, activeKey(gameID), &redis.ZRangeBy{
		Min: fmt.Sprintf("%d", cutoff),
		Max: "+inf",
	}).Result()
	if err != nil {
		return nil, fmt.Errorf("active users: %w", err)
	}
	return users, nil
}

// SetTurnDeadline creates a deadline key with a TTL. When the key
// expires, Redis keyspace notifications trigger a forced turn end for
// the current player.
func (c *Client) SetTurnDeadline(ctx context.Context, gameID string, deadline time.Time) error {
	ttl := time.Until(deadline) + deadlineGracePeriod
	if ttl <= 0 {
		ttl = time.Second
	}
	return c.rdb.Set(ctx, deadlineKey(gameID), deadline.Unix(), ttl).Err()
}

// TurnDeadline returns the current turn deadline, or the zero time
// when none is set.
func (c *Client) TurnDeadline(ctx context.Context, gameID string) (time.Time, error) {
	unix, err := c.rdb.Get(ctx, deadlineKey(gameID)).Int64()
	if err == redis.Nil {
		return time.Time{}, nil
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("turn deadline: %w", err)
	}
	return time.Unix(unix, 0), nil
}

// ClearTurnDeadline removes the deadline for a game.
func (c *Client) ClearTurnDeadline(ctx context.Context, gameID string) error {
	return c.rdb.Del(ctx, deadlineKey(gameID)).Err()
}

// DeleteGameData removes all Redis data for a game (on game end).
func (c *Client) DeleteGameData(ctx context.Context, gameID string) error {
	return c.rdb.Del(ctx, activeKey(gameID), deadlineKey(gameID)).Err()
}
