package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// LeaderboardCache tracks dare scores per room in a Redis ZSET so the
// standings can be read without loading the full room snapshot.
type LeaderboardCache interface {
	SetScore(ctx context.Context, roomCode, playerID string, score int) error
	Remove(ctx context.Context, roomCode, playerID string) error
	Top(ctx context.Context, roomCode string, limit int) ([]LeaderboardEntry, error)
	Clear(ctx context.Context, roomCode string) error
}

// LeaderboardEntry is a single ranked row.
type LeaderboardEntry struct {
	PlayerID string `json:"playerId"`
	Score    int    `json:"score"`
	Rank     int    `json:"rank"`
}

type leaderboardCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewLeaderboardCache creates a new leaderboard cache. The TTL mirrors
// the room store's so standings don't outlive their room.
func NewLeaderboardCache(client *redis.Client, ttl time.Duration) LeaderboardCache {
	return &leaderboardCache{client: client, ttl: ttl}
}

func (c *leaderboardCache) key(roomCode string) string {
	return fmt.Sprintf("room:%s:scores", roomCode)
}

func (c *leaderboardCache) SetScore(ctx context.Context, roomCode, playerID string, score int) error {
	key := c.key(roomCode)
	if err := c.client.ZAdd(ctx, key, redis.Z{Score: float64(score), Member: playerID}).Err(); err != nil {
		return err
	}
	return c.client.Expire(ctx, key, c.ttl).Err()
}

func (c *leaderboardCache) Remove(ctx context.Context, roomCode, playerID string) error {
	return c.client.ZRem(ctx, c.key(roomCode), playerID).Err()
}

func (c *leaderboardCache) Top(ctx context.Context, roomCode string, limit int) ([]LeaderboardEntry, error) {
	results, err := c.client.ZRevRangeWithScores(ctx, c.key(roomCode), 0, int64(limit-1)).Result()
	if err != nil {
		return nil, err
	}

	entries := make([]LeaderboardEntry, len(results))
	for i, z := range results {
		entries[i] = LeaderboardEntry{
			PlayerID: z.Member.(string),
			Score:    int(z.Score),
			Rank:     i + 1,
		}
	}
	return entries, nil
}

func (c *leaderboardCache) Clear(ctx context.Context, roomCode string) error {
	return c.client.Del(ctx, c.key(roomCode)).Err()
}
