package store

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"partyrooms/internal/model"
)

// envelope is the stored form of a room: the snapshot plus its version.
// The same envelope is published on the room's change channel; a nil Room
// signals deletion.
type envelope struct {
	Version uint64      `json:"version"`
	Room    *model.Room `json:"room"`
}

// RedisStore keeps rooms in Redis and uses WATCH-based transactions for
// compare-and-swap commits. The key TTL doubles as the inactivity reaper:
// every commit refreshes it, so idle rooms expire on their own.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisStore creates a Redis-backed room store. ttl is the inactivity
// window after which an untouched room is reaped.
func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

func (s *RedisStore) key(code string) string {
	return fmt.Sprintf("room:%s", code)
}

func (s *RedisStore) channel(code string) string {
	return fmt.Sprintf("room:%s:updates", code)
}

func (s *RedisStore) Get(ctx context.Context, code string) (*model.Room, uint64, error) {
	data, err := s.client.Get(ctx, s.key(code)).Result()
	if err == redis.Nil {
		return nil, 0, ErrRoomNotFound
	}
	if err != nil {
		return nil, 0, err
	}
	var env envelope
	if err := json.Unmarshal([]byte(data), &env); err != nil {
		return nil, 0, fmt.Errorf("decode room %s: %w", code, err)
	}
	return env.Room, env.Version, nil
}

func (s *RedisStore) Create(ctx context.Context, room *model.Room) error {
	data, err := json.Marshal(envelope{Version: 1, Room: room})
	if err != nil {
		return err
	}
	ok, err := s.client.SetNX(ctx, s.key(room.Code), data, s.ttl).Result()
	if err != nil {
		return err
	}
	if !ok {
		return ErrRoomExists
	}
	return nil
}

func (s *RedisStore) Commit(ctx context.Context, room *model.Room, expectedVersion uint64) (uint64, error) {
	key := s.key(room.Code)
	next := expectedVersion + 1

	txn := func(tx *redis.Tx) error {
		data, err := tx.Get(ctx, key).Result()
		if err == redis.Nil {
			return ErrRoomNotFound
		}
		if err != nil {
			return err
		}
		var cur envelope
		if err := json.Unmarshal([]byte(data), &cur); err != nil {
			return fmt.Errorf("decode room %s: %w", room.Code, err)
		}
		if cur.Version != expectedVersion {
			return ErrVersionConflict
		}

		payload, err := json.Marshal(envelope{Version: next, Room: room})
		if err != nil {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, payload, s.ttl)
			pipe.Publish(ctx, s.channel(room.Code), payload)
			return nil
		})
		return err
	}

	err := s.client.Watch(ctx, txn, key)
	if err == redis.TxFailedErr {
		// The key changed between our read and the EXEC.
		return 0, ErrVersionConflict
	}
	if err != nil {
		return 0, err
	}
	return next, nil
}

func (s *RedisStore) Delete(ctx context.Context, code string, expectedVersion uint64) error {
	key := s.key(code)

	txn := func(tx *redis.Tx) error {
		data, err := tx.Get(ctx, key).Result()
		if err == redis.Nil {
			return ErrRoomNotFound
		}
		if err != nil {
			return err
		}
		var cur envelope
		if err := json.Unmarshal([]byte(data), &cur); err != nil {
			return fmt.Errorf("decode room %s: %w", code, err)
		}
		if cur.Version != expectedVersion {
			return ErrVersionConflict
		}

		tombstone, err := json.Marshal(envelope{Version: expectedVersion + 1})
		if err != nil {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Del(ctx, key)
			pipe.Publish(ctx, s.channel(code), tombstone)
			return nil
		})
		return err
	}

	err := s.client.Watch(ctx, txn, key)
	if err == redis.TxFailedErr {
		return ErrVersionConflict
	}
	return err
}

func (s *RedisStore) Subscribe(ctx context.Context, code string, fn func(*model.Room)) (func(), error) {
	ps := s.client.Subscribe(ctx, s.channel(code))
	// Force the SUBSCRIBE to complete so callers don't miss commits that
	// land right after Subscribe returns.
	if _, err := ps.Receive(ctx); err != nil {
		ps.Close()
		return nil, err
	}

	go func() {
		for msg := range ps.Channel() {
			var env envelope
			if err := json.Unmarshal([]byte(msg.Payload), &env); err != nil {
				log.Printf("[RoomStore] bad update payload for room %s: %v", code, err)
				continue
			}
			fn(env.Room)
		}
	}()

	return func() { ps.Close() }, nil
}
