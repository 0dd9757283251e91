package session

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore keeps sessions in a Redis hash per user with a TTL, so
// idle sessions expire without a janitor. Semantics stay transient: a
// flushed or expired key looks exactly like a missing session.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

func sessionKey(userID int64) string {
	return fmt.Sprintf("session:%d", userID)
}

func (r *RedisStore) Get(userID int64) (State, bool, error) {
	ctx := context.Background()
	fields, err := r.client.HGetAll(ctx, sessionKey(userID)).Result()
	if err != nil {
		return State{}, false, fmt.Errorf("get session %d: %w", userID, err)
	}
	if len(fields) == 0 {
		return State{}, false, nil
	}

	var st State
	fmt.Sscanf(fields["attempts"], "%d", &st.Attempts)
	st.Blocked = fields["blocked"] == "1"
	return st, true, nil
}

func (r *RedisStore) Put(userID int64, state State) error {
	ctx := context.Background()
	key := sessionKey(userID)

	blocked := "0"
	if state.Blocked {
		blocked = "1"
	}
	if err := r.client.HSet(ctx, key, "attempts", state.Attempts, "blocked", blocked).Err(); err != nil {
		return fmt.Errorf("put session %d: %w", userID, err)
	}
	if err := r.client.Expire(ctx, key, r.ttl).Err(); err != nil {
		return fmt.Errorf("expire session %d: %w", userID, err)
	}
	return nil
}

func (r *RedisStore) Delete(userID int64) error {
	if err := r.client.Del(context.Background(), sessionKey(userID)).Err(); err != nil {
		return fmt.Errorf("delete session %d: %w", userID, err)
	}
	return nil
}
