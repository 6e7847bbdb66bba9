package conversation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore keeps pending actions in Redis so several front ends (CLI, bus,
// HTTP) can share one conversation. A zero ttl keeps entries until consumed.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
	prefix string
}

func NewRedisStore(redisURL string, ttl time.Duration) (*RedisStore, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	client := redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("connect redis: %w", err)
	}

	return NewRedisStoreFromClient(client, ttl), nil
}

func NewRedisStoreFromClient(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl, prefix: "pending:"}
}

func (r *RedisStore) key(user string) string {
	return r.prefix + user
}

func (r *RedisStore) Get(ctx context.Context, user string) (PendingAction, bool, error) {
	data, err := r.client.Get(ctx, r.key(user)).Bytes()
	if errors.Is(err, redis.Nil) {
		return PendingAction{}, false, nil
	}
	if err != nil {
		return PendingAction{}, false, fmt.Errorf("load pending action: %w", err)
	}

	var a PendingAction
	if err := json.Unmarshal(data, &a); err != nil {
		return PendingAction{}, false, fmt.Errorf("decode pending action: %w", err)
	}
	return a, true, nil
}

func (r *RedisStore) Put(ctx context.Context, user string, action PendingAction) error {
	data, err := json.Marshal(action)
	if err != nil {
		return fmt.Errorf("encode pending action: %w", err)
	}

	if err := r.client.Set(ctx, r.key(user), data, r.ttl).Err(); err != nil {
		return fmt.Errorf("save pending action: %w", err)
	}
	return nil
}

func (r *RedisStore) Delete(ctx context.Context, user string) error {
	if err := r.client.Del(ctx, r.key(user)).Err(); err != nil {
		return fmt.Errorf("delete pending action: %w", err)
	}
	return nil
}

func (r *RedisStore) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func (r *RedisStore) Close() error {
	return r.client.Close()
}
