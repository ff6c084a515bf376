package session

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "session:"

// RedisStore keeps session records in Redis with a TTL matching the cookie
// lifetime, for deployments with more than one instance.
type RedisStore struct {
	rdb *redis.Client
}

var _ Store = (*RedisStore)(nil)

// NewRedisStore connects to Redis and verifies the connection.
func NewRedisStore(ctx context.Context, addr, password string) (*RedisStore, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("session: pinging redis: %w", err)
	}
	return &RedisStore{rdb: rdb}, nil
}

// Get returns the record, or (nil, nil) when the key is missing; Redis
// expires records itself via the key TTL.
func (s *RedisStore) Get(ctx context.Context, id string) (*Record, error) {
	val, err := s.rdb.Get(ctx, redisKeyPrefix+id).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("session: reading record: %w", err)
	}

	var rec Record
	if err := json.Unmarshal([]byte(val), &rec); err != nil {
		return nil, fmt.Errorf("session: decoding record: %w", err)
	}
	return &rec, nil
}

// Save stores the record with a TTL derived from its expiry.
func (s *RedisStore) Save(ctx context.Context, rec *Record) error {
	ttl := time.Until(rec.ExpiresAt)
	if ttl <= 0 {
		return s.Delete(ctx, rec.ID)
	}

	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("session: encoding record: %w", err)
	}
	if err := s.rdb.Set(ctx, redisKeyPrefix+rec.ID, data, ttl).Err(); err != nil {
		return fmt.Errorf("session: writing record: %w", err)
	}
	return nil
}

// Delete removes the record.
func (s *RedisStore) Delete(ctx context.Context, id string) error {
	if err := s.rdb.Del(ctx, redisKeyPrefix+id).Err(); err != nil {
		return fmt.Errorf("session: deleting record: %w", err)
	}
	return nil
}

// Close closes the Redis client.
func (s *RedisStore) Close() error {
	return s.rdb.Close()
}
