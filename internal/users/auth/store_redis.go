// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/taibuivan/yamdb/internal/platform/constants"
)

// deleteIfMatch removes KEYS[1] only while it still holds ARGV[1], so a
// verification never erases a code issued after it read the store.
var deleteIfMatch = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisCodeStore implements [CodeStore] with one expiring key per email.
//
// Expiry is enforced by the server (SET ... EX), so every replica sees the same
// live code.
type RedisCodeStore struct {
	client *redis.Client
}

// NewRedisCodeStore creates a Redis-backed [CodeStore].
func NewRedisCodeStore(client *redis.Client) *RedisCodeStore {
	return &RedisCodeStore{client: client}
}

func codeKey(email string) string {
	return constants.RedisPrefixConfirmationCode + email
}

/*
Put stores code for email with a fresh ttl, overwriting any previous value.

Returns:
  - error: Connectivity failures
*/
func (store *RedisCodeStore) Put(ctx context.Context, email, code string, ttl time.Duration) error {
	if err := store.client.Set(ctx, codeKey(email), code, ttl).Err(); err != nil {
		return fmt.Errorf("redis_code_store_put_failed: %w", err)
	}
	return nil
}

/*
Get returns the live code for email.

Returns:
  - string: The stored code
  - error: [ErrCodeNotFound] if absent or expired, or connectivity failures
*/
func (store *RedisCodeStore) Get(ctx context.Context, email string) (string, error) {
	code, err := store.client.Get(ctx, codeKey(email)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", ErrCodeNotFound
		}
		return "", fmt.Errorf("redis_code_store_get_failed: %w", err)
	}
	return code, nil
}

// Delete removes the entry for email while it still holds code.
func (store *RedisCodeStore) Delete(ctx context.Context, email, code string) error {
	if err := deleteIfMatch.Run(ctx, store.client, []string{codeKey(email)}, code).Err(); err != nil {
		return fmt.Errorf("redis_code_store_delete_failed: %w", err)
	}
	return nil
}
