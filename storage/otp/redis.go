// Package otpstore provides the backing stores for one-time login codes.
// The Redis store is the production backend; the in-memory store backs tests
// and local tooling.
package otpstore

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"

	"github.com/courcompanion/backend/core/auth"
)

const keyPrefix = "otp:"

// compareAndDelete deletes the key only when its value equals the submitted
// code. Runs server-side so the check and the delete are a single atomic
// operation: concurrent verifications of the same code cannot both win.
// Returns 1 on match, 0 otherwise; a mismatch leaves the key untouched.
var compareAndDelete = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

type RedisStore struct {
	client *redis.Client
}

var _ auth.OTPStore = (*RedisStore)(nil)

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) Put(ctx context.Context, key, code string, ttl time.Duration) error {
	// SET overwrites any prior code and resets the expiry
	if err := s.client.Set(ctx, keyPrefix+key, code, ttl).Err(); err != nil {
		return errors.Wrap(err, "storing OTP code")
	}
	return nil
}

func (s *RedisStore) VerifyAndConsume(ctx context.Context, key, code string) error {
	n, err := compareAndDelete.Run(ctx, s.client, []string{keyPrefix + key}, code).Int()
	if err != nil {
		return errors.Wrap(err, "verifying OTP code")
	}
	if n == 0 {
		return auth.ErrInvalidOTP
	}
	return nil
}
