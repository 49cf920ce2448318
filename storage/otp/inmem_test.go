package otpstore

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/courcompanion/backend/core/auth"
)

func TestInMemStore(t *testing.T) {
	ctx := context.Background()
	ttl := 5 * time.Minute

	t.Run("consume deletes on match", func(t *testing.T) {
		store := NewInMemStore()
		require.NoError(t, store.Put(ctx, "user:a@test.cd", "123456", ttl))
		require.NoError(t, store.VerifyAndConsume(ctx, "user:a@test.cd", "123456"))
		// single use
		assert.Equal(t, auth.ErrInvalidOTP, store.VerifyAndConsume(ctx, "user:a@test.cd", "123456"))
	})

	t.Run("mismatch keeps the record", func(t *testing.T) {
		store := NewInMemStore()
		require.NoError(t, store.Put(ctx, "user:a@test.cd", "123456", ttl))
		assert.Equal(t, auth.ErrInvalidOTP, store.VerifyAndConsume(ctx, "user:a@test.cd", "654321"))
		assert.NoError(t, store.VerifyAndConsume(ctx, "user:a@test.cd", "123456"))
	})

	t.Run("absent key", func(t *testing.T) {
		store := NewInMemStore()
		assert.Equal(t, auth.ErrInvalidOTP, store.VerifyAndConsume(ctx, "user:missing@test.cd", "123456"))
	})

	t.Run("last write wins", func(t *testing.T) {
		store := NewInMemStore()
		require.NoError(t, store.Put(ctx, "user:a@test.cd", "111111", ttl))
		require.NoError(t, store.Put(ctx, "user:a@test.cd", "222222", ttl))
		assert.Equal(t, auth.ErrInvalidOTP, store.VerifyAndConsume(ctx, "user:a@test.cd", "111111"))
		assert.NoError(t, store.VerifyAndConsume(ctx, "user:a@test.cd", "222222"))
	})

	t.Run("expired code", func(t *testing.T) {
		store := NewInMemStore()
		require.NoError(t, store.Put(ctx, "user:a@test.cd", "123456", ttl))
		store.Now = func() time.Time { return time.Now().Add(ttl + time.Second) }
		assert.Equal(t, auth.ErrInvalidOTP, store.VerifyAndConsume(ctx, "user:a@test.cd", "123456"))
	})

	t.Run("keys are isolated", func(t *testing.T) {
		store := NewInMemStore()
		require.NoError(t, store.Put(ctx, "user:a@test.cd", "111111", ttl))
		require.NoError(t, store.Put(ctx, "coach:a@test.cd", "222222", ttl))
		assert.NoError(t, store.VerifyAndConsume(ctx, "user:a@test.cd", "111111"))
		assert.NoError(t, store.VerifyAndConsume(ctx, "coach:a@test.cd", "222222"))
	})
}
