package otpstore

import (
	"context"
	"sync"
	"time"

	"github.com/courcompanion/backend/core/auth"
)

type inMemEntry struct {
	code      string
	expiresAt time.Time
}

// InMemStore mirrors the Redis store's semantics behind a mutex: last write
// wins, expiry is absolute, and a mismatch leaves the record in place.
type InMemStore struct {
	mutex   sync.Mutex
	entries map[string]inMemEntry

	// Now is swappable in tests to exercise expiry.
	Now func() time.Time
}

var _ auth.OTPStore = (*InMemStore)(nil)

func NewInMemStore() *InMemStore {
	return &InMemStore{
		entries: make(map[string]inMemEntry),
		Now:     time.Now,
	}
}

func (s *InMemStore) Put(ctx context.Context, key, code string, ttl time.Duration) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.entries[key] = inMemEntry{code: code, expiresAt: s.Now().Add(ttl)}
	return nil
}

func (s *InMemStore) VerifyAndConsume(ctx context.Context, key, code string) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	entry, ok := s.entries[key]
	if !ok {
		return auth.ErrInvalidOTP
	}
	if s.Now().After(entry.expiresAt) {
		delete(s.entries, key)
		return auth.ErrInvalidOTP
	}
	if entry.code != code {
		return auth.ErrInvalidOTP
	}
	delete(s.entries, key)
	return nil
}
