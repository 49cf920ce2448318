package auth

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"time"

	"github.com/pkg/errors"
)

var (
	// errors
	ErrInvalidOTP = errors.New("invalid OTP code")
)

// OTPStore holds at most one live code per identity key.
type OTPStore interface {
	// Put stores code under key with an absolute expiry of ttl from now,
	// overwriting any prior unconsumed code for that key.
	Put(ctx context.Context, key, code string, ttl time.Duration) error

	// VerifyAndConsume atomically compares the submitted code against the
	// stored one and deletes the record on match, in a single round trip.
	// An absent, expired or mismatched code yields ErrInvalidOTP; on
	// mismatch the stored record is left in place so the caller may retry
	// within the remaining TTL window. At most one concurrent call per
	// issued code can succeed.
	VerifyAndConsume(ctx context.Context, key, code string) error
}

// GenerateCode returns a zero-padded numeric code drawn from crypto/rand.
// Unpredictable without access to the process; no server-side OTP secret.
func GenerateCode(digits int) (string, error) {
	if digits <= 0 {
		digits = 6
	}
	bound := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(digits)), nil)
	n, err := rand.Int(rand.Reader, bound)
	if err != nil {
		return "", errors.Wrap(err, "generating OTP code")
	}
	return fmt.Sprintf("%0*d", digits, n), nil
}
