package utils

import (
	"crypto/rand"
	"encoding/hex"
	"time"
)

// RefreshToken represents a long-lived opaque token used to obtain new
// access tokens. The Raw field contains the token string handed back to
// the client; Exp records when it expires.
type RefreshToken struct {
	Raw string    // raw token string returned to the client
	Exp time.Time // UTC expiration time
}

// NewRefreshToken returns a cryptographically secure random token and
// its expiration time. The value carries 512 bits of entropy (64 random
// bytes, 128 hex characters), enough to make guessing or enumeration
// infeasible. The ttlDays parameter controls how many days the token
// is valid.
func NewRefreshToken(ttlDays int) (RefreshToken, error) {
	raw, err := randomHex(64) // 64 bytes -> 128 hex chars
	if err != nil {
		return RefreshToken{}, err
	}
	return RefreshToken{
		Raw: raw,
		Exp: time.Now().UTC().Add(time.Duration(ttlDays) * 24 * time.Hour),
	}, nil
}

// randomHex returns a hex-encoded string generated from n bytes of
// cryptographically secure random data. Failure here means the
// entropy source itself is unavailable and is not retryable.
func randomHex(n int) (string, error) {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
