// Package service implements the authentication core: credential
// verification, access-token issuance and the refresh-token state
// machine. Expected failures are reported through the error values
// below; storage faults are wrapped in ErrPersistence so callers can
// treat them as retryable without seeing driver detail.
package service

import (
	"errors"
	"fmt"
)

// ErrInvalidCredentials is returned for both an unknown email and a
// wrong password. The two cases are deliberately indistinguishable so
// the login endpoint cannot be used to enumerate accounts.
var ErrInvalidCredentials = errors.New("invalid credentials")

// ErrInvalidToken is returned when a refresh or revoke target does not
// exist anywhere.
var ErrInvalidToken = errors.New("invalid token")

// ErrTokenInactive is returned when the target token exists but is
// expired or revoked.
var ErrTokenInactive = errors.New("token inactive")

// ErrTokenReused signals that a client presented a token that was
// already rotated away — a stolen-token replay. It matches
// ErrTokenInactive under errors.Is; the whole lineage is revoked
// before it is returned.
var ErrTokenReused = fmt.Errorf("presented after rotation: %w", ErrTokenInactive)

// ErrConfiguration indicates deployment misconfiguration (missing
// signing secret, issuer, audience or seed role). Fatal, not a user
// error and not retryable.
var ErrConfiguration = errors.New("service misconfigured")

// ErrPersistence wraps storage faults. Retryable from the caller's
// point of view.
var ErrPersistence = errors.New("persistence failure")

// DuplicateError reports a registration conflict and names the
// offending field ("email" or "username").
type DuplicateError struct {
	Field string
}

func (e *DuplicateError) Error() string { return e.Field + " already exists" }

func persistence(op string, err error) error {
	return fmt.Errorf("%w: %s: %v", ErrPersistence, op, err)
}
