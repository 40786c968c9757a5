package service

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/iliyamo/auth-service/internal/model"
	"github.com/iliyamo/auth-service/internal/repository"
	"github.com/iliyamo/auth-service/internal/utils"
)

// TokenStore is the persistence contract the manager needs for refresh
// tokens. Rotate must apply both mutations atomically and fail with
// repository.ErrTokenConflict when the old token is no longer active
// at commit time.
type TokenStore interface {
	Insert(ctx context.Context, t *model.RefreshToken) error
	GetByToken(ctx context.Context, token string) (model.RefreshToken, error)
	Rotate(ctx context.Context, oldToken string, revokedAt time.Time, revokedByIP string, next *model.RefreshToken) error
	Revoke(ctx context.Context, token string, revokedAt time.Time, revokedByIP string) (bool, error)
	RevokeAllForUser(ctx context.Context, userID uint64, revokedAt time.Time, revokedByIP string) (int64, error)
	DeleteStale(ctx context.Context, userID uint64, cutoff, now time.Time) (int64, error)
}

// RefreshTokenManager owns the refresh-token lifecycle: creation,
// rotation, revocation and the retention sweep. Per token the state
// machine is Active → Revoked (terminal) with expiry as a derived
// read-time fact; nothing ever leaves Revoked.
type RefreshTokenManager struct {
	tokens        TokenStore
	ttlDays       int
	retentionDays int
	now           func() time.Time
}

func NewRefreshTokenManager(tokens TokenStore, ttlDays, retentionDays int) *RefreshTokenManager {
	if retentionDays <= 0 {
		retentionDays = 30
	}
	return &RefreshTokenManager{
		tokens:        tokens,
		ttlDays:       ttlDays,
		retentionDays: retentionDays,
		now:           func() time.Time { return time.Now().UTC() },
	}
}

// Create issues and persists a fresh refresh token for the user.
func (m *RefreshTokenManager) Create(ctx context.Context, userID uint64, ip string) (model.RefreshToken, error) {
	raw, err := utils.NewRefreshToken(m.ttlDays)
	if err != nil {
		return model.RefreshToken{}, err
	}
	t := model.RefreshToken{
		Token:       raw.Raw,
		UserID:      userID,
		CreatedAt:   m.now(),
		CreatedByIP: ip,
		ExpiresAt:   raw.Exp,
	}
	if err := m.tokens.Insert(ctx, &t); err != nil {
		return model.RefreshToken{}, persistence("insert token", err)
	}
	return t, nil
}

// Rotate revokes the presented token and issues its successor for the
// same user, committing both as one atomic unit. Fails with
// ErrInvalidToken when the token does not exist and ErrTokenInactive
// when it is already revoked or expired.
//
// Presenting a token that was already rotated away is treated as a
// breach signal: every active token of the owner is revoked before
// ErrTokenReused is returned. The old token is returned alongside the
// error in that case so callers can attribute the event.
func (m *RefreshTokenManager) Rotate(ctx context.Context, token, ip string) (old, next model.RefreshToken, err error) {
	now := m.now()
	cur, err := m.tokens.GetByToken(ctx, token)
	if errors.Is(err, repository.ErrNotFound) {
		return model.RefreshToken{}, model.RefreshToken{}, ErrInvalidToken
	}
	if err != nil {
		return model.RefreshToken{}, model.RefreshToken{}, persistence("load token", err)
	}
	if !cur.ActiveAt(now) {
		if cur.Revoked() && cur.ReplacedByToken != "" {
			if n, rerr := m.tokens.RevokeAllForUser(ctx, cur.UserID, now, ip); rerr != nil {
				log.Printf("token-manager: lineage revoke for user %d failed: %v", cur.UserID, rerr)
			} else if n > 0 {
				log.Printf("token-manager: reuse detected, revoked %d active token(s) of user %d", n, cur.UserID)
			}
			return cur, model.RefreshToken{}, ErrTokenReused
		}
		return cur, model.RefreshToken{}, ErrTokenInactive
	}

	raw, err := utils.NewRefreshToken(m.ttlDays)
	if err != nil {
		return model.RefreshToken{}, model.RefreshToken{}, err
	}
	next = model.RefreshToken{
		Token:       raw.Raw,
		UserID:      cur.UserID,
		CreatedAt:   now,
		CreatedByIP: ip,
		ExpiresAt:   raw.Exp,
	}
	if err := m.tokens.Rotate(ctx, cur.Token, now, ip, &next); err != nil {
		if errors.Is(err, repository.ErrTokenConflict) {
			// A concurrent rotation or revoke committed first; this call loses.
			return cur, model.RefreshToken{}, ErrTokenInactive
		}
		return model.RefreshToken{}, model.RefreshToken{}, persistence("rotate token", err)
	}
	cur.RevokedAt = &now
	cur.RevokedByIP = ip
	cur.ReplacedByToken = next.Token
	return cur, next, nil
}

// Revoke marks the token revoked with the caller's IP. Returns false,
// not an error, when the token is absent or already inactive; the
// second of two revokes observes inactive and mutates nothing. The
// owning user id accompanies a successful revoke so callers can
// attribute the event.
func (m *RefreshTokenManager) Revoke(ctx context.Context, token, ip string) (bool, uint64, error) {
	cur, err := m.tokens.GetByToken(ctx, token)
	if errors.Is(err, repository.ErrNotFound) {
		return false, 0, nil
	}
	if err != nil {
		return false, 0, persistence("load token", err)
	}
	ok, err := m.tokens.Revoke(ctx, token, m.now(), ip)
	if err != nil {
		return false, 0, persistence("revoke token", err)
	}
	return ok, cur.UserID, nil
}

// RevokeAll revokes every active token the user owns.
func (m *RefreshTokenManager) RevokeAll(ctx context.Context, userID uint64, ip string) (int64, error) {
	n, err := m.tokens.RevokeAllForUser(ctx, userID, m.now(), ip)
	if err != nil {
		return 0, persistence("revoke all tokens", err)
	}
	return n, nil
}

// Cleanup deletes the user's inactive tokens older than the retention
// window. It runs inline on login and rotation as best-effort
// housekeeping: failures are logged, never propagated, so they cannot
// turn a successful operation into a failure.
func (m *RefreshTokenManager) Cleanup(ctx context.Context, userID uint64) {
	now := m.now()
	cutoff := now.AddDate(0, 0, -m.retentionDays)
	if _, err := m.tokens.DeleteStale(ctx, userID, cutoff, now); err != nil {
		log.Printf("token-manager: cleanup for user %d failed: %v", userID, err)
	}
}
