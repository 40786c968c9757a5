package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/iliyamo/auth-service/internal/model"
)

// TokenRepo persists refresh tokens. The token column is unique across
// all time, so a token string is never reused even after deletion.
type TokenRepo struct{ DB *sql.DB }

func NewTokenRepo(db *sql.DB) *TokenRepo { return &TokenRepo{DB: db} }

const tokenColumns = `id, token, user_id, created_at, created_by_ip, expires_at, revoked_at, revoked_by_ip, replaced_by_token`

// Insert stores a new refresh token row and fills in its ID.
func (r *TokenRepo) Insert(ctx context.Context, t *model.RefreshToken) error {
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO refresh_tokens (token, user_id, created_at, created_by_ip, expires_at) VALUES (?,?,?,?,?)",
		t.Token, t.UserID, t.CreatedAt, t.CreatedByIP, t.ExpiresAt)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	t.ID = uint64(id)
	return nil
}

// GetByToken fetches a refresh token by its token string.
func (r *TokenRepo) GetByToken(ctx context.Context, token string) (model.RefreshToken, error) {
	var (
		t          model.RefreshToken
		revokedAt  sql.NullTime
		revokedIP  sql.NullString
		replacedBy sql.NullString
	)
	err := r.DB.QueryRowContext(ctx,
		"SELECT "+tokenColumns+" FROM refresh_tokens WHERE token=? LIMIT 1",
		token).Scan(&t.ID, &t.Token, &t.UserID, &t.CreatedAt, &t.CreatedByIP,
		&t.ExpiresAt, &revokedAt, &revokedIP, &replacedBy)
	if err == sql.ErrNoRows {
		return model.RefreshToken{}, ErrNotFound
	}
	if err != nil {
		return model.RefreshToken{}, err
	}
	if revokedAt.Valid {
		at := revokedAt.Time
		t.RevokedAt = &at
	}
	t.RevokedByIP = revokedIP.String
	t.ReplacedByToken = replacedBy.String
	return t, nil
}

// Rotate revokes the old token and inserts its successor in one
// transaction. The revoking UPDATE only matches a still-active row;
// zero affected rows means another rotation (or a revoke) won the
// race, the transaction is rolled back and ErrTokenConflict returned.
// A reader therefore never observes both tokens active, nor neither.
func (r *TokenRepo) Rotate(ctx context.Context, oldToken string, revokedAt time.Time, revokedByIP string, next *model.RefreshToken) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx,
		`UPDATE refresh_tokens
		    SET revoked_at=?, revoked_by_ip=?, replaced_by_token=?
		  WHERE token=? AND revoked_at IS NULL AND expires_at > ?`,
		revokedAt, revokedByIP, next.Token, oldToken, revokedAt)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrTokenConflict
	}

	ins, err := tx.ExecContext(ctx,
		"INSERT INTO refresh_tokens (token, user_id, created_at, created_by_ip, expires_at) VALUES (?,?,?,?,?)",
		next.Token, next.UserID, next.CreatedAt, next.CreatedByIP, next.ExpiresAt)
	if err != nil {
		return err
	}
	id, err := ins.LastInsertId()
	if err != nil {
		return err
	}
	next.ID = uint64(id)
	return tx.Commit()
}

// Revoke marks a token as revoked if it is still active. Returns true
// when a row was flipped, false when the token was absent or already
// inactive — calling it twice is safe and the second call mutates nothing.
func (r *TokenRepo) Revoke(ctx context.Context, token string, revokedAt time.Time, revokedByIP string) (bool, error) {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE refresh_tokens SET revoked_at=?, revoked_by_ip=? WHERE token=? AND revoked_at IS NULL AND expires_at > ?",
		revokedAt, revokedByIP, token, revokedAt)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// RevokeAllForUser revokes every active token the user owns and
// returns how many were flipped. Used for logout-everywhere and for
// lineage revocation on token-reuse detection.
func (r *TokenRepo) RevokeAllForUser(ctx context.Context, userID uint64, revokedAt time.Time, revokedByIP string) (int64, error) {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE refresh_tokens SET revoked_at=?, revoked_by_ip=? WHERE user_id=? AND revoked_at IS NULL AND expires_at > ?",
		revokedAt, revokedByIP, userID, revokedAt)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// DeleteStale removes the user's tokens that are inactive (revoked or
// expired) and were created before the cutoff. Active tokens are never
// deleted regardless of age.
func (r *TokenRepo) DeleteStale(ctx context.Context, userID uint64, cutoff, now time.Time) (int64, error) {
	res, err := r.DB.ExecContext(ctx,
		`DELETE FROM refresh_tokens
		  WHERE user_id=? AND created_at < ?
		    AND (revoked_at IS NOT NULL OR expires_at <= ?)`,
		userID, cutoff, now)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
