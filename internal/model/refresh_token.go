package model

import "time"

// RefreshToken models an entry in the `refresh_tokens` table. Each
// refresh token belongs to a user and carries metadata for expiry,
// revocation and the rotation chain. The token string itself is an
// opaque 512-bit random value; it is globally unique and never reused.
//
// Fields:
//  ID              – primary key identifier.
//  Token           – opaque token value handed to the client.
//  UserID          – owner of the token.
//  CreatedAt       – timestamp of creation.
//  CreatedByIP     – address of the client the token was issued to.
//  ExpiresAt       – expiration timestamp of the token.
//  RevokedAt       – when the token was revoked (nil while active).
//  RevokedByIP     – address of the client that revoked it.
//  ReplacedByToken – token string of the successor issued during
//                    rotation; forms a singly-linked chain per
//                    session lineage. Nil unless rotated.
type RefreshToken struct {
	ID              uint64     // refresh_tokens.id
	Token           string     // refresh_tokens.token
	UserID          uint64     // refresh_tokens.user_id
	CreatedAt       time.Time  // refresh_tokens.created_at
	CreatedByIP     string     // refresh_tokens.created_by_ip
	ExpiresAt       time.Time  // refresh_tokens.expires_at
	RevokedAt       *time.Time // refresh_tokens.revoked_at (nullable)
	RevokedByIP     string     // refresh_tokens.revoked_by_ip
	ReplacedByToken string     // refresh_tokens.replaced_by_token (empty unless rotated)
}

// ExpiredAt reports whether the token is past its expiry at the given instant.
func (t *RefreshToken) ExpiredAt(now time.Time) bool {
	return !now.Before(t.ExpiresAt)
}

// Revoked reports whether the token has been explicitly revoked.
// Revocation is terminal; there is no un-revoke.
func (t *RefreshToken) Revoked() bool {
	return t.RevokedAt != nil
}

// ActiveAt reports whether the token is neither expired nor revoked
// at the given instant. Only active tokens may be rotated or revoked.
func (t *RefreshToken) ActiveAt(now time.Time) bool {
	return !t.Revoked() && !t.ExpiredAt(now)
}
