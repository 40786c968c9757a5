package utils // helper functions for token creation and verification

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// AccessToken represents a signed JWT access token along with its expiry.
// Access tokens are short-lived, stateless and never persisted; they are
// carried in the Authorization header when calling protected endpoints.
type AccessToken struct {
	Token string    // the serialized JWT string
	Exp   time.Time // the UTC expiration time
}

// ErrSignerConfig is returned when the signer is missing its secret,
// issuer or audience. This indicates deployment misconfiguration and is
// fatal, not retryable.
var ErrSignerConfig = errors.New("token signer misconfigured")

// Signer issues HS256 access tokens with a fixed issuer and audience.
// All fields are required; an incomplete signer refuses to issue.
type Signer struct {
	Secret   string
	Issuer   string
	Audience string
	TTLMin   int
}

// Issue builds and signs an HS256 JWT for a user. The claim set carries
// the subject id, email, username and role name, plus a fresh random jti
// on every call so that two tokens issued to the same user in the same
// instant are never byte-identical.
func (s Signer) Issue(userID uint64, email, username, role string) (AccessToken, error) {
	if s.Secret == "" || s.Issuer == "" || s.Audience == "" {
		return AccessToken{}, ErrSignerConfig
	}
	now := time.Now().UTC()
	exp := now.Add(time.Duration(s.TTLMin) * time.Minute)
	claims := jwt.MapClaims{
		"sub":      userID,
		"email":    email,
		"username": username,
		"role":     role,
		"jti":      uuid.NewString(),
		"iss":      s.Issuer,
		"aud":      s.Audience,
		"exp":      exp.Unix(),
		"iat":      now.Unix(),
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := t.SignedString([]byte(s.Secret))
	if err != nil {
		return AccessToken{}, err
	}
	return AccessToken{Token: signed, Exp: exp}, nil
}

// Parse verifies a serialized access token against the signer's secret,
// issuer and audience and returns its claims. Only HMAC-signed tokens
// are accepted, expiry is required and no clock-skew leeway is granted.
func (s Signer) Parse(raw string) (jwt.MapClaims, error) {
	tok, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return []byte(s.Secret), nil
	},
		jwt.WithIssuer(s.Issuer),
		jwt.WithAudience(s.Audience),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
	)
	if err != nil || !tok.Valid {
		if err == nil {
			err = jwt.ErrTokenInvalidClaims
		}
		return nil, err
	}
	claims, ok := tok.Claims.(jwt.MapClaims)
	if !ok {
		return nil, jwt.ErrTokenInvalidClaims
	}
	return claims, nil
}
