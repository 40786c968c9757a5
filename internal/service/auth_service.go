package service

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"github.com/iliyamo/auth-service/internal/model"
	"github.com/iliyamo/auth-service/internal/queue"
	"github.com/iliyamo/auth-service/internal/repository"
	"github.com/iliyamo/auth-service/internal/utils"
)

// UserStore is the persistence contract for user records. Emails are
// compared case-insensitively by the implementation.
type UserStore interface {
	Create(ctx context.Context, username, email, passwordHash string, roleID uint8) (uint64, error)
	GetByEmail(ctx context.Context, email string) (model.User, error)
	GetByID(ctx context.Context, id uint64) (model.User, error)
	EmailExists(ctx context.Context, email string) (bool, error)
	UsernameExists(ctx context.Context, username string) (bool, error)
}

// RoleStore resolves seeded roles by name.
type RoleStore interface {
	GetByName(ctx context.Context, name string) (model.Role, error)
}

// AuditPublisher receives auth audit events. Publication is
// best-effort; implementations log their own failures.
type AuditPublisher interface {
	Publish(ctx context.Context, event queue.AuthEvent) error
}

// Registration carries the input of the register operation.
type Registration struct {
	Username string
	Email    string
	Password string
	Role     string
}

// UserInfo is the sanitized user projection returned to callers. It
// never carries the password hash.
type UserInfo struct {
	ID        uint64
	Username  string
	Email     string
	Role      string
	CreatedAt time.Time
}

// Session is the result of a successful login or refresh: a signed
// access token plus the opaque refresh token with its expiry.
type Session struct {
	User       UserInfo
	Access     utils.AccessToken
	Refresh    string
	RefreshExp time.Time
}

// AuthService orchestrates login, registration, token refresh and
// revocation. It is the single entry point of the authentication core;
// handlers translate its errors into HTTP responses.
type AuthService struct {
	users      UserStore
	roles      RoleStore
	tokens     *RefreshTokenManager
	signer     utils.Signer
	bcryptCost int
	audit      AuditPublisher // optional, may be nil
}

func NewAuthService(users UserStore, roles RoleStore, tokens *RefreshTokenManager, signer utils.Signer, bcryptCost int, audit AuditPublisher) *AuthService {
	return &AuthService{
		users:      users,
		roles:      roles,
		tokens:     tokens,
		signer:     signer,
		bcryptCost: bcryptCost,
		audit:      audit,
	}
}

// Login verifies the credentials and opens a new session. Unknown
// email and wrong password fail identically with ErrInvalidCredentials.
func (s *AuthService) Login(ctx context.Context, email, password, ip string) (Session, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	u, err := s.users.GetByEmail(ctx, email)
	if errors.Is(err, repository.ErrNotFound) {
		return Session{}, ErrInvalidCredentials
	}
	if err != nil {
		return Session{}, persistence("load user", err)
	}
	if !utils.VerifyPassword(u.PasswordHash, password) {
		return Session{}, ErrInvalidCredentials
	}

	access, err := s.signer.Issue(u.ID, u.Email, u.Username, u.RoleName)
	if err != nil {
		return Session{}, s.signerErr(err)
	}
	refresh, err := s.tokens.Create(ctx, u.ID, ip)
	if err != nil {
		return Session{}, err
	}
	s.tokens.Cleanup(ctx, u.ID)
	s.publish(ctx, queue.EventUserLoggedIn, u.ID, u.Email, ip)

	return Session{
		User:       sanitize(u),
		Access:     access,
		Refresh:    refresh.Token,
		RefreshExp: refresh.ExpiresAt,
	}, nil
}

// Register creates a user with the requested role. Email and username
// collisions fail with a DuplicateError naming the field. An unknown
// role falls back to the default USER role; if even that is missing
// the role table is misconfigured and ErrConfiguration is returned.
func (s *AuthService) Register(ctx context.Context, reg Registration) (UserInfo, error) {
	email := strings.ToLower(strings.TrimSpace(reg.Email))
	username := strings.TrimSpace(reg.Username)

	if exists, err := s.users.EmailExists(ctx, email); err != nil {
		return UserInfo{}, persistence("check email", err)
	} else if exists {
		return UserInfo{}, &DuplicateError{Field: "email"}
	}
	if exists, err := s.users.UsernameExists(ctx, username); err != nil {
		return UserInfo{}, persistence("check username", err)
	} else if exists {
		return UserInfo{}, &DuplicateError{Field: "username"}
	}

	role, err := s.resolveRole(ctx, reg.Role)
	if err != nil {
		return UserInfo{}, err
	}

	hash, err := utils.HashPassword(reg.Password, s.bcryptCost)
	if err != nil {
		return UserInfo{}, err
	}
	id, err := s.users.Create(ctx, username, email, hash, role.ID)
	switch {
	case errors.Is(err, repository.ErrEmailExists):
		return UserInfo{}, &DuplicateError{Field: "email"}
	case errors.Is(err, repository.ErrUsernameExists):
		return UserInfo{}, &DuplicateError{Field: "username"}
	case err != nil:
		return UserInfo{}, persistence("create user", err)
	}

	// Re-read the row so the projection reflects stored state (the
	// database stamps created_at), not values recomputed here.
	created, err := s.users.GetByID(ctx, id)
	if err != nil {
		return UserInfo{}, persistence("load user", err)
	}
	s.publish(ctx, queue.EventUserRegistered, created.ID, created.Email, "")

	return sanitize(created), nil
}

// Refresh exchanges an active refresh token for a new access/refresh
// pair, rotating the old token. ErrInvalidToken means no such token
// exists; ErrTokenInactive means it exists but is revoked or expired.
func (s *AuthService) Refresh(ctx context.Context, token, ip string) (Session, error) {
	old, next, err := s.tokens.Rotate(ctx, token, ip)
	if err != nil {
		if errors.Is(err, ErrTokenReused) {
			s.publish(ctx, queue.EventTokenReuseDetected, old.UserID, "", ip)
		}
		return Session{}, err
	}

	u, err := s.users.GetByID(ctx, next.UserID)
	if err != nil {
		return Session{}, persistence("load user", err)
	}
	access, err := s.signer.Issue(u.ID, u.Email, u.Username, u.RoleName)
	if err != nil {
		return Session{}, s.signerErr(err)
	}
	s.tokens.Cleanup(ctx, u.ID)
	s.publish(ctx, queue.EventTokenRefreshed, u.ID, u.Email, ip)

	return Session{
		User:       sanitize(u),
		Access:     access,
		Refresh:    next.Token,
		RefreshExp: next.ExpiresAt,
	}, nil
}

// Revoke ends the session identified by the refresh token. Returns
// false when the token is unknown or already inactive.
func (s *AuthService) Revoke(ctx context.Context, token, ip string) (bool, error) {
	ok, userID, err := s.tokens.Revoke(ctx, token, ip)
	if err != nil {
		return false, err
	}
	if ok {
		s.publish(ctx, queue.EventTokenRevoked, userID, "", ip)
	}
	return ok, nil
}

// RevokeAll revokes every active session of the user (logout everywhere).
func (s *AuthService) RevokeAll(ctx context.Context, userID uint64, ip string) (int64, error) {
	n, err := s.tokens.RevokeAll(ctx, userID, ip)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		s.publish(ctx, queue.EventTokenRevoked, userID, "", ip)
	}
	return n, nil
}

func (s *AuthService) resolveRole(ctx context.Context, name string) (model.Role, error) {
	name = strings.ToUpper(strings.TrimSpace(name))
	if name == "" {
		name = model.RoleUser
	}
	role, err := s.roles.GetByName(ctx, name)
	if errors.Is(err, repository.ErrNotFound) && name != model.RoleUser {
		role, err = s.roles.GetByName(ctx, model.RoleUser)
	}
	if errors.Is(err, repository.ErrNotFound) {
		// Even the default role is missing: the seed never ran.
		return model.Role{}, ErrConfiguration
	}
	if err != nil {
		return model.Role{}, persistence("load role", err)
	}
	return role, nil
}

func (s *AuthService) signerErr(err error) error {
	if errors.Is(err, utils.ErrSignerConfig) {
		return ErrConfiguration
	}
	return err
}

func (s *AuthService) publish(ctx context.Context, typ string, userID uint64, email, ip string) {
	if s.audit == nil {
		return
	}
	ev := queue.AuthEvent{
		Type:   typ,
		UserID: userID,
		Email:  email,
		IP:     ip,
		At:     time.Now().UTC().Format(time.RFC3339),
	}
	if err := s.audit.Publish(ctx, ev); err != nil {
		log.Printf("auth-service: audit publish failed: %v", err)
	}
}

func sanitize(u model.User) UserInfo {
	return UserInfo{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		Role:      u.RoleName,
		CreatedAt: u.CreatedAt,
	}
}
