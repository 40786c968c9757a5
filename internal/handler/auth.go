package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/auth-service/internal/service"
)

// refreshCookieName is the cookie the refresh token travels in when the
// client prefers cookies over the JSON body.
const refreshCookieName = "refresh_token"

// refreshCookiePath scopes the cookie to the session endpoints only so
// browsers never attach the long-lived credential anywhere else.
const refreshCookiePath = "/v1/auth/session"

// Authenticator is the slice of the auth service the handlers need.
// Declared here so handler tests can substitute a fake.
type Authenticator interface {
	Login(ctx context.Context, email, password, ip string) (service.Session, error)
	Register(ctx context.Context, reg service.Registration) (service.UserInfo, error)
	Refresh(ctx context.Context, token, ip string) (service.Session, error)
	Revoke(ctx context.Context, token, ip string) (bool, error)
	RevokeAll(ctx context.Context, userID uint64, ip string) (int64, error)
}

// AuthHandler bundles dependencies for the auth endpoints.
type AuthHandler struct {
	Auth Authenticator
}

func NewAuthHandler(auth Authenticator) *AuthHandler {
	return &AuthHandler{Auth: auth}
}

// ----- DTOs -----

type registerReq struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"` // ADMIN | MANAGER | USER (defaults to USER)
}
type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}
type refreshReq struct {
	RefreshToken string `json:"refresh_token"`
}

type tokenPart struct {
	Token   string    `json:"token"`
	Expires time.Time `json:"expires"`
}
type userPart struct {
	ID       uint64 `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Role     string `json:"role"`
}
type authResp struct {
	User    userPart  `json:"user"`
	Access  tokenPart `json:"access"`
	Refresh tokenPart `json:"refresh"`
}

// Register creates a user account. Unlike login it does not open a
// session; the client logs in afterwards.
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if strings.TrimSpace(req.Email) == "" || req.Password == "" || strings.TrimSpace(req.Username) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "username/email/password required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, err := h.Auth.Register(ctx, service.Registration{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
		Role:     req.Role,
	})
	if err != nil {
		var dup *service.DuplicateError
		if errors.As(err, &dup) {
			return c.JSON(http.StatusConflict, echo.Map{"error": dup.Field + " already exists"})
		}
		return serviceError(c, err, "create user failed")
	}

	return c.JSON(http.StatusCreated, userPart{
		ID: u.ID, Username: u.Username, Email: u.Email, Role: u.Role,
	})
}

// Login verifies credentials and returns a fresh token pair. The
// refresh token is additionally set as a scoped cookie.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if strings.TrimSpace(req.Email) == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "email/password required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	sess, err := h.Auth.Login(ctx, req.Email, req.Password, c.RealIP())
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
		}
		return serviceError(c, err, "login failed")
	}

	setRefreshCookie(c, sess.Refresh, sess.RefreshExp)
	return c.JSON(http.StatusOK, sessionResp(sess))
}

// Refresh rotates the presented refresh token and returns a new pair.
// The token is taken from the JSON body or, failing that, the cookie.
func (h *AuthHandler) Refresh(c echo.Context) error {
	token := refreshTokenFrom(c)
	if token == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "refresh_token required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	sess, err := h.Auth.Refresh(ctx, token, c.RealIP())
	if err != nil {
		switch {
		case errors.Is(err, service.ErrTokenInactive):
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "refresh token no longer active"})
		case errors.Is(err, service.ErrInvalidToken):
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid refresh token"})
		}
		return serviceError(c, err, "refresh failed")
	}

	setRefreshCookie(c, sess.Refresh, sess.RefreshExp)
	return c.JSON(http.StatusOK, sessionResp(sess))
}

// Revoke ends the session identified by the refresh token. Revoking an
// unknown or already-inactive token reports 404 without distinguishing
// the two.
func (h *AuthHandler) Revoke(c echo.Context) error {
	token := refreshTokenFrom(c)
	if token == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "refresh_token required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	ok, err := h.Auth.Revoke(ctx, token, c.RealIP())
	if err != nil {
		return serviceError(c, err, "revoke failed")
	}
	if !ok {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "token not found or not active"})
	}
	clearRefreshCookie(c)
	return c.NoContent(http.StatusNoContent)
}

// RevokeAll revokes every active session of the authenticated user
// (logout everywhere). Requires a valid access token; the user id comes
// from the JWT middleware.
func (h *AuthHandler) RevokeAll(c echo.Context) error {
	uid := userIDFromContext(c)
	if uid == 0 {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if _, err := h.Auth.RevokeAll(ctx, uid, c.RealIP()); err != nil {
		return serviceError(c, err, "revoke failed")
	}
	clearRefreshCookie(c)
	return c.NoContent(http.StatusNoContent)
}

// Me echoes the authenticated claims (protected).
func (h *AuthHandler) Me(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{
		"user_id":  c.Get("user_id"),
		"username": c.Get("username"),
		"email":    c.Get("email"),
		"role":     c.Get("role"),
	})
}

// ----- helpers -----

func sessionResp(sess service.Session) authResp {
	return authResp{
		User: userPart{
			ID:       sess.User.ID,
			Username: sess.User.Username,
			Email:    sess.User.Email,
			Role:     sess.User.Role,
		},
		Access:  tokenPart{Token: sess.Access.Token, Expires: sess.Access.Exp},
		Refresh: tokenPart{Token: sess.Refresh, Expires: sess.RefreshExp},
	}
}

// refreshTokenFrom extracts the refresh token from the JSON body,
// falling back to the session cookie.
func refreshTokenFrom(c echo.Context) string {
	var req refreshReq
	_ = c.Bind(&req)
	if t := strings.TrimSpace(req.RefreshToken); t != "" {
		return t
	}
	if ck, err := c.Cookie(refreshCookieName); err == nil {
		return strings.TrimSpace(ck.Value)
	}
	return ""
}

func setRefreshCookie(c echo.Context, token string, exp time.Time) {
	c.SetCookie(&http.Cookie{
		Name:     refreshCookieName,
		Value:    token,
		Path:     refreshCookiePath,
		Expires:  exp,
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteStrictMode,
	})
}

func clearRefreshCookie(c echo.Context) {
	c.SetCookie(&http.Cookie{
		Name:     refreshCookieName,
		Value:    "",
		Path:     refreshCookiePath,
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteStrictMode,
	})
}

// userIDFromContext reads the subject claim stored by the JWT
// middleware. JWT numeric claims decode as float64.
func userIDFromContext(c echo.Context) uint64 {
	switch v := c.Get("user_id").(type) {
	case float64:
		return uint64(v)
	case uint64:
		return v
	}
	return 0
}

// serviceError maps the remaining error kinds: persistence faults are
// retryable (503), configuration faults are server bugs (500). Internal
// detail never reaches the client.
func serviceError(c echo.Context, err error, msg string) error {
	if errors.Is(err, service.ErrPersistence) {
		return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": "temporarily unavailable"})
	}
	c.Logger().Error(err)
	return c.JSON(http.StatusInternalServerError, echo.Map{"error": msg})
}
