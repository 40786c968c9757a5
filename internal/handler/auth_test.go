package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/auth-service/internal/service"
	"github.com/iliyamo/auth-service/internal/utils"
)

// fakeAuth scripts the Authenticator responses per test.
type fakeAuth struct {
	loginFn    func(email, password, ip string) (service.Session, error)
	registerFn func(reg service.Registration) (service.UserInfo, error)
	refreshFn  func(token, ip string) (service.Session, error)
	revokeFn   func(token, ip string) (bool, error)
	revokedAll []uint64
}

func (f *fakeAuth) Login(_ context.Context, email, password, ip string) (service.Session, error) {
	return f.loginFn(email, password, ip)
}
func (f *fakeAuth) Register(_ context.Context, reg service.Registration) (service.UserInfo, error) {
	return f.registerFn(reg)
}
func (f *fakeAuth) Refresh(_ context.Context, token, ip string) (service.Session, error) {
	return f.refreshFn(token, ip)
}
func (f *fakeAuth) Revoke(_ context.Context, token, ip string) (bool, error) {
	return f.revokeFn(token, ip)
}
func (f *fakeAuth) RevokeAll(_ context.Context, userID uint64, _ string) (int64, error) {
	f.revokedAll = append(f.revokedAll, userID)
	return 1, nil
}

func testSession() service.Session {
	return service.Session{
		User: service.UserInfo{
			ID: 1, Username: "alice", Email: "alice@example.com", Role: "USER",
		},
		Access:     utils.AccessToken{Token: "signed.access.jwt", Exp: time.Now().UTC().Add(15 * time.Minute)},
		Refresh:    strings.Repeat("ab", 64),
		RefreshExp: time.Now().UTC().AddDate(0, 0, 7),
	}
}

func do(h echo.HandlerFunc, req *http.Request) *httptest.ResponseRecorder {
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if err := h(c); err != nil {
		e.HTTPErrorHandler(err, c)
	}
	return rec
}

func jsonReq(method, target, body string) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	return req
}

func TestLoginHandler(t *testing.T) {
	h := NewAuthHandler(&fakeAuth{
		loginFn: func(email, password, ip string) (service.Session, error) {
			if email == "alice@example.com" && password == "pw" {
				return testSession(), nil
			}
			return service.Session{}, service.ErrInvalidCredentials
		},
	})

	t.Run("success sets scoped cookie", func(t *testing.T) {
		rec := do(h.Login, jsonReq(http.MethodPost, "/v1/auth/login",
			`{"email":"alice@example.com","password":"pw"}`))
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "signed.access.jwt")

		res := rec.Result()
		require.Len(t, res.Cookies(), 1)
		ck := res.Cookies()[0]
		assert.Equal(t, refreshCookieName, ck.Name)
		assert.Equal(t, refreshCookiePath, ck.Path)
		assert.True(t, ck.HttpOnly)
		assert.True(t, ck.Secure)
		assert.Equal(t, http.SameSiteStrictMode, ck.SameSite)
	})

	t.Run("bad credentials", func(t *testing.T) {
		rec := do(h.Login, jsonReq(http.MethodPost, "/v1/auth/login",
			`{"email":"alice@example.com","password":"wrong"}`))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Contains(t, rec.Body.String(), "invalid credentials")
	})

	t.Run("missing fields", func(t *testing.T) {
		rec := do(h.Login, jsonReq(http.MethodPost, "/v1/auth/login", `{"email":"a@b.c"}`))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestRegisterHandler(t *testing.T) {
	h := NewAuthHandler(&fakeAuth{
		registerFn: func(reg service.Registration) (service.UserInfo, error) {
			if reg.Email == "taken@example.com" {
				return service.UserInfo{}, &service.DuplicateError{Field: "email"}
			}
			return service.UserInfo{ID: 7, Username: reg.Username, Email: reg.Email, Role: "USER"}, nil
		},
	})

	t.Run("created", func(t *testing.T) {
		rec := do(h.Register, jsonReq(http.MethodPost, "/v1/auth/register",
			`{"username":"alice","email":"alice@example.com","password":"pw"}`))
		require.Equal(t, http.StatusCreated, rec.Code)
		assert.Contains(t, rec.Body.String(), `"username":"alice"`)
		assert.NotContains(t, rec.Body.String(), "password")
	})

	t.Run("duplicate names the field", func(t *testing.T) {
		rec := do(h.Register, jsonReq(http.MethodPost, "/v1/auth/register",
			`{"username":"bob","email":"taken@example.com","password":"pw"}`))
		assert.Equal(t, http.StatusConflict, rec.Code)
		assert.Contains(t, rec.Body.String(), "email already exists")
	})

	t.Run("missing fields", func(t *testing.T) {
		rec := do(h.Register, jsonReq(http.MethodPost, "/v1/auth/register", `{"email":"a@b.c"}`))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestRefreshHandler(t *testing.T) {
	active := strings.Repeat("cd", 64)
	h := NewAuthHandler(&fakeAuth{
		refreshFn: func(token, ip string) (service.Session, error) {
			switch token {
			case active:
				return testSession(), nil
			case "rotated-away":
				return service.Session{}, service.ErrTokenInactive
			}
			return service.Session{}, service.ErrInvalidToken
		},
	})

	t.Run("token from body", func(t *testing.T) {
		rec := do(h.Refresh, jsonReq(http.MethodPost, "/v1/auth/session/refresh",
			`{"refresh_token":"`+active+`"}`))
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("token from cookie", func(t *testing.T) {
		req := jsonReq(http.MethodPost, "/v1/auth/session/refresh", `{}`)
		req.AddCookie(&http.Cookie{Name: refreshCookieName, Value: active})
		rec := do(h.Refresh, req)
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("inactive token", func(t *testing.T) {
		rec := do(h.Refresh, jsonReq(http.MethodPost, "/v1/auth/session/refresh",
			`{"refresh_token":"rotated-away"}`))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Contains(t, rec.Body.String(), "no longer active")
	})

	t.Run("unknown token", func(t *testing.T) {
		rec := do(h.Refresh, jsonReq(http.MethodPost, "/v1/auth/session/refresh",
			`{"refresh_token":"never-issued"}`))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Contains(t, rec.Body.String(), "invalid refresh token")
	})

	t.Run("no token anywhere", func(t *testing.T) {
		rec := do(h.Refresh, jsonReq(http.MethodPost, "/v1/auth/session/refresh", `{}`))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestRevokeHandler(t *testing.T) {
	h := NewAuthHandler(&fakeAuth{
		revokeFn: func(token, ip string) (bool, error) {
			return token == "active-token", nil
		},
	})

	t.Run("revoked", func(t *testing.T) {
		rec := do(h.Revoke, jsonReq(http.MethodPost, "/v1/auth/session/revoke",
			`{"refresh_token":"active-token"}`))
		assert.Equal(t, http.StatusNoContent, rec.Code)
	})

	t.Run("already inactive", func(t *testing.T) {
		rec := do(h.Revoke, jsonReq(http.MethodPost, "/v1/auth/session/revoke",
			`{"refresh_token":"already-gone"}`))
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestRevokeAllHandler(t *testing.T) {
	fake := &fakeAuth{}
	h := NewAuthHandler(fake)

	t.Run("uses subject from context", func(t *testing.T) {
		e := echo.New()
		req := jsonReq(http.MethodPost, "/v1/auth/session/revoke-all", `{}`)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		c.Set("user_id", float64(42)) // as the JWT middleware stores it
		require.NoError(t, h.RevokeAll(c))
		assert.Equal(t, http.StatusNoContent, rec.Code)
		assert.Equal(t, []uint64{42}, fake.revokedAll)
	})

	t.Run("unauthenticated", func(t *testing.T) {
		e := echo.New()
		req := jsonReq(http.MethodPost, "/v1/auth/session/revoke-all", `{}`)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		require.NoError(t, h.RevokeAll(c))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}
