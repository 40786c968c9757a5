package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/auth-service/internal/config"
	"github.com/iliyamo/auth-service/internal/handler"
	"github.com/iliyamo/auth-service/internal/middleware"
	"github.com/iliyamo/auth-service/internal/model"
	"github.com/iliyamo/auth-service/internal/utils"
)

// RegisterRoutes registers routes that require no authentication.
// Currently that is only the health check, used by load balancers and
// monitoring to verify the service is up.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// RegisterAuth registers the authentication endpoints and their
// middleware.
//
// Credential and session endpoints live under /v1/auth and are rate
// limited per client IP when Redis is available. The session group
// (/v1/auth/session) carries the endpoints the refresh cookie is
// scoped to: rotation and revocation. Protected endpoints live under
// /v1 behind the JWT middleware.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, signer utils.Signer, rdb *redis.Client) {
	limiter := middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb)

	g := e.Group("/v1/auth", limiter)
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)

	// Refresh-token rotation and revocation; the refresh cookie is
	// path-scoped to exactly this group.
	s := g.Group("/session")
	s.POST("/refresh", a.Refresh)
	s.POST("/revoke", a.Revoke)

	auth := e.Group("/v1")
	auth.Use(middleware.JWTAuth(signer))
	auth.Use(middleware.RequireRole(model.RoleAdmin, model.RoleManager, model.RoleUser))
	auth.GET("/me", a.Me)
	auth.POST("/auth/session/revoke-all", a.RevokeAll)
}
