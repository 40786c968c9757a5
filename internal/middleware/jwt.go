package middleware // reusable HTTP middleware for the auth endpoints

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/auth-service/internal/utils"
)

// JWTAuth returns an Echo middleware that validates a Bearer access
// token and injects its claims into the request context. The signer
// must be configured with the same secret, issuer and audience used
// when issuing tokens; verification enforces all three plus expiry
// with zero clock-skew leeway. Handlers behind this middleware read
// the authenticated identity via c.Get("user_id"), c.Get("email"),
// c.Get("username") and c.Get("role").
func JWTAuth(signer utils.Signer) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			auth := c.Request().Header.Get("Authorization")
			if !strings.HasPrefix(auth, "Bearer ") {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing bearer token"})
			}
			raw := strings.TrimPrefix(auth, "Bearer ")

			claims, err := signer.Parse(raw)
			if err != nil {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid token"})
			}

			// Claims land in the context as decoded by the JWT library;
			// numeric values arrive as float64. Downstream consumers do
			// their own type assertions.
			c.Set("user_id", claims["sub"])
			c.Set("email", claims["email"])
			c.Set("username", claims["username"])
			c.Set("role", claims["role"])
			return next(c)
		}
	}
}
