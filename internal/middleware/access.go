package middleware

import (
	"net/http"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"

	"stayledger/internal/access"
	"stayledger/internal/auth"
	"stayledger/internal/errors"
)

// ContextKeyUser is where the echo-jwt middleware stores the parsed token.
const ContextKeyUser = "user"

// RequireAction rejects requests whose token role may not perform action.
// It must run after the echo-jwt middleware.
func RequireAction(action access.Action) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token, _ := c.Get(ContextKeyUser).(*jwt.Token)
			claims, err := auth.ClaimsFromToken(token)
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, errors.ErrorResponse{
					Error: "invalid or missing token",
					Code:  "UNAUTHORIZED",
				})
			}
			if !access.Allowed(claims.Role, action) {
				return echo.NewHTTPError(http.StatusForbidden, errors.ErrorResponse{
					Error: "role " + string(claims.Role) + " may not " + string(action),
					Code:  "FORBIDDEN",
				})
			}
			return next(c)
		}
	}
}
