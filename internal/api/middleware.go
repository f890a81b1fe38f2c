package api

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/prepwise/server/internal/auth"
)

const userIDKey = "user_id"

// JWTMiddleware validates the Bearer token and stores the user ID on the
// request context.
func JWTMiddleware(manager *auth.Manager, logger *zap.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token := bearerToken(c)
			if token == "" {
				return c.JSON(http.StatusUnauthorized, ErrorResponse{
					Error:   "missing_token",
					Message: "JWT token is required in Authorization header",
				})
			}

			claims, err := manager.ValidateToken(token)
			if err != nil {
				logger.Warn("Request rejected: invalid token", zap.Error(err))
				return c.JSON(http.StatusUnauthorized, ErrorResponse{
					Error:   "invalid_token",
					Message: "Invalid or expired JWT token",
				})
			}
			if claims.UserID == "" {
				return c.JSON(http.StatusUnauthorized, ErrorResponse{
					Error:   "invalid_token_claims",
					Message: "User ID not found in token",
				})
			}

			c.Set(userIDKey, claims.UserID)
			return next(c)
		}
	}
}

// bearerToken extracts the JWT from the Authorization header, falling back to
// the token query parameter for websocket upgrades, where browsers cannot set
// headers.
func bearerToken(c echo.Context) string {
	header := c.Request().Header.Get("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}
	return c.QueryParam("token")
}

func userID(c echo.Context) string {
	id, _ := c.Get(userIDKey).(string)
	return id
}
