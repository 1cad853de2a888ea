package middleware

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"
	apperrors "github.com/tripsplit/tripsplit-backend/errors"
	"github.com/tripsplit/tripsplit-backend/logger"
)

// AuthMiddleware validates the Bearer token and stores the user id and role
// on the context.
func AuthMiddleware(validator Validator) gin.HandlerFunc {
	return func(c *gin.Context) {
		log := logger.GetLogger()

		authHeader := c.GetHeader("Authorization")
		token, ok := strings.CutPrefix(authHeader, "Bearer ")
		if !ok || strings.TrimSpace(token) == "" {
			log.Debugw("No token provided in request", "path", c.Request.URL.Path)
			_ = c.Error(apperrors.Unauthorized("missing_token", "Authorization required"))
			c.Abort()
			return
		}

		claims, err := validator.Validate(c.Request.Context(), strings.TrimSpace(token))
		if err != nil {
			log.Warnw("Invalid JWT token",
				"error", err,
				"token_length", len(token),
				"request_path", c.Request.URL.Path,
				"client_ip", c.ClientIP())

			if errors.Is(err, ErrTokenExpired) {
				_ = c.Error(apperrors.Unauthorized("token_expired", "Your session has expired"))
			} else {
				_ = c.Error(apperrors.Unauthorized("invalid_token", "Invalid authentication token"))
			}
			c.Abort()
			return
		}

		c.Set(string(UserIDKey), claims.Subject)
		c.Set(string(UserRoleKey), claims.Role)
		c.Next()
	}
}
