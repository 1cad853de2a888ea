package middleware

import (
	"github.com/gin-gonic/gin"
	apperrors "github.com/tripsplit/tripsplit-backend/errors"
	"github.com/tripsplit/tripsplit-backend/logger"
	"github.com/tripsplit/tripsplit-backend/types"
)

// RequireRole lets the request through only when the authenticated user has
// one of the given roles. It must run after AuthMiddleware.
func RequireRole(allowed ...types.UserRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		role, _ := c.Get(string(UserRoleKey))
		userRole, _ := role.(types.UserRole)

		for _, r := range allowed {
			if userRole == r {
				c.Next()
				return
			}
		}

		logger.GetLogger().Warnw("Permission denied",
			"userID", c.GetString(string(UserIDKey)),
			"userRole", userRole,
			"requiredRoles", allowed,
			"path", c.Request.URL.Path)
		_ = c.Error(apperrors.Forbidden("Insufficient permissions", "User does not have access to this resource"))
		c.Abort()
	}
}
