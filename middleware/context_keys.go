package middleware

// contextKey defines a type for context keys to avoid collisions.
type contextKey string

// Keys set on the gin context by AuthMiddleware.
const (
	// UserIDKey holds the authenticated user's id, the token subject (string).
	UserIDKey contextKey = "userID"
	// UserRoleKey holds the authenticated user's types.UserRole.
	UserRoleKey contextKey = "userRole"
)
