package types

import "github.com/golang-jwt/jwt/v5"

// UserRole is the role carried in an access token.
type UserRole string

const (
	RoleAdmin     UserRole = "ADMIN"
	RoleTripCoord UserRole = "TRIPCOORD"
	RoleUser      UserRole = "USER"
)

func (r UserRole) IsValid() bool {
	switch r {
	case RoleAdmin, RoleTripCoord, RoleUser:
		return true
	}
	return false
}

// JWTClaims are the claims of an access token. The user id is the subject.
type JWTClaims struct {
	Role UserRole `json:"role"`
	jwt.RegisteredClaims
}
