package middleware

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/tripsplit/tripsplit-backend/config"
	"github.com/tripsplit/tripsplit-backend/logger"
	"github.com/tripsplit/tripsplit-backend/types"
)

var (
	// ErrTokenExpired is returned when JWT validation fails due to expiry.
	ErrTokenExpired = errors.New("token expired")
	// ErrTokenInvalid is returned for general token validation failures (signature, format).
	ErrTokenInvalid = errors.New("token invalid")
	// ErrTokenMissingClaim is returned if a required claim (sub or role) is missing.
	ErrTokenMissingClaim = errors.New("token missing required claim")
)

const jwksCacheTTL = 15 * time.Minute

// Validator validates access tokens.
type Validator interface {
	Validate(ctx context.Context, tokenString string) (*types.JWTClaims, error)
}

// JWTValidator accepts HS256 tokens signed with the server secret and, when
// a JWKS URL is configured, RS256/ES256 tokens whose kid is in the JWKS.
type JWTValidator struct {
	secret []byte
	jwks   *JWKSCache
	leeway time.Duration
}

var _ Validator = (*JWTValidator)(nil)

func NewJWTValidator(cfg *config.ServerConfig) (*JWTValidator, error) {
	log := logger.GetLogger()
	if cfg.JwtSecretKey == "" {
		return nil, fmt.Errorf("JWT validator configuration error: JWT_SECRET_KEY is not set")
	}
	v := &JWTValidator{secret: []byte(cfg.JwtSecretKey), leeway: 30 * time.Second}
	log.Info("JWT Validator: HS256 validation enabled.")

	if cfg.JwksURL != "" {
		v.jwks = NewJWKSCache(cfg.JwksURL, jwksCacheTTL, nil)
		log.Infow("JWT Validator: JWKS validation enabled.", "url", cfg.JwksURL)
	}
	return v, nil
}

func (v *JWTValidator) validMethods() []string {
	methods := []string{jwt.SigningMethodHS256.Alg()}
	if v.jwks != nil {
		methods = append(methods, jwt.SigningMethodRS256.Alg(), jwt.SigningMethodES256.Alg())
	}
	return methods
}

// Validate returns the claims of a valid token, or ErrTokenExpired,
// ErrTokenInvalid or ErrTokenMissingClaim.
func (v *JWTValidator) Validate(ctx context.Context, tokenString string) (*types.JWTClaims, error) {
	claims := &types.JWTClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims,
		func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); ok {
				return v.secret, nil
			}
			kid, _ := token.Header["kid"].(string)
			if kid == "" {
				return nil, errors.New("missing kid header")
			}
			return v.jwks.PublicKey(ctx, kid)
		},
		jwt.WithValidMethods(v.validMethods()),
		jwt.WithLeeway(v.leeway),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, fmt.Errorf("%w: %w", ErrTokenInvalid, err)
	}
	if !token.Valid {
		return nil, ErrTokenInvalid
	}

	if claims.Subject == "" {
		return nil, fmt.Errorf("%w: sub", ErrTokenMissingClaim)
	}
	if !claims.Role.IsValid() {
		return nil, fmt.Errorf("%w: role", ErrTokenMissingClaim)
	}
	return claims, nil
}

// IssueToken signs an HS256 access token. Used by tooling and tests.
func IssueToken(secret string, userID string, role types.UserRole, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := types.JWTClaims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}
