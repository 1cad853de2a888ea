package middleware

import (
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/tripsplit/tripsplit-backend/config"
)

// CORSMiddleware creates a middleware for handling CORS with the given configuration
func CORSMiddleware(cfg *config.ServerConfig) gin.HandlerFunc {
	corsConfig := cors.Config{
		AllowMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders: []string{
			"Origin",
			"Content-Length",
			"Content-Type",
			"Authorization",
			"Accept",
			RequestIDHeader,
		},
		ExposeHeaders: []string{"Content-Length", RequestIDHeader, "Retry-After"},
		MaxAge:        12 * time.Hour,
	}

	if len(cfg.AllowedOrigins) == 0 || containsOrigin(cfg.AllowedOrigins, "*") {
		corsConfig.AllowAllOrigins = true
		return cors.New(corsConfig)
	}

	corsConfig.AllowCredentials = true
	corsConfig.AllowOrigins = exactOrigins(cfg.AllowedOrigins)
	// Entries like "*.example.com" allow any subdomain.
	corsConfig.AllowOriginFunc = func(origin string) bool {
		return originAllowed(cfg.AllowedOrigins, origin)
	}
	return cors.New(corsConfig)
}

func originAllowed(allowed []string, origin string) bool {
	for _, a := range allowed {
		if a == origin {
			return true
		}
		if domain, ok := strings.CutPrefix(a, "*"); ok && strings.HasPrefix(domain, ".") && strings.HasSuffix(origin, domain) {
			return true
		}
	}
	return false
}

func exactOrigins(origins []string) []string {
	out := make([]string, 0, len(origins))
	for _, o := range origins {
		if !strings.HasPrefix(o, "*") {
			out = append(out, o)
		}
	}
	return out
}

// containsOrigin checks if a string is present in the allowed origins slice
func containsOrigin(s []string, str string) bool {
	for _, v := range s {
		if v == str {
			return true
		}
	}
	return false
}
