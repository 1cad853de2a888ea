package handlers

import (
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	apperrors "github.com/tripsplit/tripsplit-backend/errors"
	"github.com/tripsplit/tripsplit-backend/middleware"
)

func getUserIDFromContext(c *gin.Context) string {
	return c.GetString(string(middleware.UserIDKey))
}

// bindJSONOrError binds JSON request body and sets validation error if binding fails.
// Returns true if binding succeeded, false if error was set (caller should return).
func bindJSONOrError(c *gin.Context, obj interface{}) bool {
	if err := c.ShouldBindJSON(obj); err != nil {
		_ = c.Error(apperrors.ValidationFailed("invalid_request_payload", err.Error()))
		return false
	}
	return true
}

// tripIDParam parses the :id path parameter.
func tripIDParam(c *gin.Context) (int64, bool) {
	raw := c.Param("id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		_ = c.Error(apperrors.ValidationFailed("Invalid trip ID", "Trip ID must be a positive integer, got "+strconv.Quote(raw)))
		return 0, false
	}
	return id, true
}

// currencyCodeParam normalises the :code path parameter.
func currencyCodeParam(c *gin.Context) (string, bool) {
	code := strings.ToUpper(strings.TrimSpace(c.Param("code")))
	if len(code) != 3 {
		_ = c.Error(apperrors.ValidationFailed("Invalid currency code", "Currency code must have 3 letters"))
		return "", false
	}
	return code, true
}

// intQuery returns 0 when the parameter is absent.
func intQuery(c *gin.Context, name string) (int, error) {
	raw := c.Query(name)
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, apperrors.ValidationFailed("Invalid query parameter", name+" must be an integer")
	}
	return v, nil
}

// timeQuery accepts RFC 3339 timestamps and plain dates.
func timeQuery(c *gin.Context, name string) (*time.Time, error) {
	raw := c.Query(name)
	if raw == "" {
		return nil, nil
	}
	for _, layout := range []string{time.RFC3339, time.DateOnly} {
		if t, err := time.Parse(layout, raw); err == nil {
			return &t, nil
		}
	}
	return nil, apperrors.ValidationFailed("Invalid query parameter", name+" must be a date (YYYY-MM-DD) or an RFC 3339 timestamp")
}
