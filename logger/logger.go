// Package logger provides the process-wide zap sugared logger used by every
// layer of the settlement service, plus helpers for keeping personal data
// (participant emails, tokens, connection strings) out of log lines.
package logger

import (
	"fmt"
	"os"
	"strings"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	logger *zap.SugaredLogger
	once   sync.Once
)

// IsTest switches the logger to a development config writing to stdout.
// Test mains set it before anything calls GetLogger.
var IsTest bool

func build() {
	level := zapcore.InfoLevel
	if raw := os.Getenv("LOG_LEVEL"); raw != "" {
		if err := level.UnmarshalText([]byte(raw)); err != nil {
			level = zapcore.InfoLevel
		}
	}

	var cfg zap.Config
	switch {
	case IsTest:
		cfg = zap.NewDevelopmentConfig()
		cfg.OutputPaths = []string{"stdout"}
	case os.Getenv("ENVIRONMENT") == "production":
		cfg = zap.NewProductionConfig()
		cfg.OutputPaths = []string{"stdout"}
		cfg.ErrorOutputPaths = []string{"stderr"}
	default:
		cfg = zap.NewDevelopmentConfig()
	}
	cfg.Level = zap.NewAtomicLevelAt(level)

	zl, err := cfg.Build()
	if err != nil {
		panic(fmt.Sprintf("failed to initialize logger: %v", err))
	}
	logger = zl.Sugar()
}

// InitLogger initializes the global logger. Safe to call more than once.
func InitLogger() {
	once.Do(build)
}

// GetLogger returns the shared logger, initializing it on first use.
func GetLogger() *zap.SugaredLogger {
	once.Do(build)
	return logger
}

// Close flushes buffered entries. Call it right before the process exits.
func Close() error {
	if logger == nil || IsTest {
		return nil
	}
	if err := logger.Sync(); err != nil {
		fmt.Fprintf(os.Stderr, "Error syncing logger: %v\n", err)
		return err
	}
	return nil
}

// MaskSensitiveString keeps prefixLen leading and suffixLen trailing
// characters and hides the rest. Short inputs are fully starred so their
// length is not leaked through the visible parts.
func MaskSensitiveString(s string, prefixLen, suffixLen int) string {
	if s == "" {
		return ""
	}
	if len(s) < prefixLen+suffixLen+3 {
		return strings.Repeat("*", len(s))
	}
	return s[:prefixLen] + "..." + s[len(s)-suffixLen:]
}

// MaskEmail hides the local part of an address and keeps the domain.
func MaskEmail(email string) string {
	if email == "" {
		return ""
	}
	at := strings.LastIndex(email, "@")
	if at <= 0 || at == len(email)-1 {
		return MaskSensitiveString(email, 2, 2)
	}
	return MaskSensitiveString(email[:at], 2, 1) + email[at:]
}

// MaskConnectionString replaces the password of a postgres:// URL or a
// key=value DSN with ***.
func MaskConnectionString(connStr string) string {
	if connStr == "" {
		return ""
	}
	masked := connStr

	if idx := strings.Index(masked, "://"); idx != -1 {
		rest := masked[idx+3:]
		if at := strings.Index(rest, "@"); at != -1 {
			userInfo := rest[:at]
			if colon := strings.Index(userInfo, ":"); colon != -1 {
				masked = masked[:idx+3] + userInfo[:colon] + ":***" + rest[at:]
			}
		}
	}

	const key = "password="
	if kv := strings.Index(masked, key); kv != -1 {
		start := kv + len(key)
		end := strings.Index(masked[start:], " ")
		if end == -1 {
			masked = masked[:start] + "***"
		} else {
			masked = masked[:start] + "***" + masked[start+end:]
		}
	}
	return masked
}
