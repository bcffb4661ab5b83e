package logger

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
)

// Logger is a thin key/value wrapper around zap's sugared logger.
type Logger struct {
	sugar *zap.SugaredLogger
}

// New builds a logger for the given mode ("production" emits JSON, anything
// else emits human-readable console output).
func New(mode string) (*Logger, error) {
	var cfg zap.Config
	switch strings.ToLower(strings.TrimSpace(mode)) {
	case "prod", "production":
		cfg = zap.NewProductionConfig()
	default:
		cfg = zap.NewDevelopmentConfig()
		cfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	}
	zl, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("building zap logger: %w", err)
	}
	return &Logger{sugar: zl.Sugar()}, nil
}

// NewNop returns a logger that discards everything.
func NewNop() *Logger {
	return &Logger{sugar: zap.NewNop().Sugar()}
}

func (l *Logger) Sync() {
	_ = l.sugar.Sync()
}

func (l *Logger) Debug(msg string, kv ...interface{}) { l.sugar.Debugw(msg, sanitize(kv)...) }
func (l *Logger) Info(msg string, kv ...interface{})  { l.sugar.Infow(msg, sanitize(kv)...) }
func (l *Logger) Warn(msg string, kv ...interface{})  { l.sugar.Warnw(msg, sanitize(kv)...) }
func (l *Logger) Error(msg string, kv ...interface{}) { l.sugar.Errorw(msg, sanitize(kv)...) }

// With returns a child logger carrying the given fields on every entry.
func (l *Logger) With(kv ...interface{}) *Logger {
	return &Logger{sugar: l.sugar.With(sanitize(kv)...)}
}

// MaskSecret keeps the first 8 characters of a credential and hides the rest.
// Credentials of 8 characters or fewer keep only their first half.
func MaskSecret(secret string) string {
	if secret == "" {
		return "Not set"
	}
	if len(secret) <= 8 {
		return secret[:len(secret)/2] + "..."
	}
	return secret[:8] + "..."
}

func sanitize(kv []interface{}) []interface{} {
	if len(kv) == 0 {
		return kv
	}
	out := make([]interface{}, 0, len(kv))
	for i := 0; i < len(kv); i += 2 {
		if i == len(kv)-1 {
			out = append(out, kv[i])
			break
		}
		key := fmt.Sprint(kv[i])
		val := kv[i+1]
		if isSecretKey(key) {
			if s, ok := val.(string); ok {
				val = MaskSecret(s)
			} else {
				val = "[REDACTED]"
			}
		}
		out = append(out, key, val)
	}
	return out
}

func isSecretKey(key string) bool {
	k := strings.ToLower(key)
	switch {
	case strings.Contains(k, "api_key"),
		strings.Contains(k, "apikey"),
		strings.Contains(k, "token"),
		strings.Contains(k, "secret"),
		strings.Contains(k, "password"),
		strings.Contains(k, "authorization"):
		return true
	}
	return false
}
