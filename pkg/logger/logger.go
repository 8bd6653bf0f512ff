// Package logger provides slog attribute helpers so log fields keep
// consistent keys across the portal's services.
package logger

import (
	"log/slog"
	"os"
	"strings"
)

// Config controls the process-wide logger built by New.
type Config struct {
	Level  string `env:"LOG_LEVEL" envDefault:"info"`
	Format string `env:"LOG_FORMAT" envDefault:"json"` // json or text
}

// New builds a slog.Logger from config, defaulting to JSON at info level.
func New(cfg Config) *slog.Logger {
	var level slog.Level
	switch strings.ToLower(cfg.Level) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	if strings.EqualFold(cfg.Format, "text") {
		return slog.New(slog.NewTextHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, opts))
}

// Error records a single error under the key "error". A nil err yields an
// empty attr.
func Error(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.Any("error", err)
}

// Component records the owning component under the key "component".
func Component(name string) slog.Attr {
	return slog.String("component", name)
}

// Event records the event name under the key "event".
func Event(name string) slog.Attr {
	return slog.String("event", name)
}

// UserID records the acting user under the key "user_id".
func UserID(id any) slog.Attr {
	if id == nil {
		return slog.Attr{}
	}
	return slog.Any("user_id", id)
}

// MemberID records the member a workflow action targets under the key
// "member_id".
func MemberID(id any) slog.Attr {
	if id == nil {
		return slog.Attr{}
	}
	return slog.Any("member_id", id)
}

// Status records a workflow status under the key "status".
func Status(status string) slog.Attr {
	return slog.String("status", status)
}

// Recipient records an email recipient under the key "recipient".
func Recipient(email string) slog.Attr {
	return slog.String("recipient", email)
}
