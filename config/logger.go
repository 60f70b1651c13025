package config

import (
	"log/slog"
	"os"
)

// NewLogger builds the process-wide structured logger. Production emits
// JSON for log shippers; every other environment gets the readable text
// handler. LOG_LEVEL accepts debug, info, warn, or error (default info).
func NewLogger() *slog.Logger {
	level := slog.LevelInfo
	if s := os.Getenv("LOG_LEVEL"); s != "" {
		if err := level.UnmarshalText([]byte(s)); err != nil {
			level = slog.LevelInfo
		}
	}
	opts := &slog.HandlerOptions{Level: level}
	if os.Getenv("GO_ENV") == "production" {
		return slog.New(slog.NewJSONHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, opts))
}
