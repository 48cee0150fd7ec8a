// Package logger configures the process-wide slog logger from the
// environment. Only LOG_LEVEL (debug|info|warn|error) and LOG_FORMAT
// (json|text) are read; everything else stays at slog defaults.
package logger

import (
	"log/slog"
	"os"
	"strings"
)

var levelVar slog.LevelVar

func InitFromEnv() *slog.Logger {
	SetLevel(os.Getenv("LOG_LEVEL"))

	opts := &slog.HandlerOptions{Level: &levelVar}

	var h slog.Handler
	if strings.EqualFold(strings.TrimSpace(os.Getenv("LOG_FORMAT")), "text") {
		h = slog.NewTextHandler(os.Stdout, opts)
	} else {
		h = slog.NewJSONHandler(os.Stdout, opts)
	}

	l := slog.New(h)
	slog.SetDefault(l)
	return l
}

func SetLevel(level string) {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		levelVar.Set(slog.LevelDebug)
	case "warn", "warning":
		levelVar.Set(slog.LevelWarn)
	case "error":
		levelVar.Set(slog.LevelError)
	default:
		levelVar.Set(slog.LevelInfo)
	}
}
