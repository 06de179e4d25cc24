// Package logging configures colored structured logging with tint.
package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/lmittmann/tint"
)

// Setup installs a tint handler at level on stderr as the slog default and
// returns the logger.
func Setup(level string) *slog.Logger {
	return SetupWriter(os.Stderr, ParseLevel(level))
}

// SetupWriter installs a tint handler writing to w.
func SetupWriter(w io.Writer, level slog.Level) *slog.Logger {
	logger := slog.New(
		tint.NewHandler(w, &tint.Options{
			Level:      level,
			TimeFormat: time.Kitchen,
			AddSource:  true,
		}),
	)
	slog.SetDefault(logger)
	return logger
}

// ParseLevel maps debug, warn and error onto slog levels. Anything else is
// info.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
