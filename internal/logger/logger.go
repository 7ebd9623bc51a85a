// Package logger is a thin wrapper around log/slog with a process-wide
// default. Format and level come from LOG_FORMAT and LOG_LEVEL.
package logger

import (
	"log/slog"
	"os"
)

var defaultLogger *slog.Logger

// Init sets up the default logger. json selects the JSON handler, otherwise
// text output is used.
func Init(level string, json bool) {
	opts := &slog.HandlerOptions{Level: parseLevel(level)}

	var handler slog.Handler
	if json {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	defaultLogger = slog.New(handler)
	slog.SetDefault(defaultLogger)
}

// InitFromEnv initializes the logger from LOG_LEVEL and LOG_FORMAT.
func InitFromEnv() {
	Init(os.Getenv("LOG_LEVEL"), os.Getenv("LOG_FORMAT") == "json")
}

func parseLevel(level string) slog.Level {
	switch level {
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

// Get returns the default logger, initializing it lazily if needed.
func Get() *slog.Logger {
	if defaultLogger == nil {
		Init("info", false)
	}
	return defaultLogger
}

func Debug(msg string, args ...any) { Get().Debug(msg, args...) }

func Info(msg string, args ...any) { Get().Info(msg, args...) }

func Warn(msg string, args ...any) { Get().Warn(msg, args...) }

func Error(msg string, args ...any) { Get().Error(msg, args...) }

// Fatal logs at error level and exits the process.
func Fatal(msg string, args ...any) {
	Get().Error(msg, args...)
	os.Exit(1)
}

// With returns a logger carrying the given attributes.
func With(args ...any) *slog.Logger { return Get().With(args...) }
