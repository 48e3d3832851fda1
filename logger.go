package auth

import (
	"io"
	"log/slog"
)

type slogLogger struct {
	l *slog.Logger
}

// NewSlogLogger adapts a slog.Logger to Logger. A nil logger uses
// slog.Default().
func NewSlogLogger(l *slog.Logger) Logger {
	if l == nil {
		l = slog.Default()
	}
	return slogLogger{l: l}
}

// NewJSONLogger builds a JSON logger writing to w at the given level.
func NewJSONLogger(w io.Writer, level slog.Level) Logger {
	return NewSlogLogger(slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level})))
}

func (s slogLogger) Debug(msg string, args ...any) { s.l.Debug(msg, args...) }
func (s slogLogger) Info(msg string, args ...any)  { s.l.Info(msg, args...) }
func (s slogLogger) Warn(msg string, args ...any)  { s.l.Warn(msg, args...) }
func (s slogLogger) Error(msg string, args ...any) { s.l.Error(msg, args...) }

// ParseLevel maps a config string to a slog level, defaulting to info.
func ParseLevel(level string) slog.Level {
	var l slog.Level
	if err := l.UnmarshalText([]byte(level)); err != nil {
		return slog.LevelInfo
	}
	return l
}

type discardLogger struct{}

func (discardLogger) Debug(string, ...any) {}
func (discardLogger) Info(string, ...any)  {}
func (discardLogger) Warn(string, ...any)  {}
func (discardLogger) Error(string, ...any) {}

// NopLogger returns a Logger that drops everything.
func NopLogger() Logger { return discardLogger{} }

func defaultLogger() Logger {
	return NewSlogLogger(nil)
}

func normalizeLogger(l Logger) Logger {
	if l == nil {
		return defaultLogger()
	}
	return l
}
