package logging

import (
	"context"
	"io"
	"log/slog"
	"strings"

	"github.com/samber/oops"
)

type SlogLogger struct {
	l *slog.Logger
}

func NewSlogLogger(l *slog.Logger) *SlogLogger {
	return &SlogLogger{l: l}
}

// New builds a SlogLogger writing to w. format is "json" or "text"; level is
// one of debug, info, warn, error (anything else means info).
func New(w io.Writer, level, format string) *SlogLogger {
	opts := &slog.HandlerOptions{Level: parseLevel(level)}

	var h slog.Handler
	if strings.EqualFold(format, "text") {
		h = slog.NewTextHandler(w, opts)
	} else {
		h = slog.NewJSONHandler(w, opts)
	}
	return NewSlogLogger(slog.New(h))
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
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

func (s *SlogLogger) Debug(ctx context.Context, msg string, args ...any) {
	s.l.DebugContext(ctx, msg, args...)
}

func (s *SlogLogger) Info(ctx context.Context, msg string, args ...any) {
	s.l.InfoContext(ctx, msg, args...)
}

func (s *SlogLogger) Warn(ctx context.Context, msg string, args ...any) {
	s.l.WarnContext(ctx, msg, args...)
}

func (s *SlogLogger) Error(ctx context.Context, msg string, args ...any) {
	s.l.ErrorContext(ctx, msg, args...)
}

func (s *SlogLogger) With(args ...any) Logger {
	return &SlogLogger{l: s.l.With(args...)}
}

// LogError logs err at error level. For oops errors the code and the
// attached context are logged as separate attributes.
func LogError(ctx context.Context, l Logger, msg string, err error) {
	oopsErr, ok := oops.AsOops(err)
	if !ok {
		l.Error(ctx, msg, "error", err)
		return
	}

	args := []any{"error", oopsErr.Error()}
	if code := oopsErr.Code(); code != nil && code != "" {
		args = append(args, "code", code)
	}
	if c := oopsErr.Context(); len(c) > 0 {
		args = append(args, "context", c)
	}
	l.Error(ctx, msg, args...)
}
