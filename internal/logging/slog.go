package logging

import (
	"context"
	"io"
	"log/slog"

	"github.com/lmittmann/tint"
)

type SlogLogger struct {
	l *slog.Logger
}

func NewSlogLogger(l *slog.Logger) *SlogLogger {
	return &SlogLogger{l: l}
}

// NewHandler builds an slog handler for the given format: "text" yields a
// colorized tint handler for local development, anything else yields JSON.
func NewHandler(w io.Writer, format string) slog.Handler {
	if format == "text" {
		return tint.NewHandler(w, &tint.Options{Level: slog.LevelDebug})
	}
	return slog.NewJSONHandler(w, nil)
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
