package discovery

import (
	"context"
	"log/slog"
)

// Logger is the narrow logging interface the discovery core depends on.
// Any logger compatible with slog's (ctx, level, msg, args...) shape can be
// adapted to satisfy it.
type Logger interface {
	Log(ctx context.Context, level slog.Level, msg string, args ...any)
}

// NoOpLogger discards everything. Useful as a default logger so callers
// never have to nil-check.
type NoOpLogger struct{}

func (NoOpLogger) Log(_ context.Context, _ slog.Level, _ string, _ ...any) {}

// SlogLogger adapts a *slog.Logger to the Logger interface.
type SlogLogger struct {
	L *slog.Logger
}

func (s SlogLogger) Log(ctx context.Context, level slog.Level, msg string, args ...any) {
	if s.L == nil {
		return
	}
	s.L.Log(ctx, level, msg, args...)
}
