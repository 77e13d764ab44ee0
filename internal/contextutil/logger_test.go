package contextutil

import (
	"context"
	"log/slog"
	"testing"
)

func TestLoggerFromContext(t *testing.T) {
	custom := slog.Default().With("component", "test")

	tests := []struct {
		name string
		ctx  context.Context
		want *slog.Logger
	}{
		{name: "no logger", ctx: context.Background(), want: slog.Default()},
		{name: "logger set", ctx: WithLogger(context.Background(), custom), want: custom},
		{name: "wrong type", ctx: context.WithValue(context.Background(), loggerKey, "nope"), want: slog.Default()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := LoggerFromContext(tt.ctx); got != tt.want {
				t.Errorf("LoggerFromContext() = %p, want %p", got, tt.want)
			}
		})
	}
}

func TestLoggerOr(t *testing.T) {
	fallback := slog.Default().With("component", "fallback")
	custom := slog.Default().With("component", "custom")

	if got := LoggerOr(context.Background(), fallback); got != fallback {
		t.Errorf("LoggerOr() without ctx logger = %p, want fallback", got)
	}
	if got := LoggerOr(WithLogger(context.Background(), custom), fallback); got != custom {
		t.Errorf("LoggerOr() with ctx logger = %p, want custom", got)
	}
	if got := LoggerOr(context.Background(), nil); got != slog.Default() {
		t.Errorf("LoggerOr() with nil fallback should return slog.Default()")
	}
}
