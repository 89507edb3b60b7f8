package logger

import (
	"context"
	"log/slog"
	"testing"

	"github.com/Strob0t/CityMesh/internal/config"
)

func TestNewSync(t *testing.T) {
	l, closer := New(config.Logging{Level: "debug", Service: "citymesh-test"})
	defer closer.Close()

	if l == nil {
		t.Fatal("expected a logger")
	}
	if !l.Enabled(context.Background(), slog.LevelDebug) {
		t.Error("debug level should be enabled")
	}
}

func TestNewAsyncCloses(t *testing.T) {
	l, closer := New(config.Logging{Level: "info", Service: "citymesh-test", Async: true})
	if l == nil {
		t.Fatal("expected a logger")
	}
	l.Info("draining")
	closer.Close()
}

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"info":    slog.LevelInfo,
		"warn":    slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"bogus":   slog.LevelInfo,
		"":        slog.LevelInfo,
	}
	for input, want := range cases {
		if got := parseLevel(input); got != want {
			t.Errorf("parseLevel(%q) = %v, want %v", input, got, want)
		}
	}
}

func TestRequestIDRoundTrip(t *testing.T) {
	ctx := context.Background()
	if got := RequestID(ctx); got != "" {
		t.Errorf("empty context should have no request ID, got %q", got)
	}

	ctx = WithRequestID(ctx, "req-42")
	if got := RequestID(ctx); got != "req-42" {
		t.Errorf("RequestID = %q, want req-42", got)
	}
}
