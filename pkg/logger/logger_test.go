package logger

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		name     string
		expected slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"error", slog.LevelError},
		{"invalid", slog.LevelInfo},
		{"", slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ParseLevel(tt.name); got != tt.expected {
				t.Errorf("Expected %v, got %v", tt.expected, got)
			}
		})
	}
}

func TestNewWritesToOutput(t *testing.T) {
	var buf bytes.Buffer
	log := New(&Config{Level: "warn", Format: "json", Output: &buf})

	log.Info("hidden")
	log.Warn("shown", "key", "value")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Error("Expected info message to be filtered at warn level")
	}
	if !strings.Contains(out, `"msg":"shown"`) {
		t.Errorf("Expected json warn message, got %q", out)
	}
}

func TestInit(t *testing.T) {
	tests := []struct {
		name   string
		config *Config
	}{
		{"debug level text", &Config{Level: "debug", Format: "text"}},
		{"info level json", &Config{Level: "info", Format: "json"}},
		{"default level", &Config{Level: "invalid", Format: "text"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			Init(tt.config)
			slog.Info("test message")
		})
	}
}

func TestWithContext(t *testing.T) {
	var buf bytes.Buffer
	slog.SetDefault(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))

	ctx := context.Background()
	ctx = context.WithValue(ctx, RequestIDKey, "req-123")
	ctx = context.WithValue(ctx, SessionKey, "sess-456")
	ctx = context.WithValue(ctx, UsernameKey, "alice")

	WithContext(ctx).Info("hello")

	out := buf.String()
	for _, want := range []string{"request_id=req-123", "session_id=sess-456", "username=alice"} {
		if !strings.Contains(out, want) {
			t.Errorf("Expected %q in log output %q", want, out)
		}
	}
}

func TestWithContextEmpty(t *testing.T) {
	Init(&Config{Level: "info", Format: "text"})

	if WithContext(context.Background()) == nil {
		t.Error("Expected non-nil logger")
	}
}

func TestLogFunctions(t *testing.T) {
	var buf bytes.Buffer
	slog.SetDefault(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))

	ctx := context.WithValue(context.Background(), RequestIDKey, "req-123")

	Info(ctx, "info message", "key", "value")
	if !strings.Contains(buf.String(), "info message") {
		t.Error("Expected info message in log")
	}

	buf.Reset()
	Debug(ctx, "debug message")
	if !strings.Contains(buf.String(), "debug message") {
		t.Error("Expected debug message in log")
	}

	buf.Reset()
	Warn(ctx, "warn message")
	if !strings.Contains(buf.String(), "warn message") {
		t.Error("Expected warn message in log")
	}

	buf.Reset()
	Error(ctx, "error message")
	if !strings.Contains(buf.String(), "error message") {
		t.Error("Expected error message in log")
	}
}
