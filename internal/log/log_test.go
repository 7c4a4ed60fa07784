package log

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
)

func TestConfigLevelStringToSlogLevel(t *testing.T) {
	t.Parallel()

	tests := map[string]slog.Level{
		"trace":   LevelTrace,
		"debug":   slog.LevelDebug,
		"info":    slog.LevelInfo,
		"warn":    slog.LevelWarn,
		"error":   slog.LevelError,
		"verbose": slog.LevelError,
	}
	for input, want := range tests {
		if got := ConfigLevelStringToSlogLevel(input); got != want {
			t.Fatalf("level %q: got %v want %v", input, got, want)
		}
	}
}

func TestNewRendersTraceLevel(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := New(&buf, "trace")
	logger.Log(context.Background(), LevelTrace, "resolving", "resource", "resources/scanner.py")

	out := buf.String()
	if !strings.Contains(out, "level=TRACE") {
		t.Fatalf("expected TRACE level name, got %q", out)
	}
	if !strings.Contains(out, "resource=resources/scanner.py") {
		t.Fatalf("expected resource attribute, got %q", out)
	}
}

func TestNewFiltersBelowLevel(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := New(&buf, "warn")
	logger.Info("scan finished")
	if buf.Len() != 0 {
		t.Fatalf("info record leaked through warn logger: %q", buf.String())
	}
}

func TestFromContext(t *testing.T) {
	t.Parallel()

	if FromContext(context.Background()) == nil {
		t.Fatalf("expected discarding logger for empty context")
	}
	var buf bytes.Buffer
	logger := New(&buf, "info")
	ctx := WithLogger(context.Background(), logger)
	FromContext(ctx).Info("hello")
	if !strings.Contains(buf.String(), "msg=hello") {
		t.Fatalf("expected logger from context to be used, got %q", buf.String())
	}
}
