package pkg

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func TestSetLogLevel(t *testing.T) {
	orig := GetLogLevel()
	defer SetLogLevel(orig)

	SetLogLevel(slog.LevelDebug)
	if got := GetLogLevel(); got != slog.LevelDebug {
		t.Errorf("GetLogLevel() = %v, want %v", got, slog.LevelDebug)
	}

	SetLogLevel(slog.LevelError)
	if got := GetLogLevel(); got != slog.LevelError {
		t.Errorf("GetLogLevel() = %v, want %v", got, slog.LevelError)
	}
}

func TestLogComponentAttribute(t *testing.T) {
	var buf bytes.Buffer
	orig := DefaultLogger
	defer SetLogger(orig)

	SetLogger(NewLogger(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	LogInfo(ComponentStream, "test message", "frames", 3)

	out := buf.String()
	if !strings.Contains(out, "component=stream") {
		t.Errorf("log output missing component attribute: %q", out)
	}
	if !strings.Contains(out, "test message") {
		t.Errorf("log output missing message: %q", out)
	}
	if !strings.Contains(out, "frames=3") {
		t.Errorf("log output missing argument: %q", out)
	}
}

func TestLogLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	orig := DefaultLogger
	defer SetLogger(orig)

	SetLogger(NewLogger(&buf, &slog.HandlerOptions{Level: slog.LevelWarn}))
	LogDebug(ComponentPool, "should be filtered")
	LogWarn(ComponentPool, "should appear")

	out := buf.String()
	if strings.Contains(out, "should be filtered") {
		t.Errorf("debug message not filtered: %q", out)
	}
	if !strings.Contains(out, "should appear") {
		t.Errorf("warn message missing: %q", out)
	}
}

func TestNewJSONLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := NewJSONLogger(&buf, &slog.HandlerOptions{Level: slog.LevelInfo})
	logger.Info("json test", "key", "value")

	out := buf.String()
	if !strings.Contains(out, `"msg":"json test"`) {
		t.Errorf("JSON log output malformed: %q", out)
	}
}
