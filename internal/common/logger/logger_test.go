package logger

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/daily-task-list/backend/internal/common/constants"
)

func TestLogger_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter(&buf, "svc", "warn")

	l.Infof("hidden %d", 1)
	l.Warnf("shown %d", 2)
	l.WithFields(context.Background(), Fields{"k": "v"}).Debug("also hidden")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("expected info and debug to be filtered, got %q", out)
	}
	if !strings.Contains(out, "[WARNING] [svc]") || !strings.Contains(out, "shown 2") {
		t.Errorf("expected warning line, got %q", out)
	}

	buf.Reset()
	debug := NewWithWriter(&buf, "", "debug")
	debug.WithFields(context.Background(), Fields{"n": 7}).Debug("listed")
	if got := buf.String(); !strings.Contains(got, "[DEBUG] [n=7]") || !strings.Contains(got, "listed") {
		t.Errorf("expected debug line without service tag, got %q", got)
	}
}

func TestLogger_WithFieldsIncludesTraceID(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter(&buf, "svc", "info")
	ctx := context.WithValue(context.Background(), constants.TraceIDKey, "abc123")

	l.WithFields(ctx, Fields{"user_id": "u1", "action": "login"}).Info("done")

	out := buf.String()
	if !strings.Contains(out, "[trace_id=abc123 action=login user_id=u1]") {
		t.Errorf("expected sorted fields with trace id, got %q", out)
	}
	if !strings.Contains(out, "logger_test.go:") {
		t.Errorf("expected caller location, got %q", out)
	}
}

func TestParseLevel(t *testing.T) {
	tests := map[string]LogLevel{
		"DEBUG":    DEBUG,
		" info ":   INFO,
		"warn":     WARNING,
		"WARNING":  WARNING,
		"error":    ERROR,
		"critical": CRITICAL,
		"bogus":    INFO,
	}
	for in, want := range tests {
		if got := parseLevel(in); got != want {
			t.Errorf("parseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}
