package observability

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger("api", &buf)
	if l == nil {
		t.Fatal("NewLogger returned nil")
	}
	if l.Component() != "api" {
		t.Errorf("Component = %q", l.Component())
	}
}

func TestNewLogger_NilWriter(t *testing.T) {
	l := NewLogger("api", nil)
	if l == nil {
		t.Fatal("NewLogger with nil writer returned nil")
	}
	// Should not panic on log call.
	l.Info("test message")
}

func TestLogger_Info(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger("blog", &buf)
	l.Info("hello world", "key", "value")

	output := buf.String()
	if !strings.Contains(output, "hello world") {
		t.Errorf("output missing message: %s", output)
	}
	if !strings.Contains(output, `"component":"blog"`) {
		t.Errorf("output missing component: %s", output)
	}

	// Should be valid JSON.
	var m map[string]any
	if err := json.Unmarshal([]byte(output), &m); err != nil {
		t.Errorf("invalid JSON: %v", err)
	}
}

func TestLogger_With(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger("api", &buf).With("addr", "127.0.0.1:5002")
	l.Info("listening")

	if !strings.Contains(buf.String(), `"addr":"127.0.0.1:5002"`) {
		t.Errorf("persistent field missing: %s", buf.String())
	}
}

func TestLogger_Request(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger("api", &buf)
	l.Request("req-1", "GET", "/api/posts", 200, "duration_ms", 3)

	out := buf.String()
	for _, want := range []string{`"request_id":"req-1"`, `"method":"GET"`, `"path":"/api/posts"`, `"status":200`} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %s: %s", want, out)
		}
	}
}

func TestLogger_Levels(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger("api", &buf)

	l.Debug("debug msg")
	l.Warn("warn msg")
	l.Error("error msg")

	out := buf.String()
	for _, want := range []string{"debug msg", "warn msg", "error msg"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q", want)
		}
	}
}
