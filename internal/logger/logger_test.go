package logger

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"error", slog.LevelError},
		{"bogus", slog.LevelInfo},
	}

	for _, tt := range tests {
		if got := ParseLevel(tt.in); got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestNew_JSONFormatWithAttributes(t *testing.T) {
	var buf bytes.Buffer

	l := New(&buf, "info", "json").With("run", "abc")
	l.Debug("hidden")
	l.Info("season done", "season", 2024)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("expected 1 log line, got %d: %q", len(lines), buf.String())
	}

	var rec map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &rec); err != nil {
		t.Fatalf("log line is not JSON: %v", err)
	}

	if rec["run"] != "abc" {
		t.Errorf("expected run=abc, got %v", rec["run"])
	}

	if rec["msg"] != "season done" {
		t.Errorf("unexpected msg %v", rec["msg"])
	}
}

func TestSetLevel(t *testing.T) {
	var buf bytes.Buffer

	l := New(&buf, "error", "text")
	l.Info("dropped")

	l.SetLevel("debug")
	l.Debug("kept")

	out := buf.String()
	if strings.Contains(out, "dropped") {
		t.Error("info record should have been filtered at error level")
	}

	if !strings.Contains(out, "kept") {
		t.Error("debug record should be written after SetLevel(debug)")
	}
}
