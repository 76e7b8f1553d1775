package logging

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"testing"
)

func TestNewLogger(t *testing.T) {
	tests := []struct {
		name    string
		level   string
		format  string
		wantErr bool
	}{
		{"defaults", "", "", false},
		{"text debug", "debug", "text", false},
		{"json warn", "warn", "json", false},
		{"upper case", "ERROR", "JSON", false},
		{"bad level", "verbose", "text", true},
		{"bad format", "info", "xml", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			logger, err := NewLogger(&buf, tt.level, tt.format)
			if (err != nil) != tt.wantErr {
				t.Fatalf("NewLogger() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && logger == nil {
				t.Fatal("NewLogger() returned nil logger")
			}
		})
	}
}

func TestNewLogger_JSONOutput(t *testing.T) {
	var buf bytes.Buffer
	logger, err := NewLogger(&buf, "info", FormatJSON)
	if err != nil {
		t.Fatal(err)
	}

	logger.Debug("hidden")
	logger.Info("auto-share granted", FileID("file123"), Role("writer"))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("expected 1 log line, got %d: %q", len(lines), buf.String())
	}

	var entry map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &entry); err != nil {
		t.Fatalf("log line is not JSON: %v", err)
	}
	if entry[KeyFileID] != "file123" {
		t.Errorf("file_id = %v, want file123", entry[KeyFileID])
	}
	if entry[KeyRole] != "writer" {
		t.Errorf("role = %v, want writer", entry[KeyRole])
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"", slog.LevelInfo},
		{"info", slog.LevelInfo},
		{" warning ", slog.LevelWarn},
		{"error", slog.LevelError},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseLevel(tt.in)
			if err != nil {
				t.Fatalf("ParseLevel(%q) error = %v", tt.in, err)
			}
			if got != tt.want {
				t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestForComponent(t *testing.T) {
	var buf bytes.Buffer
	logger, err := NewLogger(&buf, "info", FormatText)
	if err != nil {
		t.Fatal(err)
	}

	ForComponent(logger, "autoshare").Info("granted")
	if !strings.Contains(buf.String(), "component=autoshare") {
		t.Errorf("output %q lacks the component", buf.String())
	}
	if ForComponent(nil, "x") == nil {
		t.Error("ForComponent(nil) returned nil")
	}
}

func TestAttrs(t *testing.T) {
	tests := []struct {
		name string
		attr slog.Attr
		key  string
		val  string
	}{
		{"operation", Operation("create"), KeyOperation, "create"},
		{"service", Service("sheets"), KeyService, "sheets"},
		{"file id", FileID("abc"), KeyFileID, "abc"},
		{"role", Role("reader"), KeyRole, "reader"},
		{"tool", Tool("sheets_append"), KeyTool, "sheets_append"},
		{"component", Component("server"), KeyComponent, "server"},
		{"resource", Resource("executions/job-1"), KeyResourceID, "executions/job-1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.attr.Key != tt.key {
				t.Errorf("key = %q, want %q", tt.attr.Key, tt.key)
			}
			if tt.attr.Value.String() != tt.val {
				t.Errorf("value = %q, want %q", tt.attr.Value.String(), tt.val)
			}
		})
	}
}

func TestErr(t *testing.T) {
	attr := Err(errors.New("test error"))
	if attr.Key != KeyError {
		t.Errorf("Err key = %q, want %q", attr.Key, KeyError)
	}
	if attr.Value.String() != "test error" {
		t.Errorf("Err value = %q, want %q", attr.Value.String(), "test error")
	}

	attr = Err(nil)
	if attr.Key != "" {
		t.Errorf("Err(nil) key = %q, want empty string (empty group)", attr.Key)
	}
}

func TestAnonymizeEmail(t *testing.T) {
	if got := AnonymizeEmail(""); got != "" {
		t.Errorf("AnonymizeEmail(\"\") = %q, want empty", got)
	}

	hash := AnonymizeEmail("owner@example.com")
	if len(hash) != 21 || !strings.HasPrefix(hash, "user:") {
		t.Errorf("AnonymizeEmail() = %q, want user: prefix and 21 chars", hash)
	}
	if hash != AnonymizeEmail("Owner@Example.com") {
		t.Error("AnonymizeEmail should be case-insensitive")
	}
	if hash == AnonymizeEmail("other@example.com") {
		t.Error("different emails should produce different hashes")
	}

	attr := UserHash("owner@example.com")
	if attr.Key != KeyUserHash || attr.Value.String() != hash {
		t.Errorf("UserHash() = %v, want %s=%s", attr, KeyUserHash, hash)
	}
}
