package logging

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"log/slog"
	"strings"
)

// Attribute keys shared by the engine's log lines.
const (
	KeyComponent  = "component"
	KeyOperation  = "operation"
	KeyService    = "service"
	KeyFileID     = "file_id"
	KeyResourceID = "resource_id"
	KeyRole       = "role"
	KeyUserHash   = "user_hash"
	KeyTool       = "tool"
	KeyError      = "error"
)

// Log output formats accepted by NewLogger.
const (
	FormatText = "text"
	FormatJSON = "json"
)

// NewLogger returns a logger writing to w in format ("text" or "json") at
// level ("debug", "info", "warn", "error").
func NewLogger(w io.Writer, level, format string) (*slog.Logger, error) {
	lvl, err := ParseLevel(level)
	if err != nil {
		return nil, err
	}

	opts := &slog.HandlerOptions{Level: lvl}
	switch strings.ToLower(format) {
	case "", FormatText:
		return slog.New(slog.NewTextHandler(w, opts)), nil
	case FormatJSON:
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	default:
		return nil, fmt.Errorf("unsupported log format %q, must be one of: text, json", format)
	}
}

// ParseLevel converts a level name into a slog.Level. An empty name means info.
func ParseLevel(level string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unsupported log level %q", level)
	}
}

// ForComponent tags every line of logger with the component name.
func ForComponent(logger *slog.Logger, component string) *slog.Logger {
	if logger == nil {
		logger = slog.Default()
	}
	return logger.With(Component(component))
}

func Component(name string) slog.Attr { return slog.String(KeyComponent, name) }
func Operation(op string) slog.Attr    { return slog.String(KeyOperation, op) }
func Service(svc string) slog.Attr     { return slog.String(KeyService, svc) }
func Role(role string) slog.Attr       { return slog.String(KeyRole, role) }
func Tool(tool string) slog.Attr       { return slog.String(KeyTool, tool) }

// FileID is the Drive id of a file, folder, spreadsheet or document.
func FileID(id string) slog.Attr {
	return slog.String(KeyFileID, id)
}

// Resource identifies what a Cloud call acted on: a bucket object, topic,
// job, secret, document path or table.
func Resource(id string) slog.Attr {
	return slog.String(KeyResourceID, id)
}

// Err returns the error attribute. A nil error yields an empty group, which
// slog drops, so Err(err) is safe on success paths.
func Err(err error) slog.Attr {
	if err == nil {
		return slog.Group("")
	}
	return slog.String(KeyError, err.Error())
}

// AnonymizeEmail returns a stable hash of email that lets log lines be
// correlated without exposing the address. Case is ignored.
func AnonymizeEmail(email string) string {
	if email == "" {
		return ""
	}
	hash := sha256.Sum256([]byte(strings.ToLower(email)))
	return "user:" + hex.EncodeToString(hash[:8])
}

// UserHash is the anonymized owner address as an attribute.
func UserHash(email string) slog.Attr {
	return slog.String(KeyUserHash, AnonymizeEmail(email))
}
