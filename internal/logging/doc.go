// Package logging provides structured logging utilities for automation-engine.
//
// All packages log through log/slog. This package keeps attribute names
// consistent and keeps the owner account's e-mail address out of general
// logs: auto-share events carry a hashed user identifier unless audit logging
// with PII is explicitly enabled.
//
// # Usage Patterns
//
//	logger := logging.ForComponent(slog.Default(), "autoshare")
//	logger.Warn("auto-share failed",
//	    logging.FileID(fileID),
//	    logging.UserHash(owner),
//	    logging.Err(err))
//
// NewLogger builds the process-wide logger from a level and format name and is
// what the CLI installs as slog.Default.
package logging
