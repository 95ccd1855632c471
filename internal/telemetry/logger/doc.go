// Package logger provides structured logging for cfkv on top of log/slog.
//
//   - logger.go: logger construction and the process-wide level
//   - context.go: per-invocation logger and operation id propagation
//   - redact.go: masking of stored values and credentials
//
// Stored payloads never reach the log output. Attributes named value,
// values or operand are replaced by their size, so a debug log of an
// instruction shows how much was written without showing what.
package logger
