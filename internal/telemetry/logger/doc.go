// Package logger provides structured logging for rudis.
//
// Two interchangeable backends implement the Logger interface:
//
//   - logger.go: log/slog backend (default), JSON or text output
//   - zap.go: go.uber.org/zap backend, JSON or console output
//   - context.go: context propagation of loggers and connection IDs
//   - redact.go: keeps stored keys' values out of log output
//
// Either backend can write to a size-rotated file (lumberjack). The log
// level is process-wide and can be changed at runtime with SetLevel.
package logger
