// Package logger provides structured logging for rudis.
package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"

	"gopkg.in/natefinch/lumberjack.v2"
)

// Logger is the application logger interface.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
	With(args ...any) Logger
	WithContext(ctx context.Context) Logger
	// Close flushes buffered entries and releases the log file, if any.
	Close() error
}

// Backend names accepted in Config.Backend.
const (
	BackendSlog = "slog"
	BackendZap  = "zap"
)

// Config holds logger configuration.
type Config struct {
	// Level is the minimum log level (debug, info, warn, error).
	Level string
	// Format is the output format (json, text).
	Format string
	// Backend selects the implementation (slog, zap).
	Backend string
	// Output is the output writer (defaults to os.Stderr).
	// Ignored when File.Path is set.
	Output io.Writer
	// File enables size-based rotation into a log file.
	File FileConfig
	// AddSource adds source file information to log entries.
	AddSource bool
}

// FileConfig configures rotated file output.
type FileConfig struct {
	Path       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool
}

// DefaultConfig returns a default logger configuration.
func DefaultConfig() Config {
	return Config{
		Level:   "info",
		Format:  "json",
		Backend: BackendSlog,
		Output:  os.Stderr,
	}
}

// slogLogger wraps slog.Logger with additional functionality.
type slogLogger struct {
	logger *slog.Logger
	ctx    context.Context
	closer io.Closer
}

// globalLevel holds the current log level for dynamic adjustment.
var globalLevel = new(slog.LevelVar)

// New creates a new logger with the given configuration.
func New(cfg Config) (Logger, error) {
	SetLevel(cfg.Level)

	output, closer, err := openOutput(cfg)
	if err != nil {
		return nil, err
	}

	switch strings.ToLower(cfg.Backend) {
	case "", BackendSlog:
		return newSlogLogger(cfg, output, closer), nil
	case BackendZap:
		return newZapLogger(cfg, output, closer), nil
	default:
		if closer != nil {
			_ = closer.Close()
		}
		return nil, fmt.Errorf("logger: unknown backend %q", cfg.Backend)
	}
}

// Nop returns a logger that discards everything.
func Nop() Logger {
	return &slogLogger{
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		ctx:    context.Background(),
	}
}

func newSlogLogger(cfg Config, output io.Writer, closer io.Closer) *slogLogger {
	opts := &slog.HandlerOptions{
		Level:     globalLevel,
		AddSource: cfg.AddSource,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			return redactSensitive(a)
		},
	}

	var handler slog.Handler
	switch strings.ToLower(cfg.Format) {
	case "text", "console":
		handler = slog.NewTextHandler(output, opts)
	default: // json
		handler = slog.NewJSONHandler(output, opts)
	}

	return &slogLogger{
		logger: slog.New(handler),
		ctx:    context.Background(),
		closer: closer,
	}
}

// openOutput resolves the destination writer. A file destination is
// wrapped in lumberjack for rotation and must be closed by the caller.
func openOutput(cfg Config) (io.Writer, io.Closer, error) {
	if cfg.File.Path == "" {
		if cfg.Output == nil {
			return os.Stderr, nil, nil
		}
		return cfg.Output, nil, nil
	}

	if err := os.MkdirAll(filepath.Dir(cfg.File.Path), 0o750); err != nil {
		return nil, nil, fmt.Errorf("logger: create log directory: %w", err)
	}
	lj := &lumberjack.Logger{
		Filename:   cfg.File.Path,
		MaxSize:    cfg.File.MaxSizeMB,
		MaxBackups: cfg.File.MaxBackups,
		MaxAge:     cfg.File.MaxAgeDays,
		Compress:   cfg.File.Compress,
	}
	return lj, lj, nil
}

// SetLevel dynamically sets the global log level for both backends.
func SetLevel(level string) {
	l := parseLevel(level)
	globalLevel.Set(l)
	zapLevel.SetLevel(toZapLevel(l))
}

// GetLevel returns the current log level as a string.
func GetLevel() string {
	switch globalLevel.Level() {
	case slog.LevelDebug:
		return "debug"
	case slog.LevelWarn:
		return "warn"
	case slog.LevelError:
		return "error"
	default:
		return "info"
	}
}

// ValidLevel reports whether level names a known log level.
func ValidLevel(level string) bool {
	switch strings.ToLower(level) {
	case "debug", "info", "warn", "warning", "error":
		return true
	default:
		return false
	}
}

func (l *slogLogger) Debug(msg string, args ...any) {
	l.logger.DebugContext(l.ctx, msg, args...)
}

func (l *slogLogger) Info(msg string, args ...any) {
	l.logger.InfoContext(l.ctx, msg, args...)
}

func (l *slogLogger) Warn(msg string, args ...any) {
	l.logger.WarnContext(l.ctx, msg, args...)
}

func (l *slogLogger) Error(msg string, args ...any) {
	l.logger.ErrorContext(l.ctx, msg, args...)
}

func (l *slogLogger) With(args ...any) Logger {
	return &slogLogger{
		logger: l.logger.With(args...),
		ctx:    l.ctx,
		closer: l.closer,
	}
}

func (l *slogLogger) WithContext(ctx context.Context) Logger {
	child := &slogLogger{
		logger: l.logger,
		ctx:    ctx,
		closer: l.closer,
	}
	if id := ConnIDFromContext(ctx); id != "" {
		child.logger = child.logger.With("conn_id", id)
	}
	return child
}

func (l *slogLogger) Close() error {
	if l.closer == nil {
		return nil
	}
	return l.closer.Close()
}

// parseLevel converts a string level to slog.Level.
func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

type holder struct{ l Logger }

// Global logger instance for convenience methods.
var defaultLogger atomic.Pointer[holder]

func init() {
	l, _ := New(DefaultConfig())
	defaultLogger.Store(&holder{l: l})
}

// SetDefault sets the default global logger.
func SetDefault(l Logger) {
	if l != nil {
		defaultLogger.Store(&holder{l: l})
	}
}

// Default returns the default global logger.
func Default() Logger {
	return defaultLogger.Load().l
}

// Debug logs at debug level using the default logger.
func Debug(msg string, args ...any) {
	Default().Debug(msg, args...)
}

// Info logs at info level using the default logger.
func Info(msg string, args ...any) {
	Default().Info(msg, args...)
}

// Warn logs at warn level using the default logger.
func Warn(msg string, args ...any) {
	Default().Warn(msg, args...)
}

// Error logs at error level using the default logger.
func Error(msg string, args ...any) {
	Default().Error(msg, args...)
}
