package logger

import (
	"context"
	"io"
	"log/slog"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// zapLevel mirrors globalLevel for zap cores.
var zapLevel = zap.NewAtomicLevelAt(zapcore.InfoLevel)

// zapLogger adapts a zap.SugaredLogger to Logger.
type zapLogger struct {
	s      *zap.SugaredLogger
	closer io.Closer
}

func newZapLogger(cfg Config, output io.Writer, closer io.Closer) *zapLogger {
	encCfg := zap.NewProductionEncoderConfig()
	encCfg.TimeKey = "time"
	encCfg.MessageKey = "msg"
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	encCfg.EncodeDuration = zapcore.StringDurationEncoder
	encCfg.EncodeLevel = zapcore.CapitalLevelEncoder
	encCfg.EncodeCaller = zapcore.ShortCallerEncoder

	var enc zapcore.Encoder
	switch strings.ToLower(cfg.Format) {
	case "text", "console":
		enc = zapcore.NewConsoleEncoder(encCfg)
	default:
		enc = zapcore.NewJSONEncoder(encCfg)
	}

	core := zapcore.NewCore(enc, zapcore.AddSync(output), zapLevel)

	var opts []zap.Option
	if cfg.AddSource {
		opts = append(opts, zap.AddCaller(), zap.AddCallerSkip(1))
	}

	return &zapLogger{
		s:      zap.New(core, opts...).Sugar(),
		closer: closer,
	}
}

func (l *zapLogger) Debug(msg string, args ...any) {
	l.s.Debugw(msg, redactPairs(args)...)
}

func (l *zapLogger) Info(msg string, args ...any) {
	l.s.Infow(msg, redactPairs(args)...)
}

func (l *zapLogger) Warn(msg string, args ...any) {
	l.s.Warnw(msg, redactPairs(args)...)
}

func (l *zapLogger) Error(msg string, args ...any) {
	l.s.Errorw(msg, redactPairs(args)...)
}

func (l *zapLogger) With(args ...any) Logger {
	return &zapLogger{
		s:      l.s.With(redactPairs(args)...),
		closer: l.closer,
	}
}

// WithContext attaches the connection ID carried by ctx, if any.
// zap has no context-aware handlers, so nothing else is taken from ctx.
func (l *zapLogger) WithContext(ctx context.Context) Logger {
	if id := ConnIDFromContext(ctx); id != "" {
		return l.With("conn_id", id)
	}
	return l
}

func (l *zapLogger) Close() error {
	// Sync fails on non-file outputs such as stderr; that is not an error here.
	_ = l.s.Sync()
	if l.closer == nil {
		return nil
	}
	return l.closer.Close()
}

func toZapLevel(l slog.Level) zapcore.Level {
	switch {
	case l <= slog.LevelDebug:
		return zapcore.DebugLevel
	case l <= slog.LevelInfo:
		return zapcore.InfoLevel
	case l <= slog.LevelWarn:
		return zapcore.WarnLevel
	default:
		return zapcore.ErrorLevel
	}
}
