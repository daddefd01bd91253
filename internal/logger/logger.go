package logger

import (
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger is the structured logging interface used across the pipeline.
// Fields are alternating key/value pairs.
type Logger interface {
	Info(msg string, fields ...interface{})
	Warn(msg string, fields ...interface{})
	Error(msg string, err error, fields ...interface{})
	Debug(msg string, fields ...interface{})
	Fatal(msg string, err error, fields ...interface{})
	With(fields ...interface{}) Logger
	Sync() error
}

type zapLogger struct {
	s *zap.SugaredLogger
}

// New builds a production zap logger at the given level. Unknown levels
// fall back to info.
func New(level string) Logger {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(parseLevel(level))

	z, err := cfg.Build(zap.AddCallerSkip(1))
	if err != nil {
		z, _ = zap.NewProduction(zap.AddCallerSkip(1))
	}
	return &zapLogger{s: z.Sugar()}
}

// NewNop returns a logger that discards everything. Used in tests.
func NewNop() Logger {
	return &zapLogger{s: zap.NewNop().Sugar()}
}

func (l *zapLogger) Info(msg string, fields ...interface{}) {
	l.s.Infow(msg, fields...)
}

func (l *zapLogger) Warn(msg string, fields ...interface{}) {
	l.s.Warnw(msg, fields...)
}

func (l *zapLogger) Error(msg string, err error, fields ...interface{}) {
	l.s.Errorw(msg, append([]interface{}{"error", err}, fields...)...)
}

func (l *zapLogger) Debug(msg string, fields ...interface{}) {
	l.s.Debugw(msg, fields...)
}

func (l *zapLogger) Fatal(msg string, err error, fields ...interface{}) {
	l.s.Fatalw(msg, append([]interface{}{"error", err}, fields...)...)
}

func (l *zapLogger) With(fields ...interface{}) Logger {
	return &zapLogger{s: l.s.With(fields...)}
}

func (l *zapLogger) Sync() error {
	return l.s.Sync()
}

func parseLevel(level string) zapcore.Level {
	switch strings.ToLower(level) {
	case "debug":
		return zapcore.DebugLevel
	case "warn", "warning":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}
