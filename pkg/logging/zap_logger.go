package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// LoggerConfig configures the ZapLogger.
type LoggerConfig struct {
	// OutputPath is a file to append JSON lines to. Empty means
	// stdout.
	OutputPath string
	Level      LogLevel
	Fields     map[string]any
}

// ZapLogger implements Logger with JSON Lines output.
type ZapLogger struct {
	zl     *zap.Logger
	closer io.Closer
}

// NewZapLogger creates a JSON logger from config.
func NewZapLogger(config LoggerConfig) (*ZapLogger, error) {
	var (
		sink   zapcore.WriteSyncer = zapcore.Lock(os.Stdout)
		closer io.Closer
	)
	if config.OutputPath != "" {
		if err := os.MkdirAll(filepath.Dir(config.OutputPath), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create log directory: %w", err)
		}
		file, err := os.OpenFile(config.OutputPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, fmt.Errorf("failed to open log file: %w", err)
		}
		sink = zapcore.Lock(file)
		closer = file
	}

	l := NewZapLoggerTo(sink, config.Level)
	l.closer = closer
	if len(config.Fields) > 0 {
		fields := make([]Field, 0, len(config.Fields))
		for k, v := range config.Fields {
			fields = append(fields, Field{Key: k, Value: v})
		}
		l.zl = l.zl.With(toZap(fields)...)
	}
	return l, nil
}

// NewZapLoggerTo creates a JSON logger writing to w.
func NewZapLoggerTo(w zapcore.WriteSyncer, level LogLevel) *ZapLogger {
	encCfg := zap.NewProductionEncoderConfig()
	encCfg.TimeKey = "timestamp"
	encCfg.MessageKey = "message"
	encCfg.EncodeTime = zapcore.RFC3339NanoTimeEncoder

	core := zapcore.NewCore(zapcore.NewJSONEncoder(encCfg), w, zapLevel(level))
	return &ZapLogger{zl: zap.New(core)}
}

func zapLevel(l LogLevel) zapcore.Level {
	switch l {
	case LevelDebug:
		return zapcore.DebugLevel
	case LevelWarn:
		return zapcore.WarnLevel
	case LevelError:
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

func toZap(fields []Field) []zap.Field {
	out := make([]zap.Field, len(fields))
	for i, f := range fields {
		out[i] = zap.Any(f.Key, f.Value)
	}
	return out
}

// Info logs an informational message.
func (l *ZapLogger) Info(msg string, fields ...Field) {
	l.zl.Info(msg, toZap(fields)...)
}

// Warn logs a warning message.
func (l *ZapLogger) Warn(msg string, fields ...Field) {
	l.zl.Warn(msg, toZap(fields)...)
}

// Error logs an error message.
func (l *ZapLogger) Error(msg string, fields ...Field) {
	l.zl.Error(msg, toZap(fields)...)
}

// Debug logs a debug message.
func (l *ZapLogger) Debug(msg string, fields ...Field) {
	l.zl.Debug(msg, toZap(fields)...)
}

// WithFields returns a child logger carrying fields. The child
// shares the parent's sink; closing it does not close the file.
func (l *ZapLogger) WithFields(fields ...Field) Logger {
	return &ZapLogger{zl: l.zl.With(toZap(fields)...)}
}

// Close flushes buffered entries and closes the output file, if
// any.
func (l *ZapLogger) Close() error {
	// Sync on stdout fails with EINVAL on some platforms.
	_ = l.zl.Sync()
	if l.closer != nil {
		return l.closer.Close()
	}
	return nil
}
