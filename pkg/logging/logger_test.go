package logging

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

// testMockLogger is a mock logger for testing MultiLogger delegation.
type testMockLogger struct {
	mock.Mock
}

func (m *testMockLogger) Info(msg string, fields ...Field) {
	m.Called(msg, fields)
}

func (m *testMockLogger) Warn(msg string, fields ...Field) {
	m.Called(msg, fields)
}

func (m *testMockLogger) Error(msg string, fields ...Field) {
	m.Called(msg, fields)
}

func (m *testMockLogger) Debug(msg string, fields ...Field) {
	m.Called(msg, fields)
}

func (m *testMockLogger) WithFields(fields ...Field) Logger {
	args := m.Called(fields)
	return args.Get(0).(Logger)
}

func (m *testMockLogger) Close() error {
	args := m.Called()
	return args.Error(0)
}

func TestLogLevel_String(t *testing.T) {
	assert.Equal(t, "DEBUG", LevelDebug.String())
	assert.Equal(t, "INFO", LevelInfo.String())
	assert.Equal(t, "WARN", LevelWarn.String())
	assert.Equal(t, "ERROR", LevelError.String())
	assert.Equal(t, "UNKNOWN", LogLevel(42).String())
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    LogLevel
		wantErr bool
	}{
		{"debug", LevelDebug, false},
		{"INFO", LevelInfo, false},
		{"", LevelInfo, false},
		{"warning", LevelWarn, false},
		{" error ", LevelError, false},
		{"loud", LevelInfo, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseLevel(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFieldHelpers(t *testing.T) {
	assert.Equal(t, Field{Key: "k", Value: 1}, LogField("k", 1))
	assert.Equal(t, Field{Key: "check", Value: "isArray"}, CheckField("isArray"))
	assert.Equal(t, Field{Key: "d", Value: time.Second}, DurationField("d", time.Second))
	assert.Equal(t, "<nil>", ErrorField(nil).Value)
	assert.Equal(t, "boom", ErrorField(errors.New("boom")).Value)
}

func TestConsoleLogger_Levels(t *testing.T) {
	var buf bytes.Buffer
	logger := NewConsoleLoggerTo(&buf, LevelInfo)

	logger.Debug("hidden")
	logger.Info("hello world")
	logger.Warn("warning message")
	logger.Error("error occurred")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "INFO")
	assert.Contains(t, out, "hello world")
	assert.Contains(t, out, "WARN")
	assert.Contains(t, out, "ERROR")
	assert.NotContains(t, out, "\033[", "buffers are not terminals")
}

func TestConsoleLogger_WithFields(t *testing.T) {
	var buf bytes.Buffer
	base := NewConsoleLoggerTo(&buf, LevelDebug)

	child := base.WithFields(StringField("plan", "orders"))
	child.Debug("step done", IntField("index", 2))

	line := strings.TrimSpace(buf.String())
	assert.Contains(t, line, "step done")
	assert.Contains(t, line, "{index=2, plan=orders}")

	buf.Reset()
	base.Info("no fields")
	assert.NotContains(t, buf.String(), "plan=")
}

func TestZapLogger_WritesJSONLines(t *testing.T) {
	var buf bytes.Buffer
	logger := NewZapLoggerTo(zapcore.AddSync(&buf), LevelInfo)

	logger.WithFields(CheckField("isEqualTo")).Info("check failed", BoolField("passed", false))
	logger.Debug("filtered")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 1)

	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &entry))
	assert.Equal(t, "check failed", entry["message"])
	assert.Equal(t, "info", entry["level"])
	assert.Equal(t, "isEqualTo", entry["check"])
	assert.Equal(t, false, entry["passed"])
	assert.Contains(t, entry, "timestamp")
}

func TestNewZapLogger_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "pavlov.log")

	logger, err := NewZapLogger(LoggerConfig{
		OutputPath: path,
		Level:      LevelDebug,
		Fields:     map[string]any{"run": "r1"},
	})
	require.NoError(t, err)

	logger.Debug("written")
	require.NoError(t, logger.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"message":"written"`)
	assert.Contains(t, string(data), `"run":"r1"`)
}

func TestNullLogger_IsSilent(t *testing.T) {
	var nl Logger = NullLogger{}
	assert.NotPanics(t, func() {
		nl.Info("x", LogField("k", "v"))
		nl.Warn("x")
		nl.Error("x")
		nl.Debug("x")
	})
	assert.Equal(t, NullLogger{}, nl.WithFields(IntField("n", 1)))
	assert.NoError(t, nl.Close())
}

func TestMultiLogger_Delegates(t *testing.T) {
	fields := []Field{StringField("a", "b")}
	mocks := []*testMockLogger{new(testMockLogger), new(testMockLogger)}
	loggers := make([]Logger, len(mocks))
	for i, m := range mocks {
		m.On("Info", "info", fields).Return()
		m.On("Warn", "warn", fields).Return()
		m.On("Error", "error", fields).Return()
		m.On("Debug", "debug", fields).Return()
		loggers[i] = m
	}

	ml := NewMultiLogger(loggers...)
	ml.Info("info", fields...)
	ml.Warn("warn", fields...)
	ml.Error("error", fields...)
	ml.Debug("debug", fields...)

	for _, m := range mocks {
		m.AssertExpectations(t)
	}
}

func TestMultiLogger_WithFields(t *testing.T) {
	fields := []Field{IntField("n", 1)}
	m := new(testMockLogger)
	m.On("WithFields", fields).Return(NullLogger{})

	child := NewMultiLogger(m).WithFields(fields...)

	require.IsType(t, &MultiLogger{}, child)
	assert.Equal(t, []Logger{NullLogger{}}, child.(*MultiLogger).loggers)
	m.AssertExpectations(t)
}

func TestMultiLogger_CloseJoinsErrors(t *testing.T) {
	first, second := new(testMockLogger), new(testMockLogger)
	first.On("Close").Return(errors.New("first"))
	second.On("Close").Return(errors.New("second"))

	err := NewMultiLogger(first, second).Close()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "first")
	assert.Contains(t, err.Error(), "second")
}
