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

	"github.com/go-logr/logr/funcr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func splitNonEmpty(s string) []string {
	var lines []string
	for _, line := range strings.Split(s, "\n") {
		if strings.TrimSpace(line) != "" {
			lines = append(lines, line)
		}
	}
	return lines
}

func TestLogLevel_String(t *testing.T) {
	assert.Equal(t, "DEBUG", LevelDebug.String())
	assert.Equal(t, "INFO", LevelInfo.String())
	assert.Equal(t, "WARN", LevelWarn.String())
	assert.Equal(t, "ERROR", LevelError.String())
	assert.Equal(t, "UNKNOWN", LogLevel(99).String())
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
		{"trace", LevelInfo, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseLevel(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFields(t *testing.T) {
	assert.Equal(t, Field{Key: "k", Value: "v"}, StringField("k", "v"))
	assert.Equal(t, Field{Key: "n", Value: 3}, IntField("n", 3))
	assert.Equal(t, Field{Key: "b", Value: true}, BoolField("b", true))
	assert.Equal(t, Field{Key: "x", Value: 1.5}, LogField("x", 1.5))
	assert.Equal(
		t, Field{Key: "timeout_ms", Value: int64(250)},
		DurationField("timeout", 250*time.Millisecond),
	)
	assert.Equal(t, "<nil>", ErrorField(nil).Value)
	assert.Equal(t, "boom", ErrorField(errors.New("boom")).Value)
}

func TestNullLogger(t *testing.T) {
	var l Logger = NullLogger{}
	l.Info("x")
	l.Warn("x")
	l.Error("x")
	l.Debug("x")
	assert.IsType(t, NullLogger{}, l.WithFields(StringField("a", "b")))
	assert.NoError(t, l.Close())
}

func TestConsoleLogger_Levels(t *testing.T) {
	var buf bytes.Buffer
	logger := NewConsoleLoggerTo(&buf, LevelInfo)

	logger.Debug("hidden")
	logger.Info("hello world")
	logger.Warn("careful")
	logger.Error("broken")

	output := buf.String()
	assert.NotContains(t, output, "hidden")
	assert.Contains(t, output, "INFO")
	assert.Contains(t, output, "hello world")
	assert.Contains(t, output, "WARN")
	assert.Contains(t, output, "ERROR")
	assert.Len(t, splitNonEmpty(output), 3)
}

func TestConsoleLogger_WithFields(t *testing.T) {
	var buf bytes.Buffer
	logger := NewConsoleLoggerTo(&buf, LevelDebug).
		WithFields(StringField("run_id", "r1"))

	logger.Debug("step", IntField("index", 2))

	output := buf.String()
	assert.Contains(t, output, "index=2, run_id=r1")
}

func TestJSONLogger_File(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "nested", "run.log")

	logger, err := NewJSONLogger(LoggerConfig{
		OutputPath: logPath,
		Level:      LevelDebug,
	})
	require.NoError(t, err)

	logger.Info("hello", LogField("key", "val"))
	logger.Debug("debug msg")
	require.NoError(t, logger.Close())
	logger.Info("after close")

	data, err := os.ReadFile(logPath)
	require.NoError(t, err)

	lines := splitNonEmpty(string(data))
	require.Len(t, lines, 2)

	var entry LogEntry
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &entry))
	assert.Equal(t, "INFO", entry.Level)
	assert.Equal(t, "hello", entry.Message)
	assert.Equal(t, "val", entry.Fields["key"])
}

func TestJSONLogger_LevelFilteringAndFields(t *testing.T) {
	var buf bytes.Buffer
	logger := NewJSONLoggerTo(&buf, LevelWarn, map[string]any{"svc": "x"})

	logger.Info("dropped")
	logger.WithFields(StringField("step", "1")).Warn("kept")

	lines := splitNonEmpty(buf.String())
	require.Len(t, lines, 1)

	var entry LogEntry
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &entry))
	assert.Equal(t, "WARN", entry.Level)
	assert.Equal(t, "x", entry.Fields["svc"])
	assert.Equal(t, "1", entry.Fields["step"])
}

func TestJSONLogger_MarshalError(t *testing.T) {
	orig := jsonMarshal
	defer func() { jsonMarshal = orig }()
	jsonMarshal = func(any) ([]byte, error) {
		return nil, errors.New("marshal failed")
	}

	var buf bytes.Buffer
	NewJSONLoggerTo(&buf, LevelDebug, nil).Info("x")
	assert.Empty(t, buf.String())
}

func TestJSONLogger_BadPath(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "file")
	require.NoError(t, os.WriteFile(blocker, nil, 0644))

	_, err := NewJSONLogger(LoggerConfig{
		OutputPath: filepath.Join(blocker, "sub", "x.log"),
	})
	assert.Error(t, err)
}

func TestMultiLogger(t *testing.T) {
	var a, b bytes.Buffer
	logger := NewMultiLogger(
		NewConsoleLoggerTo(&a, LevelDebug),
		NewJSONLoggerTo(&b, LevelDebug, nil),
	)

	logger.WithFields(StringField("k", "v")).Warn("fan out")
	logger.Debug("debug")
	logger.Info("info")
	logger.Error("error")

	assert.Contains(t, a.String(), "fan out")
	assert.Contains(t, b.String(), `"k":"v"`)
	assert.Len(t, splitNonEmpty(a.String()), 4)
	assert.Len(t, splitNonEmpty(b.String()), 4)
	assert.NoError(t, logger.Close())
}

func TestZapLogger(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	logger := NewZapLogger(zap.New(core))

	logger.WithFields(StringField("run_id", "r1")).
		Info("step passed", IntField("attempts", 3))
	logger.Debug("debug")
	logger.Warn("warn")
	logger.Error("error", ErrorField(errors.New("boom")))

	entries := logs.All()
	require.Len(t, entries, 4)
	assert.Equal(t, "step passed", entries[0].Message)
	assert.Equal(t, "r1", entries[0].ContextMap()["run_id"])
	assert.EqualValues(t, 3, entries[0].ContextMap()["attempts"])
	assert.Equal(t, zapcore.WarnLevel, entries[2].Level)
	assert.Equal(t, "boom", entries[3].ContextMap()["error"])
	assert.NoError(t, logger.Close())
}

func TestZapLogger_NilUsesNop(t *testing.T) {
	logger := NewZapLogger(nil)
	logger.Info("nothing")
	assert.NoError(t, logger.Close())
}

func TestLogrLogger(t *testing.T) {
	var lines []string
	sink := funcr.New(func(prefix, args string) {
		lines = append(lines, args)
	}, funcr.Options{Verbosity: 1})

	logger := NewLogrLogger(sink).WithFields(StringField("run_id", "r1"))
	logger.Info("started", IntField("steps", 2))
	logger.Debug("polling")
	logger.Warn("slow")
	logger.Error("failed", ErrorField(errors.New("isLoading returned false")))

	require.Len(t, lines, 4)
	assert.Contains(t, lines[0], `"msg"="started"`)
	assert.Contains(t, lines[0], `"run_id"="r1"`)
	assert.Contains(t, lines[0], `"steps"=2`)
	assert.Contains(t, lines[1], `"msg"="polling"`)
	assert.Contains(t, lines[2], `"severity"="warn"`)
	assert.Contains(t, lines[3], `"error"="isLoading returned false"`)
	assert.NoError(t, logger.Close())
}
