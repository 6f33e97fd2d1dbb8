package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("warning"))
	assert.Equal(t, slog.LevelError, ParseLevel("error"))
	assert.Equal(t, slog.LevelInfo, ParseLevel("whatever"))
}

func TestWithContext_AddsCorrelationFields(t *testing.T) {
	var buf bytes.Buffer
	restore := SetForTest(New(&buf, Config{Level: "info", Format: "json"}))
	defer restore()

	ctx := context.WithValue(context.Background(), TraceIDKey, "trace-1")
	ctx = context.WithValue(ctx, SpanIDKey, "span-1")
	ctx = context.WithValue(ctx, RequestIDKey, "req-1")

	Info(ctx, "submission accepted", "submission_id", "abc")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "submission accepted", entry["msg"])
	assert.Equal(t, "trace-1", entry["trace_id"])
	assert.Equal(t, "span-1", entry["span_id"])
	assert.Equal(t, "req-1", entry["request_id"])
	assert.Equal(t, "abc", entry["submission_id"])
}

func TestDebugSuppressedAtInfo(t *testing.T) {
	var buf bytes.Buffer
	restore := SetForTest(New(&buf, Config{Level: "info", Format: "text"}))
	defer restore()

	Debug(context.Background(), "hidden")
	assert.Empty(t, buf.String())

	Warn(context.Background(), "shown")
	assert.Contains(t, buf.String(), "shown")
}

func TestInit_FileOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "app.log")
	prev := Get()
	defer func() {
		globalLogger = nil
		slog.SetDefault(prev)
	}()

	require.NoError(t, Init(Config{
		Level:      "info",
		Format:     "json",
		Output:     "file",
		FilePath:   path,
		MaxSize:    1,
		MaxBackups: 1,
	}))

	Error(context.Background(), "ninox write failed")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "ninox write failed")
}
