package logging

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoggerLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&Options{Level: LevelWarn, Output: &buf})

	ctx := context.Background()
	logger.Debug(ctx, "not emitted")
	logger.Info(ctx, "not emitted either")
	logger.Warn(ctx, nil, "warned")

	out := buf.String()
	assert.NotContains(t, out, "not emitted")
	assert.Contains(t, out, "warned")
}

func TestLoggerFields(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&Options{Level: LevelDebug, Output: &buf, Format: "json"})

	logger.With("page", "about").Info(context.Background(), "navigated", "fetches", 1)

	out := buf.String()
	assert.Contains(t, out, `"page":"about"`)
	assert.Contains(t, out, `"fetches":1`)
}

func TestLoggerComponent(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&Options{Level: LevelDebug, Output: &buf, Format: "json"})

	logger.WithComponent("router").Error(context.Background(), errors.New("boom"), "failed")

	out := buf.String()
	assert.Contains(t, out, `"component":"router"`)
	assert.Contains(t, out, `"error":"boom"`)
}

func TestLevelString(t *testing.T) {
	assert.Equal(t, "DEBUG", LevelDebug.String())
	assert.Equal(t, "INFO", LevelInfo.String())
	assert.Equal(t, "WARN", LevelWarn.String())
	assert.Equal(t, "ERROR", LevelError.String())
	assert.Equal(t, "UNKNOWN", Level(42).String())
}

func TestOddFieldCountIgnored(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&Options{Level: LevelDebug, Output: &buf, Format: "json"})

	logger.Info(context.Background(), "msg", "key1", "val1", "dangling")

	out := buf.String()
	assert.Contains(t, out, `"key1":"val1"`)
	assert.NotContains(t, out, "dangling")
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, LevelDebug, ParseLevel("debug"))
	assert.Equal(t, LevelWarn, ParseLevel("WARN"))
	assert.Equal(t, LevelError, ParseLevel("error"))
	assert.Equal(t, LevelInfo, ParseLevel("anything else"))
}

func TestStartOperationLogsDuration(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&Options{Level: LevelDebug, Output: &buf, Format: "json"})

	op := StartOperation(logger, "swap")
	op.End(context.Background())

	out := buf.String()
	assert.Contains(t, out, `"operation":"swap"`)
	assert.Contains(t, out, `"duration_ms"`)
}
