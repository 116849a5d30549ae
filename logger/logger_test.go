package logger_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	gormlogger "gorm.io/gorm/logger"

	"rhombick-backend/logger"
)

func TestNew_BuildsConsoleAndJSONLoggers(t *testing.T) {
	for _, format := range []string{"console", "json"} {
		l, err := logger.New(logger.Config{Level: "debug", Format: format, Output: "stderr"})
		require.NoError(t, err)
		assert.True(t, l.Core().Enabled(zapcore.DebugLevel))
	}
}

func TestNew_UnwritableFileFails(t *testing.T) {
	_, err := logger.New(logger.Config{Output: "/nonexistent-dir/app.log"})

	assert.Error(t, err)
}

func TestRequestID_RoundTrip(t *testing.T) {
	ctx := logger.WithRequestID(context.Background(), "req-42")

	assert.Equal(t, "req-42", logger.RequestID(ctx))
	assert.Empty(t, logger.RequestID(context.Background()))
}

func TestGormLogger_Trace(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	gl := logger.NewGormLogger(zap.New(core), gormlogger.Warn, 50*time.Millisecond)
	ctx := logger.WithRequestID(context.Background(), "req-1")
	stmt := func() (string, int64) { return "SELECT 1", 1 }

	gl.Trace(ctx, time.Now(), stmt, gormlogger.ErrRecordNotFound)
	assert.Zero(t, logs.Len(), "record not found is not an error")

	gl.Trace(ctx, time.Now(), stmt, errors.New("boom"))
	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, zapcore.ErrorLevel, entry.Level)
	assert.Equal(t, "req-1", entry.ContextMap()["request_id"])

	gl.Trace(ctx, time.Now().Add(-time.Second), stmt, nil)
	require.Equal(t, 2, logs.Len())
	assert.Equal(t, zapcore.WarnLevel, logs.All()[1].Level)

	gl.Trace(ctx, time.Now(), stmt, nil)
	assert.Equal(t, 2, logs.Len(), "fast queries are not logged at warn level")
}

func TestGormLevel(t *testing.T) {
	assert.Equal(t, gormlogger.Silent, logger.GormLevel("silent"))
	assert.Equal(t, gormlogger.Info, logger.GormLevel("debug"))
	assert.Equal(t, gormlogger.Warn, logger.GormLevel("anything"))
}
