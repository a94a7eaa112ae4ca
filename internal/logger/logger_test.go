package logger

import (
	"testing"

	"icarus-bknd/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestNew_EnvironmentSelectsLevel(t *testing.T) {
	prod := New(&config.Config{Environment: "production"})
	assert.False(t, prod.Core().Enabled(zapcore.DebugLevel))
	prod.Sync()

	dev := New(&config.Config{Environment: "development"})
	assert.True(t, dev.Core().Enabled(zapcore.DebugLevel))
	dev.Sync()
}

func TestComponent_TagsEntries(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	l := &Logger{zap.New(core)}

	l.Component("search").Info("search completed")

	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Equal(t, "search", entries[0].ContextMap()["component"])
}

func TestNop_SyncIsSafe(t *testing.T) {
	l := Nop()
	assert.NotPanics(t, l.Sync)
}
