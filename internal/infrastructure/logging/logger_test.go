package logging

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestNewRejectsUnknownLevel(t *testing.T) {
	_, err := New(Config{Level: "loud"})
	assert.Error(t, err)
}

func TestNewAppliesLevel(t *testing.T) {
	tests := []struct {
		name  string
		cfg   Config
		level zapcore.Level
	}{
		{name: "production", cfg: Config{Level: "warn"}, level: zapcore.WarnLevel},
		{name: "development", cfg: Config{Level: "debug", Development: true}, level: zapcore.DebugLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, err := New(tt.cfg)
			require.NoError(t, err)
			assert.True(t, logger.Core().Enabled(tt.level))
			assert.False(t, logger.Core().Enabled(tt.level-1))
		})
	}
}

func TestFromConfigFallsBackToInfo(t *testing.T) {
	logger := FromConfig("loud", false)
	require.NotNil(t, logger)
	assert.True(t, logger.Core().Enabled(zapcore.InfoLevel))
	assert.False(t, logger.Core().Enabled(zapcore.DebugLevel))

	assert.True(t, FromConfig("", true).Core().Enabled(zapcore.DebugLevel))
}

func TestPromptFields(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	base := zap.New(core)

	ForSession(base, 7).Info("Session started", Conn("c-1"), Prompt("fruit"))

	entries := logs.All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, uint64(7), fields["session"])
	assert.Equal(t, "c-1", fields["conn"])
	assert.Equal(t, "fruit", fields["prompt"])
}

func TestForSessionWithoutLogger(t *testing.T) {
	assert.NotPanics(t, func() {
		ForSession(nil, 1).Info("dropped")
	})
}

func TestNopSync(t *testing.T) {
	assert.NoError(t, NewNop().Sync())
}
