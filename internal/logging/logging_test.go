package logging

import (
	"testing"

	"github.com/rgehrsitz/fireplan/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestNew_Levels(t *testing.T) {
	tests := []struct {
		name     string
		cfg      config.LogSettings
		enabled  zapcore.Level
		disabled zapcore.Level
	}{
		{"debug", config.LogSettings{Level: "DEBUG"}, zapcore.DebugLevel, zapcore.InvalidLevel},
		{"warn json", config.LogSettings{Level: "warn", Encoding: "json"}, zapcore.WarnLevel, zapcore.InfoLevel},
		{"unknown level", config.LogSettings{Level: "chatty"}, zapcore.InfoLevel, zapcore.DebugLevel},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, err := New(tt.cfg)
			require.NoError(t, err)
			assert.True(t, l.Core().Enabled(tt.enabled))
			if tt.disabled != zapcore.InvalidLevel {
				assert.False(t, l.Core().Enabled(tt.disabled))
			}
		})
	}
}

func TestAdapter(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	a := NewAdapter(zap.New(core), "engine")

	a.Debugf("step %d", 1)
	a.Infof("retired at %.1f", 45.0)
	a.Warnf("trial %d failed", 3)
	a.Errorf("boom")

	entries := logs.All()
	require.Len(t, entries, 4)
	assert.Equal(t, "step 1", entries[0].Message)
	assert.Equal(t, zapcore.InfoLevel, entries[1].Level)
	assert.Equal(t, "retired at 45.0", entries[1].Message)
	assert.Equal(t, zapcore.WarnLevel, entries[2].Level)
	assert.Equal(t, zapcore.ErrorLevel, entries[3].Level)
	assert.Equal(t, "engine", entries[0].ContextMap()["component"])
}

func TestNewZapLogger(t *testing.T) {
	a, err := NewZapLogger(config.LogSettings{Level: "error"})
	require.NoError(t, err)
	require.NotNil(t, a)
	a.Infof("suppressed")
}
