package logging

import (
	"os"
	"path/filepath"
	"testing"

	"lm-go/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestNewLogger_WritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "all.log")
	logger, err := NewLogger(config.LoggingConfig{Level: "debug", OutputPaths: []string{path}})
	require.NoError(t, err)

	assert.True(t, logger.Core().Enabled(zapcore.DebugLevel))
	logger.Info("hello")
	require.NoError(t, logger.Sync())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"hello"`)
}

func TestNewLogger_Level(t *testing.T) {
	logger, err := NewLogger(config.LoggingConfig{Level: "warn", OutputPaths: []string{filepath.Join(t.TempDir(), "x.log")}})
	require.NoError(t, err)
	assert.False(t, logger.Core().Enabled(zapcore.InfoLevel))
	assert.True(t, logger.Core().Enabled(zapcore.WarnLevel))
}

func TestNewLogger_BadLevel(t *testing.T) {
	_, err := NewLogger(config.LoggingConfig{Level: "loud"})
	assert.Error(t, err)
}
