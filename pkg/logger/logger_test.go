package logger

import (
	"path/filepath"
	"testing"

	"github.com/dadosqualitativos/portal-api/internal/common/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestNewLoggerStdout(t *testing.T) {
	logger, err := NewLogger(&config.LoggerConfig{Level: "debug"})
	require.NoError(t, err)
	require.NotNil(t, logger)
	logger.Debug("debug message")
	// Syncing stdout fails on some platforms; only the file output
	// guarantees a clean sync.
	_ = logger.Sync()
}

func TestNewLoggerFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "portal.log")
	logger, err := NewLogger(&config.LoggerConfig{
		Level:    "info",
		Output:   "file",
		FilePath: path,
	})
	require.NoError(t, err)
	logger.Info("written to file")
	require.NoError(t, logger.Sync())
	assert.FileExists(t, path)
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zapcore.DebugLevel, parseLevel("debug"))
	assert.Equal(t, zapcore.WarnLevel, parseLevel("WARN"))
	assert.Equal(t, zapcore.InfoLevel, parseLevel("unknown"))
	assert.Equal(t, zapcore.InfoLevel, parseLevel(""))
}

func TestSetDefaults(t *testing.T) {
	cfg := &config.LoggerConfig{}
	setDefaults(cfg)
	assert.Equal(t, "info", cfg.Level)
	assert.Equal(t, "json", cfg.Format)
	assert.Equal(t, "stdout", cfg.Output)
	assert.Equal(t, 100, cfg.MaxSize)
}
