package logger

import (
	"path/filepath"
	"testing"

	"github.com/glintlab/aegis/internal/common/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestNewLoggerStdout(t *testing.T) {
	l, err := NewLogger(&config.LoggerConfig{Level: "debug", Format: "console", Output: "stdout"})
	require.NoError(t, err)
	assert.NotNil(t, l)
	l.Debug("hello")
}

func TestNewLoggerFileOutput(t *testing.T) {
	dir := t.TempDir()
	cfg := &config.LoggerConfig{Output: "file", FilePath: filepath.Join(dir, "logs", "aegis.log")}
	l, err := NewLogger(cfg)
	require.NoError(t, err)
	l.Info("written to file")
	require.NoError(t, l.Sync())
}

func TestGetLogLevel(t *testing.T) {
	assert.Equal(t, zapcore.DebugLevel, getLogLevel("debug"))
	assert.Equal(t, zapcore.WarnLevel, getLogLevel("WARN"))
	assert.Equal(t, zapcore.ErrorLevel, getLogLevel("error"))
	assert.Equal(t, zapcore.InfoLevel, getLogLevel("unknown"))
}
