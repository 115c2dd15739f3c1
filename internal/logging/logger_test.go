package logging

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestInitialize_SilentWithoutLevel(t *testing.T) {
	t.Setenv(LogLevelEnvVar, "")
	path := filepath.Join(t.TempDir(), "out.log")

	require.NoError(t, Initialize("", path))
	Info("should not be written")
	Sync()

	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}

func TestInitialize_WritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.log")

	require.NoError(t, Initialize("debug", path))
	t.Cleanup(func() { logger = nil })

	Debug("scan finished")
	Sync()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "scan finished")
}

func TestInitialize_LevelFromEnv(t *testing.T) {
	t.Setenv(LogLevelEnvVar, "warn")
	path := filepath.Join(t.TempDir(), "out.log")

	require.NoError(t, Initialize("", path))
	t.Cleanup(func() { logger = nil })

	assert.False(t, GetLogger().Core().Enabled(zapcore.InfoLevel))
	assert.True(t, GetLogger().Core().Enabled(zapcore.WarnLevel))
}

func TestInitialize_UnknownLevel(t *testing.T) {
	err := Initialize("loud", filepath.Join(t.TempDir(), "out.log"))
	assert.Error(t, err)
}

func TestGetLogger_DefaultsToNop(t *testing.T) {
	logger = nil
	assert.NotNil(t, GetLogger())
	assert.False(t, GetLogger().Core().Enabled(zapcore.ErrorLevel))
}
