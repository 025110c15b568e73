package logging

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tessro/segue/internal/config"
)

func TestSetupLevelAndFormat(t *testing.T) {
	logger, closer, err := Setup(config.LogConfig{Level: "debug", Format: "json"})
	require.NoError(t, err)
	defer closer.Close()

	assert.Equal(t, logrus.DebugLevel, logger.GetLevel())
	assert.IsType(t, &logrus.JSONFormatter{}, logger.Formatter)
}

func TestSetupRejectsBadLevel(t *testing.T) {
	_, _, err := Setup(config.LogConfig{Level: "loud"})
	assert.Error(t, err)
}

func TestSetupWritesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "segue.log")

	logger, closer, err := Setup(config.LogConfig{Level: "info", File: path})
	require.NoError(t, err)

	logger.WithField("mbid", "abc").Info("playing")
	require.NoError(t, closer.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "playing")
	assert.Contains(t, string(data), "mbid=abc")
}

func TestSetupForTUIUsesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tui.log")

	logger, closer, err := SetupForTUI(config.LogConfig{File: path})
	require.NoError(t, err)
	defer closer.Close()

	assert.NotEqual(t, os.Stderr, logger.Out)
	_, err = os.Stat(path)
	assert.NoError(t, err)
}
