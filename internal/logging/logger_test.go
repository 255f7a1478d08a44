package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rohankatakam/codefolio/internal/config"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLevels(t *testing.T) {
	tests := []struct {
		name    string
		level   string
		verbose bool
		want    logrus.Level
	}{
		{"info", "info", false, logrus.InfoLevel},
		{"warn", "warn", false, logrus.WarnLevel},
		{"garbage falls back to info", "loud", false, logrus.InfoLevel},
		{"verbose wins", "error", true, logrus.DebugLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, err := New(config.LogConfig{Level: tt.level}, tt.verbose)
			require.NoError(t, err)
			defer logger.Close()
			assert.Equal(t, tt.want, logger.GetLevel())
		})
	}
}

func TestFileOutputJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "folio.log")
	logger, err := New(config.LogConfig{Level: "info", JSON: true, File: path}, false)
	require.NoError(t, err)

	logger.WithField("commits", 3).Info("loaded")
	require.NoError(t, logger.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"commits":3`)
	assert.Contains(t, string(data), `"msg":"loaded"`)
}

func TestRotateIfNeeded(t *testing.T) {
	path := filepath.Join(t.TempDir(), "folio.log")
	require.NoError(t, os.WriteFile(path, []byte(strings.Repeat("x", 64)), 0644))
	require.NoError(t, os.WriteFile(path+".1", []byte("older"), 0644))

	require.NoError(t, rotateIfNeeded(path, 32, 3))

	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err))

	rotated, err := os.ReadFile(path + ".1")
	require.NoError(t, err)
	assert.Len(t, rotated, 64)

	older, err := os.ReadFile(path + ".2")
	require.NoError(t, err)
	assert.Equal(t, "older", string(older))
}

func TestRotateSkipsSmallFiles(t *testing.T) {
	path := filepath.Join(t.TempDir(), "folio.log")
	require.NoError(t, os.WriteFile(path, []byte("tiny"), 0644))

	require.NoError(t, rotateIfNeeded(path, 1024, 3))

	_, err := os.Stat(path)
	assert.NoError(t, err)
}
