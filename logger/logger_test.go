package logger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNewIsSilent(t *testing.T) {
	l := New()
	require.NotNil(t, l.Log)
	assert.False(t, l.Log.Core().Enabled(zap.ErrorLevel))
}

func TestInitWithoutOutputStaysSilent(t *testing.T) {
	l := New()
	require.NoError(t, l.Init("debug"))
	assert.False(t, l.Log.Core().Enabled(zap.ErrorLevel))
}

func TestInitWritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lockbox.log")
	l := New()
	require.NoError(t, l.Init("warn", path))

	l.Log.Info("hidden")
	l.Log.Warn("shown", zap.String("file", "lockbox.data"))
	_ = l.Log.Sync()

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "hidden")
	assert.Contains(t, string(raw), `"msg":"shown"`)
	assert.Contains(t, string(raw), `"file":"lockbox.data"`)
}

func TestInitRejectsBadLevel(t *testing.T) {
	l := New()
	assert.Error(t, l.Init("loud", filepath.Join(t.TempDir(), "x.log")))
}
