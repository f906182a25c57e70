package config

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("CAREBELL_SPOOL_PATH", "")
	env, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "info", env.LogLevel)
	assert.Equal(t, "console", env.LogFormat)
	assert.Equal(t, 5*time.Second, env.SamplePeriod)
	assert.Equal(t, "gemini-2.0-flash", env.GeminiModel)
	assert.Equal(t, 10*time.Second, env.TipTimeout)
	assert.Equal(t, "spool.db", filepath.Base(env.SpoolPath))
	assert.Equal(t, "carebell", filepath.Base(filepath.Dir(env.SpoolPath)))
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("CAREBELL_LOG_FORMAT", "json")
	t.Setenv("CAREBELL_SAMPLE_PERIOD", "30s")
	t.Setenv("CAREBELL_SPOOL_PATH", "/tmp/cb.db")
	t.Setenv("CAREBELL_GEMINI_API_KEY", "k")

	env, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "json", env.LogFormat)
	assert.Equal(t, 5*time.Second, env.SamplePeriod)
	assert.Equal(t, "/tmp/cb.db", env.SpoolPath)
	assert.True(t, env.TipsEnabled())
}

func TestLoadRejectsUnknownFormat(t *testing.T) {
	t.Setenv("CAREBELL_LOG_FORMAT", "xml")
	_, err := Load()
	assert.Error(t, err)
}

func TestLoadRejectsBadDuration(t *testing.T) {
	t.Setenv("CAREBELL_SAMPLE_PERIOD", "soon")
	_, err := Load()
	assert.Error(t, err)
}
