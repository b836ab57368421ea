package config

import (
	"testing"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		t.Setenv("GEMINI_API_KEY", "")
		t.Setenv("GOOGLE_API_KEY", "")
		t.Setenv("PORT", "")
		t.Setenv("LLM_TIMEOUT", "")

		cfg := Load()
		require.Equal(t, "5000", cfg.Server.Port)
		require.Equal(t, "8501", cfg.Server.DashboardPort)
		require.Equal(t, "gemini-2.5-flash", cfg.Gemini.Model)
		require.Equal(t, 60*time.Second, cfg.Gemini.Timeout)
		require.True(t, cfg.Gemini.BreakerEnabled)
		require.Equal(t, int64(10485760), cfg.Upload.MaxFileSize)
		require.Equal(t, "http://localhost:5000", cfg.Dashboard.APIURL)
		require.Error(t, cfg.Validate())
	})

	t.Run("google key fallback", func(t *testing.T) {
		t.Setenv("GEMINI_API_KEY", "")
		t.Setenv("GOOGLE_API_KEY", "legacy-key")

		cfg := Load()
		require.Equal(t, "legacy-key", cfg.Gemini.APIKey)
		require.NoError(t, cfg.Validate())
	})

	t.Run("overrides", func(t *testing.T) {
		t.Setenv("GEMINI_API_KEY", "key")
		t.Setenv("LLM_TIMEOUT", "5s")
		t.Setenv("LLM_BREAKER_ENABLED", "false")
		t.Setenv("MAX_FILES", "3")
		t.Setenv("API_URL", "http://api:9000/")

		cfg := Load()
		require.Equal(t, 5*time.Second, cfg.Gemini.Timeout)
		require.False(t, cfg.Gemini.BreakerEnabled)
		require.Equal(t, 3, cfg.Upload.MaxFiles)
		require.Equal(t, "http://api:9000", cfg.Dashboard.APIURL)
		require.Equal(t, int(cfg.Upload.MaxFileSize)*3, cfg.BodyLimit())
	})

	t.Run("malformed values fall back", func(t *testing.T) {
		t.Setenv("LLM_TIMEOUT", "soon")
		t.Setenv("MAX_FILES", "many")

		cfg := Load()
		require.Equal(t, 60*time.Second, cfg.Gemini.Timeout)
		require.Equal(t, 50, cfg.Upload.MaxFiles)
	})
}

func TestInitLogger(t *testing.T) {
	InitLogger(LogConfig{Level: "debug", Format: "json"})
	require.Equal(t, log.DebugLevel, log.GetLevel())
	_, ok := log.StandardLogger().Formatter.(*log.JSONFormatter)
	require.True(t, ok)

	InitLogger(LogConfig{Level: "nonsense", Format: "text"})
	require.Equal(t, log.InfoLevel, log.GetLevel())
	_, ok = log.StandardLogger().Formatter.(*log.TextFormatter)
	require.True(t, ok)
}
