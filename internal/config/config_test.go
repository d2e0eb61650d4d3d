package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad(t *testing.T) {
	t.Run("should fall back to defaults", func(t *testing.T) {
		cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))

		require.NoError(t, err)
		assert.Equal(t, ":8080", cfg.HTTP.Addr)
		assert.Equal(t, 100, cfg.Calendar.Limit)
		assert.Equal(t, 6*time.Second, cfg.Banner.Interval)
		assert.Equal(t, 15*time.Second, cfg.API.Timeout)
		assert.Equal(t, []string{"https://corsproxy.io/?", "https://api.allorigins.win/raw?url="}, cfg.Video.RelayList())
		assert.True(t, cfg.CSRF.Secure)
	})

	t.Run("should let the file override defaults", func(t *testing.T) {
		path := writeFile(t, "application.yaml", `
api:
  url: https://coterie.example.org/api
calendar:
  timezone: America/New_York
  limit: 40
banner:
  interval: 10s
`)

		cfg, err := Load(path)

		require.NoError(t, err)
		assert.Equal(t, "https://coterie.example.org/api", cfg.API.URL)
		assert.Equal(t, 40, cfg.Calendar.Limit)
		assert.Equal(t, 10*time.Second, cfg.Banner.Interval)
		assert.Equal(t, ":8080", cfg.HTTP.Addr)
	})

	t.Run("should let the environment override the file", func(t *testing.T) {
		path := writeFile(t, "application.yaml", "api:\n  url: https://from-file.example.org\n")
		t.Setenv("TEMPLE_API_URL", "https://from-env.example.org")
		t.Setenv("TEMPLE_VIDEO_PLAYLISTID", "UULV123")
		t.Setenv("TEMPLE_CSRF_SECURE", "false")

		cfg, err := Load(path)

		require.NoError(t, err)
		assert.Equal(t, "https://from-env.example.org", cfg.API.URL)
		assert.Equal(t, "UULV123", cfg.Video.PlaylistID)
		assert.False(t, cfg.CSRF.Secure)
	})

	t.Run("should read a .env file without overriding the environment", func(t *testing.T) {
		envFile := writeFile(t, ".env", "TEMPLE_PORTAL_URL=https://portal.example.org\nTEMPLE_SITE_NAME=From dotenv\n")
		t.Setenv("TEMPLE_SITE_NAME", "From env")
		t.Setenv("TEMPLE_PORTAL_URL", "")
		require.NoError(t, os.Unsetenv("TEMPLE_PORTAL_URL"))

		cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"), envFile, filepath.Join(t.TempDir(), "missing.env"))

		require.NoError(t, err)
		assert.Equal(t, "https://portal.example.org", cfg.Portal.URL)
		assert.Equal(t, "From env", cfg.Site.Name)
	})

	t.Run("should reject a broken file", func(t *testing.T) {
		path := writeFile(t, "application.yaml", "api: [unclosed")

		_, err := Load(path)

		assert.Error(t, err)
	})
}

func TestCalendar_Location(t *testing.T) {
	t.Run("should resolve a named zone", func(t *testing.T) {
		loc, err := Calendar{Timezone: "Europe/Berlin"}.Location()

		require.NoError(t, err)
		assert.Equal(t, "Europe/Berlin", loc.String())
	})

	t.Run("should default to local time", func(t *testing.T) {
		loc, err := Calendar{}.Location()

		require.NoError(t, err)
		assert.Equal(t, time.Local, loc)
	})

	t.Run("should reject an unknown zone", func(t *testing.T) {
		_, err := Calendar{Timezone: "Mars/Olympus"}.Location()

		assert.Error(t, err)
	})
}

func TestVideo_RelayList(t *testing.T) {
	assert.Equal(t, []string{"a", "b"}, Video{Relays: " a , ,b "}.RelayList())
	assert.Empty(t, Video{}.RelayList())
}
