package config_test

import (
	"testing"

	"media-replica/core/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := config.LoadConfig(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, "media-originals", cfg.Storage.Bucket)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "originals/", cfg.Mirror.Prefix)
	assert.False(t, cfg.Mirror.Enabled)
	assert.True(t, cfg.Sync.SharedAlbums)
	assert.Equal(t, 60, cfg.Remote.TimeoutSeconds)
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("SYNC_USER_ID", "u1")
	t.Setenv("SYNC_DEVICE_ID", "d1")
	t.Setenv("REMOTE_ENDPOINT", "http://server:2283/api")

	cfg, err := config.LoadConfig(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, "u1", cfg.Sync.UserID)
	assert.Equal(t, "d1", cfg.Sync.DeviceID)
	assert.Equal(t, "http://server:2283/api", cfg.Remote.Endpoint)
}

func TestSyncConfig_ExcludedAlbumIDs(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want []string
	}{
		{"Empty", "", nil},
		{"Single", "camera", []string{"camera"}},
		{"ManyWithSpaces", "camera, screenshots ,downloads", []string{"camera", "screenshots", "downloads"}},
		{"TrailingComma", "camera,", []string{"camera"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := config.SyncConfig{ExcludedAlbums: tt.raw}
			assert.Equal(t, tt.want, c.ExcludedAlbumIDs())
		})
	}
}
