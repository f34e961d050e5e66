package config

import (
	"reflect"
	"strings"

	"media-replica/core/database"
	"media-replica/core/logger"
	"media-replica/core/server"
	"media-replica/core/storage"
	"media-replica/feature/library/device"
	"media-replica/feature/library/remote"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
// It is divided into partial configurations for better modularity.
type Config struct {
	// Server holds configuration for the HTTP server.
	Server server.Config `mapstructure:"server"`
	// Storage holds configuration for the object storage (e.g., S3, Minio).
	Storage storage.Config `mapstructure:"storage"`
	// Log holds configuration for the logger.
	Log logger.Config `mapstructure:"log"`
	// Database holds configuration for the database connection.
	Database database.Config `mapstructure:"database"`
	// Remote holds configuration for the remote media server API.
	Remote remote.Config `mapstructure:"remote"`
	// Media holds configuration for the on-device media index.
	Media device.Config `mapstructure:"media"`
	// Sync holds configuration for the reconciliation passes.
	Sync SyncConfig `mapstructure:"sync"`
	// Mirror holds configuration for the storage mirror.
	Mirror MirrorConfig `mapstructure:"mirror"`
}

// SyncConfig identifies the local party in a reconciliation pass.
type SyncConfig struct {
	// UserID is the identifier of the user owning the local media.
	UserID string `mapstructure:"user_id" default:""`
	// DeviceID is the identifier of this device on the remote server.
	DeviceID string `mapstructure:"device_id" default:""`
	// ExcludedAlbums is a comma separated list of device collection ids to skip.
	ExcludedAlbums string `mapstructure:"excluded_albums" default:""`
	// SharedAlbums enables syncing of albums shared with the user.
	SharedAlbums bool `mapstructure:"shared_albums" default:"true"`
}

// ExcludedAlbumIDs returns the excluded collection ids as a slice.
func (c SyncConfig) ExcludedAlbumIDs() []string {
	if c.ExcludedAlbums == "" {
		return nil
	}
	parts := strings.Split(c.ExcludedAlbums, ",")
	ids := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			ids = append(ids, trimmed)
		}
	}
	return ids
}

// MirrorConfig controls the local asset mirror kept in object storage.
type MirrorConfig struct {
	// Enabled toggles the mirror sweep.
	Enabled bool `mapstructure:"enabled" default:"false"`
	// Prefix is prepended to every mirrored object key.
	Prefix string `mapstructure:"prefix" default:"originals/"`
}

// LoadConfig loads configuration from environment variables and .env file.
func LoadConfig(path string) (*Config, error) {
	// 1. Load .env file if it exists
	// We construct the path to .env
	envPath := path + "/.env"
	if path == "." {
		envPath = ".env"
	}

	// Ignore error if file doesn't exist (e.g. production)
	_ = godotenv.Overload(envPath)

	v := viper.New()

	// Recursively parse struct tags to set default values
	bindValues(v, Config{}, "")

	// Map environment variables to nested keys (e.g. SERVER_PORT -> server.port)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

// bindValues uses reflection to iterate over the struct and set default values in Viper
// based on the 'default' and 'mapstructure' tags.
func bindValues(v *viper.Viper, iface any, prefix string) {
	t := reflect.TypeOf(iface)

	// If it's a pointer, get the element
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		tag := field.Tag.Get("mapstructure")

		// Skip if no tag
		if tag == "" {
			continue
		}

		// Build the key
		key := tag
		if prefix != "" {
			key = prefix + "." + tag
		}

		// If it's a nested struct, recurse
		if field.Type.Kind() == reflect.Struct {
			bindValues(v, reflect.New(field.Type).Elem().Interface(), key)
			continue
		}

		defaultValue := field.Tag.Get("default")
		// Always set default (even if empty) to register the key for AutomaticEnv
		v.SetDefault(key, defaultValue)
	}
}
