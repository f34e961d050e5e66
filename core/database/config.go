package database

// Config holds configuration for the replica database connection.
type Config struct {
	// Driver is the database driver (sqlite, mysql). The replica is a
	// per-install local database, so sqlite is the default.
	Driver string `mapstructure:"driver" default:"sqlite"`
	// Path is the sqlite database file.
	Path string `mapstructure:"path" default:"media-replica.db"`
	// Host is the database host (mysql).
	Host string `mapstructure:"host" default:"localhost"`
	// Port is the database port (mysql).
	Port int `mapstructure:"port" default:"3306"`
	// User is the database user (mysql).
	User string `mapstructure:"user" default:"root"`
	// Password is the database password (mysql).
	Password string `mapstructure:"password" default:""`
	// Name is the database name (mysql).
	Name string `mapstructure:"name" default:"media_replica"`
	// TimeoutSeconds is the connection timeout in seconds.
	TimeoutSeconds int `mapstructure:"timeout_seconds" default:"30"`
}
