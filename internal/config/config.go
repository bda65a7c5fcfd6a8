// Package config provides configuration management for the vidfeed server.
// Configuration can be loaded from YAML files and environment variables.
package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// LocalEnv is the environment name that selects the storage emulator.
const LocalEnv = "local"

// Config represents the complete application configuration.
type Config struct {
	Env      string         `mapstructure:"env"`
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Storage  StorageConfig  `mapstructure:"storage"`
	Auth     AuthConfig     `mapstructure:"auth"`
	Timeline TimelineConfig `mapstructure:"timeline"`
	Logging  LoggingConfig  `mapstructure:"logging"`
	Metrics  MetricsConfig  `mapstructure:"metrics"`
}

// IsLocalEnv reports whether the service runs against local emulators.
func (c *Config) IsLocalEnv() bool {
	return strings.EqualFold(strings.TrimSpace(c.Env), LocalEnv)
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	IdleTimeout     time.Duration `mapstructure:"idle_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	MaxBodySize     int64         `mapstructure:"max_body_size"`
}

// Addr returns the listen address in host:port format.
func (c ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// DatabaseConfig holds database connection settings.
// Supports both PostgreSQL and SQLite backends.
type DatabaseConfig struct {
	// Driver specifies the database driver: "postgres" or "sqlite".
	Driver string `mapstructure:"driver"`

	// PostgreSQL settings (used when Driver is "postgres")
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	Database        string        `mapstructure:"database"`
	SSLMode         string        `mapstructure:"ssl_mode"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `mapstructure:"conn_max_idle_time"`

	// ReplicaHost routes timeline reads to a read replica when set.
	ReplicaHost string `mapstructure:"replica_host"`

	// SQLite settings (used when Driver is "sqlite")
	Path            string `mapstructure:"path"`             // Path to SQLite database file
	JournalMode     string `mapstructure:"journal_mode"`     // WAL, DELETE, TRUNCATE, etc.
	BusyTimeout     int    `mapstructure:"busy_timeout"`     // Milliseconds to wait for locks
	CacheSize       int    `mapstructure:"cache_size"`       // Page cache size (negative = KB)
	SynchronousMode string `mapstructure:"synchronous_mode"` // NORMAL, FULL, OFF
}

// DSN returns the PostgreSQL connection string for the primary.
func (c DatabaseConfig) DSN() string {
	return c.dsn(c.Host)
}

// ReplicaDSN returns the replica connection string, or "" without a replica.
func (c DatabaseConfig) ReplicaDSN() string {
	if c.ReplicaHost == "" {
		return ""
	}
	return c.dsn(c.ReplicaHost)
}

func (c DatabaseConfig) dsn(host string) string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		host, c.Port, c.User, c.Password, c.Database, c.SSLMode,
	)
}

// IsEmbedded returns true if using an embedded database (SQLite).
func (c DatabaseConfig) IsEmbedded() bool {
	return c.Driver == "sqlite"
}

// RedisConfig holds Redis connection settings.
// When disabled, caching and locking stay in process memory.
type RedisConfig struct {
	Host        string        `mapstructure:"host"`
	Port        int           `mapstructure:"port"`
	Password    string        `mapstructure:"password"`
	DB          int           `mapstructure:"db"`
	PoolSize    int           `mapstructure:"pool_size"`
	DialTimeout time.Duration `mapstructure:"dial_timeout"`
	Enabled     bool          `mapstructure:"enabled"`
}

// Addr returns the Redis address in host:port format.
func (c RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// StorageConfig holds object storage settings.
type StorageConfig struct {
	Region       string `mapstructure:"region"`
	VideosBucket string `mapstructure:"videos_bucket"`

	// LocalEndpoint is the emulator base URL, used with path-style addressing
	// when Env is local.
	LocalEndpoint string `mapstructure:"local_endpoint"`

	// ProviderHost overrides the production base URL. Empty uses AWS.
	ProviderHost string `mapstructure:"provider_host"`

	// PresignedURLExpiration is the upload grant lifetime in seconds.
	PresignedURLExpiration int `mapstructure:"presigned_url_expiration"`

	// Optional static credentials; the default AWS chain is used otherwise.
	AccessKeyID     string `mapstructure:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key"`

	CredentialsTimeout     time.Duration `mapstructure:"credentials_timeout"`
	CredentialsMaxAttempts int           `mapstructure:"credentials_max_attempts"`
}

// PresignWindow returns PresignedURLExpiration as a duration.
func (c StorageConfig) PresignWindow() time.Duration {
	return time.Duration(c.PresignedURLExpiration) * time.Second
}

// AuthConfig holds session token settings.
type AuthConfig struct {
	// JWTSecret signs session tokens. At least 32 bytes.
	JWTSecret string        `mapstructure:"jwt_secret"`
	JWTIssuer string        `mapstructure:"jwt_issuer"`
	TokenTTL  time.Duration `mapstructure:"token_ttl"`
}

// TimelineConfig holds feed settings.
type TimelineConfig struct {
	PageSize int           `mapstructure:"page_size"`
	CacheTTL time.Duration `mapstructure:"cache_ttl"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	Output     string `mapstructure:"output"`
	TimeFormat string `mapstructure:"time_format"`
}

// MetricsConfig holds Prometheus metrics settings.
type MetricsConfig struct {
	// Enabled determines if metrics collection is active.
	Enabled bool `mapstructure:"enabled"`

	// Port is the port for the metrics HTTP server.
	Port int `mapstructure:"port"`

	// Path is the URL path for the metrics endpoint.
	Path string `mapstructure:"path"`
}

// Load reads configuration from the specified file and environment variables.
// Environment variables take precedence over file values.
// Environment variables are prefixed with VIDFEED_ and use _ as separator.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetEnvPrefix("VIDFEED")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
		v.AddConfigPath("/etc/vidfeed")
	}

	// Config file is optional; defaults and env vars are enough.
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// setDefaults sets default configuration values.
func setDefaults(v *viper.Viper) {
	v.SetDefault("env", "production")

	// Server defaults
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", 30*time.Second)
	v.SetDefault("server.write_timeout", 60*time.Second)
	v.SetDefault("server.idle_timeout", 120*time.Second)
	v.SetDefault("server.shutdown_timeout", 30*time.Second)
	v.SetDefault("server.max_body_size", 1024*1024) // 1MB of JSON

	// Database defaults
	v.SetDefault("database.driver", "postgres")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "vidfeed")
	v.SetDefault("database.password", "")
	v.SetDefault("database.database", "vidfeed")
	v.SetDefault("database.ssl_mode", "prefer")
	v.SetDefault("database.max_open_conns", 25)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.conn_max_lifetime", 5*time.Minute)
	v.SetDefault("database.conn_max_idle_time", 5*time.Minute)
	v.SetDefault("database.replica_host", "")
	// SQLite defaults
	v.SetDefault("database.path", "./data/vidfeed.db")
	v.SetDefault("database.journal_mode", "WAL")
	v.SetDefault("database.busy_timeout", 5000)
	v.SetDefault("database.cache_size", -2000)
	v.SetDefault("database.synchronous_mode", "NORMAL")

	// Redis defaults
	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.pool_size", 10)
	v.SetDefault("redis.dial_timeout", 5*time.Second)
	v.SetDefault("redis.enabled", false)

	// Storage defaults
	v.SetDefault("storage.region", "us-east-1")
	v.SetDefault("storage.videos_bucket", "videos")
	v.SetDefault("storage.local_endpoint", "http://localhost:4566")
	v.SetDefault("storage.provider_host", "")
	v.SetDefault("storage.presigned_url_expiration", 900)
	v.SetDefault("storage.access_key_id", "")
	v.SetDefault("storage.secret_access_key", "")
	v.SetDefault("storage.credentials_timeout", 5*time.Second)
	v.SetDefault("storage.credentials_max_attempts", 3)

	// Auth defaults
	v.SetDefault("auth.jwt_secret", "") // Must be provided
	v.SetDefault("auth.jwt_issuer", "vidfeed")
	v.SetDefault("auth.token_ttl", 24*time.Hour)

	// Timeline defaults
	v.SetDefault("timeline.page_size", 20)
	v.SetDefault("timeline.cache_ttl", 30*time.Second)

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("logging.output", "stdout")
	v.SetDefault("logging.time_format", time.RFC3339)

	// Metrics defaults
	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.port", 9091)
	v.SetDefault("metrics.path", "/metrics")
}

// Validate checks the configuration for required values and valid ranges.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535")
	}

	validDrivers := map[string]bool{"postgres": true, "sqlite": true}
	if !validDrivers[c.Database.Driver] {
		return fmt.Errorf("database.driver must be 'postgres' or 'sqlite'")
	}

	if c.Database.Driver == "postgres" {
		if c.Database.Host == "" {
			return fmt.Errorf("database.host is required for postgres driver")
		}
		if c.Database.User == "" {
			return fmt.Errorf("database.user is required for postgres driver")
		}
		if c.Database.Database == "" {
			return fmt.Errorf("database.database is required for postgres driver")
		}
	} else if c.Database.Path == "" {
		return fmt.Errorf("database.path is required for sqlite driver")
	}

	if c.Storage.Region == "" {
		return fmt.Errorf("storage.region is required")
	}
	if c.Storage.VideosBucket == "" {
		return fmt.Errorf("storage.videos_bucket is required")
	}
	// Lower bound is one second; upper bound is the SigV4 maximum of 7 days.
	if c.Storage.PresignedURLExpiration < 1 || c.Storage.PresignedURLExpiration > 7*24*60*60 {
		return fmt.Errorf("storage.presigned_url_expiration must be between 1 and 604800 seconds")
	}
	if c.IsLocalEnv() {
		if err := validateBaseURL(c.Storage.LocalEndpoint); err != nil {
			return fmt.Errorf("storage.local_endpoint: %w", err)
		}
	} else if c.Storage.ProviderHost != "" {
		if err := validateBaseURL(c.Storage.ProviderHost); err != nil {
			return fmt.Errorf("storage.provider_host: %w", err)
		}
	}
	if (c.Storage.AccessKeyID == "") != (c.Storage.SecretAccessKey == "") {
		return fmt.Errorf("storage.access_key_id and storage.secret_access_key must be set together")
	}
	if c.Storage.CredentialsMaxAttempts < 1 {
		return fmt.Errorf("storage.credentials_max_attempts must be at least 1")
	}

	if len(c.Auth.JWTSecret) < 32 {
		return fmt.Errorf("auth.jwt_secret must be at least 32 characters")
	}

	if c.Timeline.PageSize < 1 || c.Timeline.PageSize > 100 {
		return fmt.Errorf("timeline.page_size must be between 1 and 100")
	}

	validLevels := map[string]bool{
		"trace": true, "debug": true, "info": true,
		"warn": true, "error": true, "fatal": true, "panic": true,
	}
	if !validLevels[strings.ToLower(c.Logging.Level)] {
		return fmt.Errorf("logging.level must be one of: trace, debug, info, warn, error, fatal, panic")
	}

	return nil
}

func validateBaseURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return err
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("scheme must be http or https, got %q", u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("host is required")
	}
	return nil
}
