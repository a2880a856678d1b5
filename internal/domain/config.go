package domain

import "time"

// Config represents the main application configuration, loaded by
// internal/config.Manager via viper.
type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	OCR     OCRConfig     `mapstructure:"ocr"`
	Cache   CacheConfig   `mapstructure:"cache"`
	Logging LoggingConfig `mapstructure:"logging"`
	MCP     MCPConfig     `mapstructure:"mcp"`
	Run     RunConfig     `mapstructure:"run"`
}

// ServerConfig represents the thin HTTP wrapper's listener configuration.
type ServerConfig struct {
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	IdleTimeout  time.Duration `mapstructure:"idle_timeout"`
}

// DatabaseConfig represents the persistence adapter's connection settings.
type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	Database        string        `mapstructure:"database"`
	Username        string        `mapstructure:"username"`
	Password        string        `mapstructure:"password"`
	SSLMode         string        `mapstructure:"ssl_mode"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}

// OCRConfig represents the §6 "Environment toggles" for the OCR collaborator.
type OCRConfig struct {
	Workers          int           `mapstructure:"workers"`
	DPI              int           `mapstructure:"dpi"`
	Mode             string        `mapstructure:"mode"` // full, fast, sample, off
	TimeoutSeconds   int           `mapstructure:"timeout_seconds"`
	TotalTimeoutSecs int           `mapstructure:"total_timeout_seconds"`
	FastLimit        int           `mapstructure:"fast_limit"`
	SampleEvery      int           `mapstructure:"sample_every"`
	Disabled         bool          `mapstructure:"disabled"`
	DebugArtifacts   bool          `mapstructure:"debug_artifacts"`
}

// Timeout returns the per-page OCR timeout as a time.Duration.
func (c OCRConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// TotalTimeout returns the overall OCR budget as a time.Duration.
func (c OCRConfig) TotalTimeout() time.Duration {
	return time.Duration(c.TotalTimeoutSecs) * time.Second
}

// CacheConfig represents the shared OCR-cache Redis connection (§5 "Shared resources").
type CacheConfig struct {
	RedisURL    string        `mapstructure:"redis_url"`
	DefaultTTL  time.Duration `mapstructure:"default_ttl"`
	MaxRetries  int           `mapstructure:"max_retries"`
	PoolSize    int           `mapstructure:"pool_size"`
	PoolTimeout time.Duration `mapstructure:"pool_timeout"`
	LocalLRUSize int          `mapstructure:"local_lru_size"`
}

// LoggingConfig represents logging configuration.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}

// MCPConfig represents the thin MCP wrapper's server identity.
type MCPConfig struct {
	ServerName    string        `mapstructure:"server_name"`
	ServerVersion string        `mapstructure:"server_version"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
}
