// Package config loads the chronology engine's RunConfig, environment
// toggles, and ambient service configuration via Viper.
package config

import (
	"fmt"
	"strings"

	"github.com/citeline/chronology-core/internal/domain"
	"github.com/spf13/viper"
)

// Manager implements domain.ConfigManager using Viper.
type Manager struct {
	config *domain.Config
}

// NewManager creates a new configuration manager.
func NewManager() (*Manager, error) {
	m := &Manager{}
	if err := m.loadConfig(); err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	return m, nil
}

func (m *Manager) loadConfig() error {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	viper.AddConfigPath("/etc/chronology-core/")

	viper.SetEnvPrefix("CHRONOLOGY")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	m.setDefaults()
	m.bindOCREnvAliases()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return fmt.Errorf("error reading config file: %w", err)
		}
	}

	config := &domain.Config{}
	if err := viper.Unmarshal(config); err != nil {
		return fmt.Errorf("error unmarshaling config: %w", err)
	}

	m.config = config
	return nil
}

// bindOCREnvAliases binds the §6 bare environment toggle names (no
// CHRONOLOGY_ prefix, no dotted path) alongside the viper-native ones, since
// OCR_WORKERS et al. are specified as standalone env vars, not app config.
func (m *Manager) bindOCREnvAliases() {
	aliases := map[string]string{
		"ocr.workers":               "OCR_WORKERS",
		"ocr.dpi":                   "OCR_DPI",
		"ocr.mode":                  "OCR_MODE",
		"ocr.timeout_seconds":       "OCR_TIMEOUT_SECONDS",
		"ocr.total_timeout_seconds": "OCR_TOTAL_TIMEOUT_SECONDS",
		"ocr.fast_limit":            "OCR_FAST_LIMIT",
		"ocr.sample_every":          "OCR_SAMPLE_EVERY",
		"ocr.disabled":              "DISABLE_OCR",
		"ocr.debug_artifacts":       "DEBUG_ARTIFACTS",
	}
	for key, env := range aliases {
		_ = viper.BindEnv(key, env)
	}
}

func (m *Manager) setDefaults() {
	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.read_timeout", "30s")
	viper.SetDefault("server.write_timeout", "30s")
	viper.SetDefault("server.idle_timeout", "120s")

	viper.SetDefault("database.host", "localhost")
	viper.SetDefault("database.port", 5432)
	viper.SetDefault("database.database", "chronology")
	viper.SetDefault("database.username", "postgres")
	viper.SetDefault("database.password", "")
	viper.SetDefault("database.ssl_mode", "disable")
	viper.SetDefault("database.max_open_conns", 25)
	viper.SetDefault("database.max_idle_conns", 5)
	viper.SetDefault("database.conn_max_lifetime", "5m")

	viper.SetDefault("ocr.workers", 4)
	viper.SetDefault("ocr.dpi", 200)
	viper.SetDefault("ocr.mode", "full")
	viper.SetDefault("ocr.timeout_seconds", 30)
	viper.SetDefault("ocr.total_timeout_seconds", 600)
	viper.SetDefault("ocr.fast_limit", 50)
	viper.SetDefault("ocr.sample_every", 5)
	viper.SetDefault("ocr.disabled", false)
	viper.SetDefault("ocr.debug_artifacts", false)

	viper.SetDefault("cache.redis_url", "redis://localhost:6379")
	viper.SetDefault("cache.default_ttl", "0s") // insert-only cache: no expiry by default
	viper.SetDefault("cache.max_retries", 3)
	viper.SetDefault("cache.pool_size", 10)
	viper.SetDefault("cache.pool_timeout", "4s")
	viper.SetDefault("cache.local_lru_size", 256)

	viper.SetDefault("logging.level", "info")
	viper.SetDefault("logging.format", "json")
	viper.SetDefault("logging.output", "stdout")

	viper.SetDefault("mcp.server_name", "chronology-core")
	viper.SetDefault("mcp.server_version", "0.1.0")
	viper.SetDefault("mcp.request_timeout", "5m")

	viper.SetDefault("run.max_pages", domain.DefaultRunConfig().MaxPages)
	viper.SetDefault("run.pt_mode", string(domain.DefaultRunConfig().PTMode))
	viper.SetDefault("run.gap_threshold_days", domain.DefaultRunConfig().GapThresholdDays)
	viper.SetDefault("run.event_confidence_min_export", domain.DefaultRunConfig().EventConfidenceMinExport)
	viper.SetDefault("run.low_confidence_event_behavior", string(domain.DefaultRunConfig().LowConfidenceEventBehavior))
	viper.SetDefault("run.include_billing_events_in_timeline", domain.DefaultRunConfig().IncludeBillingEventsInTimeline)
}

// GetConfig returns the complete configuration.
func (m *Manager) GetConfig() *domain.Config { return m.config }

// GetDatabaseConfig returns database configuration.
func (m *Manager) GetDatabaseConfig() *domain.DatabaseConfig { return &m.config.Database }

// GetServerConfig returns server configuration.
func (m *Manager) GetServerConfig() *domain.ServerConfig { return &m.config.Server }

// GetOCRConfig returns OCR environment-toggle configuration.
func (m *Manager) GetOCRConfig() *domain.OCRConfig { return &m.config.OCR }

// GetCacheConfig returns the OCR-cache Redis configuration.
func (m *Manager) GetCacheConfig() *domain.CacheConfig { return &m.config.Cache }

// Reload re-reads configuration from file/env.
func (m *Manager) Reload() error { return m.loadConfig() }

// Validate checks the loaded configuration for obviously invalid values.
func (m *Manager) Validate() error {
	cfg := m.config

	if cfg.Server.Port <= 0 || cfg.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", cfg.Server.Port)
	}
	if cfg.Database.Host == "" {
		return fmt.Errorf("database host is required")
	}
	if cfg.Database.Database == "" {
		return fmt.Errorf("database name is required")
	}
	if cfg.Cache.RedisURL == "" {
		return fmt.Errorf("redis URL is required")
	}
	if cfg.OCR.Workers <= 0 {
		return fmt.Errorf("ocr.workers must be positive, got %d", cfg.OCR.Workers)
	}
	switch cfg.OCR.Mode {
	case "full", "fast", "sample", "off":
	default:
		return fmt.Errorf("invalid ocr mode: %s", cfg.OCR.Mode)
	}
	switch cfg.Run.PTMode {
	case domain.PTModeAggregate, domain.PTModePerVisit:
	default:
		return fmt.Errorf("invalid pt_mode: %s", cfg.Run.PTMode)
	}
	switch cfg.Run.LowConfidenceEventBehavior {
	case domain.ExcludeFromExport, domain.IncludeWithFlag:
	default:
		return fmt.Errorf("invalid low_confidence_event_behavior: %s", cfg.Run.LowConfidenceEventBehavior)
	}

	validLogLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true, "fatal": true, "panic": true}
	if !validLogLevels[strings.ToLower(cfg.Logging.Level)] {
		return fmt.Errorf("invalid log level: %s", cfg.Logging.Level)
	}

	return nil
}

// GetDatabaseConnectionString returns a formatted database DSN.
func (m *Manager) GetDatabaseConnectionString() string {
	db := m.config.Database
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		db.Host, db.Port, db.Username, db.Password, db.Database, db.SSLMode)
}

// GetRedisConnectionString returns the OCR-cache Redis connection string.
func (m *Manager) GetRedisConnectionString() string { return m.config.Cache.RedisURL }

// IsProduction returns true if running in production mode.
func (m *Manager) IsProduction() bool {
	return strings.ToLower(viper.GetString("environment")) == "production"
}

// IsDevelopment returns true if running in development mode.
func (m *Manager) IsDevelopment() bool {
	env := strings.ToLower(viper.GetString("environment"))
	return env == "development" || env == "dev" || env == ""
}
