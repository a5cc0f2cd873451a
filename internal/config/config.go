// Package config provides application configuration loading and validation.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"github.com/ulule/limiter/v3"
)

// Config holds the complete application configuration.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Metals   MetalsConfig
	Engine   EngineConfig
	Worker   WorkerConfig
	Cache    CacheConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port          int  `mapstructure:"port"`
	ServeSwagger  bool `mapstructure:"serve_swagger"`
	ServeAsynqmon bool `mapstructure:"serve_asynqmon"`
	// RefreshRateLimit caps refresh requests per client IP, in limiter
	// format ("30-M"). Empty disables the limit.
	RefreshRateLimit string `mapstructure:"refresh_rate_limit"`
}

// DatabaseConfig holds PostgreSQL connection settings.
type DatabaseConfig struct {
	Host               string `mapstructure:"host"`
	Port               int    `mapstructure:"port"`
	User               string `mapstructure:"user"`
	Password           string `mapstructure:"password"`
	Name               string `mapstructure:"name"`
	SSLMode            string `mapstructure:"sslmode"`
	MaxOpenConns       int    `mapstructure:"max_open_conns"`
	MaxIdleConns       int    `mapstructure:"max_idle_conns"`
	ConnMaxLifetimeSec int    `mapstructure:"conn_max_lifetime_sec"`
	DSN                string
}

// RedisConfig holds connection settings for both Redis instances.
type RedisConfig struct {
	AsynqAddr string `mapstructure:"asynq_addr"` // Redis instance for the refresh task queue.
	CacheAddr string `mapstructure:"cache_addr"` // Redis instance for snapshot and provider caches.
}

// MetalsConfig holds settings for the metals rate provider.
type MetalsConfig struct {
	BaseURL     string   `mapstructure:"base_url"`
	APIKey      string   `mapstructure:"api_key"` // Used only until a key is stored in preferences.
	Timeout     int      `mapstructure:"timeout_sec"`
	Symbols     []string `mapstructure:"symbols"`
	DefaultBase string   `mapstructure:"default_base"`
	UseMock     bool     `mapstructure:"use_mock"`
}

// EngineConfig holds unit conversion settings.
type EngineConfig struct {
	GramsPerTroyOunce float64 `mapstructure:"grams_per_troy_ounce"`
}

// WorkerConfig holds background worker and task queue settings.
type WorkerConfig struct {
	Concurrency      int `mapstructure:"concurrency"`
	TimeoutSec       int `mapstructure:"timeout_sec"`
	CheckIntervalSec int `mapstructure:"check_interval_sec"`
}

// CacheConfig holds caching settings.
type CacheConfig struct {
	CurrentSnapshotTTLSec int `mapstructure:"current_snapshot_ttl_sec"`
	ProviderTTLSec        int `mapstructure:"provider_ttl_sec"`
}

// LoadConfig reads configuration from config files, environment variables, and defaults.
func LoadConfig() (*Config, error) {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		fmt.Printf("No .env file found or error loading it: %v\n", err)
	}

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("./internal/config")

	v.SetEnvPrefix("METALSVC")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	SetDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		// It's okay if no config file, we have defaults and env
		fmt.Printf("Config file not found: %v\n", err)
	}

	return FromViper(v)
}

// SetDefaults registers the default value of every key.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.serve_swagger", true)
	v.SetDefault("server.serve_asynqmon", true)
	v.SetDefault("server.refresh_rate_limit", "30-M")
	v.SetDefault("database.host", "db")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.password", "postgres")
	v.SetDefault("database.name", "metalsdb")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_open_conns", 10)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.conn_max_lifetime_sec", 300)
	v.SetDefault("redis.asynq_addr", "redis_asynq:6380")
	v.SetDefault("redis.cache_addr", "redis_cache:6381")
	v.SetDefault("metals.base_url", "https://metals-api.com/api")
	v.SetDefault("metals.api_key", "")
	v.SetDefault("metals.timeout_sec", 10)
	v.SetDefault("metals.symbols", []string{
		"XAU", "XAG", "USD", "INR", "EUR", "GBP", "AED", "AUD", "CAD", "JPY", "CNY", "SGD", "CHF",
	})
	v.SetDefault("metals.default_base", "USD")
	v.SetDefault("metals.use_mock", false)
	v.SetDefault("engine.grams_per_troy_ounce", 31.1034768)
	v.SetDefault("worker.concurrency", 1)
	v.SetDefault("worker.timeout_sec", 30)
	v.SetDefault("worker.check_interval_sec", 5)
	v.SetDefault("cache.current_snapshot_ttl_sec", 3600)
	v.SetDefault("cache.provider_ttl_sec", 60)
}

// FromViper unmarshals, validates and completes a Config.
func FromViper(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	// Env values for list keys arrive as one comma separated string.
	cfg.Metals.Symbols = splitList(cfg.Metals.Symbols)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	if cfg.Database.MaxOpenConns <= 0 {
		cfg.Database.MaxOpenConns = 10
	}
	if cfg.Database.MaxIdleConns <= 0 {
		cfg.Database.MaxIdleConns = 5
	}
	if cfg.Database.ConnMaxLifetimeSec <= 0 {
		cfg.Database.ConnMaxLifetimeSec = 300
	}

	cfg.Database.DSN = fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		cfg.Database.User, cfg.Database.Password,
		cfg.Database.Host, cfg.Database.Port,
		cfg.Database.Name, cfg.Database.SSLMode)

	return &cfg, nil
}

func splitList(items []string) []string {
	var out []string
	for _, item := range items {
		for _, part := range strings.Split(item, ",") {
			if p := strings.TrimSpace(part); p != "" {
				out = append(out, p)
			}
		}
	}
	return out
}

// Validate checks that all required configuration fields are set and valid.
func (c *Config) Validate() error {
	var errs []error
	if c.Server.Port <= 0 {
		errs = append(errs, fmt.Errorf("server.port must be positive, got %d", c.Server.Port))
	}
	if c.Server.RefreshRateLimit != "" {
		if _, err := limiter.NewRateFromFormatted(c.Server.RefreshRateLimit); err != nil {
			errs = append(errs, fmt.Errorf("server.refresh_rate_limit: %w", err))
		}
	}

	if c.Database.Host == "" {
		errs = append(errs, fmt.Errorf("database.host is required"))
	}
	if c.Database.Port <= 0 {
		errs = append(errs, fmt.Errorf("database.port must be positive, got %d", c.Database.Port))
	}
	if c.Database.User == "" {
		errs = append(errs, fmt.Errorf("database.user is required"))
	}
	if c.Database.Name == "" {
		errs = append(errs, fmt.Errorf("database.name is required"))
	}

	if c.Redis.AsynqAddr == "" {
		errs = append(errs, fmt.Errorf("redis.asynq_addr is required (set METALSVC_REDIS_ASYNQ_ADDR)"))
	}
	if c.Redis.CacheAddr == "" {
		errs = append(errs, fmt.Errorf("redis.cache_addr is required (set METALSVC_REDIS_CACHE_ADDR)"))
	}

	if c.Metals.BaseURL == "" && !c.Metals.UseMock {
		errs = append(errs, fmt.Errorf("metals.base_url is required unless metals.use_mock is set"))
	}
	if c.Metals.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("metals.timeout_sec must be positive, got %d", c.Metals.Timeout))
	}
	if c.Metals.DefaultBase == "" {
		errs = append(errs, fmt.Errorf("metals.default_base is required"))
	}

	if c.Engine.GramsPerTroyOunce <= 0 {
		errs = append(errs, fmt.Errorf("engine.grams_per_troy_ounce must be positive, got %v", c.Engine.GramsPerTroyOunce))
	}

	if c.Worker.Concurrency <= 0 {
		errs = append(errs, fmt.Errorf("worker.concurrency must be positive, got %d", c.Worker.Concurrency))
	}
	if c.Worker.TimeoutSec <= 0 {
		errs = append(errs, fmt.Errorf("worker.timeout_sec must be positive, got %d", c.Worker.TimeoutSec))
	}
	if c.Worker.CheckIntervalSec <= 0 {
		errs = append(errs, fmt.Errorf("worker.check_interval_sec must be positive, got %d", c.Worker.CheckIntervalSec))
	}

	if c.Cache.CurrentSnapshotTTLSec <= 0 {
		errs = append(errs, fmt.Errorf("cache.current_snapshot_ttl_sec must be positive, got %d", c.Cache.CurrentSnapshotTTLSec))
	}
	if c.Cache.ProviderTTLSec < 0 {
		errs = append(errs, fmt.Errorf("cache.provider_ttl_sec must be non-negative, got %d", c.Cache.ProviderTTLSec))
	}

	return errors.Join(errs...)
}
