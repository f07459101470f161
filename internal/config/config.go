package config

import "time"

// Config is the complete application configuration. Values come from
// defaults registered by SetDefaults, then the config file, then
// SHOTLENS_* environment variables, then command-line flags.
type Config struct {
	API       APIConfig       `mapstructure:"api"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
	HTTP      HTTPConfig      `mapstructure:"http"`
	Store     StoreConfig     `mapstructure:"store"`
	Server    ServerConfig    `mapstructure:"server"`
	Logging   LoggingConfig   `mapstructure:"logging"`
	Metrics   MetricsConfig   `mapstructure:"metrics"`
	Output    OutputConfig    `mapstructure:"output"`
}

// APIConfig selects the remote API and the rejection policy.
type APIConfig struct {
	BaseURL string `mapstructure:"base_url"`

	// ThrowOnRateLimit turns rejected calls into errors instead of empty results.
	ThrowOnRateLimit bool `mapstructure:"throw_on_rate_limit"`
}

// RateLimitConfig configures the admission gate.
type RateLimitConfig struct {
	// Backend is "memory" (per process) or "redis" (shared window).
	Backend string        `mapstructure:"backend"`
	Quota   int           `mapstructure:"quota"`
	Window  time.Duration `mapstructure:"window"`
	Redis   RedisConfig   `mapstructure:"redis"`
}

// RedisConfig locates the shared counter store.
type RedisConfig struct {
	Addr      string `mapstructure:"addr"`
	DB        int    `mapstructure:"db"`
	Password  string `mapstructure:"password"`
	KeyPrefix string `mapstructure:"key_prefix"`
}

// HTTPConfig tunes the pooled outbound client.
type HTTPConfig struct {
	Timeout             time.Duration `mapstructure:"timeout"`
	MaxIdleConns        int           `mapstructure:"max_idle_conns"`
	MaxIdleConnsPerHost int           `mapstructure:"max_idle_conns_per_host"`
	IdleConnTimeout     time.Duration `mapstructure:"idle_conn_timeout"`
	UserAgent           string        `mapstructure:"user_agent"`
}

// StoreConfig contains database configuration for the libsql archive.
type StoreConfig struct {
	Driver    string `mapstructure:"driver"`
	Path      string `mapstructure:"path"`
	URL       string `mapstructure:"url"`
	AuthToken string `mapstructure:"auth_token"`
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	IdleTimeout     time.Duration `mapstructure:"idle_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	// Level controls the minimum log level
	// Valid values: trace, debug, info, warn, error
	Level string `mapstructure:"level"`

	Environment string `mapstructure:"environment"`
}

// MetricsConfig contains Prometheus metrics configuration
type MetricsConfig struct {
	Enabled bool `mapstructure:"enabled"`

	// Port is the dedicated exporter port; /metrics on the API proxies it.
	Port int `mapstructure:"port"`
}

// OutputConfig sets CLI rendering defaults.
type OutputConfig struct {
	Format string `mapstructure:"format"`
}
