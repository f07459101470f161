// Package config loads shotlens settings through viper and decodes them into
// typed structs.
package config

import (
	"fmt"
	"net/url"
	"path/filepath"
	"strings"
	"sync"
	"time"

	gfconfig "github.com/fulmenhq/gofulmen/config"
	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"
)

const (
	// AppName names the config and data directories.
	AppName = "shotlens"

	// EnvPrefix prefixes every environment override, e.g. SHOTLENS_RATE_LIMIT_QUOTA.
	EnvPrefix = "SHOTLENS"

	BackendMemory = "memory"
	BackendRedis  = "redis"
)

var (
	appConfig *Config
	configMu  sync.RWMutex
)

// Configure wires environment lookups and defaults into v.
func Configure(v *viper.Viper) {
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	SetDefaults(v)
}

// SetDefaults registers every known key so env overrides and AllSettings see it.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("api.base_url", "http://api.dribbble.com/")
	v.SetDefault("api.throw_on_rate_limit", true)

	v.SetDefault("rate_limit.backend", BackendMemory)
	v.SetDefault("rate_limit.quota", 60)
	v.SetDefault("rate_limit.window", "60s")
	v.SetDefault("rate_limit.redis.addr", "localhost:6379")
	v.SetDefault("rate_limit.redis.db", 0)
	v.SetDefault("rate_limit.redis.password", "")
	v.SetDefault("rate_limit.redis.key_prefix", "shotlens:quota")

	v.SetDefault("http.timeout", "10s")
	v.SetDefault("http.max_idle_conns", 100)
	v.SetDefault("http.max_idle_conns_per_host", 16)
	v.SetDefault("http.idle_conn_timeout", "90s")
	v.SetDefault("http.user_agent", AppName)

	v.SetDefault("store.driver", "libsql")
	v.SetDefault("store.path", DefaultStorePath())
	v.SetDefault("store.url", "")
	v.SetDefault("store.auth_token", "")

	v.SetDefault("server.host", "localhost")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "30s")
	v.SetDefault("server.idle_timeout", "120s")
	v.SetDefault("server.shutdown_timeout", "10s")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.environment", "production")

	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.port", 9090)

	v.SetDefault("output.format", "table")
}

// Load decodes v into a Config, validates it and makes it the current config.
func Load(v *viper.Viper) (*Config, error) {
	if v == nil {
		v = viper.GetViper()
	}

	cfg := &Config{}
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           cfg,
		WeaklyTypedInput: true,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create decoder: %w", err)
	}

	if err := decoder.Decode(v.AllSettings()); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	cfg.RateLimit.Backend = strings.ToLower(strings.TrimSpace(cfg.RateLimit.Backend))
	if strings.TrimSpace(cfg.Store.URL) == "" && strings.TrimSpace(cfg.Store.Path) == "" {
		cfg.Store.Path = DefaultStorePath()
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	setConfig(cfg)
	return cfg, nil
}

// Validate rejects settings the gate or transport cannot run with.
func (c *Config) Validate() error {
	if c.RateLimit.Quota < 1 {
		return fmt.Errorf("rate_limit.quota must be greater than zero, got %d", c.RateLimit.Quota)
	}
	if c.RateLimit.Window < time.Second || c.RateLimit.Window%time.Second != 0 {
		return fmt.Errorf("rate_limit.window must be a whole number of seconds, got %s", c.RateLimit.Window)
	}

	switch c.RateLimit.Backend {
	case BackendMemory:
	case BackendRedis:
		if strings.TrimSpace(c.RateLimit.Redis.Addr) == "" {
			return fmt.Errorf("rate_limit.redis.addr is required for the redis backend")
		}
	default:
		return fmt.Errorf("unknown rate_limit.backend %q (expected memory or redis)", c.RateLimit.Backend)
	}

	parsed, err := url.Parse(strings.TrimSpace(c.API.BaseURL))
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return fmt.Errorf("api.base_url %q is not an absolute URL", c.API.BaseURL)
	}

	if c.HTTP.Timeout < 0 {
		return fmt.Errorf("http.timeout cannot be negative")
	}
	return nil
}

// GetConfig returns the current application configuration (thread-safe)
func GetConfig() *Config {
	configMu.RLock()
	defer configMu.RUnlock()
	return appConfig
}

func setConfig(cfg *Config) {
	configMu.Lock()
	defer configMu.Unlock()
	appConfig = cfg
}

// DefaultConfigDir returns the XDG-compliant config directory.
func DefaultConfigDir() string {
	return gfconfig.GetAppConfigDir(AppName)
}

// DefaultConfigPath returns the XDG-compliant path to the user config file.
func DefaultConfigPath() string {
	configDir := DefaultConfigDir()
	if strings.TrimSpace(configDir) == "" {
		return ""
	}
	return filepath.Join(configDir, "config.yaml")
}

// DefaultDataDir returns the XDG-compliant data directory for the app.
func DefaultDataDir() string {
	return gfconfig.GetAppDataDir(AppName)
}

// DefaultStorePath returns the XDG-compliant path to the archive database.
func DefaultStorePath() string {
	dataDir := DefaultDataDir()
	if strings.TrimSpace(dataDir) == "" {
		return "./" + AppName + ".db"
	}
	return filepath.Join(dataDir, AppName+".db")
}
