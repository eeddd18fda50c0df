package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is the full gateway configuration.
type Config struct {
	Server    Server
	Backend   BackendConfig
	Session   SessionConfig
	Location  LocationConfig
	Redis     RedisConfig
	RateLimit RateLimitConfig
	Log       LogConfig
}

// Server captures HTTP server level configuration.
type Server struct {
	Addr            string
	RequestTimeout  time.Duration
	ShutdownTimeout time.Duration
}

// BackendConfig points the gateway at the ERP REST backend.
type BackendConfig struct {
	BaseURL          string
	Timeout          time.Duration
	FailureThreshold int
	Cooldown         time.Duration
}

// SessionConfig bounds how long a validated registration link stays usable.
type SessionConfig struct {
	Window       time.Duration
	TickInterval time.Duration
}

// LocationConfig controls memoization of location hierarchies.
type LocationConfig struct {
	CacheTTL time.Duration
}

// RedisConfig backs the TTL cache. An empty URL selects the in-memory store.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// RateLimitConfig bounds how many onboarding requests one client IP may make
// per window. Guessed tokens each cost a backend validation.
type RateLimitConfig struct {
	Enabled  bool
	Requests int
	Window   time.Duration
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level  string // debug, info, warn, error
	Format string // json, text
}

// DefaultSessionWindow is the lifetime of a validated registration token.
const DefaultSessionWindow = 10 * time.Minute

// Load reads configuration from an optional kayit.yaml and KAYIT_ environment
// variables. Environment variables win over the file, the file over defaults.
func Load() (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigName("kayit")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("/etc/kayit")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	v.SetEnvPrefix("KAYIT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := &Config{
		Server: Server{
			Addr:            v.GetString("addr"),
			RequestTimeout:  v.GetDuration("request_timeout"),
			ShutdownTimeout: v.GetDuration("shutdown_timeout"),
		},
		Backend: BackendConfig{
			BaseURL:          strings.TrimRight(v.GetString("backend.base_url"), "/"),
			Timeout:          v.GetDuration("backend.timeout"),
			FailureThreshold: v.GetInt("backend.failure_threshold"),
			Cooldown:         v.GetDuration("backend.cooldown"),
		},
		Session: SessionConfig{
			Window:       v.GetDuration("session.window"),
			TickInterval: v.GetDuration("session.tick_interval"),
		},
		Location: LocationConfig{
			CacheTTL: v.GetDuration("location.cache_ttl"),
		},
		Redis: RedisConfig{
			URL:          v.GetString("redis.url"),
			PoolSize:     v.GetInt("redis.pool_size"),
			MinIdleConns: v.GetInt("redis.min_idle_conns"),
			DialTimeout:  v.GetDuration("redis.dial_timeout"),
			ReadTimeout:  v.GetDuration("redis.read_timeout"),
			WriteTimeout: v.GetDuration("redis.write_timeout"),
		},
		RateLimit: RateLimitConfig{
			Enabled:  v.GetBool("ratelimit.enabled"),
			Requests: v.GetInt("ratelimit.requests"),
			Window:   v.GetDuration("ratelimit.window"),
		},
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("addr", ":8080")
	v.SetDefault("request_timeout", 30*time.Second)
	v.SetDefault("shutdown_timeout", 10*time.Second)

	v.SetDefault("backend.base_url", "")
	v.SetDefault("backend.timeout", 10*time.Second)
	v.SetDefault("backend.failure_threshold", 5)
	v.SetDefault("backend.cooldown", 5*time.Second)

	v.SetDefault("session.window", DefaultSessionWindow)
	v.SetDefault("session.tick_interval", time.Second)

	v.SetDefault("location.cache_ttl", 10*time.Minute)

	v.SetDefault("redis.url", "")
	v.SetDefault("redis.pool_size", 10)
	v.SetDefault("redis.min_idle_conns", 2)
	v.SetDefault("redis.dial_timeout", 5*time.Second)
	v.SetDefault("redis.read_timeout", 3*time.Second)
	v.SetDefault("redis.write_timeout", 3*time.Second)

	v.SetDefault("ratelimit.enabled", true)
	v.SetDefault("ratelimit.requests", 60)
	v.SetDefault("ratelimit.window", time.Minute)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
}

// Validate checks the settings the gateway cannot start without.
func (c *Config) Validate() error {
	if c.Backend.BaseURL == "" {
		return errors.New("backend.base_url is required (KAYIT_BACKEND_BASE_URL)")
	}
	u, err := url.Parse(c.Backend.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("backend.base_url %q is not an absolute URL", c.Backend.BaseURL)
	}
	if c.Session.Window <= 0 {
		return errors.New("session.window must be positive")
	}
	if c.Session.TickInterval <= 0 {
		return errors.New("session.tick_interval must be positive")
	}
	if c.Location.CacheTTL <= 0 {
		return errors.New("location.cache_ttl must be positive")
	}
	if c.RateLimit.Enabled && (c.RateLimit.Requests <= 0 || c.RateLimit.Window <= 0) {
		return errors.New("ratelimit.requests and ratelimit.window must be positive when enabled")
	}
	return nil
}
