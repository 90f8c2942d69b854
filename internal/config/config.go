package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"admission-gateway/internal/ratelimit"
)

type Config struct {
	Server   ServerConfig   `json:"server"`
	CORS     CORSConfig     `json:"cors"`
	Storage  StorageConfig  `json:"storage"`
	Redis    RedisConfig    `json:"redis"`
	Postgres PostgresConfig `json:"postgres"`
	Limiter  LimiterConfig  `json:"limiter"`
	Tiers    []TierConfig   `json:"tiers"`
	Override OverrideConfig `json:"override"`
	Admin    AdminConfig    `json:"admin"`
}

type ServerConfig struct {
	Port        string `json:"port"`
	Environment string `json:"environment"`
}

type CORSConfig struct {
	// AllowOrigin is echoed on every response; empty means "*".
	AllowOrigin string `json:"allow_origin"`
}

type StorageConfig struct {
	// Type selects the request-log backend: "redis" (shared across
	// processes) or "memory" (single process only).
	Type string `json:"type"`
}

type RedisConfig struct {
	Host     string `json:"host"`
	Port     string `json:"port"`
	Password string `json:"password"`
	DB       int    `json:"db"`
}

func (r RedisConfig) GetRedisAddr() string {
	return r.Host + ":" + r.Port
}

type PostgresConfig struct {
	// Enabled switches on the audit trail, request-log batching and
	// analytics. The gateway limits fine without it.
	Enabled       bool   `json:"enabled"`
	DSN           string `json:"dsn"`
	LogBufferSize int    `json:"log_buffer_size"`
}

type LimiterConfig struct {
	// Strategy is "standard" (independent store round trips, admission
	// may briefly overshoot under concurrency) or "atomic" (one
	// server-side script per check).
	Strategy  string `json:"strategy"`
	KeyPrefix string `json:"key_prefix"`
}

type TierConfig struct {
	Name        string `json:"name"`
	Prefix      string `json:"prefix"`
	WindowMS    int    `json:"window_ms"`
	MaxRequests int    `json:"max_requests"`
}

type OverrideConfig struct {
	// Backend is "memory" (flags local to this process) or "redis"
	// (flags shared through the same store as the request logs).
	Backend string `json:"backend"`
}

type AdminConfig struct {
	// JWTSecret enables authentication on the admin surface; empty
	// leaves it open. Set it through ADMIN_JWT_SECRET, not the file.
	JWTSecret        string  `json:"-"`
	TokenExpiryHours int     `json:"token_expiry_hours"`
	GuardRPS         float64 `json:"guard_rps"`
	GuardBurst       int     `json:"guard_burst"`
}

// Load reads the JSON config file, layers environment overrides on top and
// fills defaults. A missing file is fine; the defaults describe a working
// single-process gateway.
func Load(path string) (*Config, error) {
	var config Config

	file, err := os.ReadFile(path)
	if err == nil {
		if err := json.Unmarshal(file, &config); err != nil {
			return nil, fmt.Errorf("invalid config file %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, err
	}

	config.applyEnv()
	config.applyDefaults()

	if err := config.validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv("PORT"); v != "" {
		c.Server.Port = v
	}
	if v := os.Getenv("ENVIRONMENT"); v != "" {
		c.Server.Environment = v
	}
	if v := os.Getenv("REDIS_HOST"); v != "" {
		c.Redis.Host = v
	}
	if v := os.Getenv("REDIS_PORT"); v != "" {
		c.Redis.Port = v
	}
	if v := os.Getenv("REDIS_PASSWORD"); v != "" {
		c.Redis.Password = v
	}
	if v := os.Getenv("REDIS_DB"); v != "" {
		if db, err := strconv.Atoi(v); err == nil {
			c.Redis.DB = db
		}
	}
	if v := os.Getenv("POSTGRES_DSN"); v != "" {
		c.Postgres.DSN = v
		c.Postgres.Enabled = true
	}
	c.Admin.JWTSecret = os.Getenv("ADMIN_JWT_SECRET")
}

func (c *Config) applyDefaults() {
	if c.Server.Port == "" {
		c.Server.Port = "8080"
	}
	if c.Storage.Type == "" {
		c.Storage.Type = "redis"
	}
	if c.Redis.Host == "" {
		c.Redis.Host = "localhost"
	}
	if c.Redis.Port == "" {
		c.Redis.Port = "6379"
	}
	if c.Postgres.LogBufferSize <= 0 {
		c.Postgres.LogBufferSize = 1000
	}
	if c.Limiter.Strategy == "" {
		c.Limiter.Strategy = ratelimit.StrategyStandard
	}
	if c.Limiter.KeyPrefix == "" {
		c.Limiter.KeyPrefix = ratelimit.DefaultKeyPrefix
	}
	if c.Override.Backend == "" {
		c.Override.Backend = "memory"
	}
	if c.Admin.TokenExpiryHours <= 0 {
		c.Admin.TokenExpiryHours = 24
	}
	if c.Admin.GuardRPS <= 0 {
		c.Admin.GuardRPS = 5
	}
	if c.Admin.GuardBurst <= 0 {
		c.Admin.GuardBurst = 10
	}

	if len(c.Tiers) == 0 {
		c.Tiers = []TierConfig{
			{Name: "premium", Prefix: "premium-", WindowMS: 5000, MaxRequests: 10},
			{Name: "free", Prefix: "", WindowMS: 5000, MaxRequests: 5},
		}
		return
	}

	// Every identifier must land in some tier; append a base tier when
	// the file only lists prefixed ones.
	for _, tier := range c.Tiers {
		if tier.Prefix == "" {
			return
		}
	}
	c.Tiers = append(c.Tiers, TierConfig{Name: "free", Prefix: "", WindowMS: 5000, MaxRequests: 5})
}

func (c *Config) validate() error {
	switch c.Storage.Type {
	case "redis", "memory":
	default:
		return fmt.Errorf("unknown storage type %q: want redis or memory", c.Storage.Type)
	}

	switch c.Limiter.Strategy {
	case ratelimit.StrategyStandard, ratelimit.StrategyAtomic:
	default:
		return fmt.Errorf("unknown limiter strategy %q: want %s or %s",
			c.Limiter.Strategy, ratelimit.StrategyStandard, ratelimit.StrategyAtomic)
	}

	switch c.Override.Backend {
	case "memory", "redis":
	default:
		return fmt.Errorf("unknown override backend %q: want memory or redis", c.Override.Backend)
	}

	for _, tier := range c.Tiers {
		if tier.Name == "" {
			return fmt.Errorf("tier with prefix %q has no name", tier.Prefix)
		}
		if tier.WindowMS <= 0 || tier.MaxRequests <= 0 {
			return fmt.Errorf("tier %q: window_ms and max_requests must be positive", tier.Name)
		}
	}

	if c.Postgres.Enabled && c.Postgres.DSN == "" {
		return fmt.Errorf("postgres enabled but no DSN configured")
	}

	return nil
}
