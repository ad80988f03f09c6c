// Package config loads the client configuration.
//
// Sources are applied in order, later ones winning:
//
//  1. Built-in defaults
//  2. A TOML file, ~/.config/unsplash-client/config.toml unless a path is
//     given; a missing file is not an error
//  3. A .env file, which only fills variables not already set
//  4. UNSPLASH_* environment variables
//
// Example config.toml:
//
//	[api]
//	base_url = "https://api.unsplash.com"
//	access_key = "..."
//	timeout = "30s"
//	page_size = 20
//	cache_policy = "use_protocol"
//
//	[redis]
//	addr = "localhost:6379"
//
//	[log]
//	level = "debug"
//	pretty = true
//
//	[server]
//	listen = "127.0.0.1:8080"
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Sternrassler/unsplash-client/pkg/logging"
	"github.com/Sternrassler/unsplash-client/pkg/network"
	"github.com/joeshaw/envdecode"
	"github.com/joho/godotenv"
	toml "github.com/pelletier/go-toml/v2"
)

const (
	defaultConfigPath = "~/.config/unsplash-client/config.toml"
	defaultBaseURL    = "https://api.unsplash.com"
	defaultTimeout    = "30s"
	defaultPageSize   = 20
	defaultListen     = "127.0.0.1:8080"

	// MaxPageSize is the largest per_page the API honors.
	MaxPageSize = 30
)

// Config is the complete client configuration.
type Config struct {
	API    APIConfig    `toml:"api"`
	Redis  RedisConfig  `toml:"redis"`
	Log    LogConfig    `toml:"log"`
	Server ServerConfig `toml:"server"`
}

// APIConfig configures the Unsplash API client.
type APIConfig struct {
	BaseURL     string `toml:"base_url" env:"UNSPLASH_BASE_URL"`
	AccessKey   string `toml:"access_key" env:"UNSPLASH_ACCESS_KEY"`
	TimeoutText string `toml:"timeout" env:"UNSPLASH_TIMEOUT"`
	PageSize    int    `toml:"page_size" env:"UNSPLASH_PAGE_SIZE"`
	CachePolicy string `toml:"cache_policy" env:"UNSPLASH_CACHE_POLICY"`

	// Timeout is TimeoutText parsed by Validate.
	Timeout time.Duration `toml:"-"`
}

// RedisConfig enables the Redis-backed cache and stores when Addr is set.
type RedisConfig struct {
	Addr     string `toml:"addr" env:"UNSPLASH_REDIS_ADDR"`
	Password string `toml:"password" env:"UNSPLASH_REDIS_PASSWORD"`
	DB       int    `toml:"db" env:"UNSPLASH_REDIS_DB"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `toml:"level" env:"UNSPLASH_LOG_LEVEL"`
	Pretty bool   `toml:"pretty" env:"UNSPLASH_LOG_PRETTY"`
}

// ServerConfig configures the serve command.
type ServerConfig struct {
	Listen string `toml:"listen" env:"UNSPLASH_LISTEN_ADDR"`
}

// Default returns the built-in configuration. It has no access key.
func Default() Config {
	return Config{
		API: APIConfig{
			BaseURL:     defaultBaseURL,
			TimeoutText: defaultTimeout,
			PageSize:    defaultPageSize,
			CachePolicy: network.ReloadIgnoringCache.String(),
		},
		Log:    LogConfig{Level: string(logging.LevelInfo)},
		Server: ServerConfig{Listen: defaultListen},
	}
}

// Load reads path and envFile on top of the defaults, applies environment
// overrides and validates the result. Empty paths select the defaults.
func Load(path, envFile string) (Config, error) {
	cfg := Default()

	resolved, err := resolvePath(path, defaultConfigPath)
	if err != nil {
		return Config{}, err
	}
	if err := readFile(resolved, &cfg); err != nil {
		return Config{}, err
	}

	if err := loadEnvFile(envFile); err != nil {
		return Config{}, err
	}

	if err := envdecode.Decode(&cfg); err != nil && !errors.Is(err, envdecode.ErrNoTargetFieldsAreSet) {
		return Config{}, fmt.Errorf("decode environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func readFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read config: %w", err)
	}
	if err := toml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config: %w", err)
	}
	return nil
}

func loadEnvFile(path string) error {
	if strings.TrimSpace(path) == "" {
		path = ".env"
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

// Validate normalizes cfg and reports the first invalid field.
func (c *Config) Validate() error {
	c.API.BaseURL = strings.TrimRight(strings.TrimSpace(c.API.BaseURL), "/")
	c.API.AccessKey = strings.TrimSpace(c.API.AccessKey)

	base, err := url.Parse(c.API.BaseURL)
	if err != nil || base.Scheme == "" || base.Host == "" {
		return fmt.Errorf("api.base_url %q is not an absolute URL", c.API.BaseURL)
	}

	if c.API.AccessKey == "" {
		return fmt.Errorf("api.access_key is required (or set UNSPLASH_ACCESS_KEY)")
	}

	timeout, err := time.ParseDuration(strings.TrimSpace(c.API.TimeoutText))
	if err != nil {
		return fmt.Errorf("api.timeout: %w", err)
	}
	if timeout < 0 {
		return fmt.Errorf("api.timeout must be >= 0 (got %s)", timeout)
	}
	c.API.Timeout = timeout

	if c.API.PageSize < 1 || c.API.PageSize > MaxPageSize {
		return fmt.Errorf("api.page_size must be between 1 and %d (got %d)", MaxPageSize, c.API.PageSize)
	}

	if _, err := network.ParseCachePolicy(c.API.CachePolicy); err != nil {
		return fmt.Errorf("api.cache_policy: %w", err)
	}

	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("log.level: %w", err)
	}

	if strings.TrimSpace(c.Server.Listen) == "" {
		c.Server.Listen = defaultListen
	}
	return nil
}

// Policy returns the configured cache policy. Call after Validate.
func (a APIConfig) Policy() network.CachePolicy {
	p, _ := network.ParseCachePolicy(a.CachePolicy)
	return p
}

// Logging returns the logging configuration.
func (l LogConfig) Logging() logging.Config {
	level, _ := logging.ParseLevel(l.Level)
	cfg := logging.DefaultConfig()
	cfg.Level = level
	cfg.Pretty = l.Pretty
	return cfg
}

func resolvePath(path, fallback string) (string, error) {
	if strings.TrimSpace(path) == "" {
		path = fallback
	}
	return expandPath(path)
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", fmt.Errorf("path is empty")
	}
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Abs(trimmed)
}
