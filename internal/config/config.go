// Package config provides guidepost configuration.
//
// Values are resolved in order: built-in defaults, an optional YAML file,
// then GUIDEPOST_* environment variables. Command-line flags are applied by the
// caller on top of the result.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// EnvPrefix namespaces every environment variable read by Load.
const EnvPrefix = "GUIDEPOST_"

// DefaultFile is the config file looked up in the project directory.
const DefaultFile = "guidepost.yaml"

// Store kinds.
const (
	StoreMemory = "memory"
	StoreFile   = "file"
	StoreRedis  = "redis"
)

// Config holds all guidepost configuration.
type Config struct {
	Port         string      `yaml:"port" env:"PORT"`
	ToursDir     string      `yaml:"tours_dir" env:"TOURS_DIR"`
	Store        string      `yaml:"store" env:"STORE"`
	SessionsDir  string      `yaml:"sessions_dir" env:"SESSIONS_DIR"`
	LogLevel     string      `yaml:"log_level" env:"LOG_LEVEL"`
	LogFormat    string      `yaml:"log_format" env:"LOG_FORMAT"`
	MaxInputSize int         `yaml:"max_input_size" env:"MAX_INPUT_SIZE"`
	Redis        RedisConfig `yaml:"redis" envPrefix:"REDIS_"`
}

// RedisConfig configures the Redis session store and locker.
type RedisConfig struct {
	Addr     string        `yaml:"addr" env:"ADDR"`
	Password string        `yaml:"password" env:"PASSWORD"`
	DB       int           `yaml:"db" env:"DB"`
	Prefix   string        `yaml:"prefix" env:"PREFIX"`
	TTL      time.Duration `yaml:"ttl" env:"TTL"`
	Locking  bool          `yaml:"locking" env:"LOCKING"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Port:         "8080",
		Store:        StoreMemory,
		SessionsDir:  filepath.Join(".guidepost", "sessions"),
		LogLevel:     "info",
		LogFormat:    "json",
		MaxInputSize: 4096,
		Redis: RedisConfig{
			Addr:   "localhost:6379",
			Prefix: "guidepost:session:",
			TTL:    24 * time.Hour,
		},
	}
}

// LoadDotEnv loads a .env file from dir if present. A missing file is not an error.
func LoadDotEnv(dir string) error {
	path := filepath.Join(dir, ".env")
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

// Load resolves the configuration for a project directory.
// path may be empty, in which case <dir>/guidepost.yaml is used when it exists.
func Load(dir, path string) (*Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = filepath.Join(dir, DefaultFile)
	}
	if err := cfg.loadFile(path, explicit); err != nil {
		return nil, err
	}

	// Unset variables leave the file and default values in place.
	if err := env.ParseWithOptions(cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	if cfg.SessionsDir != "" && !filepath.IsAbs(cfg.SessionsDir) {
		cfg.SessionsDir = filepath.Join(dir, cfg.SessionsDir)
	}
	if cfg.ToursDir != "" && !filepath.IsAbs(cfg.ToursDir) {
		cfg.ToursDir = filepath.Join(dir, cfg.ToursDir)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func (c *Config) loadFile(path string, required bool) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && !required {
			return nil
		}
		return fmt.Errorf("failed to read config: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse %s: %w", filepath.Base(path), err)
	}
	return nil
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	if c.Port == "" {
		return fmt.Errorf("port cannot be empty")
	}
	switch c.Store {
	case StoreMemory:
	case StoreFile:
		if c.SessionsDir == "" {
			return fmt.Errorf("sessions_dir is required for the file store")
		}
	case StoreRedis:
		if c.Redis.Addr == "" {
			return fmt.Errorf("redis.addr is required for the redis store")
		}
	default:
		return fmt.Errorf("unknown store %q (want memory, file or redis)", c.Store)
	}
	if c.MaxInputSize <= 0 {
		return fmt.Errorf("max_input_size must be > 0")
	}
	if c.Redis.TTL < 0 {
		return fmt.Errorf("redis.ttl cannot be negative")
	}
	return nil
}
