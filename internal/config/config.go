// Package config loads the server configuration from a YAML file and
// RPG_-prefixed environment variables.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// ServerConfig holds listener settings
type ServerConfig struct {
	// GRPCPort serves the combat tools and dice services
	GRPCPort int `mapstructure:"grpc_port"`
	// HTTPPort serves the WebSocket channel
	HTTPPort int `mapstructure:"http_port"`
	// ShutdownTimeout bounds graceful shutdown
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// GRPCAddr returns the ":port" listen address for gRPC
func (s ServerConfig) GRPCAddr() string {
	return fmt.Sprintf(":%d", s.GRPCPort)
}

// HTTPAddr returns the ":port" listen address for HTTP
func (s ServerConfig) HTTPAddr() string {
	return fmt.Sprintf(":%d", s.HTTPPort)
}

// LoggingConfig holds structured logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: "debug", "info", "warn", "error".
	Level string `mapstructure:"level"`
	// Format is the log output format: "json" or "console".
	Format string `mapstructure:"format"`
}

// RedisConfig selects the Redis-backed campaign state and roll history.
// When disabled the server keeps state in memory.
type RedisConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Addr    string `mapstructure:"addr"`
	// StateTTL expires idle campaigns; zero keeps them
	StateTTL time.Duration `mapstructure:"state_ttl"`
}

// PostgresConfig selects the Postgres character ledger and narrative log
type PostgresConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	DSN      string `mapstructure:"dsn"`
	MaxConns int32  `mapstructure:"max_conns"`
}

// DiceConfig tunes roll windows
type DiceConfig struct {
	WindowTimeout time.Duration `mapstructure:"window_timeout"`
	// FallbackOnTimeout rolls on the server when a window expires
	FallbackOnTimeout bool `mapstructure:"fallback_on_timeout"`
}

// JobsConfig tunes background work
type JobsConfig struct {
	HighlightTimeout time.Duration `mapstructure:"highlight_timeout"`
}

// DnD5eConfig configures the spell catalog client
type DnD5eConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	BaseURL  string        `mapstructure:"base_url"`
	CacheTTL time.Duration `mapstructure:"cache_ttl"`
}

// Config is the top-level application configuration.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Logging  LoggingConfig  `mapstructure:"logging"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Postgres PostgresConfig `mapstructure:"postgres"`
	Dice     DiceConfig     `mapstructure:"dice"`
	Jobs     JobsConfig     `mapstructure:"jobs"`
	DnD5e    DnD5eConfig    `mapstructure:"dnd5e"`
}

// Validate checks all configuration invariants and reports every
// violation at once.
func (c Config) Validate() error {
	var errs []string

	for _, err := range []error{
		validateServer(c.Server),
		validateLogging(c.Logging),
		validateRedis(c.Redis),
		validatePostgres(c.Postgres),
		validateDice(c.Dice),
		validateJobs(c.Jobs),
		validateDnD5e(c.DnD5e),
	} {
		if err != nil {
			errs = append(errs, err.Error())
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

func validatePort(name string, port int) error {
	if port < 1 || port > 65535 {
		return fmt.Errorf("%s must be 1-65535, got %d", name, port)
	}
	return nil
}

func validateServer(s ServerConfig) error {
	var errs []string
	if err := validatePort("server.grpc_port", s.GRPCPort); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validatePort("server.http_port", s.HTTPPort); err != nil {
		errs = append(errs, err.Error())
	}
	if s.GRPCPort == s.HTTPPort {
		errs = append(errs, "server.grpc_port and server.http_port must differ")
	}
	if s.ShutdownTimeout <= 0 {
		errs = append(errs, "server.shutdown_timeout must be positive")
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

func validateLogging(l LoggingConfig) error {
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[l.Level] {
		return fmt.Errorf("logging.level must be one of [debug, info, warn, error], got %q", l.Level)
	}
	validFormats := map[string]bool{"json": true, "console": true}
	if !validFormats[l.Format] {
		return fmt.Errorf("logging.format must be one of [json, console], got %q", l.Format)
	}
	return nil
}

func validateRedis(r RedisConfig) error {
	if r.Enabled && r.Addr == "" {
		return errors.New("redis.addr must not be empty when redis is enabled")
	}
	if r.StateTTL < 0 {
		return errors.New("redis.state_ttl must not be negative")
	}
	return nil
}

func validatePostgres(p PostgresConfig) error {
	if p.Enabled && p.DSN == "" {
		return errors.New("postgres.dsn must not be empty when postgres is enabled")
	}
	if p.MaxConns < 0 {
		return fmt.Errorf("postgres.max_conns must be >= 0, got %d", p.MaxConns)
	}
	return nil
}

func validateDice(d DiceConfig) error {
	if d.WindowTimeout <= 0 {
		return errors.New("dice.window_timeout must be positive")
	}
	return nil
}

func validateJobs(j JobsConfig) error {
	if j.HighlightTimeout <= 0 {
		return errors.New("jobs.highlight_timeout must be positive")
	}
	return nil
}

func validateDnD5e(d DnD5eConfig) error {
	if d.Enabled && d.BaseURL == "" {
		return errors.New("dnd5e.base_url must not be empty when dnd5e is enabled")
	}
	if d.CacheTTL < 0 {
		return errors.New("dnd5e.cache_ttl must not be negative")
	}
	return nil
}

// Load reads configuration from the YAML file at path, applies environment
// variable overrides, and validates the result. An empty path loads
// defaults and environment only.
func Load(path string) (Config, error) {
	v := viper.New()

	// Environment variable overrides with RPG_ prefix
	v.SetEnvPrefix("RPG")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("reading config file: %w", err)
		}
	}

	return LoadFromViper(v)
}

// LoadFromViper builds a Config from an already-configured Viper instance.
func LoadFromViper(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshalling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.grpc_port", 50051)
	v.SetDefault("server.http_port", 8080)
	v.SetDefault("server.shutdown_timeout", "30s")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.state_ttl", "0s")

	v.SetDefault("postgres.enabled", false)
	v.SetDefault("postgres.dsn", "")
	v.SetDefault("postgres.max_conns", 10)

	v.SetDefault("dice.window_timeout", "90s")
	v.SetDefault("dice.fallback_on_timeout", true)

	v.SetDefault("jobs.highlight_timeout", "2m")

	v.SetDefault("dnd5e.enabled", false)
	v.SetDefault("dnd5e.base_url", "https://www.dnd5eapi.co/api/2014/")
	v.SetDefault("dnd5e.cache_ttl", "24h")
}
