// SPDX-FileCopyrightText: 2026 Bonial International GmbH
// SPDX-License-Identifier: Apache-2.0

// Package config loads settings from an optional YAML file, VENDOR_RISK_*
// environment variables and command-line flags, in increasing precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment variable, e.g.
// VENDOR_RISK_SERVER_ADDR for server.addr.
const EnvPrefix = "VENDOR_RISK"

// Config is the complete application configuration.
type Config struct {
	Log       LogConfig       `mapstructure:"log"`
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Auth      AuthConfig      `mapstructure:"auth"`
	RateLimit RateLimitConfig `mapstructure:"ratelimit"`
	Client    ClientConfig    `mapstructure:"client"`
	OSV       OSVConfig       `mapstructure:"osv"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type ServerConfig struct {
	Addr            string        `mapstructure:"addr"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	CORSOrigins     []string      `mapstructure:"cors_origins"`
	MaxUploadBytes  int64         `mapstructure:"max_upload_bytes"`
}

type DatabaseConfig struct {
	Driver string `mapstructure:"driver"`
	DSN    string `mapstructure:"dsn"`
	Debug  bool   `mapstructure:"debug"`
}

type AuthConfig struct {
	JWTSecret string        `mapstructure:"jwt_secret"`
	Issuer    string        `mapstructure:"issuer"`
	TokenTTL  time.Duration `mapstructure:"token_ttl"`
}

// RateLimitConfig limits the public contact form per client IP.
type RateLimitConfig struct {
	ContactLimit  int           `mapstructure:"contact_limit"`
	ContactWindow time.Duration `mapstructure:"contact_window"`
}

type ClientConfig struct {
	BaseURL     string        `mapstructure:"base_url"`
	Timeout     time.Duration `mapstructure:"timeout"`
	MaxRetries  int           `mapstructure:"max_retries"`
	SessionFile string        `mapstructure:"session_file"`
}

// OSVConfig controls real vulnerability lookups for SPDX packages.
type OSVConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	URL      string        `mapstructure:"url"`
	CacheDir string        `mapstructure:"cache_dir"`
	CacheTTL time.Duration `mapstructure:"cache_ttl"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

var defaults = map[string]any{
	"log.level":  "info",
	"log.format": "text",

	"server.addr":             ":8080",
	"server.read_timeout":     15 * time.Second,
	"server.write_timeout":    30 * time.Second,
	"server.shutdown_timeout": 30 * time.Second,
	"server.cors_origins":     []string{"*"},
	"server.max_upload_bytes": int64(10 << 20),

	"database.driver": "sqlite",
	"database.dsn":    "vendor-risk.db",
	"database.debug":  false,

	"auth.jwt_secret": "",
	"auth.issuer":     "vendor-risk",
	"auth.token_ttl":  24 * time.Hour,

	"ratelimit.contact_limit":  5,
	"ratelimit.contact_window": time.Minute,

	"client.base_url":     "http://localhost:8080",
	"client.timeout":      10 * time.Second,
	"client.max_retries":  3,
	"client.session_file": "",

	"osv.enabled":   false,
	"osv.url":       "https://api.osv.dev/v1/query",
	"osv.cache_dir": "",
	"osv.cache_ttl": 24 * time.Hour,
	"osv.timeout":   10 * time.Second,
}

// Options tells Load where to look.
type Options struct {
	// File is an explicit config file. When empty, config.yaml is looked
	// up in the user config dir and the working directory.
	File string
	// Flags are bound by name to config keys via FlagKeys.
	Flags    *pflag.FlagSet
	FlagKeys map[string]string
}

// Load builds a Config.
func Load(opts Options) (*Config, error) {
	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if opts.Flags != nil {
		for key, name := range opts.FlagKeys {
			f := opts.Flags.Lookup(name)
			if f == nil {
				return nil, fmt.Errorf("binding %s: no flag named %q", key, name)
			}
			if err := v.BindPFlag(key, f); err != nil {
				return nil, fmt.Errorf("binding %s: %w", key, err)
			}
		}
	}

	if opts.File != "" {
		v.SetConfigFile(opts.File)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config %s: %w", opts.File, err)
		}
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		if dir, err := os.UserConfigDir(); err == nil {
			v.AddConfigPath(filepath.Join(dir, "vendor-risk"))
		}
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("reading config: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks values that would otherwise fail late.
func (c *Config) Validate() error {
	var errs []error
	switch c.Database.Driver {
	case "sqlite", "postgres":
	default:
		errs = append(errs, fmt.Errorf("database.driver: unsupported %q (sqlite or postgres)", c.Database.Driver))
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("log.format: unsupported %q (text or json)", c.Log.Format))
	}
	if c.Server.MaxUploadBytes <= 0 {
		errs = append(errs, errors.New("server.max_upload_bytes must be positive"))
	}
	if c.RateLimit.ContactLimit <= 0 || c.RateLimit.ContactWindow <= 0 {
		errs = append(errs, errors.New("ratelimit.contact_limit and ratelimit.contact_window must be positive"))
	}
	if c.Client.MaxRetries < 0 {
		errs = append(errs, errors.New("client.max_retries must not be negative"))
	}
	return errors.Join(errs...)
}

// CacheDir returns the OSV cache directory, defaulting to the user cache
// dir, or $XDG_DATA_HOME when the cache dir cannot be determined.
func (c *Config) CacheDir() (string, error) {
	if c.OSV.CacheDir != "" {
		return c.OSV.CacheDir, nil
	}
	if dir, err := os.UserCacheDir(); err == nil {
		return filepath.Join(dir, "vendor-risk"), nil
	}
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, "vendor-risk"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("determining home directory: %w", err)
	}
	return filepath.Join(home, ".cache", "vendor-risk"), nil
}
