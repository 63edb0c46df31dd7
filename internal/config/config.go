// Package config handles loading runtime configuration for the league service.
// Values come from, in order of precedence: real environment variables, a .env file in
// the working directory (development convenience), an optional .golfleague.yaml in the
// working or home directory, and finally the defaults below. The same binary runs in
// dev, staging and production with only the environment changed.
package config

import (
	"os"
	"strings"
	"time"

	// godotenv copies KEY=value pairs from .env into the process environment so viper's
	// AutomaticEnv picks them up like any other variable.
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all runtime configuration values for the application.
type Config struct {
	Port              string        // TCP port the HTTP server listens on, e.g. "8080"
	DatabaseURL       string        // PostgreSQL connection string
	JWTSecret         string        // HMAC secret used to verify bearer tokens
	Env               string        // "development", "staging" or "production"
	LogLevel          string        // logrus level name; empty picks a default for Env
	LogFormat         string        // "json" or "text"; empty picks a default for Env
	RedisURL          string        // Optional. When set, live results are relayed between instances through Redis.
	MigrationsPath    string        // Source URL for golang-migrate, e.g. "file://migrations"
	CourseCacheSize   int           // Number of courses whose holes are kept in memory
	CourseCacheTTL    time.Duration // How long a cached course is trusted before it is read again
	ReconcileSchedule string        // Cron spec for rescoring active leagues; "off" disables it
}

// defaults are applied for every key nothing else sets.
var defaults = map[string]any{
	"port":               "8080",
	"env":                "development",
	"migrations_path":    "file://migrations",
	"course_cache_size":  64,
	"course_cache_ttl":   "10m",
	"reconcile_schedule": "@every 1h",
}

// Load reads configuration and returns a populated Config.
// A missing .env or config file is fine: production sets real environment variables.
func Load() *Config {
	return FromViper(NewViper())
}

// NewViper returns a viper instance with the environment, .env, the config file and
// the defaults loaded. Callers may bind command-line flags on top before FromViper.
func NewViper() *viper.Viper {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigType("yaml")
	v.SetConfigName(".golfleague")
	v.AddConfigPath(".")
	if home, err := os.UserHomeDir(); err == nil {
		v.AddConfigPath(home)
	}
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	// AutomaticEnv only answers keys viper already knows about; bind the ones without
	// defaults so Unmarshal-style lookups still see them.
	for _, key := range []string{"database_url", "jwt_secret", "log_level", "log_format", "redis_url"} {
		_ = v.BindEnv(key)
	}

	_ = v.ReadInConfig()
	return v
}

// FromViper builds a Config from an already prepared viper instance. The CLI uses it
// after binding its flags.
func FromViper(v *viper.Viper) *Config {
	return &Config{
		Port:              v.GetString("port"),
		DatabaseURL:       v.GetString("database_url"),
		JWTSecret:         v.GetString("jwt_secret"),
		Env:               v.GetString("env"),
		LogLevel:          v.GetString("log_level"),
		LogFormat:         v.GetString("log_format"),
		RedisURL:          v.GetString("redis_url"),
		MigrationsPath:    v.GetString("migrations_path"),
		CourseCacheSize:   v.GetInt("course_cache_size"),
		CourseCacheTTL:    v.GetDuration("course_cache_ttl"),
		ReconcileSchedule: v.GetString("reconcile_schedule"),
	}
}

// ReconcileEnabled reports whether the background rescoring job should run.
func (c *Config) ReconcileEnabled() bool {
	return c.ReconcileSchedule != "" && c.ReconcileSchedule != "off"
}

// IsDevelopment reports whether the service runs in the development environment.
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}
