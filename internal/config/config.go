package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

// Backend names accepted by STORAGE_TYPE and SESSION_STORE
const (
	BackendMemory   = "memory"
	BackendPostgres = "postgres"
	BackendRedis    = "redis"
)

// Config is the server configuration read from the environment
type Config struct {
	Host            string
	Port            int
	LogLevel        slog.Level
	ShutdownTimeout time.Duration

	StorageType    string
	DatabaseURL    string
	DBMaxOpenConns int
	DBMaxIdleConns int

	SessionStore         string
	RedisURL             string
	SessionTTL           time.Duration
	SessionSweepInterval time.Duration
	CookieSecure         bool
}

// Default returns the configuration used when no variables are set
func Default() Config {
	return Config{
		Host:                 "",
		Port:                 8080,
		LogLevel:             slog.LevelInfo,
		ShutdownTimeout:      30 * time.Second,
		StorageType:          BackendMemory,
		DBMaxOpenConns:       25,
		DBMaxIdleConns:       5,
		SessionStore:         BackendMemory,
		SessionTTL:           7 * 24 * time.Hour,
		SessionSweepInterval: time.Hour,
	}
}

// Load reads the configuration from the process environment
func Load() (Config, error) {
	return LoadFrom(os.Getenv)
}

// LoadFrom reads the configuration through getenv
func LoadFrom(getenv func(string) string) (Config, error) {
	cfg := Default()
	p := parser{getenv: getenv}

	cfg.Host = p.stringVar("HOST", cfg.Host)
	cfg.Port = p.intVar("PORT", cfg.Port)
	cfg.LogLevel = p.levelVar("LOG_LEVEL", cfg.LogLevel)
	cfg.ShutdownTimeout = p.durationVar("SHUTDOWN_TIMEOUT", cfg.ShutdownTimeout)

	cfg.StorageType = strings.ToLower(p.stringVar("STORAGE_TYPE", cfg.StorageType))
	cfg.DatabaseURL = p.stringVar("DATABASE_URL", cfg.DatabaseURL)
	cfg.DBMaxOpenConns = p.intVar("DB_MAX_OPEN_CONNS", cfg.DBMaxOpenConns)
	cfg.DBMaxIdleConns = p.intVar("DB_MAX_IDLE_CONNS", cfg.DBMaxIdleConns)

	cfg.SessionStore = strings.ToLower(p.stringVar("SESSION_STORE", cfg.SessionStore))
	cfg.RedisURL = p.stringVar("REDIS_URL", cfg.RedisURL)
	cfg.SessionTTL = p.durationVar("SESSION_TTL", cfg.SessionTTL)
	cfg.SessionSweepInterval = p.durationVar("SESSION_SWEEP_INTERVAL", cfg.SessionSweepInterval)
	cfg.CookieSecure = p.boolVar("COOKIE_SECURE", cfg.CookieSecure)

	if len(p.errs) > 0 {
		return Config{}, errors.Join(p.errs...)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks that the selected backends have what they need
func (c Config) Validate() error {
	var errs []error

	switch c.StorageType {
	case BackendMemory:
	case BackendPostgres:
		if c.DatabaseURL == "" {
			errs = append(errs, errors.New("DATABASE_URL required when STORAGE_TYPE=postgres"))
		}
	default:
		errs = append(errs, fmt.Errorf("invalid STORAGE_TYPE %q: must be memory or postgres", c.StorageType))
	}

	switch c.SessionStore {
	case BackendMemory:
	case BackendRedis:
		if c.RedisURL == "" {
			errs = append(errs, errors.New("REDIS_URL required when SESSION_STORE=redis"))
		}
	case BackendPostgres:
		if c.DatabaseURL == "" {
			errs = append(errs, errors.New("DATABASE_URL required when SESSION_STORE=postgres"))
		}
	default:
		errs = append(errs, fmt.Errorf("invalid SESSION_STORE %q: must be memory, redis or postgres", c.SessionStore))
	}

	if c.Port <= 0 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("invalid PORT %d", c.Port))
	}
	if c.SessionTTL <= 0 {
		errs = append(errs, errors.New("SESSION_TTL must be positive"))
	}

	return errors.Join(errs...)
}

// Addr is the listen address
func (c Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// parser collects every malformed variable instead of stopping at the first
type parser struct {
	getenv func(string) string
	errs   []error
}

func (p *parser) stringVar(key, def string) string {
	if v := strings.TrimSpace(p.getenv(key)); v != "" {
		return v
	}
	return def
}

func (p *parser) intVar(key string, def int) int {
	v := strings.TrimSpace(p.getenv(key))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		p.errs = append(p.errs, fmt.Errorf("invalid %s %q: %w", key, v, err))
		return def
	}
	return n
}

func (p *parser) boolVar(key string, def bool) bool {
	v := strings.TrimSpace(p.getenv(key))
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		p.errs = append(p.errs, fmt.Errorf("invalid %s %q: %w", key, v, err))
		return def
	}
	return b
}

func (p *parser) durationVar(key string, def time.Duration) time.Duration {
	v := strings.TrimSpace(p.getenv(key))
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		p.errs = append(p.errs, fmt.Errorf("invalid %s %q: %w", key, v, err))
		return def
	}
	return d
}

func (p *parser) levelVar(key string, def slog.Level) slog.Level {
	v := strings.TrimSpace(p.getenv(key))
	if v == "" {
		return def
	}
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(v)); err != nil {
		p.errs = append(p.errs, fmt.Errorf("invalid %s %q: %w", key, v, err))
		return def
	}
	return lvl
}
