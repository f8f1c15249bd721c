package factory

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/mcoot/robogamehub/internal/api/handler"
	"github.com/mcoot/robogamehub/internal/config"
	"github.com/mcoot/robogamehub/internal/dependencies/clock"
	"github.com/mcoot/robogamehub/internal/dependencies/random"
	"github.com/mcoot/robogamehub/internal/services/auth"
	"github.com/mcoot/robogamehub/internal/services/profile"
	"github.com/mcoot/robogamehub/internal/storage"
	"github.com/mcoot/robogamehub/internal/storage/memory"
	"github.com/mcoot/robogamehub/internal/storage/postgres"
	redisstorage "github.com/mcoot/robogamehub/internal/storage/redis"
)

// Storage type constants
const (
	StorageTypeMemory   = config.BackendMemory
	StorageTypePostgres = config.BackendPostgres
	StorageTypeRedis    = config.BackendRedis
)

// App contains all wired application components
type App struct {
	// Storage
	Storage  storage.Storage
	Sessions storage.SessionStore

	// External dependencies
	Clock  clock.Clock
	Random random.Random
	Logger *slog.Logger

	// Services
	AuthService    *auth.Service
	ProfileService *profile.Service

	// HealthChecks are pinged by GET /api/health
	HealthChecks []handler.Pinger

	closers []io.Closer
}

// Config holds configuration for the application factory
type Config struct {
	// AuthConfig holds configuration for the auth service (optional)
	// If zero value, defaults to auth.DefaultConfig()
	AuthConfig auth.Config
	// Logger is the application logger (optional)
	// If nil, a no-op logger is used
	Logger *slog.Logger
	// StorageType selects the data backend ("memory" or "postgres")
	// If empty, defaults to "memory"
	StorageType string
	// SessionStoreType selects the session backend ("memory", "redis" or "postgres")
	// If empty, defaults to "memory"
	SessionStoreType string
	// PostgresConfig is required if either backend is "postgres"
	PostgresConfig *postgres.Config
	// RedisConfig is required if SessionStoreType is "redis"
	RedisConfig *redisstorage.Config
}

// ConfigFromEnv translates the environment configuration into factory settings
func ConfigFromEnv(env config.Config, logger *slog.Logger) Config {
	cfg := Config{
		AuthConfig: auth.Config{SessionDuration: env.SessionTTL},
		Logger:     logger,

		StorageType:      env.StorageType,
		SessionStoreType: env.SessionStore,
	}

	if env.DatabaseURL != "" {
		pg := postgres.DefaultConfig()
		pg.DSN = env.DatabaseURL
		pg.MaxOpenConns = env.DBMaxOpenConns
		pg.MaxIdleConns = env.DBMaxIdleConns
		cfg.PostgresConfig = &pg
	}
	if env.RedisURL != "" {
		rc := redisstorage.DefaultConfig()
		rc.URL = env.RedisURL
		cfg.RedisConfig = &rc
	}
	return cfg
}

// New creates a new application with all dependencies wired
func New(cfg Config) (*App, error) {
	// Use no-op logger if not provided
	logger := cfg.Logger
	if logger == nil {
		logger = nopLogger()
	}

	clk := clock.New()

	var (
		closers []io.Closer
		checks  []handler.Pinger
		pg      *postgres.Storage
	)
	fail := func(err error) (*App, error) {
		for i := len(closers) - 1; i >= 0; i-- {
			_ = closers[i].Close()
		}
		return nil, err
	}
	openPostgres := func() (*postgres.Storage, error) {
		if pg != nil {
			return pg, nil
		}
		if cfg.PostgresConfig == nil {
			return nil, errors.New("PostgresConfig required for postgres backend")
		}
		s, err := postgres.New(*cfg.PostgresConfig)
		if err != nil {
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		pg = s
		closers = append(closers, s)
		checks = append(checks, s)
		return s, nil
	}

	// Create storage based on type
	var store storage.Storage
	switch orDefault(cfg.StorageType, StorageTypeMemory) {
	case StorageTypeMemory:
		mem := memory.New()
		store = mem
		checks = append(checks, mem)
	case StorageTypePostgres:
		s, err := openPostgres()
		if err != nil {
			return fail(err)
		}
		store = s
	default:
		return fail(errors.New("invalid StorageType: must be 'memory' or 'postgres'"))
	}

	// Create session store based on type
	var sessions storage.SessionStore
	switch orDefault(cfg.SessionStoreType, StorageTypeMemory) {
	case StorageTypeMemory:
		sessions = memory.NewSessionStore()
	case StorageTypeRedis:
		if cfg.RedisConfig == nil {
			return fail(errors.New("RedisConfig required when SessionStoreType is redis"))
		}
		rs, err := redisstorage.New(*cfg.RedisConfig, clk)
		if err != nil {
			return fail(fmt.Errorf("connect redis: %w", err))
		}
		sessions = rs
		closers = append(closers, rs)
		checks = append(checks, rs)
	case StorageTypePostgres:
		s, err := openPostgres()
		if err != nil {
			return fail(err)
		}
		sessions = postgres.NewSessionStore(s.DB())
	default:
		return fail(errors.New("invalid SessionStoreType: must be 'memory', 'redis' or 'postgres'"))
	}

	// Use default auth config if not provided
	authCfg := cfg.AuthConfig
	if authCfg.SessionDuration == 0 {
		authCfg.SessionDuration = auth.DefaultConfig().SessionDuration
	}

	app, err := newWithDependencies(store, sessions, clk, random.New(), authCfg, logger)
	if err != nil {
		return fail(err)
	}
	app.HealthChecks = checks
	app.closers = closers
	return app, nil
}

// newWithDependencies creates an App with the given dependencies (useful for testing)
func newWithDependencies(store storage.Storage, sessions storage.SessionStore, clk clock.Clock, rnd random.Random, authCfg auth.Config, logger *slog.Logger) (*App, error) {
	authService, err := auth.New(store, sessions, clk, rnd, logger, authCfg)
	if err != nil {
		return nil, err
	}
	profileService := profile.New(store)

	return &App{
		Storage:        store,
		Sessions:       sessions,
		Clock:          clk,
		Random:         rnd,
		Logger:         logger,
		AuthService:    authService,
		ProfileService: profileService,
		HealthChecks:   []handler.Pinger{store},
	}, nil
}

// RunSessionSweeper removes expired sessions every interval until ctx is done
func (a *App) RunSessionSweeper(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := a.AuthService.CleanExpiredSessions(ctx); err != nil {
				a.Logger.Warn("session sweep failed", slog.String("error", err.Error()))
			}
		}
	}
}

// Close releases every connection the app opened
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i].Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
