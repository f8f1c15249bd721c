package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/mcoot/robogamehub/internal/api"
	"github.com/mcoot/robogamehub/internal/api/middleware"
	"github.com/mcoot/robogamehub/internal/config"
	"github.com/mcoot/robogamehub/internal/factory"
	"github.com/mcoot/robogamehub/internal/seed"
)

func newServeCmd() *cobra.Command {
	var seedFile string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), seedFile)
		},
	}
	cmd.Flags().StringVar(&seedFile, "seed", "", "Seed file applied before serving")

	return cmd
}

// newLogger sets up logging with JSON output
func newLogger(level slog.Level) *slog.Logger {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)
	return logger
}

// loadApp reads the environment and wires the application
func loadApp() (*factory.App, config.Config, error) {
	env, err := config.Load()
	if err != nil {
		return nil, env, err
	}
	logger := newLogger(env.LogLevel)

	app, err := factory.New(factory.ConfigFromEnv(env, logger))
	if err != nil {
		logger.Error("failed to create application", slog.String("error", err.Error()))
		return nil, env, err
	}
	return app, env, nil
}

func runServe(ctx context.Context, seedFile string) error {
	if ctx == nil {
		ctx = context.Background()
	}

	app, env, err := loadApp()
	if err != nil {
		return err
	}
	defer func() {
		if err := app.Close(); err != nil {
			app.Logger.Error("close failed", slog.String("error", err.Error()))
		}
	}()
	logger := app.Logger

	if seedFile != "" {
		if err := applySeed(ctx, app, seedFile); err != nil {
			return err
		}
	}

	router := api.NewRouter(api.RouterConfig{
		Logger:         logger,
		AuthService:    app.AuthService,
		ProfileService: app.ProfileService,
		Cookies: middleware.CookieConfig{
			Secure: env.CookieSecure,
			MaxAge: env.SessionTTL,
		},
		HealthChecks: app.HealthChecks,
	})

	serverConfig := api.DefaultServerConfig()
	serverConfig.Host = env.Host
	serverConfig.Port = env.Port
	serverConfig.ShutdownTimeout = env.ShutdownTimeout
	server := api.NewServer(router, serverConfig, logger)

	// Handle graceful shutdown
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go app.RunSessionSweeper(ctx, env.SessionSweepInterval)

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	logger.Info("server started",
		slog.String("addr", server.Addr()),
		slog.String("storage", env.StorageType),
		slog.String("session_store", env.SessionStore),
	)

	select {
	case err := <-errCh:
		if err != nil {
			logger.Error("server error", slog.String("error", err.Error()))
			return err
		}
	case <-ctx.Done():
		logger.Info("shutdown signal received")
		if err := server.Shutdown(context.Background()); err != nil {
			logger.Error("shutdown error", slog.String("error", err.Error()))
			return err
		}
	}

	logger.Info("server stopped")
	return nil
}

func applySeed(ctx context.Context, app *factory.App, path string) error {
	f, err := seed.LoadFile(path)
	if err != nil {
		return fmt.Errorf("load seed: %w", err)
	}
	if _, err := seed.New(app.Storage, app.AuthService, app.Logger).Apply(ctx, f); err != nil {
		return fmt.Errorf("apply seed: %w", err)
	}
	return nil
}
