package main

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"

	"github.com/mcoot/robogamehub/internal/config"
	"github.com/mcoot/robogamehub/internal/storage/postgres"
)

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply the Postgres schema and adapt the legacy users layout",
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := config.Load()
			if err != nil {
				return err
			}
			logger := newLogger(env.LogLevel)

			if env.DatabaseURL == "" {
				return errors.New("DATABASE_URL is required for migrate")
			}
			pgCfg := postgres.DefaultConfig()
			pgCfg.DSN = env.DatabaseURL

			store, err := postgres.New(pgCfg)
			if err != nil {
				return fmt.Errorf("connect postgres: %w", err)
			}
			defer func() { _ = store.Close() }()

			result, err := store.Migrate(cmd.Context(), hashLegacyPassword)
			if err != nil {
				logger.Error("migration failed", slog.String("error", err.Error()))
				return err
			}

			logger.Info("migration complete",
				slog.Any("renamed_columns", result.RenamedColumns),
				slog.Int("passwords_rehashed", result.RehashedPasswords),
				slog.Int("rows_folded", result.FoldedRows),
			)
			return nil
		},
	}
}

func hashLegacyPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
