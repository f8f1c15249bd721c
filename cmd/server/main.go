package main

import (
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var seedFile string

	rootCmd := &cobra.Command{
		Use:   "robogamehub",
		Short: "RoboGame Hub API server",
		Long: `robogamehub serves the community hub JSON API: sign-in, the game
catalog, play history and the player dashboard.

Configuration is read from the environment (PORT, STORAGE_TYPE, DATABASE_URL,
SESSION_STORE, REDIS_URL, SESSION_TTL, LOG_LEVEL, ...).`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), seedFile)
		},
		SilenceUsage: true,
	}
	rootCmd.Flags().StringVar(&seedFile, "seed", "", "Seed file applied before serving")

	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newMigrateCmd())
	rootCmd.AddCommand(newSeedCmd())

	return rootCmd
}
