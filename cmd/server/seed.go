package main

import (
	"github.com/spf13/cobra"
)

func newSeedCmd() *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load games, users and play history from a YAML file",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, _, err := loadApp()
			if err != nil {
				return err
			}
			defer func() { _ = app.Close() }()

			return applySeed(cmd.Context(), app, file)
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "seed.yaml", "Seed file")

	return cmd
}
