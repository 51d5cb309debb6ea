package main

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"dungeon-master/internal/config"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the PostgreSQL schema",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(configPath)
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}
		if cfg.Storage.Backend != config.StoragePostgres {
			return fmt.Errorf("migrate requires the %s storage backend, got %s", config.StoragePostgres, cfg.Storage.Backend)
		}
		return migrate(cmd.Context(), cfg)
	},
}

var seedFeaturesCmd = &cobra.Command{
	Use:   "seed-features",
	Short: "Load the built-in class feature catalog",
	Long:  `Load the built-in class feature catalog. Features already present are left alone.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(configPath)
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}
		if cfg.Storage.Backend != config.StoragePostgres {
			return fmt.Errorf("seed-features requires the %s storage backend, got %s", config.StoragePostgres, cfg.Storage.Backend)
		}

		a, err := buildApp(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer a.Close()

		n, err := a.deps.Progression.SeedFeatures(cmd.Context())
		if err != nil {
			return err
		}
		log.Info().Int("inserted", n).Msg("Feature catalog is up to date")
		return nil
	},
}
