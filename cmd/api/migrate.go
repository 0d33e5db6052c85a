package main

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/xavierca1/taskflow/internal/infra/database"
)

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Cria/atualiza o schema do Postgres",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			db, err := database.NewDBConnection(database.Options{
				URL:          cfg.DatabaseURL,
				MaxOpenConns: 1,
				MaxIdleConns: 1,
			})
			if err != nil {
				return err
			}
			defer db.Close()

			ctx, cancel := context.WithTimeout(cmd.Context(), time.Minute)
			defer cancel()

			if err := database.Migrate(ctx, db); err != nil {
				return err
			}
			log.Info().Int("statements", len(database.Migrations)).Msg("migrations applied")
			return nil
		},
	}
}
