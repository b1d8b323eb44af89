package cmd

import (
	"github.com/spf13/cobra"

	"github.com/G-Research/kafkametrics/internal/common/database"
	"github.com/G-Research/kafkametrics/internal/kafkametrics/schema"
)

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the metrics table",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			config, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			ctx, cleanup := makeContext()
			defer cleanup()

			db, err := database.OpenPgxPool(ctx, config.Postgres)
			if err != nil {
				return err
			}
			defer db.Close()

			ctx.Log.Info("Migrating database")
			return schema.MigrateKafkaMetrics(ctx, db)
		},
	}
}
