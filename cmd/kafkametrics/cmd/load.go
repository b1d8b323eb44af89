package cmd

import (
	"github.com/spf13/cobra"

	"github.com/G-Research/kafkametrics/internal/common/database"
	"github.com/G-Research/kafkametrics/internal/kafkametrics/ingest"
)

func loadCmd() *cobra.Command {
	var (
		file      string
		batchSize int
	)
	cmd := &cobra.Command{
		Use:   "load",
		Short: "Load metric rows from a CSV file into the metrics table",
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

			writer := ingest.NewMetricsWriter(db, config.Table.Schema, config.Table.Name, batchSize)
			count, err := ingest.LoadFile(ctx, writer, file)
			if err != nil {
				return err
			}
			ctx.Log.Infof("Loaded %d rows from %s", count, file)
			return nil
		},
	}
	cmd.Flags().StringVar(&file, "file", "", "CSV file with a header row naming the metric columns")
	cmd.Flags().IntVar(&batchSize, "batchSize", ingest.DefaultBatchSize, "Number of rows per insert statement")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}
