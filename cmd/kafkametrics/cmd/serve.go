package cmd

import (
	"github.com/spf13/cobra"

	"github.com/G-Research/kafkametrics/internal/kafkametrics"
)

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the metrics API server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			config, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			ctx, cleanup := makeContext()
			defer cleanup()
			return kafkametrics.Serve(ctx, config)
		},
	}
}
