package cmd

import (
	"os"
	"os/signal"
	"syscall"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/G-Research/kafkametrics/internal/common"
	"github.com/G-Research/kafkametrics/internal/common/appcontext"
	"github.com/G-Research/kafkametrics/internal/common/config"
	"github.com/G-Research/kafkametrics/internal/kafkametrics/configuration"
)

const (
	CustomConfigLocation = "config"
	DefaultConfigPath    = "./config/kafkametrics"
	EnvPrefix            = "KAFKAMETRICS"
)

// RootCmd is the root Cobra command that gets called from the main func.
// All other sub-commands should be registered here.
func RootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "kafkametrics",
		Short:        "kafkametrics serves Kafka application usage metrics from Postgres.",
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringSlice(
		CustomConfigLocation,
		[]string{},
		"Fully qualified path to application configuration file (for multiple config files repeat this arg or separate paths with commas)",
	)

	cmd.AddCommand(
		serveCmd(),
		migrateCmd(),
		loadCmd(),
	)

	return cmd
}

func loadConfig(cmd *cobra.Command) (configuration.KafkaMetricsConfig, error) {
	var cfg configuration.KafkaMetricsConfig
	common.BindCommandlineArguments(cmd.Flags())
	common.LoadConfig(&cfg, DefaultConfigPath, viper.GetStringSlice(CustomConfigLocation), EnvPrefix)
	if err := config.Validate(cfg); err != nil {
		return cfg, err
	}
	log.SetLevel(cfg.LogLevel)
	return cfg, nil
}

func makeContext() (*appcontext.Context, func()) {
	ctx, cancel := appcontext.WithCancel(appcontext.Background())

	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	go func() {
		select {
		case <-c:
			ctx.Log.Info("Received shutdown signal")
			cancel()
		case <-ctx.Done():
		}
	}()

	return ctx, func() {
		signal.Stop(c)
		cancel()
	}
}
