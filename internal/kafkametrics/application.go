package kafkametrics

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"k8s.io/utils/clock"

	"github.com/G-Research/kafkametrics/internal/common/appcontext"
	"github.com/G-Research/kafkametrics/internal/common/database"
	"github.com/G-Research/kafkametrics/internal/common/health"
	"github.com/G-Research/kafkametrics/internal/common/serve"
	"github.com/G-Research/kafkametrics/internal/kafkametrics/catalog"
	"github.com/G-Research/kafkametrics/internal/kafkametrics/configuration"
	"github.com/G-Research/kafkametrics/internal/kafkametrics/metrics"
	"github.com/G-Research/kafkametrics/internal/kafkametrics/repository"
	"github.com/G-Research/kafkametrics/internal/kafkametrics/server"
)

const dbCheckTimeout = 5 * time.Second

// Serve connects to Postgres and runs the API and metrics servers until ctx is cancelled.
func Serve(ctx *appcontext.Context, config configuration.KafkaMetricsConfig) error {
	db, err := database.OpenPgxPool(ctx, config.Postgres)
	if err != nil {
		return errors.WithMessage(err, "error connecting to postgres")
	}
	defer db.Close()

	metricsCatalog := catalog.New(config.Table.Schema, config.Table.Name)
	checkTable(ctx, db, metricsCatalog.Table())

	if err := metrics.Register(prometheus.DefaultRegisterer, metrics.NewPoolCollector(db)); err != nil {
		return err
	}

	var repo repository.MetricsRepository = repository.NewSqlMetricsRepository(db, metricsCatalog)
	if config.FilterOptionsCacheTTL > 0 {
		repo = repository.NewCachedFilterOptionsRepository(repo, config.FilterOptionsCacheTTL)
	}
	apiServer := server.NewServer(config, repo, dbChecker(db), clock.RealClock{})

	g, ctx := appcontext.ErrGroup(ctx)
	g.Go(func() error {
		return serve.ListenAndServe(
			appcontext.WithLogField(ctx, "server", "api"),
			&http.Server{
				Addr:    fmt.Sprintf(":%d", config.ApiPort),
				Handler: apiServer.Handler(),
			},
			config.ShutdownTimeout,
		)
	})
	if config.MetricsPort > 0 {
		g.Go(func() error {
			mux := http.NewServeMux()
			mux.Handle("/metrics", promhttp.Handler())
			return serve.ListenAndServe(
				appcontext.WithLogField(ctx, "server", "metrics"),
				&http.Server{
					Addr:    fmt.Sprintf(":%d", config.MetricsPort),
					Handler: mux,
				},
				config.ShutdownTimeout,
			)
		})
	}
	return g.Wait()
}

func dbChecker(db *pgxpool.Pool) health.Checker {
	return health.CheckerFunc(func(ctx context.Context) error {
		ctx, cancel := context.WithTimeout(ctx, dbCheckTimeout)
		defer cancel()
		return db.Ping(ctx)
	})
}

// checkTable warns when the metrics table is missing. The server still starts so that the table can be created later.
func checkTable(ctx *appcontext.Context, db *pgxpool.Pool, table string) {
	var found *string
	if err := db.QueryRow(ctx, "SELECT to_regclass($1)::text", table).Scan(&found); err != nil {
		ctx.Log.WithError(err).Warn("Unable to check for metrics table")
		return
	}
	if found == nil {
		ctx.Log.Warnf("Metrics table %s does not exist; queries will fail until it is created", table)
		return
	}
	ctx.Log.Infof("Connected to postgres, serving metrics from %s", *found)
}
