package schema

import (
	"context"
	"embed"

	"github.com/jackc/pgtype/pgxtype"

	"github.com/G-Research/kafkametrics/internal/common/database"
)

//go:embed migrations/*.sql
var fs embed.FS

func KafkaMetricsMigrations() ([]database.Migration, error) {
	return database.ReadMigrations(fs, "migrations")
}

func MigrateKafkaMetrics(ctx context.Context, db pgxtype.Querier) error {
	migrations, err := KafkaMetricsMigrations()
	if err != nil {
		return err
	}
	return database.UpdateDatabase(ctx, db, migrations)
}
