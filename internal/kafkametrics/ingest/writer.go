package ingest

import (
	"context"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"
	"github.com/doug-martin/goqu/v9/exp"
	"github.com/jackc/pgconn"
	"github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/G-Research/kafkametrics/internal/common/appcontext"
	"github.com/G-Research/kafkametrics/internal/kafkametrics/model"
)

const DefaultBatchSize = 500

var columns = []interface{}{
	"metric_date",
	"cluster_name",
	"namespace",
	"data_plane",
	"environment",
	"application_name",
	"owners",
	"stakeholders",
	"mots_id",
	"consumedbytes",
	"producedbytes",
	"pool_id",
}

type Execer interface {
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
}

// MetricsWriter inserts metric rows in batches of parameterized multi-row INSERTs.
type MetricsWriter struct {
	db        Execer
	dialect   goqu.DialectWrapper
	table     exp.IdentifierExpression
	batchSize int
}

func NewMetricsWriter(db Execer, schema string, table string, batchSize int) *MetricsWriter {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	ident := goqu.T(table)
	if schema != "" {
		ident = goqu.S(schema).Table(table)
	}
	return &MetricsWriter{
		db:        db,
		dialect:   goqu.Dialect("postgres"),
		table:     ident,
		batchSize: batchSize,
	}
}

// Write inserts all records, returning how many rows were written before any failure.
func (w *MetricsWriter) Write(ctx *appcontext.Context, records []*model.MetricRecord) (int, error) {
	written := 0
	for start := 0; start < len(records); start += w.batchSize {
		end := start + w.batchSize
		if end > len(records) {
			end = len(records)
		}
		sql, args, err := w.insertSql(records[start:end])
		if err != nil {
			return written, err
		}
		tag, err := w.db.Exec(ctx, sql, args...)
		if err != nil {
			return written, errors.Wrapf(err, "inserting rows %d to %d", start, end)
		}
		written += int(tag.RowsAffected())
		ctx.Log.Debugf("Inserted %d metric rows", tag.RowsAffected())
	}
	return written, nil
}

func (w *MetricsWriter) insertSql(records []*model.MetricRecord) (string, []interface{}, error) {
	values := make([][]interface{}, 0, len(records))
	for _, r := range records {
		if !r.MetricDate.IsSet() {
			return "", nil, errors.New("metric_date is required")
		}
		values = append(values, []interface{}{
			r.MetricDate.Time,
			nullable(r.ClusterName),
			nullable(r.Namespace),
			nullable(r.DataPlane),
			nullable(r.Environment),
			nullable(r.ApplicationName),
			pq.Array(r.Owners),
			pq.Array(r.Stakeholders),
			nullable(r.MotsId),
			nullable(r.ConsumedBytes),
			nullable(r.ProducedBytes),
			nullable(r.PoolId),
		})
	}
	sql, args, err := w.dialect.
		Insert(w.table).
		Prepared(true).
		Cols(columns...).
		Vals(values...).
		ToSQL()
	return sql, args, errors.WithStack(err)
}

func nullable(s *string) interface{} {
	if s == nil {
		return nil
	}
	return *s
}
