package repository

import (
	"strings"
	"time"

	"github.com/jackc/pgx/v4"

	"github.com/G-Research/kafkametrics/internal/common/appcontext"
	"github.com/G-Research/kafkametrics/internal/kafkametrics/catalog"
	"github.com/G-Research/kafkametrics/internal/kafkametrics/metrics"
)

const slowQueryThreshold = 5 * time.Second

// execute runs query once and hands every returned row to scan. Rows are always closed before it returns,
// and any failure is reported as a *QueryError.
func execute(ctx *appcontext.Context, db rowQuerier, query *catalog.Query, scan func(pgx.Rows) error) error {
	logQueryDebug(ctx, query)
	start := time.Now()

	err := func() error {
		rows, err := db.Query(ctx, query.Sql, query.Args...)
		if err != nil {
			return err
		}
		defer rows.Close()
		for rows.Next() {
			if err := scan(rows); err != nil {
				return err
			}
		}
		return rows.Err()
	}()

	duration := time.Since(start)
	metrics.QueryDurationHistogram.WithLabelValues(query.Name).Observe(duration.Seconds())
	if err != nil {
		queryErr := newQueryError(query.Name, err)
		metrics.QueryFailuresCounter.WithLabelValues(query.Name, queryErr.Code).Inc()
		logQueryError(ctx, query, queryErr, duration)
		return queryErr
	}
	logSlowQuery(ctx, query, duration)
	return nil
}

func logQueryDebug(ctx *appcontext.Context, query *catalog.Query) {
	ctx.Log.
		WithField("query", removeNewlinesAndTabs(query.Sql)).
		WithField("values", query.Args).
		Debugf("Executing %s query", query.Name)
}

func logQueryError(ctx *appcontext.Context, query *catalog.Query, err *QueryError, duration time.Duration) {
	ctx.Log.
		WithError(err.Err).
		WithField("query", removeNewlinesAndTabs(query.Sql)).
		WithField("values", query.Args).
		WithField("duration", duration).
		WithField("sqlstate", err.Code).
		WithField("unavailable", err.Unavailable()).
		WithField("canceled", err.Canceled()).
		Errorf("Error executing %s query", query.Name)
}

func logSlowQuery(ctx *appcontext.Context, query *catalog.Query, duration time.Duration) {
	if duration > slowQueryThreshold {
		ctx.Log.
			WithField("query", removeNewlinesAndTabs(query.Sql)).
			WithField("values", query.Args).
			WithField("duration", duration).
			Warnf("Slow %s query detected", query.Name)
	}
}

func removeNewlinesAndTabs(s string) string {
	return strings.ReplaceAll(strings.ReplaceAll(s, "\n", " "), "\t", "")
}
