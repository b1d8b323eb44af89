package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/pkg/errors"

	"github.com/G-Research/kafkametrics/internal/common/appcontext"
	"github.com/G-Research/kafkametrics/internal/kafkametrics/catalog"
	"github.com/G-Research/kafkametrics/internal/kafkametrics/model"
	"github.com/G-Research/kafkametrics/internal/kafkametrics/predicate"
)

// Querier is the subset of *pgxpool.Pool the repository needs.
type Querier interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	BeginTxFunc(ctx context.Context, txOptions pgx.TxOptions, f func(pgx.Tx) error) error
}

// rowQuerier is satisfied by both Querier and pgx.Tx.
type rowQuerier interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
}

type MetricsRepository interface {
	GetSummary(ctx *appcontext.Context, filter model.Filter) (*model.Summary, error)
	GetTimeSeries(ctx *appcontext.Context, filter model.Filter) ([]*model.TimeSeriesPoint, error)
	GetTopApplications(ctx *appcontext.Context, filter model.Filter) ([]*model.ApplicationVolume, error)
	GetEnvironmentDistribution(ctx *appcontext.Context, filter model.Filter) ([]*model.EnvironmentVolume, error)
	GetClusterComparison(ctx *appcontext.Context, filter model.Filter) ([]*model.ClusterVolume, error)
	GetNamespaceData(ctx *appcontext.Context, filter model.Filter) ([]*model.NamespaceVolume, error)
	GetTableData(ctx *appcontext.Context, filter model.Filter, page catalog.Page) (*model.DetailPage, error)
	GetApplicationPerformance(ctx *appcontext.Context, filter model.Filter) ([]*model.ApplicationPerformance, error)
	GetMotsGrouping(ctx *appcontext.Context, filter model.Filter) ([]*model.MotsGroup, error)
	GetFilterOptions(ctx *appcontext.Context, filter model.Filter) (*model.FilterOptions, error)
}

// SqlMetricsRepository runs catalog queries against Postgres. It holds no state besides the connection pool,
// so it is safe for concurrent use.
type SqlMetricsRepository struct {
	db      Querier
	catalog *catalog.Catalog
}

func NewSqlMetricsRepository(db Querier, catalog *catalog.Catalog) *SqlMetricsRepository {
	return &SqlMetricsRepository{
		db:      db,
		catalog: catalog,
	}
}

func (r *SqlMetricsRepository) GetSummary(ctx *appcontext.Context, filter model.Filter) (*model.Summary, error) {
	query := r.catalog.Build(catalog.Summary, predicate.Compile(filter))
	summary := &model.Summary{TotalConsumed: "0", TotalProduced: "0"}
	err := execute(ctx, r.db, query, func(rows pgx.Rows) error {
		return rows.Scan(
			&summary.TotalConsumed,
			&summary.TotalProduced,
			&summary.ActiveApplications,
			&summary.ActiveClusters,
		)
	})
	if err != nil {
		return nil, err
	}
	return summary, nil
}

func (r *SqlMetricsRepository) GetTimeSeries(ctx *appcontext.Context, filter model.Filter) ([]*model.TimeSeriesPoint, error) {
	query := r.catalog.Build(catalog.TimeSeries, predicate.Compile(filter))
	points := []*model.TimeSeriesPoint{}
	err := execute(ctx, r.db, query, func(rows pgx.Rows) error {
		var metricDate time.Time
		point := &model.TimeSeriesPoint{}
		if err := rows.Scan(&metricDate, &point.Consumed, &point.Produced); err != nil {
			return err
		}
		point.MetricDate = model.DateOf(metricDate)
		points = append(points, point)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return points, nil
}

func (r *SqlMetricsRepository) GetTopApplications(ctx *appcontext.Context, filter model.Filter) ([]*model.ApplicationVolume, error) {
	query := r.catalog.Build(catalog.TopApplications, predicate.Compile(filter))
	applications := []*model.ApplicationVolume{}
	err := execute(ctx, r.db, query, func(rows pgx.Rows) error {
		var name sql.NullString
		application := &model.ApplicationVolume{}
		if err := rows.Scan(&name, &application.Consumed, &application.Produced); err != nil {
			return err
		}
		application.ApplicationName = parseNullString(name)
		applications = append(applications, application)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return applications, nil
}

func (r *SqlMetricsRepository) GetEnvironmentDistribution(ctx *appcontext.Context, filter model.Filter) ([]*model.EnvironmentVolume, error) {
	query := r.catalog.Build(catalog.EnvironmentDistribution, predicate.Compile(filter))
	environments := []*model.EnvironmentVolume{}
	err := execute(ctx, r.db, query, func(rows pgx.Rows) error {
		var environment sql.NullString
		volume := &model.EnvironmentVolume{}
		if err := rows.Scan(&environment, &volume.TotalBytes); err != nil {
			return err
		}
		volume.Environment = parseNullString(environment)
		environments = append(environments, volume)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return environments, nil
}

func (r *SqlMetricsRepository) GetClusterComparison(ctx *appcontext.Context, filter model.Filter) ([]*model.ClusterVolume, error) {
	query := r.catalog.Build(catalog.ClusterComparison, predicate.Compile(filter))
	clusters := []*model.ClusterVolume{}
	err := execute(ctx, r.db, query, func(rows pgx.Rows) error {
		var cluster sql.NullString
		volume := &model.ClusterVolume{}
		if err := rows.Scan(&cluster, &volume.Consumed, &volume.Produced); err != nil {
			return err
		}
		volume.ClusterName = parseNullString(cluster)
		clusters = append(clusters, volume)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return clusters, nil
}

func (r *SqlMetricsRepository) GetNamespaceData(ctx *appcontext.Context, filter model.Filter) ([]*model.NamespaceVolume, error) {
	query := r.catalog.Build(catalog.NamespaceData, predicate.Compile(filter))
	namespaces := []*model.NamespaceVolume{}
	err := execute(ctx, r.db, query, func(rows pgx.Rows) error {
		var namespace sql.NullString
		volume := &model.NamespaceVolume{}
		if err := rows.Scan(&namespace, &volume.TotalBytes); err != nil {
			return err
		}
		volume.Namespace = parseNullString(namespace)
		namespaces = append(namespaces, volume)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return namespaces, nil
}

// GetTableData returns one page of raw rows together with the total number of matching rows. Both queries run
// in a single read-only snapshot so that the total always agrees with the page. A page past the last row is
// empty and skips the page query.
func (r *SqlMetricsRepository) GetTableData(ctx *appcontext.Context, filter model.Filter, page catalog.Page) (*model.DetailPage, error) {
	if err := page.Validate(); err != nil {
		return nil, err
	}
	p := predicate.Compile(filter)
	countQuery := r.catalog.Build(catalog.DetailCount, p)
	pageQuery := r.catalog.BuildPage(catalog.DetailPage, p, page)

	var total int64
	records := []*model.MetricRecord{}
	err := r.db.BeginTxFunc(ctx, pgx.TxOptions{
		IsoLevel:       pgx.RepeatableRead,
		AccessMode:     pgx.ReadOnly,
		DeferrableMode: pgx.Deferrable,
	}, func(tx pgx.Tx) error {
		err := execute(ctx, tx, countQuery, func(rows pgx.Rows) error {
			return rows.Scan(&total)
		})
		if err != nil {
			return err
		}
		if page.BeyondEnd(total) {
			return nil
		}
		return execute(ctx, tx, pageQuery, func(rows pgx.Rows) error {
			record, err := scanMetricRecord(rows)
			if err != nil {
				return err
			}
			records = append(records, record)
			return nil
		})
	})
	if err != nil {
		var queryErr *QueryError
		if errors.As(err, &queryErr) {
			return nil, queryErr
		}
		return nil, newQueryError(pageQuery.Name, err)
	}

	return &model.DetailPage{
		Data:       records,
		Total:      total,
		Page:       page.Page,
		PageSize:   page.PageSize,
		TotalPages: page.TotalPages(total),
	}, nil
}

func (r *SqlMetricsRepository) GetApplicationPerformance(ctx *appcontext.Context, filter model.Filter) ([]*model.ApplicationPerformance, error) {
	query := r.catalog.Build(catalog.ApplicationPerformance, predicate.Compile(filter))
	result := []*model.ApplicationPerformance{}
	err := execute(ctx, r.db, query, func(rows pgx.Rows) error {
		var application, environment, cluster, avgDailyVolume sql.NullString
		performance := &model.ApplicationPerformance{}
		err := rows.Scan(
			&application,
			&environment,
			&cluster,
			&performance.TotalConsumed,
			&performance.TotalProduced,
			&performance.ActiveDays,
			&avgDailyVolume,
		)
		if err != nil {
			return err
		}
		performance.ApplicationName = parseNullString(application)
		performance.Environment = parseNullString(environment)
		performance.ClusterName = parseNullString(cluster)
		performance.AvgDailyVolume = "0"
		if avgDailyVolume.Valid {
			performance.AvgDailyVolume = avgDailyVolume.String
		}
		result = append(result, performance)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (r *SqlMetricsRepository) GetMotsGrouping(ctx *appcontext.Context, filter model.Filter) ([]*model.MotsGroup, error) {
	query := r.catalog.Build(catalog.MotsGrouping, predicate.Compile(filter))
	groups := []*model.MotsGroup{}
	err := execute(ctx, r.db, query, func(rows pgx.Rows) error {
		var motsId, application, environment, cluster sql.NullString
		group := &model.MotsGroup{}
		err := rows.Scan(
			&motsId,
			&application,
			&environment,
			&cluster,
			&group.TotalConsumed,
			&group.TotalProduced,
			&group.ActiveDays,
		)
		if err != nil {
			return err
		}
		group.MotsId = parseNullString(motsId)
		group.ApplicationName = parseNullString(application)
		group.Environment = parseNullString(environment)
		group.ClusterName = parseNullString(cluster)
		groups = append(groups, group)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return groups, nil
}

func scanMetricRecord(rows pgx.Rows) (*model.MetricRecord, error) {
	var metricDate time.Time
	var cluster, namespace, dataPlane, environment, application sql.NullString
	var motsId, consumedBytes, producedBytes, poolId sql.NullString
	var owners, stakeholders []string
	err := rows.Scan(
		&metricDate,
		&cluster,
		&namespace,
		&dataPlane,
		&environment,
		&application,
		&owners,
		&stakeholders,
		&motsId,
		&consumedBytes,
		&producedBytes,
		&poolId,
	)
	if err != nil {
		return nil, err
	}
	return &model.MetricRecord{
		MetricDate:      model.DateOf(metricDate),
		ClusterName:     parseNullString(cluster),
		Namespace:       parseNullString(namespace),
		DataPlane:       parseNullString(dataPlane),
		Environment:     parseNullString(environment),
		ApplicationName: parseNullString(application),
		Owners:          owners,
		Stakeholders:    stakeholders,
		MotsId:          parseNullString(motsId),
		ConsumedBytes:   parseNullString(consumedBytes),
		ProducedBytes:   parseNullString(producedBytes),
		PoolId:          parseNullString(poolId),
	}, nil
}

func parseNullString(nullString sql.NullString) *string {
	if !nullString.Valid {
		return nil
	}
	return &nullString.String
}
