package repository

import (
	"context"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgconn"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v4"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/G-Research/kafkametrics/internal/common/appcontext"
	"github.com/G-Research/kafkametrics/internal/kafkametrics/catalog"
	"github.com/G-Research/kafkametrics/internal/kafkametrics/model"
)

func newTestRepository(q *fakeQuerier) *SqlMetricsRepository {
	return NewSqlMetricsRepository(q, catalog.New(catalog.DefaultSchema, catalog.DefaultTable))
}

func day(d int) time.Time {
	return time.Date(2024, time.January, d, 0, 0, 0, 0, time.UTC)
}

func strPtr(s string) *string {
	return &s
}

func TestGetSummary(t *testing.T) {
	q := &fakeQuerier{respond: respondWith([]interface{}{"150", "200", int64(1), int64(1)})}
	repo := newTestRepository(q)

	summary, err := repo.GetSummary(appcontext.Background(), model.Filter{Clusters: []string{"c1"}})
	require.NoError(t, err)
	assert.Equal(t, &model.Summary{
		TotalConsumed:      "150",
		TotalProduced:      "200",
		ActiveApplications: 1,
		ActiveClusters:     1,
	}, summary)

	require.Len(t, q.queries, 1)
	assert.True(t, strings.HasSuffix(q.queries[0].sql, "WHERE cluster_name IN ($1)"))
	assert.Equal(t, []interface{}{"c1"}, q.queries[0].args)
	assert.True(t, q.allRowsClosed())
}

func TestGetSummary_NoRows(t *testing.T) {
	q := &fakeQuerier{respond: respondWith()}
	summary, err := newTestRepository(q).GetSummary(appcontext.Background(), model.Filter{})
	require.NoError(t, err)
	assert.Equal(t, &model.Summary{TotalConsumed: "0", TotalProduced: "0"}, summary)
	assert.Empty(t, q.queries[0].args)
}

func TestGetTimeSeries(t *testing.T) {
	q := &fakeQuerier{respond: respondWith(
		[]interface{}{day(1), "10", "20"},
		[]interface{}{day(2), "0", "5"},
	)}
	filter := model.Filter{DateRange: model.DateRange{
		Start: model.NewDate(2024, time.January, 1),
		End:   model.NewDate(2024, time.January, 31),
	}}

	points, err := newTestRepository(q).GetTimeSeries(appcontext.Background(), filter)
	require.NoError(t, err)
	assert.Equal(t, []*model.TimeSeriesPoint{
		{MetricDate: model.NewDate(2024, time.January, 1), Consumed: "10", Produced: "20"},
		{MetricDate: model.NewDate(2024, time.January, 2), Consumed: "0", Produced: "5"},
	}, points)
	assert.Equal(t, []interface{}{day(1), day(31)}, q.queries[0].args)
	assert.True(t, q.allRowsClosed())
}

func TestGetTimeSeries_EmptyIsNotNil(t *testing.T) {
	q := &fakeQuerier{respond: respondWith()}
	points, err := newTestRepository(q).GetTimeSeries(appcontext.Background(), model.Filter{})
	require.NoError(t, err)
	assert.NotNil(t, points)
	assert.Empty(t, points)
}

func TestGetTopApplications(t *testing.T) {
	q := &fakeQuerier{respond: respondWith(
		[]interface{}{"app-a", "100", "200"},
		[]interface{}{nil, "1", "2"},
	)}
	applications, err := newTestRepository(q).GetTopApplications(appcontext.Background(), model.Filter{})
	require.NoError(t, err)
	assert.Equal(t, []*model.ApplicationVolume{
		{ApplicationName: strPtr("app-a"), Consumed: "100", Produced: "200"},
		{ApplicationName: nil, Consumed: "1", Produced: "2"},
	}, applications)
	assert.Contains(t, q.queries[0].sql, "LIMIT 10")
}

func TestGetEnvironmentDistribution_NullEnvironmentIsItsOwnGroup(t *testing.T) {
	q := &fakeQuerier{respond: respondWith(
		[]interface{}{"prod", "300"},
		[]interface{}{nil, "12"},
	)}
	environments, err := newTestRepository(q).GetEnvironmentDistribution(appcontext.Background(), model.Filter{})
	require.NoError(t, err)
	assert.Equal(t, []*model.EnvironmentVolume{
		{Environment: strPtr("prod"), TotalBytes: "300"},
		{Environment: nil, TotalBytes: "12"},
	}, environments)
}

func TestGetClusterComparison(t *testing.T) {
	q := &fakeQuerier{respond: respondWith([]interface{}{"c1", "150", "200"})}
	clusters, err := newTestRepository(q).GetClusterComparison(appcontext.Background(), model.Filter{Environments: []string{"prod"}})
	require.NoError(t, err)
	assert.Equal(t, []*model.ClusterVolume{{ClusterName: strPtr("c1"), Consumed: "150", Produced: "200"}}, clusters)
	assert.Contains(t, q.queries[0].sql, "WHERE environment IN ($1) GROUP BY cluster_name")
}

func TestGetNamespaceData(t *testing.T) {
	q := &fakeQuerier{respond: respondWith([]interface{}{"ns", "42"}, []interface{}{nil, "1"})}
	namespaces, err := newTestRepository(q).GetNamespaceData(appcontext.Background(), model.Filter{})
	require.NoError(t, err)
	assert.Equal(t, []*model.NamespaceVolume{
		{Namespace: strPtr("ns"), TotalBytes: "42"},
		{Namespace: nil, TotalBytes: "1"},
	}, namespaces)
}

func TestGetTableData(t *testing.T) {
	q := &fakeQuerier{respond: func(sql string) ([][]interface{}, error) {
		if strings.HasPrefix(sql, "SELECT COUNT(*)") {
			return [][]interface{}{{int64(51)}}, nil
		}
		return [][]interface{}{{
			day(3), "c1", "ns", "dp", nil, "app",
			[]string{"alice"}, nil, "m1", "100", nil, "pool",
		}}, nil
	}}
	filter := model.Filter{Clusters: []string{"c1"}}

	result, err := newTestRepository(q).GetTableData(appcontext.Background(), filter, catalog.Page{Page: 3, PageSize: 25})
	require.NoError(t, err)

	assert.Equal(t, &model.DetailPage{
		Data: []*model.MetricRecord{{
			MetricDate:      model.NewDate(2024, time.January, 3),
			ClusterName:     strPtr("c1"),
			Namespace:       strPtr("ns"),
			DataPlane:       strPtr("dp"),
			Environment:     nil,
			ApplicationName: strPtr("app"),
			Owners:          []string{"alice"},
			Stakeholders:    nil,
			MotsId:          strPtr("m1"),
			ConsumedBytes:   strPtr("100"),
			ProducedBytes:   nil,
			PoolId:          strPtr("pool"),
		}},
		Total:      51,
		Page:       3,
		PageSize:   25,
		TotalPages: 3,
	}, result)

	require.Len(t, q.txOptions, 1)
	assert.Equal(t, pgx.RepeatableRead, q.txOptions[0].IsoLevel)
	assert.Equal(t, pgx.ReadOnly, q.txOptions[0].AccessMode)

	require.Len(t, q.queries, 2)
	assert.Equal(t, []interface{}{"c1"}, q.queries[0].args)
	assert.Equal(t, []interface{}{"c1", 25, int64(50)}, q.queries[1].args)
	assert.True(t, strings.HasSuffix(q.queries[1].sql, "LIMIT $2 OFFSET $3"))
	assert.True(t, q.allRowsClosed())
}

func TestGetTableData_Empty(t *testing.T) {
	q := &fakeQuerier{respond: func(sql string) ([][]interface{}, error) {
		if strings.HasPrefix(sql, "SELECT COUNT(*)") {
			return [][]interface{}{{int64(0)}}, nil
		}
		return nil, nil
	}}
	result, err := newTestRepository(q).GetTableData(appcontext.Background(), model.Filter{}, catalog.Page{Page: 1, PageSize: 25})
	require.NoError(t, err)
	assert.Equal(t, int64(0), result.Total)
	assert.Equal(t, int64(0), result.TotalPages)
	assert.NotNil(t, result.Data)
	assert.Empty(t, result.Data)
}

func TestGetTableData_PastTheEnd(t *testing.T) {
	q := &fakeQuerier{respond: func(sql string) ([][]interface{}, error) {
		if strings.HasPrefix(sql, "SELECT COUNT(*)") {
			return [][]interface{}{{int64(10)}}, nil
		}
		return nil, nil
	}}
	result, err := newTestRepository(q).GetTableData(appcontext.Background(), model.Filter{}, catalog.Page{Page: 5, PageSize: 25})
	require.NoError(t, err)
	assert.Empty(t, result.Data)
	assert.Equal(t, int64(10), result.Total)
	assert.Equal(t, int64(1), result.TotalPages)
	assert.Equal(t, 5, result.Page)
	assert.Len(t, q.queries, 1)
}

func TestGetTableData_HugePage(t *testing.T) {
	q := &fakeQuerier{respond: func(sql string) ([][]interface{}, error) {
		if strings.HasPrefix(sql, "SELECT COUNT(*)") {
			return [][]interface{}{{int64(120)}}, nil
		}
		return nil, errors.New("page query must not run")
	}}
	page := catalog.Page{Page: math.MaxInt64 / 100, PageSize: 1000}

	result, err := newTestRepository(q).GetTableData(appcontext.Background(), model.Filter{}, page)
	require.NoError(t, err)
	assert.NotNil(t, result.Data)
	assert.Empty(t, result.Data)
	assert.Equal(t, int64(120), result.Total)
	assert.Equal(t, int64(1), result.TotalPages)
	assert.Equal(t, page.Page, result.Page)
	require.Len(t, q.queries, 1)
	assert.True(t, strings.HasPrefix(q.queries[0].sql, "SELECT COUNT(*)"))
}

func TestGetTableData_InvalidPage(t *testing.T) {
	q := &fakeQuerier{respond: respondWith()}
	_, err := newTestRepository(q).GetTableData(appcontext.Background(), model.Filter{}, catalog.Page{Page: 0, PageSize: 25})
	assert.Error(t, err)
	assert.Empty(t, q.queries)
}

func TestGetTableData_CountFailureAbortsTransaction(t *testing.T) {
	q := &fakeQuerier{respond: func(sql string) ([][]interface{}, error) {
		return nil, &pgconn.PgError{Code: pgerrcode.UndefinedTable, Message: "relation does not exist"}
	}}
	_, err := newTestRepository(q).GetTableData(appcontext.Background(), model.Filter{}, catalog.Page{Page: 1, PageSize: 25})

	var queryErr *QueryError
	require.True(t, errors.As(err, &queryErr))
	assert.Equal(t, "DetailCount", queryErr.Query)
	assert.Equal(t, pgerrcode.UndefinedTable, queryErr.Code)
	assert.Len(t, q.queries, 1)
}

func TestGetApplicationPerformance(t *testing.T) {
	q := &fakeQuerier{respond: respondWith(
		[]interface{}{"app", "prod", "c1", "150", "200", int64(2), "175.0000000000000000"},
	)}
	result, err := newTestRepository(q).GetApplicationPerformance(appcontext.Background(), model.Filter{})
	require.NoError(t, err)
	assert.Equal(t, []*model.ApplicationPerformance{{
		ApplicationName: strPtr("app"),
		Environment:     strPtr("prod"),
		ClusterName:     strPtr("c1"),
		TotalConsumed:   "150",
		TotalProduced:   "200",
		ActiveDays:      2,
		AvgDailyVolume:  "175.0000000000000000",
	}}, result)
	assert.Contains(t, q.queries[0].sql, "HAVING SUM(consumedbytes + producedbytes) > 0")
}

func TestGetMotsGrouping(t *testing.T) {
	q := &fakeQuerier{respond: respondWith(
		[]interface{}{"m1", "app", nil, "c1", "10", "0", int64(1)},
		[]interface{}{nil, "other", "dev", "c2", "1", "1", int64(3)},
	)}
	result, err := newTestRepository(q).GetMotsGrouping(appcontext.Background(), model.Filter{})
	require.NoError(t, err)
	assert.Equal(t, []*model.MotsGroup{
		{MotsId: strPtr("m1"), ApplicationName: strPtr("app"), Environment: nil, ClusterName: strPtr("c1"), TotalConsumed: "10", TotalProduced: "0", ActiveDays: 1},
		{MotsId: nil, ApplicationName: strPtr("other"), Environment: strPtr("dev"), ClusterName: strPtr("c2"), TotalConsumed: "1", TotalProduced: "1", ActiveDays: 3},
	}, result)
}

func TestQueryFailure(t *testing.T) {
	t.Run("server error carries sqlstate", func(t *testing.T) {
		q := &fakeQuerier{respond: func(string) ([][]interface{}, error) {
			return nil, &pgconn.PgError{Code: pgerrcode.QueryCanceled, Message: "canceling statement due to statement timeout"}
		}}
		_, err := newTestRepository(q).GetSummary(appcontext.Background(), model.Filter{})

		var queryErr *QueryError
		require.True(t, errors.As(err, &queryErr))
		assert.Equal(t, "Summary", queryErr.Query)
		assert.Equal(t, pgerrcode.QueryCanceled, queryErr.Code)
		assert.True(t, queryErr.Canceled())
		assert.False(t, queryErr.Unavailable())
		assert.Contains(t, err.Error(), "SQLSTATE 57014")
	})

	t.Run("iteration error closes rows", func(t *testing.T) {
		failing := &failingRowsQuerier{fakeQuerier: &fakeQuerier{respond: respondWith([]interface{}{"c1", "1", "1"})}}
		repo := NewSqlMetricsRepository(failing, catalog.New(catalog.DefaultSchema, catalog.DefaultTable))

		_, err := repo.GetClusterComparison(appcontext.Background(), model.Filter{})
		var queryErr *QueryError
		require.True(t, errors.As(err, &queryErr))
		assert.Equal(t, "ClusterComparison", queryErr.Query)
		assert.Empty(t, queryErr.Code)
		assert.True(t, failing.allRowsClosed())
	})

	t.Run("admin shutdown is unavailable", func(t *testing.T) {
		queryErr := newQueryError("Summary", errors.Wrap(&pgconn.PgError{Code: pgerrcode.AdminShutdown}, "query"))
		assert.True(t, queryErr.Unavailable())
		assert.False(t, queryErr.Canceled())
	})
}

// failingRowsQuerier returns rows whose iteration ends with an error.
type failingRowsQuerier struct {
	*fakeQuerier
}

func (q *failingRowsQuerier) Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error) {
	rows, err := q.fakeQuerier.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	rows.(*fakeRows).err = errors.New("connection reset by peer")
	return rows, nil
}
