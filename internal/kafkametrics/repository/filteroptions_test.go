package repository

import (
	"strings"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/G-Research/kafkametrics/internal/common/appcontext"
	"github.com/G-Research/kafkametrics/internal/kafkametrics/model"
)

func optionsResponder(bounds []interface{}, failOn string) func(string) ([][]interface{}, error) {
	return func(sql string) ([][]interface{}, error) {
		if failOn != "" && strings.Contains(sql, failOn) {
			return nil, errors.New("connection refused")
		}
		switch {
		case strings.HasPrefix(sql, "SELECT MIN(metric_date)"):
			return [][]interface{}{bounds}, nil
		case strings.HasPrefix(sql, "SELECT DISTINCT cluster_name"):
			return [][]interface{}{{"c1"}, {""}, {"c2"}, {nil}}, nil
		case strings.HasPrefix(sql, "SELECT DISTINCT environment"):
			return [][]interface{}{{"dev"}, {"prod"}}, nil
		case strings.HasPrefix(sql, "SELECT DISTINCT pool_id"):
			return [][]interface{}{{nil}}, nil
		}
		return nil, nil
	}
}

func TestGetFilterOptions(t *testing.T) {
	q := &fakeQuerier{respond: optionsResponder([]interface{}{day(1), day(31)}, "")}
	filter := model.Filter{
		DateRange: model.DateRange{Start: model.NewDate(2024, time.January, 10)},
		Clusters:  []string{"ignored"},
	}

	options, err := newTestRepository(q).GetFilterOptions(appcontext.Background(), filter)
	require.NoError(t, err)

	assert.Equal(t, &model.FilterOptions{
		Clusters:     []string{"c1", "c2"},
		Namespaces:   []string{},
		Environments: []string{"dev", "prod"},
		Applications: []string{},
		PoolIds:      []string{},
		DataPlanes:   []string{},
		MotsIds:      []string{},
		DateRange: model.DateBounds{
			MinDate: model.NewDate(2024, time.January, 1),
			MaxDate: model.NewDate(2024, time.January, 31),
		},
	}, options)

	assert.Len(t, q.queries, 8)
	assert.True(t, q.allRowsClosed())

	t.Run("only the date range constrains the options", func(t *testing.T) {
		for _, column := range []string{"cluster_name", "namespace", "environment", "application_name", "pool_id", "data_plane", "mots_id"} {
			query, ok := q.queryContaining("SELECT DISTINCT " + column + " ")
			require.True(t, ok, column)
			assert.Equal(t, []interface{}{day(10)}, query.args, column)
			assert.Contains(t, query.sql, "WHERE metric_date >= $1", column)
			assert.NotContains(t, query.sql, "IN (", column)
		}
	})

	t.Run("nulls excluded in sql for some columns only", func(t *testing.T) {
		for column, excluded := range map[string]bool{
			"cluster_name":     false,
			"namespace":        false,
			"environment":      true,
			"application_name": true,
			"pool_id":          false,
			"data_plane":       true,
			"mots_id":          true,
		} {
			query, ok := q.queryContaining("SELECT DISTINCT " + column + " ")
			require.True(t, ok, column)
			assert.Equal(t, excluded, strings.Contains(query.sql, column+" IS NOT NULL"), column)
		}
	})

	t.Run("date bounds ignore the filter", func(t *testing.T) {
		query, ok := q.queryContaining("MIN(metric_date)")
		require.True(t, ok)
		assert.NotContains(t, query.sql, "WHERE")
		assert.Empty(t, query.args)
	})
}

func TestGetFilterOptions_EmptyTable(t *testing.T) {
	q := &fakeQuerier{respond: optionsResponder([]interface{}{nil, nil}, "")}
	options, err := newTestRepository(q).GetFilterOptions(appcontext.Background(), model.Filter{})
	require.NoError(t, err)
	assert.False(t, options.DateRange.MinDate.IsSet())
	assert.False(t, options.DateRange.MaxDate.IsSet())

	for _, query := range q.queries {
		if strings.Contains(query.sql, "IS NOT NULL") {
			assert.Contains(t, query.sql, " WHERE ")
			assert.NotContains(t, query.sql, " AND ")
		}
	}
}

func TestGetFilterOptions_AnyFailureFailsAll(t *testing.T) {
	q := &fakeQuerier{respond: optionsResponder([]interface{}{day(1), day(2)}, "DISTINCT mots_id")}
	options, err := newTestRepository(q).GetFilterOptions(appcontext.Background(), model.Filter{})
	assert.Nil(t, options)

	var queryErr *QueryError
	require.True(t, errors.As(err, &queryErr))
	assert.Equal(t, "DistinctValues:mots_id", queryErr.Query)
}
