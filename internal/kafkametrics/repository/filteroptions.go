package repository

import (
	"database/sql"

	"github.com/jackc/pgtype"
	"github.com/jackc/pgx/v4"

	"github.com/G-Research/kafkametrics/internal/common/appcontext"
	"github.com/G-Research/kafkametrics/internal/kafkametrics/catalog"
	"github.com/G-Research/kafkametrics/internal/kafkametrics/model"
	p "github.com/G-Research/kafkametrics/internal/kafkametrics/predicate"
)

type optionColumn struct {
	column      string
	excludeNull bool
	target      func(options *model.FilterOptions) *[]string
}

// Columns offered as filter choices. Only some of them get NULL excluded in SQL; every list is cleaned of NULL
// and empty values afterwards regardless.
var optionColumns = []optionColumn{
	{p.ClusterNameCol, false, func(o *model.FilterOptions) *[]string { return &o.Clusters }},
	{p.NamespaceCol, false, func(o *model.FilterOptions) *[]string { return &o.Namespaces }},
	{p.EnvironmentCol, true, func(o *model.FilterOptions) *[]string { return &o.Environments }},
	{p.ApplicationNameCol, true, func(o *model.FilterOptions) *[]string { return &o.Applications }},
	{p.PoolIdCol, false, func(o *model.FilterOptions) *[]string { return &o.PoolIds }},
	{p.DataPlaneCol, true, func(o *model.FilterOptions) *[]string { return &o.DataPlanes }},
	{p.MotsIdCol, true, func(o *model.FilterOptions) *[]string { return &o.MotsIds }},
}

// GetFilterOptions lists the selectable values of every filter dimension within the date range of filter, along
// with the date bounds of the whole table. Dimension constraints in filter are ignored. All queries run
// concurrently and the first failure fails the whole call.
func (r *SqlMetricsRepository) GetFilterOptions(ctx *appcontext.Context, filter model.Filter) (*model.FilterOptions, error) {
	dateRange := p.Compile(filter.DateRangeOnly())
	options := &model.FilterOptions{}

	g, groupCtx := appcontext.ErrGroup(ctx)
	for _, oc := range optionColumns {
		oc := oc
		query := r.catalog.Build(catalog.DistinctValues(oc.column, oc.excludeNull), dateRange)
		target := oc.target(options)
		g.Go(func() error {
			values, err := r.distinctValues(groupCtx, query)
			if err != nil {
				return err
			}
			*target = values
			return nil
		})
	}
	g.Go(func() error {
		bounds, err := r.dateBounds(groupCtx)
		if err != nil {
			return err
		}
		options.DateRange = bounds
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return options, nil
}

func (r *SqlMetricsRepository) distinctValues(ctx *appcontext.Context, query *catalog.Query) ([]string, error) {
	values := []string{}
	err := execute(ctx, r.db, query, func(rows pgx.Rows) error {
		var value sql.NullString
		if err := rows.Scan(&value); err != nil {
			return err
		}
		if value.Valid && value.String != "" {
			values = append(values, value.String)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return values, nil
}

func (r *SqlMetricsRepository) dateBounds(ctx *appcontext.Context) (model.DateBounds, error) {
	query := r.catalog.Build(catalog.DateBounds, nil)
	bounds := model.DateBounds{}
	err := execute(ctx, r.db, query, func(rows pgx.Rows) error {
		var minDate, maxDate pgtype.Date
		if err := rows.Scan(&minDate, &maxDate); err != nil {
			return err
		}
		bounds.MinDate = fromPgDate(minDate)
		bounds.MaxDate = fromPgDate(maxDate)
		return nil
	})
	return bounds, err
}

// fromPgDate maps NULL and infinite dates to the unset Date.
func fromPgDate(date pgtype.Date) model.Date {
	if date.Status != pgtype.Present || date.InfinityModifier != pgtype.None {
		return model.Date{}
	}
	return model.DateOf(date.Time)
}
