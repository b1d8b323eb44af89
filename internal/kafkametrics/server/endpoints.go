package server

import (
	"github.com/G-Research/kafkametrics/internal/common/appcontext"
	"github.com/G-Research/kafkametrics/internal/kafkametrics/model"
)

type endpoint struct {
	path string
	// Completes "Failed to fetch ..." in error responses.
	description string
	run         func(ctx *appcontext.Context, req *metricsRequest) (interface{}, error)
}

func (s *Server) endpoints() []endpoint {
	return []endpoint{
		{
			path:        "/api/filter-options",
			description: "filter options",
			run: func(ctx *appcontext.Context, req *metricsRequest) (interface{}, error) {
				return s.repo.GetFilterOptions(ctx, req.Filters)
			},
		},
		{
			path:        "/api/metrics-summary",
			description: "summary",
			run: func(ctx *appcontext.Context, req *metricsRequest) (interface{}, error) {
				return s.repo.GetSummary(ctx, req.Filters)
			},
		},
		{
			path:        "/api/time-series",
			description: "time series",
			run: func(ctx *appcontext.Context, req *metricsRequest) (interface{}, error) {
				return s.repo.GetTimeSeries(ctx, req.Filters)
			},
		},
		{
			path:        "/api/top-applications",
			description: "top applications",
			run: func(ctx *appcontext.Context, req *metricsRequest) (interface{}, error) {
				return s.repo.GetTopApplications(ctx, req.Filters)
			},
		},
		{
			path:        "/api/environment-dist",
			description: "environment data",
			run: func(ctx *appcontext.Context, req *metricsRequest) (interface{}, error) {
				return s.repo.GetEnvironmentDistribution(ctx, req.Filters)
			},
		},
		{
			path:        "/api/cluster-comparison",
			description: "cluster data",
			run: func(ctx *appcontext.Context, req *metricsRequest) (interface{}, error) {
				return s.repo.GetClusterComparison(ctx, req.Filters)
			},
		},
		{
			path:        "/api/namespace-data",
			description: "namespace data",
			run: func(ctx *appcontext.Context, req *metricsRequest) (interface{}, error) {
				return s.repo.GetNamespaceData(ctx, req.Filters)
			},
		},
		{
			path:        "/api/table-data",
			description: "table data",
			run: func(ctx *appcontext.Context, req *metricsRequest) (interface{}, error) {
				return s.repo.GetTableData(ctx, req.Filters, s.page(req))
			},
		},
		{
			path:        "/api/application-performance",
			description: "application performance",
			run: func(ctx *appcontext.Context, req *metricsRequest) (interface{}, error) {
				return s.repo.GetApplicationPerformance(ctx, req.Filters)
			},
		},
		{
			path:        "/api/mots-grouping",
			description: "MOTS grouping",
			run: func(ctx *appcontext.Context, req *metricsRequest) (interface{}, error) {
				return s.repo.GetMotsGrouping(ctx, req.Filters)
			},
		},
		{
			path:        "/api/dashboard",
			description: "dashboard",
			run: func(ctx *appcontext.Context, req *metricsRequest) (interface{}, error) {
				return s.dashboard(ctx, req)
			},
		},
	}
}

// dashboard runs every aggregation for one filter concurrently. Any failure fails the whole dashboard.
func (s *Server) dashboard(ctx *appcontext.Context, req *metricsRequest) (*model.Dashboard, error) {
	filter := req.Filters
	page := s.page(req)
	d := &model.Dashboard{}
	g, ctx := appcontext.ErrGroup(ctx)

	g.Go(func() (err error) {
		d.Summary, err = s.repo.GetSummary(ctx, filter)
		return err
	})
	g.Go(func() (err error) {
		d.TimeSeries, err = s.repo.GetTimeSeries(ctx, filter)
		return err
	})
	g.Go(func() (err error) {
		d.TopApplications, err = s.repo.GetTopApplications(ctx, filter)
		return err
	})
	g.Go(func() (err error) {
		d.EnvironmentDistribution, err = s.repo.GetEnvironmentDistribution(ctx, filter)
		return err
	})
	g.Go(func() (err error) {
		d.ClusterComparison, err = s.repo.GetClusterComparison(ctx, filter)
		return err
	})
	g.Go(func() (err error) {
		d.NamespaceData, err = s.repo.GetNamespaceData(ctx, filter)
		return err
	})
	g.Go(func() (err error) {
		d.TableData, err = s.repo.GetTableData(ctx, filter, page)
		return err
	})
	g.Go(func() (err error) {
		d.ApplicationPerformance, err = s.repo.GetApplicationPerformance(ctx, filter)
		return err
	})
	g.Go(func() (err error) {
		d.MotsGrouping, err = s.repo.GetMotsGrouping(ctx, filter)
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return d, nil
}
