package catalog

import (
	"fmt"

	p "github.com/G-Research/kafkametrics/internal/kafkametrics/predicate"
)

const (
	TopApplicationsLimit        = 10
	ApplicationPerformanceLimit = 20

	consumedSum = "COALESCE(SUM(consumedbytes), 0)"
	producedSum = "COALESCE(SUM(producedbytes), 0)"
	totalSum    = "COALESCE(SUM(consumedbytes + producedbytes), 0)"
	combinedSum = "(" + consumedSum + " + " + producedSum + ")"
	volumeSum   = "SUM(consumedbytes + producedbytes)"
)

func asText(expr, alias string) string {
	return fmt.Sprintf("%s::text AS %s", expr, alias)
}

func asc(col string) string {
	return col + " ASC"
}

func ascNullsLast(col string) string {
	return col + " ASC NULLS LAST"
}

func desc(expr string) string {
	return expr + " DESC"
}

var Summary = &Template{
	Name: "Summary",
	Select: []string{
		asText(consumedSum, "total_consumed"),
		asText(producedSum, "total_produced"),
		fmt.Sprintf("COUNT(DISTINCT %s) AS active_applications", p.ApplicationNameCol),
		fmt.Sprintf("COUNT(DISTINCT %s) AS active_clusters", p.ClusterNameCol),
	},
}

var TimeSeries = &Template{
	Name: "TimeSeries",
	Select: []string{
		p.MetricDateCol,
		asText(consumedSum, "consumed"),
		asText(producedSum, "produced"),
	},
	GroupBy: []string{p.MetricDateCol},
	OrderBy: []string{asc(p.MetricDateCol)},
}

var TopApplications = &Template{
	Name: "TopApplications",
	Select: []string{
		p.ApplicationNameCol,
		asText(consumedSum, "consumed"),
		asText(producedSum, "produced"),
	},
	GroupBy: []string{p.ApplicationNameCol},
	OrderBy: []string{desc(combinedSum), ascNullsLast(p.ApplicationNameCol)},
	Limit:   TopApplicationsLimit,
}

// NULL environments form their own group here; only the filter options hide them.
var EnvironmentDistribution = &Template{
	Name: "EnvironmentDistribution",
	Select: []string{
		p.EnvironmentCol,
		asText(totalSum, "total_bytes"),
	},
	GroupBy: []string{p.EnvironmentCol},
	OrderBy: []string{desc(totalSum), ascNullsLast(p.EnvironmentCol)},
}

var ClusterComparison = &Template{
	Name: "ClusterComparison",
	Select: []string{
		p.ClusterNameCol,
		asText(consumedSum, "consumed"),
		asText(producedSum, "produced"),
	},
	GroupBy: []string{p.ClusterNameCol},
	OrderBy: []string{desc(combinedSum), ascNullsLast(p.ClusterNameCol)},
}

var NamespaceData = &Template{
	Name: "NamespaceData",
	Select: []string{
		p.NamespaceCol,
		asText(totalSum, "total_bytes"),
	},
	GroupBy: []string{p.NamespaceCol},
	OrderBy: []string{desc(totalSum), ascNullsLast(p.NamespaceCol)},
}

var DetailCount = &Template{
	Name:   "DetailCount",
	Select: []string{"COUNT(*) AS total"},
}

// DetailPage must be rendered with Catalog.BuildPage.
var DetailPage = &Template{
	Name: "DetailPage",
	Select: []string{
		p.MetricDateCol,
		p.ClusterNameCol,
		p.NamespaceCol,
		p.DataPlaneCol,
		p.EnvironmentCol,
		p.ApplicationNameCol,
		"owners",
		"stakeholders",
		p.MotsIdCol,
		asText("consumedbytes", "consumedbytes"),
		asText("producedbytes", "producedbytes"),
		p.PoolIdCol,
	},
	OrderBy: []string{
		desc(p.MetricDateCol),
		ascNullsLast(p.ClusterNameCol),
		ascNullsLast(p.NamespaceCol),
		ascNullsLast(p.ApplicationNameCol),
	},
}

var ApplicationPerformance = &Template{
	Name: "ApplicationPerformance",
	Select: []string{
		p.ApplicationNameCol,
		p.EnvironmentCol,
		p.ClusterNameCol,
		asText(consumedSum, "total_consumed"),
		asText(producedSum, "total_produced"),
		fmt.Sprintf("COUNT(DISTINCT %s) AS active_days", p.MetricDateCol),
		asText("AVG(consumedbytes + producedbytes)", "avg_daily_volume"),
	},
	GroupBy: []string{p.ApplicationNameCol, p.EnvironmentCol, p.ClusterNameCol},
	Having:  volumeSum + " > 0",
	OrderBy: []string{
		desc(volumeSum),
		ascNullsLast(p.ApplicationNameCol),
		ascNullsLast(p.EnvironmentCol),
		ascNullsLast(p.ClusterNameCol),
	},
	Limit: ApplicationPerformanceLimit,
}

var MotsGrouping = &Template{
	Name: "MotsGrouping",
	Select: []string{
		p.MotsIdCol,
		p.ApplicationNameCol,
		p.EnvironmentCol,
		p.ClusterNameCol,
		asText(consumedSum, "total_consumed"),
		asText(producedSum, "total_produced"),
		fmt.Sprintf("COUNT(DISTINCT %s) AS active_days", p.MetricDateCol),
	},
	GroupBy: []string{p.MotsIdCol, p.ApplicationNameCol, p.EnvironmentCol, p.ClusterNameCol},
	Having:  volumeSum + " > 0",
	OrderBy: []string{
		ascNullsLast(p.MotsIdCol),
		desc(volumeSum),
		ascNullsLast(p.ApplicationNameCol),
		ascNullsLast(p.EnvironmentCol),
		ascNullsLast(p.ClusterNameCol),
	},
}

// DateBounds is the absolute selectable range, so it never takes a filter.
var DateBounds = &Template{
	Name: "DateBounds",
	Select: []string{
		fmt.Sprintf("MIN(%s) AS min_date", p.MetricDateCol),
		fmt.Sprintf("MAX(%s) AS max_date", p.MetricDateCol),
	},
	Unfiltered: true,
}

// DistinctValues lists the values of one column, ascending, optionally leaving out NULL.
func DistinctValues(column string, excludeNull bool) *Template {
	t := &Template{
		Name:     "DistinctValues:" + column,
		Distinct: true,
		Select:   []string{column},
		OrderBy:  []string{column},
	}
	if excludeNull {
		t.Conditions = []string{column + " IS NOT NULL"}
	}
	return t
}
