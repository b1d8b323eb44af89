package model

type DateRange struct {
	Start Date `json:"start"`
	End   Date `json:"end"`
}

// Filter scopes which metric rows take part in a query. A nil or empty list places no
// constraint on its dimension.
type Filter struct {
	DateRange    DateRange `json:"dateRange"`
	Clusters     []string  `json:"clusters"`
	Namespaces   []string  `json:"namespaces"`
	Environments []string  `json:"environments"`
	Applications []string  `json:"applications"`
	PoolIds      []string  `json:"poolIds"`
	DataPlanes   []string  `json:"dataPlanes"`
	MotsIds      []string  `json:"motsIds"`
}

// DateRangeOnly returns a filter holding just the date range of f.
func (f Filter) DateRangeOnly() Filter {
	return Filter{DateRange: f.DateRange}
}

type MetricRecord struct {
	MetricDate      Date     `json:"metric_date"`
	ClusterName     *string  `json:"cluster_name"`
	Namespace       *string  `json:"namespace"`
	DataPlane       *string  `json:"data_plane"`
	Environment     *string  `json:"environment"`
	ApplicationName *string  `json:"application_name"`
	Owners          []string `json:"owners"`
	Stakeholders    []string `json:"stakeholders"`
	MotsId          *string  `json:"mots_id"`
	ConsumedBytes   *string  `json:"consumedbytes"`
	ProducedBytes   *string  `json:"producedbytes"`
	PoolId          *string  `json:"pool_id"`
}

// Byte sums are decimal strings so that they survive transport without precision loss.

type Summary struct {
	TotalConsumed      string `json:"total_consumed"`
	TotalProduced      string `json:"total_produced"`
	ActiveApplications int64  `json:"active_applications"`
	ActiveClusters     int64  `json:"active_clusters"`
}

type TimeSeriesPoint struct {
	MetricDate Date   `json:"metric_date"`
	Consumed   string `json:"consumed"`
	Produced   string `json:"produced"`
}

type ApplicationVolume struct {
	ApplicationName *string `json:"application_name"`
	Consumed        string  `json:"consumed"`
	Produced        string  `json:"produced"`
}

type EnvironmentVolume struct {
	Environment *string `json:"environment"`
	TotalBytes  string  `json:"total_bytes"`
}

type ClusterVolume struct {
	ClusterName *string `json:"cluster_name"`
	Consumed    string  `json:"consumed"`
	Produced    string  `json:"produced"`
}

type NamespaceVolume struct {
	Namespace  *string `json:"namespace"`
	TotalBytes string  `json:"total_bytes"`
}

type DetailPage struct {
	Data       []*MetricRecord `json:"data"`
	Total      int64           `json:"total"`
	Page       int             `json:"page"`
	PageSize   int             `json:"pageSize"`
	TotalPages int64           `json:"totalPages"`
}

type ApplicationPerformance struct {
	ApplicationName *string `json:"application_name"`
	Environment     *string `json:"environment"`
	ClusterName     *string `json:"cluster_name"`
	TotalConsumed   string  `json:"total_consumed"`
	TotalProduced   string  `json:"total_produced"`
	ActiveDays      int64   `json:"active_days"`
	AvgDailyVolume  string  `json:"avg_daily_volume"`
}

type MotsGroup struct {
	MotsId          *string `json:"mots_id"`
	ApplicationName *string `json:"application_name"`
	Environment     *string `json:"environment"`
	ClusterName     *string `json:"cluster_name"`
	TotalConsumed   string  `json:"total_consumed"`
	TotalProduced   string  `json:"total_produced"`
	ActiveDays      int64   `json:"active_days"`
}

type DateBounds struct {
	MinDate Date `json:"minDate"`
	MaxDate Date `json:"maxDate"`
}

type FilterOptions struct {
	Clusters     []string   `json:"clusters"`
	Namespaces   []string   `json:"namespaces"`
	Environments []string   `json:"environments"`
	Applications []string   `json:"applications"`
	PoolIds      []string   `json:"poolIds"`
	DataPlanes   []string   `json:"dataPlanes"`
	MotsIds      []string   `json:"motsIds"`
	DateRange    DateBounds `json:"dateRange"`
}

// Dashboard bundles every aggregation view for one filter.
type Dashboard struct {
	Summary                 *Summary                  `json:"summary"`
	TimeSeries              []*TimeSeriesPoint        `json:"timeSeries"`
	TopApplications         []*ApplicationVolume      `json:"topApplications"`
	EnvironmentDistribution []*EnvironmentVolume      `json:"environmentDistribution"`
	ClusterComparison       []*ClusterVolume          `json:"clusterComparison"`
	NamespaceData           []*NamespaceVolume        `json:"namespaceData"`
	TableData               *DetailPage               `json:"tableData"`
	ApplicationPerformance  []*ApplicationPerformance `json:"applicationPerformance"`
	MotsGrouping            []*MotsGroup              `json:"motsGrouping"`
}
