package metrics

import (
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
)

var dbTotalConnectionsDesc = prometheus.NewDesc(
	MetricPrefix+"db_total_connections",
	"Number of connections currently held by the pool",
	nil,
	nil,
)

var dbIdleConnectionsDesc = prometheus.NewDesc(
	MetricPrefix+"db_idle_connections",
	"Number of idle connections in the pool",
	nil,
	nil,
)

var dbAcquiredConnectionsDesc = prometheus.NewDesc(
	MetricPrefix+"db_acquired_connections",
	"Number of connections currently in use",
	nil,
	nil,
)

var dbOpenConnectionsUtilizationDesc = prometheus.NewDesc(
	MetricPrefix+"db_open_connections_utilization",
	"Fraction of the maximum pool size currently in use",
	nil,
	nil,
)

// PoolStats is satisfied by *pgxpool.Stat.
type PoolStats interface {
	TotalConns() int32
	IdleConns() int32
	AcquiredConns() int32
	MaxConns() int32
}

type DbCollector struct {
	stats func() PoolStats
}

func NewDbCollector(stats func() PoolStats) *DbCollector {
	return &DbCollector{stats: stats}
}

func NewPoolCollector(pool *pgxpool.Pool) *DbCollector {
	return NewDbCollector(func() PoolStats { return pool.Stat() })
}

func (c *DbCollector) Describe(desc chan<- *prometheus.Desc) {
	desc <- dbTotalConnectionsDesc
	desc <- dbIdleConnectionsDesc
	desc <- dbAcquiredConnectionsDesc
	desc <- dbOpenConnectionsUtilizationDesc
}

func (c *DbCollector) Collect(metrics chan<- prometheus.Metric) {
	stats := c.stats()
	metrics <- prometheus.MustNewConstMetric(dbTotalConnectionsDesc, prometheus.GaugeValue, float64(stats.TotalConns()))
	metrics <- prometheus.MustNewConstMetric(dbIdleConnectionsDesc, prometheus.GaugeValue, float64(stats.IdleConns()))
	metrics <- prometheus.MustNewConstMetric(dbAcquiredConnectionsDesc, prometheus.GaugeValue, float64(stats.AcquiredConns()))

	utilization := float64(stats.AcquiredConns())
	if stats.MaxConns() > 0 {
		utilization = utilization / float64(stats.MaxConns())
	}
	metrics <- prometheus.MustNewConstMetric(dbOpenConnectionsUtilizationDesc, prometheus.GaugeValue, utilization)
}
