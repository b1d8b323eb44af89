package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const MetricPrefix = "kafkametrics_"

var RequestsTotalCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
	Name: MetricPrefix + "requests_total",
	Help: "Total number of incoming requests",
}, []string{"endpoint", "code"})

var RequestDurationHistogram = prometheus.NewHistogramVec(prometheus.HistogramOpts{
	Name:    MetricPrefix + "request_duration_seconds",
	Help:    "Time taken to serve a request",
	Buckets: prometheus.DefBuckets,
}, []string{"endpoint"})

var QueryDurationHistogram = prometheus.NewHistogramVec(prometheus.HistogramOpts{
	Name:    MetricPrefix + "query_duration_seconds",
	Help:    "Time taken to execute a database query",
	Buckets: prometheus.ExponentialBuckets(0.005, 2, 12),
}, []string{"query"})

var QueryFailuresCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
	Name: MetricPrefix + "query_failures_total",
	Help: "Number of database queries that returned an error",
}, []string{"query", "sqlstate"})

// Register adds every collector of this package, plus the supplied extra collectors, to registerer.
func Register(registerer prometheus.Registerer, extra ...prometheus.Collector) error {
	collectors := []prometheus.Collector{
		RequestsTotalCounter,
		RequestDurationHistogram,
		QueryDurationHistogram,
		QueryFailuresCounter,
	}
	for _, c := range append(collectors, extra...) {
		if err := registerer.Register(c); err != nil {
			return err
		}
	}
	return nil
}
