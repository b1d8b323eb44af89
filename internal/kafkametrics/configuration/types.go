package configuration

import (
	"time"

	log "github.com/sirupsen/logrus"
)

type KafkaMetricsConfig struct {
	ApiPort     uint16 `validate:"required"`
	MetricsPort uint16

	CorsAllowedOrigins []string
	LogLevel           log.Level

	// Page size used by the table endpoint when the request does not carry one.
	DefaultPageSize int `validate:"gte=1,ltefield=MaxPageSize"`
	MaxPageSize     int `validate:"gte=1"`

	// How long filter options are cached per date range. Zero disables the cache.
	FilterOptionsCacheTTL time.Duration

	// Maximum time to wait for in-flight requests when shutting down.
	ShutdownTimeout time.Duration

	Table    TableConfig
	Postgres PostgresConfig
}

type TableConfig struct {
	Schema string
	Name   string `validate:"required"`
}

type PostgresConfig struct {
	MaxConns        int32
	MinConns        int32
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
	// Bounds the initial connect and ping.
	ConnectTimeout time.Duration
	Connection     map[string]string `validate:"required"`
}
