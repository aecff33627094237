package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	FetchErrCount = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "bsa",
		Subsystem: "api",
		Name:      "fetch_err_count",
	}, []string{"collection"})
	FetchDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "bsa",
		Subsystem: "api",
		Name:      "fetch_duration",
	}, []string{"collection"})
	PgErrCount = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "bsa",
		Subsystem: "pg",
		Name:      "pg_err_count",
	}, []string{"method"})
	PgDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "bsa",
		Subsystem: "pg",
		Name:      "pg_duration",
	}, []string{"method"})
	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "bsa",
		Subsystem: "http",
		Name:      "requests_total",
	}, []string{"route", "status"})
)
