package api

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wallet_http_requests_total",
			Help: "HTTP requests processed, partitioned by route, method and status code.",
		},
		[]string{"route", "method", "code"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "wallet_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds, partitioned by route.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route"},
	)

	transfersTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wallet_transfers_total",
			Help: "Transfer engine invocations, partitioned by kind and outcome.",
		},
		[]string{"kind", "outcome"},
	)
)

func observeTransfer(kind string, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	transfersTotal.WithLabelValues(kind, outcome).Inc()
}
