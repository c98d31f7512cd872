package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// PushTotal считает попытки доставки по драйверу и результату (success, failure, skipped).
	PushTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hub_notifier_push_total",
			Help: "Total number of push deliveries by driver and result.",
		},
		[]string{"driver", "result"},
	)

	// TokenExchangeTotal считает обмены JWT-assertion на access token.
	TokenExchangeTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hub_notifier_token_exchange_total",
			Help: "Total number of OAuth2 access token exchanges by status.",
		},
		[]string{"status"},
	)

	// PushJobsTotal считает задания очереди по результату (published, processed, rejected).
	PushJobsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hub_notifier_push_jobs_total",
			Help: "Total number of queued push jobs by outcome.",
		},
		[]string{"outcome"},
	)
)

const (
	ResultSuccess = "success"
	ResultFailure = "failure"
	ResultSkipped = "skipped"
)
