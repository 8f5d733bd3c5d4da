package pkg

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const MetricsNamespace = "payment_gateway"

var errorResponsesTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: MetricsNamespace,
		Name:      "error_responses_total",
		Help:      "Total number of error responses emitted by the error responder",
	},
	[]string{"status", "kind"},
)
