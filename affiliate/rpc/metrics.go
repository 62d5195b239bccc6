package rpc

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Swap cycle counters, served through the /metrics endpoint.
var (
	swapsStarted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "affiliate_swaps_started_total",
		Help: "Swap requests accepted for orchestration",
	})
	swapsCompleted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "affiliate_swaps_completed_total",
		Help: "Swap cycles that completed and paid out",
	})
	swapsFailed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "affiliate_swaps_failed_total",
		Help: "Swap requests rejected or failed during the cycle",
	})
	feesCharged = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "affiliate_fees_charged_total",
		Help: "Affiliate fee amounts paid out, by denom",
	}, []string{"denom"})
)
