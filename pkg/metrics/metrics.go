package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Process-level counters for the matching engine. Exposition is up to the
// embedding process; the engine only increments.
var (
	OrdersSubmittedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "matchcore_orders_submitted_total",
			Help: "Total order intents accepted into the matching pipeline",
		},
		[]string{"instrument", "side", "kind"},
	)

	OrdersRejectedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "matchcore_orders_rejected_total",
			Help: "Total orders rejected by the fill-or-kill admission gate",
		},
		[]string{"instrument"},
	)

	OrdersCanceledTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "matchcore_orders_canceled_total",
			Help: "Total resting orders removed by cancellation",
		},
		[]string{"instrument"},
	)

	TradesExecutedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "matchcore_trades_executed_total",
			Help: "Total fills produced by the matching walk",
		},
		[]string{"instrument"},
	)

	TradedQuantityTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "matchcore_traded_quantity_total",
			Help: "Total quantity exchanged across all fills",
		},
		[]string{"instrument"},
	)
)
