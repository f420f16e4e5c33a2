// Package metrics exposes Prometheus counters for the order pipeline.
//
// Wire it up once in cmd/main.go:
//
//	app.Get("/metrics", adaptor.HTTPHandler(metrics.Handler()))
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Order outcome labels.
const (
	OutcomePlaced             = "placed"
	OutcomeMealUnavailable    = "meal_unavailable"
	OutcomeInsufficientTokens = "insufficient_tokens"
	OutcomeError              = "error"
)

var (
	// OrdersPlaced counts order placement attempts by outcome.
	OrdersPlaced = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "mealbridge",
			Subsystem: "orders",
			Name:      "placed_total",
			Help:      "Order placement attempts by outcome.",
		},
		[]string{"outcome"},
	)

	// OrdersAccepted counts successful pending→accepted transitions.
	OrdersAccepted = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "mealbridge",
		Subsystem: "orders",
		Name:      "accepted_total",
		Help:      "Orders accepted by their member.",
	})
)

// Handler returns the Prometheus exposition endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}
