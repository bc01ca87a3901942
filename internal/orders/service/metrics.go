package service

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	lookupFound    = "found"
	lookupNotFound = "not_found"
	lookupError    = "error"
)

type Metrics struct {
	ordersCreated   *prometheus.CounterVec
	orderValue      prometheus.Histogram
	statusChanges   *prometheus.CounterVec
	customerLookups *prometheus.CounterVec
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		ordersCreated: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "comanda",
			Subsystem: "orders",
			Name:      "created_total",
			Help:      "Orders placed, by currency.",
		}, []string{"currency"}),
		orderValue: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: "comanda",
			Subsystem: "orders",
			Name:      "value_cents",
			Help:      "Order totals in minor currency units.",
			Buckets:   prometheus.ExponentialBuckets(500, 2, 10),
		}),
		statusChanges: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "comanda",
			Subsystem: "orders",
			Name:      "status_changes_total",
			Help:      "Order status transitions, by target status.",
		}, []string{"to"}),
		customerLookups: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "comanda",
			Subsystem: "orders",
			Name:      "customer_lookups_total",
			Help:      "CPF lookups against the customers service, by outcome.",
		}, []string{"outcome"}),
	}
}
