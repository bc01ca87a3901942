package service

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	outcomeValid    = "valid"
	outcomeInvalid  = "invalid"
	outcomeComplete = "complete"
	outcomePartial  = "partial"
)

type Metrics struct {
	customersCreated prometheus.Counter
	ordersRecorded   prometheus.Counter
	cpfChecks        *prometheus.CounterVec
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		customersCreated: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "comanda",
			Subsystem: "customers",
			Name:      "created_total",
			Help:      "Customers registered.",
		}),
		ordersRecorded: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "comanda",
			Subsystem: "customers",
			Name:      "orders_recorded_total",
			Help:      "Orders attributed to a registered customer.",
		}),
		cpfChecks: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "comanda",
			Subsystem: "customers",
			Name:      "cpf_checks_total",
			Help:      "CPF format, validate and lookup calls, by outcome.",
		}, []string{"operation", "outcome"}),
	}
}
