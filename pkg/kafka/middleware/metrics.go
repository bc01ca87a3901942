package kafka_middleware

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"comanda/pkg/kafka"
)

const (
	outcomeSuccess = "success"
	outcomeFailure = "failure"
)

// Metrics holds the Kafka collectors of one service.
type Metrics struct {
	MessagesPublished *prometheus.CounterVec
	PublishDuration   *prometheus.HistogramVec
	MessagesConsumed  *prometheus.CounterVec
	ConsumeDuration   *prometheus.HistogramVec
}

// NewMetrics registers the collectors on reg. Pass prometheus.NewRegistry() in tests.
func NewMetrics(reg prometheus.Registerer, service string) *Metrics {
	factory := promauto.With(reg)
	constLabels := prometheus.Labels{"service": service}

	return &Metrics{
		MessagesPublished: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   "comanda",
			Subsystem:   "kafka",
			Name:        "messages_published_total",
			Help:        "Kafka messages published, by topic, event type and outcome.",
			ConstLabels: constLabels,
		}, []string{"topic", "event_type", "outcome"}),
		PublishDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   "comanda",
			Subsystem:   "kafka",
			Name:        "publish_duration_seconds",
			Help:        "Time spent writing a Kafka message.",
			ConstLabels: constLabels,
			Buckets:     prometheus.DefBuckets,
		}, []string{"topic"}),
		MessagesConsumed: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   "comanda",
			Subsystem:   "kafka",
			Name:        "messages_consumed_total",
			Help:        "Kafka messages handled, by topic, event type and outcome.",
			ConstLabels: constLabels,
		}, []string{"topic", "event_type", "outcome"}),
		ConsumeDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   "comanda",
			Subsystem:   "kafka",
			Name:        "consume_duration_seconds",
			Help:        "Time spent handling a Kafka message.",
			ConstLabels: constLabels,
			Buckets:     prometheus.DefBuckets,
		}, []string{"topic"}),
	}
}

func (m *Metrics) ProducerMiddleware() kafka.ProducerMiddleware {
	return func(ctx context.Context, msg kafka.Message, next func(ctx context.Context, msg kafka.Message) error) error {
		start := time.Now()
		err := next(ctx, msg)

		m.PublishDuration.WithLabelValues(msg.Topic).Observe(time.Since(start).Seconds())
		m.MessagesPublished.WithLabelValues(msg.Topic, msg.GetEventType(), outcome(err)).Inc()
		return err
	}
}

func (m *Metrics) ConsumerMiddleware() kafka.ConsumerMiddleware {
	return func(ctx context.Context, msg kafka.Message, next kafka.MessageHandler) error {
		start := time.Now()
		err := next(ctx, msg)

		m.ConsumeDuration.WithLabelValues(msg.Topic).Observe(time.Since(start).Seconds())
		m.MessagesConsumed.WithLabelValues(msg.Topic, msg.GetEventType(), outcome(err)).Inc()
		return err
	}
}

func outcome(err error) string {
	if err != nil {
		return outcomeFailure
	}
	return outcomeSuccess
}
