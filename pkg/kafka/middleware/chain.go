package kafka_middleware

import (
	"comanda/pkg/kafka"
	kafka_config "comanda/pkg/kafka/config"
	"comanda/pkg/logger"
)

// ProducerChain lists the middleware a producer should install, outermost
// first. It is empty when cfg.EnableMiddleware is off; a nil metrics skips the
// metrics step.
func ProducerChain(cfg *kafka_config.Config, log *logger.Logger, metrics *Metrics) []kafka.ProducerMiddleware {
	if cfg == nil || !cfg.EnableMiddleware {
		return nil
	}

	chain := []kafka.ProducerMiddleware{LoggingProducerMiddleware(log)}
	if metrics != nil {
		chain = append(chain, metrics.ProducerMiddleware())
	}
	return chain
}

// ConsumerChain is ProducerChain for consumers.
func ConsumerChain(cfg *kafka_config.Config, log *logger.Logger, metrics *Metrics) []kafka.ConsumerMiddleware {
	if cfg == nil || !cfg.EnableMiddleware {
		return nil
	}

	chain := []kafka.ConsumerMiddleware{LoggingConsumerMiddleware(log)}
	if metrics != nil {
		chain = append(chain, metrics.ConsumerMiddleware())
	}
	return chain
}
