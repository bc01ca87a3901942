package main

import (
	"comanda/internal/customers/events"
	"comanda/internal/customers/handler"
	"comanda/internal/customers/repository"
	"comanda/internal/customers/service"
	"comanda/internal/customers/validator"
	"comanda/pkg/app"
	"comanda/pkg/config"
	"comanda/pkg/kafka"
	kafka_middleware "comanda/pkg/kafka/middleware"
)

const ServiceName = "customers"

func main() {
	cfg := config.Load(ServiceName)

	if err := cfg.Validate(); err != nil {
		cfg.Log.Fatal("Invalid configuration", "error", err)
	}
	cfg.LogConfiguration()

	cfg.Log.Info("Starting Customers service")
	cfg.SetMongo()

	serverApp := app.NewApplication(cfg)
	var kafkaMetrics *kafka_middleware.Metrics
	if cfg.KafkaEnabled && cfg.Kafka.EnableMiddleware {
		kafkaMetrics = kafka_middleware.NewMetrics(serverApp.Registry(), ServiceName)
	}

	publisher := initPublisher(serverApp, cfg, kafkaMetrics)
	customerService := initServices(serverApp, cfg, publisher)
	initOrderEventsConsumer(serverApp, cfg, customerService, kafkaMetrics)

	serverApp.SetApp(handler.NewCustomerHandler(customerService, cfg.Log))
	serverApp.Run()
}

func initServices(serverApp *app.Application, cfg *config.Config, publisher kafka.Publisher) service.CustomerService {
	customerValidator := validator.NewCustomerValidator(cfg.Log)
	customerRepo := repository.NewMongoCustomerRepository(cfg)
	customerService := service.NewCustomerService(
		customerRepo,
		customerValidator,
		publisher,
		service.NewMetrics(serverApp.Registry()),
		cfg,
	)

	cfg.Log.Info("Customer service initialized", "database", cfg.MongoDatabaseName)
	return customerService
}

func initPublisher(serverApp *app.Application, cfg *config.Config, metrics *kafka_middleware.Metrics) kafka.Publisher {
	if !cfg.KafkaEnabled {
		cfg.Log.Info("Kafka disabled, customer events will not be published")
		return kafka.NopPublisher{}
	}

	producer, err := kafka.NewProducer(cfg.Kafka, cfg.CustomersTopic, cfg.Kafka.DLQTopic(cfg.CustomersTopic), cfg.Log)
	if err != nil {
		cfg.Log.Fatal("Failed to create Kafka producer", "topic", cfg.CustomersTopic, "error", err)
	}
	for _, m := range kafka_middleware.ProducerChain(cfg.Kafka, cfg.Log, metrics) {
		producer.Use(m)
	}

	serverApp.AddCloser("kafka-producer", producer)
	return producer
}

func initOrderEventsConsumer(serverApp *app.Application, cfg *config.Config, customerService service.CustomerService, metrics *kafka_middleware.Metrics) {
	if !cfg.KafkaEnabled {
		return
	}

	orderEvents := events.NewOrderEventsHandler(customerService, cfg.Log)
	consumer, err := kafka.NewConsumer(
		cfg.Kafka,
		cfg.OrdersTopic,
		cfg.ServiceName,
		cfg.Kafka.DLQTopic(cfg.OrdersTopic),
		orderEvents.Handle,
		cfg.Log,
	)
	if err != nil {
		cfg.Log.Fatal("Failed to create Kafka consumer", "topic", cfg.OrdersTopic, "error", err)
	}
	for _, m := range kafka_middleware.ConsumerChain(cfg.Kafka, cfg.Log, metrics) {
		consumer.Use(m)
	}

	serverApp.AddWorker(consumer.Start)
	serverApp.AddCloser("kafka-consumer", consumer)
}
