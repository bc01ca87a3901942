package main

import (
	"comanda/internal/orders/handler"
	"comanda/internal/orders/repository"
	"comanda/internal/orders/service"
	"comanda/internal/orders/validator"
	"comanda/pkg/app"
	"comanda/pkg/config"
	"comanda/pkg/kafka"
	kafka_middleware "comanda/pkg/kafka/middleware"
	"comanda/pkg/sealer"
)

const ServiceName = "orders"

func main() {
	cfg := config.Load(ServiceName)

	if err := cfg.Validate(); err != nil {
		cfg.Log.Fatal("Invalid configuration", "error", err)
	}
	cfg.LogConfiguration()

	cfg.Log.Info("Starting Orders service")
	cfg.SetMongo()
	cfg.SetCustomerClient()

	serverApp := app.NewApplication(cfg)
	publisher := initPublisher(serverApp, cfg)
	orderService := initServices(serverApp, cfg, publisher)

	serverApp.SetApp(handler.NewOrderHandler(orderService, cfg.Log))
	serverApp.Run()
}

func initServices(serverApp *app.Application, cfg *config.Config, publisher kafka.Publisher) service.OrderService {
	trackingSealer, err := sealer.New(cfg.TrackingKey)
	if err != nil {
		cfg.Log.Fatal("Invalid tracking key", "error", err)
	}
	if cfg.TrackingKey == config.DefaultTrackingKey {
		cfg.Log.Warn("Using the default tracking key, tracking tokens are forgeable")
	}

	orderValidator := validator.NewOrderValidator(cfg.Log)
	orderRepo := repository.NewMongoOrderRepository(cfg)
	orderService := service.NewOrderService(
		orderRepo,
		orderValidator,
		cfg.Client.Customers,
		publisher,
		trackingSealer,
		service.NewMetrics(serverApp.Registry()),
		cfg,
	)

	cfg.Log.Info("Order service initialized",
		"database", cfg.MongoDatabaseName,
		"customers_base_url", cfg.CustomersBaseURL,
	)
	return orderService
}

func initPublisher(serverApp *app.Application, cfg *config.Config) kafka.Publisher {
	if !cfg.KafkaEnabled {
		cfg.Log.Info("Kafka disabled, order events will not be published")
		return kafka.NopPublisher{}
	}

	producer, err := kafka.NewProducer(cfg.Kafka, cfg.OrdersTopic, cfg.Kafka.DLQTopic(cfg.OrdersTopic), cfg.Log)
	if err != nil {
		cfg.Log.Fatal("Failed to create Kafka producer", "topic", cfg.OrdersTopic, "error", err)
	}
	var metrics *kafka_middleware.Metrics
	if cfg.Kafka.EnableMiddleware {
		metrics = kafka_middleware.NewMetrics(serverApp.Registry(), ServiceName)
	}
	for _, m := range kafka_middleware.ProducerChain(cfg.Kafka, cfg.Log, metrics) {
		producer.Use(m)
	}

	serverApp.AddCloser("kafka-producer", producer)
	return producer
}
