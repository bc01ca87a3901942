//go:build integration

package testutil

import (
	"os"
	"testing"
	"time"

	"comanda/pkg/client"
)

const (
	DefaultCustomersURL       = "http://localhost:8081"
	DefaultOrdersURL          = "http://localhost:8080"
	DefaultHealthCheckTimeout = 30 * time.Second
)

type TestEnv struct {
	MongoURI     string
	DatabaseName string
	CustomersURL string
	OrdersURL    string
	SigningKey   string
}

func NewTestEnv() *TestEnv {
	return &TestEnv{
		MongoURI:     getEnv("TEST_MONGO_URI", DefaultMongoURI),
		DatabaseName: getEnv("TEST_DB_NAME", DefaultDatabaseName),
		CustomersURL: getEnv("TEST_CUSTOMERS_URL", DefaultCustomersURL),
		OrdersURL:    getEnv("TEST_ORDERS_URL", DefaultOrdersURL),
		SigningKey:   os.Getenv("TEST_WEBHOOK_SECRET"),
	}
}

// Customers connects to Mongo, clears it and waits for the customers service.
func (e *TestEnv) Customers(t *testing.T) (*MongoHelper, *client.CustomerClient) {
	t.Helper()

	mongo := e.mongo(t)
	customers := client.NewCustomerClient(e.CustomersURL)
	e.prepare(t, customers.HTTP())
	return mongo, customers
}

// Orders is like Customers but also returns an orders client.
func (e *TestEnv) Orders(t *testing.T) (*MongoHelper, *client.CustomerClient, *client.OrderClient) {
	t.Helper()

	mongo, customers := e.Customers(t)
	orders := client.NewOrderClient(e.OrdersURL)
	e.prepare(t, orders.HTTP())
	return mongo, customers, orders
}

func (e *TestEnv) mongo(t *testing.T) *MongoHelper {
	t.Helper()

	mongo := NewMongoHelper(t, e.MongoURI, e.DatabaseName)
	mongo.CleanDatabase(t)
	t.Cleanup(func() {
		mongo.CleanDatabase(t)
		mongo.Close(t)
	})
	return mongo
}

func (e *TestEnv) prepare(t *testing.T, c *client.HttpClient) {
	t.Helper()

	if e.SigningKey != "" {
		c.WithSigningSecret(e.SigningKey)
	}
	if err := c.WaitForHealthy(DefaultHealthCheckTimeout); err != nil {
		t.Fatalf("service at %s is not healthy: %v", c.BaseURL, err)
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
