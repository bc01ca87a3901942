//go:build integration

package testutil

import (
	"context"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"comanda/pkg/client"
	"comanda/pkg/logger"
)

const (
	DefaultMongoURI     = "mongodb://localhost:27017"
	DefaultDatabaseName = "comanda"
	ConnectionTimeout   = 10 * time.Second

	CustomersCollection = "Customers"
	OrdersCollection    = "Orders"
)

// MongoHelper gives tests direct access to the database behind the services.
type MongoHelper struct {
	Database *mongo.Database
	client   *client.Client
}

func NewMongoHelper(t *testing.T, mongoURI, dbName string) *MongoHelper {
	t.Helper()

	testLogger := logger.New(logger.Config{
		Service: "integration-tests",
		Level:   "warn",
	})

	c := client.NewClient()
	c.SetMongo(testLogger, mongoURI, ConnectionTimeout)

	return &MongoHelper{
		Database: c.Mongo.Database(dbName),
		client:   c,
	}
}

func (m *MongoHelper) Close(t *testing.T) {
	t.Helper()
	m.client.GracefulShutdown()
}

// CleanDatabase empties the service collections. Documents are deleted rather
// than collections dropped so migrated validators and indexes survive.
func (m *MongoHelper) CleanDatabase(t *testing.T) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), ConnectionTimeout)
	defer cancel()

	for _, name := range []string{CustomersCollection, OrdersCollection} {
		if _, err := m.Database.Collection(name).DeleteMany(ctx, bson.M{}); err != nil {
			t.Fatalf("failed to clean collection %s: %v", name, err)
		}
	}
}

func (m *MongoHelper) CountDocuments(t *testing.T, collectionName string, filter bson.M) int64 {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if filter == nil {
		filter = bson.M{}
	}
	count, err := m.Database.Collection(collectionName).CountDocuments(ctx, filter)
	if err != nil {
		t.Fatalf("failed to count documents in %s: %v", collectionName, err)
	}
	return count
}

// FindOne decodes the first document matching filter into out.
func (m *MongoHelper) FindOne(t *testing.T, collectionName string, filter bson.M, out any) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := m.Database.Collection(collectionName).FindOne(ctx, filter).Decode(out); err != nil {
		t.Fatalf("failed to find document in %s: %v", collectionName, err)
	}
}
