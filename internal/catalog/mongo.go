package catalog

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"shelflift/internal/config"
	"shelflift/internal/types"
)

// MongoMirror replicates enriched products into a MongoDB collection so
// other systems can query the catalog without touching the JSON artifacts.
// It is strictly an additional sink: the file store stays authoritative.
type MongoMirror struct {
	client     *mongo.Client
	collection *mongo.Collection
	logger     *slog.Logger
}

// NewMongoMirror connects to MongoDB and verifies the connection.
func NewMongoMirror(cfg config.StorageConfig, logger *slog.Logger) (*MongoMirror, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		return nil, &types.StorageError{Backend: "mongo", Err: fmt.Errorf("connect: %w", err)}
	}

	if err := client.Ping(ctx, nil); err != nil {
		return nil, &types.StorageError{Backend: "mongo", Err: fmt.Errorf("ping: %w", err)}
	}

	return &MongoMirror{
		client:     client,
		collection: client.Database(cfg.MongoDatabase).Collection(cfg.MongoCollection),
		logger:     logger.With("component", "mongo_mirror"),
	}, nil
}

// Upsert replaces each product document keyed by product ID, so repeated
// pipeline runs converge instead of accumulating duplicates.
func (m *MongoMirror) Upsert(ctx context.Context, products []types.Product) error {
	opts := options.Replace().SetUpsert(true)
	for _, p := range products {
		if _, err := m.collection.ReplaceOne(ctx, bson.M{"id": p.ID}, p, opts); err != nil {
			return &types.StorageError{Backend: "mongo", Err: fmt.Errorf("upsert %s: %w", p.ID, err)}
		}
	}

	m.logger.Info("catalog mirrored to mongodb", "products", len(products))
	return nil
}

// Close disconnects from MongoDB.
func (m *MongoMirror) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return m.client.Disconnect(ctx)
}
