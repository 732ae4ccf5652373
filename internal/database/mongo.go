package database

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/staybook/hotel-booking-backend/internal/config"
	"github.com/staybook/hotel-booking-backend/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// ConnectMongo opens the document database holding user accounts
func ConnectMongo(cfg config.MongoConfig, logger *logrus.Logger) (*mongo.Database, *mongo.Client, error) {
	ctx, cancel := context.WithTimeout(context.Background(), cfg.ConnectTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	logger.WithField("database", cfg.Database).Info("MongoDB connected successfully")
	return client.Database(cfg.Database), client, nil
}

// EnsureIndexes creates a unique index for every unique field of the schema
func EnsureIndexes(ctx context.Context, db *mongo.Database, schema *models.Schema) error {
	unique := schema.UniqueFields()
	if len(unique) == 0 {
		return nil
	}

	indexes := make([]mongo.IndexModel, 0, len(unique))
	for _, f := range unique {
		indexes = append(indexes, mongo.IndexModel{
			Keys:    bson.D{{Key: f.Name, Value: 1}},
			Options: options.Index().SetUnique(true).SetName(f.Name + "_unique"),
		})
	}

	if _, err := db.Collection(schema.Collection).Indexes().CreateMany(ctx, indexes); err != nil {
		return fmt.Errorf("failed to create %s indexes: %w", schema.Name, err)
	}

	return nil
}
