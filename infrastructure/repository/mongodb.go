// Package repository stores calibration profiles in MongoDB or a YAML file.
package repository

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoDB is a connected profile database.
type MongoDB struct {
	client   *mongo.Client
	database *mongo.Database
	profiles string
	logger   *slog.Logger
}

// MongoDBConfig contains configuration for the profile database.
type MongoDBConfig struct {
	URI      string
	Database string
	// Collection holds one document per calibration profile.
	Collection     string
	ConnectTimeout time.Duration
	PingTimeout    time.Duration
}

// DefaultMongoDBConfig returns default configuration.
func DefaultMongoDBConfig() *MongoDBConfig {
	return &MongoDBConfig{
		URI:            "mongodb://localhost:27017",
		Database:       "cabal_assist",
		Collection:     "calibration_profile",
		ConnectTimeout: 10 * time.Second,
		PingTimeout:    5 * time.Second,
	}
}

// clientOptions builds the driver options. Server selection is bounded by
// the connect timeout so a missing server fails startup instead of hanging
// the first profile load.
func clientOptions(cfg *MongoDBConfig) *options.ClientOptions {
	return options.Client().
		ApplyURI(cfg.URI).
		SetAppName("cabal-assist").
		SetConnectTimeout(cfg.ConnectTimeout).
		SetServerSelectionTimeout(cfg.ConnectTimeout)
}

// NewMongoDB connects and pings the server.
func NewMongoDB(ctx context.Context, cfg *MongoDBConfig, logger *slog.Logger) (*MongoDB, error) {
	if cfg == nil {
		cfg = DefaultMongoDBConfig()
	}
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Collection == "" {
		cfg.Collection = DefaultMongoDBConfig().Collection
	}

	connectCtx, cancel := context.WithTimeout(ctx, cfg.ConnectTimeout)
	defer cancel()

	client, err := mongo.Connect(connectCtx, clientOptions(cfg))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to profile database: %w", err)
	}

	pingCtx, pingCancel := context.WithTimeout(ctx, cfg.PingTimeout)
	defer pingCancel()

	if err := client.Ping(pingCtx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("profile database at %s unreachable: %w", cfg.URI, err)
	}

	logger.Info("Profile database connected", "database", cfg.Database, "collection", cfg.Collection)

	return &MongoDB{
		client:   client,
		database: client.Database(cfg.Database),
		profiles: cfg.Collection,
		logger:   logger,
	}, nil
}

// Close disconnects from the server.
func (m *MongoDB) Close(ctx context.Context) error {
	if m.client == nil {
		return nil
	}
	return m.client.Disconnect(ctx)
}

// profileCollection returns the collection holding calibration profiles.
func (m *MongoDB) profileCollection() *mongo.Collection {
	return m.database.Collection(m.profiles)
}
