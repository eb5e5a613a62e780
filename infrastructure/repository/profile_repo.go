package repository

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"cabal-assist/domain/calibration"
)

// MongoProfileRepository implements calibration.Repository using MongoDB.
type MongoProfileRepository struct {
	collection *mongo.Collection
	logger     *slog.Logger
}

// NewMongoProfileRepository creates a new MongoDB-based profile repository.
func NewMongoProfileRepository(db *MongoDB, logger *slog.Logger) *MongoProfileRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &MongoProfileRepository{
		collection: db.profileCollection(),
		logger:     logger,
	}
}

// EnsureIndexes creates the unique name index Save relies on for upserts.
func (r *MongoProfileRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "name", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("profile_name"),
	})
	if err != nil {
		return fmt.Errorf("failed to create profile index: %w", err)
	}
	return nil
}

// FindByName retrieves a profile by name.
func (r *MongoProfileRepository) FindByName(ctx context.Context, name string) (*calibration.Profile, error) {
	var doc profileDocument
	if err := r.collection.FindOne(ctx, bson.M{"name": name}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find profile: %w", err)
	}
	return documentToProfile(&doc), nil
}

// FindAll retrieves all profiles sorted by name.
func (r *MongoProfileRepository) FindAll(ctx context.Context) ([]*calibration.Profile, error) {
	opts := options.Find().SetSort(bson.D{{Key: "name", Value: 1}})
	cursor, err := r.collection.Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find profiles: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []profileDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode profiles: %w", err)
	}

	profiles := make([]*calibration.Profile, len(docs))
	for i := range docs {
		profiles[i] = documentToProfile(&docs[i])
	}
	return profiles, nil
}

// Save inserts or replaces a profile by name.
func (r *MongoProfileRepository) Save(ctx context.Context, p *calibration.Profile) error {
	filter := bson.M{"name": p.Name}
	opts := options.Replace().SetUpsert(true)

	if _, err := r.collection.ReplaceOne(ctx, filter, profileToDocument(p), opts); err != nil {
		return fmt.Errorf("failed to save profile: %w", err)
	}

	r.logger.Debug("Profile saved", "name", p.Name)
	return nil
}

// Delete removes a profile by name.
func (r *MongoProfileRepository) Delete(ctx context.Context, name string) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"name": name})
	if err != nil {
		return fmt.Errorf("failed to delete profile: %w", err)
	}
	if result.DeletedCount == 0 {
		return calibration.ErrProfileNotFound
	}

	r.logger.Info("Profile deleted", "name", name)
	return nil
}

// Ensure MongoProfileRepository implements calibration.Repository
var _ calibration.Repository = (*MongoProfileRepository)(nil)
