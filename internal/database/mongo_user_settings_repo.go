package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"suggestbot/internal/database/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

const dmOptOutCollectionName = "dms_disabled"

// MongoUserSettingsRepository implements UserSettingsRepository for MongoDB.
// Opt-out is presence-based: a document exists while DMs are disabled.
type MongoUserSettingsRepository struct {
	collection *mongo.Collection
}

// NewMongoUserSettingsRepository creates a new user settings repository.
func NewMongoUserSettingsRepository(db *mongo.Database) *MongoUserSettingsRepository {
	return &MongoUserSettingsRepository{
		collection: db.Collection(dmOptOutCollectionName),
	}
}

// IsDMDisabled reports whether the user has opted out of outcome DMs.
func (r *MongoUserSettingsRepository) IsDMDisabled(ctx context.Context, userID string) (bool, error) {
	err := r.collection.FindOne(ctx, bson.M{"user_id": userID}).Err()
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return false, nil
		}
		return false, fmt.Errorf("failed to check DM opt-out for user %s: %w", userID, err)
	}
	return true, nil
}

// SetDMDisabled creates or removes the opt-out document. Both directions are
// idempotent.
func (r *MongoUserSettingsRepository) SetDMDisabled(ctx context.Context, userID string, disabled bool) error {
	if disabled {
		disabledNow, err := r.IsDMDisabled(ctx, userID)
		if err != nil {
			return err
		}
		if disabledNow {
			return nil
		}
		_, err = r.collection.InsertOne(ctx, models.DMOptOut{UserID: userID, CreatedAt: time.Now()})
		if err != nil {
			return fmt.Errorf("failed to disable DMs for user %s: %w", userID, err)
		}
		return nil
	}

	_, err := r.collection.DeleteOne(ctx, bson.M{"user_id": userID})
	if err != nil {
		return fmt.Errorf("failed to enable DMs for user %s: %w", userID, err)
	}
	return nil
}
