package database

import (
	"context"
	"errors"
	"fmt"

	"suggestbot/internal/database/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const guildSettingsCollectionName = "guild_settings"

// Settings field names accepted by SetField/ClearField. These are the bson
// keys of models.GuildSettings.
const (
	FieldSuggestionChannel    = "suggestion_channel_id"
	FieldReviewChannel        = "review_channel_id"
	FieldUpvoteEmoji          = "upvote_emoji"
	FieldDownvoteEmoji        = "downvote_emoji"
	FieldSuggestionPingRole   = "suggestion_ping_role_id"
	FieldAutoThread           = "auto_thread"
	FieldAnonymousSuggestions = "anonymous_suggestions"
	FieldDMOnChoiceDisabled   = "dm_on_choice_disabled"
	FieldDMAllVoters          = "dm_all_voters"
	FieldAttachImagesDisabled = "attach_images_disabled"
	FieldDeleteOnDecision     = "delete_on_decision"
)

// LogChannelField and DecisionChannelField build the dotted key for a
// single outcome category inside the channel maps.
func LogChannelField(outcome string) string      { return "log_channels." + outcome }
func DecisionChannelField(outcome string) string { return "decision_channels." + outcome }

// MongoGuildSettingsRepository implements GuildSettingsRepository for MongoDB.
// All guild toggles live in one sparse document per guild; every field is
// written independently since no cross-field invariant exists.
type MongoGuildSettingsRepository struct {
	collection *mongo.Collection
}

// NewMongoGuildSettingsRepository creates a new guild settings repository.
func NewMongoGuildSettingsRepository(db *mongo.Database) *MongoGuildSettingsRepository {
	return &MongoGuildSettingsRepository{
		collection: db.Collection(guildSettingsCollectionName),
	}
}

// GetGuildSettings returns the settings document for a guild. A guild that
// never configured anything yields a zero-valued document.
func (r *MongoGuildSettingsRepository) GetGuildSettings(ctx context.Context, guildID string) (*models.GuildSettings, error) {
	var settings models.GuildSettings
	err := r.collection.FindOne(ctx, bson.M{"guild_id": guildID}).Decode(&settings)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return &models.GuildSettings{GuildID: guildID}, nil
		}
		return nil, fmt.Errorf("failed to load settings for guild %s: %w", guildID, err)
	}
	return &settings, nil
}

// SetField upserts one named field on the guild's settings document.
func (r *MongoGuildSettingsRepository) SetField(ctx context.Context, guildID, field string, value interface{}) error {
	_, err := r.collection.UpdateOne(ctx,
		bson.M{"guild_id": guildID},
		bson.M{"$set": bson.M{field: value}},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("failed to set %s for guild %s: %w", field, guildID, err)
	}
	return nil
}

// ClearField unsets one named field on the guild's settings document.
func (r *MongoGuildSettingsRepository) ClearField(ctx context.Context, guildID, field string) error {
	_, err := r.collection.UpdateOne(ctx,
		bson.M{"guild_id": guildID},
		bson.M{"$unset": bson.M{field: ""}},
	)
	if err != nil {
		return fmt.Errorf("failed to clear %s for guild %s: %w", field, guildID, err)
	}
	return nil
}

func permissionKey(list, kind string) (string, error) {
	if list != "allowed" && list != "denied" {
		return "", fmt.Errorf("unknown permission list %q", list)
	}
	if kind != "users" && kind != "roles" {
		return "", fmt.Errorf("unknown permission kind %q", kind)
	}
	return fmt.Sprintf("permissions.%s.%s", list, kind), nil
}

// AddPermission adds a user or role ID to the allow or deny list.
func (r *MongoGuildSettingsRepository) AddPermission(ctx context.Context, guildID, list, kind, id string) error {
	key, err := permissionKey(list, kind)
	if err != nil {
		return err
	}
	_, err = r.collection.UpdateOne(ctx,
		bson.M{"guild_id": guildID},
		bson.M{"$addToSet": bson.M{key: id}},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("failed to add %s to %s.%s for guild %s: %w", id, list, kind, guildID, err)
	}
	return nil
}

// RemovePermission removes a user or role ID from the allow or deny list.
func (r *MongoGuildSettingsRepository) RemovePermission(ctx context.Context, guildID, list, kind, id string) error {
	key, err := permissionKey(list, kind)
	if err != nil {
		return err
	}
	_, err = r.collection.UpdateOne(ctx,
		bson.M{"guild_id": guildID},
		bson.M{"$pull": bson.M{key: id}},
	)
	if err != nil {
		return fmt.Errorf("failed to remove %s from %s.%s for guild %s: %w", id, list, kind, guildID, err)
	}
	return nil
}
