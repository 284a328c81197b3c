package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"suggestbot/internal/database/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	suggestionCollectionName = "suggestions"
	counterCollectionName    = "counters"
)

// MongoSuggestionRepository implements SuggestionRepository for MongoDB.
type MongoSuggestionRepository struct {
	collection *mongo.Collection
	counters   *mongo.Collection
}

// NewMongoSuggestionRepository creates a new MongoDB suggestion repository.
func NewMongoSuggestionRepository(db *mongo.Database) *MongoSuggestionRepository {
	return &MongoSuggestionRepository{
		collection: db.Collection(suggestionCollectionName),
		counters:   db.Collection(counterCollectionName),
	}
}

// NextSuggestionNumber reserves the next number from the per-guild counter
// document. The $inc upsert makes the reservation atomic, so concurrent
// submissions in the same guild never share a number.
func (r *MongoSuggestionRepository) NextSuggestionNumber(ctx context.Context, guildID string) (int, error) {
	filter := bson.M{"guild_id": guildID}
	update := bson.M{"$inc": bson.M{"seq": 1}}
	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var counter struct {
		Seq int `bson:"seq"`
	}
	err := r.counters.FindOneAndUpdate(ctx, filter, update, opts).Decode(&counter)
	if err != nil {
		return 0, fmt.Errorf("failed to reserve suggestion number for guild %s: %w", guildID, err)
	}
	return counter.Seq, nil
}

// CreateSuggestion inserts a new suggestion record.
func (r *MongoSuggestionRepository) CreateSuggestion(ctx context.Context, suggestion *models.Suggestion) error {
	if suggestion.ID.IsZero() {
		suggestion.ID = primitive.NewObjectID()
	}
	if suggestion.SubmittedAt.IsZero() {
		suggestion.SubmittedAt = time.Now()
	}
	if suggestion.Status == "" {
		suggestion.Status = models.StatusOpen
	}
	if suggestion.Votes.Up == nil {
		suggestion.Votes.Up = []string{}
	}
	if suggestion.Votes.Down == nil {
		suggestion.Votes.Down = []string{}
	}

	_, err := r.collection.InsertOne(ctx, suggestion)
	if err != nil {
		return fmt.Errorf("failed to insert suggestion: %w", err)
	}
	return nil
}

// GetSuggestion retrieves a single suggestion by its per-guild number.
// It returns ErrSuggestionNotFound if no suggestion matches.
func (r *MongoSuggestionRepository) GetSuggestion(ctx context.Context, guildID string, number int) (*models.Suggestion, error) {
	var suggestion models.Suggestion
	filter := bson.M{"guild_id": guildID, "suggestion_number": number}

	err := r.collection.FindOne(ctx, filter).Decode(&suggestion)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrSuggestionNotFound
		}
		return nil, fmt.Errorf("failed to find suggestion #%d in guild %s: %w", number, guildID, err)
	}
	return &suggestion, nil
}

// CastVote applies an up/down vote in one atomic write: $addToSet into the
// chosen set and $pull from the opposite set on the same document, closing
// the double-count window under concurrent votes from the same user. The
// filter also requires status open, so a vote racing a decision loses in the
// same write instead of landing on a decided suggestion. The refreshed
// document is returned for re-rendering.
func (r *MongoSuggestionRepository) CastVote(ctx context.Context, guildID string, number int, userID string, direction models.VoteDirection) (*models.Suggestion, error) {
	if !direction.Valid() {
		return nil, fmt.Errorf("invalid vote direction %q", direction)
	}

	filter := bson.M{
		"guild_id":          guildID,
		"suggestion_number": number,
		"status":            models.StatusOpen,
	}
	update := bson.M{
		"$addToSet": bson.M{"votes." + string(direction): userID},
		"$pull":     bson.M{"votes." + string(direction.Opposite()): userID},
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var suggestion models.Suggestion
	err := r.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&suggestion)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			// Distinguish a missing suggestion from one decided mid-vote.
			if _, getErr := r.GetSuggestion(ctx, guildID, number); getErr != nil {
				return nil, getErr
			}
			return nil, ErrAlreadyDecided
		}
		return nil, fmt.Errorf("failed to cast %svote on suggestion #%d in guild %s: %w", direction, number, guildID, err)
	}
	return &suggestion, nil
}

// UpdateSuggestionState performs the conditional forward transition. The
// filter includes the expected current status, so of two concurrent
// reviewers only one write matches; the loser gets ErrAlreadyDecided.
func (r *MongoSuggestionRepository) UpdateSuggestionState(ctx context.Context, guildID string, number int, from, to models.SuggestionStatus, channelID, messageID, reviewerID, reason string) error {
	filter := bson.M{
		"guild_id":          guildID,
		"suggestion_number": number,
		"status":            from,
	}
	set := bson.M{
		"status":      to,
		"reviewed_by": reviewerID,
		"reviewed_at": time.Now(),
	}
	if reason != "" {
		set["reason"] = reason
	}
	if channelID != "" {
		set["channel_id"] = channelID
	}
	if messageID != "" {
		set["message_id"] = messageID
	}

	result, err := r.collection.UpdateOne(ctx, filter, bson.M{"$set": set})
	if err != nil {
		return fmt.Errorf("failed to update status of suggestion #%d in guild %s: %w", number, guildID, err)
	}
	if result.MatchedCount == 0 {
		// Distinguish a missing suggestion from a lost race.
		if _, getErr := r.GetSuggestion(ctx, guildID, number); getErr != nil {
			return getErr
		}
		return ErrAlreadyDecided
	}
	return nil
}

// SetSuggestionMessage records where the suggestion is currently rendered.
func (r *MongoSuggestionRepository) SetSuggestionMessage(ctx context.Context, guildID string, number int, channelID, messageID string) error {
	filter := bson.M{"guild_id": guildID, "suggestion_number": number}
	update := bson.M{"$set": bson.M{"channel_id": channelID, "message_id": messageID}}

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to update message ref of suggestion #%d in guild %s: %w", number, guildID, err)
	}
	if result.MatchedCount == 0 {
		return ErrSuggestionNotFound
	}
	return nil
}
