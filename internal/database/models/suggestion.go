package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// SuggestionStatus defines the lifecycle state of a suggestion.
type SuggestionStatus string

const (
	StatusOpen        SuggestionStatus = "open"
	StatusApproved    SuggestionStatus = "approved"
	StatusDenied      SuggestionStatus = "denied"
	StatusImplemented SuggestionStatus = "implemented"
)

// VoteDirection is the direction of a suggestion vote.
type VoteDirection string

const (
	VoteUp   VoteDirection = "up"
	VoteDown VoteDirection = "down"
)

// Opposite returns the other direction.
func (d VoteDirection) Opposite() VoteDirection {
	if d == VoteUp {
		return VoteDown
	}
	return VoteUp
}

// Valid reports whether d is one of the two known directions.
func (d VoteDirection) Valid() bool {
	return d == VoteUp || d == VoteDown
}

// Votes holds the voter ID sets for a suggestion. A user ID appears in at
// most one of the two slices at any time; the repository enforces this with
// a single atomic update.
type Votes struct {
	Up   []string `bson:"up"`
	Down []string `bson:"down"`
}

// Voters returns the union of both sets, deduplicated.
func (v Votes) Voters() []string {
	seen := make(map[string]struct{}, len(v.Up)+len(v.Down))
	voters := make([]string, 0, len(v.Up)+len(v.Down))
	for _, id := range append(append([]string{}, v.Up...), v.Down...) {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		voters = append(voters, id)
	}
	return voters
}

// Suggestion represents a community suggestion stored in the database.
// Identity is (GuildID, SuggestionNumber); the number is assigned from a
// per-guild counter at creation and never reused.
type Suggestion struct {
	ID               primitive.ObjectID `bson:"_id,omitempty"`
	GuildID          string             `bson:"guild_id"`
	SuggestionNumber int                `bson:"suggestion_number"`
	SuggesterID      string             `bson:"suggester_id"`
	Content          string             `bson:"content"`
	ImageURL         string             `bson:"image_url,omitempty"`
	Anonymous        bool               `bson:"anonymous,omitempty"`
	ChannelID        string             `bson:"channel_id"`
	MessageID        string             `bson:"message_id"`
	Votes            Votes              `bson:"votes"`
	Status           SuggestionStatus   `bson:"status"`
	Reason           string             `bson:"reason,omitempty"`
	ReviewedBy       string             `bson:"reviewed_by,omitempty"`
	ReviewedAt       time.Time          `bson:"reviewed_at,omitempty"`
	SubmittedAt      time.Time          `bson:"submitted_at"`
}

// Decided reports whether an outcome has been applied to the suggestion.
func (s *Suggestion) Decided() bool {
	return s.Status != StatusOpen
}
