package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// DMOptOut marks a user who does not want outcome DMs. Presence of the
// document is the opt-out; deleting it re-enables DMs.
type DMOptOut struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	UserID    string             `bson:"user_id"`
	CreatedAt time.Time          `bson:"created_at"`
}
