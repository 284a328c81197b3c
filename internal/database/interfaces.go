package database

import (
	"context"
	"errors"

	"suggestbot/internal/database/models"
)

// ErrSuggestionNotFound is returned when a suggestion is not found.
var ErrSuggestionNotFound = errors.New("suggestion not found")

// ErrAlreadyDecided is returned when a conditional state update matched a
// suggestion whose status no longer allows the requested transition.
var ErrAlreadyDecided = errors.New("suggestion already decided")

// SuggestionRepository defines typed access to suggestion records.
type SuggestionRepository interface {
	// NextSuggestionNumber reserves and returns the next per-guild
	// suggestion number from an atomic counter. Numbers are never reused.
	NextSuggestionNumber(ctx context.Context, guildID string) (int, error)

	// CreateSuggestion inserts a new suggestion record.
	CreateSuggestion(ctx context.Context, suggestion *models.Suggestion) error

	// GetSuggestion returns the suggestion with the given number, or
	// ErrSuggestionNotFound. Missing suggestions are never synthesized.
	GetSuggestion(ctx context.Context, guildID string, number int) (*models.Suggestion, error)

	// CastVote adds userID to the chosen vote set and removes it from the
	// opposite set in one atomic write, returning the refreshed record.
	// Casting the same direction twice leaves the record unchanged. The
	// write is conditional on status open; a vote racing a decision gets
	// ErrAlreadyDecided instead of mutating a decided suggestion.
	CastVote(ctx context.Context, guildID string, number int, userID string, direction models.VoteDirection) (*models.Suggestion, error)

	// UpdateSuggestionState transitions status from `from` to `to`,
	// recording the reviewer, reason and new message location. The update
	// is conditional on the current status: if the suggestion exists but
	// is no longer in `from`, ErrAlreadyDecided is returned and nothing
	// is written, so an outcome applies exactly once under concurrent
	// reviewers.
	UpdateSuggestionState(ctx context.Context, guildID string, number int, from, to models.SuggestionStatus, channelID, messageID, reviewerID, reason string) error

	// SetSuggestionMessage updates the rendered-message reference, used
	// when a suggestion moves from the review queue to the public channel.
	SetSuggestionMessage(ctx context.Context, guildID string, number int, channelID, messageID string) error
}

// GuildSettingsRepository defines access to the per-guild settings document.
type GuildSettingsRepository interface {
	// GetGuildSettings returns the settings for a guild. A guild with no
	// stored settings yields a zero-valued document, not an error.
	GetGuildSettings(ctx context.Context, guildID string) (*models.GuildSettings, error)

	// SetField upserts a single named field; ClearField unsets it. Fields
	// are independent, so no document-level locking is needed.
	SetField(ctx context.Context, guildID, field string, value interface{}) error
	ClearField(ctx context.Context, guildID, field string) error

	// AddPermission and RemovePermission edit the reviewer allow/deny
	// lists. list is "allowed" or "denied"; kind is "users" or "roles".
	AddPermission(ctx context.Context, guildID, list, kind, id string) error
	RemovePermission(ctx context.Context, guildID, list, kind, id string) error
}

// UserSettingsRepository defines access to per-user DM opt-outs.
type UserSettingsRepository interface {
	IsDMDisabled(ctx context.Context, userID string) (bool, error)
	SetDMDisabled(ctx context.Context, userID string, disabled bool) error
}
