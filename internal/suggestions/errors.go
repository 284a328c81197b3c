package suggestions

import "errors"

// Errors surfaced to the handler layer. Repository-level sentinels
// (database.ErrSuggestionNotFound, database.ErrAlreadyDecided) pass through
// unchanged so handlers can match on them with errors.Is.
var (
	// ErrNoSuggestionChannel means the guild has no suggestion channel
	// configured, so there is nowhere to post.
	ErrNoSuggestionChannel = errors.New("no suggestion channel configured")

	// ErrForbidden means the actor is not authorized to review suggestions
	// in this guild.
	ErrForbidden = errors.New("not allowed to review suggestions")

	// ErrNoActiveSession means a reason was submitted but no review is
	// waiting for one (it expired, was already resolved, or never existed).
	ErrNoActiveSession = errors.New("no active review session")
)
