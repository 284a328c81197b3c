package handlers

import (
	"context"

	"github.com/bwmarrin/discordgo"

	"suggestbot/internal/auth"
	"suggestbot/internal/database/models"
)

// SuggestionService is the slice of the suggestion workflow the handlers
// drive. Declared here so handler tests can mock it.
type SuggestionService interface {
	Submit(ctx context.Context, guildID, suggesterID, content, imageURL string, anonymous bool) (s *models.Suggestion, queued bool, err error)
	Vote(ctx context.Context, guildID string, number int, userID string, direction models.VoteDirection) (*models.Suggestion, error)
	Review(ctx context.Context, actor auth.Actor, guildID string, number int, verdict string, withReason bool) (awaitingReason bool, err error)
	SubmitReason(ctx context.Context, guildID string, number int, reviewerID, reason string) error
	Implement(ctx context.Context, actor auth.Actor, guildID string, number int, reason string, anonymous bool) error
	ToggleDMs(ctx context.Context, userID string) (nowDisabled bool, err error)
}

// Responder acknowledges interactions. The real implementation wraps
// discordgo's InteractionRespond.
type Responder interface {
	Respond(i *discordgo.Interaction, resp *discordgo.InteractionResponse) error
}
