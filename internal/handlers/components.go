package handlers

import (
	"context"
	"log"

	"github.com/bwmarrin/discordgo"
	"github.com/nicksnyder/go-i18n/v2/i18n"

	"suggestbot/internal/locales"
	"suggestbot/internal/suggestions"
	"suggestbot/pkg/embeds"
)

func (h *Handler) handleVoteButton(ctx context.Context, localizer *i18n.Localizer, i *discordgo.InteractionCreate, customID string) {
	guildID, number, direction, err := suggestions.ParseVoteID(customID)
	if err != nil {
		log.Printf("[Handler] Rejecting vote click: %v", err)
		return
	}

	if _, err := h.service.Vote(ctx, guildID, number, interactionUserID(i), direction); err != nil {
		h.respondError(localizer, i, err)
		return
	}
	h.respondEphemeral(i, embeds.Success(embeds.Options{
		Title: locales.GetMessage(localizer, "TitleVoteCounted", nil, nil),
		Description: locales.GetMessage(localizer, "MsgVoteCounted",
			map[string]interface{}{"Direction": string(direction)}, nil),
	}))
}

func (h *Handler) handleReviewButton(ctx context.Context, localizer *i18n.Localizer, i *discordgo.InteractionCreate, customID string) {
	guildID, number, verdict, err := suggestions.ParseReviewID(customID)
	if err != nil {
		log.Printf("[Handler] Rejecting review click: %v", err)
		return
	}

	awaiting, err := h.service.Review(ctx, actorFrom(i), guildID, number, verdict, false)
	if err != nil {
		h.respondError(localizer, i, err)
		return
	}
	if awaiting {
		h.respondReasonModal(localizer, i, number)
		return
	}
	h.respondReviewApplied(localizer, i, number, "approved")
}

// handleToggleDMs flips the opt-out and swaps the button on the DM so its
// label matches the next click's effect.
func (h *Handler) handleToggleDMs(ctx context.Context, localizer *i18n.Localizer, i *discordgo.InteractionCreate) {
	nowDisabled, err := h.service.ToggleDMs(ctx, interactionUserID(i))
	if err != nil {
		h.respondError(localizer, i, err)
		return
	}

	body := locales.GetMessage(localizer, "MsgDMsEnabled", nil, nil)
	if nowDisabled {
		body = locales.GetMessage(localizer, "MsgDMsDisabled", nil, nil)
	}

	var existingEmbeds []*discordgo.MessageEmbed
	if i.Message != nil {
		existingEmbeds = i.Message.Embeds
	}
	err = h.responder.Respond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseUpdateMessage,
		Data: &discordgo.InteractionResponseData{
			Content: body,
			Embeds:  existingEmbeds,
			Components: []discordgo.MessageComponent{
				suggestions.DMToggleButton(localizer, nowDisabled),
			},
		},
	})
	if err != nil {
		log.Printf("[Handler] Error updating DM toggle: %v", err)
	}
}
