// Package handlers routes Discord interactions into the suggestion workflow
// and turns workflow errors into user-facing acknowledgements. Handlers stay
// thin: all lifecycle rules live in the suggestions package.
package handlers

import (
	"context"
	"errors"
	"log"
	"strings"

	"github.com/bwmarrin/discordgo"
	"github.com/nicksnyder/go-i18n/v2/i18n"

	"suggestbot/internal/auth"
	"suggestbot/internal/database"
	"suggestbot/internal/errreport"
	"suggestbot/internal/locales"
	"suggestbot/internal/suggestions"
	"suggestbot/pkg/embeds"
)

// Handler dispatches interactions to the suggestion workflow.
type Handler struct {
	service   SuggestionService
	guilds    database.GuildSettingsRepository
	responder Responder
	reporter  errreport.Reporter
}

// NewHandler creates the interaction handler.
func NewHandler(service SuggestionService, guilds database.GuildSettingsRepository, responder Responder, reporter errreport.Reporter) *Handler {
	if service == nil {
		log.Fatal("Handler: suggestion service is nil")
	}
	if guilds == nil {
		log.Fatal("Handler: guild settings repository is nil")
	}
	if responder == nil {
		log.Fatal("Handler: responder is nil")
	}
	if reporter == nil {
		log.Fatal("Handler: reporter is nil")
	}
	return &Handler{service: service, guilds: guilds, responder: responder, reporter: reporter}
}

// HandleInteraction is the single entry point wired into the gateway.
func (h *Handler) HandleInteraction(ctx context.Context, i *discordgo.InteractionCreate) {
	localizer := locales.NewLocalizer(locales.GetDefaultLanguageTag().String())

	switch i.Type {
	case discordgo.InteractionApplicationCommand:
		h.handleCommand(ctx, localizer, i)
	case discordgo.InteractionMessageComponent:
		h.handleComponent(ctx, localizer, i)
	case discordgo.InteractionModalSubmit:
		h.handleModal(ctx, localizer, i)
	}
}

func (h *Handler) handleCommand(ctx context.Context, localizer *i18n.Localizer, i *discordgo.InteractionCreate) {
	name := i.ApplicationCommandData().Name
	switch name {
	case "suggest":
		h.handleSuggest(ctx, localizer, i)
	case "approve":
		h.handleReviewCommand(ctx, localizer, i, suggestions.VerdictApprove)
	case "deny":
		h.handleReviewCommand(ctx, localizer, i, suggestions.VerdictDeny)
	case "implement":
		h.handleImplement(ctx, localizer, i)
	case "config":
		h.handleConfig(ctx, localizer, i)
	case "help":
		h.handleHelp(localizer, i)
	default:
		log.Printf("[Handler] Unknown command %q", name)
	}
}

func (h *Handler) handleComponent(ctx context.Context, localizer *i18n.Localizer, i *discordgo.InteractionCreate) {
	customID := i.MessageComponentData().CustomID
	switch {
	case strings.HasPrefix(customID, suggestions.ActionVote+"-"):
		h.handleVoteButton(ctx, localizer, i, customID)
	case strings.HasPrefix(customID, suggestions.ActionReview+"-"):
		h.handleReviewButton(ctx, localizer, i, customID)
	case customID == suggestions.ActionToggleDMs:
		h.handleToggleDMs(ctx, localizer, i)
	default:
		log.Printf("[Handler] Unknown component custom ID %q", customID)
	}
}

func (h *Handler) handleModal(ctx context.Context, localizer *i18n.Localizer, i *discordgo.InteractionCreate) {
	data := i.ModalSubmitData()
	number, err := suggestions.ParseReasonModalID(data.CustomID)
	if err != nil {
		log.Printf("[Handler] Unknown modal custom ID %q", data.CustomID)
		return
	}

	reason := modalTextValue(data, "reason")
	err = h.service.SubmitReason(ctx, i.GuildID, number, interactionUserID(i), reason)
	if err != nil {
		h.respondError(localizer, i, err)
		return
	}
	h.respondEphemeral(i, embeds.Success(embeds.Options{
		Title: locales.GetMessage(localizer, "TitleSuggestionDenied", nil, nil),
		Description: locales.GetMessage(localizer, "MsgReviewApplied", map[string]interface{}{
			"Number": number, "Outcome": "denied",
		}, nil),
	}))
}

// modalTextValue digs the named text input's value out of a modal submit.
func modalTextValue(data discordgo.ModalSubmitInteractionData, customID string) string {
	for _, component := range data.Components {
		row, ok := component.(*discordgo.ActionsRow)
		if !ok {
			continue
		}
		for _, inner := range row.Components {
			if input, ok := inner.(*discordgo.TextInput); ok && input.CustomID == customID {
				return input.Value
			}
		}
	}
	return ""
}

// interactionUserID returns the acting user for both guild and DM contexts.
func interactionUserID(i *discordgo.InteractionCreate) string {
	if i.Member != nil && i.Member.User != nil {
		return i.Member.User.ID
	}
	if i.User != nil {
		return i.User.ID
	}
	return ""
}

// actorFrom builds the authorization actor from the interaction.
func actorFrom(i *discordgo.InteractionCreate) auth.Actor {
	return auth.ActorFromMember(i.Member)
}

// respondEphemeral acknowledges with an embed only the actor can see.
func (h *Handler) respondEphemeral(i *discordgo.InteractionCreate, embed *discordgo.MessageEmbed) {
	err := h.responder.Respond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Embeds: []*discordgo.MessageEmbed{embed},
			Flags:  discordgo.MessageFlagsEphemeral,
		},
	})
	if err != nil {
		log.Printf("[Handler] Error acknowledging interaction: %v", err)
	}
}

// respondError maps a workflow error to its user-facing acknowledgement.
// Expected conditions get specific embeds; anything else is captured and
// answered with the tracker's event ID.
func (h *Handler) respondError(localizer *i18n.Localizer, i *discordgo.InteractionCreate, err error) {
	switch {
	case errors.Is(err, suggestions.ErrNoSuggestionChannel):
		// The remediation hint depends on whether the actor can fix it.
		msgID := "MsgNoSuggestionChannelUser"
		if actorFrom(i).HasManageGuild() {
			msgID = "MsgNoSuggestionChannelAdmin"
		}
		h.respondEphemeral(i, embeds.Error(embeds.Options{
			Title:       locales.GetMessage(localizer, "TitleNoSuggestionChannel", nil, nil),
			Description: locales.GetMessage(localizer, msgID, nil, nil),
		}))
	case errors.Is(err, suggestions.ErrForbidden):
		h.respondEphemeral(i, embeds.Error(embeds.Options{
			Title:       locales.GetMessage(localizer, "TitleMissingPermissions", nil, nil),
			Description: locales.GetMessage(localizer, "MsgMissingReviewPermissions", nil, nil),
		}))
	case errors.Is(err, database.ErrSuggestionNotFound):
		h.respondEphemeral(i, embeds.Error(embeds.Options{
			Title:       locales.GetMessage(localizer, "TitleSuggestionNotFound", nil, nil),
			Description: locales.GetMessage(localizer, "MsgSuggestionNotFound", nil, nil),
		}))
	case errors.Is(err, database.ErrAlreadyDecided):
		h.respondEphemeral(i, embeds.Error(embeds.Options{
			Title: locales.GetMessage(localizer, "TitleAlreadyDecided", nil, nil),
			Description: locales.GetMessage(localizer, "MsgAlreadyDecided",
				map[string]interface{}{"Number": interactionNumber(i)}, nil),
		}))
	case errors.Is(err, suggestions.ErrNoActiveSession):
		h.respondEphemeral(i, embeds.Error(embeds.Options{
			Title:       locales.GetMessage(localizer, "TitleAlreadyDecided", nil, nil),
			Description: locales.GetMessage(localizer, "MsgNoReasonWindow", nil, nil),
		}))
	default:
		eventID := h.reporter.CaptureInteraction(err, i)
		log.Printf("[Handler] Unexpected error handling interaction: %v (event %s)", err, eventID)
		h.respondEphemeral(i, embeds.Error(embeds.Options{
			Title: locales.GetMessage(localizer, "TitleError", nil, nil),
			Description: locales.GetMessage(localizer, "MsgUnexpectedError",
				map[string]interface{}{"Command": interactionLabel(i)}, nil),
			FooterText: locales.GetMessage(localizer, "FooterSentryEvent",
				map[string]interface{}{"EventID": eventID}, nil),
		}))
	}
}

// interactionLabel names the triggering surface for error messages.
func interactionLabel(i *discordgo.InteractionCreate) string {
	switch i.Type {
	case discordgo.InteractionApplicationCommand:
		return i.ApplicationCommandData().Name
	case discordgo.InteractionMessageComponent:
		return i.MessageComponentData().CustomID
	case discordgo.InteractionModalSubmit:
		return i.ModalSubmitData().CustomID
	default:
		return "interaction"
	}
}

// interactionNumber best-effort extracts the suggestion number for error
// texts, zero when the surface does not carry one.
func interactionNumber(i *discordgo.InteractionCreate) int {
	switch i.Type {
	case discordgo.InteractionApplicationCommand:
		for _, opt := range i.ApplicationCommandData().Options {
			if opt.Name == "number" {
				return int(opt.IntValue())
			}
		}
	case discordgo.InteractionMessageComponent:
		customID := i.MessageComponentData().CustomID
		if _, number, _, err := suggestions.ParseVoteID(customID); err == nil {
			return number
		}
		if _, number, _, err := suggestions.ParseReviewID(customID); err == nil {
			return number
		}
	case discordgo.InteractionModalSubmit:
		if number, err := suggestions.ParseReasonModalID(i.ModalSubmitData().CustomID); err == nil {
			return number
		}
	}
	return 0
}
