package handlers

import (
	"context"
	"errors"
	"log"

	"github.com/bwmarrin/discordgo"
	"github.com/nicksnyder/go-i18n/v2/i18n"

	"suggestbot/internal/database"
	"suggestbot/internal/locales"
	"suggestbot/internal/suggestions"
	"suggestbot/pkg/discordapi"
	"suggestbot/pkg/embeds"
)

// CommandDefinitions returns the slash commands the bot registers at
// startup. Labels come from the message catalog so registration follows the
// configured default language.
func CommandDefinitions(localizer *i18n.Localizer) []*discordgo.ApplicationCommand {
	numberOption := func(required bool) *discordgo.ApplicationCommandOption {
		return &discordgo.ApplicationCommandOption{
			Type:        discordgo.ApplicationCommandOptionInteger,
			Name:        "number",
			Description: "Suggestion number",
			Required:    required,
			MinValue:    &minSuggestionNumber,
		}
	}
	reasonOption := &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionString,
		Name:        "reason",
		Description: "Reason for the decision",
	}

	return []*discordgo.ApplicationCommand{
		{
			Name:        "suggest",
			Description: locales.GetMessage(localizer, "CmdSuggestDesc", nil, nil),
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "suggestion",
					Description: "Your suggestion",
					Required:    true,
					MaxLength:   2048,
				},
				{
					Type:        discordgo.ApplicationCommandOptionBoolean,
					Name:        "anonymous",
					Description: "Hide your name on the suggestion",
				},
				{
					Type:        discordgo.ApplicationCommandOptionAttachment,
					Name:        "image",
					Description: "Image to attach to the suggestion",
				},
			},
		},
		{
			Name:        "approve",
			Description: locales.GetMessage(localizer, "CmdApproveDesc", nil, nil),
			Options:     []*discordgo.ApplicationCommandOption{numberOption(true), reasonOption},
		},
		{
			Name:        "deny",
			Description: locales.GetMessage(localizer, "CmdDenyDesc", nil, nil),
			Options:     []*discordgo.ApplicationCommandOption{numberOption(true)},
		},
		{
			Name:        "implement",
			Description: locales.GetMessage(localizer, "CmdImplementDesc", nil, nil),
			Options: []*discordgo.ApplicationCommandOption{
				numberOption(true),
				reasonOption,
				{
					Type:        discordgo.ApplicationCommandOptionBoolean,
					Name:        "anonymous",
					Description: "Hide your name on the outcome",
				},
			},
		},
		configCommandDefinition(localizer),
		{
			Name:        "help",
			Description: locales.GetMessage(localizer, "CmdHelpDesc", nil, nil),
		},
	}
}

var minSuggestionNumber float64 = 1

// commandOptions indexes a command's options by name.
func commandOptions(i *discordgo.InteractionCreate) map[string]*discordgo.ApplicationCommandInteractionDataOption {
	options := i.ApplicationCommandData().Options
	indexed := make(map[string]*discordgo.ApplicationCommandInteractionDataOption, len(options))
	for _, opt := range options {
		indexed[opt.Name] = opt
	}
	return indexed
}

// attachmentURL resolves an attachment option to its CDN URL, empty when the
// option was not provided.
func attachmentURL(i *discordgo.InteractionCreate, opt *discordgo.ApplicationCommandInteractionDataOption) string {
	if opt == nil {
		return ""
	}
	id, ok := opt.Value.(string)
	if !ok {
		return ""
	}
	resolved := i.ApplicationCommandData().Resolved
	if resolved == nil {
		return ""
	}
	if attachment, ok := resolved.Attachments[id]; ok && attachment != nil {
		return attachment.URL
	}
	return ""
}

func (h *Handler) handleSuggest(ctx context.Context, localizer *i18n.Localizer, i *discordgo.InteractionCreate) {
	options := commandOptions(i)
	content := options["suggestion"].StringValue()
	anonymous := false
	if opt, ok := options["anonymous"]; ok {
		anonymous = opt.BoolValue()
	}
	imageURL := attachmentURL(i, options["image"])

	s, queued, err := h.service.Submit(ctx, i.GuildID, interactionUserID(i), content, imageURL, anonymous)
	if err != nil {
		h.respondError(localizer, i, err)
		return
	}

	description := locales.GetMessage(localizer, "MsgSuggestionQueued", nil, nil)
	if !queued {
		description = locales.GetMessage(localizer, "MsgSuggestionPosted", map[string]interface{}{
			"URL": discordapi.MessageURL(s.GuildID, s.ChannelID, s.MessageID),
		}, nil)
	}
	h.respondEphemeral(i, embeds.Success(embeds.Options{
		Title:       locales.GetMessage(localizer, "TitleSuggestionSent", nil, nil),
		Description: description,
	}))
}

// handleReviewCommand backs /approve and /deny. Denials answer with the
// reason modal; approvals with an inline reason pass it straight through.
func (h *Handler) handleReviewCommand(ctx context.Context, localizer *i18n.Localizer, i *discordgo.InteractionCreate, verdict string) {
	options := commandOptions(i)
	number := int(options["number"].IntValue())
	reason := ""
	if opt, ok := options["reason"]; ok {
		reason = opt.StringValue()
	}

	awaiting, err := h.service.Review(ctx, actorFrom(i), i.GuildID, number, verdict, reason != "")
	if err != nil {
		h.respondError(localizer, i, err)
		return
	}
	if !awaiting {
		h.respondReviewApplied(localizer, i, number, "approved")
		return
	}

	// A reason is expected. An inline one resolves the session right away;
	// otherwise the modal collects it.
	if reason != "" {
		if err := h.service.SubmitReason(ctx, i.GuildID, number, interactionUserID(i), reason); err != nil {
			h.respondError(localizer, i, err)
			return
		}
		h.respondReviewApplied(localizer, i, number, "approved")
		return
	}
	h.respondReasonModal(localizer, i, number)
}

func (h *Handler) respondReviewApplied(localizer *i18n.Localizer, i *discordgo.InteractionCreate, number int, outcome string) {
	title := locales.GetMessage(localizer, "TitleSuggestionApproved", nil, nil)
	if outcome == "denied" {
		title = locales.GetMessage(localizer, "TitleSuggestionDenied", nil, nil)
	}
	h.respondEphemeral(i, embeds.Success(embeds.Options{
		Title: title,
		Description: locales.GetMessage(localizer, "MsgReviewApplied",
			map[string]interface{}{"Number": number, "Outcome": outcome}, nil),
	}))
}

// respondReasonModal opens the reason-collection modal as the interaction's
// only acknowledgement.
func (h *Handler) respondReasonModal(localizer *i18n.Localizer, i *discordgo.InteractionCreate, number int) {
	err := h.responder.Respond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseModal,
		Data: &discordgo.InteractionResponseData{
			CustomID: suggestions.ReasonModalID(number),
			Title:    locales.GetMessage(localizer, "ModalTitleReview", nil, nil),
			Components: []discordgo.MessageComponent{
				discordgo.ActionsRow{
					Components: []discordgo.MessageComponent{
						discordgo.TextInput{
							CustomID:  "reason",
							Label:     locales.GetMessage(localizer, "ModalLabelReason", nil, nil),
							Style:     discordgo.TextInputParagraph,
							Required:  false,
							MaxLength: 512,
						},
					},
				},
			},
		},
	})
	if err != nil {
		log.Printf("[Handler] Error opening reason modal: %v", err)
	}
}

func (h *Handler) handleImplement(ctx context.Context, localizer *i18n.Localizer, i *discordgo.InteractionCreate) {
	options := commandOptions(i)
	number := int(options["number"].IntValue())
	reason := ""
	if opt, ok := options["reason"]; ok {
		reason = opt.StringValue()
	}
	anonymous := false
	if opt, ok := options["anonymous"]; ok {
		anonymous = opt.BoolValue()
	}

	if err := h.service.Implement(ctx, actorFrom(i), i.GuildID, number, reason, anonymous); err != nil {
		h.respondImplementError(localizer, i, number, err)
		return
	}
	h.respondEphemeral(i, embeds.Success(embeds.Options{
		Title: locales.GetMessage(localizer, "TitleSuggestionImplemented",
			map[string]interface{}{"Number": number}, nil),
		Description: locales.GetMessage(localizer, "MsgReviewApplied",
			map[string]interface{}{"Number": number, "Outcome": "implemented"}, nil),
	}))
}

// respondImplementError specializes the already-decided message: for
// /implement the usual cause is a suggestion that was never approved.
func (h *Handler) respondImplementError(localizer *i18n.Localizer, i *discordgo.InteractionCreate, number int, err error) {
	if errors.Is(err, database.ErrAlreadyDecided) {
		h.respondEphemeral(i, embeds.Error(embeds.Options{
			Title: locales.GetMessage(localizer, "TitleAlreadyDecided", nil, nil),
			Description: locales.GetMessage(localizer, "MsgImplementRequiresApproved",
				map[string]interface{}{"Number": number}, nil),
		}))
		return
	}
	h.respondError(localizer, i, err)
}

func (h *Handler) handleHelp(localizer *i18n.Localizer, i *discordgo.InteractionCreate) {
	fields := []*discordgo.MessageEmbedField{
		embeds.Field("/suggest", locales.GetMessage(localizer, "CmdSuggestDesc", nil, nil)),
		embeds.Field("/approve", locales.GetMessage(localizer, "CmdApproveDesc", nil, nil)),
		embeds.Field("/deny", locales.GetMessage(localizer, "CmdDenyDesc", nil, nil)),
		embeds.Field("/implement", locales.GetMessage(localizer, "CmdImplementDesc", nil, nil)),
		embeds.Field("/config", locales.GetMessage(localizer, "CmdConfigDesc", nil, nil)),
	}
	h.respondEphemeral(i, embeds.Primary(embeds.Options{
		Title:       locales.GetMessage(localizer, "TitleHelp", nil, nil),
		Description: locales.GetMessage(localizer, "MsgHelpHeader", nil, nil),
		Fields:      fields,
	}))
}
