package handlers

import (
	"context"
	"fmt"
	"log"

	"github.com/bwmarrin/discordgo"
	"github.com/nicksnyder/go-i18n/v2/i18n"

	"suggestbot/internal/database"
	"suggestbot/internal/database/models"
	"suggestbot/internal/locales"
	"suggestbot/internal/suggestions"
	"suggestbot/pkg/embeds"
)

var manageGuildPermission = int64(discordgo.PermissionManageServer)

// toggleFields maps the /config toggle choices to settings document fields.
// dm_on_choice and attach_images are stored inverted: the document records
// the opt-out, so the toggle value is flipped on write.
var toggleFields = map[string]struct {
	field    string
	inverted bool
}{
	"auto_thread":           {field: database.FieldAutoThread},
	"anonymous_suggestions": {field: database.FieldAnonymousSuggestions},
	"dm_on_choice":          {field: database.FieldDMOnChoiceDisabled, inverted: true},
	"dm_all_voters":         {field: database.FieldDMAllVoters},
	"attach_images":         {field: database.FieldAttachImagesDisabled, inverted: true},
	"delete_on_decision":    {field: database.FieldDeleteOnDecision},
}

func stringChoices(values ...string) []*discordgo.ApplicationCommandOptionChoice {
	choices := make([]*discordgo.ApplicationCommandOptionChoice, 0, len(values))
	for _, value := range values {
		choices = append(choices, &discordgo.ApplicationCommandOptionChoice{Name: value, Value: value})
	}
	return choices
}

func configCommandDefinition(localizer *i18n.Localizer) *discordgo.ApplicationCommand {
	channelOption := func(required bool) *discordgo.ApplicationCommandOption {
		return &discordgo.ApplicationCommandOption{
			Type:        discordgo.ApplicationCommandOptionChannel,
			Name:        "channel",
			Description: "Target channel; omit to clear",
			Required:    required,
			ChannelTypes: []discordgo.ChannelType{
				discordgo.ChannelTypeGuildText,
			},
		}
	}

	return &discordgo.ApplicationCommand{
		Name:                     "config",
		Description:              locales.GetMessage(localizer, "CmdConfigDesc", nil, nil),
		DefaultMemberPermissions: &manageGuildPermission,
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        "suggestion_channel",
				Description: "Where suggestions are posted",
				Options:     []*discordgo.ApplicationCommandOption{channelOption(false)},
			},
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        "review_channel",
				Description: "Where suggestions wait for review",
				Options:     []*discordgo.ApplicationCommandOption{channelOption(false)},
			},
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        "log_channel",
				Description: "Where outcomes are logged, per category",
				Options: []*discordgo.ApplicationCommandOption{
					{
						Type:        discordgo.ApplicationCommandOptionString,
						Name:        "category",
						Description: "Outcome category",
						Required:    true,
						Choices: stringChoices(models.OutcomeAll, models.OutcomeApproved,
							models.OutcomeDenied, models.OutcomeConsidered, models.OutcomeImplemented),
					},
					channelOption(false),
				},
			},
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        "decision_channel",
				Description: "Where decided suggestions are reposted",
				Options: []*discordgo.ApplicationCommandOption{
					{
						Type:        discordgo.ApplicationCommandOptionString,
						Name:        "category",
						Description: "Outcome category",
						Required:    true,
						Choices:     stringChoices(models.OutcomeAll, models.OutcomeApproved),
					},
					channelOption(false),
				},
			},
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        "emojis",
				Description: "Custom vote emojis; omit both to reset",
				Options: []*discordgo.ApplicationCommandOption{
					{
						Type:        discordgo.ApplicationCommandOptionString,
						Name:        "up",
						Description: "Upvote emoji",
					},
					{
						Type:        discordgo.ApplicationCommandOptionString,
						Name:        "down",
						Description: "Downvote emoji",
					},
				},
			},
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        "ping_role",
				Description: "Role pinged on new suggestions; omit to clear",
				Options: []*discordgo.ApplicationCommandOption{
					{
						Type:        discordgo.ApplicationCommandOptionRole,
						Name:        "role",
						Description: "Role to ping",
					},
				},
			},
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        "permissions",
				Description: "Allow or deny a user or role to review",
				Options: []*discordgo.ApplicationCommandOption{
					{
						Type:        discordgo.ApplicationCommandOptionString,
						Name:        "list",
						Description: "Which list to edit",
						Required:    true,
						Choices:     stringChoices("allowed", "denied"),
					},
					{
						Type:        discordgo.ApplicationCommandOptionString,
						Name:        "action",
						Description: "Add or remove",
						Required:    true,
						Choices:     stringChoices("add", "remove"),
					},
					{
						Type:        discordgo.ApplicationCommandOptionMentionable,
						Name:        "target",
						Description: "User or role",
						Required:    true,
					},
				},
			},
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        "toggle",
				Description: "Flip a boolean setting",
				Options: []*discordgo.ApplicationCommandOption{
					{
						Type:        discordgo.ApplicationCommandOptionString,
						Name:        "setting",
						Description: "Which setting",
						Required:    true,
						Choices: stringChoices("auto_thread", "anonymous_suggestions",
							"dm_on_choice", "dm_all_voters", "attach_images", "delete_on_decision"),
					},
					{
						Type:        discordgo.ApplicationCommandOptionBoolean,
						Name:        "enabled",
						Description: "New value",
						Required:    true,
					},
				},
			},
		},
	}
}

// handleConfig applies one settings change. Discord already gates the
// command on ManageGuild via DefaultMemberPermissions; the check here covers
// guilds that loosened the command permissions afterwards.
func (h *Handler) handleConfig(ctx context.Context, localizer *i18n.Localizer, i *discordgo.InteractionCreate) {
	if !actorFrom(i).HasManageGuild() {
		h.respondError(localizer, i, suggestions.ErrForbidden)
		return
	}

	options := i.ApplicationCommandData().Options
	if len(options) != 1 {
		log.Printf("[Handler] Malformed config invocation in guild %s", i.GuildID)
		return
	}
	sub := options[0]
	subOptions := make(map[string]*discordgo.ApplicationCommandInteractionDataOption, len(sub.Options))
	for _, opt := range sub.Options {
		subOptions[opt.Name] = opt
	}

	var err error
	var confirmation string
	switch sub.Name {
	case "suggestion_channel":
		confirmation, err = h.configChannel(ctx, localizer, i, subOptions, database.FieldSuggestionChannel, sub.Name)
	case "review_channel":
		confirmation, err = h.configChannel(ctx, localizer, i, subOptions, database.FieldReviewChannel, sub.Name)
	case "log_channel":
		field := database.LogChannelField(subOptions["category"].StringValue())
		confirmation, err = h.configChannel(ctx, localizer, i, subOptions, field, sub.Name)
	case "decision_channel":
		field := database.DecisionChannelField(subOptions["category"].StringValue())
		confirmation, err = h.configChannel(ctx, localizer, i, subOptions, field, sub.Name)
	case "emojis":
		confirmation, err = h.configEmojis(ctx, localizer, i.GuildID, subOptions)
	case "ping_role":
		confirmation, err = h.configPingRole(ctx, localizer, i.GuildID, subOptions)
	case "permissions":
		confirmation, err = h.configPermissions(ctx, localizer, i, subOptions)
	case "toggle":
		confirmation, err = h.configToggle(ctx, localizer, i.GuildID, subOptions)
	default:
		log.Printf("[Handler] Unknown config subcommand %q", sub.Name)
		return
	}
	if err != nil {
		h.respondError(localizer, i, err)
		return
	}

	h.respondEphemeral(i, embeds.Success(embeds.Options{
		Title:       locales.GetMessage(localizer, "TitleConfigUpdated", nil, nil),
		Description: confirmation,
	}))
}

func (h *Handler) configChannel(ctx context.Context, localizer *i18n.Localizer, i *discordgo.InteractionCreate, options map[string]*discordgo.ApplicationCommandInteractionDataOption, field, label string) (string, error) {
	opt, ok := options["channel"]
	if !ok {
		if err := h.guilds.ClearField(ctx, i.GuildID, field); err != nil {
			return "", err
		}
		return locales.GetMessage(localizer, "MsgConfigFieldCleared",
			map[string]interface{}{"Field": label}, nil), nil
	}

	channel := opt.ChannelValue(nil)
	if err := h.guilds.SetField(ctx, i.GuildID, field, channel.ID); err != nil {
		return "", err
	}
	return locales.GetMessage(localizer, "MsgConfigFieldSet",
		map[string]interface{}{"Field": label}, nil), nil
}

func (h *Handler) configEmojis(ctx context.Context, localizer *i18n.Localizer, guildID string, options map[string]*discordgo.ApplicationCommandInteractionDataOption) (string, error) {
	up, hasUp := options["up"]
	down, hasDown := options["down"]

	if !hasUp && !hasDown {
		if err := h.guilds.ClearField(ctx, guildID, database.FieldUpvoteEmoji); err != nil {
			return "", err
		}
		if err := h.guilds.ClearField(ctx, guildID, database.FieldDownvoteEmoji); err != nil {
			return "", err
		}
		return locales.GetMessage(localizer, "MsgConfigFieldCleared",
			map[string]interface{}{"Field": "emojis"}, nil), nil
	}

	if hasUp {
		if err := h.guilds.SetField(ctx, guildID, database.FieldUpvoteEmoji, up.StringValue()); err != nil {
			return "", err
		}
	}
	if hasDown {
		if err := h.guilds.SetField(ctx, guildID, database.FieldDownvoteEmoji, down.StringValue()); err != nil {
			return "", err
		}
	}
	return locales.GetMessage(localizer, "MsgConfigFieldSet",
		map[string]interface{}{"Field": "emojis"}, nil), nil
}

func (h *Handler) configPingRole(ctx context.Context, localizer *i18n.Localizer, guildID string, options map[string]*discordgo.ApplicationCommandInteractionDataOption) (string, error) {
	opt, ok := options["role"]
	if !ok {
		if err := h.guilds.ClearField(ctx, guildID, database.FieldSuggestionPingRole); err != nil {
			return "", err
		}
		return locales.GetMessage(localizer, "MsgConfigFieldCleared",
			map[string]interface{}{"Field": "ping_role"}, nil), nil
	}

	role := opt.RoleValue(nil, "")
	if err := h.guilds.SetField(ctx, guildID, database.FieldSuggestionPingRole, role.ID); err != nil {
		return "", err
	}
	return locales.GetMessage(localizer, "MsgConfigFieldSet",
		map[string]interface{}{"Field": "ping_role"}, nil), nil
}

func (h *Handler) configPermissions(ctx context.Context, localizer *i18n.Localizer, i *discordgo.InteractionCreate, options map[string]*discordgo.ApplicationCommandInteractionDataOption) (string, error) {
	list := options["list"].StringValue()
	action := options["action"].StringValue()
	targetID := options["target"].Value.(string)

	// A mentionable resolves to either a user or a role; which map it shows
	// up in tells them apart.
	kind := "roles"
	mention := fmt.Sprintf("<@&%s>", targetID)
	if resolved := i.ApplicationCommandData().Resolved; resolved != nil {
		if _, isUser := resolved.Users[targetID]; isUser {
			kind = "users"
			mention = fmt.Sprintf("<@%s>", targetID)
		}
	}

	var err error
	if action == "add" {
		err = h.guilds.AddPermission(ctx, i.GuildID, list, kind, targetID)
	} else {
		err = h.guilds.RemovePermission(ctx, i.GuildID, list, kind, targetID)
	}
	if err != nil {
		return "", err
	}

	msgID := "MsgConfigPermissionAllowed"
	if list == "denied" && action == "add" || list == "allowed" && action == "remove" {
		msgID = "MsgConfigPermissionDenied"
	}
	return locales.GetMessage(localizer, msgID, map[string]interface{}{"Mention": mention}, nil), nil
}

func (h *Handler) configToggle(ctx context.Context, localizer *i18n.Localizer, guildID string, options map[string]*discordgo.ApplicationCommandInteractionDataOption) (string, error) {
	setting := options["setting"].StringValue()
	enabled := options["enabled"].BoolValue()

	mapping, ok := toggleFields[setting]
	if !ok {
		return "", fmt.Errorf("unknown toggle %q", setting)
	}

	stored := enabled
	if mapping.inverted {
		stored = !enabled
	}
	// Presence means enabled in the document, so disabling clears the field
	// instead of storing false.
	var err error
	if stored {
		err = h.guilds.SetField(ctx, guildID, mapping.field, true)
	} else {
		err = h.guilds.ClearField(ctx, guildID, mapping.field)
	}
	if err != nil {
		return "", err
	}

	msgID := "MsgConfigToggleEnabled"
	if !enabled {
		msgID = "MsgConfigToggleDisabled"
	}
	return locales.GetMessage(localizer, msgID, map[string]interface{}{"Field": setting}, nil), nil
}
