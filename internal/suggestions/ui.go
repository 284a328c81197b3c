package suggestions

import (
	"fmt"
	"regexp"
	"strconv"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/nicksnyder/go-i18n/v2/i18n"

	"suggestbot/internal/database/models"
	"suggestbot/internal/locales"
	"suggestbot/pkg/embeds"
)

// Default vote emoji used when the guild has not configured custom ones.
const (
	defaultUpvoteEmoji   = "👍"
	defaultDownvoteEmoji = "👎"
)

var customEmojiPattern = regexp.MustCompile(`^<(a?):([A-Za-z0-9_]+):(\d+)>$`)

// componentEmoji turns a stored emoji value into a button emoji. The value is
// either a plain unicode emoji or Discord's <:name:id> / <a:name:id> markup.
func componentEmoji(value, fallback string) *discordgo.ComponentEmoji {
	if value == "" {
		value = fallback
	}
	if m := customEmojiPattern.FindStringSubmatch(value); m != nil {
		return &discordgo.ComponentEmoji{
			Name:     m[2],
			ID:       m[3],
			Animated: m[1] == "a",
		}
	}
	return &discordgo.ComponentEmoji{Name: value}
}

// VoteButtons renders the up/down vote row for a suggestion. Button labels
// are the current tallies so the message doubles as the scoreboard.
func VoteButtons(guildID string, number int, votes models.Votes, settings *models.GuildSettings) discordgo.ActionsRow {
	var upEmoji, downEmoji string
	if settings != nil {
		upEmoji = settings.UpvoteEmoji
		downEmoji = settings.DownvoteEmoji
	}
	return discordgo.ActionsRow{
		Components: []discordgo.MessageComponent{
			discordgo.Button{
				Label:    strconv.Itoa(len(votes.Up)),
				Style:    discordgo.SecondaryButton,
				Emoji:    componentEmoji(upEmoji, defaultUpvoteEmoji),
				CustomID: VoteCustomID(guildID, number, models.VoteUp),
			},
			discordgo.Button{
				Label:    strconv.Itoa(len(votes.Down)),
				Style:    discordgo.SecondaryButton,
				Emoji:    componentEmoji(downEmoji, defaultDownvoteEmoji),
				CustomID: VoteCustomID(guildID, number, models.VoteDown),
			},
		},
	}
}

// ReviewButtons renders the approve/deny row shown in the review queue.
func ReviewButtons(localizer *i18n.Localizer, guildID string, number int) discordgo.ActionsRow {
	return discordgo.ActionsRow{
		Components: []discordgo.MessageComponent{
			discordgo.Button{
				Label:    locales.GetMessage(localizer, "BtnApprove", nil, nil),
				Style:    discordgo.SuccessButton,
				CustomID: ReviewCustomID(guildID, number, VerdictApprove),
			},
			discordgo.Button{
				Label:    locales.GetMessage(localizer, "BtnDeny", nil, nil),
				Style:    discordgo.DangerButton,
				CustomID: ReviewCustomID(guildID, number, VerdictDeny),
			},
		},
	}
}

// DMToggleButton renders the opt-out toggle attached to outcome DMs. The
// label reflects the action the click performs, not the current state.
func DMToggleButton(localizer *i18n.Localizer, dmsDisabled bool) discordgo.ActionsRow {
	label := locales.GetMessage(localizer, "BtnDisableDMs", nil, nil)
	if dmsDisabled {
		label = locales.GetMessage(localizer, "BtnEnableDMs", nil, nil)
	}
	return discordgo.ActionsRow{
		Components: []discordgo.MessageComponent{
			discordgo.Button{
				Label:    label,
				Style:    discordgo.SecondaryButton,
				CustomID: ActionToggleDMs,
			},
		},
	}
}

// suggestionAuthor builds the embed author line. Anonymous suggestions show
// a fixed pseudonym and no avatar.
func suggestionAuthor(localizer *i18n.Localizer, suggester *discordgo.User, anonymous bool) *discordgo.MessageEmbedAuthor {
	if anonymous || suggester == nil {
		return &discordgo.MessageEmbedAuthor{
			Name: locales.GetMessage(localizer, "AuthorAnonymous", nil, nil),
		}
	}
	return &discordgo.MessageEmbedAuthor{
		Name:    suggester.Username,
		IconURL: suggester.AvatarURL(""),
	}
}

// SuggestionEmbed renders an open suggestion, for both the review queue and
// the public channel.
func SuggestionEmbed(localizer *i18n.Localizer, s *models.Suggestion, suggester *discordgo.User) *discordgo.MessageEmbed {
	return embeds.Primary(embeds.Options{
		Description: s.Content,
		Author:      suggestionAuthor(localizer, suggester, s.Anonymous),
		ImageURL:    s.ImageURL,
		FooterText: locales.GetMessage(localizer, "FooterSuggestionNumber",
			map[string]interface{}{"Number": s.SuggestionNumber}, nil),
		Timestamp: s.SubmittedAt.UTC().Format(time.RFC3339),
	})
}

// outcomeWord maps a decided status to the word used in footers and DMs.
func outcomeWord(status models.SuggestionStatus) string {
	switch status {
	case models.StatusApproved:
		return "approved"
	case models.StatusDenied:
		return "denied"
	case models.StatusImplemented:
		return "implemented"
	default:
		return string(status)
	}
}

// reasonField renders the review reason as an embed field. An empty reason
// still renders, with a placeholder, so the reader sees none was given.
func reasonField(localizer *i18n.Localizer, reviewerTag, reason string, reviewedAt time.Time) *discordgo.MessageEmbedField {
	name := locales.GetMessage(localizer, "FieldReason", nil, nil)
	if reviewerTag != "" {
		name = locales.GetMessage(localizer, "FieldReasonFrom", map[string]interface{}{
			"Reviewer":  reviewerTag,
			"Timestamp": embeds.Timestamp(reviewedAt),
		}, nil)
	}
	value := reason
	if value == "" {
		value = locales.GetMessage(localizer, "MsgNoReasonProvided", nil, nil)
	}
	return embeds.Field(name, value)
}

// DecidedEmbed renders a suggestion after an outcome was applied: outcome
// color, reason field, and a footer naming the reviewer.
func DecidedEmbed(localizer *i18n.Localizer, s *models.Suggestion, suggester *discordgo.User, reviewerTag string) *discordgo.MessageEmbed {
	opts := embeds.Options{
		Description: s.Content,
		Author:      suggestionAuthor(localizer, suggester, s.Anonymous),
		ImageURL:    s.ImageURL,
		Fields: []*discordgo.MessageEmbedField{
			reasonField(localizer, "", s.Reason, s.ReviewedAt),
		},
		FooterText: locales.GetMessage(localizer, "FooterReviewedBy", map[string]interface{}{
			"Outcome":  outcomeWord(s.Status),
			"Reviewer": reviewerTag,
		}, nil),
		Timestamp: s.ReviewedAt.UTC().Format(time.RFC3339),
	}
	if s.Status == models.StatusDenied {
		return embeds.Error(opts)
	}
	return embeds.Success(opts)
}

// threadName builds the auto-thread title for a suggestion.
func threadName(localizer *i18n.Localizer, number int) string {
	return locales.GetMessage(localizer, "ThreadNameSuggestion",
		map[string]interface{}{"Number": number}, nil)
}

// pingContent builds the optional role mention placed above a public
// suggestion post.
func pingContent(settings *models.GuildSettings) string {
	if settings == nil || settings.SuggestionPingRoleID == "" {
		return ""
	}
	return fmt.Sprintf("<@&%s>", settings.SuggestionPingRoleID)
}
