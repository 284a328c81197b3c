package suggestions

import (
	"context"
	"log"
	"sync"

	"github.com/bwmarrin/discordgo"
	"github.com/nicksnyder/go-i18n/v2/i18n"
	"go.uber.org/ratelimit"

	"suggestbot/internal/database"
	"suggestbot/internal/database/models"
	"suggestbot/internal/errreport"
	"suggestbot/internal/locales"
	"suggestbot/pkg/discordapi"
	"suggestbot/pkg/embeds"
)

// dmSendRate caps outcome DMs per second so a large voter fan-out does not
// burn the global REST budget.
const dmSendRate = 2

// Notification is the snapshot handed to the fan-out after an outcome was
// applied. Suggestion already carries the new status, reason and reviewer.
type Notification struct {
	Suggestion  *models.Suggestion
	Settings    *models.GuildSettings
	ReviewerTag string

	// MessageURL links to the public suggestion message, empty when the
	// message was deleted or never published.
	MessageURL string
}

// Fanout delivers outcome notifications: a DM to the suggester, optional DMs
// to every voter, and posts to the configured log channels. Delivery is best
// effort; nothing is retried and nothing reaches the initiating reviewer.
type Fanout struct {
	session  discordapi.Session
	users    database.UserSettingsRepository
	reporter errreport.Reporter
	limiter  ratelimit.Limiter
}

// NewFanout creates a fan-out worker.
func NewFanout(session discordapi.Session, users database.UserSettingsRepository, reporter errreport.Reporter) *Fanout {
	return &Fanout{
		session:  session,
		users:    users,
		reporter: reporter,
		limiter:  ratelimit.New(dmSendRate),
	}
}

// Notify starts delivery and returns immediately. The caller's response to
// the reviewer never waits on any of this.
func (f *Fanout) Notify(n Notification) {
	go f.deliver(n)
}

// deliver runs the three delivery steps concurrently and waits for them, so
// the goroutine spawned by Notify does not leak.
func (f *Fanout) deliver(n Notification) {
	if n.Suggestion == nil {
		return
	}
	ctx := context.Background()
	localizer := locales.NewLocalizer(locales.GetDefaultLanguageTag().String())

	var wg sync.WaitGroup
	wg.Add(3)
	go func() {
		defer wg.Done()
		f.dmSuggester(ctx, localizer, n)
	}()
	go func() {
		defer wg.Done()
		f.dmVoters(ctx, localizer, n)
	}()
	go func() {
		defer wg.Done()
		f.postLogChannels(localizer, n)
	}()
	wg.Wait()
}

// dmSuggester notifies the author of the suggestion about the outcome.
func (f *Fanout) dmSuggester(ctx context.Context, localizer *i18n.Localizer, n Notification) {
	if n.Settings != nil && n.Settings.DMOnChoiceDisabled {
		return
	}

	s := n.Suggestion
	data := map[string]interface{}{"Number": s.SuggestionNumber, "URL": n.MessageURL}
	var title, body string
	switch s.Status {
	case models.StatusApproved:
		title = locales.GetMessage(localizer, "TitleSuggestionApproved", nil, nil)
		body = locales.GetMessage(localizer, "MsgSuggesterApprovedDM", data, nil)
	case models.StatusDenied:
		title = locales.GetMessage(localizer, "TitleSuggestionDenied", nil, nil)
		body = locales.GetMessage(localizer, "MsgSuggesterDeniedDM", data, nil)
	case models.StatusImplemented:
		title = locales.GetMessage(localizer, "TitleSuggestionImplemented", data, nil)
		body = locales.GetMessage(localizer, "MsgSuggesterImplementedDM", data, nil)
	default:
		return
	}

	f.dmUser(ctx, localizer, s.SuggesterID, f.outcomeEmbed(localizer, n, title, body))
}

// dmVoters notifies everyone who voted, when the guild opted into that.
// The suggester is excluded; they already got the richer DM above.
func (f *Fanout) dmVoters(ctx context.Context, localizer *i18n.Localizer, n Notification) {
	if n.Settings == nil || !n.Settings.DMAllVoters {
		return
	}

	s := n.Suggestion
	body := locales.GetMessage(localizer, "MsgVoterOutcomeDM", map[string]interface{}{
		"Number":  s.SuggestionNumber,
		"Outcome": outcomeWord(s.Status),
	}, nil)
	title := locales.GetMessage(localizer, "FooterSuggestionNumber",
		map[string]interface{}{"Number": s.SuggestionNumber}, nil)
	embed := f.outcomeEmbed(localizer, n, title, body)

	for _, voterID := range s.Votes.Voters() {
		if voterID == s.SuggesterID {
			continue
		}
		f.dmUser(ctx, localizer, voterID, embed)
	}
}

// dmUser sends one DM, honoring the per-user opt-out. A closed-DMs failure
// is expected and only logged; anything else is reported.
func (f *Fanout) dmUser(ctx context.Context, localizer *i18n.Localizer, userID string, embed *discordgo.MessageEmbed) {
	disabled, err := f.users.IsDMDisabled(ctx, userID)
	if err != nil {
		log.Printf("[Fanout User:%s] Error checking DM opt-out: %v", userID, err)
		f.reporter.Capture(err)
		return
	}
	if disabled {
		return
	}

	f.limiter.Take()

	channel, err := f.session.CreateDMChannel(userID)
	if err != nil {
		f.reportDeliveryError(userID, err)
		return
	}
	_, err = f.session.SendMessage(channel.ID, embeds.Message(embed, DMToggleButton(localizer, false)))
	if err != nil {
		f.reportDeliveryError(userID, err)
	}
}

func (f *Fanout) reportDeliveryError(userID string, err error) {
	if discordapi.IsRESTErrorCode(err, discordgo.ErrCodeCannotSendMessagesToThisUser) {
		log.Printf("[Fanout User:%s] DMs closed, skipping", userID)
		return
	}
	log.Printf("[Fanout User:%s] Error delivering DM: %v", userID, err)
	f.reporter.Capture(err)
}

// postLogChannels posts the outcome to the channels configured for the "all"
// category and the specific outcome category. Channels that no longer
// resolve are skipped.
func (f *Fanout) postLogChannels(localizer *i18n.Localizer, n Notification) {
	if n.Settings == nil {
		return
	}

	s := n.Suggestion
	data := map[string]interface{}{"Number": s.SuggestionNumber, "URL": n.MessageURL}
	var title, body string
	switch s.Status {
	case models.StatusApproved:
		title = locales.GetMessage(localizer, "TitleSuggestionApproved", nil, nil)
		body = locales.GetMessage(localizer, "MsgSuggestionApproved", data, nil)
	case models.StatusDenied:
		title = locales.GetMessage(localizer, "TitleSuggestionDenied", nil, nil)
		body = locales.GetMessage(localizer, "MsgSuggestionDenied", data, nil)
	case models.StatusImplemented:
		title = locales.GetMessage(localizer, "TitleSuggestionImplemented", data, nil)
		body = locales.GetMessage(localizer, "MsgSuggestionImplemented", data, nil)
	default:
		return
	}
	embed := f.outcomeEmbed(localizer, n, title, body)

	for _, channelID := range models.OutcomeChannels(n.Settings.LogChannels, outcomeWord(s.Status)) {
		if _, err := f.session.Channel(channelID); err != nil {
			log.Printf("[Fanout Guild:%s] Log channel %s no longer resolves, skipping: %v", s.GuildID, channelID, err)
			continue
		}
		if _, err := f.session.SendMessage(channelID, embeds.Message(embed)); err != nil {
			log.Printf("[Fanout Guild:%s] Error posting to log channel %s: %v", s.GuildID, channelID, err)
			f.reporter.Capture(err)
		}
	}
}

// outcomeEmbed builds the shared outcome embed: outcome color plus the
// review reason.
func (f *Fanout) outcomeEmbed(localizer *i18n.Localizer, n Notification, title, body string) *discordgo.MessageEmbed {
	s := n.Suggestion
	opts := embeds.Options{
		Title:       title,
		Description: body,
		Fields: []*discordgo.MessageEmbedField{
			reasonField(localizer, n.ReviewerTag, s.Reason, s.ReviewedAt),
		},
	}
	if s.Status == models.StatusDenied {
		return embeds.Error(opts)
	}
	return embeds.Success(opts)
}
