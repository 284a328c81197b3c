// Package suggestions implements the suggestion lifecycle: submission,
// voting, review with reason collection, implementation, and the outcome
// fan-out.
package suggestions

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/nicksnyder/go-i18n/v2/i18n"

	"suggestbot/internal/auth"
	"suggestbot/internal/database"
	"suggestbot/internal/database/models"
	"suggestbot/internal/errreport"
	"suggestbot/internal/locales"
	"suggestbot/pkg/discordapi"
	"suggestbot/pkg/embeds"
)

// Workflow coordinates the suggestion lifecycle across the store, the
// permission resolver, review sessions and the notification fan-out.
type Workflow struct {
	session     discordapi.Session
	suggestions database.SuggestionRepository
	guilds      database.GuildSettingsRepository
	users       database.UserSettingsRepository
	authz       auth.ReviewAuthorizer
	fanout      *Fanout
	reporter    errreport.Reporter

	sessions *sessionStore
}

// NewWorkflow creates the workflow. All collaborators are required.
func NewWorkflow(
	session discordapi.Session,
	suggestions database.SuggestionRepository,
	guilds database.GuildSettingsRepository,
	users database.UserSettingsRepository,
	authz auth.ReviewAuthorizer,
	fanout *Fanout,
	reporter errreport.Reporter,
) *Workflow {
	if session == nil {
		log.Fatal("Suggestion Workflow: session is nil")
	}
	if suggestions == nil {
		log.Fatal("Suggestion Workflow: suggestion repository is nil")
	}
	if guilds == nil {
		log.Fatal("Suggestion Workflow: guild settings repository is nil")
	}
	if users == nil {
		log.Fatal("Suggestion Workflow: user settings repository is nil")
	}
	if authz == nil {
		log.Fatal("Suggestion Workflow: authorizer is nil")
	}
	if fanout == nil {
		log.Fatal("Suggestion Workflow: fanout is nil")
	}
	if reporter == nil {
		log.Fatal("Suggestion Workflow: reporter is nil")
	}

	return &Workflow{
		session:     session,
		suggestions: suggestions,
		guilds:      guilds,
		users:       users,
		authz:       authz,
		fanout:      fanout,
		reporter:    reporter,
		sessions:    newSessionStore(),
	}
}

// Submit records a new suggestion and posts it. With a review channel
// configured the suggestion goes into the queue with approve/deny controls
// and queued is true; otherwise it is published directly with zeroed vote
// buttons. An attached image is dropped when the guild disabled them.
// ErrNoSuggestionChannel when the guild never configured one.
func (w *Workflow) Submit(ctx context.Context, guildID, suggesterID, content, imageURL string, anonymous bool) (s *models.Suggestion, queued bool, err error) {
	settings, err := w.guilds.GetGuildSettings(ctx, guildID)
	if err != nil {
		return nil, false, fmt.Errorf("failed to load guild settings: %w", err)
	}
	if settings.SuggestionChannelID == "" {
		return nil, false, ErrNoSuggestionChannel
	}
	if settings.AttachImagesDisabled {
		imageURL = ""
	}

	number, err := w.suggestions.NextSuggestionNumber(ctx, guildID)
	if err != nil {
		return nil, false, fmt.Errorf("failed to reserve suggestion number: %w", err)
	}

	s = &models.Suggestion{
		GuildID:          guildID,
		SuggestionNumber: number,
		SuggesterID:      suggesterID,
		Content:          content,
		ImageURL:         imageURL,
		Anonymous:        anonymous || settings.AnonymousSuggestions,
		Status:           models.StatusOpen,
		SubmittedAt:      time.Now(),
	}

	localizer := locales.NewLocalizer(locales.GetDefaultLanguageTag().String())
	embed := SuggestionEmbed(localizer, s, w.fetchUser(suggesterID))

	var posted *discordgo.Message
	if settings.ReviewChannelID != "" {
		queued = true
		posted, err = w.session.SendMessage(settings.ReviewChannelID,
			embeds.Message(embed, ReviewButtons(localizer, guildID, number)))
	} else {
		msg := embeds.Message(embed, VoteButtons(guildID, number, s.Votes, settings))
		if ping := pingContent(settings); ping != "" {
			msg.Content = ping
			msg.AllowedMentions = &discordgo.MessageAllowedMentions{
				Roles: []string{settings.SuggestionPingRoleID},
			}
		}
		posted, err = w.session.SendMessage(settings.SuggestionChannelID, msg)
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to post suggestion %d in guild %s: %w", number, guildID, err)
	}
	s.ChannelID = posted.ChannelID
	s.MessageID = posted.ID

	if err := w.suggestions.CreateSuggestion(ctx, s); err != nil {
		return nil, false, fmt.Errorf("failed to store suggestion %d in guild %s: %w", number, guildID, err)
	}
	log.Printf("[Workflow Guild:%s] Suggestion %d submitted by %s (queued=%v)", guildID, number, suggesterID, queued)

	if !queued && settings.AutoThread {
		w.startThread(localizer, s)
	}
	return s, queued, nil
}

// Vote records a vote and refreshes the tallies on the public message. A
// repeat vote in the same direction changes nothing; voting the other way
// moves the voter across. Only open suggestions accept votes.
func (w *Workflow) Vote(ctx context.Context, guildID string, number int, userID string, direction models.VoteDirection) (*models.Suggestion, error) {
	if !direction.Valid() {
		return nil, fmt.Errorf("invalid vote direction %q", direction)
	}

	s, err := w.suggestions.GetSuggestion(ctx, guildID, number)
	if err != nil {
		return nil, err
	}
	if s.Decided() {
		return nil, database.ErrAlreadyDecided
	}

	updated, err := w.suggestions.CastVote(ctx, guildID, number, userID, direction)
	if err != nil {
		return nil, fmt.Errorf("failed to cast vote on suggestion %d in guild %s: %w", number, guildID, err)
	}

	settings, err := w.guilds.GetGuildSettings(ctx, guildID)
	if err != nil {
		log.Printf("[Workflow Guild:%s] Error loading settings for vote render: %v", guildID, err)
		return updated, nil
	}
	// The vote is durable at this point; a render failure only leaves the
	// labels stale until the next vote.
	components := []discordgo.MessageComponent{VoteButtons(guildID, number, updated.Votes, settings)}
	if _, err := w.session.EditMessage(&discordgo.MessageEdit{
		Channel:    updated.ChannelID,
		ID:         updated.MessageID,
		Components: &components,
	}); err != nil {
		log.Printf("[Workflow Guild:%s] Error refreshing vote buttons on suggestion %d: %v", guildID, number, err)
		w.reporter.Capture(err)
	}
	return updated, nil
}

// Review starts the decision for a suggestion. Denials always collect a
// reason first: the call returns awaitingReason=true and the outcome is
// applied when the reason arrives or the window lapses. Approvals apply
// immediately unless the reviewer asked to attach a reason.
func (w *Workflow) Review(ctx context.Context, actor auth.Actor, guildID string, number int, verdict string, withReason bool) (awaitingReason bool, err error) {
	if verdict != VerdictApprove && verdict != VerdictDeny {
		return false, fmt.Errorf("invalid verdict %q", verdict)
	}

	settings, err := w.guilds.GetGuildSettings(ctx, guildID)
	if err != nil {
		return false, fmt.Errorf("failed to load guild settings: %w", err)
	}
	if !w.authz.CanReview(actor, settings) {
		return false, ErrForbidden
	}

	s, err := w.suggestions.GetSuggestion(ctx, guildID, number)
	if err != nil {
		return false, err
	}
	if s.Decided() {
		return false, database.ErrAlreadyDecided
	}

	if verdict == VerdictDeny || withReason {
		w.sessions.open(guildID, number, actor.UserID, verdict, reasonWindow, w.expireSession)
		return true, nil
	}
	return false, w.finalizeReview(ctx, guildID, number, actor.UserID, verdict, "")
}

// SubmitReason resolves the pending review session for (guild, number,
// reviewer) with the given reason. ErrNoActiveSession when the window
// already lapsed or the session was never opened.
func (w *Workflow) SubmitReason(ctx context.Context, guildID string, number int, reviewerID, reason string) error {
	session, ok := w.sessions.take(guildID, number, reviewerID)
	if !ok {
		return ErrNoActiveSession
	}

	var finalizeErr error
	fired := session.resolve(reason, func(r string) {
		finalizeErr = w.finalizeReview(ctx, guildID, number, reviewerID, session.Verdict, r)
	})
	if !fired {
		return ErrNoActiveSession
	}
	return finalizeErr
}

// expireSession applies the outcome with no reason after the collection
// window lapsed. Runs on the session timer goroutine.
func (w *Workflow) expireSession(session *ReviewSession) {
	log.Printf("[Workflow Guild:%s] Reason window expired for suggestion %d, proceeding without one",
		session.GuildID, session.Number)
	err := w.finalizeReview(context.Background(), session.GuildID, session.Number, session.ReviewerID, session.Verdict, "")
	if err != nil && !errors.Is(err, database.ErrAlreadyDecided) {
		log.Printf("[Workflow Guild:%s] Error finalizing expired review of suggestion %d: %v",
			session.GuildID, session.Number, err)
		w.reporter.Capture(err)
	}
}

// finalizeReview applies an approve/deny outcome exactly once, re-renders
// the original message, republishes approvals, and kicks off the fan-out.
func (w *Workflow) finalizeReview(ctx context.Context, guildID string, number int, reviewerID, verdict, reason string) error {
	to := models.StatusApproved
	if verdict == VerdictDeny {
		to = models.StatusDenied
	}

	s, err := w.suggestions.GetSuggestion(ctx, guildID, number)
	if err != nil {
		return err
	}
	if err := w.suggestions.UpdateSuggestionState(ctx, guildID, number,
		models.StatusOpen, to, s.ChannelID, s.MessageID, reviewerID, reason); err != nil {
		return err
	}
	s.Status = to
	s.Reason = reason
	s.ReviewedBy = reviewerID
	s.ReviewedAt = time.Now()
	log.Printf("[Workflow Guild:%s] Suggestion %d %s by %s", guildID, number, outcomeWord(to), reviewerID)

	localizer := locales.NewLocalizer(locales.GetDefaultLanguageTag().String())
	reviewerTag := w.userTag(reviewerID)
	suggester := w.fetchUser(s.SuggesterID)

	w.renderDecided(localizer, s, suggester, reviewerTag)

	settings, err := w.guilds.GetGuildSettings(ctx, guildID)
	if err != nil {
		log.Printf("[Workflow Guild:%s] Error loading settings after review of suggestion %d: %v", guildID, number, err)
		w.reporter.Capture(err)
		settings = &models.GuildSettings{GuildID: guildID}
	}

	publicURL := ""
	if to == models.StatusApproved {
		publicURL = w.publishApproved(ctx, localizer, s, suggester, settings)
	}

	w.fanout.Notify(Notification{
		Suggestion:  s,
		Settings:    settings,
		ReviewerTag: reviewerTag,
		MessageURL:  publicURL,
	})
	return nil
}

// publishApproved moves an approved suggestion into the public channel with
// live vote buttons and returns its URL. When the suggestion already lives
// there (no review queue), the existing message stays and its URL is used.
func (w *Workflow) publishApproved(ctx context.Context, localizer *i18n.Localizer, s *models.Suggestion, suggester *discordgo.User, settings *models.GuildSettings) string {
	if settings.SuggestionChannelID == "" || settings.SuggestionChannelID == s.ChannelID {
		if s.ChannelID == "" {
			return ""
		}
		return discordapi.MessageURL(s.GuildID, s.ChannelID, s.MessageID)
	}

	msg := embeds.Message(
		SuggestionEmbed(localizer, s, suggester),
		VoteButtons(s.GuildID, s.SuggestionNumber, s.Votes, settings),
	)
	posted, err := w.session.SendMessage(settings.SuggestionChannelID, msg)
	if err != nil {
		log.Printf("[Workflow Guild:%s] Error republishing approved suggestion %d: %v", s.GuildID, s.SuggestionNumber, err)
		w.reporter.Capture(err)
		return ""
	}
	if err := w.suggestions.SetSuggestionMessage(ctx, s.GuildID, s.SuggestionNumber, posted.ChannelID, posted.ID); err != nil {
		log.Printf("[Workflow Guild:%s] Error recording republished message for suggestion %d: %v", s.GuildID, s.SuggestionNumber, err)
		w.reporter.Capture(err)
	}
	s.ChannelID = posted.ChannelID
	s.MessageID = posted.ID

	if settings.AutoThread {
		w.startThread(localizer, s)
	}
	return discordapi.MessageURL(s.GuildID, posted.ChannelID, posted.ID)
}

// Implement marks an approved suggestion as implemented. The public message
// is edited in place, or with deleteOnDecision removed and reposted to the
// configured decision channels. With anonymous set the reviewer's tag is
// masked in the rendered message and the outcome notifications. Requires
// review authorization and an approved suggestion; an open or already-final
// suggestion yields ErrAlreadyDecided with nothing edited or sent.
func (w *Workflow) Implement(ctx context.Context, actor auth.Actor, guildID string, number int, reason string, anonymous bool) error {
	settings, err := w.guilds.GetGuildSettings(ctx, guildID)
	if err != nil {
		return fmt.Errorf("failed to load guild settings: %w", err)
	}
	if !w.authz.CanReview(actor, settings) {
		return ErrForbidden
	}

	s, err := w.suggestions.GetSuggestion(ctx, guildID, number)
	if err != nil {
		return err
	}
	if err := w.suggestions.UpdateSuggestionState(ctx, guildID, number,
		models.StatusApproved, models.StatusImplemented, s.ChannelID, s.MessageID, actor.UserID, reason); err != nil {
		return err
	}
	s.Status = models.StatusImplemented
	s.Reason = reason
	s.ReviewedBy = actor.UserID
	s.ReviewedAt = time.Now()
	log.Printf("[Workflow Guild:%s] Suggestion %d implemented by %s", guildID, number, actor.UserID)

	localizer := locales.NewLocalizer(locales.GetDefaultLanguageTag().String())
	reviewerTag := locales.GetMessage(localizer, "AuthorAnonymous", nil, nil)
	if !anonymous {
		reviewerTag = w.userTag(actor.UserID)
	}
	suggester := w.fetchUser(s.SuggesterID)
	embed := DecidedEmbed(localizer, s, suggester, reviewerTag)

	publicURL := ""
	if settings.DeleteOnDecision {
		if err := w.session.DeleteMessage(s.ChannelID, s.MessageID); err != nil {
			log.Printf("[Workflow Guild:%s] Error deleting implemented suggestion %d: %v", guildID, number, err)
			w.reporter.Capture(err)
		}
		for _, channelID := range models.OutcomeChannels(settings.DecisionChannels, models.OutcomeApproved) {
			posted, err := w.session.SendMessage(channelID, embeds.Message(embed))
			if err != nil {
				log.Printf("[Workflow Guild:%s] Error posting implemented suggestion %d to decision channel %s: %v",
					guildID, number, channelID, err)
				w.reporter.Capture(err)
				continue
			}
			if publicURL == "" {
				publicURL = discordapi.MessageURL(guildID, posted.ChannelID, posted.ID)
			}
		}
	} else {
		w.renderDecided(localizer, s, suggester, reviewerTag)
		if s.ChannelID != "" {
			publicURL = discordapi.MessageURL(guildID, s.ChannelID, s.MessageID)
		}
	}

	w.fanout.Notify(Notification{
		Suggestion:  s,
		Settings:    settings,
		ReviewerTag: reviewerTag,
		MessageURL:  publicURL,
	})
	return nil
}

// ToggleDMs flips the user's outcome-DM opt-out and returns the new state.
func (w *Workflow) ToggleDMs(ctx context.Context, userID string) (nowDisabled bool, err error) {
	disabled, err := w.users.IsDMDisabled(ctx, userID)
	if err != nil {
		return false, fmt.Errorf("failed to read DM opt-out for user %s: %w", userID, err)
	}
	if err := w.users.SetDMDisabled(ctx, userID, !disabled); err != nil {
		return false, fmt.Errorf("failed to update DM opt-out for user %s: %w", userID, err)
	}
	return !disabled, nil
}

// renderDecided rewrites the suggestion message with the outcome embed and
// strips the interactive controls. Best effort.
func (w *Workflow) renderDecided(localizer *i18n.Localizer, s *models.Suggestion, suggester *discordgo.User, reviewerTag string) {
	if s.ChannelID == "" || s.MessageID == "" {
		return
	}
	decided := []*discordgo.MessageEmbed{DecidedEmbed(localizer, s, suggester, reviewerTag)}
	components := []discordgo.MessageComponent{}
	if _, err := w.session.EditMessage(&discordgo.MessageEdit{
		Channel:    s.ChannelID,
		ID:         s.MessageID,
		Embeds:     &decided,
		Components: &components,
	}); err != nil {
		log.Printf("[Workflow Guild:%s] Error rendering decided suggestion %d: %v", s.GuildID, s.SuggestionNumber, err)
		w.reporter.Capture(err)
	}
}

// startThread opens the auto-thread under a public suggestion message.
func (w *Workflow) startThread(localizer *i18n.Localizer, s *models.Suggestion) {
	thread, err := w.session.StartThread(s.ChannelID, s.MessageID, threadName(localizer, s.SuggestionNumber))
	if err != nil {
		log.Printf("[Workflow Guild:%s] Error starting thread on suggestion %d: %v", s.GuildID, s.SuggestionNumber, err)
		w.reporter.Capture(err)
		return
	}
	reasonMsg := locales.GetMessage(localizer, "MsgThreadReason", nil, nil)
	if _, err := w.session.SendMessage(thread.ID, &discordgo.MessageSend{Content: reasonMsg}); err != nil {
		log.Printf("[Workflow Guild:%s] Error posting thread notice on suggestion %d: %v", s.GuildID, s.SuggestionNumber, err)
	}
}

// fetchUser resolves a user for embed rendering, nil when unavailable.
func (w *Workflow) fetchUser(userID string) *discordgo.User {
	user, err := w.session.User(userID)
	if err != nil {
		log.Printf("[Workflow] Error fetching user %s: %v", userID, err)
		return nil
	}
	return user
}

// userTag resolves a display tag for footers, falling back to the raw ID.
func (w *Workflow) userTag(userID string) string {
	if user, err := w.session.User(userID); err == nil {
		return user.Username
	}
	return userID
}
