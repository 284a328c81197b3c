package errreport

import (
	"github.com/bwmarrin/discordgo"
	sentry "github.com/getsentry/sentry-go"
)

// Reporter forwards unexpected errors to the error tracker and returns a
// correlation ID usable in user-facing failure messages.
type Reporter interface {
	Capture(err error) string
	CaptureInteraction(err error, i *discordgo.InteractionCreate) string
}

// SentryReporter implements Reporter on top of the Sentry SDK.
type SentryReporter struct{}

// NewSentryReporter creates a new Sentry-backed reporter.
func NewSentryReporter() *SentryReporter {
	return &SentryReporter{}
}

// Capture reports an error without interaction context.
func (r *SentryReporter) Capture(err error) string {
	if err == nil {
		return ""
	}
	if id := sentry.CaptureException(err); id != nil {
		return string(*id)
	}
	return ""
}

// CaptureInteraction reports an error tagged with the originating
// interaction so the event can be traced back to the guild and actor.
func (r *SentryReporter) CaptureInteraction(err error, i *discordgo.InteractionCreate) string {
	if err == nil {
		return ""
	}
	if i == nil {
		return r.Capture(err)
	}

	var eventID string
	sentry.WithScope(func(scope *sentry.Scope) {
		scope.SetTag("guild_id", i.GuildID)
		scope.SetTag("channel_id", i.ChannelID)
		if i.Member != nil && i.Member.User != nil {
			scope.SetTag("user_id", i.Member.User.ID)
		} else if i.User != nil {
			scope.SetTag("user_id", i.User.ID)
		}
		switch i.Type {
		case discordgo.InteractionApplicationCommand:
			scope.SetTag("command", i.ApplicationCommandData().Name)
		case discordgo.InteractionMessageComponent:
			scope.SetTag("custom_id", i.MessageComponentData().CustomID)
		case discordgo.InteractionModalSubmit:
			scope.SetTag("custom_id", i.ModalSubmitData().CustomID)
		}
		if id := sentry.CaptureException(err); id != nil {
			eventID = string(*id)
		}
	})
	return eventID
}
