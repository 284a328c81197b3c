// Package bot wraps the Discord session: it opens the gateway connection,
// registers the slash commands, and feeds interactions into the handler.
package bot

import (
	"context"
	"fmt"
	"log"
	"runtime/debug"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/getsentry/sentry-go"

	"suggestbot/internal/handlers"
	"suggestbot/internal/locales"
)

// interactionTimeout bounds the work done for a single interaction. Discord
// expects the first acknowledgement within seconds; anything slower than
// this is already a failure worth cancelling.
const interactionTimeout = 15 * time.Second

// Bot ties the gateway session to the interaction handler.
type Bot struct {
	session *discordgo.Session
	handler *handlers.Handler
	debug   bool

	registered []*discordgo.ApplicationCommand
}

// New creates the bot wrapper around an existing session.
func New(session *discordgo.Session, debug bool, handler *handlers.Handler) (*Bot, error) {
	if session == nil {
		return nil, fmt.Errorf("discord session cannot be nil")
	}
	if handler == nil {
		return nil, fmt.Errorf("interaction handler cannot be nil")
	}
	return &Bot{
		session: session,
		handler: handler,
		debug:   debug,
	}, nil
}

// Start opens the gateway connection and registers the slash commands.
func (b *Bot) Start(ctx context.Context) error {
	b.session.Identify.Intents = discordgo.IntentsGuilds

	b.session.AddHandler(func(s *discordgo.Session, r *discordgo.Ready) {
		log.Printf("[Bot] Logged in as %s#%s, serving %d guild(s)",
			r.User.Username, r.User.Discriminator, len(r.Guilds))
	})
	b.session.AddHandler(b.onInteraction)

	if err := b.session.Open(); err != nil {
		return fmt.Errorf("failed to open gateway connection: %w", err)
	}

	if err := b.registerCommands(); err != nil {
		return err
	}
	log.Printf("[Bot] Registered %d application command(s)", len(b.registered))
	return nil
}

// Stop closes the gateway connection.
func (b *Bot) Stop() {
	if err := b.session.Close(); err != nil {
		log.Printf("[Bot] Error closing session: %v", err)
		sentry.CaptureException(err)
	}
}

func (b *Bot) registerCommands() error {
	localizer := locales.NewLocalizer(locales.GetDefaultLanguageTag().String())
	appID := b.session.State.User.ID

	for _, definition := range handlers.CommandDefinitions(localizer) {
		created, err := b.session.ApplicationCommandCreate(appID, "", definition)
		if err != nil {
			return fmt.Errorf("failed to register command %q: %w", definition.Name, err)
		}
		b.registered = append(b.registered, created)
	}
	return nil
}

// onInteraction runs on the gateway event goroutine. A panicking handler
// must not take the gateway loop down with it.
func (b *Bot) onInteraction(s *discordgo.Session, i *discordgo.InteractionCreate) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[Bot] Panic handling interaction: %v\n%s", r, debug.Stack())
			sentry.CurrentHub().Recover(r)
		}
	}()

	if b.debug {
		log.Printf("[Bot] Interaction type=%d guild=%s", i.Type, i.GuildID)
	}

	ctx, cancel := context.WithTimeout(context.Background(), interactionTimeout)
	defer cancel()
	b.handler.HandleInteraction(ctx, i)
}

// Responder adapts the session to the handlers.Responder interface.
type Responder struct {
	session *discordgo.Session
}

// NewResponder wraps a session for interaction acknowledgements.
func NewResponder(session *discordgo.Session) *Responder {
	return &Responder{session: session}
}

// Respond forwards the acknowledgement to Discord.
func (r *Responder) Respond(i *discordgo.Interaction, resp *discordgo.InteractionResponse) error {
	return r.session.InteractionRespond(i, resp)
}
