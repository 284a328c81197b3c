package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bwmarrin/discordgo"
	sentry "github.com/getsentry/sentry-go"

	appbot "suggestbot/bot"
	"suggestbot/internal/auth"
	"suggestbot/internal/config"
	"suggestbot/internal/database"
	"suggestbot/internal/errreport"
	"suggestbot/internal/handlers"
	"suggestbot/internal/locales"
	"suggestbot/internal/suggestions"
	"suggestbot/pkg/discordapi"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Configuration error: %v", err)
	}

	// Initialize localization bundle
	locales.Init(cfg.DefaultLanguage)

	// Initialize Sentry (if DSN is provided)
	err = sentry.Init(sentry.ClientOptions{
		Dsn:              cfg.SentryDSN,
		Environment:      cfg.AppEnv,
		Release:          cfg.Version,
		EnableTracing:    true,
		TracesSampleRate: 1.0,
		Debug:            cfg.Debug,
	})
	if err != nil {
		log.Fatalf("sentry.Init: %s", err)
	}
	defer sentry.Flush(2 * time.Second)

	// Connect to MongoDB
	client, db, err := database.ConnectDB(cfg)
	if err != nil {
		sentry.CaptureException(err)
		log.Fatal(err)
	}
	defer func() {
		if err = client.Disconnect(context.Background()); err != nil {
			log.Printf("Error disconnecting from MongoDB: %v", err)
			sentry.CaptureException(err)
		} else {
			log.Println("Disconnected from MongoDB.")
		}
	}()

	// Create repository instances
	suggestionRepo := database.NewMongoSuggestionRepository(db)
	guildSettingsRepo := database.NewMongoGuildSettingsRepository(db)
	userSettingsRepo := database.NewMongoUserSettingsRepository(db)

	// Creating context for application lifecycle
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// --- Bot Initialization ---
	// 1. Create the raw discordgo session first
	session, err := discordgo.New("Bot " + cfg.BotToken)
	if err != nil {
		sentry.CaptureException(err)
		log.Fatalf("Failed to create Discord session: %v", err)
	}
	if cfg.Debug {
		session.LogLevel = discordgo.LogInformational
	}

	// 2. Assemble the workflow and its collaborators
	api := discordapi.NewSessionAdapter(session)
	reporter := errreport.NewSentryReporter()
	fanout := suggestions.NewFanout(api, userSettingsRepo, reporter)
	workflow := suggestions.NewWorkflow(
		api,
		suggestionRepo,
		guildSettingsRepo,
		userSettingsRepo,
		auth.NewResolver(),
		fanout,
		reporter,
	)

	// 3. Create the interaction handler
	handler := handlers.NewHandler(workflow, guildSettingsRepo, appbot.NewResponder(session), reporter)

	// 4. Create and start the bot wrapper
	bot, err := appbot.New(session, cfg.Debug, handler)
	if err != nil {
		sentry.CaptureException(err)
		log.Fatal(err)
	}
	if err := bot.Start(ctx); err != nil {
		sentry.CaptureException(err)
		log.Fatalf("Failed to start bot: %v", err)
	}

	// Wait for context cancellation (e.g., SIGINT, SIGTERM)
	<-ctx.Done()

	log.Println("Shutting down bot...")
	bot.Stop()

	log.Println("Bot shutdown complete.")
}
