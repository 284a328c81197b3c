package suggestions

import (
	"context"
	"os"
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/mock"

	"suggestbot/internal/auth"
	"suggestbot/internal/database/models"
	"suggestbot/internal/locales"
)

func TestMain(m *testing.M) {
	locales.Init("en")
	os.Exit(m.Run())
}

// --- Mocks ---

// MockSession is a mock implementing the discordapi.Session interface.
type MockSession struct {
	mock.Mock
}

func (m *MockSession) SendMessage(channelID string, data *discordgo.MessageSend) (*discordgo.Message, error) {
	args := m.Called(channelID, data)
	if msg, ok := args.Get(0).(*discordgo.Message); ok {
		return msg, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockSession) EditMessage(edit *discordgo.MessageEdit) (*discordgo.Message, error) {
	args := m.Called(edit)
	if msg, ok := args.Get(0).(*discordgo.Message); ok {
		return msg, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockSession) DeleteMessage(channelID, messageID string) error {
	args := m.Called(channelID, messageID)
	return args.Error(0)
}

func (m *MockSession) FetchMessage(channelID, messageID string) (*discordgo.Message, error) {
	args := m.Called(channelID, messageID)
	if msg, ok := args.Get(0).(*discordgo.Message); ok {
		return msg, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockSession) Channel(channelID string) (*discordgo.Channel, error) {
	args := m.Called(channelID)
	if ch, ok := args.Get(0).(*discordgo.Channel); ok {
		return ch, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockSession) User(userID string) (*discordgo.User, error) {
	args := m.Called(userID)
	if user, ok := args.Get(0).(*discordgo.User); ok {
		return user, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockSession) CreateDMChannel(userID string) (*discordgo.Channel, error) {
	args := m.Called(userID)
	if ch, ok := args.Get(0).(*discordgo.Channel); ok {
		return ch, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockSession) StartThread(channelID, messageID, name string) (*discordgo.Channel, error) {
	args := m.Called(channelID, messageID, name)
	if ch, ok := args.Get(0).(*discordgo.Channel); ok {
		return ch, args.Error(1)
	}
	return nil, args.Error(1)
}

// MockSuggestionRepo is a mock for database.SuggestionRepository.
type MockSuggestionRepo struct {
	mock.Mock
}

func (m *MockSuggestionRepo) NextSuggestionNumber(ctx context.Context, guildID string) (int, error) {
	args := m.Called(ctx, guildID)
	return args.Int(0), args.Error(1)
}

func (m *MockSuggestionRepo) CreateSuggestion(ctx context.Context, suggestion *models.Suggestion) error {
	args := m.Called(ctx, suggestion)
	return args.Error(0)
}

func (m *MockSuggestionRepo) GetSuggestion(ctx context.Context, guildID string, number int) (*models.Suggestion, error) {
	args := m.Called(ctx, guildID, number)
	if s, ok := args.Get(0).(*models.Suggestion); ok {
		return s, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockSuggestionRepo) CastVote(ctx context.Context, guildID string, number int, userID string, direction models.VoteDirection) (*models.Suggestion, error) {
	args := m.Called(ctx, guildID, number, userID, direction)
	if s, ok := args.Get(0).(*models.Suggestion); ok {
		return s, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockSuggestionRepo) UpdateSuggestionState(ctx context.Context, guildID string, number int, from, to models.SuggestionStatus, channelID, messageID, reviewerID, reason string) error {
	args := m.Called(ctx, guildID, number, from, to, channelID, messageID, reviewerID, reason)
	return args.Error(0)
}

func (m *MockSuggestionRepo) SetSuggestionMessage(ctx context.Context, guildID string, number int, channelID, messageID string) error {
	args := m.Called(ctx, guildID, number, channelID, messageID)
	return args.Error(0)
}

// MockGuildSettingsRepo is a mock for database.GuildSettingsRepository.
type MockGuildSettingsRepo struct {
	mock.Mock
}

func (m *MockGuildSettingsRepo) GetGuildSettings(ctx context.Context, guildID string) (*models.GuildSettings, error) {
	args := m.Called(ctx, guildID)
	if s, ok := args.Get(0).(*models.GuildSettings); ok {
		return s, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockGuildSettingsRepo) SetField(ctx context.Context, guildID, field string, value interface{}) error {
	args := m.Called(ctx, guildID, field, value)
	return args.Error(0)
}

func (m *MockGuildSettingsRepo) ClearField(ctx context.Context, guildID, field string) error {
	args := m.Called(ctx, guildID, field)
	return args.Error(0)
}

func (m *MockGuildSettingsRepo) AddPermission(ctx context.Context, guildID, list, kind, id string) error {
	args := m.Called(ctx, guildID, list, kind, id)
	return args.Error(0)
}

func (m *MockGuildSettingsRepo) RemovePermission(ctx context.Context, guildID, list, kind, id string) error {
	args := m.Called(ctx, guildID, list, kind, id)
	return args.Error(0)
}

// MockUserSettingsRepo is a mock for database.UserSettingsRepository.
type MockUserSettingsRepo struct {
	mock.Mock
}

func (m *MockUserSettingsRepo) IsDMDisabled(ctx context.Context, userID string) (bool, error) {
	args := m.Called(ctx, userID)
	return args.Bool(0), args.Error(1)
}

func (m *MockUserSettingsRepo) SetDMDisabled(ctx context.Context, userID string, disabled bool) error {
	args := m.Called(ctx, userID, disabled)
	return args.Error(0)
}

// stubAuthorizer is a fixed-answer auth.ReviewAuthorizer.
type stubAuthorizer struct {
	allow bool
}

func (s stubAuthorizer) CanReview(actor auth.Actor, settings *models.GuildSettings) bool {
	return s.allow
}

// stubReporter records captured errors without talking to Sentry.
type stubReporter struct {
	captured []error
}

func (r *stubReporter) Capture(err error) string {
	r.captured = append(r.captured, err)
	return "stub-event-id"
}

func (r *stubReporter) CaptureInteraction(err error, i *discordgo.InteractionCreate) string {
	return r.Capture(err)
}
