package discordapi

import (
	"fmt"

	"github.com/bwmarrin/discordgo"
)

// SessionAdapter implements Session on top of a real *discordgo.Session.
type SessionAdapter struct {
	session *discordgo.Session
}

// NewSessionAdapter wraps a discordgo session.
func NewSessionAdapter(session *discordgo.Session) *SessionAdapter {
	return &SessionAdapter{session: session}
}

func (a *SessionAdapter) SendMessage(channelID string, data *discordgo.MessageSend) (*discordgo.Message, error) {
	return a.session.ChannelMessageSendComplex(channelID, data)
}

func (a *SessionAdapter) EditMessage(edit *discordgo.MessageEdit) (*discordgo.Message, error) {
	return a.session.ChannelMessageEditComplex(edit)
}

func (a *SessionAdapter) DeleteMessage(channelID, messageID string) error {
	return a.session.ChannelMessageDelete(channelID, messageID)
}

func (a *SessionAdapter) FetchMessage(channelID, messageID string) (*discordgo.Message, error) {
	return a.session.ChannelMessage(channelID, messageID)
}

func (a *SessionAdapter) Channel(channelID string) (*discordgo.Channel, error) {
	return a.session.Channel(channelID)
}

func (a *SessionAdapter) User(userID string) (*discordgo.User, error) {
	return a.session.User(userID)
}

func (a *SessionAdapter) CreateDMChannel(userID string) (*discordgo.Channel, error) {
	return a.session.UserChannelCreate(userID)
}

func (a *SessionAdapter) StartThread(channelID, messageID, name string) (*discordgo.Channel, error) {
	return a.session.MessageThreadStartComplex(channelID, messageID, &discordgo.ThreadStart{
		Name:                name,
		AutoArchiveDuration: 1440,
	})
}

// MessageURL builds the canonical link to a guild message.
func MessageURL(guildID, channelID, messageID string) string {
	return fmt.Sprintf("https://discord.com/channels/%s/%s/%s", guildID, channelID, messageID)
}

// IsRESTErrorCode reports whether err is a Discord REST error with the given
// JSON error code (e.g. "cannot send messages to this user").
func IsRESTErrorCode(err error, code int) bool {
	restErr, ok := err.(*discordgo.RESTError)
	if !ok || restErr.Message == nil {
		return false
	}
	return restErr.Message.Code == code
}
