package discordapi

import (
	"github.com/bwmarrin/discordgo"
)

// Session defines the interface for Discord operations used by various
// packages. This allows using both the real discordgo session and mocks.
type Session interface {
	// SendMessage posts a message with embeds and components to a channel.
	SendMessage(channelID string, data *discordgo.MessageSend) (*discordgo.Message, error)
	// EditMessage edits a previously posted message in place.
	EditMessage(edit *discordgo.MessageEdit) (*discordgo.Message, error)
	// DeleteMessage removes a message.
	DeleteMessage(channelID, messageID string) error
	// FetchMessage retrieves a message by ID.
	FetchMessage(channelID, messageID string) (*discordgo.Message, error)

	// Channel resolves a channel by ID.
	Channel(channelID string) (*discordgo.Channel, error)
	// User fetches a user by ID.
	User(userID string) (*discordgo.User, error)
	// CreateDMChannel opens (or returns) the DM channel with a user.
	CreateDMChannel(userID string) (*discordgo.Channel, error)
	// StartThread starts a public thread on a message.
	StartThread(channelID, messageID, name string) (*discordgo.Channel, error)
}
