// Package embeds builds the message payloads the bot sends: primary,
// success and error embeds with the fixed color palette, plus small
// formatting helpers.
package embeds

import (
	"fmt"
	"time"

	"github.com/bwmarrin/discordgo"
)

// Embed colors, hexadecimal RGB.
const (
	ColorPrimary = 0x5865F2
	ColorSuccess = 0x57F287
	ColorWarning = 0xFEE75C
	ColorError   = 0xED4245
)

// Options describes the variable parts of an embed.
type Options struct {
	Title       string
	Description string
	URL         string
	Author      *discordgo.MessageEmbedAuthor
	ImageURL    string
	Fields      []*discordgo.MessageEmbedField
	FooterText  string
	FooterIcon  string
	Timestamp   string
}

func build(o Options, color int) *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{
		Title:       o.Title,
		Description: o.Description,
		URL:         o.URL,
		Author:      o.Author,
		Fields:      o.Fields,
		Color:       color,
		Timestamp:   o.Timestamp,
	}
	if o.ImageURL != "" {
		embed.Image = &discordgo.MessageEmbedImage{URL: o.ImageURL}
	}
	if o.FooterText != "" {
		embed.Footer = &discordgo.MessageEmbedFooter{
			Text:    o.FooterText,
			IconURL: o.FooterIcon,
		}
	}
	return embed
}

// Primary builds a primary-colored embed.
func Primary(o Options) *discordgo.MessageEmbed { return build(o, ColorPrimary) }

// Success builds a success-colored embed.
func Success(o Options) *discordgo.MessageEmbed { return build(o, ColorSuccess) }

// Error builds an error-colored embed.
func Error(o Options) *discordgo.MessageEmbed { return build(o, ColorError) }

// Field is a shorthand for a non-inline embed field.
func Field(name, value string) *discordgo.MessageEmbedField {
	return &discordgo.MessageEmbedField{Name: name, Value: value}
}

// Timestamp renders t as Discord's long date-time markup.
func Timestamp(t time.Time) string {
	return fmt.Sprintf("<t:%d:f>", t.Unix())
}

// Message wraps embeds and components into a sendable payload.
func Message(embed *discordgo.MessageEmbed, components ...discordgo.MessageComponent) *discordgo.MessageSend {
	return &discordgo.MessageSend{
		Embeds:     []*discordgo.MessageEmbed{embed},
		Components: components,
	}
}
