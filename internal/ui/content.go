package ui

import "github.com/bwmarrin/discordgo"

// Content is a message body: plain text or a single embed, never both.
type Content struct {
	text  string
	embed *discordgo.MessageEmbed
}

func TextContent(s string) Content {
	return Content{text: s}
}

func EmbedContent(e *discordgo.MessageEmbed) Content {
	return Content{embed: e}
}

func (c Content) Text() string                   { return c.text }
func (c Content) Embed() *discordgo.MessageEmbed { return c.embed }
func (c Content) IsEmbed() bool                  { return c.embed != nil }
func (c Content) IsZero() bool                   { return c.embed == nil && c.text == "" }

// Component is a rendered message component.
type Component = discordgo.MessageComponent
