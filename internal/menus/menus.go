// Package menus builds the music menus on top of the ui toolkit: queue and
// history pages, track pickers, the players overview, presets, effects and
// the node management flows.
package menus

import (
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/keshon/lavadeck/internal/lavalink"
	"github.com/keshon/lavadeck/internal/ui"
)

// Client is the playback client surface the menus read from.
type Client interface {
	Player(guildID string) (*lavalink.Player, bool)
	Players() *lavalink.PlayerManager
	Nodes() *lavalink.NodeRegistry
	ConstructEmbed(opts lavalink.EmbedOptions) *discordgo.MessageEmbed
}

// Options are shared by every menu constructor.
type Options struct {
	// Author is the user the menu answers to.
	Author  string
	Timeout time.Duration
	// Allow is passed through to the view as an extra gate.
	Allow func(in *ui.Interaction) bool
}

func (o Options) view(deleteAfterTimeout bool) ui.ViewOptions {
	return ui.ViewOptions{
		Author:             o.Author,
		Allow:              o.Allow,
		Timeout:            o.Timeout,
		DeleteAfterTimeout: deleteAfterTimeout,
		Ephemeral:          true,
	}
}

func embed(c Client, description string) ui.Content {
	return ui.EmbedContent(c.ConstructEmbed(lavalink.EmbedOptions{Description: description}))
}
