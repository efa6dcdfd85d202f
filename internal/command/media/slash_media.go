package media

import (
	"context"
	"errors"
	"fmt"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog/log"

	"github.com/keshon/lavadeck/internal/command"
	"github.com/keshon/lavadeck/internal/lavalink"
	"github.com/keshon/lavadeck/internal/menus"
	"github.com/keshon/lavadeck/internal/ui"
)

const (
	addNodeTitle       = "Add a node"
	addNodeDescription = "Fill in the connection details with the buttons below, then press Done."
)

// MediaCommand is /media: queue, history and node menus.
type MediaCommand struct {
	cog *Cog
}

func (c *MediaCommand) Name() string             { return "media" }
func (c *MediaCommand) Description() string      { return "Browse and manage the music player" }
func (c *MediaCommand) Group() string            { return "media" }
func (c *MediaCommand) Category() string         { return "🎵 Music" }
func (c *MediaCommand) UserPermissions() []int64 { return []int64{} }

func (c *MediaCommand) SlashDefinition() *discordgo.ApplicationCommand {
	sub := func(name, description string, options ...*discordgo.ApplicationCommandOption) *discordgo.ApplicationCommandOption {
		return &discordgo.ApplicationCommandOption{
			Type:        discordgo.ApplicationCommandOptionSubCommand,
			Name:        name,
			Description: description,
			Options:     options,
		}
	}
	return &discordgo.ApplicationCommand{
		Name:        c.Name(),
		Description: c.Description(),
		Options: []*discordgo.ApplicationCommandOption{
			sub("queue", "Show the player queue"),
			sub("history", "Show the recently played tracks"),
			sub("players", "Show every connected player"),
			sub("remove", "Remove a track from the queue"),
			sub("playnow", "Play a queued track right away"),
			sub("search", "Search the tracks known to the player and enqueue one",
				&discordgo.ApplicationCommandOption{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "query",
					Description: "Title, author or URL",
					Required:    true,
				}),
			sub("presets", "List the equalizer presets"),
			sub("effects", "Apply an audio effect"),
			sub("nodes", "Manage the playback nodes"),
			sub("addnode", "Add a playback node"),
		},
	}
}

func (c *MediaCommand) Run(ctx context.Context, data any) error {
	sc, ok := data.(*command.SlashInteractionContext)
	if !ok {
		return nil
	}
	in := sc.Interaction
	client := c.cog.Client
	m := c.cog.UI
	opts := menus.Options{Author: in.UserID, Timeout: c.cog.MenuTimeout}

	switch sc.Subcommand() {
	case "queue":
		return menus.NewQueueMenu(m, client, in.GuildID, false, opts).Start(ctx, in)
	case "history":
		return menus.NewQueueMenu(m, client, in.GuildID, true, opts).Start(ctx, in)
	case "players":
		return menus.NewPlayersMenu(m, client, opts).Start(ctx, in)
	case "remove":
		return menus.NewQueuePickerMenu(m, client, in.GuildID, menus.ActionRemove, opts).Start(ctx, in)
	case "playnow":
		return menus.NewQueuePickerMenu(m, client, in.GuildID, menus.ActionPlayNow, opts).Start(ctx, in)
	case "search":
		query := sc.String("query")
		results, err := client.Search(in.GuildID, query)
		if err != nil {
			return fmt.Errorf("search %q: %w", query, err)
		}
		return menus.NewSearchPickerMenu(m, client, in.GuildID, query, results, opts).Start(ctx, in)
	case "presets":
		presets, err := c.cog.Storage.Presets()
		if err != nil {
			return fmt.Errorf("load presets: %w", err)
		}
		return menus.NewPresetsMenu(m, client, presets, memberName(sc), opts).Start(ctx, in)
	case "effects":
		menu, err := menus.NewEffectsMenu(m, client, in.GuildID, opts)
		if err != nil {
			return err
		}
		return menu.Start(ctx, in)
	case "nodes":
		opts.Timeout = c.cog.FlowTimeout
		return menus.NewNodeManagerMenu(m, client, opts).Start(ctx, in)
	case "addnode":
		opts.Timeout = c.cog.FlowTimeout
		return c.addNode(ctx, sc, opts)
	default:
		return sc.ReplyText(ctx, fmt.Sprintf("Unknown subcommand: %s", sc.Subcommand()))
	}
}

// addNode runs the add-node flow to completion and persists the node.
func (c *MediaCommand) addNode(ctx context.Context, sc *command.SlashInteractionContext, opts menus.Options) error {
	client := c.cog.Client
	flow := menus.NewAddNodeFlow(c.cog.UI, client, opts)
	if err := flow.Start(ctx, sc.Interaction, addNodeTitle, addNodeDescription); err != nil {
		return err
	}
	node, last, ok := flow.Wait(ctx)
	if !ok {
		return nil
	}

	var description string
	added, err := client.Nodes().Add(node)
	switch {
	case errors.Is(err, lavalink.ErrBundledNode):
		description = "That ID belongs to a bundled node."
	case err != nil:
		return fmt.Errorf("add node %q: %w", node.Name, err)
	default:
		description = fmt.Sprintf("Node `%s` has been added with ID %d.", added.Name, added.ID)
		log.Info().Str("guild", sc.Interaction.GuildID).Str("node", added.Name).Int64("id", added.ID).Msg("node added")
	}
	return flow.View().Reply(ctx, last, ui.EmbedContent(client.ConstructEmbed(lavalink.EmbedOptions{Description: description})))
}

// memberName resolves preset authors from the session state cache.
func memberName(sc *command.SlashInteractionContext) menus.UserResolver {
	if sc.Session == nil || sc.Session.State == nil {
		return nil
	}
	guildID := sc.Interaction.GuildID
	return func(id string) (string, bool) {
		member, err := sc.Session.State.Member(guildID, id)
		if err != nil || member.User == nil {
			return "", false
		}
		if member.Nick != "" {
			return member.Nick, true
		}
		return member.User.Username, true
	}
}
