package media

import (
	"context"
	"errors"
	"slices"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/keshon/lavadeck/internal/cog"
	"github.com/keshon/lavadeck/internal/command"
	"github.com/keshon/lavadeck/internal/lavalink"
	"github.com/keshon/lavadeck/internal/middleware"
	"github.com/keshon/lavadeck/internal/storage"
	"github.com/keshon/lavadeck/internal/ui"
	"github.com/keshon/lavadeck/pkg/cmd"
)

const msgNodeAccess = "Only bot administrators can manage nodes."

var errNodeAccess = errors.New("node management requires an administrator")

// Subcommands gated by the cog check.
var (
	playerSubcommands = []string{"remove", "playnow"}
	djSubcommands     = []string{"remove", "playnow", "effects"}
	nodeSubcommands   = []string{"nodes", "addnode"}
)

// Cog bundles the /media command with its checks.
type Cog struct {
	Client      *lavalink.Client
	UI          *ui.Manager
	Storage     *storage.Storage
	DeveloperID string
	MenuTimeout time.Duration
	FlowTimeout time.Duration
}

var _ cog.Cog = (*Cog)(nil)

func (c *Cog) Name() string { return "Media" }

func (c *Cog) Commands() []command.DiscordCommand {
	return []command.DiscordCommand{&MediaCommand{cog: c}}
}

func (c *Cog) Hooks() cog.Hooks {
	return cog.Hooks{
		Check:        c.check,
		CommandError: c.commandError,
	}
}

func (c *Cog) check(_ context.Context, inv *cmd.Invocation) error {
	sc, ok := inv.Data.(*command.SlashInteractionContext)
	if !ok || sc.Interaction.GuildID == "" {
		return nil
	}
	sub := sc.Subcommand()
	if slices.Contains(nodeSubcommands, sub) {
		admin := sc.Permissions&discordgo.PermissionAdministrator != 0
		if !admin && (c.DeveloperID == "" || sc.Interaction.UserID != c.DeveloperID) {
			return errNodeAccess
		}
	}
	if slices.Contains(playerSubcommands, sub) {
		if err := middleware.RequirePlayer(c.Client, sc.Interaction.GuildID); err != nil {
			return err
		}
	}
	if slices.Contains(djSubcommands, sub) {
		return middleware.CheckDJ(c.Client, sc.Base())
	}
	return nil
}

func (c *Cog) commandError(ctx context.Context, inv *cmd.Invocation, err error) error {
	sc, ok := inv.Data.(*command.SlashInteractionContext)
	if !ok || !errors.Is(err, errNodeAccess) {
		return err
	}
	return sc.Reply(ctx, c.Client.ConstructEmbed(lavalink.EmbedOptions{Description: msgNodeAccess}))
}
