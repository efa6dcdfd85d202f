package core

import (
	"context"
	"fmt"
	"runtime"

	"github.com/bwmarrin/discordgo"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/muesli/termenv"

	"github.com/keshon/lavadeck/internal/command"
	"github.com/keshon/lavadeck/internal/lavalink"
	"github.com/keshon/lavadeck/internal/version"
)

// Embedder builds embeds in the bot colour.
type Embedder interface {
	ConstructEmbed(opts lavalink.EmbedOptions) *discordgo.MessageEmbed
	LibVersion() string
}

type CreditsCommand struct {
	Client Embedder
}

func (c *CreditsCommand) Name() string             { return "plcredits" }
func (c *CreditsCommand) Description() string      { return "Shows the credits for the lavadeck commands" }
func (c *CreditsCommand) Group() string            { return "core" }
func (c *CreditsCommand) Category() string         { return "🕯️ Information" }
func (c *CreditsCommand) UserPermissions() []int64 { return []int64{} }

func (c *CreditsCommand) SlashDefinition() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{Name: c.Name(), Description: c.Description()}
}

func (c *CreditsCommand) Run(ctx context.Context, data any) error {
	sc, ok := data.(*command.SlashInteractionContext)
	if !ok {
		return nil
	}
	return sc.Reply(ctx, c.Client.ConstructEmbed(lavalink.EmbedOptions{Description: credits()}))
}

func credits() string {
	return fmt.Sprintf("%s is maintained at %s\n\n"+
		"Playback runs on [Lavalink](https://github.com/lavalink-devs/Lavalink) nodes.\n"+
		"Discord support comes from [discordgo](https://github.com/bwmarrin/discordgo).\n\n"+
		"Contributors:\n- %s/graphs/contributors",
		version.AppName, version.Repository, version.Repository)
}

type VersionCommand struct {
	Client Embedder
}

func (c *VersionCommand) Name() string             { return "plversion" }
func (c *VersionCommand) Description() string      { return "Show the version of lavadeck and its libraries" }
func (c *VersionCommand) Group() string            { return "core" }
func (c *VersionCommand) Category() string         { return "🕯️ Information" }
func (c *VersionCommand) UserPermissions() []int64 { return []int64{} }

func (c *VersionCommand) SlashDefinition() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{Name: c.Name(), Description: c.Description()}
}

func (c *VersionCommand) Run(ctx context.Context, data any) error {
	sc, ok := data.(*command.SlashInteractionContext)
	if !ok {
		return nil
	}
	return sc.Reply(ctx, c.Client.ConstructEmbed(lavalink.EmbedOptions{
		Description: "```ansi\n" + VersionTable(c.Client.LibVersion()) + "\n```",
	}))
}

// VersionTable renders the library versions as an ANSI coloured table.
func VersionTable(libVersion string) string {
	p := termenv.ANSI
	white := func(s string) string { return termenv.String(s).Foreground(p.Color("7")).String() }
	blue := func(s string) string { return termenv.String(s).Foreground(p.Color("4")).String() }
	header := func(s string) string {
		return termenv.String(s).Foreground(p.Color("3")).Bold().Underline().String()
	}

	return table.New().
		Border(lipgloss.NormalBorder()).
		Headers(header("Library"), header("Version")).
		Rows(
			[]string{white(version.AppName), blue(version.AppVersion)},
			[]string{white("lavalink client"), blue(libVersion)},
			[]string{white("Go"), blue(runtime.Version())},
		).
		String()
}

// SyncCommand re-registers the slash commands with Discord.
type SyncCommand struct {
	Client Embedder
	Sync   func(ctx context.Context) error
}

func (c *SyncCommand) Name() string        { return "plsyncslash" }
func (c *SyncCommand) Description() string { return "Sync the bot's slash commands" }
func (c *SyncCommand) Group() string       { return "core" }
func (c *SyncCommand) Category() string    { return "⚙️ Settings" }
func (c *SyncCommand) UserPermissions() []int64 {
	return []int64{discordgo.PermissionAdministrator}
}

func (c *SyncCommand) SlashDefinition() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{Name: c.Name(), Description: c.Description()}
}

func (c *SyncCommand) Run(ctx context.Context, data any) error {
	sc, ok := data.(*command.SlashInteractionContext)
	if !ok {
		return nil
	}
	if err := c.Sync(ctx); err != nil {
		return fmt.Errorf("sync slash commands: %w", err)
	}
	return sc.Reply(ctx, c.Client.ConstructEmbed(lavalink.EmbedOptions{Description: "Synced the bot's slash commands"}))
}
