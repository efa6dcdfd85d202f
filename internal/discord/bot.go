// Package discord runs the gateway session: it registers slash commands and
// routes interactions to the command registry and the widget manager.
package discord

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog/log"

	"github.com/keshon/lavadeck/internal/command"
	"github.com/keshon/lavadeck/internal/lavalink"
	"github.com/keshon/lavadeck/internal/storage"
	"github.com/keshon/lavadeck/internal/ui"
	"github.com/keshon/lavadeck/pkg/cmd"
)

const msgCommandFailed = "Something went wrong while running this command."

// Embedder builds embeds in the bot colour.
type Embedder interface {
	ConstructEmbed(opts lavalink.EmbedOptions) *discordgo.MessageEmbed
}

type Options struct {
	Registry *cmd.Registry
	UI       *ui.Manager
	Storage  *storage.Storage
	Embeds   Embedder
	// Blacklist lists guilds the bot leaves on sight.
	Blacklist         []string
	InitSlashCommands bool
	CommandCacheDir   string
}

// Bot is a Discord bot
type Bot struct {
	s         *discordgo.Session
	host      *Host
	opts      Options
	registrar *Registrar

	mu  sync.Mutex
	ctx context.Context
}

// NewSession creates an unopened session authenticated with token.
func NewSession(token string) (*discordgo.Session, error) {
	s, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}
	s.Identify.Intents = discordgo.IntentsGuilds | discordgo.IntentsGuildVoiceStates | discordgo.IntentsGuildMessages
	return s, nil
}

// New wires a bot to s. host must wrap the same session.
func New(s *discordgo.Session, host *Host, opts Options) *Bot {
	return &Bot{
		s:         s,
		host:      host,
		opts:      opts,
		registrar: NewRegistrar(s, opts.CommandCacheDir),
		ctx:       context.Background(),
	}
}

// Run opens the session and blocks until ctx is done.
func (b *Bot) Run(ctx context.Context) error {
	b.mu.Lock()
	b.ctx = ctx
	b.mu.Unlock()

	b.s.AddHandler(b.onReady)
	b.s.AddHandler(b.onGuildCreate)
	b.s.AddHandler(b.onInteractionCreate)

	if err := b.s.Open(); err != nil {
		return fmt.Errorf("open session: %w", err)
	}
	<-ctx.Done()
	log.Info().Msg("shutdown signal received, closing session")
	if err := b.s.Close(); err != nil {
		return fmt.Errorf("close session: %w", err)
	}
	return nil
}

func (b *Bot) context() context.Context {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.ctx
}

func (b *Bot) blacklisted(guildID string) bool {
	return slices.Contains(b.opts.Blacklist, guildID)
}

func (b *Bot) onReady(s *discordgo.Session, r *discordgo.Ready) {
	for _, g := range r.Guilds {
		if b.leaveIfBlacklisted(g.ID) {
			continue
		}
		if b.opts.InitSlashCommands {
			go b.syncGuild(g.ID)
		}
	}
	if !b.opts.InitSlashCommands {
		log.Info().Msg("slash command registration skipped")
	}
	log.Info().Str("user", r.User.Username).Int("guilds", len(r.Guilds)).Msg("discord bot is running")
}

func (b *Bot) onGuildCreate(s *discordgo.Session, g *discordgo.GuildCreate) {
	log.Info().Str("guild", g.ID).Str("name", g.Name).Msg("guild available")
	if b.leaveIfBlacklisted(g.ID) || !b.opts.InitSlashCommands {
		return
	}
	go b.syncGuild(g.ID)
}

func (b *Bot) leaveIfBlacklisted(guildID string) bool {
	if !b.blacklisted(guildID) {
		return false
	}
	log.Info().Str("guild", guildID).Msg("leaving blacklisted guild")
	if err := b.s.GuildLeave(guildID); err != nil {
		log.Error().Err(err).Str("guild", guildID).Msg("failed to leave guild")
	}
	return true
}

func (b *Bot) syncGuild(guildID string) {
	if err := b.registrar.Sync(b.context(), b.appID(), guildID, Definitions(b.opts.Registry)); err != nil {
		log.Error().Err(err).Str("guild", guildID).Msg("failed to sync slash commands")
	}
}

// SyncCommands re-registers the slash commands of every guild the bot is in.
func (b *Bot) SyncCommands(ctx context.Context) error {
	defs := Definitions(b.opts.Registry)
	var errs []error
	for _, g := range b.s.State.Guilds {
		if b.blacklisted(g.ID) {
			continue
		}
		if err := b.registrar.Sync(ctx, b.appID(), g.ID, defs); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (b *Bot) appID() string {
	if b.s.State != nil && b.s.State.User != nil {
		return b.s.State.User.ID
	}
	return ""
}

func (b *Bot) onInteractionCreate(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx := b.context()
	var (
		in  *ui.Interaction
		err error
	)
	switch i.Type {
	case discordgo.InteractionApplicationCommand:
		sc := command.NewSlashContext(s, i, b.host, b.opts.Storage)
		in = sc.Interaction
		err = b.handleCommand(ctx, i.ApplicationCommandData().Name, sc)
	case discordgo.InteractionMessageComponent, discordgo.InteractionModalSubmit:
		base := command.NewInteractionBase(s, i, b.host, b.opts.Storage)
		in = base.Interaction
		err = b.handleComponent(ctx, i.Type == discordgo.InteractionModalSubmit, base)
	default:
		return
	}
	if err == nil || errors.Is(err, context.Canceled) {
		return
	}
	log.Error().Err(err).Str("guild", i.GuildID).Str("user", in.UserID).Msg("interaction failed")
	notice := ui.EmbedContent(b.opts.Embeds.ConstructEmbed(lavalink.EmbedOptions{Description: msgCommandFailed}))
	if rerr := b.host.Reply(ctx, in, notice); rerr != nil {
		log.Debug().Err(rerr).Msg("failed to report interaction error")
	}
}

func (b *Bot) handleCommand(ctx context.Context, name string, sc *command.SlashInteractionContext) error {
	c, ok := b.opts.Registry.Get(name)
	if !ok {
		log.Warn().Str("command", name).Msg("unknown command")
		return nil
	}
	return command.Invoke(ctx, c, sc)
}

func (b *Bot) handleComponent(ctx context.Context, modal bool, base command.InteractionBase) error {
	in := base.Interaction
	if b.opts.UI.Owns(in.CustomID) {
		if modal {
			return b.opts.UI.HandleModal(ctx, in)
		}
		return b.opts.UI.HandleComponent(ctx, in)
	}

	h, name, ok := componentHandler(b.opts.Registry, in.CustomID)
	if !ok {
		log.Warn().Str("custom_id", in.CustomID).Msg("no handler for component")
		return nil
	}
	if err := h.Component(ctx, &command.ComponentInteractionContext{InteractionBase: base}); err != nil {
		return fmt.Errorf("component %s: %w", name, err)
	}
	return nil
}

// componentHandler finds the command owning customID, which starts with the
// command name followed by ":" or "_".
func componentHandler(reg *cmd.Registry, customID string) (command.ComponentInteractionHandler, string, bool) {
	for _, c := range reg.All() {
		name := c.Name()
		if customID != name && !strings.HasPrefix(customID, name+":") && !strings.HasPrefix(customID, name+"_") {
			continue
		}
		h, ok := cmd.Root(c).(command.ComponentInteractionHandler)
		return h, name, ok
	}
	return nil, "", false
}
