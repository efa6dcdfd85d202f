package command

import (
	"context"
	"fmt"

	"github.com/bwmarrin/discordgo"

	"github.com/keshon/lavadeck/internal/storage"
	"github.com/keshon/lavadeck/internal/ui"
	"github.com/keshon/lavadeck/pkg/cmd"
)

// Discord-specific contexts (what the runtime passes when executing).

// InteractionBase is shared by every interaction context. Session and Event
// are nil for synthetic interactions built in tests.
type InteractionBase struct {
	Session     *discordgo.Session
	Event       *discordgo.InteractionCreate
	Interaction *ui.Interaction
	Host        ui.Host
	Storage     *storage.Storage
	Username    string
	// Permissions are the member's permissions in the channel.
	Permissions int64
}

func (b *InteractionBase) Base() *InteractionBase { return b }

// Reply answers the interaction with an ephemeral embed.
func (b *InteractionBase) Reply(ctx context.Context, e *discordgo.MessageEmbed) error {
	return b.Host.Reply(ctx, b.Interaction, ui.EmbedContent(e))
}

// ReplyText answers the interaction with an ephemeral text message.
func (b *InteractionBase) ReplyText(ctx context.Context, text string) error {
	return b.Host.Reply(ctx, b.Interaction, ui.TextContent(text))
}

// InteractionContext is implemented by every interaction context, so
// middleware can read the actor without switching on concrete types.
type InteractionContext interface {
	Base() *InteractionBase
}

type SlashInteractionContext struct {
	InteractionBase
	// Args holds the subcommand path, e.g. ["media", "queue"] yields
	// ["queue"].
	Args []string
	// Options are the leaf options of the invoked subcommand.
	Options map[string]*discordgo.ApplicationCommandInteractionDataOption
}

// String returns the string option name, or "".
func (c *SlashInteractionContext) String(name string) string {
	if o, ok := c.Options[name]; ok && o.Type == discordgo.ApplicationCommandOptionString {
		return o.StringValue()
	}
	return ""
}

// Subcommand is the first element of Args, or "".
func (c *SlashInteractionContext) Subcommand() string {
	if len(c.Args) == 0 {
		return ""
	}
	return c.Args[0]
}

type ComponentInteractionContext struct {
	InteractionBase
}

// NewInteractionBase reads the actor of e into a ui.Interaction.
func NewInteractionBase(s *discordgo.Session, e *discordgo.InteractionCreate, host ui.Host, st *storage.Storage) InteractionBase {
	in := &ui.Interaction{
		Raw:       e.Interaction,
		GuildID:   e.GuildID,
		ChannelID: e.ChannelID,
	}
	b := InteractionBase{Session: s, Event: e, Interaction: in, Host: host, Storage: st}

	var user *discordgo.User
	switch {
	case e.Member != nil && e.Member.User != nil:
		user = e.Member.User
		in.RoleIDs = e.Member.Roles
		b.Permissions = e.Member.Permissions
	case e.User != nil:
		user = e.User
	}
	if user != nil {
		in.UserID = user.ID
		b.Username = user.Username
		if user.GlobalName != "" {
			b.Username = user.GlobalName
		}
	}

	switch e.Type {
	case discordgo.InteractionMessageComponent:
		data := e.MessageComponentData()
		in.CustomID = data.CustomID
		in.Values = data.Values
	case discordgo.InteractionModalSubmit:
		data := e.ModalSubmitData()
		in.CustomID = data.CustomID
		in.Fields = modalFields(data.Components)
	}
	return b
}

// NewSlashContext builds the context of an application command and
// flattens its subcommand options.
func NewSlashContext(s *discordgo.Session, e *discordgo.InteractionCreate, host ui.Host, st *storage.Storage) *SlashInteractionContext {
	c := &SlashInteractionContext{
		InteractionBase: NewInteractionBase(s, e, host, st),
		Options:         map[string]*discordgo.ApplicationCommandInteractionDataOption{},
	}
	opts := e.ApplicationCommandData().Options
	for len(opts) == 1 && (opts[0].Type == discordgo.ApplicationCommandOptionSubCommand ||
		opts[0].Type == discordgo.ApplicationCommandOptionSubCommandGroup) {
		c.Args = append(c.Args, opts[0].Name)
		opts = opts[0].Options
	}
	for _, o := range opts {
		c.Options[o.Name] = o
	}
	return c
}

func modalFields(rows []discordgo.MessageComponent) map[string]string {
	fields := map[string]string{}
	for _, row := range rows {
		var components []discordgo.MessageComponent
		switch r := row.(type) {
		case *discordgo.ActionsRow:
			components = r.Components
		case discordgo.ActionsRow:
			components = r.Components
		}
		for _, c := range components {
			switch input := c.(type) {
			case *discordgo.TextInput:
				fields[input.CustomID] = input.Value
			case discordgo.TextInput:
				fields[input.CustomID] = input.Value
			}
		}
	}
	return fields
}

// Providers: how a command is registered with Discord.

type SlashProvider interface {
	SlashDefinition() *discordgo.ApplicationCommand
}

type ComponentInteractionHandler interface {
	Component(ctx context.Context, c *ComponentInteractionContext) error
}

// DiscordMeta is exposed by the Discord adapter so middleware can read Group/Category/Permissions
// without depending on the concrete Discord command type.
type DiscordMeta interface {
	Group() string
	Category() string
	UserPermissions() []int64
}

// DiscordCommand is what individual Discord commands implement. data is one
// of the interaction contexts above.
type DiscordCommand interface {
	Name() string
	Description() string
	Group() string
	Category() string
	UserPermissions() []int64
	Run(ctx context.Context, data any) error
}

// DiscordAdapter adapts a DiscordCommand to cmd.Command so it can live in the universal registry.
// It also implements SlashProvider, ComponentInteractionHandler and DiscordMeta by delegating
// to the inner command.
type DiscordAdapter struct {
	Cmd DiscordCommand
}

func (a *DiscordAdapter) Name() string             { return a.Cmd.Name() }
func (a *DiscordAdapter) Description() string      { return a.Cmd.Description() }
func (a *DiscordAdapter) Group() string            { return a.Cmd.Group() }
func (a *DiscordAdapter) Category() string         { return a.Cmd.Category() }
func (a *DiscordAdapter) UserPermissions() []int64 { return a.Cmd.UserPermissions() }

func (a *DiscordAdapter) Run(ctx context.Context, inv *cmd.Invocation) error {
	return a.Cmd.Run(ctx, inv.Data)
}

func (a *DiscordAdapter) SlashDefinition() *discordgo.ApplicationCommand {
	if sp, ok := a.Cmd.(SlashProvider); ok {
		return sp.SlashDefinition()
	}
	return nil
}

func (a *DiscordAdapter) Component(ctx context.Context, c *ComponentInteractionContext) error {
	if ch, ok := a.Cmd.(ComponentInteractionHandler); ok {
		return ch.Component(ctx, c)
	}
	return nil
}

// RegisterCommand registers a Discord command with the registry and applies middlewares.
func RegisterCommand(reg *cmd.Registry, discordCmd DiscordCommand, mws ...cmd.Middleware) {
	reg.Register(cmd.Apply(&DiscordAdapter{Cmd: discordCmd}, mws...))
}

// Meta returns the Discord metadata of a registered command.
func Meta(c cmd.Command) (DiscordMeta, bool) {
	m, ok := cmd.Root(c).(DiscordMeta)
	return m, ok
}

// Invoke runs c with a slash context.
func Invoke(ctx context.Context, c cmd.Command, sc *SlashInteractionContext) error {
	if err := c.Run(ctx, &cmd.Invocation{Args: sc.Args, Data: sc}); err != nil {
		return fmt.Errorf("/%s: %w", c.Name(), err)
	}
	return nil
}
