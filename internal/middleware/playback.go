package middleware

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog/log"

	"github.com/keshon/lavadeck/internal/command"
	"github.com/keshon/lavadeck/internal/lavalink"
	"github.com/keshon/lavadeck/pkg/cmd"
)

const msgNotReady = "lavadeck is not ready - Please try again shortly"

// ErrNotReady is returned when the client did not become ready in time.
var ErrNotReady = errors.New("playback client not ready")

// PlayerNotFoundError is returned when a command needs a connected player.
type PlayerNotFoundError struct {
	GuildID string
}

func (e *PlayerNotFoundError) Error() string {
	return fmt.Sprintf("no player in guild %s", e.GuildID)
}

// UnauthorizedChannelError is returned when player commands are locked to
// another text channel.
type UnauthorizedChannelError struct {
	ChannelID string
}

func (e *UnauthorizedChannelError) Error() string {
	return fmt.Sprintf("commands are locked to channel %s", e.ChannelID)
}

type NotDJError struct {
	UserID string
}

func (e *NotDJError) Error() string {
	return fmt.Sprintf("user %s is not a DJ", e.UserID)
}

// AwaitReady blocks until the client is initialized, for at most timeout.
func AwaitReady(ctx context.Context, client *lavalink.Client, timeout time.Duration) error {
	if client.Ready() {
		return nil
	}
	wctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if err := client.WaitUntilReady(wctx); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return ErrNotReady
	}
	return nil
}

// RequirePlayer fails with *PlayerNotFoundError when guildID has no player.
func RequirePlayer(client *lavalink.Client, guildID string) error {
	if _, ok := client.Player(guildID); !ok {
		return &PlayerNotFoundError{GuildID: guildID}
	}
	return nil
}

// CheckChannel fails with *UnauthorizedChannelError when the guild locked
// player commands to a channel other than the one b was used in.
func CheckChannel(client *lavalink.Client, b *command.InteractionBase) error {
	in := b.Interaction
	if in.GuildID == "" {
		return nil
	}
	cfg, err := client.PlayerConfig(in.GuildID)
	if err != nil {
		return fmt.Errorf("read player config: %w", err)
	}
	if cfg.TextChannelID != "" && cfg.TextChannelID != in.ChannelID {
		return &UnauthorizedChannelError{ChannelID: cfg.TextChannelID}
	}
	return nil
}

// CheckDJ fails with *NotDJError when DJ restrictions are configured and
// the member is neither a DJ nor an administrator.
func CheckDJ(client *lavalink.Client, b *command.InteractionBase) error {
	in := b.Interaction
	if in.GuildID == "" || b.Permissions&discordgo.PermissionAdministrator != 0 {
		return nil
	}
	dj, err := client.IsDJ(in.GuildID, in.UserID, in.RoleIDs)
	if err != nil {
		return fmt.Errorf("check dj: %w", err)
	}
	if !dj {
		return &NotDJError{UserID: in.UserID}
	}
	return nil
}

// WithReadyWait holds the command until the client is initialized, for at
// most timeout. Commands arriving later than that are discarded with a
// notice.
func WithReadyWait(client *lavalink.Client, timeout time.Duration) cmd.Middleware {
	return func(c cmd.Command) cmd.Command {
		return cmd.Wrap(c, func(ctx context.Context, inv *cmd.Invocation) error {
			err := AwaitReady(ctx, client, timeout)
			if !errors.Is(err, ErrNotReady) {
				if err != nil {
					return err
				}
				return c.Run(ctx, inv)
			}
			b, ok := base(inv)
			if !ok {
				log.Debug().Str("command", c.Name()).Msg("discarded command, client not ready")
				return nil
			}
			log.Debug().Str("command", c.Name()).Str("guild", b.Interaction.GuildID).Dur("timeout", timeout).
				Msg("discarded command, client not ready")
			return b.ReplyText(ctx, msgNotReady)
		})
	}
}

// WithRequiresPlayer fails with *PlayerNotFoundError when the guild has no
// player. subs limits the check to those subcommands.
func WithRequiresPlayer(client *lavalink.Client, subs ...string) cmd.Middleware {
	return func(c cmd.Command) cmd.Command {
		return cmd.Wrap(c, func(ctx context.Context, inv *cmd.Invocation) error {
			b, ok := base(inv)
			if !ok || b.Interaction.GuildID == "" || !applies(inv, subs) {
				return c.Run(ctx, inv)
			}
			if err := RequirePlayer(client, b.Interaction.GuildID); err != nil {
				return err
			}
			return c.Run(ctx, inv)
		})
	}
}

func WithChannelLock(client *lavalink.Client) cmd.Middleware {
	return func(c cmd.Command) cmd.Command {
		return cmd.Wrap(c, func(ctx context.Context, inv *cmd.Invocation) error {
			if b, ok := base(inv); ok {
				if err := CheckChannel(client, b); err != nil {
					return err
				}
			}
			return c.Run(ctx, inv)
		})
	}
}

// WithDJCheck applies CheckDJ to subs, or to every subcommand when subs is
// empty.
func WithDJCheck(client *lavalink.Client, subs ...string) cmd.Middleware {
	return func(c cmd.Command) cmd.Command {
		return cmd.Wrap(c, func(ctx context.Context, inv *cmd.Invocation) error {
			if b, ok := base(inv); ok && applies(inv, subs) {
				if err := CheckDJ(client, b); err != nil {
					return err
				}
			}
			return c.Run(ctx, inv)
		})
	}
}
