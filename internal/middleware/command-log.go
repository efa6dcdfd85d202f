package middleware

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/keshon/lavadeck/internal/command"
	"github.com/keshon/lavadeck/internal/storage"
	"github.com/keshon/lavadeck/pkg/cmd"
)

// WithCommandLogger wraps a command to log its execution and append it to
// the guild's command history.
func WithCommandLogger() cmd.Middleware {
	return func(c cmd.Command) cmd.Command {
		return cmd.Wrap(c, func(ctx context.Context, inv *cmd.Invocation) error {
			start := time.Now()
			err := c.Run(ctx, inv)

			b, ok := base(inv)
			if !ok {
				return err
			}
			in := b.Interaction
			ev := log.Info()
			if err != nil {
				ev = log.Warn().Err(err)
			}
			ev.Str("command", c.Name()).
				Strs("args", inv.Args).
				Str("guild", in.GuildID).
				Str("user", in.UserID).
				Dur("took", time.Since(start)).
				Msg("command executed")

			if _, slash := inv.Data.(*command.SlashInteractionContext); !slash || b.Storage == nil || in.GuildID == "" {
				return err
			}
			rec := storage.CommandHistoryRecord{
				ChannelID: in.ChannelID,
				UserID:    in.UserID,
				Username:  b.Username,
				Command:   c.Name(),
				Param:     strings.Join(inv.Args, " "),
				Datetime:  start,
			}
			if e := b.Storage.AppendCommand(in.GuildID, rec); e != nil {
				log.Warn().Err(e).Str("command", c.Name()).Msg("failed to log command")
			}
			return err
		})
	}
}
