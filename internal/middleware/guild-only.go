package middleware

import (
	"context"

	"github.com/keshon/lavadeck/internal/command"
	"github.com/keshon/lavadeck/pkg/cmd"
)

const msgGuildOnly = "This command can only be used in a server."

// base returns the shared part of an interaction context.
func base(inv *cmd.Invocation) (*command.InteractionBase, bool) {
	v, ok := inv.Data.(command.InteractionContext)
	if !ok {
		return nil, false
	}
	return v.Base(), true
}

// subcommand returns the invoked subcommand of a slash context, or "".
func subcommand(inv *cmd.Invocation) string {
	if v, ok := inv.Data.(*command.SlashInteractionContext); ok {
		return v.Subcommand()
	}
	return ""
}

// applies reports whether a check limited to subs covers inv. An empty
// list covers everything.
func applies(inv *cmd.Invocation, subs []string) bool {
	if len(subs) == 0 {
		return true
	}
	sub := subcommand(inv)
	for _, s := range subs {
		if s == sub {
			return true
		}
	}
	return false
}

// WithGuildOnly wraps a command to enforce guild-only access
func WithGuildOnly() cmd.Middleware {
	return func(c cmd.Command) cmd.Command {
		return cmd.Wrap(c, func(ctx context.Context, inv *cmd.Invocation) error {
			if b, ok := base(inv); ok && b.Interaction.GuildID == "" {
				return b.ReplyText(ctx, msgGuildOnly)
			}
			return c.Run(ctx, inv)
		})
	}
}
