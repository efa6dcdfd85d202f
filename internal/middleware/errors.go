package middleware

import (
	"context"
	"errors"
	"fmt"

	"github.com/keshon/lavadeck/internal/command"
	"github.com/keshon/lavadeck/internal/lavalink"
	"github.com/keshon/lavadeck/internal/ui"
	"github.com/keshon/lavadeck/pkg/cmd"
)

// ReplyError answers the playback errors raised by checks and commands with
// an ephemeral explanation and reports whether err was one of them. Footers
// with backend details are shown to developerID only.
func ReplyError(ctx context.Context, client *lavalink.Client, developerID string, b *command.InteractionBase, err error) (bool, error) {
	owner := developerID != "" && b.Interaction.UserID == developerID

	var (
		opts       lavalink.EmbedOptions
		noPlayer   *PlayerNotFoundError
		noFeature  *lavalink.NoNodeWithFeatureError
		badChannel *UnauthorizedChannelError
		notDJ      *NotDJError
	)
	switch {
	case errors.As(err, &noPlayer):
		opts.Description = "This command requires an existing player to be run"
	case errors.As(err, &noFeature):
		opts.Description = fmt.Sprintf("lavadeck is currently unable to process tracks belonging to %s", noFeature.Feature)
		if owner {
			opts.Footer = fmt.Sprintf("No Lavalink node currently available with feature %s", noFeature.Feature)
		}
	case errors.Is(err, lavalink.ErrNoNodeAvailable):
		opts.Description = "lavadeck is currently temporarily unavailable due to an outage with the backend services, please try again later"
		if owner {
			opts.Footer = "No Lavalink node currently available"
		}
	case errors.As(err, &badChannel):
		opts.Description = fmt.Sprintf("This command is not available in this channel. Please use <#%s>", badChannel.ChannelID)
	case errors.As(err, &notDJ):
		opts.Description = "This command requires you to be a DJ"
	case errors.Is(err, ErrNotReady):
		opts.Description = msgNotReady
	default:
		return false, nil
	}
	return true, b.Host.Reply(ctx, b.Interaction, ui.EmbedContent(client.ConstructEmbed(opts)))
}

// WithCommandErrorHandler maps the errors of the wrapped command through
// ReplyError. Other errors are returned unchanged.
func WithCommandErrorHandler(client *lavalink.Client, developerID string) cmd.Middleware {
	return func(c cmd.Command) cmd.Command {
		return cmd.Wrap(c, func(ctx context.Context, inv *cmd.Invocation) error {
			err := c.Run(ctx, inv)
			if err == nil {
				return nil
			}
			b, ok := base(inv)
			if !ok {
				return err
			}
			if handled, rerr := ReplyError(ctx, client, developerID, b, err); handled {
				return rerr
			}
			return err
		})
	}
}
