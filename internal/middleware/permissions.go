package middleware

import (
	"context"
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"

	"github.com/keshon/lavadeck/internal/command"
	"github.com/keshon/lavadeck/pkg/cmd"
)

var PermissionNames = map[int64]string{
	discordgo.PermissionAdministrator:          "Administrator",
	discordgo.PermissionManageGuild:            "Manage Server",
	discordgo.PermissionManageChannels:         "Manage Channels",
	discordgo.PermissionManageRoles:            "Manage Roles",
	discordgo.PermissionManageMessages:         "Manage Messages",
	discordgo.PermissionManageWebhooks:         "Manage Webhooks",
	discordgo.PermissionModerateMembers:        "Moderate Members",
	discordgo.PermissionSendMessages:           "Send Messages",
	discordgo.PermissionEmbedLinks:             "Embed Links",
	discordgo.PermissionUseApplicationCommands: "Use Application Commands",
	discordgo.PermissionVoiceConnect:           "Connect to Voice Channel",
	discordgo.PermissionVoiceSpeak:             "Speak",
	discordgo.PermissionVoiceMuteMembers:       "Mute Members",
	discordgo.PermissionVoiceDeafenMembers:     "Deafen Members",
	discordgo.PermissionVoiceMoveMembers:       "Move Members",
	discordgo.PermissionVoicePrioritySpeaker:   "Priority Speaker",
	discordgo.PermissionVoiceRequestToSpeak:    "Request to Speak",
	discordgo.PermissionViewChannel:            "View Channel",
	discordgo.PermissionReadMessageHistory:     "Read Message History",
	discordgo.PermissionUseExternalEmojis:      "Use External Emojis",
	discordgo.PermissionSendMessagesInThreads:  "Send Messages in Threads",
}

// PermissionList renders perms as the backtick separated list used in
// permission notices.
func PermissionList(perms []int64) string {
	names := make([]string, 0, len(perms))
	for _, p := range perms {
		name := PermissionNames[p]
		if name == "" {
			name = fmt.Sprintf("0x%x", p)
		}
		names = append(names, name)
	}
	return "`" + strings.Join(names, "`, `") + "`"
}

// WithUserPermissionCheck rejects members holding none of the command's
// UserPermissions. Administrators and developerID always pass.
func WithUserPermissionCheck(developerID string) cmd.Middleware {
	return func(c cmd.Command) cmd.Command {
		return cmd.Wrap(c, func(ctx context.Context, inv *cmd.Invocation) error {
			b, ok := base(inv)
			if !ok || b.Interaction.GuildID == "" {
				return c.Run(ctx, inv)
			}
			if b.Permissions&discordgo.PermissionAdministrator != 0 {
				return c.Run(ctx, inv)
			}
			if developerID != "" && b.Interaction.UserID == developerID {
				return c.Run(ctx, inv)
			}

			meta, ok := command.Meta(c)
			if !ok {
				return c.Run(ctx, inv)
			}
			required := meta.UserPermissions()
			if len(required) == 0 {
				return c.Run(ctx, inv)
			}
			for _, p := range required {
				if b.Permissions&p != 0 {
					return c.Run(ctx, inv)
				}
			}
			return b.ReplyText(ctx, fmt.Sprintf(
				"You need at least one of the following permissions to run this command:\n%s",
				PermissionList(required),
			))
		})
	}
}
