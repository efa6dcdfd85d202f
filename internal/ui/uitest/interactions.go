package uitest

import "github.com/keshon/lavadeck/internal/ui"

const (
	DefaultGuild   = "guild-1"
	DefaultChannel = "channel-1"
)

// Command builds a slash command interaction from user.
func Command(user string) *ui.Interaction {
	return &ui.Interaction{UserID: user, GuildID: DefaultGuild, ChannelID: DefaultChannel}
}

// Press builds a component interaction on customID.
func Press(user, customID string, values ...string) *ui.Interaction {
	return &ui.Interaction{
		UserID:    user,
		GuildID:   DefaultGuild,
		ChannelID: DefaultChannel,
		CustomID:  customID,
		Values:    values,
	}
}

// Submit builds a modal submission answering m with value.
func Submit(user string, m ui.Modal, value string) *ui.Interaction {
	fields := map[string]string{}
	if len(m.Fields) > 0 {
		fields[m.Fields[0].CustomID] = value
	}
	return &ui.Interaction{
		UserID:    user,
		GuildID:   DefaultGuild,
		ChannelID: DefaultChannel,
		CustomID:  m.CustomID,
		Fields:    fields,
	}
}
