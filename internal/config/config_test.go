package config

import (
	"testing"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_Defaults(t *testing.T) {
	cfg, err := Parse(env.Options{Environment: map[string]string{"DISCORD_TOKEN": "tok"}})
	require.NoError(t, err)

	assert.Equal(t, "tok", cfg.DiscordToken)
	assert.Equal(t, "datastore.json", cfg.StoragePath)
	assert.True(t, cfg.InitSlashCommands)
	assert.Equal(t, 120*time.Second, cfg.MenuTimeout)
	assert.Equal(t, 600*time.Second, cfg.FlowTimeout)
	assert.Equal(t, 30*time.Second, cfg.ReadyTimeout)
	assert.Equal(t, Color(0xb01e66), cfg.EmbedColor)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "data/commands", cfg.CommandCacheDir)
	assert.Empty(t, cfg.GuildBlacklist)
}

func TestParse_MissingToken(t *testing.T) {
	_, err := Parse(env.Options{Environment: map[string]string{}})
	assert.Error(t, err)
}

func TestParse_Overrides(t *testing.T) {
	cfg, err := Parse(env.Options{Environment: map[string]string{
		"DISCORD_TOKEN":           "tok",
		"DISCORD_GUILD_BLACKLIST": "1, 2,,3",
		"MENU_TIMEOUT":            "5s",
		"EMBED_COLOR":             "#00ff00",
		"INIT_SLASH_COMMANDS":     "false",
	}})
	require.NoError(t, err)

	assert.Equal(t, []string{"1", "2", "3"}, cfg.GuildBlacklist)
	assert.True(t, cfg.Blacklisted("2"))
	assert.False(t, cfg.Blacklisted("4"))
	assert.Equal(t, 5*time.Second, cfg.MenuTimeout)
	assert.Equal(t, Color(0x00ff00), cfg.EmbedColor)
	assert.False(t, cfg.InitSlashCommands)
}

func TestColor_Invalid(t *testing.T) {
	var c Color
	assert.Error(t, c.UnmarshalText([]byte("purple")))
	assert.Error(t, c.UnmarshalText([]byte("0x1000000")))
	require.NoError(t, c.UnmarshalText([]byte("255")))
	assert.Equal(t, Color(255), c)
}

func TestParseStorage_NoTokenNeeded(t *testing.T) {
	cfg, err := ParseStorage(env.Options{Environment: map[string]string{}})
	require.NoError(t, err)
	assert.Equal(t, "datastore.json", cfg.StoragePath)

	cfg, err = ParseStorage(env.Options{Environment: map[string]string{"STORAGE_PATH": "data/lavadeck.json"}})
	require.NoError(t, err)
	assert.Equal(t, "data/lavadeck.json", cfg.StoragePath)
}

func TestParse_StoragePathOverride(t *testing.T) {
	cfg, err := Parse(env.Options{Environment: map[string]string{
		"DISCORD_TOKEN": "tok",
		"STORAGE_PATH":  "data/lavadeck.json",
	}})
	require.NoError(t, err)
	assert.Equal(t, "data/lavadeck.json", cfg.StoragePath)
}
