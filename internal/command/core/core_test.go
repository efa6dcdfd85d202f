package core

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/keshon/lavadeck/internal/command"
	"github.com/keshon/lavadeck/internal/lavalink"
	"github.com/keshon/lavadeck/internal/storage"
	"github.com/keshon/lavadeck/internal/ui/uitest"
	"github.com/keshon/lavadeck/pkg/cmd"
)

func newClient(t *testing.T) *lavalink.Client {
	t.Helper()
	store, err := storage.New(filepath.Join(t.TempDir(), "datastore.json"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return lavalink.NewClient(store, 0)
}

func slash(rec *uitest.Recorder, args ...string) *command.SlashInteractionContext {
	return &command.SlashInteractionContext{
		InteractionBase: command.InteractionBase{Interaction: uitest.Command("user"), Host: rec},
		Args:            args,
	}
}

func TestVersionTable(t *testing.T) {
	out := VersionTable("1.2.3")
	assert.Contains(t, out, "lavadeck")
	assert.Contains(t, out, "1.2.3")
	assert.Contains(t, out, "\x1b[", "cells are ANSI coloured")
	assert.Contains(t, out, "Library")
}

func TestVersionCommand_RepliesAnsiBlock(t *testing.T) {
	rec := uitest.New()
	c := &VersionCommand{Client: newClient(t)}
	require.NoError(t, c.Run(context.Background(), slash(rec)))

	replies := rec.Replies()
	require.Len(t, replies, 1)
	assert.True(t, strings.HasPrefix(replies[0], "```ansi\n"))
	assert.Contains(t, replies[0], lavalink.LibVersion)
}

func TestSyncCommand(t *testing.T) {
	rec := uitest.New()
	calls := 0
	c := &SyncCommand{Client: newClient(t), Sync: func(context.Context) error {
		calls++
		return nil
	}}
	require.NoError(t, c.Run(context.Background(), slash(rec)))
	assert.Equal(t, 1, calls)
	assert.Equal(t, []string{"Synced the bot's slash commands"}, rec.Replies())

	c.Sync = func(context.Context) error { return errors.New("rate limited") }
	assert.ErrorContains(t, c.Run(context.Background(), slash(rec)), "rate limited")
}

func TestHelpCommand_GroupsByCategory(t *testing.T) {
	client := newClient(t)
	reg := cmd.NewRegistry()
	help := &HelpCommand{Client: client, Registry: reg}
	command.RegisterCommand(reg, help)
	command.RegisterCommand(reg, &CreditsCommand{Client: client})
	command.RegisterCommand(reg, &SyncCommand{Client: client})

	rec := uitest.New()
	require.NoError(t, help.Run(context.Background(), slash(rec, "category")))
	out := rec.Replies()[0]
	info := strings.Index(out, "**🕯️ Information**")
	settings := strings.Index(out, "**⚙️ Settings**")
	require.NotEqual(t, -1, info)
	require.NotEqual(t, -1, settings)
	assert.Less(t, info, settings)
	assert.Contains(t, out, "`plcredits` - Shows the credits for the lavadeck commands")

	require.NoError(t, help.Run(context.Background(), slash(rec, "flat")))
	flat := rec.Replies()[1]
	assert.Less(t, strings.Index(flat, "`help`"), strings.Index(flat, "`plsyncslash`"))
}
