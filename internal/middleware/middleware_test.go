package middleware

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/keshon/lavadeck/internal/command"
	"github.com/keshon/lavadeck/internal/lavalink"
	"github.com/keshon/lavadeck/internal/storage"
	"github.com/keshon/lavadeck/internal/ui/uitest"
	"github.com/keshon/lavadeck/pkg/cmd"
)

const user = "user-1"

type stubCommand struct {
	perms []int64
	err   error
	ran   int
}

func (s *stubCommand) Name() string             { return "media" }
func (s *stubCommand) Description() string      { return "stub" }
func (s *stubCommand) Group() string            { return "media" }
func (s *stubCommand) Category() string         { return "Music" }
func (s *stubCommand) UserPermissions() []int64 { return s.perms }

func (s *stubCommand) Run(context.Context, any) error {
	s.ran++
	return s.err
}

type fixture struct {
	store  *storage.Storage
	client *lavalink.Client
	rec    *uitest.Recorder
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store, err := storage.New(filepath.Join(t.TempDir(), "datastore.json"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return &fixture{store: store, client: lavalink.NewClient(store, 0), rec: uitest.New()}
}

func (f *fixture) slash(sub string) *command.SlashInteractionContext {
	return &command.SlashInteractionContext{
		InteractionBase: command.InteractionBase{
			Interaction: uitest.Command(user),
			Host:        f.rec,
			Storage:     f.store,
			Username:    "User One",
		},
		Args: []string{sub},
	}
}

func run(c cmd.Command, sc *command.SlashInteractionContext) error {
	return c.Run(context.Background(), &cmd.Invocation{Args: sc.Args, Data: sc})
}

func (f *fixture) lastReply() string {
	replies := f.rec.Replies()
	if len(replies) == 0 {
		return ""
	}
	return replies[len(replies)-1]
}

func TestWithGuildOnly_RejectsDirectMessages(t *testing.T) {
	f := newFixture(t)
	stub := &stubCommand{}
	c := cmd.Apply(&command.DiscordAdapter{Cmd: stub}, WithGuildOnly())

	sc := f.slash("queue")
	sc.Interaction.GuildID = ""
	require.NoError(t, run(c, sc))
	assert.Equal(t, 0, stub.ran)
	assert.Equal(t, msgGuildOnly, f.lastReply())

	require.NoError(t, run(c, f.slash("queue")))
	assert.Equal(t, 1, stub.ran)
}

func TestWithCommandLogger_AppendsHistory(t *testing.T) {
	f := newFixture(t)
	stub := &stubCommand{err: errors.New("boom")}
	c := cmd.Apply(&command.DiscordAdapter{Cmd: stub}, WithCommandLogger())

	err := run(c, f.slash("queue"))
	assert.EqualError(t, err, "boom")

	history, err := f.store.CommandHistory(uitest.DefaultGuild)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, "media", history[0].Command)
	assert.Equal(t, "queue", history[0].Param)
	assert.Equal(t, "User One", history[0].Username)
	assert.Equal(t, uitest.DefaultChannel, history[0].ChannelID)
}

func TestWithUserPermissionCheck(t *testing.T) {
	f := newFixture(t)
	stub := &stubCommand{perms: []int64{discordgo.PermissionManageGuild, discordgo.PermissionManageRoles}}
	c := cmd.Apply(&command.DiscordAdapter{Cmd: stub}, WithUserPermissionCheck("dev-1"))

	require.NoError(t, run(c, f.slash("addnode")))
	assert.Equal(t, 0, stub.ran)
	assert.Equal(t, "You need at least one of the following permissions to run this command:\n`Manage Server`, `Manage Roles`", f.lastReply())

	sc := f.slash("addnode")
	sc.Permissions = discordgo.PermissionManageRoles
	require.NoError(t, run(c, sc))
	assert.Equal(t, 1, stub.ran)

	sc = f.slash("addnode")
	sc.Permissions = discordgo.PermissionAdministrator
	require.NoError(t, run(c, sc))
	assert.Equal(t, 2, stub.ran)

	sc = f.slash("addnode")
	sc.Interaction.UserID = "dev-1"
	require.NoError(t, run(c, sc))
	assert.Equal(t, 3, stub.ran)
}

func TestPermissionList_UnknownBit(t *testing.T) {
	assert.Equal(t, "`Speak`, `0x1000000000000`", PermissionList([]int64{discordgo.PermissionVoiceSpeak, 1 << 48}))
}

func TestWithReadyWait(t *testing.T) {
	f := newFixture(t)
	stub := &stubCommand{}
	c := cmd.Apply(&command.DiscordAdapter{Cmd: stub}, WithReadyWait(f.client, 20*time.Millisecond))

	require.NoError(t, run(c, f.slash("queue")))
	assert.Equal(t, 0, stub.ran)
	assert.Equal(t, msgNotReady, f.lastReply())

	require.NoError(t, f.client.Initialize(context.Background()))
	require.NoError(t, run(c, f.slash("queue")))
	assert.Equal(t, 1, stub.ran)
}

func TestWithReadyWait_ProceedsOnceReady(t *testing.T) {
	f := newFixture(t)
	stub := &stubCommand{}
	c := cmd.Apply(&command.DiscordAdapter{Cmd: stub}, WithReadyWait(f.client, time.Second))

	go func() {
		time.Sleep(10 * time.Millisecond)
		_ = f.client.Initialize(context.Background())
	}()
	require.NoError(t, run(c, f.slash("queue")))
	assert.Equal(t, 1, stub.ran)
	assert.Empty(t, f.rec.Replies())
}

func TestWithRequiresPlayer_MappedByErrorHandler(t *testing.T) {
	f := newFixture(t)
	stub := &stubCommand{}
	c := cmd.Apply(&command.DiscordAdapter{Cmd: stub},
		WithRequiresPlayer(f.client, "queue", "remove"),
		WithCommandErrorHandler(f.client, ""),
	)

	require.NoError(t, run(c, f.slash("queue")))
	assert.Equal(t, 0, stub.ran)
	assert.Equal(t, "This command requires an existing player to be run", f.lastReply())

	require.NoError(t, run(c, f.slash("players")))
	assert.Equal(t, 1, stub.ran)

	_, err := f.client.Connect(uitest.DefaultGuild, uitest.DefaultChannel, lavalink.GuildInfo{})
	require.NoError(t, err)
	require.NoError(t, run(c, f.slash("queue")))
	assert.Equal(t, 2, stub.ran)
}

func TestWithRequiresPlayer_UnhandledWithoutErrorHandler(t *testing.T) {
	f := newFixture(t)
	c := cmd.Apply(&command.DiscordAdapter{Cmd: &stubCommand{}}, WithRequiresPlayer(f.client))

	var notFound *PlayerNotFoundError
	require.ErrorAs(t, run(c, f.slash("queue")), &notFound)
	assert.Equal(t, uitest.DefaultGuild, notFound.GuildID)
}

func TestWithChannelLock(t *testing.T) {
	f := newFixture(t)
	stub := &stubCommand{}
	c := cmd.Apply(&command.DiscordAdapter{Cmd: stub},
		WithChannelLock(f.client),
		WithCommandErrorHandler(f.client, ""),
	)

	require.NoError(t, run(c, f.slash("queue")))
	assert.Equal(t, 1, stub.ran)

	require.NoError(t, f.store.SetTextChannel(uitest.DefaultGuild, "music"))
	require.NoError(t, run(c, f.slash("queue")))
	assert.Equal(t, 1, stub.ran)
	assert.Equal(t, "This command is not available in this channel. Please use <#music>", f.lastReply())

	require.NoError(t, f.store.SetTextChannel(uitest.DefaultGuild, uitest.DefaultChannel))
	require.NoError(t, run(c, f.slash("queue")))
	assert.Equal(t, 2, stub.ran)
}

func TestWithDJCheck(t *testing.T) {
	f := newFixture(t)
	stub := &stubCommand{}
	c := cmd.Apply(&command.DiscordAdapter{Cmd: stub},
		WithDJCheck(f.client, "remove"),
		WithCommandErrorHandler(f.client, ""),
	)

	require.NoError(t, run(c, f.slash("remove")))
	assert.Equal(t, 1, stub.ran, "everybody is a DJ without restrictions")

	require.NoError(t, f.store.AddDJRole(uitest.DefaultGuild, "dj-role"))
	require.NoError(t, run(c, f.slash("remove")))
	assert.Equal(t, 1, stub.ran)
	assert.Equal(t, "This command requires you to be a DJ", f.lastReply())

	require.NoError(t, run(c, f.slash("queue")))
	assert.Equal(t, 2, stub.ran)

	sc := f.slash("remove")
	sc.Interaction.RoleIDs = []string{"dj-role"}
	require.NoError(t, run(c, sc))
	assert.Equal(t, 3, stub.ran)

	sc = f.slash("remove")
	sc.Permissions = discordgo.PermissionAdministrator
	require.NoError(t, run(c, sc))
	assert.Equal(t, 4, stub.ran)
}

func TestWithCommandErrorHandler_NodeErrors(t *testing.T) {
	f := newFixture(t)
	stub := &stubCommand{err: fmt.Errorf("search: %w", lavalink.ErrNoNodeAvailable)}
	c := cmd.Apply(&command.DiscordAdapter{Cmd: stub}, WithCommandErrorHandler(f.client, "dev-1"))

	require.NoError(t, run(c, f.slash("search")))
	call, ok := f.rec.Last(uitest.MethodReply)
	require.True(t, ok)
	e := call.Content.Embed()
	require.NotNil(t, e)
	assert.Contains(t, e.Description, "temporarily unavailable due to an outage")
	assert.Nil(t, e.Footer)

	sc := f.slash("search")
	sc.Interaction.UserID = "dev-1"
	require.NoError(t, run(c, sc))
	call, _ = f.rec.Last(uitest.MethodReply)
	require.NotNil(t, call.Content.Embed().Footer)
	assert.Equal(t, "No Lavalink node currently available", call.Content.Embed().Footer.Text)

	stub.err = &lavalink.NoNodeWithFeatureError{Feature: "spotify"}
	require.NoError(t, run(c, sc))
	call, _ = f.rec.Last(uitest.MethodReply)
	assert.Equal(t, "lavadeck is currently unable to process tracks belonging to spotify", call.Content.Embed().Description)
	assert.Equal(t, "No Lavalink node currently available with feature spotify", call.Content.Embed().Footer.Text)
}

func TestWithCommandErrorHandler_PassesUnknownErrors(t *testing.T) {
	f := newFixture(t)
	boom := errors.New("boom")
	c := cmd.Apply(&command.DiscordAdapter{Cmd: &stubCommand{err: boom}}, WithCommandErrorHandler(f.client, ""))

	assert.ErrorIs(t, run(c, f.slash("queue")), boom)
	assert.Empty(t, f.rec.Replies())
}
