package discord

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"

	"github.com/keshon/lavadeck/internal/command"
	"github.com/keshon/lavadeck/internal/ui"
	"github.com/keshon/lavadeck/pkg/cmd"
)

type fakeAPI struct {
	mu      sync.Mutex
	remote  map[string]*discordgo.ApplicationCommand
	created []string
	deleted []string
	failOn  string
	nextID  int
}

func newFakeAPI(names ...string) *fakeAPI {
	f := &fakeAPI{remote: map[string]*discordgo.ApplicationCommand{}}
	for _, n := range names {
		f.nextID++
		f.remote[n] = &discordgo.ApplicationCommand{ID: fmt.Sprint(f.nextID), Name: n}
	}
	return f
}

func (f *fakeAPI) ApplicationCommands(_, _ string, _ ...discordgo.RequestOption) ([]*discordgo.ApplicationCommand, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*discordgo.ApplicationCommand, 0, len(f.remote))
	for _, c := range f.remote {
		out = append(out, c)
	}
	return out, nil
}

func (f *fakeAPI) ApplicationCommandCreate(_, _ string, c *discordgo.ApplicationCommand, _ ...discordgo.RequestOption) (*discordgo.ApplicationCommand, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if c.Name == f.failOn {
		return nil, errors.New("rejected")
	}
	f.nextID++
	rc := &discordgo.ApplicationCommand{ID: fmt.Sprint(f.nextID), Name: c.Name}
	f.remote[c.Name] = rc
	f.created = append(f.created, c.Name)
	return rc, nil
}

func (f *fakeAPI) ApplicationCommandDelete(_, _, id string, _ ...discordgo.RequestOption) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for name, c := range f.remote {
		if c.ID == id {
			delete(f.remote, name)
			f.deleted = append(f.deleted, name)
		}
	}
	return nil
}

func newTestRegistrar(t *testing.T, api commandAPI) *Registrar {
	r := NewRegistrar(api, t.TempDir())
	r.limiter = rate.NewLimiter(rate.Inf, 1)
	return r
}

func def(name, description string, opts ...*discordgo.ApplicationCommandOption) *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{Name: name, Description: description, Type: discordgo.ChatApplicationCommand, Options: opts}
}

func TestHashCommand_IgnoresOptionOrder(t *testing.T) {
	a := &discordgo.ApplicationCommandOption{Name: "queue", Description: "q", Type: discordgo.ApplicationCommandOptionSubCommand}
	b := &discordgo.ApplicationCommandOption{Name: "nodes", Description: "n", Type: discordgo.ApplicationCommandOptionSubCommand}

	assert.Equal(t, hashCommand(def("media", "x", a, b)), hashCommand(def("media", "x", b, a)))
	assert.NotEqual(t, hashCommand(def("media", "x", a)), hashCommand(def("media", "y", a)))

	withID := def("media", "x", a)
	withID.ID = "123"
	assert.Equal(t, hashCommand(def("media", "x", a)), hashCommand(withID))
}

func TestRegistrar_SyncSkipsUnchanged(t *testing.T) {
	api := newFakeAPI("obsolete")
	r := newTestRegistrar(t, api)
	ctx := context.Background()
	defs := []*discordgo.ApplicationCommand{def("media", "Media"), def("help", "Help")}

	require.NoError(t, r.Sync(ctx, "app", "guild", defs))
	assert.ElementsMatch(t, []string{"media", "help"}, api.created)
	assert.Equal(t, []string{"obsolete"}, api.deleted)

	api.created = nil
	require.NoError(t, r.Sync(ctx, "app", "guild", defs))
	assert.Empty(t, api.created)

	defs[0] = def("media", "Media, changed")
	require.NoError(t, r.Sync(ctx, "app", "guild", defs))
	assert.Equal(t, []string{"media"}, api.created)
}

func TestRegistrar_SyncRecreatesMissingRemote(t *testing.T) {
	api := newFakeAPI()
	r := newTestRegistrar(t, api)
	ctx := context.Background()
	defs := []*discordgo.ApplicationCommand{def("media", "Media")}

	require.NoError(t, r.Sync(ctx, "app", "guild", defs))
	delete(api.remote, "media")
	api.created = nil

	require.NoError(t, r.Sync(ctx, "app", "guild", defs))
	assert.Equal(t, []string{"media"}, api.created)
}

func TestRegistrar_SyncReportsFailures(t *testing.T) {
	api := newFakeAPI()
	api.failOn = "help"
	r := newTestRegistrar(t, api)
	ctx := context.Background()

	err := r.Sync(ctx, "app", "guild", []*discordgo.ApplicationCommand{def("media", "Media"), def("help", "Help")})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 failed")

	api.failOn = ""
	api.created = nil
	require.NoError(t, r.Sync(ctx, "app", "guild", []*discordgo.ApplicationCommand{def("media", "Media"), def("help", "Help")}))
	assert.Equal(t, []string{"help"}, api.created, "the failed command is retried")
}

func TestRegistrar_Clear(t *testing.T) {
	api := newFakeAPI("media", "help")
	r := newTestRegistrar(t, api)

	require.NoError(t, r.Clear(context.Background(), "app", "guild"))
	assert.Empty(t, api.remote)
	assert.Empty(t, r.load("guild"))
}

type slashStub struct {
	name string
}

func (s *slashStub) Name() string                   { return s.name }
func (s *slashStub) Description() string            { return s.name }
func (s *slashStub) Group() string                  { return "test" }
func (s *slashStub) Category() string               { return "Test" }
func (s *slashStub) UserPermissions() []int64       { return nil }
func (s *slashStub) Run(context.Context, any) error { return nil }

func (s *slashStub) SlashDefinition() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{Name: s.name, Description: s.name}
}

type plainStub struct {
	slashStub
	pressed int
}

func (p *plainStub) SlashDefinition() *discordgo.ApplicationCommand { return nil }

func (p *plainStub) Component(context.Context, *command.ComponentInteractionContext) error {
	p.pressed++
	return nil
}

func TestDefinitions_SortedAndTyped(t *testing.T) {
	reg := cmd.NewRegistry()
	command.RegisterCommand(reg, &slashStub{name: "media"})
	command.RegisterCommand(reg, &slashStub{name: "help"})
	command.RegisterCommand(reg, &plainStub{slashStub: slashStub{name: "hidden"}})

	defs := Definitions(reg)
	require.Len(t, defs, 2)
	assert.Equal(t, "help", defs[0].Name)
	assert.Equal(t, "media", defs[1].Name)
	assert.Equal(t, discordgo.ChatApplicationCommand, defs[0].Type)
}

func TestComponentHandler_MatchesPrefix(t *testing.T) {
	reg := cmd.NewRegistry()
	stub := &plainStub{slashStub: slashStub{name: "roll"}}
	command.RegisterCommand(reg, stub)

	for _, id := range []string{"roll", "roll:again", "roll_again"} {
		h, name, ok := componentHandler(reg, id)
		require.True(t, ok, id)
		assert.Equal(t, "roll", name)
		require.NoError(t, h.Component(context.Background(), &command.ComponentInteractionContext{}))
	}
	assert.Equal(t, 3, stub.pressed)

	_, _, ok := componentHandler(reg, "rollback")
	assert.False(t, ok)
}

func TestWebhookEdit_KeepsBodyForZeroContent(t *testing.T) {
	edit := webhookEdit(ui.Response{})
	assert.Nil(t, edit.Content)
	assert.Nil(t, edit.Embeds)
	require.NotNil(t, edit.Components)
	assert.Empty(t, *edit.Components)

	embed := &discordgo.MessageEmbed{Description: "page"}
	edit = webhookEdit(ui.Response{Content: ui.EmbedContent(embed)})
	require.NotNil(t, edit.Embeds)
	assert.Equal(t, []*discordgo.MessageEmbed{embed}, *edit.Embeds)
	assert.Equal(t, "", *edit.Content)
}

func TestResponseData(t *testing.T) {
	data := responseData(ui.Response{Content: ui.TextContent("hello"), Ephemeral: true})
	assert.Equal(t, "hello", data.Content)
	assert.Nil(t, data.Embeds)
	assert.Equal(t, discordgo.MessageFlagsEphemeral, data.Flags)
}

func TestModalData(t *testing.T) {
	data := modalData(ui.Modal{
		CustomID: "lv:view:modal:name",
		Title:    "Node name",
		Fields:   []ui.TextField{{CustomID: "value", Label: "Name", MaxLength: 50}},
	})
	assert.Equal(t, "lv:view:modal:name", data.CustomID)
	require.Len(t, data.Components, 1)
	row, ok := data.Components[0].(discordgo.ActionsRow)
	require.True(t, ok)
	input, ok := row.Components[0].(discordgo.TextInput)
	require.True(t, ok)
	assert.Equal(t, discordgo.TextInputShort, input.Style)
	assert.Equal(t, 50, input.MaxLength)
}

func TestHost_SyntheticInteraction(t *testing.T) {
	h := NewHost(nil)
	ctx := context.Background()
	in := &ui.Interaction{UserID: "u"}

	_, err := h.Send(ctx, in, ui.Response{})
	assert.ErrorIs(t, err, errSynthetic)
	assert.ErrorIs(t, h.Reply(ctx, in, ui.TextContent("x")), errSynthetic)
	assert.ErrorIs(t, h.OpenModal(ctx, in, ui.Modal{}), errSynthetic)
	assert.False(t, in.Responded())
}
