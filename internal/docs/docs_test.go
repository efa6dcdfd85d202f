package docs

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/keshon/lavadeck/internal/command"
	"github.com/keshon/lavadeck/pkg/cmd"
)

type stub struct {
	name, category string
	subs           []*discordgo.ApplicationCommandOption
}

func (s *stub) Name() string                   { return s.name }
func (s *stub) Description() string            { return "about " + s.name }
func (s *stub) Group() string                  { return "test" }
func (s *stub) Category() string               { return s.category }
func (s *stub) UserPermissions() []int64       { return nil }
func (s *stub) Run(context.Context, any) error { return nil }

func (s *stub) SlashDefinition() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{Name: s.name, Description: s.Description(), Options: s.subs}
}

func registry() *cmd.Registry {
	reg := cmd.NewRegistry()
	command.RegisterCommand(reg, &stub{name: "help", category: "Information"})
	command.RegisterCommand(reg, &stub{name: "media", category: "Music", subs: []*discordgo.ApplicationCommandOption{
		{Type: discordgo.ApplicationCommandOptionSubCommand, Name: "search", Description: "Search tracks", Options: []*discordgo.ApplicationCommandOption{
			{Type: discordgo.ApplicationCommandOptionString, Name: "query", Description: "Title"},
		}},
		{Type: discordgo.ApplicationCommandOptionSubCommand, Name: "queue", Description: "Show the queue"},
	}})
	return reg
}

func weights(category string) int {
	if category == "Music" {
		return 0
	}
	return 10
}

func TestSections_GroupsAndOrders(t *testing.T) {
	s := Sections(registry(), weights)
	require.Len(t, s, 2)
	assert.Equal(t, "Music", s[0].Category)
	assert.Equal(t, []Entry{
		{Usage: "/media queue", Description: "Show the queue"},
		{Usage: "/media search <query>", Description: "Search tracks"},
	}, s[0].Commands)
	assert.Equal(t, []Entry{{Usage: "/help", Description: "about help"}}, s[1].Commands)
}

func TestRender(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Render(&buf, Sections(registry(), weights)))
	assert.Equal(t, "### Music\n\n"+
		"- **/media queue** - Show the queue\n"+
		"- **/media search <query>** - Search tracks\n"+
		"\n### Information\n\n"+
		"- **/help** - about help\n", buf.String())
}

func TestUpdateReadme(t *testing.T) {
	dir := t.TempDir()
	tmpl := filepath.Join(dir, "README.md.tmpl")
	out := filepath.Join(dir, "README.md")
	require.NoError(t, os.WriteFile(tmpl, []byte("# lavadeck\n\n{{.CommandSections}}"), 0o644))

	require.NoError(t, UpdateReadme(tmpl, out, Sections(registry(), weights)))
	b, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Contains(t, string(b), "# lavadeck\n\n### Music")
}
