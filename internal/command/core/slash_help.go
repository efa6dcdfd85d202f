package core

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/bwmarrin/discordgo"

	"github.com/keshon/lavadeck/internal/command"
	"github.com/keshon/lavadeck/internal/lavalink"
	"github.com/keshon/lavadeck/internal/version"
	"github.com/keshon/lavadeck/pkg/cmd"
)

// categoryWeights orders help sections; unknown categories go last.
var categoryWeights = map[string]int{
	"🎵 Music":         0,
	"🕯️ Information": 10,
	"⚙️ Settings":     20,
}

type HelpCommand struct {
	Client   Embedder
	Registry *cmd.Registry
}

func (c *HelpCommand) Name() string             { return "help" }
func (c *HelpCommand) Description() string      { return "Get a list of available commands" }
func (c *HelpCommand) Group() string            { return "core" }
func (c *HelpCommand) Category() string         { return "🕯️ Information" }
func (c *HelpCommand) UserPermissions() []int64 { return []int64{} }

func (c *HelpCommand) SlashDefinition() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        c.Name(),
		Description: c.Description(),
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        "category",
				Description: "View commands grouped by category",
			},
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        "flat",
				Description: "View all commands as a flat list",
			},
		},
	}
}

func (c *HelpCommand) Run(ctx context.Context, data any) error {
	sc, ok := data.(*command.SlashInteractionContext)
	if !ok {
		return nil
	}

	var output string
	switch sc.Subcommand() {
	case "flat":
		output = c.flat()
	default:
		output = c.byCategory()
	}
	return sc.Reply(ctx, c.Client.ConstructEmbed(lavalink.EmbedOptions{
		Title:       version.AppName + " Help",
		Description: output,
	}))
}

type entry struct {
	name, description, category string
}

func (c *HelpCommand) entries() []entry {
	var out []entry
	for _, registered := range c.Registry.All() {
		e := entry{name: registered.Name(), description: registered.Description()}
		if meta, ok := command.Meta(registered); ok {
			e.category = meta.Category()
		}
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].name < out[j].name })
	return out
}

// CategoryWeight orders help and reference sections, lower first.
func CategoryWeight(category string) int {
	if w, ok := categoryWeights[category]; ok {
		return w
	}
	return len(categoryWeights) * 10
}

func (c *HelpCommand) byCategory() string {
	byCat := make(map[string][]entry)
	var cats []string
	for _, e := range c.entries() {
		if _, ok := byCat[e.category]; !ok {
			cats = append(cats, e.category)
		}
		byCat[e.category] = append(byCat[e.category], e)
	}
	sort.SliceStable(cats, func(i, j int) bool {
		if CategoryWeight(cats[i]) != CategoryWeight(cats[j]) {
			return CategoryWeight(cats[i]) < CategoryWeight(cats[j])
		}
		return cats[i] < cats[j]
	})

	var sb strings.Builder
	for _, cat := range cats {
		sb.WriteString(fmt.Sprintf("**%s**\n", cat))
		for _, e := range byCat[cat] {
			sb.WriteString(fmt.Sprintf("`%s` - %s\n", e.name, e.description))
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

func (c *HelpCommand) flat() string {
	var sb strings.Builder
	for _, e := range c.entries() {
		sb.WriteString(fmt.Sprintf("`%s` - %s\n", e.name, e.description))
	}
	return sb.String()
}
