// Package docs renders the slash command reference included in README.md.
package docs

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"sort"
	"text/template"

	"github.com/bwmarrin/discordgo"

	"github.com/keshon/lavadeck/internal/command"
	"github.com/keshon/lavadeck/pkg/cmd"
)

// Section is one category of the reference.
type Section struct {
	Category string
	Commands []Entry
}

type Entry struct {
	Usage       string
	Description string
}

// Sections groups the slash commands of reg by category. weight orders the
// categories; commands and subcommands are sorted by name.
func Sections(reg *cmd.Registry, weight func(category string) int) []Section {
	byCat := make(map[string][]Entry)
	for _, c := range reg.All() {
		meta, ok := command.Meta(c)
		if !ok {
			continue
		}
		sp, ok := cmd.Root(c).(command.SlashProvider)
		if !ok {
			continue
		}
		def := sp.SlashDefinition()
		if def == nil {
			continue
		}
		byCat[meta.Category()] = append(byCat[meta.Category()], entries(def)...)
	}

	out := make([]Section, 0, len(byCat))
	for cat, list := range byCat {
		sort.Slice(list, func(i, j int) bool { return list[i].Usage < list[j].Usage })
		out = append(out, Section{Category: cat, Commands: list})
	}
	sort.Slice(out, func(i, j int) bool {
		wi, wj := weight(out[i].Category), weight(out[j].Category)
		if wi == wj {
			return out[i].Category < out[j].Category
		}
		return wi < wj
	})
	return out
}

// entries lists a command, or one entry per subcommand when it has any.
func entries(def *discordgo.ApplicationCommand) []Entry {
	var subs []Entry
	for _, o := range def.Options {
		if o.Type != discordgo.ApplicationCommandOptionSubCommand {
			continue
		}
		usage := fmt.Sprintf("/%s %s", def.Name, o.Name)
		for _, arg := range o.Options {
			usage += fmt.Sprintf(" <%s>", arg.Name)
		}
		subs = append(subs, Entry{Usage: usage, Description: o.Description})
	}
	if len(subs) > 0 {
		return subs
	}
	return []Entry{{Usage: "/" + def.Name, Description: def.Description}}
}

const sectionsTemplate = `{{range $i, $s := .}}{{if $i}}
{{end}}### {{$s.Category}}

{{range $s.Commands}}- **{{.Usage}}** - {{.Description}}
{{end}}{{end}}`

var sections = template.Must(template.New("sections").Parse(sectionsTemplate))

// Render writes sections as markdown.
func Render(w io.Writer, s []Section) error {
	return sections.Execute(w, s)
}

// UpdateReadme executes the template at tmplPath with CommandSections set
// to the rendered reference and writes the result to outPath.
func UpdateReadme(tmplPath, outPath string, s []Section) error {
	tmpl, err := template.ParseFiles(tmplPath)
	if err != nil {
		return fmt.Errorf("parse %s: %w", tmplPath, err)
	}
	var ref bytes.Buffer
	if err := Render(&ref, s); err != nil {
		return fmt.Errorf("render commands: %w", err)
	}
	var out bytes.Buffer
	if err := tmpl.Execute(&out, struct{ CommandSections string }{ref.String()}); err != nil {
		return fmt.Errorf("execute %s: %w", tmplPath, err)
	}
	return os.WriteFile(outPath, out.Bytes(), 0o644)
}
