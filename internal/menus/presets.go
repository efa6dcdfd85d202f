package menus

import (
	"context"
	"sort"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/keshon/lavadeck/internal/storage"
	"github.com/keshon/lavadeck/internal/ui"
)

const (
	presetsPerPage  = 10
	builtinAuthor   = "Built-in"
	presetNameLabel = "Preset Name"
	authorLabel     = "Author"
)

// UserResolver turns a user id into a display name.
type UserResolver func(userID string) (string, bool)

// PresetsSource lists equalizer presets sorted by name as a text table.
type PresetsSource struct {
	client  Client
	presets []storage.NamedPreset
	resolve UserResolver
}

func NewPresetsSource(client Client, presets []storage.NamedPreset, resolve UserResolver) *PresetsSource {
	sorted := append([]storage.NamedPreset(nil), presets...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Name < sorted[j].Name })
	return &PresetsSource{client: client, presets: sorted, resolve: resolve}
}

func (s *PresetsSource) MaxPages() int { return ui.MaxPages(len(s.presets), presetsPerPage) }

func (s *PresetsSource) GetPage(_ context.Context, page int) ([]storage.NamedPreset, error) {
	start, end := ui.PageBounds(page, presetsPerPage, len(s.presets))
	return s.presets[start:end], nil
}

func (s *PresetsSource) FormatPage(_ context.Context, _ int, presets []storage.NamedPreset) (ui.Content, error) {
	rows := make([][]string, 0, len(presets))
	for _, p := range presets {
		rows = append(rows, []string{p.Name, s.author(p.Author)})
	}
	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderColumn(false).
		BorderTop(false).
		BorderBottom(false).
		BorderLeft(false).
		BorderRight(false).
		Headers(presetNameLabel, authorLabel).
		Rows(rows...)
	return embed(s.client, "```\n"+t.String()+"\n```"), nil
}

func (s *PresetsSource) author(id string) string {
	if id == "" || s.resolve == nil {
		return builtinAuthor
	}
	if name, ok := s.resolve(id); ok {
		return name
	}
	return id
}

// NewPresetsMenu pages through the saved presets.
func NewPresetsMenu(m *ui.Manager, client Client, presets []storage.NamedPreset, resolve UserResolver, opts Options) *ui.Paginator[storage.NamedPreset] {
	return ui.NewPaginator[storage.NamedPreset](m, NewPresetsSource(client, presets, resolve), ui.PaginatorOptions{
		View: opts.view(false),
	})
}
