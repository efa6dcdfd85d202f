package menus

import (
	"context"
	"fmt"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/keshon/lavadeck/internal/lavalink"
	"github.com/keshon/lavadeck/internal/ui"
)

const msgNothingPlayingShort = "Nothing playing."

// PlayersSource shows one connected player per page.
type PlayersSource struct {
	client Client
	now    func() time.Time
}

func NewPlayersSource(client Client) *PlayersSource {
	return &PlayersSource{client: client, now: time.Now}
}

func (s *PlayersSource) MaxPages() int {
	return ui.MaxPages(len(s.client.Players().Connected()), 1)
}

func (s *PlayersSource) GetPage(_ context.Context, page int) ([]*lavalink.Player, error) {
	players := s.client.Players().Connected()
	start, end := ui.PageBounds(page, 1, len(players))
	return players[start:end], nil
}

func (s *PlayersSource) FormatPage(_ context.Context, page int, players []*lavalink.Player) (ui.Content, error) {
	footer := fmt.Sprintf("Page %s/%s  | Playing in %s servers.",
		humanize.Comma(int64(page+1)),
		humanize.Comma(int64(s.MaxPages())),
		humanize.Comma(int64(len(s.client.Players().Playing()))))
	if len(players) == 0 {
		return ui.EmbedContent(s.client.ConstructEmbed(lavalink.EmbedOptions{
			Description: msgNoPlayer,
			Footer:      footer,
		})), nil
	}

	p := players[0]
	guild := p.Guild()
	current := msgNothingPlayingShort
	if t := p.Current(); t != nil {
		current = t.DisplayName(trackNameMaxLength, true)
	}

	description := fmt.Sprintf("%s\n**Server Owner**: %s (%s)\n**Connected For**: %s\n**Users in VC**: %s\n**Queue Length**: %d tracks",
		current,
		guild.OwnerName, guild.OwnerID,
		connectedFor(s.now().Sub(p.ConnectedAt())),
		humanize.Comma(int64(p.Listeners())),
		p.Queue().Size(),
	)
	return ui.EmbedContent(s.client.ConstructEmbed(lavalink.EmbedOptions{
		Title:       guild.Name,
		Description: description,
		Footer:      footer,
	})), nil
}

func connectedFor(d time.Duration) string {
	d = d.Round(time.Second)
	if d <= 0 {
		return "0s"
	}
	return d.String()
}

// NewPlayersMenu pages through every connected player.
func NewPlayersMenu(m *ui.Manager, client Client, opts Options) *ui.Paginator[*lavalink.Player] {
	return ui.NewPaginator[*lavalink.Player](m, NewPlayersSource(client), ui.PaginatorOptions{
		View:    opts.view(false),
		Refresh: true,
	})
}
