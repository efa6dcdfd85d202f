package menus

import (
	"context"
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/keshon/lavadeck/internal/lavalink"
	"github.com/keshon/lavadeck/internal/ui"
)

const (
	queuePerPage       = 10
	pickerPerPage      = ui.MaxSelectOptions
	trackNameMaxLength = 50
)

const (
	msgNoPlayer       = "No active player found in server"
	msgNothingPlaying = "There's nothing currently being played"
	msgNoHistory      = "There's nothing in recently played"
	msgTrackNotFound  = "Track not found."
	msgDisconnected   = "Player has been disconnected."
)

// QueueSource pages through a guild's queue, or its history. The player is
// looked up on every call, so pages always reflect the live queue.
type QueueSource struct {
	client  Client
	guildID string
	history bool
	perPage int
}

func NewQueueSource(client Client, guildID string, history bool) *QueueSource {
	return &QueueSource{client: client, guildID: guildID, history: history, perPage: queuePerPage}
}

func (s *QueueSource) tracks() *lavalink.Queue {
	p, ok := s.client.Player(s.guildID)
	if !ok {
		return nil
	}
	if s.history {
		return p.History()
	}
	return p.Queue()
}

func (s *QueueSource) MaxPages() int {
	q := s.tracks()
	if q == nil {
		return 1
	}
	return ui.MaxPages(q.Size(), s.perPage)
}

func (s *QueueSource) GetPage(_ context.Context, page int) ([]lavalink.Track, error) {
	q := s.tracks()
	if q == nil {
		return nil, nil
	}
	start, end := ui.PageBounds(page, s.perPage, q.Size())
	return q.Slice(start, end), nil
}

func (s *QueueSource) FormatPage(_ context.Context, page int, tracks []lavalink.Track) (ui.Content, error) {
	p, ok := s.client.Player(s.guildID)
	if !ok {
		return embed(s.client, msgNoPlayer), nil
	}
	if s.history && p.History().Size() == 0 {
		return embed(s.client, msgNoHistory), nil
	}
	if !s.history && p.Current() == nil {
		return embed(s.client, msgNothingPlaying), nil
	}
	return queuePage(s.client, p, page, s.perPage, s.MaxPages(), tracks, s.history), nil
}

func queuePage(c Client, p *lavalink.Player, page, perPage, totalPages int, tracks []lavalink.Track, history bool) ui.Content {
	title := "Queue"
	size := p.Queue().Size()
	if history {
		title = "Recently Played"
		size = p.History().Size()
	}

	var b strings.Builder
	if cur := p.Current(); cur != nil && !history {
		state := "Now Playing"
		if p.Paused() {
			state = "Paused"
		}
		fmt.Fprintf(&b, "**%s**: %s\n\n", state, cur.DisplayName(trackNameMaxLength, true))
	}
	if len(tracks) == 0 && !history {
		b.WriteString("Nothing queued.")
	}
	start := page * perPage
	for i, t := range tracks {
		fmt.Fprintf(&b, "`%d.` %s `%s`\n", start+i+1, t.DisplayName(trackNameMaxLength, true), lavalink.FormatDuration(t.Duration))
	}

	footer := fmt.Sprintf("Page %s/%s | %s tracks",
		humanize.Comma(int64(page+1)), humanize.Comma(int64(totalPages)), humanize.Comma(int64(size)))
	return ui.EmbedContent(c.ConstructEmbed(lavalink.EmbedOptions{
		Title:       title,
		Description: strings.TrimSpace(b.String()),
		Footer:      footer,
	}))
}

// NewQueueMenu pages through the queue or the history.
func NewQueueMenu(m *ui.Manager, client Client, guildID string, history bool, opts Options) *ui.Paginator[lavalink.Track] {
	return ui.NewPaginator[lavalink.Track](m, NewQueueSource(client, guildID, history), ui.PaginatorOptions{
		View:    opts.view(false),
		Refresh: true,
	})
}

// trackOption labels a track in a picker by its 1-based position.
func trackOption(t lavalink.Track, index int) ui.Option {
	return ui.Option{
		Label:       truncateLabel(fmt.Sprintf("#%d %s", index+1, t.Title)),
		Value:       t.ID,
		Description: truncateLabel(t.Author),
	}
}

func truncateLabel(s string) string {
	const limit = 100
	r := []rune(s)
	if len(r) <= limit {
		return s
	}
	return string(r[:limit-1]) + "…"
}
