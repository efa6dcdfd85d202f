package menus

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/rs/zerolog/log"

	"github.com/keshon/lavadeck/internal/lavalink"
	"github.com/keshon/lavadeck/internal/ui"
)

const trackSelectName = "track"

// QueueAction is what a queue picker does with the picked track.
type QueueAction int

const (
	ActionPlayNow QueueAction = iota
	ActionRemove
)

func (a QueueAction) placeholder() string {
	if a == ActionRemove {
		return "Pick a track to remove"
	}
	return "Pick a track to play now"
}

// QueuePickerSource pages through the queue and fills a selection with the
// tracks of the current page, keyed by track id.
type QueuePickerSource struct {
	client    Client
	guildID   string
	perPage   int
	selection *ui.Selection[lavalink.Track]
}

func NewQueuePickerSource(client Client, guildID string) *QueuePickerSource {
	return &QueuePickerSource{
		client:    client,
		guildID:   guildID,
		perPage:   pickerPerPage,
		selection: ui.NewSelection[lavalink.Track](),
	}
}

func (s *QueuePickerSource) Selection() *ui.Selection[lavalink.Track] { return s.selection }

func (s *QueuePickerSource) MaxPages() int {
	p, ok := s.client.Player(s.guildID)
	if !ok {
		return 1
	}
	return ui.MaxPages(p.Queue().Size(), s.perPage)
}

func (s *QueuePickerSource) GetPage(_ context.Context, page int) ([]lavalink.Track, error) {
	s.selection.Reset()
	p, ok := s.client.Player(s.guildID)
	if !ok {
		return nil, nil
	}
	start, end := ui.PageBounds(page, s.perPage, p.Queue().Size())
	tracks := p.Queue().Slice(start, end)
	for i, t := range tracks {
		if err := s.selection.Add(trackOption(t, start+i), t); err != nil {
			return nil, err
		}
	}
	return tracks, nil
}

func (s *QueuePickerSource) FormatPage(_ context.Context, page int, tracks []lavalink.Track) (ui.Content, error) {
	p, ok := s.client.Player(s.guildID)
	if !ok {
		return embed(s.client, msgNoPlayer), nil
	}
	if p.Current() == nil {
		return embed(s.client, msgNothingPlaying), nil
	}
	return queuePage(s.client, p, page, s.perPage, s.MaxPages(), tracks, false), nil
}

// QueuePickerMenu lets the author play or remove one queued track.
type QueuePickerMenu struct {
	*ui.Paginator[lavalink.Track]
	client  Client
	guildID string
	action  QueueAction
}

func NewQueuePickerMenu(m *ui.Manager, client Client, guildID string, action QueueAction, opts Options) *QueuePickerMenu {
	source := NewQueuePickerSource(client, guildID)
	menu := &QueuePickerMenu{
		Paginator: ui.NewPaginator[lavalink.Track](m, source, ui.PaginatorOptions{
			View:    opts.view(false),
			Refresh: true,
		}),
		client:  client,
		guildID: guildID,
		action:  action,
	}
	menu.SetSlot(ui.NewSelect(trackSelectName, source.Selection(), ui.SelectOptions{
		Placeholder: action.placeholder(),
		Row:         1,
		NotFound:    msgTrackNotFound,
	}, menu.pick))
	return menu
}

func (menu *QueuePickerMenu) pick(ctx context.Context, v *ui.View, in *ui.Interaction, picked []lavalink.Track) error {
	defer v.Stop(ctx)
	if len(picked) == 0 {
		return v.Host().Defer(ctx, in)
	}
	track := picked[0]

	p, ok := menu.client.Player(menu.guildID)
	if !ok {
		return v.Reply(ctx, in, embed(menu.client, msgDisconnected))
	}

	switch menu.action {
	case ActionRemove:
		n, err := p.RemoveTrack(track.ID)
		if errors.Is(err, lavalink.ErrNoTracksInQueue) {
			return v.Reply(ctx, in, embed(menu.client, msgTrackNotFound))
		}
		if err != nil {
			return err
		}
		log.Info().Str("guild", menu.guildID).Str("track", track.ID).Int("removed", n).Msg("tracks removed from queue")
		if n == 1 {
			return v.Reply(ctx, in, embed(menu.client, fmt.Sprintf("%s has been removed from the queue.", track.DisplayName(trackNameMaxLength, true))))
		}
		return v.Reply(ctx, in, embed(menu.client, fmt.Sprintf("Removed %s entries of %s from the queue.",
			humanize.Comma(int64(n)), track.DisplayName(trackNameMaxLength, true))))

	default:
		index := p.Queue().Index(track.ID)
		if index < 0 {
			return v.Reply(ctx, in, embed(menu.client, msgTrackNotFound))
		}
		if _, err := p.PlayNow(index); err != nil {
			if errors.Is(err, lavalink.ErrTrackIndex) {
				return v.Reply(ctx, in, embed(menu.client, msgTrackNotFound))
			}
			return err
		}
		return v.Reply(ctx, in, embed(menu.client, fmt.Sprintf("%s will start now.", track.DisplayName(trackNameMaxLength, true))))
	}
}

// SearchPickerSource pages through a fixed list of search results.
type SearchPickerSource struct {
	client    Client
	query     string
	results   []lavalink.Track
	perPage   int
	selection *ui.Selection[lavalink.Track]
}

func NewSearchPickerSource(client Client, query string, results []lavalink.Track) *SearchPickerSource {
	return &SearchPickerSource{
		client:    client,
		query:     query,
		results:   results,
		perPage:   pickerPerPage,
		selection: ui.NewSelection[lavalink.Track](),
	}
}

func (s *SearchPickerSource) Selection() *ui.Selection[lavalink.Track] { return s.selection }
func (s *SearchPickerSource) MaxPages() int                            { return ui.MaxPages(len(s.results), s.perPage) }

func (s *SearchPickerSource) GetPage(_ context.Context, page int) ([]lavalink.Track, error) {
	s.selection.Reset()
	start, end := ui.PageBounds(page, s.perPage, len(s.results))
	tracks := s.results[start:end]
	for i, t := range tracks {
		if err := s.selection.Add(trackOption(t, start+i), t); err != nil {
			return nil, err
		}
	}
	return tracks, nil
}

func (s *SearchPickerSource) FormatPage(_ context.Context, page int, tracks []lavalink.Track) (ui.Content, error) {
	if len(s.results) == 0 {
		return embed(s.client, fmt.Sprintf("No results for `%s`.", s.query)), nil
	}
	var b strings.Builder
	start := page * s.perPage
	for i, t := range tracks {
		fmt.Fprintf(&b, "`%d.` %s `%s`\n", start+i+1, t.DisplayName(trackNameMaxLength, true), lavalink.FormatDuration(t.Duration))
	}
	return ui.EmbedContent(s.client.ConstructEmbed(lavalink.EmbedOptions{
		Title:       fmt.Sprintf("Results for `%s`", s.query),
		Description: strings.TrimSpace(b.String()),
		Footer: fmt.Sprintf("Page %s/%s | %s results",
			humanize.Comma(int64(page+1)), humanize.Comma(int64(s.MaxPages())), humanize.Comma(int64(len(s.results)))),
	})), nil
}

// SearchPickerMenu enqueues the picked result.
type SearchPickerMenu struct {
	*ui.Paginator[lavalink.Track]
	client  Client
	guildID string
}

func NewSearchPickerMenu(m *ui.Manager, client Client, guildID, query string, results []lavalink.Track, opts Options) *SearchPickerMenu {
	source := NewSearchPickerSource(client, query, results)
	menu := &SearchPickerMenu{
		Paginator: ui.NewPaginator[lavalink.Track](m, source, ui.PaginatorOptions{View: opts.view(false)}),
		client:    client,
		guildID:   guildID,
	}
	menu.SetSlot(ui.NewSelect(trackSelectName, source.Selection(), ui.SelectOptions{
		Placeholder: "Pick a track to enqueue",
		Row:         1,
		NotFound:    msgTrackNotFound,
	}, menu.pick))
	return menu
}

func (menu *SearchPickerMenu) pick(ctx context.Context, v *ui.View, in *ui.Interaction, picked []lavalink.Track) error {
	defer v.Stop(ctx)
	if len(picked) == 0 {
		return v.Host().Defer(ctx, in)
	}
	p, ok := menu.client.Player(menu.guildID)
	if !ok {
		return v.Reply(ctx, in, embed(menu.client, msgDisconnected))
	}
	track := picked[0]
	track.Requester = in.UserID
	status := p.Enqueue(track)
	return v.Reply(ctx, in, embed(menu.client, fmt.Sprintf("%s %s: %s", status.StringEmoji(), status, track.DisplayName(trackNameMaxLength, true))))
}
