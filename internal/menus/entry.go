package menus

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/dustin/go-humanize"

	"github.com/keshon/lavadeck/internal/lavalink"
	"github.com/keshon/lavadeck/internal/ui"
)

const entrySelectName = "entry"

// EntryLabeler renders the entry at the 0-based index as a select option.
// Option values must be unique across the entries.
type EntryLabeler[T any] func(entry T, index int) ui.Option

// PickerSource is a page source that fills a selection on every page.
type PickerSource[T any] interface {
	ui.PageSource[T]
	Selection() *ui.Selection[T]
}

// EntryPickerSource pages through a fixed list of arbitrary entries.
type EntryPickerSource[T any] struct {
	client    Client
	entries   []T
	message   string
	label     EntryLabeler[T]
	perPage   int
	selection *ui.Selection[T]
}

func NewEntryPickerSource[T any](client Client, entries []T, message string, label EntryLabeler[T]) *EntryPickerSource[T] {
	return &EntryPickerSource[T]{
		client:    client,
		entries:   entries,
		message:   message,
		label:     label,
		perPage:   pickerPerPage,
		selection: ui.NewSelection[T](),
	}
}

func (s *EntryPickerSource[T]) Selection() *ui.Selection[T] { return s.selection }
func (s *EntryPickerSource[T]) MaxPages() int               { return ui.MaxPages(len(s.entries), s.perPage) }

func (s *EntryPickerSource[T]) GetPage(_ context.Context, page int) ([]T, error) {
	s.selection.Reset()
	start, end := ui.PageBounds(page, s.perPage, len(s.entries))
	entries := s.entries[start:end]
	for i, e := range entries {
		if err := s.selection.Add(s.label(e, start+i), e); err != nil {
			return nil, err
		}
	}
	return entries, nil
}

func (s *EntryPickerSource[T]) FormatPage(_ context.Context, page int, entries []T) (ui.Content, error) {
	var b strings.Builder
	b.WriteString(s.message)
	if len(entries) > 0 {
		b.WriteString("\n\n")
	}
	start := page * s.perPage
	for i, e := range entries {
		fmt.Fprintf(&b, "`%d.` %s\n", start+i+1, s.label(e, start+i).Label)
	}
	return ui.EmbedContent(s.client.ConstructEmbed(lavalink.EmbedOptions{
		Description: strings.TrimSpace(b.String()),
		Footer:      fmt.Sprintf("Page %s/%s", humanize.Comma(int64(page+1)), humanize.Comma(int64(s.MaxPages()))),
	})), nil
}

// EntryPickerMenu pages through a PickerSource and resolves a single pick.
// The message is removed once something is picked.
type EntryPickerMenu[T any] struct {
	*ui.Paginator[T]
	picked *ui.Signal

	mu     sync.Mutex
	result T
	last   *ui.Interaction
}

func NewEntryPickerMenu[T any](m *ui.Manager, source PickerSource[T], placeholder string, opts Options) *EntryPickerMenu[T] {
	menu := &EntryPickerMenu[T]{
		Paginator: ui.NewPaginator[T](m, source, ui.PaginatorOptions{
			View:   opts.view(true),
			NavRow: 4,
		}),
		picked: ui.NewSignal(),
	}
	menu.SetSlot(ui.NewSelect(entrySelectName, source.Selection(), ui.SelectOptions{
		Placeholder: placeholder,
		Row:         0,
	}, menu.pick))
	return menu
}

func (menu *EntryPickerMenu[T]) pick(ctx context.Context, v *ui.View, in *ui.Interaction, picked []T) error {
	if len(picked) == 0 {
		return v.Host().Defer(ctx, in)
	}
	menu.mu.Lock()
	menu.result = picked[0]
	menu.last = in
	menu.mu.Unlock()
	menu.picked.Fire()

	err := v.Host().Defer(ctx, in)
	v.Stop(ctx)
	return err
}

// WaitForResponse blocks until an entry is picked. ok is false when the
// menu was closed or timed out first, or ctx ended. The returned
// interaction is the pick, already acknowledged.
func (menu *EntryPickerMenu[T]) WaitForResponse(ctx context.Context) (entry T, in *ui.Interaction, ok bool) {
	select {
	case <-menu.picked.Done():
	case <-menu.View().Done():
	case <-ctx.Done():
	}
	if !menu.picked.Fired() {
		var zero T
		return zero, nil, false
	}
	menu.mu.Lock()
	defer menu.mu.Unlock()
	return menu.result, menu.last, true
}

// MaybePromptForEntry returns the only entry directly and asks the author
// to pick one otherwise. ok is false when there is nothing to pick or the
// menu ended without a pick.
func MaybePromptForEntry[T any](ctx context.Context, m *ui.Manager, client Client, in *ui.Interaction, entries []T, message, placeholder string, label EntryLabeler[T], opts Options) (entry T, ok bool, err error) {
	switch len(entries) {
	case 0:
		return entry, false, nil
	case 1:
		return entries[0], true, nil
	}
	menu := NewEntryPickerMenu[T](m, NewEntryPickerSource(client, entries, message, label), placeholder, opts)
	if err := menu.Start(ctx, in); err != nil {
		return entry, false, err
	}
	entry, _, ok = menu.WaitForResponse(ctx)
	return entry, ok, nil
}
