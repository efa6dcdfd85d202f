package ui

import (
	"context"
	"fmt"
	"sync"

	"github.com/bwmarrin/discordgo"
)

// PageSource provides one page of a live collection. GetPage is called with
// an in-range page and may rebuild a Selection as a side effect; FormatPage
// renders that page.
type PageSource[T any] interface {
	MaxPages() int
	GetPage(ctx context.Context, page int) ([]T, error)
	FormatPage(ctx context.Context, page int, entries []T) (Content, error)
}

// Slot is an optional control that is hidden while it has nothing to show,
// such as a select menu over an empty page.
type Slot interface {
	Control
	Hidden() bool
}

type PaginatorOptions struct {
	View      ViewOptions
	StartPage int
	// NavRow is the action row of the navigation buttons.
	NavRow int
	// Refresh adds a refresh button after the navigation buttons.
	Refresh bool
}

// Navigation button names.
const (
	ButtonFirst   = "first"
	ButtonPrev    = "prev"
	ButtonNext    = "next"
	ButtonLast    = "last"
	ButtonRefresh = "refresh"
	ButtonClose   = "close"
)

// Paginator is a view over a PageSource with first / prev / next / last
// navigation. Out-of-range targets wrap around.
type Paginator[T any] struct {
	view   *View
	source PageSource[T]

	mu      sync.Mutex
	current int

	first, prev, next, last, refresh, close *Button
	withRefresh                             bool

	slot      Slot
	onPrepare []func(maxPages int)
}

func NewPaginator[T any](m *Manager, source PageSource[T], opts PaginatorOptions) *Paginator[T] {
	p := &Paginator[T]{
		view:        m.NewView(opts.View),
		source:      source,
		current:     opts.StartPage,
		withRefresh: opts.Refresh,
	}
	row := opts.NavRow
	p.first = NewButton(ButtonFirst, KindNavigate, "⏮", discordgo.SecondaryButton, row, p.navigate(func() int { return 0 }))
	p.prev = NewButton(ButtonPrev, KindNavigate, "◀", discordgo.SecondaryButton, row, p.navigate(func() int { return p.Current() - 1 }))
	p.next = NewButton(ButtonNext, KindNavigate, "▶", discordgo.SecondaryButton, row, p.navigate(func() int { return p.Current() + 1 }))
	p.last = NewButton(ButtonLast, KindNavigate, "⏭", discordgo.SecondaryButton, row, p.navigate(func() int { return p.source.MaxPages() - 1 }))
	p.refresh = NewButton(ButtonRefresh, KindRefresh, "↻", discordgo.SecondaryButton, row, p.navigate(p.Current))
	p.close = NewButton(ButtonClose, KindClose, "✖", discordgo.DangerButton, row, func(ctx context.Context, v *View, in *Interaction) error {
		err := v.Host().Defer(ctx, in)
		v.Stop(ctx)
		return err
	})
	return p
}

func (p *Paginator[T]) View() *View           { return p.view }
func (p *Paginator[T]) Source() PageSource[T] { return p.source }
func (p *Paginator[T]) SetSlot(s Slot)        { p.slot = s }

// Button returns a navigation button by name, or nil.
func (p *Paginator[T]) Button(name string) *Button {
	switch name {
	case ButtonFirst:
		return p.first
	case ButtonPrev:
		return p.prev
	case ButtonNext:
		return p.next
	case ButtonLast:
		return p.last
	case ButtonRefresh:
		return p.refresh
	case ButtonClose:
		return p.close
	}
	return nil
}

// OnPrepare registers a hook that adds menu specific controls after the
// navigation row is rebuilt.
func (p *Paginator[T]) OnPrepare(fn func(maxPages int)) {
	p.onPrepare = append(p.onPrepare, fn)
}

func (p *Paginator[T]) Current() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.current
}

// Start renders the starting page and sends the view.
func (p *Paginator[T]) Start(ctx context.Context, in *Interaction) error {
	content, err := p.load(ctx, p.Current())
	if err != nil {
		return err
	}
	p.Prepare()
	return p.view.Send(ctx, in, content)
}

// ShowPage renders page. Past the end wraps to the first page and below
// zero to the last.
func (p *Paginator[T]) ShowPage(ctx context.Context, in *Interaction, page int) error {
	content, err := p.load(ctx, page)
	if err != nil {
		return err
	}
	p.Prepare()
	return p.view.Render(ctx, in, content)
}

// ShowCheckedPage wraps page into range before rendering it.
func (p *Paginator[T]) ShowCheckedPage(ctx context.Context, in *Interaction, page int) error {
	return p.ShowPage(ctx, in, ResolvePage(page, p.source.MaxPages()))
}

// Prepare rebuilds the control set for the current page count. With one
// page every navigation button is disabled; with two only first and last
// are.
func (p *Paginator[T]) Prepare() {
	maxPages := p.source.MaxPages()
	for _, b := range []*Button{p.first, p.prev, p.next, p.last} {
		b.SetDisabled(false)
	}
	switch {
	case maxPages <= 1:
		p.first.SetDisabled(true)
		p.prev.SetDisabled(true)
		p.next.SetDisabled(true)
		p.last.SetDisabled(true)
	case maxPages == 2:
		p.first.SetDisabled(true)
		p.last.SetDisabled(true)
	}

	p.view.Clear()
	p.view.Add(p.close, p.first, p.prev, p.next, p.last)
	if p.withRefresh {
		p.view.Add(p.refresh)
	}
	if p.slot != nil && !p.slot.Hidden() {
		p.view.Add(p.slot)
	}
	for _, fn := range p.onPrepare {
		fn(maxPages)
	}
}

func (p *Paginator[T]) load(ctx context.Context, page int) (Content, error) {
	page = ResolvePage(page, p.source.MaxPages())
	entries, err := p.source.GetPage(ctx, page)
	if err != nil {
		return Content{}, fmt.Errorf("get page %d: %w", page, err)
	}
	p.mu.Lock()
	p.current = page
	p.mu.Unlock()

	content, err := p.source.FormatPage(ctx, page, entries)
	if err != nil {
		return Content{}, fmt.Errorf("format page %d: %w", page, err)
	}
	return content, nil
}

func (p *Paginator[T]) navigate(target func() int) ClickFunc {
	return func(ctx context.Context, v *View, in *Interaction) error {
		return p.ShowCheckedPage(ctx, in, target())
	}
}
