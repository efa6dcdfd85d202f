package ui

import (
	"context"
	"sort"
	"sync"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog/log"
)

// AutoRow lets the layout place a control in the first row with room.
const AutoRow = -1

const (
	maxRows          = 5
	maxButtonsPerRow = 5
)

// Control is anything a view can render into an action row and route
// presses to.
type Control interface {
	// Name identifies the control within its view.
	Name() string
	Row() int
	// Component renders the control with the given custom id.
	Component(customID string) discordgo.MessageComponent
	Disabled() bool
	SetDisabled(bool)
	// OnEvent handles a press or selection that passed the view's checks.
	OnEvent(ctx context.Context, v *View, in *Interaction) error
}

// ButtonKind names the role a button plays, mostly for logging and tests.
type ButtonKind string

const (
	KindNavigate ButtonKind = "navigate"
	KindRefresh  ButtonKind = "refresh"
	KindClose    ButtonKind = "close"
	KindDone     ButtonKind = "done"
	KindYes      ButtonKind = "yes"
	KindNo       ButtonKind = "no"
	KindGeneric  ButtonKind = "generic"
)

// ClickFunc runs when a button is pressed.
type ClickFunc func(ctx context.Context, v *View, in *Interaction) error

type Button struct {
	name  string
	kind  ButtonKind
	label string
	style discordgo.ButtonStyle
	row   int

	mu       sync.Mutex
	disabled bool
	onClick  ClickFunc
}

func NewButton(name string, kind ButtonKind, label string, style discordgo.ButtonStyle, row int, onClick ClickFunc) *Button {
	return &Button{
		name:    name,
		kind:    kind,
		label:   label,
		style:   style,
		row:     row,
		onClick: onClick,
	}
}

func (b *Button) Name() string     { return b.name }
func (b *Button) Kind() ButtonKind { return b.kind }
func (b *Button) Label() string    { return b.label }
func (b *Button) Row() int         { return b.row }

func (b *Button) Disabled() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.disabled
}

func (b *Button) SetDisabled(d bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.disabled = d
}

func (b *Button) Component(customID string) discordgo.MessageComponent {
	return discordgo.Button{
		CustomID: customID,
		Label:    b.label,
		Style:    b.style,
		Disabled: b.Disabled(),
	}
}

func (b *Button) OnEvent(ctx context.Context, v *View, in *Interaction) error {
	if b.onClick == nil {
		return v.host.Defer(ctx, in)
	}
	return b.onClick(ctx, v, in)
}

// layout groups controls into action rows. Select menus take a row of
// their own; buttons share a row up to five. A control whose row is full
// moves down to the next row with room. Controls that fit nowhere are left
// out and logged.
func layout(controls []Control, customID func(Control) string) []discordgo.MessageComponent {
	type slot struct {
		items []discordgo.MessageComponent
		full  bool
	}
	var rows [maxRows]slot

	place := func(c Control, from int) {
		_, isSelect := c.(selectControl)
		for r := max(from, 0); r < maxRows; r++ {
			s := &rows[r]
			if s.full || (isSelect && len(s.items) > 0) {
				continue
			}
			s.items = append(s.items, c.Component(customID(c)))
			if isSelect || len(s.items) >= maxButtonsPerRow {
				s.full = true
			}
			return
		}
		log.Debug().Str("control", c.Name()).Int("row", c.Row()).Msg("no room left for control, dropped from layout")
	}

	var fixed, auto []Control
	for _, c := range controls {
		if c.Row() == AutoRow {
			auto = append(auto, c)
		} else {
			fixed = append(fixed, c)
		}
	}
	sort.SliceStable(fixed, func(i, j int) bool { return fixed[i].Row() < fixed[j].Row() })
	for _, c := range fixed {
		place(c, c.Row())
	}
	for _, c := range auto {
		place(c, 0)
	}

	out := make([]discordgo.MessageComponent, 0, maxRows)
	for _, s := range rows {
		if len(s.items) > 0 {
			out = append(out, discordgo.ActionsRow{Components: s.items})
		}
	}
	return out
}
