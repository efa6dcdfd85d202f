package ui

import (
	"context"
	"errors"
	"sync"

	"github.com/bwmarrin/discordgo"
)

// MaxSelectOptions is the platform limit on options per select menu.
const MaxSelectOptions = 25

var ErrTooManyOptions = errors.New("select menu holds at most 25 options")

// Option is one choice of a select menu.
type Option struct {
	Label       string
	Value       string
	Description string
	Default     bool
}

// Selection maps option values to domain objects. Sources reset and refill
// it on every page render, so a value is only valid until the next render.
type Selection[T any] struct {
	mu      sync.RWMutex
	options []Option
	mapping map[string]T
}

func NewSelection[T any]() *Selection[T] {
	return &Selection[T]{mapping: make(map[string]T)}
}

func (s *Selection[T]) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.options = nil
	s.mapping = make(map[string]T)
}

// Add appends an option resolving to obj. Values must be unique within one
// render; a repeated value replaces the earlier mapping.
func (s *Selection[T]) Add(opt Option, obj T) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.mapping[opt.Value]; exists {
		s.mapping[opt.Value] = obj
		return nil
	}
	if len(s.options) >= MaxSelectOptions {
		return ErrTooManyOptions
	}
	s.options = append(s.options, opt)
	s.mapping[opt.Value] = obj
	return nil
}

func (s *Selection[T]) Lookup(value string) (T, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	obj, ok := s.mapping[value]
	return obj, ok
}

func (s *Selection[T]) Options() []Option {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Option(nil), s.options...)
}

func (s *Selection[T]) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.options)
}

// SelectFunc receives the resolved objects of a selection.
type SelectFunc[T any] func(ctx context.Context, v *View, in *Interaction, picked []T) error

type selectControl interface {
	isSelect()
}

// Select renders a Selection as a string select menu.
type Select[T any] struct {
	name        string
	placeholder string
	row         int
	minValues   int
	maxValues   int
	notFound    string
	selection   *Selection[T]
	onSelect    SelectFunc[T]

	mu       sync.Mutex
	disabled bool
}

type SelectOptions struct {
	Placeholder string
	Row         int
	// MaxValues defaults to 1.
	MaxValues int
	// MinValues defaults to 1; zero with MaxValues > 1 allows clearing.
	MinValues *int
	// NotFound is shown when a picked value no longer resolves.
	NotFound string
}

func NewSelect[T any](name string, selection *Selection[T], opts SelectOptions, onSelect SelectFunc[T]) *Select[T] {
	s := &Select[T]{
		name:        name,
		placeholder: opts.Placeholder,
		row:         opts.Row,
		minValues:   1,
		maxValues:   max(opts.MaxValues, 1),
		notFound:    opts.NotFound,
		selection:   selection,
		onSelect:    onSelect,
	}
	if opts.MinValues != nil {
		s.minValues = *opts.MinValues
	}
	if s.notFound == "" {
		s.notFound = "Selection not found."
	}
	return s
}

func (s *Select[T]) isSelect() {}

func (s *Select[T]) Name() string             { return s.name }
func (s *Select[T]) Row() int                 { return s.row }
func (s *Select[T]) Selection() *Selection[T] { return s.selection }

// Hidden reports whether there is nothing to pick.
func (s *Select[T]) Hidden() bool { return s.selection.Len() == 0 }

func (s *Select[T]) Disabled() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.disabled
}

func (s *Select[T]) SetDisabled(d bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.disabled = d
}

func (s *Select[T]) Component(customID string) discordgo.MessageComponent {
	opts := s.selection.Options()
	out := make([]discordgo.SelectMenuOption, len(opts))
	for i, o := range opts {
		out[i] = discordgo.SelectMenuOption{
			Label:       o.Label,
			Value:       o.Value,
			Description: o.Description,
			Default:     o.Default,
		}
	}
	minValues := min(s.minValues, len(out))
	return discordgo.SelectMenu{
		MenuType:    discordgo.StringSelectMenu,
		CustomID:    customID,
		Placeholder: s.placeholder,
		MinValues:   &minValues,
		MaxValues:   min(s.maxValues, max(len(out), 1)),
		Options:     out,
		Disabled:    s.Disabled(),
	}
}

// OnEvent resolves the picked values. A value that no longer resolves gets
// the not-found notice and tears the view down.
func (s *Select[T]) OnEvent(ctx context.Context, v *View, in *Interaction) error {
	picked := make([]T, 0, len(in.Values))
	for _, value := range in.Values {
		obj, ok := s.selection.Lookup(value)
		if !ok {
			err := v.Reply(ctx, in, v.notice(s.notFound))
			v.Stop(ctx)
			return err
		}
		picked = append(picked, obj)
	}
	if s.onSelect == nil {
		return v.host.Defer(ctx, in)
	}
	return s.onSelect(ctx, v, in, picked)
}
