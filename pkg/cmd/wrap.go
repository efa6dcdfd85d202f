package cmd

import "context"

// Unwrappable is implemented by wrapped commands so adapters can reach the
// command underneath (for SlashProvider or metadata type assertions).
type Unwrappable interface {
	Command
	Unwrap() Command
}

// Wrapped replaces Run of Inner while keeping its identity.
type Wrapped struct {
	Inner   Command
	RunFunc RunFunc
}

func (w *Wrapped) Name() string        { return w.Inner.Name() }
func (w *Wrapped) Description() string { return w.Inner.Description() }
func (w *Wrapped) Unwrap() Command     { return w.Inner }

func (w *Wrapped) Run(ctx context.Context, inv *Invocation) error {
	if w.RunFunc == nil {
		return w.Inner.Run(ctx, inv)
	}
	return w.RunFunc(ctx, inv)
}

// Wrap returns a command running run instead of c.Run.
func Wrap(c Command, run RunFunc) Command {
	return &Wrapped{Inner: c, RunFunc: run}
}

// Root unwraps c until it reaches a command that is not Unwrappable.
func Root(c Command) Command {
	for {
		u, ok := c.(Unwrappable)
		if !ok {
			return c
		}
		c = u.Unwrap()
	}
}
