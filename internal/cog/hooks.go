// Package cog loads playback command groups ("cogs") into the bot. Each cog
// brings its own lifecycle hooks; setup composes them with the shared
// playback hooks once, at construction.
package cog

import (
	"context"
	"errors"

	"github.com/keshon/lavadeck/pkg/cmd"
)

// CheckFunc vetoes an invocation by returning an error.
type CheckFunc func(ctx context.Context, inv *cmd.Invocation) error

// InvokeFunc runs before the command body.
type InvokeFunc func(ctx context.Context, inv *cmd.Invocation) error

// ErrorFunc receives a failed invocation. Returning nil marks the error as
// handled.
type ErrorFunc func(ctx context.Context, inv *cmd.Invocation, err error) error

type LifecycleFunc func(ctx context.Context) error

// Hooks are the lifecycle callbacks of a cog. Any of them may be nil.
type Hooks struct {
	Check        CheckFunc
	BeforeInvoke InvokeFunc
	CommandError ErrorFunc
	Unload       LifecycleFunc
	Initialize   LifecycleFunc
}

// Compose returns hooks that run override first and original second:
//   - Check and BeforeInvoke stop at the first error.
//   - CommandError hands errors override left unhandled to original.
//   - Unload and Initialize run both and join their errors.
func Compose(original, override Hooks) Hooks {
	return Hooks{
		Check:        chainCheck(override.Check, original.Check),
		BeforeInvoke: InvokeFunc(chainCheck(CheckFunc(override.BeforeInvoke), CheckFunc(original.BeforeInvoke))),
		CommandError: chainError(override.CommandError, original.CommandError),
		Unload:       chainLifecycle(override.Unload, original.Unload),
		Initialize:   chainLifecycle(override.Initialize, original.Initialize),
	}
}

func chainCheck(first, second CheckFunc) CheckFunc {
	switch {
	case first == nil:
		return second
	case second == nil:
		return first
	}
	return func(ctx context.Context, inv *cmd.Invocation) error {
		if err := first(ctx, inv); err != nil {
			return err
		}
		return second(ctx, inv)
	}
}

func chainError(first, second ErrorFunc) ErrorFunc {
	switch {
	case first == nil:
		return second
	case second == nil:
		return first
	}
	return func(ctx context.Context, inv *cmd.Invocation, err error) error {
		if err = first(ctx, inv, err); err == nil {
			return nil
		}
		return second(ctx, inv, err)
	}
}

func chainLifecycle(first, second LifecycleFunc) LifecycleFunc {
	switch {
	case first == nil:
		return second
	case second == nil:
		return first
	}
	return func(ctx context.Context) error {
		return errors.Join(first(ctx), second(ctx))
	}
}

// Middleware runs the invocation hooks around a command: Check, then
// BeforeInvoke, then the command, with any error passed to CommandError.
func (h Hooks) Middleware() cmd.Middleware {
	return func(c cmd.Command) cmd.Command {
		return cmd.Wrap(c, func(ctx context.Context, inv *cmd.Invocation) error {
			err := h.invoke(ctx, c, inv)
			if err != nil && h.CommandError != nil {
				return h.CommandError(ctx, inv, err)
			}
			return err
		})
	}
}

func (h Hooks) invoke(ctx context.Context, c cmd.Command, inv *cmd.Invocation) error {
	if h.Check != nil {
		if err := h.Check(ctx, inv); err != nil {
			return err
		}
	}
	if h.BeforeInvoke != nil {
		if err := h.BeforeInvoke(ctx, inv); err != nil {
			return err
		}
	}
	return c.Run(ctx, inv)
}
