// Package cmd is the transport-agnostic command core. A command has a name, a
// description and Run(ctx, invocation); adapters (Discord slash commands, the
// status server) decide how it is registered and what Invocation.Data carries.
package cmd

import "context"

// Invocation is the input handed to a command. Data holds the adapter's own
// context value, e.g. *command.SlashInteractionContext.
type Invocation struct {
	Args []string
	Data any
}

// Command is the universal contract.
type Command interface {
	Name() string
	Description() string
	Run(ctx context.Context, inv *Invocation) error
}

// RunFunc is the signature of Command.Run.
type RunFunc func(ctx context.Context, inv *Invocation) error
