// Package ui is the interactive widget toolkit: paginated views, buttons,
// select menus, modal prompts and yes/no confirmations. Widgets talk to
// Discord only through the Host interface, so they can be driven by the
// gateway adapter in production and by a recorder in tests.
package ui

import (
	"context"
	"sync/atomic"

	"github.com/bwmarrin/discordgo"
)

// Interaction is one user action delivered by the gateway: a slash command,
// a component press or a modal submission.
type Interaction struct {
	// Raw is the gateway payload. It is nil for synthetic interactions.
	Raw *discordgo.Interaction

	UserID    string
	GuildID   string
	ChannelID string
	RoleIDs   []string
	CustomID  string
	// Values holds the picked option values of a select menu.
	Values []string
	// Fields holds modal text inputs by custom id.
	Fields map[string]string

	responded atomic.Bool
}

// Acknowledge marks the interaction as answered and reports whether this
// call was the first one. Hosts use it to choose between the initial
// response and a followup.
func (in *Interaction) Acknowledge() bool {
	return in.responded.CompareAndSwap(false, true)
}

func (in *Interaction) Responded() bool {
	return in.responded.Load()
}

// Message references a message a widget posted.
type Message struct {
	ID        string
	ChannelID string
	Ephemeral bool
	// Interaction is the interaction the message answered. Ephemeral
	// messages can only be edited through its token.
	Interaction *Interaction
}

// Response is a message body plus its controls. A zero Content leaves the
// existing body untouched on edits.
type Response struct {
	Content    Content
	Components []discordgo.MessageComponent
	Ephemeral  bool
}

// TextField is one modal input.
type TextField struct {
	CustomID    string
	Label       string
	Style       discordgo.TextInputStyle
	Placeholder string
	Value       string
	MinLength   int
	MaxLength   int
}

type Modal struct {
	CustomID string
	Title    string
	Fields   []TextField
}

// Host is what widgets need from the chat platform.
type Host interface {
	// Send posts a new message answering in, as the initial response or as
	// a followup when in was already acknowledged.
	Send(ctx context.Context, in *Interaction, r Response) (*Message, error)
	// Update replaces the message a component press came from, as the
	// response to that press.
	Update(ctx context.Context, in *Interaction, r Response) error
	// Edit changes a previously posted message outside of a response.
	Edit(ctx context.Context, msg *Message, r Response) error
	Delete(ctx context.Context, msg *Message) error
	// Reply sends an ephemeral notice answering in.
	Reply(ctx context.Context, in *Interaction, c Content) error
	// Defer acknowledges a component press without changing anything.
	Defer(ctx context.Context, in *Interaction) error
	OpenModal(ctx context.Context, in *Interaction, m Modal) error
}
