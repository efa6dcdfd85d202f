package ui

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/bwmarrin/discordgo"
)

const promptFieldID = "value"

var promptSeq atomic.Uint64

// InputPrompt is a single-field modal.
type InputPrompt struct {
	Title       string
	Label       string
	Placeholder string
	Style       discordgo.TextInputStyle
	MinLength   int
	MaxLength   int
	// Value pre-fills the field.
	Value string
}

// Ask opens the modal in answer to in and blocks until it is submitted, the
// view stops or ctx is done. It returns the raw value and the submission,
// which has not been answered yet.
func (p InputPrompt) Ask(ctx context.Context, v *View, in *Interaction) (string, *Interaction, error) {
	id := v.CustomID(fmt.Sprintf("%s:%d", modalSegment, promptSeq.Add(1)))
	wait := v.expectModal(id)
	defer v.dropModal(id)

	style := p.Style
	if style == 0 {
		style = discordgo.TextInputShort
	}
	err := v.Host().OpenModal(ctx, in, Modal{
		CustomID: id,
		Title:    p.Title,
		Fields: []TextField{{
			CustomID:    promptFieldID,
			Label:       p.Label,
			Style:       style,
			Placeholder: p.Placeholder,
			Value:       p.Value,
			MinLength:   p.MinLength,
			MaxLength:   p.MaxLength,
		}},
	})
	if err != nil {
		return "", nil, fmt.Errorf("open modal: %w", err)
	}

	select {
	case <-wait.signal.Done():
		return wait.submit.Fields[promptFieldID], wait.submit, nil
	case <-v.Done():
		return "", nil, ErrViewStopped
	case <-ctx.Done():
		return "", nil, ctx.Err()
	}
}

// PromptFieldID is the custom id of the text input of every InputPrompt.
func PromptFieldID() string { return promptFieldID }
