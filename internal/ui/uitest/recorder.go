// Package uitest provides a recording ui.Host and interaction builders for
// widget tests.
package uitest

import (
	"context"
	"fmt"
	"sync"

	"github.com/keshon/lavadeck/internal/ui"
)

const (
	MethodSend      = "send"
	MethodUpdate    = "update"
	MethodEdit      = "edit"
	MethodDelete    = "delete"
	MethodReply     = "reply"
	MethodDefer     = "defer"
	MethodOpenModal = "modal"
)

// Call is one recorded host call.
type Call struct {
	Method      string
	Interaction *ui.Interaction
	Message     *ui.Message
	Response    ui.Response
	Content     ui.Content
	Modal       ui.Modal
}

// Text is the visible text of the call: the reply or response body.
func (c Call) Text() string {
	if c.Method == MethodReply {
		return ContentText(c.Content)
	}
	return ContentText(c.Response.Content)
}

// Recorder is a ui.Host that records every call. Set Err to make every call
// fail.
type Recorder struct {
	mu     sync.Mutex
	calls  []Call
	nextID int
	Err    error
	// Modals receives every opened modal when non-nil.
	Modals chan ui.Modal
}

func New() *Recorder {
	return &Recorder{}
}

var _ ui.Host = (*Recorder)(nil)

func (r *Recorder) record(c Call) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, c)
	return r.Err
}

func (r *Recorder) Send(_ context.Context, in *ui.Interaction, resp ui.Response) (*ui.Message, error) {
	in.Acknowledge()
	r.mu.Lock()
	r.nextID++
	msg := &ui.Message{
		ID:          fmt.Sprintf("m%d", r.nextID),
		ChannelID:   in.ChannelID,
		Ephemeral:   resp.Ephemeral,
		Interaction: in,
	}
	r.mu.Unlock()
	if err := r.record(Call{Method: MethodSend, Interaction: in, Message: msg, Response: resp}); err != nil {
		return nil, err
	}
	return msg, nil
}

func (r *Recorder) Update(_ context.Context, in *ui.Interaction, resp ui.Response) error {
	in.Acknowledge()
	return r.record(Call{Method: MethodUpdate, Interaction: in, Response: resp})
}

func (r *Recorder) Edit(_ context.Context, msg *ui.Message, resp ui.Response) error {
	return r.record(Call{Method: MethodEdit, Message: msg, Response: resp})
}

func (r *Recorder) Delete(_ context.Context, msg *ui.Message) error {
	return r.record(Call{Method: MethodDelete, Message: msg})
}

func (r *Recorder) Reply(_ context.Context, in *ui.Interaction, c ui.Content) error {
	in.Acknowledge()
	return r.record(Call{Method: MethodReply, Interaction: in, Content: c})
}

func (r *Recorder) Defer(_ context.Context, in *ui.Interaction) error {
	in.Acknowledge()
	return r.record(Call{Method: MethodDefer, Interaction: in})
}

func (r *Recorder) OpenModal(_ context.Context, in *ui.Interaction, m ui.Modal) error {
	in.Acknowledge()
	err := r.record(Call{Method: MethodOpenModal, Interaction: in, Modal: m})
	if r.Modals != nil {
		r.Modals <- m
	}
	return err
}

func (r *Recorder) Calls() []Call {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Call(nil), r.calls...)
}

// Of returns the calls of one method in order.
func (r *Recorder) Of(method string) []Call {
	var out []Call
	for _, c := range r.Calls() {
		if c.Method == method {
			out = append(out, c)
		}
	}
	return out
}

func (r *Recorder) Count(method string) int {
	return len(r.Of(method))
}

// Last returns the most recent call of method.
func (r *Recorder) Last(method string) (Call, bool) {
	calls := r.Of(method)
	if len(calls) == 0 {
		return Call{}, false
	}
	return calls[len(calls)-1], true
}

// Replies returns the text of every ephemeral notice.
func (r *Recorder) Replies() []string {
	var out []string
	for _, c := range r.Of(MethodReply) {
		out = append(out, c.Text())
	}
	return out
}

// ContentText flattens a body to the text a user would read first.
func ContentText(c ui.Content) string {
	if e := c.Embed(); e != nil {
		if e.Description != "" {
			return e.Description
		}
		return e.Title
	}
	return c.Text()
}
