package ui

import (
	"context"
	"sync"
	"time"

	"github.com/bwmarrin/discordgo"
)

// YesNo asks a question with two buttons. The first press wins.
type YesNo struct {
	view    *View
	content Content

	once    sync.Once
	decided *Signal
	answer  bool
}

func NewYesNo(m *Manager, author string, content Content, timeout time.Duration) *YesNo {
	y := &YesNo{
		view: m.NewView(ViewOptions{
			Author:             author,
			Timeout:            timeout,
			DeleteAfterTimeout: true,
			Ephemeral:          true,
		}),
		content: content,
		decided: NewSignal(),
	}
	y.view.Add(
		NewButton("yes", KindYes, "Yes", discordgo.SuccessButton, 0, y.press(true)),
		NewButton("no", KindNo, "No", discordgo.DangerButton, 0, y.press(false)),
	)
	return y
}

func (y *YesNo) View() *View { return y.view }

func (y *YesNo) Start(ctx context.Context, in *Interaction) error {
	return y.view.Send(ctx, in, y.content)
}

// Wait returns the answer, or false when nobody pressed before timeout, ctx
// ended or the view stopped. The message is torn down before returning.
func (y *YesNo) Wait(ctx context.Context, timeout time.Duration) bool {
	if timeout <= 0 {
		timeout = y.view.opts.Timeout
	}
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case <-y.decided.Done():
	case <-timer.C:
	case <-ctx.Done():
	case <-y.view.Done():
	}
	y.view.Stop(context.WithoutCancel(ctx))

	if !y.decided.Fired() {
		return false
	}
	return y.answer
}

func (y *YesNo) press(value bool) ClickFunc {
	return func(ctx context.Context, v *View, in *Interaction) error {
		y.once.Do(func() {
			y.answer = value
			y.decided.Fire()
		})
		return v.Host().Defer(ctx, in)
	}
}
