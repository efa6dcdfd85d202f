package ui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

const (
	customIDPrefix = "lv"
	modalSegment   = "modal"
)

const (
	msgNotAuthorized = "You are not authorized to interact with this."
	msgStaleControl  = "This option is no longer available."
)

var ErrViewStopped = errors.New("view stopped")

// ViewOptions configures a view.
type ViewOptions struct {
	// Author is the only user allowed to interact. Empty allows anyone.
	Author string
	// Allow is an extra gate, e.g. a guild or user blacklist.
	Allow func(in *Interaction) bool
	// Timeout is the idle period before teardown. Zero uses the manager
	// default.
	Timeout time.Duration
	// DeleteAfterTimeout deletes non-ephemeral messages at teardown instead
	// of stripping their controls.
	DeleteAfterTimeout bool
	Ephemeral          bool
	// Notice builds the body of rejection and error notices.
	Notice func(text string) Content
	// OnStop runs once after teardown.
	OnStop func()
}

// View is a message with controls bound to one author. It stays active until
// it is stopped explicitly or sits idle for its timeout; teardown runs at
// most once.
//
// Callbacks of one view are not serialised: two presses that arrive
// together both run.
type View struct {
	id      string
	host    Host
	manager *Manager
	opts    ViewOptions

	ctx    context.Context
	cancel context.CancelFunc

	mu       sync.Mutex
	controls []Control
	message  *Message
	timer    *time.Timer
	modals   map[string]*modalWait

	stopOnce sync.Once
	stopped  chan struct{}
}

func newView(m *Manager, opts ViewOptions) *View {
	if opts.Timeout <= 0 {
		opts.Timeout = m.defaultTimeout
	}
	if opts.Notice == nil {
		opts.Notice = m.notice
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &View{
		id:      uuid.NewString(),
		host:    m.host,
		manager: m,
		opts:    opts,
		ctx:     ctx,
		cancel:  cancel,
		modals:  make(map[string]*modalWait),
		stopped: make(chan struct{}),
	}
}

func (v *View) ID() string     { return v.id }
func (v *View) Author() string { return v.opts.Author }
func (v *View) Host() Host     { return v.host }

// Context is cancelled when the view stops. Waits started on behalf of the
// view should select on it.
func (v *View) Context() context.Context { return v.ctx }

// Done is closed once teardown started.
func (v *View) Done() <-chan struct{} { return v.stopped }

func (v *View) Stopped() bool {
	select {
	case <-v.stopped:
		return true
	default:
		return false
	}
}

func (v *View) Message() *Message {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.message
}

// Add appends controls. A control whose name is already present replaces it.
func (v *View) Add(controls ...Control) {
	v.mu.Lock()
	defer v.mu.Unlock()
	for _, c := range controls {
		replaced := false
		for i, existing := range v.controls {
			if existing.Name() == c.Name() {
				v.controls[i] = c
				replaced = true
				break
			}
		}
		if !replaced {
			v.controls = append(v.controls, c)
		}
	}
}

func (v *View) Remove(name string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	for i, c := range v.controls {
		if c.Name() == name {
			v.controls = append(v.controls[:i], v.controls[i+1:]...)
			return
		}
	}
}

func (v *View) Clear() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.controls = nil
}

func (v *View) Control(name string) (Control, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	for _, c := range v.controls {
		if c.Name() == name {
			return c, true
		}
	}
	return nil, false
}

func (v *View) Controls() []Control {
	v.mu.Lock()
	defer v.mu.Unlock()
	return append([]Control(nil), v.controls...)
}

// CustomID is the component id of the named control of this view.
func (v *View) CustomID(name string) string {
	return customIDPrefix + ":" + v.id + ":" + name
}

func (v *View) Components() []Component {
	return layout(v.Controls(), func(c Control) string { return v.CustomID(c.Name()) })
}

// Send posts the view in answer to in and starts the idle timer.
func (v *View) Send(ctx context.Context, in *Interaction, c Content) error {
	if v.Stopped() {
		return ErrViewStopped
	}
	msg, err := v.host.Send(ctx, in, Response{
		Content:    c,
		Components: v.Components(),
		Ephemeral:  v.opts.Ephemeral,
	})
	if err != nil {
		return fmt.Errorf("send view: %w", err)
	}

	v.mu.Lock()
	v.message = msg
	v.timer = time.AfterFunc(v.opts.Timeout, v.expire)
	v.mu.Unlock()

	v.manager.track(v)
	return nil
}

// Render shows c with the current controls. Answering the press that caused
// the render is preferred; once that press was acknowledged the message is
// edited instead.
func (v *View) Render(ctx context.Context, in *Interaction, c Content) error {
	if v.Stopped() {
		return ErrViewStopped
	}
	r := Response{Content: c, Components: v.Components(), Ephemeral: v.opts.Ephemeral}
	if in != nil && !in.Responded() {
		return v.host.Update(ctx, in, r)
	}
	msg := v.Message()
	if msg == nil {
		return errors.New("render view: nothing sent yet")
	}
	return v.host.Edit(ctx, msg, r)
}

// Reply sends an ephemeral notice answering in.
func (v *View) Reply(ctx context.Context, in *Interaction, c Content) error {
	return v.host.Reply(ctx, in, c)
}

func (v *View) notice(text string) Content {
	return v.opts.Notice(text)
}

// Notice builds a notice body in the view's style.
func (v *View) Notice(text string) Content {
	return v.notice(text)
}

// Stop tears the view down: the message is deleted or stripped of its
// controls and pending waits are cancelled. Only the first call acts.
func (v *View) Stop(ctx context.Context) {
	v.stopOnce.Do(func() {
		close(v.stopped)
		v.cancel()

		v.mu.Lock()
		if v.timer != nil {
			v.timer.Stop()
		}
		msg := v.message
		v.mu.Unlock()

		v.manager.forget(v)
		if msg != nil {
			var err error
			if v.opts.DeleteAfterTimeout && !msg.Ephemeral {
				err = v.host.Delete(ctx, msg)
			} else {
				err = v.host.Edit(ctx, msg, Response{Components: []Component{}, Ephemeral: msg.Ephemeral})
			}
			if err != nil {
				log.Debug().Err(err).Str("view", v.id).Msg("view teardown failed")
			}
		}
		if v.opts.OnStop != nil {
			v.opts.OnStop()
		}
	})
}

func (v *View) expire() {
	log.Debug().Str("view", v.id).Msg("view timed out")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	v.Stop(ctx)
}

func (v *View) touch() {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.timer != nil {
		v.timer.Reset(v.opts.Timeout)
	}
}

func (v *View) authorized(in *Interaction) bool {
	if v.opts.Allow != nil && !v.opts.Allow(in) {
		return false
	}
	return v.opts.Author == "" || in.UserID == v.opts.Author
}

// dispatch routes a component interaction to the named control.
func (v *View) dispatch(ctx context.Context, in *Interaction, name string) error {
	if !v.authorized(in) {
		return v.Reply(ctx, in, TextContent(msgNotAuthorized))
	}
	if v.Stopped() {
		return v.Reply(ctx, in, v.notice(msgExpired))
	}
	c, ok := v.Control(name)
	if !ok {
		return v.Reply(ctx, in, v.notice(msgStaleControl))
	}
	if c.Disabled() {
		return v.host.Defer(ctx, in)
	}
	v.touch()
	return c.OnEvent(ctx, v, in)
}

type modalWait struct {
	signal *Signal
	submit *Interaction
}

func (v *View) expectModal(customID string) *modalWait {
	w := &modalWait{signal: NewSignal()}
	v.mu.Lock()
	v.modals[customID] = w
	v.mu.Unlock()
	return w
}

func (v *View) dropModal(customID string) {
	v.mu.Lock()
	delete(v.modals, customID)
	v.mu.Unlock()
}

func (v *View) deliverModal(ctx context.Context, in *Interaction) error {
	if !v.authorized(in) {
		return v.Reply(ctx, in, TextContent(msgNotAuthorized))
	}
	v.mu.Lock()
	w, ok := v.modals[in.CustomID]
	if ok {
		delete(v.modals, in.CustomID)
	}
	v.mu.Unlock()
	if !ok {
		return v.Reply(ctx, in, v.notice(msgStaleControl))
	}
	v.touch()
	w.submit = in
	w.signal.Fire()
	return nil
}

func parseCustomID(id string) (viewID, rest string, ok bool) {
	parts := strings.SplitN(id, ":", 3)
	if len(parts) != 3 || parts[0] != customIDPrefix || parts[1] == "" {
		return "", "", false
	}
	return parts[1], parts[2], true
}
