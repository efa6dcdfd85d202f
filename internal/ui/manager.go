package ui

import (
	"context"
	"strings"
	"sync"
	"time"
)

const msgExpired = "This menu is no longer active."

// DefaultTimeout is the idle period of views created without one.
const DefaultTimeout = 120 * time.Second

// Manager owns the live views and routes component presses and modal
// submissions to them by custom id.
type Manager struct {
	host           Host
	defaultTimeout time.Duration
	notice         func(string) Content

	mu    sync.RWMutex
	views map[string]*View
}

type ManagerOptions struct {
	Timeout time.Duration
	// Notice renders notices; plain text when nil.
	Notice func(text string) Content
}

func NewManager(host Host, opts ManagerOptions) *Manager {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.Notice == nil {
		opts.Notice = TextContent
	}
	return &Manager{
		host:           host,
		defaultTimeout: opts.Timeout,
		notice:         opts.Notice,
		views:          make(map[string]*View),
	}
}

func (m *Manager) Host() Host { return m.host }

// NewView creates a view. It becomes routable once sent.
func (m *Manager) NewView(opts ViewOptions) *View {
	return newView(m, opts)
}

// Owns reports whether customID belongs to a view of this manager.
func (m *Manager) Owns(customID string) bool {
	return strings.HasPrefix(customID, customIDPrefix+":")
}

// HandleComponent routes a press or selection to its view.
func (m *Manager) HandleComponent(ctx context.Context, in *Interaction) error {
	viewID, name, ok := parseCustomID(in.CustomID)
	if !ok {
		return m.host.Reply(ctx, in, m.notice(msgExpired))
	}
	v, ok := m.get(viewID)
	if !ok {
		return m.host.Reply(ctx, in, m.notice(msgExpired))
	}
	return v.dispatch(ctx, in, name)
}

// HandleModal delivers a modal submission to the prompt waiting for it.
func (m *Manager) HandleModal(ctx context.Context, in *Interaction) error {
	viewID, rest, ok := parseCustomID(in.CustomID)
	if !ok || !strings.HasPrefix(rest, modalSegment+":") {
		return m.host.Reply(ctx, in, m.notice(msgExpired))
	}
	v, ok := m.get(viewID)
	if !ok {
		return m.host.Reply(ctx, in, m.notice(msgExpired))
	}
	return v.deliverModal(ctx, in)
}

// Len is the number of live views.
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.views)
}

// StopAll tears down every live view.
func (m *Manager) StopAll(ctx context.Context) {
	m.mu.RLock()
	views := make([]*View, 0, len(m.views))
	for _, v := range m.views {
		views = append(views, v)
	}
	m.mu.RUnlock()
	for _, v := range views {
		v.Stop(ctx)
	}
}

func (m *Manager) get(id string) (*View, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.views[id]
	return v, ok
}

func (m *Manager) track(v *View) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !v.Stopped() {
		m.views[v.id] = v
	}
}

func (m *Manager) forget(v *View) {
	m.mu.Lock()
	delete(m.views, v.id)
	m.mu.Unlock()
}
