// Package jobmgr runs named background jobs with cancellation and lifecycle
// reporting. Jobs run in their own goroutine and are forgotten once they
// finish. There is no retry logic and no persistence.
//
//	jm := jobmgr.NewManager(func(ev jobmgr.Event) { log.Print(ev) })
//	_ = jm.StartAsync(ctx, "initialize:media", func(ctx context.Context) error {
//		return client.Initialize(ctx)
//	})
//	...
//	_ = jm.Stop("initialize:media")
package jobmgr

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
)

var (
	ErrAlreadyRunning = errors.New("job already running")
	ErrNotRunning     = errors.New("job not running")
)

// State is the lifecycle stage reported for a job.
type State string

const (
	StateRunning   State = "running"
	StateDone      State = "done"
	StateFailed    State = "error"
	StateCancelled State = "cancelled"
)

// Event is delivered to the Reporter on every state change.
type Event struct {
	Name  string
	State State
	Err   error
}

func (e Event) String() string {
	if e.Err != nil {
		return fmt.Sprintf("%s:%s:%v", e.State, e.Name, e.Err)
	}
	return fmt.Sprintf("%s:%s", e.State, e.Name)
}

// Reporter receives job lifecycle events. It may be nil.
type Reporter func(Event)

type job struct {
	cancel context.CancelFunc
	done   chan struct{}
}

// Manager tracks running jobs. It is safe for concurrent use.
type Manager struct {
	mu       sync.Mutex
	jobs     map[string]*job
	reporter Reporter
}

func NewManager(reporter Reporter) *Manager {
	return &Manager{
		jobs:     make(map[string]*job),
		reporter: reporter,
	}
}

// StartAsync runs fn in a new goroutine under a context derived from parent.
// Starting a name that is still running returns ErrAlreadyRunning.
func (m *Manager) StartAsync(parent context.Context, name string, fn func(ctx context.Context) error) error {
	m.mu.Lock()
	if _, exists := m.jobs[name]; exists {
		m.mu.Unlock()
		return fmt.Errorf("%s: %w", name, ErrAlreadyRunning)
	}
	ctx, cancel := context.WithCancel(parent)
	j := &job{cancel: cancel, done: make(chan struct{})}
	m.jobs[name] = j
	m.mu.Unlock()

	go func() {
		defer close(j.done)
		defer cancel()

		m.report(Event{Name: name, State: StateRunning})
		err := fn(ctx)
		switch {
		case err == nil:
			m.report(Event{Name: name, State: StateDone})
		case errors.Is(err, context.Canceled):
			m.report(Event{Name: name, State: StateCancelled})
		default:
			m.report(Event{Name: name, State: StateFailed, Err: err})
		}

		m.mu.Lock()
		if m.jobs[name] == j {
			delete(m.jobs, name)
		}
		m.mu.Unlock()
	}()
	return nil
}

// Stop cancels the job called name without waiting for it.
func (m *Manager) Stop(name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	j, ok := m.jobs[name]
	if !ok {
		return fmt.Errorf("%s: %w", name, ErrNotRunning)
	}
	j.cancel()
	delete(m.jobs, name)
	return nil
}

// Done returns a channel closed when the job called name finishes. For an
// unknown job the returned channel is already closed.
func (m *Manager) Done(name string) <-chan struct{} {
	m.mu.Lock()
	defer m.mu.Unlock()

	if j, ok := m.jobs[name]; ok {
		return j.done
	}
	closed := make(chan struct{})
	close(closed)
	return closed
}

// Wait blocks until the job called name finishes or ctx is done.
func (m *Manager) Wait(ctx context.Context, name string) error {
	select {
	case <-m.Done(name):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (m *Manager) Running(name string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.jobs[name]
	return ok
}

// List returns the names of active jobs, sorted.
func (m *Manager) List() []string {
	m.mu.Lock()
	out := make([]string, 0, len(m.jobs))
	for k := range m.jobs {
		out = append(out, k)
	}
	m.mu.Unlock()
	sort.Strings(out)
	return out
}

// StopAll cancels every running job.
func (m *Manager) StopAll() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for name, j := range m.jobs {
		j.cancel()
		delete(m.jobs, name)
	}
}

func (m *Manager) report(ev Event) {
	if m.reporter != nil {
		m.reporter(ev)
	}
}
