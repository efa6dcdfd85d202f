package jobmgr

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *recorder) report(ev Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
}

func (r *recorder) states() []State {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]State, len(r.events))
	for i, ev := range r.events {
		out[i] = ev.State
	}
	return out
}

func TestStartAsync_ReportsFailure(t *testing.T) {
	rec := &recorder{}
	m := NewManager(rec.report)
	boom := errors.New("boom")

	require.NoError(t, m.StartAsync(context.Background(), "init", func(context.Context) error { return boom }))
	<-m.Done("init")

	assert.Eventually(t, func() bool { return !m.Running("init") }, time.Second, 5*time.Millisecond)
	assert.Equal(t, []State{StateRunning, StateFailed}, rec.states())
}

func TestStartAsync_DuplicateName(t *testing.T) {
	m := NewManager(nil)
	release := make(chan struct{})
	require.NoError(t, m.StartAsync(context.Background(), "init", func(context.Context) error {
		<-release
		return nil
	}))
	defer close(release)

	err := m.StartAsync(context.Background(), "init", func(context.Context) error { return nil })
	assert.ErrorIs(t, err, ErrAlreadyRunning)
	assert.Equal(t, []string{"init"}, m.List())
}

func TestStop_CancelsJob(t *testing.T) {
	rec := &recorder{}
	m := NewManager(rec.report)
	require.NoError(t, m.StartAsync(context.Background(), "init", func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	}))
	done := m.Done("init")

	require.NoError(t, m.Stop("init"))
	<-done

	assert.ErrorIs(t, m.Stop("init"), ErrNotRunning)
	assert.Eventually(t, func() bool {
		s := rec.states()
		return len(s) == 2 && s[1] == StateCancelled
	}, time.Second, 5*time.Millisecond)
}

func TestWait_UnknownJobReturnsImmediately(t *testing.T) {
	m := NewManager(nil)
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	assert.NoError(t, m.Wait(ctx, "missing"))
}

func TestWait_ContextExpires(t *testing.T) {
	m := NewManager(nil)
	release := make(chan struct{})
	defer close(release)
	require.NoError(t, m.StartAsync(context.Background(), "slow", func(context.Context) error {
		<-release
		return nil
	}))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, m.Wait(ctx, "slow"), context.DeadlineExceeded)
}
