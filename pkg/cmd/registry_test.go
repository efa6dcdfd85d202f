package cmd

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubCommand struct {
	name string
	ran  int
}

func (s *stubCommand) Name() string        { return s.name }
func (s *stubCommand) Description() string { return "stub " + s.name }
func (s *stubCommand) Run(context.Context, *Invocation) error {
	s.ran++
	return nil
}

func TestRegistry_RegisterGetRemove(t *testing.T) {
	r := NewRegistry()
	r.Register(&stubCommand{name: "queue"})
	r.Register(&stubCommand{name: "nodes"})

	c, ok := r.Get("queue")
	require.True(t, ok)
	assert.Equal(t, "queue", c.Name())

	all := r.All()
	require.Len(t, all, 2)
	assert.Equal(t, "nodes", all[0].Name())

	assert.True(t, r.Remove("queue"))
	assert.False(t, r.Remove("queue"))
	_, ok = r.Get("queue")
	assert.False(t, ok)
}

func TestApply_OrderAndRoot(t *testing.T) {
	inner := &stubCommand{name: "media"}
	var order []string
	mw := func(tag string) Middleware {
		return func(c Command) Command {
			return Wrap(c, func(ctx context.Context, inv *Invocation) error {
				order = append(order, tag)
				return c.Run(ctx, inv)
			})
		}
	}

	wrapped := Apply(inner, mw("inner"), mw("outer"))
	require.NoError(t, wrapped.Run(context.Background(), &Invocation{}))

	assert.Equal(t, []string{"outer", "inner"}, order)
	assert.Equal(t, 1, inner.ran)
	assert.Same(t, inner, Root(wrapped))
	assert.Equal(t, "media", wrapped.Name())
}

func TestWrap_PropagatesError(t *testing.T) {
	boom := errors.New("boom")
	c := Wrap(&stubCommand{name: "x"}, func(context.Context, *Invocation) error { return boom })
	assert.ErrorIs(t, c.Run(context.Background(), &Invocation{}), boom)
}
