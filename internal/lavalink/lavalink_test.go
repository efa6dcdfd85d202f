package lavalink

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/keshon/lavadeck/internal/storage"
)

type memStore struct {
	mu      sync.Mutex
	nodes   map[int64]storage.NodeRecord
	configs map[string]storage.PlayerConfig
}

func newMemStore() *memStore {
	return &memStore{nodes: map[int64]storage.NodeRecord{}, configs: map[string]storage.PlayerConfig{}}
}

func (m *memStore) SaveNode(n storage.NodeRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nodes[n.ID] = n
	return nil
}

func (m *memStore) DeleteNode(id int64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.nodes[id]
	delete(m.nodes, id)
	return ok, nil
}

func (m *memStore) Nodes() ([]storage.NodeRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []storage.NodeRecord
	for _, n := range m.nodes {
		out = append(out, n)
	}
	return out, nil
}

func (m *memStore) PlayerConfig(guildID string) (storage.PlayerConfig, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.configs[guildID], nil
}

func tracks(n int) []Track {
	out := make([]Track, n)
	for i := range out {
		out[i] = Track{ID: fmt.Sprintf("t%d", i), Title: fmt.Sprintf("Song %d", i), Author: "Band", URI: fmt.Sprintf("https://example.com/%d", i)}
	}
	return out
}

func TestQueue_Operations(t *testing.T) {
	q := NewQueue(0)
	q.Push(tracks(5)...)

	assert.Equal(t, 5, q.Size())
	assert.Equal(t, 2, q.Index("t2"))
	assert.Equal(t, -1, q.Index("missing"))
	assert.Len(t, q.Slice(3, 10), 2)
	assert.Nil(t, q.Slice(6, 10))

	head, ok := q.Pop()
	require.True(t, ok)
	assert.Equal(t, "t0", head.ID)

	removed, ok := q.RemoveAt(0)
	require.True(t, ok)
	assert.Equal(t, "t1", removed.ID)
	_, ok = q.RemoveAt(10)
	assert.False(t, ok)

	q.Push(Track{ID: "t3"})
	assert.Equal(t, 2, q.Remove("t3"))
	assert.Equal(t, []string{"t2", "t4"}, ids(q.Tracks()))

	q.Clear()
	assert.Zero(t, q.Size())
}

func TestQueue_LimitDropsOldest(t *testing.T) {
	q := NewQueue(3)
	q.Push(tracks(5)...)
	assert.Equal(t, []string{"t2", "t3", "t4"}, ids(q.Tracks()))
}

func TestQueue_TracksReturnsCopy(t *testing.T) {
	q := NewQueue(0)
	q.Push(tracks(2)...)
	got := q.Tracks()
	got[0].Title = "changed"
	assert.Equal(t, "Song 0", q.Tracks()[0].Title)
}

func ids(ts []Track) []string {
	out := make([]string, len(ts))
	for i, t := range ts {
		out[i] = t.ID
	}
	return out
}

func TestTrack_DisplayName(t *testing.T) {
	tr := Track{Title: "A very long title indeed", Author: "Someone", URI: "https://x.test/1"}
	assert.Equal(t, "A very long title indeed - Someone", tr.DisplayName(0, false))
	assert.Equal(t, "A very lo…", tr.DisplayName(10, false))
	assert.Equal(t, "[A very lo…](https://x.test/1)", tr.DisplayName(10, true))
	assert.Equal(t, "3:05", FormatDuration(185*time.Second))
	assert.Equal(t, "1:00:01", FormatDuration(time.Hour+time.Second))
}

func TestPlayer_Lifecycle(t *testing.T) {
	p := newPlayer("g", "c", GuildInfo{Name: "Guild"}, storage.PlayerConfig{})

	assert.Equal(t, StatusPlaying, p.Enqueue(tracks(3)...))
	require.NotNil(t, p.Current())
	assert.Equal(t, "t0", p.Current().ID)
	assert.Equal(t, 2, p.Queue().Size())
	assert.True(t, p.IsPlaying())

	require.NoError(t, p.Pause())
	assert.False(t, p.IsPlaying())
	require.NoError(t, p.Resume())

	played, err := p.PlayNow(1)
	require.NoError(t, err)
	assert.Equal(t, "t2", played.ID)
	assert.Equal(t, []string{"t0"}, ids(p.History().Tracks()))

	_, err = p.PlayNow(5)
	assert.ErrorIs(t, err, ErrTrackIndex)

	next, err := p.Skip()
	require.NoError(t, err)
	assert.Equal(t, "t1", next.ID)

	_, err = p.Skip()
	assert.ErrorIs(t, err, ErrNoTracksInQueue)
	assert.Nil(t, p.Current())
	assert.ErrorIs(t, p.Stop(), ErrNoTrackPlaying)
}

func TestPlayer_Effects(t *testing.T) {
	p := newPlayer("g", "c", GuildInfo{}, storage.PlayerConfig{})
	require.NoError(t, p.SetEffect("Nightcore"))
	assert.Equal(t, "Nightcore", p.Effect())
	require.NoError(t, p.SetEffect(EffectReset))
	assert.Empty(t, p.Effect())
	assert.Error(t, p.SetEffect("Chipmunk"))
}

func TestPlayerManager_Filters(t *testing.T) {
	m := NewPlayerManager()
	a := m.Create("b", "c1", GuildInfo{}, storage.PlayerConfig{})
	m.Create("a", "c2", GuildInfo{}, storage.PlayerConfig{})
	a.Enqueue(tracks(1)...)

	assert.Same(t, a, m.Create("b", "c3", GuildInfo{}, storage.PlayerConfig{}))
	assert.Equal(t, "c3", a.ChannelID())

	all := m.All()
	require.Len(t, all, 2)
	assert.Equal(t, "a", all[0].GuildID())
	assert.Len(t, m.Connected(), 2)
	assert.Len(t, m.Playing(), 1)

	assert.True(t, m.Remove("a"))
	assert.False(t, m.Remove("a"))
}

func TestNodeRegistry_CRUD(t *testing.T) {
	store := newMemStore()
	r := NewNodeRegistry(store)
	require.NoError(t, r.Load())
	assert.Len(t, r.All(), len(BundledNodes))

	n, err := r.Add(Node{Name: "my node", Host: "h", Port: 2333, Password: "p"})
	require.NoError(t, err)
	assert.NotZero(t, n.ID)
	assert.False(t, IsBundled(n.ID))
	assert.Contains(t, store.nodes, n.ID)

	n.Name = "renamed"
	require.NoError(t, r.Update(n))
	got, ok := r.Get(n.ID)
	require.True(t, ok)
	assert.Equal(t, "renamed", got.Name)

	assert.ErrorIs(t, r.Update(BundledNodes[0]), ErrBundledNode)
	assert.ErrorIs(t, r.Delete(BundledNodes[0].ID), ErrBundledNode)
	assert.ErrorIs(t, r.Delete(424242), ErrNodeNotFound)

	require.NoError(t, r.Delete(n.ID))
	assert.NotContains(t, store.nodes, n.ID)

	reloaded := NewNodeRegistry(store)
	require.NoError(t, reloaded.Load())
	assert.Len(t, reloaded.All(), len(BundledNodes))
}

func TestNodeRegistry_WithFeature(t *testing.T) {
	r := NewNodeRegistry(newMemStore())
	for _, n := range BundledNodes {
		r.SetAvailable(n.ID, false)
	}
	_, err := r.WithFeature("youtube")
	assert.ErrorIs(t, err, ErrNoNodeAvailable)

	added, err := r.Add(Node{Name: "no youtube", Host: "h", Port: 1, DisabledSources: []string{"youtube"}})
	require.NoError(t, err)
	assert.NotContains(t, added.EnabledSources(), "youtube")

	_, err = r.WithFeature("youtube")
	var featureErr *NoNodeWithFeatureError
	require.True(t, errors.As(err, &featureErr))
	assert.Equal(t, "youtube", featureErr.Feature)

	n, err := r.WithFeature("soundcloud")
	require.NoError(t, err)
	assert.Equal(t, added.ID, n.ID)
}

func TestNode_URI(t *testing.T) {
	assert.Equal(t, "https://lava.test:443", Node{Host: "lava.test", Port: 443, SSL: true}.URI())
	assert.Equal(t, "http://localhost:2333", Node{Host: "localhost", Port: 2333}.URI())
}

func TestClient_IsDJ(t *testing.T) {
	store := newMemStore()
	c := NewClient(store, 0xb01e66)

	ok, err := c.IsDJ("g", "u", nil)
	require.NoError(t, err)
	assert.True(t, ok)

	store.configs["g"] = storage.PlayerConfig{DJRoles: []string{"dj"}, DJUsers: []string{"boss"}}
	ok, _ = c.IsDJ("g", "u", nil)
	assert.False(t, ok)
	ok, _ = c.IsDJ("g", "u", []string{"dj"})
	assert.True(t, ok)
	ok, _ = c.IsDJ("g", "boss", nil)
	assert.True(t, ok)
}

func TestClient_ConnectAndSearch(t *testing.T) {
	c := NewClient(newMemStore(), 0)
	p, err := c.Connect("g", "vc", GuildInfo{Name: "Guild"})
	require.NoError(t, err)
	p.Enqueue(tracks(3)...)
	p.Enqueue(Track{ID: "x", Title: "Other", Author: "Someone"})

	found, err := c.Search("g", "song")
	require.NoError(t, err)
	assert.Equal(t, []string{"t0", "t1", "t2"}, ids(found))

	none, err := c.Search("missing", "song")
	require.NoError(t, err)
	assert.Empty(t, none)

	for _, n := range c.Nodes().All() {
		c.Nodes().SetAvailable(n.ID, false)
	}
	_, err = c.Connect("g2", "vc", GuildInfo{})
	assert.ErrorIs(t, err, ErrNoNodeAvailable)
	_, err = c.Search("g", "song")
	assert.ErrorIs(t, err, ErrNoNodeAvailable)
}

func TestClient_ReadinessAndRegistration(t *testing.T) {
	c := NewClient(newMemStore(), 0)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, c.WaitUntilReady(ctx), context.DeadlineExceeded)

	require.NoError(t, c.Initialize(context.Background()))
	require.NoError(t, c.Initialize(context.Background()))
	assert.True(t, c.Ready())
	assert.NoError(t, c.WaitUntilReady(context.Background()))

	c.Register("media")
	c.Register("core")
	c.Unregister("media")
	assert.False(t, c.ShuttingDown())
	c.Unregister("core")
	assert.True(t, c.ShuttingDown())
}

func TestClient_ConstructEmbed(t *testing.T) {
	c := NewClient(newMemStore(), 0xb01e66)
	e := c.ConstructEmbed(EmbedOptions{Title: "T", Description: "D", Footer: "F"})
	assert.Equal(t, "T", e.Title)
	assert.Equal(t, "D", e.Description)
	assert.Equal(t, 0xb01e66, e.Color)
	require.NotNil(t, e.Footer)
	assert.Equal(t, "F", e.Footer.Text)
}
