package storage

import (
	"fmt"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStorage(t *testing.T) *Storage {
	t.Helper()
	s, err := New(filepath.Join(t.TempDir(), "datastore.json"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestCommandHistory_Bounded(t *testing.T) {
	s := newTestStorage(t)
	for i := 0; i < 25; i++ {
		require.NoError(t, s.AppendCommand("g1", CommandHistoryRecord{Command: fmt.Sprintf("c%d", i)}))
	}

	history, err := s.CommandHistory("g1")
	require.NoError(t, err)
	require.Len(t, history, commandHistoryLimit)
	assert.Equal(t, "c5", history[0].Command)
	assert.Equal(t, "c24", history[len(history)-1].Command)

	other, err := s.CommandHistory("g2")
	require.NoError(t, err)
	assert.Empty(t, other)
}

func TestPlayerConfig_DJLists(t *testing.T) {
	s := newTestStorage(t)

	require.NoError(t, s.AddDJRole("g", "r1"))
	require.NoError(t, s.AddDJRole("g", "r1"))
	require.NoError(t, s.AddDJUser("g", "u1"))
	require.NoError(t, s.SetTextChannel("g", "c1"))

	cfg, err := s.PlayerConfig("g")
	require.NoError(t, err)
	assert.Equal(t, []string{"r1"}, cfg.DJRoles)
	assert.Equal(t, []string{"u1"}, cfg.DJUsers)
	assert.Equal(t, "c1", cfg.TextChannelID)
	assert.True(t, cfg.DJEnabled())

	require.NoError(t, s.ClearDJ("g"))
	cfg, err = s.PlayerConfig("g")
	require.NoError(t, err)
	assert.False(t, cfg.DJEnabled())
	assert.Equal(t, "c1", cfg.TextChannelID)
}

func TestNodes_SaveDelete(t *testing.T) {
	s := newTestStorage(t)

	require.NoError(t, s.SaveNode(NodeRecord{ID: 7, Name: "b", Host: "h", Port: 2333}))
	require.NoError(t, s.SaveNode(NodeRecord{ID: 3, Name: "a", Host: "h", Port: 443, SSL: true}))
	require.NoError(t, s.SaveNode(NodeRecord{ID: 7, Name: "b2", Host: "h", Port: 2333}))

	nodes, err := s.Nodes()
	require.NoError(t, err)
	require.Len(t, nodes, 2)
	assert.Equal(t, int64(3), nodes[0].ID)
	assert.Equal(t, "b2", nodes[1].Name)

	ok, err := s.DeleteNode(3)
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = s.DeleteNode(3)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestPresets_Sorted(t *testing.T) {
	s := newTestStorage(t)
	require.NoError(t, s.SavePreset("zeta", Preset{Author: "1", Bands: []float64{0.1}}))
	require.NoError(t, s.SavePreset("alpha", Preset{}))

	presets, err := s.Presets()
	require.NoError(t, err)
	require.Len(t, presets, 2)
	assert.Equal(t, "alpha", presets[0].Name)
	assert.Equal(t, []float64{0.1}, presets[1].Bands)

	require.NoError(t, s.DeletePreset("alpha"))
	presets, err = s.Presets()
	require.NoError(t, err)
	assert.Len(t, presets, 1)
}
