package lavalink

import (
	"sort"
	"sync"

	"github.com/keshon/lavadeck/internal/storage"
)

// PlayerManager owns the players of every guild.
type PlayerManager struct {
	mu      sync.RWMutex
	players map[string]*Player
}

func NewPlayerManager() *PlayerManager {
	return &PlayerManager{players: make(map[string]*Player)}
}

func (m *PlayerManager) Get(guildID string) (*Player, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.players[guildID]
	return p, ok
}

// Create returns the guild's player, creating it connected to channelID if
// none exists.
func (m *PlayerManager) Create(guildID, channelID string, guild GuildInfo, cfg storage.PlayerConfig) *Player {
	m.mu.Lock()
	defer m.mu.Unlock()
	if p, ok := m.players[guildID]; ok {
		p.Move(channelID)
		return p
	}
	p := newPlayer(guildID, channelID, guild, cfg)
	m.players[guildID] = p
	return p
}

func (m *PlayerManager) Remove(guildID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.players[guildID]
	delete(m.players, guildID)
	return ok
}

// All returns every player ordered by guild id.
func (m *PlayerManager) All() []*Player {
	return m.filter(func(*Player) bool { return true })
}

// Connected returns players attached to a voice channel.
func (m *PlayerManager) Connected() []*Player {
	return m.filter(func(p *Player) bool { return p.ChannelID() != "" })
}

func (m *PlayerManager) Playing() []*Player {
	return m.filter((*Player).IsPlaying)
}

func (m *PlayerManager) filter(keep func(*Player) bool) []*Player {
	m.mu.RLock()
	out := make([]*Player, 0, len(m.players))
	for _, p := range m.players {
		if keep(p) {
			out = append(out, p)
		}
	}
	m.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].guildID < out[j].guildID })
	return out
}
