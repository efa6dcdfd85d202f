package lavalink

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/keshon/lavadeck/internal/storage"
)

type PlayerStatus string

const (
	StatusPlaying PlayerStatus = "Playing"
	StatusAdded   PlayerStatus = "Track(s) Added"
	StatusRemoved PlayerStatus = "Track(s) Removed"
	StatusStopped PlayerStatus = "Playback Stopped"
	StatusPaused  PlayerStatus = "Playback Paused"
	StatusResumed PlayerStatus = "Playback Resumed"
	StatusEffect  PlayerStatus = "Effect Applied"
)

func (status PlayerStatus) StringEmoji() string {
	m := map[PlayerStatus]string{
		StatusPlaying: "▶️",
		StatusAdded:   "🎶",
		StatusRemoved: "🗑️",
		StatusStopped: "⏹",
		StatusPaused:  "⏸",
		StatusResumed: "▶️",
		StatusEffect:  "🎛️",
	}
	return m[status]
}

var (
	ErrNoTrackPlaying  = errors.New("no track is currently playing")
	ErrNoTracksInQueue = errors.New("no tracks in queue")
	ErrTrackIndex      = errors.New("track index out of range")
)

const historyLimit = 100

// GuildInfo is the descriptive guild data shown in player overviews.
type GuildInfo struct {
	Name      string
	OwnerName string
	OwnerID   string
}

// Player is the per-guild playback state. Audio itself is produced by the
// node; the player tracks what the node has been told to do.
type Player struct {
	mu          sync.Mutex
	guildID     string
	channelID   string
	guild       GuildInfo
	connectedAt time.Time
	current     *Track
	paused      bool
	listeners   int
	effect      string

	queue   *Queue
	history *Queue
	config  storage.PlayerConfig
}

func newPlayer(guildID, channelID string, guild GuildInfo, cfg storage.PlayerConfig) *Player {
	return &Player{
		guildID:     guildID,
		channelID:   channelID,
		guild:       guild,
		connectedAt: time.Now().UTC(),
		queue:       NewQueue(0),
		history:     NewQueue(historyLimit),
		config:      cfg,
	}
}

func (p *Player) GuildID() string { return p.guildID }

func (p *Player) ChannelID() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.channelID
}

func (p *Player) Guild() GuildInfo {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.guild
}

func (p *Player) ConnectedAt() time.Time {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.connectedAt
}

// Current returns a copy of the playing track, or nil.
func (p *Player) Current() *Track {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.current == nil {
		return nil
	}
	t := *p.current
	return &t
}

func (p *Player) Queue() *Queue   { return p.queue }
func (p *Player) History() *Queue { return p.history }

// Listeners is the number of non-bot members in the voice channel.
func (p *Player) Listeners() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.listeners
}

func (p *Player) SetListeners(n int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.listeners = max(n, 0)
}

func (p *Player) Config() storage.PlayerConfig {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.config
}

func (p *Player) setConfig(cfg storage.PlayerConfig) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.config = cfg
}

func (p *Player) Move(channelID string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.channelID = channelID
}

// Play replaces the current track; the previous one moves to history.
func (p *Player) Play(track Track) PlayerStatus {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.archiveCurrentLocked()
	p.current = &track
	p.paused = false
	return StatusPlaying
}

// Enqueue appends tracks and starts the first one when idle.
func (p *Player) Enqueue(tracks ...Track) PlayerStatus {
	if len(tracks) == 0 {
		return StatusAdded
	}
	p.queue.Push(tracks...)

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.current == nil {
		if next, ok := p.queue.Pop(); ok {
			p.current = &next
			p.paused = false
			return StatusPlaying
		}
	}
	return StatusAdded
}

// PlayNow starts the queued track at the 0-based index immediately.
func (p *Player) PlayNow(index int) (Track, error) {
	t, ok := p.queue.RemoveAt(index)
	if !ok {
		return Track{}, fmt.Errorf("play %d of %d: %w", index+1, p.queue.Size(), ErrTrackIndex)
	}
	p.Play(t)
	return t, nil
}

// RemoveTrack drops every queued copy of the track with id.
func (p *Player) RemoveTrack(id string) (int, error) {
	n := p.queue.Remove(id)
	if n == 0 {
		return 0, ErrNoTracksInQueue
	}
	return n, nil
}

// Skip advances to the next queued track.
func (p *Player) Skip() (*Track, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.current == nil {
		return nil, ErrNoTrackPlaying
	}
	p.archiveCurrentLocked()
	next, ok := p.queue.Pop()
	if !ok {
		return nil, ErrNoTracksInQueue
	}
	p.current = &next
	p.paused = false
	t := next
	return &t, nil
}

// Stop ends playback and clears the queue.
func (p *Player) Stop() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.current == nil {
		return ErrNoTrackPlaying
	}
	p.archiveCurrentLocked()
	p.queue.Clear()
	p.paused = false
	return nil
}

func (p *Player) Pause() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.current == nil {
		return ErrNoTrackPlaying
	}
	p.paused = true
	return nil
}

func (p *Player) Resume() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.current == nil {
		return ErrNoTrackPlaying
	}
	p.paused = false
	return nil
}

func (p *Player) Paused() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.paused
}

func (p *Player) IsPlaying() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.current != nil && !p.paused
}

// Effect returns the active effect label, empty when none.
func (p *Player) Effect() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.effect
}

// SetEffect applies a known effect; EffectReset clears it.
func (p *Player) SetEffect(label string) error {
	if !IsEffect(label) {
		return fmt.Errorf("unknown effect %q", label)
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if label == EffectReset {
		p.effect = ""
	} else {
		p.effect = label
	}
	return nil
}

func (p *Player) archiveCurrentLocked() {
	if p.current != nil {
		p.history.Push(*p.current)
		p.current = nil
	}
}
