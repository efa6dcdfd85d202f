// Package lavalink is the in-process side of the playback client: players,
// queues, the node registry and the readiness and registration state the
// UI layer consults. Audio transport to the nodes lives elsewhere.
package lavalink

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/bwmarrin/discordgo"
	embed "github.com/clinet/discordgo-embed"
	"github.com/rs/zerolog/log"

	"github.com/keshon/lavadeck/internal/storage"
)

// LibVersion is the playback client version reported by plversion.
const LibVersion = "1.0.0"

// Store is the persistence the client needs.
type Store interface {
	NodeStore
	PlayerConfig(guildID string) (storage.PlayerConfig, error)
}

type EmbedOptions struct {
	Title       string
	Description string
	Footer      string
}

type Client struct {
	store   Store
	players *PlayerManager
	nodes   *NodeRegistry
	color   int

	mu           sync.Mutex
	initialized  bool
	ready        chan struct{}
	cogs         map[string]struct{}
	shuttingDown bool
}

func NewClient(store Store, embedColor int) *Client {
	return &Client{
		store:   store,
		players: NewPlayerManager(),
		nodes:   NewNodeRegistry(store),
		color:   embedColor,
		ready:   make(chan struct{}),
		cogs:    make(map[string]struct{}),
	}
}

func (c *Client) Players() *PlayerManager { return c.players }
func (c *Client) Nodes() *NodeRegistry    { return c.nodes }
func (c *Client) LibVersion() string      { return LibVersion }

func (c *Client) Player(guildID string) (*Player, bool) {
	return c.players.Get(guildID)
}

// Connect creates or moves the guild's player. It needs at least one
// playback node to be available.
func (c *Client) Connect(guildID, channelID string, guild GuildInfo) (*Player, error) {
	if !c.hasPlaybackNode() {
		return nil, ErrNoNodeAvailable
	}
	cfg, err := c.store.PlayerConfig(guildID)
	if err != nil {
		return nil, fmt.Errorf("player config: %w", err)
	}
	return c.players.Create(guildID, channelID, guild, cfg), nil
}

func (c *Client) Disconnect(guildID string) bool {
	return c.players.Remove(guildID)
}

// PlayerConfig reads the stored config and refreshes the live player's
// copy when one exists.
func (c *Client) PlayerConfig(guildID string) (storage.PlayerConfig, error) {
	cfg, err := c.store.PlayerConfig(guildID)
	if err != nil {
		return storage.PlayerConfig{}, err
	}
	if p, ok := c.players.Get(guildID); ok {
		p.setConfig(cfg)
	}
	return cfg, nil
}

// IsDJ reports whether the member may use DJ-restricted commands. With no
// DJ restriction configured everybody is a DJ.
func (c *Client) IsDJ(guildID, userID string, roleIDs []string) (bool, error) {
	cfg, err := c.PlayerConfig(guildID)
	if err != nil {
		return false, err
	}
	if !cfg.DJEnabled() {
		return true, nil
	}
	if slices.Contains(cfg.DJUsers, userID) {
		return true, nil
	}
	for _, r := range roleIDs {
		if slices.Contains(cfg.DJRoles, r) {
			return true, nil
		}
	}
	return false, nil
}

// Search matches query against the title, author and URI of the guild's
// current, queued and recently played tracks.
func (c *Client) Search(guildID, query string) ([]Track, error) {
	if len(c.nodes.Available()) == 0 {
		return nil, ErrNoNodeAvailable
	}
	p, ok := c.players.Get(guildID)
	if !ok {
		return nil, nil
	}
	q := strings.ToLower(strings.TrimSpace(query))

	var candidates []Track
	if cur := p.Current(); cur != nil {
		candidates = append(candidates, *cur)
	}
	candidates = append(candidates, p.Queue().Tracks()...)
	candidates = append(candidates, p.History().Tracks()...)

	seen := make(map[string]bool)
	var out []Track
	for _, t := range candidates {
		if seen[t.ID] {
			continue
		}
		hay := strings.ToLower(t.Title + " " + t.Author + " " + t.URI)
		if q == "" || strings.Contains(hay, q) {
			seen[t.ID] = true
			out = append(out, t)
		}
	}
	return out, nil
}

// ConstructEmbed builds an embed in the bot colour.
func (c *Client) ConstructEmbed(opts EmbedOptions) *discordgo.MessageEmbed {
	e := embed.NewEmbed().SetColor(c.color)
	if opts.Title != "" {
		e = e.SetTitle(opts.Title)
	}
	if opts.Description != "" {
		e = e.SetDescription(opts.Description)
	}
	if opts.Footer != "" {
		e = e.SetFooter(opts.Footer)
	}
	return e.MessageEmbed
}

// Initialize loads the node registry and marks the client ready. Later
// calls are no-ops.
func (c *Client) Initialize(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.initialized {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := c.nodes.Load(); err != nil {
		return err
	}
	c.initialized = true
	close(c.ready)
	log.Info().Int("nodes", len(c.nodes.All())).Msg("playback client ready")
	return nil
}

// WaitUntilReady blocks until Initialize succeeded or ctx is done.
func (c *Client) WaitUntilReady(ctx context.Context) error {
	select {
	case <-c.ready:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (c *Client) Ready() bool {
	select {
	case <-c.ready:
		return true
	default:
		return false
	}
}

// Register attaches a cog by name.
func (c *Client) Register(cog string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cogs[cog] = struct{}{}
	c.shuttingDown = false
}

// Unregister detaches a cog. Removing the last one puts the client into
// shutdown.
func (c *Client) Unregister(cog string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.cogs, cog)
	if len(c.cogs) == 0 {
		c.shuttingDown = true
	}
}

func (c *Client) ShuttingDown() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.shuttingDown
}

func (c *Client) hasPlaybackNode() bool {
	for _, n := range c.nodes.Available() {
		if !n.SearchOnly {
			return true
		}
	}
	return false
}
