package lavalink

import (
	"errors"
	"fmt"
	"slices"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/keshon/lavadeck/internal/storage"
)

var (
	ErrNoNodeAvailable = errors.New("no node currently available")
	ErrNodeNotFound    = errors.New("node not found")
	ErrBundledNode     = errors.New("bundled nodes cannot be modified")
)

// NoNodeWithFeatureError reports that no available node serves a source.
type NoNodeWithFeatureError struct {
	Feature string
}

func (e *NoNodeWithFeatureError) Error() string {
	return fmt.Sprintf("no node currently available with feature %s", e.Feature)
}

// Sources are the track sources a node may serve.
var Sources = []string{
	"applemusic",
	"bandcamp",
	"deezer",
	"http",
	"local",
	"soundcloud",
	"spotify",
	"twitch",
	"vimeo",
	"yandexmusic",
	"youtube",
}

// Node describes one playback node.
type Node struct {
	ID                int64
	Name              string
	Host              string
	Port              int
	Password          string
	SSL               bool
	SearchOnly        bool
	ResumeTimeout     int
	ReconnectAttempts int
	DisabledSources   []string
	// Managed marks nodes bundled with the bot, which are read-only.
	Managed bool
}

// EnabledSources is Sources minus DisabledSources.
func (n Node) EnabledSources() []string {
	out := make([]string, 0, len(Sources))
	for _, s := range Sources {
		if !slices.Contains(n.DisabledSources, s) {
			out = append(out, s)
		}
	}
	return out
}

func (n Node) Supports(source string) bool {
	return slices.Contains(n.EnabledSources(), strings.ToLower(source))
}

func (n Node) URI() string {
	scheme := "http"
	if n.SSL {
		scheme = "https"
	}
	return fmt.Sprintf("%s://%s:%d", scheme, n.Host, n.Port)
}

func (n Node) record() storage.NodeRecord {
	return storage.NodeRecord{
		ID:                n.ID,
		Name:              n.Name,
		Host:              n.Host,
		Port:              n.Port,
		Password:          n.Password,
		SSL:               n.SSL,
		SearchOnly:        n.SearchOnly,
		ResumeTimeout:     n.ResumeTimeout,
		ReconnectAttempts: n.ReconnectAttempts,
		DisabledSources:   n.DisabledSources,
	}
}

func nodeFromRecord(r storage.NodeRecord) Node {
	return Node{
		ID:                r.ID,
		Name:              r.Name,
		Host:              r.Host,
		Port:              r.Port,
		Password:          r.Password,
		SSL:               r.SSL,
		SearchOnly:        r.SearchOnly,
		ResumeTimeout:     r.ResumeTimeout,
		ReconnectAttempts: r.ReconnectAttempts,
		DisabledSources:   r.DisabledSources,
	}
}

// BundledNodes ship with the bot and cannot be edited or deleted.
var BundledNodes = []Node{
	{ID: 1, Name: "lavadeck managed node", Host: "localhost", Port: 2154, ResumeTimeout: 600, ReconnectAttempts: -1, Managed: true},
	{ID: 2, Name: "lavadeck search node", Host: "localhost", Port: 2155, SearchOnly: true, ResumeTimeout: 600, ReconnectAttempts: -1, Managed: true},
}

func IsBundled(id int64) bool {
	for _, n := range BundledNodes {
		if n.ID == id {
			return true
		}
	}
	return false
}

// NodeStore persists user-added nodes.
type NodeStore interface {
	SaveNode(storage.NodeRecord) error
	DeleteNode(id int64) (bool, error)
	Nodes() ([]storage.NodeRecord, error)
}

// NodeRegistry tracks the known nodes and their availability.
type NodeRegistry struct {
	store NodeStore

	mu    sync.RWMutex
	nodes map[int64]Node
	down  map[int64]bool
}

func NewNodeRegistry(store NodeStore) *NodeRegistry {
	r := &NodeRegistry{
		store: store,
		nodes: make(map[int64]Node),
		down:  make(map[int64]bool),
	}
	for _, n := range BundledNodes {
		r.nodes[n.ID] = n
	}
	return r
}

// Load reads persisted nodes into the registry.
func (r *NodeRegistry) Load() error {
	records, err := r.store.Nodes()
	if err != nil {
		return fmt.Errorf("load nodes: %w", err)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, rec := range records {
		if IsBundled(rec.ID) {
			continue
		}
		r.nodes[rec.ID] = nodeFromRecord(rec)
	}
	return nil
}

// All returns nodes ordered by id.
func (r *NodeRegistry) All() []Node {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Node, 0, len(r.nodes))
	for _, n := range r.nodes {
		out = append(out, n)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (r *NodeRegistry) Get(id int64) (Node, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	n, ok := r.nodes[id]
	return n, ok
}

// Add persists a new node. A zero ID is replaced by a fresh unique one.
func (r *NodeRegistry) Add(n Node) (Node, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if n.ID == 0 {
		n.ID = time.Now().Unix()
		for r.nodes[n.ID].ID != 0 || IsBundled(n.ID) {
			n.ID++
		}
	}
	if IsBundled(n.ID) {
		return Node{}, ErrBundledNode
	}
	n.Managed = false
	if err := r.store.SaveNode(n.record()); err != nil {
		return Node{}, fmt.Errorf("save node %d: %w", n.ID, err)
	}
	r.nodes[n.ID] = n
	return n, nil
}

// Update replaces an existing user node.
func (r *NodeRegistry) Update(n Node) error {
	if IsBundled(n.ID) {
		return ErrBundledNode
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.nodes[n.ID]; !ok {
		return fmt.Errorf("update node %d: %w", n.ID, ErrNodeNotFound)
	}
	if err := r.store.SaveNode(n.record()); err != nil {
		return fmt.Errorf("save node %d: %w", n.ID, err)
	}
	r.nodes[n.ID] = n
	return nil
}

func (r *NodeRegistry) Delete(id int64) error {
	if IsBundled(id) {
		return ErrBundledNode
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.nodes[id]; !ok {
		return fmt.Errorf("delete node %d: %w", id, ErrNodeNotFound)
	}
	if _, err := r.store.DeleteNode(id); err != nil {
		return fmt.Errorf("delete node %d: %w", id, err)
	}
	delete(r.nodes, id)
	delete(r.down, id)
	return nil
}

// SetAvailable records whether the node is reachable.
func (r *NodeRegistry) SetAvailable(id int64, up bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if up {
		delete(r.down, id)
	} else {
		r.down[id] = true
	}
}

// Available returns reachable nodes ordered by id.
func (r *NodeRegistry) Available() []Node {
	all := r.All()
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := all[:0]
	for _, n := range all {
		if !r.down[n.ID] {
			out = append(out, n)
		}
	}
	return out
}

// WithFeature picks an available playback node serving source. It returns
// ErrNoNodeAvailable when no node is up at all.
func (r *NodeRegistry) WithFeature(source string) (Node, error) {
	available := r.Available()
	if len(available) == 0 {
		return Node{}, ErrNoNodeAvailable
	}
	for _, n := range available {
		if !n.SearchOnly && n.Supports(source) {
			return n, nil
		}
	}
	return Node{}, &NoNodeWithFeatureError{Feature: source}
}
