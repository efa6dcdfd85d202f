package storage

import (
	"fmt"
	"sort"
)

// NodeRecord is the persisted form of a playback node.
type NodeRecord struct {
	ID                int64    `json:"id"`
	Name              string   `json:"name"`
	Host              string   `json:"host"`
	Port              int      `json:"port"`
	Password          string   `json:"password"`
	SSL               bool     `json:"ssl"`
	SearchOnly        bool     `json:"search_only"`
	ResumeTimeout     int      `json:"resume_timeout"`
	ReconnectAttempts int      `json:"reconnect_attempts"`
	DisabledSources   []string `json:"disabled_sources,omitempty"`
}

func (s *Storage) loadNodes() (map[int64]NodeRecord, error) {
	nodes := map[int64]NodeRecord{}
	if _, err := s.ds.Get(nodesKey, &nodes); err != nil {
		return nil, fmt.Errorf("load nodes: %w", err)
	}
	return nodes, nil
}

// SaveNode inserts or replaces the node with the record's id.
func (s *Storage) SaveNode(node NodeRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	nodes, err := s.loadNodes()
	if err != nil {
		return err
	}
	nodes[node.ID] = node
	return s.ds.Add(nodesKey, nodes)
}

// DeleteNode reports whether a node with id existed.
func (s *Storage) DeleteNode(id int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	nodes, err := s.loadNodes()
	if err != nil {
		return false, err
	}
	if _, ok := nodes[id]; !ok {
		return false, nil
	}
	delete(nodes, id)
	return true, s.ds.Add(nodesKey, nodes)
}

// Nodes returns the stored nodes ordered by id.
func (s *Storage) Nodes() ([]NodeRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	nodes, err := s.loadNodes()
	if err != nil {
		return nil, err
	}
	out := make([]NodeRecord, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, n)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}
