package storage

import (
	"fmt"
	"sort"
)

// Preset is a saved equalizer configuration.
type Preset struct {
	Author string    `json:"author"`
	Bands  []float64 `json:"bands"`
}

// NamedPreset pairs a preset with its name for listing.
type NamedPreset struct {
	Name string
	Preset
}

func (s *Storage) loadPresets() (map[string]Preset, error) {
	presets := map[string]Preset{}
	if _, err := s.ds.Get(presetsKey, &presets); err != nil {
		return nil, fmt.Errorf("load presets: %w", err)
	}
	return presets, nil
}

func (s *Storage) SavePreset(name string, preset Preset) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	presets, err := s.loadPresets()
	if err != nil {
		return err
	}
	presets[name] = preset
	return s.ds.Add(presetsKey, presets)
}

func (s *Storage) DeletePreset(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	presets, err := s.loadPresets()
	if err != nil {
		return err
	}
	delete(presets, name)
	return s.ds.Add(presetsKey, presets)
}

// Presets returns every preset sorted by name.
func (s *Storage) Presets() ([]NamedPreset, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	presets, err := s.loadPresets()
	if err != nil {
		return nil, err
	}
	out := make([]NamedPreset, 0, len(presets))
	for name, p := range presets {
		out = append(out, NamedPreset{Name: name, Preset: p})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}
