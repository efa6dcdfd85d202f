package storage

import "slices"

// PlayerConfig holds the per-guild player restrictions.
type PlayerConfig struct {
	TextChannelID string   `json:"text_channel_id,omitempty"`
	DJRoles       []string `json:"dj_roles,omitempty"`
	DJUsers       []string `json:"dj_users,omitempty"`
}

// DJEnabled reports whether any DJ restriction is configured.
func (c PlayerConfig) DJEnabled() bool {
	return len(c.DJRoles) > 0 || len(c.DJUsers) > 0
}

func (s *Storage) PlayerConfig(guildID string) (PlayerConfig, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, err := s.getOrCreateGuildRecord(guildID)
	if err != nil {
		return PlayerConfig{}, err
	}
	return record.Player, nil
}

// SetTextChannel locks player commands to channelID. An empty id removes
// the lock.
func (s *Storage) SetTextChannel(guildID, channelID string) error {
	return s.updatePlayer(guildID, func(c *PlayerConfig) {
		c.TextChannelID = channelID
	})
}

func (s *Storage) AddDJRole(guildID, roleID string) error {
	return s.updatePlayer(guildID, func(c *PlayerConfig) {
		if !slices.Contains(c.DJRoles, roleID) {
			c.DJRoles = append(c.DJRoles, roleID)
		}
	})
}

func (s *Storage) AddDJUser(guildID, userID string) error {
	return s.updatePlayer(guildID, func(c *PlayerConfig) {
		if !slices.Contains(c.DJUsers, userID) {
			c.DJUsers = append(c.DJUsers, userID)
		}
	})
}

func (s *Storage) ClearDJ(guildID string) error {
	return s.updatePlayer(guildID, func(c *PlayerConfig) {
		c.DJRoles = nil
		c.DJUsers = nil
	})
}

func (s *Storage) updatePlayer(guildID string, fn func(*PlayerConfig)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, err := s.getOrCreateGuildRecord(guildID)
	if err != nil {
		return err
	}
	fn(&record.Player)
	return s.putGuildRecord(guildID, record)
}
