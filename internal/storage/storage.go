// Package storage is the typed persistence facade over the JSON datastore:
// per-guild records (player config, command history), the node registry
// and equalizer presets.
package storage

import (
	"fmt"
	"sync"
	"time"

	"github.com/keshon/lavadeck/internal/datastore"
)

const commandHistoryLimit = 20

const (
	guildKeyPrefix = "guild:"
	nodesKey       = "nodes"
	presetsKey     = "presets"
)

type Storage struct {
	ds *datastore.DataStore
	// mu serialises read-modify-write cycles on records.
	mu sync.Mutex
}

type CommandHistoryRecord struct {
	ChannelID   string    `json:"channel_id"`
	ChannelName string    `json:"channel_name"`
	GuildName   string    `json:"guild_name"`
	UserID      string    `json:"user_id"`
	Username    string    `json:"username"`
	Command     string    `json:"command"`
	Param       string    `json:"param"`
	Datetime    time.Time `json:"datetime"`
}

// Record is everything kept for one guild.
type Record struct {
	CommandsHistory []CommandHistoryRecord `json:"cmd_history"`
	Player          PlayerConfig           `json:"player"`
}

func New(filePath string) (*Storage, error) {
	ds, err := datastore.New(filePath)
	if err != nil {
		return nil, err
	}
	return &Storage{ds: ds}, nil
}

// NewWithStore wraps an already opened datastore.
func NewWithStore(ds *datastore.DataStore) *Storage {
	return &Storage{ds: ds}
}

func (s *Storage) Close() error {
	return s.ds.Close()
}

func (s *Storage) getOrCreateGuildRecord(guildID string) (*Record, error) {
	var record Record
	ok, err := s.ds.Get(guildKeyPrefix+guildID, &record)
	if err != nil {
		return nil, fmt.Errorf("load guild %s: %w", guildID, err)
	}
	if !ok {
		return &Record{}, nil
	}
	if len(record.CommandsHistory) > commandHistoryLimit {
		record.CommandsHistory = record.CommandsHistory[len(record.CommandsHistory)-commandHistoryLimit:]
	}
	return &record, nil
}

func (s *Storage) putGuildRecord(guildID string, record *Record) error {
	return s.ds.Add(guildKeyPrefix+guildID, record)
}

// AppendCommand records an executed command, keeping the last 20 per guild.
func (s *Storage) AppendCommand(guildID string, command CommandHistoryRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, err := s.getOrCreateGuildRecord(guildID)
	if err != nil {
		return err
	}
	record.CommandsHistory = append(record.CommandsHistory, command)
	if n := len(record.CommandsHistory); n > commandHistoryLimit {
		record.CommandsHistory = record.CommandsHistory[n-commandHistoryLimit:]
	}
	return s.putGuildRecord(guildID, record)
}

func (s *Storage) CommandHistory(guildID string) ([]CommandHistoryRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, err := s.getOrCreateGuildRecord(guildID)
	if err != nil {
		return nil, err
	}
	return record.CommandsHistory, nil
}
