// /internal/storage/storage.go
package storage

import (
	"fmt"
	"sync"
	"time"

	"tunebot/datastore"
)

const (
	commandHistoryLimit int = 20
	tracksHistoryLimit  int = 12
)

// Storage keeps one document per guild in the datastore.
type Storage struct {
	mu sync.Mutex // serializes read-modify-write of guild records
	ds *datastore.DataStore
}

type CommandHistoryRecord struct {
	ChannelID string    `json:"channel_id"`
	GuildName string    `json:"guild_name"`
	UserID    string    `json:"user_id"`
	Username  string    `json:"username"`
	Command   string    `json:"command"`
	Param     string    `json:"param"`
	Datetime  time.Time `json:"datetime"`
}

type TrackHistoryRecord struct {
	Title       string    `json:"title"`
	URL         string    `json:"url"`
	RequestedBy string    `json:"requested_by"`
	PlayedAt    time.Time `json:"played_at"`
}

type Settings struct {
	// Volume is nil until somebody sets it for the guild.
	Volume *int `json:"volume,omitempty"`
}

type Record struct {
	Settings        Settings               `json:"settings"`
	CommandsHistory []CommandHistoryRecord `json:"cmd_history"`
	TracksHistory   []TrackHistoryRecord   `json:"tracks_history"`
	// SlashHashes maps a registered slash command to the hash of its
	// definition.
	SlashHashes map[string]string `json:"slash_hashes,omitempty"`
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

// Store exposes the underlying datastore, e.g. for flushing on shutdown.
func (s *Storage) Store() *datastore.DataStore {
	return s.ds
}

// update loads the guild record, applies fn and writes it back.
func (s *Storage) update(guildID string, fn func(*Record)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, err := s.getOrCreateGuildRecord(guildID)
	if err != nil {
		return err
	}
	fn(record)
	return s.ds.Put(guildID, record)
}

func (s *Storage) read(guildID string) (*Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.getOrCreateGuildRecord(guildID)
}

func (s *Storage) getOrCreateGuildRecord(guildID string) (*Record, error) {
	var record Record
	if _, err := s.ds.Get(guildID, &record); err != nil {
		return nil, fmt.Errorf("load guild record %s: %w", guildID, err)
	}

	if record.CommandsHistory == nil {
		record.CommandsHistory = []CommandHistoryRecord{}
	}
	if record.TracksHistory == nil {
		record.TracksHistory = []TrackHistoryRecord{}
	}
	return &record, nil
}

func keepLast[T any](list []T, limit int) []T {
	if len(list) > limit {
		return list[len(list)-limit:]
	}
	return list
}
