package storage

import (
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"tunebot/datastore"
)

func newTestStorage(t *testing.T) *Storage {
	t.Helper()
	cfg := datastore.DefaultConfig(filepath.Join(t.TempDir(), "store.json"))
	cfg.AutoSaveInterval = 0
	ds, err := datastore.NewWithConfig(cfg)
	if err != nil {
		t.Fatalf("open datastore: %v", err)
	}
	s := NewWithStore(ds)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestCommandHistory(t *testing.T) {
	s := newTestStorage(t)

	for i := 0; i < commandHistoryLimit+5; i++ {
		err := s.AppendCommandToHistory("g1", CommandHistoryRecord{
			Command:  "play",
			Param:    fmt.Sprintf("song %d", i),
			Datetime: time.Now(),
		})
		if err != nil {
			t.Fatalf("append: %v", err)
		}
	}

	history, err := s.FetchCommandHistory("g1")
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if len(history) != commandHistoryLimit {
		t.Fatalf("expected %d records, got %d", commandHistoryLimit, len(history))
	}
	if history[len(history)-1].Param != fmt.Sprintf("song %d", commandHistoryLimit+4) {
		t.Errorf("expected newest record last, got %q", history[len(history)-1].Param)
	}

	other, err := s.FetchCommandHistory("g2")
	if err != nil {
		t.Fatalf("fetch other guild: %v", err)
	}
	if len(other) != 0 {
		t.Errorf("expected empty history for unknown guild, got %d", len(other))
	}
}

func TestTracksHistory(t *testing.T) {
	s := newTestStorage(t)

	for i := 0; i < tracksHistoryLimit+1; i++ {
		if err := s.AppendTrackToHistory("g1", TrackHistoryRecord{Title: fmt.Sprintf("t%d", i)}); err != nil {
			t.Fatalf("append: %v", err)
		}
	}

	tracks, err := s.FetchTracksHistory("g1")
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if len(tracks) != tracksHistoryLimit {
		t.Errorf("expected %d tracks, got %d", tracksHistoryLimit, len(tracks))
	}
	if tracks[0].Title != "t1" {
		t.Errorf("expected oldest surviving track t1, got %s", tracks[0].Title)
	}
}

func TestVolume(t *testing.T) {
	s := newTestStorage(t)

	v, err := s.Volume("g1", 50)
	if err != nil || v != 50 {
		t.Fatalf("expected fallback 50, got %d (%v)", v, err)
	}

	if err := s.SetVolume("g1", 0); err != nil {
		t.Fatalf("set volume: %v", err)
	}
	v, err = s.Volume("g1", 50)
	if err != nil || v != 0 {
		t.Errorf("expected saved volume 0, got %d (%v)", v, err)
	}

	if err := s.SetVolume("g1", 101); err == nil {
		t.Error("expected error for volume above 100")
	}
}

func TestSlashHashes(t *testing.T) {
	s := newTestStorage(t)

	hashes, err := s.SlashHashes("g1")
	if err != nil || len(hashes) != 0 {
		t.Fatalf("expected no hashes, got %v (%v)", hashes, err)
	}

	want := map[string]string{"play": "abc", "skip": "def"}
	if err := s.SetSlashHashes("g1", want); err != nil {
		t.Fatalf("set: %v", err)
	}
	want["play"] = "mutated"

	got, err := s.SlashHashes("g1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got["play"] != "abc" || got["skip"] != "def" {
		t.Errorf("unexpected hashes %v", got)
	}
}
