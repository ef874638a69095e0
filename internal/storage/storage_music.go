package storage

import "fmt"

// AppendTrackToHistory records a track that started playing in the guild.
func (s *Storage) AppendTrackToHistory(guildID string, track TrackHistoryRecord) error {
	return s.update(guildID, func(r *Record) {
		r.TracksHistory = keepLast(append(r.TracksHistory, track), tracksHistoryLimit)
	})
}

func (s *Storage) FetchTracksHistory(guildID string) ([]TrackHistoryRecord, error) {
	record, err := s.read(guildID)
	if err != nil {
		return nil, err
	}
	return record.TracksHistory, nil
}

// SetVolume persists the playback volume for a guild.
func (s *Storage) SetVolume(guildID string, volume int) error {
	if volume < 0 || volume > 100 {
		return fmt.Errorf("volume %d out of range 0..100", volume)
	}
	return s.update(guildID, func(r *Record) {
		r.Settings.Volume = &volume
	})
}

// Volume returns the saved volume for a guild, or fallback if none was saved.
func (s *Storage) Volume(guildID string, fallback int) (int, error) {
	record, err := s.read(guildID)
	if err != nil {
		return fallback, err
	}
	if record.Settings.Volume == nil {
		return fallback, nil
	}
	return *record.Settings.Volume, nil
}
