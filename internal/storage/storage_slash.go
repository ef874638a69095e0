package storage

import "maps"

// SlashHashes returns the definition hashes of the slash commands last
// registered in the guild.
func (s *Storage) SlashHashes(guildID string) (map[string]string, error) {
	record, err := s.read(guildID)
	if err != nil {
		return nil, err
	}
	out := make(map[string]string, len(record.SlashHashes))
	maps.Copy(out, record.SlashHashes)
	return out, nil
}

func (s *Storage) SetSlashHashes(guildID string, hashes map[string]string) error {
	return s.update(guildID, func(r *Record) {
		r.SlashHashes = maps.Clone(hashes)
	})
}
