package queue

import (
	"sync"

	"tunebot/internal/music/track"
)

// GuildQueue is the playback state of one guild. All fields are guarded by
// mu. The head of tracks is the track bound to the session's player.
type GuildQueue struct {
	mu sync.Mutex

	guildID        string
	voiceChannelID string
	textChannelID  string

	tracks  []track.Track
	session Session
	volume  int
	playing bool
	state   State

	// generation identifies the current Play call; finished callbacks from
	// older calls are ignored.
	generation uint64
	// closed is set once the entry has left the registry.
	closed bool
}

func newGuildQueue(req Request, volume int) *GuildQueue {
	return &GuildQueue{
		guildID:        req.GuildID,
		voiceChannelID: req.VoiceChannelID,
		textChannelID:  req.TextChannelID,
		volume:         volume,
		state:          Connecting,
	}
}

func (q *GuildQueue) head() (track.Track, bool) {
	if len(q.tracks) == 0 {
		return track.Track{}, false
	}
	return q.tracks[0], true
}

func (q *GuildQueue) dropHead() {
	if len(q.tracks) > 0 {
		q.tracks[0] = track.Track{}
		q.tracks = q.tracks[1:]
	}
}

// Snapshot is a copy of a guild queue for display.
type Snapshot struct {
	GuildID        string
	VoiceChannelID string
	TextChannelID  string
	State          State
	Playing        bool
	Volume         int
	Tracks         []track.Track
}

func (q *GuildQueue) snapshot() Snapshot {
	return Snapshot{
		GuildID:        q.guildID,
		VoiceChannelID: q.voiceChannelID,
		TextChannelID:  q.textChannelID,
		State:          q.state,
		Playing:        q.playing,
		Volume:         q.volume,
		Tracks:         append([]track.Track(nil), q.tracks...),
	}
}
