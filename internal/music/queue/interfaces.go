package queue

import (
	"context"

	"tunebot/internal/music/track"
)

// Resolver turns a link or free text into a track. It returns an error
// matching ErrNotFound when nothing matches.
type Resolver interface {
	Resolve(ctx context.Context, query string) (track.Track, error)
}

// Connector opens voice sessions.
type Connector interface {
	Connect(guildID, channelID string) (Session, error)
}

// Session is a voice connection together with its player.
//
// Play returns stream acquisition errors directly. Once it returns nil, done
// is called exactly once from another goroutine when the track ends, fails,
// or is stopped.
type Session interface {
	Play(ctx context.Context, t track.Track, volume int, done func(error)) error
	Stop()
	SetVolume(v int)
	Close() error
}

// Notifier posts playback events to the guild's text channel.
type Notifier interface {
	NowPlaying(channelID string, t track.Track)
	PlaybackFailed(channelID string, t track.Track, err error)
}

// Settings persists per-guild playback preferences and history.
type Settings interface {
	Volume(guildID string) int
	SaveVolume(guildID string, v int) error
	TrackStarted(guildID string, t track.Track)
}
