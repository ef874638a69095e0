// Package queue keeps one playback queue per guild and advances it as
// tracks finish.
package queue

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"tunebot/internal/music/track"
)

const DefaultVolume = 50

// Request is one play command.
type Request struct {
	GuildID        string
	VoiceChannelID string // requester's voice channel, empty if not connected
	TextChannelID  string
	Requester      string
	Query          string
	CanConnect     bool // bot may connect and speak in VoiceChannelID
}

type Result struct {
	Status   Status
	Position int
	Track    track.Track
}

type Config struct {
	Resolver  Resolver
	Connector Connector
	Notifier  Notifier
	// Settings is optional.
	Settings      Settings
	DefaultVolume int
}

// Registry owns every guild queue. Its own lock only guards the map; each
// GuildQueue is serialized by its own mutex so guilds never wait on each
// other.
type Registry struct {
	mu     sync.Mutex
	queues map[string]*GuildQueue

	resolver      Resolver
	connector     Connector
	notifier      Notifier
	settings      Settings
	defaultVolume int

	logger zerolog.Logger
}

func NewRegistry(cfg Config) *Registry {
	vol := cfg.DefaultVolume
	if vol < 0 || vol > 100 {
		vol = DefaultVolume
	}
	return &Registry{
		queues:        make(map[string]*GuildQueue),
		resolver:      cfg.Resolver,
		connector:     cfg.Connector,
		notifier:      cfg.Notifier,
		settings:      cfg.Settings,
		defaultVolume: vol,
		logger:        log.With().Str("component", "queue").Logger(),
	}
}

// Enqueue resolves req.Query and either starts a new queue for the guild or
// appends to the existing one.
func (r *Registry) Enqueue(ctx context.Context, req Request) (Result, error) {
	query := strings.TrimSpace(req.Query)
	if query == "" {
		return Result{}, ErrMissingArgument
	}
	if req.VoiceChannelID == "" {
		return Result{}, ErrNotInVoice
	}
	if !req.CanConnect {
		return Result{}, ErrNoPermission
	}

	t, err := r.resolver.Resolve(ctx, query)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return Result{}, err
		}
		return Result{}, fmt.Errorf("%w: resolve %q: %w", ErrUnhandled, query, err)
	}
	t = t.WithRequester(req.Requester)
	volume := r.volumeFor(req.GuildID)

	for {
		q, created := r.getOrCreate(req, volume)
		if q.closed {
			q.mu.Unlock()
			continue
		}

		if !created {
			q.tracks = append(q.tracks, t)
			pos := len(q.tracks) - 1
			q.mu.Unlock()

			r.logger.Info().Str("guild_id", req.GuildID).Str("title", t.Title).Int("position", pos).Msg("Track queued")
			return Result{Status: Queued, Position: pos, Track: t}, nil
		}

		res, err := r.start(ctx, q, t)
		q.mu.Unlock()
		return res, err
	}
}

// start opens the voice session for a freshly created entry and plays t.
// q.mu is held.
func (r *Registry) start(ctx context.Context, q *GuildQueue, t track.Track) (Result, error) {
	session, err := r.connector.Connect(q.guildID, q.voiceChannelID)
	if err != nil {
		r.remove(q)
		r.logger.Error().Err(err).Str("guild_id", q.guildID).Str("channel_id", q.voiceChannelID).Msg("Voice connect failed")
		return Result{}, fmt.Errorf("%w: %w", ErrConnectFailed, err)
	}

	q.session = session
	q.tracks = []track.Track{t}
	r.logger.Info().Str("guild_id", q.guildID).Str("channel_id", q.voiceChannelID).Msg("Queue created")

	r.playCurrent(context.WithoutCancel(ctx), q)
	return Result{Status: Started, Position: 0, Track: t}, nil
}

// getOrCreate returns the guild's queue locked. A new entry is locked before
// it becomes visible in the map, so a concurrent request for the same guild
// waits for the connection attempt and then appends. Callers must check
// q.closed.
func (r *Registry) getOrCreate(req Request, volume int) (*GuildQueue, bool) {
	r.mu.Lock()
	if q, ok := r.queues[req.GuildID]; ok {
		r.mu.Unlock()
		q.mu.Lock()
		return q, false
	}

	q := newGuildQueue(req, volume)
	q.mu.Lock()
	r.queues[req.GuildID] = q
	r.mu.Unlock()
	return q, true
}

// lookup returns the guild's live queue locked, or nil.
func (r *Registry) lookup(guildID string) *GuildQueue {
	for {
		r.mu.Lock()
		q, ok := r.queues[guildID]
		r.mu.Unlock()
		if !ok {
			return nil
		}

		q.mu.Lock()
		if !q.closed {
			return q
		}
		q.mu.Unlock()
	}
}

// remove drops q from the map. q.mu is held.
func (r *Registry) remove(q *GuildQueue) {
	q.closed = true
	q.playing = false
	q.state = Idle

	r.mu.Lock()
	if r.queues[q.guildID] == q {
		delete(r.queues, q.guildID)
	}
	r.mu.Unlock()
}

// playCurrent starts the head track. Tracks whose stream cannot be acquired
// are reported and dropped; the loop ends after at most len(q.tracks)
// attempts, either playing or with the queue torn down. q.mu is held.
func (r *Registry) playCurrent(ctx context.Context, q *GuildQueue) {
	for {
		head, ok := q.head()
		if !ok {
			r.teardown(q)
			return
		}

		q.generation++
		gen := q.generation

		err := q.session.Play(ctx, head, q.volume, func(err error) {
			r.onFinished(q, gen, err)
		})
		if err == nil {
			q.state = Playing
			q.playing = true
			r.logger.Info().Str("guild_id", q.guildID).Str("title", head.Title).Str("url", head.URL).Msg("Now playing")
			r.notifier.NowPlaying(q.textChannelID, head)
			if r.settings != nil {
				r.settings.TrackStarted(q.guildID, head)
			}
			return
		}

		r.logger.Warn().Err(err).Str("guild_id", q.guildID).Str("url", head.URL).Msg("Stream acquisition failed, skipping track")
		r.notifier.PlaybackFailed(q.textChannelID, head, fmt.Errorf("%w: %w", ErrStreamAcquisition, err))
		q.state = Advancing
		q.playing = false
		q.dropHead()
	}
}

// onFinished advances the queue when the track started by Play call gen
// ends.
func (r *Registry) onFinished(q *GuildQueue, gen uint64, err error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed || gen != q.generation || q.state == Draining {
		return
	}

	if head, ok := q.head(); ok && err != nil {
		r.logger.Error().Err(err).Str("guild_id", q.guildID).Str("url", head.URL).Msg("Playback error")
		r.notifier.PlaybackFailed(q.textChannelID, head, fmt.Errorf("%w: %w", ErrPlaybackFailed, err))
	}

	q.state = Advancing
	q.playing = false
	q.dropHead()
	r.playCurrent(context.Background(), q)
}

// teardown closes the session and removes the entry. q.mu is held.
func (r *Registry) teardown(q *GuildQueue) {
	q.state = Draining
	q.tracks = nil
	if q.session != nil {
		if err := q.session.Close(); err != nil {
			r.logger.Warn().Err(err).Str("guild_id", q.guildID).Msg("Failed to close voice session")
		}
	}
	r.remove(q)
	r.logger.Info().Str("guild_id", q.guildID).Msg("Queue finished")
}

// Skip stops the current track; the queue then advances on its own. It
// returns the skipped track.
func (r *Registry) Skip(guildID string) (track.Track, error) {
	q := r.lookup(guildID)
	if q == nil {
		return track.Track{}, ErrNoQueue
	}
	defer q.mu.Unlock()

	head, ok := q.head()
	if !ok || !q.playing {
		return track.Track{}, ErrNoQueue
	}
	q.session.Stop()
	r.logger.Info().Str("guild_id", guildID).Str("title", head.Title).Msg("Track skipped")
	return head, nil
}

// Stop clears the guild's queue and leaves the voice channel.
func (r *Registry) Stop(guildID string) error {
	q := r.lookup(guildID)
	if q == nil {
		return ErrNoQueue
	}
	defer q.mu.Unlock()

	q.state = Draining
	q.session.Stop()
	r.teardown(q)
	return nil
}

// Snapshot returns a copy of the guild's queue. ok is false when the guild
// is idle.
func (r *Registry) Snapshot(guildID string) (Snapshot, bool) {
	q := r.lookup(guildID)
	if q == nil {
		return Snapshot{GuildID: guildID, State: Idle, Volume: r.volumeFor(guildID)}, false
	}
	defer q.mu.Unlock()
	return q.snapshot(), true
}

// SetVolume saves v for the guild and applies it to the playing track.
func (r *Registry) SetVolume(guildID string, v int) error {
	if v < 0 || v > 100 {
		return ErrInvalidVolume
	}
	if r.settings != nil {
		if err := r.settings.SaveVolume(guildID, v); err != nil {
			return fmt.Errorf("save volume: %w", err)
		}
	}

	q := r.lookup(guildID)
	if q == nil {
		return nil
	}
	defer q.mu.Unlock()

	q.volume = v
	q.session.SetVolume(v)
	return nil
}

// Len reports how many guilds have a queue.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.queues)
}

// Shutdown stops every queue.
func (r *Registry) Shutdown() {
	r.mu.Lock()
	guilds := make([]string, 0, len(r.queues))
	for id := range r.queues {
		guilds = append(guilds, id)
	}
	r.mu.Unlock()

	for _, id := range guilds {
		if err := r.Stop(id); err != nil && !errors.Is(err, ErrNoQueue) {
			r.logger.Warn().Err(err).Str("guild_id", id).Msg("Failed to stop queue")
		}
	}
	r.logger.Info().Int("guilds", len(guilds)).Msg("All queues stopped")
}

func (r *Registry) volumeFor(guildID string) int {
	if r.settings == nil {
		return r.defaultVolume
	}
	return r.settings.Volume(guildID)
}
