// Package voice owns a Discord voice connection together with the one
// audio player bound to it.
package voice

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"sync/atomic"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"tunebot/internal/music/stream"
	"tunebot/internal/music/track"
)

// Opener acquires a PCM stream for a track URL.
type Opener interface {
	Open(ctx context.Context, url string) (*stream.TrackStream, error)
}

// conn is the part of *discordgo.VoiceConnection a Session drives.
type conn interface {
	Speaking(b bool) error
	Disconnect() error
}

type sendFunc func(ctx context.Context, pcm io.Reader, out chan<- []byte, volume func() int) error

// Connector joins voice channels through the gateway session.
type Connector struct {
	dg     *discordgo.Session
	opener Opener
}

func NewConnector(dg *discordgo.Session, opener Opener) *Connector {
	return &Connector{dg: dg, opener: opener}
}

// Connect joins channelID in guildID, deafened, and returns a Session with a
// fresh player.
func (c *Connector) Connect(guildID, channelID string) (*Session, error) {
	vc, err := c.dg.ChannelVoiceJoin(guildID, channelID, false, true)
	if err != nil {
		return nil, fmt.Errorf("join voice channel %s: %w", channelID, err)
	}
	return newSession(guildID, vc, vc.OpusSend, c.opener, stream.SendOpus), nil
}

// Session is one voice connection and its player. At most one track plays
// at a time; starting a track cancels the one before it.
type Session struct {
	guildID string
	conn    conn
	opus    chan<- []byte
	opener  Opener
	send    sendFunc
	logger  zerolog.Logger

	volume atomic.Int32

	mu     sync.Mutex
	cancel context.CancelFunc
	closed bool
}

func newSession(guildID string, c conn, opus chan<- []byte, opener Opener, send sendFunc) *Session {
	return &Session{
		guildID: guildID,
		conn:    c,
		opus:    opus,
		opener:  opener,
		send:    send,
		logger:  log.With().Str("component", "player").Str("guild_id", guildID).Logger(),
	}
}

var errSessionClosed = errors.New("voice session closed")

// Play acquires the audio for t and starts streaming it in the background.
// Acquisition errors are returned directly and done is never called for
// them. Otherwise done is called exactly once when the track ends, fails or
// is stopped; a stopped track counts as finished and reports nil.
func (s *Session) Play(ctx context.Context, t track.Track, volume int, done func(error)) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return errSessionClosed
	}
	s.mu.Unlock()

	s.volume.Store(int32(volume))

	pcm, err := s.opener.Open(ctx, t.URL)
	if err != nil {
		return err
	}

	playCtx, cancel := context.WithCancel(context.Background())

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		cancel()
		pcm.Close()
		return errSessionClosed
	}
	if s.cancel != nil {
		s.cancel()
	}
	s.cancel = cancel
	s.mu.Unlock()

	s.logger.Info().Str("title", t.Title).Str("parser", pcm.Parser).Msg("Playback started")

	go s.run(playCtx, cancel, pcm, done)
	return nil
}

func (s *Session) run(ctx context.Context, cancel context.CancelFunc, pcm *stream.TrackStream, done func(error)) {
	defer cancel()
	defer pcm.Close()

	s.speaking(true)
	err := s.send(ctx, pcm, s.opus, s.Volume)
	s.speaking(false)

	if errors.Is(err, context.Canceled) {
		err = nil
	}
	if err != nil {
		s.logger.Error().Err(err).Msg("Playback failed")
	} else {
		s.logger.Debug().Msg("Playback finished")
	}

	if done != nil {
		done(err)
	}
}

func (s *Session) speaking(on bool) {
	if err := s.conn.Speaking(on); err != nil {
		s.logger.Debug().Err(err).Bool("speaking", on).Msg("Failed to update speaking state")
	}
}

// Stop ends the current track. Its done callback still fires.
func (s *Session) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
}

// SetVolume applies v (0..100) to the track that is playing now.
func (s *Session) SetVolume(v int) {
	s.volume.Store(int32(v))
}

func (s *Session) Volume() int {
	return int(s.volume.Load())
}

// Close stops playback and leaves the voice channel. It does not wait for
// the streaming goroutine, which may be the caller.
func (s *Session) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.mu.Unlock()

	if err := s.conn.Disconnect(); err != nil {
		return fmt.Errorf("disconnect from voice in guild %s: %w", s.guildID, err)
	}
	s.logger.Info().Msg("Left voice channel")
	return nil
}
