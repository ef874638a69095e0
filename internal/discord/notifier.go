package discord

import (
	"fmt"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog"

	"tunebot/internal/command/music"
	"tunebot/internal/logger"
	"tunebot/internal/music/track"
	"tunebot/internal/storage"
)

// channelSender is the part of *discordgo.Session the notifier uses.
type channelSender interface {
	ChannelMessageSend(channelID string, content string, options ...discordgo.RequestOption) (*discordgo.Message, error)
	ChannelMessageSendEmbed(channelID string, embed *discordgo.MessageEmbed, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

// notifier posts queue events to the text channel a queue was started from.
type notifier struct {
	dg     channelSender
	logger zerolog.Logger
}

func newNotifier(dg channelSender) *notifier {
	return &notifier{dg: dg, logger: logger.Component("notifier")}
}

func (n *notifier) NowPlaying(channelID string, t track.Track) {
	if _, err := n.dg.ChannelMessageSendEmbed(channelID, music.NowPlayingEmbed(t)); err != nil {
		n.logger.Warn().Err(err).Str("channel_id", channelID).Msg("Failed to send now playing")
	}
}

func (n *notifier) PlaybackFailed(channelID string, t track.Track, err error) {
	content := fmt.Sprintf("%s\n**%s**", music.ErrorMessage(err), t.Title)
	if _, serr := n.dg.ChannelMessageSend(channelID, content); serr != nil {
		n.logger.Warn().Err(serr).Str("channel_id", channelID).Msg("Failed to send playback error")
	}
}

// settingsStore is the part of storage the queue settings need.
type settingsStore interface {
	Volume(guildID string, fallback int) (int, error)
	SetVolume(guildID string, volume int) error
	AppendTrackToHistory(guildID string, rec storage.TrackHistoryRecord) error
}

// guildSettings adapts storage to queue.Settings.
type guildSettings struct {
	store         settingsStore
	defaultVolume int
	logger        zerolog.Logger
}

func newGuildSettings(store settingsStore, defaultVolume int) *guildSettings {
	return &guildSettings{
		store:         store,
		defaultVolume: defaultVolume,
		logger:        logger.Component("settings"),
	}
}

func (g *guildSettings) Volume(guildID string) int {
	v, err := g.store.Volume(guildID, g.defaultVolume)
	if err != nil {
		g.logger.Warn().Err(err).Str("guild_id", guildID).Msg("Failed to load volume, using default")
		return g.defaultVolume
	}
	return v
}

func (g *guildSettings) SaveVolume(guildID string, v int) error {
	return g.store.SetVolume(guildID, v)
}

func (g *guildSettings) TrackStarted(guildID string, t track.Track) {
	rec := storage.TrackHistoryRecord{
		Title:       t.Title,
		URL:         t.URL,
		RequestedBy: t.RequestedBy,
		PlayedAt:    time.Now(),
	}
	if err := g.store.AppendTrackToHistory(guildID, rec); err != nil {
		g.logger.Warn().Err(err).Str("guild_id", guildID).Msg("Failed to record track history")
	}
}
