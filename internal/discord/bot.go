// Package discord connects the command runtime and the playback queues to
// the Discord gateway.
package discord

import (
	"context"
	"fmt"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog"

	"tunebot/internal/command"
	"tunebot/internal/command/info"
	"tunebot/internal/command/music"
	"tunebot/internal/config"
	"tunebot/internal/logger"
	"tunebot/internal/music/queue"
	"tunebot/internal/music/source_resolver"
	"tunebot/internal/music/sources/youtube"
	"tunebot/internal/music/stream"
	"tunebot/internal/music/voice"
	"tunebot/internal/storage"
	"tunebot/pkg/cmd"
)

// Bot owns the gateway session and everything hanging off it.
type Bot struct {
	dg         *discordgo.Session
	cfg        *config.Config
	storage    *storage.Storage
	queues     *queue.Registry
	dispatcher *command.Dispatcher
	cooldowns  *command.Cooldowns
	logger     zerolog.Logger
}

// NewBot creates the gateway session and wires resolver, voice, queues and
// commands together. Nothing connects until Run.
func NewBot(cfg *config.Config, store *storage.Storage) (*Bot, error) {
	dg, err := discordgo.New("Bot " + cfg.DiscordToken)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}
	dg.Identify.Intents = discordgo.IntentsGuilds |
		discordgo.IntentsGuildMessages |
		discordgo.IntentsGuildVoiceStates |
		discordgo.IntentsMessageContent

	httpClient, err := youtube.NewHTTPClient(cfg.YouTubeProxy)
	if err != nil {
		return nil, fmt.Errorf("youtube http client: %w", err)
	}

	resolver := source_resolver.New(youtube.New(httpClient))
	streamer := stream.NewStreamer(httpClient, cfg.FFmpegPath, cfg.YTDLPPath)

	b := &Bot{
		dg:        dg,
		cfg:       cfg,
		storage:   store,
		cooldowns: command.NewCooldowns(),
		logger:    logger.Component("discord"),
	}

	b.queues = queue.NewRegistry(queue.Config{
		Resolver:      resolver,
		Connector:     voiceConnector{voice.NewConnector(dg, streamer)},
		Notifier:      newNotifier(dg),
		Settings:      newGuildSettings(store, cfg.DefaultVolume),
		DefaultVolume: cfg.DefaultVolume,
	})

	registry := cmd.NewRegistry()
	if err := registerCommands(registry, b.queues, store, cfg.CommandPrefix); err != nil {
		return nil, err
	}

	b.dispatcher = command.NewDispatcher(registry, cfg.CommandPrefix,
		command.WithRecover(),
		command.WithGuildOnly(),
		command.WithCooldown(b.cooldowns),
		command.WithCommandLogger(store),
	)

	return b, nil
}

func registerCommands(registry *cmd.Registry, player music.Player, history music.History, prefix string) error {
	all := append(music.Commands(player, history), &info.HelpCommand{Registry: registry, Prefix: prefix})
	for _, c := range all {
		if err := registry.Register(c); err != nil {
			return fmt.Errorf("register command: %w", err)
		}
	}
	return nil
}

// Cooldowns exposes the per-user cooldown table so its cleaner can run as
// a background job.
func (b *Bot) Cooldowns() *command.Cooldowns { return b.cooldowns }

// Queues exposes the playback registry.
func (b *Bot) Queues() *queue.Registry { return b.queues }

// Run opens the gateway connection and blocks until ctx is done. On the way
// out every guild queue is stopped before the session closes.
func (b *Bot) Run(ctx context.Context) error {
	b.dg.AddHandler(b.onReady)
	b.dg.AddHandler(b.onGuildCreate)
	b.dg.AddHandler(b.onMessageCreate)
	b.dg.AddHandler(b.onInteractionCreate)

	if err := b.dg.Open(); err != nil {
		return fmt.Errorf("failed to open Discord session: %w", err)
	}

	<-ctx.Done()
	b.logger.Info().Msg("Shutdown signal received, cleaning up")

	b.queues.Shutdown()
	if err := b.dg.Close(); err != nil {
		return fmt.Errorf("close Discord session: %w", err)
	}
	return nil
}

func (b *Bot) onReady(s *discordgo.Session, r *discordgo.Ready) {
	b.logger.Info().Str("user", r.User.Username).Int("guilds", len(r.Guilds)).Msg("Discord bot is running")
}

// onGuildCreate syncs slash commands for every guild the bot is in,
// including those delivered right after Ready.
func (b *Bot) onGuildCreate(s *discordgo.Session, g *discordgo.GuildCreate) {
	if !b.cfg.RegisterSlash {
		return
	}
	if err := b.syncSlashCommands(g.Guild.ID); err != nil {
		b.logger.Error().Err(err).Str("guild_id", g.Guild.ID).Msg("Failed to register slash commands")
	}
}
