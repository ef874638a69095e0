package discord

import (
	"fmt"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog"

	"tunebot/internal/command"
	"tunebot/pkg/cmd"
)

// slashAPI is the part of *discordgo.Session used for command sync.
type slashAPI interface {
	ApplicationCommands(appID, guildID string, options ...discordgo.RequestOption) ([]*discordgo.ApplicationCommand, error)
	ApplicationCommandCreate(appID, guildID string, c *discordgo.ApplicationCommand, options ...discordgo.RequestOption) (*discordgo.ApplicationCommand, error)
	ApplicationCommandDelete(appID, guildID, cmdID string, options ...discordgo.RequestOption) error
}

// hashStore persists the last registered definition hash per command.
type hashStore interface {
	SlashHashes(guildID string) (map[string]string, error)
	SetSlashHashes(guildID string, hashes map[string]string) error
}

// slashSyncer keeps a guild's slash commands in line with the registry:
// obsolete ones are deleted, changed ones are (re)created.
type slashSyncer struct {
	api    slashAPI
	hashes hashStore
	pause  time.Duration
	logger zerolog.Logger
}

func (b *Bot) syncSlashCommands(guildID string) error {
	appID, err := b.appID()
	if err != nil {
		return err
	}
	s := slashSyncer{
		api:    b.dg,
		hashes: b.storage,
		pause:  25 * time.Millisecond,
		logger: b.logger,
	}
	return s.sync(appID, guildID, slashDefinitions(b.dispatcher.Registry()))
}

func (s slashSyncer) sync(appID, guildID string, local []*discordgo.ApplicationCommand) error {
	remote, err := s.api.ApplicationCommands(appID, guildID)
	if err != nil {
		return fmt.Errorf("list slash commands: %w", err)
	}

	cached, err := s.hashes.SlashHashes(guildID)
	if err != nil {
		return fmt.Errorf("load slash hashes: %w", err)
	}

	localNames := make(map[string]struct{}, len(local))
	for _, d := range local {
		localNames[d.Name] = struct{}{}
	}
	remoteNames := make(map[string]struct{}, len(remote))

	hashes := make(map[string]string, len(local))
	for _, rc := range remote {
		remoteNames[rc.Name] = struct{}{}
		if _, ok := localNames[rc.Name]; ok {
			continue
		}
		s.logger.Info().Str("guild_id", guildID).Str("command", rc.Name).Msg("Deleting obsolete slash command")
		if err := s.api.ApplicationCommandDelete(appID, guildID, rc.ID); err != nil {
			s.logger.Error().Err(err).Str("guild_id", guildID).Str("command", rc.Name).Msg("Failed to delete slash command")
		}
	}

	registered := 0
	for _, d := range local {
		h := hashCommand(d)
		_, present := remoteNames[d.Name]
		if present && cached[d.Name] == h {
			hashes[d.Name] = h
			continue
		}
		if _, err := s.api.ApplicationCommandCreate(appID, guildID, d); err != nil {
			s.logger.Error().Err(err).Str("guild_id", guildID).Str("command", d.Name).Msg("Failed to register slash command")
			continue
		}
		hashes[d.Name] = h
		registered++
		if s.pause > 0 {
			time.Sleep(s.pause)
		}
	}

	if registered > 0 {
		s.logger.Info().Str("guild_id", guildID).Int("count", registered).Msg("Registered slash commands")
	}
	return s.hashes.SetSlashHashes(guildID, hashes)
}

// slashDefinitions collects definitions from every command that offers one.
func slashDefinitions(r *cmd.Registry) []*discordgo.ApplicationCommand {
	var defs []*discordgo.ApplicationCommand
	for _, c := range r.GetAll() {
		if def := commandDefinition(c); def != nil {
			defs = append(defs, def)
		}
	}
	return defs
}

// commandDefinition looks through middleware wrappers for a SlashProvider.
func commandDefinition(c cmd.Command) *discordgo.ApplicationCommand {
	slash, ok := cmd.Root(c).(command.SlashProvider)
	if !ok {
		return nil
	}
	def := slash.SlashDefinition()
	if def == nil {
		return nil
	}
	if def.Type == 0 {
		def.Type = discordgo.ChatApplicationCommand
	}
	return def
}

// appID returns the bot's application ID, fetching it if State is empty.
func (b *Bot) appID() (string, error) {
	if b.dg.State.User != nil && b.dg.State.User.ID != "" {
		return b.dg.State.User.ID, nil
	}
	u, err := b.dg.User("@me")
	if err != nil {
		return "", fmt.Errorf("failed to fetch bot user: %w", err)
	}
	return u.ID, nil
}
