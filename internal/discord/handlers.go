package discord

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"

	"tunebot/internal/command"
)

func (b *Bot) onMessageCreate(s *discordgo.Session, m *discordgo.MessageCreate) {
	if m.Author == nil || m.Author.Bot {
		return
	}

	name, args, ok := b.dispatcher.ParseMessage(m.Content)
	if !ok {
		return
	}

	c := &command.Context{
		Source:    command.SourceMessage,
		GuildID:   m.GuildID,
		GuildName: b.guildName(m.GuildID),
		ChannelID: m.ChannelID,
		UserID:    m.Author.ID,
		Username:  m.Author.Username,
		Args:      args,
		Responder: &messageResponder{dg: s, channelID: m.ChannelID, ref: m.Reference()},
		Voice:     b,
	}

	b.dispatch(name, c)
}

func (b *Bot) onInteractionCreate(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if i.Type != discordgo.InteractionApplicationCommand {
		return
	}

	data := i.ApplicationCommandData()
	if b.dispatcher.Registry().Lookup(data.Name) == nil {
		b.logger.Warn().Str("command", data.Name).Msg("Unknown slash command")
		return
	}

	// resolving a track can take longer than the interaction deadline
	if err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredChannelMessageWithSource,
	}); err != nil {
		b.logger.Error().Err(err).Str("command", data.Name).Msg("Failed to defer interaction")
		return
	}

	user := interactionUser(i)
	if user == nil {
		return
	}

	responder := &interactionResponder{dg: s, interaction: i.Interaction}
	c := &command.Context{
		Source:    command.SourceSlash,
		GuildID:   i.GuildID,
		GuildName: b.guildName(i.GuildID),
		ChannelID: i.ChannelID,
		UserID:    user.ID,
		Username:  user.Username,
		Args:      optionArgs(data.Options),
		Responder: responder,
		Voice:     b,
	}

	b.dispatch(data.Name, c)

	if err := responder.Finish(); err != nil {
		b.logger.Warn().Err(err).Str("command", data.Name).Msg("Failed to close interaction")
	}
}

func (b *Bot) dispatch(name string, c *command.Context) {
	err := b.dispatcher.Dispatch(context.Background(), name, c)
	switch {
	case err == nil:
	case errors.Is(err, command.ErrUnknownCommand):
		b.logger.Debug().Str("command", name).Msg("Unknown command")
	default:
		// already logged and answered by the middlewares
		b.logger.Debug().Err(err).Str("command", name).Msg("Command failed")
	}
}

func (b *Bot) guildName(guildID string) string {
	if guildID == "" {
		return ""
	}
	g, err := b.dg.State.Guild(guildID)
	if err != nil || g == nil {
		return ""
	}
	return g.Name
}

func interactionUser(i *discordgo.InteractionCreate) *discordgo.User {
	if i.Member != nil && i.Member.User != nil {
		return i.Member.User
	}
	return i.User
}

// optionArgs flattens slash options into positional arguments.
func optionArgs(opts []*discordgo.ApplicationCommandInteractionDataOption) []string {
	args := make([]string, 0, len(opts))
	for _, o := range opts {
		switch o.Type {
		case discordgo.ApplicationCommandOptionString:
			args = append(args, strings.Fields(o.StringValue())...)
		case discordgo.ApplicationCommandOptionInteger:
			args = append(args, fmt.Sprint(o.IntValue()))
		default:
			args = append(args, fmt.Sprint(o.Value))
		}
	}
	return args
}
