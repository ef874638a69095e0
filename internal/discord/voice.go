package discord

import (
	"github.com/bwmarrin/discordgo"

	"tunebot/internal/music/queue"
	"tunebot/internal/music/voice"
)

const voicePermissions = discordgo.PermissionVoiceConnect | discordgo.PermissionVoiceSpeak

// UserVoiceChannel returns the voice channel the user sits in, or "".
func (b *Bot) UserVoiceChannel(guildID, userID string) string {
	if vs, err := b.dg.State.VoiceState(guildID, userID); err == nil && vs != nil {
		return vs.ChannelID
	}

	guild, err := b.dg.State.Guild(guildID)
	if err != nil {
		return ""
	}
	for _, vs := range guild.VoiceStates {
		if vs.UserID == userID {
			return vs.ChannelID
		}
	}
	return ""
}

// CanConnect reports whether the bot may join and speak in channelID.
func (b *Bot) CanConnect(channelID string) bool {
	if b.dg.State.User == nil {
		return false
	}
	perms, err := b.dg.UserChannelPermissions(b.dg.State.User.ID, channelID)
	if err != nil {
		b.logger.Warn().Err(err).Str("channel_id", channelID).Msg("Failed to read voice permissions")
		return false
	}
	return hasVoicePermissions(perms)
}

func hasVoicePermissions(perms int64) bool {
	if perms&discordgo.PermissionAdministrator != 0 {
		return true
	}
	return perms&voicePermissions == voicePermissions
}

// voiceConnector adapts the voice package to the queue's Connector.
type voiceConnector struct {
	c *voice.Connector
}

func (v voiceConnector) Connect(guildID, channelID string) (queue.Session, error) {
	s, err := v.c.Connect(guildID, channelID)
	if err != nil {
		return nil, err
	}
	return s, nil
}
