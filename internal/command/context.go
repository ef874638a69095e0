// Package command holds the Discord-facing command runtime: the context a
// command runs with, the dispatcher and its middlewares.
package command

import (
	"errors"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog"

	"tunebot/pkg/cmd"
)

var (
	ErrUnknownCommand = errors.New("unknown command")
	ErrWrongContext   = errors.New("invocation does not carry a command context")
)

// Responder answers the user who ran a command, in whatever way the
// transport allows (channel message or interaction followup).
type Responder interface {
	Reply(content string) error
	ReplyEmbed(embed *discordgo.MessageEmbed) error
}

// VoiceLookup answers voice questions about the guild the command ran in.
type VoiceLookup interface {
	// UserVoiceChannel returns the voice channel userID is connected to, or "".
	UserVoiceChannel(guildID, userID string) string
	// CanConnect reports whether the bot may connect and speak in channelID.
	CanConnect(channelID string) bool
}

// SlashProvider is implemented by commands that can be registered as
// application commands.
type SlashProvider interface {
	SlashDefinition() *discordgo.ApplicationCommand
}

const (
	SourceMessage = "message"
	SourceSlash   = "slash"
)

// Context is what every command receives in Invocation.Data.
type Context struct {
	RequestID string
	Source    string

	GuildID   string
	GuildName string
	ChannelID string
	UserID    string
	Username  string

	Args []string

	Responder Responder
	Voice     VoiceLookup
	Logger    zerolog.Logger
}

// FromInvocation returns the command context an adapter attached to inv.
func FromInvocation(inv *cmd.Invocation) (*Context, error) {
	if inv == nil {
		return nil, ErrWrongContext
	}
	c, ok := inv.Data.(*Context)
	if !ok || c == nil {
		return nil, ErrWrongContext
	}
	return c, nil
}
