package music

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"

	"tunebot/internal/command"
	"tunebot/internal/music/queue"
	"tunebot/pkg/cmd"
)

type PlayCommand struct {
	musicCategory
	Player Player
}

func (c *PlayCommand) Name() string            { return "play" }
func (c *PlayCommand) Aliases() []string       { return []string{"p"} }
func (c *PlayCommand) Usage() string           { return "play <название песни или URL>" }
func (c *PlayCommand) Cooldown() time.Duration { return 3 * time.Second }

func (c *PlayCommand) Description() string {
	return "Воспроизводит музыку из YouTube"
}

func (c *PlayCommand) SlashDefinition() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        c.Name(),
		Description: c.Description(),
		Type:        discordgo.ChatApplicationCommand,
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionString,
				Name:        "query",
				Description: "Название песни или ссылка на YouTube",
				Required:    true,
			},
		},
	}
}

func (c *PlayCommand) Run(ctx context.Context, inv *cmd.Invocation) error {
	cc, err := command.FromInvocation(inv)
	if err != nil {
		return err
	}

	req := queue.Request{
		GuildID:       cc.GuildID,
		TextChannelID: cc.ChannelID,
		Requester:     cc.Username,
		Query:         strings.Join(inv.Args, " "),
	}
	if cc.Voice != nil {
		req.VoiceChannelID = cc.Voice.UserVoiceChannel(cc.GuildID, cc.UserID)
		if req.VoiceChannelID != "" {
			req.CanConnect = cc.Voice.CanConnect(req.VoiceChannelID)
		}
	}

	res, err := c.Player.Enqueue(ctx, req)
	if err != nil {
		return replyError(cc, err)
	}

	// a started track is announced by the now playing notification
	if res.Status == queue.Queued {
		return cc.Responder.ReplyEmbed(TrackEmbed(TitleQueued, res.Track, res.Position))
	}
	return nil
}
