package music

import (
	"context"

	"github.com/bwmarrin/discordgo"

	"tunebot/internal/command"
	"tunebot/pkg/cmd"
)

type StopCommand struct {
	musicCategory
	Player Player
}

func (c *StopCommand) Name() string      { return "stop" }
func (c *StopCommand) Aliases() []string { return []string{"leave"} }

func (c *StopCommand) Description() string {
	return "Останавливает музыку и очищает очередь"
}

func (c *StopCommand) SlashDefinition() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        c.Name(),
		Description: c.Description(),
	}
}

func (c *StopCommand) Run(ctx context.Context, inv *cmd.Invocation) error {
	cc, err := command.FromInvocation(inv)
	if err != nil {
		return err
	}

	if err := c.Player.Stop(cc.GuildID); err != nil {
		return replyError(cc, err)
	}
	return cc.Responder.Reply(MsgStopped)
}
