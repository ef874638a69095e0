package music

import (
	"context"
	"fmt"

	"github.com/bwmarrin/discordgo"

	"tunebot/internal/command"
	"tunebot/pkg/cmd"
)

type SkipCommand struct {
	musicCategory
	Player Player
}

func (c *SkipCommand) Name() string        { return "skip" }
func (c *SkipCommand) Description() string { return "Пропускает текущую песню" }
func (c *SkipCommand) Aliases() []string   { return []string{"s"} }

func (c *SkipCommand) SlashDefinition() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        c.Name(),
		Description: c.Description(),
	}
}

func (c *SkipCommand) Run(ctx context.Context, inv *cmd.Invocation) error {
	cc, err := command.FromInvocation(inv)
	if err != nil {
		return err
	}

	skipped, err := c.Player.Skip(cc.GuildID)
	if err != nil {
		return replyError(cc, err)
	}
	return cc.Responder.Reply(fmt.Sprintf(MsgSkipped, skipped.Title))
}
