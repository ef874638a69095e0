package music

import (
	"context"
	"fmt"
	"strconv"

	"github.com/bwmarrin/discordgo"

	"tunebot/internal/command"
	"tunebot/pkg/cmd"
)

type VolumeCommand struct {
	musicCategory
	Player Player
}

func (c *VolumeCommand) Name() string      { return "volume" }
func (c *VolumeCommand) Aliases() []string { return []string{"v"} }
func (c *VolumeCommand) Usage() string     { return "volume [0-100]" }

func (c *VolumeCommand) Description() string {
	return "Показывает или меняет громкость (0-100)"
}

func (c *VolumeCommand) SlashDefinition() *discordgo.ApplicationCommand {
	minVolume := 0.0
	return &discordgo.ApplicationCommand{
		Name:        c.Name(),
		Description: c.Description(),
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionInteger,
				Name:        "level",
				Description: "Громкость от 0 до 100",
				Required:    false,
				MinValue:    &minVolume,
				MaxValue:    100,
			},
		},
	}
}

func (c *VolumeCommand) Run(ctx context.Context, inv *cmd.Invocation) error {
	cc, err := command.FromInvocation(inv)
	if err != nil {
		return err
	}

	if len(inv.Args) == 0 {
		snap, _ := c.Player.Snapshot(cc.GuildID)
		return cc.Responder.Reply(fmt.Sprintf(MsgVolume, snap.Volume))
	}

	level, err := strconv.Atoi(inv.Args[0])
	if err != nil {
		return cc.Responder.Reply(MsgVolumeUsage)
	}
	if err := c.Player.SetVolume(cc.GuildID, level); err != nil {
		return replyError(cc, err)
	}
	return cc.Responder.Reply(fmt.Sprintf(MsgVolumeSet, level))
}
