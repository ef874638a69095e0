package music

import (
	"context"
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"

	"tunebot/internal/command"
	"tunebot/pkg/cmd"
)

const queuePageSize = 10

type QueueCommand struct {
	musicCategory
	Player Player
}

func (c *QueueCommand) Name() string      { return "queue" }
func (c *QueueCommand) Aliases() []string { return []string{"q"} }

func (c *QueueCommand) Description() string {
	return "Показывает очередь воспроизведения"
}

func (c *QueueCommand) SlashDefinition() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        c.Name(),
		Description: c.Description(),
	}
}

func (c *QueueCommand) Run(ctx context.Context, inv *cmd.Invocation) error {
	cc, err := command.FromInvocation(inv)
	if err != nil {
		return err
	}

	snap, ok := c.Player.Snapshot(cc.GuildID)
	if !ok || len(snap.Tracks) == 0 {
		return cc.Responder.Reply(MsgQueueEmpty)
	}

	var sb strings.Builder
	current := snap.Tracks[0]
	fmt.Fprintf(&sb, "▶️ **[%s](%s)** `%s`\n", current.Title, current.URL, current.Duration)

	rest := snap.Tracks[1:]
	for i, t := range rest {
		if i == queuePageSize {
			fmt.Fprintf(&sb, "…и ещё %d\n", len(rest)-queuePageSize)
			break
		}
		fmt.Fprintf(&sb, "`%d.` [%s](%s) `%s` (%s)\n", i+1, t.Title, t.URL, t.Duration, t.RequestedBy)
	}

	return cc.Responder.ReplyEmbed(&discordgo.MessageEmbed{
		Title:       "Очередь",
		Description: sb.String(),
		Color:       EmbedColor,
		Footer: &discordgo.MessageEmbedFooter{
			Text: fmt.Sprintf("Треков: %d • Громкость: %d", len(snap.Tracks), snap.Volume),
		},
	})
}
