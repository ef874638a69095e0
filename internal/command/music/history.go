package music

import (
	"context"
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"

	"tunebot/internal/command"
	"tunebot/internal/storage"
	"tunebot/pkg/cmd"
)

const historyLimit = 10

// History is the read side of the per-guild playback log.
type History interface {
	FetchTracksHistory(guildID string) ([]storage.TrackHistoryRecord, error)
}

type HistoryCommand struct {
	musicCategory
	History History
}

func (c *HistoryCommand) Name() string      { return "history" }
func (c *HistoryCommand) Aliases() []string { return []string{"hist"} }

func (c *HistoryCommand) Description() string {
	return "Показывает недавно проигранные песни"
}

func (c *HistoryCommand) SlashDefinition() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        c.Name(),
		Description: c.Description(),
	}
}

func (c *HistoryCommand) Run(ctx context.Context, inv *cmd.Invocation) error {
	cc, err := command.FromInvocation(inv)
	if err != nil {
		return err
	}

	records, err := c.History.FetchTracksHistory(cc.GuildID)
	if err != nil {
		return replyError(cc, fmt.Errorf("fetch tracks history: %w", err))
	}
	if len(records) == 0 {
		return cc.Responder.Reply(MsgHistoryEmpty)
	}

	// Records are stored oldest first.
	var sb strings.Builder
	for i := 0; i < historyLimit && i < len(records); i++ {
		r := records[len(records)-1-i]
		fmt.Fprintf(&sb, "`%d.` [%s](%s) (%s) <t:%d:R>\n", i+1, r.Title, r.URL, r.RequestedBy, r.PlayedAt.Unix())
	}

	return cc.Responder.ReplyEmbed(&discordgo.MessageEmbed{
		Title:       "Недавно играло",
		Description: sb.String(),
		Color:       EmbedColor,
	})
}
