package music

import (
	"fmt"
	"strconv"
	"time"

	"github.com/bwmarrin/discordgo"

	"tunebot/internal/music/track"
)

const EmbedColor = 0x0099ff

// TrackEmbed renders t under title. A negative position omits the queue
// position field.
func TrackEmbed(title string, t track.Track, position int) *discordgo.MessageEmbed {
	fields := []*discordgo.MessageEmbedField{
		{Name: "Продолжительность", Value: orUnknown(t.Duration), Inline: true},
		{Name: "Запросил", Value: orUnknown(t.RequestedBy), Inline: true},
	}
	if position >= 0 {
		fields = append(fields, &discordgo.MessageEmbedField{
			Name: "Позиция в очереди", Value: strconv.Itoa(position), Inline: true,
		})
	}

	embed := &discordgo.MessageEmbed{
		Title:       title,
		Description: fmt.Sprintf("**[%s](%s)**", t.Title, t.URL),
		Color:       EmbedColor,
		Fields:      fields,
		Timestamp:   time.Now().Format(time.RFC3339),
	}
	if t.Thumbnail != "" {
		embed.Thumbnail = &discordgo.MessageEmbedThumbnail{URL: t.Thumbnail}
	}
	return embed
}

func NowPlayingEmbed(t track.Track) *discordgo.MessageEmbed {
	return TrackEmbed(TitleNowPlaying, t, -1)
}

func orUnknown(s string) string {
	if s == "" {
		return "неизвестно"
	}
	return s
}
