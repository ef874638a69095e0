package discord

import (
	"sync"

	"github.com/bwmarrin/discordgo"
)

// messageResponder answers prefix commands in the channel they came from.
type messageResponder struct {
	dg        *discordgo.Session
	channelID string
	ref       *discordgo.MessageReference
}

func (r *messageResponder) Reply(content string) error {
	_, err := r.dg.ChannelMessageSendReply(r.channelID, content, r.ref)
	return err
}

func (r *messageResponder) ReplyEmbed(embed *discordgo.MessageEmbed) error {
	_, err := r.dg.ChannelMessageSendEmbed(r.channelID, embed)
	return err
}

// interactionResponder answers a deferred slash command. The first reply
// fills the deferred message, later ones are followups.
type interactionResponder struct {
	dg          *discordgo.Session
	interaction *discordgo.Interaction

	mu      sync.Mutex
	replied bool
}

func (r *interactionResponder) Reply(content string) error {
	return r.send(&discordgo.WebhookEdit{Content: &content}, &discordgo.WebhookParams{Content: content})
}

func (r *interactionResponder) ReplyEmbed(embed *discordgo.MessageEmbed) error {
	embeds := []*discordgo.MessageEmbed{embed}
	return r.send(&discordgo.WebhookEdit{Embeds: &embeds}, &discordgo.WebhookParams{Embeds: embeds})
}

func (r *interactionResponder) send(edit *discordgo.WebhookEdit, followup *discordgo.WebhookParams) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.replied {
		r.replied = true
		_, err := r.dg.InteractionResponseEdit(r.interaction, edit)
		return err
	}
	_, err := r.dg.FollowupMessageCreate(r.interaction, true, followup)
	return err
}

// Finish removes the "thinking" placeholder when the command had nothing to
// say, e.g. a track that is announced by the now playing message.
func (r *interactionResponder) Finish() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.replied {
		return nil
	}
	r.replied = true
	return r.dg.InteractionResponseDelete(r.interaction)
}
