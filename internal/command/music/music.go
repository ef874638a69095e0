// Package music contains the chat commands that drive guild playback.
package music

import (
	"context"

	"tunebot/internal/command"
	"tunebot/internal/config"
	"tunebot/internal/music/queue"
	"tunebot/internal/music/track"
	"tunebot/pkg/cmd"
)

// Player is the playback surface the commands need.
type Player interface {
	Enqueue(ctx context.Context, req queue.Request) (queue.Result, error)
	Skip(guildID string) (track.Track, error)
	Stop(guildID string) error
	Snapshot(guildID string) (queue.Snapshot, bool)
	SetVolume(guildID string, v int) error
}

// Commands returns every music command bound to p and h.
func Commands(p Player, h History) []cmd.Command {
	return []cmd.Command{
		&PlayCommand{Player: p},
		&SkipCommand{Player: p},
		&StopCommand{Player: p},
		&QueueCommand{Player: p},
		&VolumeCommand{Player: p},
		&HistoryCommand{History: h},
	}
}

type musicCategory struct{}

func (musicCategory) Category() string { return config.CategoryMusic }

// replyError answers with the chat message for err. Failures that are not
// the user's fault are also returned so the command logger records them.
func replyError(cc *command.Context, err error) error {
	if rerr := cc.Responder.Reply(ErrorMessage(err)); rerr != nil {
		cc.Logger.Warn().Err(rerr).Msg("Failed to reply")
	}
	if expected(err) {
		return nil
	}
	return err
}
