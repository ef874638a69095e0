package command

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"strings"
	"time"

	"tunebot/internal/storage"
	"tunebot/pkg/cmd"
)

var ErrPanic = errors.New("command panicked")

// HistoryStore records which commands were run in a guild.
type HistoryStore interface {
	AppendCommandToHistory(guildID string, rec storage.CommandHistoryRecord) error
}

// WithRecover turns a panic in a command into a logged error and a generic
// reply.
func WithRecover() cmd.Middleware {
	return func(c cmd.Command) cmd.Command {
		return cmd.Wrap(c, func(ctx context.Context, inv *cmd.Invocation) (err error) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				err = fmt.Errorf("%w: %v", ErrPanic, rec)
				if cc, cerr := FromInvocation(inv); cerr == nil {
					cc.Logger.Error().Interface("panic", rec).Str("stack", string(debug.Stack())).Msg("Command panicked")
					_ = cc.Responder.Reply(MsgInternalError)
				}
			}()
			return c.Run(ctx, inv)
		})
	}
}

// WithGuildOnly refuses to run commands outside of a guild.
func WithGuildOnly() cmd.Middleware {
	return func(c cmd.Command) cmd.Command {
		return cmd.Wrap(c, func(ctx context.Context, inv *cmd.Invocation) error {
			cc, err := FromInvocation(inv)
			if err != nil {
				return err
			}
			if cc.GuildID == "" {
				return cc.Responder.Reply(MsgGuildOnly)
			}
			return c.Run(ctx, inv)
		})
	}
}

// WithCooldown enforces the command's per-user cooldown.
func WithCooldown(cooldowns *Cooldowns) cmd.Middleware {
	return func(c cmd.Command) cmd.Command {
		return cmd.Wrap(c, func(ctx context.Context, inv *cmd.Invocation) error {
			cc, err := FromInvocation(inv)
			if err != nil {
				return err
			}
			ok, wait := cooldowns.Allow(cc.UserID, c.Name(), cmd.CooldownOf(c))
			if !ok {
				cc.Logger.Debug().Dur("wait", wait).Msg("Command on cooldown")
				return cc.Responder.Reply(fmt.Sprintf(MsgCooldown, wait.Seconds(), c.Name()))
			}
			return c.Run(ctx, inv)
		})
	}
}

// WithCommandLogger logs every run and appends it to the guild's history.
func WithCommandLogger(history HistoryStore) cmd.Middleware {
	return func(c cmd.Command) cmd.Command {
		return cmd.Wrap(c, func(ctx context.Context, inv *cmd.Invocation) error {
			cc, err := FromInvocation(inv)
			if err != nil {
				return err
			}

			start := time.Now()
			runErr := c.Run(ctx, inv)

			ev := cc.Logger.Info()
			if runErr != nil {
				ev = cc.Logger.Error().Err(runErr)
			}
			ev.Str("source", cc.Source).Strs("args", cc.Args).Dur("took", time.Since(start)).Msg("Command executed")

			if history != nil && cc.GuildID != "" {
				rec := storage.CommandHistoryRecord{
					ChannelID: cc.ChannelID,
					GuildName: cc.GuildName,
					UserID:    cc.UserID,
					Username:  cc.Username,
					Command:   c.Name(),
					Param:     strings.Join(cc.Args, " "),
					Datetime:  start,
				}
				if err := history.AppendCommandToHistory(cc.GuildID, rec); err != nil {
					cc.Logger.Warn().Err(err).Msg("Failed to record command history")
				}
			}
			return runErr
		})
	}
}
