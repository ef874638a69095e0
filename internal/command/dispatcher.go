package command

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"tunebot/pkg/cmd"
)

// Dispatcher routes messages and interactions to registered commands.
type Dispatcher struct {
	registry    *cmd.Registry
	prefix      string
	middlewares []cmd.Middleware
}

// NewDispatcher dispatches to commands in registry. Middlewares run in the
// given order, first one outermost.
func NewDispatcher(registry *cmd.Registry, prefix string, mws ...cmd.Middleware) *Dispatcher {
	return &Dispatcher{registry: registry, prefix: prefix, middlewares: mws}
}

func (d *Dispatcher) Registry() *cmd.Registry { return d.registry }

func (d *Dispatcher) Prefix() string { return d.prefix }

// ParseMessage splits a prefixed chat message into a command name and its
// arguments. ok is false when content is not addressed to the bot.
func (d *Dispatcher) ParseMessage(content string) (name string, args []string, ok bool) {
	content = strings.TrimSpace(content)
	if d.prefix == "" || !strings.HasPrefix(content, d.prefix) {
		return "", nil, false
	}

	fields := strings.Fields(strings.TrimPrefix(content, d.prefix))
	if len(fields) == 0 {
		return "", nil, false
	}
	return strings.ToLower(fields[0]), fields[1:], true
}

// Dispatch runs the command registered under name (or alias) with c.
func (d *Dispatcher) Dispatch(ctx context.Context, name string, c *Context) error {
	command := d.registry.Lookup(name)
	if command == nil {
		return fmt.Errorf("%w: %s", ErrUnknownCommand, name)
	}

	if c.RequestID == "" {
		c.RequestID = uuid.NewString()
	}
	c.Logger = log.With().
		Str("component", "command").
		Str("request_id", c.RequestID).
		Str("command", command.Name()).
		Str("guild_id", c.GuildID).
		Str("user_id", c.UserID).
		Logger()

	wrapped := cmd.Apply(command, d.middlewares...)
	return wrapped.Run(ctx, &cmd.Invocation{Args: c.Args, Data: c})
}
