// Package cmd is the transport-agnostic command core: a command has a name,
// a description and Run(ctx, invocation). Discord messages and slash
// interactions are adapters that look commands up here and run them.
package cmd

import (
	"context"
	"time"
)

// Invocation carries the arguments and the adapter's payload. Adapters put
// their own context in Data.
type Invocation struct {
	Args []string
	Data any
}

// Command is identity plus execution. Everything else is optional and
// discovered through the provider interfaces below.
type Command interface {
	Name() string
	Description() string
	Run(ctx context.Context, inv *Invocation) error
}

type AliasProvider interface {
	Aliases() []string
}

type CategoryProvider interface {
	Category() string
}

type UsageProvider interface {
	Usage() string
}

// CooldownProvider gives the minimal delay between two runs by one user.
type CooldownProvider interface {
	Cooldown() time.Duration
}

// AliasesOf returns the aliases of c, looking through wrappers.
func AliasesOf(c Command) []string {
	if p, ok := Root(c).(AliasProvider); ok {
		return p.Aliases()
	}
	return nil
}

func CategoryOf(c Command) string {
	if p, ok := Root(c).(CategoryProvider); ok {
		return p.Category()
	}
	return ""
}

func UsageOf(c Command) string {
	if p, ok := Root(c).(UsageProvider); ok {
		return p.Usage()
	}
	return c.Name()
}

func CooldownOf(c Command) time.Duration {
	if p, ok := Root(c).(CooldownProvider); ok {
		return p.Cooldown()
	}
	return 0
}
