package command

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"
)

// Cooldowns rate-limits each (user, command) pair to one run per period.
type Cooldowns struct {
	mu      sync.Mutex
	entries map[string]*cooldownEntry
	now     func() time.Time
}

type cooldownEntry struct {
	limiter  *rate.Limiter
	lastUsed time.Time
}

func NewCooldowns() *Cooldowns {
	return &Cooldowns{
		entries: make(map[string]*cooldownEntry),
		now:     time.Now,
	}
}

// Allow consumes the user's token for command. When the user is still
// cooling down it returns false and the time left.
func (c *Cooldowns) Allow(userID, command string, every time.Duration) (bool, time.Duration) {
	if every <= 0 {
		return true, 0
	}

	key := userID + ":" + command
	now := c.now()

	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		e = &cooldownEntry{limiter: rate.NewLimiter(rate.Every(every), 1)}
		c.entries[key] = e
	}

	r := e.limiter.ReserveN(now, 1)
	if wait := r.DelayFrom(now); wait > 0 {
		r.CancelAt(now)
		return false, wait
	}
	e.lastUsed = now
	return true, 0
}

// Sweep forgets pairs unused for longer than idle and returns how many were
// dropped.
func (c *Cooldowns) Sweep(idle time.Duration) int {
	cutoff := c.now().Add(-idle)

	c.mu.Lock()
	defer c.mu.Unlock()

	removed := 0
	for key, e := range c.entries {
		if e.lastUsed.Before(cutoff) {
			delete(c.entries, key)
			removed++
		}
	}
	return removed
}

func (c *Cooldowns) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// RunCleaner sweeps idle entries every interval until ctx is done.
func (c *Cooldowns) RunCleaner(ctx context.Context, interval, idle time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if n := c.Sweep(idle); n > 0 {
				log.Debug().Str("component", "cooldowns").Int("removed", n).Msg("Expired cooldowns cleared")
			}
		}
	}
}
